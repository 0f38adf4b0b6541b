/*
Package worker implements the background enrichment pipeline: the
queue-bound workers that asynchronously populate metadata and thumbnails
onto records owned by a volatile collection, the controllers that drive
them on dedicated threads, the level-triggered background sweeper, and the
read-only progress monitor.

# Model

Each worker role gets one Controller, which owns one OS thread and a
periodic timer. A tick makes the worker dequeue and process exactly one
weak reference. References are the only thing queued: the owning
collection can replace, filter or resort its backing records at any
moment, at which point outstanding references stop resolving and workers
drop the work silently at their next liveness check.

Cancellation is cooperative and per-queue. RequestReset drains pending
work and raises an interrupt pulse that in-flight steps observe at their
next checkpoint; the pulse clears once the current activation cycle
completes. Nothing here is preemptive, and nothing here is fatal: a panic
inside a step is logged at the activation boundary and the queue keeps
flowing.

The ordering rule of the queues matters for UI responsiveness: a forced
submission ("the user is looking at this row") is serviced before all
previously queued normal items, forced items among themselves are LIFO,
and plain FIFO resumes once forced items drain.
*/
package worker
