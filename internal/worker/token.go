package worker

import "sync/atomic"

// Token is the cooperative cancellation flag shared between a worker and
// its step implementation. Setting it asks in-flight work to abort at its
// next liveness checkpoint; it is never preemptive. The flag is a pulse:
// the worker clears it once an activation cycle completes so a fresh
// submission is processed normally.
type Token struct {
	flag atomic.Bool
}

// NewToken returns a cleared token.
func NewToken() *Token {
	return &Token{}
}

// Set raises the interrupt flag.
func (t *Token) Set() { t.flag.Store(true) }

// Clear lowers the interrupt flag.
func (t *Token) Clear() { t.flag.Store(false) }

// Interrupted reports whether the flag is raised.
func (t *Token) Interrupted() bool { return t.flag.Load() }
