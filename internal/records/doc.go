/*
Package records defines the browsable data model: Record, the mutable entry
the enrichment workers populate; Collection, the volatile arena that owns
records; and Ref, the generation-stamped weak handle workers queue instead
of records themselves.

The collection can be reset, filtered or resorted at any moment. Every such
change bumps the generation counter, so outstanding Refs simply stop
resolving and pending or in-flight work for them expires without touching
records the collection no longer owns.
*/
package records
