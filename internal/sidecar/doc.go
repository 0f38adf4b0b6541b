/*
Package sidecar implements the on-disk per-item metadata store.

Each browsable item is keyed by its content key (the collapsed sequence
path for sequences, the file path otherwise) and carries a description,
a list of todo notes and a persisted flags bitmask. The store is a WAL-mode
sqlite database so the metadata workers can read concurrently while the UI
thread writes through editors.

A read for a missing key is not an error; it returns the zero value so
enrichment can proceed with defaults.
*/
package sidecar
