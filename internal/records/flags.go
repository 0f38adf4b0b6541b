package records

// Record flag bits. The low bits mirror the item capabilities every
// enriched record gains; the remaining bits are persisted per item in the
// sidecar store and merged in during enrichment.
const (
	// FlagEditable marks a record whose sidecar fields can be edited
	FlagEditable uint32 = 1 << iota
	// FlagDraggable marks a record that can be drag-and-dropped
	FlagDraggable
	// FlagArchived marks a record hidden from normal views; archived
	// records are never thumbnailed
	FlagArchived
	// FlagFavourite marks a user favourite
	FlagFavourite
)
