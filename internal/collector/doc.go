// Package collector turns directory listings into enrichable record sets.
// It captures point-in-time filesystem entries for the metadata worker and
// collapses numbered frame runs ("shot.0001.exr" .. "shot.0005.exr") into
// single sequence records.
package collector
