//go:build !cgo

package thumbs

import (
	"fmt"
	"image"

	"asset-browser/internal/logging"
)

// InitVips is a no-op in builds without cgo: govips requires cgo, so
// decoding always uses the pure-Go fallback path.
func InitVips() {
	logging.Info("libvips support not compiled in (cgo disabled); using pure-Go decoding")
}

// ShutdownVips releases libvips resources; nothing to do without cgo.
func ShutdownVips() {}

// IsVipsAvailable reports whether libvips is initialized.
func IsVipsAvailable() bool {
	return false
}

// loadWithVips always fails without cgo; callers fall back to pure-Go decoding.
func loadWithVips(path string, size int) (image.Image, error) {
	return nil, fmt.Errorf("libvips not available")
}
