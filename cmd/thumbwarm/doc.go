// Command thumbwarm pre-populates the thumbnail cache for a directory so
// the browser serves cache hits from the first paint. It scans exactly the
// way the browser does (hidden entries skipped, frame runs collapsed) and
// writes thumbnails under CACHE_DIR/thumbnails keyed identically.
package main
