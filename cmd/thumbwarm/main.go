package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"asset-browser/internal/collector"
	"asset-browser/internal/records"
	"asset-browser/internal/thumbs"
)

const (
	// thumbnailSize matches the size the browser caches thumbnails at, so
	// warmed entries are exact cache hits.
	thumbnailSize = 512

	// maxSourceBytes mirrors the browser's generation ceiling.
	maxSourceBytes = 2 << 30

	defaultBrowseDir = "/browse"
	defaultCacheDir  = "/cache"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	browseDir := os.Getenv("BROWSE_DIR")
	if browseDir == "" {
		browseDir = defaultBrowseDir
	}
	if len(os.Args) > 2 {
		browseDir = os.Args[2]
	}
	cacheDir := os.Getenv("CACHE_DIR")
	if cacheDir == "" {
		cacheDir = defaultCacheDir
	}
	thumbDir := filepath.Join(cacheDir, "thumbnails")

	switch command {
	case "warm":
		if !warm(ctx, browseDir, thumbDir) {
			os.Exit(1)
		}
	case "stats":
		showStats(thumbDir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Asset Browser Thumbnail Cache Warmer")
	fmt.Println("")
	fmt.Println("Usage: thumbwarm <command> [dir]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  warm    - Generate missing thumbnails for a directory")
	fmt.Println("  stats   - Report thumbnail cache contents")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  BROWSE_DIR - Directory to warm (default: %s)\n", defaultBrowseDir)
	fmt.Printf("  CACHE_DIR  - Cache directory (default: %s)\n", defaultCacheDir)
}

// warm scans the directory the way the browser does and generates every
// missing cache entry. It returns false when any generation failed.
func warm(ctx context.Context, browseDir, thumbDir string) bool {
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create cache directory: %v\n", err)
		return false
	}

	thumbs.InitVips()
	defer thumbs.ShutdownVips()
	gen := thumbs.NewGenerator()

	scanner := collector.New(collector.Options{RowHeight: thumbnailSize})
	recs, err := scanner.Scan(ctx, browseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
		return false
	}

	generated, skipped, failed := 0, 0, 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			break
		}
		if rec.Type == records.FolderItem || !thumbs.CanDecode(rec.Extension) {
			continue
		}

		dest := thumbs.CachePath(thumbDir, rec.Path)
		if _, err := os.Stat(dest); err == nil {
			skipped++
			continue
		}

		source := sourcePath(rec)
		if source == "" {
			continue
		}
		if fi, err := os.Stat(source); err != nil || fi.Size() >= maxSourceBytes {
			skipped++
			continue
		}

		if err := gen.Generate(source, dest, thumbnailSize); err != nil {
			fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", source, err)
			failed++
			continue
		}
		generated++
	}

	fmt.Printf("Warmed %s: %d generated, %d skipped, %d failed\n", browseDir, generated, skipped, failed)
	return failed == 0
}

// sourcePath picks the file a record's thumbnail is rendered from:
// sequences use their lowest captured frame.
func sourcePath(rec *records.Record) string {
	if rec.Type != records.SequenceItem {
		return rec.Path
	}
	entries := rec.Entries()
	if len(entries) == 0 {
		return ""
	}
	first := entries[0].Path
	for _, e := range entries[1:] {
		if e.Path < first {
			first = e.Path
		}
	}
	return first
}

func showStats(thumbDir string) {
	entries, err := os.ReadDir(thumbDir)
	if err != nil {
		fmt.Printf("Cache: empty (%v)\n", err)
		return
	}

	count := 0
	var size int64
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".jpg" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	fmt.Printf("Cache: %d thumbnails, %s\n", count, records.FormatBytes(size))
}
