// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - BROWSE_DIR: Directory to browse and enrich (default: /browse)
//   - CACHE_DIR: Cache directory for generated thumbnails (default: /cache)
//   - SIDECAR_DIR: Directory for the sidecar metadata store (default: /sidecar)
//   - PORT: HTTP status server port (default: 8080)
//   - METRICS_ENABLED: Expose Prometheus metrics (default: true)
//   - INFO_INTERVAL: Metadata worker tick as Go duration (default: 100ms)
//   - THUMBNAIL_INTERVAL: Thumbnail worker tick (default: 250ms)
//   - FOLDER_INTERVAL: Folder-count worker tick (default: 500ms)
//   - SWEEP_INTERVAL: Background sweep interval (default: 1.5s)
//   - MONITOR_INTERVAL: Progress monitor refresh (default: 200ms)
//   - ROW_HEIGHT: Display height thumbnails are decoded at (default: 128)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The sidecar directory is required and must be writable. The thumbnail
// cache directory is optional; when it cannot be created or written,
// thumbnail generation is disabled and placeholders are served. The browse
// directory is checked but only warned about (it should be mounted).
//
// Build-time variables (Version, Commit, BuildTime) are injected via
// ldflags and exposed through [GetBuildInfo].
package startup
