package main

import (
	"context"
	"image"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-browser/internal/collector"
	"asset-browser/internal/logging"
	"asset-browser/internal/queue"
	"asset-browser/internal/records"
	"asset-browser/internal/sidecar"
	"asset-browser/internal/startup"
	"asset-browser/internal/status"
	"asset-browser/internal/thumbs"
	"asset-browser/internal/worker"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize the image pipeline
	thumbs.InitVips()
	defer thumbs.ShutdownVips()
	startup.LogThumbnailInit(config.ThumbnailsEnabled, thumbs.IsVipsAvailable())

	// Initialize the sidecar store
	storeStart := time.Now()
	store, err := sidecar.New(context.Background(), config.SidecarPath)
	if err != nil {
		startup.LogFatal("Failed to initialize sidecar store: %v", err)
	}
	defer store.Close()
	startup.LogStoreInit(time.Since(storeStart))

	// The collection owns every record; workers only ever hold weak
	// references into it.
	coll := records.NewCollection()
	imageCache := thumbs.NewImageCache()
	placeholder, placeholderBg := placeholderImage()

	// Workers, one dedicated thread each
	startup.LogWorkersInit(5)

	infoToken := worker.NewToken()
	infoStep := worker.NewInfoWorker(infoToken, store, config.ThumbnailDir)
	infoWorker := worker.New("metadata", infoToken, infoStep, coll.NotifyItemReady)
	infoCtrl := worker.NewController(infoWorker, config.InfoInterval)

	thumbToken := worker.NewToken()
	thumbStep := worker.NewThumbnailWorker(thumbToken, imageCache, thumbs.NewGenerator())
	thumbWorker := worker.New("thumbnail", thumbToken, thumbStep, coll.NotifyItemReady)
	thumbCtrl := worker.NewController(thumbWorker, config.ThumbnailInterval)

	folderToken := worker.NewToken()
	folderStep := worker.NewFolderCountWorker(folderToken, coll.NotifyItemReady)
	folderWorker := worker.New("foldercount", folderToken, folderStep, nil)
	folderCtrl := worker.NewController(folderWorker, config.FolderInterval)

	// The sweeper reconciles whatever the queue-driven workers missed. It
	// has its own token so a queue reset does not cancel a sweep.
	sweepToken := worker.NewToken()
	sweepStep := worker.NewInfoWorker(sweepToken, store, config.ThumbnailDir)
	sweeper := worker.NewSweeper(coll, sweepToken, sweepStep, config.SweepInterval)
	sweeper.SetOnFullyLoaded(func() {
		// Final values are in; sort once on them. The generation bump
		// expires any straggling references.
		coll.Sort(func(a, b *records.Record) bool {
			if a.Type != b.Type {
				return a.Type == records.FolderItem
			}
			return a.DisplayName() < b.DisplayName()
		})
		coll.NotifyDatasetEnriched()
		logging.Info("Dataset fully enriched (%d records)", coll.Len())
	})

	monitor := worker.NewMonitor(config.MonitorInterval)
	monitor.Register(infoWorker.Queue())
	monitor.Register(thumbWorker.Queue())
	monitor.Register(folderWorker.Queue())

	infoCtrl.Start()
	thumbCtrl.Start()
	folderCtrl.Start()
	sweeper.Start()
	monitor.Start()
	startup.LogWorkersStarted()

	// Status server
	queues := []*queue.Unique{infoWorker.Queue(), thumbWorker.Queue(), folderWorker.Queue()}
	srv := status.New(config.Port, monitor, coll, queues, config.MetricsEnabled, config.LogHealthChecks)
	startup.LogHTTPRoutes(srv.Router(), config.LogHealthChecks)

	// Initial scan and seeding
	scanStart := time.Now()
	scanner := collector.New(collector.Options{
		RowHeight:             config.RowHeight,
		Placeholder:           placeholder,
		PlaceholderBackground: placeholderBg,
	})
	recs, err := scanner.Scan(context.Background(), config.BrowseDir)
	if err != nil {
		startup.LogFatal("Initial scan failed: %v", err)
	}
	coll.Reset(recs)
	startup.LogScanComplete(config.BrowseDir, len(recs), time.Since(scanStart))

	seedQueues(coll, config.BrowseDir, infoCtrl, thumbCtrl, folderCtrl)
	srv.SetReady()

	// Start graceful shutdown handler
	go handleShutdown(srv, []*worker.Controller{infoCtrl, thumbCtrl, folderCtrl}, sweeper, monitor)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.Run(); err != nil {
		startup.LogFatal("Server error: %v", err)
	}
}

// seedQueues submits every record to the workers that apply to it: all
// records to metadata, files and sequences to thumbnails, and the browse
// root to the folder counter (which fans out to its children itself).
func seedQueues(coll *records.Collection, browseDir string, info, thumb, folder *worker.Controller) {
	for _, ref := range coll.Refs() {
		rec := ref.Get()
		if rec == nil {
			continue
		}
		if err := info.Put(ref, false); err != nil {
			logging.Warn("could not queue %s for metadata: %v", rec.Path, err)
		}
		switch rec.Type {
		case records.FolderItem:
			if rec.Path == browseDir {
				if err := folder.Put(ref, false); err != nil {
					logging.Warn("could not queue %s for folder counts: %v", rec.Path, err)
				}
			}
		default:
			if err := thumb.Put(ref, false); err != nil {
				logging.Warn("could not queue %s for thumbnails: %v", rec.Path, err)
			}
		}
	}
}

// placeholderImage builds the flat fallback thumbnail applied when
// generation fails or never runs.
func placeholderImage() (image.Image, color.NRGBA) {
	bg := color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, bg)
		}
	}
	return img, bg
}

func handleShutdown(srv *status.Server, controllers []*worker.Controller, sweeper *worker.Sweeper, monitor *worker.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping workers")
	for _, c := range controllers {
		c.RequestReset()
		c.Stop()
	}
	startup.LogShutdownStepComplete("Workers stopped")

	startup.LogShutdownStep("Stopping background sweeper")
	sweeper.RequestReset()
	sweeper.Stop()
	startup.LogShutdownStepComplete("Background sweeper stopped")

	startup.LogShutdownStep("Stopping progress monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Progress monitor stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
