// Package download provides the download orchestration logic for
// fetching manga chapters and their page images.
//
// # Manager
//
// The Manager coordinates the download process:
//
//  1. Resolve each chapter's image URLs through an ImageResolver
//  2. Create the chapter directory
//  3. Download images concurrently, with retry
//  4. Report per-chapter results in a BatchSummary
//
// # Basic Usage
//
//	manga, err := download.ResolveManga(ctx, source, mangaURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manager := download.NewManager(settings, client, source, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	summary := manager.DownloadChapters(ctx, manga.Title, manga.Chapters)
//	fmt.Printf("%d chapters ok, %d failed\n", summary.Succeeded(), summary.Failed())
//
// # Concurrency
//
// The Manager uses two independent concurrency limits:
//   - MaxConcurrentChapters: How many chapters to download in parallel
//   - MaxConcurrentImages: How many images per chapter to download in parallel
//
// At most MaxConcurrentChapters × MaxConcurrentImages transfers are in
// flight at once. Page file names are fixed from the position of each URL
// before any transfer starts, so completion order does not matter.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Counters are available at any time through Manager.Progress.
//
// # Retry Logic
//
// Failed image downloads are retried up to settings.DownloadMaxAttempts
// times in total, waiting settings.DownloadRetryCooldown seconds between
// attempts. A failed image never leaves a partial file behind.
package download
