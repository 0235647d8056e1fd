package download

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/manga-downloader/internal/config"
	ioutils "github.com/handiism/manga-downloader/internal/io"
	"github.com/handiism/manga-downloader/internal/logging"
	"github.com/handiism/manga-downloader/internal/model"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Progress is a snapshot of the Manager's counters.
type Progress struct {
	ChaptersTotal int32
	ChaptersDone  int32
	ImagesTotal   int32
	ImagesDone    int32
	ImagesFailed  int32
	BytesReceived int64
}

// Manager coordinates chapter downloads.
//
// Two independent pools bound the work: at most MaxConcurrentChapters
// chapters run at once, and each running chapter fetches at most
// MaxConcurrentImages images at once.
type Manager struct {
	settings *config.Settings
	fetcher  *Fetcher
	resolver ImageResolver
	logger   *slog.Logger

	chaptersTotal int32
	chaptersDone  int32
	imagesTotal   int32
	imagesDone    int32
	imagesFailed  int32
	receivedBytes int64

	chapterLimit int
	imageLimit   int

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
//
// client performs the actual transfers and is shared by every fetch.
// logger may be nil. onProgress is called from worker goroutines and must be
// safe for concurrent use. Concurrency limits below 1 are treated as 1.
func NewManager(settings *config.Settings, client FileDownloader, resolver ImageResolver, logger *slog.Logger, onProgress func(ProgressEvent)) *Manager {
	m := &Manager{
		settings:     settings,
		resolver:     resolver,
		logger:       logging.NewComponentLogger(logger, "download"),
		chapterLimit: max(settings.MaxConcurrentChapters, 1),
		imageLimit:   max(settings.MaxConcurrentImages, 1),
		onProgress:   onProgress,
	}

	m.fetcher = NewFetcher(client, FetcherOptions{
		MaxAttempts: settings.DownloadMaxAttempts,
		Cooldown:    settings.RetryCooldown(),
		Exponent:    settings.DownloadRetryExponent,
	})
	m.fetcher.OnBytes = func(delta int64) {
		atomic.AddInt64(&m.receivedBytes, delta)
	}
	m.fetcher.OnRetry = func(url string, attempt int, err error) {
		m.logger.Debug("retrying image", "url", url, "attempt", attempt, "error", err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s: %v", attempt, settings.DownloadMaxAttempts, url, err), Level: LevelVerbose})
	}

	return m
}

// Progress returns current download progress.
func (m *Manager) Progress() Progress {
	return Progress{
		ChaptersTotal: atomic.LoadInt32(&m.chaptersTotal),
		ChaptersDone:  atomic.LoadInt32(&m.chaptersDone),
		ImagesTotal:   atomic.LoadInt32(&m.imagesTotal),
		ImagesDone:    atomic.LoadInt32(&m.imagesDone),
		ImagesFailed:  atomic.LoadInt32(&m.imagesFailed),
		BytesReceived: atomic.LoadInt64(&m.receivedBytes),
	}
}

type chapterDone struct {
	index  int
	result model.ChapterResult
}

// DownloadChapters downloads every chapter of a title and returns once all
// of them have finished.
//
// Chapters are deduplicated by URL. A chapter whose number was already
// scheduled under another URL is not downloaded and is reported with
// ErrDuplicateChapter. A failing chapter never affects its siblings.
// Chapters not yet started when ctx is cancelled are reported with ctx.Err().
//
// The summary lists results in input order (after deduplication).
func (m *Manager) DownloadChapters(ctx context.Context, title string, chapters []model.Chapter) model.BatchSummary {
	unique := model.DedupeChapters(chapters)
	results := make([]model.ChapterResult, len(unique))
	done := make(chan chapterDone, len(unique))

	atomic.AddInt32(&m.chaptersTotal, int32(len(unique)))
	m.logger.Info("batch started", "title", title, "chapters", len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.chapterLimit)

	scheduled := make(map[string]string, len(unique))
	for i, chapter := range unique {
		label := chapter.Label()
		if first, ok := scheduled[label]; ok {
			err := fmt.Errorf("%w: chapter %s at %s already scheduled from %s", ErrDuplicateChapter, label, chapter.URL, first)
			result := model.ChapterResult{Chapter: chapter, Err: err}
			done <- chapterDone{index: i, result: result}
			m.chapterFinished(result)
			continue
		}
		scheduled[label] = chapter.URL

		if err := ctx.Err(); err != nil {
			result := model.ChapterResult{Chapter: chapter, Err: err}
			done <- chapterDone{index: i, result: result}
			m.chapterFinished(result)
			continue
		}

		i, chapter := i, chapter
		g.Go(func() error {
			result := m.DownloadChapter(gctx, title, chapter)
			done <- chapterDone{index: i, result: result}
			return nil // Continue with other chapters
		})
	}

	_ = g.Wait()
	close(done)

	for d := range done {
		results[d.index] = d.result
	}

	summary := model.BatchSummary{Title: title, Chapters: results}
	m.logger.Info("batch finished",
		"title", title,
		"chapters_ok", summary.Succeeded(),
		"chapters_failed", summary.Failed(),
		"images_ok", summary.ImagesSucceeded(),
		"images_failed", summary.ImagesFailed(),
	)
	return summary
}

// DownloadChapter downloads the images of one chapter into its directory.
//
// An empty image list is zero work: no directory is created and the result
// has no error. Resolution and directory errors are reported in
// ChapterResult.Err. Individual image failures are counted in Failed.
//
// DownloadChapter blocks until every image task has finished.
func (m *Manager) DownloadChapter(ctx context.Context, title string, chapter model.Chapter) (result model.ChapterResult) {
	result.Chapter = chapter
	label := chapter.Label()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("chapter %s: panic: %v", label, r)
			m.logger.Error("chapter panicked", "chapter", label, "panic", r)
		}
		m.chapterFinished(result)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	urls, err := m.resolver.ChapterImageURLs(ctx, chapter.URL)
	if err != nil {
		result.Err = fmt.Errorf("resolve images for chapter %s: %w", label, err)
		return result
	}
	if len(urls) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No images found for chapter %s", label), Level: LevelWarning})
		return result
	}

	dir, err := ioutils.EnsureChapterDir(m.settings.DownloadsPath, title, chapter.Number)
	if err != nil {
		result.Err = err
		return result
	}
	result.Dir = dir

	pages := make([]model.PageImage, len(urls))
	for i, u := range urls {
		pages[i] = model.PageImage{
			Chapter:  chapter,
			Index:    i + 1,
			URL:      u,
			FileName: ioutils.PageFileName(i+1, len(urls)),
		}
	}
	atomic.AddInt32(&m.imagesTotal, int32(len(pages)))
	m.progress(ProgressEvent{Message: fmt.Sprintf("Chapter %s: downloading %d images", label, len(pages)), Level: LevelInfo})

	outcomes := make(chan model.ImageOutcome, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.imageLimit)

	for _, page := range pages {
		page := page // capture
		dest := filepath.Join(dir, page.FileName)

		if err := ctx.Err(); err != nil {
			atomic.AddInt32(&m.imagesFailed, 1)
			outcomes <- model.ImageOutcome{Index: page.Index, URL: page.URL, Path: dest, Err: err}
			continue
		}

		g.Go(func() error {
			outcomes <- m.fetchPage(gctx, page, dest)
			return nil // Continue with other images
		})
	}

	_ = g.Wait()
	close(outcomes)

	for outcome := range outcomes {
		result.Images = append(result.Images, outcome)
		if outcome.OK() {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result
}

func (m *Manager) fetchPage(ctx context.Context, page model.PageImage, dest string) (outcome model.ImageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = model.ImageOutcome{Index: page.Index, URL: page.URL, Path: dest, Err: fmt.Errorf("panic: %v", r)}
		}
		if outcome.OK() {
			atomic.AddInt32(&m.imagesDone, 1)
			return
		}
		atomic.AddInt32(&m.imagesFailed, 1)
		m.logger.Warn("image failed", "chapter", page.Chapter.Label(), "page", page.Index, "url", page.URL, "error", outcome.Err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s page %d: %v", page.Chapter.Label(), page.Index, outcome.Err), Level: LevelError})
	}()

	outcome = m.fetcher.Fetch(ctx, page.URL, dest)
	outcome.Index = page.Index
	return outcome
}

func (m *Manager) chapterFinished(result model.ChapterResult) {
	atomic.AddInt32(&m.chaptersDone, 1)
	label := result.Chapter.Label()

	switch {
	case result.Err != nil:
		m.logger.Error("chapter failed", "chapter", label, "url", result.Chapter.URL, "error", result.Err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Chapter %s failed: %v", label, result.Err), Level: LevelError})
	case result.Failed > 0:
		m.logger.Warn("chapter incomplete", "chapter", label, "succeeded", result.Succeeded, "failed", result.Failed)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished chapter %s, %d of %d images failed", label, result.Failed, result.Total()), Level: LevelWarning})
	default:
		m.logger.Info("chapter finished", "chapter", label, "images", result.Succeeded)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded chapter %s", label), Level: LevelSuccess})
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
