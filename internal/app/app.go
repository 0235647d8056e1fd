package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/convert"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/history"
	mangahttp "github.com/handiism/manga-downloader/internal/http"
	ioutils "github.com/handiism/manga-downloader/internal/io"
	"github.com/handiism/manga-downloader/internal/logging"
	"github.com/handiism/manga-downloader/internal/model"
	"github.com/handiism/manga-downloader/internal/source"
)

// ErrIncompleteChapter is reported for chapters that are not converted after
// a download because some of their images failed.
var ErrIncompleteChapter = errors.New("chapter has failed images")

// Options control one download run.
type Options struct {
	Format      model.Format
	DeleteAfter bool
}

// Conversion is the outcome of converting one chapter after a run.
type Conversion struct {
	Chapter model.Chapter
	Result  convert.Result
	Err     error
}

// Report describes a finished run.
type Report struct {
	// RunID is empty when history is disabled or could not be written.
	RunID string

	Manga       *model.Manga
	Summary     model.BatchSummary
	Conversions []Conversion

	StartedAt  time.Time
	FinishedAt time.Time
}

// Converted returns the number of artifacts written.
func (r Report) Converted() int {
	n := 0
	for _, c := range r.Conversions {
		if c.Err == nil && c.Result.Artifact != nil {
			n++
		}
	}
	return n
}

// App wires the source, download, conversion and history layers together
// for the command line and terminal front ends.
//
// Example usage:
//
//	a, err := app.New(settings, logger, onProgress)
//	defer a.Close()
//
//	manga, err := a.Resolve(ctx, "https://kunmanga.com/manga/some-title/")
//	chapters, err := model.SelectChapters(manga.Chapters, "1-5")
//	report, err := a.Download(ctx, manga, chapters, app.Options{Format: model.FormatCBZ})
type App struct {
	settings   *config.Settings
	client     *mangahttp.Client
	manager    *download.Manager
	converter  *convert.Converter
	history    *history.Store
	logger     *slog.Logger
	onProgress func(download.ProgressEvent)
}

// New creates an App from validated settings. logger and onProgress may be
// nil. A history database that cannot be opened disables history with a
// warning instead of failing.
func New(settings *config.Settings, logger *slog.Logger, onProgress func(download.ProgressEvent)) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	client, err := mangahttp.NewClient(settings.ToHTTPOptions())
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	a := &App{
		settings:   settings,
		client:     client,
		converter:  convert.NewConverter(settings.DownloadsPath, logger),
		logger:     logging.NewComponentLogger(logger, "app"),
		onProgress: onProgress,
	}
	a.manager = download.NewManager(settings, client, source.NewKunManga(client, "", logger), logger, onProgress)

	if settings.HistoryPath != "" {
		store, err := history.Open(settings.HistoryPath)
		if err != nil {
			a.logger.Warn("history disabled", "path", settings.HistoryPath, "error", err)
		} else {
			a.history = store
		}
	}
	return a, nil
}

// Close releases the history database.
func (a *App) Close() error {
	return a.history.Close()
}

// Settings returns the settings the App was created with.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// History returns the run history store, or nil when history is disabled.
func (a *App) History() *history.Store {
	return a.history
}

// Progress returns the download counters of the current run.
func (a *App) Progress() download.Progress {
	return a.manager.Progress()
}

// Resolve fetches the title and chapter list of a manga page.
//
// Cookies from the configured cookies file are applied to the manga's site
// first. The returned manga is never nil; download.ErrNoChapters is returned
// when nothing was found.
func (a *App) Resolve(ctx context.Context, mangaURL string) (*model.Manga, error) {
	base, err := siteBase(mangaURL)
	if err != nil {
		return &model.Manga{URL: mangaURL}, err
	}

	if err := source.ApplyCookies(a.client, a.settings.CookiesPath, base, a.logger); err != nil {
		return &model.Manga{URL: mangaURL}, fmt.Errorf("load cookies: %w", err)
	}

	a.progress(download.ProgressEvent{Message: fmt.Sprintf("Fetching %s", mangaURL), Level: download.LevelInfo})
	manga, err := download.ResolveManga(ctx, source.NewKunManga(a.client, base, a.logger), mangaURL)
	if err != nil {
		return manga, err
	}
	a.progress(download.ProgressEvent{
		Message: fmt.Sprintf("Found %q with %d chapters", manga.Title, len(manga.Chapters)),
		Level:   download.LevelSuccess,
	})
	return manga, nil
}

// Download downloads chapters of manga, records the run and converts every
// chapter whose images were all downloaded.
//
// Chapters with failed images keep their directory untouched and are
// reported with ErrIncompleteChapter. ConvertChapters converts them on
// request.
//
// The title directory is locked for the duration of the run. Conversion is
// skipped when ctx is cancelled; in that case the report is still returned
// together with ctx.Err().
func (a *App) Download(ctx context.Context, manga *model.Manga, chapters []model.Chapter, opts Options) (Report, error) {
	report := Report{Manga: manga}
	if manga == nil {
		return report, download.ErrNoChapters
	}

	lock, err := ioutils.LockTitle(a.settings.DownloadsPath, manga.Title)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn("release title lock", "title", manga.Title, "error", err)
		}
	}()

	report.StartedAt = time.Now()
	a.progress(download.ProgressEvent{Message: fmt.Sprintf("Downloading %d chapters of %s", len(chapters), manga.Title), Level: download.LevelInfo})
	report.Summary = a.manager.DownloadChapters(ctx, manga.Title, chapters)
	report.FinishedAt = time.Now()

	report.RunID = a.record(ctx, manga, report, opts.Format)

	if opts.Format != model.FormatNone {
		report.Conversions = a.convertResults(ctx, report, opts)
	}

	return report, ctx.Err()
}

// ConvertChapters converts already downloaded chapters of title.
//
// Chapters without images are reported as skipped. ErrNoImages is returned
// when no chapter had anything to convert.
func (a *App) ConvertChapters(ctx context.Context, title string, numbers []float64, opts Options) ([]Conversion, error) {
	if opts.Format == model.FormatNone {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownFormat, opts.Format)
	}

	conversions := make([]Conversion, 0, len(numbers))
	for _, number := range numbers {
		if err := ctx.Err(); err != nil {
			return conversions, err
		}
		conversions = append(conversions, a.convertOne(title, model.Chapter{Number: number}, opts))
	}

	for _, c := range conversions {
		if c.Err != nil || !c.Result.Skipped {
			return conversions, nil
		}
	}
	return conversions, convert.ErrNoImages
}

func (a *App) convertResults(ctx context.Context, report Report, opts Options) []Conversion {
	var conversions []Conversion
	for _, r := range report.Summary.Chapters {
		if r.Err != nil || r.Dir == "" {
			continue
		}
		if ctx.Err() != nil {
			a.logger.Info("conversion skipped, run cancelled", "chapter", r.Chapter.Label())
			break
		}

		if r.Failed > 0 {
			err := fmt.Errorf("%w: %d of %d images failed", ErrIncompleteChapter, r.Failed, r.Total())
			conversions = append(conversions, Conversion{Chapter: r.Chapter, Err: err})
			a.progress(download.ProgressEvent{
				Message: fmt.Sprintf("Chapter %s not converted, %d of %d images failed", r.Chapter.Label(), r.Failed, r.Total()),
				Level:   download.LevelWarning,
			})
			continue
		}

		c := a.convertOne(report.Summary.Title, r.Chapter, opts)
		conversions = append(conversions, c)

		if report.RunID != "" && c.Result.Artifact != nil {
			err := a.history.SetArtifact(context.WithoutCancel(ctx), report.RunID, r.Chapter.URL, c.Result.Artifact.Path)
			if err != nil {
				a.logger.Warn("record artifact", "chapter", r.Chapter.Label(), "error", err)
			}
		}
	}
	return conversions
}

func (a *App) convertOne(title string, chapter model.Chapter, opts Options) Conversion {
	label := chapter.Label()
	res, err := a.converter.ConvertChapter(title, chapter.Number, opts.Format, opts.DeleteAfter)
	c := Conversion{Chapter: chapter, Result: res, Err: err}

	switch {
	case err != nil:
		a.progress(download.ProgressEvent{Message: fmt.Sprintf("Converting chapter %s failed: %v", label, err), Level: download.LevelError})
	case res.Skipped:
		a.progress(download.ProgressEvent{Message: fmt.Sprintf("Chapter %s has no images to convert", label), Level: download.LevelWarning})
	default:
		a.progress(download.ProgressEvent{Message: fmt.Sprintf("Created %s", res.Artifact.Path), Level: download.LevelSuccess})
		if res.Cleanup != nil && res.Cleanup.Err != nil {
			a.progress(download.ProgressEvent{Message: fmt.Sprintf("Cleanup of chapter %s incomplete: %v", label, res.Cleanup.Err), Level: download.LevelWarning})
		}
	}
	return c
}

// record stores the run in history. Cancellation of ctx does not prevent
// the record from being written.
func (a *App) record(ctx context.Context, manga *model.Manga, report Report, format model.Format) string {
	if a.history == nil {
		return ""
	}

	run := history.NewRun(manga.URL, report.Summary, format, report.StartedAt, report.FinishedAt)
	if err := a.history.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		a.logger.Warn("record run", "title", manga.Title, "error", err)
		return ""
	}
	a.logger.Debug("run recorded", "run_id", run.ID)
	return run.ID
}

func (a *App) progress(event download.ProgressEvent) {
	if a.onProgress != nil {
		a.onProgress(event)
	}
}

// siteBase returns the scheme and host of rawURL.
func siteBase(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse manga URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("parse manga URL: %q is not an absolute URL", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
