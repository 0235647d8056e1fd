package main

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/history"
	"github.com/handiism/manga-downloader/internal/model"
)

// progressPrinter returns a progress callback that writes one line per
// event. Verbose events are dropped unless verbose is set.
func progressPrinter(w io.Writer, verbose bool) func(download.ProgressEvent) {
	var mu sync.Mutex
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		var prefix string
		switch event.Level {
		case download.LevelError:
			prefix = "✗ "
		case download.LevelWarning:
			prefix = "! "
		case download.LevelSuccess:
			prefix = "✓ "
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, prefix+event.Message)
	}
}

func chapterStatus(r model.ChapterResult) string {
	switch {
	case r.Err != nil:
		return "failed: " + r.Err.Error()
	case r.Dir == "":
		return "no images"
	case r.Failed > 0:
		return "incomplete"
	default:
		return "ok"
	}
}

func conversionStatus(c app.Conversion) (status, artifact string) {
	switch {
	case c.Err != nil:
		return "failed: " + c.Err.Error(), ""
	case c.Result.Skipped:
		return "skipped, no images", ""
	}

	status = "ok"
	if c.Result.Cleanup != nil {
		switch {
		case c.Result.Cleanup.Err != nil:
			status = "ok, cleanup failed: " + c.Result.Cleanup.Err.Error()
		case c.Result.Cleanup.DirRemoved:
			status = "ok, images removed"
		default:
			status = fmt.Sprintf("ok, %d images removed", len(c.Result.Cleanup.Removed))
		}
	}
	return status, c.Result.Artifact.Path
}

func renderReport(report app.Report) string {
	artifacts := make(map[string]string, len(report.Conversions))
	for _, c := range report.Conversions {
		if c.Err == nil && c.Result.Artifact != nil {
			artifacts[c.Chapter.URL] = c.Result.Artifact.Path
		}
	}

	rows := make([][]string, 0, len(report.Summary.Chapters))
	for _, r := range report.Summary.Chapters {
		rows = append(rows, []string{
			r.Chapter.Label(),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			chapterStatus(r),
			artifacts[r.Chapter.URL],
		})
	}

	table := renderTable(
		[]string{"Chapter", "Images", "Failed", "Status", "Artifact"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight},
	)

	s := report.Summary
	return fmt.Sprintf("%s\n%s: %d/%d chapters, %d images (%d failed), %d converted in %s",
		table,
		s.Title,
		s.Succeeded(),
		len(s.Chapters),
		s.ImagesSucceeded(),
		s.ImagesFailed(),
		report.Converted(),
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)
}

func renderConversions(conversions []app.Conversion) string {
	rows := make([][]string, 0, len(conversions))
	for _, c := range conversions {
		status, artifact := conversionStatus(c)
		pages := ""
		if c.Result.Artifact != nil {
			pages = strconv.Itoa(c.Result.Artifact.Pages)
		}
		rows = append(rows, []string{c.Chapter.Label(), pages, status, artifact})
	}
	return renderTable(
		[]string{"Chapter", "Pages", "Status", "Artifact"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}

func renderChapters(manga *model.Manga) string {
	rows := make([][]string, 0, len(manga.Chapters))
	for i, ch := range manga.Chapters {
		rows = append(rows, []string{strconv.Itoa(i + 1), ch.Label(), ch.URL})
	}
	return renderTable([]string{"#", "Chapter", "URL"}, rows, []columnAlignment{alignRight, alignRight})
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Title,
			run.Format,
			fmt.Sprintf("%d/%d", run.ChaptersOK, run.ChaptersOK+run.ChaptersFailed),
			fmt.Sprintf("%d/%d", run.ImagesOK, run.ImagesOK+run.ImagesFailed),
			run.Duration().Round(time.Second).String(),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Title", "Format", "Chapters", "Images", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func renderRunChapters(run history.Run) string {
	rows := make([][]string, 0, len(run.Chapters))
	for _, ch := range run.Chapters {
		status := "ok"
		switch {
		case ch.Error != "":
			status = "failed: " + ch.Error
		case ch.ImagesFailed > 0:
			status = "incomplete"
		}
		rows = append(rows, []string{
			model.FormatNumber(ch.Number),
			strconv.Itoa(ch.ImagesOK),
			strconv.Itoa(ch.ImagesFailed),
			status,
			ch.Artifact,
		})
	}
	return renderTable(
		[]string{"Chapter", "Images", "Failed", "Status", "Artifact"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight},
	)
}
