package tui

import (
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/model"
)

func newTestModel() Model {
	settings := config.DefaultSettings()
	settings.DownloadsPath = "/tmp/manga"
	return NewModel(settings, nil)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testManga() *model.Manga {
	return &model.Manga{
		Title: "Solo Leveling",
		URL:   "https://kunmanga.com/manga/solo/",
		Chapters: []model.Chapter{
			{Number: 1, URL: "c1"},
			{Number: 2, URL: "c2"},
			{Number: 2.5, URL: "c2-5"},
		},
	}
}

func TestModel_Options(t *testing.T) {
	m := newTestModel()
	assert.Equal(t, model.FormatNone, m.format)

	m = update(t, m, key("tab"))
	assert.Equal(t, model.FormatPDF, m.format)
	m = update(t, m, key("tab"))
	m = update(t, m, key("tab"))
	assert.Equal(t, model.FormatCBZ, m.format)
	m = update(t, m, key("tab"))
	assert.Equal(t, model.FormatNone, m.format)

	m = update(t, m, key("ctrl+d"))
	assert.True(t, m.deleteAfter)
	m = update(t, m, key("ctrl+o"))
	assert.True(t, m.verbose)

	assert.Empty(t, m.textInput.Value(), "option keys are not typed into the URL")
	assert.Contains(t, m.View(), "[×] Delete images after conversion")
}

func TestModel_EnterWithoutURL(t *testing.T) {
	m := update(t, newTestModel(), key("enter"))
	assert.Equal(t, StateInput, m.state)
}

func TestModel_Resolved(t *testing.T) {
	m := newTestModel()
	m.state = StateResolving

	m = update(t, m, ResolvedMsg{Manga: testManga()})
	assert.Equal(t, StateSelecting, m.state)
	assert.Equal(t, "all", m.selection.Value())
	assert.Contains(t, m.View(), "Found 3 chapter(s), 1.0 to 2.5")

	failed := update(t, newTestModel(), ResolvedMsg{Err: download.ErrNoChapters})
	assert.Equal(t, StateError, failed.state)
	assert.Contains(t, failed.View(), download.ErrNoChapters.Error())
}

func TestModel_Selection(t *testing.T) {
	m := newTestModel()
	m = update(t, m, ResolvedMsg{Manga: testManga()})

	m.selection.SetValue("40")
	m = update(t, m, key("enter"))
	assert.Equal(t, StateSelecting, m.state)
	require.Error(t, m.selectErr)
	assert.True(t, errors.Is(m.selectErr, model.ErrInvalidSelection))

	m.selection.SetValue("2-2.5")
	m = update(t, m, key("enter"))
	assert.Equal(t, StateDownloading, m.state)
	assert.NoError(t, m.selectErr)
	require.Len(t, m.selected, 2)
	assert.Equal(t, "c2", m.selected[0].URL)
	assert.Contains(t, m.View(), "Solo Leveling: 2 chapter(s)")
}

func TestModel_EscBackFromSelection(t *testing.T) {
	m := update(t, newTestModel(), ResolvedMsg{Manga: testManga()})
	m = update(t, m, key("esc"))
	assert.Equal(t, StateInput, m.state)
	assert.True(t, m.textInput.Focused())
}

func TestModel_ProgressLog(t *testing.T) {
	m := newTestModel()

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "retrying", Level: download.LevelVerbose}})
	assert.Empty(t, m.logs, "verbose events are hidden by default")

	for i := 0; i < maxLogs+5; i++ {
		m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: fmt.Sprintf("event %d", i), Level: download.LevelInfo}})
	}
	require.Len(t, m.logs, maxLogs)
	assert.Equal(t, "event 5", m.logs[0].Message)
	assert.Equal(t, fmt.Sprintf("event %d", maxLogs+4), m.logs[maxLogs-1].Message)
}

func TestModel_DownloadDone(t *testing.T) {
	m := update(t, newTestModel(), ResolvedMsg{Manga: testManga()})
	m = update(t, m, key("enter"))
	require.Equal(t, StateDownloading, m.state)

	report := app.Report{Summary: model.BatchSummary{
		Title: "Solo Leveling",
		Chapters: []model.ChapterResult{
			{Chapter: model.Chapter{Number: 1, URL: "c1"}, Succeeded: 5},
			{Chapter: model.Chapter{Number: 2, URL: "c2"}, Succeeded: 3, Failed: 1},
		},
	}}
	done := update(t, m, DownloadDoneMsg{Report: report})
	assert.Equal(t, StateComplete, done.state)
	view := done.View()
	assert.Contains(t, view, "Chapters: 2/2")
	assert.Contains(t, view, "Images: 8 (1 failed)")

	done = update(t, done, key("r"))
	assert.Equal(t, StateInput, done.state)
	assert.Nil(t, done.manga)

	failed := update(t, m, DownloadDoneMsg{Err: errors.New("disk full")})
	assert.Equal(t, StateError, failed.state)
	assert.Contains(t, failed.View(), "disk full")
}

func TestModel_CancelledDownload(t *testing.T) {
	m := update(t, newTestModel(), ResolvedMsg{Manga: testManga()})
	m = update(t, m, key("enter"))
	m = update(t, m, key("esc"))
	assert.Equal(t, StateDownloading, m.state, "waits for workers to stop")

	m = update(t, m, DownloadDoneMsg{})
	assert.Equal(t, StateError, m.state)
	assert.ErrorIs(t, m.err, errCancelled)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(download.Progress{}))
	assert.Equal(t, 0.5, percent(download.Progress{ImagesTotal: 10, ImagesDone: 4, ImagesFailed: 1}))
}
