// Package tui provides a Bubble Tea terminal user interface for manga-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	mangaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of progress messages kept on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// formats is the order the format option cycles through.
var formats = []model.Format{model.FormatNone, model.FormatPDF, model.FormatEPUB, model.FormatCBZ}

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateResolving
	StateSelecting
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	selection textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *slog.Logger
	logs      []LogEntry
	err       error
	selectErr error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// events carries progress from worker goroutines into Update.
	events chan download.ProgressEvent

	app      *app.App
	manga    *model.Manga
	selected []model.Chapter
	report   app.Report
	counters download.Progress

	// Options
	format      model.Format
	deleteAfter bool
	verbose     bool

	width  int
	height int
}

// NewModel creates a new TUI model. logger may be nil.
func NewModel(settings *config.Settings, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "https://kunmanga.com/manga/title/"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sel := textinput.New()
	sel.Placeholder = "all, 5, 1-10, 12.5"
	sel.CharLimit = 200
	sel.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		textInput:   ti,
		selection:   sel,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		logger:      logger,
		logs:        make([]LogEntry, 0),
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan download.ProgressEvent, 256),
		format:      settings.Format(),
		deleteAfter: settings.DeleteAfterConversion,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// Message types
type (
	// ProgressMsg is sent when a progress event arrives.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ResolvedMsg is sent when the manga page has been resolved.
	ResolvedMsg struct {
		App   *app.App
		Manga *model.Manga
		Err   error
	}

	// DownloadDoneMsg is sent when the download and conversion finished.
	DownloadDoneMsg struct {
		Report app.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			m.closeApp()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateSelecting:
				m.closeApp()
				m.state = StateInput
				m.textInput.Focus()
				return m, nil
			case StateResolving, StateDownloading:
				// The pending command reports back once workers stop.
				m.cancel()
				m.addLog(LogEntry{Message: "Cancelling...", Level: download.LevelWarning})
				return m, nil
			}

		case "enter":
			switch m.state {
			case StateInput:
				url := strings.TrimSpace(m.textInput.Value())
				if url == "" {
					return m, nil
				}
				m.state = StateResolving
				return m, tea.Batch(m.resolve(url), m.spinner.Tick)

			case StateSelecting:
				expr := strings.TrimSpace(m.selection.Value())
				if expr == "" {
					expr = "all"
				}
				selected, err := model.SelectChapters(m.manga.Chapters, expr)
				if err != nil {
					m.selectErr = err
					return m, nil
				}
				m.selectErr = nil
				m.selected = selected
				m.state = StateDownloading
				return m, tea.Batch(m.startDownload(), m.tickProgress())
			}

		case "tab":
			if m.state == StateInput || m.state == StateSelecting {
				m.format = nextFormat(m.format)
				return m, nil
			}

		case "ctrl+d":
			if m.state == StateInput || m.state == StateSelecting {
				m.deleteAfter = !m.deleteAfter
				return m, nil
			}

		case "ctrl+o":
			if m.state == StateInput || m.state == StateSelecting {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for new download
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.addLog(LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		}
		cmds = append(cmds, waitForEvent(m.events))

	case ResolvedMsg:
		switch {
		case msg.Err != nil:
			if msg.App != nil {
				_ = msg.App.Close()
			}
			m.fail(msg.Err)
		case m.ctx.Err() != nil:
			if msg.App != nil {
				_ = msg.App.Close()
			}
			m.fail(errCancelled)
		default:
			m.app = msg.App
			m.manga = msg.Manga
			m.state = StateSelecting
			m.textInput.Blur()
			m.selection.SetValue("all")
			m.selection.Focus()
		}

	case DownloadDoneMsg:
		m.report = msg.Report
		if m.app != nil {
			m.counters = m.app.Progress()
		}
		m.closeApp()
		switch {
		case m.ctx.Err() != nil:
			m.fail(errCancelled)
		case msg.Err != nil:
			m.fail(msg.Err)
		default:
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from the app
		if m.app != nil && m.state == StateDownloading {
			m.counters = m.app.Progress()
			progressCmd := m.progress.SetPercent(percent(m.counters))
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text inputs
	switch m.state {
	case StateInput:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	case StateSelecting:
		var cmd tea.Cmd
		m.selection, cmd = m.selection.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) addLog(entry LogEntry) {
	m.logs = append(m.logs, entry)
	// Keep only the last maxLogs entries
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) fail(err error) {
	m.state = StateError
	m.err = err
}

func (m *Model) closeApp() {
	if m.app == nil {
		return
	}
	if err := m.app.Close(); err != nil && m.logger != nil {
		m.logger.Warn("close app", "error", err)
	}
	m.app = nil
}

func (m *Model) reset() {
	m.closeApp()
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.selectErr = nil
	m.manga = nil
	m.selected = nil
	m.report = app.Report{}
	m.counters = download.Progress{}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	m.selection.Blur()
}

// percent returns the share of images that finished, successfully or not.
func percent(p download.Progress) float64 {
	if p.ImagesTotal == 0 {
		return 0
	}
	return float64(p.ImagesDone+p.ImagesFailed) / float64(p.ImagesTotal)
}

func nextFormat(f model.Format) model.Format {
	for i, candidate := range formats {
		if candidate == f {
			return formats[(i+1)%len(formats)]
		}
	}
	return model.FormatNone
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent blocks until the next progress event.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📖 Manga Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download manga chapters as images, PDF, EPUB or CBZ"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateSelecting:
		b.WriteString(m.viewSelecting())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewOptions() string {
	var b strings.Builder
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Convert to: %s (tab)\n", m.format))
	b.WriteString(fmt.Sprintf("  %s Delete images after conversion (ctrl+d)\n", checkbox(m.deleteAfter)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter manga URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.viewOptions())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching chapter list..."))
	b.WriteString("\n\n")

	// Show logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSelecting() string {
	var b strings.Builder

	chapters := m.manga.Chapters
	b.WriteString(mangaStyle.Render(m.manga.Title))
	b.WriteString("\n")
	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d chapter(s), %s to %s",
		len(chapters), chapters[0].Label(), chapters[len(chapters)-1].Label())))
	b.WriteString("\n\n")

	b.WriteString(subtitleStyle.Render("Chapters to download:"))
	b.WriteString("\n\n")
	b.WriteString(m.selection.View())
	b.WriteString("\n")
	if m.selectErr != nil {
		b.WriteString(errorStyle.Render(m.selectErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.viewOptions())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(mangaStyle.Render(fmt.Sprintf("%s: %d chapter(s)", m.manga.Title, len(m.selected))))
	b.WriteString("\n\n")

	// Progress bar
	b.WriteString(m.progress.ViewAs(percent(m.counters)))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Chapters: %d/%d | Images: %d/%d (%d failed) | Downloaded: %.2f MB",
		m.counters.ChaptersDone,
		m.counters.ChaptersTotal,
		m.counters.ImagesDone,
		m.counters.ImagesTotal,
		m.counters.ImagesFailed,
		float64(m.counters.BytesReceived)/1024/1024,
	)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	s := m.report.Summary
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Title: %s\n"+
			"Chapters: %d/%d\n"+
			"Images: %d (%d failed)\n"+
			"Converted: %d\n"+
			"Size: %.2f MB",
		s.Title,
		s.Succeeded(),
		len(s.Chapters),
		s.ImagesSucceeded(),
		s.ImagesFailed(),
		m.report.Converted(),
		float64(m.counters.BytesReceived)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: fetch chapters • tab: format • ctrl+d: delete after • ctrl+o: verbose • esc: quit"
	case StateSelecting:
		return "enter: download • tab: format • ctrl+d: delete after • esc: back"
	case StateResolving, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// resolve creates an App for this run and fetches the chapter list.
func (m Model) resolve(url string) tea.Cmd {
	settings := *m.settings
	ctx := m.ctx
	events := m.events
	logger := m.logger

	return func() tea.Msg {
		a, err := app.New(&settings, logger, func(event download.ProgressEvent) {
			// Events are dropped while the buffer is full.
			select {
			case events <- event:
			default:
			}
		})
		if err != nil {
			return ResolvedMsg{Err: err}
		}

		manga, err := a.Resolve(ctx, url)
		if err != nil {
			return ResolvedMsg{App: a, Err: err}
		}
		return ResolvedMsg{App: a, Manga: manga}
	}
}

// startDownload runs the download in the background.
func (m Model) startDownload() tea.Cmd {
	a := m.app
	ctx := m.ctx
	manga := m.manga
	chapters := m.selected
	opts := app.Options{Format: m.format, DeleteAfter: m.deleteAfter}

	return func() tea.Msg {
		if a == nil {
			return DownloadDoneMsg{Err: errors.New("no chapter list loaded")}
		}
		report, err := a.Download(ctx, manga, chapters, opts)
		return DownloadDoneMsg{Report: report, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger *slog.Logger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
