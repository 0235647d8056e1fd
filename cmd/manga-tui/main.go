package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/logging"
	"github.com/handiism/manga-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Path to config file")
	logFlag := flag.String("log-file", "", "Write logs to this file (default: next to the history database)")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := openLogger(settings, *logFlag)
	defer closeLog()

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openLogger writes JSON logs to a file since the terminal belongs to the UI.
// Logging is disabled when the file cannot be opened.
func openLogger(settings *config.Settings, path string) (*slog.Logger, func()) {
	if path == "" {
		if settings.HistoryPath == "" {
			return logging.NewNop(), func() {}
		}
		path = filepath.Join(filepath.Dir(settings.HistoryPath), "manga-tui.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return logging.NewNop(), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return logging.NewNop(), func() {}
	}

	logger, err := logging.New(logging.Options{Level: settings.LogLevel, Format: "json", Output: f})
	if err != nil {
		_ = f.Close()
		return logging.NewNop(), func() {}
	}
	return logger, func() { _ = f.Close() }
}
