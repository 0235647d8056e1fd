package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/manga-downloader/internal/http"
	"github.com/handiism/manga-downloader/internal/model"
)

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath         string  `toml:"downloads_path"`
	MaxConcurrentChapters int     `toml:"max_concurrent_chapters"`
	MaxConcurrentImages   int     `toml:"max_concurrent_images"`
	DownloadMaxAttempts   int     `toml:"download_max_attempts"`
	DownloadRetryCooldown float64 `toml:"download_retry_cooldown"` // seconds
	DownloadRetryExponent float64 `toml:"download_retry_exponent"`

	// HTTP settings
	HTTPTimeout float64 `toml:"http_timeout"` // seconds
	UserAgent   string  `toml:"user_agent"`
	Referer     string  `toml:"referer"`
	CookiesPath string  `toml:"cookies_path"`

	// Conversion settings
	ConvertFormat         string `toml:"convert_format"` // none, pdf, epub, cbz
	DeleteAfterConversion bool   `toml:"delete_after_conversion"`

	// History and logging
	HistoryPath string `toml:"history_path"`
	LogLevel    string `toml:"log_level"`  // debug, info, warn, error
	LogFormat   string `toml:"log_format"` // auto, console, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		DownloadsPath:         "./downloads",
		MaxConcurrentChapters: 3,
		MaxConcurrentImages:   10,
		DownloadMaxAttempts:   3,
		DownloadRetryCooldown: 2.0,
		DownloadRetryExponent: 1.0,

		HTTPTimeout: 60,
		UserAgent:   http.DefaultUserAgent,
		Referer:     "https://kunmanga.com",
		CookiesPath: "cookies.json",

		ConvertFormat:         "none",
		DeleteAfterConversion: false,

		HistoryPath: defaultHistoryPath(),
		LogLevel:    "info",
		LogFormat:   "auto",
	}
}

// DefaultPath returns the default settings file location,
// $XDG_CONFIG_HOME/manga-downloader/config.toml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "manga-downloader", "config.toml")
}

func defaultHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(dir, "manga-downloader", "history.db")
}

// Load reads settings from a TOML file.
//
// A missing file yields DefaultSettings. Keys absent from the file keep
// their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the downloader cannot run with.
func (s *Settings) Validate() error {
	switch {
	case s.DownloadsPath == "":
		return fmt.Errorf("%w: downloads_path is empty", ErrInvalidSettings)
	case s.MaxConcurrentChapters < 1:
		return fmt.Errorf("%w: max_concurrent_chapters must be at least 1", ErrInvalidSettings)
	case s.MaxConcurrentImages < 1:
		return fmt.Errorf("%w: max_concurrent_images must be at least 1", ErrInvalidSettings)
	case s.DownloadMaxAttempts < 1:
		return fmt.Errorf("%w: download_max_attempts must be at least 1", ErrInvalidSettings)
	case s.DownloadRetryCooldown < 0:
		return fmt.Errorf("%w: download_retry_cooldown is negative", ErrInvalidSettings)
	case s.DownloadRetryExponent < 1:
		return fmt.Errorf("%w: download_retry_exponent must be at least 1", ErrInvalidSettings)
	case s.HTTPTimeout <= 0:
		return fmt.Errorf("%w: http_timeout must be positive", ErrInvalidSettings)
	}

	if _, err := model.ParseFormat(s.ConvertFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Format returns the parsed conversion format. Unknown names map to
// FormatNone; call Validate first to reject them.
func (s *Settings) Format() model.Format {
	f, _ := model.ParseFormat(s.ConvertFormat)
	return f
}

// RetryCooldown returns DownloadRetryCooldown as a Duration.
func (s *Settings) RetryCooldown() time.Duration {
	return time.Duration(s.DownloadRetryCooldown * float64(time.Second))
}

// ToHTTPOptions converts settings to http.Options.
func (s *Settings) ToHTTPOptions() http.Options {
	return http.Options{
		Timeout:   time.Duration(s.HTTPTimeout * float64(time.Second)),
		UserAgent: s.UserAgent,
		Referer:   s.Referer,
	}
}
