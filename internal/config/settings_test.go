package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/manga-downloader/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "./downloads", s.DownloadsPath)
	assert.Equal(t, 3, s.MaxConcurrentChapters)
	assert.Equal(t, 10, s.MaxConcurrentImages)
	assert.Equal(t, 3, s.DownloadMaxAttempts)
	assert.Equal(t, 2*time.Second, s.RetryCooldown())
	assert.Equal(t, model.FormatNone, s.Format())
	assert.False(t, s.DeleteAfterConversion)
	require.NoError(t, s.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
downloads_path = "/srv/manga"
max_concurrent_images = 4
convert_format = "cbz"
delete_after_conversion = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/manga", s.DownloadsPath)
	assert.Equal(t, 4, s.MaxConcurrentImages)
	assert.Equal(t, model.FormatCBZ, s.Format())
	assert.True(t, s.DeleteAfterConversion)
	assert.Equal(t, 3, s.MaxConcurrentChapters, "unset keys keep defaults")
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("downloads_path = "), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	s := DefaultSettings()
	s.ConvertFormat = "epub"
	s.MaxConcurrentChapters = 5
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"empty path", func(s *Settings) { s.DownloadsPath = "" }},
		{"zero chapters", func(s *Settings) { s.MaxConcurrentChapters = 0 }},
		{"zero images", func(s *Settings) { s.MaxConcurrentImages = 0 }},
		{"zero attempts", func(s *Settings) { s.DownloadMaxAttempts = 0 }},
		{"negative cooldown", func(s *Settings) { s.DownloadRetryCooldown = -1 }},
		{"shrinking exponent", func(s *Settings) { s.DownloadRetryExponent = 0.5 }},
		{"zero timeout", func(s *Settings) { s.HTTPTimeout = 0 }},
		{"unknown format", func(s *Settings) { s.ConvertFormat = "docx" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidSettings)
		})
	}
}

func TestToHTTPOptions(t *testing.T) {
	s := DefaultSettings()
	s.HTTPTimeout = 1.5

	opts := s.ToHTTPOptions()
	assert.Equal(t, 1500*time.Millisecond, opts.Timeout)
	assert.Equal(t, s.UserAgent, opts.UserAgent)
	assert.Equal(t, "https://kunmanga.com", opts.Referer)
}
