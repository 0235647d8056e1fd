package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/handiism/manga-downloader/internal/app"
	"github.com/handiism/manga-downloader/internal/config"
	"github.com/handiism/manga-downloader/internal/download"
	"github.com/handiism/manga-downloader/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

// ensureSettings loads the settings file once and applies the global flag
// overrides. Commands may modify the returned settings further.
func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		path := config.DefaultPath()
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}

		settings, err := config.Load(path)
		if err != nil {
			c.settingsErr = err
			return
		}
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			settings.LogLevel = *c.logLevelFlag
		}
		if c.logFormatFlag != nil && *c.logFormatFlag != "" {
			settings.LogFormat = *c.logFormatFlag
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) logger(cmd *cobra.Command, settings *config.Settings) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
}

func (c *commandContext) newApp(cmd *cobra.Command, settings *config.Settings, onProgress func(download.ProgressEvent)) (*app.App, error) {
	logger, err := c.logger(cmd, settings)
	if err != nil {
		return nil, err
	}
	return app.New(settings, logger, onProgress)
}
