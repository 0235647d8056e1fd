// Package logging builds the structured loggers used by the downloader.
//
// Loggers are plain *slog.Logger values. Packages that log accept one and
// fall back to NewNop when given nil:
//
//	logger, err := logging.New(logging.Options{Level: "debug", Format: "auto"})
//	mgr := download.NewManager(settings, client, resolver, logger, nil)
package logging
