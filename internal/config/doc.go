// Package config provides configuration management for manga-downloader.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Validation and conversion to http.Options
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ./downloads
//	// 3 chapters and 10 images per chapter in flight
//	// 3 attempts per image with a 2 second cooldown
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.toml")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// A config file only needs the keys it changes:
//
//	downloads_path = "/srv/manga"
//	max_concurrent_images = 4
//	convert_format = "cbz"
//
// # Saving Settings
//
//	settings.ConvertFormat = "pdf"
//	err := settings.Save("/path/to/config.toml")
package config
