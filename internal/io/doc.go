// Package ioutils provides the download directory layout and file system
// helpers.
//
// # Layout
//
// Every path is a pure function of the download root, the manga title and
// the chapter number:
//
//	root/<sanitized-title>/Chapter_<n>/001.jpg
//	root/<sanitized-title>/Chapter_<n>/<sanitized-title>_Chapter_<n>.pdf
//	root/<sanitized-title>/<sanitized-title>_Chapter_<n>.cbz
//
//	dir, err := ioutils.EnsureChapterDir("./downloads", "Solo: Leveling", 1)
//	// dir == "downloads/Solo_Leveling/Chapter_1.0"
//
// # Filename Sanitization
//
// SanitizeFileName removes \ / * ? : " < > |, replaces spaces with
// underscores and trims the result. SanitizeTitle adds a fallback for titles
// that sanitize to nothing:
//
//	ioutils.SanitizeTitle("???") // Returns "Untitled"
//
// # Atomic Writes
//
// WriteAtomic writes through a ".part" sibling and renames it into place:
//
//	err := ioutils.WriteAtomic(path, func(tmp string) error {
//	    return os.WriteFile(tmp, data, 0644)
//	})
//
// # Image Processing
//
// ImageService detects the real encoding of a downloaded page and prepares it
// for embedding in a document:
//
//	page, err := ioutils.NewImageService().LoadPage(path)
package ioutils
