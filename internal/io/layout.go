package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/handiism/manga-downloader/internal/model"
)

// UntitledDir is used as the title directory when a title sanitizes to
// nothing usable.
const UntitledDir = "Untitled"

// invalidChars matches characters that are illegal on common filesystems.
var invalidChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// imageExtensions lists the extensions recognized as page images.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// SanitizeFileName removes characters that are invalid in file/folder names.
//
// The following transformations are applied, in order:
//   - Invalid characters (\ / * ? : " < > |) are removed
//   - Spaces are replaced with underscores
//   - Surrounding whitespace is trimmed
//   - The result is NFC normalized
//
// SanitizeFileName is idempotent.
//
// Example:
//
//	SanitizeFileName("Solo: Leveling?") // Returns "Solo_Leveling"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.TrimSpace(name)
	return norm.NFC.String(name)
}

// SanitizeTitle sanitizes a manga title for use as a directory name.
//
// Titles that sanitize to an empty string or to dots only would resolve to
// the download root or above it, so they fall back to UntitledDir.
func SanitizeTitle(title string) string {
	name := SanitizeFileName(title)
	if strings.Trim(name, ".") == "" {
		return UntitledDir
	}
	return name
}

// TitleDir returns root/<sanitized title>.
func TitleDir(root, title string) string {
	return filepath.Join(root, SanitizeTitle(title))
}

// ChapterDirName returns "Chapter_<label>" for a chapter number.
func ChapterDirName(number float64) string {
	return "Chapter_" + model.FormatNumber(number)
}

// ChapterDir returns root/<sanitized title>/Chapter_<label>.
//
// ChapterDir is a pure function of its arguments and touches nothing on disk.
func ChapterDir(root, title string, number float64) string {
	return filepath.Join(TitleDir(root, title), ChapterDirName(number))
}

// EnsureChapterDir returns ChapterDir and creates it, including parents.
// Calling it again for the same inputs returns the same path without error.
func EnsureChapterDir(root, title string, number float64) (string, error) {
	dir := ChapterDir(root, title, number)
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create chapter directory %s: %w", dir, err)
	}
	return dir, nil
}

// PageFileName returns the file name for the page at the 1-based index.
//
// Indexes are zero-padded to three digits, or to the width of total when a
// chapter has more than 999 pages, so lexicographic order always equals page
// order within a chapter.
//
// Example:
//
//	PageFileName(7, 20)     // "007.jpg"
//	PageFileName(7, 1200)   // "0007.jpg"
func PageFileName(index, total int) string {
	width := len(fmt.Sprint(total))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%0*d.jpg", width, index)
}

// ArtifactName returns "<sanitized title>_Chapter_<label><ext>".
func ArtifactName(title string, number float64, format model.Format) string {
	return SanitizeTitle(title) + "_" + ChapterDirName(number) + format.Extension()
}

// ArtifactPath returns where a conversion artifact is written.
//
// Paginated documents live inside the chapter directory; page archives live
// one level up, next to the title's chapter directories.
func ArtifactPath(root, title string, number float64, format model.Format) string {
	name := ArtifactName(title, number, format)
	if format.IsArchive() {
		return filepath.Join(TitleDir(root, title), name)
	}
	return filepath.Join(ChapterDir(root, title, number), name)
}

// IsImageFile reports whether a file name has a recognized image extension.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ListPageImages returns the image file names in dir sorted lexicographically.
//
// A missing directory yields an empty list and no error.
func ListPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && IsImageFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
