package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown conversion format")

// Format represents a conversion output format.
type Format int

const (
	// FormatNone disables conversion.
	FormatNone Format = iota

	// FormatPDF creates a paginated .pdf document inside the chapter directory.
	FormatPDF

	// FormatEPUB creates a paginated .epub document inside the chapter directory.
	FormatEPUB

	// FormatCBZ creates a .cbz page archive next to the chapter directories.
	FormatCBZ
)

// ParseFormat converts a user supplied name ("pdf", "epub", "cbz", "none")
// into a Format. The empty string maps to FormatNone.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return FormatNone, nil
	case "pdf":
		return FormatPDF, nil
	case "epub":
		return FormatEPUB, nil
	case "cbz", "zip":
		return FormatCBZ, nil
	default:
		return FormatNone, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// String returns the lowercase format name.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatEPUB:
		return "epub"
	case FormatCBZ:
		return "cbz"
	default:
		return "none"
	}
}

// Extension returns the artifact file extension, including the dot.
//
// Returns:
//   - ".pdf" for FormatPDF
//   - ".epub" for FormatEPUB
//   - ".cbz" for FormatCBZ
//   - "" for FormatNone
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatEPUB:
		return ".epub"
	case FormatCBZ:
		return ".cbz"
	default:
		return ""
	}
}

// IsArchive reports whether the format stores pages as independent entries
// of a zip archive. Archives are written next to the chapter directories
// instead of inside them.
func (f Format) IsArchive() bool {
	return f == FormatCBZ
}

// Artifact describes a written conversion output.
type Artifact struct {
	Format Format

	// Path is the artifact file path.
	Path string

	// Pages is the number of pages written.
	Pages int

	// Sources lists the source image file names in page order.
	Sources []string
}
