package ioutils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrUnknownImageFormat is returned when image data has no recognized signature.
var ErrUnknownImageFormat = errors.New("unknown image format")

// PNG header offsets of the IHDR bit depth and interlace method.
const (
	pngBitDepthOffset  = 24
	pngInterlaceOffset = 28
)

// PageData is a page image ready to be embedded in a document.
type PageData struct {
	// Data holds the encoded image bytes.
	Data []byte

	// Format is "jpeg" or "png", the two encodings documents embed natively.
	Format string

	// Width and Height are the pixel dimensions.
	Width  int
	Height int
}

// ImageService prepares downloaded page images for document conversion.
//
// Pages are saved as .jpg regardless of what the server returned, so the
// real encoding is detected from the file signature. JPEG and PNG pages are
// passed through byte for byte. GIF, WebP, 16-bit and interlaced PNG pages
// are decoded and re-encoded as non-interlaced 8-bit PNG.
//
// Example usage:
//
//	svc := NewImageService()
//	page, err := svc.LoadPage("/downloads/Title/Chapter_1.0/001.jpg")
//	// page.Format == "jpeg", page.Data is the untouched file content
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// DetectFormat reads the magic bytes and returns "jpeg", "png", "gif" or "webp".
func DetectFormat(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg", nil
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "png", nil
	case len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a"):
		return "gif", nil
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp", nil
	}
	return "", ErrUnknownImageFormat
}

// LoadPage reads an image file and returns it in a document-embeddable encoding.
func (s *ImageService) LoadPage(path string) (PageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PageData{}, err
	}
	return s.PreparePage(data)
}

// PreparePage converts raw image bytes into PageData.
func (s *ImageService) PreparePage(data []byte) (PageData, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return PageData{}, err
	}

	switch {
	case format == "jpeg", format == "png" && isPlainPNG(data):
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return PageData{}, fmt.Errorf("decode %s header: %w", format, err)
		}
		return PageData{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return PageData{}, fmt.Errorf("decode %s image: %w", format, err)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.Clone(img), imaging.PNG); err != nil {
			return PageData{}, fmt.Errorf("encode png: %w", err)
		}

		bounds := img.Bounds()
		return PageData{Data: buf.Bytes(), Format: "png", Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}
}

// isPlainPNG reports whether a PNG is 8-bit or less and not interlaced.
func isPlainPNG(data []byte) bool {
	if len(data) <= pngInterlaceOffset {
		return false
	}
	return data[pngBitDepthOffset] <= 8 && data[pngInterlaceOffset] == 0
}
