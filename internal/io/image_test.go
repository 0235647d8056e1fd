package ioutils

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func encodeTestImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := testImage(w, h)

	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		t.Fatalf("unsupported test format %q", format)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, "png"},
		{"gif87a", []byte("GIF87a..."), "gif"},
		{"gif89a", []byte("GIF89a..."), "gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat([]byte("<html>"))
	assert.ErrorIs(t, err, ErrUnknownImageFormat)
	_, err = DetectFormat(nil)
	assert.ErrorIs(t, err, ErrUnknownImageFormat)
}

func TestImageService_PassThrough(t *testing.T) {
	svc := NewImageService()

	for _, format := range []string{"jpeg", "png"} {
		t.Run(format, func(t *testing.T) {
			data := encodeTestImage(t, format, 12, 20)

			page, err := svc.PreparePage(data)
			require.NoError(t, err)
			assert.Equal(t, format, page.Format)
			assert.Equal(t, data, page.Data, "bytes must be embedded unchanged")
			assert.Equal(t, 12, page.Width)
			assert.Equal(t, 20, page.Height)
		})
	}
}

func TestImageService_GIFReencodedAsPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "001.jpg")
	require.NoError(t, os.WriteFile(path, encodeTestImage(t, "gif", 8, 6), 0644))

	page, err := NewImageService().LoadPage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", page.Format)
	assert.Equal(t, 8, page.Width)
	assert.Equal(t, 6, page.Height)

	format, err := DetectFormat(page.Data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestImageService_Invalid(t *testing.T) {
	_, err := NewImageService().PreparePage([]byte("not an image"))
	assert.ErrorIs(t, err, ErrUnknownImageFormat)

	_, err = NewImageService().LoadPage(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

func TestImageService_DeepPNGNormalized(t *testing.T) {
	img := image.NewRGBA64(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA64{R: 0xFFFF, A: 0xFFFF})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.Equal(t, byte(16), buf.Bytes()[pngBitDepthOffset])

	page, err := NewImageService().PreparePage(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", page.Format)
	assert.Equal(t, byte(8), page.Data[pngBitDepthOffset])
	assert.Equal(t, 4, page.Width)
	assert.Equal(t, 3, page.Height)
}
