package http

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// acceptEncoding matches what desktop browsers advertise. Setting it by hand
// turns off the transport's transparent gzip, so decodeBody handles every
// listed encoding.
const acceptEncoding = "gzip, deflate, br"

// decodeBody replaces resp.Body with a reader that undoes its
// Content-Encoding. ContentLength is reset to -1 because it describes the
// encoded body.
func decodeBody(resp *http.Response) error {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))

	var reader io.Reader
	var closer io.Closer
	switch encoding {
	case "", "identity":
		return nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("decode gzip body: %w", err)
		}
		reader, closer = gz, gz
	case "deflate":
		zr, err := zlib.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("decode deflate body: %w", err)
		}
		reader, closer = zr, zr
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return fmt.Errorf("unsupported content encoding %q", encoding)
	}

	resp.Body = &decodedBody{Reader: reader, decoder: closer, body: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

type decodedBody struct {
	io.Reader
	decoder io.Closer
	body    io.Closer
}

func (d *decodedBody) Close() error {
	if d.decoder != nil {
		_ = d.decoder.Close()
	}
	return d.body.Close()
}
