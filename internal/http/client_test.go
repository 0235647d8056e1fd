package http

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client
}

func TestClient_Headers(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, Options{Referer: "https://kunmanga.com"})
	body, err := client.GetString(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "https://kunmanga.com", gotReferer)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, DefaultOptions())
	_, err := client.Get(context.Background(), srv.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "error should be a *StatusError, got %v", err)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestClient_DownloadFile(t *testing.T) {
	payload := []byte("\xFF\xD8\xFF fake jpeg payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "001.jpg")
	client := newTestClient(t, DefaultOptions())

	var lastWritten int64
	n, err := client.DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, int64(len(payload)), lastWritten)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.NoFileExists(t, dest+".part")
}

func TestClient_DownloadFile_FailureLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "001.jpg")
	client := newTestClient(t, DefaultOptions())

	_, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+".part")
}

func TestClient_DownloadFile_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("only a few bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "001.jpg")
	client := newTestClient(t, DefaultOptions())

	_, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
	require.Error(t, err)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+".part")
}

func TestClient_Cookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("cf_clearance"); err == nil {
			gotCookie = c.Value
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cf_clearance": "token123"}`), 0644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)

	client := newTestClient(t, DefaultOptions())
	require.NoError(t, client.SetCookies(srv.URL, cookies))

	_, err = client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "token123", gotCookie)
}

func TestClient_CookiesSharedWithSubdomains(t *testing.T) {
	client := newTestClient(t, DefaultOptions())
	require.NoError(t, client.SetCookies("https://kunmanga.com", map[string]string{"cf_clearance": "v"}))

	cookies := client.Cookies("https://img-1.kunmanga.com/page.jpg")
	require.Len(t, cookies, 1)
	assert.Equal(t, "cf_clearance", cookies[0].Name)
}

func TestLoadCookies(t *testing.T) {
	dir := t.TempDir()

	cookies, err := LoadCookies(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, cookies)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadCookies(bad)
	assert.Error(t, err)
}

func TestClient_DecodesContentEncoding(t *testing.T) {
	const page = `<html><body><h1>Solo Leveling</h1></body></html>`

	encoders := map[string]func(io.Writer) io.WriteCloser{
		"gzip":    func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"deflate": func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) },
		"br":      func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
	}

	for name, newEncoder := range encoders {
		t.Run(name, func(t *testing.T) {
			var gotAccept string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAccept = r.Header.Get("Accept-Encoding")
				var buf bytes.Buffer
				enc := newEncoder(&buf)
				enc.Write([]byte(page))
				enc.Close()
				w.Header().Set("Content-Encoding", name)
				w.Write(buf.Bytes())
			}))
			defer srv.Close()

			client := newTestClient(t, DefaultOptions())
			body, err := client.GetString(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, page, body)
			assert.Equal(t, acceptEncoding, gotAccept)

			dest := filepath.Join(t.TempDir(), "page.html")
			n, err := client.DownloadFile(context.Background(), srv.URL, dest, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(len(page)), n)
		})
	}
}

func TestClient_UnsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	client := newTestClient(t, DefaultOptions())
	_, err := client.Get(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unsupported content encoding")
}
