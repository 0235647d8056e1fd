package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"time"

	"golang.org/x/net/publicsuffix"

	ioutils "github.com/handiism/manga-downloader/internal/io"
)

// DefaultUserAgent is a desktop browser User-Agent. Manga hosts commonly
// reject requests that do not look like they come from a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36 Edg/139.0.0.0"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Options configures a Client.
type Options struct {
	// Timeout bounds a whole request, including reading the body.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Referer is sent with every request when not empty. Image hosts often
	// refuse hotlinked requests without it.
	Referer string
}

// DefaultOptions returns a 60 second timeout and the browser User-Agent.
func DefaultOptions() Options {
	return Options{
		Timeout:   60 * time.Second,
		UserAgent: DefaultUserAgent,
	}
}

// Client wraps HTTP operations with manga-host configuration.
//
// Client provides:
//   - Browser User-Agent, Referer and Accept-Encoding headers
//   - gzip, deflate and Brotli response decoding
//   - A cookie jar for clearance cookies
//   - Timeout handling
//   - File download with progress tracking and atomic placement
//
// A single Client is safe for concurrent use by every download goroutine.
//
// Example usage:
//
//	client, err := NewClient(DefaultOptions())
//
//	// Fetch HTML content
//	html, err := client.GetString(ctx, "https://kunmanga.com/manga/some-title/")
//
//	// Download a page image
//	n, err := client.DownloadFile(ctx, imgURL, "/downloads/Title/Chapter_1.0/001.jpg", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
	referer    string
}

// NewClient creates a new HTTP client from opts.
//
// Zero fields in opts fall back to DefaultOptions.
func NewClient(opts Options) (*Client, error) {
	defaults := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}

	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		userAgent: opts.UserAgent,
		referer:   opts.Referer,
	}, nil
}

// LoadCookies reads a JSON object of cookie names to values, e.g.
//
//	{"cf_clearance": "abc123"}
//
// A missing file returns an empty map and no error.
func LoadCookies(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	cookies := make(map[string]string)
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookies file %s: %w", path, err)
	}
	return cookies, nil
}

// SetCookies stores cookies for the registrable domain of siteURL so they are
// also sent to its subdomains (image CDNs such as img-1.example.com).
func (c *Client) SetCookies(siteURL string, cookies map[string]string) error {
	u, err := url.Parse(siteURL)
	if err != nil {
		return fmt.Errorf("parse site URL: %w", err)
	}

	host := u.Hostname()
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// IP addresses and single-label hosts have no registrable domain.
		domain = ""
	}

	list := make([]*http.Cookie, 0, len(cookies))
	for name, value := range cookies {
		list = append(list, &http.Cookie{
			Name:   name,
			Value:  value,
			Domain: domain,
			Path:   "/",
		})
	}
	c.httpClient.Jar.SetCookies(u, list)
	return nil
}

// Cookies returns the cookies the client would send to rawURL.
func (c *Client) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, rawURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if method != http.MethodHead {
		if err := decodeBody(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}
	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent and Referer headers.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx (a *StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching HTML pages.
func (c *Client) GetString(ctx context.Context, rawURL string) (string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile downloads a file to destPath and returns the bytes written.
//
// The body is streamed to destPath+".part" in bounded chunks and renamed
// onto destPath only after the copy completes. On any failure the partial
// file is removed and destPath is left untouched.
//
// Parameters:
//   - ctx: Context for cancellation
//   - rawURL: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Example:
//
//	n, err := client.DownloadFile(ctx, imgURL, "/downloads/T/Chapter_1.0/001.jpg", nil)
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var written int64
	err = ioutils.WriteAtomic(destPath, func(tmpPath string) error {
		file, err := os.Create(tmpPath)
		if err != nil {
			return err
		}

		var writer io.Writer = file
		if onProgress != nil {
			writer = &ProgressWriter{
				Writer:   file,
				Total:    resp.ContentLength,
				OnUpdate: onProgress,
			}
		}

		written, err = io.Copy(writer, resp.Body)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err == nil && resp.ContentLength >= 0 && written != resp.ContentLength {
			err = fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
