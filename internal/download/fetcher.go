package download

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/handiism/manga-downloader/internal/model"
)

// FileDownloader streams one URL to one local file.
//
// Implementations must leave nothing at destPath when they fail.
// *http.Client from package http satisfies it.
type FileDownloader interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error)
}

// FetcherOptions configures retry behavior.
type FetcherOptions struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Cooldown is the wait before the second attempt.
	Cooldown time.Duration

	// Exponent multiplies the cooldown after every failed attempt.
	// 1.0 gives a fixed cooldown.
	Exponent float64
}

// Fetcher downloads a single image with retry.
//
// Every network error, non-2xx status or timeout is retried until
// MaxAttempts is reached. Fetch never returns an error or panics; the
// result is always reported in the returned ImageOutcome.
type Fetcher struct {
	client FileDownloader
	opts   FetcherOptions

	// OnRetry is called before waiting for the next attempt.
	OnRetry func(url string, attempt int, err error)

	// OnBytes is called with the number of newly received bytes. When an
	// attempt fails, the bytes it reported are withdrawn with a negative delta.
	OnBytes func(delta int64)
}

// NewFetcher creates a Fetcher. Non-positive attempts are treated as 1 and
// an exponent below 1 as 1.
func NewFetcher(client FileDownloader, opts FetcherOptions) *Fetcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Exponent < 1 {
		opts.Exponent = 1
	}
	return &Fetcher{client: client, opts: opts}
}

// Fetch downloads url to dest.
//
// On failure no file exists at dest, even if earlier attempts wrote data.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) model.ImageOutcome {
	outcome := model.ImageOutcome{URL: url, Path: dest}

	for tries := 0; tries < f.opts.MaxAttempts; tries++ {
		outcome.Attempts = tries + 1

		var received int64
		n, err := f.client.DownloadFile(ctx, url, dest, f.progress(&received))
		if err == nil {
			outcome.Bytes = n
			outcome.Err = nil
			return outcome
		}
		outcome.Err = err
		if received > 0 {
			f.OnBytes(-received)
		}

		if ctx.Err() != nil {
			outcome.Err = fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
			return outcome
		}
		if tries+1 < f.opts.MaxAttempts {
			if f.OnRetry != nil {
				f.OnRetry(url, tries+1, err)
			}
			f.waitForRetry(ctx, tries)
		}
	}

	return outcome
}

// progress reports byte deltas of one attempt and keeps the attempt's total
// in received.
func (f *Fetcher) progress(received *int64) func(written, total int64) {
	if f.OnBytes == nil {
		return nil
	}
	return func(written, total int64) {
		f.OnBytes(written - *received)
		*received = written
	}
}

func (f *Fetcher) waitForRetry(ctx context.Context, tries int) {
	cooldown := float64(f.opts.Cooldown) * math.Pow(f.opts.Exponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown)):
	}
}
