package source

import (
	"log/slog"

	"github.com/handiism/manga-downloader/internal/http"
	"github.com/handiism/manga-downloader/internal/logging"
)

// ClearanceCookie is the cookie an anti-bot challenge sets once solved.
const ClearanceCookie = "cf_clearance"

// ApplyCookies loads cookies from path into client for siteURL.
//
// A missing file or a file without the clearance cookie is not an error, but
// it is logged because requests are likely to be blocked.
func ApplyCookies(client *http.Client, path, siteURL string, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "source")

	cookies, err := http.LoadCookies(path)
	if err != nil {
		return err
	}
	if _, ok := cookies[ClearanceCookie]; !ok {
		logger.Warn("clearance cookie not found, requests may be blocked", "cookie", ClearanceCookie, "path", path)
	}
	if len(cookies) == 0 {
		return nil
	}
	return client.SetCookies(siteURL, cookies)
}
