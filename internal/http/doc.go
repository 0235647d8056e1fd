// Package http provides an HTTP client configured for manga hosts.
//
// The Client in this package handles:
//   - Browser User-Agent and Referer headers
//   - Clearance cookies loaded from a JSON file
//   - File downloads with progress tracking and atomic placement
//   - Timeout handling
//
// # Basic Usage
//
//	client, err := http.NewClient(http.DefaultOptions())
//
//	// Fetch HTML page
//	html, err := client.GetString(ctx, "https://kunmanga.com/manga/some-title/")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, imgURL, "/path/to/001.jpg", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Cookies
//
// Sites behind an anti-bot challenge need the clearance cookie a browser
// obtained. Store it as a JSON object and load it into the client:
//
//	cookies, err := http.LoadCookies("cookies.json")
//	err = client.SetCookies("https://kunmanga.com", cookies)
//
// Cookies are scoped to the registrable domain so image subdomains receive
// them too.
package http
