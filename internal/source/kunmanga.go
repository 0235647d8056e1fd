package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/manga-downloader/internal/logging"
	"github.com/handiism/manga-downloader/internal/model"
)

// KunMangaBaseURL is the site root used to resolve relative chapter links.
const KunMangaBaseURL = "https://kunmanga.com"

// UnknownTitle is used when a manga page has no title element.
const UnknownTitle = "Unknown Title"

const (
	titleSelector   = "div.post-title h1"
	chapterSelector = "ul.main.version-chap li.wp-manga-chapter a"
	imageSelector   = "div.reading-content img.wp-manga-chapter-img"
)

var chapterNumberRegex = regexp.MustCompile(`(?i)Chapter\s*(\d+(?:\.\d+)?)`)

// PageFetcher fetches an HTML page.
type PageFetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// KunManga reads manga metadata and chapter images from kunmanga.com and
// sites built on the same WordPress manga theme.
//
// Example usage:
//
//	src := source.NewKunManga(client, source.KunMangaBaseURL, logger)
//	manga, err := src.MangaMetadata(ctx, "https://kunmanga.com/manga/some-title/")
//	urls, err := src.ChapterImageURLs(ctx, manga.Chapters[0].URL)
type KunManga struct {
	client  PageFetcher
	baseURL string
	logger  *slog.Logger
}

// NewKunManga creates a KunManga source. logger may be nil.
func NewKunManga(client PageFetcher, baseURL string, logger *slog.Logger) *KunManga {
	if baseURL == "" {
		baseURL = KunMangaBaseURL
	}
	return &KunManga{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.NewComponentLogger(logger, "source"),
	}
}

// MangaMetadata fetches a manga page and returns its title and chapters
// sorted by number.
func (k *KunManga) MangaMetadata(ctx context.Context, mangaURL string) (*model.Manga, error) {
	k.logger.Info("fetching manga page", "url", mangaURL)

	html, err := k.client.GetString(ctx, mangaURL)
	if err != nil {
		return nil, fmt.Errorf("fetch manga page: %w", err)
	}

	manga, err := ParseMangaPage(html, k.baseURL)
	if err != nil {
		return nil, err
	}
	manga.URL = mangaURL

	k.logger.Info("manga resolved", "title", manga.Title, "chapters", len(manga.Chapters))
	return manga, nil
}

// ChapterImageURLs fetches a chapter reader page and returns its page image
// URLs in reading order.
func (k *KunManga) ChapterImageURLs(ctx context.Context, chapterURL string) ([]string, error) {
	html, err := k.client.GetString(ctx, chapterURL)
	if err != nil {
		return nil, fmt.Errorf("fetch chapter page: %w", err)
	}

	urls, err := ParseChapterPage(html, chapterURL)
	if err != nil {
		return nil, err
	}

	k.logger.Debug("chapter images found", "url", chapterURL, "images", len(urls))
	return urls, nil
}

// ParseMangaPage extracts the title and chapter list from a manga page.
//
// Links whose text has no "Chapter <number>" are ignored. Relative links are
// resolved against baseURL. Chapters are deduplicated by URL and sorted by
// number.
func ParseMangaPage(html, baseURL string) (*model.Manga, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse manga page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		title = UnknownTitle
	}

	var chapters []model.Chapter
	doc.Find(chapterSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		match := chapterNumberRegex.FindStringSubmatch(strings.TrimSpace(s.Text()))
		if match == nil {
			return
		}
		number, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		chapters = append(chapters, model.Chapter{
			Number: number,
			URL:    base.ResolveReference(ref).String(),
		})
	})

	chapters = model.DedupeChapters(chapters)
	model.SortChapters(chapters)

	return &model.Manga{Title: title, Chapters: chapters}, nil
}

// ParseChapterPage extracts page image URLs from a chapter reader page.
//
// Lazy-loaded images without src fall back to data-src. Relative and
// protocol-relative URLs are resolved against chapterURL.
func ParseChapterPage(html, chapterURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse chapter page: %w", err)
	}

	base, err := url.Parse(chapterURL)
	if err != nil {
		return nil, fmt.Errorf("parse chapter URL: %w", err)
	}

	var urls []string
	doc.Find(imageSelector).Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		urls = append(urls, base.ResolveReference(ref).String())
	})
	return urls, nil
}
