package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mangahttp "github.com/handiism/manga-downloader/internal/http"
)

const mangaPage = `<html><body>
<div class="post-title"><h1>
  Solo: Leveling?
</h1></div>
<ul class="main version-chap">
  <li class="wp-manga-chapter"><a href="https://kunmanga.com/manga/solo/chapter-10/">Chapter 10</a></li>
  <li class="wp-manga-chapter"><a href="/manga/solo/chapter-2-5/"> chapter 2.5 </a></li>
  <li class="wp-manga-chapter"><a href="/manga/solo/chapter-1/">CHAPTER 1 - Beginning</a></li>
  <li class="wp-manga-chapter"><a href="/manga/solo/notice/">Notice</a></li>
  <li class="wp-manga-chapter"><a href="/manga/solo/chapter-1/">Chapter 1</a></li>
</ul>
</body></html>`

const chapterPage = `<html><body>
<div class="reading-content">
  <img class="wp-manga-chapter-img" src="  https://img.example.com/1.jpg ">
  <img class="wp-manga-chapter-img" src="https://img.example.com/2.jpg">
  <img class="wp-manga-chapter-img" data-src="https://img.example.com/3.jpg">
  <img class="ad-banner" src="https://ads.example.com/banner.jpg">
</div>
<img class="wp-manga-chapter-img" src="https://img.example.com/outside.jpg">
</body></html>`

func TestParseMangaPage(t *testing.T) {
	manga, err := ParseMangaPage(mangaPage, KunMangaBaseURL)
	require.NoError(t, err)

	assert.Equal(t, "Solo: Leveling?", manga.Title)
	require.Len(t, manga.Chapters, 3)

	assert.Equal(t, 1.0, manga.Chapters[0].Number)
	assert.Equal(t, "https://kunmanga.com/manga/solo/chapter-1/", manga.Chapters[0].URL)
	assert.Equal(t, 2.5, manga.Chapters[1].Number)
	assert.Equal(t, "https://kunmanga.com/manga/solo/chapter-2-5/", manga.Chapters[1].URL)
	assert.Equal(t, 10.0, manga.Chapters[2].Number)
}

func TestParseMangaPage_NoTitle(t *testing.T) {
	manga, err := ParseMangaPage("<html><body></body></html>", KunMangaBaseURL)
	require.NoError(t, err)
	assert.Equal(t, UnknownTitle, manga.Title)
	assert.False(t, manga.HasChapters())
}

func TestParseChapterPage(t *testing.T) {
	urls, err := ParseChapterPage(chapterPage, "https://kunmanga.com/manga/solo/chapter-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://img.example.com/1.jpg",
		"https://img.example.com/2.jpg",
		"https://img.example.com/3.jpg",
	}, urls)
}

func TestParseChapterPage_ResolvesRelativeURLs(t *testing.T) {
	page := `<div class="reading-content">
  <img class="wp-manga-chapter-img" src="//cdn.example.com/solo/1.jpg">
  <img class="wp-manga-chapter-img" src="/wp-content/uploads/solo/2.jpg">
  <img class="wp-manga-chapter-img" data-src="3.jpg">
</div>`

	urls, err := ParseChapterPage(page, "https://kunmanga.com/manga/solo/chapter-1/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/solo/1.jpg",
		"https://kunmanga.com/wp-content/uploads/solo/2.jpg",
		"https://kunmanga.com/manga/solo/chapter-1/3.jpg",
	}, urls)
}

func TestKunManga_FetchesThroughClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/manga/solo/":
			w.Write([]byte(strings.ReplaceAll(mangaPage, "https://kunmanga.com", "")))
		case strings.HasPrefix(r.URL.Path, "/manga/solo/chapter-"):
			w.Write([]byte(chapterPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := mangahttp.NewClient(mangahttp.DefaultOptions())
	require.NoError(t, err)
	src := NewKunManga(client, srv.URL, nil)

	manga, err := src.MangaMetadata(context.Background(), srv.URL+"/manga/solo/")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/manga/solo/", manga.URL)
	require.Len(t, manga.Chapters, 3)
	assert.Equal(t, srv.URL+"/manga/solo/chapter-10/", manga.Chapters[2].URL)

	urls, err := src.ChapterImageURLs(context.Background(), manga.Chapters[0].URL)
	require.NoError(t, err)
	assert.Len(t, urls, 3)

	_, err = src.ChapterImageURLs(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestApplyCookies(t *testing.T) {
	client, err := mangahttp.NewClient(mangahttp.DefaultOptions())
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, ApplyCookies(client, filepath.Join(dir, "missing.json"), KunMangaBaseURL, nil))
	assert.Empty(t, client.Cookies(KunMangaBaseURL))

	path := filepath.Join(dir, "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cf_clearance": "abc"}`), 0644))
	require.NoError(t, ApplyCookies(client, path, KunMangaBaseURL, nil))

	cookies := client.Cookies(KunMangaBaseURL + "/manga/x/")
	require.Len(t, cookies, 1)
	assert.Equal(t, ClearanceCookie, cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
}
