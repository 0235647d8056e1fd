package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/handiism/manga-downloader/internal/model"
)

var (
	// ErrNoChapters is returned by ResolveManga when the source reports no chapters.
	ErrNoChapters = errors.New("no chapters found")

	// ErrDuplicateChapter is recorded for a chapter whose number was already
	// scheduled under a different URL in the same batch.
	ErrDuplicateChapter = errors.New("duplicate chapter number")
)

// MetadataSource resolves a manga page into its title and chapter list.
type MetadataSource interface {
	MangaMetadata(ctx context.Context, mangaURL string) (*model.Manga, error)
}

// ImageResolver lists the page image URLs of a chapter in reading order.
type ImageResolver interface {
	ChapterImageURLs(ctx context.Context, chapterURL string) ([]string, error)
}

// ResolveManga fetches manga metadata and sorts its chapters.
//
// It never returns a nil manga. When the source fails, returns nil or
// reports no chapters, the returned manga has no chapters and err explains
// why.
func ResolveManga(ctx context.Context, src MetadataSource, mangaURL string) (manga *model.Manga, err error) {
	defer func() {
		if r := recover(); r != nil {
			manga = &model.Manga{URL: mangaURL}
			err = fmt.Errorf("resolve %s: panic: %v", mangaURL, r)
		}
	}()

	manga, err = src.MangaMetadata(ctx, mangaURL)
	if err != nil {
		return &model.Manga{URL: mangaURL}, fmt.Errorf("resolve %s: %w", mangaURL, err)
	}
	if manga == nil {
		return &model.Manga{URL: mangaURL}, ErrNoChapters
	}
	if manga.URL == "" {
		manga.URL = mangaURL
	}
	if !manga.HasChapters() {
		return manga, ErrNoChapters
	}

	model.SortChapters(manga.Chapters)
	return manga, nil
}
