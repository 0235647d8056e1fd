// Package source reads manga metadata and chapter image lists from manga
// websites.
//
// A source satisfies download.MetadataSource and download.ImageResolver:
//
//	src := source.NewKunManga(client, source.KunMangaBaseURL, logger)
//	manga, err := download.ResolveManga(ctx, src, mangaURL)
//	summary := manager.DownloadChapters(ctx, manga.Title, manga.Chapters)
//
// Parsing is split from fetching so ParseMangaPage and ParseChapterPage can
// be used on saved HTML.
package source
