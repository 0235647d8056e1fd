// Package model defines the core data structures used throughout
// the manga-downloader application.
//
// # Manga and Chapter
//
// Manga is a title with its chapters sorted by number:
//
//	manga := &model.Manga{Title: "Solo Leveling", Chapters: chapters}
//	model.SortChapters(manga.Chapters)
//	fmt.Println(manga.Chapters[0].Label()) // "1.0"
//
// # Selection
//
// SelectChapters applies a user selection expression:
//
//	selected, err := model.SelectChapters(manga.Chapters, "1-10, 12.5")
//
// # Outcomes
//
// Downloads report values instead of errors at task boundaries:
// ImageOutcome per page, ChapterResult per chapter and BatchSummary per run.
//
// # Formats
//
// Format selects the conversion output: FormatPDF and FormatEPUB produce a
// paginated document inside the chapter directory, FormatCBZ produces a page
// archive next to it.
package model
