package model

// PageImage is one page of a chapter.
//
// Index is the 1-based position of the page in the chapter's image URL list
// and is assigned before any download starts. FileName is a pure function of
// Index, so sorting file names lexicographically reproduces page order.
type PageImage struct {
	Chapter  Chapter
	Index    int
	URL      string
	FileName string
}

// ImageOutcome is the result of fetching one page image.
//
// Outcomes are values: a failed download is reported here and never raised
// across the fetcher boundary.
type ImageOutcome struct {
	// Index is the 1-based page index.
	Index int

	// URL is the remote image URL.
	URL string

	// Path is the local destination path.
	Path string

	// Attempts is the number of attempts used, including the successful one.
	Attempts int

	// Bytes is the number of bytes written on success.
	Bytes int64

	// Err is the last error seen. Nil means success.
	Err error
}

// OK reports whether the image was downloaded.
func (o ImageOutcome) OK() bool {
	return o.Err == nil
}

// ChapterResult summarizes one chapter download.
type ChapterResult struct {
	Chapter Chapter

	// Dir is the chapter directory. Empty when no directory was created.
	Dir string

	// Succeeded and Failed count image outcomes.
	Succeeded int
	Failed    int

	// Images holds every image outcome in completion order.
	Images []ImageOutcome

	// Err is set when the chapter as a whole failed (resolution or
	// filesystem error). Image failures alone do not set it.
	Err error
}

// OK reports whether the chapter completed without a chapter-level error
// and without failed images.
func (r ChapterResult) OK() bool {
	return r.Err == nil && r.Failed == 0
}

// Total returns the number of images attempted.
func (r ChapterResult) Total() int {
	return r.Succeeded + r.Failed
}

// BatchSummary is the structured outcome of a multi-chapter download.
type BatchSummary struct {
	Title    string
	Chapters []ChapterResult
}

// Succeeded returns the number of chapters without a chapter-level error.
func (s BatchSummary) Succeeded() int {
	n := 0
	for _, r := range s.Chapters {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of chapters with a chapter-level error.
func (s BatchSummary) Failed() int {
	return len(s.Chapters) - s.Succeeded()
}

// ImagesSucceeded returns the total number of downloaded images.
func (s BatchSummary) ImagesSucceeded() int {
	n := 0
	for _, r := range s.Chapters {
		n += r.Succeeded
	}
	return n
}

// ImagesFailed returns the total number of images that could not be downloaded.
func (s BatchSummary) ImagesFailed() int {
	n := 0
	for _, r := range s.Chapters {
		n += r.Failed
	}
	return n
}

// Result returns the result recorded for the chapter with the given URL.
func (s BatchSummary) Result(chapterURL string) (ChapterResult, bool) {
	for _, r := range s.Chapters {
		if r.Chapter.URL == chapterURL {
			return r, true
		}
	}
	return ChapterResult{}, false
}
