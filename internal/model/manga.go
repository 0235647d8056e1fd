package model

import (
	"sort"
	"strconv"
	"strings"
)

// Manga represents a serialized title with its ordered chapter list.
//
// Title is kept exactly as the source reported it so it can be displayed;
// anything that touches the filesystem must go through the sanitizing
// layout helpers in package ioutils first.
//
// Example:
//
//	manga := &Manga{
//	    Title: "Solo: Leveling?",
//	    URL:   "https://kunmanga.com/manga/solo-leveling/",
//	    Chapters: []Chapter{
//	        {Number: 1, URL: "https://kunmanga.com/manga/solo-leveling/chapter-1/"},
//	        {Number: 1.5, URL: "https://kunmanga.com/manga/solo-leveling/chapter-1-5/"},
//	    },
//	}
type Manga struct {
	// Title is the display title, possibly containing filesystem-illegal characters.
	Title string

	// URL is the page the metadata was resolved from.
	URL string

	// Chapters is sorted ascending by Number.
	Chapters []Chapter
}

// HasChapters reports whether any chapters were resolved.
func (m *Manga) HasChapters() bool {
	return m != nil && len(m.Chapters) > 0
}

// Chapter is one numbered unit of content.
//
// Chapters are immutable once resolved. URL is the uniqueness key: two
// chapters may coincidentally share a number but never a URL.
type Chapter struct {
	// Number is the chapter number. Fractional chapters such as 10.5 are allowed.
	Number float64

	// URL is the chapter reader page that lists the page images.
	URL string
}

// Label renders the chapter number the way it appears in directory and
// artifact names.
//
// Whole numbers keep a trailing ".0" so existing download trees remain
// addressable:
//
//	Chapter{Number: 10}.Label()   // "10.0"
//	Chapter{Number: 10.5}.Label() // "10.5"
func (c Chapter) Label() string {
	return FormatNumber(c.Number)
}

// FormatNumber renders a chapter number, see Chapter.Label.
func FormatNumber(number float64) string {
	s := strconv.FormatFloat(number, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// SortChapters sorts chapters ascending by number in place.
// The sort is stable, so chapters sharing a number keep their source order.
func SortChapters(chapters []Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Number < chapters[j].Number
	})
}

// DedupeChapters returns chapters with repeated URLs removed, keeping the
// first occurrence.
func DedupeChapters(chapters []Chapter) []Chapter {
	seen := make(map[string]struct{}, len(chapters))
	out := make([]Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if _, ok := seen[ch.URL]; ok {
			continue
		}
		seen[ch.URL] = struct{}{}
		out = append(out, ch)
	}
	return out
}
