package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned when a chapter selection expression cannot
// be parsed or matches nothing.
var ErrInvalidSelection = errors.New("invalid chapter selection")

// SelectChapters picks chapters using a selection expression.
//
// The expression is a comma separated list of terms:
//   - "all" selects every chapter
//   - "5" selects chapter number 5 and the 5th chapter in the list
//   - "10-15" selects chapter numbers 10 through 15 and list positions 10 through 15
//   - "10.5" selects chapter number 10.5
//
// Every term matches both by chapter number and by 1-based list position.
// The result is deduplicated by URL and sorted by chapter number.
//
// Example:
//
//	selected, err := SelectChapters(manga.Chapters, "1-3, 7")
func SelectChapters(chapters []Chapter, expr string) ([]Chapter, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidSelection)
	}
	if expr == "all" {
		out := DedupeChapters(chapters)
		SortChapters(out)
		return out, nil
	}

	var selected []Chapter
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		start, end, err := parseTerm(part)
		if err != nil {
			return nil, err
		}

		for _, ch := range chapters {
			if ch.Number >= start && ch.Number <= end {
				selected = append(selected, ch)
			}
		}
		selected = append(selected, byIndex(chapters, start, end)...)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %q matched no chapters", ErrInvalidSelection, expr)
	}

	out := DedupeChapters(selected)
	SortChapters(out)
	return out, nil
}

// parseTerm parses "n" or "a-b" into an inclusive range.
func parseTerm(term string) (float64, float64, error) {
	if before, after, ok := strings.Cut(term, "-"); ok {
		start, err := strconv.ParseFloat(strings.TrimSpace(before), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, term)
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(after), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, term)
		}
		if end < start {
			return 0, 0, fmt.Errorf("%w: %q ends before it starts", ErrInvalidSelection, term)
		}
		return start, end, nil
	}

	n, err := strconv.ParseFloat(term, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSelection, term)
	}
	return n, n, nil
}

// byIndex returns chapters at 1-based positions start..end when both bounds
// are whole numbers inside the list.
func byIndex(chapters []Chapter, start, end float64) []Chapter {
	if start != math.Trunc(start) || end != math.Trunc(end) {
		return nil
	}
	lo, hi := int(start), int(end)
	if lo < 1 || hi > len(chapters) {
		return nil
	}
	return chapters[lo-1 : hi]
}
