package model

import (
	"errors"
	"testing"
)

func TestChapter_Label(t *testing.T) {
	tests := []struct {
		number float64
		want   string
	}{
		{1, "1.0"},
		{10, "10.0"},
		{10.5, "10.5"},
		{0.1, "0.1"},
		{123.25, "123.25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := (Chapter{Number: tt.number}).Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSortChapters(t *testing.T) {
	chapters := []Chapter{
		{Number: 3, URL: "c3"},
		{Number: 1, URL: "c1"},
		{Number: 2.5, URL: "c2.5"},
		{Number: 2, URL: "c2"},
	}
	SortChapters(chapters)

	want := []string{"c1", "c2", "c2.5", "c3"}
	for i, ch := range chapters {
		if ch.URL != want[i] {
			t.Errorf("chapters[%d] = %q, want %q", i, ch.URL, want[i])
		}
	}
}

func TestDedupeChapters(t *testing.T) {
	chapters := []Chapter{
		{Number: 1, URL: "a"},
		{Number: 1, URL: "a"},
		{Number: 1, URL: "b"},
	}
	got := DedupeChapters(chapters)
	if len(got) != 2 {
		t.Fatalf("DedupeChapters() returned %d chapters, want 2", len(got))
	}
}

func TestSelectChapters(t *testing.T) {
	chapters := []Chapter{
		{Number: 1, URL: "c1"},
		{Number: 2, URL: "c2"},
		{Number: 3, URL: "c3"},
		{Number: 10, URL: "c10"},
		{Number: 10.5, URL: "c10.5"},
		{Number: 11, URL: "c11"},
	}

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"all", "all", []string{"c1", "c2", "c3", "c10", "c10.5", "c11"}},
		{"single number", "2", []string{"c2"}},
		{"index only", "5", []string{"c10.5"}},
		{"number range", "10-11", []string{"c10", "c10.5", "c11"}},
		{"index and number range", "1-3", []string{"c1", "c2", "c3"}},
		{"fractional", "10.5", []string{"c10.5"}},
		{"list", "1, 11", []string{"c1", "c11"}},
		{"overlapping terms deduplicated", "1-2,2", []string{"c1", "c2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectChapters(chapters, tt.expr)
			if err != nil {
				t.Fatalf("SelectChapters(%q) error = %v", tt.expr, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SelectChapters(%q) = %v, want %v", tt.expr, got, tt.want)
			}
			for i, ch := range got {
				if ch.URL != tt.want[i] {
					t.Errorf("SelectChapters(%q)[%d] = %q, want %q", tt.expr, i, ch.URL, tt.want[i])
				}
			}
		})
	}
}

func TestSelectChapters_Invalid(t *testing.T) {
	chapters := []Chapter{{Number: 1, URL: "c1"}}

	for _, expr := range []string{"", "abc", "5-2", "40"} {
		t.Run(expr, func(t *testing.T) {
			_, err := SelectChapters(chapters, expr)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("SelectChapters(%q) error = %v, want ErrInvalidSelection", expr, err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ext   string
	}{
		{"pdf", FormatPDF, ".pdf"},
		{"EPUB", FormatEPUB, ".epub"},
		{"cbz", FormatCBZ, ".cbz"},
		{"none", FormatNone, ""},
		{"", FormatNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Extension() != tt.ext {
				t.Errorf("Extension() = %q, want %q", got.Extension(), tt.ext)
			}
		})
	}

	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(docx) error = %v, want ErrUnknownFormat", err)
	}
	if !FormatCBZ.IsArchive() || FormatPDF.IsArchive() {
		t.Error("only FormatCBZ should be an archive")
	}
}

func TestBatchSummary_Counters(t *testing.T) {
	summary := BatchSummary{
		Title: "Test",
		Chapters: []ChapterResult{
			{Chapter: Chapter{Number: 1, URL: "a"}, Succeeded: 4, Failed: 1},
			{Chapter: Chapter{Number: 2, URL: "b"}, Err: errors.New("boom")},
			{Chapter: Chapter{Number: 3, URL: "c"}, Succeeded: 2},
		},
	}

	if got := summary.Succeeded(); got != 2 {
		t.Errorf("Succeeded() = %d, want 2", got)
	}
	if got := summary.Failed(); got != 1 {
		t.Errorf("Failed() = %d, want 1", got)
	}
	if got := summary.ImagesSucceeded(); got != 6 {
		t.Errorf("ImagesSucceeded() = %d, want 6", got)
	}
	if got := summary.ImagesFailed(); got != 1 {
		t.Errorf("ImagesFailed() = %d, want 1", got)
	}
	if r, ok := summary.Result("b"); !ok || r.Err == nil {
		t.Error("Result(b) should return the failed chapter")
	}
}
