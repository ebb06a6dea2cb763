package domain

import (
	"strings"
	"testing"
)

func TestDisplayTitle(t *testing.T) {
	if got := (Document{Title: "Intro"}).DisplayTitle(); got != "Intro" {
		t.Errorf("DisplayTitle() = %q, want %q", got, "Intro")
	}
	if got := (Document{}).DisplayTitle(); got != UnknownTitle {
		t.Errorf("DisplayTitle() = %q, want %q", got, UnknownTitle)
	}
}

func TestSourceOf_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short content unmodified", "hello", "hello"},
		{"exactly at limit unmodified", strings.Repeat("a", PreviewLimit), strings.Repeat("a", PreviewLimit)},
		{"one over limit truncated", strings.Repeat("a", PreviewLimit+1), strings.Repeat("a", PreviewLimit) + "..."},
		{"empty content", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := SourceOf(Document{Content: tc.content})
			if src.ContentPreview != tc.want {
				t.Errorf("ContentPreview = %q, want %q", src.ContentPreview, tc.want)
			}
		})
	}
}

func TestSourceOf_PreviewCountsRunes(t *testing.T) {
	content := strings.Repeat("é", PreviewLimit+10)
	src := SourceOf(Document{Content: content})

	want := strings.Repeat("é", PreviewLimit) + "..."
	if src.ContentPreview != want {
		t.Errorf("ContentPreview truncated at %d runes, want %d", len([]rune(src.ContentPreview))-3, PreviewLimit)
	}
}

func TestSourceOf_NilMetadata(t *testing.T) {
	src := SourceOf(Document{Title: "t", Content: "c"})
	if src.Metadata == nil {
		t.Fatal("expected non-nil metadata map")
	}
	if len(src.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", src.Metadata)
	}
}
