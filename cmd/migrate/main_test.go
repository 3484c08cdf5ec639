package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDraftFromMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		wantTitle   string
		wantContent string
	}{
		{"heading becomes title", "post.md", "# My Post\n\nBody text", "My Post", "Body text"},
		{"file name fallback", "notes.md", "Just text", "notes", "Just text"},
		{"second level heading is content", "a.md", "## Sub\nbody", "a", "## Sub\nbody"},
		{"empty heading ignored", "b.md", "#  \nbody", "b", "#  \nbody"},
		{"leading blank lines", "c.md", "\n\n# Title\nbody\n", "Title", "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := draftFromMarkdown(tt.file, []byte(tt.content))
			if draft.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, draft.Title)
			}
			if draft.Content != tt.wantContent {
				t.Errorf("Expected content %q, got %q", tt.wantContent, draft.Content)
			}
			if draft.Image != "" {
				t.Errorf("Expected no image, got %q", draft.Image)
			}
		})
	}
}

func TestMarkdownFiles(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, mod time.Time) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("# "+name), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("Failed to set times on %s: %v", name, err)
		}
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	write("newer.md", base.Add(time.Hour))
	write("older.md", base)
	write("ignored.txt", base)
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	files, err := markdownFiles(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{filepath.Join(dir, "older.md"), filepath.Join(dir, "newer.md")}
	if len(files) != len(want) {
		t.Fatalf("Expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, files[i])
		}
	}
}
