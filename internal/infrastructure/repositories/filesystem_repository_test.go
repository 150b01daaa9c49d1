package repositories_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/repositories"
)

func TestLoadHandle(t *testing.T) {
	dir := t.TempDir()
	repo := repositories.NewFileSystemRepository()

	tests := []struct {
		name     string
		file     string
		content  string
		wantMime string
	}{
		{"pdf", "doc.pdf", "%PDF-1.4\n%%EOF\n", entities.MimePDF},
		{"text", "notes.txt", "just some notes", "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			h, err := repo.LoadHandle(path)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if h.MimeType != tt.wantMime {
				t.Errorf("Expected %s, got %s", tt.wantMime, h.MimeType)
			}
			if h.Name != tt.file || h.Size != int64(len(tt.content)) || h.ID == "" {
				t.Errorf("Unexpected handle %+v", h)
			}
		})
	}

	if _, err := repo.LoadHandle(filepath.Join(dir, "missing.pdf")); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestWriteFileDoesNotOverwrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	repo := repositories.NewFileSystemRepository()

	first, err := repo.WriteFile(dir, "a.pdf", []byte("one"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	second, err := repo.WriteFile(dir, "a.pdf", []byte("two"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if first == second {
		t.Fatalf("Expected distinct paths, got %s twice", first)
	}
	if filepath.Base(second) != "a (1).pdf" {
		t.Errorf("Expected a (1).pdf, got %s", filepath.Base(second))
	}
	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Errorf("Expected first file untouched, got %q", data)
	}
}
