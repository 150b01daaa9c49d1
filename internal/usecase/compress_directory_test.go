package usecases_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pdfcompress/internal/domain/entities"
	infraRepos "pdfcompress/internal/infrastructure/repositories"
	usecases "pdfcompress/internal/usecase"
)

func TestCompressDirectory(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	for name, content := range map[string]string{
		"a.pdf":        "%PDF-1.4 first document",
		"nested/b.pdf": "%PDF-1.4 second document",
		"notes.txt":    "ignored",
	} {
		path := filepath.Join(in, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	compressor := &fakeCompressor{results: map[string]fakeResult{
		"a.pdf": {size: 1},
		"b.pdf": {err: errors.New("broken xref")},
	}}
	f := newFixture(compressor, nil)
	uc := usecases.NewCompressDirectoryUseCase(f.coordinator, infraRepos.NewFileSystemRepository(), nil)

	result, err := uc.Execute(context.Background(), in, out, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Job.Status != entities.JobCompleted {
		t.Errorf("Expected completed job, got %s", result.Job.Status)
	}
	if len(result.Job.Files) != 2 {
		t.Fatalf("Expected 2 files in job, got %d", len(result.Job.Files))
	}
	if len(result.Written) != 1 || filepath.Base(result.Written[0]) != "compressed_a.pdf" {
		t.Errorf("Expected compressed_a.pdf written, got %v", result.Written)
	}
}

func TestCompressDirectoryEmpty(t *testing.T) {
	f := newFixture(&fakeCompressor{}, nil)
	uc := usecases.NewCompressDirectoryUseCase(f.coordinator, infraRepos.NewFileSystemRepository(), nil)

	if _, err := uc.Execute(context.Background(), t.TempDir(), t.TempDir(), nil); !errors.Is(err, entities.ErrNoFiles) {
		t.Errorf("Expected ErrNoFiles, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}
