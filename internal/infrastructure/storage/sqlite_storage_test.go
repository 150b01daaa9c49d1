package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/storage"
)

func newStorage(t *testing.T, path string) *storage.SQLiteStorage {
	t.Helper()
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := storage.NewSQLiteStorage(db, nil)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return s
}

func TestSQLiteStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t, "")

	h := entities.NewFileHandle("h1", "report.pdf", entities.MimePDF, []byte("%PDF-1.4 data"))
	id, err := s.Save(ctx, h, map[string]string{"jobId": "job-1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(list))
	}
	rec := list[0]
	if rec.ID != id || rec.Name != "report.pdf" || rec.Size != h.Size || rec.Source != storage.SourceLocal {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.Metadata["jobId"] != "job-1" {
		t.Errorf("Expected metadata jobId=job-1, got %v", rec.Metadata)
	}

	data, err := s.Fetch(ctx, id)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != "%PDF-1.4 data" {
		t.Errorf("Expected original data, got %q", data)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Fetch(ctx, id); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, entities.ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound on second delete, got %v", err)
	}
}

func TestSQLiteStoragePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "files.db")

	first := newStorage(t, path)
	if _, err := first.Save(ctx, entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF")), nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := newStorage(t, path)
	list, err := second.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "a.pdf" {
		t.Errorf("Expected persisted a.pdf, got %+v", list)
	}
}

func TestSQLiteStorageRejectsNilHandle(t *testing.T) {
	s := newStorage(t, "")
	if _, err := s.Save(context.Background(), nil, nil); err != entities.ErrNilHandle {
		t.Errorf("Expected ErrNilHandle, got %v", err)
	}
}
