package cloud_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/cloud"
)

type memBackend struct {
	mu      sync.Mutex
	objects map[string][]byte
	pingErr error
	closed  bool
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}}
}

func (b *memBackend) Ping(context.Context) error { return b.pingErr }

func (b *memBackend) List(_ context.Context, folder string) ([]entities.FileRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []entities.FileRecord
	for key, data := range b.objects {
		if strings.HasPrefix(key, folder) {
			out = append(out, entities.FileRecord{ID: cloud.RecordID("mem", key), Name: key, Size: int64(len(data)), Source: "mem"})
		}
	}
	return out, nil
}

func (b *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, entities.ErrFileNotFound
	}
	return data, nil
}

func (b *memBackend) Put(_ context.Context, key, _ string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return entities.ErrFileNotFound
	}
	delete(b.objects, key)
	return nil
}

func (b *memBackend) Close() error {
	b.closed = true
	return nil
}

func factoryFor(b *memBackend) cloud.BackendFactory {
	return func(context.Context) (cloud.Backend, error) { return b, nil }
}

func TestManagerRequiresAuthentication(t *testing.T) {
	ctx := context.Background()
	m := cloud.NewManager(nil, nil)
	m.Register("mem", "results", factoryFor(newMemBackend()))

	h := entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF"))

	if _, err := m.UploadFile(ctx, "mem", h); !entities.IsKind(err, entities.KindAuthRequired) {
		t.Errorf("Expected AuthRequired, got %v", err)
	}
	if _, err := m.ListFiles(ctx, ""); !entities.IsKind(err, entities.KindAuthRequired) {
		t.Errorf("Expected AuthRequired from ListFiles, got %v", err)
	}
	if _, err := m.UploadFile(ctx, "dropbox", h); !entities.IsKind(err, entities.KindCapabilityUnavailable) {
		t.Errorf("Expected CapabilityUnavailable, got %v", err)
	}
	if _, err := m.Authenticate(ctx, "dropbox"); !entities.IsKind(err, entities.KindCapabilityUnavailable) {
		t.Errorf("Expected CapabilityUnavailable from Authenticate, got %v", err)
	}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	var authEvents []bool
	m := cloud.NewManager(func(ok bool) { authEvents = append(authEvents, ok) }, nil)
	backend := newMemBackend()
	m.Register("mem", "results", factoryFor(backend))

	ok, err := m.Authenticate(ctx, "mem")
	if !ok || err != nil {
		t.Fatalf("Expected authentication, got %v %v", ok, err)
	}
	if !m.IsAuthenticated("mem") {
		t.Fatal("Expected provider to be authenticated")
	}

	res, err := m.UploadFile(ctx, "mem", entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF-1")))
	if err != nil || !res.Success {
		t.Fatalf("Expected upload success, got %+v %v", res, err)
	}
	providerID, key, ok := cloud.ParseRecordID(res.ID)
	if !ok || providerID != "mem" || !strings.HasPrefix(key, "results/") || !strings.HasSuffix(key, "/a.pdf") {
		t.Errorf("Unexpected record id %s", res.ID)
	}

	list, err := m.ListFiles(ctx, "results")
	if err != nil || len(list) != 1 {
		t.Fatalf("Expected one file, got %v %v", list, err)
	}

	data, err := m.DownloadFile(ctx, res.ID)
	if err != nil || string(data) != "%PDF-1" {
		t.Errorf("Expected uploaded data, got %q %v", data, err)
	}

	if err := m.DeleteFile(ctx, res.ID); err != nil {
		t.Errorf("Expected delete, got %v", err)
	}

	if err := m.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if m.IsAuthenticated("mem") || !backend.closed {
		t.Error("Expected provider to be disconnected and closed")
	}
	if len(authEvents) != 2 || !authEvents[0] || authEvents[1] {
		t.Errorf("Expected auth events [true false], got %v", authEvents)
	}
}

func TestManagerPingFailure(t *testing.T) {
	backend := newMemBackend()
	backend.pingErr = errors.New("403")
	m := cloud.NewManager(nil, nil)
	m.Register("mem", "", factoryFor(backend))

	ok, err := m.Authenticate(context.Background(), "mem")
	if ok || !entities.IsKind(err, entities.KindAuthRequired) {
		t.Errorf("Expected AuthRequired failure, got %v %v", ok, err)
	}
	if !backend.closed {
		t.Error("Expected backend to be closed after failed ping")
	}
}

func TestParseRecordID(t *testing.T) {
	tests := []struct {
		id       string
		provider string
		key      string
		ok       bool
	}{
		{"s3:results/x/a.pdf", "s3", "results/x/a.pdf", true},
		{"gcs:a:b", "gcs", "a:b", true},
		{"noseparator", "", "", false},
		{":key", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, k, ok := cloud.ParseRecordID(tt.id)
			if p != tt.provider || k != tt.key || ok != tt.ok {
				t.Errorf("Expected (%s,%s,%v), got (%s,%s,%v)", tt.provider, tt.key, tt.ok, p, k, ok)
			}
		})
	}
}
