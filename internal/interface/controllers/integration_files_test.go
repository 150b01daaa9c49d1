package controllers_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/eventbus"
	"pdfcompress/internal/interface/controllers"
	"pdfcompress/internal/presentation/components"
	usecases "pdfcompress/internal/usecase"
)

type memStorage struct {
	records []entities.FileRecord
	data    map[string][]byte
	saved   []map[string]string
}

func (m *memStorage) Save(_ context.Context, h *entities.FileHandle, metadata map[string]string) (string, error) {
	id := "saved-" + h.Name
	m.records = append(m.records, entities.FileRecord{ID: id, Name: h.Name, Size: h.Size, MimeType: h.MimeType, Source: entities.SourceLocal})
	m.data[id] = h.Data
	m.saved = append(m.saved, metadata)
	return id, nil
}

func (m *memStorage) List(context.Context) ([]entities.FileRecord, error) {
	return append([]entities.FileRecord(nil), m.records...), nil
}

func (m *memStorage) Fetch(_ context.Context, id string) ([]byte, error) {
	data, ok := m.data[id]
	if !ok {
		return nil, entities.ErrFileNotFound
	}
	return data, nil
}

func (m *memStorage) Delete(_ context.Context, id string) error {
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			delete(m.data, id)
			return nil
		}
	}
	return entities.ErrFileNotFound
}

type memCloud struct {
	authErr  error
	uploaded []*entities.FileHandle
	records  []entities.FileRecord
}

func (c *memCloud) Authenticate(_ context.Context, providerID string) (bool, error) {
	if c.authErr != nil {
		return false, entities.NewKindError(entities.KindAuthRequired, c.authErr)
	}
	return true, nil
}

func (c *memCloud) IsAuthenticated(string) bool { return c.authErr == nil }

func (c *memCloud) ListFiles(context.Context, string) ([]entities.FileRecord, error) {
	return c.records, nil
}

func (c *memCloud) DownloadFile(context.Context, string) ([]byte, error) {
	return []byte("%PDF-1.4 cloud"), nil
}

func (c *memCloud) UploadFile(_ context.Context, providerID string, h *entities.FileHandle) (*entities.UploadResult, error) {
	c.uploaded = append(c.uploaded, h)
	return &entities.UploadResult{Success: true, ID: providerID + ":" + h.Name}, nil
}

func (c *memCloud) DeleteFile(context.Context, string) error { return nil }

func (c *memCloud) Disconnect() error { return nil }

type filesHarness struct {
	storage     *memStorage
	cloud       *memCloud
	integration *controllers.Integration
	uploader    *components.Uploader
	results     *components.ResultsDisplay
	localFM     *components.FileManager
	cloudFM     *components.FileManager
	notes       *components.Notifications
}

func newFilesHarness(t *testing.T, saveResults bool) *filesHarness {
	t.Helper()
	cfg := entities.DefaultConfig()
	cfg.Compression.AutoStart = saveResults
	cfg.Storage.SaveResults = saveResults

	bus := eventbus.New(nil)
	state := usecases.NewAppState(bus, nil)
	coordinator := usecases.NewCoordinator(pdfValidator{}, nil, &scriptedCompressor{}, bus, state, nil)

	h := &filesHarness{
		storage: &memStorage{data: map[string][]byte{}},
		cloud:   &memCloud{},
	}
	h.integration = controllers.NewIntegration(controllers.IntegrationDeps{
		Bus:         bus,
		State:       state,
		Coordinator: coordinator,
		Files:       &memFiles{written: map[string][]byte{}},
		Storage:     h.storage,
		Cloud:       h.cloud,
		Config:      cfg,
	})
	h.integration.SetRunner(func(task func()) { task() })
	h.integration.Start(context.Background())
	t.Cleanup(h.integration.Stop)

	h.uploader = components.NewUploader(cfg.Limits, bus, nil)
	h.results = components.NewResultsDisplay(bus, nil)
	h.localFM = components.NewFileManager(entities.SourceLocal, bus, nil)
	h.cloudFM = components.NewFileManager(entities.SourceCloud, bus, nil)
	h.notes = components.NewNotifications(cfg.UI, bus, nil)
	h.notes.SetScheduler(noTimers)

	for _, c := range []controllers.Component{h.uploader, h.results, h.localFM, h.cloudFM, h.notes} {
		h.integration.Register(c)
	}
	return h
}

func (h *filesHarness) titles() []string {
	var out []string
	for _, n := range h.notes.All() {
		out = append(out, n.Title)
	}
	return out
}

func TestIntegration_SavedResultsListedAndReopened(t *testing.T) {
	h := newFilesHarness(t, true)

	h.uploader.Drop([]*entities.FileHandle{entities.NewFileHandle("", "doc.pdf", entities.MimePDF, []byte("%PDF-1.4 document body"))})
	if len(h.storage.saved) != 1 {
		t.Fatalf("Expected 1 saved result, got %d", len(h.storage.saved))
	}
	if meta := h.storage.saved[0]; meta["originalName"] != "doc.pdf" || meta["jobId"] == "" {
		t.Errorf("Unexpected metadata %v", meta)
	}

	h.localFM.Refresh()
	view := h.localFM.View()
	if len(view) != 1 || view[0].Name != "compressed_doc.pdf" {
		t.Fatalf("Expected saved record in local list, got %+v", view)
	}
	if len(h.cloudFM.View()) != 0 {
		t.Error("Expected cloud list to ignore local records")
	}

	h.integration.Reset()
	if !h.localFM.Download(view[0].ID) {
		t.Fatal("Expected download request for a listed record")
	}
	files := h.uploader.Files()
	if len(files) != 1 || files[0].Name != "compressed_doc.pdf" || files[0].MimeType != entities.MimePDF {
		t.Errorf("Expected record pushed to uploader, got %+v", files)
	}
}

func TestIntegration_DeleteRelists(t *testing.T) {
	h := newFilesHarness(t, false)
	h.storage.records = []entities.FileRecord{
		{ID: "1", Name: "a.pdf", Source: entities.SourceLocal},
		{ID: "2", Name: "b.pdf", Source: entities.SourceLocal},
	}
	h.storage.data["1"] = []byte("a")
	h.storage.data["2"] = []byte("b")

	h.localFM.Refresh()
	if !h.localFM.Delete("1") {
		t.Fatal("Expected delete request")
	}

	view := h.localFM.View()
	if len(view) != 1 || view[0].ID != "2" {
		t.Errorf("Expected list refreshed after delete, got %+v", view)
	}
	if !strings.Contains(strings.Join(h.titles(), ","), "Файл удален") {
		t.Errorf("Expected delete notification, got %v", h.titles())
	}
}

func TestIntegration_CloudUploadAndConnect(t *testing.T) {
	h := newFilesHarness(t, true)

	h.uploader.Drop([]*entities.FileHandle{entities.NewFileHandle("", "doc.pdf", entities.MimePDF, []byte("%PDF-1.4 document body"))})
	if !h.results.UploadToCloud(0, "s3") {
		t.Fatal("Expected upload request for a succeeded item")
	}
	if len(h.cloud.uploaded) != 1 || h.cloud.uploaded[0].Name != "compressed_doc.pdf" {
		t.Errorf("Unexpected uploads %+v", h.cloud.uploaded)
	}

	h.cloud.authErr = errors.New("нет ключей")
	h.cloudFM.Connect("gcs")
	var warned bool
	for _, n := range h.notes.All() {
		if n.Variant == entities.NotifyWarning && strings.Contains(n.Title, "gcs") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected auth failure warning, got %v", h.titles())
	}
}

func TestIntegration_ListWithoutStorage(t *testing.T) {
	bus := eventbus.New(nil)
	state := usecases.NewAppState(bus, nil)
	integration := controllers.NewIntegration(controllers.IntegrationDeps{
		Bus:         bus,
		State:       state,
		Coordinator: usecases.NewCoordinator(pdfValidator{}, nil, &scriptedCompressor{}, bus, state, nil),
	})
	integration.SetRunner(func(task func()) { task() })
	integration.Start(context.Background())
	defer integration.Stop()

	fm := components.NewFileManager(entities.SourceLocal, bus, nil)
	integration.Register(fm)
	fm.Refresh()

	if !strings.Contains(fm.Render(), entities.ErrCapabilityUnavailable.Error()) {
		t.Errorf("Expected capability error in view, got %q", fm.Render())
	}
}
