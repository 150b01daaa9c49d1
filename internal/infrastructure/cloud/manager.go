package cloud

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// AuthListener получает изменение признака авторизации
type AuthListener func(authenticated bool)

// Manager объединяет облачных провайдеров за интерфейсом CloudProvider
type Manager struct {
	mu        sync.Mutex
	factories map[string]BackendFactory
	connected map[string]Backend
	prefixes  map[string]string
	onAuth    AuthListener
	logger    repositories.Logger
}

// NewManager создает менеджер без провайдеров
func NewManager(onAuth AuthListener, logger repositories.Logger) *Manager {
	return &Manager{
		factories: make(map[string]BackendFactory),
		connected: make(map[string]Backend),
		prefixes:  make(map[string]string),
		onAuth:    onAuth,
		logger:    logger,
	}
}

// NewManagerFromConfig регистрирует включенных в конфигурации провайдеров
func NewManagerFromConfig(cfg entities.CloudConfig, onAuth AuthListener, logger repositories.Logger) *Manager {
	m := NewManager(onAuth, logger)
	if cfg.GCS.Enabled {
		m.Register(ProviderGCS, cfg.GCS.Prefix, NewGCSFactory(cfg.GCS))
	}
	if cfg.S3.Enabled {
		m.Register(ProviderS3, cfg.S3.Prefix, NewS3Factory(cfg.S3))
	}
	return m
}

// Register добавляет провайдера
func (m *Manager) Register(providerID, prefix string, factory BackendFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[providerID] = factory
	m.prefixes[providerID] = prefix
}

// Providers возвращает идентификаторы зарегистрированных провайдеров
func (m *Manager) Providers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.factories))
	for id := range m.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Authenticate подключается к провайдеру и проверяет доступ
func (m *Manager) Authenticate(ctx context.Context, providerID string) (bool, error) {
	m.mu.Lock()
	factory, ok := m.factories[providerID]
	_, already := m.connected[providerID]
	m.mu.Unlock()

	if !ok {
		return false, unavailable(providerID)
	}
	if already {
		return true, nil
	}

	backend, err := factory(ctx)
	if err != nil {
		return false, entities.NewKindError(entities.KindAuthRequired, err)
	}
	if err := backend.Ping(ctx); err != nil {
		_ = backend.Close()
		m.logWarning("Провайдер %s недоступен: %v", providerID, err)
		return false, entities.NewKindError(entities.KindAuthRequired, fmt.Errorf("%s: %w", providerID, err))
	}

	m.mu.Lock()
	m.connected[providerID] = backend
	m.mu.Unlock()

	m.logInfo("Подключен облачный провайдер %s", providerID)
	if m.onAuth != nil {
		m.onAuth(true)
	}
	return true, nil
}

// IsAuthenticated проверяет подключение провайдера
func (m *Manager) IsAuthenticated(providerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.connected[providerID]
	return ok
}

// ListFiles перечисляет файлы всех подключенных провайдеров
func (m *Manager) ListFiles(ctx context.Context, folder string) ([]entities.FileRecord, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.connected))
	for id := range m.connected {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	if len(ids) == 0 {
		return nil, entities.NewKindError(entities.KindAuthRequired, entities.ErrNotAuthenticated)
	}
	sort.Strings(ids)

	out := []entities.FileRecord{}
	for _, id := range ids {
		backend, err := m.backend(id)
		if err != nil {
			return nil, err
		}
		records, err := backend.List(ctx, folder)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// DownloadFile читает файл по идентификатору записи
func (m *Manager) DownloadFile(ctx context.Context, id string) ([]byte, error) {
	providerID, key, ok := ParseRecordID(id)
	if !ok {
		return nil, entities.NewKindError(entities.KindInvalidInput, fmt.Errorf("%w: %s", entities.ErrFileNotFound, id))
	}
	backend, err := m.backend(providerID)
	if err != nil {
		return nil, err
	}
	return backend.Get(ctx, key)
}

// UploadFile загружает файл к провайдеру
func (m *Manager) UploadFile(ctx context.Context, providerID string, handle *entities.FileHandle) (*entities.UploadResult, error) {
	if handle == nil {
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNilHandle)
	}
	backend, err := m.backend(providerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	key := objectKey(m.prefixes[providerID], handle.Name)
	m.mu.Unlock()

	if err := backend.Put(ctx, key, handle.MimeType, handle.Data); err != nil {
		m.logError("Ошибка загрузки %s в %s: %v", handle.Name, providerID, err)
		return &entities.UploadResult{Success: false}, err
	}

	m.logSuccess("Файл %s (%s) загружен в %s", handle.Name, humanize.IBytes(uint64(len(handle.Data))), providerID)
	return &entities.UploadResult{Success: true, ID: RecordID(providerID, key)}, nil
}

// DeleteFile удаляет файл по идентификатору записи
func (m *Manager) DeleteFile(ctx context.Context, id string) error {
	providerID, key, ok := ParseRecordID(id)
	if !ok {
		return entities.NewKindError(entities.KindInvalidInput, fmt.Errorf("%w: %s", entities.ErrFileNotFound, id))
	}
	backend, err := m.backend(providerID)
	if err != nil {
		return err
	}
	return backend.Delete(ctx, key)
}

// Disconnect отключает всех провайдеров
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	backends := m.connected
	m.connected = make(map[string]Backend)
	m.mu.Unlock()

	var firstErr error
	for id, b := range backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", id, err)
		}
	}
	if len(backends) > 0 {
		m.logInfo("Облачные провайдеры отключены")
		if m.onAuth != nil {
			m.onAuth(false)
		}
	}
	return firstErr
}

// backend возвращает подключенного провайдера
func (m *Manager) backend(providerID string) (Backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.factories[providerID]; !ok {
		return nil, unavailable(providerID)
	}
	b, ok := m.connected[providerID]
	if !ok {
		return nil, entities.NewKindError(entities.KindAuthRequired, fmt.Errorf("%w: %s", entities.ErrNotAuthenticated, providerID))
	}
	return b, nil
}

func unavailable(providerID string) error {
	return entities.NewKindError(entities.KindCapabilityUnavailable, fmt.Errorf("%w: %s", entities.ErrUnknownProvider, providerID))
}

func (m *Manager) logInfo(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Info(format, args...)
	}
}

func (m *Manager) logSuccess(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Success(format, args...)
	}
}

func (m *Manager) logWarning(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Warning(format, args...)
	}
}

func (m *Manager) logError(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Error(format, args...)
	}
}
