package cloud

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
)

// Идентификаторы провайдеров
const (
	ProviderGCS = "gcs"
	ProviderS3  = "s3"
)

// Backend объектное хранилище одного провайдера
type Backend interface {
	Ping(ctx context.Context) error
	List(ctx context.Context, folder string) ([]entities.FileRecord, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// BackendFactory подключается к провайдеру. Вызывается при авторизации.
type BackendFactory func(ctx context.Context) (Backend, error)

// RecordID строит идентификатор записи вида "<провайдер>:<ключ объекта>"
func RecordID(providerID, key string) string {
	return providerID + ":" + key
}

// ParseRecordID разбирает идентификатор записи
func ParseRecordID(id string) (providerID, key string, ok bool) {
	providerID, key, ok = strings.Cut(id, ":")
	if !ok || providerID == "" || key == "" {
		return "", "", false
	}
	return providerID, key, true
}

// objectKey уникальный ключ объекта для загружаемого файла
func objectKey(prefix, name string) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString(), path.Base(name))
}

// folderPrefix префикс листинга с завершающим слешем
func folderPrefix(prefix, folder string) string {
	p := path.Join(strings.Trim(prefix, "/"), strings.Trim(folder, "/"))
	if p == "" || p == "." {
		return ""
	}
	return p + "/"
}
