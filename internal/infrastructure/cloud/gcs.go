package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"pdfcompress/internal/domain/entities"
)

// GCSBackend хранилище Google Cloud Storage
type GCSBackend struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSFactory возвращает фабрику подключения к GCS. Без файла ключа
// используются учетные данные приложения по умолчанию.
func NewGCSFactory(cfg entities.GCSConfig) BackendFactory {
	return func(ctx context.Context) (Backend, error) {
		if cfg.Bucket == "" {
			return nil, errors.New("не указан bucket GCS")
		}
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания клиента GCS: %w", err)
		}
		return &GCSBackend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
	}
}

// Ping проверяет доступ к bucket
func (g *GCSBackend) Ping(ctx context.Context) error {
	_, err := g.client.Bucket(g.bucket).Attrs(ctx)
	return err
}

// List перечисляет объекты в папке
func (g *GCSBackend) List(ctx context.Context, folder string) ([]entities.FileRecord, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: folderPrefix(g.prefix, folder)})

	var out []entities.FileRecord
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка листинга GCS: %w", err)
		}
		out = append(out, entities.FileRecord{
			ID:        RecordID(ProviderGCS, attrs.Name),
			Name:      path.Base(attrs.Name),
			Size:      attrs.Size,
			MimeType:  attrs.ContentType,
			Source:    ProviderGCS,
			CreatedAt: attrs.Created,
			Metadata:  attrs.Metadata,
		})
	}
	return out, nil
}

// Get читает объект целиком
func (g *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, key)
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Put записывает объект и сверяет размер
func (g *GCSBackend) Put(ctx context.Context, key, contentType string, data []byte) error {
	obj := g.client.Bucket(g.bucket).Object(key)

	w := obj.NewWriter(ctx)
	w.ChunkSize = 0
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return err
	}
	if attrs.Size != int64(len(data)) {
		return fmt.Errorf("несовпадение размера: локально=%d в облаке=%d", len(data), attrs.Size)
	}
	return nil
}

// Delete удаляет объект
func (g *GCSBackend) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %s", entities.ErrFileNotFound, key)
	}
	return err
}

// Close закрывает клиент
func (g *GCSBackend) Close() error {
	return g.client.Close()
}
