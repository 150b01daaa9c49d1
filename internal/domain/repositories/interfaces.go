package repositories

import (
	"context"

	"pdfcompress/internal/domain/entities"
)

// Validator проверяет входной файл. Операция быстрая и без побочных эффектов.
type Validator interface {
	Check(handle *entities.FileHandle) entities.ValidationResult
}

// Analyser описывает документ. Ошибки анализа не влияют на задание.
type Analyser interface {
	Describe(ctx context.Context, handle *entities.FileHandle) (*entities.Analysis, error)
}

// Compressor сжимает PDF документ
type Compressor interface {
	Compress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings) (*entities.CompressionOutput, error)
}

// ProgressReporter получает долю выполнения текущего файла в диапазоне [0,1)
type ProgressReporter func(fraction float64)

// ProgressCompressor компрессор, сообщающий прогресс по файлу
type ProgressCompressor interface {
	Compressor
	CompressWithProgress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings, report ProgressReporter) (*entities.CompressionOutput, error)
}

// Storage локальное хранилище файлов
type Storage interface {
	Save(ctx context.Context, handle *entities.FileHandle, metadata map[string]string) (string, error)
	List(ctx context.Context) ([]entities.FileRecord, error)
	Fetch(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// CloudProvider облачное хранилище
type CloudProvider interface {
	Authenticate(ctx context.Context, providerID string) (bool, error)
	IsAuthenticated(providerID string) bool
	ListFiles(ctx context.Context, folder string) ([]entities.FileRecord, error)
	DownloadFile(ctx context.Context, id string) ([]byte, error)
	UploadFile(ctx context.Context, providerID string, handle *entities.FileHandle) (*entities.UploadResult, error)
	DeleteFile(ctx context.Context, id string) error
	Disconnect() error
}

// ImageConverter собирает PDF из изображений
type ImageConverter interface {
	Convert(ctx context.Context, images []*entities.FileHandle, quality int) ([]byte, error)
}

// EventPublisher публикует события шины
type EventPublisher interface {
	Publish(topic entities.Topic, payload interface{})
}

// FileRepository интерфейс для работы с файловой системой
type FileRepository interface {
	LoadHandle(path string) (*entities.FileHandle, error)
	ListPDFFiles(directory string) ([]string, error)
	WriteFile(directory, name string, data []byte) (string, error)
	FileExists(path string) bool
	CreateDirectory(path string) error
}
