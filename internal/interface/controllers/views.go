package controllers

import (
	"pdfcompress/internal/domain/entities"
)

// Component компонент интерфейса, зарегистрированный в слое интеграции.
// Роль определяется по набору методов, которые он поддерживает.
type Component interface {
	ID() string
	Role() entities.ComponentRole
}

// UploadView область выбора файлов
type UploadView interface {
	Component
	AddFiles(handles []*entities.FileHandle) []entities.Rejection
	ShowUpload()
	HideUpload()
}

// ProgressView индикатор выполнения задания
type ProgressView interface {
	Component
	Start(jobID string, totalFiles int)
	SetProgress(percent int, stage string)
	SetFile(index, total int, name string)
	Finish(success bool)
	Hide()
}

// ResultsView панель результатов
type ResultsView interface {
	Component
	ShowResults(model entities.ResultsModel)
	ShowError(message string, retriable bool)
	Hide()
}

// SettingsView панель настроек
type SettingsView interface {
	Component
	SetSettings(settings entities.CompressionSettings)
	SetMode(mode entities.ProcessingMode)
	SetTier(tier entities.UserTier)
}

// NotificationView очередь уведомлений
type NotificationView interface {
	Component
	Notify(note entities.Notification) string
	Dismiss(id string) bool
}

// FileListView список сохраненных файлов
type FileListView interface {
	Component
	SetFiles(source string, records []entities.FileRecord) bool
	SetError(message string)
}

// ConverterView панель конвертации изображений
type ConverterView interface {
	Component
	ConversionDone(fileName string, size int64)
	ConversionFailed(message string)
}
