package entities

import (
	"strings"
	"time"
)

// ComponentRole роль компонента интерфейса
type ComponentRole string

const (
	RoleFileUploader   ComponentRole = "file-uploader"
	RoleBulkUploader   ComponentRole = "bulk-uploader"
	RoleProgress       ComponentRole = "progress-tracker"
	RoleResults        ComponentRole = "results-display"
	RoleSettings       ComponentRole = "settings-panel"
	RoleNotifications  ComponentRole = "notification-system"
	RoleFileManager    ComponentRole = "file-manager"
	RoleImageConverter ComponentRole = "image-converter"
)

// Rejection файл, не принятый компонентом выбора файлов
type Rejection struct {
	Name   string
	Size   int64
	Reason string
}

// NotificationVariant вид уведомления
type NotificationVariant string

const (
	NotifySuccess  NotificationVariant = "success"
	NotifyInfo     NotificationVariant = "info"
	NotifyWarning  NotificationVariant = "warning"
	NotifyError    NotificationVariant = "error"
	NotifyLoading  NotificationVariant = "loading"
	NotifyProgress NotificationVariant = "progress"
)

// Действия уведомлений
const (
	ActionRetry   = "retry"
	ActionUpgrade = "upgrade"
	ActionDismiss = "dismiss"
)

// NotificationAction кнопка уведомления
type NotificationAction struct {
	ID    string
	Label string
}

// Notification всплывающее уведомление
type Notification struct {
	ID        string
	Variant   NotificationVariant
	Title     string
	Message   string
	Actions   []NotificationAction
	Progress  int
	CreatedAt time.Time
}

// ResultItem строка результатов для одного файла
type ResultItem struct {
	Index            int
	FileName         string
	State            FileSubState
	OriginalSize     int64
	CompressedSize   int64
	ReductionPercent float64
	DownloadURL      string
	Error            string
}

// Ratio коэффициент сжатия (исходный размер к итоговому)
func (r ResultItem) Ratio() float64 {
	if r.CompressedSize <= 0 {
		return 0
	}
	return float64(r.OriginalSize) / float64(r.CompressedSize)
}

// ResultsModel данные для отображения результатов задания
type ResultsModel struct {
	JobID            string
	Items            []ResultItem
	Summary          Summary
	ProcessingTimeMs int64
	Cancelled        bool
}

// NewResultsModel строит модель результатов по заданию. urls содержит
// адреса скачивания по индексу файла.
func NewResultsModel(job *Job, urls map[int]string) ResultsModel {
	model := ResultsModel{
		JobID:            job.ID,
		Items:            make([]ResultItem, 0, len(job.Files)),
		ProcessingTimeMs: job.ProcessingTimeMs,
		Cancelled:        job.Status == JobCancelled,
	}
	if job.Summary != nil {
		model.Summary = *job.Summary
	}
	for _, f := range job.Files {
		item := ResultItem{
			Index:        f.Index,
			State:        f.SubState,
			OriginalSize: f.OriginalSize,
			Error:        f.ErrorText(),
			DownloadURL:  urls[f.Index],
		}
		if f.Handle != nil {
			item.FileName = f.Handle.Name
		}
		if f.SubState == FileSucceeded {
			item.CompressedSize = f.CompressedSize
			item.ReductionPercent = f.ReductionPercent()
		}
		if f.Validation != nil && !f.Validation.IsValid && item.Error == "" {
			item.Error = strings.Join(f.Validation.Errors, "; ")
		}
		model.Items = append(model.Items, item)
	}
	return model
}
