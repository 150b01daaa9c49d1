package components

import (
	"fmt"
	"strings"
	"sync"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// ResultsDisplay показывает итог задания или ошибку
type ResultsDisplay struct {
	base

	mu        sync.Mutex
	visible   bool
	model     entities.ResultsModel
	errorText string
	retriable bool
}

// NewResultsDisplay создает панель результатов
func NewResultsDisplay(publisher repositories.EventPublisher, logger repositories.Logger) *ResultsDisplay {
	return &ResultsDisplay{base: newBase(entities.RoleResults, publisher, logger)}
}

// ShowResults отображает результаты задания
func (r *ResultsDisplay) ShowResults(model entities.ResultsModel) {
	r.mu.Lock()
	r.visible = true
	r.model = model
	r.errorText = ""
	r.retriable = hasFailed(model)
	r.mu.Unlock()
	r.changed()
}

// ShowError отображает ошибку задания
func (r *ResultsDisplay) ShowError(message string, retriable bool) {
	r.mu.Lock()
	r.visible = true
	r.model = entities.ResultsModel{}
	r.errorText = message
	r.retriable = retriable
	r.mu.Unlock()
	r.changed()
}

// Hide скрывает панель
func (r *ResultsDisplay) Hide() {
	r.mu.Lock()
	r.visible = false
	r.model = entities.ResultsModel{}
	r.errorText = ""
	r.retriable = false
	r.mu.Unlock()
	r.changed()
}

// Visible проверяет видимость панели
func (r *ResultsDisplay) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// Model возвращает отображаемые результаты
func (r *ResultsDisplay) Model() entities.ResultsModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model
}

// ErrorText текст отображаемой ошибки
func (r *ResultsDisplay) ErrorText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorText
}

// Retriable доступна ли кнопка повтора
func (r *ResultsDisplay) Retriable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retriable
}

// Download запрашивает скачивание результата файла с индексом index
func (r *ResultsDisplay) Download(index int) bool {
	r.mu.Lock()
	var item *entities.ResultItem
	for i := range r.model.Items {
		if r.model.Items[i].Index == index {
			item = &r.model.Items[i]
			break
		}
	}
	if item == nil || item.DownloadURL == "" {
		r.mu.Unlock()
		return false
	}
	payload := entities.DownloadRequestedPayload{URL: item.DownloadURL, FileName: item.FileName}
	r.mu.Unlock()

	r.emit(entities.EventDownloadRequested, payload)
	return true
}

// DownloadAll запрашивает архив всех успешных результатов
func (r *ResultsDisplay) DownloadAll() bool {
	r.mu.Lock()
	jobID := r.model.JobID
	available := 0
	for _, item := range r.model.Items {
		if item.DownloadURL != "" {
			available++
		}
	}
	r.mu.Unlock()

	if available == 0 {
		return false
	}
	r.emit(entities.EventDownloadAllRequested, entities.DownloadAllRequestedPayload{JobID: jobID})
	return true
}

// UploadToCloud запрашивает загрузку результата файла index к провайдеру
func (r *ResultsDisplay) UploadToCloud(index int, providerID string) bool {
	r.mu.Lock()
	url := ""
	for _, item := range r.model.Items {
		if item.Index == index {
			url = item.DownloadURL
			break
		}
	}
	r.mu.Unlock()

	if url == "" {
		return false
	}
	r.emit(entities.EventCloudUploadRequested, entities.CloudUploadPayload{ProviderID: providerID, URL: url})
	return true
}

// Retry запрашивает повтор файлов с ошибкой
func (r *ResultsDisplay) Retry() bool {
	if !r.Retriable() {
		return false
	}
	r.emit(entities.EventRetryRequested, nil)
	return true
}

// NewFile запрашивает возврат к выбору файлов
func (r *ResultsDisplay) NewFile() {
	r.emit(entities.EventNewFileRequested, nil)
}

// Render возвращает разметку tview
func (r *ResultsDisplay) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.visible {
		return ""
	}

	var b strings.Builder
	if r.errorText != "" {
		fmt.Fprintf(&b, "[red]❌ Ошибка:[white] %s\n\n", r.errorText)
		r.renderActions(&b)
		return b.String()
	}

	if r.model.Cancelled {
		b.WriteString("[yellow]⏹ Задание отменено[white]\n\n")
	} else {
		b.WriteString("[green]✅ Сжатие завершено[white]\n\n")
	}

	for _, item := range r.model.Items {
		name := TruncateFileName(item.FileName, MaxFileNameLength, MaxFileNameDisplay)
		switch item.State {
		case entities.FileSucceeded:
			fmt.Fprintf(&b, "  [green]✓[white] %s: [cyan]%s[white] → [cyan]%s[white] ([green]-%.1f%%[white], x%.2f)",
				name, size(item.OriginalSize), size(item.CompressedSize), item.ReductionPercent, item.Ratio())
			if item.DownloadURL != "" {
				fmt.Fprintf(&b, " [yellow](%d)[white] скачать", item.Index+1)
			}
			b.WriteString("\n")
		case entities.FileFailed:
			fmt.Fprintf(&b, "  [red]✗[white] %s: [red]%s[white]\n", name, item.Error)
		default:
			fmt.Fprintf(&b, "  [gray]–[white] %s: пропущен", name)
			if item.Error != "" {
				fmt.Fprintf(&b, " (%s)", item.Error)
			}
			b.WriteString("\n")
		}
	}

	s := r.model.Summary
	fmt.Fprintf(&b, "\n[green]💾 Итого:[white] успешно [green]%d[white]", s.SuccessfulFiles)
	if s.FailedFiles > 0 {
		fmt.Fprintf(&b, ", ошибок [red]%d[white]", s.FailedFiles)
	}
	if s.SkippedFiles > 0 {
		fmt.Fprintf(&b, ", пропущено [yellow]%d[white]", s.SkippedFiles)
	}
	if s.TotalOriginalSize > 0 {
		fmt.Fprintf(&b, "\n  %s → %s, сэкономлено [green]%s (%.1f%%)[white]",
			size(s.TotalOriginalSize), size(s.TotalCompressedSize), size(s.SpaceSaved), s.SpaceSavedPercent)
	}
	b.WriteString("\n\n")
	r.renderActions(&b)
	return b.String()
}

func (r *ResultsDisplay) renderActions(b *strings.Builder) {
	if r.errorText == "" && len(r.model.Items) > 1 {
		b.WriteString("[yellow]A[white] - Скачать все (ZIP)  ")
	}
	if r.retriable {
		b.WriteString("[yellow]R[white] - Повторить  ")
	}
	b.WriteString("[yellow]N[white] - Новый файл\n")
}

func hasFailed(model entities.ResultsModel) bool {
	for _, item := range model.Items {
		if item.State == entities.FileFailed {
			return true
		}
	}
	return false
}
