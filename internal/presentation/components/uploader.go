package components

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// Причины отклонения файла загрузчиком
const (
	RejectDuplicate = "duplicate"
	RejectTooLarge  = "too-large"
	RejectTooMany   = "too-many"
	RejectNotPDF    = "not-pdf"
	RejectEmpty     = "empty"
	RejectNotImage  = "not-image"
)

// Uploader выборка PDF файлов. Одиночный загрузчик хранит один файл и
// заменяет его новым, пакетный ограничивает число и размер файлов и
// отбрасывает повторы по (имя, размер).
type Uploader struct {
	base

	mu       sync.Mutex
	multiple bool
	maxFiles int
	maxSize  int64
	files    []*entities.FileHandle
	rejected []entities.Rejection
	visible  bool
}

// NewUploader создает одиночный загрузчик
func NewUploader(limits entities.LimitsConfig, publisher repositories.EventPublisher, logger repositories.Logger) *Uploader {
	return &Uploader{
		base:     newBase(entities.RoleFileUploader, publisher, logger),
		maxFiles: 1,
		maxSize:  limits.MaxSingleSize(),
		visible:  true,
	}
}

// NewBulkUploader создает пакетный загрузчик
func NewBulkUploader(limits entities.LimitsConfig, publisher repositories.EventPublisher, logger repositories.Logger) *Uploader {
	return &Uploader{
		base:     newBase(entities.RoleBulkUploader, publisher, logger),
		multiple: true,
		maxFiles: limits.MaxBulkFiles,
		maxSize:  limits.MaxBulkSize(),
		visible:  true,
	}
}

// Drop добавляет файлы, выбранные пользователем. Принятые файлы получают
// постоянные идентификаторы и публикуются одним событием fileUploaded.
func (u *Uploader) Drop(handles []*entities.FileHandle) []entities.Rejection {
	u.mu.Lock()
	var accepted []*entities.FileHandle
	var replaced []*entities.FileHandle
	var rejected []entities.Rejection

	seen := make(map[entities.FileKey]bool, len(u.files)+len(handles))
	for _, f := range u.files {
		seen[f.Key()] = true
	}

	for _, h := range handles {
		if h == nil {
			continue
		}
		if reason := u.check(h, seen, len(accepted)); reason != "" {
			rejected = append(rejected, entities.Rejection{Name: h.Name, Size: h.Size, Reason: reason})
			continue
		}
		seen[h.Key()] = true
		handle := *h
		if handle.ID == "" {
			handle.ID = uuid.NewString()
		}
		accepted = append(accepted, &handle)
	}

	if len(accepted) > 0 {
		if u.multiple {
			u.files = append(u.files, accepted...)
		} else {
			replaced = u.files
			u.files = accepted
		}
	}
	u.rejected = rejected
	u.mu.Unlock()

	for _, old := range replaced {
		u.emit(entities.EventFileRemoved, entities.FileRemovedPayload{FileID: old.ID})
	}
	if len(accepted) > 0 {
		u.emit(entities.EventFileUploaded, entities.FileUploadedPayload{Handles: accepted})
	}
	for _, r := range rejected {
		u.logDebug("Файл %s отклонен загрузчиком: %s", r.Name, r.Reason)
	}
	u.changed()
	return rejected
}

// AddFiles добавляет файлы, полученные не от пользователя (конвертация,
// файловый менеджер). Правила те же, что у Drop.
func (u *Uploader) AddFiles(handles []*entities.FileHandle) []entities.Rejection {
	return u.Drop(handles)
}

// check возвращает причину отклонения или пустую строку
func (u *Uploader) check(h *entities.FileHandle, seen map[entities.FileKey]bool, acceptedInDrop int) string {
	switch {
	case h.Size <= 0:
		return RejectEmpty
	case h.MimeType != entities.MimePDF && !strings.HasSuffix(strings.ToLower(h.Name), ".pdf"):
		return RejectNotPDF
	case seen[h.Key()]:
		return RejectDuplicate
	case u.maxSize > 0 && h.Size > u.maxSize:
		return RejectTooLarge
	}
	if u.multiple {
		if u.maxFiles > 0 && len(u.files)+acceptedInDrop >= u.maxFiles {
			return RejectTooMany
		}
	} else if acceptedInDrop >= 1 {
		return RejectTooMany
	}
	return ""
}

// Remove удаляет файл из выборки по идентификатору
func (u *Uploader) Remove(fileID string) bool {
	u.mu.Lock()
	idx := -1
	for i, f := range u.files {
		if f.ID == fileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		u.mu.Unlock()
		return false
	}
	u.files = append(u.files[:idx], u.files[idx+1:]...)
	u.mu.Unlock()

	u.emit(entities.EventFileRemoved, entities.FileRemovedPayload{FileID: fileID})
	u.changed()
	return true
}

// Clear очищает выборку
func (u *Uploader) Clear() {
	u.mu.Lock()
	hadFiles := len(u.files) > 0
	u.files = nil
	u.rejected = nil
	u.mu.Unlock()

	if hadFiles {
		u.emit(entities.EventFilesCleared, nil)
	}
	u.changed()
}

// Start запрашивает обработку текущей выборки
func (u *Uploader) Start() bool {
	u.mu.Lock()
	ids := make([]string, len(u.files))
	for i, f := range u.files {
		ids[i] = f.ID
	}
	u.mu.Unlock()

	if len(ids) == 0 {
		return false
	}
	u.emit(entities.EventServiceStartRequest, entities.ServiceStartPayload{
		ServiceType: entities.ServiceCompression,
		FileIDs:     ids,
	})
	return true
}

// Files возвращает копию выборки
func (u *Uploader) Files() []*entities.FileHandle {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*entities.FileHandle, len(u.files))
	copy(out, u.files)
	return out
}

// Multiple проверяет, принимает ли загрузчик несколько файлов
func (u *Uploader) Multiple() bool {
	return u.multiple
}

// ShowUpload показывает область загрузки
func (u *Uploader) ShowUpload() {
	u.setVisible(true)
}

// HideUpload скрывает область загрузки
func (u *Uploader) HideUpload() {
	u.setVisible(false)
}

// Visible проверяет видимость области загрузки
func (u *Uploader) Visible() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.visible
}

func (u *Uploader) setVisible(v bool) {
	u.mu.Lock()
	u.visible = v
	u.mu.Unlock()
	u.changed()
}

// Render возвращает разметку tview
func (u *Uploader) Render() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	var b strings.Builder
	if u.multiple {
		fmt.Fprintf(&b, "[yellow]📚 Пакетная загрузка[white] (до %d файлов, до %s каждый)\n\n", u.maxFiles, size(u.maxSize))
	} else {
		fmt.Fprintf(&b, "[yellow]📄 Загрузка файла[white] (до %s)\n\n", size(u.maxSize))
	}

	if len(u.files) == 0 {
		b.WriteString("[gray]Файлы не выбраны[white]\n")
	}
	var total int64
	for i, f := range u.files {
		total += f.Size
		fmt.Fprintf(&b, "  %d. %s [cyan]%s[white]\n", i+1,
			TruncateFileName(f.Name, MaxFileNameLength, MaxFileNameDisplay), size(f.Size))
	}
	if len(u.files) > 1 {
		fmt.Fprintf(&b, "\n  Всего: [cyan]%d[white] файл(ов), [cyan]%s[white]\n", len(u.files), size(total))
	}

	for _, r := range u.rejected {
		fmt.Fprintf(&b, "[red]  ✗ %s: %s[white]\n", r.Name, rejectionText(r.Reason))
	}
	return b.String()
}

func rejectionText(reason string) string {
	switch reason {
	case RejectDuplicate:
		return "уже выбран"
	case RejectTooLarge:
		return "превышает допустимый размер"
	case RejectTooMany:
		return "превышено число файлов"
	case RejectNotPDF:
		return "не PDF документ"
	case RejectEmpty:
		return "файл пустой"
	case RejectNotImage:
		return "не JPEG или PNG изображение"
	default:
		return reason
	}
}
