package components

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// ImageConverter панель сборки PDF из JPEG и PNG изображений
type ImageConverter struct {
	base

	mu      sync.Mutex
	images  []*entities.FileHandle
	quality int
	busy    bool
	result  string
	errText string
}

// NewImageConverter создает панель конвертации
func NewImageConverter(quality int, publisher repositories.EventPublisher, logger repositories.Logger) *ImageConverter {
	return &ImageConverter{
		base:    newBase(entities.RoleImageConverter, publisher, logger),
		quality: entities.ClampImageQuality(quality),
	}
}

// AddImages добавляет изображения. Повторы по (имя, размер) и файлы
// других форматов отклоняются.
func (c *ImageConverter) AddImages(handles []*entities.FileHandle) []entities.Rejection {
	c.mu.Lock()
	seen := make(map[entities.FileKey]bool, len(c.images))
	for _, img := range c.images {
		seen[img.Key()] = true
	}

	var rejected []entities.Rejection
	for _, h := range handles {
		if h == nil {
			continue
		}
		reason := ""
		switch {
		case h.Size <= 0:
			reason = RejectEmpty
		case !isImage(h):
			reason = RejectNotImage
		case seen[h.Key()]:
			reason = RejectDuplicate
		}
		if reason != "" {
			rejected = append(rejected, entities.Rejection{Name: h.Name, Size: h.Size, Reason: reason})
			continue
		}
		seen[h.Key()] = true
		img := *h
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		c.images = append(c.images, &img)
	}
	c.mu.Unlock()

	c.changed()
	return rejected
}

func isImage(h *entities.FileHandle) bool {
	switch h.MimeType {
	case "image/jpeg", "image/png":
		return true
	}
	switch strings.ToLower(filepath.Ext(h.Name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// RemoveImage удаляет изображение по идентификатору
func (c *ImageConverter) RemoveImage(id string) bool {
	c.mu.Lock()
	defer c.changed()
	defer c.mu.Unlock()
	for i, img := range c.images {
		if img.ID == id {
			c.images = append(c.images[:i], c.images[i+1:]...)
			return true
		}
	}
	return false
}

// Images возвращает выбранные изображения
func (c *ImageConverter) Images() []*entities.FileHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*entities.FileHandle, len(c.images))
	copy(out, c.images)
	return out
}

// SetQuality задает качество изображений
func (c *ImageConverter) SetQuality(quality int) {
	c.mu.Lock()
	c.quality = entities.ClampImageQuality(quality)
	c.mu.Unlock()
	c.changed()
}

// Quality текущее качество изображений
func (c *ImageConverter) Quality() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quality
}

// Convert публикует запрос конвертации выбранных изображений
func (c *ImageConverter) Convert() bool {
	c.mu.Lock()
	if c.busy || len(c.images) == 0 {
		c.mu.Unlock()
		return false
	}
	c.busy = true
	c.result = ""
	c.errText = ""
	payload := entities.ConversionRequestedPayload{
		Images:       append([]*entities.FileHandle(nil), c.images...),
		ImageQuality: c.quality,
	}
	c.mu.Unlock()

	c.changed()
	c.emit(entities.EventConversionRequested, payload)
	return true
}

// ConversionDone отображает успешную конвертацию и очищает выборку
func (c *ImageConverter) ConversionDone(fileName string, fileSize int64) {
	c.mu.Lock()
	c.busy = false
	c.images = nil
	c.result = fmt.Sprintf("%s (%s)", fileName, size(fileSize))
	c.errText = ""
	c.mu.Unlock()
	c.changed()
}

// ConversionFailed отображает ошибку конвертации. Выборка сохраняется.
func (c *ImageConverter) ConversionFailed(message string) {
	c.mu.Lock()
	c.busy = false
	c.errText = message
	c.mu.Unlock()
	c.changed()
}

// Busy выполняется ли конвертация
func (c *ImageConverter) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Render возвращает разметку tview
func (c *ImageConverter) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]🖼  Изображения в PDF[white] (качество %d)\n\n", c.quality)
	if len(c.images) == 0 {
		b.WriteString("[gray]Изображения не выбраны[white]\n")
	}
	for i, img := range c.images {
		fmt.Fprintf(&b, "  %d. %s [cyan]%s[white]\n", i+1, TruncateFileName(img.Name, MaxFileNameLength, MaxFileNameDisplay), size(img.Size))
	}
	switch {
	case c.busy:
		b.WriteString("\n[cyan]⏳ Конвертация...[white]\n")
	case c.errText != "":
		fmt.Fprintf(&b, "\n[red]❌ %s[white]\n", c.errText)
	case c.result != "":
		fmt.Fprintf(&b, "\n[green]✅ Готово: %s[white]\n", c.result)
	}
	return b.String()
}
