package validation

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"pdfcompress/internal/domain/entities"
)

// ModeFunc возвращает текущий режим обработки
type ModeFunc func() entities.ProcessingMode

// PDFValidator проверяет тип, размер и содержимое входных документов
type PDFValidator struct {
	limits entities.LimitsConfig
	mode   ModeFunc
}

// NewPDFValidator создает валидатор. Лимит размера зависит от режима,
// который возвращает mode; nil означает одиночный режим.
func NewPDFValidator(limits entities.LimitsConfig, mode ModeFunc) *PDFValidator {
	return &PDFValidator{limits: limits, mode: mode}
}

// Check проверяет файл и возвращает все найденные нарушения
func (v *PDFValidator) Check(handle *entities.FileHandle) entities.ValidationResult {
	if handle == nil {
		return invalid(entities.ErrNilHandle.Error())
	}

	var errs []string

	if handle.MimeType != entities.MimePDF {
		errs = append(errs, fmt.Sprintf("%s: ожидается %s, получен %q", entities.ErrInvalidFileFormat, entities.MimePDF, handle.MimeType))
	} else if len(handle.Data) > 0 {
		// Содержимое должно совпадать с заявленным типом
		if detected := mimetype.Detect(handle.Data); !detected.Is(entities.MimePDF) {
			errs = append(errs, fmt.Sprintf("%s: содержимое распознано как %s", entities.ErrInvalidFileFormat, detected.String()))
		}
	}

	if handle.Size <= 0 {
		errs = append(errs, entities.ErrEmptyFile.Error())
	}

	mode := entities.ModeSingle
	if v.mode != nil {
		mode = v.mode()
	}
	if limit := v.limits.MaxSizeFor(mode); limit > 0 && handle.Size > limit {
		errs = append(errs, fmt.Sprintf("%s: %s > %s",
			entities.ErrFileTooLarge, humanize.IBytes(uint64(handle.Size)), humanize.IBytes(uint64(limit))))
	}

	if len(errs) > 0 {
		return entities.ValidationResult{IsValid: false, Errors: errs}
	}
	return entities.ValidationResult{IsValid: true, Errors: []string{}}
}

func invalid(msg string) entities.ValidationResult {
	return entities.ValidationResult{IsValid: false, Errors: []string{msg}}
}
