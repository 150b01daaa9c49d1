package usecases

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/compressors"
)

// ConvertImagesUseCase собирает PDF из изображений пользователя
type ConvertImagesUseCase struct {
	converter repositories.ImageConverter
	publisher repositories.EventPublisher
	logger    repositories.Logger
}

// NewConvertImagesUseCase создает новый UseCase для конвертации изображений
func NewConvertImagesUseCase(converter repositories.ImageConverter, publisher repositories.EventPublisher, logger repositories.Logger) *ConvertImagesUseCase {
	return &ConvertImagesUseCase{
		converter: converter,
		publisher: publisher,
		logger:    logger,
	}
}

// Convert возвращает дескриптор собранного документа. Результат публикуется
// событием conversion-completed или conversion-failed.
func (uc *ConvertImagesUseCase) Convert(ctx context.Context, images []*entities.FileHandle, quality int) (*entities.FileHandle, error) {
	handle, err := uc.convert(ctx, images, quality)
	if err != nil {
		if uc.logger != nil {
			uc.logger.Error("Ошибка конвертации изображений: %v", err)
		}
		uc.publish(entities.EventConversionFailed, entities.ConversionFailedPayload{Error: err})
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Success("Изображения собраны в %s", handle.Name)
	}
	uc.publish(entities.EventConversionCompleted, entities.ConversionCompletedPayload{
		FileName: handle.Name,
		Size:     handle.Size,
	})
	return handle, nil
}

func (uc *ConvertImagesUseCase) convert(ctx context.Context, images []*entities.FileHandle, quality int) (*entities.FileHandle, error) {
	if len(images) == 0 {
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNoImages)
	}
	for _, img := range images {
		if img == nil {
			return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNilHandle)
		}
		if !compressors.IsImageFile(img.Name) {
			return nil, entities.NewKindError(entities.KindInvalidInput,
				fmt.Errorf("%w: %s (поддерживаются %s)", entities.ErrInvalidFileFormat, img.Name, strings.Join(GetSupportedImageExtensions(), ", ")))
		}
	}
	if uc.converter == nil {
		return nil, entities.NewKindError(entities.KindCapabilityUnavailable, entities.ErrCapabilityUnavailable)
	}

	data, err := uc.converter.Convert(ctx, images, entities.ClampImageQuality(quality))
	if err != nil {
		return nil, entities.NewKindError(entities.KindCompressionFailed, err)
	}
	if len(data) == 0 {
		return nil, entities.NewKindError(entities.KindCompressionFailed, entities.ErrEmptyOutput)
	}

	return entities.NewFileHandle(uuid.NewString(), outputName(images), entities.MimePDF, data), nil
}

func (uc *ConvertImagesUseCase) publish(topic entities.Topic, payload interface{}) {
	if uc.publisher != nil {
		uc.publisher.Publish(topic, payload)
	}
}

// outputName имя документа по первому изображению
func outputName(images []*entities.FileHandle) string {
	base := strings.TrimSuffix(images[0].Name, filepath.Ext(images[0].Name))
	if len(images) > 1 {
		return fmt.Sprintf("%s+%d.pdf", base, len(images)-1)
	}
	return base + ".pdf"
}

// GetSupportedImageExtensions возвращает список поддерживаемых расширений изображений
func GetSupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}
