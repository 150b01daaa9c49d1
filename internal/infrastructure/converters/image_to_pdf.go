package converters

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/compressors"
)

// ImageToPDFConverter собирает PDF из JPEG и PNG изображений, по одному на страницу
type ImageToPDFConverter struct {
	images compressors.ImageCompressor
	logger repositories.Logger
}

// NewImageToPDFConverter создает конвертер
func NewImageToPDFConverter(images compressors.ImageCompressor, logger repositories.Logger) *ImageToPDFConverter {
	return &ImageToPDFConverter{images: images, logger: logger}
}

// Convert сжимает изображения с заданным качеством и собирает из них документ
func (c *ImageToPDFConverter) Convert(ctx context.Context, images []*entities.FileHandle, quality int) ([]byte, error) {
	if len(images) == 0 {
		return nil, entities.ErrNoImages
	}
	if quality < entities.MinImageQuality || quality > entities.MaxImageQuality {
		return nil, entities.ErrInvalidImageQuality
	}

	readers := make([]io.Reader, 0, len(images))
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := c.prepare(img, quality)
		if err != nil {
			return nil, err
		}
		readers = append(readers, bytes.NewReader(data))
	}

	conf := compressors.NewPDFCPUConfiguration()
	conf.Cmd = model.IMPORTIMAGES

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, readers, pdfcpu.DefaultImportConfig(), conf); err != nil {
		return nil, fmt.Errorf("ошибка сборки PDF из изображений: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("Собран PDF из %d изображений (%d байт)", len(images), buf.Len())
	}
	return buf.Bytes(), nil
}

// prepare определяет формат по содержимому и сжимает изображение
func (c *ImageToPDFConverter) prepare(img *entities.FileHandle, quality int) ([]byte, error) {
	mtype := mimetype.Detect(img.Data)
	switch {
	case mtype.Is("image/jpeg"):
		return c.images.CompressJPEG(img.Data, quality)
	case mtype.Is("image/png"):
		return c.images.CompressPNG(img.Data, quality)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", entities.ErrInvalidFileFormat, img.Name, mtype.String())
	}
}
