package compressors

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

// ImageCompressor интерфейс для сжатия изображений перед упаковкой в PDF
type ImageCompressor interface {
	CompressJPEG(data []byte, quality int) ([]byte, error)
	CompressPNG(data []byte, quality int) ([]byte, error)
}

// DefaultImageCompressor реализация компрессора изображений
type DefaultImageCompressor struct{}

// NewImageCompressor создает новый компрессор изображений
func NewImageCompressor() ImageCompressor {
	return &DefaultImageCompressor{}
}

// CompressJPEG сжимает JPEG с указанным качеством
func (c *DefaultImageCompressor) CompressJPEG(data []byte, quality int) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать JPEG: %w", err)
	}

	// quality 10 -> 0.5 (50%), quality 50 -> 0.9 (90%)
	finalImg := scale(img, 0.5+float64(quality-10)/40.0*0.4, 0)

	// Маппинг качества: 10->20, 50->75
	jpegQuality := 20 + int(float64(quality-10)/40.0*55.0)
	if jpegQuality < 20 {
		jpegQuality = 20
	}
	if jpegQuality > 75 {
		jpegQuality = 75
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, finalImg, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("не удалось закодировать JPEG: %w", err)
	}
	return smallest(data, buf.Bytes()), nil
}

// CompressPNG сжимает PNG с указанным качеством
func (c *DefaultImageCompressor) CompressPNG(data []byte, quality int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось декодировать PNG: %w", err)
	}

	// quality 10 -> 0.6 (60%), quality 50 -> 0.9 (90%)
	finalImg := scale(img, 0.6+float64(quality-10)/40.0*0.3, 400)

	var buf bytes.Buffer
	encoder := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, finalImg); err != nil {
		return nil, fmt.Errorf("не удалось закодировать PNG: %w", err)
	}
	return smallest(data, buf.Bytes()), nil
}

// scale уменьшает изображение; изображения меньше minSide по обеим сторонам не трогаются
func scale(img image.Image, factor float64, minSide int) image.Image {
	if factor > 1.0 {
		factor = 1.0
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < minSide && height < minSide {
		return img
	}

	newWidth := uint(float64(width) * factor)
	newHeight := uint(float64(height) * factor)
	if newWidth == 0 || newHeight == 0 || newWidth >= uint(width) || newHeight >= uint(height) {
		return img
	}
	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

// smallest оставляет оригинал, если выигрыш меньше 5%
func smallest(original, compressed []byte) []byte {
	if int64(len(compressed)) >= int64(len(original))*95/100 {
		return original
	}
	return compressed
}

// IsImageFile проверяет, является ли файл изображением поддерживаемого формата
func IsImageFile(filename string) bool {
	return GetImageFormat(filename) != ""
}

// GetImageFormat возвращает формат изображения по расширению файла
func GetImageFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	default:
		return ""
	}
}
