package compressors

import (
	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// buildOutput формирует результат. Если сжатый документ не меньше исходного,
// возвращается исходный.
func buildOutput(handle *entities.FileHandle, compressed []byte) *entities.CompressionOutput {
	originalSize := int64(len(handle.Data))
	if len(compressed) == 0 || int64(len(compressed)) >= originalSize {
		compressed = handle.Data
	}
	return &entities.CompressionOutput{
		CompressedBlob: compressed,
		OriginalSize:   originalSize,
		CompressedSize: int64(len(compressed)),
	}
}

func step(report repositories.ProgressReporter, fraction float64) {
	if report != nil {
		report(fraction)
	}
}
