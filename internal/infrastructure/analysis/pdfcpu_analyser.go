package analysis

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/compressors"
)

// Пороги среднего размера страницы
const (
	ImageHeavyBytesPerPage = 200 * 1024
	TextHeavyBytesPerPage  = 30 * 1024
)

// PDFCPUAnalyser оценивает содержимое документа по количеству страниц и размеру
type PDFCPUAnalyser struct {
	logger repositories.Logger
}

// NewPDFCPUAnalyser создает анализатор
func NewPDFCPUAnalyser(logger repositories.Logger) *PDFCPUAnalyser {
	return &PDFCPUAnalyser{logger: logger}
}

// Describe считает страницы и классифицирует документ
func (a *PDFCPUAnalyser) Describe(ctx context.Context, handle *entities.FileHandle) (*entities.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if handle == nil || len(handle.Data) == 0 {
		return nil, entities.ErrEmptyFile
	}

	pages, err := api.PageCount(bytes.NewReader(handle.Data), compressors.NewPDFCPUConfiguration())
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета страниц: %w", err)
	}

	analysis := Classify(handle.Size, pages)
	if a.logger != nil {
		a.logger.Debug("Анализ %s: %d стр., %s на страницу", handle.Name, pages, humanize.IBytes(uint64(perPage(handle.Size, pages))))
	}
	return analysis, nil
}

// Classify строит описание по размеру документа и числу страниц
func Classify(size int64, pages int) *entities.Analysis {
	analysis := &entities.Analysis{PageCountEstimate: pages}
	if pages <= 0 {
		return analysis
	}

	switch avg := perPage(size, pages); {
	case avg >= ImageHeavyBytesPerPage:
		analysis.ImageHeavy = true
		analysis.RecommendedSettings = &entities.CompressionSettings{
			CompressionLevel:     entities.LevelHigh,
			ImageQuality:         60,
			TargetSize:           entities.TargetAuto,
			OptimizationStrategy: entities.StrategyImageOptimized,
		}
	case avg <= TextHeavyBytesPerPage:
		analysis.TextHeavy = true
		analysis.RecommendedSettings = &entities.CompressionSettings{
			CompressionLevel:     entities.LevelMedium,
			ImageQuality:         entities.DefaultImageQuality,
			TargetSize:           entities.TargetAuto,
			OptimizationStrategy: entities.StrategyTextOptimized,
		}
	}
	return analysis
}

func perPage(size int64, pages int) int64 {
	if pages <= 0 {
		return size
	}
	return size / int64(pages)
}
