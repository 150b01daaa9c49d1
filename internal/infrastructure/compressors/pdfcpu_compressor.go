package compressors

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

var disableConfigDir sync.Once

// NewPDFCPUConfiguration возвращает конфигурацию pdfcpu без каталога настроек
// и с нестрогой проверкой документов
func NewPDFCPUConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PDFCPUCompressor реализация компрессора с использованием PDFCPU
type PDFCPUCompressor struct {
	logger repositories.Logger
}

// NewPDFCPUCompressor создает новый PDFCPU компрессор
func NewPDFCPUCompressor(logger repositories.Logger) *PDFCPUCompressor {
	return &PDFCPUCompressor{logger: logger}
}

// Compress сжимает PDF документ в памяти
func (p *PDFCPUCompressor) Compress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings) (*entities.CompressionOutput, error) {
	return p.CompressWithProgress(ctx, handle, settings, nil)
}

// CompressWithProgress сжимает документ, сообщая о завершении этапов:
// чтение, проверка, оптимизация, запись
func (p *PDFCPUCompressor) CompressWithProgress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings, report repositories.ProgressReporter) (*entities.CompressionOutput, error) {
	profile := settings.Profile()
	if p.logger != nil {
		p.logger.Debug("Сжатие %s (PDFCPU, уровень %s)", handle.Name, profile.Level)
	}

	conf := NewPDFCPUConfiguration()
	conf.Cmd = model.OPTIMIZE
	conf.WriteObjectStream = profile.CompressStreams
	conf.WriteXRefStream = profile.CompressStreams

	pdfCtx, err := api.ReadContext(bytes.NewReader(handle.Data), conf)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения PDF: %w", err)
	}
	step(report, 0.25)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("ошибка проверки PDF: %w", err)
	}
	step(report, 0.4)

	if err := api.OptimizeContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("ошибка оптимизации PDFCPU: %w", err)
	}
	step(report, 0.75)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, fmt.Errorf("ошибка записи PDF: %w", err)
	}
	step(report, 0.95)

	return buildOutput(handle, buf.Bytes()), nil
}
