package compressors

import (
	"context"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// Selector выбирает движок сжатия для задания. Лицензионный движок
// используется, если он выбран алгоритмом по умолчанию или если включен
// флаг useServerProcessing.
type Selector struct {
	standard  repositories.Compressor
	licensed  repositories.Compressor
	preferred bool
}

// licensable движок, которому нужен лицензионный ключ
type licensable interface {
	Licensed() bool
}

// NewSelector создает селектор. licensed может быть nil; движок без
// лицензии не выбирается.
func NewSelector(standard, licensed repositories.Compressor, algorithm string) *Selector {
	if l, ok := licensed.(licensable); ok && !l.Licensed() {
		licensed = nil
	}
	return &Selector{
		standard:  standard,
		licensed:  licensed,
		preferred: algorithm == "unipdf" && licensed != nil,
	}
}

// Pick возвращает движок для настроек
func (s *Selector) Pick(settings entities.CompressionSettings) repositories.Compressor {
	if s.licensed != nil && (s.preferred || settings.UseServerProcessing) {
		return s.licensed
	}
	return s.standard
}

// Compress сжимает документ выбранным движком
func (s *Selector) Compress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings) (*entities.CompressionOutput, error) {
	return s.Pick(settings).Compress(ctx, handle, settings)
}

// CompressWithProgress передает прогресс, если движок его поддерживает
func (s *Selector) CompressWithProgress(ctx context.Context, handle *entities.FileHandle, settings entities.CompressionSettings, report repositories.ProgressReporter) (*entities.CompressionOutput, error) {
	engine := s.Pick(settings)
	if pc, ok := engine.(repositories.ProgressCompressor); ok {
		return pc.CompressWithProgress(ctx, handle, settings, report)
	}
	return engine.Compress(ctx, handle, settings)
}
