package controllers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"pdfcompress/internal/domain/entities"
	usecases "pdfcompress/internal/usecase"
)

// CLIController пакетный режим без интерфейса: сжимает директорию одним
// заданием и печатает итоги
type CLIController struct {
	compressDirectoryUseCase *usecases.CompressDirectoryUseCase
	out                      io.Writer
}

// NewCLIController создает новый CLI контроллер
func NewCLIController(compressDirectoryUseCase *usecases.CompressDirectoryUseCase, out io.Writer) *CLIController {
	return &CLIController{
		compressDirectoryUseCase: compressDirectoryUseCase,
		out:                      out,
	}
}

// CLIOptions параметры запуска из командной строки
type CLIOptions struct {
	InputDir  string
	OutputDir string
	Level     string
	Quality   int
	Strategy  string
	Target    string
}

// Settings переводит флаги в настройки сжатия. Пустые значения берутся
// из base.
func (o CLIOptions) Settings(base entities.CompressionSettings) entities.CompressionSettings {
	s := base
	if o.Level != "" {
		s.CompressionLevel = entities.CompressionLevel(o.Level)
	}
	if o.Quality != 0 {
		s.ImageQuality = o.Quality
	}
	if o.Strategy != "" {
		s.OptimizationStrategy = entities.OptimizationStrategy(o.Strategy)
	}
	if o.Target != "" {
		s.TargetSize = entities.TargetSize(o.Target)
	}
	return s.Normalize()
}

// HandleDirectory обрабатывает сжатие директории
func (c *CLIController) HandleDirectory(ctx context.Context, opts CLIOptions, base entities.CompressionSettings) error {
	settings := opts.Settings(base)
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(opts.InputDir, "compressed")
	}

	fmt.Fprintln(c.out, "🔥 PDF Compressor - Сжатие директории PDF файлов")
	fmt.Fprintln(c.out, "================================================")
	fmt.Fprintf(c.out, "🚀 Директория: %s, уровень: %s, качество изображений: %d\n",
		opts.InputDir, settings.CompressionLevel, settings.ImageQuality)

	result, err := c.compressDirectoryUseCase.Execute(ctx, opts.InputDir, outputDir, &settings)
	if result != nil && result.Job != nil {
		c.showDirectoryResult(result)
	}
	if err != nil {
		return fmt.Errorf("ошибка сжатия директории: %w", err)
	}
	return nil
}

// showDirectoryResult показывает результат сжатия директории
func (c *CLIController) showDirectoryResult(result *usecases.DirectoryCompressionResult) {
	job := result.Job

	fmt.Fprintf(c.out, "\n📊 Результаты задания %s (%s):\n", job.ID, job.Status)
	for _, entry := range job.Files {
		switch entry.SubState {
		case entities.FileSucceeded:
			fmt.Fprintf(c.out, "✅ %s: %s -> %s (-%.1f%%)\n", entry.Handle.Name,
				humanize.IBytes(uint64(entry.OriginalSize)), humanize.IBytes(uint64(entry.CompressedSize)), entry.ReductionPercent())
		case entities.FileFailed:
			fmt.Fprintf(c.out, "❌ %s: %s\n", entry.Handle.Name, entry.ErrorText())
		default:
			fmt.Fprintf(c.out, "⏭️ %s: %s\n", entry.Handle.Name, entry.ErrorText())
		}
	}

	if s := job.Summary; s != nil {
		fmt.Fprintf(c.out, "\nУспешно: %d, ошибок: %d, пропущено: %d\n", s.SuccessfulFiles, s.FailedFiles, s.SkippedFiles)
		fmt.Fprintf(c.out, "Сэкономлено: %s (%.1f%%) за %d мс\n",
			humanize.IBytes(uint64(max(s.SpaceSaved, 0))), s.SpaceSavedPercent, job.ProcessingTimeMs)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(c.out, "\n❌ Ошибки:")
		for i, err := range result.Errors {
			fmt.Fprintf(c.out, "%d. %v\n", i+1, err)
		}
	}

	fmt.Fprintf(c.out, "\n🎉 Обработка завершена! Записано файлов: %d\n", len(result.Written))
}
