package usecases

import (
	"context"
	"fmt"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// CompressDirectoryUseCase сценарий сжатия всех PDF файлов в директории
// одним заданием координатора
type CompressDirectoryUseCase struct {
	coordinator *Coordinator
	fileRepo    repositories.FileRepository
	logger      repositories.Logger
}

// NewCompressDirectoryUseCase создает новый сценарий сжатия директории
func NewCompressDirectoryUseCase(
	coordinator *Coordinator,
	fileRepo repositories.FileRepository,
	logger repositories.Logger,
) *CompressDirectoryUseCase {
	return &CompressDirectoryUseCase{
		coordinator: coordinator,
		fileRepo:    fileRepo,
		logger:      logger,
	}
}

// DirectoryCompressionResult результат сжатия директории
type DirectoryCompressionResult struct {
	Job     *entities.Job
	Written []string
	Errors  []error
}

// Execute сжимает файлы из inputDir и записывает успешные результаты в outputDir
// с префиксом compressed_
func (uc *CompressDirectoryUseCase) Execute(ctx context.Context, inputDir, outputDir string, settings *entities.CompressionSettings) (*DirectoryCompressionResult, error) {
	if !uc.fileRepo.FileExists(inputDir) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, inputDir)
	}

	files, err := uc.fileRepo.ListPDFFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	if len(files) == 0 {
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNoFiles)
	}

	result := &DirectoryCompressionResult{}
	handles := make([]*entities.FileHandle, 0, len(files))
	for _, path := range files {
		h, err := uc.fileRepo.LoadHandle(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("ошибка чтения %s: %w", path, err))
			continue
		}
		handles = append(handles, h)
	}
	if len(handles) == 0 {
		return result, entities.NewKindError(entities.KindInvalidInput, entities.ErrNoFiles)
	}

	if uc.logger != nil {
		uc.logger.Info("Сжатие директории %s: %d файлов", inputDir, len(handles))
	}

	job, err := uc.coordinator.ProcessFiles(ctx, handles, settings)
	result.Job = job
	if job == nil {
		return result, err
	}

	for _, entry := range job.Files {
		if entry.SubState != entities.FileSucceeded {
			continue
		}
		path, werr := uc.fileRepo.WriteFile(outputDir, entities.CompressedName(entry.Handle.Name), entry.CompressedBlob)
		if werr != nil {
			result.Errors = append(result.Errors, werr)
			continue
		}
		result.Written = append(result.Written, path)
	}

	return result, err
}
