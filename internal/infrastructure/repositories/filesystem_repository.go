package repositories

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
)

// FileSystemRepository реализация репозитория для работы с файловой системой
type FileSystemRepository struct{}

// NewFileSystemRepository создает новый репозиторий файловой системы
func NewFileSystemRepository() *FileSystemRepository {
	return &FileSystemRepository{}
}

// LoadHandle читает файл и определяет его MIME тип по содержимому
func (r *FileSystemRepository) LoadHandle(path string) (*entities.FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s является директорией", entities.ErrInvalidFileFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Параметры вида "; charset=utf-8" отбрасываются
	mimeType, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")

	return entities.NewFileHandle(uuid.NewString(), filepath.Base(path), mimeType, data), nil
}

// WriteFile записывает данные в директорию, не перезаписывая существующие файлы
func (r *FileSystemRepository) WriteFile(directory, name string, data []byte) (string, error) {
	if err := r.CreateDirectory(directory); err != nil {
		return "", fmt.Errorf("не удалось создать директорию %s: %w", directory, err)
	}

	path := filepath.Join(directory, filepath.Base(name))
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; r.FileExists(path); i++ {
		path = fmt.Sprintf("%s (%d)%s", base, i, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("не удалось записать файл %s: %w", path, err)
	}
	return path, nil
}

// FileExists проверяет существование файла
func (r *FileSystemRepository) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// CreateDirectory создает директорию
func (r *FileSystemRepository) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// ListPDFFiles возвращает список PDF файлов в директории и всех подпапках
func (r *FileSystemRepository) ListPDFFiles(directory string) ([]string, error) {
	var pdfFiles []string

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			pdfFiles = append(pdfFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(pdfFiles)
	return pdfFiles, nil
}
