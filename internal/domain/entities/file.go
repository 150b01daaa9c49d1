package entities

import "time"

// MimePDF MIME тип PDF документа
const MimePDF = "application/pdf"

// FileHandle пользовательский файл: содержимое и описание
type FileHandle struct {
	ID       string
	Name     string
	Size     int64
	MimeType string
	Data     []byte
}

// NewFileHandle создает дескриптор по содержимому
func NewFileHandle(id, name, mimeType string, data []byte) *FileHandle {
	return &FileHandle{
		ID:       id,
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		Data:     data,
	}
}

// CompressedName имя файла результата сжатия
func CompressedName(name string) string {
	return "compressed_" + name
}

// FileKey идентичность файла внутри пакета загрузки
type FileKey struct {
	Name string
	Size int64
}

// Key возвращает ключ дедупликации (имя, размер)
func (h *FileHandle) Key() FileKey {
	return FileKey{Name: h.Name, Size: h.Size}
}

// FileInfo краткое описание файла для событий
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Info возвращает краткое описание
func (h *FileHandle) Info() FileInfo {
	return FileInfo{Name: h.Name, Size: h.Size}
}

// ValidationResult результат проверки файла
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// FileValidation результат проверки с именем файла
type FileValidation struct {
	FileName   string           `json:"fileName"`
	Validation ValidationResult `json:"validation"`
}

// Analysis описание документа, полученное анализатором
type Analysis struct {
	PageCountEstimate   int                  `json:"pageCountEstimate,omitempty"`
	ImageHeavy          bool                 `json:"imageHeavy,omitempty"`
	TextHeavy           bool                 `json:"textHeavy,omitempty"`
	RecommendedSettings *CompressionSettings `json:"recommendedSettings,omitempty"`
}

// FileAnalysis результат анализа с именем файла
type FileAnalysis struct {
	FileName string   `json:"fileName"`
	Analysis Analysis `json:"analysis"`
}

// CompressionOutput результат работы компрессора
type CompressionOutput struct {
	CompressedBlob []byte
	OriginalSize   int64
	CompressedSize int64
}

// ReductionPercent вычисляет процент уменьшения размера
func ReductionPercent(originalSize, compressedSize int64) float64 {
	if originalSize <= 0 {
		return 0
	}
	return float64(originalSize-compressedSize) / float64(originalSize) * 100
}

// FileRecord сохраненный файл (локальное хранилище или облако)
type FileRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Size      int64             `json:"size"`
	MimeType  string            `json:"mimeType"`
	Source    string            `json:"source"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UploadResult результат загрузки в облако
type UploadResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}
