package entities

import (
	"errors"
	"fmt"
)

// ErrorKind категория ошибки конвейера
type ErrorKind string

const (
	KindInvalidInput          ErrorKind = "InvalidInput"
	KindValidation            ErrorKind = "Validation"
	KindCompressionFailed     ErrorKind = "CompressionFailed"
	KindAllFilesFailed        ErrorKind = "AllFilesFailed"
	KindNoValidFiles          ErrorKind = "NoValidFiles"
	KindCancelled             ErrorKind = "Cancelled"
	KindAuthRequired          ErrorKind = "AuthRequired"
	KindProUpgradeRequired    ErrorKind = "ProUpgradeRequired"
	KindCapabilityUnavailable ErrorKind = "CapabilityUnavailable"
)

// Доменные ошибки
var (
	ErrNoFiles               = errors.New("не выбрано ни одного файла")
	ErrNilHandle             = errors.New("пустой дескриптор файла")
	ErrJobInProgress         = errors.New("задание уже выполняется")
	ErrJobNotFound           = errors.New("задание не найдено")
	ErrJobNotRetriable       = errors.New("в задании нет файлов для повтора")
	ErrNoValidFiles          = errors.New("нет ни одного корректного файла")
	ErrAllFilesFailed        = errors.New("не удалось сжать ни одного файла")
	ErrJobCancelled          = errors.New("задание отменено")
	ErrEmptyOutput           = errors.New("компрессор вернул пустой результат")
	ErrFileNotFound          = errors.New("файл не найден")
	ErrInvalidFileFormat     = errors.New("неверный формат файла")
	ErrEmptyFile             = errors.New("файл пустой")
	ErrFileTooLarge          = errors.New("файл превышает допустимый размер")
	ErrCompressionFailed     = errors.New("ошибка сжатия файла")
	ErrUnknownStateKey       = errors.New("неизвестный ключ состояния")
	ErrInvalidStateValue     = errors.New("недопустимое значение состояния")
	ErrUpgradeRequired       = errors.New("функция доступна только в тарифе pro")
	ErrNotAuthenticated      = errors.New("требуется авторизация у облачного провайдера")
	ErrUnknownProvider       = errors.New("неизвестный облачный провайдер")
	ErrCapabilityUnavailable = errors.New("возможность не подключена")
	ErrInvalidImageQuality   = errors.New("качество изображения должно быть от 10 до 100")
	ErrInvalidLimit          = errors.New("лимит должен быть положительным")
	ErrUnknownAlgorithm      = errors.New("неизвестный алгоритм сжатия")
	ErrNoImages              = errors.New("не выбрано ни одного изображения")
)

// KindError ошибка с категорией
type KindError struct {
	Kind ErrorKind
	Err  error
}

// NewKindError оборачивает ошибку категорией
func NewKindError(kind ErrorKind, err error) *KindError {
	return &KindError{Kind: kind, Err: err}
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// KindOf извлекает категорию ошибки. Ошибки без категории считаются
// ошибками сжатия.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindCompressionFailed
}

// IsKind проверяет категорию ошибки
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
