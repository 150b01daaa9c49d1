package entities

import (
	"fmt"
	"math"
	"time"
)

// JobStatus статус задания
type JobStatus string

const (
	JobInitializing JobStatus = "initializing"
	JobValidating   JobStatus = "validating"
	JobAnalyzing    JobStatus = "analyzing"
	JobPreparing    JobStatus = "preparing"
	JobProcessing   JobStatus = "processing"
	JobFinalizing   JobStatus = "finalizing"
	JobCompleted    JobStatus = "completed"
	JobFailed       JobStatus = "failed"
	JobCancelled    JobStatus = "cancelled"
)

// order позиция статуса на пути выполнения
func (s JobStatus) order() int {
	switch s {
	case JobInitializing:
		return 0
	case JobValidating:
		return 1
	case JobAnalyzing:
		return 2
	case JobPreparing:
		return 3
	case JobProcessing:
		return 4
	case JobFinalizing:
		return 5
	case JobCompleted, JobFailed, JobCancelled:
		return 6
	default:
		return -1
	}
}

// IsTerminal проверяет, является ли статус конечным
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// String возвращает название этапа для UI
func (s JobStatus) String() string {
	switch s {
	case JobInitializing:
		return "Инициализация"
	case JobValidating:
		return "Проверка файлов"
	case JobAnalyzing:
		return "Анализ документов"
	case JobPreparing:
		return "Подготовка настроек"
	case JobProcessing:
		return "Сжатие файлов"
	case JobFinalizing:
		return "Подведение итогов"
	case JobCompleted:
		return "Завершено"
	case JobFailed:
		return "Ошибка"
	case JobCancelled:
		return "Отменено"
	default:
		return "Неизвестно"
	}
}

// FileSubState состояние отдельного файла в задании
type FileSubState string

const (
	FilePending     FileSubState = "pending"
	FileValidating  FileSubState = "validating"
	FileAnalyzing   FileSubState = "analyzing"
	FileCompressing FileSubState = "compressing"
	FileSucceeded   FileSubState = "succeeded"
	FileFailed      FileSubState = "failed"
	FileSkipped     FileSubState = "skipped"
)

// IsFinished проверяет, что файл обработан (успешно или с ошибкой)
func (s FileSubState) IsFinished() bool {
	return s == FileSucceeded || s == FileFailed
}

// FileEntry строка задания
type FileEntry struct {
	Index          int
	Handle         *FileHandle
	SubState       FileSubState
	OriginalSize   int64
	CompressedSize int64
	CompressedBlob []byte
	Err            error
	Validation     *ValidationResult
	Analysis       *Analysis
	StartedAt      *time.Time
	FinishedAt     *time.Time
}

// Succeed фиксирует успешный результат. Размеры записываются до смены состояния.
func (e *FileEntry) Succeed(out *CompressionOutput, now time.Time) {
	e.OriginalSize = out.OriginalSize
	e.CompressedSize = out.CompressedSize
	e.CompressedBlob = out.CompressedBlob
	e.Err = nil
	e.FinishedAt = &now
	e.SubState = FileSucceeded
}

// Fail фиксирует ошибку файла
func (e *FileEntry) Fail(err error, now time.Time) {
	if err == nil {
		err = ErrCompressionFailed
	}
	e.CompressedBlob = nil
	e.CompressedSize = 0
	e.Err = err
	e.FinishedAt = &now
	e.SubState = FileFailed
}

// Skip помечает файл пропущенным
func (e *FileEntry) Skip() {
	e.CompressedBlob = nil
	e.Err = nil
	e.SubState = FileSkipped
}

// ErrorText возвращает текст ошибки или пустую строку
func (e *FileEntry) ErrorText() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// ReductionPercent процент уменьшения для файла
func (e *FileEntry) ReductionPercent() float64 {
	return ReductionPercent(e.OriginalSize, e.CompressedSize)
}

// Summary итог задания
type Summary struct {
	SuccessfulFiles     int     `json:"successfulFiles"`
	FailedFiles         int     `json:"failedFiles"`
	SkippedFiles        int     `json:"skippedFiles"`
	TotalOriginalSize   int64   `json:"totalOriginalSize"`
	TotalCompressedSize int64   `json:"totalCompressedSize"`
	SpaceSaved          int64   `json:"spaceSaved"`
	SpaceSavedPercent   float64 `json:"spaceSavedPercent"`
}

// Job задание на сжатие набора файлов
type Job struct {
	ID                string
	Files             []*FileEntry
	Settings          CompressionSettings
	EffectiveSettings CompressionSettings
	Status            JobStatus
	Progress          int
	ValidFiles        int
	StartedAt         time.Time
	FinishedAt        *time.Time
	ProcessingTimeMs  int64
	Summary           *Summary
	Err               error
}

// NewJob создает задание со всеми файлами в состоянии pending
func NewJob(id string, handles []*FileHandle, settings CompressionSettings, now time.Time) *Job {
	files := make([]*FileEntry, len(handles))
	for i, h := range handles {
		files[i] = &FileEntry{
			Index:        i,
			Handle:       h,
			SubState:     FilePending,
			OriginalSize: h.Size,
		}
	}
	return &Job{
		ID:                id,
		Files:             files,
		Settings:          settings,
		EffectiveSettings: settings,
		Status:            JobInitializing,
		StartedAt:         now,
	}
}

// Transition переводит задание в новый статус. Статус монотонен:
// откат назад и выход из конечного статуса запрещены.
func (j *Job) Transition(to JobStatus) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("задание %s уже завершено (%s)", j.ID, j.Status)
	}
	if to.order() < 0 || to.order() < j.Status.order() {
		return fmt.Errorf("недопустимый переход %s -> %s", j.Status, to)
	}
	if to == JobCompleted && j.Status != JobFinalizing {
		return fmt.Errorf("недопустимый переход %s -> %s", j.Status, to)
	}
	j.Status = to
	return nil
}

// ComputeProgress вычисляет прогресс по завершенным файлам и доле текущего
func (j *Job) ComputeProgress(currentFraction float64) int {
	if j.ValidFiles <= 0 {
		return 0
	}
	if currentFraction < 0 || math.IsNaN(currentFraction) {
		currentFraction = 0
	}
	if currentFraction >= 1 {
		currentFraction = 0.999
	}
	finished := 0
	for _, f := range j.Files {
		if f.SubState.IsFinished() {
			finished++
		}
	}
	p := int(math.Floor((float64(finished) + currentFraction) / float64(j.ValidFiles) * 100))
	if p > 100 {
		p = 100
	}
	return p
}

// ComputeSummary суммирует результаты успешных файлов
func (j *Job) ComputeSummary() *Summary {
	s := &Summary{}
	for _, f := range j.Files {
		switch f.SubState {
		case FileSucceeded:
			s.SuccessfulFiles++
			s.TotalOriginalSize += f.OriginalSize
			s.TotalCompressedSize += f.CompressedSize
		case FileFailed:
			s.FailedFiles++
		case FileSkipped:
			s.SkippedFiles++
		}
	}
	s.SpaceSaved = s.TotalOriginalSize - s.TotalCompressedSize
	if s.TotalOriginalSize > 0 {
		s.SpaceSavedPercent = float64(s.SpaceSaved) / float64(s.TotalOriginalSize) * 100
	}
	if s.SpaceSavedPercent < 0 {
		s.SpaceSavedPercent = 0
	}
	if s.SpaceSavedPercent > 100 {
		s.SpaceSavedPercent = 100
	}
	return s
}

// Finish фиксирует время завершения
func (j *Job) Finish(now time.Time) {
	j.FinishedAt = &now
	j.ProcessingTimeMs = now.Sub(j.StartedAt).Milliseconds()
}

// FailedHandles возвращает дескрипторы файлов с ошибкой сжатия
func (j *Job) FailedHandles() []*FileHandle {
	var out []*FileHandle
	for _, f := range j.Files {
		if f.SubState == FileFailed {
			out = append(out, f.Handle)
		}
	}
	return out
}

// IsRetriable задание завершено и содержит файлы для повтора
func (j *Job) IsRetriable() bool {
	return j.Status.IsTerminal() && len(j.FailedHandles()) > 0
}

// Counts количество файлов по состояниям
func (j *Job) Counts() map[FileSubState]int {
	counts := make(map[FileSubState]int)
	for _, f := range j.Files {
		counts[f.SubState]++
	}
	return counts
}

// Clone возвращает копию задания для передачи подписчикам.
// Содержимое файлов не копируется: после завершения сжатия оно неизменно.
func (j *Job) Clone() *Job {
	c := *j
	c.Files = make([]*FileEntry, len(j.Files))
	for i, f := range j.Files {
		fc := *f
		c.Files[i] = &fc
	}
	if j.Summary != nil {
		s := *j.Summary
		c.Summary = &s
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
