package components

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// ProgressTracker отображает ход задания: прогресс-бар, этап, текущий файл,
// прошедшее и оставшееся время
type ProgressTracker struct {
	base

	mu         sync.Mutex
	now        func() time.Time
	visible    bool
	jobID      string
	percent    int
	stage      string
	fileIndex  int
	totalFiles int
	fileName   string
	startedAt  time.Time
	finishedAt time.Time
	finished   bool
	success    bool
}

// NewProgressTracker создает индикатор прогресса
func NewProgressTracker(publisher repositories.EventPublisher, logger repositories.Logger) *ProgressTracker {
	return &ProgressTracker{
		base: newBase(entities.RoleProgress, publisher, logger),
		now:  time.Now,
	}
}

// SetClock подменяет источник времени
func (p *ProgressTracker) SetClock(now func() time.Time) {
	p.mu.Lock()
	p.now = now
	p.mu.Unlock()
}

// Start показывает индикатор для нового задания
func (p *ProgressTracker) Start(jobID string, totalFiles int) {
	p.mu.Lock()
	p.visible = true
	p.jobID = jobID
	p.percent = 0
	p.stage = entities.JobInitializing.String()
	p.fileIndex = -1
	p.totalFiles = totalFiles
	p.fileName = ""
	p.startedAt = p.now()
	p.finished = false
	p.success = false
	p.mu.Unlock()
	p.changed()
}

// SetProgress обновляет процент и название этапа. Прогресс не уменьшается.
func (p *ProgressTracker) SetProgress(percent int, stage string) {
	p.mu.Lock()
	if percent > p.percent {
		p.percent = percent
	}
	if p.percent > 100 {
		p.percent = 100
	}
	if stage != "" {
		p.stage = stage
	}
	p.mu.Unlock()
	p.changed()
}

// SetFile отмечает файл, который сейчас сжимается
func (p *ProgressTracker) SetFile(index, total int, name string) {
	p.mu.Lock()
	p.fileIndex = index
	p.totalFiles = total
	p.fileName = name
	p.mu.Unlock()
	p.changed()
}

// Finish фиксирует завершение задания
func (p *ProgressTracker) Finish(success bool) {
	p.mu.Lock()
	p.finished = true
	p.success = success
	p.finishedAt = p.now()
	if success {
		p.percent = 100
	}
	p.mu.Unlock()
	p.changed()
}

// Hide скрывает индикатор
func (p *ProgressTracker) Hide() {
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
	p.changed()
}

// Visible проверяет видимость индикатора
func (p *ProgressTracker) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Percent текущий процент выполнения
func (p *ProgressTracker) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Stage название текущего этапа
func (p *ProgressTracker) Stage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// JobID задание, которое отображается
func (p *ProgressTracker) JobID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jobID
}

// Elapsed время с начала задания
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed()
}

// Remaining оценка оставшегося времени по текущей скорости. Ноль, пока
// оценка невозможна.
func (p *ProgressTracker) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remaining()
}

func (p *ProgressTracker) elapsed() time.Duration {
	if p.startedAt.IsZero() {
		return 0
	}
	if p.finished {
		return p.finishedAt.Sub(p.startedAt)
	}
	return p.now().Sub(p.startedAt)
}

func (p *ProgressTracker) remaining() time.Duration {
	if p.finished || p.percent <= 0 || p.percent >= 100 {
		return 0
	}
	elapsed := p.elapsed()
	return time.Duration(float64(elapsed) * float64(100-p.percent) / float64(p.percent))
}

// Cancel публикует запрос отмены текущего задания
func (p *ProgressTracker) Cancel() bool {
	p.mu.Lock()
	jobID := p.jobID
	active := p.visible && !p.finished && jobID != ""
	p.mu.Unlock()

	if !active {
		return false
	}
	p.emit(entities.EventCancelRequested, entities.CancelRequestedPayload{JobID: jobID})
	return true
}

// Render возвращает разметку tview
func (p *ProgressTracker) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.visible {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]⚙️  Этап:[white] %s\n\n", p.stage)

	if p.fileName != "" {
		fmt.Fprintf(&b, "[yellow]📁 Файл %d из %d:[white] %s\n", p.fileIndex+1, p.totalFiles,
			TruncateFileName(filepath.Base(p.fileName), MaxFileNameLength, MaxFileNameDisplay))
	}

	fmt.Fprintf(&b, "\n[cyan]📊 Прогресс:[white] %s [cyan]%d%%[white]\n\n", ProgressBar(float64(p.percent), ProgressBarWidth), p.percent)

	fmt.Fprintf(&b, "[yellow]⏱️  Прошло:[white] %s", FormatDuration(p.elapsed()))
	if rem := p.remaining(); rem > 0 {
		fmt.Fprintf(&b, "  [yellow]Осталось:[white] ~%s", FormatDuration(rem))
	}
	b.WriteString("\n\n")

	switch {
	case p.finished && p.success:
		b.WriteString("[green]✅ Обработка завершена[white]\n")
	case p.finished:
		b.WriteString("[red]❌ Обработка прервана[white]\n")
	default:
		b.WriteString("[yellow]Ctrl+X[white] - Отменить\n")
	}
	return b.String()
}
