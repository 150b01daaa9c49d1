package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Параметры отображения
const (
	ProgressBarWidth   = 40
	MaxFileNameLength  = 60
	MaxFileNameDisplay = 57
)

// ProgressBar рисует цветной прогресс-бар в разметке tview
func ProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	} else if progress > 100 {
		progress = 100
	}

	filled := int(math.Round(progress * float64(width) / 100))
	if filled > width {
		filled = width
	}

	const filledChar = "█"
	const emptyChar = "░"

	// Цвет зависит от прогресса
	var color string
	switch {
	case progress < 25:
		color = "red"
	case progress < 50:
		color = "yellow"
	case progress < 75:
		color = "blue"
	default:
		color = "green"
	}

	return fmt.Sprintf("[%s]%s[gray]%s[white]", color,
		strings.Repeat(filledChar, filled), strings.Repeat(emptyChar, width-filled))
}

// TruncateFileName усекает имя файла с учетом UTF-8
func TruncateFileName(fileName string, maxLength, truncateAt int) string {
	runes := []rune(fileName)
	if len(runes) <= maxLength {
		return fileName
	}
	return string(runes[:truncateAt]) + "..."
}

// FormatDuration форматирует длительность как ЧЧ:ММ:СС или ММ:СС
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
