package entities

import "strconv"

// CompressionLevel уровень сжатия, выбранный пользователем
type CompressionLevel string

const (
	LevelLow     CompressionLevel = "low"
	LevelMedium  CompressionLevel = "medium"
	LevelHigh    CompressionLevel = "high"
	LevelMaximum CompressionLevel = "maximum"
)

// OptimizationStrategy стратегия оптимизации документа
type OptimizationStrategy string

const (
	StrategyBalanced       OptimizationStrategy = "balanced"
	StrategyImageOptimized OptimizationStrategy = "image_optimized"
	StrategyTextOptimized  OptimizationStrategy = "text_optimized"
	StrategyBatchOptimized OptimizationStrategy = "batch_optimized"
)

// TargetSize желаемая доля исходного размера ("auto" или дробь)
type TargetSize string

const (
	TargetAuto TargetSize = "auto"
	Target25   TargetSize = "0.25"
	Target50   TargetSize = "0.50"
	Target75   TargetSize = "0.75"
	Target90   TargetSize = "0.90"
)

// Границы качества изображений
const (
	MinImageQuality     = 10
	MaxImageQuality     = 100
	DefaultImageQuality = 80
)

// CompressionSettings неизменяемый набор параметров сжатия одного задания
type CompressionSettings struct {
	CompressionLevel     CompressionLevel     `json:"compressionLevel"`
	ImageQuality         int                  `json:"imageQuality"`
	TargetSize           TargetSize           `json:"targetSize"`
	OptimizationStrategy OptimizationStrategy `json:"optimizationStrategy"`
	UseServerProcessing  bool                 `json:"useServerProcessing"`
}

// DefaultCompressionSettings возвращает настройки по умолчанию
func DefaultCompressionSettings() CompressionSettings {
	return CompressionSettings{
		CompressionLevel:     LevelMedium,
		ImageQuality:         DefaultImageQuality,
		TargetSize:           TargetAuto,
		OptimizationStrategy: StrategyBalanced,
		UseServerProcessing:  false,
	}
}

// ParseCompressionLevel разбирает уровень сжатия, неизвестные значения дают medium
func ParseCompressionLevel(value string) CompressionLevel {
	switch CompressionLevel(value) {
	case LevelLow, LevelMedium, LevelHigh, LevelMaximum:
		return CompressionLevel(value)
	default:
		return LevelMedium
	}
}

// ParseOptimizationStrategy разбирает стратегию, неизвестные значения дают balanced
func ParseOptimizationStrategy(value string) OptimizationStrategy {
	switch OptimizationStrategy(value) {
	case StrategyBalanced, StrategyImageOptimized, StrategyTextOptimized, StrategyBatchOptimized:
		return OptimizationStrategy(value)
	default:
		return StrategyBalanced
	}
}

// ParseTargetSize разбирает целевой размер. Принимаются "auto" и дроби
// 0.25/0.5/0.75/0.9 в любой десятичной записи.
func ParseTargetSize(value string) TargetSize {
	if value == "" || TargetSize(value) == TargetAuto {
		return TargetAuto
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TargetAuto
	}
	for _, t := range []TargetSize{Target25, Target50, Target75, Target90} {
		if frac, _ := t.Fraction(); frac == f {
			return t
		}
	}
	return TargetAuto
}

// Fraction возвращает долю исходного размера; ok=false для "auto"
func (t TargetSize) Fraction() (float64, bool) {
	switch t {
	case Target25:
		return 0.25, true
	case Target50:
		return 0.50, true
	case Target75:
		return 0.75, true
	case Target90:
		return 0.90, true
	default:
		return 0, false
	}
}

// ClampImageQuality ограничивает качество диапазоном [10,100]
func ClampImageQuality(quality int) int {
	if quality < MinImageQuality {
		return MinImageQuality
	}
	if quality > MaxImageQuality {
		return MaxImageQuality
	}
	return quality
}

// Normalize приводит настройки к допустимым значениям
func (s CompressionSettings) Normalize() CompressionSettings {
	return CompressionSettings{
		CompressionLevel:     ParseCompressionLevel(string(s.CompressionLevel)),
		ImageQuality:         ClampImageQuality(s.ImageQuality),
		TargetSize:           ParseTargetSize(string(s.TargetSize)),
		OptimizationStrategy: ParseOptimizationStrategy(string(s.OptimizationStrategy)),
		UseServerProcessing:  s.UseServerProcessing,
	}
}

// rank порядковый номер уровня, используется для сравнения
func (l CompressionLevel) rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelHigh:
		return 2
	case LevelMaximum:
		return 3
	default:
		return 1
	}
}

// Stronger возвращает более сильный из двух уровней
func (l CompressionLevel) Stronger(other CompressionLevel) CompressionLevel {
	if other.rank() > l.rank() {
		return other
	}
	return l
}

// CompressionProfile конкретные параметры движков сжатия
type CompressionProfile struct {
	Level            CompressionLevel
	ImageQuality     int     // Качество JPEG при перекодировании (10-100)
	ImagePPI         float64 // Верхний предел разрешения изображений
	CompressImages   bool    // Перекодировать изображения
	RemoveDuplicates bool    // Объединять дубликаты объектов
	CompressStreams  bool    // Писать объектные потоки и xref-потоки
}

// Profile сопоставляет пользовательские настройки параметрам движка.
// Целевой размер усиливает уровень: чем меньше доля, тем сильнее сжатие.
func (s CompressionSettings) Profile() CompressionProfile {
	s = s.Normalize()

	level := s.CompressionLevel
	if frac, ok := s.TargetSize.Fraction(); ok {
		switch {
		case frac <= 0.25:
			level = level.Stronger(LevelMaximum)
		case frac <= 0.50:
			level = level.Stronger(LevelHigh)
		case frac <= 0.75:
			level = level.Stronger(LevelMedium)
		}
	}

	profile := CompressionProfile{
		Level:            level,
		RemoveDuplicates: true,
		CompressStreams:  true,
		CompressImages:   true,
	}

	switch level {
	case LevelLow: // Слабое сжатие
		profile.ImageQuality = 90
		profile.ImagePPI = 300
		profile.RemoveDuplicates = false
	case LevelMedium: // Среднее сжатие
		profile.ImageQuality = 75
		profile.ImagePPI = 200
	case LevelHigh: // Высокое сжатие
		profile.ImageQuality = 50
		profile.ImagePPI = 150
	default: // Максимальное сжатие
		profile.ImageQuality = 30
		profile.ImagePPI = 100
	}

	// Пользовательское качество не может быть выше уровня
	if s.ImageQuality < profile.ImageQuality {
		profile.ImageQuality = s.ImageQuality
	}

	switch s.OptimizationStrategy {
	case StrategyTextOptimized:
		// Изображения почти не вносят вклад в размер
		profile.CompressImages = false
	case StrategyImageOptimized:
		if profile.ImagePPI > 150 {
			profile.ImagePPI = 150
		}
	case StrategyBatchOptimized:
		// Пакетная обработка всегда переписывает потоки
		profile.CompressStreams = true
		profile.RemoveDuplicates = true
	}

	return profile
}
