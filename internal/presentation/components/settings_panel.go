package components

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// Варианты выбора для полей панели
var (
	LevelOptions    = []entities.CompressionLevel{entities.LevelLow, entities.LevelMedium, entities.LevelHigh, entities.LevelMaximum}
	StrategyOptions = []entities.OptimizationStrategy{entities.StrategyBalanced, entities.StrategyImageOptimized, entities.StrategyTextOptimized, entities.StrategyBatchOptimized}
	TargetOptions   = []entities.TargetSize{entities.TargetAuto, entities.Target25, entities.Target50, entities.Target75, entities.Target90}
)

// SettingsPanel панель настроек сжатия. Пользовательский ввод копится и
// публикуется одним событием settings-changed после паузы.
type SettingsPanel struct {
	base

	mu       sync.Mutex
	settings entities.CompressionSettings
	mode     entities.ProcessingMode
	tier     entities.UserTier
	pending  bool
	schedule func(func())
}

// NewSettingsPanel создает панель. delay задает паузу перед публикацией
// изменений; ноль публикует сразу.
func NewSettingsPanel(delay time.Duration, publisher repositories.EventPublisher, logger repositories.Logger) *SettingsPanel {
	p := &SettingsPanel{
		base:     newBase(entities.RoleSettings, publisher, logger),
		settings: entities.DefaultCompressionSettings(),
		mode:     entities.ModeSingle,
		tier:     entities.TierFree,
	}
	if delay > 0 {
		p.schedule = debounce.New(delay)
	} else {
		p.schedule = func(f func()) { f() }
	}
	return p
}

// SetSettings отображает настройки без публикации события
func (p *SettingsPanel) SetSettings(settings entities.CompressionSettings) {
	p.mu.Lock()
	p.settings = settings.Normalize()
	p.pending = false
	p.mu.Unlock()
	p.changed()
}

// GetSettings возвращает отображаемые настройки
func (p *SettingsPanel) GetSettings() entities.CompressionSettings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// SetMode отображает режим обработки без публикации события
func (p *SettingsPanel) SetMode(mode entities.ProcessingMode) {
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	p.changed()
}

// Mode отображаемый режим обработки
func (p *SettingsPanel) Mode() entities.ProcessingMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetTier отображает тариф пользователя
func (p *SettingsPanel) SetTier(tier entities.UserTier) {
	p.mu.Lock()
	p.tier = tier
	p.mu.Unlock()
	p.changed()
}

// PaidFeaturesAvailable открыты ли пакетный режим и серверная обработка
func (p *SettingsPanel) PaidFeaturesAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tier.IsPaid()
}

// SelectLevel пользователь выбрал уровень сжатия
func (p *SettingsPanel) SelectLevel(level entities.CompressionLevel) {
	p.edit(func(s *entities.CompressionSettings) { s.CompressionLevel = level })
}

// SelectImageQuality пользователь изменил качество изображений
func (p *SettingsPanel) SelectImageQuality(quality int) {
	p.edit(func(s *entities.CompressionSettings) { s.ImageQuality = quality })
}

// SelectStrategy пользователь выбрал стратегию оптимизации
func (p *SettingsPanel) SelectStrategy(strategy entities.OptimizationStrategy) {
	p.edit(func(s *entities.CompressionSettings) { s.OptimizationStrategy = strategy })
}

// SelectTargetSize пользователь выбрал целевой размер
func (p *SettingsPanel) SelectTargetSize(target entities.TargetSize) {
	p.edit(func(s *entities.CompressionSettings) { s.TargetSize = target })
}

// ToggleServerProcessing пользователь переключил серверную обработку.
// Проверка тарифа выполняется хранилищем состояния.
func (p *SettingsPanel) ToggleServerProcessing(enabled bool) {
	p.edit(func(s *entities.CompressionSettings) { s.UseServerProcessing = enabled })
}

// ToggleMode пользователь переключил режим обработки. Событие
// mode-changed публикуется сразу.
func (p *SettingsPanel) ToggleMode(mode entities.ProcessingMode) {
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()

	p.emit(entities.EventModeChanged, entities.ModeChangedPayload{Mode: mode})
	p.changed()
}

// Flush публикует отложенные изменения немедленно
func (p *SettingsPanel) Flush() {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.pending = false
	settings := p.settings
	p.mu.Unlock()

	p.emit(entities.EventSettingsChanged, entities.SettingsChangedPayload{Settings: settings})
}

func (p *SettingsPanel) edit(apply func(s *entities.CompressionSettings)) {
	p.mu.Lock()
	settings := p.settings
	apply(&settings)
	p.settings = settings.Normalize()
	p.pending = true
	p.mu.Unlock()

	p.changed()
	p.schedule(p.Flush)
}

// Render возвращает разметку tview
func (p *SettingsPanel) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	b.WriteString("[yellow]⚙️  Настройки сжатия[white]\n\n")
	fmt.Fprintf(&b, "  Уровень: [cyan]%s[white]\n", p.settings.CompressionLevel)
	fmt.Fprintf(&b, "  Качество изображений: [cyan]%d[white]\n", p.settings.ImageQuality)
	fmt.Fprintf(&b, "  Стратегия: [cyan]%s[white]\n", p.settings.OptimizationStrategy)
	fmt.Fprintf(&b, "  Целевой размер: [cyan]%s[white]\n", p.settings.TargetSize)

	lock := ""
	if !p.tier.IsPaid() {
		lock = " [gray]🔒 pro[white]"
	}
	fmt.Fprintf(&b, "  Серверная обработка: [cyan]%s[white]%s\n", onOff(p.settings.UseServerProcessing), lock)
	fmt.Fprintf(&b, "  Режим: [cyan]%s[white]%s\n", p.mode, lock)
	fmt.Fprintf(&b, "\n  Тариф: [cyan]%s[white]\n", p.tier)
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "вкл"
	}
	return "выкл"
}
