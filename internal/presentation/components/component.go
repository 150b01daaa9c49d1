package components

import (
	"sync"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// base общая часть компонентов: идентичность, публикация намерений и
// сигнал перерисовки для оболочки
type base struct {
	id        string
	role      entities.ComponentRole
	publisher repositories.EventPublisher
	logger    repositories.Logger

	hookMu   sync.Mutex
	onChange func()
}

func newBase(role entities.ComponentRole, publisher repositories.EventPublisher, logger repositories.Logger) base {
	return base{
		id:        uuid.NewString(),
		role:      role,
		publisher: publisher,
		logger:    logger,
	}
}

// ID уникальный идентификатор экземпляра компонента
func (b *base) ID() string {
	return b.id
}

// Role роль компонента
func (b *base) Role() entities.ComponentRole {
	return b.role
}

// OnChange задает функцию, вызываемую после изменения отображаемых данных
func (b *base) OnChange(fn func()) {
	b.hookMu.Lock()
	b.onChange = fn
	b.hookMu.Unlock()
}

// changed вызывается без удержания блокировки состояния компонента
func (b *base) changed() {
	b.hookMu.Lock()
	fn := b.onChange
	b.hookMu.Unlock()
	if fn != nil {
		fn()
	}
}

// emit публикует намерение. Компонент не обращается к сервисам напрямую.
func (b *base) emit(topic entities.Topic, payload interface{}) {
	if b.publisher == nil {
		b.logWarning("Компонент %s: нет шины для события %s", b.role, topic)
		return
	}
	b.publisher.Publish(topic, payload)
}

func (b *base) logDebug(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Debug(format, args...)
	}
}

func (b *base) logWarning(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Warning(format, args...)
	}
}
