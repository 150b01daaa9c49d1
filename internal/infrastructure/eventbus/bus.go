package eventbus

import (
	"sync"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// Handler обработчик события
type Handler func(payload interface{})

// WildcardHandler обработчик всех событий шины
type WildcardHandler func(topic entities.Topic, payload interface{})

type subscription struct {
	id      uint64
	handler Handler
}

type wildcardSubscription struct {
	id      uint64
	handler WildcardHandler
}

// Bus синхронная шина событий. Publish возвращает управление только после
// вызова всех подписчиков, зарегистрированных на момент публикации.
// Обработчики вызываются в горутине издателя.
type Bus struct {
	mu       sync.RWMutex
	handlers map[entities.Topic][]subscription
	wildcard []wildcardSubscription
	nextID   uint64
	logger   repositories.Logger
}

// New создает новую шину событий
func New(logger repositories.Logger) *Bus {
	return &Bus{
		handlers: make(map[entities.Topic][]subscription),
		logger:   logger,
	}
}

// Subscribe подписывает обработчик на событие и возвращает функцию отписки
func (b *Bus) Subscribe(topic entities.Topic, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[topic] = append(b.handlers[topic], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

// SubscribeAll подписывает обработчик на все события
func (b *Bus) SubscribeAll(handler WildcardHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.wildcard = append(b.wildcard, wildcardSubscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.wildcard {
				if s.id == id {
					b.wildcard = append(b.wildcard[:i:i], b.wildcard[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) unsubscribe(topic entities.Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[topic]
	for i, s := range subs {
		if s.id == id {
			// Новый срез: идущая рассылка держит старый снимок
			b.handlers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[topic]) == 0 {
		delete(b.handlers, topic)
	}
}

// Publish публикует событие
func (b *Bus) Publish(topic entities.Topic, payload interface{}) {
	b.mu.RLock()
	subs := b.handlers[topic]
	wildcard := b.wildcard
	b.mu.RUnlock()

	for _, s := range subs {
		b.invoke(topic, func() { s.handler(payload) })
	}
	for _, w := range wildcard {
		b.invoke(topic, func() { w.handler(topic, payload) })
	}
}

// HandlerCount возвращает число подписчиков события
func (b *Bus) HandlerCount(topic entities.Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

// invoke вызывает обработчик, перехватывая панику
func (b *Bus) invoke(topic entities.Topic, call func()) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("Обработчик события %s завершился паникой: %v", topic, r)
		}
	}()
	call()
}
