package eventbus

import (
	"sync"

	"pdfcompress/internal/domain/entities"
)

// Record опубликованное событие
type Record struct {
	Topic   entities.Topic
	Payload interface{}
}

// Recorder запоминает все события шины в порядке публикации
type Recorder struct {
	mu          sync.Mutex
	records     []Record
	unsubscribe func()
}

// NewRecorder подписывает регистратор на шину
func NewRecorder(bus *Bus) *Recorder {
	r := &Recorder{}
	r.unsubscribe = bus.SubscribeAll(func(topic entities.Topic, payload interface{}) {
		r.mu.Lock()
		r.records = append(r.records, Record{Topic: topic, Payload: payload})
		r.mu.Unlock()
	})
	return r
}

// Records возвращает копию журнала
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Topics возвращает имена событий в порядке публикации
func (r *Recorder) Topics() []entities.Topic {
	records := r.Records()
	out := make([]entities.Topic, len(records))
	for i, rec := range records {
		out[i] = rec.Topic
	}
	return out
}

// Filter возвращает события с заданным именем
func (r *Recorder) Filter(topic entities.Topic) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Topic == topic {
			out = append(out, rec)
		}
	}
	return out
}

// Reset очищает журнал
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

// Stop отписывает регистратор
func (r *Recorder) Stop() {
	r.unsubscribe()
}
