package usecases

import (
	"fmt"
	"sync"

	"github.com/sqids/sqids-go"
)

// JobIDGenerator выдает монотонные короткие идентификаторы заданий
type JobIDGenerator struct {
	mu      sync.Mutex
	seq     uint64
	encoder *sqids.Sqids
}

// NewJobIDGenerator создает генератор идентификаторов
func NewJobIDGenerator() *JobIDGenerator {
	encoder, err := sqids.New(sqids.Options{MinLength: 6})
	if err != nil {
		encoder = nil
	}
	return &JobIDGenerator{encoder: encoder}
}

// Next возвращает следующий идентификатор
func (g *JobIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	if g.encoder != nil {
		if id, err := g.encoder.Encode([]uint64{g.seq}); err == nil {
			return "job-" + id
		}
	}
	return fmt.Sprintf("job-%d", g.seq)
}
