package controllers

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/repositories"
)

// DownloadURLPrefix префикс адресов скачивания
const DownloadURLPrefix = "blob:pdfcompress/"

// AfterFunc планирует вызов f через d и возвращает функцию отмены
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timerAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Download результат, доступный по адресу скачивания
type Download struct {
	URL       string
	JobID     string
	Index     int
	FileName  string
	Data      []byte
	CreatedAt time.Time
}

type downloadKey struct {
	jobID string
	index int
}

type downloadEntry struct {
	Download
	stop func() bool
}

// DownloadRegistry выдает адреса скачивания для результатов задания.
// Адрес освобождается при сбросе или по истечении TTL.
type DownloadRegistry struct {
	mu     sync.Mutex
	ttl    time.Duration
	after  AfterFunc
	byURL  map[string]*downloadEntry
	byKey  map[downloadKey]string
	logger repositories.Logger
}

// NewDownloadRegistry создает реестр адресов
func NewDownloadRegistry(ttl time.Duration, logger repositories.Logger) *DownloadRegistry {
	return &DownloadRegistry{
		ttl:    ttl,
		after:  timerAfterFunc,
		byURL:  make(map[string]*downloadEntry),
		byKey:  make(map[downloadKey]string),
		logger: logger,
	}
}

// SetScheduler подменяет таймер истечения
func (r *DownloadRegistry) SetScheduler(after AfterFunc) {
	r.mu.Lock()
	r.after = after
	r.mu.Unlock()
}

// Mint возвращает адрес для файла index задания jobID. Повторный вызов
// для той же пары возвращает прежний адрес.
func (r *DownloadRegistry) Mint(jobID string, index int, fileName string, data []byte) string {
	key := downloadKey{jobID: jobID, index: index}

	r.mu.Lock()
	if url, ok := r.byKey[key]; ok {
		r.mu.Unlock()
		return url
	}
	url := DownloadURLPrefix + uuid.NewString()
	r.byURL[url] = &downloadEntry{Download: Download{
		URL:       url,
		JobID:     jobID,
		Index:     index,
		FileName:  fileName,
		Data:      data,
		CreatedAt: time.Now(),
	}}
	r.byKey[key] = url
	ttl := r.ttl
	after := r.after
	r.mu.Unlock()

	if ttl > 0 {
		stop := after(ttl, func() {
			if r.Release(url) && r.logger != nil {
				r.logger.Debug("Ссылка на %s истекла", fileName)
			}
		})
		r.mu.Lock()
		if entry, ok := r.byURL[url]; ok {
			entry.stop = stop
		}
		r.mu.Unlock()
	}
	return url
}

// Resolve возвращает результат по адресу
func (r *DownloadRegistry) Resolve(url string) (Download, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byURL[url]
	if !ok {
		return Download{}, false
	}
	return entry.Download, true
}

// URLs возвращает адреса задания по индексу файла
func (r *DownloadRegistry) URLs(jobID string) map[int]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]string)
	for key, url := range r.byKey {
		if key.jobID == jobID {
			out[key.index] = url
		}
	}
	return out
}

// ForJob возвращает результаты задания в порядке индексов
func (r *DownloadRegistry) ForJob(jobID string) []Download {
	r.mu.Lock()
	var out []Download
	for _, entry := range r.byURL {
		if entry.JobID == jobID {
			out = append(out, entry.Download)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Release освобождает адрес
func (r *DownloadRegistry) Release(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.release(url)
}

// ReleaseAll освобождает все адреса и возвращает их количество
func (r *DownloadRegistry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for url := range r.byURL {
		if r.release(url) {
			n++
		}
	}
	return n
}

func (r *DownloadRegistry) release(url string) bool {
	entry, ok := r.byURL[url]
	if !ok {
		return false
	}
	if entry.stop != nil {
		entry.stop()
	}
	delete(r.byURL, url)
	delete(r.byKey, downloadKey{jobID: entry.JobID, index: entry.Index})
	return true
}

// Len количество активных адресов
func (r *DownloadRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byURL)
}
