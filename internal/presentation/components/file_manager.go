package components

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// SortField поле сортировки списка файлов
type SortField string

const (
	SortByDate      SortField = "date"
	SortByName      SortField = "name"
	SortBySize      SortField = "size"
	SortByRelevance SortField = "relevance"
)

// FileFilter фильтр по типу файла
type FileFilter string

const (
	FilterAll    FileFilter = "all"
	FilterPDF    FileFilter = "pdf"
	FilterImages FileFilter = "images"
)

// FileManager список сохраненных файлов с поиском, фильтром и сортировкой.
// Получение, скачивание и удаление файлов выполняются по запросам через шину.
type FileManager struct {
	base

	mu      sync.Mutex
	source  string
	folder  string
	records []entities.FileRecord
	query   string
	filter  FileFilter
	sortBy  SortField
	desc    bool
	loading bool
	errText string
}

// NewFileManager создает файловый менеджер для источника source
// ("local" или идентификатор облачного провайдера)
func NewFileManager(source string, publisher repositories.EventPublisher, logger repositories.Logger) *FileManager {
	return &FileManager{
		base:   newBase(entities.RoleFileManager, publisher, logger),
		source: source,
		filter: FilterAll,
		sortBy: SortByDate,
		desc:   true,
	}
}

// Source текущий источник файлов
func (m *FileManager) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Refresh запрашивает список файлов источника
func (m *FileManager) Refresh() {
	m.mu.Lock()
	m.loading = true
	m.errText = ""
	payload := entities.FileListRequestedPayload{Source: m.source, Folder: m.folder}
	m.mu.Unlock()

	m.changed()
	m.emit(entities.EventFileListRequested, payload)
}

// Open переключает источник и папку и запрашивает список
func (m *FileManager) Open(source, folder string) {
	m.mu.Lock()
	m.source = source
	m.folder = folder
	m.records = nil
	m.mu.Unlock()
	m.Refresh()
}

// SetFiles отображает полученный список. Ответы для другого источника
// игнорируются.
func (m *FileManager) SetFiles(source string, records []entities.FileRecord) bool {
	m.mu.Lock()
	if source != m.source {
		m.mu.Unlock()
		return false
	}
	m.records = make([]entities.FileRecord, len(records))
	copy(m.records, records)
	m.loading = false
	m.errText = ""
	m.mu.Unlock()

	m.changed()
	return true
}

// SetError отображает ошибку получения списка
func (m *FileManager) SetError(message string) {
	m.mu.Lock()
	m.loading = false
	m.errText = message
	m.mu.Unlock()
	m.changed()
}

// Search задает строку нечеткого поиска по имени
func (m *FileManager) Search(query string) {
	m.mu.Lock()
	m.query = strings.TrimSpace(query)
	m.mu.Unlock()
	m.changed()
}

// SetFilter задает фильтр по типу
func (m *FileManager) SetFilter(filter FileFilter) {
	m.mu.Lock()
	m.filter = filter
	m.mu.Unlock()
	m.changed()
}

// SortBy задает поле и направление сортировки
func (m *FileManager) SortBy(field SortField, desc bool) {
	m.mu.Lock()
	m.sortBy = field
	m.desc = desc
	m.mu.Unlock()
	m.changed()
}

// Download запрашивает файл для добавления в выборку загрузчика
func (m *FileManager) Download(id string) bool {
	return m.request(entities.EventFileDownloadRequested, id)
}

// Delete запрашивает удаление файла
func (m *FileManager) Delete(id string) bool {
	return m.request(entities.EventFileDeleteRequested, id)
}

func (m *FileManager) request(topic entities.Topic, id string) bool {
	m.mu.Lock()
	known := false
	for _, r := range m.records {
		if r.ID == id {
			known = true
			break
		}
	}
	source := m.source
	m.mu.Unlock()

	if !known {
		return false
	}
	m.emit(topic, entities.FileRequestPayload{Source: source, ID: id})
	return true
}

// Connect запрашивает подключение облачного провайдера
func (m *FileManager) Connect(providerID string) {
	m.emit(entities.EventCloudConnectRequested, entities.CloudConnectPayload{ProviderID: providerID})
}

// Disconnect запрашивает отключение облачных провайдеров
func (m *FileManager) Disconnect() {
	m.emit(entities.EventCloudDisconnectRequested, nil)
}

// View возвращает записи после фильтра, поиска и сортировки
func (m *FileManager) View() []entities.FileRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view()
}

func (m *FileManager) view() []entities.FileRecord {
	filtered := make([]entities.FileRecord, 0, len(m.records))
	for _, r := range m.records {
		if matchesFilter(r, m.filter) {
			filtered = append(filtered, r)
		}
	}

	if m.query != "" {
		names := make([]string, len(filtered))
		for i, r := range filtered {
			names[i] = r.Name
		}
		matches := fuzzy.Find(m.query, names)
		ranked := make([]entities.FileRecord, len(matches))
		for i, match := range matches {
			ranked[i] = filtered[match.Index]
		}
		filtered = ranked
		if m.sortBy == SortByRelevance {
			return filtered
		}
	}

	less := m.less(filtered)
	sort.SliceStable(filtered, less)
	return filtered
}

func (m *FileManager) less(records []entities.FileRecord) func(i, j int) bool {
	cmp := func(i, j int) bool {
		switch m.sortBy {
		case SortByName:
			return strings.ToLower(records[i].Name) < strings.ToLower(records[j].Name)
		case SortBySize:
			return records[i].Size < records[j].Size
		default:
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
	}
	if m.desc {
		return func(i, j int) bool { return cmp(j, i) }
	}
	return cmp
}

func matchesFilter(r entities.FileRecord, filter FileFilter) bool {
	switch filter {
	case FilterPDF:
		return r.MimeType == entities.MimePDF || strings.HasSuffix(strings.ToLower(r.Name), ".pdf")
	case FilterImages:
		return strings.HasPrefix(r.MimeType, "image/")
	default:
		return true
	}
}

// Render возвращает разметку tview
func (m *FileManager) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]🗂  Файлы (%s)[white]", m.source)
	if m.folder != "" {
		fmt.Fprintf(&b, " / %s", m.folder)
	}
	b.WriteString("\n")
	if m.query != "" {
		fmt.Fprintf(&b, "  Поиск: [cyan]%s[white]\n", m.query)
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString("[gray]Загрузка...[white]\n")
		return b.String()
	case m.errText != "":
		fmt.Fprintf(&b, "[red]❌ %s[white]\n", m.errText)
		return b.String()
	}

	view := m.view()
	if len(view) == 0 {
		b.WriteString("[gray]Нет файлов[white]\n")
	}
	for _, r := range view {
		fmt.Fprintf(&b, "  %s [cyan]%s[white] [gray]%s[white]\n",
			TruncateFileName(r.Name, MaxFileNameLength, MaxFileNameDisplay), size(r.Size), r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}
