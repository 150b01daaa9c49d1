package components

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// AfterFunc планирует вызов f через d и возвращает функцию отмены
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timerAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Notifications очередь всплывающих уведомлений. Ошибки, а также
// уведомления загрузки и прогресса не закрываются автоматически.
type Notifications struct {
	base

	mu         sync.Mutex
	items      []entities.Notification
	timers     map[string]func() bool
	ttl        map[entities.NotificationVariant]time.Duration
	maxVisible int
	after      AfterFunc
	now        func() time.Time
}

// NewNotifications создает очередь уведомлений с длительностями из конфигурации
func NewNotifications(cfg entities.UIConfig, publisher repositories.EventPublisher, logger repositories.Logger) *Notifications {
	maxVisible := cfg.MaxVisibleNotifications
	if maxVisible <= 0 {
		maxVisible = 5
	}
	return &Notifications{
		base:   newBase(entities.RoleNotifications, publisher, logger),
		timers: make(map[string]func() bool),
		ttl: map[entities.NotificationVariant]time.Duration{
			entities.NotifySuccess: cfg.SuccessTTL,
			entities.NotifyInfo:    cfg.InfoTTL,
			entities.NotifyWarning: cfg.WarningTTL,
		},
		maxVisible: maxVisible,
		after:      timerAfterFunc,
		now:        time.Now,
	}
}

// SetScheduler подменяет таймер автозакрытия
func (n *Notifications) SetScheduler(after AfterFunc) {
	n.mu.Lock()
	n.after = after
	n.mu.Unlock()
}

// TTL время жизни уведомления варианта; ноль означает без автозакрытия
func (n *Notifications) TTL(variant entities.NotificationVariant) time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ttl[variant]
}

// Notify добавляет уведомление и возвращает его идентификатор
func (n *Notifications) Notify(note entities.Notification) string {
	n.mu.Lock()
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now()
	}
	n.items = append(n.items, note)
	id := note.ID
	ttl := n.ttl[note.Variant]
	after := n.after
	n.mu.Unlock()

	if ttl > 0 {
		stop := after(ttl, func() { n.Dismiss(id) })
		n.mu.Lock()
		if n.indexOf(id) >= 0 {
			n.timers[id] = stop
		}
		n.mu.Unlock()
	}

	n.changed()
	return id
}

func (n *Notifications) indexOf(id string) int {
	for i := range n.items {
		if n.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Update меняет текст и прогресс существующего уведомления
func (n *Notifications) Update(id, message string, progress int) bool {
	n.mu.Lock()
	idx := n.indexOf(id)
	found := idx >= 0
	if found {
		if message != "" {
			n.items[idx].Message = message
		}
		n.items[idx].Progress = progress
	}
	n.mu.Unlock()

	if found {
		n.changed()
	}
	return found
}

// Dismiss закрывает уведомление
func (n *Notifications) Dismiss(id string) bool {
	n.mu.Lock()
	idx := n.indexOf(id)
	if idx < 0 {
		n.mu.Unlock()
		return false
	}
	n.items = append(n.items[:idx], n.items[idx+1:]...)
	if stop, ok := n.timers[id]; ok {
		stop()
		delete(n.timers, id)
	}
	n.mu.Unlock()

	n.changed()
	return true
}

// DismissAll закрывает все уведомления
func (n *Notifications) DismissAll() {
	n.mu.Lock()
	for id, stop := range n.timers {
		stop()
		delete(n.timers, id)
	}
	n.items = nil
	n.mu.Unlock()
	n.changed()
}

// Trigger выполняет действие уведомления: публикует notification-action и
// закрывает уведомление
func (n *Notifications) Trigger(id, action string) bool {
	n.mu.Lock()
	found := n.indexOf(id) >= 0
	n.mu.Unlock()

	if !found {
		return false
	}
	if action != entities.ActionDismiss {
		n.emit(entities.EventNotificationAction, entities.NotificationActionPayload{NotificationID: id, Action: action})
	}
	n.Dismiss(id)
	return true
}

// All возвращает все уведомления в порядке появления
func (n *Notifications) All() []entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Visible возвращает последние уведомления в пределах лимита
func (n *Notifications) Visible() []entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	start := 0
	if len(n.items) > n.maxVisible {
		start = len(n.items) - n.maxVisible
	}
	out := make([]entities.Notification, len(n.items)-start)
	copy(out, n.items[start:])
	return out
}

// Render возвращает разметку tview
func (n *Notifications) Render() string {
	var b strings.Builder
	for _, item := range n.Visible() {
		icon, color := variantStyle(item.Variant)
		fmt.Fprintf(&b, "[%s]%s %s[white]", color, icon, item.Title)
		if item.Message != "" {
			fmt.Fprintf(&b, " %s", item.Message)
		}
		if item.Variant == entities.NotifyProgress {
			fmt.Fprintf(&b, " %s %d%%", ProgressBar(float64(item.Progress), 20), item.Progress)
		}
		for _, a := range item.Actions {
			fmt.Fprintf(&b, " [yellow](%s)[white]", a.Label)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func variantStyle(v entities.NotificationVariant) (string, string) {
	switch v {
	case entities.NotifySuccess:
		return "✅", "green"
	case entities.NotifyWarning:
		return "⚠️", "yellow"
	case entities.NotifyError:
		return "❌", "red"
	case entities.NotifyLoading:
		return "⏳", "cyan"
	case entities.NotifyProgress:
		return "📊", "cyan"
	default:
		return "ℹ️", "white"
	}
}
