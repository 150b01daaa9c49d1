package components_test

import (
	"testing"
	"time"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/presentation/components"
)

// fakeTimers планировщик, срабатывающий вручную
type fakeTimers struct {
	pending map[time.Duration][]func()
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{pending: make(map[time.Duration][]func())}
}

func (f *fakeTimers) after(d time.Duration, fn func()) func() bool {
	f.pending[d] = append(f.pending[d], fn)
	return func() bool { return true }
}

func (f *fakeTimers) fire(d time.Duration) {
	fns := f.pending[d]
	delete(f.pending, d)
	for _, fn := range fns {
		fn()
	}
}

func (f *fakeTimers) count() int {
	n := 0
	for _, fns := range f.pending {
		n += len(fns)
	}
	return n
}

var testUI = entities.UIConfig{
	SuccessTTL:              time.Second,
	InfoTTL:                 2 * time.Second,
	WarningTTL:              3 * time.Second,
	MaxVisibleNotifications: 2,
}

func TestNotifications_VariantTTLs(t *testing.T) {
	tests := []struct {
		variant   entities.NotificationVariant
		ttl       time.Duration
		autoClose bool
	}{
		{entities.NotifySuccess, time.Second, true},
		{entities.NotifyInfo, 2 * time.Second, true},
		{entities.NotifyWarning, 3 * time.Second, true},
		{entities.NotifyError, 0, false},
		{entities.NotifyLoading, 0, false},
		{entities.NotifyProgress, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			timers := newFakeTimers()
			n := components.NewNotifications(testUI, nil, nil)
			n.SetScheduler(timers.after)

			id := n.Notify(entities.Notification{Variant: tt.variant, Title: "t"})

			if got := n.TTL(tt.variant); got != tt.ttl {
				t.Errorf("Expected TTL %v, got %v", tt.ttl, got)
			}
			if tt.autoClose != (timers.count() == 1) {
				t.Fatalf("Expected auto close %v, scheduled %d timers", tt.autoClose, timers.count())
			}
			timers.fire(tt.ttl)
			present := false
			for _, item := range n.All() {
				if item.ID == id {
					present = true
				}
			}
			if present == tt.autoClose {
				t.Errorf("Expected present=%v after TTL, got %v", !tt.autoClose, present)
			}
		})
	}
}

func TestNotifications_ErrorsPersist(t *testing.T) {
	timers := newFakeTimers()
	n := components.NewNotifications(testUI, nil, nil)
	n.SetScheduler(timers.after)

	n.Notify(entities.Notification{Variant: entities.NotifyError, Title: "boom"})
	n.Notify(entities.Notification{Variant: entities.NotifySuccess, Title: "ok"})
	timers.fire(time.Second)

	all := n.All()
	if len(all) != 1 || all[0].Variant != entities.NotifyError {
		t.Errorf("Expected only the error to remain, got %+v", all)
	}
}

func TestNotifications_VisibleLimit(t *testing.T) {
	n := components.NewNotifications(testUI, nil, nil)
	n.SetScheduler(newFakeTimers().after)

	for _, title := range []string{"a", "b", "c"} {
		n.Notify(entities.Notification{Variant: entities.NotifyError, Title: title})
	}

	visible := n.Visible()
	if len(visible) != 2 || visible[0].Title != "b" || visible[1].Title != "c" {
		t.Errorf("Expected newest two [b c], got %+v", visible)
	}
	if len(n.All()) != 3 {
		t.Errorf("Expected 3 queued notifications, got %d", len(n.All()))
	}
}

func TestNotifications_TriggerPublishesAction(t *testing.T) {
	bus, rec := newRecorded()
	n := components.NewNotifications(testUI, bus, nil)

	id := n.Notify(entities.Notification{
		Variant: entities.NotifyError,
		Title:   "Ошибка",
		Actions: []entities.NotificationAction{{ID: entities.ActionRetry, Label: "Повторить"}},
	})

	if !n.Trigger(id, entities.ActionRetry) {
		t.Fatal("Expected Trigger to succeed")
	}
	events := rec.Filter(entities.EventNotificationAction)
	if len(events) != 1 {
		t.Fatalf("Expected 1 notification-action, got %d", len(events))
	}
	payload := events[0].Payload.(entities.NotificationActionPayload)
	if payload.NotificationID != id || payload.Action != entities.ActionRetry {
		t.Errorf("Unexpected payload %+v", payload)
	}
	if len(n.All()) != 0 {
		t.Error("Expected notification to be dismissed after action")
	}
	if n.Trigger(id, entities.ActionRetry) {
		t.Error("Expected Trigger on dismissed notification to fail")
	}
}

func TestNotifications_UpdateProgress(t *testing.T) {
	n := components.NewNotifications(testUI, nil, nil)
	id := n.Notify(entities.Notification{Variant: entities.NotifyProgress, Title: "Сжатие"})

	if !n.Update(id, "файл 2 из 3", 66) {
		t.Fatal("Expected Update to succeed")
	}
	item := n.All()[0]
	if item.Progress != 66 || item.Message != "файл 2 из 3" {
		t.Errorf("Unexpected notification %+v", item)
	}
	if n.Update("missing", "", 1) {
		t.Error("Expected Update of unknown id to fail")
	}
}
