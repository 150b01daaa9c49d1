package components_test

import (
	"testing"
	"time"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/eventbus"
	"pdfcompress/internal/presentation/components"
)

func TestSettingsPanel_SetGetRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   entities.CompressionSettings
	}{
		{"defaults", entities.DefaultCompressionSettings()},
		{"valid", entities.CompressionSettings{
			CompressionLevel:     entities.LevelHigh,
			ImageQuality:         55,
			TargetSize:           entities.Target50,
			OptimizationStrategy: entities.StrategyTextOptimized,
			UseServerProcessing:  true,
		}},
		{"out of range", entities.CompressionSettings{
			CompressionLevel:     "ultra",
			ImageQuality:         500,
			TargetSize:           "0.5",
			OptimizationStrategy: "whatever",
		}},
		{"zero", entities.CompressionSettings{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus, rec := newRecorded()
			p := components.NewSettingsPanel(0, bus, nil)

			p.SetSettings(tt.in)

			if got, want := p.GetSettings(), tt.in.Normalize(); got != want {
				t.Errorf("Expected %+v, got %+v", want, got)
			}
			if len(rec.Records()) != 0 {
				t.Errorf("Expected SetSettings to publish nothing, got %v", rec.Topics())
			}
		})
	}
}

func TestSettingsPanel_ImmediatePublish(t *testing.T) {
	bus, rec := newRecorded()
	p := components.NewSettingsPanel(0, bus, nil)

	p.SelectImageQuality(5)

	events := rec.Filter(entities.EventSettingsChanged)
	if len(events) != 1 {
		t.Fatalf("Expected 1 settings-changed, got %d", len(events))
	}
	if got := events[0].Payload.(entities.SettingsChangedPayload).Settings.ImageQuality; got != entities.MinImageQuality {
		t.Errorf("Expected quality clamped to %d, got %d", entities.MinImageQuality, got)
	}
}

func TestSettingsPanel_DebouncedInputCoalesces(t *testing.T) {
	bus, rec := newRecorded()
	p := components.NewSettingsPanel(time.Hour, bus, nil)

	p.SelectLevel(entities.LevelMaximum)
	p.SelectImageQuality(40)
	p.SelectStrategy(entities.StrategyImageOptimized)
	p.SelectTargetSize(entities.Target25)

	if n := len(rec.Filter(entities.EventSettingsChanged)); n != 0 {
		t.Fatalf("Expected no events before the pause, got %d", n)
	}

	p.Flush()
	p.Flush()

	events := rec.Filter(entities.EventSettingsChanged)
	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 settings-changed, got %d", len(events))
	}
	want := entities.CompressionSettings{
		CompressionLevel:     entities.LevelMaximum,
		ImageQuality:         40,
		TargetSize:           entities.Target25,
		OptimizationStrategy: entities.StrategyImageOptimized,
	}
	if got := events[0].Payload.(entities.SettingsChangedPayload).Settings; got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSettingsPanel_DebounceFires(t *testing.T) {
	bus := eventbus.New(nil)
	fired := make(chan entities.CompressionSettings, 1)
	bus.Subscribe(entities.EventSettingsChanged, func(payload interface{}) {
		fired <- payload.(entities.SettingsChangedPayload).Settings
	})

	p := components.NewSettingsPanel(10*time.Millisecond, bus, nil)
	p.SelectLevel(entities.LevelLow)

	select {
	case s := <-fired:
		if s.CompressionLevel != entities.LevelLow {
			t.Errorf("Expected level low, got %s", s.CompressionLevel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected settings-changed after the debounce delay")
	}
}

func TestSettingsPanel_SetSettingsDropsPendingInput(t *testing.T) {
	bus, rec := newRecorded()
	p := components.NewSettingsPanel(time.Hour, bus, nil)

	p.SelectLevel(entities.LevelHigh)
	p.SetSettings(entities.DefaultCompressionSettings())
	p.Flush()

	if n := len(rec.Filter(entities.EventSettingsChanged)); n != 0 {
		t.Errorf("Expected pending input to be discarded, got %d events", n)
	}
}

func TestSettingsPanel_ToggleModePublishesImmediately(t *testing.T) {
	bus, rec := newRecorded()
	p := components.NewSettingsPanel(time.Hour, bus, nil)

	p.ToggleMode(entities.ModeBulk)

	events := rec.Filter(entities.EventModeChanged)
	if len(events) != 1 || events[0].Payload.(entities.ModeChangedPayload).Mode != entities.ModeBulk {
		t.Fatalf("Expected mode-changed(bulk), got %+v", events)
	}

	p.SetMode(entities.ModeSingle)
	if p.Mode() != entities.ModeSingle {
		t.Errorf("Expected pushed mode single, got %s", p.Mode())
	}
	if len(rec.Filter(entities.EventModeChanged)) != 1 {
		t.Error("Expected SetMode to publish nothing")
	}
}

func TestSettingsPanel_Tier(t *testing.T) {
	p := components.NewSettingsPanel(0, eventbus.New(nil), nil)
	if p.PaidFeaturesAvailable() {
		t.Error("Expected paid features locked for free tier")
	}
	p.SetTier(entities.TierPremium)
	if !p.PaidFeaturesAvailable() {
		t.Error("Expected paid features for premium tier")
	}
}
