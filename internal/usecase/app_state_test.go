package usecases_test

import (
	"reflect"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/eventbus"
	usecases "pdfcompress/internal/usecase"
)

func newState() (*usecases.AppState, *eventbus.Recorder) {
	bus := eventbus.New(nil)
	return usecases.NewAppState(bus, nil), eventbus.NewRecorder(bus)
}

func TestAppState_Defaults(t *testing.T) {
	state, _ := newState()

	if got := state.GetSettings(); got != entities.DefaultCompressionSettings() {
		t.Errorf("Expected default settings, got %+v", got)
	}
	if state.Mode() != entities.ModeSingle || state.Tier() != entities.TierFree {
		t.Errorf("Unexpected mode/tier: %s/%s", state.Mode(), state.Tier())
	}
	if v, ok := state.Get(entities.KeyActiveTab); !ok || v != "compress" {
		t.Errorf("Expected activeTab=compress, got %v", v)
	}
	if _, ok := state.Get("unknown"); ok {
		t.Error("Unknown keys must be absent")
	}
}

func TestAppState_FreeTierGating(t *testing.T) {
	tests := []struct {
		name    string
		key     entities.StateKey
		value   interface{}
		feature string
	}{
		{"Bulk mode", entities.KeyProcessingMode, entities.ModeBulk, entities.FeatureBulkProcessing},
		{"Bulk mode as string", entities.KeyProcessingMode, "bulk", entities.FeatureBulkProcessing},
		{"Server processing", entities.KeyUseServerProcessing, true, entities.FeatureServerProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, rec := newState()
			notified := 0
			state.Subscribe(tt.key, func(entities.StateKey, interface{}, interface{}) { notified++ })

			if state.Set(tt.key, tt.value) {
				t.Fatal("Expected write to be rejected")
			}
			if state.Mode() != entities.ModeSingle || state.GetSettings().UseServerProcessing {
				t.Error("State must stay unchanged")
			}
			if notified != 0 {
				t.Error("Subscribers must not be notified for a rejected write")
			}

			events := rec.Filter(entities.EventProUpgradeRequired)
			if len(events) != 1 {
				t.Fatalf("Expected one pro-upgrade-required, got %d", len(events))
			}
			if p := events[0].Payload.(entities.ProUpgradePayload); p.Feature != tt.feature {
				t.Errorf("Expected feature %s, got %s", tt.feature, p.Feature)
			}
		})
	}
}

func TestAppState_PaidTierAllowsBulk(t *testing.T) {
	state, rec := newState()

	if !state.Update(map[entities.StateKey]interface{}{
		entities.KeyUserTier:       entities.TierPro,
		entities.KeyProcessingMode: entities.ModeBulk,
	}) {
		t.Fatal("Expected upgrade and bulk in one update to succeed")
	}
	if state.Mode() != entities.ModeBulk {
		t.Errorf("Expected bulk mode, got %s", state.Mode())
	}
	if len(rec.Records()) != 0 {
		t.Error("No upgrade prompt expected")
	}
}

func TestAppState_UpdateIsAtomic(t *testing.T) {
	state, _ := newState()

	ok := state.Update(map[entities.StateKey]interface{}{
		entities.KeyCompressionLevel: entities.LevelHigh,
		entities.KeyProcessingMode:   entities.ModeBulk,
	})
	if ok {
		t.Fatal("Expected the whole update to be rejected")
	}
	if state.GetSettings().CompressionLevel != entities.LevelMedium {
		t.Error("No key of a rejected update may be applied")
	}

	if state.Set(entities.KeyImageQuality, "high") {
		t.Error("Expected wrong type to be rejected")
	}
	if state.Set("mystery", 1) {
		t.Error("Expected unknown key to be rejected")
	}
}

func TestAppState_NotifiesChangedKeysInOrder(t *testing.T) {
	state, _ := newState()
	var seen []string

	for _, key := range []entities.StateKey{entities.KeyCompressionLevel, entities.KeyImageQuality, entities.KeyTargetSize} {
		state.Subscribe(key, func(k entities.StateKey, v, prev interface{}) {
			seen = append(seen, string(k))
		})
	}
	second := 0
	state.Subscribe(entities.KeyCompressionLevel, func(entities.StateKey, interface{}, interface{}) { second++ })

	state.Update(map[entities.StateKey]interface{}{
		entities.KeyTargetSize:       "0.5",
		entities.KeyImageQuality:     80, // без изменений
		entities.KeyCompressionLevel: "high",
	})

	expected := []string{"compressionLevel", "targetSize"}
	if !reflect.DeepEqual(seen, expected) {
		t.Errorf("Expected %v, got %v", expected, seen)
	}
	if second != 1 {
		t.Errorf("Expected every subscriber of a key to be notified once, got %d", second)
	}
}

func TestAppState_ClampsAndUnsubscribes(t *testing.T) {
	state, _ := newState()
	calls := 0
	unsubscribe := state.Subscribe(entities.KeyImageQuality, func(_ entities.StateKey, v, _ interface{}) {
		calls++
		if v != 100 {
			t.Errorf("Expected clamped value 100, got %v", v)
		}
	})

	state.Set(entities.KeyImageQuality, 400)
	unsubscribe()
	state.Set(entities.KeyImageQuality, 50)

	if calls != 1 {
		t.Errorf("Expected 1 notification, got %d", calls)
	}
	if state.GetSettings().ImageQuality != 50 {
		t.Errorf("Expected quality 50, got %d", state.GetSettings().ImageQuality)
	}
}

func TestAppState_UnknownValuesFallBack(t *testing.T) {
	state, _ := newState()
	state.Set(entities.KeyCompressionLevel, "extreme")
	state.Set(entities.KeyOptimizationStrategy, "weird")
	state.Set(entities.KeyTargetSize, 0.75)

	s := state.GetSettings()
	if s.CompressionLevel != entities.LevelMedium || s.OptimizationStrategy != entities.StrategyBalanced {
		t.Errorf("Expected fallbacks, got %+v", s)
	}
	if s.TargetSize != entities.Target75 {
		t.Errorf("Expected numeric target to parse, got %s", s.TargetSize)
	}
}

func TestAppState_RestoresPaidSettingsOnFreeTier(t *testing.T) {
	state, rec := newState()
	saved := entities.DefaultCompressionSettings()
	saved.CompressionLevel = entities.LevelMaximum
	saved.ImageQuality = 35
	saved.UseServerProcessing = true

	if !state.Update(saved.ForTier(state.Tier()).SettingsUpdate()) {
		t.Fatal("Expected restored settings to be accepted")
	}
	got := state.GetSettings()
	if got.CompressionLevel != entities.LevelMaximum || got.ImageQuality != 35 || got.UseServerProcessing {
		t.Errorf("Unexpected restored settings %+v", got)
	}
	if n := len(rec.Filter(entities.EventProUpgradeRequired)); n != 0 {
		t.Errorf("Expected no upgrade prompt, got %d", n)
	}
}
