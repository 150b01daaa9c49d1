package usecases

import (
	"fmt"
	"reflect"
	"sync"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// StateListener вызывается при изменении значения ключа
type StateListener func(key entities.StateKey, value, previous interface{})

type stateSubscription struct {
	id       uint64
	listener StateListener
}

type stateChange struct {
	key      entities.StateKey
	value    interface{}
	previous interface{}
}

// AppState наблюдаемое хранилище состояния приложения
type AppState struct {
	mu          sync.Mutex
	values      map[entities.StateKey]interface{}
	subscribers map[entities.StateKey][]stateSubscription
	nextID      uint64
	publisher   repositories.EventPublisher
	logger      repositories.Logger
}

// NewAppState создает хранилище со значениями по умолчанию
func NewAppState(publisher repositories.EventPublisher, logger repositories.Logger) *AppState {
	return &AppState{
		values:      entities.DefaultState(),
		subscribers: make(map[entities.StateKey][]stateSubscription),
		publisher:   publisher,
		logger:      logger,
	}
}

// Get возвращает значение ключа
func (s *AppState) Get(key entities.StateKey) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set записывает одно значение. Возвращает false, если запись отклонена.
func (s *AppState) Set(key entities.StateKey, value interface{}) bool {
	return s.Update(map[entities.StateKey]interface{}{key: value})
}

// Update атомарно записывает несколько значений. Либо применяются все
// значения, либо ни одно. Подписчики уведомляются после записи, по одному
// уведомлению на каждый измененный ключ.
func (s *AppState) Update(partial map[entities.StateKey]interface{}) bool {
	s.mu.Lock()

	normalized := make(map[entities.StateKey]interface{}, len(partial))
	for key, raw := range partial {
		value, err := normalizeStateValue(key, raw)
		if err != nil {
			s.mu.Unlock()
			s.logWarning("Запись состояния %s отклонена: %v", key, err)
			return false
		}
		normalized[key] = value
	}

	if feature := s.gatedFeature(normalized); feature != "" {
		s.mu.Unlock()
		s.logWarning("Функция %s недоступна на бесплатном тарифе", feature)
		if s.publisher != nil {
			s.publisher.Publish(entities.EventProUpgradeRequired, entities.ProUpgradePayload{
				Feature: feature,
				Reason:  fmt.Sprintf("tier %s", entities.TierFree),
			})
		}
		return false
	}

	var changes []stateChange
	for _, key := range entities.StateKeys() {
		value, ok := normalized[key]
		if !ok {
			continue
		}
		previous := s.values[key]
		if reflect.DeepEqual(previous, value) {
			continue
		}
		s.values[key] = value
		changes = append(changes, stateChange{key: key, value: value, previous: previous})
	}

	notify := make([][]stateSubscription, len(changes))
	for i, c := range changes {
		notify[i] = s.subscribers[c.key]
	}
	s.mu.Unlock()

	for i, c := range changes {
		for _, sub := range notify[i] {
			s.invoke(sub.listener, c)
		}
	}
	return true
}

// Subscribe подписывает слушателя на ключ и возвращает функцию отписки
func (s *AppState) Subscribe(key entities.StateKey, listener StateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers[key] = append(s.subscribers[key], stateSubscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			subs := s.subscribers[key]
			for i, sub := range subs {
				if sub.id == id {
					s.subscribers[key] = append(subs[:i:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

// GetSettings собирает настройки сжатия из известных ключей
func (s *AppState) GetSettings() entities.CompressionSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := entities.CompressionSettings{
		CompressionLevel:     s.values[entities.KeyCompressionLevel].(entities.CompressionLevel),
		ImageQuality:         s.values[entities.KeyImageQuality].(int),
		TargetSize:           s.values[entities.KeyTargetSize].(entities.TargetSize),
		OptimizationStrategy: s.values[entities.KeyOptimizationStrategy].(entities.OptimizationStrategy),
		UseServerProcessing:  s.values[entities.KeyUseServerProcessing].(bool),
	}
	return settings.Normalize()
}

// Mode возвращает текущий режим обработки
func (s *AppState) Mode() entities.ProcessingMode {
	v, _ := s.Get(entities.KeyProcessingMode)
	mode, _ := v.(entities.ProcessingMode)
	return mode
}

// Tier возвращает тариф пользователя
func (s *AppState) Tier() entities.UserTier {
	v, _ := s.Get(entities.KeyUserTier)
	tier, _ := v.(entities.UserTier)
	return tier
}

// CurrentJobID возвращает идентификатор текущего задания
func (s *AppState) CurrentJobID() string {
	v, _ := s.Get(entities.KeyCurrentJobID)
	id, _ := v.(string)
	return id
}

// gatedFeature возвращает платную функцию, которую пытается включить запись.
// Тариф берется с учетом самой записи.
func (s *AppState) gatedFeature(update map[entities.StateKey]interface{}) string {
	tier := s.values[entities.KeyUserTier].(entities.UserTier)
	if v, ok := update[entities.KeyUserTier]; ok {
		tier = v.(entities.UserTier)
	}
	if tier.IsPaid() {
		return ""
	}
	if v, ok := update[entities.KeyProcessingMode]; ok && v.(entities.ProcessingMode) == entities.ModeBulk {
		return entities.FeatureBulkProcessing
	}
	if v, ok := update[entities.KeyUseServerProcessing]; ok && v.(bool) {
		return entities.FeatureServerProcessing
	}
	return ""
}

func (s *AppState) invoke(listener StateListener, c stateChange) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("Подписчик состояния %s завершился паникой: %v", c.key, r)
		}
	}()
	listener(c.key, c.value, c.previous)
}

func (s *AppState) logWarning(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warning(format, args...)
	}
}

// normalizeStateValue приводит значение к типу ключа
func normalizeStateValue(key entities.StateKey, raw interface{}) (interface{}, error) {
	switch key {
	case entities.KeyCompressionLevel:
		str, ok := stringValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return entities.ParseCompressionLevel(str), nil

	case entities.KeyImageQuality:
		n, ok := intValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return entities.ClampImageQuality(n), nil

	case entities.KeyTargetSize:
		if f, ok := raw.(float64); ok {
			return entities.ParseTargetSize(fmt.Sprintf("%g", f)), nil
		}
		str, ok := stringValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return entities.ParseTargetSize(str), nil

	case entities.KeyOptimizationStrategy:
		str, ok := stringValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return entities.ParseOptimizationStrategy(str), nil

	case entities.KeyUseServerProcessing, entities.KeyIsAuthenticated, entities.KeyProcessing:
		b, ok := raw.(bool)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return b, nil

	case entities.KeyProcessingMode:
		str, ok := stringValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		switch mode := entities.ProcessingMode(str); mode {
		case entities.ModeSingle, entities.ModeBulk:
			return mode, nil
		}
		return nil, entities.ErrInvalidStateValue

	case entities.KeyUserTier:
		str, ok := stringValue(raw)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		switch tier := entities.UserTier(str); tier {
		case entities.TierFree, entities.TierPro, entities.TierPremium:
			return tier, nil
		}
		return nil, entities.ErrInvalidStateValue

	case entities.KeyCurrentSettingsTab, entities.KeyActiveTab, entities.KeyCurrentJobID:
		str, ok := raw.(string)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		return str, nil

	case entities.KeyFiles:
		files, ok := raw.([]entities.FileInfo)
		if !ok {
			return nil, entities.ErrInvalidStateValue
		}
		out := make([]entities.FileInfo, len(files))
		copy(out, files)
		return out, nil
	}

	return nil, entities.ErrUnknownStateKey
}

func stringValue(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case entities.CompressionLevel:
		return string(v), true
	case entities.TargetSize:
		return string(v), true
	case entities.OptimizationStrategy:
		return string(v), true
	case entities.ProcessingMode:
		return string(v), true
	case entities.UserTier:
		return string(v), true
	}
	return "", false
}

func intValue(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
