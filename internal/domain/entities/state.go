package entities

// StateKey ключ хранилища состояния приложения
type StateKey string

const (
	KeyCompressionLevel     StateKey = "compressionLevel"
	KeyImageQuality         StateKey = "imageQuality"
	KeyTargetSize           StateKey = "targetSize"
	KeyOptimizationStrategy StateKey = "optimizationStrategy"
	KeyUseServerProcessing  StateKey = "useServerProcessing"
	KeyProcessingMode       StateKey = "processingMode"
	KeyUserTier             StateKey = "userTier"
	KeyIsAuthenticated      StateKey = "isAuthenticated"
	KeyCurrentSettingsTab   StateKey = "currentSettingsTab"
	KeyActiveTab            StateKey = "activeTab"
	KeyFiles                StateKey = "files"
	KeyProcessing           StateKey = "processing"
	KeyCurrentJobID         StateKey = "currentJobId"
)

// ProcessingMode режим обработки
type ProcessingMode string

const (
	ModeSingle ProcessingMode = "single"
	ModeBulk   ProcessingMode = "bulk"
)

// UserTier тарифный уровень пользователя
type UserTier string

const (
	TierFree    UserTier = "free"
	TierPro     UserTier = "pro"
	TierPremium UserTier = "premium"
)

// ParseUserTier разбирает тариф, неизвестные значения дают free
func ParseUserTier(value string) UserTier {
	switch UserTier(value) {
	case TierPro, TierPremium:
		return UserTier(value)
	default:
		return TierFree
	}
}

// IsPaid проверяет, открывает ли тариф платные функции
func (t UserTier) IsPaid() bool {
	return t == TierPro || t == TierPremium
}

// Функции, требующие платного тарифа
const (
	FeatureBulkProcessing   = "bulk-processing"
	FeatureServerProcessing = "server-processing"
)

// StateKeys перечень известных ключей в порядке объявления
func StateKeys() []StateKey {
	return []StateKey{
		KeyCompressionLevel,
		KeyImageQuality,
		KeyTargetSize,
		KeyOptimizationStrategy,
		KeyUseServerProcessing,
		KeyProcessingMode,
		KeyUserTier,
		KeyIsAuthenticated,
		KeyCurrentSettingsTab,
		KeyActiveTab,
		KeyFiles,
		KeyProcessing,
		KeyCurrentJobID,
	}
}

// DefaultState возвращает значения состояния по умолчанию.
// currentJobId равен пустой строке, пока задание не создано.
func DefaultState() map[StateKey]interface{} {
	return map[StateKey]interface{}{
		KeyCompressionLevel:     LevelMedium,
		KeyImageQuality:         DefaultImageQuality,
		KeyTargetSize:           TargetAuto,
		KeyOptimizationStrategy: StrategyBalanced,
		KeyUseServerProcessing:  false,
		KeyProcessingMode:       ModeSingle,
		KeyUserTier:             TierFree,
		KeyIsAuthenticated:      false,
		KeyCurrentSettingsTab:   "general",
		KeyActiveTab:            "compress",
		KeyFiles:                []FileInfo{},
		KeyProcessing:           false,
		KeyCurrentJobID:         "",
	}
}

// ForTier снимает платные флаги, недоступные тарифу
func (s CompressionSettings) ForTier(tier UserTier) CompressionSettings {
	if !tier.IsPaid() {
		s.UseServerProcessing = false
	}
	return s
}

// SettingsUpdate набор ключей состояния для записи настроек
func (s CompressionSettings) SettingsUpdate() map[StateKey]interface{} {
	s = s.Normalize()
	return map[StateKey]interface{}{
		KeyCompressionLevel:     s.CompressionLevel,
		KeyImageQuality:         s.ImageQuality,
		KeyTargetSize:           s.TargetSize,
		KeyOptimizationStrategy: s.OptimizationStrategy,
		KeyUseServerProcessing:  s.UseServerProcessing,
	}
}
