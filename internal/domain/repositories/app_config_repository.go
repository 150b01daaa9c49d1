package repositories

import "pdfcompress/internal/domain/entities"

// AppConfigRepository интерфейс для работы с конфигурацией приложения
type AppConfigRepository interface {
	Load(configPath string) (*entities.Config, error)
	Save(configPath string, config *entities.Config) error
}

// SettingsRepository хранит настройки сжатия под одним ключом
type SettingsRepository interface {
	LoadSettings() (entities.CompressionSettings, error)
	SaveSettings(settings entities.CompressionSettings) error
}
