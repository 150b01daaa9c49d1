package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// SettingRecord строка таблицы settings
type SettingRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

// TableName имя таблицы настроек
func (SettingRecord) TableName() string {
	return "settings"
}

// SettingsRepository хранит настройки сжатия в JSON под одним ключом
type SettingsRepository struct {
	db     *gorm.DB
	key    string
	logger repositories.Logger
}

// NewSettingsRepository открывает gorm поверх существующего соединения
func NewSettingsRepository(conn *sql.DB, key string, log repositories.Logger) (*SettingsRepository, error) {
	db, err := gorm.Open(&sqlite.Dialector{Conn: conn}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе настроек: %w", err)
	}
	if err := db.AutoMigrate(&SettingRecord{}); err != nil {
		return nil, fmt.Errorf("ошибка миграции таблицы settings: %w", err)
	}
	return &SettingsRepository{db: db, key: key, logger: log}, nil
}

// LoadSettings читает настройки. Отсутствующие или поврежденные данные
// дают настройки по умолчанию.
func (r *SettingsRepository) LoadSettings() (entities.CompressionSettings, error) {
	var record SettingRecord
	result := r.db.Where(&SettingRecord{Key: r.key}).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return entities.DefaultCompressionSettings(), nil
		}
		return entities.DefaultCompressionSettings(), result.Error
	}

	settings := entities.DefaultCompressionSettings()
	if err := json.Unmarshal([]byte(record.Value), &settings); err != nil {
		if r.logger != nil {
			r.logger.Warning("Сохраненные настройки повреждены, используются значения по умолчанию: %v", err)
		}
		return entities.DefaultCompressionSettings(), nil
	}
	return settings.Normalize(), nil
}

// SaveSettings записывает настройки
func (r *SettingsRepository) SaveSettings(settings entities.CompressionSettings) error {
	data, err := json.Marshal(settings.Normalize())
	if err != nil {
		return err
	}
	return r.db.Save(&SettingRecord{Key: r.key, Value: string(data)}).Error
}
