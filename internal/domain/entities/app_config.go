package entities

import (
	"fmt"
	"time"
)

// Config представляет конфигурацию приложения
type Config struct {
	Compression AppCompressionConfig `yaml:"compression"`
	Limits      LimitsConfig         `yaml:"limits"`
	Session     SessionConfig        `yaml:"session"`
	Storage     StorageConfig        `yaml:"storage"`
	Cloud       CloudConfig          `yaml:"cloud"`
	UI          UIConfig             `yaml:"ui"`
	Output      OutputConfig         `yaml:"output"`
}

// AppCompressionConfig настройки сжатия приложения
type AppCompressionConfig struct {
	Algorithm        string `yaml:"algorithm"`
	AutoStart        bool   `yaml:"auto_start"`
	UniPDFLicenseKey string `yaml:"unipdf_license_key"`
	// Качество изображений при конвертации в PDF
	ImageQuality int `yaml:"image_quality"`
}

// LimitsConfig ограничения на входные файлы
type LimitsConfig struct {
	MaxSingleSizeMB int `yaml:"max_single_size_mb"`
	MaxBulkSizeMB   int `yaml:"max_bulk_size_mb"`
	MaxBulkFiles    int `yaml:"max_bulk_files"`
}

// SessionConfig параметры сессии пользователя
type SessionConfig struct {
	UserTier    string `yaml:"user_tier"`
	SettingsKey string `yaml:"settings_key"`
}

// StorageConfig настройки локального хранилища
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
	SaveResults  bool   `yaml:"save_results"`
}

// CloudConfig настройки облачных провайдеров
type CloudConfig struct {
	GCS GCSConfig `yaml:"gcs"`
	S3  S3Config  `yaml:"s3"`
}

// GCSConfig настройки Google Cloud Storage
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// S3Config настройки S3-совместимого хранилища
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// UIConfig настройки интерфейса
type UIConfig struct {
	DownloadURLTTL          time.Duration `yaml:"download_url_ttl"`
	SettingsDebounce        time.Duration `yaml:"settings_debounce"`
	DownloadDirectory       string        `yaml:"download_directory"`
	SuccessTTL              time.Duration `yaml:"success_ttl"`
	InfoTTL                 time.Duration `yaml:"info_ttl"`
	WarningTTL              time.Duration `yaml:"warning_ttl"`
	MaxVisibleNotifications int           `yaml:"max_visible_notifications"`
}

// OutputConfig настройки вывода
type OutputConfig struct {
	LogLevel     string `yaml:"log_level"`
	LogToFile    bool   `yaml:"log_to_file"`
	LogFileName  string `yaml:"log_file_name"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
}

// MaxSingleSize максимальный размер файла в одиночном режиме, байт
func (l LimitsConfig) MaxSingleSize() int64 {
	return int64(l.MaxSingleSizeMB) << 20
}

// MaxBulkSize максимальный размер файла в пакетном режиме, байт
func (l LimitsConfig) MaxBulkSize() int64 {
	return int64(l.MaxBulkSizeMB) << 20
}

// MaxSizeFor возвращает лимит размера для режима
func (l LimitsConfig) MaxSizeFor(mode ProcessingMode) int64 {
	if mode == ModeBulk {
		return l.MaxBulkSize()
	}
	return l.MaxSingleSize()
}

// Validate проверяет корректность конфигурации приложения
func (c *Config) Validate() error {
	switch c.Compression.Algorithm {
	case "", "pdfcpu", "unipdf":
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, c.Compression.Algorithm)
	}

	if c.Compression.ImageQuality != 0 &&
		(c.Compression.ImageQuality < MinImageQuality || c.Compression.ImageQuality > MaxImageQuality) {
		return ErrInvalidImageQuality
	}

	if c.Limits.MaxSingleSizeMB <= 0 || c.Limits.MaxBulkSizeMB <= 0 || c.Limits.MaxBulkFiles <= 0 {
		return ErrInvalidLimit
	}

	return nil
}

// DefaultConfig создает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Compression: AppCompressionConfig{
			Algorithm:    "pdfcpu",
			AutoStart:    true,
			ImageQuality: DefaultImageQuality,
		},
		Limits: LimitsConfig{
			MaxSingleSizeMB: 50,
			MaxBulkSizeMB:   100,
			MaxBulkFiles:    20,
		},
		Session: SessionConfig{
			UserTier:    string(TierFree),
			SettingsKey: "pdfcompress.settings",
		},
		Storage: StorageConfig{
			Enabled:      true,
			DatabasePath: "pdfcompress.db",
			SaveResults:  false,
		},
		UI: UIConfig{
			DownloadURLTTL:          10 * time.Minute,
			SettingsDebounce:        300 * time.Millisecond,
			DownloadDirectory:       "./compressed",
			SuccessTTL:              4 * time.Second,
			InfoTTL:                 5 * time.Second,
			WarningTTL:              8 * time.Second,
			MaxVisibleNotifications: 5,
		},
		Output: OutputConfig{
			LogLevel:     "info",
			LogToFile:    true,
			LogFileName:  "pdfcompress.log",
			LogMaxSizeMB: 10,
		},
	}
}
