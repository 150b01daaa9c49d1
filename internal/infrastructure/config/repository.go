package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pdfcompress/internal/domain/entities"
)

// Repository реализация репозитория конфигурации
type Repository struct{}

// NewRepository создает новый репозиторий конфигурации
func NewRepository() *Repository {
	return &Repository{}
}

// Load загружает конфигурацию из файла. Отсутствующие в файле поля
// сохраняют значения по умолчанию.
func (r *Repository) Load(configPath string) (*entities.Config, error) {
	config := entities.DefaultConfig()

	// Если файл не существует, используем конфигурацию по умолчанию
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация %s: %w", configPath, err)
	}

	return config, nil
}

// Save сохраняет конфигурацию в файл
func (r *Repository) Save(configPath string, config *entities.Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
