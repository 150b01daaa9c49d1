package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/config"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.NewRepository().Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Limits.MaxSingleSizeMB != 50 || cfg.UI.DownloadURLTTL != 10*time.Minute {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "session:\n  user_tier: pro\nlimits:\n  max_bulk_files: 5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.NewRepository().Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Session.UserTier != "pro" {
		t.Errorf("Expected tier pro, got %s", cfg.Session.UserTier)
	}
	if cfg.Limits.MaxBulkFiles != 5 || cfg.Limits.MaxSingleSizeMB != 50 {
		t.Errorf("Expected merged limits, got %+v", cfg.Limits)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("compression:\n  algorithm: zip\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := config.NewRepository().Load(path); !errors.Is(err, entities.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	repo := config.NewRepository()

	cfg := entities.DefaultConfig()
	cfg.Cloud.S3.Bucket = "results"
	cfg.UI.SettingsDebounce = time.Second
	if err := repo.Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Cloud.S3.Bucket != "results" || loaded.UI.SettingsDebounce != time.Second {
		t.Errorf("Unexpected config %+v", loaded)
	}
}
