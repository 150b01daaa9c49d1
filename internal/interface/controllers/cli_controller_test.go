package controllers_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/eventbus"
	infraRepos "pdfcompress/internal/infrastructure/repositories"
	"pdfcompress/internal/interface/controllers"
	usecases "pdfcompress/internal/usecase"
)

func TestCLIOptions_Settings(t *testing.T) {
	base := entities.DefaultCompressionSettings()

	tests := []struct {
		name string
		opts controllers.CLIOptions
		want entities.CompressionSettings
	}{
		{"defaults kept", controllers.CLIOptions{}, base},
		{
			"flags applied",
			controllers.CLIOptions{Level: "high", Quality: 60, Strategy: "text_optimized", Target: "0.5"},
			entities.CompressionSettings{
				CompressionLevel:     entities.LevelHigh,
				ImageQuality:         60,
				TargetSize:           entities.Target50,
				OptimizationStrategy: entities.StrategyTextOptimized,
			},
		},
		{
			"invalid values normalized",
			controllers.CLIOptions{Level: "extreme", Quality: 5},
			entities.CompressionSettings{
				CompressionLevel:     entities.LevelMedium,
				ImageQuality:         entities.MinImageQuality,
				TargetSize:           entities.TargetAuto,
				OptimizationStrategy: entities.StrategyBalanced,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Settings(base); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestCLIController_HandleDirectory(t *testing.T) {
	in := t.TempDir()
	for name, content := range map[string]string{
		"a.pdf": "%PDF-1.4 first document with some padding",
		"b.pdf": "%PDF-1.4 second document",
	} {
		if err := os.WriteFile(filepath.Join(in, name), []byte(content), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	bus := eventbus.New(nil)
	state := usecases.NewAppState(bus, nil)
	compressor := &scriptedCompressor{fail: map[string]bool{"b.pdf": true}}
	coordinator := usecases.NewCoordinator(pdfValidator{}, nil, compressor, bus, state, nil)
	uc := usecases.NewCompressDirectoryUseCase(coordinator, infraRepos.NewFileSystemRepository(), nil)

	var out bytes.Buffer
	cli := controllers.NewCLIController(uc, &out)
	if err := cli.HandleDirectory(context.Background(), controllers.CLIOptions{InputDir: in, Level: "high"}, entities.DefaultCompressionSettings()); err != nil {
		t.Fatalf("HandleDirectory failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(in, "compressed", "compressed_a.pdf")); err != nil {
		t.Errorf("Expected default output directory, got %v", err)
	}
	report := out.String()
	for _, want := range []string{"✅ a.pdf", "❌ b.pdf", "Успешно: 1, ошибок: 1", "Записано файлов: 1"} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, report)
		}
	}
}

func TestCLIController_EmptyDirectory(t *testing.T) {
	bus := eventbus.New(nil)
	coordinator := usecases.NewCoordinator(pdfValidator{}, nil, &scriptedCompressor{}, bus, usecases.NewAppState(bus, nil), nil)
	uc := usecases.NewCompressDirectoryUseCase(coordinator, infraRepos.NewFileSystemRepository(), nil)

	var out bytes.Buffer
	err := controllers.NewCLIController(uc, &out).HandleDirectory(context.Background(), controllers.CLIOptions{InputDir: t.TempDir()}, entities.DefaultCompressionSettings())
	if !entities.IsKind(err, entities.KindInvalidInput) {
		t.Errorf("Expected InvalidInput, got %v", err)
	}
}
