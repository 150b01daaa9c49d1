package analysis_test

import (
	"context"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/analysis"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		size         int64
		pages        int
		wantImage    bool
		wantText     bool
		wantStrategy entities.OptimizationStrategy
	}{
		{"scanned document", 10 << 20, 10, true, false, entities.StrategyImageOptimized},
		{"plain text", 100 * 1024, 10, false, true, entities.StrategyTextOptimized},
		{"mixed", 1 << 20, 10, false, false, ""},
		{"unknown pages", 1 << 20, 0, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.Classify(tt.size, tt.pages)
			if got.ImageHeavy != tt.wantImage || got.TextHeavy != tt.wantText {
				t.Errorf("Expected image=%v text=%v, got image=%v text=%v", tt.wantImage, tt.wantText, got.ImageHeavy, got.TextHeavy)
			}
			var strategy entities.OptimizationStrategy
			if got.RecommendedSettings != nil {
				strategy = got.RecommendedSettings.OptimizationStrategy
			}
			if strategy != tt.wantStrategy {
				t.Errorf("Expected strategy %q, got %q", tt.wantStrategy, strategy)
			}
			if got.PageCountEstimate != tt.pages {
				t.Errorf("Expected %d pages, got %d", tt.pages, got.PageCountEstimate)
			}
		})
	}
}

func TestDescribeRejectsGarbage(t *testing.T) {
	a := analysis.NewPDFCPUAnalyser(nil)

	if _, err := a.Describe(context.Background(), entities.NewFileHandle("1", "e.pdf", entities.MimePDF, nil)); err != entities.ErrEmptyFile {
		t.Errorf("Expected ErrEmptyFile, got %v", err)
	}
	if _, err := a.Describe(context.Background(), entities.NewFileHandle("2", "x.pdf", entities.MimePDF, []byte("not a pdf"))); err == nil {
		t.Error("Expected parse error, got nil")
	}
}
