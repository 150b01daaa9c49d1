package compressors_test

import (
	"context"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/compressors"
)

type namedCompressor struct {
	name     string
	reported []float64
}

func (n *namedCompressor) Compress(_ context.Context, h *entities.FileHandle, _ entities.CompressionSettings) (*entities.CompressionOutput, error) {
	return &entities.CompressionOutput{CompressedBlob: []byte(n.name), OriginalSize: h.Size, CompressedSize: int64(len(n.name))}, nil
}

type progressCompressor struct {
	namedCompressor
}

func (p *progressCompressor) CompressWithProgress(ctx context.Context, h *entities.FileHandle, s entities.CompressionSettings, report repositories.ProgressReporter) (*entities.CompressionOutput, error) {
	report(0.5)
	return p.Compress(ctx, h, s)
}

func TestSelectorPick(t *testing.T) {
	standard := &namedCompressor{name: "standard"}
	licensed := &namedCompressor{name: "licensed"}
	server := entities.DefaultCompressionSettings()
	server.UseServerProcessing = true

	tests := []struct {
		name      string
		licensed  repositories.Compressor
		algorithm string
		settings  entities.CompressionSettings
		want      string
	}{
		{"default engine", licensed, "pdfcpu", entities.DefaultCompressionSettings(), "standard"},
		{"server processing", licensed, "pdfcpu", server, "licensed"},
		{"preferred licensed", licensed, "unipdf", entities.DefaultCompressionSettings(), "licensed"},
		{"no licensed engine", nil, "unipdf", server, "standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := compressors.NewSelector(standard, tt.licensed, tt.algorithm)
			h := entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF-1.4 body"))
			out, err := sel.Compress(context.Background(), h, tt.settings)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if string(out.CompressedBlob) != tt.want {
				t.Errorf("Expected %s engine, got %s", tt.want, out.CompressedBlob)
			}
		})
	}
}

func TestSelectorForwardsProgress(t *testing.T) {
	engine := &progressCompressor{namedCompressor{name: "p"}}
	sel := compressors.NewSelector(engine, nil, "pdfcpu")

	var got []float64
	h := entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF-1.4"))
	if _, err := sel.CompressWithProgress(context.Background(), h, entities.DefaultCompressionSettings(), func(f float64) {
		got = append(got, f)
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 1 || got[0] != 0.5 {
		t.Errorf("Expected [0.5], got %v", got)
	}
}

func TestUniPDFCompressorRequiresLicense(t *testing.T) {
	t.Setenv("UNIDOC_LICENSE_API_KEY", "")
	c := compressors.NewUniPDFCompressor("", nil)
	if c.Licensed() {
		t.Fatal("Expected unlicensed compressor")
	}
	h := entities.NewFileHandle("1", "a.pdf", entities.MimePDF, []byte("%PDF-1.4"))
	if _, err := c.Compress(context.Background(), h, entities.DefaultCompressionSettings()); err != compressors.ErrUniPDFLicense {
		t.Errorf("Expected ErrUniPDFLicense, got %v", err)
	}
}

func TestSelectorSkipsUnlicensedEngine(t *testing.T) {
	t.Setenv("UNIDOC_LICENSE_API_KEY", "")
	standard := &namedCompressor{name: "standard"}
	unlicensed := compressors.NewUniPDFCompressor("", nil)

	server := entities.DefaultCompressionSettings()
	server.UseServerProcessing = true

	for _, algorithm := range []string{"pdfcpu", "unipdf"} {
		sel := compressors.NewSelector(standard, unlicensed, algorithm)
		if got := sel.Pick(server); got != repositories.Compressor(standard) {
			t.Errorf("%s: expected standard engine without a license, got %T", algorithm, got)
		}
	}

	licensed := compressors.NewUniPDFCompressor("key", nil)
	if got := compressors.NewSelector(standard, licensed, "pdfcpu").Pick(server); got != repositories.Compressor(licensed) {
		t.Errorf("Expected licensed engine with a key, got %T", got)
	}
}
