package converters_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/infrastructure/compressors"
	"pdfcompress/internal/infrastructure/converters"
)

func pngHandle(t *testing.T, name string) *entities.FileHandle {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < 32; i++ {
		img.Set(i, i, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return entities.NewFileHandle(name, name, "image/png", buf.Bytes())
}

func TestConvert(t *testing.T) {
	conv := converters.NewImageToPDFConverter(compressors.NewImageCompressor(), nil)

	out, err := conv.Convert(context.Background(), []*entities.FileHandle{pngHandle(t, "a.png"), pngHandle(t, "b.png")}, 60)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("Expected PDF header, got %q", out[:8])
	}
}

func TestConvertErrors(t *testing.T) {
	conv := converters.NewImageToPDFConverter(compressors.NewImageCompressor(), nil)
	text := entities.NewFileHandle("t", "notes.png", "image/png", []byte("plain text, not an image"))

	tests := []struct {
		name    string
		images  []*entities.FileHandle
		quality int
		want    error
	}{
		{"no images", nil, 50, entities.ErrNoImages},
		{"quality too low", []*entities.FileHandle{pngHandle(t, "a.png")}, 5, entities.ErrInvalidImageQuality},
		{"not an image", []*entities.FileHandle{text}, 50, entities.ErrInvalidFileFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conv.Convert(context.Background(), tt.images, tt.quality)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}
