package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfcompress/internal/infrastructure/logging"
)

func TestLevelFilter(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    []string
		notWant []string
	}{
		{"debug", "debug", []string{"[DEBUG]", "[INFO]", "[ERROR]"}, nil},
		{"warning", "warning", []string{"[WARNING]", "[ERROR]"}, []string{"[DEBUG]", "[INFO]", "[SUCCESS]"}},
		{"unknown falls back to info", "verbose", []string{"[INFO]", "[SUCCESS]"}, []string{"[DEBUG]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logging.NewWriterLogger(&buf, tt.level)
			l.Debug("d")
			l.Info("i %d", 1)
			l.Success("s")
			l.Warning("w")
			l.Error("e")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Expected %s in output:\n%s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("Did not expect %s in output:\n%s", nw, out)
				}
			}
		})
	}
}

func TestNewFileLoggerRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, bytes.Repeat([]byte("x"), 2<<20), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l, err := logging.NewFileLogger(path, "info", 1, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	l.Info("fresh")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("Expected rotated file, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if len(data) > 1024 || !strings.Contains(string(data), "fresh") {
		t.Errorf("Expected a fresh log, got %d bytes", len(data))
	}
}

func TestNewFileLoggerDisabled(t *testing.T) {
	l, err := logging.NewFileLogger("unused.log", "info", 1, false)
	if l != nil || err != nil {
		t.Errorf("Expected nil logger, got %v %v", l, err)
	}
}
