package controllers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
)

// BuildBundle упаковывает результаты в ZIP в порядке индексов. Совпадающие
// имена получают префикс с номером файла.
func BuildBundle(downloads []Download) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	used := make(map[string]bool, len(downloads))
	for _, d := range downloads {
		name := filepath.Base(d.FileName)
		if used[name] {
			name = fmt.Sprintf("%02d_%s", d.Index+1, name)
		}
		used[name] = true

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: d.CreatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания записи %s: %w", name, err)
		}
		if _, err := w.Write(d.Data); err != nil {
			return nil, fmt.Errorf("ошибка записи %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка завершения архива: %w", err)
	}
	return buf.Bytes(), nil
}
