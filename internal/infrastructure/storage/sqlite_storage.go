package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// SourceLocal источник записей локального хранилища
const SourceLocal = entities.SourceLocal

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	size       INTEGER NOT NULL,
	mime_type  TEXT NOT NULL,
	data       BLOB NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL
)`

// Open открывает базу данных SQLite. Пустой путь дает базу в памяти.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Одно соединение: база в памяти существует только внутри него
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteStorage хранилище файлов в таблице files
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	logger repositories.Logger
}

// NewSQLiteStorage создает хранилище и таблицу при необходимости
func NewSQLiteStorage(db *sql.DB, logger repositories.Logger) (*SQLiteStorage, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ошибка создания таблицы files: %w", err)
	}
	return &SQLiteStorage{db: db, now: time.Now, logger: logger}, nil
}

// Save сохраняет файл и возвращает его идентификатор
func (s *SQLiteStorage) Save(ctx context.Context, handle *entities.FileHandle, metadata map[string]string) (string, error) {
	if handle == nil {
		return "", entities.ErrNilHandle
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO files (id, name, size, mime_type, data, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, handle.Name, int64(len(handle.Data)), handle.MimeType, handle.Data, string(meta), s.now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения файла %s: %w", handle.Name, err)
	}

	if s.logger != nil {
		s.logger.Debug("Файл %s сохранен в хранилище (%s)", handle.Name, id)
	}
	return id, nil
}

// List возвращает записи без содержимого, новые первыми
func (s *SQLiteStorage) List(ctx context.Context) ([]entities.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, size, mime_type, metadata, created_at
FROM files
ORDER BY created_at DESC, id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entities.FileRecord{}
	for rows.Next() {
		var rec entities.FileRecord
		var meta string
		var created int64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Size, &rec.MimeType, &meta, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
			rec.Metadata = nil
		}
		rec.Source = SourceLocal
		rec.CreatedAt = time.Unix(0, created)
		out = append(out, rec)
	}

	return out, rows.Err()
}

// Fetch возвращает содержимое файла
func (s *SQLiteStorage) Fetch(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM files WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete удаляет файл
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n != 1 {
		return fmt.Errorf("%w: %s", entities.ErrFileNotFound, id)
	}
	return nil
}
