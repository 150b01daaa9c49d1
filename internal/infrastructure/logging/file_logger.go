package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

var levels = map[string]int{
	"debug":   0,
	"info":    1,
	"warning": 2,
	"error":   3,
}

// FileLogger реализация логгера в файл
type FileLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   *log.Logger
	logLevel string
}

// NewFileLogger создает новый файловый логгер. Если файл больше maxSizeMB,
// он переименовывается в <filename>.1 и журнал начинается заново.
func NewFileLogger(filename, logLevel string, maxSizeMB int, logToFile bool) (*FileLogger, error) {
	if !logToFile {
		return nil, nil
	}

	if maxSizeMB > 0 {
		if info, err := os.Stat(filename); err == nil && info.Size() > int64(maxSizeMB)<<20 {
			if err := os.Rename(filename, filename+".1"); err != nil {
				return nil, fmt.Errorf("не удалось ротировать журнал: %w", err)
			}
		}
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	l := NewWriterLogger(file, logLevel)
	l.file = file
	return l, nil
}

// NewWriterLogger создает логгер поверх произвольного writer
func NewWriterLogger(w io.Writer, logLevel string) *FileLogger {
	return &FileLogger{
		logger:   log.New(w, "", log.LstdFlags),
		logLevel: strings.ToLower(logLevel),
	}
}

// Debug логирует отладочное сообщение
func (l *FileLogger) Debug(format string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.writeLog("DEBUG", format, args...)
	}
}

// Info логирует информационное сообщение
func (l *FileLogger) Info(format string, args ...interface{}) {
	if l.shouldLog("info") {
		l.writeLog("INFO", format, args...)
	}
}

// Warning логирует предупреждение
func (l *FileLogger) Warning(format string, args ...interface{}) {
	if l.shouldLog("warning") {
		l.writeLog("WARNING", format, args...)
	}
}

// Error логирует ошибку
func (l *FileLogger) Error(format string, args ...interface{}) {
	if l.shouldLog("error") {
		l.writeLog("ERROR", format, args...)
	}
}

// Success логирует успешное выполнение
func (l *FileLogger) Success(format string, args ...interface{}) {
	if l.shouldLog("info") {
		l.writeLog("SUCCESS", format, args...)
	}
}

// Close закрывает логгер
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		l.logger = nil
		return err
	}
	return nil
}

// writeLog записывает лог
func (l *FileLogger) writeLog(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.logger == nil {
		return
	}

	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s", level, message)
}

// shouldLog проверяет, нужно ли логировать на данном уровне
func (l *FileLogger) shouldLog(level string) bool {
	currentLevel, ok := levels[l.logLevel]
	if !ok {
		currentLevel = 1 // default to info
	}

	messageLevel, ok := levels[level]
	if !ok {
		return false
	}

	return messageLevel >= currentLevel
}
