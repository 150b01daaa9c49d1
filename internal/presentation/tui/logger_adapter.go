package tui

import (
	"fmt"
	"strings"

	"pdfcompress/internal/domain/repositories"
)

// UILogger дублирует записи файлового логгера в журнал экрана сжатия.
// Отладочные записи попадают на экран только при уровне debug.
type UILogger struct {
	fileLogger repositories.Logger
	tuiManager *Manager
	showDebug  bool
}

// NewUILogger создает новый UI логгер
func NewUILogger(fileLogger repositories.Logger, tuiManager *Manager) *UILogger {
	l := &UILogger{
		fileLogger: fileLogger,
		tuiManager: tuiManager,
	}
	if tuiManager != nil && tuiManager.cfg != nil {
		l.showDebug = strings.EqualFold(tuiManager.cfg.Output.LogLevel, "debug")
	}
	return l
}

func (l *UILogger) Debug(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Debug(format, args...)
	}
	if l.showDebug {
		l.show("debug", format, args)
	}
}

func (l *UILogger) Info(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Info(format, args...)
	}
	l.show("info", format, args)
}

func (l *UILogger) Warning(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Warning(format, args...)
	}
	l.show("warning", format, args)
}

func (l *UILogger) Error(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Error(format, args...)
	}
	l.show("error", format, args)
}

func (l *UILogger) Success(format string, args ...interface{}) {
	if l.fileLogger != nil {
		l.fileLogger.Success(format, args...)
	}
	l.show("success", format, args)
}

// show отправляет запись в журнал экрана
func (l *UILogger) show(level, format string, args []interface{}) {
	if l.tuiManager != nil {
		l.tuiManager.AddLog(level, fmt.Sprintf(format, args...))
	}
}

// Close ничего не закрывает: файловым логгером владеет вызывающий код
func (l *UILogger) Close() error {
	return nil
}
