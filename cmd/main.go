package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/config"
	"pdfcompress/internal/infrastructure/logging"
	"pdfcompress/internal/interface/controllers"
	"pdfcompress/internal/presentation/tui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	inputDir := flag.String("dir", "", "сжать PDF файлы директории без интерфейса")
	outputDir := flag.String("out", "", "директория для сжатых файлов (по умолчанию <dir>/compressed)")
	level := flag.String("level", "", "уровень сжатия: low, medium, high, maximum")
	quality := flag.Int("quality", 0, "качество изображений 10-100")
	strategy := flag.String("strategy", "", "стратегия: balanced, image_optimized, text_optimized, batch_optimized")
	target := flag.String("target", "", "целевой размер: auto, 0.25, 0.5, 0.75, 0.9")
	flag.Parse()

	// Загрузка конфигурации
	configRepo := config.NewRepository()
	appConfig, err := configRepo.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация базового логгера (в файл)
	fileLogger, err := logging.NewFileLogger(
		appConfig.Output.LogFileName,
		appConfig.Output.LogLevel,
		appConfig.Output.LogMaxSizeMB,
		appConfig.Output.LogToFile,
	)
	if err != nil {
		log.Printf("Предупреждение: не удалось инициализировать логгер: %v", err)
	}
	if fileLogger != nil {
		defer fileLogger.Close()
	}

	// Режим без интерфейса
	if *inputDir != "" {
		var logger repositories.Logger
		if fileLogger != nil {
			logger = fileLogger
		}
		processor, err := NewApplicationProcessor(appConfig, logger)
		if err != nil {
			log.Fatalf("Ошибка инициализации: %v", err)
		}
		defer processor.Shutdown()

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			processor.Shutdown()
		}()

		cli := controllers.NewCLIController(processor.directory, os.Stdout)
		opts := controllers.CLIOptions{
			InputDir:  *inputDir,
			OutputDir: *outputDir,
			Level:     *level,
			Quality:   *quality,
			Strategy:  *strategy,
			Target:    *target,
		}
		if err := cli.HandleDirectory(processor.ctx, opts, processor.state.GetSettings()); err != nil {
			processor.Shutdown()
			log.Fatalf("❌ %v", err)
		}
		return
	}

	// Инициализация TUI
	tuiManager := tui.NewManager(appConfig)

	// Оборачиваем логгер адаптером, чтобы видеть логи в TUI
	var logger repositories.Logger
	if fileLogger != nil {
		logger = tui.NewUILogger(fileLogger, tuiManager)
	} else {
		logger = tui.NewUILogger(nil, tuiManager)
	}

	processor, err := NewApplicationProcessor(appConfig, logger)
	if err != nil {
		log.Fatalf("Ошибка инициализации: %v", err)
	}
	defer processor.Shutdown()

	processor.Start()
	tuiManager.Initialize(processor.bus, processor.integration, processor.fileRepo, processor.cloud.Providers(), logger)

	// Запуск TUI
	if err := tuiManager.Run(); err != nil {
		log.Fatalf("Ошибка запуска TUI: %v", err)
	}

	// Cleanup при выходе
	tuiManager.Cleanup()
}
