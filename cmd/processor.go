package main

import (
	"context"
	"database/sql"
	"sync"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/analysis"
	"pdfcompress/internal/infrastructure/cloud"
	"pdfcompress/internal/infrastructure/compressors"
	"pdfcompress/internal/infrastructure/converters"
	"pdfcompress/internal/infrastructure/eventbus"
	infraRepos "pdfcompress/internal/infrastructure/repositories"
	"pdfcompress/internal/infrastructure/storage"
	"pdfcompress/internal/infrastructure/validation"
	"pdfcompress/internal/interface/controllers"
	usecases "pdfcompress/internal/usecase"
)

// ApplicationProcessor собирает зависимости приложения и управляет их
// жизненным циклом
type ApplicationProcessor struct {
	config      *entities.Config
	logger      repositories.Logger
	bus         *eventbus.Bus
	state       *usecases.AppState
	coordinator *usecases.Coordinator
	integration *controllers.Integration
	cloud       *cloud.Manager
	fileRepo    *infraRepos.FileSystemRepository
	directory   *usecases.CompressDirectoryUseCase
	db          *sql.DB
	untrace     func()

	// Graceful shutdown
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once
}

// NewApplicationProcessor создает новый процессор приложения
func NewApplicationProcessor(config *entities.Config, logger repositories.Logger) (*ApplicationProcessor, error) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &ApplicationProcessor{
		config:   config,
		logger:   logger,
		fileRepo: infraRepos.NewFileSystemRepository(),
		ctx:      ctx,
		cancel:   cancel,
	}

	p.bus = eventbus.New(logger)
	p.state = usecases.NewAppState(p.bus, logger)
	p.state.Set(entities.KeyUserTier, entities.ParseUserTier(config.Session.UserTier))

	// Сохраненные настройки и хранилище файлов живут в одной базе
	var settingsRepo repositories.SettingsRepository
	var fileStorage repositories.Storage
	if config.Storage.Enabled {
		db, err := storage.Open(config.Storage.DatabasePath)
		if err != nil {
			cancel()
			return nil, err
		}
		p.db = db

		sqliteStorage, err := storage.NewSQLiteStorage(db, logger)
		if err != nil {
			p.Shutdown()
			return nil, err
		}
		fileStorage = sqliteStorage

		settings, err := infraRepos.NewSettingsRepository(db, config.Session.SettingsKey, logger)
		if err != nil {
			p.Shutdown()
			return nil, err
		}
		settingsRepo = settings
		p.restoreSettings(settings)
	}

	validator := validation.NewPDFValidator(config.Limits, p.state.Mode)
	analyser := analysis.NewPDFCPUAnalyser(logger)

	// Пустой ключ берется из UNIDOC_LICENSE_API_KEY
	uniPDF := compressors.NewUniPDFCompressor(config.Compression.UniPDFLicenseKey, logger)
	if !uniPDF.Licensed() && logger != nil {
		logger.Debug("Лицензия UniPDF не задана, используется pdfcpu")
	}
	compressor := compressors.NewSelector(compressors.NewPDFCPUCompressor(logger), uniPDF, config.Compression.Algorithm)

	p.coordinator = usecases.NewCoordinator(validator, analyser, compressor, p.bus, p.state, logger)
	p.directory = usecases.NewCompressDirectoryUseCase(p.coordinator, p.fileRepo, logger)

	p.cloud = cloud.NewManagerFromConfig(config.Cloud, func(authenticated bool) {
		p.state.Set(entities.KeyIsAuthenticated, authenticated)
	}, logger)

	converter := converters.NewImageToPDFConverter(compressors.NewImageCompressor(), logger)

	p.integration = controllers.NewIntegration(controllers.IntegrationDeps{
		Bus:         p.bus,
		State:       p.state,
		Coordinator: p.coordinator,
		Downloads:   controllers.NewDownloadRegistry(config.UI.DownloadURLTTL, logger),
		Files:       p.fileRepo,
		Storage:     fileStorage,
		Cloud:       p.cloud,
		Settings:    settingsRepo,
		Converter:   usecases.NewConvertImagesUseCase(converter, p.bus, logger),
		Config:      config,
		Logger:      logger,
	})
	p.integration.SetRunner(p.run)

	return p, nil
}

// restoreSettings применяет сохраненные настройки к состоянию
func (p *ApplicationProcessor) restoreSettings(repo repositories.SettingsRepository) {
	saved, err := repo.LoadSettings()
	if err != nil {
		if p.logger != nil {
			p.logger.Warning("Не удалось загрузить сохраненные настройки: %v", err)
		}
		return
	}
	// Платный флаг от прежнего тарифа не должен отменять остальные настройки
	p.state.Update(saved.ForTier(p.state.Tier()).SettingsUpdate())
}

// run выполняет задачу слоя интеграции в отдельной горутине с учетом
// завершения приложения
func (p *ApplicationProcessor) run(task func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task()
	}()
}

// Start подключает слой интеграции к шине событий и дублирует события в
// отладочный журнал
func (p *ApplicationProcessor) Start() {
	if p.logger != nil {
		p.untrace = p.bus.SubscribeAll(func(topic entities.Topic, _ interface{}) {
			p.logger.Debug("Событие %s", topic)
		})
	}
	p.integration.Start(p.ctx)
}

// Shutdown корректно завершает работу процессора (идемпотентный)
func (p *ApplicationProcessor) Shutdown() {
	p.shutdown.Do(p.close)
}

func (p *ApplicationProcessor) close() {
	if p.coordinator != nil {
		if job := p.coordinator.CurrentJob(); job != nil && !job.Status.IsTerminal() {
			if err := p.coordinator.CancelJob(job.ID); err != nil && p.logger != nil {
				p.logger.Warning("Ошибка отмены задания %s: %v", job.ID, err)
			}
		}
	}
	p.cancel()
	p.wg.Wait()

	if p.integration != nil {
		p.integration.Stop()
	}
	if p.untrace != nil {
		p.untrace()
	}
	if p.cloud != nil {
		if err := p.cloud.Disconnect(); err != nil && p.logger != nil {
			p.logger.Warning("Ошибка отключения облака: %v", err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil && p.logger != nil {
			p.logger.Warning("Ошибка закрытия базы данных: %v", err)
		}
	}
}
