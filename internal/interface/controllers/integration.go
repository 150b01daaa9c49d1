package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
	"pdfcompress/internal/infrastructure/eventbus"
	usecases "pdfcompress/internal/usecase"
)

// EventBus шина, через которую компоненты и координатор обмениваются событиями
type EventBus interface {
	repositories.EventPublisher
	Subscribe(topic entities.Topic, handler eventbus.Handler) func()
}

// JobCoordinator координатор заданий сжатия
type JobCoordinator interface {
	ProcessFiles(ctx context.Context, handles []*entities.FileHandle, override *entities.CompressionSettings) (*entities.Job, error)
	CancelJob(jobID string) error
	RetryJob(ctx context.Context, jobID string) (*entities.Job, error)
	IsRetriable(jobID string) bool
	CurrentJob() *entities.Job
	Reset() error
}

// ImageConversion сценарий конвертации изображений в PDF
type ImageConversion interface {
	Convert(ctx context.Context, images []*entities.FileHandle, quality int) (*entities.FileHandle, error)
}

// Runner запускает долгую операцию. По умолчанию в отдельной горутине.
type Runner func(task func())

func goRunner(task func()) { go task() }

// IntegrationDeps зависимости слоя интеграции. Bus, State и Coordinator
// обязательны, остальные подключаются по возможности.
type IntegrationDeps struct {
	Bus         EventBus
	State       *usecases.AppState
	Coordinator JobCoordinator
	Downloads   *DownloadRegistry
	Files       repositories.FileRepository
	Storage     repositories.Storage
	Cloud       repositories.CloudProvider
	Settings    repositories.SettingsRepository
	Converter   ImageConversion
	Config      *entities.Config
	Logger      repositories.Logger
}

// Integration связывает компоненты интерфейса с координатором: переводит
// намерения компонентов в вызовы сценариев, а события жизненного цикла
// задания в обновления компонентов.
type Integration struct {
	bus         EventBus
	state       *usecases.AppState
	coordinator JobCoordinator
	downloads   *DownloadRegistry
	files       repositories.FileRepository
	storage     repositories.Storage
	cloud       repositories.CloudProvider
	settings    repositories.SettingsRepository
	converter   ImageConversion
	config      *entities.Config
	logger      repositories.Logger
	run         Runner

	mu          sync.Mutex
	ctx         context.Context
	components  map[string]Component
	order       []string
	selection   []*entities.FileHandle
	listed      map[string]entities.FileRecord
	folders     map[string]string
	unsubscribe []func()
}

// NewIntegration создает слой интеграции
func NewIntegration(deps IntegrationDeps) *Integration {
	cfg := deps.Config
	if cfg == nil {
		cfg = entities.DefaultConfig()
	}
	downloads := deps.Downloads
	if downloads == nil {
		downloads = NewDownloadRegistry(cfg.UI.DownloadURLTTL, deps.Logger)
	}
	return &Integration{
		bus:         deps.Bus,
		state:       deps.State,
		coordinator: deps.Coordinator,
		downloads:   downloads,
		files:       deps.Files,
		storage:     deps.Storage,
		cloud:       deps.Cloud,
		settings:    deps.Settings,
		converter:   deps.Converter,
		config:      cfg,
		logger:      deps.Logger,
		run:         goRunner,
		components:  make(map[string]Component),
		listed:      make(map[string]entities.FileRecord),
		folders:     make(map[string]string),
	}
}

// SetRunner подменяет запуск долгих операций
func (i *Integration) SetRunner(run Runner) {
	i.mu.Lock()
	i.run = run
	i.mu.Unlock()
}

// Downloads реестр адресов скачивания
func (i *Integration) Downloads() *DownloadRegistry {
	return i.downloads
}

// Start подписывается на события шины и состояния
func (i *Integration) Start(ctx context.Context) {
	i.mu.Lock()
	if len(i.unsubscribe) > 0 {
		i.mu.Unlock()
		return
	}
	i.ctx = ctx
	i.mu.Unlock()

	handlers := map[entities.Topic]eventbus.Handler{
		// намерения
		entities.EventFileUploaded:             i.onFileUploaded,
		entities.EventFileRemoved:              i.onFileRemoved,
		entities.EventFilesCleared:             i.onFilesCleared,
		entities.EventServiceStartRequest:      i.onServiceStart,
		entities.EventSettingsChanged:          i.onSettingsChanged,
		entities.EventModeChanged:              i.onModeChanged,
		entities.EventRetryRequested:           func(interface{}) { i.Retry() },
		entities.EventNewFileRequested:         func(interface{}) { i.Reset() },
		entities.EventCancelRequested:          i.onCancelRequested,
		entities.EventDownloadRequested:        i.onDownloadRequested,
		entities.EventDownloadAllRequested:     i.onDownloadAllRequested,
		entities.EventFileListRequested:        i.onFileListRequested,
		entities.EventFileDownloadRequested:    i.onFileDownloadRequested,
		entities.EventFileDeleteRequested:      i.onFileDeleteRequested,
		entities.EventCloudConnectRequested:    i.onCloudConnect,
		entities.EventCloudDisconnectRequested: i.onCloudDisconnect,
		entities.EventCloudUploadRequested:     i.onCloudUpload,
		entities.EventConversionRequested:      i.onConversionRequested,
		entities.EventNotificationAction:       i.onNotificationAction,
		// жизненный цикл задания
		entities.EventJobCreated:           i.onJobCreated,
		entities.EventJobProgress:          i.onJobProgress,
		entities.EventFileCompressionStart: i.onFileStart,
		entities.EventFileCompressionError: i.onFileError,
		entities.EventJobCompleted:         i.onJobCompleted,
		entities.EventJobFailed:            i.onJobFailed,
		entities.EventProUpgradeRequired:   i.onProUpgrade,
		entities.EventConversionCompleted:  i.onConversionCompleted,
		entities.EventConversionFailed:     i.onConversionFailed,
	}

	unsubscribe := make([]func(), 0, len(handlers)+1)
	for topic, handler := range handlers {
		unsubscribe = append(unsubscribe, i.bus.Subscribe(topic, handler))
	}
	unsubscribe = append(unsubscribe, i.state.Subscribe(entities.KeyUserTier, func(_ entities.StateKey, value, _ interface{}) {
		tier, ok := value.(entities.UserTier)
		if !ok {
			return
		}
		for _, v := range collect[SettingsView](i.snapshot()) {
			v.SetTier(tier)
		}
	}))

	i.mu.Lock()
	i.unsubscribe = unsubscribe
	i.mu.Unlock()
	i.logDebug("Слой интеграции подписан на %d событий", len(handlers))
}

// Stop отписывается от событий и освобождает адреса скачивания
func (i *Integration) Stop() {
	i.mu.Lock()
	unsubscribe := i.unsubscribe
	i.unsubscribe = nil
	i.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
	i.downloads.ReleaseAll()
}

// Register подключает компонент. Панели настроек сразу получают текущее
// состояние, индикатор выполнения подхватывает идущее задание.
func (i *Integration) Register(c Component) bool {
	if c == nil {
		return false
	}
	i.mu.Lock()
	if _, ok := i.components[c.ID()]; ok {
		i.mu.Unlock()
		return false
	}
	i.components[c.ID()] = c
	i.order = append(i.order, c.ID())
	i.mu.Unlock()

	if v, ok := c.(SettingsView); ok {
		v.SetSettings(i.state.GetSettings())
		v.SetMode(i.state.Mode())
		v.SetTier(i.state.Tier())
	}
	if v, ok := c.(ProgressView); ok {
		if job := i.coordinator.CurrentJob(); job != nil && !job.Status.IsTerminal() {
			v.Start(job.ID, len(job.Files))
			v.SetProgress(job.Progress, job.Status.String())
		}
	}

	i.logDebug("Компонент %s (%s) зарегистрирован", c.Role(), c.ID())
	return true
}

// Unregister отключает компонент
func (i *Integration) Unregister(c Component) bool {
	if c == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.components[c.ID()]; !ok {
		return false
	}
	delete(i.components, c.ID())
	for n, id := range i.order {
		if id == c.ID() {
			i.order = append(i.order[:n], i.order[n+1:]...)
			break
		}
	}
	return true
}

// Components возвращает зарегистрированные компоненты в порядке регистрации
func (i *Integration) Components() []Component {
	return i.snapshot()
}

// Selection возвращает текущую выборку файлов
func (i *Integration) Selection() []*entities.FileHandle {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]*entities.FileHandle(nil), i.selection...)
}

// Retry повторяет файлы текущего задания, завершившиеся ошибкой
func (i *Integration) Retry() {
	jobID := i.state.CurrentJobID()
	if jobID == "" {
		if job := i.coordinator.CurrentJob(); job != nil {
			jobID = job.ID
		}
	}
	ctx := i.context()
	i.runner()(func() {
		if _, err := i.coordinator.RetryJob(ctx, jobID); err != nil {
			i.reportError("Повтор невозможен", err)
		}
	})
}

// Reset возвращает интерфейс к выбору файлов: освобождает адреса
// скачивания, скрывает прогресс и результаты
func (i *Integration) Reset() {
	if err := i.coordinator.Reset(); err != nil {
		i.reportError("Нельзя начать заново", err)
		return
	}
	released := i.downloads.ReleaseAll()

	views := i.snapshot()
	for _, v := range collect[ProgressView](views) {
		v.Hide()
	}
	for _, v := range collect[ResultsView](views) {
		v.Hide()
	}
	for _, v := range collect[UploadView](views) {
		v.ShowUpload()
	}
	i.logDebug("Сброс интерфейса, освобождено ссылок: %d", released)
}

// --- намерения ---

func (i *Integration) onFileUploaded(payload interface{}) {
	p, ok := payload.(entities.FileUploadedPayload)
	if !ok || len(p.Handles) == 0 {
		return
	}

	i.mu.Lock()
	known := make(map[string]bool, len(i.selection))
	for _, h := range i.selection {
		known[h.ID] = true
	}
	for _, h := range p.Handles {
		if h != nil && !known[h.ID] {
			i.selection = append(i.selection, h)
			known[h.ID] = true
		}
	}
	i.mu.Unlock()
	i.publishSelection()

	if i.config.Compression.AutoStart {
		i.startJob(p.Handles, nil)
	}
}

func (i *Integration) onFileRemoved(payload interface{}) {
	p, ok := payload.(entities.FileRemovedPayload)
	if !ok {
		return
	}
	i.mu.Lock()
	for n, h := range i.selection {
		if h.ID == p.FileID {
			i.selection = append(i.selection[:n], i.selection[n+1:]...)
			break
		}
	}
	i.mu.Unlock()
	i.publishSelection()
}

func (i *Integration) onFilesCleared(interface{}) {
	i.mu.Lock()
	i.selection = nil
	i.mu.Unlock()
	i.publishSelection()
}

func (i *Integration) onServiceStart(payload interface{}) {
	p, ok := payload.(entities.ServiceStartPayload)
	if !ok {
		return
	}
	if p.ServiceType != "" && p.ServiceType != entities.ServiceCompression {
		i.reportError("Сервис не поддерживается", entities.NewKindError(entities.KindCapabilityUnavailable,
			fmt.Errorf("%w: %s", entities.ErrCapabilityUnavailable, p.ServiceType)))
		return
	}

	handles := i.selected(p.FileIDs)
	if len(handles) == 0 {
		i.reportError("Нечего сжимать", entities.NewKindError(entities.KindInvalidInput, entities.ErrNoFiles))
		return
	}
	i.startJob(handles, p.Options)
}

func (i *Integration) onSettingsChanged(payload interface{}) {
	p, ok := payload.(entities.SettingsChangedPayload)
	if !ok {
		return
	}
	if !i.state.Update(p.Settings.SettingsUpdate()) {
		i.pushSettings()
		return
	}
	if i.settings != nil {
		if err := i.settings.SaveSettings(i.state.GetSettings()); err != nil {
			i.logWarning("Не удалось сохранить настройки: %v", err)
		}
	}
}

func (i *Integration) onModeChanged(payload interface{}) {
	p, ok := payload.(entities.ModeChangedPayload)
	if !ok {
		return
	}
	if !i.state.Set(entities.KeyProcessingMode, p.Mode) {
		mode := i.state.Mode()
		for _, v := range collect[SettingsView](i.snapshot()) {
			v.SetMode(mode)
		}
	}
}

func (i *Integration) onCancelRequested(payload interface{}) {
	p, _ := payload.(entities.CancelRequestedPayload)
	jobID := p.JobID
	if jobID == "" {
		jobID = i.state.CurrentJobID()
	}
	if err := i.coordinator.CancelJob(jobID); err != nil {
		i.logWarning("Отмена задания %s: %v", jobID, err)
	}
}

func (i *Integration) onDownloadRequested(payload interface{}) {
	p, ok := payload.(entities.DownloadRequestedPayload)
	if !ok {
		return
	}
	d, ok := i.downloads.Resolve(p.URL)
	if !ok {
		i.notify(entities.NotifyWarning, "Ссылка недоступна", "Срок действия ссылки истек, сожмите файл заново")
		return
	}
	i.save(d.FileName, d.Data)
}

func (i *Integration) onDownloadAllRequested(payload interface{}) {
	p, ok := payload.(entities.DownloadAllRequestedPayload)
	if !ok {
		return
	}
	list := i.downloads.ForJob(p.JobID)
	if len(list) == 0 {
		i.notify(entities.NotifyWarning, "Нет файлов для скачивания", "")
		return
	}
	data, err := BuildBundle(list)
	if err != nil {
		i.reportError("Не удалось собрать архив", err)
		return
	}
	i.save(entities.CompressedName(p.JobID+".zip"), data)
}

func (i *Integration) onFileListRequested(payload interface{}) {
	p, ok := payload.(entities.FileListRequestedPayload)
	if !ok {
		return
	}
	ctx := i.context()
	i.runner()(func() { i.listFiles(ctx, p.Source, p.Folder) })
}

func (i *Integration) onFileDownloadRequested(payload interface{}) {
	p, ok := payload.(entities.FileRequestPayload)
	if !ok {
		return
	}
	ctx := i.context()
	i.runner()(func() {
		data, err := i.fetchFile(ctx, p.Source, p.ID)
		if err != nil {
			i.reportError("Не удалось загрузить файл", err)
			return
		}

		rec, ok := i.record(p.Source, p.ID)
		name := rec.Name
		if !ok || name == "" {
			name = p.ID
		}
		mime := rec.MimeType
		if mime == "" {
			mime, _, _ = strings.Cut(mimetype.Detect(data).String(), ";")
		}
		i.pushToUploader(entities.NewFileHandle("", name, mime, data))
	})
}

func (i *Integration) onFileDeleteRequested(payload interface{}) {
	p, ok := payload.(entities.FileRequestPayload)
	if !ok {
		return
	}
	ctx := i.context()
	i.runner()(func() {
		var err error
		switch {
		case p.Source == entities.SourceLocal && i.storage != nil:
			err = i.storage.Delete(ctx, p.ID)
		case p.Source != entities.SourceLocal && i.cloud != nil:
			err = i.cloud.DeleteFile(ctx, p.ID)
		default:
			err = unavailable(p.Source)
		}
		if err != nil {
			i.reportError("Не удалось удалить файл", err)
			return
		}

		i.mu.Lock()
		delete(i.listed, recordKey(p.Source, p.ID))
		folder := i.folders[p.Source]
		i.mu.Unlock()

		i.notify(entities.NotifySuccess, "Файл удален", "")
		i.listFiles(ctx, p.Source, folder)
	})
}

func (i *Integration) onCloudConnect(payload interface{}) {
	p, ok := payload.(entities.CloudConnectPayload)
	if !ok {
		return
	}
	if i.cloud == nil {
		i.reportError("Облако недоступно", unavailable(p.ProviderID))
		return
	}
	ctx := i.context()
	i.runner()(func() {
		if _, err := i.cloud.Authenticate(ctx, p.ProviderID); err != nil {
			i.reportError("Не удалось подключиться к "+p.ProviderID, err)
			return
		}
		i.notify(entities.NotifySuccess, "Облако подключено", p.ProviderID)
	})
}

func (i *Integration) onCloudDisconnect(interface{}) {
	if i.cloud == nil {
		return
	}
	if err := i.cloud.Disconnect(); err != nil {
		i.logWarning("Отключение облака: %v", err)
	}
	i.notify(entities.NotifyInfo, "Облако отключено", "")
}

func (i *Integration) onCloudUpload(payload interface{}) {
	p, ok := payload.(entities.CloudUploadPayload)
	if !ok {
		return
	}
	if i.cloud == nil {
		i.reportError("Облако недоступно", unavailable(p.ProviderID))
		return
	}
	d, ok := i.downloads.Resolve(p.URL)
	if !ok {
		i.notify(entities.NotifyWarning, "Ссылка недоступна", "Срок действия ссылки истек, сожмите файл заново")
		return
	}
	ctx := i.context()
	i.runner()(func() {
		handle := entities.NewFileHandle("", d.FileName, entities.MimePDF, d.Data)
		result, err := i.cloud.UploadFile(ctx, p.ProviderID, handle)
		if err != nil {
			i.reportError("Не удалось загрузить в облако", err)
			return
		}
		i.notify(entities.NotifySuccess, "Файл загружен в облако", result.ID)
	})
}

func (i *Integration) onConversionRequested(payload interface{}) {
	p, ok := payload.(entities.ConversionRequestedPayload)
	if !ok {
		return
	}
	if i.converter == nil {
		err := entities.NewKindError(entities.KindCapabilityUnavailable, entities.ErrCapabilityUnavailable)
		for _, v := range collect[ConverterView](i.snapshot()) {
			v.ConversionFailed(userMessage(err))
		}
		i.reportError("Конвертация недоступна", err)
		return
	}
	ctx := i.context()
	i.runner()(func() {
		handle, err := i.converter.Convert(ctx, p.Images, p.ImageQuality)
		if err != nil {
			return
		}
		i.pushToUploader(handle)
	})
}

func (i *Integration) onNotificationAction(payload interface{}) {
	p, ok := payload.(entities.NotificationActionPayload)
	if !ok {
		return
	}
	switch p.Action {
	case entities.ActionRetry:
		i.Retry()
	case entities.ActionUpgrade:
		i.notify(entities.NotifyInfo, "Тарифы pro и premium",
			"Пакетный режим и серверная обработка доступны в тарифах pro и premium")
	default:
		i.logDebug("Действие %s уведомления %s не обрабатывается", p.Action, p.NotificationID)
	}
}

// --- жизненный цикл задания ---

func (i *Integration) onJobCreated(payload interface{}) {
	p, ok := payload.(entities.JobCreatedPayload)
	if !ok {
		return
	}
	views := i.snapshot()
	for _, v := range collect[ResultsView](views) {
		v.Hide()
	}
	for _, v := range collect[UploadView](views) {
		v.HideUpload()
	}
	for _, v := range collect[ProgressView](views) {
		v.Start(p.JobID, len(p.Files))
	}
}

func (i *Integration) onJobProgress(payload interface{}) {
	p, ok := payload.(entities.JobProgressPayload)
	if !ok {
		return
	}
	for _, v := range collect[ProgressView](i.snapshot()) {
		v.SetProgress(p.Progress, p.Stage.String())
	}
}

func (i *Integration) onFileStart(payload interface{}) {
	p, ok := payload.(entities.FileCompressionStartPayload)
	if !ok {
		return
	}
	for _, v := range collect[ProgressView](i.snapshot()) {
		v.SetFile(p.FileIndex, p.TotalFiles, p.FileName)
	}
}

func (i *Integration) onFileError(payload interface{}) {
	p, ok := payload.(entities.FileCompressionErrorPayload)
	if !ok {
		return
	}
	i.notify(entities.NotifyError, "Ошибка сжатия файла",
		fmt.Sprintf("%s: %s", p.FileName, userMessage(p.Error)), retryAction)
}

func (i *Integration) onJobCompleted(payload interface{}) {
	p, ok := payload.(entities.JobCompletedPayload)
	if !ok || p.Job == nil {
		return
	}
	urls := i.mintDownloads(p.Job)
	model := entities.NewResultsModel(p.Job, urls)

	views := i.snapshot()
	for _, v := range collect[ProgressView](views) {
		v.Finish(true)
	}
	for _, v := range collect[ResultsView](views) {
		v.ShowResults(model)
	}

	s := model.Summary
	i.notify(entities.NotifySuccess, "Сжатие завершено", fmt.Sprintf("Файлов: %d из %d, сэкономлено %s (%.1f%%)",
		s.SuccessfulFiles, len(p.Job.Files), humanize.IBytes(uint64(max(s.SpaceSaved, 0))), s.SpaceSavedPercent))

	if i.config.Storage.SaveResults && i.storage != nil {
		job := p.Job
		ctx := i.context()
		i.runner()(func() { i.saveResults(ctx, job) })
	}
}

func (i *Integration) onJobFailed(payload interface{}) {
	p, ok := payload.(entities.JobFailedPayload)
	if !ok {
		return
	}
	views := i.snapshot()
	for _, v := range collect[ProgressView](views) {
		v.Finish(false)
	}

	if p.Kind == entities.KindCancelled {
		if p.Job != nil {
			model := entities.NewResultsModel(p.Job, i.mintDownloads(p.Job))
			for _, v := range collect[ResultsView](views) {
				v.ShowResults(model)
			}
		}
		i.notify(entities.NotifyInfo, "Задание отменено", "")
		return
	}

	msg := userMessage(p.Error)
	for _, v := range collect[ResultsView](views) {
		v.ShowError(msg, p.Retriable)
	}
	if p.Retriable {
		i.notify(entities.NotifyError, "Ошибка обработки", msg, retryAction)
	} else {
		i.notify(entities.NotifyError, "Ошибка обработки", msg)
	}
}

func (i *Integration) onProUpgrade(payload interface{}) {
	p, _ := payload.(entities.ProUpgradePayload)
	msg := entities.ErrUpgradeRequired.Error()
	if p.Feature != "" {
		msg = fmt.Sprintf("%s: %s", msg, p.Feature)
	}
	i.notify(entities.NotifyWarning, "Требуется тариф pro", msg, upgradeAction)
	i.pushSettings()
}

func (i *Integration) onConversionCompleted(payload interface{}) {
	p, ok := payload.(entities.ConversionCompletedPayload)
	if !ok {
		return
	}
	for _, v := range collect[ConverterView](i.snapshot()) {
		v.ConversionDone(p.FileName, p.Size)
	}
	i.notify(entities.NotifySuccess, "PDF создан", fmt.Sprintf("%s (%s)", p.FileName, humanize.IBytes(uint64(p.Size))))
}

func (i *Integration) onConversionFailed(payload interface{}) {
	p, ok := payload.(entities.ConversionFailedPayload)
	if !ok {
		return
	}
	msg := userMessage(p.Error)
	for _, v := range collect[ConverterView](i.snapshot()) {
		v.ConversionFailed(msg)
	}
	i.notify(entities.NotifyError, "Ошибка конвертации", msg)
}

// --- вспомогательные ---

var (
	retryAction   = entities.NotificationAction{ID: entities.ActionRetry, Label: "Повторить"}
	upgradeAction = entities.NotificationAction{ID: entities.ActionUpgrade, Label: "Подробнее"}
)

func (i *Integration) startJob(handles []*entities.FileHandle, override *entities.CompressionSettings) {
	ctx := i.context()
	i.runner()(func() {
		if _, err := i.coordinator.ProcessFiles(ctx, handles, override); err != nil {
			i.reportError("Не удалось запустить сжатие", err)
		}
	})
}

// selected возвращает файлы выборки по идентификаторам или всю выборку
func (i *Integration) selected(ids []string) []*entities.FileHandle {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(ids) == 0 {
		return append([]*entities.FileHandle(nil), i.selection...)
	}
	byID := make(map[string]*entities.FileHandle, len(i.selection))
	for _, h := range i.selection {
		byID[h.ID] = h
	}
	var out []*entities.FileHandle
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

func (i *Integration) publishSelection() {
	i.mu.Lock()
	files := make([]entities.FileInfo, len(i.selection))
	for n, h := range i.selection {
		files[n] = h.Info()
	}
	i.mu.Unlock()
	i.state.Set(entities.KeyFiles, files)
}

// pushSettings возвращает панелям настроек значения из состояния
func (i *Integration) pushSettings() {
	settings := i.state.GetSettings()
	mode := i.state.Mode()
	for _, v := range collect[SettingsView](i.snapshot()) {
		v.SetSettings(settings)
		v.SetMode(mode)
	}
}

// pushToUploader передает файл загрузчику текущего режима
func (i *Integration) pushToUploader(handle *entities.FileHandle) {
	views := collect[UploadView](i.snapshot())
	if len(views) == 0 {
		i.notify(entities.NotifyWarning, "Нет области загрузки", handle.Name)
		return
	}

	role := entities.RoleFileUploader
	if i.state.Mode() == entities.ModeBulk {
		role = entities.RoleBulkUploader
	}
	target := views[0]
	for _, v := range views {
		if v.Role() == role {
			target = v
			break
		}
	}

	for _, r := range target.AddFiles([]*entities.FileHandle{handle}) {
		i.notify(entities.NotifyWarning, "Файл не добавлен", fmt.Sprintf("%s: %s", r.Name, r.Reason))
	}
}

func (i *Integration) mintDownloads(job *entities.Job) map[int]string {
	urls := make(map[int]string)
	for _, entry := range job.Files {
		if entry.SubState != entities.FileSucceeded || entry.CompressedBlob == nil {
			continue
		}
		urls[entry.Index] = i.downloads.Mint(job.ID, entry.Index, entities.CompressedName(entry.Handle.Name), entry.CompressedBlob)
	}
	return urls
}

func (i *Integration) saveResults(ctx context.Context, job *entities.Job) {
	saved := 0
	for _, entry := range job.Files {
		if entry.SubState != entities.FileSucceeded {
			continue
		}
		handle := entities.NewFileHandle("", entities.CompressedName(entry.Handle.Name), entities.MimePDF, entry.CompressedBlob)
		_, err := i.storage.Save(ctx, handle, map[string]string{
			"jobId":          job.ID,
			"originalName":   entry.Handle.Name,
			"originalSize":   strconv.FormatInt(entry.OriginalSize, 10),
			"compressedSize": strconv.FormatInt(entry.CompressedSize, 10),
		})
		if err != nil {
			i.logWarning("Не удалось сохранить %s: %v", handle.Name, err)
			continue
		}
		saved++
	}
	i.logDebug("Сохранено результатов задания %s: %d", job.ID, saved)
}

func (i *Integration) save(name string, data []byte) {
	if i.files == nil {
		i.reportError("Сохранение недоступно", unavailable("filesystem"))
		return
	}
	path, err := i.files.WriteFile(i.config.UI.DownloadDirectory, name, data)
	if err != nil {
		i.reportError("Не удалось сохранить файл", err)
		return
	}
	i.notify(entities.NotifySuccess, "Файл сохранен", fmt.Sprintf("%s (%s)", path, humanize.IBytes(uint64(len(data)))))
}

func (i *Integration) listFiles(ctx context.Context, source, folder string) {
	records, err := i.fetchList(ctx, source, folder)
	views := collect[FileListView](i.snapshot())
	if err != nil {
		for _, v := range views {
			v.SetError(userMessage(err))
		}
		i.reportError("Не удалось получить список файлов", err)
		return
	}

	i.mu.Lock()
	i.folders[source] = folder
	for _, r := range records {
		i.listed[recordKey(source, r.ID)] = r
	}
	i.mu.Unlock()

	for _, v := range views {
		v.SetFiles(source, records)
	}
}

func (i *Integration) fetchList(ctx context.Context, source, folder string) ([]entities.FileRecord, error) {
	if source == entities.SourceLocal {
		if i.storage == nil {
			return nil, unavailable(source)
		}
		return i.storage.List(ctx)
	}
	if i.cloud == nil {
		return nil, unavailable(source)
	}
	records, err := i.cloud.ListFiles(ctx, folder)
	if err != nil || source == entities.SourceCloud || source == "" {
		return records, err
	}
	filtered := records[:0]
	for _, r := range records {
		if r.Source == source {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (i *Integration) fetchFile(ctx context.Context, source, id string) ([]byte, error) {
	if source == entities.SourceLocal {
		if i.storage == nil {
			return nil, unavailable(source)
		}
		return i.storage.Fetch(ctx, id)
	}
	if i.cloud == nil {
		return nil, unavailable(source)
	}
	return i.cloud.DownloadFile(ctx, id)
}

func (i *Integration) record(source, id string) (entities.FileRecord, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	r, ok := i.listed[recordKey(source, id)]
	return r, ok
}

func recordKey(source, id string) string {
	return source + "/" + id
}

func unavailable(name string) error {
	return entities.NewKindError(entities.KindCapabilityUnavailable,
		fmt.Errorf("%w: %s", entities.ErrCapabilityUnavailable, name))
}

// userMessage текст ошибки без категории
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var ke *entities.KindError
	if errors.As(err, &ke) && ke.Err != nil {
		return ke.Err.Error()
	}
	return err.Error()
}

// reportError показывает ошибку пользователю. Ошибки ввода, авторизации и
// недоступных возможностей показываются как предупреждения.
func (i *Integration) reportError(title string, err error) {
	i.logWarning("%s: %v", title, err)
	switch entities.KindOf(err) {
	case entities.KindInvalidInput, entities.KindAuthRequired, entities.KindCapabilityUnavailable:
		i.notify(entities.NotifyWarning, title, userMessage(err))
	default:
		i.notify(entities.NotifyError, title, userMessage(err))
	}
}

func (i *Integration) notify(variant entities.NotificationVariant, title, message string, actions ...entities.NotificationAction) {
	views := collect[NotificationView](i.snapshot())
	if len(views) == 0 {
		i.logDebug("[%s] %s %s", variant, title, message)
		return
	}
	for _, v := range views {
		v.Notify(entities.Notification{
			Variant: variant,
			Title:   title,
			Message: message,
			Actions: append([]entities.NotificationAction(nil), actions...),
		})
	}
}

func (i *Integration) snapshot() []Component {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Component, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.components[id])
	}
	return out
}

// collect выбирает компоненты, поддерживающие роль T
func collect[T any](components []Component) []T {
	var out []T
	for _, c := range components {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (i *Integration) context() context.Context {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ctx == nil {
		return context.Background()
	}
	return i.ctx
}

func (i *Integration) runner() Runner {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.run
}

func (i *Integration) logDebug(format string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Debug(format, args...)
	}
}

func (i *Integration) logWarning(format string, args ...interface{}) {
	if i.logger != nil {
		i.logger.Warning(format, args...)
	}
}
