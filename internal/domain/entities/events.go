package entities

// Topic имя события шины
type Topic string

// События жизненного цикла задания
const (
	EventJobCreated              Topic = "job-created"
	EventFilesValidated          Topic = "files-validated"
	EventFilesAnalyzed           Topic = "files-analyzed"
	EventFileCompressionStart    Topic = "file-compression-start"
	EventFileCompressionComplete Topic = "file-compression-complete"
	EventFileCompressionError    Topic = "file-compression-error"
	EventJobProgress             Topic = "job-progress"
	EventJobCompleted            Topic = "job-completed"
	EventJobFailed               Topic = "job-failed"
	EventProUpgradeRequired      Topic = "pro-upgrade-required"
	EventConversionCompleted     Topic = "conversion-completed"
	EventConversionFailed        Topic = "conversion-failed"
)

// Намерения пользовательского интерфейса
const (
	EventServiceStartRequest      Topic = "serviceStartRequest"
	EventFileUploaded             Topic = "fileUploaded"
	EventFileRemoved              Topic = "fileRemoved"
	EventFilesCleared             Topic = "filesCleared"
	EventSettingsChanged          Topic = "settings-changed"
	EventModeChanged              Topic = "mode-changed"
	EventRetryRequested           Topic = "retry-requested"
	EventNewFileRequested         Topic = "new-file-requested"
	EventCancelRequested          Topic = "cancel-requested"
	EventDownloadRequested        Topic = "download-requested"
	EventDownloadAllRequested     Topic = "download-all-requested"
	EventFileListRequested        Topic = "file-list-requested"
	EventFileDownloadRequested    Topic = "file-download-requested"
	EventFileDeleteRequested      Topic = "file-delete-requested"
	EventCloudConnectRequested    Topic = "cloud-connect-requested"
	EventCloudDisconnectRequested Topic = "cloud-disconnect-requested"
	EventCloudUploadRequested     Topic = "cloud-upload-requested"
	EventConversionRequested      Topic = "conversion-requested"
	EventNotificationAction       Topic = "notification-action"
)

// JobCreatedPayload данные события job-created
type JobCreatedPayload struct {
	JobID            string
	Files            []FileInfo
	SettingsSnapshot CompressionSettings
}

// FilesValidatedPayload данные события files-validated
type FilesValidatedPayload struct {
	JobID             string
	ValidationResults []FileValidation
}

// FilesAnalyzedPayload данные события files-analyzed
type FilesAnalyzedPayload struct {
	JobID           string
	AnalysisResults []FileAnalysis
}

// FileCompressionStartPayload данные события file-compression-start
type FileCompressionStartPayload struct {
	JobID      string
	FileName   string
	FileIndex  int
	TotalFiles int
}

// FileResult размеры результата сжатия
type FileResult struct {
	OriginalSize   int64
	CompressedSize int64
}

// FileCompressionCompletePayload данные события file-compression-complete
type FileCompressionCompletePayload struct {
	JobID            string
	FileName         string
	FileIndex        int
	TotalFiles       int
	Result           FileResult
	ReductionPercent float64
}

// FileCompressionErrorPayload данные события file-compression-error
type FileCompressionErrorPayload struct {
	JobID      string
	FileName   string
	FileIndex  int
	TotalFiles int
	Error      error
}

// JobProgressPayload данные события job-progress
type JobProgressPayload struct {
	JobID    string
	Progress int
	Stage    JobStatus
}

// JobCompletedPayload данные события job-completed
type JobCompletedPayload struct {
	JobID string
	Job   *Job
}

// JobFailedPayload данные события job-failed
type JobFailedPayload struct {
	JobID     string
	Job       *Job
	Error     error
	Kind      ErrorKind
	Retriable bool
}

// ProUpgradePayload данные события pro-upgrade-required
type ProUpgradePayload struct {
	Feature string
	Reason  string
}

// ServiceStartPayload намерение запустить сервис
type ServiceStartPayload struct {
	ServiceType string
	Options     *CompressionSettings
	FileIDs     []string
}

// FileUploadedPayload новые файлы в выборке загрузчика
type FileUploadedPayload struct {
	Handles []*FileHandle
}

// FileRemovedPayload удаление файла из выборки
type FileRemovedPayload struct {
	FileID string
}

// SettingsChangedPayload новые значения настроек
type SettingsChangedPayload struct {
	Settings CompressionSettings
}

// ModeChangedPayload новый режим обработки
type ModeChangedPayload struct {
	Mode ProcessingMode
}

// CancelRequestedPayload запрос отмены задания
type CancelRequestedPayload struct {
	JobID string
}

// DownloadRequestedPayload запрос скачивания результата
type DownloadRequestedPayload struct {
	URL      string
	FileName string
}

// DownloadAllRequestedPayload запрос скачивания архива результатов
type DownloadAllRequestedPayload struct {
	JobID string
}

// FileListRequestedPayload запрос списка файлов
type FileListRequestedPayload struct {
	Source string
	Folder string
}

// FileRequestPayload запрос операции над сохраненным файлом
type FileRequestPayload struct {
	Source string
	ID     string
}

// CloudConnectPayload запрос подключения облачного провайдера
type CloudConnectPayload struct {
	ProviderID string
}

// CloudUploadPayload запрос загрузки результата в облако
type CloudUploadPayload struct {
	ProviderID string
	URL        string
}

// ConversionRequestedPayload запрос конвертации изображений в PDF
type ConversionRequestedPayload struct {
	Images       []*FileHandle
	ImageQuality int
}

// ConversionCompletedPayload результат конвертации
type ConversionCompletedPayload struct {
	FileName string
	Size     int64
}

// ConversionFailedPayload ошибка конвертации
type ConversionFailedPayload struct {
	Error error
}

// NotificationActionPayload действие из уведомления
type NotificationActionPayload struct {
	NotificationID string
	Action         string
}

// ServiceCompression тип сервиса сжатия в serviceStartRequest
const ServiceCompression = "compression"

// Источники сохраненных файлов
const (
	SourceLocal = "local"
	SourceCloud = "cloud"
)
