package usecases

import (
	"context"
	"sync"
	"time"

	"pdfcompress/internal/domain/entities"
	"pdfcompress/internal/domain/repositories"
)

// Прогресс этапов до начала сжатия не превышает 5%
const (
	progressValidating = 1
	progressAnalyzing  = 3
	progressPreparing  = 5
)

// jobRun служебное состояние выполняемого задания
type jobRun struct {
	job          *entities.Job
	cancelled    bool
	lastProgress int
}

// Coordinator управляет жизненным циклом заданий сжатия
type Coordinator struct {
	mu         sync.Mutex
	validator  repositories.Validator
	analyser   repositories.Analyser
	compressor repositories.Compressor
	publisher  repositories.EventPublisher
	state      *AppState
	logger     repositories.Logger
	ids        *JobIDGenerator
	current    *jobRun
	now        func() time.Time
}

// NewCoordinator создает координатор заданий. Анализатор необязателен.
func NewCoordinator(
	validator repositories.Validator,
	analyser repositories.Analyser,
	compressor repositories.Compressor,
	publisher repositories.EventPublisher,
	state *AppState,
	logger repositories.Logger,
) *Coordinator {
	return &Coordinator{
		validator:  validator,
		analyser:   analyser,
		compressor: compressor,
		publisher:  publisher,
		state:      state,
		logger:     logger,
		ids:        NewJobIDGenerator(),
		now:        time.Now,
	}
}

// SetClock подменяет источник времени
func (c *Coordinator) SetClock(now func() time.Time) {
	c.now = now
}

// ProcessFiles создает задание и выполняет его до конечного статуса.
// Ошибка возвращается только если задание не было создано.
func (c *Coordinator) ProcessFiles(ctx context.Context, handles []*entities.FileHandle, override *entities.CompressionSettings) (*entities.Job, error) {
	if len(handles) == 0 {
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNoFiles)
	}
	for _, h := range handles {
		if h == nil {
			return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrNilHandle)
		}
	}
	if c.validator == nil || c.compressor == nil {
		return nil, entities.NewKindError(entities.KindCapabilityUnavailable, entities.ErrCapabilityUnavailable)
	}

	var settings entities.CompressionSettings
	switch {
	case override != nil:
		settings = override.Normalize()
	case c.state != nil:
		settings = c.state.GetSettings()
	default:
		settings = entities.DefaultCompressionSettings()
	}

	c.mu.Lock()
	if c.current != nil && !c.current.job.Status.IsTerminal() {
		c.mu.Unlock()
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrJobInProgress)
	}
	run := &jobRun{job: entities.NewJob(c.ids.Next(), handles, settings, c.now())}
	c.current = run
	jobID := run.job.ID
	c.mu.Unlock()

	c.logInfo("Задание %s создано: %d файл(ов)", jobID, len(handles))

	files := make([]entities.FileInfo, len(handles))
	for i, h := range handles {
		files[i] = h.Info()
	}
	c.publish(entities.EventJobCreated, entities.JobCreatedPayload{
		JobID:            jobID,
		Files:            files,
		SettingsSnapshot: settings,
	})
	if c.state != nil {
		c.state.Update(map[entities.StateKey]interface{}{
			entities.KeyProcessing:   true,
			entities.KeyCurrentJobID: jobID,
		})
	}

	c.run(ctx, run)

	c.mu.Lock()
	defer c.mu.Unlock()
	return run.job.Clone(), nil
}

// run выполняет этапы задания
func (c *Coordinator) run(ctx context.Context, run *jobRun) {
	if !c.validate(ctx, run) {
		return
	}
	if c.stopRequested(ctx, run) {
		c.cancelRun(run)
		return
	}
	c.analyze(ctx, run)
	if c.stopRequested(ctx, run) {
		c.cancelRun(run)
		return
	}
	c.prepare(run)
	if c.stopRequested(ctx, run) {
		c.cancelRun(run)
		return
	}
	if !c.process(ctx, run) {
		c.cancelRun(run)
		return
	}
	c.finalize(ctx, run)
}

// validate проверяет файлы. Возвращает false, если задание завершено.
func (c *Coordinator) validate(ctx context.Context, run *jobRun) bool {
	c.setStage(run, entities.JobValidating, progressValidating)

	results := make([]entities.FileValidation, len(run.job.Files))
	valid := 0
	for i, entry := range run.job.Files {
		c.mu.Lock()
		entry.SubState = entities.FileValidating
		c.mu.Unlock()

		result := c.validator.Check(entry.Handle)

		c.mu.Lock()
		entry.Validation = &result
		if result.IsValid {
			entry.SubState = entities.FilePending
			valid++
		} else {
			entry.Skip()
		}
		run.job.ValidFiles = valid
		c.mu.Unlock()

		results[i] = entities.FileValidation{FileName: entry.Handle.Name, Validation: result}
		if !result.IsValid {
			c.logWarning("Файл %s не прошел проверку: %v", entry.Handle.Name, result.Errors)
		}
	}

	c.publish(entities.EventFilesValidated, entities.FilesValidatedPayload{
		JobID:             run.job.ID,
		ValidationResults: results,
	})

	if valid == 0 {
		c.failRun(run, entities.NewKindError(entities.KindNoValidFiles, entities.ErrNoValidFiles))
		return false
	}
	return true
}

// analyze описывает документы. Ошибки анализатора сводятся к пустому описанию.
func (c *Coordinator) analyze(ctx context.Context, run *jobRun) {
	c.setStage(run, entities.JobAnalyzing, progressAnalyzing)

	var results []entities.FileAnalysis
	for _, entry := range run.job.Files {
		if entry.SubState == entities.FileSkipped {
			continue
		}
		c.mu.Lock()
		entry.SubState = entities.FileAnalyzing
		c.mu.Unlock()

		analysis := &entities.Analysis{}
		if c.analyser != nil {
			a, err := c.analyser.Describe(ctx, entry.Handle)
			if err != nil {
				c.logWarning("Анализ файла %s не удался: %v", entry.Handle.Name, err)
			} else if a != nil {
				analysis = a
			}
		}

		c.mu.Lock()
		entry.Analysis = analysis
		c.mu.Unlock()
		results = append(results, entities.FileAnalysis{FileName: entry.Handle.Name, Analysis: *analysis})
	}

	c.publish(entities.EventFilesAnalyzed, entities.FilesAnalyzedPayload{
		JobID:           run.job.ID,
		AnalysisResults: results,
	})
}

// prepare фиксирует итоговые настройки задания
func (c *Coordinator) prepare(run *jobRun) {
	c.setStage(run, entities.JobPreparing, progressPreparing)

	c.mu.Lock()
	var analyses []*entities.Analysis
	for _, entry := range run.job.Files {
		if entry.SubState != entities.FileSkipped {
			analyses = append(analyses, entry.Analysis)
		}
	}
	run.job.EffectiveSettings = MergeRecommendations(run.job.Settings, analyses)
	effective := run.job.EffectiveSettings
	c.mu.Unlock()

	c.logDebug("Задание %s: итоговые настройки %+v", run.job.ID, effective)
}

// process сжимает файлы строго по порядку. Возвращает false при отмене.
func (c *Coordinator) process(ctx context.Context, run *jobRun) bool {
	c.mu.Lock()
	_ = run.job.Transition(entities.JobProcessing)
	settings := run.job.EffectiveSettings
	total := run.job.ValidFiles
	c.mu.Unlock()

	position := 0
	for _, entry := range run.job.Files {
		if entry.SubState == entities.FileSkipped {
			continue
		}
		if c.stopRequested(ctx, run) {
			return false
		}

		started := c.now()
		c.mu.Lock()
		entry.SubState = entities.FileCompressing
		entry.StartedAt = &started
		c.mu.Unlock()

		c.publish(entities.EventFileCompressionStart, entities.FileCompressionStartPayload{
			JobID:      run.job.ID,
			FileName:   entry.Handle.Name,
			FileIndex:  entry.Index,
			TotalFiles: total,
		})

		out, err := c.compress(ctx, run, entry, settings)

		if c.stopRequested(ctx, run) {
			c.logInfo("Задание %s отменено, результат файла %s отброшен", run.job.ID, entry.Handle.Name)
			return false
		}

		if err == nil {
			err = checkOutput(out)
		}
		if err != nil {
			c.mu.Lock()
			entry.Fail(entities.NewKindError(entities.KindCompressionFailed, err), c.now())
			c.mu.Unlock()
			c.logError("Ошибка сжатия %s: %v", entry.Handle.Name, err)
			c.publish(entities.EventFileCompressionError, entities.FileCompressionErrorPayload{
				JobID:      run.job.ID,
				FileName:   entry.Handle.Name,
				FileIndex:  entry.Index,
				TotalFiles: total,
				Error:      entry.Err,
			})
		} else {
			if out.OriginalSize <= 0 {
				out.OriginalSize = entry.Handle.Size
			}
			if out.CompressedSize <= 0 {
				out.CompressedSize = int64(len(out.CompressedBlob))
			}
			c.mu.Lock()
			entry.Succeed(out, c.now())
			c.mu.Unlock()
			c.logSuccess("Файл %s сжат: %d -> %d байт", entry.Handle.Name, out.OriginalSize, out.CompressedSize)
			c.publish(entities.EventFileCompressionComplete, entities.FileCompressionCompletePayload{
				JobID:      run.job.ID,
				FileName:   entry.Handle.Name,
				FileIndex:  entry.Index,
				TotalFiles: total,
				Result: entities.FileResult{
					OriginalSize:   out.OriginalSize,
					CompressedSize: out.CompressedSize,
				},
				ReductionPercent: entities.ReductionPercent(out.OriginalSize, out.CompressedSize),
			})
		}

		position++
		// 100% публикуется только при завершении задания
		if position < total {
			c.reportProgress(run, 0)
		}
	}
	return true
}

// compress вызывает компрессор, передавая прогресс по файлу, если он поддерживается
func (c *Coordinator) compress(ctx context.Context, run *jobRun, entry *entities.FileEntry, settings entities.CompressionSettings) (*entities.CompressionOutput, error) {
	if pc, ok := c.compressor.(repositories.ProgressCompressor); ok {
		return pc.CompressWithProgress(ctx, entry.Handle, settings, func(fraction float64) {
			c.reportProgress(run, fraction)
		})
	}
	return c.compressor.Compress(ctx, entry.Handle, settings)
}

// reportProgress публикует прогресс, если он вырос и не достиг 100
func (c *Coordinator) reportProgress(run *jobRun, fraction float64) {
	c.mu.Lock()
	if run.cancelled || run.job.Status.IsTerminal() {
		c.mu.Unlock()
		return
	}
	p := run.job.ComputeProgress(fraction)
	if p >= 100 || p <= run.lastProgress {
		c.mu.Unlock()
		return
	}
	run.lastProgress = p
	run.job.Progress = p
	stage := run.job.Status
	c.mu.Unlock()

	c.publish(entities.EventJobProgress, entities.JobProgressPayload{JobID: run.job.ID, Progress: p, Stage: stage})
}

// finalize подводит итоги и завершает задание. Проверка отмены и переход в
// completed выполняются под одной блокировкой: принятая отмена не теряется.
func (c *Coordinator) finalize(ctx context.Context, run *jobRun) {
	c.mu.Lock()
	if run.cancelled || ctx.Err() != nil {
		run.cancelled = true
		c.mu.Unlock()
		c.cancelRun(run)
		return
	}
	_ = run.job.Transition(entities.JobFinalizing)
	summary := run.job.ComputeSummary()
	if summary.SuccessfulFiles == 0 {
		c.mu.Unlock()
		c.failRun(run, entities.NewKindError(entities.KindAllFilesFailed, entities.ErrAllFilesFailed))
		return
	}

	run.job.Summary = summary
	run.job.Finish(c.now())
	_ = run.job.Transition(entities.JobCompleted)
	run.job.Progress = 100
	run.lastProgress = 100
	snapshot := run.job.Clone()
	c.mu.Unlock()

	c.publish(entities.EventJobProgress, entities.JobProgressPayload{JobID: snapshot.ID, Progress: 100, Stage: entities.JobCompleted})
	c.publish(entities.EventJobCompleted, entities.JobCompletedPayload{JobID: snapshot.ID, Job: snapshot})
	c.logSuccess("Задание %s завершено: %d успешно, %d с ошибкой, сэкономлено %.1f%%",
		snapshot.ID, summary.SuccessfulFiles, summary.FailedFiles, summary.SpaceSavedPercent)
	c.markIdle()
}

// failRun переводит задание в статус failed
func (c *Coordinator) failRun(run *jobRun, err error) {
	c.mu.Lock()
	run.job.Summary = run.job.ComputeSummary()
	run.job.Err = err
	run.job.Finish(c.now())
	_ = run.job.Transition(entities.JobFailed)
	snapshot := run.job.Clone()
	retriable := snapshot.IsRetriable()
	c.mu.Unlock()

	c.logError("Задание %s завершилось ошибкой: %v", snapshot.ID, err)
	c.publish(entities.EventJobFailed, entities.JobFailedPayload{
		JobID:     snapshot.ID,
		Job:       snapshot,
		Error:     err,
		Kind:      entities.KindOf(err),
		Retriable: retriable,
	})
	c.markIdle()
}

// cancelRun переводит задание в статус cancelled. Необработанные файлы
// помечаются пропущенными.
func (c *Coordinator) cancelRun(run *jobRun) {
	err := entities.NewKindError(entities.KindCancelled, entities.ErrJobCancelled)

	c.mu.Lock()
	for _, entry := range run.job.Files {
		if !entry.SubState.IsFinished() && entry.SubState != entities.FileSkipped {
			entry.Skip()
		}
	}
	run.job.Summary = run.job.ComputeSummary()
	run.job.Err = err
	run.job.Finish(c.now())
	_ = run.job.Transition(entities.JobCancelled)
	snapshot := run.job.Clone()
	retriable := snapshot.IsRetriable()
	c.mu.Unlock()

	c.logInfo("Задание %s отменено", snapshot.ID)
	c.publish(entities.EventJobFailed, entities.JobFailedPayload{
		JobID:     snapshot.ID,
		Job:       snapshot,
		Error:     err,
		Kind:      entities.KindCancelled,
		Retriable: retriable,
	})
	c.markIdle()
}

// CancelJob помечает задание отмененным. Повторный вызов ничего не меняет.
func (c *Coordinator) CancelJob(jobID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.job.ID != jobID {
		return entities.ErrJobNotFound
	}
	if c.current.job.Status.IsTerminal() || c.current.cancelled {
		return nil
	}
	c.current.cancelled = true
	return nil
}

// RetryJob запускает новое задание для файлов с ошибкой сжатия,
// используя настройки исходного задания
func (c *Coordinator) RetryJob(ctx context.Context, jobID string) (*entities.Job, error) {
	c.mu.Lock()
	if c.current == nil || c.current.job.ID != jobID {
		c.mu.Unlock()
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrJobNotFound)
	}
	job := c.current.job
	if !job.Status.IsTerminal() {
		c.mu.Unlock()
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrJobInProgress)
	}
	handles := job.FailedHandles()
	settings := job.Settings
	c.mu.Unlock()

	if len(handles) == 0 {
		return nil, entities.NewKindError(entities.KindInvalidInput, entities.ErrJobNotRetriable)
	}

	c.logInfo("Повтор задания %s: %d файл(ов)", jobID, len(handles))
	return c.ProcessFiles(ctx, handles, &settings)
}

// IsRetriable проверяет, можно ли повторить задание
func (c *Coordinator) IsRetriable(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.job.ID == jobID && c.current.job.IsRetriable()
}

// GetJob возвращает копию задания
func (c *Coordinator) GetJob(jobID string) (*entities.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.job.ID != jobID {
		return nil, false
	}
	return c.current.job.Clone(), true
}

// CurrentJob возвращает копию последнего задания или nil
func (c *Coordinator) CurrentJob() *entities.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current.job.Clone()
}

// Reset освобождает завершенное задание
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	if c.current != nil && !c.current.job.Status.IsTerminal() {
		c.mu.Unlock()
		return entities.ErrJobInProgress
	}
	c.current = nil
	c.mu.Unlock()

	if c.state != nil {
		c.state.Update(map[entities.StateKey]interface{}{
			entities.KeyProcessing:   false,
			entities.KeyCurrentJobID: "",
		})
	}
	return nil
}

// MergeRecommendations объединяет рекомендации анализатора с настройками
// пользователя. Рекомендации применяются только при стратегии balanced и
// только если все описанные файлы рекомендуют одно и то же.
func MergeRecommendations(settings entities.CompressionSettings, analyses []*entities.Analysis) entities.CompressionSettings {
	if settings.OptimizationStrategy != entities.StrategyBalanced || len(analyses) == 0 {
		return settings
	}

	var recommended *entities.CompressionSettings
	for _, a := range analyses {
		if a == nil || a.RecommendedSettings == nil {
			return settings
		}
		r := a.RecommendedSettings.Normalize()
		if recommended == nil {
			recommended = &r
			continue
		}
		if *recommended != r {
			return settings
		}
	}

	merged := settings
	merged.CompressionLevel = settings.CompressionLevel.Stronger(recommended.CompressionLevel)
	merged.OptimizationStrategy = recommended.OptimizationStrategy
	if recommended.ImageQuality < merged.ImageQuality {
		merged.ImageQuality = recommended.ImageQuality
	}
	return merged.Normalize()
}

func checkOutput(out *entities.CompressionOutput) error {
	if out == nil || len(out.CompressedBlob) == 0 {
		return entities.ErrEmptyOutput
	}
	return nil
}

// setStage переводит задание на этап и публикует прогресс этапа
func (c *Coordinator) setStage(run *jobRun, status entities.JobStatus, progress int) {
	c.mu.Lock()
	if err := run.job.Transition(status); err != nil {
		c.mu.Unlock()
		c.logWarning("%v", err)
		return
	}
	if progress <= run.lastProgress {
		c.mu.Unlock()
		return
	}
	run.lastProgress = progress
	run.job.Progress = progress
	c.mu.Unlock()

	c.publish(entities.EventJobProgress, entities.JobProgressPayload{JobID: run.job.ID, Progress: progress, Stage: status})
}

// stopRequested проверяет флаг отмены и контекст
func (c *Coordinator) stopRequested(ctx context.Context, run *jobRun) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !run.cancelled && ctx.Err() != nil {
		run.cancelled = true
	}
	return run.cancelled
}

// markIdle снимает флаг обработки в состоянии приложения
func (c *Coordinator) markIdle() {
	if c.state != nil {
		c.state.Set(entities.KeyProcessing, false)
	}
}

func (c *Coordinator) publish(topic entities.Topic, payload interface{}) {
	if c.publisher != nil {
		c.publisher.Publish(topic, payload)
	}
}

func (c *Coordinator) logInfo(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(format, args...)
	}
}

func (c *Coordinator) logDebug(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}

func (c *Coordinator) logWarning(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warning(format, args...)
	}
}

func (c *Coordinator) logError(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Error(format, args...)
	}
}

func (c *Coordinator) logSuccess(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Success(format, args...)
	}
}
