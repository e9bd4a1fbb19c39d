package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/extractors"
	"github.com/LilVoxy/spod_rost/ETL/load"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/transform"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

// ErrJournalDisabled возвращается при запросе истории без журнала запусков
var ErrJournalDisabled = errors.New("журнал запусков отключен")

// Option настраивает Runner
type Option func(*Runner)

// WithLogHooks передаёт обработчики, которые получают каждую запись журнала расчёта
func WithLogHooks(hooks ...func(zapcore.Entry) error) Option {
	return func(r *Runner) {
		r.hooks = append(r.hooks, hooks...)
	}
}

// WithRunObserver задаёт функцию, вызываемую по завершении каждого запуска
func WithRunObserver(observer func(models.RunLog)) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// Runner выполняет расчёт целиком: Extract, Transform, Load и запись в журнал.
// Запуски выполняются строго по одному.
type Runner struct {
	cfg      config.Config
	logger   *utils.ETLLogger
	journal  models.RunLogRepository
	hooks    []func(zapcore.Entry) error
	observer func(models.RunLog)
	mu       sync.Mutex
}

// NewRunner создает новый экземпляр Runner. journal может быть nil, если журнал отключен.
func NewRunner(cfg config.Config, logger *utils.ETLLogger, journal models.RunLogRepository, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		logger:  logger,
		journal: journal,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute выполняет один полный расчёт и возвращает запись о запуске.
// При ошибке запись тоже возвращается, если запуск успел начаться.
func (r *Runner) Execute() (*models.RunLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startTime := time.Now()
	run := &models.RunLog{
		ID:        uuid.NewString(),
		StartTime: startTime,
		Status:    models.RunStatusInProgress,
	}
	suffix := utils.TimestampSuffix(startTime)

	logger, err := utils.NewETLLogger(r.cfg.LogDir(), r.cfg.Export.LogTopic, suffix, r.cfg.EnableDetailedLogging, r.hooks...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании журнала расчёта: %w", err)
	}
	defer logger.Close()

	logger.LogRunStart(r.cfg.Export.FilePrefix)
	logger.Info("Идентификатор запуска: %s", run.ID)

	// Создаем запись в журнале запусков
	if r.journal != nil {
		if err := r.journal.CreateLogEntry(run.ID, startTime); err != nil {
			logger.Error("Ошибка при создании записи в журнале запусков: %v", err)
			return nil, fmt.Errorf("ошибка при создании записи в журнале запусков: %w", err)
		}
	}

	// 1. Фаза чтения исходных файлов (Extract)
	extractedData, err := extractors.NewExtractor(r.cfg, logger).Extract()
	if err != nil {
		return r.fail(logger, run, fmt.Errorf("ошибка в фазе Extract: %w", err))
	}

	// 2. Фаза расчёта (Transform)
	transformedData, err := transform.NewTransformer(r.cfg, logger).Transform(extractedData)
	if err != nil {
		return r.fail(logger, run, fmt.Errorf("ошибка в фазе Transform: %w", err))
	}

	// 3. Фаза записи результатов (Load)
	result, err := load.NewLoadManager(r.cfg, logger).Load(transformedData, suffix)
	if err != nil {
		return r.fail(logger, run, fmt.Errorf("ошибка в фазе Load: %w", err))
	}

	stats := models.RunStats{
		CurrentRows:  len(extractedData.Current),
		PreviousRows: len(extractedData.Previous),
		DroppedRows:  extractedData.DroppedCurrent + extractedData.DroppedPrevious,
		SpodRows:     len(transformedData.Spod),
		ReportPath:   result.ReportPath,
		ExportPath:   result.ExportPath,
	}
	r.succeed(logger, run, stats, result.SpodArchive)
	logger.LogRunComplete(startTime, stats.CurrentRows, stats.PreviousRows, stats.SpodRows)
	return run, nil
}

// succeed фиксирует успешное завершение запуска
func (r *Runner) succeed(logger *utils.ETLLogger, run *models.RunLog, stats models.RunStats, archive []byte) {
	run.EndTime = time.Now()
	run.Status = models.RunStatusSuccess
	run.CurrentRows = stats.CurrentRows
	run.PreviousRows = stats.PreviousRows
	run.DroppedRows = stats.DroppedRows
	run.SpodRows = stats.SpodRows
	run.ReportPath = stats.ReportPath
	run.ExportPath = stats.ExportPath
	run.ExecutionTimeSeconds = run.EndTime.Sub(run.StartTime).Seconds()

	if r.journal != nil {
		if err := r.journal.UpdateLogEntrySuccess(run.ID, run.EndTime, stats, archive); err != nil {
			logger.Error("Ошибка при обновлении записи в журнале запусков: %v", err)
		}
	}
	r.notify(run)
}

// fail фиксирует неудачное завершение запуска и возвращает исходную ошибку
func (r *Runner) fail(logger *utils.ETLLogger, run *models.RunLog, cause error) (*models.RunLog, error) {
	logger.Error("%v", cause)

	run.EndTime = time.Now()
	run.Status = models.RunStatusFailed
	run.ErrorMessage = cause.Error()
	run.ExecutionTimeSeconds = run.EndTime.Sub(run.StartTime).Seconds()

	if r.journal != nil {
		if err := r.journal.UpdateLogEntryFailure(run.ID, run.EndTime, run.ErrorMessage); err != nil {
			logger.Error("Ошибка при обновлении записи в журнале запусков: %v", err)
		}
	}
	r.notify(run)
	return run, cause
}

func (r *Runner) notify(run *models.RunLog) {
	if r.observer != nil {
		r.observer(*run)
	}
}

// History возвращает запуски за последние days дней
func (r *Runner) History(days int) ([]models.RunLog, error) {
	if r.journal == nil {
		return nil, ErrJournalDisabled
	}
	return r.journal.GetRunStats(days)
}

// StartScheduler запускает планировщик для регулярного выполнения расчёта и блокируется до отмены ctx
func (r *Runner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика с интервалом %v", r.cfg.RunInterval)

	_, err := scheduler.Every(r.cfg.RunInterval).Do(func() {
		r.logger.Info("Запланированный запуск расчёта")
		if _, err := r.Execute(); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного расчёта: %v", err)
		}
	})
	if err != nil {
		r.logger.Error("Ошибка при настройке планировщика: %v", err)
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик остановлен")
	return nil
}
