package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/pipeline"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/spf13/cobra"
)

// Коды завершения процесса
const (
	exitRunFailure    = 1
	exitConfigFailure = 2
)

// ETLRunner связывает конфигурацию, журнал запусков и Runner на время жизни команды
type ETLRunner struct {
	config  config.Config
	logger  *utils.ETLLogger
	journal *pipeline.Journal
	runner  *pipeline.Runner
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(configPath string) (*ETLRunner, error) {
	// Получаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Служебный журнал команды; журнал каждого расчёта создаёт Runner
	logger, err := utils.NewETLLogger(cfg.LogDir(), "runner", utils.TimestampSuffix(time.Now()), cfg.EnableDetailedLogging)
	if err != nil {
		return nil, err
	}
	logger.Info("Инициализация ETL Runner")

	journal, err := pipeline.OpenJournal(cfg)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("ошибка подключения к журналу запусков: %w", err)
	}

	return &ETLRunner{
		config:  cfg,
		logger:  logger,
		journal: journal,
		runner:  pipeline.NewRunner(cfg, logger, journal.Repository),
	}, nil
}

// Close закрывает журнал запусков и файлы логов
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	r.journal.Close()
	r.logger.Close()
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "spod-rost",
		Short:         "Расчёт прироста остатков по клиентам и выгрузка СПОД",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "путь к YAML-файлу конфигурации")

	root.AddCommand(
		newOnceCommand(&configPath),
		newScheduledCommand(&configPath),
		newHistoryCommand(&configPath),
	)
	return root
}

func newOnceCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Выполнить расчёт один раз",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := NewETLRunner(*configPath)
			if err != nil {
				return err
			}
			defer runner.Close()

			run, err := runner.runner.Execute()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Отчёт: %s\nВыгрузка СПОД: %s\n", run.ReportPath, run.ExportPath)
			return nil
		},
	}
}

func newScheduledCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "Выполнять расчёт по расписанию до получения сигнала завершения",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Контекст отменяется при получении сигнала завершения
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, err := NewETLRunner(*configPath)
			if err != nil {
				return err
			}
			defer runner.Close()

			return runner.runner.StartScheduler(ctx)
		},
	}
}

func newHistoryCommand(configPath *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Показать запуски за последние дни",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := NewETLRunner(*configPath)
			if err != nil {
				return err
			}
			defer runner.Close()

			runs, err := runner.runner.History(days)
			if err != nil {
				return err
			}
			printHistory(cmd, runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "количество дней истории")
	return cmd
}

func printHistory(cmd *cobra.Command, runs []models.RunLog) {
	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tСТАРТ\tСТАТУС\tT-0\tT-1\tСПОД\tСЕК\tОШИБКА")
	for _, run := range runs {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%d\t%d\t%.1f\t%s\n",
			run.ID,
			run.StartTime.Local().Format("2006-01-02 15:04:05"),
			run.Status,
			run.CurrentRows,
			run.PreviousRows,
			run.SpodRows,
			run.ExecutionTimeSeconds,
			run.ErrorMessage,
		)
	}
	writer.Flush()
}

// exitCode выбирает код завершения по типу ошибки
func exitCode(err error) int {
	var configErr *models.ConfigError
	if errors.As(err, &configErr) {
		return exitConfigFailure
	}
	return exitRunFailure
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(exitCode(err))
	}
}
