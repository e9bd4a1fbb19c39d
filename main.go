// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/config"
	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/ETL/pipeline"
	"github.com/LilVoxy/spod_rost/ETL/utils"
	"github.com/LilVoxy/spod_rost/routes"
	"github.com/LilVoxy/spod_rost/websocket"
	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML-файлу конфигурации")
	addr := flag.String("addr", "", "адрес сервера отчётов (по умолчанию из конфигурации)")
	flag.Parse()

	if err := serve(*configPath, *addr); err != nil {
		log.Printf("Ошибка сервера отчётов: %v", err)
		var configErr *models.ConfigError
		if errors.As(err, &configErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func serve(configPath, addr string) error {
	fmt.Println("Запуск сервера отчётов...")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger, err := utils.NewETLLogger(cfg.LogDir(), "server", utils.TimestampSuffix(time.Now()), cfg.EnableDetailedLogging)
	if err != nil {
		return err
	}
	defer logger.Close()

	// Подключение к журналу запусков
	journal, err := pipeline.OpenJournal(cfg)
	if err != nil {
		return fmt.Errorf("ошибка подключения к журналу запусков: %w", err)
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Лента прогресса получает записи журнала и итоги запусков
	wsManager := websocket.NewManager()
	go wsManager.Run(ctx)

	runner := pipeline.NewRunner(cfg, logger, journal.Repository,
		pipeline.WithLogHooks(wsManager.LogHook),
		pipeline.WithRunObserver(wsManager.RunFinished),
	)

	// Создаем маршрутизатор
	router := mux.NewRouter()
	routes.SetupRoutes(router, runner, journal.Repository, wsManager)

	// Настраиваем сервер; расчёт выполняется внутри запроса, поэтому WriteTimeout не задан
	server := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер отчётов запущен на %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ожидаем сигнал завершения или ошибку сервера
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}

	logger.Info("Сервер отчётов остановлен")
	return nil
}
