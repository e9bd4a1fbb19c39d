package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ETLLogger представляет логгер расчёта с двумя потоками:
// INFO (этапы, количество строк, длительность; дублируется в консоль) и DEBUG (детали операций)
type ETLLogger struct {
	sugar     *zap.SugaredLogger
	closers   []io.Closer
	isVerbose bool
	InfoPath  string
	DebugPath string
}

// NewETLLogger создает логгер с файлами INFO_<topic><suffix>.log и DEBUG_<topic><suffix>.log в logDir.
// hooks вызываются для каждой записи, попавшей в журнал.
func NewETLLogger(logDir, topic, suffix string, verbose bool, hooks ...func(zapcore.Entry) error) (*ETLLogger, error) {
	if err := EnsureDirectories(logDir); err != nil {
		return nil, err
	}

	infoPath := filepath.Join(logDir, fmt.Sprintf("INFO_%s%s.log", topic, suffix))
	debugPath := filepath.Join(logDir, fmt.Sprintf("DEBUG_%s%s.log", topic, suffix))

	infoFile := &lumberjack.Logger{Filename: infoPath, MaxSize: 100, MaxBackups: 5}
	debugFile := &lumberjack.Logger{Filename: debugPath, MaxSize: 200, MaxBackups: 5}

	encoder := zapcore.NewConsoleEncoder(encoderConfig())

	// INFO и выше пишем в файл и в консоль
	infoCore := zapcore.NewCore(
		encoder,
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(infoFile), zapcore.Lock(os.Stdout)),
		zap.LevelEnablerFunc(func(level zapcore.Level) bool { return level >= zapcore.InfoLevel }),
	)
	cores := []zapcore.Core{infoCore}
	closers := []io.Closer{infoFile}

	if verbose {
		debugCore := zapcore.NewCore(
			encoder.Clone(),
			zapcore.AddSync(debugFile),
			zap.LevelEnablerFunc(func(level zapcore.Level) bool { return level == zapcore.DebugLevel }),
		)
		cores = append(cores, debugCore)
		closers = append(closers, debugFile)
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.Hooks(hooks...))
	return &ETLLogger{
		sugar:     logger.Sugar(),
		closers:   closers,
		isVerbose: verbose,
		InfoPath:  infoPath,
		DebugPath: debugPath,
	}, nil
}

// NewETLLoggerWithCore создает логгер поверх готового ядра zap (используется в тестах)
func NewETLLoggerWithCore(core zapcore.Core, verbose bool) *ETLLogger {
	return &ETLLogger{
		sugar:     zap.New(core).Sugar(),
		isVerbose: verbose,
	}
}

// NewNopLogger создает логгер, который ничего не пишет
func NewNopLogger() *ETLLogger {
	return &ETLLogger{sugar: zap.NewNop().Sugar()}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "component",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " - ",
	}
}

// Named возвращает логгер, помечающий записи именем компонента
func (l *ETLLogger) Named(component string) *ETLLogger {
	return &ETLLogger{
		sugar:     l.sugar.Named(component),
		closers:   nil,
		isVerbose: l.isVerbose,
		InfoPath:  l.InfoPath,
		DebugPath: l.DebugPath,
	}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.sugar.Debugf(format, v...)
}

// Close сбрасывает буферы и закрывает файлы журнала
func (l *ETLLogger) Close() error {
	_ = l.sugar.Sync()
	var firstErr error
	for _, closer := range l.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LogRunStart логирует начало расчёта
func (l *ETLLogger) LogRunStart(project string) {
	l.Info("Старт обработки проекта %s", project)
}

// LogRunComplete логирует завершение расчёта
func (l *ETLLogger) LogRunComplete(startTime time.Time, currentRows, previousRows, spodRows int) {
	l.Info("Обработка успешно завершена. Длительность: %v", time.Since(startTime))
	l.Info("Обработано: %d строк T-0, %d строк T-1, %d строк выгрузки СПОД", currentRows, previousRows, spodRows)
}

// LogExtractStart логирует начало фазы чтения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Загрузка исходных файлов)")
}

// LogExtractComplete логирует завершение фазы чтения данных
func (l *ETLLogger) LogExtractComplete(currentRows, previousRows, dropped int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Загружено: %d строк T-0, %d строк T-1, отброшено %d строк", currentRows, previousRows, dropped)
}
