package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajkula/GoArrival/config"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// ZapAdapter implements outbound.Logger with zap. Arguments are key/value pairs,
// the same convention slog uses.
type ZapAdapter struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	level  zap.AtomicLevel
	config *config.Config
	close  func()
}

func NewZapAdapter(cfg *config.Config) (*ZapAdapter, error) {
	level := zap.NewAtomicLevelAt(parseZapLevel(cfg.General.LogLevel))

	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg), sink, level)

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if cfg.General.Development {
		opts = append(opts, zap.Development())
	}

	logger := zap.New(core, opts...)
	return &ZapAdapter{
		logger: logger,
		sugar:  logger.Sugar(),
		level:  level,
		config: cfg,
		close:  closeSink,
	}, nil
}

// NewFromZap wraps an existing zap logger, mostly for tests
func NewFromZap(logger *zap.Logger, cfg *config.Config) *ZapAdapter {
	level := zap.NewAtomicLevelAt(parseZapLevel(cfg.General.LogLevel))
	return &ZapAdapter{
		logger: logger,
		sugar:  logger.Sugar(),
		level:  level,
		config: cfg,
		close:  func() {},
	}
}

var _ outbound.Logger = (*ZapAdapter)(nil)

func newEncoder(cfg *config.Config) zapcore.Encoder {
	if strings.ToLower(cfg.Logging.Format) == "console" {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		if cfg.General.Development && cfg.Logging.Output != "file" {
			encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(encCfg)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

func openSink(cfg *config.Config) (zapcore.WriteSyncer, func(), error) {
	switch strings.ToLower(cfg.Logging.Output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), func() {}, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), func() {}, nil
	case "file":
		sink, closeSink, err := zap.Open(cfg.Logging.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.Logging.FilePath, err)
		}
		return sink, closeSink, nil
	default:
		return nil, nil, fmt.Errorf("invalid log output: %s", cfg.Logging.Output)
	}
}

// converts string level to zap level
func parseZapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// updates both config and zap level dynamically
func (z *ZapAdapter) UpdateLevel(logLvl string) {
	normalizedLevel := strings.ToLower(logLvl)

	z.config.General.LogLevel = normalizedLevel
	z.level.SetLevel(parseZapLevel(normalizedLevel))

	z.Info("Logger level updated dynamically", "new_level", normalizedLevel)
}

func (z *ZapAdapter) Error(msg string, args ...any) {
	if !z.level.Enabled(zapcore.ErrorLevel) {
		return
	}
	z.sugar.Errorw(msg, args...)
}

func (z *ZapAdapter) Warn(msg string, args ...any) {
	if !z.level.Enabled(zapcore.WarnLevel) {
		return
	}
	z.sugar.Warnw(msg, args...)
}

func (z *ZapAdapter) Info(msg string, args ...any) {
	if !z.level.Enabled(zapcore.InfoLevel) {
		return
	}
	z.sugar.Infow(msg, args...)
}

func (z *ZapAdapter) Debug(msg string, args ...any) {
	if !z.level.Enabled(zapcore.DebugLevel) {
		return
	}
	z.sugar.Debugw(msg, args...)
}

// Shutdown flushes buffered entries and closes a file sink
func (z *ZapAdapter) Shutdown() {
	_ = z.logger.Sync()
	z.close()
}
