package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config содержит настройки для логгера.
type Config struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`     // debug, info, warn, error
	Encoding   string `env:"LOG_ENCODING" env-default:"json"`  // json или console
	OutputPath string `env:"LOG_OUTPUT" env-default:"stdout"` // stdout, stderr или путь к файлу
	// Ротация файла; для stdout/stderr не используется.
	MaxSizeMB  int  `env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int  `env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int  `env:"LOG_MAX_AGE_DAYS" env-default:"14"`
	Compress   bool `env:"LOG_COMPRESS" env-default:"true"`
}

// New создает zap.Logger по конфигурации.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	logLevel := strings.ToLower(cfg.Level)
	if logLevel == "" {
		logLevel = "info"
	}
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Encoding) == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, writerFor(cfg), level)
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

func writerFor(cfg Config) zapcore.WriteSyncer {
	switch strings.ToLower(cfg.OutputPath) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}
