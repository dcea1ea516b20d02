package core

import (
	"fmt"

	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig is the "logging" config key.
type LoggingConfig struct {
	Level       string   `yaml:"level"`
	Development bool     `yaml:"development"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

// LoggerModule provides the logger dependencies.
var LoggerModule = fx.Options(
	fx.Provide(NewLevel),
	fx.Provide(NewSugaredLogger),
	fx.Provide(NewLogger),
)

// NewLogger returns the desugared form of the application logger.
func NewLogger(sugar *zap.SugaredLogger) *zap.Logger {
	return sugar.Desugar()
}

// NewLevel returns the configured log level in a form that can be changed while running.
func NewLevel(provider config.Provider) (zap.AtomicLevel, error) {
	var loggingConfig LoggingConfig
	if err := provider.Get("logging").Populate(&loggingConfig); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("getting config field %q: %w", "logging", err)
	}

	level, err := zapcore.ParseLevel(loggingConfig.Level)
	if err != nil {
		return zap.AtomicLevel{}, err
	}

	return zap.NewAtomicLevelAt(level), nil
}

// NewSugaredLogger creates a new zap.SugaredLogger based on the configuration.
func NewSugaredLogger(provider config.Provider, level zap.AtomicLevel) (*zap.SugaredLogger, error) {
	var loggingConfig LoggingConfig
	if err := provider.Get("logging").Populate(&loggingConfig); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", "logging", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if loggingConfig.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	var encoder zapcore.Encoder
	switch loggingConfig.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	outputPaths := loggingConfig.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	sink, _, err := zap.Open(outputPaths...)
	if err != nil {
		return nil, fmt.Errorf("opening log outputs: %w", err)
	}

	core := zapcore.NewCore(encoder, sink, level)

	var logger *zap.Logger
	if loggingConfig.Development {
		logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		logger = zap.New(core)
	}

	return logger.Sugar(), nil
}
