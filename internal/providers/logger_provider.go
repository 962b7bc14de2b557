package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"widt/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum string

const (
	TypeApp       TypeEnum = "app"
	TypeBot       TypeEnum = "bot"
	TypeScheduler TypeEnum = "scheduler"
	TypeStore     TypeEnum = "store"
	TypeEmail     TypeEnum = "email"
	TypeHttp      TypeEnum = "http"
)

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	logger zerolog.Logger
	file   *os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if err = os.MkdirAll(conf.Logger.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(conf.Logger.Dir, "widt.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	writer := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stdout},
		file,
	)

	return &LogProvider{
		logger: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
		file:   file,
	}, nil
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.logger.Error().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.logger.Warn().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.logger.Info().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.logger.Debug().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.logger.Fatal().Str("type", string(t)).Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	if lp.file != nil {
		_ = lp.file.Close()
	}
}
