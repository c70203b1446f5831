// Package sinks provides logging.Sink implementations for the event router.
package sinks

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

// Console renders events through a zap logger instead of a bare *log.Logger,
// so severities map onto zap levels and payloads render as structured fields.
type Console struct {
	logger *zap.Logger
}

// NewConsole builds a Console sink writing through logger; a nil logger
// falls back to zap.NewProduction's JSON logger.
func NewConsole(logger *zap.Logger) *Console {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Console{logger: logger}
}

func (s *Console) Write(event logging.Event) error {
	if s.logger == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.Uint64("actor", event.Actor.ID),
		zap.String("category", string(event.Category)),
	}
	if len(event.Targets) > 0 {
		ids := make([]uint64, len(event.Targets))
		for i, t := range event.Targets {
			ids[i] = t.ID
		}
		fields = append(fields, zap.Uint64s("targets", ids))
	}
	if event.Payload != nil {
		if raw, err := json.Marshal(event.Payload); err == nil {
			fields = append(fields, zap.ByteString("payload", raw))
		}
	}
	for k, v := range event.Extra {
		fields = append(fields, zap.Any(k, v))
	}

	msg := string(event.Type)
	switch event.Severity {
	case logging.SeverityDebug:
		s.logger.Debug(msg, fields...)
	case logging.SeverityWarn:
		s.logger.Warn(msg, fields...)
	case logging.SeverityError:
		s.logger.Error(msg, fields...)
	default:
		s.logger.Info(msg, fields...)
	}
	return nil
}

func (s *Console) Close(context.Context) error {
	if s.logger == nil {
		return nil
	}
	return s.logger.Sync()
}

// NewZapLogger builds a zap.Logger from zap's production configuration at the
// parsed log level, falling back to Info when level does not parse.
func NewZapLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}
