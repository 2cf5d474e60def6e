// Package zaplog backs the observability.Logger handle with go.uber.org/zap.
package zaplog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wudi/textsort/observability"
)

type logger struct {
	z *zap.Logger
}

// New wraps an existing zap logger in the observability.Logger interface.
func New(z *zap.Logger) observability.Logger {
	if z == nil {
		panic("zaplog.New received a nil *zap.Logger")
	}
	return logger{z: z}
}

// NewFile builds a console-encoded logger appending to the given file path,
// plus a flush function the caller must invoke before exit. Suited for the
// append-only run log.
func NewFile(path string) (observability.Logger, func() error, error) {
	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			MessageKey:     "message",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
		},
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build file logger: %w", err)
	}
	return logger{z: z}, z.Sync, nil
}

func (l logger) Debug(msg string, fields ...observability.Field) { l.z.Debug(msg, convert(fields)...) }
func (l logger) Info(msg string, fields ...observability.Field)  { l.z.Info(msg, convert(fields)...) }
func (l logger) Warn(msg string, fields ...observability.Field)  { l.z.Warn(msg, convert(fields)...) }
func (l logger) Error(msg string, fields ...observability.Field) { l.z.Error(msg, convert(fields)...) }

func (l logger) With(fields ...observability.Field) observability.Logger {
	return logger{z: l.z.With(convert(fields)...)}
}

func convert(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			out = append(out, zap.String(f.Key(), v))
		case int:
			out = append(out, zap.Int(f.Key(), v))
		case int64:
			out = append(out, zap.Int64(f.Key(), v))
		case float64:
			out = append(out, zap.Float64(f.Key(), v))
		case error:
			out = append(out, zap.NamedError(f.Key(), v))
		default:
			out = append(out, zap.Any(f.Key(), v))
		}
	}
	return out
}
