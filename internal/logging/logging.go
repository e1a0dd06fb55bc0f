// Package logging builds the zap loggers used by the server and the CLI. The parser
// itself never logs: failures are values, and it's up to the caller what to do with them.
package logging

import (
	"os"
	"strings"

	"github.com/indigo-web/httphead/config"
	"github.com/indigo-web/httphead/http/failure"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorReset  = "\x1b[0m"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// New makes a logger writing to console in the configured format. If a log file is set,
// entries are duplicated into it as JSON, rotated by lumberjack.
func New(cfg config.Logger, console zapcore.WriteSyncer) *zap.Logger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), console, level)}

	if cfg.LogFile != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder("json"), file, level))
	}

	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if cfg.AddSource {
		options = append(options, zap.AddCaller())
	}

	return zap.New(zapcore.NewTee(cores...), options...).Named(cfg.ServiceName)
}

// NewStderr is New with console output to stderr, so stdout stays clean for the
// parse command's output.
func NewStderr(cfg config.Logger) *zap.Logger {
	return New(cfg, zapcore.Lock(os.Stderr))
}

func encoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	if format == "console" {
		encoderConfig.EncodeLevel = colorizedLevel
		encoderConfig.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(name + ".")
		}

		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func colorizedLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	var color string

	switch level {
	case zapcore.DebugLevel:
		color = colorBlue
	case zapcore.InfoLevel:
		color = colorGreen
	case zapcore.WarnLevel:
		color = colorYellow
	default:
		color = colorRed
	}

	enc.AppendString(color + strings.ToUpper(level.String()) + colorReset)
}

// Failure describes a parse failure as log fields.
func Failure(f *failure.Failure) []zap.Field {
	fields := []zap.Field{
		zap.Stringer("kind", f.Kind),
		zap.Stringer("class", f.Kind.Class()),
		zap.Int("offset", f.Offset),
		zap.String("detail", f.Detail),
	}

	if f.Limit > 0 {
		fields = append(fields, zap.Int("limit", f.Limit))
	}

	if len(f.Token) > 0 {
		fields = append(fields, zap.String("token", f.Token))
	}

	return fields
}

// FailureLevel is Warn for exceeded limits, which are usually a sign of abuse, and Debug
// for everything else.
func FailureLevel(f *failure.Failure) zapcore.Level {
	if f.Kind.Class() == failure.Limit {
		return zapcore.WarnLevel
	}

	return zapcore.DebugLevel
}
