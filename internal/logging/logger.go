// Package logging builds the service's zap logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// stderr is swapped in tests.
var stderr io.Writer = os.Stderr

// New returns a logger writing JSON or console lines to stderr at level.
func New(level, format string, fields ...zap.Field) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	core := zapcore.NewCore(newEncoder(format), zapcore.Lock(zapcore.AddSync(stderr)), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).With(fields...), nil
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
