package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	KeyResult     = "result"
	KeyError      = "error"
	KeyRetry      = "retry"
	KeyProvider   = "provider"
	KeyWorkerID   = "worker_id"
	KeyURL        = "url"
	KeyStatusCode = "status_code"
	KeyAttempt    = "attempt"
	KeyReason     = "reason"
	KeyRunID      = "run_id"
	KeyCount      = "count"
	KeyInstance   = "instance_type"

	ValueSuccess = "success"
	ValueFail    = "fail"
	ValueTrue    = "true"
	ValueFalse   = "false"
)

// NewLogger returns a JSON logger writing to stdout at the given level.
func NewLogger(level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(level),
	)

	return zap.New(core, zap.AddCaller()).Sugar()
}
