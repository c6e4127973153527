package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init replaces the package logger. Production environments get the JSON encoder,
// everything else gets the human readable development encoder.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zapLogger = zap.NewExample()
	}

	mu.Lock()
	sugar = zapLogger.Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Sync() {
	_ = current().Sync()
}

func Debug(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, keysAndValues...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	current().Fatalw(msg, keysAndValues...)
}

// With returns a child logger carrying the given fields.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return current().With(keysAndValues...)
}
