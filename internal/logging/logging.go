// Package logging provides category-scoped, zap-backed logging for the crawler.
//
// Every subsystem logs through a *zap.Logger tagged with its Category so a
// single run's output can be filtered by component without grepping strings.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a logging subsystem.
type Category string

const (
	CategoryExplorer     Category = "explorer"
	CategoryGraph        Category = "graph"
	CategoryTemplate     Category = "template"
	CategoryAccess       Category = "access"
	CategoryAnalyzer     Category = "analyzer"
	CategoryOrchestrator Category = "orchestrator"
	CategoryAbility      Category = "ability"
	CategoryBuildData    Category = "build_data"
	CategoryReport       Category = "report"
	CategoryConfig       Category = "config"
)

var (
	mu     sync.RWMutex
	base   *zap.Logger = zap.NewNop()
	loaded bool
)

// Options controls process-wide logger construction.
type Options struct {
	// Debug enables debug-level, human-readable console output.
	Debug bool
	// Info enables info-level output when Debug is false.
	Info bool
	// ToStdout sends logs, and zap's own error output, to stdout instead of
	// stderr.
	ToStdout bool
}

// Init constructs the process-wide base logger. Safe to call once at
// startup; subsequent calls replace the base logger (used by tests).
func Init(opts Options) error {
	var cfg zap.Config
	switch {
	case opts.Debug:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case opts.Info:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if opts.ToStdout {
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stdout"}
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	mu.Lock()
	base = l
	loaded = true
	mu.Unlock()
	return nil
}

// Get returns a logger scoped to the given category.
func Get(cat Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(zap.String("category", string(cat)))
}

// Sync flushes any buffered log entries. Safe to call even if Init was
// never called.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
