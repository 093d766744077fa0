// Package logger builds the zap.SugaredLogger used across the engine. It
// fills a gap the teacher repo's pkg/ignite referenced but never
// implemented.
package logger

import "go.uber.org/zap"

// New builds a production zap logger tagged with the given component name.
// pkg/ignite.Open builds one tagged "ignite" and hands it to the engine and
// writer, which log through it.
func New(component string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}

	return base.Sugar().With("component", component)
}

// Nop returns a logger that discards everything, for callers that don't
// want store logs (e.g. unit tests).
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
