package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Printf adapts the context logger to libraries that log through Printf and Println.
type Printf struct {
	// log receives the messages.
	log *zap.SugaredLogger
	// level is the level every message is logged at.
	level zapcore.Level
}

// NewPrintf returns an adapter writing to the context logger at the given level.
// Options such as WithLevel apply to the adapter only.
func NewPrintf(ctx context.Context, level zapcore.Level, options ...zap.Option) *Printf {
	return &Printf{
		log:   FromContext(ctx).Desugar().WithOptions(options...).Sugar(),
		level: level,
	}
}

// Printf logs a formatted message.
func (p *Printf) Printf(format string, args ...any) {
	p.log.Logf(p.level, format, args...)
}

// Println logs the arguments separated by spaces.
func (p *Printf) Println(args ...any) {
	p.log.Logln(p.level, args...)
}
