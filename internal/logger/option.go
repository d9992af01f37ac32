package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cappedCore drops entries below its own minimum level before the wrapped core sees them.
type cappedCore struct {
	zapcore.Core

	// minimum is the lowest level passed through.
	minimum zapcore.Level
}

// Enabled reports whether l passes both the cap and the wrapped core.
func (c *cappedCore) Enabled(l zapcore.Level) bool {
	return c.minimum.Enabled(l) && c.Core.Enabled(l)
}

// Check registers the core on ce when the entry passes the cap.
//
//nolint:gocritic // AddCore requires ent to be passed by value.
func (c *cappedCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(ent.Level) {
		return ce
	}

	return ce.AddCore(ent, c)
}

// With keeps the cap on child loggers.
//
//nolint:ireturn,nolintlint // Returning zapcore.Core is intended for zap integration.
func (c *cappedCore) With(fields []zapcore.Field) zapcore.Core {
	return &cappedCore{Core: c.Core.With(fields), minimum: c.minimum}
}

// WithLevel caps a derived logger at lvl, e.g. to keep chatty library output at warn
// while the service logs at debug. It never lowers the level of the wrapped core.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithLevel(lvl zapcore.Level) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &cappedCore{Core: core, minimum: lvl}
	})
}
