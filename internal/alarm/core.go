package alarm

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// core is a zapcore.Core that forwards enabled entries to a Sink as
// one-line messages. Tee it with the main core so operator delivery
// never replaces normal logging. Sink failures are dropped: a broken
// alarm channel must not take the handler path down with it.
type core struct {
	zapcore.LevelEnabler
	sink   Sink
	fields []zapcore.Field
}

// NewCore creates a Core that mirrors entries at or above the enabled
// level to the sink.
func NewCore(sink Sink, enab zapcore.LevelEnabler) zapcore.Core {
	return &core{LevelEnabler: enab, sink: sink}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := &core{
		LevelEnabler: c.LevelEnabler,
		sink:         c.sink,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	line := fmt.Sprintf("%s: %s", ent.Level.CapitalString(), ent.Message)

	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	for _, f := range all {
		if f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok {
				line += ": " + err.Error()
			}
		}
	}

	// Best effort only.
	_ = c.sink.Emit(line)
	return nil
}

func (c *core) Sync() error { return nil }
