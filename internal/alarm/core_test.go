package alarm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type recordingSink struct {
	lines []string
	err   error
}

func (s *recordingSink) Emit(text string) error {
	s.lines = append(s.lines, text)
	return s.err
}

func TestCore_MirrorsErrorEntries(t *testing.T) {
	sink := &recordingSink{}
	logger := zap.New(NewCore(sink, zapcore.ErrorLevel))

	logger.Error("handler failed", zap.Error(fmt.Errorf("backend down")))

	require.Len(t, sink.lines, 1)
	assert.Equal(t, "ERROR: handler failed: backend down", sink.lines[0])
}

func TestCore_FiltersBelowThreshold(t *testing.T) {
	sink := &recordingSink{}
	logger := zap.New(NewCore(sink, zapcore.ErrorLevel))

	logger.Info("just chatting")
	logger.Warn("slightly concerning")

	assert.Empty(t, sink.lines)
}

func TestCore_CarriesWithFields(t *testing.T) {
	sink := &recordingSink{}
	logger := zap.New(NewCore(sink, zapcore.ErrorLevel))

	logger.With(zap.Error(fmt.Errorf("attached earlier"))).Error("handler failed")

	require.Len(t, sink.lines, 1)
	assert.Equal(t, "ERROR: handler failed: attached earlier", sink.lines[0])
}

func TestCore_SwallowsSinkFailure(t *testing.T) {
	sink := &recordingSink{err: fmt.Errorf("telegram unreachable")}
	logger := zap.New(NewCore(sink, zapcore.ErrorLevel))

	assert.NotPanics(t, func() {
		logger.Error("handler failed", zap.Error(fmt.Errorf("backend down")))
	})
	assert.Len(t, sink.lines, 1)
}

func TestCore_IgnoresNonErrorFields(t *testing.T) {
	sink := &recordingSink{}
	logger := zap.New(NewCore(sink, zapcore.ErrorLevel))

	logger.Error("handler failed",
		zap.Int64("chat_id", 42),
		zap.String("state", "cart"),
	)

	require.Len(t, sink.lines, 1)
	assert.Equal(t, "ERROR: handler failed", sink.lines[0])
}
