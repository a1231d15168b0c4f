package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromFallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("hello", TenantID("t1"))
	From(nil).Info("nil ctx")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "t1", logs.All()[0].ContextMap()["tenant_id"])
}

func TestFromUsesScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).With(RequestID("req-1")))

	From(ctx).Debug("scoped")

	if assert.Equal(t, 1, logs.Len()) {
		assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nope"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "f…@e….com", MaskEmail(" Foo@Example.com"))
	assert.Equal(t, "a@b.io", MaskEmail("a@b.io"))
	assert.Equal(t, "***", MaskEmail("abc"))
	assert.Equal(t, "a…z", MaskEmail("abcxyz"))
	assert.Equal(t, "", MaskEmail(""))
}
