package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLoggerFrom(zap.New(core))

	logger.Warn("Using demo data - course gateway is not available", errors.New("connection refused"))
	logger.Error(
		"failed to enroll student",
		errors.New("boom"),
		map[string]interface{}{"courseId": "1", "studentId": "101"},
	)
	logger.Info("connected", Person{StudentID: "101"}, 42)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "connection refused", entries[0].ContextMap()["error"])

	ctx := entries[1].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "1", ctx["courseId"])
	assert.Equal(t, "101", ctx["studentId"])

	ctx = entries[2].ContextMap()
	assert.Equal(t, "101", ctx["studentId"])
	assert.EqualValues(t, 42, ctx["arg1"])
}
