package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	For(context.Background(), base).Info("no rid")
	For(WithRequestID(context.Background(), "r-1"), base).Info("with rid")

	all := logs.All()
	assert.Len(t, all, 2)
	assert.NotContains(t, all[0].ContextMap(), "rid")
	assert.Equal(t, "r-1", all[1].ContextMap()["rid"])
	assert.Equal(t, "", RequestID(context.Background()))
}
