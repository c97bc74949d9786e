package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/logx"
)

func TestLoggerMethods(t *testing.T) {
	logger := NewLogger("debug")
	ctx := context.Background()
	require.NotPanics(t, func() {
		logger.Debug(ctx, "debug message", Fields{"key": "value"})
		logger.Info(ctx, "info message", nil)
		logger.Error(ctx, errors.New("boom"), Fields{"model": "m"})
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, uint32(logx.DebugLevel), parseLevel(" DEBUG "))
	require.Equal(t, uint32(logx.ErrorLevel), parseLevel("error"))
	require.Equal(t, uint32(logx.SevereLevel), parseLevel("fatal"))
	require.Equal(t, uint32(logx.InfoLevel), parseLevel("unknown"))
}

func TestToLogFieldsIsSorted(t *testing.T) {
	fields := toLogFields(Fields{"b": 2, "a": 1})
	require.Len(t, fields, 2)
	require.Equal(t, "a", fields[0].Key)
	require.Nil(t, toLogFields(nil))
}

func TestSummarizeMessagesTruncates(t *testing.T) {
	long := strings.Repeat("x", 200)
	out := summarizeMessages([]Message{{Content: long}, {Role: "System", Content: "s"}})
	require.Contains(t, out, "[0] user: ")
	require.Contains(t, out, "...")
	require.Contains(t, out, "[1] system: s")
}
