package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewRequestID()
		require.Len(t, id, 8)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45, "ids should rarely collide")
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	ctx = WithRequestID(ctx, "abc12345")
	assert.Equal(t, "abc12345", RequestIDFromContext(ctx))
}

func TestPadCaller(t *testing.T) {
	assert.Len(t, padCaller("x.go:1"), callerWidth)
	long := strings.Repeat("a", 40) + ".go:12"
	got := padCaller(long)
	assert.Len(t, got, callerWidth)
	assert.True(t, strings.HasSuffix(got, ".go:12"))
}

func TestLogBodyTruncates(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	LogBody(l, "response", bytes.Repeat([]byte("x"), 1500))
	out := buf.String()
	assert.Contains(t, out, `"truncated":true`)
	assert.NotContains(t, out, strings.Repeat("x", 1001))

	buf.Reset()
	LogBody(l, "response", nil)
	assert.Empty(t, buf.String())
}

func TestLogBodyKeepsRunesWhole(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	// 3-byte runes put the byte limit in the middle of one.
	LogBody(l, "request", []byte(strings.Repeat("€", 400)))

	var line struct {
		Request   string `json:"request"`
		Truncated bool   `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.True(t, line.Truncated)
	assert.True(t, utf8.ValidString(line.Request))
	assert.Equal(t, strings.Repeat("€", maxBodyLog/3), line.Request)
}
