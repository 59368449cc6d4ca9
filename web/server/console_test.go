package server

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler(messageChan, nil))

	logger.Info("frame rendered", "frame", 3, "triangles", 12)

	select {
	case msg := <-messageChan:
		assert.Equal(t, "frame rendered frame=3 triangles=12", msg.Message)
		assert.Equal(t, "info", msg.Level)
		assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Second)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for console message")
	}
}

func TestConsoleHandler_WithAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler(messageChan, nil)).With("render", "render-1")

	logger.Warn("slow frame")
	msg := <-messageChan
	assert.Equal(t, "slow frame render=render-1", msg.Message)
	assert.Equal(t, "warn", msg.Level)
}

func TestConsoleHandler_DebugSkipsConsole(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	var buf bytes.Buffer
	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewConsoleHandler(messageChan, next))

	logger.Debug("per tile detail")
	assert.Empty(t, messageChan)
	assert.Contains(t, buf.String(), "per tile detail", "debug still reaches the server log")

	assert.True(t, NewConsoleHandler(messageChan, nil).Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, NewConsoleHandler(messageChan, nil).Enabled(context.Background(), slog.LevelDebug))
}

func TestConsoleHandler_ForwardsToNext(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	var buf bytes.Buffer
	logger := slog.New(NewConsoleHandler(messageChan, slog.NewTextHandler(&buf, nil)))

	logger.WithGroup("stats").Info("done", "frames", 2)
	require.Len(t, messageChan, 1)
	assert.Contains(t, buf.String(), "stats.frames=2")
}

func TestConsoleHandler_FullChannel(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := slog.New(NewConsoleHandler(messageChan, nil))

	// Fill the channel, then log more; none of these calls may block
	done := make(chan bool)
	go func() {
		for i := 0; i < 5; i++ {
			logger.Info("message", "i", i)
		}
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("logging blocked on a full console channel")
	}
	assert.Len(t, messageChan, 1)
}

func TestConsoleHandler_NilChannel(t *testing.T) {
	logger := slog.New(NewConsoleHandler(nil, nil))
	// Must not panic
	logger.Info("nowhere to go")
}
