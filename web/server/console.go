package server

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to a render's web
// console and then to the next handler. Sends never block; a full console
// drops the message.
type ConsoleHandler struct {
	consoleChan chan<- ConsoleMessage
	next        slog.Handler
	attrs       []slog.Attr
}

// NewConsoleHandler creates a handler for one render. next may be nil.
func NewConsoleHandler(consoleChan chan<- ConsoleMessage, next slog.Handler) *ConsoleHandler {
	return &ConsoleHandler{consoleChan: consoleChan, next: next}
}

// Enabled reports true from Info upward, or whatever next enables
func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || (h.next != nil && h.next.Enabled(ctx, level))
}

// Handle formats the record as "message key=value ..." for the console
func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level >= slog.LevelInfo && h.consoleChan != nil {
		var sb strings.Builder
		sb.WriteString(record.Message)
		appendAttr := func(a slog.Attr) bool {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteByte('=')
			sb.WriteString(a.Value.String())
			return true
		}
		for _, a := range h.attrs {
			appendAttr(a)
		}
		record.Attrs(appendAttr)

		select {
		case h.consoleChan <- ConsoleMessage{
			Message:   sb.String(),
			Timestamp: record.Time,
			Level:     strings.ToLower(record.Level.String()),
		}:
		default:
		}
	}

	if h.next != nil && h.next.Enabled(ctx, record.Level) {
		return h.next.Handle(ctx, record)
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every message
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	return &clone
}

// WithGroup is passed through to next; console messages stay flat
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	return &clone
}
