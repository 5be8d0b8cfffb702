// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/transcend/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Session Identity

// SessionSlot is a mutable holder the access logger places in the context
// before the handler chain runs. Session middleware deeper in the chain
// records the resolved user id in it so the final log line can carry it.
type SessionSlot struct {
	UserID int64
}

// WithSessionSlot returns a new context carrying an empty [SessionSlot].
func WithSessionSlot(ctx context.Context) (context.Context, *SessionSlot) {
	slot := &SessionSlot{}
	return context.WithValue(ctx, ctxkey.KeyUserID, slot), slot
}

// SetSessionUserID records id in the slot attached to ctx, if any.
func SetSessionUserID(ctx context.Context, id int64) {
	if slot, ok := ctx.Value(ctxkey.KeyUserID).(*SessionSlot); ok {
		slot.UserID = id
	}
}

// GetSessionUserID returns the id recorded by [SetSessionUserID].
func GetSessionUserID(ctx context.Context) (int64, bool) {
	slot, ok := ctx.Value(ctxkey.KeyUserID).(*SessionSlot)
	if !ok || slot.UserID == 0 {
		return 0, false
	}
	return slot.UserID, true
}
