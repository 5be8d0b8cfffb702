// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/transcend/internal/platform/ctxutil"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_SessionSlot verifies that a user id set deep in the chain is visible
through the context the slot was created on.
*/
func TestContext_SessionSlot(t *testing.T) {
	base := context.Background()

	// Without a slot, setting is a no-op
	ctxutil.SetSessionUserID(base, 7)
	_, ok := ctxutil.GetSessionUserID(base)
	assert.False(t, ok)

	ctx, slot := ctxutil.WithSessionSlot(base)
	_, ok = ctxutil.GetSessionUserID(ctx)
	assert.False(t, ok)

	// A derived context writes through to the same slot
	derived := context.WithValue(ctx, struct{}{}, "x")
	ctxutil.SetSessionUserID(derived, 42)

	id, ok := ctxutil.GetSessionUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), slot.UserID)
}
