package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnCancel(t *testing.T) {
	cfg, err := loadConfig(newViper())
	require.NoError(t, err)
	cfg.Listen = "127.0.0.1:0"
	cfg.LogLevel = "error"

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_InvalidPool(t *testing.T) {
	cfg, err := loadConfig(newViper())
	require.NoError(t, err)
	cfg.MaxResources = 0

	err = serve(t.Context(), cfg)
	assert.Error(t, err)
}
