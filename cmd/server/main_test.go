package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Setenv("PORT", "0")
	t.Setenv("STORAGE_URL", "memory://")
	t.Setenv("LOG_LEVEL", "error")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, nil)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("STORAGE_URL", "ftp://nowhere")

	err := Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestRunUnknownFlag(t *testing.T) {
	err := Run(context.Background(), []string{"-nope"})
	assert.Error(t, err)
}
