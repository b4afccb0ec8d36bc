//go:build unix

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signalHelperEnv = "UIHARNESS_SIGNAL_HELPER"

// TestSignalContext_Helper runs in a child process started by
// TestSignalContext_SIGTERM. It is a no-op otherwise.
func TestSignalContext_Helper(t *testing.T) {
	if os.Getenv(signalHelperEnv) != "1" {
		t.Skip("helper process only")
	}

	ctx, stop := signalContext(context.Background(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
	select {
	case <-ctx.Done():
		fmt.Println("cancelled")
	case <-time.After(5 * time.Second):
		fmt.Println("not cancelled")
		os.Exit(3)
	}

	stop()
	_ = syscall.Kill(os.Getpid(), syscall.SIGTERM)
	time.Sleep(5 * time.Second)
	fmt.Println("survived")
	os.Exit(4)
}

func TestSignalContext_SIGTERM(t *testing.T) {
	cmd := exec.Command(os.Args[0], "-test.run=^TestSignalContext_Helper$", "-test.v")
	cmd.Env = append(os.Environ(), signalHelperEnv+"=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	assert.Contains(t, stdout.String(), "cancelled")
	assert.NotContains(t, stdout.String(), "not cancelled")
	assert.NotContains(t, stdout.String(), "survived")
	assert.Contains(t, stderr.String(), "received signal, shutting down")

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "want signal exit, got %v", err)
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	require.True(t, ok)
	assert.True(t, status.Signaled(), "default SIGTERM handling restored after stop")
	assert.Equal(t, syscall.SIGTERM, status.Signal())
}

func TestSignalContext_StopCancels(t *testing.T) {
	var logs bytes.Buffer
	ctx, stop := signalContext(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
	assert.Empty(t, logs.String())
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := signalContext(parent, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	defer stop()

	cancel()
	assert.Eventually(t, func() bool { return ctx.Err() != nil }, time.Second, 10*time.Millisecond)
}
