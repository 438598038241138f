package appshell

import (
	"context"
	"io"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestRunDefaultsToHelp(t *testing.T) {
	var got []string
	code := run(func(_ context.Context, argv []string, _, _ io.Writer) int {
		got = argv
		return 0
	}, nil, io.Discard, io.Discard)
	if code != 0 || len(got) != 1 || got[0] != "-h" {
		t.Fatalf("code=%d argv=%v", code, got)
	}
}

func TestRunPassesExitCode(t *testing.T) {
	code := run(func(context.Context, []string, io.Writer, io.Writer) int { return 4 },
		[]string{"disagg"}, io.Discard, io.Discard)
	if code != 4 {
		t.Fatalf("code=%d want 4", code)
	}
}

func TestSignalCancelsAndNormalizesExit(t *testing.T) {
	code := run(func(ctx context.Context, _ []string, _, _ io.Writer) int {
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(5 * time.Second):
			t.Error("context not cancelled by SIGTERM")
			return 1
		}
	}, []string{"x"}, io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("code=%d want 130", code)
	}
}
