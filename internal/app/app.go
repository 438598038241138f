// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"seisdisagg-core/disagg"
	"seisdisagg/internal/config"
	"seisdisagg/internal/store"
	"seisdisagg/internal/telemetry"
	"seisdisagg/internal/writers"
)

// Version is overridden at build time with -ldflags "-X seisdisagg/internal/app.Version=...".
var Version = "dev"

// Process exit codes.
const (
	ExitOK             = 0
	ExitUsage          = 2
	ExitRuntime        = 3
	ExitNoContribution = 4
	ExitCancelled      = 130
)

// exitError pins the exit code of an error returned by a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func usageErr(err error) error { return withCode(ExitUsage, err) }

// configErrors are request problems the user fixes in the scenario or flags.
var configErrors = []error{
	disagg.ErrNoRuptures,
	disagg.ErrInvalidBinWidth,
	disagg.ErrInvalidEpsilons,
	disagg.ErrInvalidTruncation,
	disagg.ErrInvalidRequest,
	disagg.ErrMissingGSIM,
	store.ErrNotFound,
}

// classify attaches an exit code to an error coming out of command logic.
func classify(err error) error {
	var ee *exitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ee):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return withCode(ExitCancelled, err)
	case errors.Is(err, disagg.ErrNoContribution):
		return withCode(ExitNoContribution, err)
	case writers.IsBrokenPipe(err):
		return nil
	}
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return usageErr(err)
		}
	}
	return withCode(ExitRuntime, err)
}

// exitCode maps the error returned by the command tree. Errors that never
// went through classify come from cobra itself (bad flags, unknown
// commands) and are usage errors.
func exitCode(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsage
}

// RunContext executes the CLI with argv (without the program name) and
// returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	env, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "seisdisagg:", err)
		return ExitUsage
	}

	shutdown, err := telemetry.Setup(ctx, "seisdisagg", telemetry.Config{
		Endpoint: env.OTelEndpoint,
		Enabled:  env.OTelEnabled,
	})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "seisdisagg: telemetry:", err)
		return ExitUsage
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	outw := bufio.NewWriter(stdout)
	root := newRootCmd(env)
	root.SetArgs(argv)
	root.SetOut(outw)
	root.SetErr(stderr)

	err = root.ExecuteContext(ctx)
	code := exitCode(ctx, err)
	if ferr := outw.Flush(); ferr != nil && !writers.IsBrokenPipe(ferr) && code == ExitOK {
		err, code = ferr, ExitRuntime
	}

	switch {
	case err == nil:
	case code == ExitCancelled:
		_, _ = fmt.Fprintln(stderr, "seisdisagg: cancelled")
	case code == ExitNoContribution:
		_, _ = fmt.Fprintln(stderr, "seisdisagg: warning:", err)
	default:
		_, _ = fmt.Fprintln(stderr, "seisdisagg:", err)
		if code == ExitUsage {
			_, _ = fmt.Fprintln(stderr, "Run 'seisdisagg --help' for usage.")
		}
	}
	return code
}
