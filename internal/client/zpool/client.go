// Package zpool invokes the external pool administration tool and decodes
// its JSON output into the raw payloads consumed by the status parser.
package zpool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"zpoolmon/internal/config"
)

// SourceError reports a failed or timed-out invocation of the pool
// administration tool. It always fails the whole cycle.
type SourceError struct {
	Op      string // which invocation failed, e.g. "list" or "status"
	Timeout bool
	Err     error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("pool data source %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pool data source %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if err is a SourceError caused by the tool
// exceeding its invocation timeout.
func IsTimeout(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Timeout
}

// Client runs the pool administration tool and returns its raw payloads.
type Client struct {
	command string
	timeout time.Duration
	logger  zerolog.Logger

	// runner executes one tool invocation and returns stdout. Replaced in
	// tests to avoid shelling out.
	runner func(ctx context.Context, command string, args ...string) ([]byte, error)
}

// NewClient creates a new pool data source client.
func NewClient(cfg *config.SourceConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		command: cfg.Command,
		timeout: timeout,
		logger:  logger.With().Str("component", "zpool-client").Logger(),
		runner:  runCommand,
	}
}

// runCommand executes the tool and returns its stdout.
func runCommand(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %v: %w (stderr: %s)", command, args, err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%s %v: %w", command, args, err)
	}
	return out, nil
}

// FetchPayloads runs the enumeration and detail invocations and returns
// both raw payloads. Both invocations share one timeout; list and status
// run concurrently since they are independent tool calls.
func (c *Client) FetchPayloads(ctx context.Context) (ListPayload, StatusPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	var listPayload ListPayload
	var statusPayload StatusPayload

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := c.runner(ctx, c.command, "list", "-j", "-o", "name,size,allocated,free,capacity,health")
		if err != nil {
			return c.wrapSourceError("list", ctx, err)
		}
		payload, err := decodeListPayload(out)
		if err != nil {
			return &SourceError{Op: "list", Err: err}
		}
		listPayload = payload
		return nil
	})

	g.Go(func() error {
		out, err := c.runner(ctx, c.command, "status", "-j")
		if err != nil {
			return c.wrapSourceError("status", ctx, err)
		}
		payload, err := decodeStatusPayload(out)
		if err != nil {
			return &SourceError{Op: "status", Err: err}
		}
		statusPayload = payload
		return nil
	})

	if err := g.Wait(); err != nil {
		c.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("failed to fetch pool payloads")
		return nil, nil, err
	}

	c.logger.Debug().
		Int("pools_listed", len(listPayload)).
		Int("pools_detailed", len(statusPayload)).
		Dur("elapsed", time.Since(start)).
		Msg("pool payloads fetched")

	return listPayload, statusPayload, nil
}

// wrapSourceError classifies a failed invocation, marking it as a timeout
// when the shared deadline was exceeded.
func (c *Client) wrapSourceError(op string, ctx context.Context, err error) error {
	timeout := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
	return &SourceError{Op: op, Timeout: timeout, Err: err}
}
