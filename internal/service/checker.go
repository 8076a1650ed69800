// Package service provides the core monitoring pipeline: parsing raw pool
// payloads, evaluating thresholds, and orchestrating one check cycle.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"zpoolmon/internal/client/zpool"
	"zpoolmon/internal/model"
)

// PayloadSource yields the raw enumeration and detail payloads for one
// cycle. Implemented by the zpool client; replaced in tests.
type PayloadSource interface {
	FetchPayloads(ctx context.Context) (zpool.ListPayload, zpool.StatusPayload, error)
}

// Checker runs one fetch -> parse -> evaluate pass and produces the
// cycle's CheckResult.
type Checker struct {
	source  PayloadSource
	parser  *Parser
	monitor *Monitor
	logger  zerolog.Logger

	// now is the clock; replaced in tests.
	now func() time.Time
}

// CheckerOption is a functional option for configuring a Checker.
type CheckerOption func(*Checker)

// WithClock overrides the checker's clock.
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a new Checker with the given dependencies.
func NewChecker(source PayloadSource, parser *Parser, monitor *Monitor, logger zerolog.Logger, opts ...CheckerOption) *Checker {
	c := &Checker{
		source:  source,
		parser:  parser,
		monitor: monitor,
		logger:  logger.With().Str("component", "checker").Logger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run executes one check cycle:
//  1. Fetches the raw payloads from the pool data source
//  2. Parses them into typed snapshots
//  3. Evaluates thresholds to produce issues
//
// A source failure fails the whole cycle. Per-pool parse failures are
// logged inside the parser and only fail the cycle when no pool survived
// despite pools being present in the payload.
func (c *Checker) Run(ctx context.Context) (*model.CheckResult, error) {
	start := c.now().UTC()
	c.logger.Debug().Time("start_time", start).Msg("starting check cycle")

	list, status, err := c.source.FetchPayloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching pool payloads: %w", err)
	}

	snapshots, failures := c.parser.Parse(list, status)
	if len(snapshots) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("no pool could be parsed: %d pools failed, first error: %w", len(failures), failures[0])
	}

	result := c.monitor.EvaluateAll(snapshots, start)

	c.logger.Info().
		Int("pools", len(snapshots)).
		Int("parse_failures", len(failures)).
		Int("issues", len(result.Issues)).
		Str("overall_severity", string(result.OverallSeverity)).
		Dur("duration", c.now().UTC().Sub(start)).
		Msg("check cycle completed")

	return result, nil
}
