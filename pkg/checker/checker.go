package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalocean/atlas-check/pkg/atlas"
	"github.com/digitalocean/atlas-check/pkg/measurement"
	"github.com/digitalocean/atlas-check/pkg/types/check"
	"github.com/rs/zerolog/log"
)

// NoData is reported for probes which returned no result.
const NoData = "No data"

// NewChecker creates a checker.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CheckerOption describe optional arguments for the checker.
type CheckerOption func(*Checker)

// WithFetcher sets the source of measurement results.
func WithFetcher(f atlas.Fetcher) CheckerOption {
	return func(c *Checker) {
		c.fetcher = f
	}
}

// WithNow overrides the clock used for freshness and expiry checks.
func WithNow(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// Checker evaluates the latest results of a measurement.
type Checker struct {
	now     func() time.Time
	fetcher atlas.Fetcher
}

// Run fetches the latest results of opts.MeasurementID and checks every one of them as kind.
// Only a failure to fetch is returned; everything else is reported to r.
func (c *Checker) Run(ctx context.Context, kind measurement.Kind, opts check.Options, r check.Reporter) error {
	if c.fetcher == nil {
		return fmt.Errorf("checker has no fetcher")
	}
	records, err := c.fetcher.Latest(ctx, opts.MeasurementID)
	if err != nil {
		return fmt.Errorf("fetching measurement %s: %w", opts.MeasurementID, err)
	}
	log.Ctx(ctx).Info().
		Str("measurement_id", opts.MeasurementID).
		Str("kind", string(kind)).
		Int("records", len(records)).
		Msg("checking measurement")
	c.Check(ctx, c.Parse(ctx, records, kind, r), opts, r)
	return nil
}

// Parse builds a Measurement for every record with data. Probes without data, and records
// which can't be parsed, are reported as errors to r.
func (c *Checker) Parse(ctx context.Context, records []atlas.Record, kind measurement.Kind, r check.Reporter) []measurement.Measurement {
	ll := log.Ctx(ctx)
	parsed := make([]measurement.Measurement, 0, len(records))
	for i, rec := range records {
		probeID, err := rec.ProbeID()
		if err != nil {
			ll.Warn().Err(err).Int("record", i).Msg("skipping record")
			continue
		}
		payload := rec.Result()
		if payload == nil {
			r.AddError(probeID, NoData)
			continue
		}
		m, err := measurement.New(kind, probeID, payload)
		if err != nil {
			ll.Warn().Err(err).Str("probe_id", probeID).Msg("parsing measurement")
			r.AddError(probeID, check.Msg("unable to parse measurement", err.Error()))
			continue
		}
		parsed = append(parsed, m)
	}
	return parsed
}

// Check runs every measurement's checks in order.
func (c *Checker) Check(ctx context.Context, measurements []measurement.Measurement, opts check.Options, r check.Reporter) {
	now := c.now()
	for _, m := range measurements {
		log.Ctx(ctx).Debug().
			Str("probe_id", measurement.ProbeID(m)).
			Msg("check started")
		m.Check(now, opts, r)
	}
}
