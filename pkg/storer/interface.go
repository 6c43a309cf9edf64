package storer

import (
	"context"
	"time"

	"github.com/digitalocean/atlas-check/pkg/measurement"
)

// Snapshot is the parsed state of a measurement at one point in time.
type Snapshot struct {
	MeasurementID string                    `json:"measurement_id"`
	Kind          measurement.Kind          `json:"kind"`
	TS            time.Time                 `json:"ts"`
	Measurements  []measurement.Measurement `json:"measurements"`
	// Errors maps probe ids to the reasons their records were not parsed.
	Errors map[string][]string `json:"errors,omitempty"`
}

// AddOK is ignored; a snapshot only records parse failures.
func (s *Snapshot) AddOK(probeID, msg string) {}

// AddWarn is ignored; a snapshot only records parse failures.
func (s *Snapshot) AddWarn(probeID, msg string) {}

// AddError records a probe which could not be parsed.
func (s *Snapshot) AddError(probeID, msg string) {
	if s.Errors == nil {
		s.Errors = make(map[string][]string)
	}
	s.Errors[probeID] = append(s.Errors[probeID], msg)
}

// Storer instances write snapshots somewhere.
type Storer interface {
	// SaveSnapshot writes a snapshot.
	SaveSnapshot(ctx context.Context, s Snapshot) error

	// Close flushes and releases the destination.
	Close() error
}
