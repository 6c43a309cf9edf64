package message

import (
	"fmt"
	"io"
	"strings"

	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// DefaultErrorThreshold is the share of probes which must report errors before the overall
// verdict is critical.
const DefaultErrorThreshold = 0.15

// bucket keeps messages grouped by probe, remembering the order probes were first seen.
type bucket struct {
	order    []string
	messages map[string][]string
}

func newBucket() *bucket {
	return &bucket{messages: make(map[string][]string)}
}

func (b *bucket) add(probeID, msg string) {
	if _, ok := b.messages[probeID]; !ok {
		b.order = append(b.order, probeID)
	}
	b.messages[probeID] = append(b.messages[probeID], msg)
}

func (b *bucket) len() int {
	return len(b.order)
}

func (b *bucket) String() string {
	probes := make([]string, 0, len(b.order))
	for _, p := range b.order {
		probes = append(probes, fmt.Sprintf("%s: [%s]", p, strings.Join(b.messages[p], ", ")))
	}
	return strings.Join(probes, ", ")
}

// Message aggregates check outcomes from every probe into a single verdict. It is not safe for
// concurrent use.
type Message struct {
	ok   *bucket
	warn *bucket
	errs *bucket

	Verbose        int
	ErrorThreshold float64
}

// New creates an empty Message with the given verbosity.
func New(verbose int) *Message {
	return &Message{
		ok:             newBucket(),
		warn:           newBucket(),
		errs:           newBucket(),
		Verbose:        verbose,
		ErrorThreshold: DefaultErrorThreshold,
	}
}

var _ check.Reporter = (*Message)(nil)

// AddOK records a passing outcome for probeID.
func (m *Message) AddOK(probeID, msg string) {
	m.ok.add(probeID, msg)
}

// AddWarn records a warning outcome for probeID.
func (m *Message) AddWarn(probeID, msg string) {
	m.warn.add(probeID, msg)
}

// AddError records a failing outcome for probeID.
func (m *Message) AddError(probeID, msg string) {
	m.errs.add(probeID, msg)
}

// Counts returns the number of distinct probes in each bucket.
func (m *Message) Counts() (ok, warn, errors int) {
	return m.ok.len(), m.warn.len(), m.errs.len()
}

// Status computes the aggregate verdict. A probe appearing in several buckets is counted once
// per bucket.
func (m *Message) Status() check.Status {
	ok, warn, errors := m.Counts()
	resultCount := ok + warn + errors
	switch {
	case float64(errors) > float64(resultCount)*m.ErrorThreshold:
		return check.StatusCritical
	case warn > 0:
		return check.StatusWarning
	default:
		return check.StatusOK
	}
}

// Render writes the report for the current verdict to w and returns that verdict.
func (m *Message) Render(w io.Writer) (check.Status, error) {
	status := m.Status()
	var lines []string
	switch status {
	case check.StatusCritical:
		lines = append(lines, m.line("ERROR", m.errs, m.Verbose > 0))
		if m.Verbose > 1 {
			lines = append(lines, m.line("WARN", m.warn, true), m.line("OK", m.ok, true))
		}
	case check.StatusWarning:
		lines = append(lines, m.line("WARN", m.warn, m.Verbose > 0))
		if m.Verbose > 1 {
			lines = append(lines, m.line("OK", m.ok, true))
		}
	default:
		lines = append(lines, m.line("OK", m.ok, m.Verbose > 0))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return status, fmt.Errorf("writing report: %w", err)
		}
	}
	return status, nil
}

func (m *Message) line(tier string, b *bucket, withMessages bool) string {
	if !withMessages {
		return fmt.Sprintf("%s: %d", tier, b.len())
	}
	return fmt.Sprintf("%s: %d: %s", tier, b.len(), b)
}
