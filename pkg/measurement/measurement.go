// Package measurement parses the latest result of a RIPE Atlas measurement for a single probe
// and checks it against the operator's thresholds.
package measurement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// Kind selects how a result payload is interpreted.
type Kind string

const (
	KindBase   Kind = ""
	KindPing   Kind = "ping"
	KindHTTP   Kind = "http"
	KindSSL    Kind = "ssl"
	KindA      Kind = "a"
	KindAAAA   Kind = "aaaa"
	KindCNAME  Kind = "cname"
	KindDS     Kind = "ds"
	KindDNSKEY Kind = "dnskey"
	KindSOA    Kind = "soa"
)

// ParseKind normalizes a command or flag name into a Kind.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Measurement is one probe's parsed result. The set of implementations is closed: Base, Ping,
// HTTP, SSL, DNS and DNSRecord.
type Measurement interface {
	// Check reports one outcome per applicable sub-check to r.
	Check(now time.Time, opts check.Options, r check.Reporter)
	base() *Base
}

// Constructor parses a payload for probeID.
type Constructor func(probeID string, payload json.RawMessage) (Measurement, error)

var constructors = map[Kind]Constructor{
	KindPing:   NewPing,
	KindHTTP:   NewHTTP,
	KindSSL:    NewSSL,
	KindA:      newDNSRecordConstructor(KindA),
	KindAAAA:   newDNSRecordConstructor(KindAAAA),
	KindCNAME:  newDNSRecordConstructor(KindCNAME),
	KindDS:     newDNSRecordConstructor(KindDS),
	KindDNSKEY: newDNSRecordConstructor(KindDNSKEY),
	KindSOA:    newDNSRecordConstructor(KindSOA),
}

// New parses payload as kind. Unrecognized kinds fall back to Base, which only checks freshness.
func New(kind Kind, probeID string, payload json.RawMessage) (Measurement, error) {
	c, ok := constructors[kind]
	if !ok {
		return NewBase(probeID, payload)
	}
	return c(probeID, payload)
}

// ProbeID returns the probe which produced m.
func ProbeID(m Measurement) string {
	return m.base().ProbeID
}

// Base holds what all measurements share.
type Base struct {
	Kind      Kind      `json:"kind"`
	ProbeID   string    `json:"probe_id"`
	CheckTime time.Time `json:"check_time"`

	fields []json.RawMessage
}

// NewBase parses the fields common to every payload.
func NewBase(probeID string, payload json.RawMessage) (Measurement, error) {
	b, err := newBase(KindBase, probeID, payload)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newBase(kind Kind, probeID string, payload json.RawMessage) (*Base, error) {
	b := &Base{Kind: kind, ProbeID: probeID}
	if err := json.Unmarshal(payload, &b.fields); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	var ts float64
	if err := b.field(1, &ts); err != nil {
		return nil, fmt.Errorf("reading check time: %w", err)
	}
	sec, frac := math.Modf(ts)
	b.CheckTime = time.Unix(int64(sec), int64(frac*1e9))
	return b, nil
}

func (b *Base) base() *Base {
	return b
}

// field decodes payload element i into v, failing when it is absent or null.
func (b *Base) field(i int, v interface{}) error {
	if i >= len(b.fields) {
		return fmt.Errorf("payload has no field %d", i)
	}
	if isNull(b.fields[i]) {
		return fmt.Errorf("payload field %d is null", i)
	}
	return json.Unmarshal(b.fields[i], v)
}

// Check verifies the measurement is fresh enough.
func (b *Base) Check(now time.Time, opts check.Options, r check.Reporter) {
	if opts.MaxMeasurementAge > 0 {
		b.checkAge(now, opts.MaxMeasurementAge, r)
	}
}

func (b *Base) checkAge(now time.Time, maxAge time.Duration, r check.Reporter) {
	if b.CheckTime.Before(now.Add(-maxAge)) {
		r.AddError(b.ProbeID, check.Msg("measurement too old", check.Ctime(b.CheckTime)))
		return
	}
	r.AddOK(b.ProbeID, check.Msg("measurement fresh", check.Ctime(b.CheckTime)))
}

// EnsureList normalizes a value which may be a single element or a list of elements into a
// list. Null or absent values produce an empty list.
func EnsureList(raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] != '[' {
		return []json.RawMessage{raw}, nil
	}
	var l []json.RawMessage
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return l, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// scalar renders a JSON string or number as text.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.New("expected a string or number")
	}
	return n.String(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func expectation(want, got string) string {
	return fmt.Sprintf("desired (%s), real (%s)", want, got)
}
