package measurement

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// StatusUnavailable is used when a result carries neither a response nor a dns error, which
// usually means the request timed out.
const StatusUnavailable = "500"

// HTTP is an http measurement.
type HTTP struct {
	*Base
	// Status is the response code, or the resolver error when no request was made.
	Status string `json:"status"`
}

// NewHTTP is a Constructor for http measurements.
func NewHTTP(probeID string, payload json.RawMessage) (Measurement, error) {
	b, err := newBase(KindHTTP, probeID, payload)
	if err != nil {
		return nil, err
	}
	var results []map[string]json.RawMessage
	if err := b.field(2, &results); err != nil {
		return nil, fmt.Errorf("reading http results: %w", err)
	}
	if len(results) == 0 {
		return nil, errors.New("reading http results: no results")
	}
	h := &HTTP{Base: b, Status: StatusUnavailable}
	for _, key := range []string{"res", "dnserr"} {
		v, ok := results[0][key]
		if !ok {
			continue
		}
		if h.Status, err = scalar(v); err != nil {
			return nil, fmt.Errorf("reading http %s: %w", key, err)
		}
		break
	}
	return h, nil
}

// Check compares the status against the expected status code.
func (h *HTTP) Check(now time.Time, opts check.Options, r check.Reporter) {
	h.Base.Check(now, opts, r)
	if opts.StatusCode != 0 {
		h.checkStatus(opts.StatusCode, r)
	}
}

func (h *HTTP) checkStatus(want int, r check.Reporter) {
	msg := check.Msg(expectation(strconv.Itoa(want), h.Status), "HTTP Status Code")
	got, err := strconv.Atoi(strings.TrimSpace(h.Status))
	if err != nil || got != want {
		r.AddError(h.ProbeID, msg)
		return
	}
	r.AddOK(h.ProbeID, msg)
}
