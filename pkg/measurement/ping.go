package measurement

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// Ping is a ping measurement. Only the average round trip time is reported by the latest
// results endpoint.
type Ping struct {
	*Base
	AvgRTT float64 `json:"avg_rtt"`
}

// NewPing is a Constructor for ping measurements.
func NewPing(probeID string, payload json.RawMessage) (Measurement, error) {
	b, err := newBase(KindPing, probeID, payload)
	if err != nil {
		return nil, err
	}
	p := &Ping{Base: b}
	if err := b.field(0, &p.AvgRTT); err != nil {
		return nil, fmt.Errorf("reading avg rtt: %w", err)
	}
	return p, nil
}

// Check compares the average rtt against every rtt threshold which is set. The min and max
// thresholds are compared against the average as well.
func (p *Ping) Check(now time.Time, opts check.Options, r check.Reporter) {
	p.Base.Check(now, opts, r)
	if opts.RTTMin > 0 {
		p.checkRTT("min", opts.RTTMin, r)
	}
	if opts.RTTMax > 0 {
		p.checkRTT("max", opts.RTTMax, r)
	}
	if opts.RTTAvg > 0 {
		p.checkRTT("avg", opts.RTTAvg, r)
	}
}

func (p *Ping) checkRTT(name string, rtt float64, r check.Reporter) {
	msg := check.Msg(expectation(formatFloat(rtt), formatFloat(p.AvgRTT)), "Ping "+name)
	if p.AvgRTT < rtt {
		r.AddOK(p.ProbeID, msg)
		return
	}
	r.AddError(p.ProbeID, msg)
}
