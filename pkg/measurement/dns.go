package measurement

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/digitalocean/atlas-check/pkg/answer"
	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// RCodeNoError is the only rcode for which answers are parsed.
const RCodeNoError = "NOERROR"

// Question is the question section of a dns result.
type Question struct {
	QName  string `json:"qname"`
	QClass string `json:"qclass"`
	QType  string `json:"qtype"`
}

type dnsPayload struct {
	Question   *string         `json:"question"`
	Answer     json.RawMessage `json:"answer"`
	Authority  json.RawMessage `json:"authority"`
	Additional json.RawMessage `json:"additional"`
	RCode      *string         `json:"rcode"`
	Flags      *string         `json:"flags"`
}

// DNS holds the parts of a dns measurement common to every record type.
type DNS struct {
	*Base
	Question   Question        `json:"question"`
	RCode      string          `json:"rcode"`
	Flags      string          `json:"flags"`
	Authority  json.RawMessage `json:"authority,omitempty"`
	Additional json.RawMessage `json:"additional,omitempty"`
	// AnswerRaw is only populated when RCode is NOERROR.
	AnswerRaw []json.RawMessage `json:"-"`
}

func newDNS(kind Kind, probeID string, payload json.RawMessage) (*DNS, error) {
	b, err := newBase(kind, probeID, payload)
	if err != nil {
		return nil, err
	}
	var p dnsPayload
	if err := b.field(2, &p); err != nil {
		return nil, fmt.Errorf("reading dns result: %w", err)
	}
	switch {
	case p.Question == nil:
		return nil, errors.New("dns result missing question")
	case p.RCode == nil:
		return nil, errors.New("dns result missing rcode")
	case p.Flags == nil:
		return nil, errors.New("dns result missing flags")
	case p.Authority == nil:
		return nil, errors.New("dns result missing authority")
	case p.Additional == nil:
		return nil, errors.New("dns result missing additional")
	}
	q := strings.Fields(*p.Question)
	if len(q) != 3 {
		return nil, fmt.Errorf("unexpected dns question %q", *p.Question)
	}
	d := &DNS{
		Base:       b,
		Question:   Question{QName: q[0], QClass: q[1], QType: q[2]},
		RCode:      *p.RCode,
		Flags:      *p.Flags,
		Authority:  p.Authority,
		Additional: p.Additional,
	}
	if d.RCode == RCodeNoError {
		if p.Answer == nil {
			return nil, errors.New("dns result missing answer")
		}
		if d.AnswerRaw, err = EnsureList(p.Answer); err != nil {
			return nil, fmt.Errorf("reading dns answer: %w", err)
		}
	}
	return d, nil
}

// Check verifies the rcode and every requested flag.
func (d *DNS) Check(now time.Time, opts check.Options, r check.Reporter) {
	d.Base.Check(now, opts, r)
	if opts.RCode != "" {
		d.checkRCode(opts.RCode, r)
	}
	if opts.Flags != "" {
		d.checkFlags(opts.Flags, r)
	}
}

func (d *DNS) checkRCode(rcode string, r check.Reporter) {
	msg := check.Msg(expectation(rcode, d.RCode), "DNS RCODE")
	if d.RCode == rcode {
		r.AddOK(d.ProbeID, msg)
		return
	}
	r.AddError(d.ProbeID, msg)
}

func (d *DNS) checkFlags(flags string, r check.Reporter) {
	have := make(map[string]bool)
	for _, f := range strings.Fields(d.Flags) {
		have[f] = true
	}
	for _, f := range strings.Split(flags, ",") {
		if have[f] {
			r.AddOK(d.ProbeID, check.Msg("Flag found", f))
		} else {
			r.AddError(d.ProbeID, check.Msg("Flag missing", f))
		}
	}
}

// requirement is a record type which must be present in the answer when its option is set.
type requirement struct {
	rrtype string
	want   func(check.Options) string
}

type recordKind struct {
	newAnswer answer.Constructor
	requires  []requirement
}

var (
	requireA     = requirement{"A", func(o check.Options) string { return o.ARecord }}
	requireAAAA  = requirement{"AAAA", func(o check.Options) string { return o.AAAARecord }}
	requireCNAME = requirement{"CNAME", func(o check.Options) string { return o.CNAMERecord }}

	recordKinds = map[Kind]recordKind{
		KindA:      {answer.NewA, []requirement{requireA, requireCNAME}},
		KindAAAA:   {answer.NewAAAA, []requirement{requireAAAA, requireCNAME}},
		KindCNAME:  {answer.NewCNAME, []requirement{requireCNAME}},
		KindDS:     {newAnswer: answer.NewDS},
		KindDNSKEY: {newAnswer: answer.NewDNSKEY},
		KindSOA:    {newAnswer: answer.NewSOA},
	}
)

// DNSRecord is a dns measurement whose answers are typed for a record kind.
type DNSRecord struct {
	*DNS
	Answers []answer.Answer `json:"answers"`

	requires []requirement
}

func newDNSRecordConstructor(kind Kind) Constructor {
	return func(probeID string, payload json.RawMessage) (Measurement, error) {
		d, err := NewDNSRecord(kind, probeID, payload)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// NewDNSRecord parses a dns measurement, wrapping its answers for the record kind.
func NewDNSRecord(kind Kind, probeID string, payload json.RawMessage) (*DNSRecord, error) {
	rk, ok := recordKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported dns record kind %q", kind)
	}
	d, err := newDNS(kind, probeID, payload)
	if err != nil {
		return nil, err
	}
	rec := &DNSRecord{DNS: d, requires: rk.requires}
	for i, raw := range d.AnswerRaw {
		a, err := rk.newAnswer(probeID, raw)
		if err != nil {
			return nil, fmt.Errorf("reading dns answer %d: %w", i, err)
		}
		rec.Answers = append(rec.Answers, a)
	}
	return rec, nil
}

// Check runs the dns checks, each answer's checks and then reports required record types which
// are missing from the answer.
func (d *DNSRecord) Check(now time.Time, opts check.Options, r check.Reporter) {
	d.DNS.Check(now, opts, r)
	found := make(map[string]bool)
	for _, a := range d.Answers {
		a.Check(opts, r)
		found[a.RRType()] = true
	}
	for _, req := range d.requires {
		if req.want(opts) != "" && !found[req.rrtype] {
			r.AddError(d.ProbeID, fmt.Sprintf("No %s Records Found", req.rrtype))
		}
	}
}
