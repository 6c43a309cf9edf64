// Package answer models the resource records found in the answer section of a DNS measurement.
package answer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/digitalocean/atlas-check/pkg/types/check"
	"github.com/iancoleman/strcase"
	"github.com/miekg/dns"
)

// Answer is a single typed resource record which knows how to check itself.
type Answer interface {
	// RRType is the record type tag, ex. "A" or "CNAME".
	RRType() string
	Check(opts check.Options, r check.Reporter)
}

// Constructor builds an Answer for probeID from one raw answer element.
type Constructor func(probeID string, raw json.RawMessage) (Answer, error)

// rawRR is the object form of an answer element.
type rawRR struct {
	Name  string `json:"name"`
	TTL   uint32 `json:"ttl"`
	Class string `json:"class"`
	Type  string `json:"type"`
	RData string `json:"rdata"`
}

// ParseRR parses an answer element, either an RR in presentation format or an object with
// name/ttl/class/type/rdata keys.
func ParseRR(raw json.RawMessage) (dns.RR, error) {
	raw = bytes.TrimSpace(raw)
	var text string
	switch {
	case len(raw) == 0:
		return nil, errors.New("empty answer")
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("decoding answer: %w", err)
		}
	case raw[0] == '{':
		var o rawRR
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, fmt.Errorf("decoding answer: %w", err)
		}
		if o.Type == "" {
			return nil, errors.New("answer missing type")
		}
		if o.Class == "" {
			o.Class = "IN"
		}
		text = fmt.Sprintf("%s %d %s %s %s", dns.Fqdn(o.Name), o.TTL, o.Class, o.Type, o.RData)
	default:
		return nil, fmt.Errorf("unexpected answer format: %s", raw)
	}
	rr, err := dns.NewRR(text)
	if err != nil {
		return nil, fmt.Errorf("parsing answer %q: %w", text, err)
	}
	if rr == nil {
		return nil, fmt.Errorf("no record in answer %q", text)
	}
	return rr, nil
}

// record holds what every answer type shares.
type record struct {
	probeID string
	rr      dns.RR
}

func newRecord(probeID string, raw json.RawMessage) (record, error) {
	rr, err := ParseRR(raw)
	if err != nil {
		return record{}, err
	}
	return record{probeID: probeID, rr: rr}, nil
}

func (r record) RRType() string {
	return dns.TypeToString[r.rr.Header().Rrtype]
}

// RR returns the underlying parsed record.
func (r record) RR() dns.RR {
	return r.rr
}

type field struct {
	name string
	want string
	got  string
}

// checkFields compares each field which has an expectation set.
func (r record) checkFields(rep check.Reporter, fields ...field) {
	for _, f := range fields {
		if f.want == "" {
			continue
		}
		check.String(rep, r.probeID, strcase.ToSnake(f.name), f.want, f.got)
	}
}

// checkAlgorithm accepts either the numeric algorithm or its mnemonic.
func (r record) checkAlgorithm(rep check.Reporter, want string, got uint8) {
	if want == "" {
		return
	}
	num := strconv.Itoa(int(got))
	if strings.EqualFold(want, dns.AlgorithmToString[got]) {
		want = num
	}
	check.String(rep, r.probeID, "algorithm", want, num)
}

func cnameTarget(rr dns.RR) string {
	if c, ok := rr.(*dns.CNAME); ok {
		return c.Target
	}
	return ""
}

// A is an answer from an A lookup. The set may include the CNAME chain leading to the address.
type A struct {
	record
	Address string
	Target  string
}

// NewA is a Constructor for A answers.
func NewA(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	a := &A{record: rec, Target: cnameTarget(rec.rr)}
	if rr, ok := rec.rr.(*dns.A); ok {
		a.Address = rr.A.String()
	}
	return a, nil
}

func (a *A) Check(opts check.Options, r check.Reporter) {
	switch a.RRType() {
	case "A":
		a.checkFields(r, field{"ARecord", opts.ARecord, a.Address})
	case "CNAME":
		a.checkFields(r, field{"CNAMERecord", opts.CNAMERecord, a.Target})
	}
}

// AAAA is an answer from an AAAA lookup.
type AAAA struct {
	record
	Address string
	Target  string
}

// NewAAAA is a Constructor for AAAA answers.
func NewAAAA(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	a := &AAAA{record: rec, Target: cnameTarget(rec.rr)}
	if rr, ok := rec.rr.(*dns.AAAA); ok {
		a.Address = rr.AAAA.String()
	}
	return a, nil
}

func (a *AAAA) Check(opts check.Options, r check.Reporter) {
	switch a.RRType() {
	case "AAAA":
		a.checkFields(r, field{"AAAARecord", opts.AAAARecord, a.Address})
	case "CNAME":
		a.checkFields(r, field{"CNAMERecord", opts.CNAMERecord, a.Target})
	}
}

// CNAME is an answer from a CNAME lookup.
type CNAME struct {
	record
	Target string
}

// NewCNAME is a Constructor for CNAME answers.
func NewCNAME(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	return &CNAME{record: rec, Target: cnameTarget(rec.rr)}, nil
}

func (c *CNAME) Check(opts check.Options, r check.Reporter) {
	if c.RRType() == "CNAME" {
		c.checkFields(r, field{"CNAMERecord", opts.CNAMERecord, c.Target})
	}
}

// DS is a delegation signer answer.
type DS struct {
	record
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     string
}

// NewDS is a Constructor for DS answers.
func NewDS(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	d := &DS{record: rec}
	if rr, ok := rec.rr.(*dns.DS); ok {
		d.KeyTag = rr.KeyTag
		d.Algorithm = rr.Algorithm
		d.DigestType = rr.DigestType
		d.Digest = rr.Digest
	}
	return d, nil
}

func (d *DS) Check(opts check.Options, r check.Reporter) {
	if d.RRType() != "DS" {
		return
	}
	d.checkFields(r, field{"Keytag", opts.KeyTag, strconv.Itoa(int(d.KeyTag))})
	d.checkAlgorithm(r, opts.Algorithm, d.Algorithm)
	d.checkFields(r,
		field{"DigestType", opts.DigestType, strconv.Itoa(int(d.DigestType))},
		field{"Digest", opts.Digest, d.Digest},
	)
}

// DNSKEY is a zone key answer.
type DNSKEY struct {
	record
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey string
	KeyTag    uint16
}

// NewDNSKEY is a Constructor for DNSKEY answers.
func NewDNSKEY(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	k := &DNSKEY{record: rec}
	if rr, ok := rec.rr.(*dns.DNSKEY); ok {
		k.Flags = rr.Flags
		k.Protocol = rr.Protocol
		k.Algorithm = rr.Algorithm
		k.PublicKey = rr.PublicKey
		k.KeyTag = rr.KeyTag()
	}
	return k, nil
}

func (k *DNSKEY) Check(opts check.Options, r check.Reporter) {
	if k.RRType() != "DNSKEY" {
		return
	}
	k.checkFields(r, field{"Keytag", opts.KeyTag, strconv.Itoa(int(k.KeyTag))})
	k.checkAlgorithm(r, opts.Algorithm, k.Algorithm)
}

// SOA is a start of authority answer. Update holds the retry interval and NXDomain the
// negative caching ttl.
type SOA struct {
	record
	MName    string
	RName    string
	Serial   uint32
	Refresh  uint32
	Update   uint32
	Expire   uint32
	NXDomain uint32
}

// NewSOA is a Constructor for SOA answers.
func NewSOA(probeID string, raw json.RawMessage) (Answer, error) {
	rec, err := newRecord(probeID, raw)
	if err != nil {
		return nil, err
	}
	s := &SOA{record: rec}
	if rr, ok := rec.rr.(*dns.SOA); ok {
		s.MName = rr.Ns
		s.RName = rr.Mbox
		s.Serial = rr.Serial
		s.Refresh = rr.Refresh
		s.Update = rr.Retry
		s.Expire = rr.Expire
		s.NXDomain = rr.Minttl
	}
	return s, nil
}

func (s *SOA) Check(opts check.Options, r check.Reporter) {
	if s.RRType() != "SOA" {
		return
	}
	u := func(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
	s.checkFields(r,
		field{"Mname", opts.MName, s.MName},
		field{"Rname", opts.RName, s.RName},
		field{"Serial", opts.Serial, u(s.Serial)},
		field{"Refresh", opts.Refresh, u(s.Refresh)},
		field{"Update", opts.Update, u(s.Update)},
		field{"Expire", opts.Expire, u(s.Expire)},
		field{"Nxdomain", opts.NXDomain, u(s.NXDomain)},
	)
}
