package measurement

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/digitalocean/atlas-check/pkg/types/check"
)

// ExpiryLayout is the layout of a certificate's notAfter field in ssl results.
const ExpiryLayout = "20060102150405Z"

// SSL is an sslcert measurement, describing the first certificate presented.
type SSL struct {
	*Base
	CommonName string    `json:"common_name"`
	Expiry     time.Time `json:"expiry"`
	SHA1       string    `json:"sha1"`
}

// NewSSL is a Constructor for ssl measurements.
func NewSSL(probeID string, payload json.RawMessage) (Measurement, error) {
	b, err := newBase(KindSSL, probeID, payload)
	if err != nil {
		return nil, err
	}
	var certs [][]json.RawMessage
	if err := b.field(2, &certs); err != nil {
		return nil, fmt.Errorf("reading certificates: %w", err)
	}
	if len(certs) == 0 || len(certs[0]) < 6 {
		return nil, errors.New("reading certificates: truncated certificate")
	}
	cert := certs[0]
	s := &SSL{Base: b}
	var expiry string
	for _, f := range []struct {
		i    int
		name string
		v    *string
	}{
		{0, "common name", &s.CommonName},
		{4, "expiry", &expiry},
		{5, "sha1", &s.SHA1},
	} {
		if err := json.Unmarshal(cert[f.i], f.v); err != nil {
			return nil, fmt.Errorf("reading certificate %s: %w", f.name, err)
		}
	}
	if s.Expiry, err = time.Parse(ExpiryLayout, expiry); err != nil {
		return nil, fmt.Errorf("parsing certificate expiry: %w", err)
	}
	return s, nil
}

// Check compares the certificate against the expected hash, common name and expiry window.
func (s *SSL) Check(now time.Time, opts check.Options, r check.Reporter) {
	s.Base.Check(now, opts, r)
	if opts.SHA1Hash != "" {
		check.String(r, s.ProbeID, "sha1hash", opts.SHA1Hash, s.SHA1)
	}
	if opts.CommonName != "" {
		check.String(r, s.ProbeID, "cn", opts.CommonName, s.CommonName)
	}
	if opts.SSLExpiry != 0 {
		s.checkExpiry(now, opts.SSLExpiry, r)
	}
}

// checkExpiry treats a certificate expiring exactly now as expired. The warning window is
// measured backwards from now, so with a positive days it never matches a valid certificate.
func (s *SSL) checkExpiry(now time.Time, days int, r check.Reporter) {
	warnAt := now.Add(-time.Duration(days) * 24 * time.Hour)
	expiry := check.Ctime(s.Expiry)
	switch {
	case !s.Expiry.After(now):
		r.AddError(s.ProbeID, check.Msg("certificate expired", expiry))
	case s.Expiry.Before(warnAt):
		r.AddWarn(s.ProbeID, check.Msg("certificate expires soon", expiry))
	default:
		r.AddOK(s.ProbeID, check.Msg("certificate expiry good", expiry))
	}
}
