package check

import (
	"fmt"
	"time"
)

// Status is a monitoring verdict in the nagios plugin convention.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the process exit code a monitoring supervisor expects for the status.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK, StatusWarning, StatusCritical:
		return int(s)
	default:
		return int(StatusUnknown)
	}
}

//go:generate mockgen -destination=mock_reporter.go -package=check . Reporter

// Reporter collects per-probe check outcomes.
type Reporter interface {
	AddOK(probeID, msg string)
	AddWarn(probeID, msg string)
	AddError(probeID, msg string)
}

// Options holds the thresholds and expectations measurements are checked against. Zero values
// disable the corresponding check.
type Options struct {
	MeasurementID     string
	Verbose           int
	MaxMeasurementAge time.Duration

	// ping
	RTTMin float64
	RTTMax float64
	RTTAvg float64

	// http
	StatusCode int

	// ssl
	CommonName string
	SHA1Hash   string
	SSLExpiry  int // days

	// dns
	Flags       string
	RCode       string
	ARecord     string
	AAAARecord  string
	CNAMERecord string

	// ds & dnskey
	KeyTag     string
	Algorithm  string
	DigestType string
	Digest     string

	// soa
	MName    string
	RName    string
	Serial   string
	Refresh  string
	Update   string
	Expire   string
	NXDomain string
}

// DefaultOptions returns the defaults applied by the command line.
func DefaultOptions() Options {
	return Options{
		MaxMeasurementAge: time.Hour,
		StatusCode:        200,
		SSLExpiry:         30,
	}
}

// Msg renders an outcome as "label (value)".
func Msg(label, value string) string {
	return fmt.Sprintf("%s (%s)", label, value)
}

// String reports ok when got equals want, otherwise an error.
func String(r Reporter, probeID, label, want, got string) {
	if want == got {
		r.AddOK(probeID, Msg(label, got))
		return
	}
	r.AddError(probeID, Msg(label, got))
}

// Ctime formats a timestamp the way outcome messages display it.
func Ctime(t time.Time) string {
	return t.Format(time.ANSIC)
}
