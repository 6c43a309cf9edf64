package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/digitalocean/atlas-check/pkg/atlas"
	"github.com/digitalocean/atlas-check/pkg/checker"
	"github.com/digitalocean/atlas-check/pkg/config"
	"github.com/digitalocean/atlas-check/pkg/measurement"
	"github.com/digitalocean/atlas-check/pkg/message"
	"github.com/digitalocean/atlas-check/pkg/metrics"
	"github.com/digitalocean/atlas-check/pkg/types/check"
	"github.com/google/uuid"
	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the plugin exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		opts:   check.DefaultOptions(),
		now:    time.Now,
	}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stdout, "UNKNOWN: %s\n", err)
		return check.StatusUnknown.ExitCode()
	}
	return a.status.ExitCode()
}

type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	cfg         config.Config
	configPath  string
	logLevel    string
	metricsFile string
	maxAge      int

	opts   check.Options
	status check.Status
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "atlas-check",
		Short:             "Check the latest result of a RIPE Atlas measurement",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.CountVarP(&a.opts.Verbose, "verbose", "v", "increase verbosity")
	pf.IntVar(&a.maxAge, "max_measurement_age", 3600, "the max age of a measurement in seconds, 0 disables the check")
	pf.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level written to stderr (overrides config)")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	dnsCmd := &cobra.Command{
		Use:   "dns",
		Short: "DNS checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("a record type is required: A, AAAA, CNAME, DS, DNSKEY or SOA")
		},
	}
	dnsCmd.AddCommand(
		a.aCommand(),
		a.aaaaCommand(),
		a.cnameCommand(),
		a.dsCommand(),
		a.dnskeyCommand(),
		a.soaCommand(),
	)
	root.AddCommand(a.sslCommand(), a.pingCommand(), a.httpCommand(), dnsCmd)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	ll := zerolog.New(a.stderr).Level(level).With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
	a.ctx = ll.WithContext(a.ctx)
	return nil
}

// measurementCommand builds a command which checks a measurement of the command's kind.
func (a *app) measurementCommand(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <measurement_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE:  a.runCheck,
	}
}

func (a *app) sslCommand() *cobra.Command {
	cmd := a.measurementCommand("ssl", "SSL check")
	f := cmd.Flags()
	f.StringVar(&a.opts.CommonName, "common_name", "", "ensure a cert has this cn")
	f.IntVar(&a.opts.SSLExpiry, "sslexpiry", a.opts.SSLExpiry, "ensure certificate doesn't expire in x days")
	f.StringVar(&a.opts.SHA1Hash, "sha1hash", "", "ensure certificate has this sha1 hash")
	return cmd
}

func (a *app) pingCommand() *cobra.Command {
	cmd := a.measurementCommand("ping", "Ping check")
	f := cmd.Flags()
	f.Float64Var(&a.opts.RTTMax, "rtt_max", 0, "ensure the max rtt is below this")
	f.Float64Var(&a.opts.RTTMin, "rtt_min", 0, "ensure the min rtt is below this")
	f.Float64Var(&a.opts.RTTAvg, "rtt_avg", 0, "ensure the avg rtt is below this")
	return cmd
}

func (a *app) httpCommand() *cobra.Command {
	cmd := a.measurementCommand("http", "HTTP check")
	cmd.Flags().IntVar(&a.opts.StatusCode, "status_code", a.opts.StatusCode, "ensure the site returns this status code")
	return cmd
}

func (a *app) dnsCommand(use, short string) *cobra.Command {
	cmd := a.measurementCommand(use, short)
	f := cmd.Flags()
	f.StringVar(&a.opts.Flags, "flags", "", "comma separated list of flags to expect")
	f.StringVar(&a.opts.RCode, "rcode", "", "rcode to expect")
	return cmd
}

func (a *app) cnameFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.opts.CNAMERecord, "cname-record", "", "ensure the answer contains a CNAME record with this target")
}

func (a *app) aCommand() *cobra.Command {
	cmd := a.dnsCommand("A", "A DNS check")
	a.cnameFlag(cmd)
	cmd.Flags().StringVar(&a.opts.ARecord, "a-record", "", "ensure the answer contains an A record with this address")
	return cmd
}

func (a *app) aaaaCommand() *cobra.Command {
	cmd := a.dnsCommand("AAAA", "AAAA DNS check")
	a.cnameFlag(cmd)
	cmd.Flags().StringVar(&a.opts.AAAARecord, "aaaa-record", "", "ensure the answer contains an AAAA record with this address")
	return cmd
}

func (a *app) cnameCommand() *cobra.Command {
	cmd := a.dnsCommand("CNAME", "CNAME DNS check")
	a.cnameFlag(cmd)
	return cmd
}

func (a *app) dsCommand() *cobra.Command {
	cmd := a.dnsCommand("DS", "DS DNS check")
	f := cmd.Flags()
	f.StringVar(&a.opts.KeyTag, "keytag", "", "ensure the DS records have this key tag")
	f.StringVar(&a.opts.Algorithm, "algorithm", "", "ensure the DS records use this algorithm")
	f.StringVar(&a.opts.DigestType, "digest_type", "", "ensure the DS records have this digest type")
	f.StringVar(&a.opts.Digest, "digest", "", "ensure the DS records have this digest")
	return cmd
}

func (a *app) dnskeyCommand() *cobra.Command {
	cmd := a.dnsCommand("DNSKEY", "DNSKEY DNS check")
	f := cmd.Flags()
	f.StringVar(&a.opts.KeyTag, "keytag", "", "ensure the DNSKEY records have this key tag")
	f.StringVar(&a.opts.Algorithm, "algorithm", "", "ensure the DNSKEY records use this algorithm")
	return cmd
}

func (a *app) soaCommand() *cobra.Command {
	cmd := a.dnsCommand("SOA", "SOA DNS check")
	f := cmd.Flags()
	f.StringVar(&a.opts.MName, "mname", "", "ensure the soa has this mname")
	f.StringVar(&a.opts.RName, "rname", "", "ensure the soa has this rname")
	f.StringVar(&a.opts.Serial, "serial", "", "ensure the soa has this serial")
	f.StringVar(&a.opts.Refresh, "refresh", "", "ensure the soa has this refresh")
	f.StringVar(&a.opts.Update, "update", "", "ensure the soa has this update")
	f.StringVar(&a.opts.Expire, "expire", "", "ensure the soa has this expire")
	f.StringVar(&a.opts.NXDomain, "nxdomain", "", "ensure the soa has this nxdomain")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	ctx := a.ctx
	kind := measurement.ParseKind(cmd.Name())
	a.opts.MeasurementID = args[0]
	if err := a.validateThresholds(); err != nil {
		return err
	}
	a.opts.MaxMeasurementAge = time.Duration(a.maxAge) * time.Second
	if a.opts.RCode != "" {
		a.opts.RCode = strings.ToUpper(a.opts.RCode)
		if _, ok := dns.StringToRcode[a.opts.RCode]; !ok {
			return fmt.Errorf("unknown rcode %q", a.opts.RCode)
		}
	}

	c := checker.NewChecker(
		checker.WithNow(a.now),
		checker.WithFetcher(atlas.NewClient(
			atlas.WithBaseURL(a.cfg.APIURL),
			atlas.WithTimeout(a.cfg.Timeout),
		)),
	)
	msg := message.New(a.opts.Verbose)
	if err := c.Run(ctx, kind, a.opts, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("fetching measurement")
		fmt.Fprintf(a.stdout, "UNKNOWN: %s\n", err)
		a.status = check.StatusUnknown
		a.writeMetrics(ctx, kind, nil)
		return nil
	}
	status, err := msg.Render(a.stdout)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("rendering report")
	}
	a.status = status
	a.writeMetrics(ctx, kind, msg)
	return nil
}

// validateThresholds rejects negative thresholds. Zero leaves a check off.
func (a *app) validateThresholds() error {
	for _, t := range []struct {
		flag  string
		value float64
	}{
		{"max_measurement_age", float64(a.maxAge)},
		{"rtt_min", a.opts.RTTMin},
		{"rtt_max", a.opts.RTTMax},
		{"rtt_avg", a.opts.RTTAvg},
	} {
		if t.value < 0 {
			return fmt.Errorf("--%s must not be negative", t.flag)
		}
	}
	return nil
}

func (a *app) writeMetrics(ctx context.Context, kind measurement.Kind, c metrics.Counter) {
	if a.metricsFile == "" {
		return
	}
	m := metrics.New()
	m.Observe(a.opts.MeasurementID, string(kind), a.status, c)
	if err := m.WriteFile(a.metricsFile); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("path", a.metricsFile).Msg("writing metrics")
	}
}
