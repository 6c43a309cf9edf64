package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/digitalocean/atlas-check/pkg/atlas"
	"github.com/digitalocean/atlas-check/pkg/checker"
	"github.com/digitalocean/atlas-check/pkg/config"
	"github.com/digitalocean/atlas-check/pkg/measurement"
	"github.com/digitalocean/atlas-check/pkg/storer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var ctx context.Context

var dump = &cobra.Command{
	Use:   "atlas-dump <measurement_id>",
	Short: "Write the parsed latest results of a measurement as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatal().Err(err).Msg("parsing config flag")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("loading config")
		}
		kind, err := cmd.Flags().GetString("kind")
		if err != nil {
			log.Fatal().Err(err).Msg("parsing kind flag")
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			log.Fatal().Err(err).Msg("parsing output flag")
		}
		s, err := storer.New(output)
		if err != nil {
			log.Fatal().Err(err).Msg("creating storer")
		}
		defer s.Close()

		client := atlas.NewClient(atlas.WithBaseURL(cfg.APIURL), atlas.WithTimeout(cfg.Timeout))
		records, err := client.Latest(ctx, args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("fetching measurement")
		}
		snapshot := storer.Snapshot{
			MeasurementID: args[0],
			Kind:          measurement.ParseKind(kind),
			TS:            time.Now().UTC(),
		}
		snapshot.Measurements = checker.NewChecker().Parse(ctx, records, snapshot.Kind, &snapshot)
		if err := s.SaveSnapshot(ctx, snapshot); err != nil {
			log.Fatal().Err(err).Msg("saving snapshot")
		}
	},
}

func init() {
	dump.Flags().String("kind", "", "measurement kind: ping, http, ssl, a, aaaa, cname, ds, dnskey or soa")
	dump.Flags().String("output", "stdout", "stdout, stderr or file:<path>")
	dump.Flags().String("config", "", "path to a YAML config file")
}

func main() {
	var stop func()
	ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ll := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx = ll.WithContext(ctx)

	if err := dump.Execute(); err != nil {
		log.Fatal().Err(err).Msg("dumping measurement")
	}
}
