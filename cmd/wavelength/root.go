package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"wavelength/internal/config"
	"wavelength/internal/rendezvous"
	"wavelength/internal/telemetry"
)

type options struct {
	identity  string
	autostart int
	cardTag   string
	roomTTL   time.Duration
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "wavelength",
		Short:         "Host or join a peer-to-peer game of Wavelength.",
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.Validate()
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "display additional output (env: WAVELENGTH_VERBOSE)")
	pfs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP HTTP endpoint for traces (env: WAVELENGTH_OTEL_ENDPOINT)")
	pfs.BoolVar(&cfg.OTelEnabled, "otel-enabled", cfg.OTelEnabled, "record traces (env: WAVELENGTH_OTEL_ENABLED)")
	pfs.StringVar(&cfg.RendezvousURL, "rendezvous-url", cfg.RendezvousURL, "rendezvous directory base URL (env: WAVELENGTH_RENDEZVOUS_URL)")
	pfs.StringVarP(&opts.identity, "name", "n", "", "display name (env: WAVELENGTH_NAME)")
	bindFlags(pfs)

	cmd.AddCommand(newHostCmd(cfg, opts), newJoinCmd(cfg, opts), newRendezvousCmd(cfg, opts))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wavelength v{{.Version}}\n")
	return cmd
}

// bindFlags lets WAVELENGTH_* variables fill any flag not set on the
// command line.
func bindFlags(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("WAVELENGTH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// directory falls back to an in-process directory, so room codes are only
// resolvable by this process when no rendezvous URL is set.
func directory(cfg *config.Config) rendezvous.Directory {
	if cfg.RendezvousURL == "" {
		return rendezvous.NewMemory()
	}
	return rendezvous.NewHTTPDirectory(cfg.RendezvousURL)
}

func setupTelemetry(ctx context.Context, cfg *config.Config, service string) func() {
	shutdown, err := telemetry.Setup(ctx, service, cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown failed: %v", err)
		}
	}
}
