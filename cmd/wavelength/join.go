package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wavelength/internal/config"
	"wavelength/internal/node"
	"wavelength/internal/session"
)

func newJoinCmd(cfg *config.Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <room code | ws url>",
		Short: "Join a hosted match.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(cmd.Context(), cfg, opts, args[0])
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&cfg.EstimateThrottleMS, "estimate-throttle-ms", cfg.EstimateThrottleMS, "minimum gap between pointer updates (env: WAVELENGTH_ESTIMATE_THROTTLE_MS)")
	bindFlags(fs)
	return cmd
}

func runJoin(ctx context.Context, cfg *config.Config, opts *options, target string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer setupTelemetry(ctx, cfg, "wavelength-participant")()

	self, err := selfParticipant(opts)
	if err != nil {
		return err
	}
	con := newConsole(os.Stdout)
	sessCfg := session.DefaultConfig()
	sessCfg.EstimateThrottle = cfg.EstimateThrottle()
	sessCfg.OnChange = con.changed

	p, err := node.Join(ctx, node.JoinOptions{
		Self:      self,
		Target:    target,
		Directory: directory(cfg),
		Session:   sessCfg,
	})
	if err != nil {
		return err
	}
	defer p.Close()
	con.sess = p.Session()
	fmt.Printf("connected as %s\n", self.Identity)

	go con.run(ctx, os.Stdin)
	select {
	case <-ctx.Done():
		return nil
	case <-p.Done():
		return session.ErrAuthorityLost
	}
}
