package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"wavelength/internal/cards"
	"wavelength/internal/config"
	"wavelength/internal/db"
	"wavelength/internal/node"
	"wavelength/internal/session"
)

func newHostCmd(cfg *config.Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host a match and accept participants.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHost(cmd.Context(), cfg, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "address to listen on (env: WAVELENGTH_ADDR)")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "websocket URL participants dial (env: WAVELENGTH_PUBLIC_URL)")
	fs.IntVar(&cfg.ClueSeconds, "clue-seconds", cfg.ClueSeconds, "time allowed to write clues (env: WAVELENGTH_CLUE_SECONDS)")
	fs.IntVar(&cfg.EstimateSeconds, "estimate-seconds", cfg.EstimateSeconds, "time allowed to estimate each turn (env: WAVELENGTH_ESTIMATE_SECONDS)")
	fs.IntVar(&cfg.EstimateThrottleMS, "estimate-throttle-ms", cfg.EstimateThrottleMS, "minimum gap between pointer updates (env: WAVELENGTH_ESTIMATE_THROTTLE_MS)")
	fs.StringVar(&cfg.Scoring, "scoring", cfg.Scoring, "scoring mode: shared or presenter (env: WAVELENGTH_SCORING)")
	fs.IntVar(&cfg.MinParticipants, "min-participants", cfg.MinParticipants, "participants needed to start (env: WAVELENGTH_MIN_PARTICIPANTS)")
	fs.IntVar(&cfg.MaxParticipants, "max-participants", cfg.MaxParticipants, "roster capacity (env: WAVELENGTH_MAX_PARTICIPANTS)")
	fs.BoolVar(&cfg.PowerUps, "power-ups", cfg.PowerUps, "enable modifiers (env: WAVELENGTH_POWER_UPS)")
	fs.StringVar(&cfg.CustomCard, "custom-card", cfg.CustomCard, "extra cards as left|right, separated by ';' (env: WAVELENGTH_CUSTOM_CARD)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "card library database (env: DATABASE_URL)")
	fs.StringVar(&opts.cardTag, "card-tag", "", "only deal library cards with this tag (env: WAVELENGTH_CARD_TAG)")
	fs.IntVar(&opts.autostart, "autostart", 0, "start the match once this many participants are present (env: WAVELENGTH_AUTOSTART)")
	bindFlags(fs)
	return cmd
}

func runHost(ctx context.Context, cfg *config.Config, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer setupTelemetry(ctx, cfg, "wavelength-host")()

	sessCfg, err := sessionConfig(ctx, cfg, opts)
	if err != nil {
		return err
	}
	self, err := selfParticipant(opts)
	if err != nil {
		return err
	}

	con := newConsole(os.Stdout)
	var autostarted atomic.Bool
	var host *node.Host
	sessCfg.OnChange = func(v session.View) {
		con.changed(v)
		if opts.autostart > 0 && v.Phase == session.PhaseLobby && len(v.Roster) >= opts.autostart && autostarted.CompareAndSwap(false, true) {
			go func() {
				if err := host.Session().StartMatch(); err != nil {
					log.Printf("autostart failed: %v", err)
				}
			}()
		}
	}
	host = node.NewHost(node.HostOptions{
		Self:      self,
		Addr:      cfg.Addr,
		PublicURL: cfg.PublicURL,
		Session:   sessCfg,
		Directory: directory(cfg),
	})
	con.sess = host.Session()

	go con.run(ctx, os.Stdin)
	return host.Run(ctx, func(code, joinURL string) {
		if code != "" {
			fmt.Printf("room %s (%s)\n", code, joinURL)
			return
		}
		fmt.Printf("participants join at %s\n", joinURL)
	})
}

func selfParticipant(opts *options) (session.Participant, error) {
	name := strings.TrimSpace(opts.identity)
	if name == "" {
		name = strings.TrimSpace(os.Getenv("USER"))
	}
	if name == "" {
		return session.Participant{}, errors.New("a display name is required (--name)")
	}
	return session.Participant{Identity: name}, nil
}

// sessionConfig turns runtime settings into session settings, loading the
// card pool from the library when a database is configured.
func sessionConfig(ctx context.Context, cfg *config.Config, opts *options) (session.Config, error) {
	sessCfg := session.DefaultConfig()
	sessCfg.ClueTimeout = cfg.ClueTimeout()
	sessCfg.EstimateTimeout = cfg.EstimateTimeout()
	sessCfg.EstimateThrottle = cfg.EstimateThrottle()
	sessCfg.MinParticipants = cfg.MinParticipants
	sessCfg.MaxParticipants = cfg.MaxParticipants
	sessCfg.PowerUps = cfg.PowerUps

	mode, err := session.ParseScoringMode(cfg.Scoring)
	if err != nil {
		return sessCfg, err
	}
	sessCfg.Scoring = mode

	custom, err := parseCustomCards(cfg.CustomCard)
	if err != nil {
		return sessCfg, err
	}
	sessCfg.Custom = custom

	source := cards.FallbackSource{Fallback: cards.BuiltinSource{}}
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
		if err != nil {
			log.Printf("card library unavailable, using built-in cards: %v", err)
		} else {
			source.Primary = db.CardSource{Conn: conn, Tag: opts.cardTag}
		}
	}
	pool, err := source.Cards(ctx)
	if err != nil {
		return sessCfg, fmt.Errorf("load cards: %w", err)
	}
	sessCfg.Pool = pool
	return sessCfg, nil
}

func parseCustomCards(raw string) ([]cards.Card, error) {
	var out []cards.Card
	for _, part := range strings.Split(raw, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		card, err := cards.ParseCard(part)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, nil
}
