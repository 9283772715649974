package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wavelength/internal/config"
	"wavelength/internal/rendezvous"
)

func newRendezvousCmd(cfg *config.Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rendezvous",
		Short: "Run the room code directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRendezvous(cmd.Context(), cfg, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "address to listen on (env: WAVELENGTH_ADDR)")
	fs.DurationVar(&opts.roomTTL, "room-ttl", 12*time.Hour, "forget rooms older than this (env: WAVELENGTH_ROOM_TTL)")
	bindFlags(fs)
	return cmd
}

func runRendezvous(ctx context.Context, cfg *config.Config, opts *options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := rendezvous.NewMemory()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           rendezvous.NewServer(dir).Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		log.Printf("rendezvous listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := dir.Prune(opts.roomTTL); n > 0 && cfg.Verbose {
				log.Printf("pruned %d stale rooms", n)
			}
		case err := <-errs:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
}
