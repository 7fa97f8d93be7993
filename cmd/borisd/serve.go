package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/duskhold/boris/pkg/health"
	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/reconciler"
	"github.com/duskhold/boris/pkg/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the world server: preflight, scheduler, reconciler, and admin HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	w, err := openWorld(configPath)
	if err != nil {
		return err
	}
	logger := log.WithComponent("serve")

	logger.Info().Msg("running preflight for rooms, chars, users")
	if err := w.Init(); err != nil {
		return err
	}
	logger.Info().
		Uint64("rooms_free", w.Rooms.FreeUnits()).
		Uint64("chars_free", w.Chars.FreeUnits()).
		Uint64("users_free", w.Users.FreeUnits()).
		Msg("preflight complete")

	sched := scheduler.New(4096)
	sched.Start()
	defer sched.Stop()

	rec := reconciler.New(w.cfg.Reconciler.Interval, w.reconcilerRegistries()...)
	rec.Start()
	defer rec.Stop()

	admin := health.NewServer(w.cfg.Listen.Admin, w.Checker)
	errCh := make(chan error, 1)
	go func() {
		if err := admin.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Info().Str("admin_addr", w.cfg.Listen.Admin).Msg("world server running")

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("admin server failed")
	}

	if err := admin.Close(); err != nil {
		logger.Error().Err(err).Msg("admin server shutdown error")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
