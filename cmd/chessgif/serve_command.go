package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chessgif/internal/server"
	"chessgif/internal/worker"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			var (
				recorder worker.Recorder
				reader   server.HistoryReader
			)
			if store != nil {
				defer store.Close()
				recorder = store
				reader = store
			}

			session, err := ctx.newWorker(recorder)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := session.Start(runCtx); err != nil {
				return err
			}
			defer session.Stop()

			srv, err := server.New(cfg, session, reader, logger)
			if err != nil {
				return err
			}
			if err := srv.Start(runCtx); err != nil {
				return err
			}
			defer srv.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s (Ctrl+C to stop)\n", srv.Addr())
			<-runCtx.Done()
			return nil
		},
	}
}
