package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/releve-converter/internal/api"
	"github.com/insightdelivered/releve-converter/internal/categorizer"
	"github.com/insightdelivered/releve-converter/internal/converter"
	"github.com/insightdelivered/releve-converter/internal/extractor"
)

func newServeCommand(rt *runtime) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				rt.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address")

	return cmd
}

func runServe(ctx context.Context, rt *runtime) error {
	rules, err := rt.rules()
	if err != nil {
		return err
	}

	conv := converter.New(extractor.PDFSource{}, categorizer.New(rules), rt.log)
	app := api.NewHandler(conv, rt.log).NewApp()

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info().Str("addr", rt.cfg.Server.Addr).Msg("listening")
		errCh <- app.Listen(rt.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		rt.log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}
