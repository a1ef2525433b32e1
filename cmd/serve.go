package cmd

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CityLensHQ/citylens-cli/internal/httpapi"
	"github.com/CityLensHQ/citylens-cli/internal/stats"
)

var (
	serveAddr string
	serveData string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	Long: `Serve loads the cleaned dataset once, then answers the dashboard endpoints
until interrupted. SIGINT or SIGTERM drains in-flight requests before the
process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = c.Addr()
		}
		data := serveData
		if data == "" {
			data = c.CleanedCSVPath
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		engine, err := stats.Load(data)
		if err != nil {
			return err
		}
		logger.Info("Dataset loaded",
			zap.String("path", data),
			zap.Int("rows", engine.Rows()))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := httpapi.NewServer(engine, logger)
		if err := srv.Serve(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, host:port)")
	serveCmd.Flags().StringVar(&serveData, "data", "", "cleaned dataset path (default from config)")
}
