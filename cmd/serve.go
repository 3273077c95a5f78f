package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alde/glassmap/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve maps and filters over HTTP",
	Long: `Start an HTTP service that renders maps on demand.

Routes:
  GET /healthz
  GET /surfaces
  GET /presets
  GET /maps/displacement.{png|webp|bmp|tiff}?size=&bezel=&thickness=&surface=&light=&preset=
  GET /maps/specular.{png|webp|bmp|tiff}?...
  GET /filter.svg?...&blur=&id=

The light parameter is an angle in degrees, as for --light.

Examples:
  glassmap serve
  glassmap serve --addr :9000
  GLASSMAP_SERVER_CACHE_SIZE=1024 glassmap serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
