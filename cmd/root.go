package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alde/glassmap/internal/config"
)

var (
	cfgFile string
	verbose bool

	appConfig    *config.Config
	appConfigErr error
	logger       = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "glassmap",
	Short: "Generate liquid-glass displacement and specular maps",
	Long: `Glassmap generates the displacement and specular maps behind the
liquid-glass refraction effect, and the SVG filter that applies them.

Currently supports:
- Single map pairs and batches of presets in PNG, WebP, BMP and TIFF
- SVG filter definitions with embedded data URLs
- Offline previews over a photo or a test pattern
- An HTTP service that renders maps on demand`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.glassmap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads .env, sets up logging and reads the config file.
// Errors are kept for loadConfig so that --help still works with a
// broken config.
func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	verbose = viper.GetBool("verbose")

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := config.DiscoverPath(cfgFile)
	appConfig, appConfigErr = config.Load(path)
	if appConfigErr == nil {
		logger.Debug("configuration loaded", slog.String("path", path))
	}
}

func loadConfig() (*config.Config, error) {
	if appConfigErr != nil {
		return nil, fmt.Errorf("config error: %w", appConfigErr)
	}
	if appConfig == nil {
		return config.Default(), nil
	}
	return appConfig, nil
}
