package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/alde/glassmap/pkg/encoder"
	"github.com/alde/glassmap/pkg/glassmap"
	"github.com/alde/glassmap/pkg/surface"
)

// EnvPrefix is prepended to every environment override, e.g.
// GLASSMAP_DEFAULTS_SIZE or GLASSMAP_SERVER_ADDR.
const EnvPrefix = "GLASSMAP"

type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Workers  int            `mapstructure:"workers" yaml:"workers"`
}

// DefaultsConfig holds the map parameters used when a request or flag
// leaves one out.
type DefaultsConfig struct {
	Size       int     `mapstructure:"size" yaml:"size"`
	Bezel      float64 `mapstructure:"bezel" yaml:"bezel"`
	Thickness  float64 `mapstructure:"thickness" yaml:"thickness"`
	Surface    string  `mapstructure:"surface" yaml:"surface"`
	LightAngle float64 `mapstructure:"light_angle" yaml:"light_angle"`
	Blur       float64 `mapstructure:"blur" yaml:"blur"`
	Format     string  `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	CacheSize int    `mapstructure:"cache_size" yaml:"cache_size"`
	MaxSize   int    `mapstructure:"max_size" yaml:"max_size"`
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("defaults.size", d.Defaults.Size)
	v.SetDefault("defaults.bezel", d.Defaults.Bezel)
	v.SetDefault("defaults.thickness", d.Defaults.Thickness)
	v.SetDefault("defaults.surface", d.Defaults.Surface)
	v.SetDefault("defaults.light_angle", d.Defaults.LightAngle)
	v.SetDefault("defaults.blur", d.Defaults.Blur)
	v.SetDefault("defaults.format", d.Defaults.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cache_size", d.Server.CacheSize)
	v.SetDefault("server.max_size", d.Server.MaxSize)

	v.SetDefault("workers", d.Workers)
}

// Default returns the built-in configuration without consulting the
// environment or any file.
func Default() *Config {
	g := glassmap.DefaultGeometry()
	return &Config{
		Defaults: DefaultsConfig{
			Size:       g.Size,
			Bezel:      g.BezelWidth,
			Thickness:  g.GlassThickness,
			Surface:    string(g.Surface),
			LightAngle: g.LightAngle,
			Format:     string(encoder.FormatPNG),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 256,
			MaxSize:   2048,
		},
	}
}

// Load reads the YAML file at path, applies GLASSMAP_* environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DiscoverPath picks the config file: the flag value, then $GLASSMAP_CONFIG,
// then $HOME/.glassmap/config.yaml.
func DiscoverPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	if envPath := os.Getenv(EnvPrefix + "_CONFIG"); envPath != "" {
		return envPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".glassmap", "config.yaml")
	}
	return filepath.Join(homeDir, ".glassmap", "config.yaml")
}

// Validate checks that the defaults describe a renderable map.
func (c *Config) Validate() error {
	if _, err := c.Geometry(); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}
	if c.Defaults.Blur < 0 {
		return fmt.Errorf("invalid defaults: blur must not be negative, got %v", c.Defaults.Blur)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be positive, got %d", c.Server.CacheSize)
	}
	if c.Server.MaxSize < 1 || c.Server.MaxSize > glassmap.MaxSize {
		return fmt.Errorf("server.max_size must be between 1 and %d, got %d", glassmap.MaxSize, c.Server.MaxSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Geometry returns the default map geometry.
func (c *Config) Geometry() (glassmap.Geometry, error) {
	st, err := surface.Parse(c.Defaults.Surface)
	if err != nil {
		return glassmap.Geometry{}, err
	}
	g := glassmap.Geometry{
		Size:           c.Defaults.Size,
		BezelWidth:     c.Defaults.Bezel,
		GlassThickness: c.Defaults.Thickness,
		Surface:        st,
		LightAngle:     c.Defaults.LightAngle,
	}
	if err := g.Validate(); err != nil {
		return glassmap.Geometry{}, err
	}
	return g, nil
}

// Format returns the default output format.
func (c *Config) Format() (encoder.Format, error) {
	return encoder.ParseFormat(c.Defaults.Format)
}
