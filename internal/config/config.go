// Package config loads relgraph settings from defaults, an optional YAML
// file, .env and RELGRAPH_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/matsen/relgraph/internal/flatten"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "relgraph"
	// ConfigName is the config file name without extension.
	ConfigName = "relgraph"
	// EnvPrefix prefixes environment overrides, e.g. RELGRAPH_SERVER_ADDR.
	EnvPrefix = "RELGRAPH"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete relgraph configuration.
type Config struct {
	Debug      bool     `mapstructure:"debug"`
	Exclusions []string `mapstructure:"exclusions"`
	PathsFile  string   `mapstructure:"paths_file"`

	Viewport Viewport `mapstructure:"viewport"`
	Canvas   Canvas   `mapstructure:"canvas"`
	Layout   Layout   `mapstructure:"layout"`
	Upload   Upload   `mapstructure:"upload"`
	Server   Server   `mapstructure:"server"`
	Parse    Parse    `mapstructure:"parse"`
}

// Viewport is the grid geometry for single-entity placement.
type Viewport struct {
	Width      float64 `mapstructure:"width"`
	NodeWidth  float64 `mapstructure:"node_width"`
	NodeHeight float64 `mapstructure:"node_height"`
	Padding    float64 `mapstructure:"padding"`
}

// Canvas is the center of circular placement.
type Canvas struct {
	CenterX float64 `mapstructure:"center_x"`
	CenterY float64 `mapstructure:"center_y"`
}

// Layout configures the external layout service. An empty endpoint disables
// it.
type Layout struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Rate     float64       `mapstructure:"rate"`
}

// Upload configures image storage.
type Upload struct {
	LocalDir string `mapstructure:"local_dir"`
	S3       S3     `mapstructure:"s3"`
}

// S3 configures the remote image bucket. An empty bucket disables it.
type S3 struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
	PublicURL string `mapstructure:"public_url"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Parse configures document parsing.
type Parse struct {
	Repair bool `mapstructure:"repair"`
}

// UserConfigDir returns the per-user config directory, respecting
// XDG_CONFIG_HOME and defaulting to ~/.config/relgraph.
func UserConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("exclusions", flatten.DefaultExcludedKeys())
	v.SetDefault("paths_file", "")
	v.SetDefault("viewport.width", 1200)
	v.SetDefault("viewport.node_width", 180)
	v.SetDefault("viewport.node_height", 80)
	v.SetDefault("viewport.padding", 40)
	v.SetDefault("canvas.center_x", 400)
	v.SetDefault("canvas.center_y", 300)
	v.SetDefault("layout.endpoint", "")
	v.SetDefault("layout.timeout", "10s")
	v.SetDefault("layout.rate", 2.0)
	v.SetDefault("upload.local_dir", filepath.Join(os.TempDir(), "relgraph-images"))
	v.SetDefault("upload.s3.bucket", "")
	v.SetDefault("upload.s3.region", "us-east-1")
	v.SetDefault("upload.s3.endpoint", "")
	v.SetDefault("upload.s3.access_key", "")
	v.SetDefault("upload.s3.secret_key", "")
	v.SetDefault("upload.s3.prefix", "images")
	v.SetDefault("upload.s3.public_url", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("parse.repair", false)
}

// Load reads configuration. If path is empty, relgraph.yml is looked up in
// the working directory and then in UserConfigDir; a missing file is not an
// error. An explicit path must exist.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(ExpandPath(path))
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := UserConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.PathsFile = ExpandPath(cfg.PathsFile)
	cfg.Upload.LocalDir = ExpandPath(cfg.Upload.LocalDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks geometry and rate settings.
func (c *Config) Validate() error {
	checks := []struct {
		key   string
		value float64
	}{
		{"viewport.width", c.Viewport.Width},
		{"viewport.node_width", c.Viewport.NodeWidth},
		{"viewport.node_height", c.Viewport.NodeHeight},
		{"viewport.padding", c.Viewport.Padding},
	}
	for _, check := range checks {
		if check.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, check.key, check.value)
		}
	}
	if c.Layout.Endpoint != "" {
		if c.Layout.Timeout <= 0 {
			return fmt.Errorf("%w: layout.timeout must be positive", ErrInvalid)
		}
		if c.Layout.Rate <= 0 {
			return fmt.Errorf("%w: layout.rate must be positive", ErrInvalid)
		}
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
