package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// duration wraps time.Duration so TOML values parse from strings like "30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the on-disk configuration. Environment variables and flags
// layer on top: flags > environment > file > defaults.
type Config struct {
	Server       serverConfig        `toml:"server"`
	TLS          tlsConfig           `toml:"tls"`
	Check        checkConfig         `toml:"check"`
	Cache        cacheConfig         `toml:"cache"`
	Repositories map[string][]string `toml:"repositories"`
}

type serverConfig struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
	Token  string `toml:"token"`
}

type tlsConfig struct {
	CACert   string `toml:"ca_cert"`
	Insecure bool   `toml:"insecure"`
}

type checkConfig struct {
	Workers int      `toml:"workers"`
	Timeout duration `toml:"timeout"`
}

type cacheConfig struct {
	Backend   string   `toml:"backend"` // file, redis or none
	Dir       string   `toml:"dir"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"` // host:port or a redis:// URL
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache: cacheConfig{
			Backend: "file",
			TTL:     duration{time.Hour},
		},
		Check: checkConfig{
			Timeout: duration{10 * time.Second},
		},
	}
}

// loadConfig reads the TOML config at path, or the default location when
// path is empty. A missing file at the default location is not an error;
// an explicitly given path must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			applyEnv(&cfg)
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Environment wins over
// the file but loses to flags, which the commands apply last.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HOUND_SERVER"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("HOUND_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("HOUND_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
}

// defaultConfigPath returns the config file location using XDG standard
// (~/.config/hound/hound.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, appName+".toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, appName+".toml"), nil
}
