package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vgsales_dashboard/internal/analysis"
	"vgsales_dashboard/internal/logging"
)

const (
	EnvPrefix     = "VGSALES"
	DefaultSource = "https://raw.githubusercontent.com/MatheusFernandesCarillo/jogos-analise/main/Video_Games_Sales_as_at_22_Dec_2016.csv"
)

type Config struct {
	Source      string         `mapstructure:"source"`
	Snapshot    string         `mapstructure:"snapshot"`
	Franchises  string         `mapstructure:"franchises"`
	Addr        string         `mapstructure:"addr"`
	HTTPTimeout time.Duration  `mapstructure:"http_timeout"`
	UserAgent   string         `mapstructure:"user_agent"`
	Region      string         `mapstructure:"region"`
	Log         logging.Config `mapstructure:"log"`
}

// flagKeys maps config keys to the command-line flags that override them.
var flagKeys = map[string]string{
	"source":       "source",
	"snapshot":     "snapshot",
	"franchises":   "franchises",
	"addr":         "addr",
	"http_timeout": "http-timeout",
	"region":       "region",
	"log.level":    "log-level",
	"log.format":   "log-format",
	"log.file":     "log-file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", DefaultSource)
	v.SetDefault("snapshot", "")
	v.SetDefault("franchises", "franchises.yaml")
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("http_timeout", 30*time.Second)
	v.SetDefault("user_agent", "vgsales_dashboard/1.0")
	v.SetDefault("region", "Global")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
}

// Load resolves configuration from defaults, an optional YAML file,
// VGSALES_* environment variables and the flags in fs, in increasing order of
// precedence. Only flags changed on the command line override.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values every command depends on.
func (c Config) Validate() error {
	var errs []error
	if c.Source == "" && c.Snapshot == "" {
		errs = append(errs, errors.New("source: either source or snapshot is required"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr: empty address"))
	} else if _, err := net.ResolveTCPAddr("tcp", c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("addr: %w", err))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout: must be positive, got %s", c.HTTPTimeout))
	}
	if _, err := analysis.FindRegion(analysis.DefaultRegions(), c.Region); err != nil {
		errs = append(errs, fmt.Errorf("region: %w", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
