package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	SubTablePath   string        `mapstructure:"SUB_TABLE_PATH"`
	LargeTablePath string        `mapstructure:"LARGE_TABLE_PATH"`
	SearchDepth    int           `mapstructure:"SEARCH_DEPTH"`
	SearchWorkers  int           `mapstructure:"SEARCH_WORKERS"`
	RedisUrl       string        `mapstructure:"REDIS_URL"`
	GameTTL        time.Duration `mapstructure:"GAME_TTL"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":      "8080",
	"SUB_TABLE_PATH":   "small_board_map.json",
	"LARGE_TABLE_PATH": "large_board_map.json",
	"SEARCH_DEPTH":     4,
	"SEARCH_WORKERS":   1,
	"REDIS_URL":        "",
	"GAME_TTL":         "24h",
	"LOG_LEVEL":        "info",
}

// Setup reads cfgPath if it exists, then lets environment variables override it.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SearchDepth < 1 {
		return fmt.Errorf("%w: SEARCH_DEPTH must be at least 1, got %d", ErrInvalidConfig, c.SearchDepth)
	}
	if c.SearchWorkers < 1 {
		return fmt.Errorf("%w: SEARCH_WORKERS must be at least 1, got %d", ErrInvalidConfig, c.SearchWorkers)
	}
	if c.SubTablePath == "" || c.LargeTablePath == "" {
		return fmt.Errorf("%w: score table paths are required", ErrInvalidConfig)
	}
	return nil
}
