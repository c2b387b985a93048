package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddress string        `mapstructure:"listen_address"`
	DebugAddress  string        `mapstructure:"debug_address"`
	DataDir       string        `mapstructure:"data_dir"`
	Country       string        `mapstructure:"country"`
	RedisUrl      string        `mapstructure:"redis_url"`
	RedisPassword string        `mapstructure:"redis_password"`
	RabbitUrl     string        `mapstructure:"rabbit_url"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CacheSize     int           `mapstructure:"cache_size"`
	SaveInterval  time.Duration `mapstructure:"save_interval"`
	LogFile       string        `mapstructure:"log_file"`
	AdminApiKey   string        `mapstructure:"admin_api_key"`
	AdminSecret   string        `mapstructure:"admin_token_secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", ":8080")
	v.SetDefault("debug_address", ":8081")
	v.SetDefault("data_dir", "data")
	v.SetDefault("country", "se")
	v.SetDefault("redis_url", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("rabbit_url", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("cache_size", 2048)
	v.SetDefault("save_interval", time.Minute)
	v.SetDefault("log_file", "")
	v.SetDefault("admin_api_key", "")
	v.SetDefault("admin_token_secret", "")
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	// names used by the existing deployments
	v.BindEnv("rabbit_url", "RABBIT_URL", "RABBIT_HOST")
	v.BindEnv("redis_url", "REDIS_URL")
	v.BindEnv("redis_password", "REDIS_PASSWORD")
	v.BindEnv("country", "COUNTRY")
	v.BindEnv("listen_address", "LISTEN_ADDRESS")
	v.BindEnv("debug_address", "DEBUG_ADDRESS")
	v.BindEnv("admin_api_key", "ADMIN_API_KEY", "SLASK_API_KEY")
	v.BindEnv("admin_token_secret", "ADMIN_TOKEN_SECRET", "SLASK_TOKEN_HASH")
}

// Load reads defaults, an optional config.yaml and the environment, later
// sources overriding earlier ones. Extra paths are searched before the
// default locations.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range append(paths, ".", "$HOME/.slask-listings", "/etc/slask-listings") {
		v.AddConfigPath(os.ExpandEnv(p))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("cache_size must be positive, got %d", cfg.CacheSize)
	}
	if cfg.SaveInterval <= 0 {
		return nil, fmt.Errorf("save_interval must be positive, got %v", cfg.SaveInterval)
	}
	return cfg, nil
}
