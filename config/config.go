package config

import (
	"github.com/spf13/viper"
)

// Config carries the process settings. Every value has a default and
// can be overridden through the environment variable of the same name.
type Config struct {
	ITCHFile   string `mapstructure:"ITCH_FILE"`
	QueueSize  int    `mapstructure:"QUEUE_SIZE"`
	BatchSize  int    `mapstructure:"BATCH_SIZE"`
	ListenAddr string `mapstructure:"LISTEN_ADDR"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
}

// Load resolves the configuration from defaults and the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("ITCH_FILE", "01302019.NASDAQ_ITCH50")
	v.SetDefault("QUEUE_SIZE", 256)
	v.SetDefault("BATCH_SIZE", 2000)
	v.SetDefault("LISTEN_ADDR", ":8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "itchvwap")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
