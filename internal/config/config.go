package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	ServerURL      string        `mapstructure:"server_url"`
	PushURL        string        `mapstructure:"push_url"`
	AuthToken      string        `mapstructure:"auth_token"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	GracePeriod    time.Duration `mapstructure:"grace_period"`
	CompletionPoll time.Duration `mapstructure:"completion_poll"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("push_url", "ws://localhost:8080/ws")
	// registered so AutomaticEnv can populate it via BLOCKROOM_AUTH_TOKEN
	v.SetDefault("auth_token", "")
	v.SetDefault("poll_interval", "500ms")
	v.SetDefault("request_timeout", "5s")
	v.SetDefault("reconnect_delay", "2s")
	v.SetDefault("grace_period", "10s")
	v.SetDefault("completion_poll", "2s")

	v.SetEnvPrefix("BLOCKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus environment are enough to run; the file is optional.
		fmt.Fprintf(os.Stderr, "config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
