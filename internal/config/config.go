package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	Secret     string `mapstructure:"secret"`

	DefaultDuration int           `mapstructure:"default_duration"` // minutes
	WarnThreshold   time.Duration `mapstructure:"warn_threshold"`
	PurgeGrace      time.Duration `mapstructure:"purge_grace"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`

	SendBuffer    int           `mapstructure:"send_buffer"`
	WriteDeadline time.Duration `mapstructure:"write_deadline"`

	DBPath string `mapstructure:"db_path"`

	TurnURL      string `mapstructure:"turn_url"`
	TurnUsername string `mapstructure:"turn_username"`
	TurnPassword string `mapstructure:"turn_password"`
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
	v.SetDefault("port", 3001)
	v.SetDefault("static_path", "./client/dist")
	v.SetDefault("default_duration", 30)
	v.SetDefault("warn_threshold", "2m")
	v.SetDefault("purge_grace", "5s")
	v.SetDefault("tick_interval", "1s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("write_deadline", "5s")
	v.SetDefault("turn_username", "user")
	v.SetDefault("turn_password", "pass")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath)
	return &cfg, nil
}
