package config

import (
    "fmt"
    "time"

    "github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
    LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
    HTTP     HTTP     `yaml:"http"`
    Sessions Sessions `yaml:"sessions"`
}

type HTTP struct {
    Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
    AllowedOrigin   string        `yaml:"allowed-origin" env:"HTTP_ALLOWED_ORIGIN"`
    Heartbeat       time.Duration `yaml:"heartbeat" env:"HTTP_HEARTBEAT" env-default:"15s"`
    ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Sessions struct {
    TTL           time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"1h"`
    SweepInterval time.Duration `yaml:"sweep-interval" env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`
}

// Load reads the yaml file at path and applies environment overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
    conf := &Config{}
    if path == "" {
        if err := cleanenv.ReadEnv(conf); err != nil {
            return nil, fmt.Errorf("unable to read environment: %w", err)
        }
        return conf, nil
    }
    if err := cleanenv.ReadConfig(path, conf); err != nil {
        return nil, fmt.Errorf("unable to load config file: %w", err)
    }
    return conf, nil
}

// MustLoad - load all configurations, panicking on failure.
func MustLoad(path string) *Config {
    conf, err := Load(path)
    if err != nil {
        panic(err)
    }
    return conf
}

// Usage describes every setting and its environment variable.
func Usage() string {
    text, err := cleanenv.GetDescription(&Config{}, nil)
    if err != nil {
        return ""
    }
    return text
}
