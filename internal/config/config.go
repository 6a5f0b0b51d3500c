package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Search    SearchConfig    `yaml:"search"`
	LLM       LLMConfig       `yaml:"llm"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type SearchConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Rate        float64 `yaml:"rate"`          // searches per second
	Burst       int     `yaml:"burst"`         // token bucket capacity
	MaxInFlight int     `yaml:"max_in_flight"` // concurrent upstream calls
	NumResults  int     `yaml:"num_results"`   // results requested per query
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type CacheConfig struct {
	TTL Duration `yaml:"ttl"`
}

// Duration supports "48h"-style strings in YAML config.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment
// variables. Env vars override file values; secrets are expected via env.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "scry.db",
		},
		Search: SearchConfig{
			Rate:        1.0,
			Burst:       5,
			MaxInFlight: 5,
			NumResults:  10,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Cache: CacheConfig{
			TTL: Duration(7 * 24 * time.Hour),
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("SCRY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("SCRY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("SCRY_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("SCRY_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if enabled := os.Getenv("SCRY_AUTH_ENABLED"); enabled != "" {
		parsed, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = parsed
	}
	if token := os.Getenv("SCRY_AUTH_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}
	if dbPath := os.Getenv("SCRY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if baseURL := os.Getenv("SCRY_SEARCH_BASE_URL"); baseURL != "" {
		cfg.Search.BaseURL = baseURL
	}
	if apiKey := os.Getenv("EXA_API_KEY"); apiKey != "" {
		cfg.Search.APIKey = apiKey
	}
	if rateStr := os.Getenv("SCRY_SEARCH_RATE"); rateStr != "" {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_SEARCH_RATE: %w", err)
		}
		cfg.Search.Rate = rate
	}
	if burstStr := os.Getenv("SCRY_SEARCH_BURST"); burstStr != "" {
		burst, err := strconv.Atoi(burstStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_SEARCH_BURST: %w", err)
		}
		cfg.Search.Burst = burst
	}
	if inFlightStr := os.Getenv("SCRY_SEARCH_MAX_IN_FLIGHT"); inFlightStr != "" {
		inFlight, err := strconv.Atoi(inFlightStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_SEARCH_MAX_IN_FLIGHT: %w", err)
		}
		cfg.Search.MaxInFlight = inFlight
	}
	if numStr := os.Getenv("SCRY_SEARCH_NUM_RESULTS"); numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_SEARCH_NUM_RESULTS: %w", err)
		}
		cfg.Search.NumResults = num
	}
	if baseURL := os.Getenv("SCRY_LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if model := os.Getenv("SCRY_LLM_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if ttlStr := os.Getenv("SCRY_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRY_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = Duration(ttl)
	}
	if level := os.Getenv("SCRY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// Validate rejects configurations that cannot start a working server.
func (c Config) Validate() error {
	if c.Transport.Mode != "stdio" && c.Transport.Mode != "http" {
		return fmt.Errorf("transport mode must be stdio or http, got %q", c.Transport.Mode)
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		return fmt.Errorf("auth enabled but no token configured")
	}
	if c.Search.Rate <= 0 {
		return fmt.Errorf("search rate must be positive, got %v", c.Search.Rate)
	}
	if c.Search.MaxInFlight <= 0 {
		return fmt.Errorf("search max_in_flight must be positive, got %d", c.Search.MaxInFlight)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
