package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"blogsearch/internal/search"
)

const (
	EnvConfigPath = "BLOGSEARCH_CONFIG"
	EnvAPIKey     = "BLOGSEARCH_API_KEY"
	EnvAddr       = "BLOGSEARCH_ADDR"
	EnvLogLevel   = "BLOGSEARCH_LOG_LEVEL"

	DefaultPath    = "blogsearch.yaml"
	DefaultBaseURL = "https://dapi.kakao.com"
)

// ComponentConfig содержит базовые сетевые настройки для запуска сервиса
type ComponentConfig struct {
	Protocol string `yaml:"protocol"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}

// UpstreamConfig настройки внешнего API поиска по блогам
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	// RateLimit запросов в секунду; 0 отключает ограничение
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CLIConfig настройки для CLI (не сервис)
type CLIConfig struct {
	HistoryFile string `yaml:"history_file"`
}

// Config корень дерева конфигурации, соответствующий blogsearch.yaml
type Config struct {
	Upstream   UpstreamConfig  `yaml:"upstream"`
	WebAdapter ComponentConfig `yaml:"web_adapter"`
	Log        LogConfig       `yaml:"log"`
	CLI        CLIConfig       `yaml:"cli"`
}

func Default() Config {
	return Config{
		Upstream: UpstreamConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 5 * time.Second,
			Burst:   1,
		},
		WebAdapter: ComponentConfig{Protocol: "http", Host: "0.0.0.0", Port: 8080},
		Log:        LogConfig{Level: "info"},
		CLI:        CLIConfig{HistoryFile: ".blogsearch_history"},
	}
}

// Load читает YAML (путь из BLOGSEARCH_CONFIG или blogsearch.yaml), применяет
// переменные окружения и валидирует результат. Отсутствие файла допустимо.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	f, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(f, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Upstream.APIKey = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		host, port, err := splitHostPort(v)
		if err != nil {
			return &search.ConfigurationError{Field: EnvAddr, Reason: err.Error()}
		}
		c.WebAdapter.Host, c.WebAdapter.Port = host, port
	}
	return nil
}

// Validate проверяет то, без чего сервис не может стартовать
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		return &search.ConfigurationError{Field: "upstream.api_key", Reason: "credential is required (set " + EnvAPIKey + ")"}
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &search.ConfigurationError{Field: "upstream.base_url", Reason: fmt.Sprintf("invalid url %q", c.Upstream.BaseURL)}
	}
	if c.Upstream.Timeout < 0 {
		return &search.ConfigurationError{Field: "upstream.timeout", Reason: "must not be negative"}
	}
	if c.Upstream.RateLimit < 0 {
		return &search.ConfigurationError{Field: "upstream.rate_limit", Reason: "must not be negative"}
	}
	if c.WebAdapter.Port < 0 || c.WebAdapter.Port > 65535 {
		return &search.ConfigurationError{Field: "web_adapter.port", Reason: fmt.Sprintf("out of range: %d", c.WebAdapter.Port)}
	}
	return nil
}

// Address возвращает строку host:port
func (c ComponentConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FullURL возвращает строку protocol://host:port
func (c ComponentConfig) FullURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("bad port in %q: %w", addr, err)
	}
	return host, port, nil
}
