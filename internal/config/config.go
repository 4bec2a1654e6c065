package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации аддонов.
type Config struct {
	Language     string             `yaml:"language"`
	LogLevel     string             `yaml:"log_level"` // консольный уровень компонентов
	Capacitor    CapacitorConfig    `yaml:"capacitor"`
	Replanting   ReplantingConfig   `yaml:"replanting"`
	Productivity ProductivityConfig `yaml:"productivity"`
	EventBus     EventBusConfig     `yaml:"eventbus"`
	Server       ServerConfig       `yaml:"server"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Grid         GridConfig         `yaml:"grid"`
}

type CapacitorConfig struct {
	MaxBlocks  int    `yaml:"max_blocks"`
	DelayTicks int    `yaml:"delay_ticks"`
	StackSize  int    `yaml:"stack_size"`
	RulesFile  string `yaml:"rules_file"`
}

type ReplantingConfig struct {
	DelayTicks int `yaml:"delay_ticks"`
}

type ProductivityConfig struct {
	SampleEvery int    `yaml:"sample_every_seconds"`
	ReportEvery int    `yaml:"report_every_seconds"`
	Store       string `yaml:"store"` // memory | redis
	RedisURL    string `yaml:"redis_url"`
	TTLHours    int    `yaml:"ttl_hours"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	TickRate    int `yaml:"tick_rate"`
	APIPort     int `yaml:"api_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type GridConfig struct {
	Backend string `yaml:"backend"` // memory | badger
	Path    string `yaml:"path"`    // каталог badger; пусто - in-memory
}

// Значения по умолчанию
const (
	DefaultLanguage           = "ja"
	DefaultMaxBlocks          = 100
	DefaultCapacitorDelay     = 1
	DefaultStackSize          = 64
	DefaultReplantDelay       = 40
	DefaultSampleEverySeconds = 1
	DefaultReportEverySeconds = 60 * 5
	DefaultTickRate           = 20
	DefaultStream             = "ADDONS_EVENTS"
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults заполняет незаданные поля
func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Capacitor.MaxBlocks <= 0 {
		c.Capacitor.MaxBlocks = DefaultMaxBlocks
	}
	if c.Capacitor.DelayTicks <= 0 {
		c.Capacitor.DelayTicks = DefaultCapacitorDelay
	}
	if c.Capacitor.StackSize <= 0 {
		c.Capacitor.StackSize = DefaultStackSize
	}
	if c.Replanting.DelayTicks <= 0 {
		c.Replanting.DelayTicks = DefaultReplantDelay
	}
	if c.Productivity.SampleEvery <= 0 {
		c.Productivity.SampleEvery = DefaultSampleEverySeconds
	}
	if c.Productivity.ReportEvery <= 0 {
		c.Productivity.ReportEvery = DefaultReportEverySeconds
	}
	if c.Productivity.Store == "" {
		c.Productivity.Store = "memory"
	}
	if c.Server.TickRate <= 0 {
		c.Server.TickRate = DefaultTickRate
	}
	if c.EventBus.Stream == "" {
		c.EventBus.Stream = DefaultStream
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "minecraft-addons"
	}
	if c.Grid.Backend == "" {
		c.Grid.Backend = "memory"
	}
}

// SecondsToTicks переводит секунды в тики при заданной частоте
func (s *ServerConfig) SecondsToTicks(seconds int) int {
	return seconds * s.TickRate
}

// GetAPIPort возвращает порт REST API с поддержкой fallback значений
func (s *ServerConfig) GetAPIPort() int {
	return getPortWithEnvFallback(s.APIPort, "ADDONS_API_PORT", 8088)
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "ADDONS_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV ADDONS_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ADDONS_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}
