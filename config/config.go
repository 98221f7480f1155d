package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWSURL   = "wss://public-api.birdeye.so/socket"
	DefaultRESTURL = "https://public-api.birdeye.so"
	DefaultChain   = "solana"
)

type Config struct {
	App           AppConfig            `yaml:"app"`
	Birdeye       BirdeyeConfig        `yaml:"birdeye"`
	Reader        ReaderConfig         `yaml:"reader"`
	REST          RESTConfig           `yaml:"rest"`
	Channels      ChannelsConfig       `yaml:"channels"`
	Processor     ProcessorConfig      `yaml:"processor"`
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
	Logging       LoggingConfig        `yaml:"logging"`
	Metrics       MetricsConfig        `yaml:"metrics"`
	Dashboard     DashboardConfig      `yaml:"dashboard"`
	Kafka         KafkaConfig          `yaml:"kafka"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type BirdeyeConfig struct {
	APIKey  string `yaml:"api_key"`
	Chain   string `yaml:"chain"`
	WSURL   string `yaml:"ws_url"`
	RESTURL string `yaml:"rest_url"`
}

type ReaderConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	LocalIP          string        `yaml:"local_ip"`
	Retry            RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	Multiplier float64       `yaml:"multiplier"`
	// MaxElapsed bounds the total reconnect time; zero retries forever.
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

type RESTConfig struct {
	Timeout   time.Duration   `yaml:"timeout"`
	UserAgent string          `yaml:"user_agent"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

type ChannelsConfig struct {
	RawBuffer   int `yaml:"raw_buffer"`
	EventBuffer int `yaml:"event_buffer"`
}

type ProcessorConfig struct {
	LogEvents bool `yaml:"log_events"`
}

type LoggingConfig struct {
	Level          string           `yaml:"level"`
	Format         string           `yaml:"format"`
	Output         string           `yaml:"output"`
	MaxAge         int              `yaml:"max_age"`
	ReportInterval time.Duration    `yaml:"report_interval"`
	CloudWatch     CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

type MetricsConfig struct {
	ChannelSize         bool             `yaml:"channel_size"`
	ChannelSizeInterval time.Duration    `yaml:"channel_size_interval"`
	Prometheus          PrometheusConfig `yaml:"prometheus"`
}

// DashboardConfig controls the monitoring API that serves recent events,
// metrics, logs and host resource samples.
type DashboardConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Address         string        `yaml:"address"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	LogHistory      int           `yaml:"log_history"`
	MetricsHistory  int           `yaml:"metrics_history"`
	EventHistory    int           `yaml:"event_history"`
}

// KafkaConfig enables forwarding decoded events to a Kafka topic.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	Buffer       int           `yaml:"buffer"`
}

type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	return Config{
		App: AppConfig{Name: "birdeyeflow", Version: "dev"},
		Birdeye: BirdeyeConfig{
			Chain:   DefaultChain,
			WSURL:   DefaultWSURL,
			RESTURL: DefaultRESTURL,
		},
		Reader: ReaderConfig{
			HandshakeTimeout: 10 * time.Second,
			PingInterval:     20 * time.Second,
			ReadTimeout:      60 * time.Second,
			WriteTimeout:     10 * time.Second,
			Retry: RetryConfig{
				BaseDelay:  time.Second,
				MaxDelay:   30 * time.Second,
				Multiplier: 2,
			},
		},
		REST: RESTConfig{
			Timeout:   10 * time.Second,
			RateLimit: RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1},
		},
		Channels: ChannelsConfig{RawBuffer: 1024, EventBuffer: 1024},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "json",
			Output:         "stdout",
			ReportInterval: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			ChannelSize:         true,
			ChannelSizeInterval: 10 * time.Second,
			Prometheus:          PrometheusConfig{Addr: "0.0.0.0:2112"},
		},
		Dashboard: DashboardConfig{
			Address:         "0.0.0.0:8080",
			RefreshInterval: 5 * time.Second,
			LogHistory:      200,
			MetricsHistory:  200,
			EventHistory:    200,
		},
		Kafka: KafkaConfig{
			Topic:        "birdeye.events",
			BatchSize:    100,
			BatchTimeout: time.Second,
			Buffer:       1024,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&config)

	if err := validateConfig(&config, getAppEnvironment()); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BIRDEYE_API_KEY")); v != "" {
		cfg.Birdeye.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("BIRDEYE_CHAIN")); v != "" {
		cfg.Birdeye.Chain = v
	}
	if v := strings.TrimSpace(os.Getenv("AWS_REGION")); v != "" && cfg.Logging.CloudWatch.Region == "" {
		cfg.Logging.CloudWatch.Region = v
	}
	cfg.Birdeye.APIKey = strings.TrimSpace(cfg.Birdeye.APIKey)
	cfg.Birdeye.Chain = strings.ToLower(strings.TrimSpace(cfg.Birdeye.Chain))
}

func validateConfig(cfg *Config, env string) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if cfg.Birdeye.APIKey == "" {
		return fmt.Errorf("birdeye.api_key is required")
	}
	if cfg.Birdeye.Chain == "" {
		return fmt.Errorf("birdeye.chain is required")
	}
	if err := validateURL("birdeye.ws_url", cfg.Birdeye.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if IsProductionLike(env) && strings.HasPrefix(cfg.Birdeye.WSURL, "ws://") {
		return fmt.Errorf("birdeye.ws_url must use wss in %s", env)
	}
	if err := validateURL("birdeye.rest_url", cfg.Birdeye.RESTURL, "http", "https"); err != nil {
		return err
	}
	if cfg.Reader.PingInterval <= 0 {
		return fmt.Errorf("reader.ping_interval must be greater than 0")
	}
	if cfg.Reader.ReadTimeout <= cfg.Reader.PingInterval {
		return fmt.Errorf("reader.read_timeout must be greater than reader.ping_interval")
	}
	if cfg.Reader.Retry.BaseDelay <= 0 || cfg.Reader.Retry.MaxDelay < cfg.Reader.Retry.BaseDelay {
		return fmt.Errorf("reader.retry.base_delay must be greater than 0 and not above reader.retry.max_delay")
	}
	if cfg.REST.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rest.rate_limit.requests_per_second must be greater than 0")
	}
	if cfg.Channels.RawBuffer <= 0 {
		return fmt.Errorf("channels.raw_buffer must be greater than 0")
	}
	if cfg.Channels.EventBuffer <= 0 {
		return fmt.Errorf("channels.event_buffer must be greater than 0")
	}
	if cfg.Metrics.Prometheus.Enabled && cfg.Metrics.Prometheus.Addr == "" {
		return fmt.Errorf("metrics.prometheus.addr is required when prometheus is enabled")
	}
	if cfg.Dashboard.Enabled && cfg.Dashboard.EventHistory < 0 {
		return fmt.Errorf("dashboard.event_history must not be negative")
	}
	if cfg.Kafka.Enabled {
		if len(cfg.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if cfg.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
		if cfg.Kafka.Buffer <= 0 {
			return fmt.Errorf("kafka.buffer must be positive")
		}
	}
	if _, err := cfg.BuildSubscriptions(); err != nil {
		return err
	}
	return nil
}

func validateURL(key, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", key, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use one of %v, got %q", key, schemes, u.Scheme)
}
