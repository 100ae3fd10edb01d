// Package config resolves broker, storage, engine and pool parameters from a
// YAML file, a .env file and GOSCRIBE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GOSCRIBE_BROKER_TOPIC.
const EnvPrefix = "GOSCRIBE"

// Broker drivers.
const (
	DriverRedis    = "redis"
	DriverRocketMQ = "rocketmq"
	DriverGateway  = "gateway"
	DriverMemory   = "memory"
)

// Engine drivers.
const (
	EngineDocker = "docker"
	EngineOpenAI = "openai"
)

type Config struct {
	Broker  BrokerConfig  `mapstructure:"broker"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Pool    PoolConfig    `mapstructure:"pool"`
	Result  ResultConfig  `mapstructure:"result"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Log     LogConfig     `mapstructure:"log"`
}

type BrokerConfig struct {
	Driver        string `mapstructure:"driver"`
	NameServer    string `mapstructure:"nameserver"`
	GRPCServer    string `mapstructure:"grpc_server"`
	RedisAddr     string `mapstructure:"redis_addr"`
	Topic         string `mapstructure:"topic"`
	Tag           string `mapstructure:"tag"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	ProducerGroup string `mapstructure:"producer_group"`
	SendTopic     string `mapstructure:"send_topic"`
	ResultTag     string `mapstructure:"result_tag"`

	ReconnectBackoff time.Duration `mapstructure:"reconnect_backoff"`
	HealthInterval   time.Duration `mapstructure:"health_interval"`
	PublishRetries   int           `mapstructure:"publish_retries"`
	PublishTimeout   time.Duration `mapstructure:"publish_timeout"`

	// Redis pending-entry recovery.
	ClaimInterval time.Duration `mapstructure:"claim_interval"`
	ClaimMinIdle  time.Duration `mapstructure:"claim_min_idle"`
	MaxDeliveries int64         `mapstructure:"max_deliveries"`
	MaxLen        int64         `mapstructure:"max_len"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

type EngineConfig struct {
	Driver      string `mapstructure:"driver"`
	ModelType   string `mapstructure:"model_type"`
	Device      string `mapstructure:"device"`
	ComputeType string `mapstructure:"compute_type"`
	BatchSize   int    `mapstructure:"batch_size"`
	Language    string `mapstructure:"language"`

	// docker driver
	Image    string `mapstructure:"image"`
	HFToken  string `mapstructure:"hf_token"`
	MemoryMB int64  `mapstructure:"memory_mb"`

	// openai driver
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type PoolConfig struct {
	MaxWorkers    int           `mapstructure:"max_workers"`
	QueueDepth    int           `mapstructure:"queue_depth"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
	TempDir       string        `mapstructure:"temp_dir"`
}

type ResultConfig struct {
	Format string `mapstructure:"format"`
}

type GatewayConfig struct {
	Listen     string  `mapstructure:"listen"`
	HTTPListen string  `mapstructure:"http_listen"`
	Rate       float64 `mapstructure:"rate"`
	Burst      float64 `mapstructure:"burst"`
	Backend    string  `mapstructure:"backend"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"broker.driver":            DriverRedis,
	"broker.nameserver":        "127.0.0.1:9876",
	"broker.grpc_server":       "localhost:8080",
	"broker.redis_addr":        "localhost:6379",
	"broker.topic":             "asr_transfer_topic",
	"broker.tag":               "",
	"broker.consumer_group":    "asr_consumer_group",
	"broker.producer_group":    "asr_producer_group",
	"broker.send_topic":        "asr_result_topic",
	"broker.result_tag":        "tag_asr_transfer_result",
	"broker.reconnect_backoff": 5 * time.Second,
	"broker.health_interval":   30 * time.Second,
	"broker.publish_retries":   0,
	"broker.publish_timeout":   10 * time.Second,
	"broker.claim_interval":    30 * time.Second,
	"broker.claim_min_idle":    10 * time.Minute,
	"broker.max_deliveries":    5,
	"broker.max_len":           100000,

	"storage.endpoint":   "",
	"storage.access_key": "",
	"storage.secret_key": "",
	"storage.secure":     false,

	"engine.driver":       EngineDocker,
	"engine.model_type":   "large-v2",
	"engine.device":       "cpu",
	"engine.compute_type": "float16",
	"engine.batch_size":   16,
	"engine.language":     "zh",
	"engine.image":        "ghcr.io/jim60105/whisperx:no_model",
	"engine.hf_token":     "",
	"engine.memory_mb":    0,
	"engine.api_key":      "",
	"engine.base_url":     "",

	"pool.max_workers":    10,
	"pool.queue_depth":    0,
	"pool.shutdown_grace": 30 * time.Second,
	"pool.temp_dir":       "",

	"result.format": "text",

	"gateway.listen":      ":8080",
	"gateway.http_listen": ":8081",
	"gateway.rate":        50.0,
	"gateway.burst":       100.0,
	"gateway.backend":     DriverRedis,

	"log.level":  "info",
	"log.format": "text",
}

// Resolver answers hierarchical key-path lookups such as "broker.topic".
type Resolver struct {
	v *viper.Viper
}

// NewResolver reads path (optional; a missing file is not an error) on top of
// the built-in defaults, a .env file in the working directory and the environment.
func NewResolver(path string) (*Resolver, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			slog.Info("Config file not found, using defaults", "path", path)
		}
	}
	return &Resolver{v: v}, nil
}

// String returns the value at key, or def when key is not set anywhere.
func (r *Resolver) String(key, def string) string {
	if !r.v.IsSet(key) {
		return def
	}
	return r.v.GetString(key)
}

func (r *Resolver) Int(key string, def int) int {
	if !r.v.IsSet(key) {
		return def
	}
	return r.v.GetInt(key)
}

func (r *Resolver) Bool(key string, def bool) bool {
	if !r.v.IsSet(key) {
		return def
	}
	return r.v.GetBool(key)
}

// Config decodes every section and validates it.
func (r *Resolver) Config() (Config, error) {
	var cfg Config
	if err := r.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	r.applyLegacy(&cfg)
	if cfg.Pool.QueueDepth <= 0 {
		cfg.Pool.QueueDepth = cfg.Pool.MaxWorkers
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyLegacy reads the rocketmq, minio, thread_pool, whisper and diarization
// sections of older config files. A key present there overrides the value it
// maps to.
func (r *Resolver) applyLegacy(cfg *Config) {
	b := &cfg.Broker
	b.NameServer = r.String("rocketmq.nameserver", b.NameServer)
	b.GRPCServer = r.String("rocketmq.grpc_server", b.GRPCServer)
	b.Topic = r.String("rocketmq.topic", b.Topic)
	b.Tag = r.String("rocketmq.tag", b.Tag)
	b.ConsumerGroup = r.String("rocketmq.consumer_group", b.ConsumerGroup)
	b.ProducerGroup = r.String("rocketmq.producer_group", b.ProducerGroup)
	b.SendTopic = r.String("rocketmq.send_topic", b.SendTopic)

	s := &cfg.Storage
	s.Endpoint = r.String("minio.endpoint", s.Endpoint)
	s.AccessKey = r.String("minio.access_key", s.AccessKey)
	s.SecretKey = r.String("minio.secret_key", s.SecretKey)
	s.Secure = r.Bool("minio.secure", s.Secure)

	cfg.Pool.MaxWorkers = r.Int("thread_pool.max_workers", cfg.Pool.MaxWorkers)

	e := &cfg.Engine
	e.ModelType = r.String("whisper.model_type", e.ModelType)
	e.Device = r.String("whisper.device", e.Device)
	e.ComputeType = r.String("whisper.compute_type", e.ComputeType)
	e.BatchSize = r.Int("whisper.batch_size", e.BatchSize)
	e.HFToken = r.String("diarization.hf_token", e.HFToken)
}

// Load is NewResolver followed by Config.
func Load(path string) (Config, error) {
	r, err := NewResolver(path)
	if err != nil {
		return Config{}, err
	}
	return r.Config()
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Broker.Driver {
	case DriverRedis, DriverRocketMQ, DriverGateway, DriverMemory:
	default:
		return fmt.Errorf("broker.driver: unknown driver %q", c.Broker.Driver)
	}
	switch c.Gateway.Backend {
	case DriverRedis, DriverRocketMQ, DriverMemory:
	default:
		return fmt.Errorf("gateway.backend: unsupported driver %q", c.Gateway.Backend)
	}
	switch c.Engine.Driver {
	case EngineDocker, EngineOpenAI:
	default:
		return fmt.Errorf("engine.driver: unknown driver %q", c.Engine.Driver)
	}
	switch c.Result.Format {
	case "text", "json":
	default:
		return fmt.Errorf("result.format: unknown format %q", c.Result.Format)
	}
	if c.Broker.Topic == "" || c.Broker.SendTopic == "" {
		return errors.New("broker.topic and broker.send_topic are required")
	}
	if c.Broker.MaxLen < 0 {
		return fmt.Errorf("broker.max_len must be >= 0, got %d", c.Broker.MaxLen)
	}
	if c.Pool.MaxWorkers < 1 {
		return fmt.Errorf("pool.max_workers must be >= 1, got %d", c.Pool.MaxWorkers)
	}
	if c.Broker.PublishRetries < 0 {
		return fmt.Errorf("broker.publish_retries must be >= 0, got %d", c.Broker.PublishRetries)
	}
	if c.Broker.ReconnectBackoff <= 0 {
		return fmt.Errorf("broker.reconnect_backoff must be positive, got %s", c.Broker.ReconnectBackoff)
	}
	return nil
}

// NewLogger builds the process logger from the log section.
func NewLogger(c LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
