package config

import (
	"bytes"
	_ "embed"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	Log        LogConfig       `mapstructure:"log"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Upstream   UpstreamConfig  `mapstructure:"upstream"`
	Health     HealthConfig    `mapstructure:"health"`
	Quota      QuotaConfig     `mapstructure:"quota"`
	Safety     SafetyConfig    `mapstructure:"safety"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	EventsTopic  string        `mapstructure:"events_topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"`
}

// UpstreamConfig points at the WhatsApp Cloud (Graph) API used for account
// health lookups. Health calls are expensive and themselves rate limited, so
// the client carries a circuit breaker.
type UpstreamConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// HealthConfig holds the freshness windows for cached inbox health. The
// quality rating moves fast (short window); the tier ceiling moves rarely
// (long window).
type HealthConfig struct {
	RatingFreshness time.Duration `mapstructure:"rating_freshness"`
	TierFreshness   time.Duration `mapstructure:"tier_freshness"`
}

// QuotaConfig: DefaultDailyCap applies when a campaign has no explicit
// daily_limit. Absence of a limit is never "unlimited".
type QuotaConfig struct {
	DefaultDailyCap int `mapstructure:"default_daily_cap"`
}

type SafetyConfig struct {
	TierWarnPercent     int `mapstructure:"tier_warn_percent"`      // warn when recipients exceed this % of tier limit
	MaxBlockRatePercent int `mapstructure:"max_block_rate_percent"` // auto-pause threshold
	MinDeliverySample   int `mapstructure:"min_delivery_sample"`    // records required before block rate is trusted
	DegradationPauseSec int `mapstructure:"degradation_pause_sec"`  // auto-pause duration; <=0 means manual resume
}

type SchedulerConfig struct {
	ResumeSpec      string `mapstructure:"resume_spec"`
	HealthSpec      string `mapstructure:"health_spec"`
	DegradationSpec string `mapstructure:"degradation_spec"`
	RelaySpec       string `mapstructure:"relay_spec"`
	RelayBatchSize  int    `mapstructure:"relay_batch_size"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (CAMPGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (CAMPGW_*)
	v.SetEnvPrefix("CAMPGW")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
