package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	NewsAPI    NewsAPIConfig    `yaml:"newsapi"`
	BlueSky    BlueSkyConfig    `yaml:"bluesky"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Collect    CollectConfig    `yaml:"collect"`
	Relevance  RelevanceConfig  `yaml:"relevance"`
	Retention  RetentionConfig  `yaml:"retention"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifeMins int    `yaml:"conn_max_life_mins"`
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeMins) * time.Minute
}

// RedisConfig holds Redis settings for distributed locks and the read cache
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// StorageConfig holds S3 object storage settings for uploaded images
type StorageConfig struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PublicBase string `yaml:"public_base"`
	Enabled    bool   `yaml:"enabled"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// NewsAPIConfig holds newsapi.org credentials. An empty key disables the adapter.
type NewsAPIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c NewsAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether the NewsAPI adapter should run
func (c NewsAPIConfig) Enabled() bool {
	return c.APIKey != ""
}

// BlueSkyConfig holds BlueSky public API settings
type BlueSkyConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c BlueSkyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ClassifierConfig holds LLM topic classification settings.
// An empty model ID disables classification; mentions fall back to defaults.
type ClassifierConfig struct {
	ModelID        string `yaml:"model_id"`
	Region         string `yaml:"region"`
	AWSProfile     string `yaml:"aws_profile"`
	BatchSize      int    `yaml:"batch_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Enabled reports whether the LLM classifier is configured
func (c ClassifierConfig) Enabled() bool {
	return c.ModelID != ""
}

// CollectConfig holds the collection schedule and per-run limits
type CollectConfig struct {
	Hour                  int     `yaml:"hour"`
	Minute                int     `yaml:"minute"`
	Timezone              string  `yaml:"timezone"`
	MaxNewsPerPolitician  int     `yaml:"max_news_per_politician"`
	MaxPostsPerPolitician int     `yaml:"max_posts_per_politician"`
	RegionNewsLimit       int     `yaml:"region_news_limit"`
	DelaySeconds          float64 `yaml:"delay_seconds"`
	DelaySocialSeconds    float64 `yaml:"delay_social_seconds"`
	FanoutWorkers         int     `yaml:"fanout_workers"`
}

// Delay returns the inter-request delay for news adapters
func (c CollectConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// DelaySocial returns the inter-request delay for social adapters
func (c CollectConfig) DelaySocial() time.Duration {
	return time.Duration(c.DelaySocialSeconds * float64(time.Second))
}

// Location resolves the configured collection timezone
func (c CollectConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RelevanceConfig holds scoring knobs
type RelevanceConfig struct {
	WeightPreset   string `yaml:"weight_preset"` // "default", "breaking", "verified"
	FuzzyThreshold int    `yaml:"fuzzy_threshold"`
}

// RetentionConfig holds per-table retention windows in days
type RetentionConfig struct {
	NewsDays     int `yaml:"news_days"`
	PostsDays    int `yaml:"posts_days"`
	MentionsDays int `yaml:"mentions_days"`
	JobLogDays   int `yaml:"job_log_days"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifeMins == 0 {
		cfg.Database.ConnMaxLifeMins = 30
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "portal"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.NewsAPI.BaseURL == "" {
		cfg.NewsAPI.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.NewsAPI.TimeoutSeconds == 0 {
		cfg.NewsAPI.TimeoutSeconds = 20
	}
	if cfg.BlueSky.BaseURL == "" {
		cfg.BlueSky.BaseURL = "https://public.api.bsky.app"
	}
	if cfg.BlueSky.TimeoutSeconds == 0 {
		cfg.BlueSky.TimeoutSeconds = 30
	}
	if cfg.Classifier.Region == "" {
		cfg.Classifier.Region = "us-east-1"
	}
	if cfg.Classifier.BatchSize == 0 {
		cfg.Classifier.BatchSize = 5
	}
	if cfg.Classifier.TimeoutSeconds == 0 {
		cfg.Classifier.TimeoutSeconds = 60
	}
	if cfg.Collect.Hour == 0 && cfg.Collect.Minute == 0 {
		cfg.Collect.Hour = 6
	}
	if cfg.Collect.Timezone == "" {
		cfg.Collect.Timezone = "America/Sao_Paulo"
	}
	if cfg.Collect.MaxNewsPerPolitician == 0 {
		cfg.Collect.MaxNewsPerPolitician = 20
	}
	if cfg.Collect.MaxPostsPerPolitician == 0 {
		cfg.Collect.MaxPostsPerPolitician = 10
	}
	if cfg.Collect.RegionNewsLimit == 0 {
		cfg.Collect.RegionNewsLimit = 5
	}
	if cfg.Collect.DelaySeconds == 0 {
		cfg.Collect.DelaySeconds = 2.0
	}
	if cfg.Collect.DelaySocialSeconds == 0 {
		cfg.Collect.DelaySocialSeconds = 5.0
	}
	if cfg.Collect.FanoutWorkers == 0 {
		cfg.Collect.FanoutWorkers = 3
	}
	if cfg.Relevance.WeightPreset == "" {
		cfg.Relevance.WeightPreset = "default"
	}
	if cfg.Relevance.FuzzyThreshold == 0 {
		cfg.Relevance.FuzzyThreshold = 85
	}
	if cfg.Retention.NewsDays == 0 {
		cfg.Retention.NewsDays = 7
	}
	if cfg.Retention.PostsDays == 0 {
		cfg.Retention.PostsDays = 30
	}
	if cfg.Retention.MentionsDays == 0 {
		cfg.Retention.MentionsDays = 30
	}
	if cfg.Retention.JobLogDays == 0 {
		cfg.Retention.JobLogDays = 90
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		cfg.NewsAPI.APIKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
		cfg.Storage.Enabled = true
	}
	if v := os.Getenv("STORAGE_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("CLASSIFIER_MODEL_ID"); v != "" {
		cfg.Classifier.ModelID = v
	}
	if v := os.Getenv("CLASSIFIER_REGION"); v != "" {
		cfg.Classifier.Region = v
	}
	if v := os.Getenv("COLLECT_TIMEZONE"); v != "" {
		cfg.Collect.Timezone = v
	}

	return cfg, nil
}
