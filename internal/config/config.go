// Package config loads the assistant's configuration from a YAML file
// with environment variable overrides. Secrets live in env vars (or a
// local .env file); the YAML carries structure and defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Bedrock    BedrockConfig    `yaml:"bedrock"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	SES        SESConfig        `yaml:"ses"`
	Ports      PortsConfig      `yaml:"ports"`
	Forwarders ForwardersConfig `yaml:"forwarders"`
	SalesTeam  SalesTeamConfig  `yaml:"sales_team"`
	Market     MarketConfig     `yaml:"market"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// OpenAIConfig holds the chat completions settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// BedrockConfig selects AWS Bedrock inference instead of OpenAI.
type BedrockConfig struct {
	Enabled bool   `yaml:"enabled"`
	ModelID string `yaml:"model_id"`
	Region  string `yaml:"region"`
}

// StorageConfig selects the thread store backend.
type StorageConfig struct {
	Backend     string `yaml:"backend"` // file, memory, or dynamodb
	Path        string `yaml:"path"`    // file backend directory
	DynamoTable string `yaml:"dynamo_table"`
	Region      string `yaml:"region"`
	AWSProfile  string `yaml:"aws_profile"`
}

// RedisConfig holds the inbound queue and cross-process lock settings.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	QueueKey string `yaml:"queue_key"`
}

// PostgresConfig is the advisory-lock fallback when Redis is absent.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// SESConfig holds outbound delivery settings.
type SESConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Region      string `yaml:"region"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
	SalesDesk   string `yaml:"sales_desk"`
}

// PortsConfig points at the port directory, local file or S3 object.
type PortsConfig struct {
	File     string `yaml:"file"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Key    string `yaml:"s3_key"`
	S3Region string `yaml:"s3_region"`
}

// ForwardersConfig points at the forwarder roster file.
type ForwardersConfig struct {
	File string `yaml:"file"`
}

// SalesTeamConfig lists the sales roster inline.
type SalesTeamConfig struct {
	Members []SalesMember `yaml:"members"`
}

// SalesMember mirrors salesteam.Member for YAML loading.
type SalesMember struct {
	Name    string   `yaml:"name"`
	Email   string   `yaml:"email"`
	Regions []string `yaml:"regions"`
}

// MarketConfig holds the rates warehouse and news feed settings.
type MarketConfig struct {
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	NewsFeeds []string        `yaml:"news_feeds"`
	NewsLimit int             `yaml:"news_limit"`
}

// SnowflakeConfig is the rates warehouse connection.
type SnowflakeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Warehouse string `yaml:"warehouse"`
}

// Load reads and parses the configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o"
	}
	if cfg.Bedrock.Region == "" {
		cfg.Bedrock.Region = "us-east-1"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./data/threads"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.QueueKey == "" {
		cfg.Redis.QueueKey = "freightdesk:inbound"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.SES.FromAddress == "" {
		cfg.SES.FromAddress = "quotes@freightdesk.io"
	}
	if cfg.SES.FromName == "" {
		cfg.SES.FromName = "FreightDesk"
	}
	if cfg.Market.Snowflake.Database == "" {
		cfg.Market.Snowflake.Database = "FREIGHT_RATES"
	}
	if cfg.Market.Snowflake.Schema == "" {
		cfg.Market.Snowflake.Schema = "BENCHMARKS"
	}
	if cfg.Market.NewsLimit == 0 {
		cfg.Market.NewsLimit = 5
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file is read first if present, so secrets can live in .env
// locally and in real env vars in deployment. A missing config file is
// not an error; defaults plus env vars are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = &Config{}
		cfg.applyDefaults()
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("BEDROCK_MODEL_ID"); v != "" {
		cfg.Bedrock.ModelID = v
		cfg.Bedrock.Enabled = true
	}
	if v := os.Getenv("THREAD_STORE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("THREAD_STORE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("DYNAMO_TABLE"); v != "" {
		cfg.Storage.DynamoTable = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("FROM_ADDRESS"); v != "" {
		cfg.SES.FromAddress = v
	}
	if v := os.Getenv("SALES_DESK_ADDRESS"); v != "" {
		cfg.SES.SalesDesk = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Market.Snowflake.Password = v
	}
	return cfg, nil
}
