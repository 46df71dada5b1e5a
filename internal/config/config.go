package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`

	Server struct {
		Port              int           `yaml:"port"`
		ReadTimeout       time.Duration `yaml:"readTimeout"`
		WriteTimeout      time.Duration `yaml:"writeTimeout"`
		IdleTimeout       time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"`
		MaxBodyBytes      int64         `yaml:"maxBodyBytes"`
		CORSOrigins       []string      `yaml:"corsOrigins"`
		// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP.
		// Leave off unless a proxy in front rewrites those headers.
		TrustProxyHeaders bool          `yaml:"trustProxyHeaders"`
	} `yaml:"server"`

	Database struct {
		// Driver is "postgres" or "mysql".
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	// Redis holds temp analyses. When Addr is empty an in-process store is used.
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"keyPrefix"`
		// MemoryEntries bounds the in-process store.
		MemoryEntries int `yaml:"memoryEntries"`
	} `yaml:"redis"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
		PublicURL  string `yaml:"publicURL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey      string  `yaml:"apiKey"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"baseURL"`
		MaxTokens   int     `yaml:"maxTokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"openai"`

	Vision struct {
		APIKey   string `yaml:"apiKey"`
		Attempts uint   `yaml:"attempts"`
	} `yaml:"vision"`

	Auth struct {
		// JWTSecret verifies HS256 access tokens locally.
		JWTSecret string `yaml:"jwtSecret"`
		// URL and AnonKey enable remote token validation against /auth/v1/user.
		URL     string `yaml:"url"`
		AnonKey string `yaml:"anonKey"`
	} `yaml:"auth"`

	Analysis struct {
		PreviewTTL      time.Duration `yaml:"previewTTL"`
		ReportRetention time.Duration `yaml:"reportRetention"`
	} `yaml:"analysis"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requestsPerSecond"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rateLimit"`
}

// Load reads the YAML file at path. ${VAR} references are expanded from the
// environment before parsing so secrets can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	// analysis calls two upstream APIs in sequence
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 10 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == "mysql" {
			c.Database.Port = 3306
		} else {
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "glowguide:temp:"
	}
	if c.Redis.MemoryEntries == 0 {
		c.Redis.MemoryEntries = 10000
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "analysis-images"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 4000
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.Vision.Attempts == 0 {
		c.Vision.Attempts = 3
	}
	if c.Analysis.PreviewTTL == 0 {
		c.Analysis.PreviewTTL = time.Hour
	}
	if c.Analysis.ReportRetention == 0 {
		c.Analysis.ReportRetention = 30 * 24 * time.Hour
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Analysis.PreviewTTL < 0 || c.Analysis.ReportRetention < 0 {
		return fmt.Errorf("config: analysis durations must be positive")
	}
	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MySQLDSN builds a go-sql-driver DSN. parseTime is required for DATETIME scans.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) DSN() string {
	if c.Database.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}
