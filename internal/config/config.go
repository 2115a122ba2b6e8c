package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql atau postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	Analytics struct {
		ChurnDays     int    `yaml:"churnDays"`     // default 90
		ReferenceDate string `yaml:"referenceDate"` // YYYY-MM-DD, empty = wall clock
	} `yaml:"analytics"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Analytics.ChurnDays == 0 {
		cfg.Analytics.ChurnDays = 90
	}
	return &cfg, nil
}

// ReferenceDate parses the analytics reference date. Zero time means the
// service should use the wall clock.
func (c *Config) ReferenceDate() (time.Time, error) {
	if c.Analytics.ReferenceDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", c.Analytics.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse analytics.referenceDate: %w", err)
	}
	return t, nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
