package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	MinIO     MinIOConfig     `yaml:"minio"`
	Model     ModelConfig     `yaml:"model"`
	Responses ResponsesConfig `yaml:"responses"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port           int    `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	MaxImagePixels int64  `yaml:"max_image_pixels"` // width*height cap before decoding; negative disables
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// NATSConfig is optional; an empty URL disables event publishing.
type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ModelConfig locates the classifier artifact. When Path is missing on disk
// it is downloaded from URL at startup.
type ModelConfig struct {
	Path         string `yaml:"path"`
	MetadataPath string `yaml:"metadata_path"`
	URL          string `yaml:"url"`
	MetadataURL  string `yaml:"metadata_url"`
	ORTLibrary   string `yaml:"ort_library"`
}

// ResponsesConfig overrides the canned message table.
type ResponsesConfig struct {
	Messages map[string]string `yaml:"messages"`
	Fallback string            `yaml:"fallback"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Server.MaxImagePixels == 0 {
		cfg.Server.MaxImagePixels = 40_000_000
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = "fer-uploads"
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "models/face_emotion.onnx"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("FER_MAX_IMAGE_PIXELS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxImagePixels = n
		}
	}
	if v := os.Getenv("FER_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FER_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FER_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FER_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FER_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FER_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("FER_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("FER_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("FER_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("FER_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("FER_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		cfg.Model.URL = v
	}
	if v := os.Getenv("FER_MODEL_URL"); v != "" {
		cfg.Model.URL = v
	}
	if v := os.Getenv("FER_MODEL_METADATA_URL"); v != "" {
		cfg.Model.MetadataURL = v
	}
	if v := os.Getenv("FER_ORT_LIBRARY"); v != "" {
		cfg.Model.ORTLibrary = v
	}
	if v := os.Getenv("FER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
