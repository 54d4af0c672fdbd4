// Package config holds typed application configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Objects  ObjectsConfig  `mapstructure:"objects"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig for the HTTP surface.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxConnections int           `mapstructure:"max_connections"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig for the relational store.
type DatabaseConfig struct {
	// DSN is a SQLite path, or ":memory:" for tests.
	DSN string `mapstructure:"dsn"`
}

// ObjectsConfig for encrypted blob storage.
type ObjectsConfig struct {
	// Backend selects the object store: "minio" or "local".
	Backend string `mapstructure:"backend"`

	// MinIO settings.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`

	// LocalDir is the base directory for the local backend.
	LocalDir string `mapstructure:"local_dir"`
}

// CryptoConfig for the encryption core.
type CryptoConfig struct {
	// KDFIterations tunes the PBKDF2 work factor. Zero means the default.
	KDFIterations int `mapstructure:"kdf_iterations"`

	// ArtifactSecret protects derived artifacts at rest. Required; the
	// process refuses to start without it.
	ArtifactSecret string `mapstructure:"artifact_secret"`
}

// AuthConfig for registration and sessions.
type AuthConfig struct {
	// AllowedEmailDomains restricts registration, e.g. ["edu", "ac.uk"].
	// Matching is by suffix of the domain part.
	AllowedEmailDomains []string      `mapstructure:"allowed_email_domains"`
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	BcryptCost          int           `mapstructure:"bcrypt_cost"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			MaxConnections: 256,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 25 * 1024 * 1024, // 25MB
		},
		Database: DatabaseConfig{
			DSN: "visavault.db",
		},
		Objects: ObjectsConfig{
			Backend:  "minio",
			Endpoint: "localhost:9000",
			Bucket:   "visavault-documents",
		},
		Crypto: CryptoConfig{},
		Auth: AuthConfig{
			AllowedEmailDomains: []string{"edu"},
			SessionTTL:          24 * time.Hour,
			BcryptCost:          12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Server.MaxConnections <= 0 {
		return errors.New("server.max_connections must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}

	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	switch c.Objects.Backend {
	case "minio":
		if c.Objects.Endpoint == "" {
			return errors.New("objects.endpoint is required for the minio backend")
		}
		if c.Objects.Bucket == "" {
			return errors.New("objects.bucket is required for the minio backend")
		}
	case "local":
		if c.Objects.LocalDir == "" {
			return errors.New("objects.local_dir is required for the local backend")
		}
	default:
		return fmt.Errorf("unknown objects.backend: %s", c.Objects.Backend)
	}

	if c.Crypto.ArtifactSecret == "" {
		return errors.New("crypto.artifact_secret is required")
	}

	if c.Crypto.KDFIterations < 0 {
		return errors.New("crypto.kdf_iterations must not be negative")
	}

	if len(c.Auth.AllowedEmailDomains) == 0 {
		return errors.New("auth.allowed_email_domains must not be empty")
	}

	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}
