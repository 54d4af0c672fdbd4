package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader reads configuration from a file and the environment.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a config loader. configPath may be empty, in which
// case only defaults and environment variables apply.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envPrefix:  "VISAVAULT",
	}
}

// Load resolves the final configuration. Precedence, lowest to highest:
// defaults, config file, VISAVAULT_* environment variables
// (e.g. VISAVAULT_CRYPTO_ARTIFACT_SECRET overrides crypto.artifact_secret).
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("visavault")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/visavault")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine; env and defaults apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers defaults so viper can merge env and file values
// over them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.max_connections", cfg.Server.MaxConnections)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.max_upload_bytes", cfg.Server.MaxUploadBytes)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("objects.backend", cfg.Objects.Backend)
	v.SetDefault("objects.endpoint", cfg.Objects.Endpoint)
	v.SetDefault("objects.access_key", cfg.Objects.AccessKey)
	v.SetDefault("objects.secret_key", cfg.Objects.SecretKey)
	v.SetDefault("objects.bucket", cfg.Objects.Bucket)
	v.SetDefault("objects.use_ssl", cfg.Objects.UseSSL)
	v.SetDefault("objects.local_dir", cfg.Objects.LocalDir)
	v.SetDefault("crypto.kdf_iterations", cfg.Crypto.KDFIterations)
	v.SetDefault("crypto.artifact_secret", cfg.Crypto.ArtifactSecret)
	v.SetDefault("auth.allowed_email_domains", cfg.Auth.AllowedEmailDomains)
	v.SetDefault("auth.session_ttl", cfg.Auth.SessionTTL)
	v.SetDefault("auth.bcrypt_cost", cfg.Auth.BcryptCost)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
