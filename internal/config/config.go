package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/knocoin/console/pkg/secrets"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Price   PriceConfig   `mapstructure:"price"`
	Poll    PollConfig    `mapstructure:"poll"`
	Logging LoggingConfig `mapstructure:"logging"`
	GCP     GCPConfig     `mapstructure:"gcp"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// BackendConfig locates the trading backend. Either a pre-issued bearer
// token or email/password credentials may be supplied; with neither,
// requests go out unauthenticated.
type BackendConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

type PriceConfig struct {
	URL string `mapstructure:"url"`
}

type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID       string              `mapstructure:"project_id"`
	UseSecrets      bool                `mapstructure:"use_secrets"`
	CredentialsFile string              `mapstructure:"credentials_file"`
	SecretNames     secrets.SecretNames `mapstructure:"secret_names"`
}

// PollInterval returns the configured refresh cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/kno-console")
	}

	v.SetEnvPrefix("KNO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&config)

	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8000")

	// Price feed defaults
	v.SetDefault("price.url", "http://localhost:8000/api/kno/price")

	// Refresh defaults
	v.SetDefault("poll.interval_seconds", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")
	v.SetDefault("gcp.credentials_file", "")

	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.backend_email", secretNames.BackendEmail)
	v.SetDefault("gcp.secret_names.backend_password", secretNames.BackendPassword)
	v.SetDefault("gcp.secret_names.backend_token", secretNames.BackendToken)
}

func overrideFromEnv(config *Config) {
	if baseURL := os.Getenv("KNO_BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if email := os.Getenv("KNO_BACKEND_EMAIL"); email != "" {
		config.Backend.Email = email
	}
	if password := os.Getenv("KNO_BACKEND_PASSWORD"); password != "" {
		config.Backend.Password = password
	}
	if token := os.Getenv("KNO_BACKEND_TOKEN"); token != "" {
		config.Backend.Token = token
	}
	if priceURL := os.Getenv("KNO_PRICE_URL"); priceURL != "" {
		config.Price.URL = priceURL
	}

	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" && config.GCP.CredentialsFile == "" {
		config.GCP.CredentialsFile = credFile
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, config.GCP.CredentialsFile, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets if they're not already set
	if config.Backend.Email == "" {
		config.Backend.Email = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.BackendEmail, "")
	}
	if config.Backend.Password == "" {
		config.Backend.Password = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.BackendPassword, "")
	}
	if config.Backend.Token == "" {
		config.Backend.Token = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.BackendToken, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
