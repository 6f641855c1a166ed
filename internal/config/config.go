/**
 * @description
 * This package handles configuration for the SmartBank client binaries. It
 * uses the Viper library to read configuration from environment variables
 * with an optional .env file, providing a centralized way to manage settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the client and the dev server. Values
// are loaded from environment variables.
type Config struct {
	APIBaseURL         string `mapstructure:"SMARTBANK_API_BASE_URL"`
	SessionFile        string `mapstructure:"SESSION_FILE"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Dev server settings.
	ServerPort      string `mapstructure:"SERVER_PORT"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES"`
}

// LoadConfig reads configuration from environment variables and an optional
// .env file in the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SMARTBANK_API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("TOKEN_TTL_MINUTES", 30)

	_ = viper.BindEnv("SMARTBANK_API_BASE_URL")
	_ = viper.BindEnv("SESSION_FILE")
	_ = viper.BindEnv("HTTP_TIMEOUT_SECONDS")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("TOKEN_TTL_MINUTES")

	// The .env file is optional; only a malformed one is worth reporting.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.APIBaseURL = strings.TrimRight(strings.TrimSpace(config.APIBaseURL), "/")
	if config.HTTPTimeoutSeconds <= 0 {
		config.HTTPTimeoutSeconds = 30
	}
	if config.TokenTTLMinutes <= 0 {
		config.TokenTTLMinutes = 30
	}

	if strings.TrimSpace(config.SessionFile) == "" {
		config.SessionFile = defaultSessionFile()
	}

	return
}

// defaultSessionFile places the session under the user's config directory,
// falling back to the working directory when none is resolvable.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".smartbank-session.json"
	}
	return filepath.Join(dir, "smartbank", "session.json")
}
