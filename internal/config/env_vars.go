package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	portEnvVar       = "PORT"
	appNameVar       = "APP_NAME"
	envVar           = "ENV"
	backendURLVar    = "BACKEND_URL"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	configDirVar     = "CONFIG_DIR"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Learning Portal")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

// GetBackendURL returns the base URL of the learning platform REST API
// (e.g. "https://api.example.com"). No trailing slash.
func (EnvVars) GetBackendURL() string {
	return strings.TrimRight(GetEnv(backendURLVar, "http://localhost:5000"), "/")
}

// GetRedisAddr returns the Redis address used for UI preferences. Empty
// means preferences are kept in memory.
func (EnvVars) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "")
}

func (EnvVars) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration parses envVar as a time.Duration ("30s", "2m"), falling back to
// defaultValue when unset or malformed.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// LoadDotEnv loads <CONFIG_DIR>/.env.<env> when it exists. Variables already
// present in the environment win.
func LoadDotEnv(env string) error {
	path := filepath.Join(GetEnv(configDirVar, "config"), ".env."+strings.ToLower(env))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config.LoadDotEnv stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config.LoadDotEnv %s: %w", path, err)
	}
	return nil
}
