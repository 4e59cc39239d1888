package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	envVar        = "ENV"
	httpTimeout   = "HTTP_TIMEOUT"
	metricsPath   = "METRICS_PATH"
	productionEnv = "PRODUCTION"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsProduction() bool
	GetBaseURL() string
	GetHTTPTimeout() time.Duration
	GetMetricsPath() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Share Portal")
}

func (EnvVars) GetEnv() string {
	return strings.ToUpper(GetEnv(envVar, "DEV"))
}

// IsProduction controls the Secure attribute of the session cookie.
func (e EnvVars) IsProduction() bool {
	return e.GetEnv() == productionEnv
}

// GetBaseURL returns the public URL of the portal (e.g. "https://portal.example.com").
// Public product-list links and unauthenticated page redirects are built from it.
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:3000"), "/")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeout, 30*time.Second)
}

func (EnvVars) GetMetricsPath() string {
	return GetEnv(metricsPath, "/metrics")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}
