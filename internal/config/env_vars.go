package config

import (
	"fmt"
	"strings"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsLocal() bool
	GetLogLevel() string
	GetDatabaseURL() string
	GetOTLPEndpoint() string
}

type EnvVars struct {
	Port         string `env:"PORT,default=8080"`
	AppName      string `env:"APP_NAME,default=Tenant Auth"`
	Environment  string `env:"ENVIRONMENT,default=local"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	DatabaseURL  string `env:"DATABASE_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return fmt.Sprintf(":%s", e.Port)
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetEnv returns one of local, development, staging or production.
func (e EnvVars) GetEnv() string {
	return e.Environment
}

func (e EnvVars) IsLocal() bool {
	return e.Environment == "local"
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetDatabaseURL() string {
	return e.DatabaseURL
}

// GetOTLPEndpoint returns the trace collector endpoint. Empty disables tracing.
func (e EnvVars) GetOTLPEndpoint() string {
	return e.OTLPEndpoint
}
