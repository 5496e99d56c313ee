package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	appURLVar    = "APP_URL"
	industryVar  = "INDUSTRY"
	templatesVar = "TEMPLATE_FOLDER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Analytics Embed")
}

// GetAppURL returns the externally visible base URL of this service.
// It is used to build the OAuth redirect URI and embed URLs.
func (EnvVars) GetAppURL() string {
	return GetEnv(appURLVar, "http://localhost:8080")
}

// GetIndustry returns the deployment's selected industry vertical.
func (EnvVars) GetIndustry() string {
	return GetEnv(industryVar, "generic")
}

func (EnvVars) GetTemplateFolder() string {
	return GetEnv(templatesVar, "./configs/industries")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
