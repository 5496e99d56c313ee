package config

type Config interface {
	EnvConfig
	SalesforceConfig
	EmbedConfig
	SessionConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetAppURL() string
	GetIndustry() string
	GetTemplateFolder() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type mainConfig struct {
	EnvVars
	Salesforce
	Embed
	Sessions
	Cors
}

func New() Config {
	return mainConfig{}
}
