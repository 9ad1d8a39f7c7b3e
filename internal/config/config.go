package config

type Config interface {
	EnvConfig
	CorsConfig
	PortalConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBackendURL() string
	GetRedisAddr() string
	GetRedisPassword() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Portal
	Security
}

func New() Config {
	return mainConfig{}
}
