package config

import "time"

type SecurityConfig interface {
	GetCookieSecret() string
	GetVisitorIdleTimeout() time.Duration
	GetVisitorCookieMaxAge() time.Duration
	GetRequestTimeout() time.Duration
	GetProbeTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetCookieSecret returns the secret the visitor cookie signing key is
// derived from. The DEV default must be overridden in any deployed env.
func (Security) GetCookieSecret() string {
	return GetEnv("COOKIE_SECRET", "dev-only-cookie-secret-change-me")
}

func (Security) GetVisitorIdleTimeout() time.Duration {
	return GetDuration("VISITOR_IDLE_TIMEOUT", 30*time.Minute)
}

func (Security) GetVisitorCookieMaxAge() time.Duration {
	return 30 * 24 * time.Hour
}

// GetRequestTimeout bounds every backend call made on behalf of a visitor.
func (Security) GetRequestTimeout() time.Duration {
	return GetDuration("REQUEST_TIMEOUT", 15*time.Second)
}

func (Security) GetProbeTimeout() time.Duration {
	return GetDuration("PROBE_TIMEOUT", 5*time.Second)
}
