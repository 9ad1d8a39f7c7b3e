package config

type PortalConfig interface {
	GetLoginPath() string
	GetLandingPath() string
	GetProtectedPrefixes() []string
}

type Portal struct{}

var _ PortalConfig = Portal{}

func (Portal) GetLoginPath() string {
	return "/auth/login"
}

// GetLandingPath is where a visitor goes after login when no navigation
// intent was recorded.
func (Portal) GetLandingPath() string {
	return "/dashboard"
}

func (Portal) GetProtectedPrefixes() []string {
	return []string{"/dashboard"}
}
