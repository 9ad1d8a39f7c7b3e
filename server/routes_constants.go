package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Session
	RouteAPISession      = "/api/session"
	RouteAPISessionError = RouteAPISession + "/error"

	// Auth Routes - Login & Logout
	RouteAuthLogin    = "/auth/login"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRegister = "/auth/register"

	// Auth Routes - Profile & Password Management
	RouteAuthProfile        = "/auth/profile"
	RouteAuthChangePassword = "/auth/change-password"
	RouteAuthForgotPassword = "/auth/forgot-password"
	RouteAuthResetPassword  = "/auth/reset-password/{token}"

	// Auth Routes - Email Verification
	RouteAuthVerifyEmail = "/auth/verify-email/{token}"

	// Protected views
	RouteDashboard       = "/dashboard"
	RouteDashboardAll    = "/dashboard/"
	RouteContentView     = "/dashboard/courses/{courseId}/modules/{moduleId}/content/{contentId}"
	RouteContentPlayer   = RouteContentView + "/player"
	RouteContentDocument = RouteContentView + "/document"
	RouteContentUnmount  = RouteContentView + "/close"

	// UI state
	RouteAPIUITheme        = "/api/ui/theme"
	RouteAPIUIThemeToggle  = RouteAPIUITheme + "/toggle"
	RouteAPIUILayout       = "/api/ui/layout"
	RouteAPIUILayoutToggle = RouteAPIUILayout + "/toggle/{flag}"
)
