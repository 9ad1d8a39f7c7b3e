package server

import "net/http"

func (s *Server) initRoutes() {
	api := func(h http.HandlerFunc) http.HandlerFunc { return ChainMiddleware(h, s.APIMiddleware()...) }
	protected := func(h http.HandlerFunc) http.HandlerFunc { return ChainMiddleware(h, s.ProtectedMiddleware()...) }

	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {}, s.PreflightMiddleware()...))

	// SESSION
	s.RegisterRouteFunc("GET "+RouteAPISession, api(s.SessionHandler()))
	s.RegisterRouteFunc("DELETE "+RouteAPISessionError, api(s.ClearSessionErrorHandler()))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteAuthLogin, api(s.LoginPageHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, api(s.LoginSubmissionHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, api(s.LogoutHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, api(s.RegisterHandler()))

	// ACCOUNT
	s.RegisterRouteFunc("PUT "+RouteAuthProfile, api(s.UpdateProfileHandler()))
	s.RegisterRouteFunc("PUT "+RouteAuthChangePassword, api(s.ChangePasswordHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthForgotPassword, api(s.ForgotPasswordHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthResetPassword, api(s.ResetPasswordHandler()))
	s.RegisterRouteFunc("POST "+RouteAuthVerifyEmail, api(s.VerifyEmailHandler()))

	// DASHBOARD (guarded)
	s.RegisterRouteFunc("GET "+RouteDashboard, protected(s.DashboardHandler()))
	s.RegisterRouteFunc("GET "+RouteDashboardAll, protected(s.DashboardHandler()))
	s.RegisterRouteFunc("GET "+RouteContentView, protected(s.ContentViewHandler()))
	s.RegisterRouteFunc("POST "+RouteContentPlayer, protected(s.PlayerEventHandler()))
	s.RegisterRouteFunc("POST "+RouteContentDocument, protected(s.DocumentEventHandler()))
	s.RegisterRouteFunc("POST "+RouteContentUnmount, protected(s.ContentUnmountHandler()))

	// UI STATE
	s.RegisterRouteFunc("GET "+RouteAPIUITheme, api(s.ThemeGetHandler()))
	s.RegisterRouteFunc("PUT "+RouteAPIUITheme, api(s.ThemePutHandler()))
	s.RegisterRouteFunc("POST "+RouteAPIUIThemeToggle, api(s.ThemeToggleHandler()))
	s.RegisterRouteFunc("GET "+RouteAPIUILayout, api(s.LayoutGetHandler()))
	s.RegisterRouteFunc("PUT "+RouteAPIUILayout, api(s.LayoutPutHandler()))
	s.RegisterRouteFunc("POST "+RouteAPIUILayoutToggle, api(s.LayoutToggleHandler()))
}
