package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-learning-portal/uistate"
)

type ThemeView struct {
	Theme     uistate.Theme `json:"theme"`
	Effective uistate.Theme `json:"effective,omitempty"`
}

type LayoutUpdate struct {
	SidebarCollapsed *bool `json:"sidebarCollapsed"`
	MobileMenuOpen   *bool `json:"mobileMenuOpen"`
}

// prefersDark reads the Sec-CH-Prefers-Color-Scheme client hint.
func prefersDark(r *http.Request) bool {
	return strings.Trim(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), `"`) == "dark"
}

func themeView(r *http.Request, t uistate.Theme) ThemeView {
	return ThemeView{Theme: t, Effective: t.Effective(prefersDark(r))}
}

func (s *Server) ThemeGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		w.Header().Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
		writeJSON(w, http.StatusOK, themeView(r, v.theme.Theme()))
	}
}

func (s *Server) ThemePutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var req ThemeView
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		t, err := uistate.ParseTheme(string(req.Theme))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Theme must be light, dark or system.")
			return
		}
		// Failing to persist still changes the theme for this visit.
		_ = v.theme.SetTheme(r.Context(), t)
		writeJSON(w, http.StatusOK, themeView(r, v.theme.Theme()))
	}
}

// ThemeToggleHandler flips between light and dark.
func (s *Server) ThemeToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		t, _ := v.theme.Toggle(r.Context())
		writeJSON(w, http.StatusOK, themeView(r, t))
	}
}

func (s *Server) LayoutGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		writeJSON(w, http.StatusOK, v.layout.Snapshot())
	}
}

func (s *Server) LayoutPutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var req LayoutUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		if req.SidebarCollapsed != nil {
			v.layout.SetSidebarCollapsed(*req.SidebarCollapsed)
		}
		if req.MobileMenuOpen != nil {
			v.layout.SetMobileMenuOpen(*req.MobileMenuOpen)
		}
		writeJSON(w, http.StatusOK, v.layout.Snapshot())
	}
}

// LayoutToggleHandler flips one layout flag: sidebar or mobile-menu.
func (s *Server) LayoutToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		switch r.PathValue("flag") {
		case "sidebar":
			writeJSON(w, http.StatusOK, v.layout.ToggleSidebar())
		case "mobile-menu":
			writeJSON(w, http.StatusOK, v.layout.ToggleMobileMenu())
		default:
			writeError(w, http.StatusNotFound, "Unknown layout setting.")
		}
	}
}
