package uistate

import "sync"

// Layout is a snapshot of the transient layout flags.
type Layout struct {
	SidebarCollapsed bool `json:"sidebarCollapsed"`
	MobileMenuOpen   bool `json:"mobileMenuOpen"`
}

// LayoutStore is reset whenever the session ends.
type LayoutStore struct {
	mu     sync.RWMutex
	layout Layout
}

func NewLayoutStore() *LayoutStore {
	return &LayoutStore{}
}

func (s *LayoutStore) Snapshot() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

func (s *LayoutStore) SetSidebarCollapsed(collapsed bool) Layout {
	return s.update(func(l *Layout) { l.SidebarCollapsed = collapsed })
}

func (s *LayoutStore) ToggleSidebar() Layout {
	return s.update(func(l *Layout) { l.SidebarCollapsed = !l.SidebarCollapsed })
}

func (s *LayoutStore) SetMobileMenuOpen(open bool) Layout {
	return s.update(func(l *Layout) { l.MobileMenuOpen = open })
}

func (s *LayoutStore) ToggleMobileMenu() Layout {
	return s.update(func(l *Layout) { l.MobileMenuOpen = !l.MobileMenuOpen })
}

func (s *LayoutStore) Reset() {
	s.update(func(l *Layout) { *l = Layout{} })
}

func (s *LayoutStore) update(fn func(*Layout)) Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.layout)
	return s.layout
}
