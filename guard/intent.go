package guard

import (
	"sync"

	"github.com/jrsteele09/go-learning-portal/internal/validation"
)

// Intent is the single pending pre-login destination of one browser context.
// It is read exactly once.
type Intent struct {
	mu   sync.Mutex
	path string
}

// Record remembers path as the destination to return to after login. Paths
// that are not local to this site are ignored. It reports whether path was
// kept.
func (i *Intent) Record(path string) bool {
	if !validation.IsLocalPath(path) {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.path = path
	return true
}

// Consume returns the pending destination and clears it.
func (i *Intent) Consume() (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	p := i.path
	i.path = ""
	return p, p != ""
}

// Peek returns the pending destination without consuming it.
func (i *Intent) Peek() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.path
}

// Reset drops any pending destination.
func (i *Intent) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.path = ""
}
