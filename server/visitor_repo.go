package server

import (
	"fmt"
	"sync"
	"time"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

type VisitorRepo interface {
	Get(visitorID string) (*Visitor, error)
	// LoadOrStore keeps the first visitor stored under v.ID and returns it.
	LoadOrStore(v *Visitor) (actual *Visitor, loaded bool, err error)
	// Prune removes visitors last seen before cutoff and returns them.
	Prune(cutoff time.Time) []*Visitor
	Len() int
}

// InMemoryVisitorRepo is an in-memory implementation of VisitorRepo
type InMemoryVisitorRepo struct {
	mu       sync.RWMutex
	visitors map[string]*Visitor
}

func NewInMemoryVisitorRepo() *InMemoryVisitorRepo {
	return &InMemoryVisitorRepo{
		visitors: make(map[string]*Visitor),
	}
}

func (r *InMemoryVisitorRepo) Get(visitorID string) (*Visitor, error) {
	if visitorID == "" {
		return nil, fmt.Errorf("visitorID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.visitors[visitorID]
	if !ok {
		return nil, perrors.Wrapf(perrors.ErrNotFound, "visitor %s", visitorID)
	}
	return v, nil
}

func (r *InMemoryVisitorRepo) LoadOrStore(v *Visitor) (*Visitor, bool, error) {
	if v == nil || v.ID == "" {
		return nil, false, fmt.Errorf("visitorID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.visitors[v.ID]; ok {
		return existing, true, nil
	}
	r.visitors[v.ID] = v
	return v, false, nil
}

func (r *InMemoryVisitorRepo) Prune(cutoff time.Time) []*Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pruned []*Visitor
	for id, v := range r.visitors {
		if v.LastSeen().Before(cutoff) {
			pruned = append(pruned, v)
			delete(r.visitors, id)
		}
	}
	return pruned
}

func (r *InMemoryVisitorRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.visitors)
}
