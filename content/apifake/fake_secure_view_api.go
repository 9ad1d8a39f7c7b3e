package apifake

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-learning-portal/backend"
	"github.com/jrsteele09/go-learning-portal/content"
)

var _ content.SecureViewAPI = (*FakeSecureViewAPI)(nil)

// FakeSecureViewAPI serves descriptors from memory. Individual refs can be
// held so tests decide the order in which responses complete.
type FakeSecureViewAPI struct {
	lock        sync.Mutex
	descriptors map[content.Ref]content.AccessDescriptor
	denied      map[content.Ref]string
	gates       map[content.Ref]chan struct{}
	started     chan content.Ref
	calls       map[content.Ref]int
}

func NewFakeSecureViewAPI() *FakeSecureViewAPI {
	return &FakeSecureViewAPI{
		descriptors: make(map[content.Ref]content.AccessDescriptor),
		denied:      make(map[content.Ref]string),
		gates:       make(map[content.Ref]chan struct{}),
		started:     make(chan content.Ref, 64),
		calls:       make(map[content.Ref]int),
	}
}

func (f *FakeSecureViewAPI) Put(ref content.Ref, d content.AccessDescriptor) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.descriptors[ref] = d
	delete(f.denied, ref)
}

// Deny makes ref answer 403 with msg.
func (f *FakeSecureViewAPI) Deny(ref content.Ref, msg string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.denied[ref] = msg
}

// Hold blocks requests for ref until the returned release is called.
func (f *FakeSecureViewAPI) Hold(ref content.Ref) (release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	gate := make(chan struct{})
	f.gates[ref] = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Started delivers each ref as its request begins.
func (f *FakeSecureViewAPI) Started() <-chan content.Ref {
	return f.started
}

func (f *FakeSecureViewAPI) Calls(ref content.Ref) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[ref]
}

// SecureView ignores ctx cancellation while held so that a superseded
// response can still arrive late, as an uncancelled network call would.
func (f *FakeSecureViewAPI) SecureView(_ context.Context, ref content.Ref) (content.AccessDescriptor, error) {
	f.lock.Lock()
	f.calls[ref]++
	gate := f.gates[ref]
	f.lock.Unlock()

	select {
	case f.started <- ref:
	default:
	}
	if gate != nil {
		<-gate
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	if msg, ok := f.denied[ref]; ok {
		return content.AccessDescriptor{}, &backend.APIError{Method: http.MethodGet, Path: backend.SecureViewPath(ref), Status: http.StatusForbidden, Message: msg}
	}
	d, ok := f.descriptors[ref]
	if !ok {
		return content.AccessDescriptor{}, &backend.APIError{Method: http.MethodGet, Path: backend.SecureViewPath(ref), Status: http.StatusNotFound, Message: "Content not found"}
	}
	return d, nil
}
