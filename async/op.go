package async

import "sync"

// Ticket identifies one started request. Only the most recently issued ticket
// may settle an Op.
type Ticket uint64

// Op owns a State and funnels every mutation through a request sequence
// number, so a response for a superseded request can never overwrite the
// state of a newer one. The zero value is Idle and ready to use.
type Op[T any] struct {
	mu    sync.RWMutex
	seq   uint64
	state State[T]
}

// Start begins a new request: any held value is discarded, the state becomes
// Loading and every earlier ticket goes stale.
func (o *Op[T]) Start() Ticket {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.state = NewLoading[T]()
	return Ticket(o.seq)
}

// Resolve stores v if t is still current. It reports whether it applied.
func (o *Op[T]) Resolve(t Ticket, v T) bool {
	return o.settle(t, NewSuccess(v))
}

// Reject stores err if t is still current. It reports whether it applied.
func (o *Op[T]) Reject(t Ticket, err error) bool {
	return o.settle(t, NewFailure[T](err))
}

// Set replaces the state outside of any request and invalidates outstanding
// tickets.
func (o *Op[T]) Set(s State[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.state = s
}

// Reset returns to Idle and invalidates outstanding tickets.
func (o *Op[T]) Reset() {
	o.Set(NewIdle[T]())
}

// Current reports whether t is the latest ticket.
func (o *Op[T]) Current(t Ticket) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return uint64(t) == o.seq
}

func (o *Op[T]) Snapshot() State[T] {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Op[T]) settle(t Ticket, s State[T]) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if uint64(t) != o.seq {
		return false
	}
	o.state = s
	return true
}
