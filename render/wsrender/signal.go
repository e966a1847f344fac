package wsrender

import "sync"

// signal hands browser signals to waiters. Values offered while nothing is
// armed are dropped, and the last disarm discards anything undelivered.
type signal[T any] struct {
	mu    sync.Mutex
	armed int
	ch    chan T
}

func newSignal[T any]() *signal[T] {
	return &signal[T]{ch: make(chan T, 1)}
}

func (s *signal[T]) arm() {
	s.mu.Lock()
	s.armed++
	s.mu.Unlock()
}

func (s *signal[T]) disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed > 0 {
		s.armed--
	}
	if s.armed == 0 {
		select {
		case <-s.ch:
		default:
		}
	}
}

// offer reports whether v was accepted.
func (s *signal[T]) offer(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed == 0 {
		return false
	}
	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

func (s *signal[T]) isArmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed > 0
}
