// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import "sync"

// Signal is an observable value. Subscribers receive the latest published
// value; a slow subscriber misses intermediate values but never blocks the
// publisher.
type Signal[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	subs    map[chan T]struct{}
}

// Publish stores v and notifies every subscriber
func (s *Signal[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = v
	s.version++
	for ch := range s.subs {
		// Drop a stale pending value so the newest one wins
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Load returns the current value and how many times it has been published
func (s *Signal[T]) Load() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.version
}

// Subscribe returns a channel of future values and a function that ends the
// subscription and closes the channel.
func (s *Signal[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[chan T]struct{})
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}
