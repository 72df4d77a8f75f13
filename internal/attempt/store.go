package attempt

import "sync"

// Store holds the single current State and fans replacements out to
// subscribers. Only the Controller writes to it.
type Store struct {
	mu    sync.RWMutex
	state State
	subs  map[int]chan State
	next  int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan State)}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel that always yields the most recent State.
// A slow reader skips intermediate states but never misses the latest one.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan State, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) replace(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
