package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in process memory. Carts are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

// Get returns a copy of the session's cart.
func (s *MemoryStore) Get(_ context.Context, session string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Cart{}
	for id, qty := range s.carts[session] {
		out[id] = qty
	}
	return out, nil
}

func (s *MemoryStore) Add(_ context.Context, session string, bookID int) error {
	s.update(session, func(c Cart) { c.Add(bookID) })
	return nil
}

func (s *MemoryStore) Increase(_ context.Context, session string, bookID int) error {
	s.update(session, func(c Cart) { c.Increase(bookID) })
	return nil
}

func (s *MemoryStore) Decrease(_ context.Context, session string, bookID int) error {
	s.update(session, func(c Cart) { c.Decrease(bookID) })
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, session string, bookID int) error {
	s.update(session, func(c Cart) { c.Remove(bookID) })
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, session)
	return nil
}

func (s *MemoryStore) update(session string, fn func(Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[session]
	if !ok {
		c = Cart{}
	}
	fn(c)
	if c.IsEmpty() {
		delete(s.carts, session)
		return
	}
	s.carts[session] = c
}
