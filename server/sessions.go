package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hupe1980/membuf"
)

// sessionStore maps session ids to open handles. Idle sessions expire after
// ttl and their handles are closed by the janitor.
//
// The cache runs without its own janitor, which would only stop once the
// cache is garbage collected; the store sweeps it until closeAll.
type sessionStore struct {
	items *cache.Cache

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSessionStore(ttl, cleanupInterval time.Duration) *sessionStore {
	items := cache.New(ttl, 0)
	items.OnEvicted(func(_ string, v any) {
		if h, ok := v.(*membuf.Handle); ok {
			_ = h.Close()
		}
	})

	s := &sessionStore{
		items: items,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = ttl
	}
	go s.janitor(cleanupInterval)
	return s
}

func (s *sessionStore) janitor(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.items.DeleteExpired()
		case <-s.stop:
			return
		}
	}
}

// add publishes h under a new id.
func (s *sessionStore) add(h *membuf.Handle) string {
	id := uuid.NewString()
	s.items.SetDefault(id, h)
	return id
}

// get returns the session's handle and refreshes its expiry. A session
// removed between the lookup and the refresh is not found.
func (s *sessionStore) get(id string) (*membuf.Handle, error) {
	v, ok := s.items.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	h := v.(*membuf.Handle)
	if err := s.items.Replace(id, h, cache.DefaultExpiration); err != nil {
		return nil, ErrSessionNotFound
	}
	return h, nil
}

// remove closes the session's handle.
func (s *sessionStore) remove(id string) error {
	if _, ok := s.items.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.items.Delete(id)
	return nil
}

func (s *sessionStore) count() int {
	return s.items.ItemCount()
}

// closeAll stops the janitor and closes every handle, expired or not.
// It is idempotent.
func (s *sessionStore) closeAll() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done

	s.items.DeleteExpired()
	for id := range s.items.Items() {
		s.items.Delete(id)
	}
}
