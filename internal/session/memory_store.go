package session

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/fadilmartias/interview-coach/internal/logger"
	"github.com/fadilmartias/interview-coach/internal/pipeline"
	"go.uber.org/zap"
)

// EvictFunc is called, outside the store lock, for every session that
// expires or is pushed out by the capacity bound.
type EvictFunc func(id string, state pipeline.State)

type memoryEntry struct {
	id        string
	state     pipeline.State
	expiresAt time.Time
}

// MemoryStore holds sessions in process with a TTL and a capacity bound.
// When full, the oldest session is evicted.
type MemoryStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // oldest first
	onEvict    EvictFunc
	now        func() time.Time
	logger     *zap.Logger
}

func NewMemoryStore(ttl time.Duration, maxEntries int, onEvict EvictFunc, log *zap.Logger) *MemoryStore {
	return &MemoryStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		onEvict:    onEvict,
		now:        time.Now,
		logger:     logger.OrNop(log).Named("session_memory"),
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, state pipeline.State) error {
	var evicted []*memoryEntry

	s.mu.Lock()
	if el, ok := s.entries[id]; ok {
		s.order.Remove(el)
		delete(s.entries, id)
	}
	entry := &memoryEntry{id: id, state: state, expiresAt: s.now().Add(s.ttl)}
	s.entries[id] = s.order.PushBack(entry)

	for s.maxEntries > 0 && s.order.Len() > s.maxEntries {
		evicted = append(evicted, s.removeLocked(s.order.Front()))
	}
	s.mu.Unlock()

	for _, e := range evicted {
		s.logger.Info("session evicted at capacity", zap.String("session_id", e.id))
		s.evict(e)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (pipeline.State, error) {
	entry, expired := s.lookup(id, false)
	if expired != nil {
		s.evict(expired)
	}
	if entry == nil {
		return pipeline.State{}, ErrNotFound
	}
	return entry.state, nil
}

func (s *MemoryStore) Take(_ context.Context, id string) (pipeline.State, error) {
	entry, expired := s.lookup(id, true)
	if expired != nil {
		s.evict(expired)
	}
	if entry == nil {
		return pipeline.State{}, ErrNotFound
	}
	return entry.state, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	s.removeLocked(el)
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// lookup finds a live entry, removing it when remove is set. An expired entry
// is removed and returned separately so the caller can run the evict hook.
func (s *MemoryStore) lookup(id string, remove bool) (found, expired *memoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	entry := el.Value.(*memoryEntry)
	if !s.now().Before(entry.expiresAt) {
		return nil, s.removeLocked(el)
	}
	if remove {
		s.removeLocked(el)
	}
	return entry, nil
}

// DeleteExpired drops every expired session and returns how many it removed.
func (s *MemoryStore) DeleteExpired() int {
	var expired []*memoryEntry

	s.mu.Lock()
	now := s.now()
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		if entry := el.Value.(*memoryEntry); !now.Before(entry.expiresAt) {
			expired = append(expired, s.removeLocked(el))
		}
		el = next
	}
	s.mu.Unlock()

	for _, e := range expired {
		s.evict(e)
	}
	return len(expired)
}

// RunJanitor calls DeleteExpired every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.DeleteExpired(); n > 0 {
				s.logger.Info("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func (s *MemoryStore) removeLocked(el *list.Element) *memoryEntry {
	entry := s.order.Remove(el).(*memoryEntry)
	delete(s.entries, entry.id)
	return entry
}

func (s *MemoryStore) evict(e *memoryEntry) {
	if s.onEvict != nil {
		s.onEvict(e.id, e.state)
	}
}
