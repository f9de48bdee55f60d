package history

import (
	"container/list"
	"sync"
)

// LRUStore is an in-memory LRU cache that delegates to a backing Store.
// Reads served from the cache avoid touching disk for recent runs.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store
	ll   *list.List // front is most recently used; values are *Record
	idx  map[string]*list.Element
}

// NewLRUStore creates an LRU cache with the given capacity in front of
// back. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:  cap,
		back: back,
		ll:   list.New(),
		idx:  make(map[string]*list.Element, cap),
	}
}

// Save caches the record and delegates to the backing store.
func (s *LRUStore) Save(rec *Record) error {
	s.mu.Lock()
	s.insert(rec)
	s.mu.Unlock()
	return s.back.Save(rec)
}

// Load checks the cache first and falls back to the backing store,
// promoting any record found there.
func (s *LRUStore) Load(runID string) (*Record, error) {
	s.mu.Lock()
	if e, ok := s.idx[runID]; ok {
		s.ll.MoveToFront(e)
		rec := e.Value.(*Record)
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.insert(rec)
	s.mu.Unlock()
	return rec, nil
}

// Recent delegates to the backing store, which knows the full set of
// retained runs.
func (s *LRUStore) Recent(n int) ([]*Record, error) {
	return s.back.Recent(n)
}

// insert adds or refreshes a cache entry, evicting the oldest entry
// when over capacity. Caller holds s.mu.
func (s *LRUStore) insert(rec *Record) {
	if e, ok := s.idx[rec.ID]; ok {
		e.Value = rec
		s.ll.MoveToFront(e)
		return
	}
	s.idx[rec.ID] = s.ll.PushFront(rec)
	if s.ll.Len() > s.cap {
		oldest := s.ll.Back()
		s.ll.Remove(oldest)
		delete(s.idx, oldest.Value.(*Record).ID)
	}
}
