// Package store defines the ambient key/value collections whose contents can be asserted
// after an invocation, independently of its result.
package store

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/lazy"
)

// Store is the minimal contract side-effect assertions depend on.
type Store interface {
	Count() int
	ContainsKey(key string) bool
	TryGetValue(key string) (interface{}, bool)
	Entries() []Entry
}

type Entry struct {
	Key   string
	Value interface{}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s=%v", e.Key, e.Value)
}

// Key is the context key under which the named store is kept.
func Key(name string) lazy.Key[Store] {
	return lazy.NewKey[Store]("store:" + name)
}

// From returns the named store from a test context.
func From(c *lazy.Context, name string) (Store, error) {
	return lazy.Get(c, Key(name))
}

// MapStore is an insertion-ordered, concurrency-safe Store that the code under test can
// write to.
type MapStore struct {
	keys   []string
	values map[string]interface{}
	lock   sync.RWMutex
}

func NewMapStore(entries ...Entry) *MapStore {
	s := &MapStore{values: make(map[string]interface{})}
	for _, e := range entries {
		s.Set(e.Key, e.Value)
	}
	return s
}

func (s *MapStore) Set(key string, value interface{}) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.values == nil {
		s.values = make(map[string]interface{})
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *MapStore) Delete(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

func (s *MapStore) Clear() {
	s.lock.Lock()
	s.keys = nil
	s.values = make(map[string]interface{})
	s.lock.Unlock()
}

func (s *MapStore) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.keys)
}

func (s *MapStore) ContainsKey(key string) bool {
	_, ok := s.TryGetValue(key)
	return ok
}

func (s *MapStore) TryGetValue(key string) (interface{}, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MapStore) Entries() []Entry {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ret := make([]Entry, 0, len(s.keys))
	for _, k := range s.keys {
		ret = append(ret, Entry{Key: k, Value: s.values[k]})
	}
	return ret
}

type headerStore http.Header

// HeaderStore is a read-only view of HTTP headers. Keys are canonicalized; a header with
// several values has a []string value, otherwise a string.
func HeaderStore(h http.Header) Store {
	return headerStore(h)
}

func (h headerStore) Count() int { return len(h) }

func (h headerStore) ContainsKey(key string) bool {
	_, ok := h.TryGetValue(key)
	return ok
}

func (h headerStore) TryGetValue(key string) (interface{}, bool) {
	values, ok := h[http.CanonicalHeaderKey(key)]
	if !ok {
		return nil, false
	}
	if len(values) == 1 {
		return values[0], true
	}
	return append([]string(nil), values...), true
}

func (h headerStore) Entries() []Entry {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ret := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, _ := h.TryGetValue(k)
		ret = append(ret, Entry{Key: k, Value: v})
	}
	return ret
}
