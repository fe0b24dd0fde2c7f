package multirow

import (
	"container/list"
	"sync"
)

// viewKey identifies a materialized view: a field at a store revision.
type viewKey struct {
	field    string
	revision int
}

// ViewCache is an LRU cache of materialized views.
// Views are immutable and safe to share; callers must not mutate them.
// It is safe for concurrent use.
type ViewCache struct {
	cap int
	ll  *list.List
	m   map[viewKey]*list.Element
	mu  sync.Mutex
}

type viewEntry struct {
	key  viewKey
	view []Record
}

// NewViewCache creates a cache with a fixed capacity.
func NewViewCache(capacity int) *ViewCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &ViewCache{
		cap: capacity,
		ll:  list.New(),
		m:   make(map[viewKey]*list.Element),
	}
}

// Get returns the view of field at revision if present.
func (c *ViewCache) Get(field string, revision int) ([]Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[viewKey{field: field, revision: revision}]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(*viewEntry).view, true
	}
	return nil, false
}

// Put inserts or updates the view of field at revision.
func (c *ViewCache) Put(field string, revision int, view []Record) {
	key := viewKey{field: field, revision: revision}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		c.ll.MoveToFront(ele)
		ele.Value.(*viewEntry).view = view
		return
	}
	ele := c.ll.PushFront(&viewEntry{key: key, view: view})
	c.m[key] = ele
	if c.ll.Len() > c.cap {
		c.evict()
	}
}

// Len returns the number of cached views.
func (c *ViewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *ViewCache) evict() {
	ele := c.ll.Back()
	if ele == nil {
		return
	}
	c.ll.Remove(ele)
	delete(c.m, ele.Value.(*viewEntry).key)
}
