// Package scroll remembers which page each open view is showing. Views expire after a
// while and the oldest are dropped once the registry is full, so abandoned views do not
// accumulate.
package scroll

import (
	"container/list"
	"sync"
	"time"
)

// Direction moves a cursor.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// Position is the page a view is showing.
type Position[T any] struct {
	Page  T
	Index int
	Total int
}

type view[T any] struct {
	id      string
	pages   []T
	cursor  int
	touched time.Time
}

// Registry maps view ids to page cursors.
type Registry[T any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	views map[string]*list.Element
	// Least recently used at the front.
	lru *list.List
}

// New creates a registry holding at most capacity views, each forgotten ttl after it
// was last used.
func New[T any](capacity int, ttl time.Duration) *Registry[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry[T]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		views:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Add registers pages under id with the cursor on the first page. Registering an
// existing id replaces it. Empty pages are not registered.
func (r *Registry[T]) Add(id string, pages []T) bool {
	if len(pages) == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.views[id]; ok {
		r.lru.Remove(el)
		delete(r.views, id)
	}
	r.expire()
	for r.lru.Len() >= r.capacity {
		r.evict(r.lru.Front())
	}

	r.views[id] = r.lru.PushBack(&view[T]{id: id, pages: pages, touched: r.now()})
	return true
}

// Current returns the page id is showing.
func (r *Registry[T]) Current(id string) (Position[T], bool) {
	return r.Move(id, 0)
}

// Move shifts the cursor of id by dir pages, stopping at the first and last page.
func (r *Registry[T]) Move(id string, dir Direction) (Position[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.expire()
	el, ok := r.views[id]
	if !ok {
		return Position[T]{}, false
	}
	v := el.Value.(*view[T])

	v.cursor += int(dir)
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor >= len(v.pages) {
		v.cursor = len(v.pages) - 1
	}
	v.touched = r.now()
	r.lru.MoveToBack(el)

	return Position[T]{Page: v.pages[v.cursor], Index: v.cursor, Total: len(v.pages)}, true
}

// Remove forgets id.
func (r *Registry[T]) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.views[id]; ok {
		r.evict(el)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expire()
	return r.lru.Len()
}

// expire drops views unused for longer than the ttl. Callers hold mu.
func (r *Registry[T]) expire() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	for el := r.lru.Front(); el != nil; el = r.lru.Front() {
		if now.Sub(el.Value.(*view[T]).touched) <= r.ttl {
			return
		}
		r.evict(el)
	}
}

func (r *Registry[T]) evict(el *list.Element) {
	v := r.lru.Remove(el).(*view[T])
	delete(r.views, v.id)
}
