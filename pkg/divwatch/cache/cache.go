package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultTTL is how long any cached load or fetch stays valid.
const DefaultTTL = 30 * time.Minute

// Observer is notified of lookups, labelled by cache namespace.
type Observer interface {
	CacheHit(namespace string)
	CacheMiss(namespace string)
}

type options struct {
	name     string
	size     int
	now      func() time.Time
	observer Observer
}

// Option configures a TTL cache.
type Option func(*options)

// WithName sets the namespace reported to the observer.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithSize bounds the number of entries; the least recently used entry is
// evicted first. Zero means unbounded.
func WithSize(n int) Option { return func(o *options) { o.size = n } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithObserver reports hits and misses.
func WithObserver(obs Observer) Option { return func(o *options) { o.observer = obs } }

// TTL is a keyed store whose entries expire ttl after they were written.
// Expiry is checked when an entry is read; nothing runs in the background.
type TTL[V any] struct {
	ttl time.Duration
	opt options

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is most recently used
}

type entry[V any] struct {
	key string
	at  time.Time
	val V
}

// New returns an empty cache. A non-positive ttl means DefaultTTL.
func New[V any](ttl time.Duration, opts ...Option) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &TTL[V]{ttl: ttl, opt: o, items: make(map[string]*list.Element), order: list.New()}
}

// Status is the outcome of a lookup.
type Status int

const (
	Miss Status = iota
	Hit
	Expired
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Expired:
		return "expired"
	}
	return "miss"
}

// Get returns the value stored under key if it is younger than the ttl.
// An expired entry is dropped.
func (c *TTL[V]) Get(key string) (V, bool) {
	v, st := c.Lookup(key)
	return v, st == Hit
}

// Lookup is Get that also tells an expired entry apart from an absent one.
func (c *TTL[V]) Lookup(key string) (V, Status) {
	var zero V
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.miss()
		return zero, Miss
	}
	ent := el.Value.(*entry[V])
	if c.opt.now().Sub(ent.at) >= c.ttl {
		c.removeLocked(el)
		c.mu.Unlock()
		c.miss()
		return zero, Expired
	}
	c.order.MoveToFront(el)
	v := ent.val
	c.mu.Unlock()
	c.hit()
	return v, Hit
}

// Put stores v under key, replacing any previous entry wholesale.
func (c *TTL[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent := &entry[V]{key: key, at: c.opt.now(), val: v}
	if el, ok := c.items[key]; ok {
		el.Value = ent
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(ent)
	}
	for c.opt.size > 0 && c.order.Len() > c.opt.size {
		c.removeLocked(c.order.Back())
	}
}

// Delete drops key if present.
func (c *TTL[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Len counts stored entries, including expired ones not yet read.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge empties the cache.
func (c *TTL[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

func (c *TTL[V]) removeLocked(el *list.Element) {
	ent := c.order.Remove(el).(*entry[V])
	delete(c.items, ent.key)
}

func (c *TTL[V]) hit() {
	if c.opt.observer != nil {
		c.opt.observer.CacheHit(c.opt.name)
	}
}

func (c *TTL[V]) miss() {
	if c.opt.observer != nil {
		c.opt.observer.CacheMiss(c.opt.name)
	}
}
