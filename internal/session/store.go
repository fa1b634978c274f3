// Package session keeps the in-flight state of multi-step games.
//
// A Store maps a key (a user, or a pair of users) to at most one live
// session. Every session leaves the store exactly once, through Take,
// TakeID or Remove, and whoever takes it out owns its resolution. Expiry
// callbacks go through TakeID as well, so a timeout racing a resolution
// never acts on a session that was already resolved.
package session

import (
	"fmt"
	"sync"
	"time"

	"telegram-economy-bot/internal/game"
	"telegram-economy-bot/internal/pkg/idgen"
)

// Entry is a snapshot of a live session.
type Entry[S any] struct {
	ID        string
	Session   S
	CreatedAt time.Time
}

type slot[S any] struct {
	entry Entry[S]
	stop  func() bool
}

// Store is a keyed registry of sessions of one kind.
type Store[K comparable, S any] struct {
	name    string
	sched   Scheduler
	now     func() time.Time
	mu      sync.Mutex
	entries map[K]*slot[S]
}

// Option configures a Store.
type Option func(*options)

type options struct {
	sched Scheduler
	now   func() time.Time
}

// WithScheduler replaces the timer facility used by ScheduleExpiry.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewStore creates an empty store. name appears in errors and logs.
func NewStore[K comparable, S any](name string, opts ...Option) *Store[K, S] {
	o := options{sched: TimerScheduler{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, S]{
		name:    name,
		sched:   o.sched,
		now:     o.now,
		entries: make(map[K]*slot[S]),
	}
}

// Name returns the store name.
func (s *Store[K, S]) Name() string {
	return s.name
}

// Create inserts a session under key. It fails with game.ErrAlreadyActive
// if a live session exists, leaving that session untouched.
func (s *Store[K, S]) Create(key K, sess S) (Entry[S], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return Entry[S]{}, fmt.Errorf("%s: %w", s.name, game.ErrAlreadyActive)
	}

	now := s.now()
	e := Entry[S]{ID: idgen.NewIDAt(now), Session: sess, CreatedAt: now}
	s.entries[key] = &slot[S]{entry: e}
	return e, nil
}

// Get returns the live session under key.
func (s *Store[K, S]) Get(key K) (Entry[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.entries[key]
	if !ok {
		return Entry[S]{}, false
	}
	return sl.entry, true
}

// Update applies fn to the live session under key while holding the store
// lock. The change is kept only if fn returns nil. It fails with
// game.ErrNoActiveSession if no session is live.
func (s *Store[K, S]) Update(key K, fn func(sess *S) error) (Entry[S], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.entries[key]
	if !ok {
		return Entry[S]{}, fmt.Errorf("%s: %w", s.name, game.ErrNoActiveSession)
	}
	next := sl.entry.Session
	if err := fn(&next); err != nil {
		return sl.entry, err
	}
	sl.entry.Session = next
	return sl.entry, nil
}

// Find returns the oldest live session matching pred.
func (s *Store[K, S]) Find(pred func(key K, sess S) bool) (K, Entry[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		bestKey K
		best    *slot[S]
	)
	for k, sl := range s.entries {
		if !pred(k, sl.entry.Session) {
			continue
		}
		if best == nil || sl.entry.ID < best.entry.ID {
			bestKey, best = k, sl
		}
	}
	if best == nil {
		var zero K
		return zero, Entry[S]{}, false
	}
	return bestKey, best.entry, true
}

// Remove deletes the session under key. Removing an absent key is a no-op.
func (s *Store[K, S]) Remove(key K) {
	s.Take(key)
}

// Take removes and returns the session under key.
func (s *Store[K, S]) Take(key K) (Entry[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeLocked(key, "")
}

// TakeID removes and returns the session under key only if its ID is id.
func (s *Store[K, S]) TakeID(key K, id string) (Entry[S], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeLocked(key, id)
}

func (s *Store[K, S]) takeLocked(key K, id string) (Entry[S], bool) {
	sl, ok := s.entries[key]
	if !ok || (id != "" && sl.entry.ID != id) {
		return Entry[S]{}, false
	}
	delete(s.entries, key)
	if sl.stop != nil {
		sl.stop()
	}
	return sl.entry, true
}

// ScheduleExpiry arranges for the session identified by (key, id) to be
// removed after delay. When the timer fires and that session is still live,
// it is removed and onExpire receives the snapshot. If it was already
// removed, or replaced by a newer session, nothing happens.
func (s *Store[K, S]) ScheduleExpiry(key K, id string, delay time.Duration, onExpire func(key K, e Entry[S])) {
	stop := s.sched.AfterFunc(delay, func() {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok || e.entry.ID != id {
			s.mu.Unlock()
			return
		}
		delete(s.entries, key)
		s.mu.Unlock()

		if onExpire != nil {
			onExpire(key, e.entry)
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.entries[key]; ok && sl.entry.ID == id {
		sl.stop = stop
	}
}

// Len returns the number of live sessions.
func (s *Store[K, S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops every pending expiry timer and drops all sessions.
func (s *Store[K, S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, sl := range s.entries {
		if sl.stop != nil {
			sl.stop()
		}
		delete(s.entries, k)
	}
}
