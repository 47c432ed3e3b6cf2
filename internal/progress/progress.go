// Package progress records which topics a learner finished on this device.
// Nothing here needs an account; the data never leaves local storage.
package progress

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"
)

// StorageKey is the key the whole progress map is stored under.
const StorageKey = "sciosprints_progress"

var (
	ErrEmptyTopicID      = errors.New("progress: topic id is required")
	ErrNegativeTimeSpent = errors.New("progress: time spent cannot be negative")
)

// Entry is the progress of one topic.
type Entry struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `json:"timeSpent"`
}

// UnmarshalJSON accepts a fractional timeSpent, rounded to whole seconds, so
// one odd value does not cost the rest of the stored map.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completedAt"`
		TimeSpent   float64    `json:"timeSpent"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Entry{
		Completed:   raw.Completed,
		CompletedAt: raw.CompletedAt,
		TimeSpent:   int(math.Max(0, math.Round(raw.TimeSpent))),
	}
	return nil
}

// EventKind says what changed.
type EventKind int

const (
	Updated EventKind = iota
	Cleared
)

func (k EventKind) String() string {
	if k == Cleared {
		return "progressCleared"
	}
	return "progressUpdated"
}

// Event is delivered to listeners after a mutation is stored.
// TopicID and Completed are zero for Cleared.
type Event struct {
	Kind      EventKind
	TopicID   string
	Completed bool
}

// Listener receives events synchronously.
type Listener func(Event)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the local progress store. A Store without storage (no client
// context) accepts every call and does nothing.
type Store struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	logger  *slog.Logger

	listeners map[int]Listener
	nextID    int
}

// New returns a Store over storage, which may be nil.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns the function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SetTopicProgress records topicID as completed or not. completedAt is set
// only when completed. A timeSpent of 0 keeps the previously stored value.
func (s *Store) SetTopicProgress(topicID string, completed bool, timeSpent int) error {
	if s.storage == nil {
		return nil
	}
	if topicID == "" {
		return ErrEmptyTopicID
	}
	if timeSpent < 0 {
		return ErrNegativeTimeSpent
	}

	s.mu.Lock()
	all := s.load()
	if timeSpent == 0 {
		timeSpent = all[topicID].TimeSpent
	}
	e := Entry{Completed: completed, TimeSpent: timeSpent}
	if completed {
		at := s.now().UTC()
		e.CompletedAt = &at
	}
	all[topicID] = e
	err := s.save(all)
	listeners := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to save progress", "topic_id", topicID, "error", err)
		return err
	}
	notify(listeners, Event{Kind: Updated, TopicID: topicID, Completed: completed})
	return nil
}

// Progress returns a copy of every stored entry.
func (s *Store) Progress() map[string]Entry {
	if s.storage == nil {
		return map[string]Entry{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// TopicProgress returns the entry for topicID, if any.
func (s *Store) TopicProgress(topicID string) (Entry, bool) {
	e, ok := s.Progress()[topicID]
	return e, ok
}

// IsTopicCompleted reports whether topicID is recorded as completed.
func (s *Store) IsTopicCompleted(topicID string) bool {
	e, _ := s.TopicProgress(topicID)
	return e.Completed
}

// ProgressMap maps every recorded topic to its completion flag.
func (s *Store) ProgressMap() map[string]bool {
	all := s.Progress()
	out := make(map[string]bool, len(all))
	for id, e := range all {
		out[id] = e.Completed
	}
	return out
}

// ClearProgress removes everything and notifies listeners.
func (s *Store) ClearProgress() error {
	if s.storage == nil {
		return nil
	}
	s.mu.Lock()
	err := s.storage.Delete(StorageKey)
	listeners := s.snapshot()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to clear progress", "error", err)
		return err
	}
	notify(listeners, Event{Kind: Cleared})
	return nil
}

// CompletedTopicsCount counts completed topics.
func (s *Store) CompletedTopicsCount() int {
	n := 0
	for _, e := range s.Progress() {
		if e.Completed {
			n++
		}
	}
	return n
}

// TotalTimeSpent sums timeSpent over every topic, completed or not.
func (s *Store) TotalTimeSpent() int {
	total := 0
	for _, e := range s.Progress() {
		total += e.TimeSpent
	}
	return total
}

// load reads the stored map. Unreadable data is logged and treated as empty.
// Callers hold s.mu.
func (s *Store) load() map[string]Entry {
	out := make(map[string]Entry)
	raw, ok, err := s.storage.Get(StorageKey)
	if err != nil {
		s.logger.Error("failed to load progress", "error", err)
		return out
	}
	if !ok || raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Error("stored progress is corrupt, starting empty", "error", err)
		return make(map[string]Entry)
	}
	return out
}

func (s *Store) save(all map[string]Entry) error {
	b, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.storage.Set(StorageKey, string(b))
}

// snapshot copies the listeners in registration order. Callers hold s.mu.
func (s *Store) snapshot() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

func notify(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l(ev)
	}
}
