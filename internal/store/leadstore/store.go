// Package leadstore holds the in-memory list of employee leads, the
// loading/error status of the last fetch, and the local mutations the UI
// applies to that list.
package leadstore

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/model"
)

// Fetcher retrieves the full lead list from the server.
// Failures should be reported as *FetchError.
type Fetcher interface {
	FetchLeads(ctx context.Context) ([]model.Lead, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]model.Lead, error)

func (f FetcherFunc) FetchLeads(ctx context.Context) ([]model.Lead, error) { return f(ctx) }

// State is what the UI renders. Error is "" when there is none and only
// means something once Loading is false again.
type State struct {
	List    []model.Lead
	Loading bool
	Error   string
}

// Store is the lead state container. Create one with New and hand the
// pointer to every component that reads or mutates leads.
type Store struct {
	fetcher Fetcher
	logger  *log.Entry

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the entry used for load diagnostics.
func WithLogger(l *log.Entry) Option {
	return func(s *Store) { s.logger = l }
}

// errNoFetcher is the cause reported when a store was built without a
// Fetcher.
var errNoFetcher = errors.New("no fetcher configured")

// New returns an idle store with an empty list. f is required; a store
// without one fails every Load with a transport error.
func New(f Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: f,
		logger:  log.WithField("component", "leadstore"),
		state:   State{List: []model.Lead{}},
		subs:    make(map[int]func(State)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called with the new state after every
// change. fn runs on the goroutine that made the change, outside the
// store lock. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Load fetches the lead list and replaces the local one with it.
//
// Loading is set and Error cleared before the fetch starts. On success the
// fetched list replaces List, dropping any local mutations made meanwhile.
// On failure List is kept and Error holds the failure message. Overlapping
// calls are not coordinated: whichever resolves last wins.
//
// Load never returns an error; the returned State is the snapshot taken
// right after this call applied its outcome.
func (s *Store) Load(ctx context.Context) State {
	s.notify(s.mutate(func(st *State) {
		st.Loading = true
		st.Error = ""
	}))

	start := time.Now()
	leads, err := s.fetch(ctx)
	took := time.Since(start)

	snap := s.mutate(func(st *State) {
		st.Loading = false
		if err != nil {
			st.Error = failureMessage(err)
			return
		}
		st.List = model.CloneAll(leads)
	})

	if err != nil {
		entry := s.logger.WithField("took", took)
		var fe *FetchError
		if errors.As(err, &fe) {
			entry = entry.WithField("kind", fe.Kind.String())
			entry.Warn("load leads: " + fe.Detail())
		} else {
			entry.WithError(err).Warn("load leads failed")
		}
	} else {
		s.logger.WithFields(log.Fields{"count": len(leads), "took": took}).Debug("leads loaded")
	}

	s.notify(snap)
	return snap
}

// ReplaceAll swaps in leads as the whole list.
func (s *Store) ReplaceAll(leads []model.Lead) {
	s.notify(s.mutate(func(st *State) {
		st.List = model.CloneAll(leads)
	}))
}

// Add appends lead. Ids are not checked for duplicates.
func (s *Store) Add(lead model.Lead) {
	s.notify(s.mutate(func(st *State) {
		st.List = append(st.List, lead.Clone())
	}))
}

// Update replaces the first lead with the same id, keeping its position.
// Unknown ids are ignored.
func (s *Store) Update(lead model.Lead) {
	s.mu.Lock()
	idx := -1
	for i := range s.state.List {
		if s.state.List[i].ID == lead.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.state.List[idx] = lead.Clone()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Remove drops every lead with the given id. Unknown ids are ignored.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	kept := make([]model.Lead, 0, len(s.state.List))
	for _, l := range s.state.List {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(s.state.List) {
		s.mu.Unlock()
		return
	}
	s.state.List = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) mutate(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	return State{
		List:    model.CloneAll(s.state.List),
		Loading: s.state.Loading,
		Error:   s.state.Error,
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) fetch(ctx context.Context) ([]model.Lead, error) {
	if s.fetcher == nil {
		return nil, TransportFailure(errNoFetcher)
	}
	if fn, ok := s.fetcher.(FetcherFunc); ok && fn == nil {
		return nil, TransportFailure(errNoFetcher)
	}
	return s.fetcher.FetchLeads(ctx)
}

func failureMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		if msg := fe.Error(); msg != "" {
			return msg
		}
	}
	return MsgUnknown
}
