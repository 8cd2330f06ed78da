package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v3"

	"github.com/zeroshade/sgvdesk/internal/ledger"
	"github.com/zeroshade/sgvdesk/internal/monitoring"
	"github.com/zeroshade/sgvdesk/types"
)

type Options struct {
	// TTL evicts sessions idle for longer. Zero keeps them forever.
	TTL       time.Duration
	Artifacts ledger.ArtifactStore
	// Vouchers supplies the table every new session starts with.
	Vouchers func() ([]types.Voucher, error)
	Catalog  func() ([]*types.CatalogItem, error)
}

// Store owns all live sessions. Expired sessions are dropped whenever the
// store is touched.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.Vouchers == nil {
		opts.Vouchers = func() ([]types.Voucher, error) { return nil, nil }
	}
	if opts.Catalog == nil {
		opts.Catalog = func() ([]*types.CatalogItem, error) { return nil, nil }
	}
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

// Get returns the live session for id or starts a new one. The bool
// reports whether the session was created by this call.
func (st *Store) Get(id string) (*Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.evictLocked(now)

	if s, ok := st.sessions[id]; ok && id != "" {
		s.lastSeen = now
		return s, false, nil
	}

	s, err := st.open(shortuuid.New(), now)
	if err != nil {
		return nil, false, err
	}
	st.sessions[s.ID] = s
	monitoring.SetActiveSessions(len(st.sessions))
	return s, true, nil
}

func (st *Store) open(id string, now time.Time) (*Session, error) {
	table, err := ledger.OpenTable()
	if err != nil {
		return nil, fmt.Errorf("open voucher table: %w", err)
	}
	book := ledger.NewBook(table, st.opts.Artifacts)

	rows, err := st.opts.Vouchers()
	if err == nil {
		err = book.Load(rows)
	}
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("seed vouchers: %w", err)
	}

	slog.Info("session started", "session", id, "vouchers", len(rows))
	return &Session{
		ID:          id,
		lastSeen:    now,
		book:        book,
		picked:      make(map[string]struct{}),
		loadCatalog: st.opts.Catalog,
	}, nil
}

// Close ends the session id. Unknown ids are ignored.
func (st *Store) Close(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		st.dropLocked(s, "closed")
	}
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Shutdown ends every session.
func (st *Store) Shutdown() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, s := range st.sessions {
		st.dropLocked(s, "shutdown")
	}
}

func (st *Store) evictLocked(now time.Time) {
	if st.opts.TTL <= 0 {
		return
	}
	for _, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.opts.TTL {
			st.dropLocked(s, "expired")
		}
	}
}

func (st *Store) dropLocked(s *Session, reason string) {
	delete(st.sessions, s.ID)

	// wait for an action still running on it
	s.Lock()
	err := s.close()
	s.Unlock()
	if err != nil {
		slog.Warn("session teardown failed", "session", s.ID, "error", err)
	}

	slog.Info("session ended", "session", s.ID, "reason", reason)
	monitoring.SetActiveSessions(len(st.sessions))
}
