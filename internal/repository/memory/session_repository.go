package memory

import (
	"sync"
	"time"

	"what-coffee-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps conversation sessions in process memory.
// A missing or unknown session id always yields a freshly minted session,
// never an error. Eviction is controlled by the configured TTL; by default
// sessions live for the process lifetime.
type SessionRepository struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionRepository creates the in-memory session store.
// A ttl <= 0 keeps sessions for the process lifetime.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
		locks: map[string]*sync.Mutex{},
	}
}

// Lock acquires the per-session writer lock and returns its release func.
// Turns within one session are serialized; sessions never share a lock.
func (r *SessionRepository) Lock(sessionID string) func() {
	r.mu.Lock()
	l, ok := r.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[sessionID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// GetOrCreate returns the session for the given id, minting a new session
// when the id is empty or unknown. The returned id is always valid.
func (r *SessionRepository) GetOrCreate(sessionID string) (string, *store.Session) {
	if sessionID != "" {
		if x, found := r.cache.Get(sessionID); found {
			return sessionID, x.(*store.Session)
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := &store.Session{
		ID:        sessionID,
		Profile:   store.NewProfile(),
		CreatedAt: time.Now(),
	}
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
	return sessionID, session
}

// Get returns the session if it exists.
func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// AppendTurn appends a turn to the session's history.
func (r *SessionRepository) AppendTurn(sessionID string, turn store.Turn) {
	id, session := r.GetOrCreate(sessionID)
	session.Turns = append(session.Turns, turn)
	r.cache.Set(id, session, cache.DefaultExpiration)
}

// Profile returns a copy of the session's accumulated profile.
func (r *SessionRepository) Profile(sessionID string) store.Profile {
	_, session := r.GetOrCreate(sessionID)
	p := session.Profile
	p.BrewMethods = append([]string(nil), session.Profile.BrewMethods...)
	return p
}

// MergeProfile applies a partial extraction result to the session profile
// and returns the merged profile.
func (r *SessionRepository) MergeProfile(sessionID string, update store.ProfileUpdate) store.Profile {
	id, session := r.GetOrCreate(sessionID)
	session.Profile.Merge(update, time.Now())
	r.cache.Set(id, session, cache.DefaultExpiration)
	return r.Profile(sessionID)
}

// Delete removes a session and its writer lock.
func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)

	r.mu.Lock()
	delete(r.locks, sessionID)
	r.mu.Unlock()
}
