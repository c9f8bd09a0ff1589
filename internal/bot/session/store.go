// Package session holds per-conversation dialogue state for the bot.
// Sessions live for the process lifetime only; the persistence service is
// the durable source of truth for completed tickets.
package session

import "sync"

// State is the position of a conversation in the ticket-creation dialogue.
// A single enum covers both the dialogue mode and its step: any state other
// than Idle means a ticket is being created.
type State int

const (
	// Idle means no dialogue is in progress; free text is ignored.
	Idle State = iota
	// AwaitingTitle means the next plain message becomes the draft title.
	AwaitingTitle
	// AwaitingDescription means the next plain message completes the ticket.
	AwaitingDescription
)

func (s State) String() string {
	switch s {
	case AwaitingTitle:
		return "awaiting_title"
	case AwaitingDescription:
		return "awaiting_description"
	default:
		return "idle"
	}
}

// Session is the per-identity dialogue record. UserID is the identity in
// the persistence service, set lazily on first interaction and never
// cleared afterwards; only the draft fields reset.
type Session struct {
	UserID     string
	State      State
	DraftTitle string
}

// Reset returns the session to Idle, keeping the persisted user reference.
func (s Session) Reset() Session {
	return Session{UserID: s.UserID}
}

// Store maps conversation identities to their sessions. Sessions are
// overwritten, never removed. Acquire serializes handling per identity so
// that concurrent updates for the same conversation cannot race on
// State/DraftTitle.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]Session
	locks    map[int64]*sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns the session for the identity, if one exists.
func (s *Store) Get(id int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Set stores the session for the identity, replacing any previous one.
func (s *Store) Set(id int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

// Len reports how many distinct identities have a session.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Acquire takes the per-identity handling lock and returns its release
// function. Handlers hold it for the whole of one inbound event, including
// outbound network calls.
func (s *Store) Acquire(id int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
