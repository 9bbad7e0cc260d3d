package net

import "sort"

// SessionStore tracks live sessions by ID. Game loop only.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session)      { s.sessions[sess.ID] = sess }
func (s *SessionStore) Remove(id uint64)       { delete(s.sessions, id) }
func (s *SessionStore) Get(id uint64) *Session { return s.sessions[id] }
func (s *SessionStore) Count() int             { return len(s.sessions) }

// Raw exposes the map for loops that remove while iterating.
func (s *SessionStore) Raw() map[uint64]*Session { return s.sessions }

// ForEach visits sessions in ascending ID order.
func (s *SessionStore) ForEach(fn func(*Session)) {
	ids := make([]uint64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(s.sessions[id])
	}
}

// Broadcast queues data on every open session except skip (which may be nil).
func (s *SessionStore) Broadcast(data []byte, skip *Session) {
	s.ForEach(func(sess *Session) {
		if sess != skip && !sess.IsClosed() {
			sess.Send(data)
		}
	})
}
