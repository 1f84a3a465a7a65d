// Package session holds browse-session scoped state that lives outside the
// view tree: a flat string store and the scroll-memo handshake built on it.
package session

import "github.com/google/uuid"

// Store is a flat string-keyed store scoped to one browse session.
// It is not safe for concurrent use; confine it to the Bubble Tea update loop.
type Store struct {
	id     string
	values map[string]string
}

// NewStore creates an empty store with a fresh session ID.
func NewStore() *Store {
	return &Store{id: uuid.NewString(), values: make(map[string]string)}
}

// ID returns the session identifier.
func (s *Store) ID() string { return s.id }

// Get returns the value for key.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key, replacing any existing value.
func (s *Store) Set(key, value string) {
	s.values[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) {
	delete(s.values, key)
}

// Len returns the number of stored keys.
func (s *Store) Len() int { return len(s.values) }

// Clear ends the session's state: every key is removed.
func (s *Store) Clear() {
	s.values = make(map[string]string)
}
