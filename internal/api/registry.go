package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/verte-zerg/funnelquiz/internal/quiz"
)

const (
	defaultMaxSessions = 10000
	defaultSessionTTL  = 30 * time.Minute
)

// session serializes the transitions of one visitor.
type session struct {
	mu      sync.Mutex
	machine *quiz.Machine
}

// Registry keeps live quiz sessions in memory. Sessions idle for longer
// than the TTL, or pushed out by newer ones, are forgotten.
type Registry struct {
	sessions *expirable.LRU[string, *session]
}

// NewRegistry builds a registry holding at most size sessions.
func NewRegistry(size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = defaultMaxSessions
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Registry{sessions: expirable.NewLRU[string, *session](size, nil, ttl)}
}

// create builds a machine with a fresh session id and registers it.
func (r *Registry) create(opts quiz.Options) (*session, error) {
	opts.SessionID = uuid.NewString()
	m, err := quiz.New(opts)
	if err != nil {
		return nil, err
	}
	s := &session{machine: m}
	r.sessions.Add(opts.SessionID, s)
	return s, nil
}

// get returns a live session and renews its TTL.
func (r *Registry) get(id string) (*session, bool) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	r.sessions.Add(id, s)
	return s, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
