// Package reader holds the reader view's state and layout rules.
package reader

import (
	"sync"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/cms"
)

// Phase is the load state of the current article.
type Phase int

const (
	Loading Phase = iota
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Key identifies the article a session is showing.
type Key struct {
	ArticleID int
	Lang      string
}

// Ticket is handed to a fetch when it starts and presented when it completes.
type Ticket struct {
	key Key
	seq uint64
}

// Key returns the request the ticket was issued for.
func (t Ticket) Key() Key { return t.key }

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Phase      Phase
	Key        Key
	Article    cms.Article
	Next       *cms.Article
	NextLoaded bool
	Err        error
}

// Session tracks one reader view. Results from superseded requests are
// discarded, and a failed load stays failed until Begin is called again.
// It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	seq        uint64
	key        Key
	phase      Phase
	article    cms.Article
	next       *cms.Article
	nextLoaded bool
	err        error
}

// NewSession returns a session in the Loading phase with no key.
func NewSession() *Session {
	return &Session{}
}

// Begin starts loading key and invalidates tickets for any other key.
func (s *Session) Begin(key Key) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.key = key
	s.phase = Loading
	s.article = cms.Article{}
	s.next = nil
	s.nextLoaded = false
	s.err = nil
	return Ticket{key: key, seq: s.seq}
}

// Resolve moves a loading session to Ready. It reports false when the
// ticket is stale or the session is no longer loading.
func (s *Session) Resolve(t Ticket, article cms.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) || s.phase != Loading {
		return false
	}
	s.article = article.Clone()
	s.phase = Ready
	return true
}

// Fail moves a loading session to Failed.
func (s *Session) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) || s.phase != Loading {
		return false
	}
	s.err = err
	s.phase = Failed
	return true
}

// ResolveNext records the article shown in the second pane. A substituted
// fallback article is kept but not counted as loaded.
func (s *Session) ResolveNext(t Ticket, next cms.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) || s.phase == Failed {
		return false
	}
	cp := next.Clone()
	s.next = &cp
	s.nextLoaded = !next.Fallback
	return true
}

// Current reports whether t belongs to the key being shown.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(t)
}

func (s *Session) currentLocked(t Ticket) bool {
	return t.seq != 0 && t.key == s.key
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Phase:      s.phase,
		Key:        s.key,
		Article:    s.article.Clone(),
		NextLoaded: s.nextLoaded,
		Err:        s.err,
	}
	if s.next != nil {
		cp := s.next.Clone()
		snap.Next = &cp
	}
	return snap
}
