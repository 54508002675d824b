package queue

import (
	"log/slog"
	"sync"
	"time"
)

// Registry tracks the one live Session per queue. It is constructed once
// in main and injected into the bot layer; there is no package-level
// state.
type Registry struct {
	source   MemberSource
	display  Display
	interval time.Duration

	mu       sync.Mutex
	sessions map[Key]*Session
}

func NewRegistry(source MemberSource, display Display, interval time.Duration) *Registry {
	return &Registry{
		source:   source,
		display:  display,
		interval: interval,
		sessions: make(map[Key]*Session),
	}
}

// GetOrCreate returns the session for key, starting its loop on first
// use. Concurrent calls for the same key observe the same session; two
// loops for one queue would double-send edits.
func (r *Registry) GetOrCreate(key Key) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s
	}

	s := newSession(key, r.source, r.display, r.interval)
	r.sessions[key] = s
	go s.run()

	slog.Debug("queue: session created", "chat_id", key.ChatID, "message_id", key.MessageID)

	return s
}

// Terminate marks the session for key terminated and drops it from the
// registry. The loop exits on its own next wake; the entry is removed
// immediately so GetOrCreate hands out a fresh session if the queue is
// ever recreated under the same key.
func (r *Registry) Terminate(key Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return
	}

	s.markTerminated()
	delete(r.sessions, key)

	slog.Debug("queue: session terminated", "chat_id", key.ChatID, "message_id", key.MessageID)
}
