package queue

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often a session wakes to check for a pending
// render. Edits are coalesced to at most one per interval so bursts of
// joins and leaves don't trip Telegram's flood limits.
const DefaultInterval = 3500 * time.Millisecond

// retryMargin is added on top of the wait the display asks for when it
// rate-limits an edit.
const retryMargin = 100 * time.Millisecond

// Session is the render scheduler for one queue. Membership-changing
// events call Signal; a background loop started by the registry coalesces
// those signals into periodic edits of the displayed message.
type Session struct {
	key      Key
	source   MemberSource
	display  Display
	interval time.Duration

	mu     sync.Mutex
	handle MessageHandle

	pending    atomic.Bool
	terminated atomic.Bool
	done       chan struct{}
}

func newSession(key Key, source MemberSource, display Display, interval time.Duration) *Session {
	return &Session{
		key:      key,
		source:   source,
		display:  display,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Signal marks the queue as needing a re-render and remembers the latest
// known display handle. Non-blocking; safe from any handler goroutine.
func (s *Session) Signal(handle MessageHandle) {
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()

	s.pending.Store(true)
}

// markTerminated tells the loop to exit on its next wake. An in-flight
// render is allowed to finish.
func (s *Session) markTerminated() {
	s.terminated.Store(true)
}

// Done is closed once the session's loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) currentHandle() MessageHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// run is the session's background loop. It wakes every interval and
// renders at most once per wake, no matter how many signals arrived in
// between.
func (s *Session) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		if s.terminated.Load() {
			slog.Debug("queue: session terminated, loop exiting",
				"chat_id", s.key.ChatID, "message_id", s.key.MessageID)
			return
		}

		if !s.pending.CompareAndSwap(true, false) {
			continue
		}

		s.render()
	}
}

// render pushes the current membership to the display. Rate-limit
// pushback gets a single bounded retry; an unchanged display is success;
// anything else is logged and left for the next membership change to fix.
func (s *Session) render() {
	members, err := s.source.List(s.key)
	if err != nil {
		slog.Error("queue: failed to list members for render", "error", err,
			"chat_id", s.key.ChatID, "message_id", s.key.MessageID)
		return
	}

	text := Text(members)
	handle := s.currentHandle()

	err = s.display.EditText(handle, text)

	var rateLimited *RateLimitedError
	if errors.As(err, &rateLimited) {
		slog.Info("queue: display rate limited, waiting",
			"retry_after", rateLimited.RetryAfter,
			"chat_id", s.key.ChatID, "message_id", s.key.MessageID)
		time.Sleep(rateLimited.RetryAfter + retryMargin)
		err = s.display.EditText(handle, text)
	}

	switch {
	case err == nil:
		slog.Debug("queue: rendered", "chat_id", s.key.ChatID,
			"message_id", s.key.MessageID, "members", len(members))
	case errors.Is(err, ErrUnchanged):
		slog.Debug("queue: display already up to date",
			"chat_id", s.key.ChatID, "message_id", s.key.MessageID)
	default:
		slog.Error("queue: failed to update display", "error", err,
			"chat_id", s.key.ChatID, "message_id", s.key.MessageID)
	}
}
