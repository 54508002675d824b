package queue

import (
	"errors"
	"fmt"
	"time"
)

// Key identifies one logical queue: the chat it lives in and the message
// that displays it.
type Key struct {
	ChatID    int64
	MessageID int
}

// Member is one participant's entry in a queue. Name fields and Username
// are optional and empty when Telegram didn't supply them.
type Member struct {
	UserID    int64
	FirstName string
	LastName  string
	Username  string
}

// MessageHandle is an opaque reference to the displayed queue message,
// supplied by the bot layer. The core never inspects it.
type MessageHandle any

// MemberSource provides the current membership of a queue in join order.
type MemberSource interface {
	List(key Key) ([]Member, error)
}

// Display is the external messaging surface the scheduler renders to.
// EditText may return *RateLimitedError or ErrUnchanged, see below.
type Display interface {
	EditText(handle MessageHandle, text string) error
	Delete(handle MessageHandle) error
	Pin(handle MessageHandle) error
}

// ErrUnchanged means the display already shows the rendered text. Treated
// as success by the scheduler.
var ErrUnchanged = errors.New("display text unchanged")

// RateLimitedError means the display refused the edit and asked to wait
// before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("display rate limited, retry after %s", e.RetryAfter)
}
