package secondary

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned (wrapped) when the bot account lacks moderation
// privilege for an operation.
var ErrForbidden = errors.New("forbidden: insufficient moderation privilege")

// ErrNoSnapshot is returned by SnapshotStore.LoadSnapshot when no state has
// ever been saved.
var ErrNoSnapshot = errors.New("no saved tracking snapshot")

// PlatformError is the generic category for transport, rate-limit and
// unexpected API response failures.
type PlatformError struct {
	Op         string // e.g. "GET /message/unread"
	StatusCode int    // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *PlatformError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("platform: %s (%d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("platform: %s: %s", e.Op, msg)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// IsPlatformError reports whether err is, or wraps, a *PlatformError.
func IsPlatformError(err error) bool {
	var platformErr *PlatformError
	return errors.As(err, &platformErr)
}
