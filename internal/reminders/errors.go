package reminders

import "errors"

// ErrPermissionUnavailable means notifications cannot be posted at all. A run
// that hits it ends without retry.
var ErrPermissionUnavailable = errors.New("reminders: notification permission unavailable")

// TransientError marks a failure worth retrying, such as a busy store or a
// notifier that failed mid-run.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "reminders: transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Temporary() bool { return true }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}
