package commerce

import (
	"errors"
	"fmt"
)

// RemoteError reports a failed backend call: a transport failure or timeout
// (Err set), or a response the backend marked unsuccessful (Message set).
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("commerce: %s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("commerce: %s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("commerce: %s: %s", e.Op, e.Message)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Reason returns the text suitable for a user-facing failure result: the
// backend's own message when it sent one, the error text otherwise.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
