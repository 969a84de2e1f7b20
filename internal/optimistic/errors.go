package optimistic

import (
	"errors"
	"fmt"
)

// ErrConflictStale marks a remote response whose mutation was superseded by
// a later one on the same project. Such responses are dropped and never
// returned to callers.
var ErrConflictStale = errors.New("response superseded by a later mutation")

// RemoteFailure reports a mutation that the remote store did not accept.
// By the time it is returned the cache has been rolled back.
type RemoteFailure struct {
	Kind      Kind
	ProjectID string
	Err       error
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("%s on project %s did not persist: %v", e.Kind, e.ProjectID, e.Err)
}

func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// IsRemoteFailure reports whether err is, or wraps, a RemoteFailure.
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}
