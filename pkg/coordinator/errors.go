package coordinator

import (
	"errors"

	"github.com/travigo/pidboard/pkg/config"
)

var ErrStopped = errors.New("coordinator has been stopped")

// UpdateFailedError is reported when a refresh could not produce a new snapshot
type UpdateFailedError struct {
	Kind config.ErrorKind
	Err  error
}

func (e *UpdateFailedError) Error() string {
	return e.Err.Error()
}

func (e *UpdateFailedError) Unwrap() error {
	return e.Err
}
