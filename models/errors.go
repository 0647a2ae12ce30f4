// File: models/errors.go
package models

import "errors"

// Error kinds shared by every package. Wrap them with fmt.Errorf("%w: ...")
// and test with errors.Is.
var (
	// ErrConfiguration is returned at setup; the session never starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrSizeMismatch is fatal to the current session.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrIdentifierMismatch is fatal to the current session.
	ErrIdentifierMismatch = errors.New("device identifier mismatch")
	// ErrTransportStartup means the listening socket could not be bound.
	ErrTransportStartup = errors.New("transport startup error")
	// ErrTransportTerminated means the network loop exited while the session was running.
	ErrTransportTerminated = errors.New("transport terminated unexpectedly")
	// ErrProtocol is a warning: it is logged and the session continues.
	ErrProtocol = errors.New("protocol warning")
)

// IsFatal reports whether err must take the session out of normal operation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSizeMismatch) ||
		errors.Is(err, ErrIdentifierMismatch) ||
		errors.Is(err, ErrTransportTerminated)
}
