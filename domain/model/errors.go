package model

import "errors"

var (
	// ErrConfiguration is returned when the watched directory is missing, is not a
	// directory or cannot be read. It is reported immediately, never after a timeout.
	ErrConfiguration = errors.New("configuration error")

	// ErrSubscription is returned when the event detector cannot register
	// for filesystem notifications.
	ErrSubscription = errors.New("subscription error")

	ErrUnknownStrategy = errors.New("unknown detection strategy")
	ErrArrivalNotFound = errors.New("arrival not found")
)
