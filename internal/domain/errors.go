package domain

import "errors"

// ErrInvalidTransition is returned when a reminder is moved out of a terminal state.
var ErrInvalidTransition = errors.New("invalid reminder state transition")
