package editor

import "errors"

var (
	// ErrInvalidCommand indicates a command that cannot be decoded or names
	// an unknown field, section, or command type.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionClosed indicates the session loop stopped before answering.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionLimit indicates the registry is full and cannot open a new
	// session.
	ErrSessionLimit = errors.New("session limit reached")
)
