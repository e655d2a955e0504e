package database

import "errors"

var (
	// ErrUserExists indicates a registration attempt with an email that is
	// already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrVideoNotFound indicates the requested video does not exist.
	ErrVideoNotFound = errors.New("video not found")
	// ErrChatNotFound indicates the requested chat does not exist.
	ErrChatNotFound = errors.New("chat not found")
	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrStreamNotFound indicates the requested live stream does not exist.
	ErrStreamNotFound = errors.New("live stream not found")

	// ErrInvalidCredentials is returned for every authentication failure.
	// Unknown email and wrong password are deliberately indistinguishable so
	// callers cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
