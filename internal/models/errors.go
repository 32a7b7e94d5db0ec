package models

import "errors"

var (
	// ErrInvalidScore rejects submissions with a future timestamp, negative
	// score or non-positive ids.
	ErrInvalidScore = errors.New("invalid score submission")

	// ErrInvalidWindow rejects malformed or unconfigured window keys.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrGameNotFound is returned when no leaderboard set exists for a game.
	ErrGameNotFound = errors.New("game not found")

	// ErrUserNotFound is returned when a user has no entry in the selected view.
	ErrUserNotFound = errors.New("user not found in leaderboard")
)
