package game

import "errors"

// ErrSessionNotFound is returned by Stop when the session does not exist,
// is no longer ACTIVE or belongs to another user.  Handlers should
// translate it into an HTTP 404 response.
var ErrSessionNotFound = errors.New("no active game session found")

// ErrNoHistory is returned when a user has not played any game.
var ErrNoHistory = errors.New("no games found")

// ErrUserNotFound is returned when a user id does not resolve.
var ErrUserNotFound = errors.New("user not found")
