package rail

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrTrackNotFound  = errors.New("track record not found")
	ErrNoSuchLoad     = errors.New("no such load available")
)

type InvalidActionError string

func (e InvalidActionError) Error() string { return "invalid action: " + string(e) }

func ErrInvalidAction(msg string) error { return InvalidActionError(msg) }
