package game

import "errors"

// Rejections below never mutate session state and are surfaced only to the
// caller that issued the command. Insufficient funds on a mandatory charge is
// not in this list: that is the bankruptcy transition, not a failure.
var (
	ErrOutOfTurn         = errors.New("not your turn")
	ErrInvalidTransition = errors.New("action not valid in current state")
	ErrUnknownEntity     = errors.New("unknown entity")
	ErrCannotAfford      = errors.New("insufficient funds")
)
