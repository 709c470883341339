package game

import "github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"

// Command is one serialized mutation of a session. Player-initiated commands
// arrive from the transport; verdict and expiry commands are injected by the
// runner itself and compete for the same single-writer slot.
type Command interface{ isCommand() }

type RollDice struct{ PlayerID string }

type BuyProperty struct{ PlayerID string }

// SolveForProperty asks for a problem to acquire the pending property by
// solving instead of paying.
type SolveForProperty struct{ PlayerID string }

type SubmitPropertyCode struct {
	PlayerID string
	Code     string
	Language judge.Language
}

type PayRent struct{ PlayerID string }

type StartDuel struct{ PlayerID string }

type SubmitDuelCode struct {
	PlayerID string
	Code     string
	Language judge.Language
}

type EndTurn struct{ PlayerID string }

type PayJailFine struct{ PlayerID string }

type BuildHouse struct {
	PlayerID string
	Position int
}

// internal, time- and judge-driven
type duelVerdict struct {
	DuelID   string
	PlayerID string
	Verdict  judge.Verdict
	Err      error
}

type duelExpired struct{ DuelID string }

type challengeVerdict struct {
	PlayerID string
	Verdict  judge.Verdict
	Err      error
}

type challengeExpired struct{ PlayerID string }

func (RollDice) isCommand()           {}
func (BuyProperty) isCommand()        {}
func (SolveForProperty) isCommand()   {}
func (SubmitPropertyCode) isCommand() {}
func (PayRent) isCommand()            {}
func (StartDuel) isCommand()          {}
func (SubmitDuelCode) isCommand()     {}
func (EndTurn) isCommand()            {}
func (PayJailFine) isCommand()        {}
func (BuildHouse) isCommand()         {}
func (duelVerdict) isCommand()        {}
func (duelExpired) isCommand()        {}
func (challengeVerdict) isCommand()   {}
func (challengeExpired) isCommand()   {}
