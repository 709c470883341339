package game

import (
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/deck"
)

// Event is one state-diff notification broadcast to every member of a
// session. Name is the wire event name, Payload is marshalled at the
// transport edge.
type Event struct {
	Name    string
	Payload interface{}
}

const (
	EvDiceRolled       = "dice-rolled"
	EvPlayerMoved      = "player-moved"
	EvMayPurchase      = "may-purchase"
	EvPropertyBought   = "property-bought"
	EvRentDue          = "rent-due"
	EvRentPaid         = "rent-paid"
	EvTaxPaid          = "tax-paid"
	EvCardDrawn        = "card-drawn"
	EvPlayerJailed     = "player-jailed"
	EvJailStay         = "jail-stay"
	EvJailFreed        = "jail-freed"
	EvHouseBuilt       = "house-built"
	EvProblemAssigned  = "problem-assigned"
	EvSubmissionResult = "submission-result"
	EvChallengeExpired = "challenge-expired"
	EvDuelStarted      = "duel-started"
	EvDuelEnded        = "duel-ended"
	EvPlayerBankrupt   = "player-bankrupt"
	EvChangeTurn       = "change-turn"
	EvGameOver         = "game-over"
)

type DiceRolledPayload struct {
	PlayerID string `json:"player_id"`
	Dice     [2]int `json:"dice"`
	Doubles  bool   `json:"doubles"`
}

type PlayerMovedPayload struct {
	PlayerID string `json:"player_id"`
	From     int    `json:"from"`
	To       int    `json:"to"`
	PassedGo bool   `json:"passed_go"`
}

type MayPurchasePayload struct {
	PlayerID   string `json:"player_id"`
	Position   int    `json:"position"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Difficulty string `json:"difficulty"`
}

type PropertyBoughtPayload struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Price    int    `json:"price"`
	ViaSolve bool   `json:"via_solve"`
}

type RentDuePayload struct {
	PlayerID string `json:"player_id"`
	OwnerID  string `json:"owner_id"`
	Position int    `json:"position"`
	Amount   int    `json:"amount"`
}

type RentPaidPayload struct {
	PlayerID string `json:"player_id"`
	OwnerID  string `json:"owner_id"`
	Position int    `json:"position"`
	Amount   int    `json:"amount"`
}

type TaxPaidPayload struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Amount   int    `json:"amount"`
}

type CardDrawnPayload struct {
	PlayerID string    `json:"player_id"`
	Deck     deck.Name `json:"deck"`
	Card     deck.Card `json:"card"`
}

type PlayerJailedPayload struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

type JailStayPayload struct {
	PlayerID string `json:"player_id"`
	Attempt  int    `json:"attempt"`
}

type JailFreedPayload struct {
	PlayerID string `json:"player_id"`
	PaidFine bool   `json:"paid_fine"`
}

type HouseBuiltPayload struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Houses   int    `json:"houses"`
}

// ProblemAssignedPayload announces the problem for a duel or a purchase
// challenge. TimeLimit is in seconds.
type ProblemAssignedPayload struct {
	PlayerID    string            `json:"player_id"`
	Context     string            `json:"context"` // "duel" | "purchase"
	ProblemID   string            `json:"problem_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StarterCode map[string]string `json:"starter_code"`
	TimeLimit   int               `json:"time_limit"`
}

type SubmissionResultPayload struct {
	PlayerID    string `json:"player_id"`
	Context     string `json:"context"`
	Passed      bool   `json:"passed"`
	PassedCount int    `json:"passed_count"`
	TotalCount  int    `json:"total_count"`
	Error       string `json:"error,omitempty"`
}

type ChallengeExpiredPayload struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
}

type DuelStartedPayload struct {
	DuelID       string `json:"duel_id"`
	ChallengerID string `json:"challenger_id"`
	DefenderID   string `json:"defender_id"`
	Position     int    `json:"position"`
	ProblemID    string `json:"problem_id"`
	Title        string `json:"title"`
	TimeLimit    int    `json:"time_limit"`
}

type DuelEndedPayload struct {
	DuelID   string     `json:"duel_id"`
	Status   DuelStatus `json:"status"`
	WinnerID string     `json:"winner_id,omitempty"`
	Position int        `json:"position"`
	OwnerID  string     `json:"owner_id"`
}

type PlayerBankruptPayload struct {
	PlayerID string `json:"player_id"`
}

type ChangeTurnPayload struct {
	PlayerID string `json:"player_id"`
	Turn     int    `json:"turn"`
}

type GameOverPayload struct {
	WinnerID string `json:"winner_id"`
}

func event(name string, payload interface{}) Event {
	return Event{Name: name, Payload: payload}
}
