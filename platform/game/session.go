package game

import (
	"encoding/json"
	"time"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/board"
)

const (
	StartingMoney = 1500
	PassGoBonus   = 200
	JailFine      = 50
	JailPosition  = 10
	MaxJailRolls  = 3

	// DefaultTimeLimit bounds duels and purchase challenges.
	DefaultTimeLimit = 300 * time.Second
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

type PendingKind string

const (
	PendingPurchase PendingKind = "purchase"
	PendingRent     PendingKind = "rent"
)

// Pending is an unresolved landing decision for the current player: an open
// purchase offer, or rent owed that may still be contested. At most one exists
// at a time and it is settled no later than end of turn.
type Pending struct {
	Kind     PendingKind `json:"kind"`
	PlayerID string      `json:"player_id"`
	Position int         `json:"position"`
	Amount   int         `json:"amount,omitempty"`
	OwnerID  string      `json:"owner_id,omitempty"`
}

// Session is the full authoritative state of one match. It is mutated only
// from its runner's command loop, one command at a time.
type Session struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	Players   []*Player   `json:"players"`
	Current   int         `json:"current"`
	Turn      int         `json:"turn"`
	Track     board.Track `json:"track"`
	Status    Status      `json:"status"`
	Duel      *Duel       `json:"duel,omitempty"`
	Challenge *Challenge  `json:"challenge,omitempty"`
	Pending   *Pending    `json:"pending,omitempty"`
	WinnerID  string      `json:"winner_id,omitempty"`
	LastRoll  [2]int      `json:"last_roll"`
}

// Seat describes one joining player.
type Seat struct {
	UserID string
	Name   string
	Avatar string
}

// NewSession builds an in-progress match. Seat order is turn order.
func NewSession(id, code string, seats []Seat) *Session {
	s := &Session{
		ID:     id,
		Code:   code,
		Track:  board.NewTrack(),
		Status: StatusInProgress,
		Turn:   1,
	}
	for _, seat := range seats {
		s.Players = append(s.Players, &Player{
			ID:     seat.UserID,
			Name:   seat.Name,
			Avatar: seat.Avatar,
			Money:  StartingMoney,
			Active: true,
		})
	}
	return s
}

func (s *Session) player(id string) (*Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// CurrentPlayer returns the turn holder.
func (s *Session) CurrentPlayer() *Player {
	return s.Players[s.Current]
}

// requireCurrent rejects commands from anyone but the active turn holder of a
// running match.
func (s *Session) requireCurrent(playerID string) (*Player, error) {
	if s.Status != StatusInProgress {
		return nil, ErrInvalidTransition
	}
	p, ok := s.player(playerID)
	if !ok {
		return nil, ErrUnknownEntity
	}
	if s.Players[s.Current] != p || !p.Active {
		return nil, ErrOutOfTurn
	}
	return p, nil
}

func (s *Session) activeCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Active {
			n++
		}
	}
	return n
}

func (s *Session) lowestActiveIndex() int {
	for i, p := range s.Players {
		if p.Active {
			return i
		}
	}
	return 0
}

// advanceTurn hands the turn to the next active seat, bumping the turn
// counter each time the rotation wraps back to its first active seat.
func (s *Session) advanceTurn() []Event {
	cur := s.Players[s.Current]
	cur.HasRolled = false
	cur.Doubles = 0

	n := len(s.Players)
	for i := 1; i <= n; i++ {
		idx := (s.Current + i) % n
		if s.Players[idx].Active {
			s.Current = idx
			break
		}
	}
	if s.Current == s.lowestActiveIndex() {
		s.Turn++
	}
	return []Event{event(EvChangeTurn, ChangeTurnPayload{PlayerID: s.Players[s.Current].ID, Turn: s.Turn})}
}

// charge applies a mandatory payment. If the payer cannot cover it, the
// bankruptcy transition runs: every owned property is released first, the
// balance goes transiently negative, the creditor receives what was actually
// there, and the payer is marked inactive. Always succeeds.
func (s *Session) charge(p *Player, amount int, creditor *Player) []Event {
	if p.Money >= amount {
		p.Money -= amount
		if creditor != nil {
			creditor.Money += amount
		}
		return nil
	}

	for _, prop := range s.Track.OwnedBy(p.ID) {
		prop.OwnerID = ""
		prop.Houses = 0
	}
	p.Properties = nil

	available := p.Money
	p.Money -= amount
	if creditor != nil && available > 0 {
		creditor.Money += available
	}
	p.Active = false
	events := []Event{event(EvPlayerBankrupt, PlayerBankruptPayload{PlayerID: p.ID})}

	if s.activeCount() == 1 {
		return append(events, s.finish()...)
	}
	if s.Players[s.Current] == p {
		events = append(events, s.advanceTurn()...)
	}
	return events
}

func (s *Session) finish() []Event {
	s.Status = StatusFinished
	for _, p := range s.Players {
		if p.Active {
			s.WinnerID = p.ID
			break
		}
	}
	s.Duel = nil
	s.Challenge = nil
	s.Pending = nil
	return []Event{event(EvGameOver, GameOverPayload{WinnerID: s.WinnerID})}
}

// Snapshot serializes the session for the persistence collaborator.
// Last-writer-wins at snapshot granularity; no transactional guarantees.
func (s *Session) Snapshot() ([]byte, error) {
	return json.Marshal(s)
}

// RestoreSession rebuilds a session from a stored snapshot.
func RestoreSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
