package game

import (
	"time"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/app/models"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/judge"
)

type DuelStatus string

const (
	DuelActive        DuelStatus = "active"
	DuelChallengerWon DuelStatus = "challenger-won"
	DuelDefenderWon   DuelStatus = "defender-won"
	DuelTimeout       DuelStatus = "timeout"
)

// DuelSide is one participant's progress. Outstanding marks a submission
// whose verdict has not come back yet; only one may be in flight per side.
type DuelSide struct {
	Code        string         `json:"code,omitempty"`
	Language    judge.Language `json:"language,omitempty"`
	Solved      bool           `json:"solved"`
	Outstanding bool           `json:"outstanding"`
	Attempts    int            `json:"attempts"`
	CompletedAt time.Time      `json:"completed_at,omitempty"`
}

// Duel is a race: the first fully-passing verdict decides it. Status moves
// from active to exactly one terminal value and never back, and a terminal
// duel accepts no further code.
type Duel struct {
	ID           string               `json:"id"`
	ChallengerID string               `json:"challenger_id"`
	DefenderID   string               `json:"defender_id"`
	PropertyID   string               `json:"property_id"`
	Position     int                  `json:"position"`
	Problem      models.Problem       `json:"problem"`
	Sides        map[string]*DuelSide `json:"sides"`
	StartedAt    time.Time            `json:"started_at"`
	TimeLimit    time.Duration        `json:"time_limit"`
	Status       DuelStatus           `json:"status"`
}

func (d *Duel) Terminal() bool {
	return d.Status != DuelActive
}

func (d *Duel) side(playerID string) (*DuelSide, bool) {
	s, ok := d.Sides[playerID]
	return s, ok
}

// Deadline is the hard expiry instant.
func (d *Duel) Deadline() time.Time {
	return d.StartedAt.Add(d.TimeLimit)
}

// Challenge is the single-player analogue of a duel: solving the assigned
// problem inside the window acquires the contested unowned property at zero
// cost.
type Challenge struct {
	PlayerID    string         `json:"player_id"`
	Position    int            `json:"position"`
	Problem     models.Problem `json:"problem"`
	Code        string         `json:"code,omitempty"`
	Language    judge.Language `json:"language,omitempty"`
	Outstanding bool           `json:"outstanding"`
	StartedAt   time.Time      `json:"started_at"`
	TimeLimit   time.Duration  `json:"time_limit"`
}

func (c *Challenge) Deadline() time.Time {
	return c.StartedAt.Add(c.TimeLimit)
}

// StartDuel turns pending rent into a duel against the property's owner.
// Dueling substitutes for the rent obligation, so the pending charge is
// waived here no matter how the duel later ends.
func (s *Session) StartDuel(playerID, duelID string, problem models.Problem, now time.Time) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Duel != nil || s.Challenge != nil {
		return nil, ErrInvalidTransition
	}
	if s.Pending == nil || s.Pending.Kind != PendingRent || s.Pending.PlayerID != p.ID {
		return nil, ErrInvalidTransition
	}
	prop, err := s.Track.PropertyAt(s.Pending.Position)
	if err != nil {
		return nil, ErrUnknownEntity
	}
	defender, ok := s.player(s.Pending.OwnerID)
	if !ok || prop.OwnerID != defender.ID {
		return nil, ErrInvalidTransition
	}

	s.Pending = nil
	s.Duel = &Duel{
		ID:           duelID,
		ChallengerID: p.ID,
		DefenderID:   defender.ID,
		PropertyID:   prop.ID,
		Position:     prop.Position,
		Problem:      problem,
		Sides: map[string]*DuelSide{
			p.ID:        {},
			defender.ID: {},
		},
		StartedAt: now,
		TimeLimit: DefaultTimeLimit,
		Status:    DuelActive,
	}

	limit := int(DefaultTimeLimit.Seconds())
	return []Event{
		event(EvDuelStarted, DuelStartedPayload{
			DuelID:       duelID,
			ChallengerID: p.ID,
			DefenderID:   defender.ID,
			Position:     prop.Position,
			ProblemID:    problem.Id,
			Title:        problem.Title,
			TimeLimit:    limit,
		}),
		event(EvProblemAssigned, ProblemAssignedPayload{
			PlayerID:    p.ID,
			Context:     "duel",
			ProblemID:   problem.Id,
			Title:       problem.Title,
			Description: problem.Description,
			StarterCode: problem.StarterCode,
			TimeLimit:   limit,
		}),
	}, nil
}

// SubmitDuelCode records a participant's submission for judging. Accepted
// only while the duel is active, the participant has not already solved it,
// and no verdict of theirs is still in flight.
func (s *Session) SubmitDuelCode(duelID, playerID, code string, lang judge.Language) error {
	d := s.Duel
	if d == nil || d.ID != duelID || d.Terminal() {
		return ErrInvalidTransition
	}
	side, ok := d.side(playerID)
	if !ok {
		return ErrUnknownEntity
	}
	if side.Solved || side.Outstanding {
		return ErrInvalidTransition
	}
	if !lang.Valid() {
		return ErrInvalidTransition
	}
	side.Code = code
	side.Language = lang
	side.Outstanding = true
	side.Attempts++
	return nil
}

// ApplyDuelVerdict applies a judging result back to the session. It is the
// compare-and-set on duel status: anything referring to a duel that is gone
// or already terminal is silently dropped. A collaborator error degrades to a
// failed submission for that participant.
func (s *Session) ApplyDuelVerdict(duelID, playerID string, v judge.Verdict, judgeErr error, now time.Time) []Event {
	d := s.Duel
	if d == nil || d.ID != duelID || d.Terminal() {
		return nil
	}
	side, ok := d.side(playerID)
	if !ok {
		return nil
	}
	side.Outstanding = false

	if judgeErr != nil {
		return []Event{event(EvSubmissionResult, SubmissionResultPayload{
			PlayerID: playerID,
			Context:  "duel",
			Error:    judgeErr.Error(),
		})}
	}
	if !v.Passed {
		return []Event{event(EvSubmissionResult, SubmissionResultPayload{
			PlayerID:    playerID,
			Context:     "duel",
			PassedCount: v.PassedCount,
			TotalCount:  v.TotalCount,
		})}
	}

	side.Solved = true
	side.CompletedAt = now
	if playerID == d.ChallengerID {
		d.Status = DuelChallengerWon
	} else {
		d.Status = DuelDefenderWon
	}
	return s.concludeDuel(d, playerID)
}

// ExpireDuel fires the hard deadline. The defender has not been out-coded
// and keeps the property.
func (s *Session) ExpireDuel(duelID string) []Event {
	d := s.Duel
	if d == nil || d.ID != duelID || d.Terminal() {
		return nil
	}
	d.Status = DuelTimeout
	return s.concludeDuel(d, "")
}

func (s *Session) concludeDuel(d *Duel, winnerID string) []Event {
	prop, err := s.Track.PropertyAt(d.Position)
	if err != nil {
		s.Duel = nil
		return nil
	}
	if d.Status == DuelChallengerWon {
		if defender, ok := s.player(d.DefenderID); ok {
			defender.removeProperty(prop.ID)
		}
		prop.OwnerID = d.ChallengerID
		if challenger, ok := s.player(d.ChallengerID); ok {
			challenger.addProperty(prop.ID)
		}
	}
	ev := event(EvDuelEnded, DuelEndedPayload{
		DuelID:   d.ID,
		Status:   d.Status,
		WinnerID: winnerID,
		Position: d.Position,
		OwnerID:  prop.OwnerID,
	})
	s.Duel = nil
	return []Event{ev}
}

// StartChallenge assigns a problem for a solve-to-acquire attempt on the
// pending unowned property.
func (s *Session) StartChallenge(playerID string, problem models.Problem, now time.Time) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Duel != nil || s.Challenge != nil {
		return nil, ErrInvalidTransition
	}
	if s.Pending == nil || s.Pending.Kind != PendingPurchase || s.Pending.PlayerID != p.ID {
		return nil, ErrInvalidTransition
	}

	s.Challenge = &Challenge{
		PlayerID:  p.ID,
		Position:  s.Pending.Position,
		Problem:   problem,
		StartedAt: now,
		TimeLimit: DefaultTimeLimit,
	}
	return []Event{event(EvProblemAssigned, ProblemAssignedPayload{
		PlayerID:    p.ID,
		Context:     "purchase",
		ProblemID:   problem.Id,
		Title:       problem.Title,
		Description: problem.Description,
		StarterCode: problem.StarterCode,
		TimeLimit:   int(DefaultTimeLimit.Seconds()),
	})}, nil
}

// SubmitChallengeCode records the solver's code for judging.
func (s *Session) SubmitChallengeCode(playerID, code string, lang judge.Language) error {
	c := s.Challenge
	if c == nil || c.PlayerID != playerID {
		return ErrInvalidTransition
	}
	if c.Outstanding || !lang.Valid() {
		return ErrInvalidTransition
	}
	c.Code = code
	c.Language = lang
	c.Outstanding = true
	return nil
}

// ApplyChallengeVerdict resolves a purchase-challenge verdict. A pass hands
// over the property at zero cost; a fail lets the player retry inside the
// window. Late or stale verdicts are dropped.
func (s *Session) ApplyChallengeVerdict(playerID string, v judge.Verdict, judgeErr error) []Event {
	c := s.Challenge
	if c == nil || c.PlayerID != playerID {
		return nil
	}
	c.Outstanding = false

	if judgeErr != nil {
		return []Event{event(EvSubmissionResult, SubmissionResultPayload{
			PlayerID: playerID,
			Context:  "purchase",
			Error:    judgeErr.Error(),
		})}
	}
	if !v.Passed {
		return []Event{event(EvSubmissionResult, SubmissionResultPayload{
			PlayerID:    playerID,
			Context:     "purchase",
			PassedCount: v.PassedCount,
			TotalCount:  v.TotalCount,
		})}
	}

	prop, err := s.Track.PropertyAt(c.Position)
	if err != nil || prop.OwnerID != "" {
		s.Challenge = nil
		s.Pending = nil
		return nil
	}
	p, ok := s.player(playerID)
	if !ok {
		s.Challenge = nil
		return nil
	}
	prop.OwnerID = p.ID
	p.addProperty(prop.ID)
	s.Challenge = nil
	s.Pending = nil
	return []Event{event(EvPropertyBought, PropertyBoughtPayload{PlayerID: p.ID, Position: prop.Position, ViaSolve: true})}
}

// ExpireChallenge closes the window; the property stays unowned.
func (s *Session) ExpireChallenge(playerID string) []Event {
	c := s.Challenge
	if c == nil || c.PlayerID != playerID {
		return nil
	}
	s.Challenge = nil
	if s.Pending != nil && s.Pending.Kind == PendingPurchase && s.Pending.PlayerID == playerID {
		s.Pending = nil
	}
	return []Event{event(EvChallengeExpired, ChallengeExpiredPayload{PlayerID: playerID, Position: c.Position})}
}
