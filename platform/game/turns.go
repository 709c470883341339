package game

import (
	"math/rand"

	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/board"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/deck"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/economy"
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/problems"
)

// RollDice rolls for the current player and resolves the landing. Rejected
// while a duel is running or after the player has already used their roll.
// Doubles grant another roll; three consecutive doubles go straight to jail.
func (s *Session) RollDice(playerID string, rng *rand.Rand) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Duel != nil || s.Challenge != nil {
		return nil, ErrInvalidTransition
	}
	if p.HasRolled {
		return nil, ErrInvalidTransition
	}

	// A doubles re-roll may arrive with the previous landing still open:
	// the purchase offer lapses, unpaid rent is mandatory and charged now.
	var events []Event
	if s.Pending != nil && s.Pending.PlayerID == p.ID {
		if s.Pending.Kind == PendingRent {
			events = append(events, s.settleRent(p)...)
			if !p.Active || s.Status == StatusFinished {
				return events, nil
			}
		} else {
			s.Pending = nil
		}
	}

	d1, d2 := rng.Intn(6)+1, rng.Intn(6)+1
	return append(events, s.applyRoll(p, d1, d2, rng)...), nil
}

// applyRoll plays out one rolled pair for the turn holder.
func (s *Session) applyRoll(p *Player, d1, d2 int, rng *rand.Rand) []Event {
	s.LastRoll = [2]int{d1, d2}
	events := []Event{event(EvDiceRolled, DiceRolledPayload{PlayerID: p.ID, Dice: s.LastRoll, Doubles: d1 == d2})}

	if p.InJail {
		return append(events, s.rollInJail(p, d1, d2, rng)...)
	}

	if d1 == d2 {
		p.Doubles++
	} else {
		p.Doubles = 0
		p.HasRolled = true
	}
	if p.Doubles >= 3 {
		return append(events, s.sendToJail(p, "three consecutive doubles")...)
	}

	events = append(events, s.move(p, d1+d2, true)...)
	return append(events, s.resolveLanding(p, d1+d2, false, rng)...)
}

// rollInJail handles the jail sub-state: doubles escape immediately, the
// third failed attempt forces release against the fine.
func (s *Session) rollInJail(p *Player, d1, d2 int, rng *rand.Rand) []Event {
	p.HasRolled = true
	p.Doubles = 0

	if d1 == d2 {
		p.InJail = false
		p.JailTurns = 0
		events := []Event{event(EvJailFreed, JailFreedPayload{PlayerID: p.ID})}
		events = append(events, s.move(p, d1+d2, true)...)
		return append(events, s.resolveLanding(p, d1+d2, false, rng)...)
	}

	p.JailTurns++
	if p.JailTurns < MaxJailRolls {
		return []Event{event(EvJailStay, JailStayPayload{PlayerID: p.ID, Attempt: p.JailTurns})}
	}

	// Forced release: the fine is mandatory, so it can bankrupt.
	events := s.charge(p, JailFine, nil)
	if !p.Active || s.Status == StatusFinished {
		return events
	}
	p.InJail = false
	p.JailTurns = 0
	events = append(events, event(EvJailFreed, JailFreedPayload{PlayerID: p.ID, PaidFine: true}))
	events = append(events, s.move(p, d1+d2, true)...)
	return append(events, s.resolveLanding(p, d1+d2, false, rng)...)
}

// move advances a token steps spaces (may be negative), wrapping modulo the
// track size. Passing Go forward credits the bonus exactly once.
func (s *Session) move(p *Player, steps int, creditGo bool) []Event {
	from := p.Position
	passedGo := creditGo && from+steps >= board.Size
	p.Position = ((from+steps)%board.Size + board.Size) % board.Size
	if passedGo {
		p.Money += PassGoBonus
	}
	return []Event{event(EvPlayerMoved, PlayerMovedPayload{PlayerID: p.ID, From: from, To: p.Position, PassedGo: passedGo})}
}

// resolveLanding applies the effect of the space under p. fromCard marks a
// card-triggered re-resolution: those never draw a second card, which bounds
// the recursion at one level.
func (s *Session) resolveLanding(p *Player, diceTotal int, fromCard bool, rng *rand.Rand) []Event {
	sp := s.Track.At(p.Position)

	switch sp.Kind {
	case board.KindProperty, board.KindRailroad, board.KindUtility:
		return s.resolvePurchasable(p, sp, diceTotal)

	case board.KindTax:
		due := economy.TaxDue(sp, p.Money)
		events := []Event{event(EvTaxPaid, TaxPaidPayload{PlayerID: p.ID, Position: sp.Position, Amount: due})}
		return append(events, s.charge(p, due, nil)...)

	case board.KindChance:
		if fromCard {
			return nil
		}
		return s.resolveCard(p, deck.Chance, rng)

	case board.KindChest:
		if fromCard {
			return nil
		}
		return s.resolveCard(p, deck.Chest, rng)

	case board.KindJail, board.KindGoToJail:
		return s.sendToJail(p, sp.Name)

	default:
		// Go and Free Parking: nothing beyond the pass-go bonus already
		// credited during movement.
		return nil
	}
}

func (s *Session) resolvePurchasable(p *Player, sp board.Space, diceTotal int) []Event {
	prop := sp.Property
	switch prop.OwnerID {
	case "":
		s.Pending = &Pending{Kind: PendingPurchase, PlayerID: p.ID, Position: prop.Position}
		return []Event{event(EvMayPurchase, MayPurchasePayload{
			PlayerID:   p.ID,
			Position:   prop.Position,
			Name:       prop.Name,
			Price:      prop.Price,
			Difficulty: difficultyFor(prop),
		})}
	case p.ID:
		return nil
	default:
		owner, ok := s.player(prop.OwnerID)
		if !ok || !owner.Active {
			return nil
		}
		rent := economy.RentDue(&s.Track, prop, diceTotal)
		s.Pending = &Pending{Kind: PendingRent, PlayerID: p.ID, Position: prop.Position, Amount: rent, OwnerID: owner.ID}
		return []Event{event(EvRentDue, RentDuePayload{PlayerID: p.ID, OwnerID: owner.ID, Position: prop.Position, Amount: rent})}
	}
}

// resolveCard draws from the given deck and applies the effect atomically:
// money delta first, then move delta. A move re-resolves the new space once.
func (s *Session) resolveCard(p *Player, name deck.Name, rng *rand.Rand) []Event {
	card, err := deck.Draw(name, rng)
	if err != nil {
		return nil
	}
	return s.applyCard(p, name, card, rng)
}

func (s *Session) applyCard(p *Player, name deck.Name, card deck.Card, rng *rand.Rand) []Event {
	events := []Event{event(EvCardDrawn, CardDrawnPayload{PlayerID: p.ID, Deck: name, Card: card})}

	if card.Money > 0 {
		p.Money += card.Money
	} else if card.Money < 0 {
		events = append(events, s.charge(p, -card.Money, nil)...)
		if !p.Active || s.Status == StatusFinished {
			return events
		}
	}

	if card.Move != 0 {
		events = append(events, s.move(p, card.Move, card.Move > 0)...)
		events = append(events, s.resolveLanding(p, dicePips(s.LastRoll), true, rng)...)
	}
	return events
}

// sendToJail parks the token on the jail space and ends the turn
// immediately, with no further landing resolution.
func (s *Session) sendToJail(p *Player, reason string) []Event {
	p.InJail = true
	p.JailTurns = 0
	p.Position = JailPosition
	p.HasRolled = true
	p.Doubles = 0
	s.Pending = nil
	events := []Event{event(EvPlayerJailed, PlayerJailedPayload{PlayerID: p.ID, Reason: reason})}
	return append(events, s.advanceTurn()...)
}

// BuyProperty settles an open purchase offer with cash. Buying is optional,
// so a short balance is a plain rejection rather than bankruptcy.
func (s *Session) BuyProperty(playerID string) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Pending == nil || s.Pending.Kind != PendingPurchase || s.Pending.PlayerID != p.ID || s.Challenge != nil {
		return nil, ErrInvalidTransition
	}
	prop, err := s.Track.PropertyAt(s.Pending.Position)
	if err != nil || prop.OwnerID != "" {
		return nil, ErrInvalidTransition
	}
	if !economy.CanAfford(p.Money, prop.Price) {
		return nil, ErrCannotAfford
	}

	p.Money -= prop.Price
	prop.OwnerID = p.ID
	p.addProperty(prop.ID)
	s.Pending = nil
	return []Event{event(EvPropertyBought, PropertyBoughtPayload{PlayerID: p.ID, Position: prop.Position, Price: prop.Price})}, nil
}

// PayRent settles pending rent voluntarily (instead of dueling).
func (s *Session) PayRent(playerID string) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Pending == nil || s.Pending.Kind != PendingRent || s.Pending.PlayerID != p.ID {
		return nil, ErrInvalidTransition
	}
	return s.settleRent(p), nil
}

func (s *Session) settleRent(p *Player) []Event {
	pending := s.Pending
	s.Pending = nil
	owner, ok := s.player(pending.OwnerID)
	if !ok {
		return nil
	}
	events := []Event{event(EvRentPaid, RentPaidPayload{PlayerID: p.ID, OwnerID: owner.ID, Position: pending.Position, Amount: pending.Amount})}
	return append(events, s.charge(p, pending.Amount, owner)...)
}

// PayJailFine buys out of jail before rolling.
func (s *Session) PayJailFine(playerID string) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if !p.InJail || p.HasRolled {
		return nil, ErrInvalidTransition
	}
	if !economy.CanAfford(p.Money, JailFine) {
		return nil, ErrCannotAfford
	}
	p.Money -= JailFine
	p.InJail = false
	p.JailTurns = 0
	return []Event{event(EvJailFreed, JailFreedPayload{PlayerID: p.ID, PaidFine: true})}, nil
}

// BuildHouse adds a house (hotel at four) on an owned full-group property.
func (s *Session) BuildHouse(playerID string, position int) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	prop, err := s.Track.PropertyAt(position)
	if err != nil {
		return nil, ErrUnknownEntity
	}
	if prop.OwnerID != p.ID || !economy.CanBuildHouse(&s.Track, prop) {
		return nil, ErrInvalidTransition
	}
	if !economy.CanAfford(p.Money, prop.HouseCost) {
		return nil, ErrCannotAfford
	}
	p.Money -= prop.HouseCost
	prop.Houses++
	return []Event{event(EvHouseBuilt, HouseBuiltPayload{PlayerID: p.ID, Position: position, Houses: prop.Houses})}, nil
}

// EndTurn settles anything still pending and hands the turn over. An open
// purchase offer lapses; unpaid rent is mandatory and is charged here. Ending
// a turn that has already moved on is rejected as out of turn, so the index
// can never advance twice for one turn.
func (s *Session) EndTurn(playerID string) ([]Event, error) {
	p, err := s.requireCurrent(playerID)
	if err != nil {
		return nil, err
	}
	if s.Duel != nil {
		return nil, ErrInvalidTransition
	}
	if !p.HasRolled {
		return nil, ErrInvalidTransition
	}

	var events []Event
	s.Challenge = nil
	if s.Pending != nil && s.Pending.PlayerID == p.ID {
		if s.Pending.Kind == PendingRent {
			events = append(events, s.settleRent(p)...)
		} else {
			s.Pending = nil
		}
	}
	if s.Status == StatusFinished {
		return events, nil
	}
	if !p.Active {
		// Bankrupted while settling; charge already advanced the turn.
		return events, nil
	}
	return append(events, s.advanceTurn()...), nil
}

func difficultyFor(p *board.Property) string {
	return problems.DifficultyForPrice(p.Price)
}

func dicePips(roll [2]int) int {
	return roll[0] + roll[1]
}
