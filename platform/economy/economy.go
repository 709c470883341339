// Package economy computes the money side of landing resolution. Everything
// here is a pure function over board state; callers apply the returned amounts.
package economy

import (
	"github.com/atshalahmedkhan/CodeOpoly-sub001/platform/board"
)

const (
	// Utility rent is the dice total times a multiplier.
	utilityMultiplier     = 4
	utilityBothMultiplier = 10
)

// RentDue returns the rent owed by a player landing on p. diceTotal is the
// roll that brought the player there (utilities charge a multiple of it).
// Railroad rent doubles for each additional railroad the same owner holds.
func RentDue(t *board.Track, p *board.Property, diceTotal int) int {
	switch {
	case p.Utility:
		if countOwned(t, p.OwnerID, func(q *board.Property) bool { return q.Utility }) >= 2 {
			return diceTotal * utilityBothMultiplier
		}
		return diceTotal * utilityMultiplier
	case p.Railroad:
		owned := countOwned(t, p.OwnerID, func(q *board.Property) bool { return q.Railroad })
		rent := p.Rent
		for i := 1; i < owned; i++ {
			rent *= 2
		}
		return rent
	case p.Houses >= board.Hotel:
		return p.HotelRent
	case p.Houses > 0:
		return p.HouseRents[p.Houses-1]
	default:
		return p.Rent
	}
}

// TaxDue returns the charge for a tax space: the flat minimum, or the
// percentage of the payer's cash holdings if that is higher.
func TaxDue(sp board.Space, money int) int {
	due := sp.TaxAmount
	if sp.TaxRate > 0 && money > 0 {
		if pct := int(float64(money) * sp.TaxRate); pct > due {
			due = pct
		}
	}
	return due
}

// CanAfford reports whether a balance covers a charge.
func CanAfford(money, amount int) bool {
	return money >= amount
}

// CanBuildHouse reports whether the owner may add a house (or upgrade to a
// hotel) on p: ordinary property, full color group held, not already a hotel.
func CanBuildHouse(t *board.Track, p *board.Property) bool {
	if p.Railroad || p.Utility || p.OwnerID == "" || p.Houses >= board.Hotel {
		return false
	}
	for i := range t {
		q := t[i].Property
		if q != nil && q.Group == p.Group && q.OwnerID != p.OwnerID {
			return false
		}
	}
	return true
}

func countOwned(t *board.Track, ownerID string, match func(*board.Property) bool) int {
	n := 0
	for i := range t {
		if p := t[i].Property; p != nil && p.OwnerID == ownerID && match(p) {
			n++
		}
	}
	return n
}
