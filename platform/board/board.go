package board

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Size is the number of spaces on the track.
const Size = 40

// Hotel is the house count that denotes a hotel. A property holds either
// 0-3 houses or a hotel, never both.
const Hotel = 4

type Kind string

const (
	KindGo          Kind = "go"
	KindProperty    Kind = "property"
	KindRailroad    Kind = "railroad"
	KindUtility     Kind = "utility"
	KindTax         Kind = "tax"
	KindChance      Kind = "chance"
	KindChest       Kind = "chest"
	KindJail        Kind = "jail"
	KindGoToJail    Kind = "go-to-jail"
	KindFreeParking Kind = "free-parking"
)

// Purchasable reports whether a space of this kind holds a Property record.
func (k Kind) Purchasable() bool {
	return k == KindProperty || k == KindRailroad || k == KindUtility
}

// Property is one purchasable space. OwnerID and Houses are the only mutable
// fields; everything else is fixed track data.
type Property struct {
	ID         string `json:"id"`
	Position   int    `json:"position"`
	Name       string `json:"name"`
	Group      string `json:"group"`
	Price      int    `json:"price"`
	Rent       int    `json:"rent"`
	HouseRents []int  `json:"house_rents,omitempty"`
	HotelRent  int    `json:"hotel_rent,omitempty"`
	HouseCost  int    `json:"house_cost,omitempty"`
	Railroad   bool   `json:"railroad,omitempty"`
	Utility    bool   `json:"utility,omitempty"`

	OwnerID string `json:"owner_id,omitempty"`
	Houses  int    `json:"houses,omitempty"`
}

// Space is one entry on the track. Property is nil unless Kind is purchasable.
type Space struct {
	Kind     Kind      `json:"kind"`
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Property *Property `json:"property,omitempty"`

	// Tax spaces only. Amount is the flat minimum, Rate an optional
	// percentage of the payer's cash holdings.
	TaxAmount int     `json:"amount,omitempty"`
	TaxRate   float64 `json:"rate,omitempty"`
}

// Track is a full 40-space board. Each session gets its own copy so that
// ownership and houses can be mutated independently.
type Track [Size]Space

type spaceJSON struct {
	Kind       Kind    `json:"kind"`
	Position   int     `json:"position"`
	Name       string  `json:"name"`
	Group      string  `json:"group"`
	Price      int     `json:"price"`
	Rent       int     `json:"rent"`
	HouseRents []int   `json:"house_rents"`
	HotelRent  int     `json:"hotel_rent"`
	HouseCost  int     `json:"house_cost"`
	Amount     int     `json:"amount"`
	Rate       float64 `json:"rate"`
}

//go:embed properties.json
var propertiesJSON []byte

var template Track

func init() {
	t, err := parseTrack(propertiesJSON)
	if err != nil {
		panic(fmt.Errorf("board: bad embedded track data: %w", err))
	}
	template = t
}

func parseTrack(raw []byte) (Track, error) {
	var entries []spaceJSON
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Track{}, err
	}
	if len(entries) != Size {
		return Track{}, fmt.Errorf("expected %d spaces, got %d", Size, len(entries))
	}

	var t Track
	seen := [Size]bool{}
	for _, e := range entries {
		if e.Position < 0 || e.Position >= Size {
			return Track{}, fmt.Errorf("space %q: position %d out of range", e.Name, e.Position)
		}
		if seen[e.Position] {
			return Track{}, fmt.Errorf("duplicate position %d", e.Position)
		}
		seen[e.Position] = true

		sp := Space{Kind: e.Kind, Position: e.Position, Name: e.Name}
		switch {
		case e.Kind.Purchasable():
			p, err := parseProperty(e)
			if err != nil {
				return Track{}, fmt.Errorf("space %q: %w", e.Name, err)
			}
			sp.Property = p
		case e.Kind == KindTax:
			if e.Amount <= 0 {
				return Track{}, fmt.Errorf("tax space %q: missing flat minimum", e.Name)
			}
			sp.TaxAmount = e.Amount
			sp.TaxRate = e.Rate
		}
		t[e.Position] = sp
	}
	return t, nil
}

func parseProperty(e spaceJSON) (*Property, error) {
	if e.Price <= 0 {
		return nil, fmt.Errorf("missing price")
	}
	p := &Property{
		ID:       fmt.Sprintf("prop-%d", e.Position),
		Position: e.Position,
		Name:     e.Name,
		Group:    e.Group,
		Price:    e.Price,
		Rent:     e.Rent,
		Railroad: e.Kind == KindRailroad,
		Utility:  e.Kind == KindUtility,
	}
	if e.Kind == KindProperty {
		if len(e.HouseRents) != Hotel {
			return nil, fmt.Errorf("expected %d house rents, got %d", Hotel, len(e.HouseRents))
		}
		prev := e.Rent
		for _, r := range e.HouseRents {
			if r <= prev {
				return nil, fmt.Errorf("house rents must ascend from base rent")
			}
			prev = r
		}
		if e.HotelRent <= e.HouseRents[Hotel-1] {
			return nil, fmt.Errorf("hotel rent must exceed top house rent")
		}
		p.HouseRents = append([]int(nil), e.HouseRents...)
		p.HotelRent = e.HotelRent
		p.HouseCost = e.HouseCost
	}
	return p, nil
}

// NewTrack returns a fresh, unowned copy of the board.
func NewTrack() Track {
	t := template
	for i := range t {
		if t[i].Property != nil {
			p := *t[i].Property
			p.HouseRents = append([]int(nil), p.HouseRents...)
			t[i].Property = &p
		}
	}
	return t
}

// At returns the space at pos. pos must be in [0, Size).
func (t *Track) At(pos int) Space {
	return t[pos]
}

// PropertyAt returns the property record at pos, or an error if the space
// is not purchasable.
func (t *Track) PropertyAt(pos int) (*Property, error) {
	if pos < 0 || pos >= Size {
		return nil, fmt.Errorf("position %d out of range", pos)
	}
	if t[pos].Property == nil {
		return nil, fmt.Errorf("no property at position %d", pos)
	}
	return t[pos].Property, nil
}

// OwnedBy returns every property on the track owned by the given player.
func (t *Track) OwnedBy(playerID string) []*Property {
	var owned []*Property
	for i := range t {
		if p := t[i].Property; p != nil && p.OwnerID == playerID {
			owned = append(owned, p)
		}
	}
	return owned
}
