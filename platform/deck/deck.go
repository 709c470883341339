// Package deck holds the chance and community-chest card catalogs. Decks are
// stateless: a draw is a uniform pick with replacement, and applying the card's
// effect is the caller's job.
package deck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
)

type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// Card is one effect card. Money is credited (or debited) before Move is
// applied; either may be zero.
type Card struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Polarity Polarity `json:"polarity"`
	Money    int      `json:"money,omitempty"`
	Move     int      `json:"move,omitempty"`
}

type Name string

const (
	Chance Name = "chance"
	Chest  Name = "chest"
)

//go:embed cards.json
var cardsJSON []byte

var decks map[Name][]Card

func init() {
	d, err := parseDecks(cardsJSON)
	if err != nil {
		panic(fmt.Errorf("deck: bad embedded card data: %w", err))
	}
	decks = d
}

func parseDecks(raw []byte) (map[Name][]Card, error) {
	var d map[Name][]Card
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	for _, name := range []Name{Chance, Chest} {
		cards := d[name]
		if len(cards) == 0 {
			return nil, fmt.Errorf("deck %q is empty", name)
		}
		for _, c := range cards {
			if c.ID == "" {
				return nil, fmt.Errorf("deck %q: card without id", name)
			}
			switch c.Polarity {
			case Positive, Negative, Neutral:
			default:
				return nil, fmt.Errorf("card %q: unknown polarity %q", c.ID, c.Polarity)
			}
		}
	}
	return d, nil
}

// Draw picks one card uniformly at random from the named deck. Cards are
// resampled with replacement; there is no exhaustion tracking.
func Draw(name Name, rng *rand.Rand) (Card, error) {
	cards, ok := decks[name]
	if !ok {
		return Card{}, fmt.Errorf("unknown deck %q", name)
	}
	return cards[rng.Intn(len(cards))], nil
}

// Find returns the card with the given id from the named deck.
func Find(name Name, id string) (Card, bool) {
	for _, c := range decks[name] {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}
