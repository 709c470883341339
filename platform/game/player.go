package game

// Player is one seat's live state for the duration of a match. Bankrupt
// players stay in the roster with Active false; they are never removed.
type Player struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Avatar     string   `json:"avatar"`
	Money      int      `json:"money"`
	Position   int      `json:"position"`
	Properties []string `json:"properties"`
	InJail     bool     `json:"in_jail"`
	JailTurns  int      `json:"jail_turns"`
	Active     bool     `json:"active"`

	// Per-turn roll bookkeeping. Doubles counts consecutive doubles and is
	// reset on any non-double roll or turn change.
	HasRolled bool `json:"has_rolled"`
	Doubles   int  `json:"doubles"`
}

func (p *Player) addProperty(id string) {
	for _, have := range p.Properties {
		if have == id {
			return
		}
	}
	p.Properties = append(p.Properties, id)
}

func (p *Player) removeProperty(id string) {
	for i, have := range p.Properties {
		if have == id {
			p.Properties = append(p.Properties[:i], p.Properties[i+1:]...)
			return
		}
	}
}
