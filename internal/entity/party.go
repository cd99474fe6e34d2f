package entity

// Party is the player's band of characters plus their shared overworld state.
// In the overworld the party moves as one unit.
type Party struct {
	Members []*Character   `json:"members"`
	X, Y    int            `json:"-"`     // Overworld position, owned by the session
	Items   map[string]int `json:"items"` // Item id -> count
}

// NewParty creates a party at the given overworld position.
func NewParty(x, y int, members ...*Character) *Party {
	return &Party{
		Members: members,
		X:       x,
		Y:       y,
		Items:   make(map[string]int),
	}
}

// Move updates the party position by the given delta.
func (p *Party) Move(dx, dy int) {
	p.X += dx
	p.Y += dy
}

// Member returns the character with the given id, or nil.
func (p *Party) Member(id string) *Character {
	for _, m := range p.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// AliveCount returns the number of living members.
func (p *Party) AliveCount() int {
	count := 0
	for _, m := range p.Members {
		if m.Alive() {
			count++
		}
	}
	return count
}

// Defeated returns true when no member is left standing.
func (p *Party) Defeated() bool {
	return p.AliveCount() == 0
}

// AddItem adds count of an item to the party's inventory.
func (p *Party) AddItem(id string, count int) {
	if count <= 0 {
		return
	}
	if p.Items == nil {
		p.Items = make(map[string]int)
	}
	p.Items[id] += count
}

// ConsumeItem removes one of an item, reporting whether one was available.
func (p *Party) ConsumeItem(id string) bool {
	if p.Items[id] <= 0 {
		return false
	}
	p.Items[id]--
	if p.Items[id] == 0 {
		delete(p.Items, id)
	}
	return true
}
