package combat

// CombatantView is a read-only projection of one combatant for presentation.
type CombatantView struct {
	ID       CombatantID
	Name     string
	Faction  Faction
	HP       int
	MaxHP    int
	MP       int
	MaxMP    int
	Alive    bool
	Statuses []Status
	EnemyID  string
}

// EncounterView is a read-only projection of encounter state. The
// presentation layer renders it and never touches the encounter directly.
type EncounterView struct {
	Round      int
	Queue      []CombatantID
	Outcome    Outcome
	Combatants []CombatantView
}

// View builds the current read-only projection.
func (e *Encounter) View() EncounterView {
	view := EncounterView{
		Round:      e.round,
		Queue:      e.TurnQueue(),
		Outcome:    e.outcome,
		Combatants: make([]CombatantView, 0, len(e.roster)),
	}
	for _, c := range e.roster {
		view.Combatants = append(view.Combatants, CombatantView{
			ID:       c.ID,
			Name:     c.Name,
			Faction:  c.Faction,
			HP:       c.Stats.HP,
			MaxHP:    c.Stats.MaxHP,
			MP:       c.Stats.MP,
			MaxMP:    c.Stats.MaxMP,
			Alive:    c.Alive(),
			Statuses: c.Statuses(),
			EnemyID:  c.EnemyID,
		})
	}
	return view
}
