package combat

import "sort"

// ComputeOrder produces the acting order for one round: living combatants in
// strictly descending speed, ties broken by the order combatants were added
// to the encounter. Deterministic by construction — no random rolls — so a
// given battlefield always yields the same sequence.
func ComputeOrder(combatants []*Combatant) []CombatantID {
	living := make([]*Combatant, 0, len(combatants))
	for _, c := range combatants {
		if c.Alive() {
			living = append(living, c)
		}
	}

	// Stable sort preserves insertion order between equal speeds.
	sort.SliceStable(living, func(i, j int) bool {
		return living[i].Stats.Speed > living[j].Stats.Speed
	})

	order := make([]CombatantID, len(living))
	for i, c := range living {
		order[i] = c.ID
	}
	return order
}
