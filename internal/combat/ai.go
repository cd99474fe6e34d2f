package combat

import (
	"math/rand"

	"github.com/samdwyer/emberfall/internal/gamedata"
)

// SelectAction chooses an ability and target list for an enemy combatant.
// Selection is content-policy driven, not part of the resolver's contract:
// a weighted-random usable ability, aimed at the lowest-HP opponent (or the
// lowest-HP wounded companion for heals). Deterministic under a fixed rng.
func SelectAction(e *Encounter, actor *Combatant, abilities AbilitySource, rng *rand.Rand) (string, []CombatantID) {
	var chosen *gamedata.AbilityDef
	for _, idx := range rng.Perm(len(actor.Abilities)) {
		ability, err := abilities.GetAbility(actor.Abilities[idx])
		if err != nil || ability.MPCost > actor.Stats.MP {
			continue
		}
		// Don't waste a heal on an unhurt side.
		if ability.EffectKind == gamedata.EffectHeal && lowestHP(e, actor.Faction, true) == nil {
			continue
		}
		chosen = ability
		break
	}
	if chosen == nil {
		// Fall back to the first zero-cost ability; every enemy def carries one.
		for _, id := range actor.Abilities {
			if ability, err := abilities.GetAbility(id); err == nil && ability.MPCost == 0 {
				chosen = ability
				break
			}
		}
	}
	if chosen == nil {
		return "", nil
	}

	switch chosen.TargetPolicy {
	case gamedata.TargetSelf, gamedata.TargetAllEnemies, gamedata.TargetAllAllies:
		return chosen.ID, nil
	case gamedata.TargetSingleEnemy:
		if target := lowestHP(e, opposing(actor.Faction), false); target != nil {
			return chosen.ID, []CombatantID{target.ID}
		}
	case gamedata.TargetSingleAlly:
		target := lowestHP(e, actor.Faction, true)
		if target == nil {
			target = actor
		}
		return chosen.ID, []CombatantID{target.ID}
	}
	return "", nil
}

// lowestHP returns the living combatant of faction f with the least HP.
// With woundedOnly set, combatants at full HP are ignored.
func lowestHP(e *Encounter, f Faction, woundedOnly bool) *Combatant {
	var lowest *Combatant
	for _, c := range e.roster {
		if c.Faction != f || !c.Alive() {
			continue
		}
		if woundedOnly && c.Stats.HP == c.Stats.MaxHP {
			continue
		}
		if lowest == nil || c.Stats.HP < lowest.Stats.HP {
			lowest = c
		}
	}
	return lowest
}
