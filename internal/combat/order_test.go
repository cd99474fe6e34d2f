package combat

import (
	"math/rand"
	"testing"

	"github.com/samdwyer/emberfall/internal/stats"
)

func quickCombatant(name string, faction Faction, hp, speed int) *Combatant {
	return NewCombatant(name, faction, stats.Block{
		MaxHP: hp, HP: hp, Speed: speed,
	}, nil)
}

func TestComputeOrderDescendingSpeed(t *testing.T) {
	slow := quickCombatant("slow", FactionAlly, 10, 2)
	fast := quickCombatant("fast", FactionEnemy, 10, 9)
	mid := quickCombatant("mid", FactionAlly, 10, 5)

	order := ComputeOrder([]*Combatant{slow, fast, mid})

	want := []CombatantID{fast.ID, mid.ID, slow.ID}
	if len(order) != len(want) {
		t.Fatalf("order length = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestComputeOrderTiesByInsertionOrder(t *testing.T) {
	first := quickCombatant("first", FactionAlly, 10, 5)
	second := quickCombatant("second", FactionEnemy, 10, 5)
	third := quickCombatant("third", FactionAlly, 10, 5)

	order := ComputeOrder([]*Combatant{first, second, third})

	want := []CombatantID{first.ID, second.ID, third.ID}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("tie-break order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestComputeOrderExcludesDead(t *testing.T) {
	alive := quickCombatant("alive", FactionAlly, 10, 3)
	dead := quickCombatant("dead", FactionEnemy, 10, 8)
	dead.Stats.ApplyDamage(10)

	order := ComputeOrder([]*Combatant{alive, dead})

	if len(order) != 1 || order[0] != alive.ID {
		t.Errorf("order = %v, want only %s", order, alive.ID)
	}
}

// Randomized speeds with a fixed insertion order must produce the same
// sequence on every call.
func TestComputeOrderDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(424242))

	for trial := 0; trial < 50; trial++ {
		combatants := make([]*Combatant, 8)
		for i := range combatants {
			faction := FactionAlly
			if i%2 == 1 {
				faction = FactionEnemy
			}
			combatants[i] = quickCombatant("c", faction, 10, rng.Intn(5)) // Narrow range forces ties
		}

		first := ComputeOrder(combatants)
		for repeat := 0; repeat < 5; repeat++ {
			again := ComputeOrder(combatants)
			for i := range first {
				if again[i] != first[i] {
					t.Fatalf("trial %d: order changed between calls at index %d", trial, i)
				}
			}
		}

		// Verify descending speed throughout
		byID := map[CombatantID]*Combatant{}
		for _, c := range combatants {
			byID[c.ID] = c
		}
		for i := 1; i < len(first); i++ {
			if byID[first[i-1]].Stats.Speed < byID[first[i]].Stats.Speed {
				t.Fatalf("trial %d: order not descending at index %d", trial, i)
			}
		}
	}
}
