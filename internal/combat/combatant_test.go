package combat

import (
	"testing"

	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/stats"
)

func TestNewCombatantCopiesAbilities(t *testing.T) {
	source := []string{"strike", "mend"}
	c := NewCombatant("Test", FactionAlly, stats.Block{MaxHP: 10, HP: 10}, source)

	source[0] = "mutated"
	if c.Abilities[0] != "strike" {
		t.Error("combatant shares the caller's ability slice")
	}
	if c.ID == "" {
		t.Error("combatant id not assigned")
	}
}

func TestAddStatusRefreshesDuration(t *testing.T) {
	c := NewCombatant("Test", FactionAlly, stats.Block{MaxHP: 10, HP: 10}, nil)

	c.AddStatus(Status{Type: gamedata.StatusPoisoned, Remaining: 1, Power: 2})
	c.AddStatus(Status{Type: gamedata.StatusPoisoned, Remaining: 3, Power: 4})

	statuses := c.Statuses()
	if len(statuses) != 1 {
		t.Fatalf("reapplied status stacked: %d entries, want 1", len(statuses))
	}
	if statuses[0].Remaining != 3 || statuses[0].Power != 4 {
		t.Errorf("status not refreshed: %+v", statuses[0])
	}
}

func TestAddStatusDifferentTypesCoexist(t *testing.T) {
	c := NewCombatant("Test", FactionAlly, stats.Block{MaxHP: 10, HP: 10}, nil)

	c.AddStatus(Status{Type: gamedata.StatusPoisoned, Remaining: 2, Power: 3})
	c.AddStatus(Status{Type: gamedata.StatusRegen, Remaining: 2, Power: 3})

	if len(c.Statuses()) != 2 {
		t.Errorf("expected 2 distinct statuses, got %d", len(c.Statuses()))
	}
	if !c.HasStatus(gamedata.StatusPoisoned) || !c.HasStatus(gamedata.StatusRegen) {
		t.Error("HasStatus missed an active effect")
	}
	if c.HasStatus(gamedata.StatusStunned) {
		t.Error("HasStatus reported an absent effect")
	}
}

func TestStatusesReturnsCopy(t *testing.T) {
	c := NewCombatant("Test", FactionAlly, stats.Block{MaxHP: 10, HP: 10}, nil)
	c.AddStatus(Status{Type: gamedata.StatusRegen, Remaining: 2, Power: 1})

	got := c.Statuses()
	got[0].Remaining = 99

	if c.Statuses()[0].Remaining != 2 {
		t.Error("Statuses exposed internal state")
	}
}
