package session

import (
	"fmt"
	"time"

	"github.com/samdwyer/emberfall/internal/entity"
	"github.com/samdwyer/emberfall/internal/progression"
)

// GameSnapshot is the serializable state of one run. Encounters are
// never snapshotted; saves are only taken between them.
type GameSnapshot struct {
	SavedAt time.Time                    `json:"saved_at"`
	Seed    int64                        `json:"seed"`
	X       int                          `json:"x"`
	Y       int                          `json:"y"`
	Members []*entity.Character          `json:"members"`
	Items   map[string]int               `json:"items"`
	Ledger  map[string]progression.Entry `json:"ledger"`
}

// Saver persists and restores snapshots keyed by slot.
type Saver interface {
	Save(slot int, snap *GameSnapshot) error
	Load(slot int) (*GameSnapshot, error)
}

func (s *Session) snapshot() *GameSnapshot {
	snap := &GameSnapshot{
		SavedAt: time.Now(),
		Seed:    s.seed,
		X:       s.party.X,
		Y:       s.party.Y,
		Members: s.party.Members,
		Items:   s.party.Items,
		Ledger:  s.ledger.Entries(),
	}
	return snap
}

// validateSnapshot rejects snapshots that would put the session into an
// unreachable state. The caller stays at the main menu on error.
func (s *Session) validateSnapshot(snap *GameSnapshot) error {
	if snap == nil {
		return fmt.Errorf("empty snapshot")
	}
	if len(snap.Members) == 0 {
		return fmt.Errorf("snapshot has no party members")
	}
	for _, m := range snap.Members {
		if m == nil || m.ID == "" {
			return fmt.Errorf("snapshot has a member without an id")
		}
		if _, err := s.registry.GetClass(m.ClassID); err != nil {
			return fmt.Errorf("member %q: %w", m.Name, err)
		}
		if m.Stats.MaxHP <= 0 || m.Stats.HP < 0 || m.Stats.HP > m.Stats.MaxHP {
			return fmt.Errorf("member %q has corrupt hit points", m.Name)
		}
		if m.Stats.MP < 0 || m.Stats.MP > m.Stats.MaxMP {
			return fmt.Errorf("member %q has corrupt magic points", m.Name)
		}
	}
	for id, entry := range snap.Ledger {
		if entry.Level < 1 || entry.Exp < 0 {
			return fmt.Errorf("ledger entry %q is corrupt", id)
		}
	}
	for id, count := range snap.Items {
		if count < 0 {
			return fmt.Errorf("item %q has negative count", id)
		}
		if _, err := s.registry.GetItem(id); err != nil {
			return fmt.Errorf("item %q: %w", id, err)
		}
	}
	return nil
}
