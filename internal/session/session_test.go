package session_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/progression"
	"github.com/samdwyer/emberfall/internal/session"
)

type memSaver struct {
	slots    map[int]*session.GameSnapshot
	failSave bool
}

func newMemSaver() *memSaver {
	return &memSaver{slots: make(map[int]*session.GameSnapshot)}
}

func (m *memSaver) Save(slot int, snap *session.GameSnapshot) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.slots[slot] = snap
	return nil
}

func (m *memSaver) Load(slot int) (*session.GameSnapshot, error) {
	snap, ok := m.slots[slot]
	if !ok {
		return nil, fmt.Errorf("slot %d is empty", slot)
	}
	return snap, nil
}

func newSession(t *testing.T, saver session.Saver) (*session.Session, *gamedata.Registry) {
	t.Helper()
	reg, err := gamedata.LoadRegistry()
	require.NoError(t, err)
	return session.New(session.Config{Registry: reg, Saver: saver, Seed: 7}), reg
}

// playOut drives a live encounter to its end using the same action
// selection for both sides.
func playOut(t *testing.T, s *session.Session, reg *gamedata.Registry) {
	t.Helper()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500 && s.CurrentMode() == session.ModeCombat; i++ {
		enc := s.CurrentEncounter()
		id, ok := enc.CurrentActor()
		require.True(t, ok)
		actor, ok := enc.Combatant(id)
		require.True(t, ok)
		if actor.Faction == combat.FactionEnemy {
			require.NoError(t, s.AdvanceEnemies(ctx))
			continue
		}
		abilityID, targets := combat.SelectAction(enc, actor, reg, rng)
		require.NotEmpty(t, abilityID)
		_, err := s.ExecuteAction(ctx, id, abilityID, targets)
		require.NoError(t, err)
	}
	require.NotEqual(t, session.ModeCombat, s.CurrentMode(), "encounter did not finish")
}

func TestNewSessionStartsAtMainMenu(t *testing.T) {
	s, _ := newSession(t, nil)
	assert.Equal(t, session.ModeMainMenu, s.CurrentMode())
	assert.Nil(t, s.Party())
}

func TestStartNewGame(t *testing.T) {
	s, reg := newSession(t, nil)
	require.NoError(t, s.SendEvent(context.Background(), session.StartNewGame{}))

	assert.Equal(t, session.ModeOverworld, s.CurrentMode())
	require.NotNil(t, s.Party())
	assert.Len(t, s.Party().Members, len(reg.ClassIDs()))
	require.NotNil(t, s.Overworld())
	assert.True(t, s.Overworld().IsPassable(s.Party().X, s.Party().Y))

	for _, m := range s.Party().Members {
		entry, ok := s.LedgerEntry(m.ID)
		require.True(t, ok)
		assert.Equal(t, 1, entry.Level)
		assert.Equal(t, 0, entry.Exp)
	}
}

func TestIgnoredEventKeepsMode(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "wolf_pair"}))
	require.Equal(t, session.ModeCombat, s.CurrentMode())

	err := s.SendEvent(ctx, session.OpenInventory{})
	var ignored *session.IgnoredEventError
	require.ErrorAs(t, err, &ignored)
	assert.Equal(t, "open_inventory", ignored.Event)
	assert.Equal(t, session.ModeCombat, ignored.Mode)
	assert.Equal(t, session.ModeCombat, s.CurrentMode())
	assert.NotNil(t, s.CurrentEncounter())
}

func TestUnknownEventAtMenuIgnored(t *testing.T) {
	s, _ := newSession(t, nil)
	err := s.SendEvent(context.Background(), session.EncounterTriggered{})
	var ignored *session.IgnoredEventError
	require.ErrorAs(t, err, &ignored)
	assert.Equal(t, session.ModeMainMenu, s.CurrentMode())
}

func TestVictoryPaysRewardsAndReturnsToOverworld(t *testing.T) {
	s, reg := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "wolf_pair"}))

	playOut(t, s, reg)

	require.Equal(t, session.ModeOverworld, s.CurrentMode())
	assert.Nil(t, s.CurrentEncounter())
	for _, m := range s.Party().Members {
		if !m.Alive() {
			continue
		}
		entry, ok := s.LedgerEntry(m.ID)
		require.True(t, ok)
		assert.Greater(t, entry.Exp+100*(entry.Level-1), 0, "living member %s earned no experience", m.Name)
	}
}

func TestDefeatEntersGameOver(t *testing.T) {
	s, reg := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	for _, m := range s.Party().Members {
		m.Stats.HP = 1
		m.Stats.MP = 0
		m.Stats.Attack = 0
		m.Stats.Magic = 0
		m.Stats.Defense = 0
		m.Stats.Resistance = 0
	}
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "hollow_vanguard"}))

	playOut(t, s, reg)

	assert.Equal(t, session.ModeGameOver, s.CurrentMode())

	require.NoError(t, s.SendEvent(ctx, session.ReturnToMenu{}))
	assert.Equal(t, session.ModeMainMenu, s.CurrentMode())
	assert.Nil(t, s.Party())
}

func TestFleeReturnsToOverworld(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "wolf_pair"}))
	require.NoError(t, s.AdvanceEnemies(ctx))
	require.Equal(t, session.ModeCombat, s.CurrentMode())

	enc := s.CurrentEncounter()
	id, ok := enc.CurrentActor()
	require.True(t, ok)
	actor, ok := enc.Combatant(id)
	require.True(t, ok)
	require.Equal(t, combat.FactionAlly, actor.Faction)

	result, err := s.Flee(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, combat.OutcomeFled, result.Outcome)
	assert.Equal(t, session.ModeOverworld, s.CurrentMode())
	assert.Nil(t, s.CurrentEncounter())
}

func TestCombatPersistsHPBackToParty(t *testing.T) {
	s, reg := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "wolf_pair"}))

	playOut(t, s, reg)

	require.Equal(t, session.ModeOverworld, s.CurrentMode())
	for _, m := range s.Party().Members {
		assert.LessOrEqual(t, m.Stats.HP, m.Stats.MaxHP)
		assert.GreaterOrEqual(t, m.Stats.HP, 0)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	saver := newMemSaver()
	ctx := context.Background()

	s, _ := newSession(t, saver)
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	s.Party().AddItem("ember_tonic", 2)
	s.Party().Members[0].Stats.HP = 5
	wantX, wantY := s.Party().X, s.Party().Y
	wantSeed := s.Seed()

	require.NoError(t, s.SendEvent(ctx, session.SaveRequested{Slot: 1}))
	require.Equal(t, session.ModeSaveLoad, s.CurrentMode())
	require.NoError(t, s.SendEvent(ctx, session.Saved{}))
	require.Equal(t, session.ModeOverworld, s.CurrentMode())

	loaded, _ := newSession(t, saver)
	require.NoError(t, loaded.SendEvent(ctx, session.LoadSave{Slot: 1}))

	assert.Equal(t, session.ModeOverworld, loaded.CurrentMode())
	assert.Equal(t, wantSeed, loaded.Seed())
	assert.Equal(t, wantX, loaded.Party().X)
	assert.Equal(t, wantY, loaded.Party().Y)
	assert.Equal(t, 2, loaded.Party().Items["ember_tonic"])
	assert.Equal(t, 5, loaded.Party().Members[0].Stats.HP)
	for _, m := range loaded.Party().Members {
		entry, ok := loaded.LedgerEntry(m.ID)
		require.True(t, ok)
		assert.Equal(t, 1, entry.Level)
	}
}

func TestSavedReturnsToRequestingMode(t *testing.T) {
	saver := newMemSaver()
	ctx := context.Background()
	s, _ := newSession(t, saver)
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.OpenInventory{}))

	require.NoError(t, s.SendEvent(ctx, session.SaveRequested{Slot: 2}))
	require.Equal(t, session.ModeSaveLoad, s.CurrentMode())
	require.NoError(t, s.SendEvent(ctx, session.Saved{}))
	assert.Equal(t, session.ModeInventory, s.CurrentMode())
}

func TestSaveFailureKeepsMode(t *testing.T) {
	saver := newMemSaver()
	saver.failSave = true
	ctx := context.Background()
	s, _ := newSession(t, saver)
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))

	err := s.SendEvent(ctx, session.SaveRequested{Slot: 1})
	require.Error(t, err)
	assert.Equal(t, session.ModeOverworld, s.CurrentMode())
}

func TestLoadEmptySlotStaysAtMenu(t *testing.T) {
	s, _ := newSession(t, newMemSaver())
	err := s.SendEvent(context.Background(), session.LoadSave{Slot: 3})

	var loadErr *session.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 3, loadErr.Slot)
	assert.Equal(t, session.ModeMainMenu, s.CurrentMode())
	assert.Nil(t, s.Party())
}

func TestLoadCorruptSnapshotRejected(t *testing.T) {
	saver := newMemSaver()
	ctx := context.Background()

	s, _ := newSession(t, saver)
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.SaveRequested{Slot: 1}))
	require.NoError(t, s.SendEvent(ctx, session.Saved{}))

	cases := []struct {
		name   string
		mangle func(*session.GameSnapshot)
	}{
		{"hp above max", func(snap *session.GameSnapshot) {
			snap.Members[0].Stats.HP = snap.Members[0].Stats.MaxHP + 10
		}},
		{"unknown class", func(snap *session.GameSnapshot) {
			snap.Members[0].ClassID = "lich"
		}},
		{"no members", func(snap *session.GameSnapshot) {
			snap.Members = nil
		}},
		{"corrupt ledger level", func(snap *session.GameSnapshot) {
			for id, entry := range snap.Ledger {
				entry.Level = 0
				snap.Ledger[id] = entry
			}
		}},
		{"unknown item", func(snap *session.GameSnapshot) {
			snap.Items = map[string]int{"philosopher_stone": 1}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := cloneSnapshot(saver.slots[1])
			tc.mangle(snap)
			saver.slots[2] = snap

			loaded, _ := newSession(t, saver)
			err := loaded.SendEvent(ctx, session.LoadSave{Slot: 2})
			var loadErr *session.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, session.ModeMainMenu, loaded.CurrentMode())
		})
	}
}

func cloneSnapshot(snap *session.GameSnapshot) *session.GameSnapshot {
	out := *snap
	out.Members = nil
	for _, m := range snap.Members {
		mc := *m
		out.Members = append(out.Members, &mc)
	}
	out.Items = make(map[string]int, len(snap.Items))
	for k, v := range snap.Items {
		out.Items[k] = v
	}
	out.Ledger = make(map[string]progression.Entry, len(snap.Ledger))
	for k, v := range snap.Ledger {
		out.Ledger[k] = v
	}
	return &out
}

func TestDialogueFlow(t *testing.T) {
	s, reg := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))

	require.NoError(t, s.SendEvent(ctx, session.TalkToNPC{NPCID: "hermit"}))
	require.Equal(t, session.ModeDialogue, s.CurrentMode())

	npc, err := reg.GetNPC("hermit")
	require.NoError(t, err)

	for i := range npc.Dialogue {
		view, ok := s.Dialogue()
		require.True(t, ok)
		assert.Equal(t, npc.Name, view.Speaker)
		assert.Equal(t, npc.Dialogue[i], view.Line)
		require.NoError(t, s.AdvanceDialogue(ctx))
	}
	assert.Equal(t, session.ModeOverworld, s.CurrentMode())
	_, ok := s.Dialogue()
	assert.False(t, ok)
}

func TestInventoryUseItem(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))

	member := s.Party().Members[0]
	member.Stats.HP = 1
	s.Party().AddItem("ember_tonic", 1)

	require.NoError(t, s.SendEvent(ctx, session.OpenInventory{}))
	require.NoError(t, s.UseItem("ember_tonic", member.ID))
	assert.Greater(t, member.Stats.HP, 1)
	assert.Zero(t, s.Party().Items["ember_tonic"])

	err := s.UseItem("ember_tonic", member.ID)
	require.Error(t, err)

	require.NoError(t, s.SendEvent(ctx, session.CloseInventory{}))
	assert.Equal(t, session.ModeOverworld, s.CurrentMode())
}

func TestUseItemOutsideInventoryIgnored(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	s.Party().AddItem("ember_tonic", 1)

	err := s.UseItem("ember_tonic", s.Party().Members[0].ID)
	var ignored *session.IgnoredEventError
	require.ErrorAs(t, err, &ignored)
	assert.Equal(t, 1, s.Party().Items["ember_tonic"])
}

func TestMovePartyOutsideOverworldIgnored(t *testing.T) {
	s, _ := newSession(t, nil)
	err := s.MoveParty(context.Background(), 1, 0)
	var ignored *session.IgnoredEventError
	require.ErrorAs(t, err, &ignored)
}

func TestMovePartyBlockedByWall(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))

	// March into the nearest impassable tile; position must not change.
	ow := s.Overworld()
	for i := 0; i < ow.Width; i++ {
		x, y := s.Party().X, s.Party().Y
		if !ow.IsPassable(x+1, y) {
			require.NoError(t, s.MoveParty(ctx, 1, 0))
			assert.Equal(t, x, s.Party().X)
			assert.Equal(t, y, s.Party().Y)
			return
		}
		require.NoError(t, s.MoveParty(ctx, 1, 0))
		if s.CurrentMode() != session.ModeOverworld {
			t.Skip("ran into an encounter or NPC before a wall")
		}
	}
	t.Fatal("never found a wall walking east")
}

func TestExecuteActionOutsideCombat(t *testing.T) {
	s, _ := newSession(t, nil)
	_, err := s.ExecuteAction(context.Background(), "nobody", "strike", nil)
	assert.ErrorIs(t, err, session.ErrNoEncounter)
}

// Recoverable combat errors must leave the session in combat with state
// untouched.
func TestRecoverableCombatErrorKeepsEncounter(t *testing.T) {
	s, _ := newSession(t, nil)
	ctx := context.Background()
	require.NoError(t, s.SendEvent(ctx, session.StartNewGame{}))
	require.NoError(t, s.SendEvent(ctx, session.EncounterTriggered{GroupID: "wolf_pair"}))
	require.NoError(t, s.AdvanceEnemies(ctx))

	enc := s.CurrentEncounter()
	id, ok := enc.CurrentActor()
	require.True(t, ok)

	_, err := s.ExecuteAction(ctx, id, "no_such_ability", nil)
	require.ErrorIs(t, err, gamedata.ErrUnknownAbility)
	assert.Equal(t, session.ModeCombat, s.CurrentMode())

	current, stillOk := enc.CurrentActor()
	require.True(t, stillOk)
	assert.Equal(t, id, current, "failed action must not consume the turn")
}
