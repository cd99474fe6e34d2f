package save_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/emberfall/internal/entity"
	"github.com/samdwyer/emberfall/internal/progression"
	"github.com/samdwyer/emberfall/internal/save"
	"github.com/samdwyer/emberfall/internal/session"
	"github.com/samdwyer/emberfall/internal/stats"
)

func testSnapshot() *session.GameSnapshot {
	return &session.GameSnapshot{
		SavedAt: time.Now().UTC(),
		Seed:    42,
		X:       10,
		Y:       5,
		Members: []*entity.Character{
			{
				ID:      "c1",
				Name:    "Brann",
				ClassID: "warrior",
				Stats:   stats.Block{MaxHP: 30, HP: 22, MaxMP: 5, MP: 5, Attack: 8, Defense: 6, Speed: 5},
			},
		},
		Items:  map[string]int{"ember_tonic": 2},
		Ledger: map[string]progression.Entry{"c1": {Exp: 40, Level: 2, Currency: 15, Essence: 3}},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := save.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	want := testSnapshot()
	require.NoError(t, store.Save(1, want))

	got, err := store.Load(1)
	require.NoError(t, err)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.X, got.X)
	assert.Equal(t, want.Y, got.Y)
	assert.Equal(t, want.Items, got.Items)
	assert.Equal(t, want.Ledger, got.Ledger)
	require.Len(t, got.Members, 1)
	assert.Equal(t, want.Members[0].Stats, got.Members[0].Stats)
}

func TestLoadEmptySlot(t *testing.T) {
	store, err := save.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = store.Load(2)
	assert.ErrorIs(t, err, save.ErrEmptySlot)
}

func TestSlotRange(t *testing.T) {
	store, err := save.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save(0, testSnapshot()), save.ErrBadSlot)
	assert.ErrorIs(t, store.Save(save.SlotCount+1, testSnapshot()), save.ErrBadSlot)
	_, err = store.Load(0)
	assert.ErrorIs(t, err, save.ErrBadSlot)
}

func TestSaveOverwritesSlot(t *testing.T) {
	store, err := save.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	first := testSnapshot()
	require.NoError(t, store.Save(1, first))

	second := testSnapshot()
	second.Seed = 99
	require.NoError(t, store.Save(1, second))

	got, err := store.Load(1)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Seed)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := save.NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(1, testSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, ".json", filepath.Ext(e.Name()))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := save.NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slot1.json"), []byte("{not json"), 0o644))

	_, err = store.Load(1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, save.ErrEmptySlot)
}

func TestSlots(t *testing.T) {
	store, err := save.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(2, testSnapshot()))

	infos := store.Slots()
	require.Len(t, infos, save.SlotCount)
	assert.False(t, infos[0].Occupied)
	assert.True(t, infos[1].Occupied)
	assert.False(t, infos[2].Occupied)
}
