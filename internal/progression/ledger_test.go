package progression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/emberfall/internal/stats"
)

func TestAwardAccumulates(t *testing.T) {
	l := NewLedger()
	l.Register("hero")

	ups := l.Award("hero", 40, 10, 2, nil, stats.Growth{})
	assert.Empty(t, ups, "40 exp at level 1 should not level up")

	entry, ok := l.Entry("hero")
	require.True(t, ok)
	assert.Equal(t, 40, entry.Exp)
	assert.Equal(t, 1, entry.Level)
	assert.Equal(t, 10, entry.Currency)
	assert.Equal(t, 2, entry.Essence)
}

func TestAwardLevelsUpAndGrowsStats(t *testing.T) {
	l := NewLedger()
	l.Register("hero")

	block := stats.Block{MaxHP: 30, HP: 30, MaxMP: 10, MP: 10, Attack: 5, Speed: 5}
	growth := stats.Growth{HP: 5, MP: 1, Attack: 2, Speed: 1}

	// 100 exp crosses the level-1 threshold exactly once.
	ups := l.Award("hero", 100, 0, 0, &block, growth)
	require.Len(t, ups, 1)
	assert.Equal(t, 2, ups[0].NewLevel)
	assert.Equal(t, "hero", ups[0].CharacterID)

	entry, _ := l.Entry("hero")
	assert.Equal(t, 0, entry.Exp, "threshold subtracted on level-up")
	assert.Equal(t, 2, entry.Level)

	assert.Equal(t, 35, block.MaxHP)
	assert.Equal(t, 35, block.HP, "current HP rises with the max")
	assert.Equal(t, 7, block.Attack)
	assert.Equal(t, 6, block.Speed)
}

func TestAwardMultiLevel(t *testing.T) {
	l := NewLedger()
	l.Register("hero")

	block := stats.Block{MaxHP: 30, HP: 30}
	growth := stats.Growth{HP: 5}

	// 100 (1->2) + 200 (2->3) + 50 leftover
	ups := l.Award("hero", 350, 0, 0, &block, growth)
	require.Len(t, ups, 2)
	assert.Equal(t, 2, ups[0].NewLevel)
	assert.Equal(t, 3, ups[1].NewLevel)

	entry, _ := l.Entry("hero")
	assert.Equal(t, 3, entry.Level)
	assert.Equal(t, 50, entry.Exp)
	assert.Equal(t, 40, block.MaxHP, "growth applied once per level")
}

func TestAwardSaturates(t *testing.T) {
	l := NewLedger()
	l.Register("hero")

	l.Award("hero", 0, math.MaxInt, math.MaxInt, nil, stats.Growth{})
	ups := l.Award("hero", 0, math.MaxInt, 1, nil, stats.Growth{})
	assert.Empty(t, ups)

	entry, _ := l.Entry("hero")
	assert.Equal(t, math.MaxInt, entry.Currency, "currency saturates, never wraps")
	assert.Equal(t, math.MaxInt, entry.Essence, "essence saturates, never wraps")
	assert.GreaterOrEqual(t, entry.Currency, 0)
}

func TestAwardUnregisteredCharacterAutoRegisters(t *testing.T) {
	l := NewLedger()

	l.Award("stray", 10, 0, 0, nil, stats.Growth{})
	entry, ok := l.Entry("stray")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Level)
	assert.Equal(t, 10, entry.Exp)
}

func TestRestoreRoundTrip(t *testing.T) {
	l := NewLedger()
	l.Register("a")
	l.Award("a", 150, 30, 5, nil, stats.Growth{})

	restored := NewLedger()
	restored.Restore(l.Entries())

	assert.Equal(t, l.Entries(), restored.Entries())
}

func TestExpToNext(t *testing.T) {
	assert.Equal(t, 100, ExpToNext(1))
	assert.Equal(t, 500, ExpToNext(5))
	assert.Equal(t, 100, ExpToNext(0), "levels below 1 clamp to the level-1 threshold")
}
