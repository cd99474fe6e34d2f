// Package progression tracks per-character experience, levels, currency, and
// essence across a session.
package progression

import (
	"math"

	"github.com/samdwyer/emberfall/internal/stats"
)

// Entry is one character's accumulated progression.
type Entry struct {
	Exp      int `json:"exp"`
	Level    int `json:"level"`
	Currency int `json:"currency"`
	Essence  int `json:"essence"`
}

// LevelUp reports one level gained during an award.
type LevelUp struct {
	CharacterID string
	NewLevel    int
}

// Ledger holds progression for every party character. It is owned by the
// running session and mutated only through Award; there are no concurrent
// writers.
type Ledger struct {
	entries map[string]*Entry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*Entry)}
}

// Register adds a character at level 1 with nothing accumulated. Registering
// an existing character is a no-op.
func (l *Ledger) Register(characterID string) {
	if _, ok := l.entries[characterID]; !ok {
		l.entries[characterID] = &Entry{Level: 1}
	}
}

// Entry returns a copy of a character's progression and whether it exists.
func (l *Ledger) Entry(characterID string) (Entry, bool) {
	if e, ok := l.entries[characterID]; ok {
		return *e, true
	}
	return Entry{}, false
}

// Entries returns a copy of all progression keyed by character id.
func (l *Ledger) Entries() map[string]Entry {
	out := make(map[string]Entry, len(l.entries))
	for id, e := range l.entries {
		out[id] = *e
	}
	return out
}

// Restore replaces the ledger contents wholesale. Used by snapshot load.
func (l *Ledger) Restore(entries map[string]Entry) {
	l.entries = make(map[string]*Entry, len(entries))
	for id, e := range entries {
		copied := e
		l.entries[id] = &copied
	}
}

// ExpToNext returns the experience required to advance from the given level.
func ExpToNext(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 * level
}

// Award credits a character with exp, currency, and essence. Level-ups apply
// the class growth table to the character's stat block deterministically; any
// levels gained are returned in order. Currency and essence saturate instead
// of wrapping.
func (l *Ledger) Award(characterID string, exp, currency, essence int, block *stats.Block, growth stats.Growth) []LevelUp {
	entry, ok := l.entries[characterID]
	if !ok {
		l.Register(characterID)
		entry = l.entries[characterID]
	}

	entry.Exp = satAdd(entry.Exp, exp)
	entry.Currency = satAdd(entry.Currency, currency)
	entry.Essence = satAdd(entry.Essence, essence)

	var ups []LevelUp
	for entry.Exp >= ExpToNext(entry.Level) {
		entry.Exp -= ExpToNext(entry.Level)
		entry.Level++
		if block != nil {
			block.Grow(growth, 1)
		}
		ups = append(ups, LevelUp{CharacterID: characterID, NewLevel: entry.Level})
	}
	return ups
}

// satAdd adds two non-negative ints, saturating at MaxInt.
func satAdd(a, b int) int {
	if b < 0 {
		b = 0
	}
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
