// Package stats provides the numeric combat model for characters and enemies.
package stats

import "errors"

// ErrInsufficientMP is returned when a combatant cannot pay an ability's MP cost.
var ErrInsufficientMP = errors.New("insufficient MP")

// Block holds the combat statistics for one combatant.
// HP and MP are always kept within [0, max] by the mutator methods;
// presentation code reads Block values but never writes them.
type Block struct {
	MaxHP      int `json:"maxHp"`
	HP         int `json:"hp"`
	MaxMP      int `json:"maxMp"`
	MP         int `json:"mp"`
	Attack     int `json:"attack"`
	Defense    int `json:"defense"`
	Magic      int `json:"magic"`
	Resistance int `json:"resistance"`
	Speed      int `json:"speed"`
}

// DamageOutcome reports what ApplyDamage actually did.
type DamageOutcome struct {
	Dealt int  // Damage actually applied (clamped to remaining HP)
	Fatal bool // True if HP reached 0
}

// Growth is the per-level stat increase applied at level-up.
type Growth struct {
	HP         int `json:"hp"`
	MP         int `json:"mp"`
	Attack     int `json:"attack"`
	Defense    int `json:"defense"`
	Magic      int `json:"magic"`
	Resistance int `json:"resistance"`
	Speed      int `json:"speed"`
}

// ApplyDamage reduces HP by amount, clamped so HP never drops below 0.
// Negative amounts are treated as 0.
func (b *Block) ApplyDamage(amount int) DamageOutcome {
	if amount <= 0 {
		return DamageOutcome{}
	}
	dealt := amount
	if dealt > b.HP {
		dealt = b.HP
	}
	b.HP -= dealt
	return DamageOutcome{Dealt: dealt, Fatal: b.HP == 0}
}

// ApplyHealing restores HP up to MaxHP and returns the amount actually healed.
func (b *Block) ApplyHealing(amount int) int {
	if amount <= 0 {
		return 0
	}
	healed := amount
	if b.HP+healed > b.MaxHP {
		healed = b.MaxHP - b.HP
	}
	b.HP += healed
	return healed
}

// SpendMP deducts cost from MP. On ErrInsufficientMP the block is unchanged.
func (b *Block) SpendMP(cost int) error {
	if cost < 0 {
		cost = 0
	}
	if cost > b.MP {
		return ErrInsufficientMP
	}
	b.MP -= cost
	return nil
}

// RestoreMP restores MP up to MaxMP and returns the amount actually restored.
func (b *Block) RestoreMP(amount int) int {
	if amount <= 0 {
		return 0
	}
	restored := amount
	if b.MP+restored > b.MaxMP {
		restored = b.MaxMP - b.MP
	}
	b.MP += restored
	return restored
}

// Grow applies the per-level growth table for the given number of levels.
// Current HP and MP rise with their maximums so a level-up never leaves a
// character worse off.
func (b *Block) Grow(g Growth, levels int) {
	if levels <= 0 {
		return
	}
	b.MaxHP += g.HP * levels
	b.HP += g.HP * levels
	b.MaxMP += g.MP * levels
	b.MP += g.MP * levels
	b.Attack += g.Attack * levels
	b.Defense += g.Defense * levels
	b.Magic += g.Magic * levels
	b.Resistance += g.Resistance * levels
	b.Speed += g.Speed * levels
}

// Alive returns true while the block has HP remaining.
func (b *Block) Alive() bool {
	return b.HP > 0
}
