// Package session owns one running game: the game-mode state machine, the
// party, the progression ledger, and the lifetime of at most one encounter.
package session

// Mode is the top-level game mode. Exactly one mode is active at a time.
type Mode string

const (
	ModeMainMenu  Mode = "main_menu"
	ModeOverworld Mode = "overworld"
	ModeCombat    Mode = "combat"
	ModeDialogue  Mode = "dialogue"
	ModeInventory Mode = "inventory"
	ModeSaveLoad  Mode = "save_load"
	ModeGameOver  Mode = "game_over"
)

// Valid reports whether m names a real mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeMainMenu, ModeOverworld, ModeCombat, ModeDialogue,
		ModeInventory, ModeSaveLoad, ModeGameOver:
		return true
	default:
		return false
	}
}
