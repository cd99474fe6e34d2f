package session

import "fmt"

// Event is a game-mode transition trigger fed to Session.SendEvent.
type Event interface {
	eventName() string
}

// StartNewGame leaves the main menu for a fresh overworld run.
type StartNewGame struct{}

// LoadSave restores a run from a save slot.
type LoadSave struct {
	Slot int
}

// EncounterTriggered opens combat. An empty GroupID rolls a random
// group for the party's current zone.
type EncounterTriggered struct {
	GroupID string
}

// TalkToNPC opens dialogue with an NPC on the overworld.
type TalkToNPC struct {
	NPCID string
}

// DialogueEnded closes dialogue and returns to the overworld.
type DialogueEnded struct{}

// OpenInventory opens the party inventory from the overworld.
type OpenInventory struct{}

// CloseInventory returns from the inventory to the overworld.
type CloseInventory struct{}

// SaveRequested writes the current run to a save slot.
type SaveRequested struct {
	Slot int
}

// Saved acknowledges a completed save and returns to the mode that
// requested it.
type Saved struct{}

// ReturnToMenu leaves the game-over screen for the main menu.
type ReturnToMenu struct{}

func (StartNewGame) eventName() string       { return "start_new_game" }
func (LoadSave) eventName() string           { return "load_save" }
func (EncounterTriggered) eventName() string { return "encounter_triggered" }
func (TalkToNPC) eventName() string          { return "talk_to_npc" }
func (DialogueEnded) eventName() string      { return "dialogue_ended" }
func (OpenInventory) eventName() string      { return "open_inventory" }
func (CloseInventory) eventName() string     { return "close_inventory" }
func (SaveRequested) eventName() string      { return "save_requested" }
func (Saved) eventName() string              { return "saved" }
func (ReturnToMenu) eventName() string       { return "return_to_menu" }

// IgnoredEventError reports an event that has no transition from the
// current mode. The session does not change state.
type IgnoredEventError struct {
	Event string
	Mode  Mode
}

func (e *IgnoredEventError) Error() string {
	return fmt.Sprintf("event %q ignored in mode %q", e.Event, e.Mode)
}

// LoadError reports a failed or invalid save restore. The session stays
// at the main menu.
type LoadError struct {
	Slot int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load slot %d: %v", e.Slot, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
