package combat

import "errors"

// Recoverable action errors. None of these mutate encounter state; the caller
// re-prompts for a valid action.
var (
	ErrOutOfTurn     = errors.New("combatant is not next to act")
	ErrInvalidTarget = errors.New("invalid target selection")
	ErrCannotFlee    = errors.New("only allies can flee, at the top of their own turn")
	ErrEncounterOver = errors.New("encounter already terminated")
)
