package gamedata

// TargetPolicy declares who an ability may be aimed at. The combat resolver
// validates supplied target ids against the policy before resolving.
type TargetPolicy string

const (
	TargetSelf        TargetPolicy = "self"
	TargetSingleEnemy TargetPolicy = "single_enemy"
	TargetAllEnemies  TargetPolicy = "all_enemies"
	TargetSingleAlly  TargetPolicy = "single_ally"
	TargetAllAllies   TargetPolicy = "all_allies"
)

// EffectKind declares what an ability does when it resolves.
type EffectKind string

const (
	EffectPhysical EffectKind = "physical"
	EffectMagical  EffectKind = "magical"
	EffectHeal     EffectKind = "heal"
	EffectStatus   EffectKind = "status"
)

// StatusType identifies a timed status effect.
type StatusType string

const (
	StatusNone     StatusType = ""
	StatusStunned  StatusType = "stunned"
	StatusPoisoned StatusType = "poisoned"
	StatusRegen    StatusType = "regen"
)

// AbilityDef defines an ability loaded from JSON. Defs are immutable and
// referenced by id; combat state never copies them.
type AbilityDef struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	MPCost         int          `json:"mpCost"`
	Power          int          `json:"power"`
	TargetPolicy   TargetPolicy `json:"targetPolicy"`
	EffectKind     EffectKind   `json:"effectKind"`
	Status         StatusType   `json:"status,omitempty"`
	StatusDuration int          `json:"statusDuration,omitempty"`
	StatusPower    int          `json:"statusPower,omitempty"` // Per-round damage/heal for poison/regen
}

// NeedsTarget returns true if the ability requires explicit target selection.
func (a *AbilityDef) NeedsTarget() bool {
	return a.TargetPolicy == TargetSingleEnemy || a.TargetPolicy == TargetSingleAlly
}

// IsOffensive returns true if the ability is aimed at the opposing faction.
func (a *AbilityDef) IsOffensive() bool {
	return a.TargetPolicy == TargetSingleEnemy || a.TargetPolicy == TargetAllEnemies
}

// AbilitiesFile represents the structure of abilities.json.
type AbilitiesFile struct {
	Abilities []AbilityDef `json:"abilities"`
}

// LoadAbilities loads ability definitions from the embedded abilities.json file.
func LoadAbilities() ([]AbilityDef, error) {
	file, err := Load[AbilitiesFile]("abilities.json")
	if err != nil {
		return nil, err
	}
	return file.Abilities, nil
}
