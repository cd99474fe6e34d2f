package gamedata

// ItemDef defines a usable item loaded from JSON. Items restore HP or MP
// when used on a party member outside of combat.
type ItemDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	RestoreHP   int    `json:"restoreHp,omitempty"`
	RestoreMP   int    `json:"restoreMp,omitempty"`
	DropWeight  int    `json:"dropWeight"` // Relative chance of appearing in victory loot
}

// ItemsFile represents the structure of items.json.
type ItemsFile struct {
	Items []ItemDef `json:"items"`
}

// LoadItems loads item definitions from the embedded items.json file.
func LoadItems() ([]ItemDef, error) {
	file, err := Load[ItemsFile]("items.json")
	if err != nil {
		return nil, err
	}
	return file.Items, nil
}
