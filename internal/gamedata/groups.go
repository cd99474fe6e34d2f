package gamedata

// GroupDef defines an encounter group: the enemy line-up spawned when an
// encounter triggers. Entries reference enemy ids and may repeat.
type GroupDef struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Enemies     []string `json:"enemies"`
	SpawnWeight int      `json:"spawnWeight"` // Relative frequency for random overworld encounters
	MinZone     int      `json:"minZone"`     // Earliest overworld zone this group appears in
}

// GroupsFile represents the structure of groups.json.
type GroupsFile struct {
	Groups []GroupDef `json:"groups"`
}

// LoadGroups loads encounter group definitions from the embedded groups.json file.
func LoadGroups() ([]GroupDef, error) {
	file, err := Load[GroupsFile]("groups.json")
	if err != nil {
		return nil, err
	}
	return file.Groups, nil
}
