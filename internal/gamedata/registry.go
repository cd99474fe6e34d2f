package gamedata

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/samdwyer/emberfall/internal/stats"
)

// Lookup errors. Callers match with errors.Is.
var (
	ErrUnknownAbility = errors.New("unknown ability")
	ErrUnknownEnemy   = errors.New("unknown enemy")
	ErrUnknownGroup   = errors.New("unknown encounter group")
	ErrUnknownClass   = errors.New("unknown class")
	ErrUnknownNPC     = errors.New("unknown npc")
	ErrUnknownItem    = errors.New("unknown item")
)

// Registry is the read-only content provider: every static definition the
// engine consumes, loaded once from embedded JSON at startup.
type Registry struct {
	abilities map[string]*AbilityDef
	classes   map[string]*ClassDef
	enemies   map[string]*EnemyDef
	groups    map[string]*GroupDef
	npcs      map[string]*NPCDef
	items     map[string]*ItemDef

	classOrder []string // classes.json order, used for the starting party
	groupList  []GroupDef
	itemList   []ItemDef

	groupWeight int
	dropWeight  int
}

// LoadRegistry loads all embedded content files into a registry.
func LoadRegistry() (*Registry, error) {
	abilities, err := LoadAbilities()
	if err != nil {
		return nil, err
	}
	classes, err := LoadClasses()
	if err != nil {
		return nil, err
	}
	enemies, err := LoadEnemies()
	if err != nil {
		return nil, err
	}
	groups, err := LoadGroups()
	if err != nil {
		return nil, err
	}
	npcs, err := LoadNPCs()
	if err != nil {
		return nil, err
	}
	items, err := LoadItems()
	if err != nil {
		return nil, err
	}

	r := &Registry{
		abilities: make(map[string]*AbilityDef, len(abilities)),
		classes:   make(map[string]*ClassDef, len(classes)),
		enemies:   make(map[string]*EnemyDef, len(enemies)),
		groups:    make(map[string]*GroupDef, len(groups)),
		npcs:      make(map[string]*NPCDef, len(npcs)),
		items:     make(map[string]*ItemDef, len(items)),
		groupList: groups,
		itemList:  items,
	}
	for i := range abilities {
		r.abilities[abilities[i].ID] = &abilities[i]
	}
	for i := range classes {
		r.classes[classes[i].ID] = &classes[i]
		r.classOrder = append(r.classOrder, classes[i].ID)
	}
	for i := range enemies {
		r.enemies[enemies[i].ID] = &enemies[i]
	}
	for i := range groups {
		r.groups[groups[i].ID] = &groups[i]
		r.groupWeight += groups[i].SpawnWeight
	}
	for i := range npcs {
		r.npcs[npcs[i].ID] = &npcs[i]
	}
	for i := range items {
		r.items[items[i].ID] = &items[i]
		r.dropWeight += items[i].DropWeight
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MustLoadRegistry loads the registry, panicking on error.
func MustLoadRegistry() *Registry {
	r, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// validate checks cross-references between content files so a broken data
// file fails at startup rather than mid-combat.
func (r *Registry) validate() error {
	for _, c := range r.classes {
		for _, id := range c.Abilities {
			if _, ok := r.abilities[id]; !ok {
				return fmt.Errorf("class %s: %w: %s", c.ID, ErrUnknownAbility, id)
			}
		}
	}
	for _, e := range r.enemies {
		for _, id := range e.Abilities {
			if _, ok := r.abilities[id]; !ok {
				return fmt.Errorf("enemy %s: %w: %s", e.ID, ErrUnknownAbility, id)
			}
		}
	}
	for _, g := range r.groups {
		if len(g.Enemies) == 0 {
			return fmt.Errorf("group %s has no enemies", g.ID)
		}
		for _, id := range g.Enemies {
			if _, ok := r.enemies[id]; !ok {
				return fmt.Errorf("group %s: %w: %s", g.ID, ErrUnknownEnemy, id)
			}
		}
	}
	return nil
}

// GetAbility returns the ability definition for id.
func (r *Registry) GetAbility(id string) (*AbilityDef, error) {
	if a, ok := r.abilities[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAbility, id)
}

// GetClass returns the class definition for id.
func (r *Registry) GetClass(id string) (*ClassDef, error) {
	if c, ok := r.classes[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownClass, id)
}

// ClassIDs returns class ids in classes.json order.
func (r *Registry) ClassIDs() []string {
	return r.classOrder
}

// GetEnemyTemplate returns the stat block seed and ability ids for an enemy.
func (r *Registry) GetEnemyTemplate(id string) (stats.Block, []string, error) {
	e, ok := r.enemies[id]
	if !ok {
		return stats.Block{}, nil, fmt.Errorf("%w: %s", ErrUnknownEnemy, id)
	}
	return e.BaseStats(), e.Abilities, nil
}

// GetEnemy returns the full enemy definition for id.
func (r *Registry) GetEnemy(id string) (*EnemyDef, error) {
	if e, ok := r.enemies[id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEnemy, id)
}

// GetGroup returns the encounter group definition for id.
func (r *Registry) GetGroup(id string) (*GroupDef, error) {
	if g, ok := r.groups[id]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, id)
}

// RandomGroup selects an encounter group for the given overworld zone using
// weighted probability. Groups with MinZone above zone are excluded.
func (r *Registry) RandomGroup(rng *rand.Rand, zone int) *GroupDef {
	total := 0
	for i := range r.groupList {
		if r.groupList[i].MinZone <= zone {
			total += r.groupList[i].SpawnWeight
		}
	}
	if total <= 0 {
		return nil
	}
	roll := rng.Intn(total)
	cumulative := 0
	for i := range r.groupList {
		if r.groupList[i].MinZone > zone {
			continue
		}
		cumulative += r.groupList[i].SpawnWeight
		if roll < cumulative {
			return &r.groupList[i]
		}
	}
	return nil
}

// GetNPC returns the NPC definition for id.
func (r *Registry) GetNPC(id string) (*NPCDef, error) {
	if n, ok := r.npcs[id]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownNPC, id)
}

// NPCs returns all NPC definitions.
func (r *Registry) NPCs() []*NPCDef {
	result := make([]*NPCDef, 0, len(r.npcs))
	for _, n := range r.npcs {
		result = append(result, n)
	}
	return result
}

// GetItem returns the item definition for id.
func (r *Registry) GetItem(id string) (*ItemDef, error) {
	if i, ok := r.items[id]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
}

// ItemIDs returns item ids in items.json order.
func (r *Registry) ItemIDs() []string {
	out := make([]string, 0, len(r.itemList))
	for i := range r.itemList {
		out = append(out, r.itemList[i].ID)
	}
	return out
}

// RandomDrop selects a loot item using weighted probability, or nil when the
// roll lands outside every item's weight (no drop).
func (r *Registry) RandomDrop(rng *rand.Rand) *ItemDef {
	if r.dropWeight <= 0 {
		return nil
	}
	roll := rng.Intn(r.dropWeight)
	cumulative := 0
	for i := range r.itemList {
		cumulative += r.itemList[i].DropWeight
		if roll < cumulative {
			return &r.itemList[i]
		}
	}
	return nil
}
