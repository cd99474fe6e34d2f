package gamedata

import "github.com/gdamore/tcell/v2"

// NPCDef defines a non-player character loaded from JSON. Dialogue is a
// linear sequence of lines played back by the dialogue mode.
type NPCDef struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Glyph    string   `json:"glyph"`
	Color    string   `json:"color"`
	Dialogue []string `json:"dialogue"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (n *NPCDef) GlyphRune() rune {
	if len(n.Glyph) == 0 {
		return '@'
	}
	return rune(n.Glyph[0])
}

// TCellColor returns the color as a tcell.Color, falling back to white.
func (n *NPCDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(n.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// NPCsFile represents the structure of npcs.json.
type NPCsFile struct {
	NPCs []NPCDef `json:"npcs"`
}

// LoadNPCs loads NPC definitions from the embedded npcs.json file.
func LoadNPCs() ([]NPCDef, error) {
	file, err := Load[NPCsFile]("npcs.json")
	if err != nil {
		return nil, err
	}
	return file.NPCs, nil
}
