package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/save"
	"github.com/samdwyer/emberfall/internal/session"
	"github.com/samdwyer/emberfall/internal/world"
)

// AbilityChoice is one entry in the combat ability menu.
type AbilityChoice struct {
	ID     string
	Name   string
	MPCost int
}

// CombatMenu is the input layer's combat selection state.
type CombatMenu struct {
	Abilities     []AbilityChoice
	AbilityCursor int
	PickingTarget bool
	Targets       []combat.CombatantID
	TargetCursor  int
}

// Frame carries the per-mode selection state owned by the input layer.
// The renderer reads it together with the session and never mutates either.
type Frame struct {
	Cursor int // List cursor for menu-like modes
	Combat *CombatMenu
	Slots  []save.SlotInfo
	Status string // One-line notice, e.g. a rejected action
}

var mainMenuItems = []string{"New Game", "Load Game", "Quit"}

// Renderer draws the active game mode to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws one full frame for the session's current mode.
func (r *Renderer) Render(s *session.Session, frame Frame) {
	r.screen.Clear()

	// A populated slot list overrides the mode view: the input layer is
	// picking a save or load slot.
	if frame.Slots != nil {
		r.renderSaveLoad(frame)
		if frame.Status != "" {
			_, h := r.screen.Size()
			r.screen.DrawText(0, h-1, tcell.StyleDefault.Foreground(tcell.ColorRed), frame.Status)
		}
		r.screen.Show()
		return
	}

	switch s.CurrentMode() {
	case session.ModeMainMenu:
		r.renderMainMenu(frame)
	case session.ModeOverworld:
		r.renderOverworld(s)
	case session.ModeCombat:
		r.renderCombat(s, frame)
	case session.ModeDialogue:
		r.renderOverworld(s)
		r.renderDialogue(s)
	case session.ModeInventory:
		r.renderInventory(s, frame)
	case session.ModeSaveLoad:
		r.renderSaveLoad(frame)
	case session.ModeGameOver:
		r.renderGameOver(s)
	}

	if frame.Status != "" {
		_, h := r.screen.Size()
		r.screen.DrawText(0, h-1, tcell.StyleDefault.Foreground(tcell.ColorRed), frame.Status)
	}
	r.screen.Show()
}

func (r *Renderer) renderMainMenu(frame Frame) {
	w, _ := r.screen.Size()
	title := "E M B E R F A L L"
	r.screen.DrawText((w-len(title))/2, 4, tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true), title)

	for i, item := range mainMenuItems {
		style := tcell.StyleDefault
		prefix := "  "
		if i == frame.Cursor {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
			prefix = "> "
		}
		r.screen.DrawText((w-len(item))/2-2, 8+i*2, style, prefix+item)
	}
}

func (r *Renderer) renderOverworld(s *session.Session) {
	ow := s.Overworld()
	party := s.Party()
	if ow == nil || party == nil {
		return
	}

	for y := 0; y < ow.Height; y++ {
		for x := 0; x < ow.Width; x++ {
			tile := ow.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), tileStyle(tile))
		}
	}

	for _, pl := range s.NPCPlacements() {
		style := tcell.StyleDefault.Foreground(pl.NPC.TCellColor())
		r.screen.SetContent(pl.X, pl.Y, pl.NPC.GlyphRune(), style)
	}

	partyStyle := tcell.StyleDefault.
		Foreground(tcell.ColorYellow).
		Bold(true)
	r.screen.SetContent(party.X, party.Y, '@', partyStyle)

	r.renderPartyLine(s, ow.Height)
	r.renderMessages(s, ow.Height+1, 3)
}

func tileStyle(tile world.Tile) tcell.Style {
	switch tile {
	case world.TileThicket:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	case world.TileGrass:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileMarsh:
		return tcell.StyleDefault.Foreground(tcell.ColorTeal)
	default:
		return tcell.StyleDefault
	}
}

// renderPartyLine shows a one-line HP summary under the map.
func (r *Renderer) renderPartyLine(s *session.Session, y int) {
	var parts []string
	for _, m := range s.Party().Members {
		parts = append(parts, fmt.Sprintf("%s %d/%d", m.Name, m.Stats.HP, m.Stats.MaxHP))
	}
	r.screen.DrawText(0, y, tcell.StyleDefault.Foreground(tcell.ColorWhite), strings.Join(parts, "  "))
}

func (r *Renderer) renderMessages(s *session.Session, y, count int) {
	msgs := s.Messages()
	if len(msgs) > count {
		msgs = msgs[len(msgs)-count:]
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	for i, msg := range msgs {
		r.screen.DrawText(0, y+i, style, msg)
	}
}

func (r *Renderer) renderCombat(s *session.Session, frame Frame) {
	view, ok := s.CombatView()
	if !ok {
		return
	}

	header := fmt.Sprintf("Round %d", view.Round)
	r.screen.DrawText(0, 0, tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true), header)

	row := 2
	r.screen.DrawText(0, row, tcell.StyleDefault.Foreground(tcell.ColorRed), "Foes")
	row++
	for _, c := range view.Combatants {
		if c.Faction != combat.FactionEnemy {
			continue
		}
		r.renderCombatantRow(c, row, frame)
		row++
	}

	row++
	r.screen.DrawText(0, row, tcell.StyleDefault.Foreground(tcell.ColorGreen), "Party")
	row++
	for _, c := range view.Combatants {
		if c.Faction != combat.FactionAlly {
			continue
		}
		r.renderCombatantRow(c, row, frame)
		row++
	}

	row++
	if len(view.Queue) > 0 {
		names := make([]string, 0, len(view.Queue))
		for _, id := range view.Queue {
			names = append(names, combatantName(view, id))
		}
		r.screen.DrawText(0, row, tcell.StyleDefault.Foreground(tcell.ColorSilver), "Next: "+strings.Join(names, " > "))
		row++
	}

	if frame.Combat != nil {
		row++
		row = r.renderAbilityMenu(frame.Combat, row)
	}

	row++
	r.renderMessages(s, row, 5)
}

func (r *Renderer) renderCombatantRow(c combat.CombatantView, y int, frame Frame) {
	style := tcell.StyleDefault
	marker := "  "
	if !c.Alive {
		style = style.Foreground(tcell.ColorDarkGray)
	}
	if frame.Combat != nil && frame.Combat.PickingTarget &&
		len(frame.Combat.Targets) > 0 &&
		frame.Combat.Targets[frame.Combat.TargetCursor] == c.ID {
		style = style.Foreground(tcell.ColorYellow).Bold(true)
		marker = "> "
	}

	line := fmt.Sprintf("%s%-16s", marker, c.Name)
	r.screen.DrawText(0, y, style, line)
	r.drawBar(20, y, 12, c.HP, c.MaxHP, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	r.screen.DrawText(34, y, style, fmt.Sprintf("%3d/%-3d", c.HP, c.MaxHP))
	if c.MaxMP > 0 && c.Faction == combat.FactionAlly {
		r.screen.DrawText(43, y, style.Foreground(tcell.ColorBlue), fmt.Sprintf("MP %d/%d", c.MP, c.MaxMP))
	}
	if len(c.Statuses) > 0 {
		tags := make([]string, 0, len(c.Statuses))
		for _, st := range c.Statuses {
			tags = append(tags, string(st.Type))
		}
		r.screen.DrawText(54, y, style.Foreground(tcell.ColorPurple), strings.Join(tags, ","))
	}
}

func (r *Renderer) renderAbilityMenu(menu *CombatMenu, y int) int {
	label := "Choose an ability (f to flee):"
	if menu.PickingTarget {
		label = "Choose a target:"
	}
	r.screen.DrawText(0, y, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true), label)
	y++
	if menu.PickingTarget {
		return y
	}
	for i, a := range menu.Abilities {
		style := tcell.StyleDefault
		prefix := "  "
		if i == menu.AbilityCursor {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
			prefix = "> "
		}
		line := fmt.Sprintf("%s%-18s", prefix, a.Name)
		if a.MPCost > 0 {
			line += fmt.Sprintf(" %d MP", a.MPCost)
		}
		r.screen.DrawText(2, y, style, line)
		y++
	}
	return y
}

// drawBar renders a proportional bar of the given width.
func (r *Renderer) drawBar(x, y, width, cur, max int, style tcell.Style) {
	if max <= 0 {
		return
	}
	filled := cur * width / max
	if cur > 0 && filled == 0 {
		filled = 1
	}
	for i := 0; i < width; i++ {
		ch := '░'
		if i < filled {
			ch = '█'
		}
		r.screen.SetContent(x+i, y, ch, style)
	}
}

func (r *Renderer) renderDialogue(s *session.Session) {
	view, ok := s.Dialogue()
	if !ok {
		return
	}
	w, h := r.screen.Size()
	top := h - 5
	border := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, top, '─', border)
	}
	for y := top + 1; y < h; y++ {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', tcell.StyleDefault)
		}
	}
	r.screen.DrawText(1, top+1, tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true), view.Speaker)
	r.screen.DrawText(1, top+2, tcell.StyleDefault, view.Line)
	hint := "[space] next"
	if view.Last {
		hint = "[space] close"
	}
	r.screen.DrawText(1, top+4, tcell.StyleDefault.Foreground(tcell.ColorGray), hint)
}

func (r *Renderer) renderInventory(s *session.Session, frame Frame) {
	r.screen.DrawText(0, 0, tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true), "Inventory")

	items := carriedItems(s)
	if len(items) == 0 {
		r.screen.DrawText(2, 2, tcell.StyleDefault.Foreground(tcell.ColorGray), "The pack is empty.")
	}
	for i, it := range items {
		style := tcell.StyleDefault
		prefix := "  "
		if i == frame.Cursor {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
			prefix = "> "
		}
		r.screen.DrawText(2, 2+i, style, fmt.Sprintf("%s%-18s x%d", prefix, it.name, it.count))
	}

	row := 4 + len(items)
	r.screen.DrawText(0, row, tcell.StyleDefault.Foreground(tcell.ColorGreen), "Party")
	row++
	for _, m := range s.Party().Members {
		style := tcell.StyleDefault
		if !m.Alive() {
			style = style.Foreground(tcell.ColorDarkGray)
		}
		r.screen.DrawText(2, row, style, fmt.Sprintf("%-12s HP %d/%d  MP %d/%d",
			m.Name, m.Stats.HP, m.Stats.MaxHP, m.Stats.MP, m.Stats.MaxMP))
		row++
	}
	r.screen.DrawText(0, row+1, tcell.StyleDefault.Foreground(tcell.ColorGray),
		"[enter] use on first living member  [s] save  [esc] close")
}

type itemLine struct {
	id    string
	name  string
	count int
}

// carriedItems lists what the party holds, in catalog order.
func carriedItems(s *session.Session) []itemLine {
	var out []itemLine
	for _, id := range s.ItemIDs() {
		count := s.Party().Items[id]
		if count <= 0 {
			continue
		}
		name := id
		if def, err := s.Item(id); err == nil {
			name = def.Name
		}
		out = append(out, itemLine{id: id, name: name, count: count})
	}
	return out
}

func (r *Renderer) renderSaveLoad(frame Frame) {
	r.screen.DrawText(0, 0, tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true), "Save Slots")
	for i, info := range frame.Slots {
		style := tcell.StyleDefault
		prefix := "  "
		if i == frame.Cursor {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
			prefix = "> "
		}
		desc := "empty"
		if info.Occupied {
			desc = info.SavedAt.Format("2006-01-02 15:04")
		}
		r.screen.DrawText(2, 2+i, style, fmt.Sprintf("%sSlot %d  %s", prefix, info.Slot, desc))
	}
	r.screen.DrawText(0, 6+len(frame.Slots), tcell.StyleDefault.Foreground(tcell.ColorGray), "[enter] confirm  [esc] back")
}

func (r *Renderer) renderGameOver(s *session.Session) {
	w, h := r.screen.Size()
	msg := "The band of Emberfall is no more."
	r.screen.DrawText((w-len(msg))/2, h/2-1, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true), msg)
	hint := "[enter] return to the menu"
	r.screen.DrawText((w-len(hint))/2, h/2+1, tcell.StyleDefault.Foreground(tcell.ColorGray), hint)
}

func combatantName(view combat.EncounterView, id combat.CombatantID) string {
	for _, c := range view.Combatants {
		if c.ID == id {
			return c.Name
		}
	}
	return string(id)
}
