// Package game provides the main loop connecting input, the session, and
// the renderer.
package game

import (
	"context"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/save"
	"github.com/samdwyer/emberfall/internal/session"
	"github.com/samdwyer/emberfall/internal/telemetry"
	"github.com/samdwyer/emberfall/internal/ui"
)

// slotPurpose tells the slot picker what to do on confirm.
type slotPurpose int

const (
	slotIdle slotPurpose = iota
	slotSave
	slotLoad
)

// Game wires the session, the save store, and the terminal together.
type Game struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	session  *session.Session
	store    *save.Store
	log      *logrus.Entry
	running  bool

	frame   ui.Frame
	picking slotPurpose
}

// New creates a new game instance.
func New(cfg Config) (*Game, error) {
	logger := cfg.Log
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	registry, err := gamedata.LoadRegistry()
	if err != nil {
		return nil, err
	}
	store, err := save.NewStore(cfg.SaveDir, logger)
	if err != nil {
		return nil, err
	}
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}

	return &Game{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		session: session.New(session.Config{
			Registry: registry,
			Saver:    store,
			Log:      logger,
			Seed:     cfg.Seed,
		}),
		store:   store,
		log:     logger.WithField("component", "game"),
		running: true,
	}, nil
}

// Run executes the main game loop.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.run")
	span.SetAttributes(attribute.Int64("world.seed", g.session.Seed()))
	defer span.End()

	for g.running {
		g.advance(ctx)
		g.renderer.Render(g.session, g.frame)
		g.handleInput(ctx)
	}

	g.screen.Close()
	return nil
}

// advance plays out anything that happens without player input: enemy
// turns, and rebuilding the combat menu for the ally whose turn is up.
func (g *Game) advance(ctx context.Context) {
	if g.session.CurrentMode() != session.ModeCombat {
		g.frame.Combat = nil
		return
	}
	if err := g.session.AdvanceEnemies(ctx); err != nil {
		g.log.WithError(err).Warn("enemy turn failed")
	}
	if g.session.CurrentMode() != session.ModeCombat {
		g.frame.Combat = nil
		return
	}
	if g.frame.Combat == nil {
		g.frame.Combat = g.buildCombatMenu()
	}
}

// buildCombatMenu lists the current ally actor's abilities.
func (g *Game) buildCombatMenu() *ui.CombatMenu {
	enc := g.session.CurrentEncounter()
	if enc == nil {
		return nil
	}
	id, ok := enc.CurrentActor()
	if !ok {
		return nil
	}
	actor, ok := enc.Combatant(id)
	if !ok || actor.Faction != combat.FactionAlly {
		return nil
	}
	menu := &ui.CombatMenu{}
	for _, abilityID := range actor.Abilities {
		def, err := g.session.Ability(abilityID)
		if err != nil {
			continue
		}
		menu.Abilities = append(menu.Abilities, ui.AbilityChoice{
			ID:     def.ID,
			Name:   def.Name,
			MPCost: def.MPCost,
		})
	}
	return menu
}

// handleInput processes a single input event.
func (g *Game) handleInput(ctx context.Context) {
	ev := g.screen.PollEvent()

	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.frame.Status = ""
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent dispatches keyboard input by game mode.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		g.running = false
		return
	}

	if g.frame.Slots != nil {
		g.handleSlotPicker(ctx, ev)
		return
	}

	switch g.session.CurrentMode() {
	case session.ModeMainMenu:
		g.handleMainMenu(ctx, ev)
	case session.ModeOverworld:
		g.handleOverworld(ctx, ev)
	case session.ModeCombat:
		g.handleCombat(ctx, ev)
	case session.ModeDialogue:
		g.handleDialogue(ctx, ev)
	case session.ModeInventory:
		g.handleInventory(ctx, ev)
	case session.ModeSaveLoad:
		// A save has completed; any key acknowledges it.
		g.send(ctx, session.Saved{})
	case session.ModeGameOver:
		if ev.Key() == tcell.KeyEnter {
			g.send(ctx, session.ReturnToMenu{})
		}
	}
}

func (g *Game) handleMainMenu(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		g.frame.Cursor = clampCursor(g.frame.Cursor-1, 3)
	case tcell.KeyDown:
		g.frame.Cursor = clampCursor(g.frame.Cursor+1, 3)
	case tcell.KeyEnter:
		switch g.frame.Cursor {
		case 0:
			g.send(ctx, session.StartNewGame{})
		case 1:
			g.openSlotPicker(slotLoad)
		case 2:
			g.running = false
		}
	case tcell.KeyEscape:
		g.running = false
	case tcell.KeyRune:
		if ev.Rune() == 'q' || ev.Rune() == 'Q' {
			g.running = false
		}
	}
}

func (g *Game) handleOverworld(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		g.move(ctx, 0, -1)
	case tcell.KeyDown:
		g.move(ctx, 0, 1)
	case tcell.KeyLeft:
		g.move(ctx, -1, 0)
	case tcell.KeyRight:
		g.move(ctx, 1, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'i', 'I':
			g.send(ctx, session.OpenInventory{})
		case 's', 'S':
			g.openSlotPicker(slotSave)
		case 'q', 'Q':
			g.running = false
		}
	}
}

func (g *Game) move(ctx context.Context, dx, dy int) {
	if err := g.session.MoveParty(ctx, dx, dy); err != nil {
		g.log.WithError(err).Debug("move rejected")
	}
	g.frame.Cursor = 0
}

func (g *Game) handleCombat(ctx context.Context, ev *tcell.EventKey) {
	menu := g.frame.Combat
	if menu == nil {
		return
	}
	enc := g.session.CurrentEncounter()
	if enc == nil {
		return
	}
	actorID, ok := enc.CurrentActor()
	if !ok {
		return
	}

	if menu.PickingTarget {
		switch ev.Key() {
		case tcell.KeyUp:
			menu.TargetCursor = clampCursor(menu.TargetCursor-1, len(menu.Targets))
		case tcell.KeyDown:
			menu.TargetCursor = clampCursor(menu.TargetCursor+1, len(menu.Targets))
		case tcell.KeyEscape:
			menu.PickingTarget = false
		case tcell.KeyEnter:
			target := menu.Targets[menu.TargetCursor]
			g.executeAction(ctx, actorID, menu.Abilities[menu.AbilityCursor].ID, []combat.CombatantID{target})
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyUp:
		menu.AbilityCursor = clampCursor(menu.AbilityCursor-1, len(menu.Abilities))
	case tcell.KeyDown:
		menu.AbilityCursor = clampCursor(menu.AbilityCursor+1, len(menu.Abilities))
	case tcell.KeyEnter:
		if len(menu.Abilities) == 0 {
			return
		}
		choice := menu.Abilities[menu.AbilityCursor]
		def, err := g.session.Ability(choice.ID)
		if err != nil {
			g.frame.Status = err.Error()
			return
		}
		if def.NeedsTarget() {
			menu.Targets = combatTargets(enc.View(), actorID, def.TargetPolicy)
			if len(menu.Targets) == 0 {
				g.frame.Status = "no valid target"
				return
			}
			menu.TargetCursor = 0
			menu.PickingTarget = true
			return
		}
		g.executeAction(ctx, actorID, choice.ID, nil)
	case tcell.KeyRune:
		if ev.Rune() == 'f' || ev.Rune() == 'F' {
			if _, err := g.session.Flee(ctx, actorID); err != nil {
				g.frame.Status = err.Error()
				return
			}
			g.frame.Combat = nil
		}
	}
}

func (g *Game) executeAction(ctx context.Context, actorID combat.CombatantID, abilityID string, targets []combat.CombatantID) {
	if _, err := g.session.ExecuteAction(ctx, actorID, abilityID, targets); err != nil {
		// Recoverable: the actor keeps the turn, the menu stays up.
		g.frame.Status = err.Error()
		if g.frame.Combat != nil {
			g.frame.Combat.PickingTarget = false
		}
		return
	}
	g.frame.Combat = nil
}

// combatTargets lists the ids a single-target ability may be aimed at, in
// roster order.
func combatTargets(view combat.EncounterView, actorID combat.CombatantID, policy gamedata.TargetPolicy) []combat.CombatantID {
	var actorFaction combat.Faction
	for _, c := range view.Combatants {
		if c.ID == actorID {
			actorFaction = c.Faction
			break
		}
	}
	want := actorFaction
	if policy == gamedata.TargetSingleEnemy {
		if actorFaction == combat.FactionAlly {
			want = combat.FactionEnemy
		} else {
			want = combat.FactionAlly
		}
	}
	var out []combat.CombatantID
	for _, c := range view.Combatants {
		if c.Alive && c.Faction == want {
			out = append(out, c.ID)
		}
	}
	return out
}

func (g *Game) handleDialogue(ctx context.Context, ev *tcell.EventKey) {
	switch {
	case ev.Key() == tcell.KeyEnter,
		ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		if err := g.session.AdvanceDialogue(ctx); err != nil {
			g.log.WithError(err).Debug("dialogue advance rejected")
		}
	}
}

func (g *Game) handleInventory(ctx context.Context, ev *tcell.EventKey) {
	items := g.carriedItems()
	switch ev.Key() {
	case tcell.KeyUp:
		g.frame.Cursor = clampCursor(g.frame.Cursor-1, len(items))
	case tcell.KeyDown:
		g.frame.Cursor = clampCursor(g.frame.Cursor+1, len(items))
	case tcell.KeyEscape:
		g.frame.Cursor = 0
		g.send(ctx, session.CloseInventory{})
	case tcell.KeyEnter:
		if g.frame.Cursor >= len(items) {
			return
		}
		target := ""
		for _, m := range g.session.Party().Members {
			if m.Alive() {
				target = m.ID
				break
			}
		}
		if target == "" {
			return
		}
		if err := g.session.UseItem(items[g.frame.Cursor], target); err != nil {
			g.frame.Status = err.Error()
		}
		g.frame.Cursor = 0
	case tcell.KeyRune:
		if ev.Rune() == 's' || ev.Rune() == 'S' {
			g.openSlotPicker(slotSave)
		}
	}
}

// carriedItems lists item ids the party holds, in catalog order.
func (g *Game) carriedItems() []string {
	var out []string
	for _, id := range g.session.ItemIDs() {
		if g.session.Party().Items[id] > 0 {
			out = append(out, id)
		}
	}
	return out
}

func (g *Game) openSlotPicker(purpose slotPurpose) {
	g.picking = purpose
	g.frame.Slots = g.store.Slots()
	g.frame.Cursor = 0
}

func (g *Game) closeSlotPicker() {
	g.picking = slotIdle
	g.frame.Slots = nil
	g.frame.Cursor = 0
}

func (g *Game) handleSlotPicker(ctx context.Context, ev *tcell.EventKey) {
	// While in SaveLoad mode the picker is a confirmation screen only.
	if g.session.CurrentMode() == session.ModeSaveLoad {
		g.closeSlotPicker()
		g.send(ctx, session.Saved{})
		return
	}

	switch ev.Key() {
	case tcell.KeyUp:
		g.frame.Cursor = clampCursor(g.frame.Cursor-1, len(g.frame.Slots))
	case tcell.KeyDown:
		g.frame.Cursor = clampCursor(g.frame.Cursor+1, len(g.frame.Slots))
	case tcell.KeyEscape:
		g.closeSlotPicker()
	case tcell.KeyEnter:
		slot := g.frame.Slots[g.frame.Cursor].Slot
		purpose := g.picking
		switch purpose {
		case slotSave:
			if err := g.session.SendEvent(ctx, session.SaveRequested{Slot: slot}); err != nil {
				g.frame.Status = err.Error()
				return
			}
			// Stay on the slot screen until the player acknowledges; the
			// next key sends Saved and returns to the requesting mode.
			g.frame.Slots = g.store.Slots()
		case slotLoad:
			if err := g.session.SendEvent(ctx, session.LoadSave{Slot: slot}); err != nil {
				g.frame.Status = err.Error()
				return
			}
			g.closeSlotPicker()
		}
	}
}

func (g *Game) send(ctx context.Context, ev session.Event) {
	if err := g.session.SendEvent(ctx, ev); err != nil {
		g.frame.Status = err.Error()
	}
}

func clampCursor(v, n int) int {
	if n == 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
