package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/samdwyer/emberfall/internal/combat"
	"github.com/samdwyer/emberfall/internal/entity"
	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/progression"
	"github.com/samdwyer/emberfall/internal/telemetry"
	"github.com/samdwyer/emberfall/internal/world"
)

// ErrNoEncounter is returned by combat operations outside combat mode.
var ErrNoEncounter = errors.New("no encounter in progress")

// Default party member names, paired with classes in registry order.
var partyNames = []string{"Brann", "Maeve", "Sorcha", "Tomas"}

// maxMessages bounds the rolling message log.
const maxMessages = 50

type point struct {
	X, Y int
}

// NPCPlacement is an NPC's position on the overworld, for rendering.
type NPCPlacement struct {
	X, Y int
	NPC  *gamedata.NPCDef
}

// DialogueView is the visible state of an open dialogue.
type DialogueView struct {
	Speaker string
	Line    string
	Last    bool
}

type dialogueState struct {
	npc  *gamedata.NPCDef
	line int
}

// Config configures a new Session.
type Config struct {
	Registry *gamedata.Registry
	Saver    Saver
	Log      *logrus.Logger
	Seed     int64 // 0 seeds from the clock
}

// Session is one running game. It owns the mode state machine, the party,
// the progression ledger, the overworld, and at most one live encounter.
// Sessions are not safe for concurrent use; the game loop drives them from
// a single goroutine.
type Session struct {
	registry *gamedata.Registry
	saver    Saver
	log      *logrus.Entry
	machine  *fsm.FSM
	rng      *rand.Rand
	seed     int64

	party     *entity.Party
	ledger    *progression.Ledger
	overworld *world.Overworld
	npcAt     map[point]string

	encounter   *combat.Encounter
	combatNames map[combat.CombatantID]string

	dialogue *dialogueState
	returnTo Mode
	messages []string
}

// New builds a Session at the main menu. Nothing is generated until
// StartNewGame or LoadSave arrives.
func New(cfg Config) *Session {
	logger := cfg.Log
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		registry: cfg.Registry,
		saver:    cfg.Saver,
		log:      logger.WithField("component", "session"),
		rng:      rand.New(rand.NewSource(seed)),
		seed:     seed,
		npcAt:    make(map[point]string),
	}
	s.machine = fsm.NewFSM(
		string(ModeMainMenu),
		fsm.Events{
			{Name: "start_new_game", Src: []string{string(ModeMainMenu)}, Dst: string(ModeOverworld)},
			{Name: "load_save", Src: []string{string(ModeMainMenu)}, Dst: string(ModeOverworld)},
			{Name: "encounter_triggered", Src: []string{string(ModeOverworld)}, Dst: string(ModeCombat)},
			{Name: "combat_victory", Src: []string{string(ModeCombat)}, Dst: string(ModeOverworld)},
			{Name: "combat_fled", Src: []string{string(ModeCombat)}, Dst: string(ModeOverworld)},
			{Name: "combat_defeat", Src: []string{string(ModeCombat)}, Dst: string(ModeGameOver)},
			{Name: "talk_to_npc", Src: []string{string(ModeOverworld)}, Dst: string(ModeDialogue)},
			{Name: "dialogue_ended", Src: []string{string(ModeDialogue)}, Dst: string(ModeOverworld)},
			{Name: "open_inventory", Src: []string{string(ModeOverworld)}, Dst: string(ModeInventory)},
			{Name: "close_inventory", Src: []string{string(ModeInventory)}, Dst: string(ModeOverworld)},
			{Name: "save_requested", Src: []string{string(ModeOverworld), string(ModeInventory), string(ModeDialogue)}, Dst: string(ModeSaveLoad)},
			{Name: "saved", Src: []string{string(ModeSaveLoad)}, Dst: string(ModeOverworld)},
			{Name: "return_to_menu", Src: []string{string(ModeGameOver)}, Dst: string(ModeMainMenu)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.WithFields(logrus.Fields{
					"event": e.Event,
					"from":  e.Src,
					"to":    e.Dst,
				}).Info("mode transition")
			},
		},
	)
	return s
}

// CurrentMode returns the active game mode.
func (s *Session) CurrentMode() Mode {
	return Mode(s.machine.Current())
}

// Party returns the active party, or nil at the main menu.
func (s *Session) Party() *entity.Party { return s.party }

// Overworld returns the generated map, or nil at the main menu.
func (s *Session) Overworld() *world.Overworld { return s.overworld }

// Seed returns the world seed of the current run.
func (s *Session) Seed() int64 { return s.seed }

// LedgerEntry returns the progression entry for one character.
func (s *Session) LedgerEntry(characterID string) (progression.Entry, bool) {
	if s.ledger == nil {
		return progression.Entry{}, false
	}
	return s.ledger.Entry(characterID)
}

// Messages returns the rolling message log, oldest first.
func (s *Session) Messages() []string {
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// NPCPlacements returns every NPC on the overworld with its position.
func (s *Session) NPCPlacements() []NPCPlacement {
	out := make([]NPCPlacement, 0, len(s.npcAt))
	for pos, id := range s.npcAt {
		npc, err := s.registry.GetNPC(id)
		if err != nil {
			continue
		}
		out = append(out, NPCPlacement{X: pos.X, Y: pos.Y, NPC: npc})
	}
	return out
}

// ItemIDs returns every item id in catalog order, for inventory listing.
func (s *Session) ItemIDs() []string {
	return s.registry.ItemIDs()
}

// Item looks up one item definition.
func (s *Session) Item(id string) (*gamedata.ItemDef, error) {
	return s.registry.GetItem(id)
}

// Ability looks up one ability definition.
func (s *Session) Ability(id string) (*gamedata.AbilityDef, error) {
	return s.registry.GetAbility(id)
}

// CombatView snapshots the live encounter for rendering.
func (s *Session) CombatView() (combat.EncounterView, bool) {
	if s.encounter == nil {
		return combat.EncounterView{}, false
	}
	return s.encounter.View(), true
}

// CurrentEncounter exposes the live encounter for input handling.
func (s *Session) CurrentEncounter() *combat.Encounter { return s.encounter }

// Dialogue returns the current dialogue line.
func (s *Session) Dialogue() (DialogueView, bool) {
	d := s.dialogue
	if d == nil {
		return DialogueView{}, false
	}
	return DialogueView{
		Speaker: d.npc.Name,
		Line:    d.npc.Dialogue[d.line],
		Last:    d.line == len(d.npc.Dialogue)-1,
	}, true
}

// SendEvent feeds one game-mode event through the state machine, running
// the effects the transition implies. An event with no transition from the
// current mode is a logged no-op returning IgnoredEventError; the session
// is unchanged.
func (s *Session) SendEvent(ctx context.Context, ev Event) error {
	name := ev.eventName()
	if !s.machine.Can(name) {
		mode := s.CurrentMode()
		s.log.WithFields(logrus.Fields{"event": name, "mode": mode}).Warn("event ignored")
		return &IgnoredEventError{Event: name, Mode: mode}
	}
	switch e := ev.(type) {
	case StartNewGame:
		return s.startNewGame(ctx)
	case LoadSave:
		return s.loadSave(ctx, e.Slot)
	case EncounterTriggered:
		return s.startEncounter(ctx, e.GroupID)
	case TalkToNPC:
		return s.startDialogue(ctx, e.NPCID)
	case DialogueEnded:
		if err := s.machine.Event(ctx, name); err != nil {
			return err
		}
		s.dialogue = nil
		return nil
	case SaveRequested:
		return s.saveGame(ctx, e.Slot)
	case Saved:
		// The machine only knows one destination for "saved"; restore the
		// mode that actually requested the save.
		ret := s.returnTo
		if err := s.machine.Event(ctx, name); err != nil {
			return err
		}
		if ret.Valid() && ret != s.CurrentMode() {
			s.machine.SetState(string(ret))
		}
		s.returnTo = ""
		return nil
	case ReturnToMenu:
		if err := s.machine.Event(ctx, name); err != nil {
			return err
		}
		s.clearRun()
		return nil
	default:
		return s.machine.Event(ctx, name)
	}
}

func (s *Session) clearRun() {
	s.party = nil
	s.ledger = nil
	s.overworld = nil
	s.encounter = nil
	s.combatNames = nil
	s.dialogue = nil
	s.npcAt = make(map[point]string)
	s.messages = nil
}

func (s *Session) startNewGame(ctx context.Context) error {
	ctx, span := telemetry.Tracer("session").Start(ctx, "startNewGame")
	defer span.End()

	ow := world.NewOverworld(world.DefaultWidth, world.DefaultHeight, s.seed)
	ow.Generate(ctx)
	if len(ow.Zones) == 0 {
		return fmt.Errorf("overworld generation produced no zones")
	}

	ledger := progression.NewLedger()
	var members []*entity.Character
	for i, id := range s.registry.ClassIDs() {
		class, err := s.registry.GetClass(id)
		if err != nil {
			return err
		}
		c := entity.NewCharacter(partyNames[i%len(partyNames)], class)
		members = append(members, c)
		ledger.Register(c.ID)
	}
	x, y := ow.Zones[0].Center()

	if err := s.machine.Event(ctx, "start_new_game"); err != nil {
		return err
	}
	s.overworld = ow
	s.party = entity.NewParty(x, y, members...)
	s.ledger = ledger
	s.placeNPCs()
	s.pushMessage("The ember road opens before you.")
	return nil
}

func (s *Session) loadSave(ctx context.Context, slot int) error {
	if s.saver == nil {
		return &LoadError{Slot: slot, Err: errors.New("no save store configured")}
	}
	snap, err := s.saver.Load(slot)
	if err != nil {
		s.log.WithField("slot", slot).WithError(err).Warn("load failed")
		return &LoadError{Slot: slot, Err: err}
	}
	if err := s.validateSnapshot(snap); err != nil {
		s.log.WithField("slot", slot).WithError(err).Warn("snapshot rejected")
		return &LoadError{Slot: slot, Err: err}
	}

	ow := world.NewOverworld(world.DefaultWidth, world.DefaultHeight, snap.Seed)
	ow.Generate(ctx)
	if !ow.IsPassable(snap.X, snap.Y) {
		return &LoadError{Slot: slot, Err: errors.New("party position is not passable")}
	}
	ledger := progression.NewLedger()
	ledger.Restore(snap.Ledger)
	party := entity.NewParty(snap.X, snap.Y, snap.Members...)
	for id, count := range snap.Items {
		party.AddItem(id, count)
	}

	if err := s.machine.Event(ctx, "load_save"); err != nil {
		return err
	}
	s.seed = snap.Seed
	s.rng = rand.New(rand.NewSource(snap.Seed))
	s.overworld = ow
	s.party = party
	s.ledger = ledger
	s.placeNPCs()
	s.pushMessage(fmt.Sprintf("Journey resumed from slot %d.", slot))
	return nil
}

// placeNPCs assigns one NPC to each zone past the starting one, at its
// center. Zone 0 stays clear for the party.
func (s *Session) placeNPCs() {
	s.npcAt = make(map[point]string)
	for i, npc := range s.registry.NPCs() {
		zone := i + 1
		if zone >= len(s.overworld.Zones) {
			break
		}
		x, y := s.overworld.Zones[zone].Center()
		s.npcAt[point{X: x, Y: y}] = npc.ID
	}
}

// MoveParty moves the party one step on the overworld. Stepping into an
// NPC opens dialogue instead of moving; stepping onto wild ground may
// trigger an encounter.
func (s *Session) MoveParty(ctx context.Context, dx, dy int) error {
	if s.CurrentMode() != ModeOverworld {
		return &IgnoredEventError{Event: "move", Mode: s.CurrentMode()}
	}
	nx, ny := s.party.X+dx, s.party.Y+dy
	if id, ok := s.npcAt[point{X: nx, Y: ny}]; ok {
		return s.SendEvent(ctx, TalkToNPC{NPCID: id})
	}
	if !s.overworld.IsPassable(nx, ny) {
		return nil
	}
	s.party.Move(dx, dy)
	if chance := s.overworld.GetTile(nx, ny).EncounterChance(); chance > 0 && s.rng.Intn(100) < chance {
		return s.SendEvent(ctx, EncounterTriggered{})
	}
	return nil
}

func (s *Session) startEncounter(ctx context.Context, groupID string) error {
	ctx, span := telemetry.Tracer("session").Start(ctx, "startEncounter")
	defer span.End()

	var (
		group *gamedata.GroupDef
		err   error
	)
	if groupID == "" {
		zone := s.overworld.ZoneIndexAt(s.party.X, s.party.Y)
		group = s.registry.RandomGroup(s.rng, zone)
		if group == nil {
			// Nothing prowls this zone yet.
			return nil
		}
	} else {
		group, err = s.registry.GetGroup(groupID)
		if err != nil {
			return err
		}
	}

	names := make(map[combat.CombatantID]string)
	var combatants []*combat.Combatant
	for _, m := range s.party.Members {
		if !m.Alive() {
			continue
		}
		c := combat.NewCombatant(m.Name, combat.FactionAlly, m.Stats, m.Abilities)
		c.CharacterID = m.ID
		names[c.ID] = c.Name
		combatants = append(combatants, c)
	}

	totals := make(map[string]int)
	for _, id := range group.Enemies {
		totals[id]++
	}
	seen := make(map[string]int)
	for _, id := range group.Enemies {
		def, err := s.registry.GetEnemy(id)
		if err != nil {
			return err
		}
		seen[id]++
		name := def.Name
		if totals[id] > 1 {
			name = fmt.Sprintf("%s %d", def.Name, seen[id])
		}
		c := combat.NewCombatant(name, combat.FactionEnemy, def.BaseStats(), def.Abilities)
		c.EnemyID = id
		names[c.ID] = name
		combatants = append(combatants, c)
	}

	enc, err := combat.NewEncounter(s.registry, combatants,
		combat.WithVariance(combat.NewRandVariance(s.rng)),
		combat.WithEventSink(s.onCombatEvent),
	)
	if err != nil {
		return err
	}

	if err := s.machine.Event(ctx, "encounter_triggered"); err != nil {
		return err
	}
	s.encounter = enc
	s.combatNames = names
	s.pushMessage(fmt.Sprintf("%s attack!", group.Name))
	s.log.WithFields(logrus.Fields{"group": group.ID, "combatants": len(combatants)}).Info("encounter started")
	return nil
}

// ExecuteAction resolves one combat action through the live encounter and
// settles the encounter if it ends. Recoverable combat errors pass through
// unchanged; the actor keeps the turn.
func (s *Session) ExecuteAction(ctx context.Context, actorID combat.CombatantID, abilityID string, targets []combat.CombatantID) (*combat.ActionResult, error) {
	if s.encounter == nil {
		return nil, ErrNoEncounter
	}
	result, err := s.encounter.ExecuteAction(actorID, abilityID, targets)
	if err != nil {
		return nil, err
	}
	if result.Outcome != combat.OutcomeNone {
		if err := s.settleEncounter(ctx, result.Outcome); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Flee attempts to run from the live encounter.
func (s *Session) Flee(ctx context.Context, actorID combat.CombatantID) (*combat.ActionResult, error) {
	if s.encounter == nil {
		return nil, ErrNoEncounter
	}
	result, err := s.encounter.Flee(actorID)
	if err != nil {
		return nil, err
	}
	if result.Outcome != combat.OutcomeNone {
		if err := s.settleEncounter(ctx, result.Outcome); err != nil {
			return result, err
		}
	}
	return result, nil
}

// AdvanceEnemies plays out consecutive enemy turns at the front of the
// queue until an ally is up or the encounter ends.
func (s *Session) AdvanceEnemies(ctx context.Context) error {
	for s.encounter != nil && !s.encounter.Over() {
		id, ok := s.encounter.CurrentActor()
		if !ok {
			return nil
		}
		actor, ok := s.encounter.Combatant(id)
		if !ok || actor.Faction != combat.FactionEnemy {
			return nil
		}
		abilityID, targets := combat.SelectAction(s.encounter, actor, s.registry, s.rng)
		if abilityID == "" {
			s.log.WithField("actor", actor.Name).Warn("enemy has no usable ability")
			return nil
		}
		if _, err := s.ExecuteAction(ctx, id, abilityID, targets); err != nil {
			return err
		}
	}
	return nil
}

// settleEncounter syncs combat results back into the party, pays out
// victory rewards, and leaves combat mode.
func (s *Session) settleEncounter(ctx context.Context, outcome combat.Outcome) error {
	enc := s.encounter

	for _, c := range enc.Combatants() {
		if c.CharacterID == "" {
			continue
		}
		if m := s.party.Member(c.CharacterID); m != nil {
			m.Stats.HP = c.Stats.HP
			m.Stats.MP = c.Stats.MP
		}
	}

	var event string
	switch outcome {
	case combat.OutcomeVictory:
		event = "combat_victory"
		s.payRewards(enc)
	case combat.OutcomeFled:
		event = "combat_fled"
		s.pushMessage("The party slips away.")
	case combat.OutcomeDefeat:
		event = "combat_defeat"
		s.pushMessage("The party has fallen.")
	default:
		return fmt.Errorf("settle called with outcome %q", outcome)
	}

	if err := s.machine.Event(ctx, event); err != nil {
		return err
	}
	s.encounter = nil
	s.combatNames = nil
	return nil
}

// payRewards totals the defeated side's rewards. Every living member earns
// the full experience; currency and essence are split evenly, remainder to
// the front of the party.
func (s *Session) payRewards(enc *combat.Encounter) {
	var exp, currency, essence int
	for _, c := range enc.Combatants() {
		if c.EnemyID == "" {
			continue
		}
		def, err := s.registry.GetEnemy(c.EnemyID)
		if err != nil {
			continue
		}
		exp += def.ExpReward
		currency += def.Currency
		essence += def.Essence
	}

	alive := s.party.AliveCount()
	if alive == 0 {
		return
	}
	curShare, curRem := currency/alive, currency%alive
	essShare, essRem := essence/alive, essence%alive

	first := true
	for _, m := range s.party.Members {
		if !m.Alive() {
			continue
		}
		cur, ess := curShare, essShare
		if first {
			cur += curRem
			ess += essRem
			first = false
		}
		class, err := s.registry.GetClass(m.ClassID)
		if err != nil {
			continue
		}
		ups := s.ledger.Award(m.ID, exp, cur, ess, &m.Stats, class.Growth)
		for _, up := range ups {
			s.pushMessage(fmt.Sprintf("%s reaches level %d!", m.Name, up.NewLevel))
		}
	}
	s.pushMessage(fmt.Sprintf("Victory! %d experience earned.", exp))

	if drop := s.registry.RandomDrop(s.rng); drop != nil {
		s.party.AddItem(drop.ID, 1)
		s.pushMessage(fmt.Sprintf("Found %s.", drop.Name))
	}
}

func (s *Session) startDialogue(ctx context.Context, npcID string) error {
	npc, err := s.registry.GetNPC(npcID)
	if err != nil {
		return err
	}
	if len(npc.Dialogue) == 0 {
		return nil
	}
	if err := s.machine.Event(ctx, "talk_to_npc"); err != nil {
		return err
	}
	s.dialogue = &dialogueState{npc: npc}
	return nil
}

// AdvanceDialogue steps to the next line, closing the dialogue after the
// last one.
func (s *Session) AdvanceDialogue(ctx context.Context) error {
	if s.dialogue == nil {
		return &IgnoredEventError{Event: "advance_dialogue", Mode: s.CurrentMode()}
	}
	if s.dialogue.line+1 >= len(s.dialogue.npc.Dialogue) {
		return s.SendEvent(ctx, DialogueEnded{})
	}
	s.dialogue.line++
	return nil
}

// UseItem consumes one inventory item on a living party member.
func (s *Session) UseItem(itemID, characterID string) error {
	if s.CurrentMode() != ModeInventory {
		return &IgnoredEventError{Event: "use_item", Mode: s.CurrentMode()}
	}
	item, err := s.registry.GetItem(itemID)
	if err != nil {
		return err
	}
	m := s.party.Member(characterID)
	if m == nil {
		return fmt.Errorf("no party member %q", characterID)
	}
	if !m.Alive() {
		return fmt.Errorf("%s is beyond the reach of %s", m.Name, item.Name)
	}
	if !s.party.ConsumeItem(itemID) {
		return fmt.Errorf("no %s left", item.Name)
	}
	if item.RestoreHP > 0 {
		healed := m.Stats.ApplyHealing(item.RestoreHP)
		s.pushMessage(fmt.Sprintf("%s drinks %s and recovers %d HP.", m.Name, item.Name, healed))
	}
	if item.RestoreMP > 0 {
		restored := m.Stats.RestoreMP(item.RestoreMP)
		s.pushMessage(fmt.Sprintf("%s recovers %d MP.", m.Name, restored))
	}
	return nil
}

// saveGame writes a snapshot before transitioning, so a failed write
// leaves the session in the requesting mode.
func (s *Session) saveGame(ctx context.Context, slot int) error {
	if s.saver == nil {
		return errors.New("no save store configured")
	}
	ret := s.CurrentMode()
	if err := s.saver.Save(slot, s.snapshot()); err != nil {
		s.log.WithField("slot", slot).WithError(err).Error("save failed")
		return fmt.Errorf("save slot %d: %w", slot, err)
	}
	if err := s.machine.Event(ctx, "save_requested"); err != nil {
		return err
	}
	s.returnTo = ret
	s.pushMessage(fmt.Sprintf("Journey recorded in slot %d.", slot))
	return nil
}

func (s *Session) pushMessage(msg string) {
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

func (s *Session) onCombatEvent(ev combat.Event) {
	name := func(id combat.CombatantID) string {
		if n, ok := s.combatNames[id]; ok {
			return n
		}
		return string(id)
	}
	switch ev.Kind {
	case combat.EventDamage:
		msg := fmt.Sprintf("%s hits %s for %d.", name(ev.Actor), name(ev.Target), ev.Amount)
		if ev.Fatal {
			msg = fmt.Sprintf("%s strikes down %s with %d damage!", name(ev.Actor), name(ev.Target), ev.Amount)
		}
		s.pushMessage(msg)
	case combat.EventHeal:
		s.pushMessage(fmt.Sprintf("%s restores %d HP to %s.", name(ev.Actor), ev.Amount, name(ev.Target)))
	case combat.EventStatusApplied:
		s.pushMessage(fmt.Sprintf("%s is %s.", name(ev.Target), ev.Status))
	case combat.EventStatusTick:
		if ev.Amount > 0 {
			if ev.Status == gamedata.StatusRegen {
				s.pushMessage(fmt.Sprintf("%s regains %d HP.", name(ev.Target), ev.Amount))
			} else {
				s.pushMessage(fmt.Sprintf("%s suffers %d from %s.", name(ev.Target), ev.Amount, ev.Status))
			}
		}
		if ev.Expired {
			s.pushMessage(fmt.Sprintf("%s recovers from %s.", name(ev.Target), ev.Status))
		}
	case combat.EventTurnSkipped:
		s.pushMessage(fmt.Sprintf("%s is stunned and cannot act.", name(ev.Target)))
	case combat.EventCombatEnded:
		// Settlement narrates the outcome.
	}
}
