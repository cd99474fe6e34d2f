package combat

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/samdwyer/emberfall/internal/gamedata"
)

// Outcome is the terminal result of an encounter. The zero value means the
// encounter is still running.
type Outcome string

const (
	OutcomeNone    Outcome = ""
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
	OutcomeFled    Outcome = "fled"
)

// AbilitySource resolves ability ids to definitions. *gamedata.Registry
// satisfies it; tests substitute fixtures.
type AbilitySource interface {
	GetAbility(id string) (*gamedata.AbilityDef, error)
}

// ActionResult reports everything one successful action did.
type ActionResult struct {
	Actor         CombatantID
	Ability       string // Empty for flee
	Events        []Event
	Outcome       Outcome // OutcomeNone while combat continues
	RoundAdvanced bool    // True if the action closed out a round
}

// Encounter owns all combat state for one encounter: the combatants, the
// current round's turn queue, and the outcome. At most one encounter is alive
// per session; the session's Combat mode holds it exclusively.
type Encounter struct {
	combatants map[CombatantID]*Combatant
	roster     []*Combatant // Insertion order; drives turn-order tie-breaks
	round      int
	queue      []CombatantID
	outcome    Outcome

	abilities AbilitySource
	variance  Variance
	sink      EventSink
}

// Option configures an encounter at construction.
type Option func(*Encounter)

// WithVariance replaces the damage variance source. Tests use FixedVariance.
func WithVariance(v Variance) Option {
	return func(e *Encounter) { e.variance = v }
}

// WithEventSink registers a sink receiving every combat event.
func WithEventSink(sink EventSink) Option {
	return func(e *Encounter) { e.sink = sink }
}

// NewEncounter builds an encounter from the given combatants. Order matters:
// it is the insertion order used for speed tie-breaks. Both factions must be
// represented and every combatant must start alive.
func NewEncounter(abilities AbilitySource, combatants []*Combatant, opts ...Option) (*Encounter, error) {
	if abilities == nil {
		return nil, fmt.Errorf("ability source is required")
	}

	e := &Encounter{
		combatants: make(map[CombatantID]*Combatant, len(combatants)),
		round:      1,
		abilities:  abilities,
		variance:   NewRandVariance(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(e)
	}

	var allies, enemies int
	for _, c := range combatants {
		if _, dup := e.combatants[c.ID]; dup {
			return nil, fmt.Errorf("duplicate combatant id %s", c.ID)
		}
		if !c.Alive() {
			return nil, fmt.Errorf("combatant %s must start alive", c.Name)
		}
		e.combatants[c.ID] = c
		e.roster = append(e.roster, c)
		switch c.Faction {
		case FactionAlly:
			allies++
		case FactionEnemy:
			enemies++
		}
	}
	if allies == 0 || enemies == 0 {
		return nil, fmt.Errorf("encounter needs both factions: %d allies, %d enemies", allies, enemies)
	}

	e.queue = ComputeOrder(e.roster)
	return e, nil
}

// Round returns the current round number, starting at 1.
func (e *Encounter) Round() int { return e.round }

// Outcome returns the terminal outcome, or OutcomeNone while running.
func (e *Encounter) Outcome() Outcome { return e.outcome }

// Over returns true once the encounter has terminated.
func (e *Encounter) Over() bool { return e.outcome != OutcomeNone }

// CurrentActor returns the combatant owed the next action this round.
func (e *Encounter) CurrentActor() (CombatantID, bool) {
	if e.outcome != OutcomeNone || len(e.queue) == 0 {
		return "", false
	}
	return e.queue[0], true
}

// TurnQueue returns a copy of the ids still owed an action this round.
func (e *Encounter) TurnQueue() []CombatantID {
	return append([]CombatantID(nil), e.queue...)
}

// Combatant looks up a participant by id. Defeated combatants remain visible.
func (e *Encounter) Combatant(id CombatantID) (*Combatant, bool) {
	c, ok := e.combatants[id]
	return c, ok
}

// Combatants returns all participants in insertion order.
func (e *Encounter) Combatants() []*Combatant {
	return append([]*Combatant(nil), e.roster...)
}

// ExecuteAction resolves one action for the combatant at the front of the
// turn queue. All validation happens before any mutation: a returned error
// means nothing changed and the actor's turn was not consumed.
func (e *Encounter) ExecuteAction(actorID CombatantID, abilityID string, targetIDs []CombatantID) (*ActionResult, error) {
	if e.outcome != OutcomeNone {
		return nil, ErrEncounterOver
	}
	actor, err := e.validateActor(actorID)
	if err != nil {
		return nil, err
	}

	ability, err := e.abilities.GetAbility(abilityID)
	if err != nil {
		return nil, err
	}
	targets, err := e.resolveTargets(actor, ability, targetIDs)
	if err != nil {
		return nil, err
	}
	if err := actor.Stats.SpendMP(ability.MPCost); err != nil {
		return nil, err
	}

	result := &ActionResult{Actor: actorID, Ability: abilityID}
	for _, target := range targets {
		e.resolveEffect(result, actor, ability, target)
	}

	e.finishTurn(result, actorID)
	return result, nil
}

// Flee terminates the encounter with OutcomeFled. Only an ally may flee, and
// only at the top of its own turn.
func (e *Encounter) Flee(actorID CombatantID) (*ActionResult, error) {
	if e.outcome != OutcomeNone {
		return nil, ErrEncounterOver
	}
	actor, err := e.validateActor(actorID)
	if err != nil {
		return nil, err
	}
	if actor.Faction != FactionAlly {
		return nil, ErrCannotFlee
	}

	result := &ActionResult{Actor: actorID}
	e.terminate(result, OutcomeFled)
	return result, nil
}

// validateActor checks the actor exists, is alive, and is next to act.
func (e *Encounter) validateActor(actorID CombatantID) (*Combatant, error) {
	actor, ok := e.combatants[actorID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown combatant %s", ErrOutOfTurn, actorID)
	}
	if !actor.Alive() || len(e.queue) == 0 || e.queue[0] != actorID {
		return nil, ErrOutOfTurn
	}
	return actor, nil
}

// resolveTargets validates the supplied target ids against the ability's
// target policy and returns the concrete target list in resolution order.
func (e *Encounter) resolveTargets(actor *Combatant, ability *gamedata.AbilityDef, targetIDs []CombatantID) ([]*Combatant, error) {
	switch ability.TargetPolicy {
	case gamedata.TargetSelf:
		if len(targetIDs) > 1 || (len(targetIDs) == 1 && targetIDs[0] != actor.ID) {
			return nil, fmt.Errorf("%w: %s targets self only", ErrInvalidTarget, ability.ID)
		}
		return []*Combatant{actor}, nil

	case gamedata.TargetSingleEnemy:
		return e.singleTarget(actor, ability, targetIDs, opposing(actor.Faction))

	case gamedata.TargetSingleAlly:
		return e.singleTarget(actor, ability, targetIDs, actor.Faction)

	case gamedata.TargetAllEnemies:
		if len(targetIDs) != 0 {
			return nil, fmt.Errorf("%w: %s selects its own targets", ErrInvalidTarget, ability.ID)
		}
		return e.livingOfFaction(opposing(actor.Faction)), nil

	case gamedata.TargetAllAllies:
		if len(targetIDs) != 0 {
			return nil, fmt.Errorf("%w: %s selects its own targets", ErrInvalidTarget, ability.ID)
		}
		return e.livingOfFaction(actor.Faction), nil

	default:
		return nil, fmt.Errorf("%w: ability %s has no target policy", ErrInvalidTarget, ability.ID)
	}
}

func (e *Encounter) singleTarget(actor *Combatant, ability *gamedata.AbilityDef, targetIDs []CombatantID, want Faction) ([]*Combatant, error) {
	if len(targetIDs) != 1 {
		return nil, fmt.Errorf("%w: %s requires exactly one target", ErrInvalidTarget, ability.ID)
	}
	target, ok := e.combatants[targetIDs[0]]
	if !ok || target.Faction != want || !target.Alive() {
		return nil, fmt.Errorf("%w: %s is not a valid target for %s", ErrInvalidTarget, targetIDs[0], ability.ID)
	}
	return []*Combatant{target}, nil
}

func (e *Encounter) livingOfFaction(f Faction) []*Combatant {
	var out []*Combatant
	for _, c := range e.roster {
		if c.Faction == f && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

func opposing(f Faction) Faction {
	if f == FactionAlly {
		return FactionEnemy
	}
	return FactionAlly
}

// resolveEffect applies one ability to one target and records the events.
func (e *Encounter) resolveEffect(result *ActionResult, actor *Combatant, ability *gamedata.AbilityDef, target *Combatant) {
	switch ability.EffectKind {
	case gamedata.EffectPhysical:
		e.dealDamage(result, actor, ability, target, actor.Stats.Attack, target.Stats.Defense)

	case gamedata.EffectMagical:
		e.dealDamage(result, actor, ability, target, actor.Stats.Magic, target.Stats.Resistance)

	case gamedata.EffectHeal:
		healed := target.Stats.ApplyHealing(ability.Power + actor.Stats.Magic)
		e.emit(result, Event{
			Kind: EventHeal, Actor: actor.ID, Target: target.ID,
			Ability: ability.ID, Amount: healed,
		})

	case gamedata.EffectStatus:
		// A status ability with power behind it lands its hit first.
		if ability.Power > 0 {
			e.dealDamage(result, actor, ability, target, actor.Stats.Attack, target.Stats.Defense)
		}
		if target.Alive() && ability.Status != gamedata.StatusNone {
			target.AddStatus(Status{
				Type:      ability.Status,
				Remaining: ability.StatusDuration,
				Power:     ability.StatusPower,
			})
			e.emit(result, Event{
				Kind: EventStatusApplied, Actor: actor.ID, Target: target.ID,
				Ability: ability.ID, Status: ability.Status,
			})
		}
	}
}

// dealDamage computes max(1, power + offense − mitigation), applies variance,
// and deals the result, removing fatalities from this round's queue.
func (e *Encounter) dealDamage(result *ActionResult, actor *Combatant, ability *gamedata.AbilityDef, target *Combatant, offense, mitigation int) {
	raw := ability.Power + offense - mitigation
	if raw < 1 {
		raw = 1
	}
	out := target.Stats.ApplyDamage(e.variance.Apply(raw))
	e.emit(result, Event{
		Kind: EventDamage, Actor: actor.ID, Target: target.ID,
		Ability: ability.ID, Amount: out.Dealt, Fatal: out.Fatal,
	})
	if out.Fatal {
		e.dropFromQueue(target.ID)
	}
}

// finishTurn pops the actor, evaluates termination, and advances the round
// when the queue is exhausted.
func (e *Encounter) finishTurn(result *ActionResult, actorID CombatantID) {
	e.dropFromQueue(actorID)

	if outcome := e.checkTermination(); outcome != OutcomeNone {
		e.terminate(result, outcome)
		return
	}
	e.skipStunned(result)
	for e.outcome == OutcomeNone && len(e.queue) == 0 {
		e.advanceRound(result)
	}
}

// skipStunned consumes the turns of stunned combatants at the queue front.
func (e *Encounter) skipStunned(result *ActionResult) {
	for len(e.queue) > 0 {
		front := e.combatants[e.queue[0]]
		if !front.HasStatus(gamedata.StatusStunned) {
			return
		}
		e.emit(result, Event{Kind: EventTurnSkipped, Target: front.ID, Status: gamedata.StatusStunned})
		e.queue = e.queue[1:]
	}
}

// advanceRound closes out the current round: status durations tick, expired
// effects are removed, and a fresh order is computed from current speeds.
func (e *Encounter) advanceRound(result *ActionResult) {
	e.round++
	result.RoundAdvanced = true

	for _, c := range e.roster {
		if !c.Alive() {
			continue
		}
		e.tickStatuses(result, c)
	}

	// Poison ticks can end the fight before anyone acts.
	if outcome := e.checkTermination(); outcome != OutcomeNone {
		e.terminate(result, outcome)
		return
	}

	e.queue = ComputeOrder(e.roster)
	e.skipStunned(result)
}

// tickStatuses applies per-round status effects to one combatant and
// decrements durations, removing effects that reach zero.
func (e *Encounter) tickStatuses(result *ActionResult, c *Combatant) {
	remaining := c.statuses[:0]
	for _, s := range c.statuses {
		ev := Event{Kind: EventStatusTick, Target: c.ID, Status: s.Type}

		switch s.Type {
		case gamedata.StatusPoisoned:
			out := c.Stats.ApplyDamage(s.Power)
			ev.Amount = out.Dealt
			ev.Fatal = out.Fatal
		case gamedata.StatusRegen:
			ev.Amount = c.Stats.ApplyHealing(s.Power)
		}

		s.Remaining--
		if s.Remaining <= 0 {
			ev.Expired = true
		} else {
			remaining = append(remaining, s)
		}
		e.emit(result, ev)

		if ev.Fatal {
			e.dropFromQueue(c.ID)
			break
		}
	}
	c.statuses = remaining
}

// checkTermination evaluates victory and defeat. Checked after every action,
// not only at round end, since an action may end the fight mid-round.
func (e *Encounter) checkTermination() Outcome {
	var allies, enemies int
	for _, c := range e.roster {
		if !c.Alive() {
			continue
		}
		switch c.Faction {
		case FactionAlly:
			allies++
		case FactionEnemy:
			enemies++
		}
	}
	switch {
	case enemies == 0:
		return OutcomeVictory
	case allies == 0:
		return OutcomeDefeat
	default:
		return OutcomeNone
	}
}

func (e *Encounter) terminate(result *ActionResult, outcome Outcome) {
	e.outcome = outcome
	e.queue = nil
	result.Outcome = outcome
	e.emit(result, Event{Kind: EventCombatEnded, Outcome: outcome})
}

func (e *Encounter) dropFromQueue(id CombatantID) {
	for i, queued := range e.queue {
		if queued == id {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return
		}
	}
}

func (e *Encounter) emit(result *ActionResult, ev Event) {
	result.Events = append(result.Events, ev)
	if e.sink != nil {
		e.sink(ev)
	}
}
