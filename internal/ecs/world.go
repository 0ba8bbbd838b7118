// Package ecs provides a data-oriented Entity Component System: sparse-set
// component storage, a parallel system scheduler with static access-conflict
// bucketing, a deferred command buffer, and an observer/signal subsystem.
package ecs

import (
	"log"
	"os"
)

// World owns every piece of ECS state for one simulation instance: entity
// identity, component storage, resources, registered event queues, the
// system/observer registry, and named schedules. It is the public façade
// spec.md §2 describes; all package-level generic operations (SetComponent,
// GetResource, SendEvent, ...) take a *World as their first argument since
// Go methods cannot introduce their own type parameters.
type World struct {
	entities   *Entities
	components *Components
	resources  *Resources
	events     *Events
	systems    *Systems
	observers  *Observers
	schedules  map[string]*Schedule

	config Config
	logger *log.Logger

	// replayCollector, when non-nil, is where an in-flight drain appends
	// newly-produced ops instead of recursing — see drainToFixedPoint.
	replayCollector *[]func(*World)
}

// NewWorld constructs an empty World under cfg.
func NewWorld(cfg Config) *World {
	return &World{
		entities:   newEntities(cfg.MaxEntities),
		components: newComponents(),
		resources:  newResources(),
		events:     newEvents(),
		systems:    newSystems(),
		observers:  newObservers(),
		schedules:  make(map[string]*Schedule),
		config:     cfg,
		logger:     log.New(os.Stderr, "ecs: ", log.LstdFlags),
	}
}

// SetLogger overrides the logger used for fatal-abort diagnostics (access
// violations, id overflow). The ECS core stays silent on every other
// path; passing nil disables these diagnostics entirely.
func (w *World) SetLogger(l *log.Logger) {
	w.logger = l
}

func (w *World) logf(format string, args ...any) {
	if w.logger == nil {
		return
	}
	w.logger.Printf(format, args...)
}

// effectiveMaxComponents is w's configured component/resource id budget,
// capped at the Bitmap's fixed width: Config.MaxComponents lets an
// embedder fail fast with a clearer diagnostic than the bitmap's own
// panic when it configures a smaller budget, but can never exceed the
// width the Bitmap actually has room for.
func (w *World) effectiveMaxComponents() int {
	if w.config.MaxComponents <= 0 || w.config.MaxComponents > MaxComponents {
		return MaxComponents
	}
	return w.config.MaxComponents
}

// NewDefaultWorld constructs a World under DefaultConfig.
func NewDefaultWorld() *World {
	return NewWorld(DefaultConfig())
}

// Spawn allocates a fresh entity and installs bundle (built with Bundle),
// returning it immediately — this is a direct, exclusive-access mutator,
// not deferred (use Commands.Spawn from inside a system).
func (w *World) Spawn(bundle ...func(*World, Entity)) Entity {
	e := w.entities.Spawn()
	for _, apply := range bundle {
		apply(w, e)
	}
	return e
}

// Despawn frees e, cascading to every descendant linked via AddChild
// (spec.md §8 scenario 7). A no-op if e is already dead.
func (w *World) Despawn(e Entity) bool {
	if !w.entities.IsAlive(e) {
		return false
	}
	var descendants []Entity
	descendants = w.entities.descendants(e, descendants)
	for _, d := range descendants {
		w.components.despawnEntity(w, d)
		w.entities.Despawn(d)
	}
	w.components.despawnEntity(w, e)
	return w.entities.Despawn(e)
}

// IsAlive reports whether e is the current occupant of its id slot.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.IsAlive(e)
}

// AddChild links child under parent (spec.md §9; rejects only the direct
// self-parent cycle).
func (w *World) AddChild(parent, child Entity) bool {
	return w.entities.AddChild(parent, child)
}

// RemoveChild unlinks child from parent.
func (w *World) RemoveChild(parent, child Entity) bool {
	return w.entities.RemoveChild(parent, child)
}

// RemoveChildren unlinks every child of parent without despawning them.
func (w *World) RemoveChildren(parent Entity) {
	w.entities.RemoveChildren(parent)
}

// Children returns parent's current children.
func (w *World) Children(parent Entity) []Entity {
	return w.entities.Children(parent)
}

// AddSystem appends sys to the schedule registered under label, creating
// the schedule on first use, and returns sys's stable id.
func (w *World) AddSystem(label string, sys *System) SystemID {
	sched, ok := w.schedules[label]
	if !ok {
		sched = newSchedule(label)
		w.schedules[label] = sched
	}
	id := w.systems.add(sys)
	sched.add(sys)
	return id
}

// RemoveSchedule drops the schedule registered under label, if any.
func (w *World) RemoveSchedule(label string) {
	delete(w.schedules, label)
}

// InsertSchedule registers s under label, replacing whatever schedule (if
// any) label previously named (spec.md §6's insert_schedule(label,
// schedule)) — distinct from AddSystem's lazy-create-on-first-use path,
// this is how a Schedule built independently (via NewSchedule) gets wired
// into a World. Any of s's pending systems not yet in w's system registry
// are registered here, so the schedule's first run does not prune them.
func (w *World) InsertSchedule(label string, s *Schedule) {
	for _, sys := range s.pending {
		if registered, ok := w.systems.Get(sys.id); !ok || registered != sys {
			w.systems.add(sys)
		}
	}
	w.schedules[label] = s
}

// RunSchedule initializes any pending systems of the schedule registered
// under label, executes its buckets (parallel above
// ParallelExecutionThreshold, sequential otherwise), and drains the
// resulting commands to a fixed point. A no-op if label names no
// schedule.
func (w *World) RunSchedule(label string) {
	sched, ok := w.schedules[label]
	if !ok {
		return
	}
	ops := sched.execute(w, w.config.NumThreads)
	w.enqueueForDrain(ops)
}

// AddObserver registers sys (which must be built with Observes[E]) as an
// observer of its event type, and returns its stable id.
func (w *World) AddObserver(sys *System) SystemID {
	id := w.systems.add(sys)
	w.observers.add(sys)
	return id
}

// RemoveSystem prunes id from the system registry; subsequent schedule
// runs and signal dispatches skip it.
func (w *World) RemoveSystem(id SystemID) {
	w.systems.Remove(id)
}

// Tick rotates every registered event queue's double buffer. Call once
// per simulation tick, after the tick's schedules have run, so readers
// get the "two-phase" visibility window spec.md §3/§8 describe.
func (w *World) Tick() {
	w.events.updateAll()
}

// enqueueForDrain folds newly-produced ops into an in-flight drain if one
// is active (re-entrant signal/command production), or starts a fresh
// drain-to-fixed-point otherwise.
func (w *World) enqueueForDrain(ops []func(*World)) {
	if len(ops) == 0 {
		return
	}
	if w.replayCollector != nil {
		*w.replayCollector = append(*w.replayCollector, ops...)
		return
	}
	w.drainToFixedPoint(ops)
}

// drainToFixedPoint replays ops in order; each op may itself produce more
// ops (structural mutations enqueuing further commands, or signals fired
// during replay), which are collected and replayed in their own pass
// until none remain (spec.md §4.5, §9's "coroutine-like control flow").
// Finishes by draining any resources marked dirty by a ResMut dereference
// into Changed[R] events.
func (w *World) drainToFixedPoint(ops []func(*World)) {
	for len(ops) > 0 {
		batch := ops
		var collected []func(*World)
		prev := w.replayCollector
		w.replayCollector = &collected
		for _, op := range batch {
			op(w)
		}
		w.replayCollector = prev
		ops = collected
	}
	w.resources.drainChanges(w)
}
