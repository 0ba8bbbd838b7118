package ecs

import (
	"context"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// eventObservers holds one event type's registered observers, bucketed
// by access compatibility exactly like Schedule (spec.md §4.7's bucketing
// rule; original_source/src/observer.rs's Bucket/
// get_compatible_bucket_index dispatches observers the same way schedule
// systems are dispatched). Bucketing is scoped per event type rather than
// shared globally across every registered observer the way the Rust
// original's single Vec<Bucket> is — within one SendSignal call only one
// event type's systems are ever queried, so a global bucket list buys
// nothing but the plumbing (a cross-type sparse-set of "queried buckets")
// to get back to exactly this set of systems; see DESIGN.md.
type eventObservers struct {
	pending []*System
	buckets []bucket
}

// Observers routes signals to the observer systems registered for their
// event type (spec.md §4.8), one eventObservers bucket set per type.
type Observers struct {
	byType map[reflect.Type]*eventObservers
}

func newObservers() *Observers {
	return &Observers{byType: make(map[reflect.Type]*eventObservers)}
}

// add registers sys, which must have been built with Observes[E]. Access
// materialization and bucket placement are deferred to the type's next
// SendSignal dispatch, mirroring Schedule's pending/initPending split.
func (o *Observers) add(sys *System) {
	if sys.signalType == nil {
		panic("ecs: AddObserver requires a system built with Observes[E]")
	}
	eo, ok := o.byType[sys.signalType]
	if !ok {
		eo = &eventObservers{}
		o.byType[sys.signalType] = eo
	}
	eo.pending = append(eo.pending, sys)
}

// initPending materializes and validates access for newly-added
// observers, then places each into a bucket (mirrors
// Schedule.initPending).
func (eo *eventObservers) initPending(w *World) {
	for _, sys := range eo.pending {
		sys.init(w)
		eo.buckets = placeInBucket(eo.buckets, sys)
	}
	eo.pending = nil
}

// SendSignal dispatches event to every live observer of E, targeted at
// target (InvalidEntity if untargeted). Buckets whose systems have
// pairwise-compatible access run concurrently above
// ParallelExecutionThreshold members, sequentially otherwise — the same
// rule Schedule.execute applies to a schedule's buckets. The commands
// produced by the dispatch are folded into any in-flight drain, or
// drained to a fixed point immediately if called outside one — re-entrant
// SendSignal calls from inside an observer join the same fixed-point loop
// rather than recursing (spec.md §4.8, §5's "re-entrant sends are
// appended and processed to a fixed point").
func SendSignal[E any](w *World, event E, target Entity) {
	typ := reflect.TypeOf((*E)(nil)).Elem()
	eo, ok := w.observers.byType[typ]
	if !ok {
		return
	}
	eo.initPending(w)
	eo.buckets = pruneDeadBuckets(eo.buckets, w)

	var allOps []func(*World)
	for _, b := range eo.buckets {
		if len(b.systems) > ParallelExecutionThreshold {
			allOps = append(allOps, runParallelSignal(w, b.systems, event, target, w.config.NumThreads)...)
		} else {
			allOps = append(allOps, runSequentialSignal(w, b.systems, event, target)...)
		}
	}
	w.enqueueForDrain(allOps)
}

func runSequentialSignal[E any](w *World, systems []*System, event E, target Entity) []func(*World) {
	var ops []func(*World)
	for _, sys := range systems {
		cmd := newCommands(w)
		sys.run(&Context{world: w, cmd: cmd, event: event, target: target})
		ops = append(ops, cmd.ops...)
	}
	return ops
}

func runParallelSignal[E any](w *World, systems []*System, event E, target Entity, numThreads int) []func(*World) {
	g, _ := errgroup.WithContext(context.Background())
	if numThreads > 0 {
		g.SetLimit(numThreads)
	}
	cmds := make([]*Commands, len(systems))
	for i, sys := range systems {
		i, sys := i, sys
		cmds[i] = newCommands(w)
		g.Go(func() error {
			sys.run(&Context{world: w, cmd: cmds[i], event: event, target: target})
			return nil
		})
	}
	_ = g.Wait()

	var ops []func(*World)
	for _, c := range cmds {
		ops = append(ops, c.ops...)
	}
	return ops
}
