package ecs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParallelExecutionThreshold is the largest bucket size that still runs
// sequentially in place; a bucket with more systems than this runs on the
// worker pool (spec.md §4.7), ported
// from the original schedule's bucketing pass.
const ParallelExecutionThreshold = 4

// bucket is a maximal set of systems with pairwise compatible access
// (spec.md's Bucket, GLOSSARY). joinedComponent/joinedResource is the
// union of every member's declared access, maintained incrementally so
// placement is a single compatibility check rather than an O(n) scan of
// the bucket's members.
type bucket struct {
	systems         []*System
	joinedComponent Access
	joinedResource  Access
}

// Schedule is an ordered list of systems grouped into parallel-safe
// buckets, keyed by a label in World.schedules (spec.md §4.7).
type Schedule struct {
	label   string
	pending []*System
	buckets []bucket
}

func newSchedule(label string) *Schedule {
	return &Schedule{label: label}
}

// NewSchedule constructs a standalone Schedule labeled label, independent
// of any World. Build it off to the side — or reuse one Schedule value
// under several labels — then wire it into a World with
// World.InsertSchedule (spec.md §6's insert_schedule(label, schedule),
// distinct from the lazy-create-on-first-AddSystem path).
func NewSchedule(label string) *Schedule {
	return newSchedule(label)
}

func (s *Schedule) add(sys *System) {
	s.pending = append(s.pending, sys)
}

// execute initializes pending systems, prunes dead ones, runs every
// bucket (parallel above ParallelExecutionThreshold members, sequential
// otherwise), and returns the concatenated commands produced by every
// system run, in bucket then insertion order.
func (s *Schedule) execute(w *World, numThreads int) []func(*World) {
	s.initPending(w)
	s.pruneDead(w)

	var allOps []func(*World)
	for _, b := range s.buckets {
		if len(b.systems) > ParallelExecutionThreshold {
			allOps = append(allOps, runParallel(w, b.systems, numThreads)...)
		} else {
			allOps = append(allOps, runSequential(w, b.systems)...)
		}
	}
	return allOps
}

func runSequential(w *World, systems []*System) []func(*World) {
	var ops []func(*World)
	for _, sys := range systems {
		cmd := newCommands(w)
		sys.run(&Context{world: w, cmd: cmd})
		ops = append(ops, cmd.ops...)
	}
	return ops
}

func runParallel(w *World, systems []*System, numThreads int) []func(*World) {
	g, _ := errgroup.WithContext(context.Background())
	if numThreads > 0 {
		g.SetLimit(numThreads)
	}
	cmds := make([]*Commands, len(systems))
	for i, sys := range systems {
		i, sys := i, sys
		cmds[i] = newCommands(w)
		g.Go(func() error {
			sys.run(&Context{world: w, cmd: cmds[i]})
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

// initPending runs init (access materialization + validation) on every
// pending system, then places it into a bucket, in insertion order.
func (s *Schedule) initPending(w *World) {
	for _, sys := range s.pending {
		sys.init(w)
		s.place(sys)
	}
	s.pending = nil
}

func (s *Schedule) place(sys *System) {
	s.buckets = placeInBucket(s.buckets, sys)
}

// placeInBucket appends sys to the first bucket whose joined access is
// still compatible with it, or opens a new bucket if none is (spec.md
// §4.7's greedy bucketing rule). Shared by Schedule and the per-event-type
// observer dispatch in observers.go, which buckets on the same rule.
func placeInBucket(buckets []bucket, sys *System) []bucket {
	for i := range buckets {
		b := &buckets[i]
		if sys.ComponentAccess.IsCompatible(b.joinedComponent) && sys.ResourceAccess.IsCompatible(b.joinedResource) {
			b.systems = append(b.systems, sys)
			b.joinedComponent.Join(sys.ComponentAccess)
			b.joinedResource.Join(sys.ResourceAccess)
			return buckets
		}
	}
	return append(buckets, bucket{
		systems:         []*System{sys},
		joinedComponent: sys.ComponentAccess,
		joinedResource:  sys.ResourceAccess,
	})
}

// pruneDead swap-removes dead systems from every bucket and rebuilds the
// joined-access sums of any bucket it touched (spec.md §4.7).
func (s *Schedule) pruneDead(w *World) {
	s.buckets = pruneDeadBuckets(s.buckets, w)
}

// pruneDeadBuckets is placeInBucket's counterpart for removal: shared by
// Schedule and observers.go's per-event-type dispatch.
func pruneDeadBuckets(buckets []bucket, w *World) []bucket {
	kept := buckets[:0]
	for _, b := range buckets {
		live := b.systems[:0]
		changed := false
		for _, sys := range b.systems {
			if w.systems.IsAlive(sys.id) {
				live = append(live, sys)
			} else {
				changed = true
			}
		}
		if len(live) == 0 {
			continue
		}
		if changed {
			b.joinedComponent = Access{}
			b.joinedResource = Access{}
			for _, sys := range live {
				b.joinedComponent.Join(sys.ComponentAccess)
				b.joinedResource.Join(sys.ResourceAccess)
			}
		}
		b.systems = live
		kept = append(kept, b)
	}
	return kept
}
