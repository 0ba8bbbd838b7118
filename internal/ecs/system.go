package ecs

import "reflect"

// SystemID is a stable handle into a World's system registry, carrying a
// generation so a pruned slot's old handle can never alias a later
// system registered into the same slot (spec.md §4.6's "liveness can be
// queried").
type SystemID struct {
	Index      uint32
	Generation uint32
}

// Context is what a system callable receives: a handle to the world plus
// its own per-run command buffer, which is concatenated with the other
// systems' buffers and drained after the enclosing schedule run or signal
// dispatch finishes (spec.md §4.5, §5).
type Context struct {
	world  *World
	cmd    *Commands
	event  any
	target Entity
}

// World returns the context's world handle. During a parallel bucket this
// is shared; systems must only widen it to exclusive access their
// declared Access permits — correctness here is a contract the bucketing
// algorithm in schedule.go enforces, not something Context checks at
// runtime.
func (c *Context) World() *World { return c.world }

// Commands returns the context's deferred command buffer.
func (c *Context) Commands() *Commands { return c.cmd }

// SignalPayload type-asserts an observer Context's signal event back to
// E. Only meaningful inside a system built with Observes[E].
func SignalPayload[E any](ctx *Context) E {
	return ctx.event.(E)
}

// SignalTarget returns the entity a signal was targeted at, or
// InvalidEntity if it was untargeted.
func SignalTarget(ctx *Context) Entity {
	return ctx.target
}

// accessContributor registers one parameter's read/write claim against a
// System's Access sets. Deferred until the system's first run against a
// concrete World, mirroring spec.md §4.6's "parameter init_state" step —
// Go has no derive macro to walk a parameter list, so access is declared
// explicitly at system-construction time instead of inferred from a
// callable's signature.
type accessContributor func(w *World, comp, res *Access)

// System is a user callable plus its materialized access sets. Per-system
// long-lived parameter state (query caches, event-reader cursors, Local
// values) is not modeled as a separate hook here: idiomatic Go already
// gives closures persistent captured state, so a system's fn closes over
// whatever it needs to keep between runs (see Local[T]).
type System struct {
	id          SystemID
	name        string
	fn          func(*Context)
	contributors []accessContributor
	signalType  reflect.Type // non-nil marks this System as an observer of that event type

	initialized    bool
	ComponentAccess Access
	ResourceAccess  Access
}

// Name returns the system's registration name, used in diagnostics.
func (s *System) Name() string { return s.name }

// SignalType returns the event type this system observes, or nil if it
// is a schedule system rather than an observer.
func (s *System) SignalType() reflect.Type { return s.signalType }

// init materializes the system's access sets against w and validates
// them, exactly once. Panics with an *Error coded ErrSystemValidation naming s if
// validation fails (spec.md §7's "fatal for that system").
func (s *System) init(w *World) {
	if s.initialized {
		return
	}
	for _, c := range s.contributors {
		c(w, &s.ComponentAccess, &s.ResourceAccess)
	}
	if err := s.ComponentAccess.Validate(); err != nil {
		cause := err.(*Error)
		wrapped := newSystemValidationError(s.name, cause)
		w.logf("fatal: %v", wrapped)
		panic(wrapped)
	}
	if err := s.ResourceAccess.Validate(); err != nil {
		cause := err.(*Error)
		wrapped := newSystemValidationError(s.name, cause)
		w.logf("fatal: %v", wrapped)
		panic(wrapped)
	}
	s.initialized = true
}

// compatibleWith reports whether s and other may run in the same
// parallel bucket: neither their component accesses nor their resource
// accesses may conflict (spec.md §4.7's bucketing rule).
func (s *System) compatibleWith(other *System) bool {
	return s.ComponentAccess.IsCompatible(other.ComponentAccess) &&
		s.ResourceAccess.IsCompatible(other.ResourceAccess)
}

func (s *System) run(ctx *Context) {
	s.fn(ctx)
}

// SystemBuilder assembles a System's access declarations before it is
// added to a schedule or registered as an observer.
type SystemBuilder struct {
	sys *System
}

// NewSystem begins building a system named name whose body is fn. The
// name is used only for diagnostics (panics, logs).
func NewSystem(name string, fn func(*Context)) *SystemBuilder {
	return &SystemBuilder{sys: &System{name: name, fn: fn}}
}

// Build finalizes the system. It is exported so AddSystem/AddObserver
// helpers in commands.go and world.go can take ownership of the
// constructed *System without reaching into unexported fields.
func (b *SystemBuilder) Build() *System { return b.sys }

// Reads declares that the system reads component type C.
func Reads[C any](b *SystemBuilder) *SystemBuilder {
	b.sys.contributors = append(b.sys.contributors, func(w *World, comp, res *Access) {
		id := RegisterComponent[C](w)
		comp.AddRead(int(id))
	})
	return b
}

// Writes declares that the system writes component type C.
func Writes[C any](b *SystemBuilder) *SystemBuilder {
	b.sys.contributors = append(b.sys.contributors, func(w *World, comp, res *Access) {
		id := RegisterComponent[C](w)
		comp.AddWrite(int(id))
	})
	return b
}

// ResReads declares that the system reads resource type R.
func ResReads[R any](b *SystemBuilder) *SystemBuilder {
	b.sys.contributors = append(b.sys.contributors, func(w *World, comp, res *Access) {
		id := RegisterResource[R](w)
		res.AddRead(int(id))
	})
	return b
}

// ResWrites declares that the system writes resource type R via
// ResMut[R].
func ResWrites[R any](b *SystemBuilder) *SystemBuilder {
	b.sys.contributors = append(b.sys.contributors, func(w *World, comp, res *Access) {
		id := RegisterResource[R](w)
		res.AddWrite(int(id))
	})
	return b
}

// Observes marks the system as an observer of event type E rather than a
// schedule member; it is dispatched by SendSignal instead of RunSchedule.
func Observes[E any](b *SystemBuilder) *SystemBuilder {
	b.sys.signalType = reflect.TypeOf((*E)(nil)).Elem()
	return b
}

// Local is a persistent value owned by one system across every run — the
// Go-native replacement for spec.md §4.6's "per-parameter long-lived
// cache": a closure capturing a Local already keeps it alive exactly as
// long as the system itself does, with no separate parameter-state table
// required.
type Local[T any] struct {
	value *T
}

// NewLocal constructs a Local seeded with initial. Keep the returned
// value in a closure captured by the system's fn.
func NewLocal[T any](initial T) Local[T] {
	v := initial
	return Local[T]{value: &v}
}

// Get returns a pointer to the local's current value.
func (l Local[T]) Get() *T { return l.value }
