package ecs

import "reflect"

// ResourceID is the compact integer handle assigned to a resource type
// at its first registration (spec.md §3). Shares no numbering with
// ComponentID — each has its own 128-wide bitmap.
type ResourceID int

type resourceRecord struct {
	id    ResourceID
	typ   reflect.Type
	value any // boxes *R so a taken address survives reassignment of value
	dirty bool
	emitChanged func(*World)
}

// Resources is the per-world registry of global singleton values keyed
// by type, with a dirty flag per entry used to emit Changed[R] events
// when a ResMut[R] handle is dereferenced mutably (spec.md §3, §5).
type Resources struct {
	byType map[reflect.Type]*resourceRecord
	byID   []*resourceRecord
}

func newResources() *Resources {
	return &Resources{byType: make(map[reflect.Type]*resourceRecord)}
}

// RegisterResource assigns R's id, without inserting a value. Panics if
// w's configured Config.MaxComponents budget (capped at the Bitmap's
// fixed width) would be exceeded.
func RegisterResource[R any](w *World) ResourceID {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	if _, ok := w.resources.byType[typ]; !ok && len(w.resources.byID) >= w.effectiveMaxComponents() {
		w.logf("fatal: resource id space exhausted registering %s", typ)
		panic(newIDOverflowError("resource"))
	}
	return registerResource[R](w.resources)
}

func registerResource[R any](r *Resources) ResourceID {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	if rec, ok := r.byType[typ]; ok {
		return rec.id
	}
	if len(r.byID) >= MaxComponents {
		panic(newIDOverflowError("resource"))
	}
	rec := &resourceRecord{
		id:  ResourceID(len(r.byID)),
		typ: typ,
		emitChanged: func(w *World) {
			SendEvent(w, Changed[R]{})
		},
	}
	r.byType[typ] = rec
	r.byID = append(r.byID, rec)
	return rec.id
}

// InsertResource stores value as R's resource, returning any displaced
// prior value. Invokes R's OnAdd hook (if it implements Hooks) against
// the newly-stored value, and OnRemove against any value it displaced
// (spec.md §3's "each resource has optional on_add/on_remove hooks
// invoked during insert/remove").
func InsertResource[R any](w *World, value R) (prior R, hadPrior bool) {
	RegisterResource[R](w)
	typ := reflect.TypeOf((*R)(nil)).Elem()
	rec := w.resources.byType[typ]
	if rec.value != nil {
		prior, hadPrior = *rec.value.(*R), true
		runOnRemove(w, rec.value)
	}
	boxed := new(R)
	*boxed = value
	rec.value = boxed
	runOnAdd(w, boxed)
	return
}

// RemoveResource drops R's value, if present, invoking its OnRemove
// hook first.
func RemoveResource[R any](w *World) (removed R, ok bool) {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	rec, exists := w.resources.byType[typ]
	if !exists || rec.value == nil {
		return
	}
	removed, ok = *rec.value.(*R), true
	runOnRemove(w, rec.value)
	rec.value = nil
	return
}

// GetResource returns a pointer to R's current value, if present.
// Callers that require the resource should use MustGetResource instead.
func GetResource[R any](w *World) (*R, bool) {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	rec, exists := w.resources.byType[typ]
	if !exists || rec.value == nil {
		return nil, false
	}
	return rec.value.(*R), true
}

// MustGetResource panics with R's type name if R was never inserted,
// matching spec.md §7's "panic with the resource's type name" policy
// for a required Res[R] fetch.
func MustGetResource[R any](w *World) *R {
	v, ok := GetResource[R](w)
	if !ok {
		typ := reflect.TypeOf((*R)(nil)).Elem()
		panic(newMissingResourceError(typ.String()))
	}
	return v
}

// ResMut is a change-tracked mutable resource handle: calling Get marks
// the resource dirty so the world can emit Changed[R] once when the next
// drain-to-fixed-point finishes (spec.md §5, §8's "Changed<R> iff dereferenced
// mutably since the last drain").
type ResMut[R any] struct {
	w *World
}

// Get returns a pointer to R's value and marks it dirty. Panics if R was
// never inserted.
func (m ResMut[R]) Get() *R {
	typ := reflect.TypeOf((*R)(nil)).Elem()
	rec, ok := m.w.resources.byType[typ]
	if !ok || rec.value == nil {
		panic(newMissingResourceError(typ.String()))
	}
	rec.dirty = true
	return rec.value.(*R)
}

// NewResMut builds a ResMut handle bound to w for R.
func NewResMut[R any](w *World) ResMut[R] {
	RegisterResource[R](w)
	return ResMut[R]{w: w}
}

// Changed is the event emitted when a ResMut[R] handle was dereferenced
// mutably since the last drain.
type Changed[R any] struct{}

// drainChanges scans all registered resources for the dirty bit and
// emits Changed[R] for each one set, clearing the bit.
func (r *Resources) drainChanges(w *World) {
	for _, rec := range r.byID {
		if rec.dirty {
			rec.dirty = false
			rec.emitChanged(w)
		}
	}
}
