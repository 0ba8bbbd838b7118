package ecs

// Filter contributes to a query's required/excluded signatures. With[T]
// adds T to required; Without[T] adds T to excluded (spec.md §4.4).
type Filter func(w *World, required, excluded *Bitmap)

// With requires that matching entities carry component T.
func With[T any]() Filter {
	return func(w *World, required, excluded *Bitmap) {
		id := RegisterComponent[T](w)
		*required = (*required).Set(int(id))
	}
}

// Without excludes entities that carry component T.
func Without[T any]() Filter {
	return func(w *World, required, excluded *Bitmap) {
		id := RegisterComponent[T](w)
		*excluded = (*excluded).Set(int(id))
	}
}

// matches reports whether signature sig satisfies a query's required and
// excluded bitmaps: every required bit set, no excluded bit set.
func matches(sig, required, excluded Bitmap) bool {
	return sig.And(required) == required && sig.And(excluded).IsZero()
}

// Query0 iterates every entity matching a filter with no fetched data —
// spec.md §4.4's "empty data tuple () is a valid query over the entity
// set; filters still apply." It walks the signature groups, so an entity
// that has never carried a component belongs to no group and is not
// visited, even by a Query0 with no filters.
type Query0 struct {
	w                  *World
	required, excluded Bitmap
}

func NewQuery0(w *World, filters ...Filter) *Query0 {
	q := &Query0{w: w}
	for _, f := range filters {
		f(w, &q.required, &q.excluded)
	}
	return q
}

func (q *Query0) For(fn func(e Entity) bool) {
	for sig, entities := range q.w.components.groupEntities {
		if !matches(sig, q.required, q.excluded) {
			continue
		}
		for _, e := range entities {
			if !fn(e) {
				return
			}
		}
	}
}

// Query1 iterates entities carrying component A (plus any filter terms),
// handing each matching entity's *A to the callback.
type Query1[A any] struct {
	w                  *World
	required, excluded Bitmap
	idA                ComponentID
}

// NewQuery1 builds a query over component A and any additional filters.
func NewQuery1[A any](w *World, filters ...Filter) *Query1[A] {
	idA := RegisterComponent[A](w)
	q := &Query1[A]{w: w, idA: idA}
	q.required = q.required.Set(int(idA))
	for _, f := range filters {
		f(w, &q.required, &q.excluded)
	}
	return q
}

// For calls fn once per matching entity; fn returning false stops
// iteration early.
func (q *Query1[A]) For(fn func(e Entity, a *A) bool) {
	c := q.w.components
	storeA := c.recordFor(q.idA).store.(*typedStore[A])
	for sig, entities := range c.groupEntities {
		if !matches(sig, q.required, q.excluded) {
			continue
		}
		for _, e := range entities {
			va, ok := storeA.set.Get(e.ID)
			if !ok {
				continue
			}
			if !fn(e, va) {
				return
			}
		}
	}
}

// Get short-circuits via e's signature rather than scanning groups.
func (q *Query1[A]) Get(e Entity) (a *A, ok bool) {
	if !q.w.IsAlive(e) || !matches(q.w.components.signatureOf(e), q.required, q.excluded) {
		return nil, false
	}
	storeA := q.w.components.recordFor(q.idA).store.(*typedStore[A])
	return storeA.set.Get(e.ID)
}

// Query2 iterates entities carrying components A and B.
type Query2[A, B any] struct {
	w                  *World
	required, excluded Bitmap
	idA                ComponentID
	idB                ComponentID
}

func NewQuery2[A, B any](w *World, filters ...Filter) *Query2[A, B] {
	idA := RegisterComponent[A](w)
	idB := RegisterComponent[B](w)
	q := &Query2[A, B]{w: w, idA: idA, idB: idB}
	q.required = q.required.Set(int(idA)).Set(int(idB))
	for _, f := range filters {
		f(w, &q.required, &q.excluded)
	}
	return q
}

func (q *Query2[A, B]) For(fn func(e Entity, a *A, b *B) bool) {
	c := q.w.components
	storeA := c.recordFor(q.idA).store.(*typedStore[A])
	storeB := c.recordFor(q.idB).store.(*typedStore[B])
	for sig, entities := range c.groupEntities {
		if !matches(sig, q.required, q.excluded) {
			continue
		}
		for _, e := range entities {
			va, ok := storeA.set.Get(e.ID)
			if !ok {
				continue
			}
			vb, ok := storeB.set.Get(e.ID)
			if !ok {
				continue
			}
			if !fn(e, va, vb) {
				return
			}
		}
	}
}

func (q *Query2[A, B]) Get(e Entity) (a *A, b *B, ok bool) {
	if !q.w.IsAlive(e) || !matches(q.w.components.signatureOf(e), q.required, q.excluded) {
		return nil, nil, false
	}
	c := q.w.components
	a, _ = c.recordFor(q.idA).store.(*typedStore[A]).set.Get(e.ID)
	b, ok = c.recordFor(q.idB).store.(*typedStore[B]).set.Get(e.ID)
	return
}

// Query3 iterates entities carrying components A, B and C.
type Query3[A, B, C any] struct {
	w                  *World
	required, excluded Bitmap
	idA                ComponentID
	idB                ComponentID
	idC                ComponentID
}

func NewQuery3[A, B, C any](w *World, filters ...Filter) *Query3[A, B, C] {
	idA := RegisterComponent[A](w)
	idB := RegisterComponent[B](w)
	idC := RegisterComponent[C](w)
	q := &Query3[A, B, C]{w: w, idA: idA, idB: idB, idC: idC}
	q.required = q.required.Set(int(idA)).Set(int(idB)).Set(int(idC))
	for _, f := range filters {
		f(w, &q.required, &q.excluded)
	}
	return q
}

func (q *Query3[A, B, C]) For(fn func(e Entity, a *A, b *B, c *C) bool) {
	comps := q.w.components
	storeA := comps.recordFor(q.idA).store.(*typedStore[A])
	storeB := comps.recordFor(q.idB).store.(*typedStore[B])
	storeC := comps.recordFor(q.idC).store.(*typedStore[C])
	for sig, entities := range comps.groupEntities {
		if !matches(sig, q.required, q.excluded) {
			continue
		}
		for _, e := range entities {
			va, ok := storeA.set.Get(e.ID)
			if !ok {
				continue
			}
			vb, ok := storeB.set.Get(e.ID)
			if !ok {
				continue
			}
			vc, ok := storeC.set.Get(e.ID)
			if !ok {
				continue
			}
			if !fn(e, va, vb, vc) {
				return
			}
		}
	}
}

// Query4 iterates entities carrying components A, B, C and D.
type Query4[A, B, C, D any] struct {
	w                  *World
	required, excluded Bitmap
	idA                ComponentID
	idB                ComponentID
	idC                ComponentID
	idD                ComponentID
}

func NewQuery4[A, B, C, D any](w *World, filters ...Filter) *Query4[A, B, C, D] {
	idA := RegisterComponent[A](w)
	idB := RegisterComponent[B](w)
	idC := RegisterComponent[C](w)
	idD := RegisterComponent[D](w)
	q := &Query4[A, B, C, D]{w: w, idA: idA, idB: idB, idC: idC, idD: idD}
	q.required = q.required.Set(int(idA)).Set(int(idB)).Set(int(idC)).Set(int(idD))
	for _, f := range filters {
		f(w, &q.required, &q.excluded)
	}
	return q
}

func (q *Query4[A, B, C, D]) For(fn func(e Entity, a *A, b *B, c *C, d *D) bool) {
	comps := q.w.components
	storeA := comps.recordFor(q.idA).store.(*typedStore[A])
	storeB := comps.recordFor(q.idB).store.(*typedStore[B])
	storeC := comps.recordFor(q.idC).store.(*typedStore[C])
	storeD := comps.recordFor(q.idD).store.(*typedStore[D])
	for sig, entities := range comps.groupEntities {
		if !matches(sig, q.required, q.excluded) {
			continue
		}
		for _, e := range entities {
			va, ok := storeA.set.Get(e.ID)
			if !ok {
				continue
			}
			vb, ok := storeB.set.Get(e.ID)
			if !ok {
				continue
			}
			vc, ok := storeC.set.Get(e.ID)
			if !ok {
				continue
			}
			vd, ok := storeD.set.Get(e.ID)
			if !ok {
				continue
			}
			if !fn(e, va, vb, vc, vd) {
				return
			}
		}
	}
}
