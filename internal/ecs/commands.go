package ecs

// Commands is a system parameter: a per-run, per-system queue of deferred
// world mutations. Rather than spec.md §4.5's byte-tagged CommandMeta
// union (a C-style memcpy trick with no safe Go equivalent), each entry
// is a closure capturing its already-typed payload, so the queue itself
// needs no type parameter.
type Commands struct {
	w   *World
	ops []func(*World)
}

func newCommands(w *World) *Commands {
	return &Commands{w: w}
}

// Bundle builds a spawn-time component installer for value, usable as an
// argument to Commands.Spawn.
func Bundle[C any](value C) func(*World, Entity) {
	return func(w *World, e Entity) {
		SetComponent(w, e, value)
	}
}

// Spawn reserves a fresh entity id immediately (lock-free, safe to call
// from inside a parallel bucket) and defers the bundle's installation to
// replay time, per spec.md §4.5's spawn semantics.
func (c *Commands) Spawn(bundle ...func(*World, Entity)) Entity {
	e := c.w.entities.Reserve()
	c.ops = append(c.ops, func(w *World) {
		w.entities.ReserveApply(e)
		for _, apply := range bundle {
			apply(w, e)
		}
	})
	return e
}

// Despawn defers despawning e (cascading to its descendants).
func (c *Commands) Despawn(e Entity) {
	c.ops = append(c.ops, func(w *World) {
		w.Despawn(e)
	})
}

// AddChild defers linking child under parent.
func (c *Commands) AddChild(parent, child Entity) {
	c.ops = append(c.ops, func(w *World) {
		w.entities.AddChild(parent, child)
	})
}

// RemoveChild defers unlinking child from parent.
func (c *Commands) RemoveChild(parent, child Entity) {
	c.ops = append(c.ops, func(w *World) {
		w.entities.RemoveChild(parent, child)
	})
}

// RemoveChildren defers unlinking every child of parent.
func (c *Commands) RemoveChildren(parent Entity) {
	c.ops = append(c.ops, func(w *World) {
		w.entities.RemoveChildren(parent)
	})
}

// RunSchedule defers running the schedule registered under label.
func (c *Commands) RunSchedule(label string) {
	c.ops = append(c.ops, func(w *World) {
		w.RunSchedule(label)
	})
}

// InsertSchedule defers registering s under label.
func (c *Commands) InsertSchedule(label string, s *Schedule) {
	c.ops = append(c.ops, func(w *World) {
		w.InsertSchedule(label, s)
	})
}

// AddSystem defers appending sys to the schedule registered under label,
// creating the schedule on first use.
func (c *Commands) AddSystem(label string, sys *System) {
	c.ops = append(c.ops, func(w *World) {
		w.AddSystem(label, sys)
	})
}

// AddObserver defers registering sys as an observer.
func (c *Commands) AddObserver(sys *System) {
	c.ops = append(c.ops, func(w *World) {
		w.AddObserver(sys)
	})
}

// CmdSetComponent defers attaching or overwriting component C on e.
func CmdSetComponent[C any](c *Commands, e Entity, value C) {
	c.ops = append(c.ops, func(w *World) {
		SetComponent(w, e, value)
	})
}

// CmdRemoveComponent defers detaching component C from e.
func CmdRemoveComponent[C any](c *Commands, e Entity) {
	c.ops = append(c.ops, func(w *World) {
		RemoveComponent[C](w, e)
	})
}

// CmdSendSignal defers dispatching event to every observer of E, targeted
// at target.
func CmdSendSignal[E any](c *Commands, event E, target Entity) {
	c.ops = append(c.ops, func(w *World) {
		SendSignal(w, event, target)
	})
}

// CmdSendEvent defers sending event into E's EventQueue.
func CmdSendEvent[E any](c *Commands, event E) {
	c.ops = append(c.ops, func(w *World) {
		SendEvent(w, event)
	})
}

// CmdInsertResource defers inserting value as R's resource.
func CmdInsertResource[R any](c *Commands, value R) {
	c.ops = append(c.ops, func(w *World) {
		InsertResource(w, value)
	})
}

// CmdRemoveResource defers removing R's resource, if present.
func CmdRemoveResource[R any](c *Commands) {
	c.ops = append(c.ops, func(w *World) {
		RemoveResource[R](w)
	})
}
