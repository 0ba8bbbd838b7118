package ecs

// Hooks is implemented by a component or resource type that wants to
// react to its own attach/detach. OnAdd runs once a value is newly
// stored (SetComponent, SetComponentUnchecked, InsertResource);
// OnRemove runs when a value is displaced by an overwrite, explicitly
// removed, or swept up by despawn (spec.md §3's Components/Resources
// registries, §4.3's set_component/remove_component/despawn). Both are
// invoked against a throwaway Commands whose ops are handed to
// World.enqueueForDrain: drained at once when no drain is running, or
// replayed in the running drain's next pass otherwise, so a hook that
// queues a spawn or despawn replays through the normal command-buffer
// fixed-point, exactly like a system's own Commands parameter.
type Hooks interface {
	OnAdd(*Commands)
	OnRemove(*Commands)
}

// runOnAdd type-asserts v (expected to be a pointer to the stored
// value) against Hooks and invokes OnAdd if present, then drains
// whatever the hook queued.
func runOnAdd(w *World, v any) {
	hook, ok := v.(Hooks)
	if !ok {
		return
	}
	cmd := newCommands(w)
	hook.OnAdd(cmd)
	w.enqueueForDrain(cmd.ops)
}

// runOnRemove is runOnAdd's symmetric counterpart for detach.
func runOnRemove(w *World, v any) {
	hook, ok := v.(Hooks)
	if !ok {
		return
	}
	cmd := newCommands(w)
	hook.OnRemove(cmd)
	w.enqueueForDrain(cmd.ops)
}
