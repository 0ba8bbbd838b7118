package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CommandsSpawnReservesImmediatelyInsertsOnReplay(t *testing.T) {
	w := NewDefaultWorld()
	cmd := newCommands(w)

	e := cmd.Spawn(Bundle(testA{V: 42}))
	assert.False(t, w.IsAlive(e), "entity must not be materialized before replay")

	w.drainToFixedPoint(cmd.ops)

	assert.True(t, w.IsAlive(e))
	v, ok := GetComponent[testA](w, e)
	assert.True(t, ok)
	assert.Equal(t, 42, v.V)
}

func Test_CommandsDespawnIsDeferred(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn()
	cmd := newCommands(w)
	cmd.Despawn(e)
	assert.True(t, w.IsAlive(e))

	w.drainToFixedPoint(cmd.ops)
	assert.False(t, w.IsAlive(e))
}

func Test_CommandsReplayIsOrderPreserving(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn()

	cmd := newCommands(w)
	CmdSetComponent(cmd, e, testA{V: 1})
	CmdSetComponent(cmd, e, testA{V: 2})
	CmdSetComponent(cmd, e, testA{V: 3})
	w.drainToFixedPoint(cmd.ops)

	v, ok := GetComponent[testA](w, e)
	assert.True(t, ok)
	assert.Equal(t, 3, v.V)

	direct := w.Spawn()
	SetComponent(w, direct, testA{V: 1})
	SetComponent(w, direct, testA{V: 2})
	SetComponent(w, direct, testA{V: 3})
	dv, _ := GetComponent[testA](w, direct)
	assert.Equal(t, v.V, dv.V)
}

func Test_CommandsAddChildViaReplay(t *testing.T) {
	w := NewDefaultWorld()
	p := w.Spawn()
	c := w.Spawn()

	cmd := newCommands(w)
	cmd.AddChild(p, c)
	w.drainToFixedPoint(cmd.ops)

	assert.Equal(t, []Entity{c}, w.Children(p))
}
