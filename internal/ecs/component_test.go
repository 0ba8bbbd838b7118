package ecs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testA struct{ V int }
type testB struct{ S string }
type testC struct{}
type testD struct{}
type testE struct{}

// Test_SpawnAndReadRoundTrip is spec.md §8 scenario 1.
func Test_SpawnAndReadRoundTrip(t *testing.T) {
	w := NewDefaultWorld()
	entities := make([]Entity, 100)
	for i := 0; i < 100; i++ {
		entities[i] = w.Spawn(Bundle(testA{V: i}), Bundle(testB{S: fmt.Sprintf("%d", i)}))
	}

	for i, e := range entities {
		a, ok := GetComponent[testA](w, e)
		assert.True(t, ok)
		assert.Equal(t, i, a.V)

		b, ok := GetComponent[testB](w, e)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d", i), b.S)
	}
}

// Test_ComponentOverwrite is spec.md §8 scenario 2.
func Test_ComponentOverwrite(t *testing.T) {
	w := NewDefaultWorld()
	entities := make([]Entity, 100)
	for i := 0; i < 100; i++ {
		entities[i] = w.Spawn(Bundle(testA{V: i}), Bundle(testB{S: fmt.Sprintf("%d", i)}))
	}

	for i, e := range entities {
		prior, hadPrior := SetComponent(w, e, testA{V: i + 1})
		assert.True(t, hadPrior)
		assert.Equal(t, i, prior.V)

		SetComponent(w, e, testB{S: fmt.Sprintf("%d", i+1)})
	}

	for i, e := range entities {
		a, ok := GetComponent[testA](w, e)
		assert.True(t, ok)
		assert.Equal(t, i+1, a.V)

		b, ok := GetComponent[testB](w, e)
		assert.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d", i+1), b.S)
	}
}

func Test_SetComponentTwiceLeavesExactlyOneInstance(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn()
	SetComponent(w, e, testA{V: 1})
	prior, hadPrior := SetComponent(w, e, testA{V: 2})
	assert.True(t, hadPrior)
	assert.Equal(t, 1, prior.V)

	v, ok := GetComponent[testA](w, e)
	assert.True(t, ok)
	assert.Equal(t, 2, v.V)
}

func Test_RemoveComponentDetachesAndReturnsValue(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn(Bundle(testA{V: 7}))
	removed, ok := RemoveComponent[testA](w, e)
	assert.True(t, ok)
	assert.Equal(t, 7, removed.V)
	assert.False(t, HasComponent[testA](w, e))

	_, ok = RemoveComponent[testA](w, e)
	assert.False(t, ok)
}

func Test_DeadEntityAccessorsReturnAbsenceSilently(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn(Bundle(testA{V: 1}))
	w.Despawn(e)

	_, ok := GetComponent[testA](w, e)
	assert.False(t, ok)
	assert.False(t, HasComponent[testA](w, e))

	_, hadPrior := SetComponent(w, e, testA{V: 2})
	assert.False(t, hadPrior)
}

func Test_UncheckedAccessorsMatchCheckedOnes(t *testing.T) {
	w := NewDefaultWorld()
	e := w.Spawn(Bundle(testA{V: 41}))
	id := RegisterComponent[testA](w)

	got, ok := GetComponentUnchecked[testA](w, id, e)
	assert.True(t, ok)
	assert.Equal(t, 41, got.V)

	prior, hadPrior := SetComponentUnchecked[testA](w, id, e, testA{V: 42})
	assert.True(t, hadPrior)
	assert.Equal(t, 41, prior.V)

	got, ok = GetComponent[testA](w, e)
	assert.True(t, ok)
	assert.Equal(t, 42, got.V)
}

func Test_ConfigMaxComponentsIsEnforcedBelowBitmapWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxComponents = 1
	w := NewWorld(cfg)

	RegisterComponent[testA](w)
	assert.Panics(t, func() {
		RegisterComponent[testB](w)
	})

	var overflow *Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				overflow = r.(*Error)
			}
		}()
		RegisterComponent[testC](w)
	}()
	assert.Equal(t, ErrIDOverflow, overflow.Code)
}

func Test_ConfigMaxComponentsAboveBitmapWidthFallsBackToBitmapLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxComponents = MaxComponents + 1000
	w := NewWorld(cfg)
	assert.Equal(t, MaxComponents, w.effectiveMaxComponents())
}
