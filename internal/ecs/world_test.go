package ecs

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SetLoggerReceivesAccessViolationDiagnostic(t *testing.T) {
	w := NewDefaultWorld()
	var buf bytes.Buffer
	w.SetLogger(log.New(&buf, "", 0))

	bad := Writes[testPos](Writes[testPos](NewSystem("double-write", func(ctx *Context) {}))).Build()
	w.AddSystem("Bad", bad)

	assert.Panics(t, func() {
		w.RunSchedule("Bad")
	})
	assert.Contains(t, buf.String(), "double-write")
}

func Test_NilLoggerSilencesDiagnostics(t *testing.T) {
	w := NewDefaultWorld()
	w.SetLogger(nil)

	bad := Writes[testPos](Writes[testPos](NewSystem("double-write", func(ctx *Context) {}))).Build()
	w.AddSystem("Bad", bad)

	assert.Panics(t, func() {
		w.RunSchedule("Bad")
	})
}
