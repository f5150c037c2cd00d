package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapImporter map[string]string

func (m mapImporter) ImportFor(declName string) (string, bool) {
	header, ok := m[declName]
	return header, ok
}

func TestNullHeaderImporter_NeverResolves(t *testing.T) {
	var imp NullHeaderImporter
	_, ok := imp.ImportFor("anything")
	assert.False(t, ok)
}

func TestTextEmitter_EmitsOneLinePerDecl(t *testing.T) {
	e := NewTextEmitter(NullHeaderImporter{})
	out, err := e.Emit("demo.sc", []string{"main", "helper"})

	assert.NoError(t, err)
	assert.Contains(t, out, "demo.sc")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "helper")
}

func TestTextEmitter_AnnotatesResolvedImportOrigin(t *testing.T) {
	e := NewTextEmitter(mapImporter{"puts": "stdio.h"})
	out, err := e.Emit("demo.sc", []string{"puts"})

	assert.NoError(t, err)
	assert.Contains(t, out, "puts")
	assert.Contains(t, out, "stdio.h")
}
