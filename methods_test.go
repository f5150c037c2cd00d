package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangleMethod(t *testing.T) {
	assert.Equal(t, "Point_length", MangleMethod("Point", "length"))
}

func TestMethodRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewMethodRegistry()
	fn := &FuncDecl{Name: "length", Owner: "Point"}
	reg.Register("Point", fn)

	got, ok := reg.Lookup("Point", "length")
	assert.True(t, ok)
	assert.Same(t, fn, got)

	_, ok = reg.Lookup("Point", "missing")
	assert.False(t, ok)

	_, ok = reg.Lookup("Other", "length")
	assert.False(t, ok)
}

func TestMethodRegistry_ResolveMethodCall(t *testing.T) {
	reg := NewMethodRegistry()
	fn := &FuncDecl{Name: "length", Owner: "Point", Flags: FuncFlags{ConstMethod: true}}
	reg.Register("Point", fn)

	base := identExpr("p")
	call := &CallExpr{Callee: &MemberExpr{X: base, Field: "length"}}
	diags := NewDiagnostics()

	ok := reg.ResolveMethodCall(diags, "test.sc", call, base, "Point", false)
	assert.True(t, ok)
	assert.False(t, diags.HasErrors())
	assert.Same(t, fn, call.Resolved)
	assert.Same(t, base, call.MethodBase)
}

func TestMethodRegistry_ResolveMethodCallUnknownMethod(t *testing.T) {
	reg := NewMethodRegistry()
	base := identExpr("p")
	call := &CallExpr{Callee: &MemberExpr{X: base, Field: "length"}}
	diags := NewDiagnostics()

	ok := reg.ResolveMethodCall(diags, "test.sc", call, base, "Point", false)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
}

func TestMethodRegistry_NonConstMethodThroughConstReferenceRejected(t *testing.T) {
	reg := NewMethodRegistry()
	fn := &FuncDecl{Name: "grow", Owner: "Point", Flags: FuncFlags{ConstMethod: false}}
	reg.Register("Point", fn)

	base := identExpr("p")
	call := &CallExpr{Callee: &MemberExpr{X: base, Field: "grow"}}
	diags := NewDiagnostics()

	ok := reg.ResolveMethodCall(diags, "test.sc", call, base, "Point", true)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
}
