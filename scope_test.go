package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeStack_DeclareAndLookup(t *testing.T) {
	s := NewScopeStack()
	ok := s.Declare(&Symbol{Kind: SymVar, Name: "x", Type: &primitiveType{kind: TypeInt32}})
	assert.True(t, ok)

	sym, found := s.Lookup("x")
	assert.True(t, found)
	assert.Equal(t, "x", sym.Name)
}

func TestScopeStack_RedeclareInSameScopeFails(t *testing.T) {
	s := NewScopeStack()
	assert.True(t, s.Declare(&Symbol{Name: "x"}))
	assert.False(t, s.Declare(&Symbol{Name: "x"}), "redeclaring the same name in the same scope must fail")
}

func TestScopeStack_ShadowingOuterScopeIsAllowed(t *testing.T) {
	s := NewScopeStack()
	assert.True(t, s.Declare(&Symbol{Name: "x", Type: &primitiveType{kind: TypeInt32}}))

	s.Push(false)
	assert.True(t, s.Declare(&Symbol{Name: "x", Type: &primitiveType{kind: TypeFloat64}}))

	sym, _ := s.Lookup("x")
	assert.Equal(t, TypeFloat64, sym.Type.Kind(), "inner declaration shadows the outer one")

	s.Pop()
	sym, _ = s.Lookup("x")
	assert.Equal(t, TypeInt32, sym.Type.Kind(), "popping the inner scope restores the outer binding")
}

func TestScopeStack_LookupLocalDoesNotSeeOuterScope(t *testing.T) {
	s := NewScopeStack()
	s.Declare(&Symbol{Name: "x"})
	s.Push(false)

	_, found := s.LookupLocal("x")
	assert.False(t, found)

	_, found = s.Lookup("x")
	assert.True(t, found)
}

func TestScopeStack_UnsafeIsInherited(t *testing.T) {
	s := NewScopeStack()
	assert.False(t, s.InUnsafe())

	s.Push(true)
	assert.True(t, s.InUnsafe())

	s.Push(false)
	assert.True(t, s.InUnsafe(), "an inner block without its own unsafe keyword still inherits the outer one")

	s.Pop()
	s.Pop()
	assert.False(t, s.InUnsafe())
}

func TestScopeStack_GlobalIsBottomScope(t *testing.T) {
	s := NewScopeStack()
	s.Declare(&Symbol{Name: "g"})
	s.Push(false)
	s.Declare(&Symbol{Name: "local"})

	g := s.Global()
	_, hasG := g["g"]
	_, hasLocal := g["local"]
	assert.True(t, hasG)
	assert.False(t, hasLocal)
}
