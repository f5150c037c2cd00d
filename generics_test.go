package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangleGeneric_IsStableAndSanitizesNames(t *testing.T) {
	tt := newTypeTable()
	name := MangleGeneric("max", []Type{tt.Primitive(TypeInt32), tt.Primitive(TypeInt32)})
	assert.Equal(t, "__safec_max_int32_int32", name)

	ptr := &PointerType{Base: tt.Primitive(TypeInt32)}
	name2 := MangleGeneric("deref", []Type{ptr})
	assert.NotContains(t, name2, "*", "non-identifier characters must be sanitized out of the mangled name")
}

func TestUnifyCallArgs_InfersSingleGenericParam(t *testing.T) {
	tt := newTypeTable()
	T := tt.Generic("T", "")
	fn := &FuncDecl{Name: "identity", Params: []Param{{Name: "x", Type: T}}, Return: T}

	subst, ok := UnifyCallArgs(fn, []Type{tt.Primitive(TypeInt32)})
	assert.True(t, ok)
	assert.Equal(t, TypeInt32, subst["T"].Kind())
}

func TestUnifyCallArgs_ConflictingOccurrencesFail(t *testing.T) {
	tt := newTypeTable()
	T := tt.Generic("T", "")
	fn := &FuncDecl{Name: "pair", Params: []Param{{Name: "a", Type: T}, {Name: "b", Type: T}}}

	_, ok := UnifyCallArgs(fn, []Type{tt.Primitive(TypeInt32), tt.Primitive(TypeFloat64)})
	assert.False(t, ok, "binding T to two different concrete types at one call site must fail unification")
}

func TestUnifyCallArgs_UnifiesThroughReferenceAndSlice(t *testing.T) {
	tt := newTypeTable()
	T := tt.Generic("T", "")
	refParam := &ReferenceType{Base: T, Region: Region{Kind: RegionStack}}
	fn := &FuncDecl{Name: "first", Params: []Param{{Name: "s", Type: &SliceType{Element: refParam}}}}

	argRef := &ReferenceType{Base: tt.Primitive(TypeInt32), Region: Region{Kind: RegionStack}}
	subst, ok := UnifyCallArgs(fn, []Type{&SliceType{Element: argRef}})
	assert.True(t, ok)
	assert.Equal(t, TypeInt32, subst["T"].Kind())
}

func TestCheckConstraint_NumericSatisfiesBuiltinTraits(t *testing.T) {
	tt := newTypeTable()
	reg := NewMethodRegistry()
	assert.True(t, CheckConstraint(reg, tt.Primitive(TypeInt32), "Ord"))
	assert.True(t, CheckConstraint(reg, tt.Primitive(TypeInt32), ""))
}

func TestCheckConstraint_StructRequiresRegisteredOperator(t *testing.T) {
	reg := NewMethodRegistry()
	st := &StructType{Name: "Point"}

	assert.False(t, CheckConstraint(reg, st, "Ord"), "Point has no ordering operators registered yet")

	reg.Register("Point", &FuncDecl{Name: "operator<", Owner: "Point"})
	reg.Register("Point", &FuncDecl{Name: "operator>", Owner: "Point"})
	reg.Register("Point", &FuncDecl{Name: "operator<=", Owner: "Point"})
	reg.Register("Point", &FuncDecl{Name: "operator>=", Owner: "Point"})
	assert.True(t, CheckConstraint(reg, st, "Ord"))
}

func TestGenericCache_InstantiateIsMemoized(t *testing.T) {
	tt := newTypeTable()
	T := tt.Generic("T", "")
	fn := &FuncDecl{
		Name:   "identity",
		Params: []Param{{Name: "x", Type: T}},
		Return: T,
		Body:   &BlockStmt{Stmts: []Stmt{&ReturnStmt{Value: identExpr("x")}}},
	}
	cache := NewGenericCache()
	subst := typeSubst{"T": tt.Primitive(TypeInt32)}
	typeArgs := []Type{tt.Primitive(TypeInt32)}

	first := cache.Instantiate(fn, subst, typeArgs, nil)
	second := cache.Instantiate(fn, subst, typeArgs, nil)

	assert.Same(t, first, second, "instantiating the same generic function with the same type arguments twice must reuse the cached copy")
	assert.Equal(t, "__safec_identity_int32", first.MangledName)
	assert.Len(t, cache.All(), 1)
}

func TestGenericCache_DistinctTypeArgsProduceDistinctInstantiations(t *testing.T) {
	tt := newTypeTable()
	T := tt.Generic("T", "")
	fn := &FuncDecl{
		Name:   "identity",
		Params: []Param{{Name: "x", Type: T}},
		Return: T,
		Body:   &BlockStmt{Stmts: []Stmt{&ReturnStmt{Value: identExpr("x")}}},
	}
	cache := NewGenericCache()

	cache.Instantiate(fn, typeSubst{"T": tt.Primitive(TypeInt32)}, []Type{tt.Primitive(TypeInt32)}, nil)
	cache.Instantiate(fn, typeSubst{"T": tt.Primitive(TypeFloat64)}, []Type{tt.Primitive(TypeFloat64)}, nil)

	assert.Len(t, cache.All(), 2)
}
