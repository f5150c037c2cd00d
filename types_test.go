package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimitiveType_EqualsReflexive(t *testing.T) {
	tt := newTypeTable()
	for _, k := range []TypeKind{TypeVoid, TypeBool, TypeChar, TypeInt32, TypeFloat64} {
		p := tt.Primitive(k)
		assert.True(t, p.Equals(p), "type %s must equal itself", p)
	}
}

func TestTypeTable_PrimitivesAreInterned(t *testing.T) {
	tt := newTypeTable()
	a := tt.Primitive(TypeInt32)
	b := tt.Primitive(TypeInt32)
	assert.Same(t, a, b, "repeated lookups of the same primitive kind must return the same pointer")
}

func TestTypeTable_GenericInterning(t *testing.T) {
	tt := newTypeTable()
	a := tt.Generic("T", "")
	b := tt.Generic("T", "")
	assert.Same(t, a, b, "the same generic parameter name must intern to one pointer")

	c := tt.Generic("U", "Comparable")
	assert.NotSame(t, a, c)
	assert.Equal(t, "Comparable", c.Constraint)
}

func TestStructType_EqualsIsNominal(t *testing.T) {
	a := &StructType{Name: "Point", Fields: []StructField{{Name: "x", Type: &primitiveType{kind: TypeInt32}}}}
	b := &StructType{Name: "Point", Fields: []StructField{{Name: "y", Type: &primitiveType{kind: TypeFloat32}}}}
	c := &StructType{Name: "Vec2"}

	assert.True(t, a.Equals(b), "structs with the same name are equal regardless of field shape")
	assert.False(t, a.Equals(c))
}

func TestStructType_FieldType(t *testing.T) {
	s := &StructType{Name: "Point", Fields: []StructField{
		{Name: "x", Type: &primitiveType{kind: TypeInt32}},
		{Name: "y", Type: &primitiveType{kind: TypeInt32}},
	}}

	ty, ok := s.FieldType("y")
	assert.True(t, ok)
	assert.Equal(t, TypeInt32, ty.Kind())

	_, ok = s.FieldType("z")
	assert.False(t, ok)
}

func TestReferenceType_EqualsComparesRegionAndNullability(t *testing.T) {
	base := &primitiveType{kind: TypeInt32}
	stackRef := &ReferenceType{Base: base, Region: Region{Kind: RegionStack}}
	stackRefNullable := &ReferenceType{Base: base, Region: Region{Kind: RegionStack}, Nullable: true}
	heapRef := &ReferenceType{Base: base, Region: Region{Kind: RegionHeap}}

	assert.False(t, stackRef.Equals(stackRefNullable))
	assert.False(t, stackRef.Equals(heapRef))
	assert.True(t, stackRef.Equals(&ReferenceType{Base: base, Region: Region{Kind: RegionStack}}))
}

func TestArrayType_EqualsRequiresMatchingSize(t *testing.T) {
	el := &primitiveType{kind: TypeInt32}
	size3 := 3
	size4 := 4

	a := &ArrayType{Element: el, Size: &size3}
	b := &ArrayType{Element: el, Size: &size3}
	c := &ArrayType{Element: el, Size: &size4}
	unsized := &ArrayType{Element: el}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(unsized))
}

func TestIsError_OnlyMatchesErrorSentinel(t *testing.T) {
	tt := newTypeTable()
	assert.True(t, IsError(tt.Primitive(TypeError)))
	assert.False(t, IsError(tt.Primitive(TypeInt32)))
}

func TestIsNumeric(t *testing.T) {
	tt := newTypeTable()
	assert.True(t, IsNumeric(tt.Primitive(TypeInt32)))
	assert.True(t, IsNumeric(tt.Primitive(TypeFloat64)))
	assert.False(t, IsNumeric(tt.Primitive(TypeVoid)))
	assert.False(t, IsNumeric(&StructType{Name: "Point"}))
}

func TestTypeString_Formatting(t *testing.T) {
	tt := newTypeTable()
	i32 := tt.Primitive(TypeInt32)

	ref := &ReferenceType{Base: i32, Region: Region{Kind: RegionArena, Name: "frame"}, Nullable: true}
	assert.Equal(t, "?&arena<frame> int32", ref.String())

	fn := &FunctionType{Return: tt.Primitive(TypeVoid), Params: []Type{i32, i32}}
	assert.Equal(t, "fn(int32, int32) void", fn.String())

	opt := &OptionalType{Inner: i32}
	assert.Equal(t, "?int32", opt.String())
}
