package safec

import (
	"fmt"
	"strings"
)

// Region is the lifetime class attached to a Reference type.
type Region struct {
	Kind RegionKind
	Name string // arena name, only set when Kind == RegionArena
}

type RegionKind int

const (
	RegionStack RegionKind = iota
	RegionStatic
	RegionHeap
	RegionArena
)

func (r Region) String() string {
	switch r.Kind {
	case RegionStack:
		return "stack"
	case RegionStatic:
		return "static"
	case RegionHeap:
		return "heap"
	case RegionArena:
		return fmt.Sprintf("arena<%s>", r.Name)
	default:
		return "?region"
	}
}

func (r Region) Equals(o Region) bool {
	return r.Kind == o.Kind && r.Name == o.Name
}

// TypeKind discriminates the closed Type sum. Every
// variant below corresponds to exactly one Go struct implementing
// Type; the kind-switch in Equals/String is the only down-cast point.
type TypeKind int

const (
	TypeVoid TypeKind = iota
	TypeBool
	TypeChar
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeFloat32
	TypeFloat64
	TypeError // sentinel: silently absorbs cascaded diagnostics
	TypePointer
	TypeReference
	TypeArray
	TypeStruct
	TypeEnum
	TypeFunction
	TypeTuple
	TypeOptional
	TypeSlice
	TypeGeneric
	TypeNewtype
	TypeTypeof
)

// Type is the interface every type variant satisfies. Equals is
// structural for every variant except Struct/Enum/Generic/Newtype,
// which compare by name.
type Type interface {
	Kind() TypeKind
	String() string
	Equals(Type) bool
	// isType is unexported so Type remains a closed sum: only this
	// package can introduce new variants.
	isType()
}

// ---- primitives ----

type primitiveType struct{ kind TypeKind }

func (t *primitiveType) Kind() TypeKind { return t.kind }
func (t *primitiveType) isType()        {}
func (t *primitiveType) Equals(o Type) bool {
	op, ok := o.(*primitiveType)
	return ok && op.kind == t.kind
}
func (t *primitiveType) String() string {
	switch t.kind {
	case TypeVoid:
		return "void"
	case TypeBool:
		return "bool"
	case TypeChar:
		return "char"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUInt8:
		return "uint8"
	case TypeUInt16:
		return "uint16"
	case TypeUInt32:
		return "uint32"
	case TypeUInt64:
		return "uint64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeError:
		return "<error>"
	default:
		return "?primitive"
	}
}

// typeTable interns the fixed set of primitive types so identity
// comparison is a valid fast path; it also interns Generic{name} so
// repeated occurrences of the same generic parameter in one signature
// are pointer-identical.
type typeTable struct {
	primitives map[TypeKind]*primitiveType
	generics   map[string]*GenericType
}

func newTypeTable() *typeTable {
	t := &typeTable{
		primitives: map[TypeKind]*primitiveType{},
		generics:   map[string]*GenericType{},
	}
	for _, k := range []TypeKind{
		TypeVoid, TypeBool, TypeChar,
		TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64,
		TypeFloat32, TypeFloat64, TypeError,
	} {
		t.primitives[k] = &primitiveType{kind: k}
	}
	return t
}

func (t *typeTable) Primitive(kind TypeKind) Type { return t.primitives[kind] }

func (t *typeTable) Generic(name string, constraint string) *GenericType {
	if g, ok := t.generics[name]; ok {
		return g
	}
	g := &GenericType{Name: name, Constraint: constraint}
	t.generics[name] = g
	return g
}

// ---- Pointer ----

type PointerType struct {
	Base  Type
	Const bool
}

func (t *PointerType) Kind() TypeKind { return TypePointer }
func (t *PointerType) isType()        {}
func (t *PointerType) String() string {
	c := ""
	if t.Const {
		c = "const "
	}
	return fmt.Sprintf("%s%s*", c, t.Base.String())
}
func (t *PointerType) Equals(o Type) bool {
	op, ok := o.(*PointerType)
	return ok && op.Const == t.Const && op.Base.Equals(t.Base)
}

// ---- Reference ----

type ReferenceType struct {
	Base     Type
	Region   Region
	Nullable bool
	Mut      bool
}

func (t *ReferenceType) Kind() TypeKind { return TypeReference }
func (t *ReferenceType) isType()        {}
func (t *ReferenceType) String() string {
	n := ""
	if t.Nullable {
		n = "?"
	}
	return fmt.Sprintf("%s&%s %s", n, t.Region, t.Base.String())
}
func (t *ReferenceType) Equals(o Type) bool {
	op, ok := o.(*ReferenceType)
	return ok && op.Nullable == t.Nullable && op.Region.Equals(t.Region) && op.Base.Equals(t.Base)
}

// ---- Array ----

type ArrayType struct {
	Element Type
	Size    *int // nil when unsized
}

func (t *ArrayType) Kind() TypeKind { return TypeArray }
func (t *ArrayType) isType()        {}
func (t *ArrayType) String() string {
	if t.Size == nil {
		return fmt.Sprintf("%s[]", t.Element.String())
	}
	return fmt.Sprintf("%s[%d]", t.Element.String(), *t.Size)
}
func (t *ArrayType) Equals(o Type) bool {
	op, ok := o.(*ArrayType)
	if !ok || !op.Element.Equals(t.Element) {
		return false
	}
	if (t.Size == nil) != (op.Size == nil) {
		return false
	}
	return t.Size == nil || *t.Size == *op.Size
}

// ---- Struct ----

type StructField struct {
	Name string
	Type Type
}

type StructType struct {
	Name    string
	Fields  []StructField
	Union   bool
	Packed  bool
	Defined bool
}

func (t *StructType) Kind() TypeKind { return TypeStruct }
func (t *StructType) isType()        {}
func (t *StructType) String() string { return t.Name }

// Equals is nominal for structs: the two types must share a name,
// unlike most other variants which compare structurally.
func (t *StructType) Equals(o Type) bool {
	op, ok := o.(*StructType)
	return ok && op.Name == t.Name
}

func (t *StructType) FieldType(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// ---- Enum ----

type EnumVariant struct {
	Name  string
	Value int64
}

type EnumType struct {
	Name     string
	Variants []EnumVariant
	Width    int // bit width of the backing integer
}

func (t *EnumType) Kind() TypeKind { return TypeEnum }
func (t *EnumType) isType()        {}
func (t *EnumType) String() string { return t.Name }
func (t *EnumType) Equals(o Type) bool {
	op, ok := o.(*EnumType)
	return ok && op.Name == t.Name
}

// ---- Function ----

type FunctionType struct {
	Return   Type
	Params   []Type
	Variadic bool
}

func (t *FunctionType) Kind() TypeKind { return TypeFunction }
func (t *FunctionType) isType()        {}
func (t *FunctionType) String() string {
	var params []string
	for _, p := range t.Params {
		params = append(params, p.String())
	}
	va := ""
	if t.Variadic {
		va = ", ..."
	}
	return fmt.Sprintf("fn(%s%s) %s", strings.Join(params, ", "), va, t.Return.String())
}
func (t *FunctionType) Equals(o Type) bool {
	op, ok := o.(*FunctionType)
	if !ok || len(op.Params) != len(t.Params) || op.Variadic != t.Variadic || !op.Return.Equals(t.Return) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(op.Params[i]) {
			return false
		}
	}
	return true
}

// ---- Tuple ----

type TupleType struct{ Elements []Type }

func (t *TupleType) Kind() TypeKind { return TypeTuple }
func (t *TupleType) isType()        {}
func (t *TupleType) String() string {
	var parts []string
	for _, e := range t.Elements {
		parts = append(parts, e.String())
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
func (t *TupleType) Equals(o Type) bool {
	op, ok := o.(*TupleType)
	if !ok || len(op.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Equals(op.Elements[i]) {
			return false
		}
	}
	return true
}

// ---- Optional ----

type OptionalType struct{ Inner Type }

func (t *OptionalType) Kind() TypeKind { return TypeOptional }
func (t *OptionalType) isType()        {}
func (t *OptionalType) String() string { return "?" + t.Inner.String() }
func (t *OptionalType) Equals(o Type) bool {
	op, ok := o.(*OptionalType)
	return ok && op.Inner.Equals(t.Inner)
}

// ---- Slice ----

type SliceType struct{ Element Type }

func (t *SliceType) Kind() TypeKind { return TypeSlice }
func (t *SliceType) isType()        {}
func (t *SliceType) String() string { return "[]" + t.Element.String() }
func (t *SliceType) Equals(o Type) bool {
	op, ok := o.(*SliceType)
	return ok && op.Element.Equals(t.Element)
}

// ---- Generic ----

type GenericType struct {
	Name       string
	Constraint string
}

func (t *GenericType) Kind() TypeKind { return TypeGeneric }
func (t *GenericType) isType()        {}
func (t *GenericType) String() string { return t.Name }
func (t *GenericType) Equals(o Type) bool {
	op, ok := o.(*GenericType)
	return ok && op.Name == t.Name
}

// ---- Newtype ----

type NewtypeType struct {
	Name string
	Base Type
}

func (t *NewtypeType) Kind() TypeKind { return TypeNewtype }
func (t *NewtypeType) isType()        {}
func (t *NewtypeType) String() string { return t.Name }
func (t *NewtypeType) Equals(o Type) bool {
	op, ok := o.(*NewtypeType)
	return ok && op.Name == t.Name
}

// ---- Typeof ----

// TypeofType must be resolved to a concrete type during semantic
// analysis, before IR lowering. Resolved is nil until that happens.
type TypeofType struct {
	Expr     Expr
	Resolved Type
}

func (t *TypeofType) Kind() TypeKind { return TypeTypeof }
func (t *TypeofType) isType()        {}
func (t *TypeofType) String() string {
	if t.Resolved != nil {
		return t.Resolved.String()
	}
	return "typeof(...)"
}
func (t *TypeofType) Equals(o Type) bool {
	if t.Resolved != nil {
		return t.Resolved.Equals(o)
	}
	op, ok := o.(*TypeofType)
	return ok && op == t
}

// IsError reports whether ty is the Error sentinel, which silently
// satisfies any conversion/equality check to prevent cascading
// diagnostics.
func IsError(ty Type) bool {
	p, ok := ty.(*primitiveType)
	return ok && p.kind == TypeError
}

func isIntegerKind(k TypeKind) bool {
	switch k {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64, TypeChar, TypeBool:
		return true
	default:
		return false
	}
}

func isUnsignedKind(k TypeKind) bool {
	switch k {
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return true
	default:
		return false
	}
}

func isFloatKind(k TypeKind) bool {
	return k == TypeFloat32 || k == TypeFloat64
}

func isEightBitKind(k TypeKind) bool {
	switch k {
	case TypeBool, TypeChar, TypeInt8, TypeUInt8:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether ty can participate in arithmetic.
func IsNumeric(ty Type) bool {
	if p, ok := ty.(*primitiveType); ok {
		return isIntegerKind(p.kind) || isFloatKind(p.kind)
	}
	return false
}
