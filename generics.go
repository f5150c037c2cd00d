package safec

import (
	"strings"

	"golang.org/x/exp/slices"
)

// generics.go implements monomorphization: unifying call-site argument
// types against a generic function's parameter types, checking trait
// constraints, and caching one concrete instantiation per distinct
// argument-type tuple, keyed by a string-joined cache key built from
// the type tuple.

// traitMethods enumerates the minimal method set a constraint name
// requires of a struct. Traits are always checked, never optional.
var traitMethods = map[string][]string{
	"Numeric": {"operator+", "operator-", "operator*", "operator/"},
	"Eq":      {"operator==", "operator!="},
	"Ord":     {"operator<", "operator>", "operator<=", "operator>="},
}

// GenericInstantiation is one monomorphized copy of a generic
// function, keyed by the mangled name.
type GenericInstantiation struct {
	MangledName string
	TypeArgs    []Type
	Func        *FuncDecl
}

// GenericCache memoizes instantiations so repeated calls with the same
// concrete type arguments reuse one compiled copy.
type GenericCache struct {
	byKey map[string]*GenericInstantiation
}

func NewGenericCache() *GenericCache {
	return &GenericCache{byKey: map[string]*GenericInstantiation{}}
}

// MangleGeneric builds the `__safec_<fn>_<arg1>_<arg2>...` cache key
// and link name.
func MangleGeneric(fnName string, typeArgs []Type) string {
	var sb strings.Builder
	sb.WriteString("__safec_")
	sb.WriteString(fnName)
	for _, t := range typeArgs {
		sb.WriteByte('_')
		sb.WriteString(sanitizeTypeName(t.String()))
	}
	return sb.String()
}

func sanitizeTypeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// UnifyCallArgs walks fn's declared parameter types against the
// concrete argTypes at a call site and infers a binding for every
// generic parameter name referenced in the signature. It reports
// false if two occurrences of the same generic parameter would bind
// to different concrete types.
func UnifyCallArgs(fn *FuncDecl, argTypes []Type) (typeSubst, bool) {
	subst := typeSubst{}
	n := len(fn.Params)
	if len(argTypes) < n {
		n = len(argTypes)
	}
	for i := 0; i < n; i++ {
		if !unifyOne(fn.Params[i].Type, argTypes[i], subst) {
			return nil, false
		}
	}
	return subst, true
}

func unifyOne(declared, concrete Type, subst typeSubst) bool {
	switch d := declared.(type) {
	case *GenericType:
		if existing, ok := subst[d.Name]; ok {
			return existing.Equals(concrete)
		}
		subst[d.Name] = concrete
		return true
	case *PointerType:
		cp, ok := concrete.(*PointerType)
		if !ok {
			return false
		}
		return unifyOne(d.Base, cp.Base, subst)
	case *ReferenceType:
		cr, ok := concrete.(*ReferenceType)
		if !ok {
			return false
		}
		return unifyOne(d.Base, cr.Base, subst)
	case *SliceType:
		cs, ok := concrete.(*SliceType)
		if !ok {
			return false
		}
		return unifyOne(d.Element, cs.Element, subst)
	case *ArrayType:
		ca, ok := concrete.(*ArrayType)
		if !ok {
			return false
		}
		return unifyOne(d.Element, ca.Element, subst)
	default:
		return true // non-generic positions don't constrain unification
	}
}

// CheckConstraint reports whether ty (expected to be a *StructType)
// implements the named trait, by checking the method registry for
// every method the trait requires.
func CheckConstraint(reg *MethodRegistry, ty Type, constraint string) bool {
	if constraint == "" {
		return true
	}
	st, ok := ty.(*StructType)
	if !ok {
		// primitive numeric types satisfy Numeric/Eq/Ord intrinsically.
		return IsNumeric(ty)
	}
	required, ok := traitMethods[constraint]
	if !ok {
		return true
	}
	for _, m := range required {
		if _, ok := reg.Lookup(st.Name, m); !ok {
			return false
		}
	}
	return true
}

// Instantiate returns the cached instantiation for fn+typeArgs,
// creating and cloning one if this is the first time this exact
// argument tuple has been requested.
func (c *GenericCache) Instantiate(fn *FuncDecl, subst typeSubst, typeArgs []Type, packArgs map[string][]Type) *GenericInstantiation {
	key := MangleGeneric(fn.Name, typeArgs)
	if inst, ok := c.byKey[key]; ok {
		return inst
	}
	clone := CloneFuncForInstantiation(fn, subst, packArgs)
	clone.Name = key
	inst := &GenericInstantiation{MangledName: key, TypeArgs: typeArgs, Func: clone}
	c.byKey[key] = inst
	return inst
}

// All returns every cached instantiation, sorted by mangled name so
// repeated compiles emit generated instantiations in the same order
// regardless of map iteration.
func (c *GenericCache) All() []*GenericInstantiation {
	var out []*GenericInstantiation
	for _, v := range c.byKey {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *GenericInstantiation) int {
		return strings.Compare(a.MangledName, b.MangledName)
	})
	return out
}
