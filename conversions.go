package safec

// CanConvert reports whether a value of type from may be implicitly
// converted to type to, per a strictly enumerated rule list. No
// widening beyond what's listed here is legal.
func CanConvert(from, to Type) bool {
	if IsError(from) || IsError(to) {
		return true
	}
	if from.Equals(to) {
		return true
	}

	fp, fromPrim := from.(*primitiveType)
	tp, toPrim := to.(*primitiveType)

	// 8-bit interop: Bool|Char|Int8|UInt8 mutually assignable.
	if fromPrim && toPrim && isEightBitKind(fp.kind) && isEightBitKind(tp.kind) {
		return true
	}

	// Character promotion: Char -> any integer.
	if fromPrim && fp.kind == TypeChar && toPrim && isIntegerKind(tp.kind) {
		return true
	}

	// Bool <-> integer.
	if fromPrim && fp.kind == TypeBool && toPrim && isIntegerKind(tp.kind) {
		return true
	}
	if fromPrim && toPrim && isIntegerKind(fp.kind) && tp.kind == TypeBool {
		return true
	}

	// Array decay: T[N] -> T* when element types match (or both 8-bit).
	if fa, ok := from.(*ArrayType); ok {
		if tPtr, ok := to.(*PointerType); ok {
			if fa.Element.Equals(tPtr.Base) {
				return true
			}
			if fep, ok1 := fa.Element.(*primitiveType); ok1 {
				if tep, ok2 := tPtr.Base.(*primitiveType); ok2 && isEightBitKind(fep.kind) && isEightBitKind(tep.kind) {
					return true
				}
			}
		}
	}

	// void* -> any *
	if fromPtr, ok := from.(*PointerType); ok {
		if fromPtr.Base.Kind() == TypeVoid {
			if _, ok := to.(*PointerType); ok {
				return true
			}
		}
	}

	if fromRef, ok := from.(*ReferenceType); ok {
		// &static T -> T* (and -> void*)
		if fromRef.Region.Kind == RegionStatic {
			if toPtr, ok := to.(*PointerType); ok {
				if toPtr.Base.Kind() == TypeVoid || toPtr.Base.Equals(fromRef.Base) {
					return true
				}
			}
		}
		// &arena/heap T -> T* of same base (and -> void*)
		if fromRef.Region.Kind == RegionArena || fromRef.Region.Kind == RegionHeap {
			if toPtr, ok := to.(*PointerType); ok {
				if toPtr.Base.Kind() == TypeVoid || toPtr.Base.Equals(fromRef.Base) {
					return true
				}
			}
		}

		// Reference-to-reference: same region, same base, non-null
		// may widen to nullable; nullable -> non-null rejected.
		if toRef, ok := to.(*ReferenceType); ok {
			if fromRef.Region.Equals(toRef.Region) && fromRef.Base.Equals(toRef.Base) {
				if fromRef.Nullable && !toRef.Nullable {
					return false
				}
				return true
			}
		}
	}

	return false
}

// ArithResultType computes the result type of a binary arithmetic
// operator applied to l and r, after usual arithmetic promotion.
//
// Open question resolved: promotion always widens to the signedness
// of the wider operand. A mixed UInt8 + Int32 promotes like Int8 +
// Int32 does: the result is Int32, not UInt32. The only
// asymmetric rule is the Char/Bool/Int8/UInt8 -> "any integer"
// promotion itself; once both operands are ordinary integers, the
// wider one's signedness wins.
func ArithResultType(tt *typeTable, l, r Type) (Type, bool) {
	if IsError(l) || IsError(r) {
		return tt.Primitive(TypeError), true
	}
	lp, lok := l.(*primitiveType)
	rp, rok := r.(*primitiveType)
	if !lok || !rok {
		return nil, false
	}
	if !IsNumeric(l) || !IsNumeric(r) {
		return nil, false
	}
	if isFloatKind(lp.kind) || isFloatKind(rp.kind) {
		if lp.kind == TypeFloat64 || rp.kind == TypeFloat64 {
			return tt.Primitive(TypeFloat64), true
		}
		return tt.Primitive(TypeFloat32), true
	}

	lw, rw := integerWidth(lp.kind), integerWidth(rp.kind)
	if lw == rw && isUnsignedKind(lp.kind) == isUnsignedKind(rp.kind) {
		if isEightBitKind(lp.kind) {
			return tt.Primitive(TypeInt32), true // promoted like C's "int"
		}
		return l, true
	}
	winner := lp.kind
	if rw > lw || (rw == lw && !isUnsignedKind(rp.kind)) {
		winner = rp.kind
	}
	if isEightBitKind(winner) {
		winner = TypeInt32
	}
	return tt.Primitive(winner), true
}

func integerWidth(k TypeKind) int {
	switch k {
	case TypeBool, TypeChar, TypeInt8, TypeUInt8:
		return 8
	case TypeInt16, TypeUInt16:
		return 16
	case TypeInt32, TypeUInt32:
		return 32
	case TypeInt64, TypeUInt64:
		return 64
	default:
		return 0
	}
}

// SizeOf returns the size in bytes of primitive and pointer/reference
// types, used both by the compile-time engine's sizeof and by the
// constant folder.
func SizeOf(ty Type) int {
	switch t := ty.(type) {
	case *primitiveType:
		switch t.kind {
		case TypeVoid:
			return 0
		case TypeBool, TypeChar, TypeInt8, TypeUInt8:
			return 1
		case TypeInt16, TypeUInt16:
			return 2
		case TypeInt32, TypeUInt32, TypeFloat32:
			return 4
		case TypeInt64, TypeUInt64, TypeFloat64:
			return 8
		}
	case *PointerType, *ReferenceType:
		return 8
	case *ArrayType:
		if t.Size != nil {
			return *t.Size * SizeOf(t.Element)
		}
	case *StructType:
		total := 0
		for _, f := range t.Fields {
			total += SizeOf(f.Type)
		}
		return total
	case *EnumType:
		return t.Width / 8
	}
	return 0
}
