package safec

// operators.go implements operator-overload resolution: a BinaryExpr
// whose left operand is a StructType resolves to an `operator<op>`
// method on that struct if one exists, exactly the way a regular
// method call resolves through MethodRegistry.

var operatorMethodNames = map[BinaryKind]string{
	BinAdd: "operator+", BinSub: "operator-", BinMul: "operator*", BinDiv: "operator/",
	BinMod: "operator%", BinBitAnd: "operator&", BinBitOr: "operator|", BinBitXor: "operator^",
	BinShl: "operator<<", BinShr: "operator>>", BinEq: "operator==", BinNeq: "operator!=",
	BinLt: "operator<", BinGt: "operator>", BinLe: "operator<=", BinGe: "operator>=",
}

// ResolveOperatorOverload looks up an `operator<op>` method on a
// struct-typed left operand and, if found, attaches it to the
// BinaryExpr so codegen handoff can emit a direct call instead of a
// primitive instruction.
func (r *MethodRegistry) ResolveOperatorOverload(bin *BinaryExpr, leftType Type) (*FuncDecl, bool) {
	st, ok := leftType.(*StructType)
	if !ok {
		return nil, false
	}
	name, ok := operatorMethodNames[bin.Op]
	if !ok {
		return nil, false
	}
	fn, ok := r.Lookup(st.Name, name)
	if !ok {
		return nil, false
	}
	bin.ResolvedOperator = fn
	return fn, true
}
