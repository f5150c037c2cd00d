package safec

// sema_expr.go type-checks every Expr variant with a single
// one-switch-per-kind dispatch. Every case sets the node's resolved
// Type via SetType before returning it, so later passes (codegen
// handoff, borrow checking) never need to re-derive a type.

func (a *Analyzer) errType() Type { return a.tt.Primitive(TypeError) }

func (a *Analyzer) checkExpr(e Expr) Type {
	var t Type
	switch n := e.(type) {
	case *IntLiteral:
		t = a.intLiteralType(n)
	case *FloatLiteral:
		if n.IsFloat32 {
			t = a.tt.Primitive(TypeFloat32)
		} else {
			t = a.tt.Primitive(TypeFloat64)
		}
	case *BoolLiteral:
		t = a.tt.Primitive(TypeBool)
	case *CharLiteral:
		t = a.tt.Primitive(TypeChar)
	case *StringLiteral:
		t = &PointerType{Base: a.tt.Primitive(TypeChar), Const: true}
	case *NullLiteral:
		t = &OptionalType{Inner: a.tt.Primitive(TypeVoid)}
	case *Ident:
		t = a.checkIdent(n)
	case *UnaryExpr:
		t = a.checkUnary(n)
	case *BinaryExpr:
		t = a.checkBinary(n)
	case *TernaryExpr:
		t = a.checkTernary(n)
	case *AssignExpr:
		t = a.checkAssign(n)
	case *CallExpr:
		t = a.checkCall(n)
	case *SubscriptExpr:
		t = a.checkSubscript(n)
	case *MemberExpr:
		t = a.checkMember(n)
	case *CastExpr:
		t = a.checkCast(n)
	case *CompoundInitExpr:
		t = a.checkCompoundInit(n)
	case *TupleExpr:
		t = a.checkTuple(n)
	case *SizeofTypeExpr:
		n.Target = a.resolveNamedType(n.Target)
		t = a.tt.Primitive(TypeUInt64)
	case *SizeofExprExpr:
		a.checkExpr(n.X)
		t = a.tt.Primitive(TypeUInt64)
	case *AlignofExpr:
		n.Target = a.resolveNamedType(n.Target)
		t = a.tt.Primitive(TypeUInt64)
	case *FieldcountExpr:
		n.Target = a.resolveNamedType(n.Target)
		t = a.tt.Primitive(TypeUInt64)
	case *SizeofPackExpr:
		t = a.tt.Primitive(TypeUInt64)
	case *NewExpr:
		t = a.checkNew(n)
	case *ArenaResetExpr:
		if _, ok := a.regions[n.ArenaName]; !ok {
			a.diags.Error(a.fname, n.Span(), "unknown region %q", n.ArenaName)
		}
		t = a.tt.Primitive(TypeVoid)
	case *SpawnExpr:
		t = a.checkSpawn(n)
	case *JoinExpr:
		a.checkExpr(n.Handle)
		t = a.tt.Primitive(TypeVoid)
	case *TryExpr:
		t = a.checkTry(n)
	case *TaggedUnionCtorExpr:
		t = a.checkTaggedUnionCtor(n)
	case *ErrorExpr:
		t = a.errType()
	default:
		t = a.errType()
	}
	e.SetType(t)
	return t
}

func (a *Analyzer) intLiteralType(n *IntLiteral) Type {
	switch {
	case n.IsUnsigned && n.IsLongLong:
		return a.tt.Primitive(TypeUInt64)
	case n.IsLongLong:
		return a.tt.Primitive(TypeInt64)
	case n.IsUnsigned:
		return a.tt.Primitive(TypeUInt32)
	default:
		return a.tt.Primitive(TypeInt32)
	}
}

func (a *Analyzer) checkIdent(n *Ident) Type {
	sym, ok := a.scopes.Lookup(n.Name)
	if !ok {
		a.diags.Error(a.fname, n.Span(), "undeclared identifier %q", n.Name)
		return a.errType()
	}
	if sym.Kind == SymFunc {
		n.ResolvedFn = sym.FnDecl
	} else {
		n.ResolvedVar = sym
		if !sym.Initialized {
			a.diags.Error(a.fname, n.Span(), "use of %q before initialization", n.Name)
		}
	}
	return sym.Type
}

func (a *Analyzer) checkUnary(n *UnaryExpr) Type {
	switch n.Op {
	case UnaryAddrOf:
		xt := a.checkExpr(n.X)
		a.borrow.CheckBorrowExpr(n, true)
		return &ReferenceType{Base: xt, Region: Region{Kind: RegionStack}}
	case UnaryDeref:
		xt := a.checkExpr(n.X)
		if ref, ok := xt.(*ReferenceType); ok {
			if !a.scopes.InUnsafe() && ref.Nullable {
				a.borrow.CheckDeref(n, ref, a.narrowed)
			}
			return ref.Base
		}
		if ptr, ok := xt.(*PointerType); ok {
			if !a.scopes.InUnsafe() {
				a.diags.Error(a.fname, n.Span(), "dereferencing a raw pointer requires an unsafe block")
			}
			return ptr.Base
		}
		if !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "cannot dereference a value of type %s", xt)
		}
		return a.errType()
	case UnaryNot:
		a.checkExpr(n.X)
		return a.tt.Primitive(TypeBool)
	case UnaryBitNot:
		xt := a.checkExpr(n.X)
		if !IsNumeric(xt) && !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "bitwise complement requires a numeric operand, found %s", xt)
		}
		return xt
	default:
		xt := a.checkExpr(n.X)
		if !IsNumeric(xt) && !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "arithmetic operator requires a numeric operand, found %s", xt)
		}
		return xt
	}
}

func (a *Analyzer) checkBinary(n *BinaryExpr) Type {
	lt := a.checkExpr(n.Left)
	rt := a.checkExpr(n.Right)

	if fn, ok := a.methods.ResolveOperatorOverload(n, lt); ok {
		return fn.Return
	}

	switch n.Op {
	case BinAndAnd, BinOrOr:
		return a.tt.Primitive(TypeBool)
	case BinEq, BinNeq, BinLt, BinGt, BinLe, BinGe:
		if _, isNull := n.Right.(*NullLiteral); isNull {
			if ref, ok := lt.(*ReferenceType); ok && ref.Nullable {
				return a.tt.Primitive(TypeBool)
			}
		}
		if _, isNull := n.Left.(*NullLiteral); isNull {
			if ref, ok := rt.(*ReferenceType); ok && ref.Nullable {
				return a.tt.Primitive(TypeBool)
			}
		}
		if !lt.Equals(rt) && !CanConvert(rt, lt) && !CanConvert(lt, rt) && !IsError(lt) && !IsError(rt) {
			a.diags.Error(a.fname, n.Span(), "cannot compare %s with %s", lt, rt)
		}
		return a.tt.Primitive(TypeBool)
	default:
		if _, ok := lt.(*PointerType); ok {
			if !a.scopes.InUnsafe() {
				a.diags.Error(a.fname, n.Span(), "pointer arithmetic requires an unsafe block")
			}
			return lt
		}
		if _, ok := rt.(*PointerType); ok {
			if !a.scopes.InUnsafe() {
				a.diags.Error(a.fname, n.Span(), "pointer arithmetic requires an unsafe block")
			}
			return rt
		}
		rtype, ok := ArithResultType(a.tt, lt, rt)
		if !ok {
			if !IsError(lt) && !IsError(rt) {
				a.diags.Error(a.fname, n.Span(), "invalid operand types %s and %s for arithmetic", lt, rt)
			}
			return a.errType()
		}
		return rtype
	}
}

func (a *Analyzer) checkTernary(n *TernaryExpr) Type {
	a.checkExpr(n.Cond)
	tt := a.checkExpr(n.Then)
	et := a.checkExpr(n.Else)
	if tt.Equals(et) {
		return tt
	}
	if CanConvert(et, tt) {
		return tt
	}
	if CanConvert(tt, et) {
		return et
	}
	if !IsError(tt) && !IsError(et) {
		a.diags.Error(a.fname, n.Span(), "ternary branches have incompatible types %s and %s", tt, et)
	}
	return a.errType()
}

func (a *Analyzer) checkAssign(n *AssignExpr) Type {
	lt := a.checkExpr(n.LHS)
	vt := a.checkExpr(n.Value)
	if n.Op == AssignPlain {
		if !lt.Equals(vt) && !CanConvert(vt, lt) && !IsError(lt) {
			a.diags.Error(a.fname, n.Span(), "cannot assign a value of type %s to a variable of type %s", vt, lt)
		}
	} else if _, ok := ArithResultType(a.tt, lt, vt); !ok && !IsError(lt) && !IsError(vt) {
		a.diags.Error(a.fname, n.Span(), "invalid operand types %s and %s for compound assignment", lt, vt)
	}
	if id, ok := n.LHS.(*Ident); ok && id.ResolvedVar != nil {
		id.ResolvedVar.Initialized = true
	}
	return lt
}

func (a *Analyzer) checkCall(n *CallExpr) Type {
	if member, ok := n.Callee.(*MemberExpr); ok {
		baseType := a.checkExpr(member.X)
		st, isStruct := underlyingStruct(baseType)
		if isStruct {
			isConstBase := false
			if ref, ok := baseType.(*ReferenceType); ok {
				isConstBase = !ref.Mut
			}
			if a.methods.ResolveMethodCall(a.diags, a.fname, n, member.X, st.Name, isConstBase) {
				for _, arg := range n.Args {
					a.checkExpr(arg)
				}
				return n.Resolved.Return
			}
			return a.errType()
		}
	}
	calleeType := a.checkExpr(n.Callee)
	var argTypes []Type
	for _, arg := range n.Args {
		argTypes = append(argTypes, a.checkExpr(arg))
	}
	id, isIdent := n.Callee.(*Ident)
	if isIdent && id.ResolvedFn != nil && len(id.ResolvedFn.GenericParams) > 0 {
		return a.instantiateGeneric(id.ResolvedFn, argTypes, n.Span())
	}
	ft, ok := calleeType.(*FunctionType)
	if !ok {
		if !IsError(calleeType) {
			a.diags.Error(a.fname, n.Span(), "cannot call a value of type %s", calleeType)
		}
		return a.errType()
	}
	return ft.Return
}

func underlyingStruct(t Type) (*StructType, bool) {
	switch n := t.(type) {
	case *StructType:
		return n, true
	case *ReferenceType:
		return underlyingStruct(n.Base)
	case *PointerType:
		return underlyingStruct(n.Base)
	default:
		return nil, false
	}
}

func (a *Analyzer) instantiateGeneric(fn *FuncDecl, argTypes []Type, span Span) Type {
	subst, ok := UnifyCallArgs(fn, argTypes)
	if !ok {
		a.diags.Error(a.fname, span, "could not infer generic arguments for %q", fn.Name)
		return a.errType()
	}
	for _, gp := range fn.GenericParams {
		if gp.IsPack {
			continue
		}
		concrete, bound := subst[gp.Name]
		if !bound {
			a.diags.Error(a.fname, span, "could not infer type argument %q for %q", gp.Name, fn.Name)
			return a.errType()
		}
		if !CheckConstraint(a.methods, concrete, gp.Constraint) {
			a.diags.Error(a.fname, span, "type %s does not satisfy constraint %s", concrete, gp.Constraint)
			return a.errType()
		}
	}
	var typeArgs []Type
	for _, gp := range fn.GenericParams {
		if !gp.IsPack {
			typeArgs = append(typeArgs, subst[gp.Name])
		}
	}
	a.generics.Instantiate(fn, subst, typeArgs, nil)
	return substType(fn.Return, subst)
}

func (a *Analyzer) checkSubscript(n *SubscriptExpr) Type {
	xt := a.checkExpr(n.X)
	idxT := a.checkExpr(n.Index)
	if !IsNumeric(idxT) && !IsError(idxT) {
		a.diags.Error(a.fname, n.Index.Span(), "array index must be numeric, found %s", idxT)
	}
	if lit, ok := n.Index.(*IntLiteral); ok {
		if arr, ok := xt.(*ArrayType); ok && arr.Size != nil {
			n.BoundsCheckOmit = lit.Value >= 0 && int(lit.Value) < *arr.Size
		}
	}
	if a.scopes.InUnsafe() {
		n.BoundsCheckOmit = true
	}
	switch t := xt.(type) {
	case *ArrayType:
		return t.Element
	case *SliceType:
		return t.Element
	case *PointerType:
		if !a.scopes.InUnsafe() {
			a.diags.Error(a.fname, n.Span(), "indexing a raw pointer requires an unsafe block")
		}
		return t.Base
	default:
		if !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "cannot index a value of type %s", xt)
		}
		return a.errType()
	}
}

func (a *Analyzer) checkMember(n *MemberExpr) Type {
	xt := a.checkExpr(n.X)
	base := xt
	if ref, ok := xt.(*ReferenceType); ok {
		base = ref.Base
	}
	if ptr, ok := base.(*PointerType); ok {
		if !a.scopes.InUnsafe() {
			a.diags.Error(a.fname, n.Span(), "accessing a field through a raw pointer requires an unsafe block")
		}
		base = ptr.Base
	}
	st, ok := base.(*StructType)
	if !ok {
		if tup, ok := base.(*TupleType); ok {
			idx := tupleFieldIndex(n.Field)
			if idx >= 0 && idx < len(tup.Elements) {
				return tup.Elements[idx]
			}
		}
		if !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "cannot access field %q on non-struct type %s", n.Field, xt)
		}
		return a.errType()
	}
	ft, ok := st.FieldType(n.Field)
	if !ok {
		a.diags.Error(a.fname, n.Span(), "struct %q has no field %q", st.Name, n.Field)
		return a.errType()
	}
	return ft
}

func tupleFieldIndex(name string) int {
	if len(name) < 2 || name[0] != 'e' {
		return -1
	}
	n := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func (a *Analyzer) checkCast(n *CastExpr) Type {
	xt := a.checkExpr(n.X)
	n.Target = a.resolveNamedType(n.Target)
	if !CanConvert(xt, n.Target) && !CanConvert(n.Target, xt) && !a.scopes.InUnsafe() {
		a.diags.Error(a.fname, n.Span(), "cast from %s to %s is not permitted outside an unsafe block", xt, n.Target)
	}
	return n.Target
}

func (a *Analyzer) checkCompoundInit(n *CompoundInitExpr) Type {
	var elemType Type
	for _, el := range n.Elements {
		t := a.checkExpr(el)
		if elemType == nil {
			elemType = t
		}
	}
	if elemType == nil {
		elemType = a.tt.Primitive(TypeVoid)
	}
	size := len(n.Elements)
	return &ArrayType{Element: elemType, Size: &size}
}

func (a *Analyzer) checkTuple(n *TupleExpr) Type {
	var elems []Type
	for _, el := range n.Elements {
		elems = append(elems, a.checkExpr(el))
	}
	return &TupleType{Elements: elems}
}

func (a *Analyzer) checkNew(n *NewExpr) Type {
	if _, ok := a.regions[n.ArenaName]; !ok {
		a.diags.Error(a.fname, n.Span(), "unknown region %q", n.ArenaName)
	}
	n.Target = a.resolveNamedType(n.Target)
	return &ReferenceType{Base: n.Target, Region: Region{Kind: RegionArena, Name: n.ArenaName}}
}

func (a *Analyzer) checkSpawn(n *SpawnExpr) Type {
	fnType := a.checkExpr(n.Fn)
	if n.Arg != nil {
		a.checkExpr(n.Arg)
	}
	ft, ok := fnType.(*FunctionType)
	if !ok {
		if !IsError(fnType) {
			a.diags.Error(a.fname, n.Span(), "spawn requires a function value, found %s", fnType)
		}
		return a.errType()
	}
	return &GenericType{Name: "ThreadHandle<" + ft.Return.String() + ">"}
}

func (a *Analyzer) checkTry(n *TryExpr) Type {
	xt := a.checkExpr(n.X)
	opt, ok := xt.(*OptionalType)
	if !ok {
		if !IsError(xt) {
			a.diags.Error(a.fname, n.Span(), "`try` requires an optional operand, found %s", xt)
		}
		return a.errType()
	}
	if a.curReturn != nil {
		if _, retIsOpt := a.curReturn.(*OptionalType); !retIsOpt {
			a.diags.Error(a.fname, n.Span(), "`try` can only be used in a function returning an optional type")
		}
	}
	return opt.Inner
}

func (a *Analyzer) checkTaggedUnionCtor(n *TaggedUnionCtorExpr) Type {
	for _, arg := range n.Args {
		a.checkExpr(arg)
	}
	et, ok := a.enums[n.EnumName]
	if !ok {
		a.diags.Error(a.fname, n.Span(), "unknown tagged union %q", n.EnumName)
		return a.errType()
	}
	found := false
	for _, v := range et.Variants {
		if v.Name == n.Variant {
			found = true
			break
		}
	}
	if !found {
		a.diags.Error(a.fname, n.Span(), "enum %q has no variant %q", n.EnumName, n.Variant)
	}
	return et
}
