package safec

// clone.go clones a FuncDecl's AST while substituting generic type
// parameters, so a generic function can be spliced into a fresh
// monomorphized instantiation. Statements, operator/call/subscript/
// member/cast/sizeof(T) expressions and identifiers (with their
// resolution cleared) are copied; literals and the remaining
// expression kinds, and match-arm patterns, are shared with the
// original. It additionally folds `sizeof...(pack)` and expands pack
// parameters once their length is known.

type typeSubst map[string]Type

func substType(t Type, subst typeSubst) Type {
	switch n := t.(type) {
	case *GenericType:
		if r, ok := subst[n.Name]; ok {
			return r
		}
		return t
	case *PointerType:
		return &PointerType{Base: substType(n.Base, subst), Const: n.Const}
	case *ReferenceType:
		return &ReferenceType{Base: substType(n.Base, subst), Region: n.Region, Nullable: n.Nullable, Mut: n.Mut}
	case *ArrayType:
		return &ArrayType{Element: substType(n.Element, subst), Size: n.Size}
	case *OptionalType:
		return &OptionalType{Inner: substType(n.Inner, subst)}
	case *SliceType:
		return &SliceType{Element: substType(n.Element, subst)}
	case *TupleType:
		elems := make([]Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = substType(e, subst)
		}
		return &TupleType{Elements: elems}
	case *FunctionType:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = substType(p, subst)
		}
		return &FunctionType{Return: substType(n.Return, subst), Params: params, Variadic: n.Variadic}
	default:
		return t
	}
}

// CloneFuncForInstantiation deep-copies fn's body and signature,
// substituting every occurrence of a generic parameter named in subst
// with its concrete type argument. Pack parameters are expanded to
// packArgs, one parameter per argument, and `sizeof...(pack)`
// expressions referencing PackName are folded to an IntLiteral of
// len(packArgs).
func CloneFuncForInstantiation(fn *FuncDecl, subst typeSubst, packArgs map[string][]Type) *FuncDecl {
	clone := &FuncDecl{
		Name:   fn.Name,
		Return: substType(fn.Return, subst),
		Flags:  fn.Flags,
		Owner:  fn.Owner,
		span:   fn.span,
	}
	for _, p := range fn.Params {
		if p.PackCount > 0 {
			args := packArgs[p.Name]
			for i, at := range args {
				clone.Params = append(clone.Params, Param{
					Name: packElemName(p.Name, i),
					Type: at,
					Span: p.Span,
				})
			}
			continue
		}
		clone.Params = append(clone.Params, Param{Name: p.Name, Type: substType(p.Type, subst), Span: p.Span})
	}
	if fn.Body != nil {
		clone.Body = cloneBlock(fn.Body, subst, packArgs)
	}
	return clone
}

func packElemName(pack string, i int) string {
	return pack + "__" + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}

func cloneBlock(b *BlockStmt, subst typeSubst, packArgs map[string][]Type) *BlockStmt {
	out := &BlockStmt{span: b.span}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, cloneStmt(s, subst, packArgs))
	}
	return out
}

func cloneStmt(s Stmt, subst typeSubst, packArgs map[string][]Type) Stmt {
	switch n := s.(type) {
	case *BlockStmt:
		return cloneBlock(n, subst, packArgs)
	case *ExprStmt:
		return &ExprStmt{X: cloneExpr(n.X, subst, packArgs), span: n.span}
	case *IfStmt:
		var els Stmt
		if n.Else != nil {
			els = cloneStmt(n.Else, subst, packArgs)
		}
		return &IfStmt{IsConst: n.IsConst, Cond: cloneExpr(n.Cond, subst, packArgs), Then: cloneStmt(n.Then, subst, packArgs), Else: els, span: n.span}
	case *WhileStmt:
		return &WhileStmt{Cond: cloneExpr(n.Cond, subst, packArgs), Body: cloneStmt(n.Body, subst, packArgs), Label: n.Label, span: n.span}
	case *DoWhileStmt:
		return &DoWhileStmt{Body: cloneStmt(n.Body, subst, packArgs), Cond: cloneExpr(n.Cond, subst, packArgs), Label: n.Label, span: n.span}
	case *ForStmt:
		var init Stmt
		if n.Init != nil {
			init = cloneStmt(n.Init, subst, packArgs)
		}
		var cond, post Expr
		if n.Cond != nil {
			cond = cloneExpr(n.Cond, subst, packArgs)
		}
		if n.Post != nil {
			post = cloneExpr(n.Post, subst, packArgs)
		}
		return &ForStmt{Init: init, Cond: cond, Post: post, Body: cloneStmt(n.Body, subst, packArgs), Label: n.Label, span: n.span}
	case *ReturnStmt:
		var v Expr
		if n.Value != nil {
			v = cloneExpr(n.Value, subst, packArgs)
		}
		return &ReturnStmt{Value: v, span: n.span}
	case *VarDeclStmt:
		var declType Type
		if n.DeclType != nil {
			declType = substType(n.DeclType, subst)
		}
		var init Expr
		if n.Init != nil {
			init = cloneExpr(n.Init, subst, packArgs)
		}
		return &VarDeclStmt{Name: n.Name, DeclType: declType, Init: init, Const: n.Const, Static: n.Static, span: n.span}
	case *UnsafeStmt:
		return &UnsafeStmt{Body: cloneBlock(n.Body, subst, packArgs), span: n.span}
	case *DeferStmt:
		return &DeferStmt{Body: cloneStmt(n.Body, subst, packArgs), IsError: n.IsError, span: n.span}
	case *MatchStmt:
		out := &MatchStmt{Subject: cloneExpr(n.Subject, subst, packArgs), span: n.span}
		for _, arm := range n.Arms {
			out.Arms = append(out.Arms, MatchArm{Patterns: arm.Patterns, Body: cloneStmt(arm.Body, subst, packArgs)})
		}
		return out
	default:
		return s
	}
}

func cloneExpr(e Expr, subst typeSubst, packArgs map[string][]Type) Expr {
	switch n := e.(type) {
	case *SizeofPackExpr:
		if args, ok := packArgs[n.PackName]; ok {
			return &IntLiteral{exprBase: exprBase{span: n.span}, Value: int64(len(args))}
		}
		return n
	case *BinaryExpr:
		return &BinaryExpr{exprBase: exprBase{span: n.span}, Op: n.Op, Left: cloneExpr(n.Left, subst, packArgs), Right: cloneExpr(n.Right, subst, packArgs)}
	case *UnaryExpr:
		return &UnaryExpr{exprBase: exprBase{span: n.span}, Op: n.Op, X: cloneExpr(n.X, subst, packArgs)}
	case *TernaryExpr:
		return &TernaryExpr{exprBase: exprBase{span: n.span}, Cond: cloneExpr(n.Cond, subst, packArgs), Then: cloneExpr(n.Then, subst, packArgs), Else: cloneExpr(n.Else, subst, packArgs)}
	case *AssignExpr:
		return &AssignExpr{exprBase: exprBase{span: n.span}, Op: n.Op, LHS: cloneExpr(n.LHS, subst, packArgs), Value: cloneExpr(n.Value, subst, packArgs)}
	case *CallExpr:
		out := &CallExpr{exprBase: exprBase{span: n.span}, Callee: cloneExpr(n.Callee, subst, packArgs)}
		for _, a := range n.Args {
			out.Args = append(out.Args, cloneExpr(a, subst, packArgs))
		}
		return out
	case *SubscriptExpr:
		return &SubscriptExpr{exprBase: exprBase{span: n.span}, X: cloneExpr(n.X, subst, packArgs), Index: cloneExpr(n.Index, subst, packArgs), BoundsCheckOmit: n.BoundsCheckOmit}
	case *MemberExpr:
		return &MemberExpr{exprBase: exprBase{span: n.span}, X: cloneExpr(n.X, subst, packArgs), Field: n.Field, IsArrow: n.IsArrow}
	case *CastExpr:
		return &CastExpr{exprBase: exprBase{span: n.span}, Target: substType(n.Target, subst), X: cloneExpr(n.X, subst, packArgs)}
	case *SizeofTypeExpr:
		return &SizeofTypeExpr{exprBase: exprBase{span: n.span}, Target: substType(n.Target, subst)}
	case *Ident:
		return &Ident{exprBase: exprBase{span: n.span}, Name: n.Name}
	default:
		return e
	}
}
