package safec

// sema_stmt.go type-checks every Stmt variant, the statement-side
// counterpart to sema_expr.go, using the same single-switch dispatch
// pattern. Loop-label bookkeeping is a stack of enclosing loop labels
// used to validate labeled break/continue.

func (a *Analyzer) checkStmt(s Stmt) {
	switch n := s.(type) {
	case *BlockStmt:
		a.checkBlock(n)
	case *ExprStmt:
		a.checkExpr(n.X)
	case *IfStmt:
		a.checkIf(n)
	case *WhileStmt:
		a.checkExpr(n.Cond)
		a.loopLabels = append(a.loopLabels, n.Label)
		a.checkStmt(n.Body)
		a.loopLabels = a.loopLabels[:len(a.loopLabels)-1]
	case *DoWhileStmt:
		a.loopLabels = append(a.loopLabels, n.Label)
		a.checkStmt(n.Body)
		a.loopLabels = a.loopLabels[:len(a.loopLabels)-1]
		a.checkExpr(n.Cond)
	case *ForStmt:
		a.checkFor(n)
	case *ReturnStmt:
		a.checkReturn(n)
	case *BreakStmt:
		a.checkLoopLabel(n.span, n.Label, "break")
	case *ContinueStmt:
		a.checkLoopLabel(n.span, n.Label, "continue")
	case *GotoStmt:
		if !a.labels[n.Label] {
			a.diags.Error(a.fname, n.span, "goto to undeclared label %q", n.Label)
		}
	case *LabelStmt:
		a.checkStmt(n.Stmt)
	case *VarDeclStmt:
		a.checkVarDecl(n)
	case *UnsafeStmt:
		a.scopes.Push(true)
		a.checkBlock(n.Body)
		a.scopes.Pop()
	case *DeferStmt:
		a.checkStmt(n.Body)
	case *MatchStmt:
		a.checkMatch(n)
	case *StaticAssertStmt:
		a.checkStaticAssertStmtNode(n)
	}
}

func (a *Analyzer) checkBlock(b *BlockStmt) {
	a.scopes.Push(false)
	a.collectLabels(b)
	for _, s := range b.Stmts {
		a.checkStmt(s)
	}
	for _, s := range b.Stmts {
		if vd, ok := s.(*VarDeclStmt); ok {
			a.borrow.ReleaseAtScopeEnd(vd.Name)
		}
	}
	a.scopes.Pop()
}

func (a *Analyzer) collectLabels(b *BlockStmt) {
	for _, s := range b.Stmts {
		if lbl, ok := s.(*LabelStmt); ok {
			a.labels[lbl.Name] = true
		}
	}
}

func (a *Analyzer) checkIf(n *IfStmt) {
	if n.IsConst {
		ce := NewConstEvaluator(a.tt, a.diags, a.fname, a.funcs)
		v, ok := ce.EvalConstExpr(n.Cond)
		if ok {
			truth := v.IsTruthy()
			n.ConstResult = &truth
		}
		a.checkExpr(n.Cond)
		if n.ConstResult == nil || *n.ConstResult {
			a.checkStmt(n.Then)
		}
		if n.Else != nil && (n.ConstResult == nil || !*n.ConstResult) {
			a.checkStmt(n.Else)
		}
		return
	}
	condT := a.checkExpr(n.Cond)
	if condT.Kind() != TypeBool && !IsError(condT) {
		a.diags.Error(a.fname, n.Cond.Span(), "if condition must be bool, found %s", condT)
	}
	a.narrowIfNullCheck(n.Cond, true)
	a.checkStmt(n.Then)
	a.narrowIfNullCheck(n.Cond, false)
	if n.Else != nil {
		a.checkStmt(n.Else)
	}
}

// narrowIfNullCheck records/unrecords narrowing for the common
// `if (x != null) { ... }` / `if (x == null) { ... } else { ... }`
// guard shapes, narrowing a nullable reference via an explicit check.
func (a *Analyzer) narrowIfNullCheck(cond Expr, entering bool) {
	bin, ok := cond.(*BinaryExpr)
	if !ok || (bin.Op != BinNeq && bin.Op != BinEq) {
		return
	}
	var path string
	if _, isNull := bin.Right.(*NullLiteral); isNull {
		path = lvaluePath(bin.Left)
	} else if _, isNull := bin.Left.(*NullLiteral); isNull {
		path = lvaluePath(bin.Right)
	}
	if path == "" {
		return
	}
	if bin.Op == BinNeq {
		a.narrowed[path] = entering
	} else {
		a.narrowed[path] = !entering
	}
}

func (a *Analyzer) checkFor(n *ForStmt) {
	a.scopes.Push(false)
	defer a.scopes.Pop()
	if n.Init != nil {
		a.checkStmt(n.Init)
	}
	if n.Cond != nil {
		a.checkExpr(n.Cond)
	}
	if n.Post != nil {
		a.checkExpr(n.Post)
	}
	a.loopLabels = append(a.loopLabels, n.Label)
	a.checkStmt(n.Body)
	a.loopLabels = a.loopLabels[:len(a.loopLabels)-1]
}

func (a *Analyzer) checkReturn(n *ReturnStmt) {
	if n.Value == nil {
		if a.curReturn != nil && a.curReturn.Kind() != TypeVoid {
			a.diags.Error(a.fname, n.span, "missing return value for a function returning %s", a.curReturn)
		}
		return
	}
	vt := a.checkExpr(n.Value)
	if a.curReturn == nil {
		return
	}
	if a.curReturn.Kind() == TypeVoid {
		a.diags.Error(a.fname, n.Value.Span(), "unexpected return value in a void function")
		return
	}
	if !vt.Equals(a.curReturn) && !CanConvert(vt, a.curReturn) && !IsError(vt) {
		a.diags.Error(a.fname, n.Value.Span(), "cannot return a value of type %s from a function returning %s", vt, a.curReturn)
	}
	if ref, ok := vt.(*ReferenceType); ok {
		a.borrow.CheckRegionEscape(n.Value.Span(), ref.Region, true)
	}
}

func (a *Analyzer) checkLoopLabel(span Span, label string, kind string) {
	if label == "" {
		if len(a.loopLabels) == 0 {
			a.diags.Error(a.fname, span, "%s outside of a loop", kind)
		}
		return
	}
	for _, l := range a.loopLabels {
		if l == label {
			return
		}
	}
	a.diags.Error(a.fname, span, "%s references undeclared label %q", kind, label)
}

func (a *Analyzer) checkVarDecl(n *VarDeclStmt) {
	if n.DeclType != nil {
		n.DeclType = a.resolveNamedType(n.DeclType)
	}
	var initType Type
	if n.Init != nil {
		initType = a.checkExpr(n.Init)
	}
	switch {
	case n.DeclType != nil:
		n.Resolved = n.DeclType
		if n.Init != nil && !initType.Equals(n.Resolved) && !CanConvert(initType, n.Resolved) && !IsError(initType) {
			a.diags.Error(a.fname, n.Init.Span(), "cannot initialize %q of type %s with a value of type %s", n.Name, n.Resolved, initType)
		}
	case initType != nil:
		n.Resolved = initType
	default:
		a.diags.Error(a.fname, n.span, "cannot infer the type of %q without an initializer", n.Name)
		n.Resolved = a.errType()
	}
	sym := &Symbol{Kind: SymVar, Name: n.Name, Type: n.Resolved, Initialized: n.Init != nil, ScopeDepth: a.scopes.Depth(), VarDecl: n}
	if !a.scopes.Declare(sym) {
		a.diags.Error(a.fname, n.span, "%q is already declared in this scope", n.Name)
	}
	n.Symbol = sym
}

func (a *Analyzer) checkMatch(n *MatchStmt) {
	subjT := a.checkExpr(n.Subject)
	et, isEnum := subjT.(*EnumType)
	seen := map[string]bool{}
	hasWildcard := false
	for _, arm := range n.Arms {
		a.scopes.Push(false)
		for _, pat := range arm.Patterns {
			a.checkPattern(pat, et, isEnum, seen, &hasWildcard, n.span)
		}
		a.checkStmt(arm.Body)
		a.scopes.Pop()
	}
	if isEnum && !hasWildcard {
		for _, v := range et.Variants {
			if !seen[v.Name] {
				a.diags.Warn(a.fname, n.span, "match on %q is not exhaustive: missing variant %q", et.Name, v.Name)
			}
		}
	}
	if !isEnum && !hasWildcard {
		a.diags.Warn(a.fname, n.span, "match is possibly non-exhaustive: no wildcard arm")
	}
}

func (a *Analyzer) checkPattern(pat Pattern, et *EnumType, isEnum bool, seen map[string]bool, hasWildcard *bool, span Span) {
	switch p := pat.(type) {
	case WildcardPattern:
		*hasWildcard = true
	case VariantPattern:
		if !isEnum {
			a.diags.Error(a.fname, span, "variant pattern used against a non-enum match subject")
			return
		}
		found := false
		for _, v := range et.Variants {
			if v.Name == p.Variant {
				found = true
				break
			}
		}
		if !found {
			a.diags.Error(a.fname, span, "enum %q has no variant %q", et.Name, p.Variant)
			return
		}
		seen[p.Variant] = true
		if p.Bind != "" {
			a.scopes.Declare(&Symbol{Kind: SymVar, Name: p.Bind, Type: a.errType(), Initialized: true})
		}
	case IntLiteralPattern, IntRangePattern, CharLiteralPattern:
		// no exhaustiveness tracking for scalar patterns; checkMatch
		// warns when a non-enum match has no wildcard arm.
	}
}

func (a *Analyzer) checkStaticAssertStmtNode(n *StaticAssertStmt) {
	ce := NewConstEvaluator(a.tt, a.diags, a.fname, a.funcs)
	v, ok := ce.EvalConstExpr(n.Cond)
	if !ok {
		return
	}
	if !v.IsTruthy() {
		msg := n.Message
		if msg == "" {
			msg = "static assertion failed"
		}
		a.diags.Error(a.fname, n.span, "%s", msg)
	}
}
