package safec

// sema.go orchestrates the two-pass semantic analysis: a first pass
// collects every top-level name (so forward references among
// functions/structs/globals resolve regardless of declaration order)
// followed by a second pass that type-checks every body, integrating
// borrow checking, generics, and constant evaluation.
type Analyzer struct {
	tt       *typeTable
	diags    *Diagnostics
	fname    string
	scopes   *ScopeStack
	methods  *MethodRegistry
	generics *GenericCache
	structs  map[string]*StructType
	enums    map[string]*EnumType
	typedefs map[string]Type
	funcs    map[string]*FuncDecl
	regions  map[string]*RegionDecl

	curReturn  Type
	borrow     *BorrowChecker
	narrowed   map[string]bool
	loopLabels []string
	labels     map[string]bool
}

func NewAnalyzer(diags *Diagnostics, fname string) *Analyzer {
	return &Analyzer{
		tt:       newTypeTable(),
		diags:    diags,
		fname:    fname,
		scopes:   NewScopeStack(),
		methods:  NewMethodRegistry(),
		generics: NewGenericCache(),
		structs:  map[string]*StructType{},
		enums:    map[string]*EnumType{},
		typedefs: map[string]Type{},
		funcs:    map[string]*FuncDecl{},
		regions:  map[string]*RegionDecl{},
		narrowed: map[string]bool{},
		labels:   map[string]bool{},
	}
}

// Analyze runs both passes over decls and returns true iff zero
// errors were emitted.
func (a *Analyzer) Analyze(decls []Decl) bool {
	before := a.diags.ErrorCount()
	a.collect(decls)
	a.check(decls)
	a.foldGlobals(decls)
	return a.diags.ErrorCount() == before
}

// ---- pass 1: collect ----

func (a *Analyzer) collect(decls []Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *StructDecl:
			a.collectStruct(n)
		case *EnumDecl:
			a.collectEnum(n)
		case *TypedefDecl:
			a.typedefs[n.Name] = n.Type
		case *RegionDecl:
			a.regions[n.Name] = n
		case *FuncDecl:
			if n.Owner != "" {
				a.collectMethod(n)
			} else {
				a.funcs[n.Name] = n
				a.declareFuncSymbol(n)
			}
		case *GlobalVarDecl:
			a.declareGlobalSymbol(n)
		}
	}
}

func (a *Analyzer) collectStruct(n *StructDecl) {
	st := &StructType{Name: n.Name, Union: n.Union, Packed: n.Packed, Defined: true}
	for _, f := range n.Fields {
		st.Fields = append(st.Fields, StructField{Name: f.Name, Type: f.Type})
	}
	a.structs[n.Name] = st
}

// collectMethod registers an out-of-line `Owner :: name(...)` method:
// it prepends the implicit `self` receiver parameter, mangles the
// method into the flat function namespace, and records it in the
// method registry used for `x.m(args)` call resolution.
func (a *Analyzer) collectMethod(n *FuncDecl) {
	self := Param{
		Name: "self",
		Type: &ReferenceType{
			Base:   a.tt.Generic(n.Owner, ""),
			Region: Region{Kind: RegionStack},
			Mut:    !n.Flags.ConstMethod,
		},
	}
	n.Params = append([]Param{self}, n.Params...)
	mangled := MangleMethod(n.Owner, n.Name)
	a.funcs[mangled] = n
	a.methods.Register(n.Owner, n)
	a.declareMethodSymbol(n, mangled)
}

func (a *Analyzer) declareMethodSymbol(n *FuncDecl, mangled string) {
	var params []Type
	for _, p := range n.Params {
		params = append(params, p.Type)
	}
	sym := &Symbol{Kind: SymFunc, Name: mangled, Type: &FunctionType{Return: n.Return, Params: params}, FnDecl: n, Initialized: true}
	a.scopes.Global()[mangled] = sym
	n.Symbol = sym
}

func (a *Analyzer) collectEnum(n *EnumDecl) {
	et := &EnumType{Name: n.Name, Width: n.Width}
	et.Variants = append(et.Variants, n.Variants...)
	a.enums[n.Name] = et
}

func (a *Analyzer) declareFuncSymbol(n *FuncDecl) {
	var params []Type
	for _, p := range n.Params {
		params = append(params, p.Type)
	}
	sym := &Symbol{Kind: SymFunc, Name: n.Name, Type: &FunctionType{Return: n.Return, Params: params}, FnDecl: n, Initialized: true}
	a.scopes.Global()[n.Name] = sym
	n.Symbol = sym
}

func (a *Analyzer) declareGlobalSymbol(n *GlobalVarDecl) {
	sym := &Symbol{Kind: SymVar, Name: n.Name, Type: n.DeclType, Initialized: n.Init != nil}
	a.scopes.Global()[n.Name] = sym
	n.Symbol = sym
}

// resolveNamedType turns a parser-produced *GenericType placeholder
// (every bare type name parses as one, since the parser doesn't know
// yet whether `Foo` names a struct, enum, typedef, or a real generic
// parameter) into the concrete Type it actually names.
func (a *Analyzer) resolveNamedType(t Type) Type {
	g, ok := t.(*GenericType)
	if !ok {
		return substTypeDeep(t, a.resolveNamedType)
	}
	if st, ok := a.structs[g.Name]; ok {
		return st
	}
	if et, ok := a.enums[g.Name]; ok {
		return et
	}
	if td, ok := a.typedefs[g.Name]; ok {
		return a.resolveNamedType(td)
	}
	return g // a genuine generic type parameter
}

func substTypeDeep(t Type, resolve func(Type) Type) Type {
	switch n := t.(type) {
	case *PointerType:
		return &PointerType{Base: resolve(n.Base), Const: n.Const}
	case *ReferenceType:
		return &ReferenceType{Base: resolve(n.Base), Region: n.Region, Nullable: n.Nullable, Mut: n.Mut}
	case *ArrayType:
		return &ArrayType{Element: resolve(n.Element), Size: n.Size}
	case *OptionalType:
		return &OptionalType{Inner: resolve(n.Inner)}
	case *SliceType:
		return &SliceType{Element: resolve(n.Element)}
	default:
		return t
	}
}

// ---- pass 2: check ----

func (a *Analyzer) check(decls []Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *FuncDecl:
			a.checkFunc(n)
		case *StaticAssertDecl:
			a.checkStaticAssertDecl(n)
		case *GlobalVarDecl:
			a.checkGlobalVarDecl(n)
		}
	}
}

func (a *Analyzer) checkFunc(n *FuncDecl) {
	if n.Body == nil {
		return // extern declaration, nothing to check
	}
	a.curReturn = n.Return
	a.borrow = NewBorrowChecker(a.diags, a.fname)
	a.narrowed = map[string]bool{}
	a.labels = map[string]bool{}
	a.loopLabels = nil
	a.scopes.Push(false)
	defer a.scopes.Pop()
	for i := range n.Params {
		n.Params[i].Type = a.resolveNamedType(n.Params[i].Type)
		a.scopes.Declare(&Symbol{Kind: SymParam, Name: n.Params[i].Name, Type: n.Params[i].Type, Initialized: true})
	}
	a.checkStmt(n.Body)
}

func (a *Analyzer) checkStaticAssertDecl(n *StaticAssertDecl) {
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

func (a *Analyzer) checkGlobalVarDecl(n *GlobalVarDecl) {
	if n.DeclType != nil {
		n.DeclType = a.resolveNamedType(n.DeclType)
		n.Resolved = n.DeclType
	}
	if n.Init != nil {
		initType := a.checkExpr(n.Init)
		if n.Resolved == nil {
			n.Resolved = initType
		} else if !CanConvert(initType, n.Resolved) {
			a.diags.Error(a.fname, n.Init.Span(), "cannot initialize %q of type %s with a value of type %s", n.Name, n.Resolved, initType)
		}
	}
}

// foldGlobals runs after checking: every const global with an
// initializer is evaluated at compile time and, when evaluation
// succeeds, its initializer AST is rewritten to the folded literal.
// Non-const globals are left as written.
func (a *Analyzer) foldGlobals(decls []Decl) {
	ce := NewConstEvaluator(a.tt, a.diags, a.fname, a.funcs)
	for _, d := range decls {
		gv, ok := d.(*GlobalVarDecl)
		if !ok || gv.Init == nil || !gv.Const {
			continue
		}
		v, ok := ce.EvalConstExpr(gv.Init)
		if !ok {
			continue
		}
		gv.Folded = v
		gv.Init = ToLiteral(v, gv.Init.Span())
	}
}
