package safec

// Parser is a recursive-descent, precedence-climbing parser over a
// token slice, built around a cursor plus small Peek/Advance/Expect
// primitives. Error recovery is local: expect reports a diagnostic
// without consuming the offending token, and ParseFile skips one token
// whenever a top-level declaration consumed nothing. There is no
// resynchronization at statement or declaration-start keywords.
type Parser struct {
	toks  []Token
	pos   int
	file  FileID
	fname string
	diags *Diagnostics
	tt    *typeTable
}

func NewParser(toks []Token, file FileID, fname string, diags *Diagnostics, tt *typeTable) *Parser {
	return &Parser{toks: toks, file: file, fname: fname, diags: diags, tt: tt}
}

func (p *Parser) peek() Token { return p.toks[p.pos] }

func (p *Parser) peekAt(off int) Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k TokenKind) bool { return p.peek().Kind == k }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind, what string) Token {
	if p.peek().Kind != k {
		p.errorf(p.peek().Span, "expected %s, found %q", what, p.peek().String())
		return p.peek()
	}
	return p.advance()
}

func (p *Parser) accept(k TokenKind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorf(span Span, format string, args ...any) {
	p.diags.Error(p.fname, span, format, args...)
}

// ParseFile parses a full translation unit: a sequence of top-level
// declarations.
func (p *Parser) ParseFile() []Decl {
	var decls []Decl
	for !p.at(TokEOF) {
		start := p.pos
		d := p.parseTopLevelDecl()
		if d != nil {
			decls = append(decls, d)
		}
		if p.pos == start {
			// parseTopLevelDecl made no progress; force it so we
			// don't loop forever on unrecognized input.
			p.advance()
		}
	}
	return decls
}

// parseTopLevelDecl implements the top-level grammar: an optional
// `must_use`, an optional `packed`, then a struct/union/enum/region/
// typedef/static_assert declaration, or an optional `generic<...>`
// prefix followed by the usual declaration flags, a type and a
// declarator that is either a function (`name(...)`/`Owner::name(...)`)
// or a global variable.
func (p *Parser) parseTopLevelDecl() Decl {
	mustUse := p.accept(TokKwMustUse)
	packed := p.accept(TokKwPacked)
	switch p.peek().Kind {
	case TokKwStruct, TokKwUnion:
		return p.parseStructDecl(packed)
	case TokKwEnum:
		return p.parseEnumDecl()
	case TokKwRegion:
		return p.parseRegionDecl()
	case TokKwTypedef:
		return p.parseTypedefDecl()
	case TokKwStaticAssert:
		return p.parseStaticAssertDecl()
	}
	var generics []GenericParam
	if p.accept(TokKwGeneric) {
		generics = p.parseGenericParams()
	}
	flags := p.parseDeclFlags()
	flags.MustUse = mustUse
	return p.parseFuncOrVarDecl(flags, generics)
}

func (p *Parser) parseDeclFlags() FuncFlags {
	var f FuncFlags
	for {
		switch p.peek().Kind {
		case TokKwConst:
			f.Const = true
			p.advance()
		case TokKwConsteval:
			f.Consteval = true
			p.advance()
		case TokKwInline:
			f.Inline = true
			p.advance()
		case TokKwExtern:
			f.Extern = true
			p.advance()
		case TokKwStatic:
			f.Static = true
			p.advance()
		default:
			return f
		}
	}
}

// parseGenericParams parses `<T[...][: Constraint], U...>`. A pack
// parameter is marked by a trailing `...` after its name, e.g. `<T...>`.
func (p *Parser) parseGenericParams() []GenericParam {
	if !p.accept(TokLt) {
		return nil
	}
	var params []GenericParam
	for !p.at(TokGt) && !p.at(TokEOF) {
		gp := GenericParam{Name: p.expect(TokIdent, "generic parameter name").Text}
		if p.accept(TokEllipsis) {
			gp.IsPack = true
		}
		if p.accept(TokColon) {
			gp.Constraint = p.expect(TokIdent, "constraint name").Text
		}
		params = append(params, gp)
		if !p.accept(TokComma) {
			break
		}
	}
	p.expect(TokGt, "`>`")
	return params
}

// parseOperatorName assembles `operator<op>` from the `operator`
// keyword plus the next 1-2 operator tokens that follow it.
func (p *Parser) parseOperatorName() string {
	p.advance() // `operator`
	op := p.advance()
	name := "operator" + op.String()
	if (op.Kind == TokLBracket && p.at(TokRBracket)) || (op.Kind == TokLParen && p.at(TokRParen)) {
		name += p.advance().String()
	}
	return name
}

// parseFuncOrVarDecl parses the shared declarator tail of a top-level
// declaration once any generic prefix and declaration flags have been
// consumed: a type, then a name (optionally `Owner::name` for a
// method), then either a parameter list (function) or an optional
// array suffix and initializer (global variable).
func (p *Parser) parseFuncOrVarDecl(flags FuncFlags, generics []GenericParam) Decl {
	start := p.peek().Span
	declType := p.parseType()

	var name string
	if p.at(TokKwOperator) {
		name = p.parseOperatorName()
	} else {
		name = p.expect(TokIdent, "declaration name").Text
	}

	owner := ""
	if p.accept(TokColonColon) {
		owner = name
		if p.at(TokKwOperator) {
			name = p.parseOperatorName()
		} else {
			name = p.expect(TokIdent, "method name").Text
		}
	}

	if p.at(TokLParen) {
		return p.parseFuncDeclTail(start, declType, name, owner, flags, generics)
	}
	return p.parseGlobalVarDeclTail(start, declType, name, flags)
}

func (p *Parser) parseFuncDeclTail(start Span, ret Type, name, owner string, flags FuncFlags, generics []GenericParam) *FuncDecl {
	p.expect(TokLParen, "`(`")
	var params []Param
	first := true
	for !p.at(TokRParen) && !p.at(TokEOF) {
		if !first {
			p.expect(TokComma, "`,`")
		}
		first = false
		params = append(params, p.parseParam())
	}
	p.expect(TokRParen, "`)`")
	fd := &FuncDecl{
		Name:          name,
		Params:        params,
		Return:        ret,
		GenericParams: generics,
		Flags:         flags,
		Owner:         owner,
		span:          start,
	}
	fd.Flags.Method = owner != ""
	if owner != "" && p.accept(TokKwConst) {
		fd.Flags.ConstMethod = true
	}
	if p.at(TokLBrace) {
		fd.Body = p.parseBlock()
	} else {
		p.expect(TokSemicolon, "`;`")
	}
	return fd
}

// parseParam parses `Type [...] name [array suffixes]`, the ellipsis
// marking a pack parameter sitting between the type and the name.
func (p *Parser) parseParam() Param {
	span := p.peek().Span
	typ := p.parseType()
	pack := 0
	if p.accept(TokEllipsis) {
		pack = 1
	}
	name := p.expect(TokIdent, "parameter name").Text
	typ = p.parseArraySuffixes(typ)
	return Param{Name: name, Type: typ, Span: span, PackCount: pack}
}

func (p *Parser) parseGlobalVarDeclTail(start Span, declType Type, name string, flags FuncFlags) Decl {
	declType = p.parseArraySuffixes(declType)
	var init Expr
	if p.accept(TokAssign) {
		init = p.parseExpr()
	}
	p.expect(TokSemicolon, "`;`")
	return &GlobalVarDecl{Name: name, DeclType: declType, Init: init, Const: flags.Const, Static: flags.Static, span: start}
}

func (p *Parser) parseStructDecl(packed bool) Decl {
	start := p.peek().Span
	isUnion := p.peek().Kind == TokKwUnion
	p.advance()
	name := p.expect(TokIdent, "struct name").Text
	p.expect(TokLBrace, "`{`")
	sd := &StructDecl{Name: name, Union: isUnion, Packed: packed, span: start}
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		ftyp := p.parseType()
		fname := p.expect(TokIdent, "field name").Text
		ftyp = p.parseArraySuffixes(ftyp)
		p.expect(TokSemicolon, "`;`")
		sd.Fields = append(sd.Fields, StructField{Name: fname, Type: ftyp})
	}
	p.expect(TokRBrace, "`}`")
	p.accept(TokSemicolon)
	return sd
}

func (p *Parser) parseEnumDecl() Decl {
	start := p.peek().Span
	p.advance()
	name := p.expect(TokIdent, "enum name").Text
	width := 32
	if p.accept(TokColon) {
		widthTok := p.expect(TokIdent, "backing integer type")
		switch widthTok.Text {
		case "int8", "uint8":
			width = 8
		case "int16", "uint16":
			width = 16
		case "int64", "uint64":
			width = 64
		default:
			width = 32
		}
	}
	p.expect(TokLBrace, "`{`")
	ed := &EnumDecl{Name: name, Width: width, span: start}
	next := int64(0)
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		vname := p.expect(TokIdent, "variant name").Text
		val := next
		if p.accept(TokAssign) {
			lit := p.expect(TokIntLit, "integer literal")
			val = lit.IntVal
		}
		ed.Variants = append(ed.Variants, EnumVariant{Name: vname, Value: val})
		next = val + 1
		if !p.accept(TokComma) {
			break
		}
	}
	p.expect(TokRBrace, "`}`")
	p.accept(TokSemicolon)
	return ed
}

func (p *Parser) parseRegionDecl() Decl {
	start := p.peek().Span
	p.advance()
	name := p.expect(TokIdent, "region name").Text
	rd := &RegionDecl{Name: name, span: start}
	if p.at(TokIdent) && p.peek().Text == "capacity" {
		p.advance()
		p.expect(TokColon, "`:`")
		rd.Capacity = p.parseExpr()
	}
	p.expect(TokSemicolon, "`;`")
	return rd
}

func (p *Parser) parseTypedefDecl() Decl {
	start := p.peek().Span
	p.advance()
	name := p.expect(TokIdent, "typedef name").Text
	p.expect(TokAssign, "`=`")
	typ := p.parseType()
	p.expect(TokSemicolon, "`;`")
	return &TypedefDecl{Name: name, Type: typ, span: start}
}

func (p *Parser) parseStaticAssertDecl() Decl {
	start := p.peek().Span
	p.advance()
	p.expect(TokLParen, "`(`")
	cond := p.parseExpr()
	msg := ""
	if p.accept(TokComma) {
		msg = p.expect(TokStringLit, "message string").Text
	}
	p.expect(TokRParen, "`)`")
	p.expect(TokSemicolon, "`;`")
	return &StaticAssertDecl{Cond: cond, Message: msg, span: start}
}

// ---- Types ----

var primitiveTypeKeywords = map[TokenKind]TypeKind{
	TokKwVoid: TypeVoid, TokKwBool: TypeBool, TokKwChar: TypeChar,
	TokKwInt8: TypeInt8, TokKwInt16: TypeInt16, TokKwInt32: TypeInt32, TokKwInt64: TypeInt64,
	TokKwUInt8: TypeUInt8, TokKwUInt16: TypeUInt16, TokKwUInt32: TypeUInt32, TokKwUInt64: TypeUInt64,
	TokKwFloat32: TypeFloat32, TokKwFloat64: TypeFloat64,
}

func (p *Parser) parseRegionQualifier() Region {
	switch {
	case p.at(TokIdent) && p.peek().Text == "stack":
		p.advance()
		return Region{Kind: RegionStack}
	case p.accept(TokKwStatic):
		return Region{Kind: RegionStatic}
	case p.at(TokIdent) && p.peek().Text == "heap":
		p.advance()
		return Region{Kind: RegionHeap}
	case p.at(TokIdent) && p.peek().Text == "arena":
		p.advance()
		p.expect(TokLt, "`<`")
		name := p.expect(TokIdent, "arena name").Text
		p.expect(TokGt, "`>`")
		return Region{Kind: RegionArena, Name: name}
	default:
		return Region{Kind: RegionStack}
	}
}

// parseType implements `[const] [signed|unsigned] BaseType
// Declarators`: a reference prefix (`&`/`?&` plus a region qualifier)
// or an optional-type/slice prefix is consumed first and wraps a
// recursive parseType call; otherwise a const/signed/unsigned
// qualifier run, a BaseType, and a declarator suffix of `* [const]
// [restrict]` pointer levels are parsed in sequence. Array dimensions
// are a post-name declarator, handled separately by
// parseArraySuffixes.
func (p *Parser) parseType() Type {
	switch {
	case p.accept(TokQuestionAmp):
		region := p.parseRegionQualifier()
		inner := p.parseType()
		return &ReferenceType{Base: inner, Region: region, Nullable: true}
	case p.accept(TokAmp):
		region := p.parseRegionQualifier()
		inner := p.parseType()
		return &ReferenceType{Base: inner, Region: region}
	case p.accept(TokQuestion):
		return &OptionalType{Inner: p.parseType()}
	case p.accept(TokLBracket):
		p.expect(TokRBracket, "`]`")
		return &SliceType{Element: p.parseType()}
	}

	baseConst := false
	for {
		switch p.peek().Kind {
		case TokKwConst:
			baseConst = true
			p.advance()
			continue
		case TokKwSigned, TokKwUnsigned:
			// Sign qualifiers refine the primitive kind that follows;
			// the type system only distinguishes signedness through
			// the primitive's own TypeKind, so the qualifier itself
			// carries no separate representation.
			p.advance()
			continue
		}
		break
	}

	base := p.parseBaseType()

	for p.accept(TokStar) {
		ptrConst := baseConst
		baseConst = false
		for {
			switch p.peek().Kind {
			case TokKwConst:
				ptrConst = true
				p.advance()
				continue
			case TokKwRestrict:
				// restrict is an aliasing hint with no modeled effect.
				p.advance()
				continue
			}
			break
		}
		base = &PointerType{Base: base, Const: ptrConst}
	}
	return base
}

// parseBaseType parses the BaseType alternatives: `struct N`, `enum
// N`, a tuple `(T, T, ...)`, `typeof(E)`, a function type `fn
// Ret(Params)`, a primitive keyword, or a bare identifier (a struct,
// enum, typedef or generic parameter name, resolved later).
func (p *Parser) parseBaseType() Type {
	switch {
	case p.at(TokKwStruct), p.at(TokKwUnion):
		p.advance()
		name := p.expect(TokIdent, "struct name").Text
		return p.tt.Generic(name, "")
	case p.at(TokKwEnum):
		p.advance()
		name := p.expect(TokIdent, "enum name").Text
		return p.tt.Generic(name, "")
	case p.at(TokLParen):
		p.advance()
		var elems []Type
		for !p.at(TokRParen) && !p.at(TokEOF) {
			elems = append(elems, p.parseType())
			if !p.accept(TokComma) {
				break
			}
		}
		p.expect(TokRParen, "`)`")
		return &TupleType{Elements: elems}
	case p.peek().Text == "typeof":
		p.advance()
		p.expect(TokLParen, "`(`")
		e := p.parseExpr()
		p.expect(TokRParen, "`)`")
		return &TypeofType{Expr: e}
	case p.peek().Text == "fn":
		p.advance()
		p.expect(TokLParen, "`(`")
		var params []Type
		variadic := false
		for !p.at(TokRParen) && !p.at(TokEOF) {
			if p.accept(TokEllipsis) {
				variadic = true
				break
			}
			params = append(params, p.parseType())
			if !p.accept(TokComma) {
				break
			}
		}
		p.expect(TokRParen, "`)`")
		var ret Type = p.tt.Primitive(TypeVoid)
		if p.accept(TokArrow) {
			ret = p.parseType()
		}
		return &FunctionType{Return: ret, Params: params, Variadic: variadic}
	default:
		if kind, ok := primitiveTypeKeywords[p.peek().Kind]; ok {
			p.advance()
			return p.tt.Primitive(kind)
		}
		name := p.expect(TokIdent, "type name").Text
		if p.accept(TokLt) {
			for !p.at(TokGt) && !p.at(TokEOF) {
				p.parseType()
				if !p.accept(TokComma) {
					break
				}
			}
			p.expect(TokGt, "`>`")
			// generic instantiation argument binding happens in
			// the generics monomorphization pass, not here.
		}
		return p.tt.Generic(name, "")
	}
}

// parseArraySuffixes consumes zero or more post-name `[N]` dimensions,
// C-style, building nested ArrayTypes from the outermost dimension in.
func (p *Parser) parseArraySuffixes(base Type) Type {
	if !p.at(TokLBracket) {
		return base
	}
	p.advance()
	var size *int
	if !p.at(TokRBracket) {
		n := int(p.expect(TokIntLit, "array size").IntVal)
		size = &n
	}
	p.expect(TokRBracket, "`]`")
	return &ArrayType{Element: p.parseArraySuffixes(base), Size: size}
}

// ---- Statements ----

func (p *Parser) parseBlock() *BlockStmt {
	start := p.expect(TokLBrace, "`{`").Span
	var stmts []Stmt
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(TokRBrace, "`}`")
	return &BlockStmt{Stmts: stmts, span: start}
}

// isTypeStart reports whether the token at the cursor can begin a
// type: a primitive keyword, a const/signed/unsigned qualifier, an
// explicit struct/union/enum, a reference/optional/slice prefix, or a
// contextual `typeof`/`fn`.
func (p *Parser) isTypeStart() bool {
	if _, ok := primitiveTypeKeywords[p.peek().Kind]; ok {
		return true
	}
	switch p.peek().Kind {
	case TokAmp, TokQuestionAmp, TokQuestion, TokLBracket,
		TokKwConst, TokKwSigned, TokKwUnsigned, TokKwStruct, TokKwUnion, TokKwEnum:
		return true
	}
	switch p.peek().Text {
	case "typeof", "fn":
		return true
	}
	return false
}

// looksLikeVarDecl implements the statement-start disambiguation
// heuristic: a type-keyword start, or `Ident Ident`, or `Ident *
// Ident`, begins a declaration; otherwise the token starts an
// expression statement.
func (p *Parser) looksLikeVarDecl() bool {
	if p.at(TokKwConst) || p.at(TokKwStatic) {
		return true
	}
	if p.isTypeStart() {
		return true
	}
	if p.at(TokIdent) {
		if p.peekAt(1).Kind == TokIdent {
			return true
		}
		if p.peekAt(1).Kind == TokStar && p.peekAt(2).Kind == TokIdent {
			return true
		}
	}
	return false
}

func (p *Parser) parseStmt() Stmt {
	switch p.peek().Kind {
	case TokLBrace:
		return p.parseBlock()
	case TokKwIf:
		return p.parseIfStmt()
	case TokKwWhile:
		return p.parseWhileStmt("")
	case TokKwDo:
		return p.parseDoWhileStmt("")
	case TokKwFor:
		return p.parseForStmt("")
	case TokKwReturn:
		return p.parseReturnStmt()
	case TokKwBreak:
		return p.parseBreakStmt()
	case TokKwContinue:
		return p.parseContinueStmt()
	case TokKwGoto:
		return p.parseGotoStmt()
	case TokKwUnsafe:
		return p.parseUnsafeStmt()
	case TokKwDefer:
		return p.parseDeferStmt(false)
	case TokKwErrdefer:
		return p.parseDeferStmt(true)
	case TokKwMatch:
		return p.parseMatchStmt()
	case TokKwStaticAssert:
		return p.parseStaticAssertStmt()
	case TokIdent:
		if p.peekAt(1).Kind == TokColon && p.peekAt(2).Kind != TokColon && isStmtStartKeyword(p.peekAt(2).Kind) {
			return p.parseLabelStmt()
		}
		if p.looksLikeVarDecl() {
			return p.parseVarDeclStmt()
		}
		return p.parseExprStmt()
	default:
		if p.looksLikeVarDecl() {
			return p.parseVarDeclStmt()
		}
		return p.parseExprStmt()
	}
}

func isStmtStartKeyword(k TokenKind) bool {
	switch k {
	case TokKwIf, TokKwWhile, TokKwDo, TokKwFor, TokKwReturn, TokKwBreak,
		TokKwContinue, TokKwGoto, TokKwUnsafe, TokKwDefer, TokKwErrdefer,
		TokKwMatch, TokLBrace:
		return true
	default:
		return false
	}
}

func (p *Parser) parseLabelStmt() Stmt {
	start := p.peek().Span
	name := p.advance().Text
	p.expect(TokColon, "`:`")
	var body Stmt
	switch p.peek().Kind {
	case TokKwWhile:
		body = p.parseWhileStmt(name)
	case TokKwDo:
		body = p.parseDoWhileStmt(name)
	case TokKwFor:
		body = p.parseForStmt(name)
	default:
		body = p.parseStmt()
	}
	return &LabelStmt{Name: name, Stmt: body, span: start}
}

func (p *Parser) parseIfStmt() Stmt {
	start := p.peek().Span
	p.advance()
	isConst := p.accept(TokKwConst)
	p.expect(TokLParen, "`(`")
	cond := p.parseExpr()
	p.expect(TokRParen, "`)`")
	then := p.parseStmt()
	var els Stmt
	if p.accept(TokKwElse) {
		els = p.parseStmt()
	}
	return &IfStmt{IsConst: isConst, Cond: cond, Then: then, Else: els, span: start}
}

func (p *Parser) parseWhileStmt(label string) Stmt {
	start := p.peek().Span
	p.advance()
	p.expect(TokLParen, "`(`")
	cond := p.parseExpr()
	p.expect(TokRParen, "`)`")
	body := p.parseStmt()
	return &WhileStmt{Cond: cond, Body: body, Label: label, span: start}
}

func (p *Parser) parseDoWhileStmt(label string) Stmt {
	start := p.peek().Span
	p.advance()
	body := p.parseStmt()
	p.expect(TokKwWhile, "`while`")
	p.expect(TokLParen, "`(`")
	cond := p.parseExpr()
	p.expect(TokRParen, "`)`")
	p.expect(TokSemicolon, "`;`")
	return &DoWhileStmt{Body: body, Cond: cond, Label: label, span: start}
}

func (p *Parser) parseForStmt(label string) Stmt {
	start := p.peek().Span
	p.advance()
	p.expect(TokLParen, "`(`")
	var init Stmt
	if !p.at(TokSemicolon) {
		init = p.parseForInit()
	} else {
		p.advance()
	}
	var cond Expr
	if !p.at(TokSemicolon) {
		cond = p.parseExpr()
	}
	p.expect(TokSemicolon, "`;`")
	var post Expr
	if !p.at(TokRParen) {
		post = p.parseExpr()
	}
	p.expect(TokRParen, "`)`")
	body := p.parseStmt()
	return &ForStmt{Init: init, Cond: cond, Post: post, Body: body, Label: label, span: start}
}

func (p *Parser) parseForInit() Stmt {
	if p.looksLikeVarDecl() {
		s := p.parseVarDeclStmtNoSemi()
		p.expect(TokSemicolon, "`;`")
		return s
	}
	e := p.parseExpr()
	p.expect(TokSemicolon, "`;`")
	return &ExprStmt{X: e, span: e.Span()}
}

func (p *Parser) parseReturnStmt() Stmt {
	start := p.peek().Span
	p.advance()
	var val Expr
	if !p.at(TokSemicolon) {
		val = p.parseExpr()
	}
	p.expect(TokSemicolon, "`;`")
	return &ReturnStmt{Value: val, span: start}
}

func (p *Parser) parseBreakStmt() Stmt {
	start := p.peek().Span
	p.advance()
	label := ""
	if p.at(TokIdent) {
		label = p.advance().Text
	}
	p.expect(TokSemicolon, "`;`")
	return &BreakStmt{Label: label, span: start}
}

func (p *Parser) parseContinueStmt() Stmt {
	start := p.peek().Span
	p.advance()
	label := ""
	if p.at(TokIdent) {
		label = p.advance().Text
	}
	p.expect(TokSemicolon, "`;`")
	return &ContinueStmt{Label: label, span: start}
}

func (p *Parser) parseGotoStmt() Stmt {
	start := p.peek().Span
	p.advance()
	label := p.expect(TokIdent, "label name").Text
	p.expect(TokSemicolon, "`;`")
	return &GotoStmt{Label: label, span: start}
}

func (p *Parser) parseUnsafeStmt() Stmt {
	start := p.peek().Span
	p.advance()
	return &UnsafeStmt{Body: p.parseBlock(), span: start}
}

func (p *Parser) parseDeferStmt(isErr bool) Stmt {
	start := p.peek().Span
	p.advance()
	body := p.parseStmt()
	return &DeferStmt{Body: body, IsError: isErr, span: start}
}

func (p *Parser) parseMatchStmt() Stmt {
	start := p.peek().Span
	p.advance()
	p.expect(TokLParen, "`(`")
	subj := p.parseExpr()
	p.expect(TokRParen, "`)`")
	p.expect(TokLBrace, "`{`")
	var arms []MatchArm
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		p.expect(TokKwCase, "`case`")
		var pats []Pattern
		pats = append(pats, p.parsePattern())
		for p.accept(TokPipe) {
			pats = append(pats, p.parsePattern())
		}
		p.expect(TokFatArrow, "`=>`")
		body := p.parseStmt()
		arms = append(arms, MatchArm{Patterns: pats, Body: body})
	}
	p.expect(TokRBrace, "`}`")
	return &MatchStmt{Subject: subj, Arms: arms, span: start}
}

func (p *Parser) parsePattern() Pattern {
	switch {
	case p.peek().Text == "_":
		p.advance()
		return WildcardPattern{}
	case p.at(TokCharLit):
		v := rune(p.advance().IntVal)
		return CharLiteralPattern{Value: v}
	case p.at(TokIntLit):
		lo := p.advance().IntVal
		if p.accept(TokEllipsis) {
			hi := p.expect(TokIntLit, "range end").IntVal
			return IntRangePattern{Low: lo, High: hi}
		}
		return IntLiteralPattern{Value: lo}
	case p.at(TokIdent):
		name := p.advance().Text
		if p.accept(TokColonColon) {
			variant := p.expect(TokIdent, "variant name").Text
			bind := ""
			if p.accept(TokLParen) {
				bind = p.expect(TokIdent, "binding name").Text
				p.expect(TokRParen, "`)`")
			}
			return VariantPattern{EnumName: name, Variant: variant, Bind: bind}
		}
		return VariantPattern{Variant: name}
	default:
		p.errorf(p.peek().Span, "expected pattern, found %q", p.peek().String())
		p.advance()
		return WildcardPattern{}
	}
}

func (p *Parser) parseStaticAssertStmt() Stmt {
	d := p.parseStaticAssertDecl().(*StaticAssertDecl)
	return &StaticAssertStmt{Cond: d.Cond, Message: d.Message, span: d.span}
}

func (p *Parser) parseVarDeclStmt() Stmt {
	s := p.parseVarDeclStmtNoSemi()
	p.expect(TokSemicolon, "`;`")
	return s
}

// parseVarDeclStmtNoSemi parses `[const] [static] Type name
// [array suffixes] [= init]`, C-style.
func (p *Parser) parseVarDeclStmtNoSemi() Stmt {
	start := p.peek().Span
	isConst := p.accept(TokKwConst)
	isStatic := p.accept(TokKwStatic)
	declType := p.parseType()
	name := p.expect(TokIdent, "variable name").Text
	declType = p.parseArraySuffixes(declType)
	var init Expr
	if p.accept(TokAssign) {
		init = p.parseExpr()
	}
	return &VarDeclStmt{Name: name, DeclType: declType, Init: init, Const: isConst, Static: isStatic, span: start}
}

func (p *Parser) parseExprStmt() Stmt {
	e := p.parseExpr()
	p.expect(TokSemicolon, "`;`")
	return &ExprStmt{X: e, span: e.Span()}
}

// ---- Expressions ----
//
// Precedence, loosest to tightest: assignment, ternary, ||, &&, |, ^,
// &, equality, relational, shift, additive, multiplicative, unary,
// postfix, primary.

func (p *Parser) parseExpr() Expr {
	return p.parseAssignment()
}

var assignOps = map[TokenKind]AssignKind{
	TokAssign: AssignPlain, TokPlusAssign: AssignAdd, TokMinusAssign: AssignSub,
	TokStarAssign: AssignMul, TokSlashAssign: AssignDiv, TokPercentAssign: AssignMod,
	TokAmpAssign: AssignBitAnd, TokPipeAssign: AssignBitOr, TokCaretAssign: AssignBitXor,
	TokShlAssign: AssignShl, TokShrAssign: AssignShr,
}

func (p *Parser) parseAssignment() Expr {
	lhs := p.parseTernary()
	if op, ok := assignOps[p.peek().Kind]; ok {
		span := p.peek().Span
		p.advance()
		value := p.parseAssignment()
		return &AssignExpr{exprBase: exprBase{span: span}, Op: op, LHS: lhs, Value: value}
	}
	return lhs
}

func (p *Parser) parseTernary() Expr {
	cond := p.parseLogicalOr()
	if p.accept(TokQuestion) {
		then := p.parseExpr()
		p.expect(TokColon, "`:`")
		els := p.parseAssignment()
		return &TernaryExpr{exprBase: exprBase{span: cond.Span()}, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() Expr {
	left := p.parseLogicalAnd()
	for p.at(TokOrOr) {
		span := p.advance().Span
		right := p.parseLogicalAnd()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: BinOrOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() Expr {
	left := p.parseBitOr()
	for p.at(TokAndAnd) {
		span := p.advance().Span
		right := p.parseBitOr()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: BinAndAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitOr() Expr {
	left := p.parseBitXor()
	for p.at(TokPipe) {
		span := p.advance().Span
		right := p.parseBitXor()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: BinBitOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitXor() Expr {
	left := p.parseBitAnd()
	for p.at(TokCaret) {
		span := p.advance().Span
		right := p.parseBitAnd()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: BinBitXor, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseBitAnd() Expr {
	left := p.parseEquality()
	for p.at(TokAmp) {
		span := p.advance().Span
		right := p.parseEquality()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: BinBitAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() Expr {
	left := p.parseRelational()
	for p.at(TokEq) || p.at(TokNeq) {
		op := BinEq
		if p.at(TokNeq) {
			op = BinNeq
		}
		span := p.advance().Span
		right := p.parseRelational()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
	}
	return left
}

var relOps = map[TokenKind]BinaryKind{TokLt: BinLt, TokGt: BinGt, TokLe: BinLe, TokGe: BinGe}

func (p *Parser) parseRelational() Expr {
	left := p.parseShift()
	for {
		op, ok := relOps[p.peek().Kind]
		if !ok {
			return left
		}
		span := p.advance().Span
		right := p.parseShift()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseShift() Expr {
	left := p.parseAdditive()
	for p.at(TokShl) || p.at(TokShr) {
		op := BinShl
		if p.at(TokShr) {
			op = BinShr
		}
		span := p.advance().Span
		right := p.parseAdditive()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.at(TokPlus) || p.at(TokMinus) {
		op := BinAdd
		if p.at(TokMinus) {
			op = BinSub
		}
		span := p.advance().Span
		right := p.parseMultiplicative()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.at(TokStar) || p.at(TokSlash) || p.at(TokPercent) {
		var op BinaryKind
		switch p.peek().Kind {
		case TokStar:
			op = BinMul
		case TokSlash:
			op = BinDiv
		default:
			op = BinMod
		}
		span := p.advance().Span
		right := p.parseUnary()
		left = &BinaryExpr{exprBase: exprBase{span: span}, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	switch p.peek().Kind {
	case TokMinus:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryNeg, X: p.parseUnary()}
	case TokBang:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryNot, X: p.parseUnary()}
	case TokTilde:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryBitNot, X: p.parseUnary()}
	case TokAmp:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryAddrOf, X: p.parseUnary()}
	case TokStar:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryDeref, X: p.parseUnary()}
	case TokPlusPlus:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryPreInc, X: p.parseUnary()}
	case TokMinusMinus:
		span := p.advance().Span
		return &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryPreDec, X: p.parseUnary()}
	case TokLParen:
		if p.looksLikeCast() {
			span := p.advance().Span
			target := p.parseType()
			p.expect(TokRParen, "`)`")
			return &CastExpr{exprBase: exprBase{span: span}, Target: target, X: p.parseUnary()}
		}
	}
	return p.parsePostfix()
}

// looksLikeCast disambiguates `(Type)expr` from a parenthesized
// expression by checking the token after `(`: a type name immediately
// followed by `)`, or a primitive type keyword followed by `)` or `*`.
func (p *Parser) looksLikeCast() bool {
	next := p.peekAt(1)
	if _, ok := primitiveTypeKeywords[next.Kind]; ok {
		return p.peekAt(2).Kind == TokRParen || p.peekAt(2).Kind == TokStar
	}
	if next.Kind != TokIdent {
		return false
	}
	return p.peekAt(2).Kind == TokRParen
}

func (p *Parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case TokLParen:
			span := p.advance().Span
			var args []Expr
			for !p.at(TokRParen) && !p.at(TokEOF) {
				args = append(args, p.parseExpr())
				if !p.accept(TokComma) {
					break
				}
			}
			p.expect(TokRParen, "`)`")
			x = &CallExpr{exprBase: exprBase{span: span}, Callee: x, Args: args}
		case TokLBracket:
			span := p.advance().Span
			idx := p.parseExpr()
			p.expect(TokRBracket, "`]`")
			x = &SubscriptExpr{exprBase: exprBase{span: span}, X: x, Index: idx}
		case TokDot:
			span := p.advance().Span
			field := p.expect(TokIdent, "field name").Text
			x = &MemberExpr{exprBase: exprBase{span: span}, X: x, Field: field}
		case TokArrow:
			span := p.advance().Span
			field := p.expect(TokIdent, "field name").Text
			x = &MemberExpr{exprBase: exprBase{span: span}, X: x, Field: field, IsArrow: true}
		case TokColonColon:
			span := p.advance().Span
			variant := p.expect(TokIdent, "variant name").Text
			var args []Expr
			if p.accept(TokLParen) {
				for !p.at(TokRParen) && !p.at(TokEOF) {
					args = append(args, p.parseExpr())
					if !p.accept(TokComma) {
						break
					}
				}
				p.expect(TokRParen, "`)`")
			}
			enumName := ""
			if id, ok := x.(*Ident); ok {
				enumName = id.Name
			}
			x = &TaggedUnionCtorExpr{exprBase: exprBase{span: span}, EnumName: enumName, Variant: variant, Args: args}
		case TokPlusPlus:
			span := p.advance().Span
			x = &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryPostInc, X: x}
		case TokMinusMinus:
			span := p.advance().Span
			x = &UnaryExpr{exprBase: exprBase{span: span}, Op: UnaryPostDec, X: x}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	t := p.peek()
	switch t.Kind {
	case TokIntLit:
		p.advance()
		return &IntLiteral{exprBase: exprBase{span: t.Span}, Value: t.IntVal, IsUnsigned: t.IsUnsigned, IsLongLong: t.IsLongLong}
	case TokFloatLit:
		p.advance()
		return &FloatLiteral{exprBase: exprBase{span: t.Span}, Value: t.FltVal, IsFloat32: t.IsFloat32}
	case TokBoolLit:
		p.advance()
		return &BoolLiteral{exprBase: exprBase{span: t.Span}, Value: t.Text == "true"}
	case TokCharLit:
		p.advance()
		return &CharLiteral{exprBase: exprBase{span: t.Span}, Value: rune(t.IntVal)}
	case TokStringLit:
		p.advance()
		return &StringLiteral{exprBase: exprBase{span: t.Span}, Value: t.Text}
	case TokNullLit:
		p.advance()
		return &NullLiteral{exprBase: exprBase{span: t.Span}}
	case TokIdent:
		p.advance()
		return &Ident{exprBase: exprBase{span: t.Span}, Name: t.Text}
	case TokLParen:
		p.advance()
		first := p.parseExpr()
		if p.accept(TokComma) {
			elems := []Expr{first}
			for !p.at(TokRParen) && !p.at(TokEOF) {
				elems = append(elems, p.parseExpr())
				if !p.accept(TokComma) {
					break
				}
			}
			p.expect(TokRParen, "`)`")
			return &TupleExpr{exprBase: exprBase{span: t.Span}, Elements: elems}
		}
		p.expect(TokRParen, "`)`")
		return first
	case TokLBrace:
		p.advance()
		var elems []Expr
		for !p.at(TokRBrace) && !p.at(TokEOF) {
			elems = append(elems, p.parseExpr())
			if !p.accept(TokComma) {
				break
			}
		}
		p.expect(TokRBrace, "`}`")
		return &CompoundInitExpr{exprBase: exprBase{span: t.Span}, Elements: elems}
	case TokKwSizeof:
		p.advance()
		return p.parseSizeofLike(t.Span)
	case TokKwAlignof:
		p.advance()
		p.expect(TokLParen, "`(`")
		target := p.parseType()
		p.expect(TokRParen, "`)`")
		return &AlignofExpr{exprBase: exprBase{span: t.Span}, Target: target}
	case TokKwFieldcount:
		p.advance()
		p.expect(TokLParen, "`(`")
		target := p.parseType()
		p.expect(TokRParen, "`)`")
		return &FieldcountExpr{exprBase: exprBase{span: t.Span}, Target: target}
	case TokKwTry:
		p.advance()
		return &TryExpr{exprBase: exprBase{span: t.Span}, X: p.parseUnary()}
	case TokKwNew:
		p.advance()
		p.expect(TokLt, "`<`")
		arena := p.expect(TokIdent, "arena name").Text
		p.expect(TokGt, "`>`")
		target := p.parseType()
		return &NewExpr{exprBase: exprBase{span: t.Span}, ArenaName: arena, Target: target}
	case TokKwSpawn:
		p.advance()
		p.expect(TokLParen, "`(`")
		fn := p.parseExpr()
		var arg Expr
		if p.accept(TokComma) {
			arg = p.parseExpr()
		}
		p.expect(TokRParen, "`)`")
		return &SpawnExpr{exprBase: exprBase{span: t.Span}, Fn: fn, Arg: arg}
	case TokKwJoin:
		p.advance()
		p.expect(TokLParen, "`(`")
		h := p.parseExpr()
		p.expect(TokRParen, "`)`")
		return &JoinExpr{exprBase: exprBase{span: t.Span}, Handle: h}
	case TokKwArenaReset:
		p.advance()
		p.expect(TokLParen, "`(`")
		name := p.expect(TokIdent, "arena name").Text
		p.expect(TokRParen, "`)`")
		return &ArenaResetExpr{exprBase: exprBase{span: t.Span}, ArenaName: name}
	default:
		p.errorf(t.Span, "unexpected token %q in expression", t.String())
		p.advance()
		return &ErrorExpr{exprBase: exprBase{span: t.Span}}
	}
}

func (p *Parser) parseSizeofLike(span Span) Expr {
	if p.at(TokEllipsis) {
		p.advance()
		p.expect(TokLParen, "`(`")
		name := p.expect(TokIdent, "pack name").Text
		p.expect(TokRParen, "`)`")
		return &SizeofPackExpr{exprBase: exprBase{span: span}, PackName: name}
	}
	p.expect(TokLParen, "`(`")
	if p.isTypeStart() {
		target := p.parseType()
		p.expect(TokRParen, "`)`")
		return &SizeofTypeExpr{exprBase: exprBase{span: span}, Target: target}
	}
	x := p.parseExpr()
	p.expect(TokRParen, "`)`")
	return &SizeofExprExpr{exprBase: exprBase{span: span}, X: x}
}

// ParseTranslationUnit tokenizes nothing further (the caller supplies
// already-lexed tokens) and assembles a *TranslationUnit carrying the
// parsed declaration list; the driver fills in the rest.
func (p *Parser) ParseTranslationUnit(name string) *TranslationUnit {
	decls := p.ParseFile()
	return &TranslationUnit{Name: name, Decls: decls}
}
