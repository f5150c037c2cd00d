package safec

// TokenKind discriminates the token sum: literals, the
// identifier kind, ~60 keyword kinds and ~50 operator/punctuator
// kinds.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent

	// literals
	TokIntLit
	TokFloatLit
	TokBoolLit
	TokCharLit
	TokStringLit
	TokNullLit

	// keywords
	TokKwVoid
	TokKwBool
	TokKwChar
	TokKwInt8
	TokKwInt16
	TokKwInt32
	TokKwInt64
	TokKwUInt8
	TokKwUInt16
	TokKwUInt32
	TokKwUInt64
	TokKwFloat32
	TokKwFloat64
	TokKwConst
	TokKwConsteval
	TokKwInline
	TokKwExtern
	TokKwStatic
	TokKwMustUse
	TokKwStruct
	TokKwUnion
	TokKwEnum
	TokKwRegion
	TokKwTypedef
	TokKwStaticAssert
	TokKwGeneric
	TokKwIf
	TokKwElse
	TokKwWhile
	TokKwDo
	TokKwFor
	TokKwReturn
	TokKwBreak
	TokKwContinue
	TokKwGoto
	TokKwUnsafe
	TokKwDefer
	TokKwErrdefer
	TokKwMatch
	TokKwCase
	TokKwDefault
	TokKwSizeof
	TokKwAlignof
	TokKwFieldcount
	TokKwTry
	TokKwNew
	TokKwSpawn
	TokKwJoin
	TokKwSigned
	TokKwUnsigned
	TokKwRestrict
	TokKwPacked
	TokKwOperator
	TokKwArenaReset
	TokKwNullKw

	// contextual keywords (freely reusable as identifiers)
	TokKwStack
	TokKwStatic_ // arena/static region spelling collision guard
	TokKwHeap
	TokKwArena
	TokKwCapacity

	// operators / punctuators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokAssign
	TokEq
	TokNeq
	TokLt
	TokGt
	TokLe
	TokGe
	TokAndAnd
	TokOrOr
	TokShl
	TokShr
	TokPlusPlus
	TokMinusMinus
	TokPlusAssign
	TokMinusAssign
	TokStarAssign
	TokSlashAssign
	TokPercentAssign
	TokAmpAssign
	TokPipeAssign
	TokCaretAssign
	TokShlAssign
	TokShrAssign
	TokArrow     // ->
	TokFatArrow  // =>
	TokColonColon // ::
	TokQuestionAmp // ?&
	TokQuestion
	TokEllipsis // ...
	TokDot
	TokComma
	TokColon
	TokSemicolon
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokAt
)

var keywords = map[string]TokenKind{
	"void": TokKwVoid, "bool": TokKwBool, "char": TokKwChar,
	"int8": TokKwInt8, "int16": TokKwInt16, "int32": TokKwInt32, "int64": TokKwInt64,
	"uint8": TokKwUInt8, "uint16": TokKwUInt16, "uint32": TokKwUInt32, "uint64": TokKwUInt64,
	"float32": TokKwFloat32, "float64": TokKwFloat64,
	"const": TokKwConst, "consteval": TokKwConsteval, "inline": TokKwInline,
	"extern": TokKwExtern, "static": TokKwStatic, "must_use": TokKwMustUse,
	"struct": TokKwStruct, "union": TokKwUnion, "enum": TokKwEnum,
	"region": TokKwRegion, "typedef": TokKwTypedef, "static_assert": TokKwStaticAssert,
	"generic": TokKwGeneric, "if": TokKwIf, "else": TokKwElse, "while": TokKwWhile,
	"do": TokKwDo, "for": TokKwFor, "return": TokKwReturn, "break": TokKwBreak,
	"continue": TokKwContinue, "goto": TokKwGoto, "unsafe": TokKwUnsafe,
	"defer": TokKwDefer, "errdefer": TokKwErrdefer, "match": TokKwMatch,
	"case": TokKwCase, "default": TokKwDefault, "sizeof": TokKwSizeof,
	"alignof": TokKwAlignof, "fieldcount": TokKwFieldcount, "try": TokKwTry,
	"new": TokKwNew, "spawn": TokKwSpawn, "join": TokKwJoin,
	"signed": TokKwSigned, "unsigned": TokKwUnsigned, "restrict": TokKwRestrict,
	"packed": TokKwPacked, "operator": TokKwOperator,
	"true": TokBoolLit, "false": TokBoolLit, "null": TokNullLit,
}

// contextualKeywords are freely usable as plain identifiers outside a
// reference/region-qualifier position.
var contextualKeywords = map[string]TokenKind{
	"stack": TokKwStack, "heap": TokKwHeap, "arena": TokKwArena, "capacity": TokKwCapacity,
}

// Token is the discriminated union produced by the lexer: a kind, the
// literal source text, its span, and an optional numeric payload.
type Token struct {
	Kind   TokenKind
	Text   string
	Span   Span
	IntVal int64
	FltVal float64
	// IsUnsigned/IsLongLong/IsFloat32 record integer/float literal
	// suffix flags (u|U|l|L|ll|LL|f|F).
	IsUnsigned bool
	IsLongLong bool
	IsFloat32  bool
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return tokenKindNames[t.Kind]
}

var tokenKindNames = map[TokenKind]string{
	TokEOF: "<eof>", TokIdent: "<ident>",
	TokPlus: "+", TokMinus: "-", TokStar: "*", TokSlash: "/", TokPercent: "%",
	TokAmp: "&", TokPipe: "|", TokCaret: "^", TokTilde: "~", TokBang: "!",
	TokAssign: "=", TokEq: "==", TokNeq: "!=", TokLt: "<", TokGt: ">",
	TokLe: "<=", TokGe: ">=", TokAndAnd: "&&", TokOrOr: "||",
	TokShl: "<<", TokShr: ">>", TokPlusPlus: "++", TokMinusMinus: "--",
	TokArrow: "->", TokFatArrow: "=>", TokColonColon: "::", TokQuestionAmp: "?&",
	TokQuestion: "?", TokEllipsis: "...", TokDot: ".", TokComma: ",",
	TokColon: ":", TokSemicolon: ";", TokLParen: "(", TokRParen: ")",
	TokLBrace: "{", TokRBrace: "}", TokLBracket: "[", TokRBracket: "]", TokAt: "@",
}
