package safec

import (
	"fmt"
	"strings"
)

// ast_printer.go renders a TranslationUnit's declarations as an
// indented tree for --dump-ast: one switch over every node kind
// emitting a branch line per child, without an ANSI theme, since
// --dump-ast output is typically piped rather than read on a
// terminal.

// DeclName returns a short label identifying d, used by the CLI when
// listing a translation unit's top-level declarations.
func DeclName(d Decl) string {
	switch n := d.(type) {
	case *FuncDecl:
		if n.Owner != "" {
			return n.Owner + "." + n.Name
		}
		return n.Name
	case *StructDecl:
		return "struct " + n.Name
	case *EnumDecl:
		return "enum " + n.Name
	case *RegionDecl:
		return "region " + n.Name
	case *TypedefDecl:
		return "typedef " + n.Name
	case *GlobalVarDecl:
		return n.Name
	case *StaticAssertDecl:
		return "static_assert"
	default:
		return "?decl"
	}
}

// DumpAST renders every declaration in unit as one indented tree.
func DumpAST(unit *TranslationUnit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TranslationUnit %s\n", unit.Name)
	for i, d := range unit.Decls {
		last := i == len(unit.Decls)-1
		printDecl(&sb, d, "", last)
	}
	return sb.String()
}

func branch(last bool) (string, string) {
	if last {
		return "└── ", "    "
	}
	return "├── ", "│   "
}

func printDecl(sb *strings.Builder, d Decl, prefix string, last bool) {
	b, cont := branch(last)
	switch n := d.(type) {
	case *FuncDecl:
		fmt.Fprintf(sb, "%s%sFunc %s -> %s\n", prefix, b, n.Name, safeTypeString(n.Return))
		if n.Body != nil {
			printStmt(sb, n.Body, prefix+cont, true)
		}
	case *StructDecl:
		fmt.Fprintf(sb, "%s%sStruct %s (%d fields)\n", prefix, b, n.Name, len(n.Fields))
	case *EnumDecl:
		fmt.Fprintf(sb, "%s%sEnum %s (%d variants)\n", prefix, b, n.Name, len(n.Variants))
	case *RegionDecl:
		fmt.Fprintf(sb, "%s%sRegion %s\n", prefix, b, n.Name)
	case *TypedefDecl:
		fmt.Fprintf(sb, "%s%sTypedef %s = %s\n", prefix, b, n.Name, safeTypeString(n.Type))
	case *GlobalVarDecl:
		fmt.Fprintf(sb, "%s%sGlobal %s\n", prefix, b, n.Name)
	case *StaticAssertDecl:
		fmt.Fprintf(sb, "%s%sStaticAssert\n", prefix, b)
	default:
		fmt.Fprintf(sb, "%s%s?decl\n", prefix, b)
	}
}

func safeTypeString(t Type) string {
	if t == nil {
		return "<inferred>"
	}
	return t.String()
}

func printStmt(sb *strings.Builder, s Stmt, prefix string, last bool) {
	b, cont := branch(last)
	switch n := s.(type) {
	case *BlockStmt:
		fmt.Fprintf(sb, "%s%sBlock (%d stmts)\n", prefix, b, len(n.Stmts))
		for i, inner := range n.Stmts {
			printStmt(sb, inner, prefix+cont, i == len(n.Stmts)-1)
		}
	case *ExprStmt:
		fmt.Fprintf(sb, "%s%sExprStmt\n", prefix, b)
	case *IfStmt:
		fmt.Fprintf(sb, "%s%sIf\n", prefix, b)
		printStmt(sb, n.Then, prefix+cont, n.Else == nil)
		if n.Else != nil {
			printStmt(sb, n.Else, prefix+cont, true)
		}
	case *WhileStmt:
		fmt.Fprintf(sb, "%s%sWhile\n", prefix, b)
		printStmt(sb, n.Body, prefix+cont, true)
	case *ForStmt:
		fmt.Fprintf(sb, "%s%sFor\n", prefix, b)
		printStmt(sb, n.Body, prefix+cont, true)
	case *ReturnStmt:
		fmt.Fprintf(sb, "%s%sReturn\n", prefix, b)
	case *VarDeclStmt:
		fmt.Fprintf(sb, "%s%sVarDecl %s\n", prefix, b, n.Name)
	case *MatchStmt:
		fmt.Fprintf(sb, "%s%sMatch (%d arms)\n", prefix, b, len(n.Arms))
	default:
		fmt.Fprintf(sb, "%s%s?stmt\n", prefix, b)
	}
}
