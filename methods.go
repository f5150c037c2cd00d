package safec

import "fmt"

// methods.go implements the method registry and the `x.m(args)` ->
// direct-call rewrite: a second pass that rewrites call sites once
// the full symbol table is known.

// MangleMethod produces the link name for a method, following the
// `Owner_m` convention.
func MangleMethod(owner, name string) string {
	return owner + "_" + name
}

// MethodRegistry maps (struct name, method name) to the declaring
// FuncDecl, collected during the first analysis pass.
type MethodRegistry struct {
	methods map[string]map[string]*FuncDecl
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: map[string]map[string]*FuncDecl{}}
}

func (r *MethodRegistry) Register(owner string, fn *FuncDecl) {
	if r.methods[owner] == nil {
		r.methods[owner] = map[string]*FuncDecl{}
	}
	r.methods[owner][fn.Name] = fn
}

func (r *MethodRegistry) Lookup(owner, name string) (*FuncDecl, bool) {
	m, ok := r.methods[owner]
	if !ok {
		return nil, false
	}
	fn, ok := m[name]
	return fn, ok
}

// ResolveMethodCall rewrites `base.name(args)` into a direct call of
// the mangled method function, synthesizing the implicit `self`
// argument from base. It reports a diagnostic and returns false if
// ownerType has no such method, or if a non-const method is called
// through a `const` reference/value.
func (r *MethodRegistry) ResolveMethodCall(diags *Diagnostics, fname string, call *CallExpr, base Expr, ownerName string, baseIsConst bool) bool {
	member, ok := call.Callee.(*MemberExpr)
	if !ok {
		return false
	}
	fn, ok := r.Lookup(ownerName, member.Field)
	if !ok {
		diags.Error(fname, call.Span(), "struct %q has no method %q", ownerName, member.Field)
		return false
	}
	if baseIsConst && !fn.Flags.ConstMethod {
		diags.Error(fname, call.Span(), "cannot call non-const method %q through a const reference", member.Field)
		return false
	}
	call.MethodBase = base
	call.Resolved = fn
	call.Callee = &Ident{exprBase: exprBase{span: member.Span()}, Name: MangleMethod(ownerName, member.Field), ResolvedFn: fn}
	return true
}

func (r *MethodRegistry) String() string {
	return fmt.Sprintf("MethodRegistry{%d owners}", len(r.methods))
}
