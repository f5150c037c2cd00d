package safec

// borrow.go implements the region/exclusivity/nullable checks: a
// reference's region must not outlive its referent, an exclusive
// (mutable) borrow must have no other live borrow of the same
// lvalue, and a nullable reference must be checked or unwrapped
// before dereference. It runs as a single forward pass over
// statements, tracking liveness per lvalue path.

// BorrowChecker tracks, within one function body, the set of lvalue
// paths currently under an exclusive borrow.
type BorrowChecker struct {
	diags      *Diagnostics
	fname      string
	exclusive  map[string]Span // path -> span of the borrowing statement
	regionDeps map[string]Region
}

func NewBorrowChecker(diags *Diagnostics, fname string) *BorrowChecker {
	return &BorrowChecker{diags: diags, fname: fname, exclusive: map[string]Span{}, regionDeps: map[string]Region{}}
}

// lvaluePath renders an expression to a dotted path string when it is
// a simple lvalue (identifier/member chain), for use as a borrow-set
// key; returns "" for anything else. The checker only tracks simple
// paths: exclusivity is tracked per named variable or field path.
func lvaluePath(e Expr) string {
	switch n := e.(type) {
	case *Ident:
		return n.Name
	case *MemberExpr:
		base := lvaluePath(n.X)
		if base == "" {
			return ""
		}
		return base + "." + n.Field
	case *UnaryExpr:
		if n.Op == UnaryDeref {
			base := lvaluePath(n.X)
			if base == "" {
				return ""
			}
			return base + ".*"
		}
		return ""
	default:
		return ""
	}
}

// CheckBorrowExpr inspects an &expr unary node by its lvalue path. When
// mut is set the borrow is exclusive: a diagnostic is emitted if the
// same path is already exclusively borrowed, otherwise the path is
// recorded as exclusively borrowed. When mut is unset the borrow is
// shared: a diagnostic is emitted if the same path is exclusively
// borrowed, and nothing is recorded. Only identical paths conflict;
// the referent's region is not consulted.
func (bc *BorrowChecker) CheckBorrowExpr(u *UnaryExpr, mut bool) {
	path := lvaluePath(u.X)
	if path == "" {
		return
	}
	if mut {
		if span, live := bc.exclusive[path]; live {
			bc.diags.Error(bc.fname, u.Span(), "cannot take an exclusive borrow of %q: already exclusively borrowed at %s", path, span)
			return
		}
		bc.exclusive[path] = u.Span()
	} else if span, live := bc.exclusive[path]; live {
		bc.diags.Error(bc.fname, u.Span(), "cannot borrow %q: exclusively borrowed at %s", path, span)
	}
}

// ReleaseAtScopeEnd clears every exclusive borrow whose path starts
// with the given prefix, called when a block scope introducing those
// borrows closes.
func (bc *BorrowChecker) ReleaseAtScopeEnd(prefix string) {
	for path := range bc.exclusive {
		if path == prefix || (len(path) > len(prefix) && path[:len(prefix)+1] == prefix+".") {
			delete(bc.exclusive, path)
		}
	}
}

// CheckDeref inspects a dereference of a possibly-nullable reference
// or optional-qualified value, requiring the enclosing context to
// have narrowed it first: a ?&T cannot be dereferenced without a
// prior null check. narrowed is supplied by the statement walker,
// which tracks which paths have survived an `if (x != null)` or
// `match` guard in the current branch.
func (bc *BorrowChecker) CheckDeref(u *UnaryExpr, refType *ReferenceType, narrowed map[string]bool) {
	if !refType.Nullable {
		return
	}
	path := lvaluePath(u.X)
	if path != "" && narrowed[path] {
		return
	}
	bc.diags.Error(bc.fname, u.Span(), "dereferencing a nullable reference without a preceding null check")
}

// CheckRegionEscape reports an error when a stack-region reference is
// returned from the function that owns the stack frame it points
// into, or is stored into a field/variable with a strictly longer
// lifetime: no &stack reference may escape its frame.
func (bc *BorrowChecker) CheckRegionEscape(span Span, from Region, toLonger bool) {
	if from.Kind == RegionStack && toLonger {
		bc.diags.Error(bc.fname, span, "a &stack reference cannot escape its declaring function")
	}
}
