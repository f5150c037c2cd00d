package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identExpr(name string) *Ident { return &Ident{Name: name} }

func TestLvaluePath_IdentAndMemberChain(t *testing.T) {
	assert.Equal(t, "x", lvaluePath(identExpr("x")))

	member := &MemberExpr{X: identExpr("p"), Field: "next"}
	assert.Equal(t, "p.next", lvaluePath(member))

	nested := &MemberExpr{X: member, Field: "value"}
	assert.Equal(t, "p.next.value", lvaluePath(nested))
}

func TestLvaluePath_NonLvalueReturnsEmpty(t *testing.T) {
	call := &CallExpr{Callee: identExpr("f")}
	assert.Equal(t, "", lvaluePath(call))
}

func TestBorrowChecker_ExclusiveBorrowConflict(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	u1 := &UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}
	bc.CheckBorrowExpr(u1, true)
	assert.False(t, diags.HasErrors())

	u2 := &UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}
	bc.CheckBorrowExpr(u2, true)
	assert.True(t, diags.HasErrors(), "a second exclusive borrow of the same lvalue must be rejected")
}

func TestBorrowChecker_SharedBorrowAfterExclusiveConflicts(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}, true)
	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}, false)
	assert.True(t, diags.HasErrors())
}

func TestBorrowChecker_ReleaseAtScopeEndClearsPrefix(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}, true)
	bc.ReleaseAtScopeEnd("counter")

	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("counter")}, true)
	assert.False(t, diags.HasErrors(), "releasing the borrow should allow a fresh exclusive borrow afterward")
}

func TestBorrowChecker_ReleaseAtScopeEndOnlyAffectsOwnPrefix(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("a")}, true)
	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("ab")}, true)
	bc.ReleaseAtScopeEnd("a")

	// "ab" must survive release of "a": prefix matching requires a "."
	// boundary, not a bare string-prefix match.
	bc.CheckBorrowExpr(&UnaryExpr{Op: UnaryAddrOf, X: identExpr("ab")}, true)
	assert.True(t, diags.HasErrors())
}

func TestBorrowChecker_DerefRequiresNarrowing(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")
	refType := &ReferenceType{Base: &primitiveType{kind: TypeInt32}, Region: Region{Kind: RegionHeap}, Nullable: true}

	u := &UnaryExpr{Op: UnaryDeref, X: identExpr("p")}
	bc.CheckDeref(u, refType, map[string]bool{})
	assert.True(t, diags.HasErrors(), "dereferencing an unnarrowed nullable reference must be rejected")
}

func TestBorrowChecker_DerefAllowedAfterNarrowing(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")
	refType := &ReferenceType{Base: &primitiveType{kind: TypeInt32}, Region: Region{Kind: RegionHeap}, Nullable: true}

	u := &UnaryExpr{Op: UnaryDeref, X: identExpr("p")}
	bc.CheckDeref(u, refType, map[string]bool{"p": true})
	assert.False(t, diags.HasErrors())
}

func TestBorrowChecker_DerefOfNonNullableNeedsNoNarrowing(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")
	refType := &ReferenceType{Base: &primitiveType{kind: TypeInt32}, Region: Region{Kind: RegionHeap}}

	u := &UnaryExpr{Op: UnaryDeref, X: identExpr("p")}
	bc.CheckDeref(u, refType, map[string]bool{})
	assert.False(t, diags.HasErrors())
}

func TestBorrowChecker_StackRegionEscapeRejected(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	bc.CheckRegionEscape(Span{}, Region{Kind: RegionStack}, true)
	assert.True(t, diags.HasErrors())
}

func TestBorrowChecker_HeapRegionMayEscape(t *testing.T) {
	diags := NewDiagnostics()
	bc := NewBorrowChecker(diags, "test.sc")

	bc.CheckRegionEscape(Span{}, Region{Kind: RegionHeap}, true)
	assert.False(t, diags.HasErrors())
}
