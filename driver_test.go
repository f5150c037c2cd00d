package safec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func compile(t *testing.T, src string) *CompileResult {
	t.Helper()
	opts := DefaultCompileOptions()
	opts.Loader = NewInMemoryIncludeLoader()
	return CompileSource(src, "test.sc", opts)
}

func TestCompileSource_StaticAssertTruePasses(t *testing.T) {
	res := compile(t, `static_assert(1 + 1 == 2, "arithmetic works");`)
	assert.True(t, res.Success)
	assert.False(t, res.Diags.HasErrors())
}

func TestCompileSource_StaticAssertFalseFails(t *testing.T) {
	res := compile(t, `static_assert(1 == 2, "never true");`)
	assert.False(t, res.Success)
	assert.True(t, res.Diags.HasErrors())
}

func TestCompileSource_StackReferenceCannotEscapeFunction(t *testing.T) {
	src := `
&stack int32 escape() {
	int32 local = 0;
	&stack int32 p = &local;
	return p;
}
`
	res := compile(t, src)
	assert.False(t, res.Success)
}

func TestCompileSource_NullableDerefWithoutCheckFails(t *testing.T) {
	src := `
int32 unchecked(?&heap int32 p) {
	return *p;
}
`
	res := compile(t, src)
	assert.False(t, res.Success)
}

func TestCompileSource_NullableDerefAfterCheckPasses(t *testing.T) {
	src := `
int32 checked(?&heap int32 p) {
	if (p != null) {
		return *p;
	}
	return 0;
}
`
	res := compile(t, src)
	assert.True(t, res.Success)
}

func TestCompileSource_GenericIdentityMonomorphizes(t *testing.T) {
	src := `
generic<T>
T identity(T x) {
	return x;
}
int32 use() {
	return identity(42);
}
`
	res := compile(t, src)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Unit.Decls)

	found := false
	for _, d := range res.Unit.Decls {
		if fn, ok := d.(*FuncDecl); ok && fn.Name == "__safec_identity_int32" {
			found = true
		}
	}
	assert.True(t, found, "monomorphizing identity(42) should add a concrete __safec_identity_int32 instantiation to the unit")
}

func TestCompileSource_ExclusiveBorrowConflictReported(t *testing.T) {
	src := `
void f() {
	int32 counter = 0;
	&stack int32 a = &counter;
	&stack int32 b = &counter;
}
`
	res := compile(t, src)
	assert.False(t, res.Success)
}

func TestCompileSource_PreprocessorConditionalSelectsBranch(t *testing.T) {
	src := "#define DEBUG 1\n#if DEBUG\nstatic_assert(1 == 1, \"debug branch\");\n#else\nstatic_assert(0 == 1, \"release branch\");\n#endif\n"
	res := compile(t, src)
	assert.True(t, res.Success)
}

func TestCompileSource_SkipSemaStopsAfterParsing(t *testing.T) {
	opts := DefaultCompileOptions()
	opts.Loader = NewInMemoryIncludeLoader()
	opts.SkipSema = true

	res := CompileSource(`static_assert(1 == 2, "would fail sema");`, "test.sc", opts)
	assert.True(t, res.Success, "skipping sema must not run the const-eval pass that would otherwise fail this assertion")
}
