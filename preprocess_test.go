package safec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runPreprocessor(t *testing.T, src string, loader IncludeLoader) (string, *Diagnostics) {
	t.Helper()
	diags := NewDiagnostics()
	files := NewFileSet()
	pp := NewPreprocessor(DefaultPreprocessorOptions(), loader, files, diags)
	return pp.Run(src, "main.sc"), diags
}

func TestPreprocessor_PreservesLineCount(t *testing.T) {
	src := "int32 a;\n#define X 1\nint32 b = X;\n"
	out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())

	assert.Equal(t, strings.Count(src, "\n"), strings.Count(out, "\n"),
		"preprocessed output must keep one output line per input line so lexer diagnostics stay line-accurate")
}

func TestPreprocessor_DefineExpandsObjectMacro(t *testing.T) {
	out, diags := runPreprocessor(t, "#define SIZE 10\nint32 arr[SIZE];\n", NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())
	assert.Contains(t, out, "int32 arr[10];")
}

func TestPreprocessor_IfTrueKeepsBranch(t *testing.T) {
	src := "#if 1\nint32 a;\n#else\nint32 b;\n#endif\n"
	out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())
	assert.Contains(t, out, "int32 a;")
	assert.NotContains(t, out, "int32 b;")
}

func TestPreprocessor_IfFalseDropsBranch(t *testing.T) {
	src := "#if 0\nint32 a;\n#else\nint32 b;\n#endif\n"
	out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())
	assert.NotContains(t, out, "int32 a;")
	assert.Contains(t, out, "int32 b;")
}

func TestPreprocessor_IfdefAndIfndef(t *testing.T) {
	src := "#define FOO\n#ifdef FOO\nint32 a;\n#endif\n#ifndef FOO\nint32 b;\n#endif\n"
	out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())
	assert.Contains(t, out, "int32 a;")
	assert.NotContains(t, out, "int32 b;")
}

func TestPreprocessor_NestedConditionalsBalance(t *testing.T) {
	src := "#if 1\n#if 0\nint32 a;\n#else\nint32 b;\n#endif\n#endif\n"
	out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
	assert.False(t, diags.HasErrors())
	assert.NotContains(t, out, "int32 a;")
	assert.Contains(t, out, "int32 b;")
}

func TestPreprocessor_UnmatchedIfReportsError(t *testing.T) {
	_, diags := runPreprocessor(t, "#if 1\nint32 a;\n", NewInMemoryIncludeLoader())
	assert.True(t, diags.HasErrors())
}

func TestPreprocessor_ElifWithoutIfReportsError(t *testing.T) {
	_, diags := runPreprocessor(t, "#elif 1\nint32 a;\n#endif\n", NewInMemoryIncludeLoader())
	assert.True(t, diags.HasErrors())
}

func TestPreprocessor_IncludeInlinesFileContent(t *testing.T) {
	loader := NewInMemoryIncludeLoader()
	loader.Add("util.sc", []byte("int32 helper;\n"))

	out, diags := runPreprocessor(t, "#include \"util.sc\"\nint32 main_var;\n", loader)
	assert.False(t, diags.HasErrors())
	assert.Contains(t, out, "int32 helper;")
	assert.Contains(t, out, "int32 main_var;")
}

func TestPreprocessor_IfExprArithmeticAndLogic(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"1 + 1 == 2", true},
		{"(3 > 2) && (1 < 2)", true},
		{"0 || 0", false},
		{"1 << 3 == 8", true},
		{"~0 == -1", true},
	}
	for _, tt := range tests {
		src := "#if " + tt.expr + "\nint32 ok;\n#endif\n"
		out, diags := runPreprocessor(t, src, NewInMemoryIncludeLoader())
		assert.False(t, diags.HasErrors(), "expr=%s", tt.expr)
		if tt.want {
			assert.Contains(t, out, "int32 ok;", "expr=%s", tt.expr)
		} else {
			assert.NotContains(t, out, "int32 ok;", "expr=%s", tt.expr)
		}
	}
}
