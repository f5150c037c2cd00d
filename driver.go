package safec

// driver.go wires the pipeline end to end: preprocess, lex, parse,
// analyze, stringing load -> parse -> analyze behind one function so
// cmd/ only ever calls a single exported entry point.

// TranslationUnit is the result of compiling one source file through
// the front end and middle end: a name (for diagnostics) plus the
// final declaration list, which after analysis also contains every
// monomorphized generic instantiation reached from this file, each
// instantiation becoming a sibling top-level declaration.
type TranslationUnit struct {
	Name  string
	Decls []Decl
}

// CompileOptions configures one run of CompileSource.
type CompileOptions struct {
	Preprocessor PreprocessorOptions
	Loader       IncludeLoader
	SkipSema     bool
}

func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Preprocessor: DefaultPreprocessorOptions(),
		Loader:       NewInMemoryIncludeLoader(),
	}
}

// CompileResult carries everything a caller (the CLI, a test, an
// eventual backend) needs after one compile: the translation unit,
// the diagnostics sink, and whether compilation succeeded overall.
type CompileResult struct {
	Unit    *TranslationUnit
	Diags   *Diagnostics
	Success bool
}

// CompileSource runs the full front end and middle end over source
// text from a single named file: preprocess, lex, parse, then (unless
// SkipSema) run semantic analysis, generic monomorphization, and
// constant folding. Success iff zero diagnostics of Error severity or
// worse were ever emitted.
func CompileSource(source, fname string, opts CompileOptions) *CompileResult {
	diags := NewDiagnostics()
	files := NewFileSet()
	fileID := files.Intern(fname)

	pp := NewPreprocessor(opts.Preprocessor, opts.Loader, files, diags)
	preprocessed := pp.Run(source, fname)

	lexer := NewLexer(preprocessed, fileID, fname, diags)
	toks := lexer.Tokenize()

	tt := newTypeTable()
	parser := NewParser(toks, fileID, fname, diags, tt)
	unit := parser.ParseTranslationUnit(fname)

	if opts.SkipSema {
		return &CompileResult{Unit: unit, Diags: diags, Success: !diags.HasErrors()}
	}

	analyzer := NewAnalyzer(diags, fname)
	analyzer.tt = tt
	ok := analyzer.Analyze(unit.Decls)
	for _, inst := range analyzer.generics.All() {
		unit.Decls = append(unit.Decls, inst.Func)
	}

	return &CompileResult{Unit: unit, Diags: diags, Success: ok && !diags.HasErrors()}
}
