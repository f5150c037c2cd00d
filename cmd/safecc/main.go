// Command safecc is the SafeC front-end/middle-end driver: it runs the
// preprocessor, lexer, parser, and semantic analyzer over a source
// file and reports diagnostics. It does not emit machine code; the
// --emit-llvm and -o flags select a textual IR stub through
// internal/backend.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/clarete/safec/internal/backend"
	safec "github.com/clarete/safec"
)

var (
	flagOutput       string
	flagEmitLLVM     bool
	flagDumpAST      bool
	flagNoSema       bool
	flagVerbose      bool
	flagIncludeDirs  []string
	flagDefines      []string
	flagCompatPP     bool
	flagFreestanding bool
	flagConfigPath   string
)

func main() {
	root := &cobra.Command{
		Use:   "safecc [file]",
		Short: "SafeC front-end and middle-end driver",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	root.Flags().StringVarP(&flagOutput, "output", "o", "", "write output to this path instead of stdout")
	root.Flags().BoolVar(&flagEmitLLVM, "emit-llvm", false, "emit the textual IR stub instead of a diagnostics report")
	root.Flags().BoolVar(&flagDumpAST, "dump-ast", false, "print the parsed (and, unless --no-sema, analyzed) AST")
	root.Flags().BoolVar(&flagNoSema, "no-sema", false, "stop after parsing; skip semantic analysis")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	root.Flags().StringArrayVarP(&flagIncludeDirs, "include", "I", nil, "add a directory to the #include search path (repeatable)")
	root.Flags().StringArrayVarP(&flagDefines, "define", "D", nil, "define NAME=VALUE for the preprocessor (repeatable)")
	root.Flags().BoolVar(&flagCompatPP, "compat-preprocessor", false, "enable function-like macros and other C-compat preprocessor extensions")
	root.Flags().BoolVar(&flagFreestanding, "freestanding", false, "compile in freestanding mode (no hosted-environment assumptions)")
	root.Flags().StringVar(&flagConfigPath, "config", "safec.toml", "path to a project configuration file")

	dumpCmd := &cobra.Command{
		Use:   "dump-ast [file]",
		Short: "parse a file and print its AST, ignoring --dump-ast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flagDumpAST = true
			return runCompile(cmd, args)
		},
	}
	root.AddCommand(dumpCmd)

	if err := root.Execute(); err != nil {
		log.Fatal(err.Error())
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := safec.LoadProjectConfig(flagConfigPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)
	logger.Debug("merged configuration", "defines", cfg.Defines, "includeDirs", cfg.IncludeDirs, "freestanding", cfg.Freestanding)

	opts := safec.DefaultCompileOptions()
	opts.Preprocessor = cfg.ToPreprocessorOptions()
	opts.Loader = safec.NewRelativeIncludeLoader(os.ReadFile)
	opts.SkipSema = flagNoSema

	result := safec.CompileSource(string(src), path, opts)

	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagOutput, err)
		}
		defer f.Close()
		out = f
	}

	if flagDumpAST {
		fmt.Fprintln(out, safec.DumpAST(result.Unit))
	}

	if flagEmitLLVM {
		emitter := backend.NewTextEmitter(backend.NullHeaderImporter{})
		ir, err := emitter.Emit(result.Unit.Name, declNames(result.Unit))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ir)
	}

	result.Diags.Print(os.Stderr)
	if !result.Success {
		logger.Error("compilation failed", "errors", result.Diags.ErrorCount())
		os.Exit(1)
	}
	logger.Debug("compilation succeeded", "file", path)
	return nil
}

func applyFlagOverrides(cfg *safec.Config) {
	if len(flagIncludeDirs) > 0 {
		cfg.IncludeDirs = append(cfg.IncludeDirs, flagIncludeDirs...)
	}
	for _, d := range flagDefines {
		name, val := d, "1"
		if i := strings.IndexByte(d, '='); i >= 0 {
			name, val = d[:i], d[i+1:]
		}
		cfg.Defines[name] = val
	}
	if flagCompatPP {
		cfg.CompatPreprocessor = true
	}
	if flagFreestanding {
		cfg.Freestanding = true
	}
}

func declNames(unit *safec.TranslationUnit) []string {
	names := make([]string, 0, len(unit.Decls))
	for _, d := range unit.Decls {
		names = append(names, safec.DeclName(d))
	}
	return names
}
