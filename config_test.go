package safec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_RoundTripsEachScalarType(t *testing.T) {
	s := Settings{}
	s.SetBool("opt.strict", true)
	s.SetInt("opt.budget", 42)
	s.SetString("opt.target", "x86_64")

	assert.True(t, s.GetBool("opt.strict"))
	assert.Equal(t, 42, s.GetInt("opt.budget"))
	assert.Equal(t, "x86_64", s.GetString("opt.target"))
}

func TestSettings_MissingKeyReturnsZeroValue(t *testing.T) {
	s := Settings{}
	assert.False(t, s.GetBool("nope"))
	assert.Equal(t, 0, s.GetInt("nope"))
	assert.Equal(t, "", s.GetString("nope"))
}

func TestSettings_WrongTypeAccessPanics(t *testing.T) {
	s := Settings{}
	s.SetInt("opt.budget", 1)
	assert.Panics(t, func() { s.GetBool("opt.budget") })
}

func TestLoadProjectConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadProjectConfig(filepath.Join(t.TempDir(), "safec.toml"))
	assert.NoError(t, err)
	assert.NotNil(t, cfg.Defines)
	assert.False(t, cfg.Freestanding)
}

func TestLoadProjectConfig_ParsesTomlFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "safec.toml")
	body := `
freestanding = true
compat_preprocessor = true
output = "out.c"
verbose = true
include_dirs = ["vendor/include"]

[defines]
DEBUG = "1"
`
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadProjectConfig(path)
	assert.NoError(t, err)
	assert.True(t, cfg.Freestanding)
	assert.True(t, cfg.CompatPreprocessor)
	assert.Equal(t, "out.c", cfg.Output)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, []string{"vendor/include"}, cfg.IncludeDirs)
	assert.Equal(t, "1", cfg.Defines["DEBUG"])
}

func TestLoadProjectConfig_MalformedTomlReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "safec.toml")
	assert.NoError(t, os.WriteFile(path, []byte("this is not valid toml {{{"), 0o644))

	_, err := LoadProjectConfig(path)
	assert.Error(t, err)
}

func TestConfig_ToPreprocessorOptionsMergesDefinesAndIncludeDirs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CompatPreprocessor = true
	cfg.IncludeDirs = []string{"include"}
	cfg.Defines["FOO"] = "1"

	opts := cfg.ToPreprocessorOptions()
	assert.True(t, opts.CompatMode)
	assert.Equal(t, []string{"include"}, opts.IncludeDirs)
	assert.Equal(t, "1", opts.Defines["FOO"])
}
