package safec

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// config.go provides a dynamic settings map (Settings) alongside the
// fixed option set a SafeC invocation actually needs: preprocessor
// defines/include paths and the freestanding/compat-preprocessor
// toggles, loadable either from CLI flags or from a project-level
// safec.toml.

type cfgValType int

const (
	cfgValUndefined cfgValType = iota
	cfgValBool
	cfgValInt
	cfgValString
)

func (vt cfgValType) String() string {
	switch vt {
	case cfgValBool:
		return "bool"
	case cfgValInt:
		return "int"
	case cfgValString:
		return "string"
	default:
		return "undefined"
	}
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve %s from a %s setting", vt, v.typ))
	}
}

// Settings is a path-keyed bag of scalar configuration values, used
// for the handful of knobs that don't warrant their own struct field
// (future -X style extension flags).
type Settings map[string]*cfgVal

func (s Settings) SetBool(path string, v bool) { s[path] = &cfgVal{typ: cfgValBool, asBool: v} }
func (s Settings) SetInt(path string, v int)    { s[path] = &cfgVal{typ: cfgValInt, asInt: v} }
func (s Settings) SetString(path string, v string) {
	s[path] = &cfgVal{typ: cfgValString, asString: v}
}

func (s Settings) GetBool(path string) bool {
	if v, ok := s[path]; ok {
		v.checkType(cfgValBool)
		return v.asBool
	}
	return false
}

func (s Settings) GetInt(path string) int {
	if v, ok := s[path]; ok {
		v.checkType(cfgValInt)
		return v.asInt
	}
	return 0
}

func (s Settings) GetString(path string) string {
	if v, ok := s[path]; ok {
		v.checkType(cfgValString)
		return v.asString
	}
	return ""
}

// Config is the merged result of command-line flags and an optional
// safec.toml project file. TOML values are overridden by any flag the
// user passed explicitly.
type Config struct {
	Defines            map[string]string `toml:"defines"`
	IncludeDirs        []string          `toml:"include_dirs"`
	Freestanding       bool              `toml:"freestanding"`
	CompatPreprocessor bool              `toml:"compat_preprocessor"`
	Output             string            `toml:"output"`
	Verbose            bool              `toml:"verbose"`

	Extra Settings `toml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Defines: map[string]string{},
		Extra:   Settings{},
	}
}

// tomlConfig mirrors Config's TOML-facing shape; kept separate so
// Config.Extra (a runtime-only bag) never needs toml struct tags of
// its own.
type tomlConfig struct {
	Defines            map[string]string `toml:"defines"`
	IncludeDirs        []string          `toml:"include_dirs"`
	Freestanding       bool              `toml:"freestanding"`
	CompatPreprocessor bool              `toml:"compat_preprocessor"`
	Output             string            `toml:"output"`
	Verbose            bool              `toml:"verbose"`
}

// LoadProjectConfig reads a safec.toml file at path, merging it onto a
// freshly defaulted Config. A missing file is not an error: SafeC runs
// fine from flags alone.
func LoadProjectConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if tc.Defines != nil {
		cfg.Defines = tc.Defines
	}
	cfg.IncludeDirs = tc.IncludeDirs
	cfg.Freestanding = tc.Freestanding
	cfg.CompatPreprocessor = tc.CompatPreprocessor
	cfg.Output = tc.Output
	cfg.Verbose = tc.Verbose
	return cfg, nil
}

// ToPreprocessorOptions projects the merged Config onto the narrower
// options struct the preprocessor itself consumes.
func (c *Config) ToPreprocessorOptions() PreprocessorOptions {
	opts := DefaultPreprocessorOptions()
	opts.CompatMode = c.CompatPreprocessor
	opts.IncludeDirs = c.IncludeDirs
	for k, v := range c.Defines {
		opts.Defines[k] = v
	}
	return opts
}
