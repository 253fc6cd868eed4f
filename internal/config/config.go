package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// FileName is the configuration looked up in the build directory.
const FileName = "buildfacts.cue"

const (
	DefaultOutputPath      = "buildfacts_gen.go"
	DefaultCompiler        = "go"
	DefaultLockfile        = "go.sum"
	DefaultManifest        = "buildfacts.yaml"
	DefaultCustomTimeoutMs = 200
)

var topLevelKeys = []string{
	"configVersion",
	"output",
	"capabilities",
	"compiler",
	"docGenerator",
	"dependencies",
	"manifest",
	"custom",
}

// Output names the generated file and its package clause.
type Output struct {
	Path       string
	Package    string
	HasPackage bool
}

// Tool is an external command queried for its version banner.
type Tool struct {
	Command     string
	VersionArgs []string
	HasCommand  bool
}

// Custom holds the Lua source producing custom facts.
type Custom struct {
	Inline    string
	TimeoutMs int
	HasInline bool
}

// Config is the resolved configuration of one run.
type Config struct {
	ConfigVersion string
	// Source is the file the configuration came from, empty for defaults.
	Source       string
	Output       Output
	Capabilities facts.Capabilities
	Compiler     Tool
	DocGenerator Tool
	Lockfile     string
	Manifest     string
	Custom       Custom
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Output:        Output{Path: DefaultOutputPath},
		Capabilities:  facts.DefaultCapabilities(),
		Compiler:      Tool{Command: DefaultCompiler, VersionArgs: []string{"version"}},
		DocGenerator:  Tool{VersionArgs: []string{"version"}},
		Lockfile:      DefaultLockfile,
		Manifest:      DefaultManifest,
		Custom:        Custom{TimeoutMs: DefaultCustomTimeoutMs},
	}
}

// Discover loads dir/buildfacts.cue when it exists, else the defaults.
func Discover(dir string) (Config, error) {
	p := filepath.Join(dir, FileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Load(p)
}

// Load parses and validates a CUE configuration file. Absent fields keep
// their default.
func Load(path string) (Config, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Config{}, err
	}
	if err := requireStringField(v, "configVersion"); err != nil {
		return Config{}, err
	}
	c := Default()
	c.Source = path
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&c.ConfigVersion); err != nil {
		return Config{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if !IsSupportedConfigVersion(c.ConfigVersion) {
		return Config{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", c.ConfigVersion, SupportedConfigVersionsCSV())
	}
	if err := checkTopLevelKeys(v); err != nil {
		return Config{}, err
	}
	for _, step := range []func(cue.Value, *Config) error{
		parseOutput,
		parseCapabilities,
		parseTools,
		parseDependencies,
		parseManifest,
		parseCustom,
	} {
		if err := step(v, &c); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

func checkTopLevelKeys(v cue.Value) error {
	var m map[string]any
	if err := v.Decode(&m); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(topLevelKeys, k) {
			return fmt.Errorf("unknown config field: %s%s", k, suggestion(k, topLevelKeys))
		}
	}
	return nil
}

func parseOutput(v cue.Value, c *Config) error {
	ov := v.LookupPath(cue.ParsePath("output"))
	if !ov.Exists() {
		return nil
	}
	if s, ok, err := optionalString(ov, "path", "output.path"); err != nil {
		return err
	} else if ok {
		if strings.TrimSpace(s) == "" {
			return errors.New("invalid value for output.path: must not be empty")
		}
		c.Output.Path = s
	}
	if s, ok, err := optionalString(ov, "package", "output.package"); err != nil {
		return err
	} else if ok {
		c.Output.Package = s
		c.Output.HasPackage = true
	}
	return nil
}

func parseCapabilities(v cue.Value, c *Config) error {
	cv := v.LookupPath(cue.ParsePath("capabilities"))
	if !cv.Exists() {
		return nil
	}
	if cv.Kind() != cue.StructKind {
		return errors.New("invalid type for field: capabilities (expected struct)")
	}
	var m map[string]bool
	if err := cv.Decode(&m); err != nil {
		return fmt.Errorf("invalid value for capabilities: %v", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		capability, err := ParseCapability(k)
		if err != nil {
			return err
		}
		c.Capabilities[capability] = m[k]
	}
	return nil
}

func parseTools(v cue.Value, c *Config) error {
	for _, t := range []struct {
		name string
		dst  *Tool
	}{{"compiler", &c.Compiler}, {"docGenerator", &c.DocGenerator}} {
		tv := v.LookupPath(cue.ParsePath(t.name))
		if !tv.Exists() {
			continue
		}
		if s, ok, err := optionalString(tv, "command", t.name+".command"); err != nil {
			return err
		} else if ok && s != "" {
			t.dst.Command = s
			t.dst.HasCommand = true
		}
		av := tv.LookupPath(cue.ParsePath("versionArgs"))
		if av.Exists() {
			if av.Kind() != cue.ListKind {
				return fmt.Errorf("invalid type for field: %s.versionArgs (expected list)", t.name)
			}
			var args []string
			if err := av.Decode(&args); err != nil {
				return fmt.Errorf("invalid value for %s.versionArgs: %v", t.name, err)
			}
			t.dst.VersionArgs = args
		}
	}
	return nil
}

func parseDependencies(v cue.Value, c *Config) error {
	dv := v.LookupPath(cue.ParsePath("dependencies"))
	if !dv.Exists() {
		return nil
	}
	s, ok, err := optionalString(dv, "lockfile", "dependencies.lockfile")
	if err != nil {
		return err
	}
	if ok {
		if s == "" {
			return errors.New("invalid value for dependencies.lockfile: must not be empty")
		}
		c.Lockfile = s
	}
	return nil
}

func parseManifest(v cue.Value, c *Config) error {
	mv := v.LookupPath(cue.ParsePath("manifest"))
	if !mv.Exists() {
		return nil
	}
	if mv.Kind() != cue.StringKind {
		return errors.New("invalid type for field: manifest (expected string)")
	}
	return mv.Decode(&c.Manifest)
}

func parseCustom(v cue.Value, c *Config) error {
	cv := v.LookupPath(cue.ParsePath("custom"))
	if !cv.Exists() {
		return nil
	}
	if s, ok, err := optionalString(cv, "inline", "custom.inline"); err != nil {
		return err
	} else if ok {
		c.Custom.Inline = s
		c.Custom.HasInline = true
	}
	tv := cv.LookupPath(cue.ParsePath("timeoutMs"))
	if tv.Exists() {
		if tv.Kind() != cue.IntKind {
			return errors.New("invalid type for field: custom.timeoutMs (expected int)")
		}
		if err := tv.Decode(&c.Custom.TimeoutMs); err != nil {
			return fmt.Errorf("invalid value for custom.timeoutMs: %v", err)
		}
		if c.Custom.TimeoutMs <= 0 {
			return errors.New("invalid value for custom.timeoutMs: must be > 0")
		}
	}
	return nil
}
