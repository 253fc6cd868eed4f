package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
)

const compilerProbe = "compiler"

const (
	EnvCompiler = "BUILDFACTS_COMPILER"
	EnvDocGen   = "BUILDFACTS_DOCGEN"
)

var (
	ErrCompilerNotFound = errors.New("compiler not found")
	ErrCompilerFailed   = errors.New("compiler version query failed")
)

func init() { Register(compilerProbe, facts.CapCompiler, compilerRunner) }

func compilerRunner(ctx context.Context, in facts.FactSet, deps Deps) (facts.FactSet, Outcome) {
	command := deps.get(EnvCompiler)
	if command == "" {
		command = deps.Config.Compiler.Command
	}
	banner, err := queryVersion(ctx, deps, command, deps.Config.Compiler.VersionArgs)
	if err != nil {
		return in, fatal(compilerProbe, err)
	}
	c := facts.Compiler{Command: command, Version: banner, VersionNumber: Unknown}
	if n, ok := ParseVersionBanner(banner); ok {
		c.VersionNumber = n
	}

	doc := deps.get(EnvDocGen)
	if doc == "" {
		doc = deps.Config.DocGenerator.Command
	}
	if doc != "" {
		docBanner, err := queryVersion(ctx, deps, doc, deps.Config.DocGenerator.VersionArgs)
		if err != nil {
			deps.Logger.Info("doc generator unavailable", "probe", compilerProbe, "command", doc, "reason", err.Error())
		} else {
			c.DocCommand = &doc
			c.DocVersion = &docBanner
		}
	}

	out := in
	out.Compiler = &c
	return out, present(compilerProbe)
}

// queryVersion runs command with args and returns the first non-empty
// line of its output.
func queryVersion(ctx context.Context, deps Deps, command string, args []string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("%w: empty command", ErrCompilerNotFound)
	}
	if _, err := deps.LookPath(command); err != nil {
		return "", fmt.Errorf("%w: %s", ErrCompilerNotFound, command)
	}
	out, err := deps.Exec(ctx, deps.Dir, command, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v", ErrCompilerFailed, command, strings.Join(args, " "), err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: %s printed nothing", ErrCompilerFailed, command)
}

// ParseVersionBanner extracts the version number from a banner such as
// "go version go1.22.3 linux/amd64" or "rustc 1.75.0 (82e1608df 2023-12-21)".
// The first word holding a dotted number wins, from its first digit on.
func ParseVersionBanner(banner string) (string, bool) {
	line, _, _ := strings.Cut(banner, "\n")
	for _, w := range strings.Fields(line) {
		w = strings.Trim(w, "(),;")
		i := strings.IndexAny(w, "0123456789")
		if i < 0 {
			continue
		}
		cand := w[i:]
		if dottedNumber(cand) {
			return cand, true
		}
	}
	return "", false
}

func dottedNumber(s string) bool {
	for i := 1; i+1 < len(s); i++ {
		if s[i] == '.' && isDigit(s[i-1]) && isDigit(s[i+1]) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
