package probe

import (
	"runtime"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// Unknown stands in for any triple component or property that cannot be
// derived.
const Unknown = "unknown"

type archInfo struct {
	pointerWidth string
	endian       string
}

var archTable = map[string]archInfo{
	"x86_64":      {"64", "little"},
	"amd64":       {"64", "little"},
	"i686":        {"32", "little"},
	"i386":        {"32", "little"},
	"386":         {"32", "little"},
	"aarch64":     {"64", "little"},
	"arm64":       {"64", "little"},
	"arm":         {"32", "little"},
	"armv7":       {"32", "little"},
	"mips":        {"32", "big"},
	"mipsel":      {"32", "little"},
	"mipsle":      {"32", "little"},
	"mips64":      {"64", "big"},
	"mips64el":    {"64", "little"},
	"mips64le":    {"64", "little"},
	"ppc64":       {"64", "big"},
	"powerpc64":   {"64", "big"},
	"ppc64le":     {"64", "little"},
	"powerpc64le": {"64", "little"},
	"riscv64":     {"64", "little"},
	"s390x":       {"64", "big"},
	"wasm":        {"32", "little"},
	"wasm32":      {"32", "little"},
	"loong64":     {"64", "little"},
}

// ParseTriple splits "arch-vendor-os[-env]". Missing components become
// Unknown; extra components are kept in the env part.
func ParseTriple(triple string) (arch, vendor, os, env string) {
	parts := strings.SplitN(triple, "-", 4)
	get := func(i int) string {
		if i < len(parts) && parts[i] != "" {
			return parts[i]
		}
		return Unknown
	}
	return get(0), get(1), get(2), get(3)
}

// FamilyFor maps an OS component to its family.
func FamilyFor(os string) string {
	switch os {
	case "windows":
		return "windows"
	case "js", "wasip1":
		return "wasm"
	}
	return "unix"
}

// DescribeTarget derives the target facts of triple. Explicit cfg values
// from the environment win over derived ones.
func DescribeTarget(triple, host string, env Env) facts.Target {
	arch, vendor, os, abi := ParseTriple(triple)
	t := facts.Target{
		Triple: triple,
		Host:   host,
		Arch:   arch,
		Vendor: vendor,
		OS:     os,
		Env:    abi,
	}
	override := func(dst *string, key string) {
		if v, ok := env(key); ok && v != "" {
			*dst = v
		}
	}
	override(&t.Arch, "BUILDFACTS_CFG_TARGET_ARCH")
	override(&t.OS, "BUILDFACTS_CFG_TARGET_OS")
	override(&t.Env, "BUILDFACTS_CFG_TARGET_ENV")

	t.Family = FamilyFor(t.OS)
	t.PointerWidth, t.Endian = Unknown, Unknown
	if info, ok := archTable[t.Arch]; ok {
		t.PointerWidth, t.Endian = info.pointerWidth, info.endian
	}
	override(&t.Family, "BUILDFACTS_CFG_TARGET_FAMILY")
	override(&t.Endian, "BUILDFACTS_CFG_TARGET_ENDIAN")
	override(&t.PointerWidth, "BUILDFACTS_CFG_TARGET_POINTER_WIDTH")
	t.Unix = t.Family == "unix"
	return t
}

// goTriple builds "<arch>-unknown-<os>" from Go's platform names.
func goTriple(arch, os string) string {
	return arch + "-" + Unknown + "-" + os
}

func hostTriple() string { return goTriple(runtime.GOARCH, runtime.GOOS) }
