// Package render turns a FactSet into Go source.
//
// Every fact becomes one exported declaration whose literal shape depends
// on its Kind. The output contains nothing but the facts: identical
// FactSets render to identical bytes.
package render

import (
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strings"

	"github.com/flarebyte/buildfacts/internal/facts"
)

// Header is the first line of every generated file.
const Header = "// Code generated by buildfacts. DO NOT EDIT."

var ErrPackageName = errors.New("invalid package name")

// Render returns the gofmt-formatted source of a file in package pkg.
func Render(fs facts.FactSet, pkg string) ([]byte, error) {
	if !token.IsIdentifier(pkg) || pkg == "_" {
		return nil, fmt.Errorf("%w: %q", ErrPackageName, pkg)
	}
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\npackage ")
	b.WriteString(pkg)
	b.WriteString("\n")

	for _, d := range declarations {
		if !fs.Enabled(d.gate) {
			continue
		}
		v, ok := d.value(fs)
		if !ok {
			continue
		}
		shapes[v.Kind](&b, d.name, "// "+d.name+" "+d.doc, v)
	}
	if fs.Enabled(facts.CapCustom) {
		for _, c := range fs.SortedCustom() {
			v, ok := customValue(c.Value)
			if !ok {
				return nil, fmt.Errorf("custom fact %s: unsupported value %T", c.Name, c.Value)
			}
			name := "Custom" + c.Name
			shapes[v.Kind](&b, name, "// "+name+" is a custom fact.", v)
		}
	}

	out, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}
