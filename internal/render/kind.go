package render

import (
	"fmt"
	"strings"

	"github.com/flarebyte/buildfacts/internal/literal"
)

// Kind selects the literal shape of a declaration.
type Kind int

const (
	String Kind = iota
	OptString
	Bool
	OptBool
	Int
	Int64
	StringList
	PairList
)

// Value is one fact ready to be rendered. Only the field matching Kind is
// read.
type Value struct {
	Kind    Kind
	Str     string
	OptStr  *string
	Bool    bool
	OptBool *bool
	Uint    uint64
	Int64   int64
	List    []string
	Pairs   []literal.Pair
}

// shape writes the declaration(s) of name holding v. doc is already a
// complete comment line.
type shape func(b *strings.Builder, name, doc string, v Value)

var shapes = map[Kind]shape{
	String: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "const %s = %s", name, literal.Quote(v.Str))
	},
	OptString: func(b *strings.Builder, name, doc string, v Value) {
		if e := literal.OptString(v.OptStr); e != "" {
			decl(b, doc, "var %s = %s", name, e)
			return
		}
		decl(b, doc, "var %s *string", name)
	},
	Bool: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "const %s = %s", name, literal.Bool(v.Bool))
	},
	OptBool: func(b *strings.Builder, name, doc string, v Value) {
		if e := literal.OptBool(v.OptBool); e != "" {
			decl(b, doc, "var %s = %s", name, e)
			return
		}
		decl(b, doc, "var %s *bool", name)
	},
	Int: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "const %s = %s", name, literal.Uint(v.Uint))
	},
	Int64: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "const %s int64 = %s", name, literal.Int(v.Int64))
	},
	StringList: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "var %s = %s", name, literal.StringArray(v.List))
	},
	PairList: func(b *strings.Builder, name, doc string, v Value) {
		decl(b, doc, "var %s = %s", name, literal.PairArray(v.Pairs))
		decl(b, fmt.Sprintf("// %sStr is %s joined as \"name version, ...\".", name, name),
			"const %sStr = %s", name, literal.Quote(literal.JoinPairs(v.Pairs)))
	},
}

func decl(b *strings.Builder, doc, format string, args ...any) {
	b.WriteString("\n")
	b.WriteString(doc)
	b.WriteString("\n")
	fmt.Fprintf(b, format, args...)
	b.WriteString("\n")
}
