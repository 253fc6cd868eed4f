// Package luafacts evaluates user scripts that compute extra facts.
//
// A script runs in a restricted gopher-lua state (base, string, table and
// math only; no file loading; math.random seeded from the package name)
// and returns a table mapping fact names to strings, booleans or numbers.
// The already collected facts are readable through the global table
// "facts".
package luafacts

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/flarebyte/buildfacts/internal/facts"
)

var (
	ErrTimeout = errors.New("sandbox timeout")
	ErrResult  = errors.New("invalid script result")
)

// Options tunes one evaluation.
type Options struct {
	Timeout time.Duration
	// Seed feeds the deterministic math.random.
	Seed string
}

// Run evaluates code and returns the facts it produced, sorted by name.
func Run(ctx context.Context, code string, globals map[string]any, opts Options) ([]facts.CustomFact, error) {
	L := newSandbox(opts.Seed)
	defer L.Close()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	L.SetContext(ctx)

	tbl := L.NewTable()
	keys := make([]string, 0, len(globals))
	for k := range globals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tbl.RawSetString(k, toLValue(L, globals[k]))
	}
	L.SetGlobal("facts", tbl)

	fn, err := L.LoadString(code)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if isTimeout(ctx, err) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return collect(ret)
}

func newSandbox(seed string) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	installDeterministicRandom(L, deterministicSeed(seed))
	return L
}

func deterministicSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func installDeterministicRandom(L *lua.LState, seed int64) {
	mathTbl, ok := L.GetGlobal("math").(*lua.LTable)
	if !ok || mathTbl == nil {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	mathTbl.RawSetString("random", L.NewFunction(func(L *lua.LState) int {
		switch L.GetTop() {
		case 0:
			L.Push(lua.LNumber(rng.Float64()))
		case 1:
			hi := L.CheckInt(1)
			if hi < 1 {
				L.ArgError(1, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(hi) + 1))
		default:
			lo, hi := L.CheckInt(1), L.CheckInt(2)
			if hi < lo {
				L.ArgError(2, "interval is empty")
				return 0
			}
			L.Push(lua.LNumber(rng.Intn(hi-lo+1) + lo))
		}
		return 1
	}))
	mathTbl.RawSetString("randomseed", L.NewFunction(func(L *lua.LState) int { return 0 }))
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "deadline")
}

func collect(ret lua.LValue) ([]facts.CustomFact, error) {
	if ret.Type() == lua.LTNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: expected a table, got %s", ErrResult, ret.Type())
	}
	var out []facts.CustomFact
	var bad error
	tbl.ForEach(func(k, v lua.LValue) {
		if bad != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok || !ValidName(string(name)) {
			bad = fmt.Errorf("%w: invalid fact name %s", ErrResult, k.String())
			return
		}
		val, err := fromLValue(v)
		if err != nil {
			bad = fmt.Errorf("%w: %s: %v", ErrResult, name, err)
			return
		}
		out = append(out, facts.CustomFact{Name: string(name), Value: val})
	})
	if bad != nil {
		return nil, bad
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ValidName reports whether "Custom"+name is a valid Go identifier.
func ValidName(name string) bool {
	return name != "" && token.IsIdentifier("Custom"+name)
}

func fromLValue(v lua.LValue) (any, error) {
	switch x := v.(type) {
	case lua.LString:
		return string(x), nil
	case lua.LBool:
		return bool(x), nil
	case lua.LNumber:
		f := float64(x)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f), nil
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", v.Type())
}

func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case *string:
		if x == nil {
			return lua.LNil
		}
		return lua.LString(*x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(float64(x))
	case int64:
		return lua.LNumber(float64(x))
	case []string:
		tbl := L.NewTable()
		for i, s := range x {
			tbl.RawSetInt(i+1, lua.LString(s))
		}
		return tbl
	default:
		return lua.LNil
	}
}
