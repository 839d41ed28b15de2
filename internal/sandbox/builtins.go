package sandbox

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agentcore/agentcore/internal/allowlist"
)

// DefaultAliases maps the capitalized Go identifier a sandboxed program
// writes (e.g. "Arithmetic.add(1, 2)") to the module path used as the
// symbol-table and import key. These are injected ahead of every
// evaluation alongside whatever aliases a Tool Descriptor contributes
// (§4.2's alias-injection exemption), so the default modules never need an
// explicit import statement in LLM-generated code.
func DefaultAliases() map[string]string {
	return map[string]string{
		"Arithmetic": allowlist.ModArithmetic,
		"Comparison": allowlist.ModComparison,
		"Logical":    allowlist.ModLogical,
		"List":       allowlist.ModList,
		"Map":        allowlist.ModMap,
		"Set":        allowlist.ModSet,
		"Tuple":      allowlist.ModTuple,
		"Range":      allowlist.ModRange,
		"Numeric":    allowlist.ModNumeric,
		"DateTime":   allowlist.ModDateTime,
		"Base64":     allowlist.ModBase64,
		"URI":        allowlist.ModURI,
		"Regex":      allowlist.ModRegex,
		"String":     allowlist.ModString,
		"Binary":     allowlist.ModBinary,
		"Bitwise":    allowlist.ModBitwise,
		"Math":       allowlist.ModMath,
		"Inspect":    allowlist.ModInspect,
		"Random":     allowlist.ModRandom,
		"Time":       allowlist.ModTime,
		"Process":    allowlist.ModProcess,
	}
}

// DefaultSymbols returns the real Go implementations backing the default
// allowlist's exported-function surface (internal/allowlist.DefaultCatalog),
// keyed by module path and then by the lowercase function name the catalog
// declares. Tool Descriptors contribute their own entries on top of these
// under their own module path; nothing here ever grants access beyond what
// DefaultCatalog + DefaultAllowlist already authorize.
func DefaultSymbols() map[string]map[string]reflect.Value {
	return map[string]map[string]reflect.Value{
		allowlist.ModArithmetic: valuesOf(map[string]any{
			"add": func(a, b float64) float64 { return a + b },
			"sub": func(a, b float64) float64 { return a - b },
			"mul": func(a, b float64) float64 { return a * b },
			"div": func(a, b float64) (float64, error) {
				if b == 0 {
					return 0, fmt.Errorf("division by zero")
				}
				return a / b, nil
			},
			"mod": func(a, b int64) int64 { return a % b },
			"neg": func(a float64) float64 { return -a },
			"abs": func(a float64) float64 { return math.Abs(a) },
		}),
		allowlist.ModComparison: valuesOf(map[string]any{
			"eq":      func(a, b float64) bool { return a == b },
			"ne":      func(a, b float64) bool { return a != b },
			"lt":      func(a, b float64) bool { return a < b },
			"le":      func(a, b float64) bool { return a <= b },
			"gt":      func(a, b float64) bool { return a > b },
			"ge":      func(a, b float64) bool { return a >= b },
			"compare": func(a, b float64) int { return compareFloat(a, b) },
		}),
		allowlist.ModLogical: valuesOf(map[string]any{
			"and": func(a, b bool) bool { return a && b },
			"or":  func(a, b bool) bool { return a || b },
			"not": func(a bool) bool { return !a },
			"xor": func(a, b bool) bool { return a != b },
		}),
		allowlist.ModString: valuesOf(map[string]any{
			"upcase":       strings.ToUpper,
			"downcase":     strings.ToLower,
			"trim":         strings.TrimSpace,
			"split":        func(s, sep string) []string { return strings.Split(s, sep) },
			"replace":      func(s, old, new string) string { return strings.ReplaceAll(s, old, new) },
			"contains":     strings.Contains,
			"starts_with":  strings.HasPrefix,
			"ends_with":    strings.HasSuffix,
			"length":       func(s string) int { return len([]rune(s)) },
			"slice":        func(s string, start, length int) string { return sliceRunes(s, start, length) },
			"to_charlist":  func(s string) []rune { return []rune(s) },
			"pad_leading":  func(s string, width int, pad string) string { return padString(s, width, pad, true) },
			"pad_trailing": func(s string, width int, pad string) string { return padString(s, width, pad, false) },
		}),
		allowlist.ModMath: valuesOf(map[string]any{
			"sqrt": math.Sqrt,
			"pow":  math.Pow,
			"log":  math.Log,
			"exp":  math.Exp,
			"sin":  math.Sin,
			"cos":  math.Cos,
			"tan":  math.Tan,
			"pi":   func() float64 { return math.Pi },
		}),
		allowlist.ModBitwise: valuesOf(map[string]any{
			"band": func(a, b int64) int64 { return a & b },
			"bor":  func(a, b int64) int64 { return a | b },
			"bxor": func(a, b int64) int64 { return a ^ b },
			"bnot": func(a int64) int64 { return ^a },
			"bsl":  func(a int64, shift uint) int64 { return a << shift },
			"bsr":  func(a int64, shift uint) int64 { return a >> shift },
		}),
		allowlist.ModBase64: valuesOf(map[string]any{
			"encode": func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) },
			"decode": func(s string) (string, error) {
				b, err := base64.StdEncoding.DecodeString(s)
				return string(b), err
			},
		}),
		allowlist.ModURI: valuesOf(map[string]any{
			"encode": url.QueryEscape,
			"decode": url.QueryUnescape,
			"parse": func(raw string) (map[string]string, error) {
				u, err := url.Parse(raw)
				if err != nil {
					return nil, err
				}
				return map[string]string{
					"scheme": u.Scheme, "host": u.Host, "path": u.Path, "query": u.RawQuery,
				}, nil
			},
		}),
		allowlist.ModRegex: valuesOf(map[string]any{
			"compile": func(pattern string) (string, error) {
				if _, err := regexp.Compile(pattern); err != nil {
					return "", err
				}
				return pattern, nil
			},
			"match": func(pattern, s string) (bool, error) {
				return regexp.MatchString(pattern, s)
			},
			"replace": func(pattern, s, repl string) (string, error) {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return "", err
				}
				return re.ReplaceAllString(s, repl), nil
			},
			"split": func(pattern, s string) ([]string, error) {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return nil, err
				}
				return re.Split(s, -1), nil
			},
			"scan": func(pattern, s string) ([]string, error) {
				re, err := regexp.Compile(pattern)
				if err != nil {
					return nil, err
				}
				return re.FindAllString(s, -1), nil
			},
		}),
		allowlist.ModNumeric: valuesOf(map[string]any{
			"parse_int":   func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) },
			"parse_float": func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
			"to_string":   func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
			"round":       func(v float64) float64 { return math.Round(v) },
			"ceil":        func(v float64) float64 { return math.Ceil(v) },
			"floor":       func(v float64) float64 { return math.Floor(v) },
		}),
		allowlist.ModDateTime: valuesOf(map[string]any{
			"utc_now":      func() string { return time.Now().UTC().Format(time.RFC3339) },
			"to_iso8601":   func(t time.Time) string { return t.Format(time.RFC3339) },
			"from_iso8601": func(s string) (time.Time, error) { return time.Parse(time.RFC3339, s) },
			"add":          func(t time.Time, seconds int64) time.Time { return t.Add(time.Duration(seconds) * time.Second) },
			"diff":         func(a, b time.Time) int64 { return int64(a.Sub(b).Seconds()) },
		}),
		allowlist.ModInspect: valuesOf(map[string]any{
			"inspect":       inspectAny,
			"to_string":     func(v any) string { return fmt.Sprintf("%v", v) },
			"byte_size":     func(s string) int { return len(s) },
			"iodata_length": func(s string) int { return len(s) },
		}),
		allowlist.ModRandom: valuesOf(map[string]any{
			"uniform": func() float64 { return rand.Float64() },
			"seed":    func(n int64) { rand.Seed(n) },
		}),
		allowlist.ModTime: valuesOf(map[string]any{
			"monotonic": func() int64 { return time.Now().UnixNano() },
			"system":    func() int64 { return time.Now().Unix() },
		}),
		allowlist.ModProcess: valuesOf(map[string]any{
			"sleep": func(ms int64) { time.Sleep(time.Duration(ms) * time.Millisecond) },
		}),
		allowlist.ModList: valuesOf(map[string]any{
			"map":     func(xs []any, f func(any) any) []any { return mapList(xs, f) },
			"filter":  func(xs []any, f func(any) bool) []any { return filterList(xs, f) },
			"reduce":  func(xs []any, acc any, f func(any, any) any) any { return reduceList(xs, acc, f) },
			"length":  func(xs []any) int { return len(xs) },
			"reverse": reverseList,
			"sort": func(xs []any) []any {
				out := append([]any(nil), xs...)
				sort.Slice(out, func(i, j int) bool { return fmt.Sprintf("%v", out[i]) < fmt.Sprintf("%v", out[j]) })
				return out
			},
			"concat":  func(a, b []any) []any { return append(append([]any(nil), a...), b...) },
			"flatten": flattenList,
			"zip":     zipLists,
			"uniq":    uniqList,
			"first":   func(xs []any) (any, error) { return firstOf(xs) },
			"last":    func(xs []any) (any, error) { return lastOf(xs) },
			"slice":   func(xs []any, start, length int) []any { return sliceAny(xs, start, length) },
		}),
		allowlist.ModMap: valuesOf(map[string]any{
			"get": func(m map[string]any, k string) (any, bool) { v, ok := m[k]; return v, ok },
			"put": func(m map[string]any, k string, v any) map[string]any { return putMap(m, k, v) },
			"delete": func(m map[string]any, k string) map[string]any {
				out := cloneMap(m)
				delete(out, k)
				return out
			},
			"keys":    mapKeys,
			"values":  mapValues,
			"merge":   mergeMaps2,
			"has_key": func(m map[string]any, k string) bool { _, ok := m[k]; return ok },
			"to_list": mapToList,
		}),
		allowlist.ModSet: valuesOf(map[string]any{
			"new":          func(xs []any) map[any]bool { return newSet(xs) },
			"put":          func(s map[any]bool, v any) map[any]bool { out := cloneSet(s); out[v] = true; return out },
			"delete":       func(s map[any]bool, v any) map[any]bool { out := cloneSet(s); delete(out, v); return out },
			"union":        setUnion,
			"intersection": setIntersection,
			"difference":   setDifference,
			"member":       func(s map[any]bool, v any) bool { return s[v] },
		}),
		allowlist.ModTuple: valuesOf(map[string]any{
			"new":     func(xs ...any) []any { return xs },
			"to_list": func(t []any) []any { return t },
		}),
		allowlist.ModRange: valuesOf(map[string]any{
			"new":     func(start, stop int) []int { return rangeSlice(start, stop) },
			"to_list": func(r []int) []int { return r },
		}),
		allowlist.ModBinary: valuesOf(map[string]any{
			"encode": func(s string) []byte { return []byte(s) },
			"decode": func(b []byte) string { return string(b) },
			"length": func(b []byte) int { return len(b) },
			"part":   func(b []byte, start, length int) []byte { return slicePart(b, start, length) },
		}),
	}
}

func valuesOf(fns map[string]any) map[string]reflect.Value {
	out := make(map[string]reflect.Value, len(fns))
	for name, fn := range fns {
		out[name] = reflect.ValueOf(fn)
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sliceRunes(s string, start, length int) string {
	r := []rune(s)
	if start < 0 || start > len(r) {
		return ""
	}
	end := start + length
	if end > len(r) {
		end = len(r)
	}
	return string(r[start:end])
}

func padString(s string, width int, pad string, leading bool) string {
	if pad == "" {
		pad = " "
	}
	for len([]rune(s)) < width {
		if leading {
			s = pad + s
		} else {
			s = s + pad
		}
	}
	return s
}

func inspectAny(v any) string { return inspect(v) }

func mapList(xs []any, f func(any) any) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

func filterList(xs []any, f func(any) bool) []any {
	out := make([]any, 0, len(xs))
	for _, x := range xs {
		if f(x) {
			out = append(out, x)
		}
	}
	return out
}

func reduceList(xs []any, acc any, f func(any, any) any) any {
	for _, x := range xs {
		acc = f(acc, x)
	}
	return acc
}

func reverseList(xs []any) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}

func flattenList(xs []any) []any {
	var out []any
	for _, x := range xs {
		if nested, ok := x.([]any); ok {
			out = append(out, flattenList(nested)...)
		} else {
			out = append(out, x)
		}
	}
	return out
}

func zipLists(a, b []any) []any {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = []any{a[i], b[i]}
	}
	return out
}

func uniqList(xs []any) []any {
	seen := map[string]bool{}
	out := make([]any, 0, len(xs))
	for _, x := range xs {
		key := fmt.Sprintf("%v", x)
		if !seen[key] {
			seen[key] = true
			out = append(out, x)
		}
	}
	return out
}

func firstOf(xs []any) (any, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return xs[0], nil
}

func lastOf(xs []any) (any, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return xs[len(xs)-1], nil
}

func sliceAny(xs []any, start, length int) []any {
	if start < 0 || start > len(xs) {
		return nil
	}
	end := start + length
	if end > len(xs) {
		end = len(xs)
	}
	return xs[start:end]
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func putMap(m map[string]any, k string, v any) map[string]any {
	out := cloneMap(m)
	out[k] = v
	return out
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mapValues(m map[string]any) []any {
	keys := mapKeys(m)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func mergeMaps2(a, b map[string]any) map[string]any {
	out := cloneMap(a)
	for k, v := range b {
		out[k] = v
	}
	return out
}

func mapToList(m map[string]any) []any {
	keys := mapKeys(m)
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = []any{k, m[k]}
	}
	return out
}

func newSet(xs []any) map[any]bool {
	out := map[any]bool{}
	for _, x := range xs {
		out[x] = true
	}
	return out
}

func cloneSet(s map[any]bool) map[any]bool {
	out := make(map[any]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func setUnion(a, b map[any]bool) map[any]bool {
	out := cloneSet(a)
	for k := range b {
		out[k] = true
	}
	return out
}

func setIntersection(a, b map[any]bool) map[any]bool {
	out := map[any]bool{}
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func setDifference(a, b map[any]bool) map[any]bool {
	out := map[any]bool{}
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

func rangeSlice(start, stop int) []int {
	if stop < start {
		return []int{}
	}
	out := make([]int, 0, stop-start)
	for i := start; i < stop; i++ {
		out = append(out, i)
	}
	return out
}

func slicePart(b []byte, start, length int) []byte {
	if start < 0 || start > len(b) {
		return nil
	}
	end := start + length
	if end > len(b) {
		end = len(b)
	}
	return b[start:end]
}
