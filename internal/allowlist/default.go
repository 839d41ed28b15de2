package allowlist

// Default module identifiers exposed by the default allowlist (DA). These
// are the library surfaces a fresh agent gets when no agent-specific spec
// is supplied.
const (
	ModArithmetic  = "core/arithmetic"
	ModComparison  = "core/comparison"
	ModLogical     = "core/logical"
	ModList        = "core/list"
	ModMap         = "core/map"
	ModSet         = "core/set"
	ModTuple       = "core/tuple"
	ModRange       = "core/range"
	ModNumeric     = "core/numeric"
	ModDateTime    = "core/datetime"
	ModBase64      = "core/base64"
	ModURI         = "core/uri"
	ModRegex       = "core/regex"
	ModString      = "core/string"
	ModBinary      = "core/binary"
	ModBitwise     = "core/bitwise"
	ModMath        = "core/math"
	ModInspect     = "core/inspect" // restricted introspection: size/iodata/inspect/to_string
	ModRandom      = "core/random"
	ModTime        = "core/time" // monotonic/system time reads
	ModProcess     = "core/process" // sleep only; everything else is blocked by §4.2
)

// DefaultCatalog declares the exported-function surface for every module in
// the default allowlist. It deliberately omits any function that converts
// arbitrary input into a symbolic atom/interned name (blocks atom-table
// exhaustion attacks), per §4.1's explicit exclusion.
func DefaultCatalog() Catalog {
	return Catalog{
		ModArithmetic: ModuleSurface{"add": true, "sub": true, "mul": true, "div": true, "mod": true, "neg": true, "abs": true},
		ModComparison: ModuleSurface{"eq": true, "ne": true, "lt": true, "le": true, "gt": true, "ge": true, "compare": true},
		ModLogical:    ModuleSurface{"and": true, "or": true, "not": true, "xor": true},
		ModList:       ModuleSurface{"map": true, "filter": true, "reduce": true, "length": true, "reverse": true, "sort": true, "concat": true, "flatten": true, "zip": true, "uniq": true, "first": true, "last": true, "slice": true},
		ModMap:        ModuleSurface{"get": true, "put": true, "delete": true, "keys": true, "values": true, "merge": true, "has_key": true, "to_list": true},
		ModSet:        ModuleSurface{"new": true, "put": true, "delete": true, "union": true, "intersection": true, "difference": true, "member": true},
		ModTuple:      ModuleSurface{"new": true, "to_list": true},
		ModRange:      ModuleSurface{"new": true, "to_list": true},
		ModNumeric:    ModuleSurface{"parse_int": true, "parse_float": true, "to_string": true, "round": true, "ceil": true, "floor": true},
		ModDateTime:   ModuleSurface{"utc_now": true, "to_iso8601": true, "from_iso8601": true, "add": true, "diff": true},
		ModBase64:     ModuleSurface{"encode": true, "decode": true},
		ModURI:        ModuleSurface{"encode": true, "decode": true, "parse": true},
		ModRegex:      ModuleSurface{"compile": true, "match": true, "replace": true, "split": true, "scan": true},
		ModString:     ModuleSurface{"upcase": true, "downcase": true, "trim": true, "split": true, "replace": true, "contains": true, "starts_with": true, "ends_with": true, "length": true, "slice": true, "to_charlist": true, "pad_leading": true, "pad_trailing": true},
		ModBinary:     ModuleSurface{"encode": true, "decode": true, "length": true, "part": true},
		ModBitwise:    ModuleSurface{"band": true, "bor": true, "bxor": true, "bnot": true, "bsl": true, "bsr": true},
		ModMath:       ModuleSurface{"sqrt": true, "pow": true, "log": true, "exp": true, "sin": true, "cos": true, "tan": true, "pi": true},
		ModInspect:    ModuleSurface{"inspect": true, "to_string": true, "byte_size": true, "iodata_length": true},
		ModRandom:     ModuleSurface{"uniform": true, "seed": true},
		ModTime:       ModuleSurface{"monotonic": true, "system": true},
		ModProcess:    ModuleSurface{"sleep": true},
	}
}

// DefaultAllowlist returns a fresh Spec granting All on every module in the
// default allowlist.
func DefaultAllowlist() *Spec {
	s := NewSpec()
	for mod := range DefaultCatalog() {
		s.Allow(mod, PermAll())
	}
	return s
}
