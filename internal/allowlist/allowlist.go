// Package allowlist implements the composable module/function permission
// model that authorizes calls inside the sandbox (C1). It decides whether a
// call (module, function, arity) may proceed; arity is carried through the
// decision but the default procedure ignores it, matching the source
// behavior (see Decide).
package allowlist

// Decision is the outcome of authorizing a single call.
type Decision string

const (
	Allowed    Decision = "allowed"
	Restricted Decision = "restricted"
)

// Permission is the per-module grant. Exactly one of the three shapes
// applies; any other shape is treated as Restricted by Decide.
type Permission struct {
	// All grants every exported function of the module.
	All bool

	// Only restricts the grant to this set of function names. Nil/empty
	// means "no Only set is configured" -- callers distinguish All vs Only
	// vs Except via the kind field below, not via zero values, so an empty
	// Only set still means "nothing is allowed".
	Only map[string]bool

	// Except grants every exported function except this set. An empty
	// Except set is equivalent to All.
	Except map[string]bool

	kind permKind
}

type permKind int

const (
	kindUnset permKind = iota
	kindAll
	kindOnly
	kindExcept
)

// PermAll grants every exported function of a module.
func PermAll() Permission { return Permission{All: true, kind: kindAll} }

// PermOnly grants exactly the named functions.
func PermOnly(fns ...string) Permission {
	set := make(map[string]bool, len(fns))
	for _, f := range fns {
		set[f] = true
	}
	return Permission{Only: set, kind: kindOnly}
}

// PermExcept grants every exported function except the named ones.
func PermExcept(fns ...string) Permission {
	set := make(map[string]bool, len(fns))
	for _, f := range fns {
		set[f] = true
	}
	return Permission{Except: set, kind: kindExcept}
}

// ModuleSurface is the public-surface registry for a single module: the set
// of function names the target language actually exports. §9's open
// question ("exported" vs "defined") is resolved here by requiring each
// tool/module author to declare this explicitly rather than relying on
// language-native reflection.
type ModuleSurface map[string]bool

// Catalog maps module identifiers to their declared exported-function
// surface. It is supplied once per process (built from the tool catalog and
// the default library modules) and shared read-only by every Spec.
type Catalog map[string]ModuleSurface

// Exported reports whether fn is an exported function of module according
// to the catalog. An unknown module has no surface and nothing is exported.
func (c Catalog) Exported(module, fn string) bool {
	surface, ok := c[module]
	if !ok {
		return false
	}
	return surface[fn]
}

// Spec is a composable allowlist specification: a map from module
// identifier to Permission, optionally extending a base Spec.
//
// Composition is at module granularity: Entries() fully overrides a
// module's permission in the merged result; function sets are never unioned
// across parent and child for the same module.
type Spec struct {
	entries map[string]Permission
	base    *Spec
}

// NewSpec creates an empty allowlist spec with no base.
func NewSpec() *Spec {
	return &Spec{entries: make(map[string]Permission)}
}

// Extend creates a child spec whose merged view layers on top of base.
func Extend(base *Spec) *Spec {
	return &Spec{entries: make(map[string]Permission), base: base}
}

// Allow sets (overrides) the permission for module in this spec's own
// entries, independent of any base.
func (s *Spec) Allow(module string, perm Permission) *Spec {
	s.entries[module] = perm
	return s
}

// spec materializes the merged module -> Permission map on demand: base
// entries first, then this spec's own entries replacing per-module.
func (s *Spec) spec() map[string]Permission {
	merged := make(map[string]Permission)
	if s.base != nil {
		for m, p := range s.base.spec() {
			merged[m] = p
		}
	}
	for m, p := range s.entries {
		merged[m] = p
	}
	return merged
}

// Decide authorizes a call (module, function, arity) per §4.1's default
// decision procedure. arity is accepted but not consulted.
func Decide(s *Spec, catalog Catalog, module, function string, arity int) Decision {
	merged := s.spec()
	perm, ok := merged[module]
	if !ok {
		return Restricted
	}
	exists := catalog.Exported(module, function)
	switch perm.kind {
	case kindAll:
		if exists {
			return Allowed
		}
		return Restricted
	case kindOnly:
		if exists && perm.Only[function] {
			return Allowed
		}
		return Restricted
	case kindExcept:
		if exists && !perm.Except[function] {
			return Allowed
		}
		return Restricted
	default:
		return Restricted
	}
}
