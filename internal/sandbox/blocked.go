package sandbox

// blockedPrimitives is the closed set of (function, arity-insensitive)
// primitive calls rejected regardless of allowlist. Implementations MUST
// NOT extend this list at runtime -- it is a package-level const map, not a
// configuration surface.
var blockedPrimitives = map[string]bool{
	"apply":            true,
	"spawn":            true,
	"spawn_link":       true,
	"spawn_monitor":    true,
	"spawn_opt":        true,
	"send":             true,
	"send_nosuspend":   true,
	"exit":             true,
	"halt":             true,
	"eval_string":      true, // string/quoted-evaluation
	"eval_quoted":      true,
	"compile_string":   true, // string/quoted-compilation
	"compile_quoted":   true,
}

// blockedModules is the full-module denylist: these modules may never be
// called into irrespective of any allowlist grant.
var blockedModules = map[string]bool{
	"os":               true, // operating-system facade
	"file":             true,
	"filelib":          true,
	"filename":         true,
	"path":             true,
	"port":             true,
	"node":             true,
	"agent":            true, // actor/supervision primitives
	"gen_server":       true,
	"supervisor":       true,
	"dynamic_supervisor": true,
	"task":             true,
	"registry":         true,
	"net":              true,
	"tcp":              true,
	"udp":              true,
	"sctp":             true,
	"ssl":              true,
	"http_client":      true,
	"http_server":      true,
	"ssh":              true,
	"evaluator":        true, // evaluator/parser/compiler internals
	"parser":           true,
	"compiler":         true,
}

// IsBlockedPrimitive reports whether a bare (local) call name is one of the
// closed blocked-primitive names.
func IsBlockedPrimitive(name string) bool { return blockedPrimitives[name] }

// IsBlockedModule reports whether a module identifier is on the full-module
// denylist.
func IsBlockedModule(module string) bool { return blockedModules[module] }
