// Package policy holds the static description of permitted and forbidden
// Python constructs the validator checks admitted code against. It is pure
// data — no side effects, no parsing — per spec.md §4.1.
package policy

// Catalog is a read-only set of identifier lists used by the static
// validator. Name-matching is case-sensitive and operates on the top-level
// package component only, per spec.md §4.1: a module path "a.b.c" matches
// on "a".
type Catalog struct {
	forbiddenImports    map[string]struct{}
	forbiddenBuiltins   map[string]struct{}
	permittedImports    map[string]struct{}
	forbiddenAttributes map[string]struct{}
}

// New builds a Catalog from explicit lists, mainly for tests that need to
// probe edge cases without mutating the shipped default.
func New(forbiddenImports, forbiddenBuiltins, permittedImports, forbiddenAttributes []string) *Catalog {
	return &Catalog{
		forbiddenImports:    toSet(forbiddenImports),
		forbiddenBuiltins:   toSet(forbiddenBuiltins),
		permittedImports:    toSet(permittedImports),
		forbiddenAttributes: toSet(forbiddenAttributes),
	}
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// IsForbiddenImport reports whether the top-level package name is on the
// import blacklist.
func (c *Catalog) IsForbiddenImport(topLevel string) bool {
	_, ok := c.forbiddenImports[topLevel]
	return ok
}

// IsPermittedImport reports whether the top-level package name is on the
// import whitelist.
func (c *Catalog) IsPermittedImport(topLevel string) bool {
	_, ok := c.permittedImports[topLevel]
	return ok
}

// IsForbiddenBuiltin reports whether a bare-name call target is a
// code-injection vector: evaluators, compilers, dynamic importers, file
// openers, or the getattr/setattr/delattr trio (spec.md §4.2 folds that
// trio into this set rather than keeping a fourth, per SPEC_FULL.md §4.1).
func (c *Catalog) IsForbiddenBuiltin(name string) bool {
	_, ok := c.forbiddenBuiltins[name]
	return ok
}

// IsForbiddenAttribute reports whether an attribute name is an
// introspection hook that exposes the runtime.
func (c *Catalog) IsForbiddenAttribute(name string) bool {
	_, ok := c.forbiddenAttributes[name]
	return ok
}

// PermittedImportNames returns a snapshot of the whitelist in no particular
// order (it follows map iteration), used by the health probe descriptor
// (spec.md §6).
func (c *Catalog) PermittedImportNames() []string {
	names := make([]string, 0, len(c.permittedImports))
	for name := range c.permittedImports {
		names = append(names, name)
	}
	return names
}

var defaultCatalog = New(
	defaultForbiddenImports,
	defaultForbiddenBuiltins,
	defaultPermittedImports,
	defaultForbiddenAttributes,
)

// Default returns the shipped catalog described in SPEC_FULL.md §4.1,
// grounded on original_source/app/security.py and extended per spec.md's
// abstract table.
func Default() *Catalog {
	return defaultCatalog
}

// Seed lists. Grouped here, separate from the lookup logic above, so the
// policy itself reads as the "pure data" spec.md §4.1 calls for.
var (
	defaultForbiddenImports = []string{
		"os", "subprocess", "sys", "importlib", "socket", "urllib", "http",
		"httplib", "ftplib", "telnetlib", "pickle", "cPickle", "marshal",
		"shelve", "ctypes", "multiprocessing", "threading", "shutil",
		"platform", "pty", "signal", "mmap", "resource", "sqlite3",
	}

	defaultForbiddenBuiltins = []string{
		"eval", "exec", "compile", "__import__", "open", "file", "input",
		"raw_input", "execfile", "reload", "vars", "globals", "locals",
		"getattr", "setattr", "delattr",
	}

	defaultPermittedImports = []string{
		"math", "cmath", "decimal", "fractions", "random", "statistics",
		"itertools", "functools", "operator", "collections", "heapq",
		"bisect", "array", "datetime", "calendar", "copy", "pprint", "re",
		"string", "textwrap", "unicodedata", "json", "csv", "numpy", "sympy",
		"pandas", "matplotlib", "scipy", "sklearn", "typing", "dataclasses",
		"enum", "abc", "io",
	}

	defaultForbiddenAttributes = []string{
		"__globals__", "__code__", "__class__", "__bases__", "__subclasses__",
		"__dict__", "__builtins__", "__import__", "__loader__", "__mro__",
	}
)
