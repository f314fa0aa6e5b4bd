package edm

import (
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Registry is an explicit registration table of candidate struct types. It is
// the stand-in for classpath scanning: packages register their model structs
// (typically from an init function), and NewProviderFromPackage selects the
// registered types reachable from a package path. Registration order does
// not matter; scans return types sorted by qualified name.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]struct{})}
}

// Register adds the types of the given struct prototypes. Pointer prototypes
// are dereferenced; duplicates are ignored.
func (r *Registry) Register(protos ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, proto := range protos {
		t := reflect.TypeOf(proto)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			continue
		}
		r.types[t] = struct{}{}
	}
}

// TypesUnder returns the registered types whose package path equals pkgPath
// or lives beneath it, sorted by package path and type name so scans are
// deterministic regardless of registration order.
func (r *Registry) TypesUnder(pkgPath string) []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []reflect.Type
	for t := range r.types {
		pkg := t.PkgPath()
		if pkg == pkgPath || strings.HasPrefix(pkg, pkgPath+"/") {
			out = append(out, t)
		}
	}
	sortTypes(out)
	return out
}

func sortTypes(types []reflect.Type) {
	sort.Slice(types, func(i, j int) bool {
		if types[i].PkgPath() != types[j].PkgPath() {
			return types[i].PkgPath() < types[j].PkgPath()
		}
		return types[i].Name() < types[j].Name()
	})
}

var defaultRegistry = NewRegistry()

// Register adds struct prototypes to the process-wide registry consumed by
// NewProviderFromPackage.
func Register(protos ...any) {
	defaultRegistry.Register(protos...)
}
