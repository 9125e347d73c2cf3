package runtime

// ObserverEntry is one registered handler for a path. For multi-variable
// observers, Names holds every variable in the group and the handler
// receives a changes object instead of (old, new) arguments.
type ObserverEntry struct {
	Handler *Value
	Names   []string // nil for single-target observers
}

// ObserverRegistry is the path→handlers side-table consulted after every
// store. Paths are the syntactic target text: an identifier ("count") or a
// non-computed member chain ("obj.x"). Handlers fire in registration order.
type ObserverRegistry struct {
	entries map[string][]*ObserverEntry
}

func NewObserverRegistry() *ObserverRegistry {
	return &ObserverRegistry{entries: make(map[string][]*ObserverEntry)}
}

func (r *ObserverRegistry) Register(path string, entry *ObserverEntry) {
	r.entries[path] = append(r.entries[path], entry)
}

// Lookup returns the handlers registered for the exact path, oldest first.
func (r *ObserverRegistry) Lookup(path string) []*ObserverEntry {
	return r.entries[path]
}

// Observed reports whether any handler is registered for the path. Stores
// on unobserved paths skip dispatch entirely.
func (r *ObserverRegistry) Observed(path string) bool {
	return len(r.entries[path]) > 0
}
