package graph

import "strconv"

// Key is a run-local identity token. Keys are only meaningful within one
// output stream.
type Key uint64

// String formats the key as it appears in records
func (k Key) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// Registry assigns keys to runtime objects by reference and remembers which
// keys have been emitted
type Registry struct {
	keys    map[any]Key
	emitted map[Key]struct{}
	next    Key
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		keys:    make(map[any]Key),
		emitted: make(map[Key]struct{}),
	}
}

// Key returns the key of obj, assigning the next one on first sight.
// obj must be a pointer; two pointers to equal values get distinct keys.
func (r *Registry) Key(obj any) Key {
	if k, ok := r.keys[obj]; ok {
		return k
	}
	r.next++
	r.keys[obj] = r.next
	return r.next
}

// Seen reports whether the node with key k has already been emitted
func (r *Registry) Seen(k Key) bool {
	_, ok := r.emitted[k]
	return ok
}

// Mark records that the node with key k has been emitted
func (r *Registry) Mark(k Key) {
	r.emitted[k] = struct{}{}
}

// Len returns how many distinct objects have been assigned keys
func (r *Registry) Len() int {
	return len(r.keys)
}
