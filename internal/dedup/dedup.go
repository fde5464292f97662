package dedup

import "sync"

// Gate is a process-lifetime first-sight set. Keys are compared by Go
// equality, so callers passing pointers get instance identity: two
// structurally identical models loaded separately are distinct keys.
// The set grows monotonically and is never pruned.
type Gate struct {
	mu   sync.Mutex
	seen map[any]struct{}
}

// New creates an empty Gate.
func New() *Gate {
	return &Gate{seen: make(map[any]struct{})}
}

// FirstSight inserts key and reports whether it was absent. The check and
// insert happen under one lock acquisition, so concurrent callers racing on
// the same new key see exactly one true result.
func (g *Gate) FirstSight(key any) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys seen so far.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
