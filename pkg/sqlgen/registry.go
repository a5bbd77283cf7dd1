package sqlgen

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	dialects = map[string]Dialect{}
)

// Register registers (or replaces) a dialect under d.Kind(). Backend
// packages call it from init().
func Register(d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[d.Kind()] = d
}

// Lookup returns the dialect registered for kind.
func Lookup(kind string) (Dialect, error) {
	mu.RLock()
	d, ok := dialects[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sqlgen: no dialect registered for kind=%q", kind)
	}
	return d, nil
}

// Kinds returns a sorted snapshot of the registered dialect names.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
