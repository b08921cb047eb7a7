package stats

import "sync"

// Registry maps instrument identifiers to their windows. Windows are
// created lazily on first tick and never removed, so memory grows with
// instrument cardinality over the life of the process.
type Registry struct {
	mu      sync.RWMutex
	windows map[string]*Window
}

func NewRegistry() *Registry {
	return &Registry{windows: make(map[string]*Window)}
}

// GetOrCreate returns the instrument's window, creating it on first
// use. Concurrent callers for the same id always observe one shared
// window, never two.
func (r *Registry) GetOrCreate(instrument string) *Window {
	r.mu.RLock()
	w, ok := r.windows[instrument]
	r.mu.RUnlock()
	if ok {
		return w
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.windows[instrument]; ok {
		return w
	}
	w = NewWindow()
	r.windows[instrument] = w
	return w
}

// Lookup returns the instrument's window, or nil if the instrument has
// never been observed. Absence is not an error; callers report it as
// the empty statistics result.
func (r *Registry) Lookup(instrument string) *Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.windows[instrument]
}

// Instruments lists all identifiers ever observed.
func (r *Registry) Instruments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.windows))
	for id := range r.windows {
		ids = append(ids, id)
	}
	return ids
}
