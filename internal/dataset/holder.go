package dataset

import "sync/atomic"

// Holder publishes the dataset used by subsequent queries. Reloads swap in a new
// Dataset; readers holding the previous pointer keep an untouched copy.
type Holder struct {
	current atomic.Pointer[Dataset]
}

// Load returns the active dataset or nil before the first Store.
func (h *Holder) Load() *Dataset {
	return h.current.Load()
}

// Store replaces the active dataset and returns the one it replaced.
func (h *Holder) Store(ds *Dataset) *Dataset {
	return h.current.Swap(ds)
}
