package models

import "sync/atomic"

// EntityID is a stable integer handle assigned when an entity spawns. It is
// never reused within one allocator, which lets broad-phase queries
// deduplicate by identity.
type EntityID uint64

// NoEntity is the zero handle; allocators never hand it out.
const NoEntity EntityID = 0

// IDAllocator hands out monotonically increasing entity IDs.
type IDAllocator struct {
	next atomic.Uint64
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() EntityID {
	return EntityID(a.next.Add(1))
}

// Last returns the most recently issued ID, or NoEntity.
func (a *IDAllocator) Last() EntityID {
	return EntityID(a.next.Load())
}
