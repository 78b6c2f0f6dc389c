// Package capture keeps the most recent words a port has transmitted so they
// can be inspected while the stream keeps running.
package capture

import "sync"

// Ring is a fixed-capacity circular buffer of transmitted words. When full,
// new words overwrite the oldest. Write never allocates.
type Ring struct {
	data     []int32
	capacity int
	size     int
	writePos int
	mu       sync.Mutex
}

// NewRing creates a ring holding up to capacity words.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring{
		data:     make([]int32, capacity),
		capacity: capacity,
	}
}

// Write appends words, dropping the oldest ones once the ring is full.
func (r *Ring) Write(words []int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Only the tail can survive a write longer than the ring.
	if len(words) > r.capacity {
		words = words[len(words)-r.capacity:]
	}

	for len(words) > 0 {
		n := copy(r.data[r.writePos:], words)
		words = words[n:]
		r.writePos = (r.writePos + n) % r.capacity
		r.size = min(r.size+n, r.capacity)
	}
}

// Snapshot returns a copy of the held words, oldest first.
func (r *Ring) Snapshot() []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int32, r.size)
	start := (r.writePos - r.size + r.capacity) % r.capacity
	n := copy(out, r.data[start:min(start+r.size, r.capacity)])
	copy(out[n:], r.data[:r.size-n])
	return out
}

// Len returns the number of words held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Capacity returns the maximum number of words held.
func (r *Ring) Capacity() int {
	return r.capacity
}

// Reset discards all held words.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.size = 0
	r.writePos = 0
}
