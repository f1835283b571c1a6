package surface

import (
	"fmt"
	"sync"

	"textbehind/device"
)

// Pool capacities per device tier (surfaces retained per dimension bucket
// total, across all buckets).
const (
	lowEndPoolCapacity  = 3
	defaultPoolCapacity = 5
)

// ResourceExhaustionError reports that an input or working set exceeds the
// adaptive processing limits. The message is safe to show to users; the
// fields carry the diagnostic detail.
type ResourceExhaustionError struct {
	Resource string // "input bytes" or "memory"
	Actual   int64
	Limit    int64
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("surface: %s %d exceeds limit %d; try a smaller image",
		e.Resource, e.Actual, e.Limit)
}

// Pool recycles surfaces keyed by their exact dimensions. Capacity is
// bounded by device tier; releasing into a full pool destroys the surface
// instead. The pool is mutex-guarded, but the engine accesses it
// sequentially; no two composites share a pool concurrently.
type Pool struct {
	mu       sync.Mutex
	profile  device.DeviceProfile
	capacity int
	buckets  map[poolKey][]*Surface
	count    int
}

type poolKey struct {
	width  int
	height int
}

// NewPool creates a pool sized for the given device profile.
func NewPool(profile device.DeviceProfile) *Pool {
	capacity := defaultPoolCapacity
	if profile.Tier == device.TierLowEnd {
		capacity = lowEndPoolCapacity
	}
	return &Pool{
		profile:  profile,
		capacity: capacity,
		buckets:  make(map[poolKey][]*Surface),
	}
}

// Capacity returns the maximum number of surfaces the pool retains.
func (p *Pool) Capacity() int { return p.capacity }

// Acquire returns a cleared surface of the requested dimensions, reusing a
// pooled one when an exact-size match exists. Requests larger than the
// device's maximum surface dimension are scaled down preserving aspect
// ratio before allocation, so the returned surface may be smaller than
// requested. Callers own the surface until Release.
func (p *Pool) Acquire(width, height int) *Surface {
	width, height = p.capDimensions(width, height)
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		s := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.count--
		p.mu.Unlock()
		s.Clear()
		return s
	}
	p.mu.Unlock()

	return New(width, height)
}

// Release returns a surface to the pool, clearing it first. If the pool is
// at capacity the surface is dropped for the GC instead. The caller must
// not use the surface after Release.
func (p *Pool) Release(s *Surface) {
	if s == nil {
		return
	}
	s.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count >= p.capacity {
		return
	}
	key := poolKey{width: s.width, height: s.height}
	p.buckets[key] = append(p.buckets[key], s)
	p.count++
}

// Len returns the number of surfaces currently pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// EstimatedMemoryMB reports the memory held by pooled surfaces, for
// diagnostics and threshold checks.
func (p *Pool) EstimatedMemoryMB() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var bytes int
	for _, bucket := range p.buckets {
		for _, s := range bucket {
			bytes += s.SizeBytes()
		}
	}
	return float64(bytes) / 1e6
}

// Drain empties the pool, dropping every retained surface.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = make(map[poolKey][]*Surface)
	p.count = 0
}

// capDimensions scales (width, height) down, preserving aspect ratio, so
// the longest edge does not exceed the device's maximum surface dimension.
func (p *Pool) capDimensions(width, height int) (int, int) {
	maxDim := p.profile.MaxSurfaceDim
	if maxDim <= 0 {
		return width, height
	}
	longest := max(width, height)
	if longest <= maxDim {
		return width, height
	}
	scale := float64(maxDim) / float64(longest)
	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	return max(w, 1), max(h, 1)
}
