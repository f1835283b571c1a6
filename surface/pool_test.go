package surface

import (
	"image/color"
	"testing"

	"textbehind/device"
)

func regularProfile() device.DeviceProfile {
	return device.DeviceProfile{Tier: device.TierRegular, MaxSurfaceDim: 4096, EstimatedMemoryMB: 2048}
}

func TestPoolCapacityByTier(t *testing.T) {
	tests := []struct {
		name string
		tier device.Tier
		want int
	}{
		{"low-end", device.TierLowEnd, 3},
		{"regular", device.TierRegular, 5},
		{"high-end", device.TierHighEnd, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPool(device.DeviceProfile{Tier: tt.tier})
			if got := p.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPoolReusesByIdentity(t *testing.T) {
	p := NewPool(regularProfile())
	s := p.Acquire(100, 50)
	p.Release(s)
	got := p.Acquire(100, 50)
	if got != s {
		t.Error("Acquire after Release of matching dimensions allocated a new surface")
	}
}

func TestPoolAcquireClearsReusedSurface(t *testing.T) {
	p := NewPool(regularProfile())
	s := p.Acquire(10, 10)
	s.SetPixel(0, 0, color.RGBA{R: 255, A: 255})
	p.Release(s)
	got := p.Acquire(10, 10)
	if px := got.PixelAt(0, 0); px != (color.RGBA{}) {
		t.Errorf("reused surface not cleared: pixel = %v", px)
	}
}

func TestPoolDimensionMismatchAllocates(t *testing.T) {
	p := NewPool(regularProfile())
	s := p.Acquire(100, 50)
	p.Release(s)
	got := p.Acquire(50, 100)
	if got == s {
		t.Error("pool returned a surface with the wrong dimensions")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (original still pooled)", p.Len())
	}
}

func TestPoolCapacityPressureDrops(t *testing.T) {
	p := NewPool(device.DeviceProfile{Tier: device.TierLowEnd, MaxSurfaceDim: 2048})
	surfaces := make([]*Surface, 5)
	for i := range surfaces {
		surfaces[i] = New(16, 16)
	}
	for _, s := range surfaces {
		p.Release(s)
	}
	if got := p.Len(); got != 3 {
		t.Errorf("Len() = %d after releasing 5 into low-end pool, want 3", got)
	}
}

func TestPoolCapsOversizedRequests(t *testing.T) {
	p := NewPool(device.DeviceProfile{Tier: device.TierLowEnd, MaxSurfaceDim: 2048})
	s := p.Acquire(8192, 4096)
	if s.Width() != 2048 || s.Height() != 1024 {
		t.Errorf("Acquire(8192, 4096) = %dx%d, want 2048x1024", s.Width(), s.Height())
	}

	// Portrait orientation caps the other edge.
	s = p.Acquire(1000, 4000)
	if s.Height() != 2048 || s.Width() != 512 {
		t.Errorf("Acquire(1000, 4000) = %dx%d, want 512x2048", s.Width(), s.Height())
	}
}

func TestPoolMemoryAccounting(t *testing.T) {
	p := NewPool(regularProfile())
	p.Release(New(500, 500)) // 500*500*4 = 1e6 bytes = 1 MB
	if got := p.EstimatedMemoryMB(); got != 1.0 {
		t.Errorf("EstimatedMemoryMB() = %v, want 1.0", got)
	}
	p.Drain()
	if got := p.EstimatedMemoryMB(); got != 0 {
		t.Errorf("EstimatedMemoryMB() after Drain = %v, want 0", got)
	}
	if p.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", p.Len())
	}
}
