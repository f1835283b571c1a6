// Package device profiles the host environment and derives adaptive
// processing limits from it.
//
// A DeviceProfile is an immutable snapshot: callers re-run Profile when the
// environment changes (resize, orientation, battery events) rather than
// mutating an existing profile. All downstream limits (surface pool
// capacity, scheduler timing, segmentation timeouts) key off the profile,
// so the rest of the engine never probes the environment directly.
package device

import "runtime"

// Tier is a coarse device-performance classification.
type Tier int

const (
	// TierLowEnd covers small screens, low pixel density, or few cores.
	TierLowEnd Tier = iota

	// TierRegular is the default classification.
	TierRegular

	// TierHighEnd covers devices reporting at least 4 GB of memory.
	TierHighEnd
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierLowEnd:
		return "low-end"
	case TierHighEnd:
		return "high-end"
	default:
		return "regular"
	}
}

// BatteryState reports the battery charge level and charging status.
type BatteryState struct {
	Percent  int
	Charging bool
}

// Capabilities probes optional host facilities. Every probe returns a value
// and an ok flag; absence degrades to documented defaults instead of being
// an error. Implementations are injected so tests and embedders control
// exactly what the profiler sees.
type Capabilities interface {
	// ScreenSize returns the display dimensions in physical pixels.
	ScreenSize() (width, height int, ok bool)

	// PixelRatio returns the device pixel ratio (CSS px to physical px).
	PixelRatio() (float64, bool)

	// HardwareConcurrency returns the number of parallel execution units.
	HardwareConcurrency() (int, bool)

	// DeviceMemoryMB returns the reported device memory in megabytes.
	DeviceMemoryMB() (int, bool)

	// Battery returns the current battery state.
	Battery() (BatteryState, bool)

	// Mobile reports whether the host is a mobile device.
	Mobile() (bool, bool)
}

// SystemCapabilities is the default Capabilities implementation for headless
// use. It reports hardware concurrency from the Go runtime and leaves every
// display- and battery-related probe absent.
type SystemCapabilities struct{}

// ScreenSize reports no display.
func (SystemCapabilities) ScreenSize() (int, int, bool) { return 0, 0, false }

// PixelRatio reports no display.
func (SystemCapabilities) PixelRatio() (float64, bool) { return 0, false }

// HardwareConcurrency reports runtime.NumCPU.
func (SystemCapabilities) HardwareConcurrency() (int, bool) { return runtime.NumCPU(), true }

// DeviceMemoryMB reports no memory figure.
func (SystemCapabilities) DeviceMemoryMB() (int, bool) { return 0, false }

// Battery reports no battery.
func (SystemCapabilities) Battery() (BatteryState, bool) { return BatteryState{}, false }

// Mobile reports a non-mobile host.
func (SystemCapabilities) Mobile() (bool, bool) { return false, true }

// DeviceProfile is an immutable snapshot of the host environment.
// BatteryPercent and Charging are only meaningful when HasBattery is true;
// battery-dependent logic treats an absent battery as charging at full.
type DeviceProfile struct {
	Tier              Tier
	Mobile            bool
	PixelRatio        float64
	MaxSurfaceDim     int
	EstimatedMemoryMB int
	HasBattery        bool
	BatteryPercent    int
	Charging          bool
}

// Defaults applied when a capability is absent.
const (
	defaultPixelRatio    = 1.0
	defaultConcurrency   = 4
	defaultMaxSurfaceDim = 4096

	lowEndMemoryMB  = 1024
	defaultMemoryMB = 2048
	highDPIMemoryMB = 4096

	lowEndScreenPixels = 1_000_000
)

// Profile inspects caps and returns a best-effort DeviceProfile. It never
// fails: missing capabilities fall back to defaults chosen so that a fully
// unknown environment classifies as TierRegular.
func Profile(caps Capabilities) DeviceProfile {
	if caps == nil {
		caps = SystemCapabilities{}
	}

	ratio, ok := caps.PixelRatio()
	if !ok || ratio <= 0 {
		ratio = defaultPixelRatio
	}
	cores, ok := caps.HardwareConcurrency()
	if !ok || cores <= 0 {
		cores = defaultConcurrency
	}
	mobile, ok := caps.Mobile()
	if !ok {
		mobile = false
	}

	screenW, screenH, hasScreen := caps.ScreenSize()
	screenPixels := screenW * screenH

	lowEnd := (hasScreen && screenPixels < lowEndScreenPixels) ||
		(hasScreen && ratio < 2) ||
		cores <= 2

	memMB, hasMem := caps.DeviceMemoryMB()
	if !hasMem || memMB <= 0 {
		switch {
		case lowEnd:
			memMB = lowEndMemoryMB
		case ratio >= 3:
			memMB = highDPIMemoryMB
		default:
			memMB = defaultMemoryMB
		}
	}

	tier := TierRegular
	switch {
	case lowEnd:
		tier = TierLowEnd
	case memMB >= highDPIMemoryMB:
		tier = TierHighEnd
	}

	maxDim := defaultMaxSurfaceDim
	if tier == TierLowEnd {
		maxDim = 2048
	}

	p := DeviceProfile{
		Tier:              tier,
		Mobile:            mobile,
		PixelRatio:        ratio,
		MaxSurfaceDim:     maxDim,
		EstimatedMemoryMB: memMB,
	}
	if battery, ok := caps.Battery(); ok {
		p.HasBattery = true
		p.BatteryPercent = battery.Percent
		p.Charging = battery.Charging
	}
	return p
}

// BatteryLow reports whether the profile indicates a discharging battery
// below 20%. An absent battery never reads as low.
func (p DeviceProfile) BatteryLow() bool {
	return p.HasBattery && !p.Charging && p.BatteryPercent < 20
}
