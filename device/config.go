package device

// ProcessingConfig is the closed set of adaptive processing limits. All four
// fields are always present; it is derived from a DeviceProfile and never
// persisted; recompute it whenever the profile changes.
type ProcessingConfig struct {
	// MaxDimension caps the longest edge of any working raster, in pixels.
	MaxDimension int

	// MaxInputBytes caps the size of an uploaded image file.
	MaxInputBytes int

	// QualityThreshold is the default export/encode quality in (0, 1].
	QualityThreshold float64

	// MemoryThresholdMB caps the estimated working-set for one composite.
	MemoryThresholdMB int
}

// Tier baselines for Resolve.
var (
	lowEndConfig = ProcessingConfig{
		MaxDimension:      384,
		MaxInputBytes:     2 << 20,
		QualityThreshold:  0.70,
		MemoryThresholdMB: 20,
	}
	regularConfig = ProcessingConfig{
		MaxDimension:      512,
		MaxInputBytes:     3 << 20,
		QualityThreshold:  0.75,
		MemoryThresholdMB: 40,
	}
	highEndConfig = ProcessingConfig{
		MaxDimension:      768,
		MaxInputBytes:     5 << 20,
		QualityThreshold:  0.80,
		MemoryThresholdMB: 60,
	}
)

// Battery-saver caps applied when the battery is low and discharging.
const (
	batterySaverMaxDimension = 512
	batterySaverQuality      = 0.70
)

// Resolve derives a ProcessingConfig from a device profile. Inputs combine
// in priority order: tier baseline, then a battery-saver override, then the
// caller's explicit quality intent. The intent overrides the quality
// threshold only, never MaxDimension, which protects the memory budget.
// qualityIntent is ignored unless it lies in (0, 1].
func Resolve(p DeviceProfile, qualityIntent float64) ProcessingConfig {
	var cfg ProcessingConfig
	switch {
	case p.Tier == TierLowEnd:
		cfg = lowEndConfig
	case p.EstimatedMemoryMB >= highDPIMemoryMB:
		cfg = highEndConfig
	default:
		cfg = regularConfig
	}

	if p.BatteryLow() {
		cfg.MaxDimension = min(cfg.MaxDimension, batterySaverMaxDimension)
		cfg.QualityThreshold = min(cfg.QualityThreshold, batterySaverQuality)
	}

	if qualityIntent > 0 && qualityIntent <= 1 {
		cfg.QualityThreshold = qualityIntent
	}
	return cfg
}
