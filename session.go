package textbehind

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // registered for image.Decode
	_ "image/jpeg" // registered for image.Decode
	_ "image/png"  // registered for image.Decode
	"log/slog"
	"sync"
	"time"

	"textbehind/compose"
	"textbehind/device"
	"textbehind/export"
	"textbehind/internal/imgmeta"
	"textbehind/schedule"
	"textbehind/segment"
	"textbehind/surface"
	"textbehind/textlayer"
)

// ErrClosed is returned by all operations on a closed session.
var ErrClosed = fmt.Errorf("textbehind: session closed")

// Session is the explicit context object for one editing session. It owns
// the device profile, the derived processing limits, the surface pool, the
// update scheduler and the segmentation adapter, and wires them into the
// compositing pipeline. Create one on session start and Close it on
// teardown; Close is idempotent.
//
// A Session's operations are safe for concurrent use, but the engine is
// designed around sequential access: one composite at a time against one
// pool. The only internal concurrency is the segmentation race.
type Session struct {
	profile   device.DeviceProfile
	config    device.ProcessingConfig
	caps      device.Capabilities
	intent    float64
	segmenter segment.Segmenter
	status    StatusFunc
	errorFn   ErrorFunc

	mu         sync.Mutex
	pool       *surface.Pool
	scheduler  *schedule.Scheduler
	adapter    *segment.Adapter
	compositor *compose.Compositor

	generation uint64
	background image.Image
	extraction *segment.Outcome
	maskReady  chan struct{} // closed when the current generation resolves
	style      *textlayer.TextStyle
	lastResult *compose.Result
	closed     bool
}

// NewSession profiles the device, resolves the processing configuration and
// builds the session's pool, scheduler and segmentation adapter.
func NewSession(opts ...SessionOption) (*Session, error) {
	options := defaultSessionOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.qualityIntent < 0 || options.qualityIntent > 1 {
		return nil, fmt.Errorf("textbehind: quality intent %v outside [0, 1]", options.qualityIntent)
	}

	s := &Session{
		caps:      options.caps,
		intent:    options.qualityIntent,
		segmenter: options.segmenter,
		status:    options.status,
		errorFn:   options.errorFn,
	}
	s.rebuild()

	Logger().Info("session created",
		slog.String("tier", s.profile.Tier.String()),
		slog.Int("maxDimension", s.config.MaxDimension),
		slog.Int("memoryMB", s.profile.EstimatedMemoryMB))
	return s, nil
}

// rebuild derives profile, config and the tier-bound components. Called at
// construction and again from Refresh.
func (s *Session) rebuild() {
	s.profile = device.Profile(s.caps)
	s.config = device.Resolve(s.profile, s.intent)
	s.pool = surface.NewPool(s.profile)
	s.scheduler = schedule.New(s.profile)
	s.adapter = segment.NewAdapter(s.segmenter, s.profile)
	s.compositor = compose.New(s.pool)
}

// Profile returns the device profile snapshot the session was built from.
func (s *Session) Profile() device.DeviceProfile { return s.profile }

// Config returns the resolved processing limits.
func (s *Session) Config() device.ProcessingConfig { return s.config }

// Scheduler returns the session's update scheduler, for rate-limiting
// interactive recomputation.
func (s *Session) Scheduler() *schedule.Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler
}

// Refresh re-profiles the device and re-resolves the processing limits.
// Call it on environment-change events (resize, orientation, battery).
// The previous profile snapshot is discarded, not mutated; pending
// scheduler timers are cancelled and the pool is rebuilt for the new tier.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.scheduler.ClearAll()
	s.pool.Drain()
	s.releaseLastLocked()
	s.rebuild()
	Logger().Info("session refreshed", slog.String("tier", s.profile.Tier.String()))
}

// LoadImage validates and decodes an uploaded image, then starts subject
// extraction in the background. Any in-flight extraction for a previous
// image is superseded: its eventual outcome is discarded, never applied.
//
// Validation happens before decoding: the byte size is checked against
// MaxInputBytes, and where the header carries dimensions the estimated
// working memory is checked against MemoryThresholdMB, so oversized inputs
// fail fast with an actionable error.
func (s *Session) LoadImage(ctx context.Context, data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	config := s.config
	s.mu.Unlock()

	s.emitStatus("Uploading image...", true)

	if len(data) > config.MaxInputBytes {
		err := &surface.ResourceExhaustionError{
			Resource: "input bytes",
			Actual:   int64(len(data)),
			Limit:    int64(config.MaxInputBytes),
		}
		s.emitError(err, "validation")
		return err
	}

	info, err := imgmeta.Sniff(data)
	if err != nil {
		s.emitError(err, "validation")
		return fmt.Errorf("textbehind: could not process image, please try another one: %w", err)
	}
	if info.Width > 0 && info.Height > 0 {
		if err := s.checkMemoryBudget(info, config); err != nil {
			s.emitError(err, "validation")
			return err
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.emitError(err, "validation")
		return fmt.Errorf("textbehind: could not process image, please try another one: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.generation++
	generation := s.generation
	s.background = img
	// Wake anyone still waiting on the superseded image's mask.
	if s.maskReady != nil && s.extraction == nil {
		close(s.maskReady)
	}
	s.extraction = nil
	s.maskReady = make(chan struct{})
	ready := s.maskReady
	s.releaseLastLocked()
	adapter := s.adapter
	s.mu.Unlock()

	Logger().Info("image loaded",
		slog.String("format", string(info.Format)),
		slog.Int("bytes", len(data)),
		slog.Uint64("generation", generation))

	s.emitStatus("Extracting subject...", true)
	go s.extract(ctx, adapter, img, generation, ready)
	return nil
}

// extract runs the bounded segmentation race and publishes the outcome if
// the session still shows the same image generation.
func (s *Session) extract(ctx context.Context, adapter *segment.Adapter, img image.Image, generation uint64, ready chan struct{}) {
	outcome := adapter.Extract(ctx, img, func(v float64) {
		s.emitStatus(fmt.Sprintf("Extracting subject... %d%%", int(v*100)), true)
	})

	s.mu.Lock()
	stale := s.closed || s.generation != generation
	if !stale {
		s.extraction = &outcome
	}
	s.mu.Unlock()

	if stale {
		// Superseded by a newer upload or teardown: disregard the result.
		Logger().Debug("stale segmentation outcome discarded", slog.Uint64("generation", generation))
		return
	}

	if outcome.Source == segment.SourceFallback {
		Logger().Warn("segmentation fallback taken", slog.Any("cause", outcome.Err))
		s.emitStatus("Subject detection unavailable, using approximate mask", false)
	} else {
		s.emitStatus("Subject extracted", false)
	}
	close(ready)
}

// AwaitSegmentation blocks until the current image's mask is resolved, the
// context is cancelled, or the image is superseded.
func (s *Session) AwaitSegmentation(ctx context.Context) error {
	s.mu.Lock()
	ready := s.maskReady
	s.mu.Unlock()
	if ready == nil {
		return fmt.Errorf("textbehind: no image loaded")
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetStyle validates and stores the text style for subsequent composites.
// Out-of-range values are rejected, never clamped.
func (s *Session) SetStyle(style textlayer.TextStyle) error {
	if err := style.Validate(); err != nil {
		s.emitError(err, "validation")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.style = &style
	return nil
}

// Composite renders the current layer sandwich into a container of the
// given dimensions, honoring the view transform for preview. The effective
// canvas is capped to the configured MaxDimension. The session retains the
// result and releases it when the next composite replaces it; callers that
// keep the raster must copy it.
func (s *Session) Composite(view compose.ViewTransform, containerW, containerH int) (*compose.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	res, err := s.compositeLocked(view, containerW, containerH)
	if err == nil {
		s.releaseLastLocked()
		s.lastResult = res
	}
	s.mu.Unlock()

	if err != nil {
		s.emitError(err, "compositing")
		return nil, err
	}
	return res, nil
}

// compositeLocked builds the text layer and runs the compositor. The
// caller holds s.mu.
func (s *Session) compositeLocked(view compose.ViewTransform, containerW, containerH int) (*compose.Result, error) {
	if s.background == nil {
		return nil, compose.ErrNoBackground
	}

	bounds := s.background.Bounds()
	fit := compose.AspectFit(float64(bounds.Dx()), float64(bounds.Dy()), float64(containerW), float64(containerH))
	canvasW, canvasH := capCanvas(fit, s.config.MaxDimension)
	if canvasW < 1 || canvasH < 1 {
		return nil, compose.ErrRenderTargetUnavailable
	}

	layers := compose.Layers{Background: s.background}
	if s.extraction != nil {
		layers.Foreground = s.extraction.Result.Cutout
	}

	var textLayer *surface.Surface
	if s.style != nil {
		textLayer = s.pool.Acquire(canvasW, canvasH)
		defer s.pool.Release(textLayer)
		if err := textlayer.Render(*s.style, textLayer); err != nil {
			return nil, err
		}
		layers.Text = textLayer
	}

	return s.compositor.Composite(layers, view, canvasW, canvasH)
}

// Export serializes the full, untransformed composite at its native
// resolution and the configured quality threshold. The active view
// transform never affects the exported raster.
func (s *Session) Export(format export.Format) ([]byte, error) {
	s.emitStatus("Exporting image...", true)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	var res *compose.Result
	var err error
	if s.background != nil {
		b := s.background.Bounds()
		res, err = s.compositeLocked(compose.DefaultView(), b.Dx(), b.Dy())
	} else {
		err = compose.ErrNoBackground
	}
	quality := s.config.QualityThreshold
	s.mu.Unlock()

	if err != nil {
		s.emitError(err, "export")
		return nil, err
	}
	defer res.Release()

	blob, err := export.Export(res, format, quality)
	if err != nil {
		s.emitError(err, "export")
		return nil, err
	}
	s.emitStatus("Export complete", false)
	return blob, nil
}

// ExportFilename generates the download name for the current text content.
func (s *Session) ExportFilename(format export.Format) string {
	s.mu.Lock()
	content := ""
	if s.style != nil {
		content = s.style.Content
	}
	s.mu.Unlock()
	return export.Filename(content, time.Now(), format)
}

// PoolMemoryMB reports the memory held by pooled surfaces, for diagnostics.
func (s *Session) PoolMemoryMB() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.EstimatedMemoryMB()
}

// Close tears the session down: pending scheduler timers are cancelled so
// no callback fires into a discarded session, pooled surfaces are dropped,
// and any in-flight segmentation outcome will be disregarded. Close is
// idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.scheduler.ClearAll()
	s.releaseLastLocked()
	s.pool.Drain()
	if s.maskReady != nil && s.extraction == nil {
		close(s.maskReady)
	}
	s.background = nil
	s.extraction = nil
	return nil
}

func (s *Session) releaseLastLocked() {
	if s.lastResult != nil {
		s.lastResult.Release()
		s.lastResult = nil
	}
}

// checkMemoryBudget estimates the decoded working set from sniffed
// dimensions: source pixels plus one full-resolution working copy, RGBA.
func (s *Session) checkMemoryBudget(info imgmeta.Info, config device.ProcessingConfig) error {
	estimatedMB := float64(info.Width) * float64(info.Height) * 4 * 2 / 1e6
	if estimatedMB > float64(config.MemoryThresholdMB) {
		return &surface.ResourceExhaustionError{
			Resource: "memory",
			Actual:   int64(estimatedMB),
			Limit:    int64(config.MemoryThresholdMB),
		}
	}
	return nil
}

func (s *Session) emitStatus(message string, processing bool) {
	if s.status != nil {
		s.status(message, processing)
	}
}

func (s *Session) emitError(err error, context string) {
	Logger().Warn("stage failed", slog.String("stage", context), slog.Any("error", err))
	if s.errorFn != nil {
		s.errorFn(err, context)
	}
}

// capCanvas scales an aspect-fitted canvas down so its longest edge does
// not exceed the adaptive MaxDimension.
func capCanvas(fit compose.Fit, maxDim int) (int, int) {
	w, h := fit.Width, fit.Height
	if maxDim > 0 {
		longest := w
		if h > longest {
			longest = h
		}
		if longest > float64(maxDim) {
			scale := float64(maxDim) / longest
			w *= scale
			h *= scale
		}
	}
	return int(w + 0.5), int(h + 0.5)
}
