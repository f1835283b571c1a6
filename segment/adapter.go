package segment

import (
	"context"
	"errors"
	"image"
	"time"

	"textbehind/device"
	"textbehind/surface"
)

// Timeouts for the external call. Mobile devices get shorter bounds since
// users there abandon long waits sooner.
const (
	defaultTimeout      = 30 * time.Second
	mobileTimeout       = 25 * time.Second
	mobileLowEndTimeout = 20 * time.Second

	// syntheticProgressStep is the cadence of synthesized progress ticks
	// while the external service stays silent.
	syntheticProgressStep = 500 * time.Millisecond
)

// ErrTimeout records that the external call exceeded its deadline. It only
// ever appears in Outcome.Err; Extract itself never fails.
var ErrTimeout = errors.New("segment: external segmentation timed out")

// Adapter bounds the wait for a Segmenter and substitutes a deterministic
// fallback mask when the service fails or times out.
//
// The race is cancellation-by-disregard: the losing branch is not torn down
// at the transport level, its eventual result is simply ignored. External
// side effects, if any, are not guaranteed to stop.
type Adapter struct {
	segmenter Segmenter
	timeout   time.Duration
}

// NewAdapter creates an adapter with a timeout derived from the device
// profile. segmenter may be nil, in which case every extraction resolves
// with the fallback mask.
func NewAdapter(segmenter Segmenter, profile device.DeviceProfile) *Adapter {
	timeout := defaultTimeout
	if profile.Mobile {
		timeout = mobileTimeout
		if profile.Tier == device.TierLowEnd {
			timeout = mobileLowEndTimeout
		}
	}
	return &Adapter{segmenter: segmenter, timeout: timeout}
}

// Timeout returns the configured external-call deadline.
func (a *Adapter) Timeout() time.Duration { return a.timeout }

// Extract runs the external segmentation for img and always resolves with a
// usable outcome within the timeout bound. progress, when non-nil, receives
// monotonically increasing values in [0, 1]: forwarded from the service
// when it reports, synthesized on a fixed cadence when it stays silent.
//
// Cancelling ctx resolves immediately with the fallback; the caller decides
// whether the outcome is still wanted (a superseded image upload discards
// it by generation check).
func (a *Adapter) Extract(ctx context.Context, img image.Image, progress func(float64)) Outcome {
	if a.segmenter == nil {
		return a.fallbackOutcome(img, errors.New("segment: no segmenter configured"))
	}

	type settled struct {
		result Result
		err    error
	}
	resultCh := make(chan settled, 1)

	// reported flips once the service delivers its own progress; from then
	// on synthetic ticks stop so the two streams cannot interleave
	// non-monotonically.
	reported := make(chan struct{})
	forward := progress
	if progress != nil {
		var once bool
		forward = func(v float64) {
			if !once {
				once = true
				close(reported)
			}
			progress(v)
		}
	}

	go func() {
		result, err := a.segmenter.Segment(ctx, img, forward)
		// Buffered send: if the timeout already won, this result is
		// disregarded, not delivered.
		resultCh <- settled{result: result, err: err}
	}()

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	var tick *time.Ticker
	var tickCh <-chan time.Time
	if progress != nil {
		tick = time.NewTicker(syntheticProgressStep)
		defer tick.Stop()
		tickCh = tick.C
	}
	synthetic := 0.0

	for {
		select {
		case s := <-resultCh:
			if s.err != nil {
				return a.fallbackOutcome(img, s.err)
			}
			if !maskMatches(s.result.Mask, img) {
				return a.fallbackOutcome(img, errors.New("segment: service mask dimensions mismatch source"))
			}
			if progress != nil {
				progress(1)
			}
			return Outcome{Result: s.result, Source: SourceExternal}
		case <-timer.C:
			return a.fallbackOutcome(img, ErrTimeout)
		case <-ctx.Done():
			return a.fallbackOutcome(img, ctx.Err())
		case <-tickCh:
			select {
			case <-reported:
				// Service owns progress now; stop synthesizing.
				tickCh = nil
			default:
				// Asymptotic ticks toward 95% keep feedback visible
				// without ever claiming completion.
				synthetic += (0.95 - synthetic) * 0.12
				progress(synthetic)
			}
		}
	}
}

// fallbackOutcome builds the deterministic substitute result. err explains
// which branch failed and travels with the outcome for logging.
func (a *Adapter) fallbackOutcome(img image.Image, err error) Outcome {
	mask := FallbackMask(img)
	return Outcome{
		Result: Result{Cutout: applyMask(img, mask), Mask: mask},
		Source: SourceFallback,
		Err:    err,
	}
}

func maskMatches(m *surface.Mask, img image.Image) bool {
	if m == nil {
		return false
	}
	b := img.Bounds()
	return m.Width() == b.Dx() && m.Height() == b.Dy()
}
