// Package segment wraps an external subject-extraction service behind a
// bounded-wait contract. The adapter races the external call against a
// timeout; whichever settles first wins, and the loser is disregarded.
// Callers always receive a usable mask: on failure or timeout a
// deterministic synthetic mask substitutes for the real one, so compositing
// never blocks on the segmentation service.
package segment

import (
	"context"
	"image"

	"textbehind/surface"
)

// Result is a successful subject extraction: the cutout carries the subject
// with background removed, the mask is the per-pixel confidence used to
// produce it. Mask dimensions always equal the source image dimensions.
type Result struct {
	Cutout image.Image
	Mask   *surface.Mask
}

// Segmenter is the external subject-extraction service. Implementations may
// take arbitrarily long, return an error, or never settle; the adapter is
// responsible for bounding the wait. When the service reports progress it
// calls progress with values in [0, 1]; progress may be nil.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image, progress func(float64)) (Result, error)
}

// SegmenterFunc adapts a function to the Segmenter interface.
type SegmenterFunc func(ctx context.Context, img image.Image, progress func(float64)) (Result, error)

// Segment implements Segmenter.
func (f SegmenterFunc) Segment(ctx context.Context, img image.Image, progress func(float64)) (Result, error) {
	return f(ctx, img, progress)
}

// Source identifies which branch of the race produced an outcome.
type Source int

const (
	// SourceExternal means the external service settled in time.
	SourceExternal Source = iota

	// SourceFallback means the synthetic mask substituted for the service
	// after a timeout or failure.
	SourceFallback
)

// String returns the source name.
func (s Source) String() string {
	if s == SourceFallback {
		return "fallback"
	}
	return "external"
}

// Outcome is what the adapter always resolves with. Err records why the
// fallback was taken, for logging only; an Outcome is never a failure from
// the caller's point of view.
type Outcome struct {
	Result Result
	Source Source
	Err    error
}
