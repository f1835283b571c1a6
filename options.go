package textbehind

import (
	"textbehind/device"
	"textbehind/segment"
)

// StatusFunc receives status events at pipeline state transitions: upload
// start, segmentation start/progress/resolution, export start/done.
// processing is true while work is still in flight.
type StatusFunc func(message string, processing bool)

// ErrorFunc receives error events. context identifies the failing stage:
// "validation", "segmentation", "compositing" or "export".
type ErrorFunc func(err error, context string)

// SessionOption configures a Session during creation.
//
// Example:
//
//	session, err := textbehind.NewSession(
//	    textbehind.WithSegmenter(remoteSegmenter),
//	    textbehind.WithQualityIntent(0.9),
//	)
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	caps          device.Capabilities
	segmenter     segment.Segmenter
	qualityIntent float64
	status        StatusFunc
	errorFn       ErrorFunc
}

func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		caps: device.SystemCapabilities{},
	}
}

// WithCapabilities injects the capability provider used to profile the
// device. The default reports only hardware concurrency, which classifies
// an unknown host as a regular-tier device.
func WithCapabilities(caps device.Capabilities) SessionOption {
	return func(o *sessionOptions) { o.caps = caps }
}

// WithSegmenter sets the external subject-extraction service. Without one,
// every image gets the deterministic fallback mask.
func WithSegmenter(s segment.Segmenter) SessionOption {
	return func(o *sessionOptions) { o.segmenter = s }
}

// WithQualityIntent expresses the caller's preferred output quality in
// (0, 1]. It overrides the computed quality threshold only, never the
// dimension limits, which protect the memory budget.
func WithQualityIntent(q float64) SessionOption {
	return func(o *sessionOptions) { o.qualityIntent = q }
}

// WithStatus registers the status event callback.
func WithStatus(fn StatusFunc) SessionOption {
	return func(o *sessionOptions) { o.status = fn }
}

// WithErrorHandler registers the error event callback.
func WithErrorHandler(fn ErrorFunc) SessionOption {
	return func(o *sessionOptions) { o.errorFn = fn }
}
