// Package textbehind composites styled text behind the subject of a photo.
//
// # Overview
//
// The engine separates a photo into background and subject, renders a
// styled text layer, and re-composites the three in fixed z-order
// (background, text, subject cutout) so the text appears to sit behind the
// subject. Subject extraction is delegated to an external segmentation
// service behind a bounded-wait adapter; when the service fails or times
// out, a deterministic synthetic mask keeps the pipeline moving.
//
// Everything adapts to the host device: a one-shot device profile drives
// processing limits, surface pool capacity, interaction update rates and
// segmentation timeouts.
//
// # Quick start
//
//	session, err := textbehind.NewSession(
//	    textbehind.WithSegmenter(mySegmenter),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	if err := session.LoadImage(ctx, photoBytes); err != nil {
//	    log.Fatal(err)
//	}
//	session.SetStyle(textlayer.TextStyle{
//	    Content: "golden hour", FontSize: 96, FontFamily: "Arial",
//	    Color: "#FFFFFF", OpacityPct: 90, Pos: textlayer.Position{X: 50, Y: 40},
//	})
//
//	res, err := session.Composite(compose.DefaultView(), 1280, 960)
//	blob, err := session.Export(export.FormatPNG)
//
// # Architecture
//
// The library is organized into:
//   - device: environment profiling and adaptive processing limits
//   - surface: reusable raster buffers, masks and the bounded pool
//   - schedule: tier-tuned debounce/throttle for interactive updates
//   - segment: segmentation adapter with timeout race and fallback mask
//   - textlayer: text style validation and the multi-pass depth renderer
//   - compose: aspect-fit, view transforms and the layer compositor
//   - export: final encoding and download-name generation
//
// The root package ties these together in a Session, one per editing
// session, created on start and closed on teardown.
package textbehind
