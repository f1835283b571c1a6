// Package compose merges the background photo, the rendered text layer and
// the extracted subject cutout into one raster, in that fixed order; the
// sandwich is what makes the text read as sitting behind the subject.
package compose

// Fit is the result of aspect-fitting a source image into a container.
type Fit struct {
	Width  float64 // display width, <= container width
	Height float64 // display height, <= container height
	Scale  float64 // display size / source size
}

// AspectFit maps source dimensions into a container, preserving aspect
// ratio. One display edge always equals the matching container edge; the
// other is derived from the image aspect.
func AspectFit(imageWidth, imageHeight, containerWidth, containerHeight float64) Fit {
	if imageWidth <= 0 || imageHeight <= 0 || containerWidth <= 0 || containerHeight <= 0 {
		return Fit{}
	}
	imageAspect := imageWidth / imageHeight
	containerAspect := containerWidth / containerHeight

	if imageAspect > containerAspect {
		return Fit{
			Width:  containerWidth,
			Height: containerWidth / imageAspect,
			Scale:  containerWidth / imageWidth,
		}
	}
	return Fit{
		Width:  containerHeight * imageAspect,
		Height: containerHeight,
		Scale:  containerHeight / imageHeight,
	}
}
