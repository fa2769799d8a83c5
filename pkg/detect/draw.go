package detect

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// FaceBoxColor is the default face rectangle color (green, BGR-safe).
var FaceBoxColor = color.RGBA{G: 255, A: 255}

// DrawFaceBox draws a face bounding box on the frame. Stateless helper
// with no effect on detector state.
func DrawFaceBox(frame *gocv.Mat, rect image.Rectangle, c color.RGBA, thickness int) {
	gocv.Rectangle(frame, rect, c, thickness)
}
