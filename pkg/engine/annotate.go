package engine

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay panel layout.
const (
	panelHeight = 120
	lineHeight  = 25
	textX       = 10
	fontScale   = 0.6
)

var (
	panelColor = color.RGBA{A: 255}
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	goodColor  = color.RGBA{G: 255, A: 255}
	badColor   = color.RGBA{R: 255, A: 255}
)

// drawTrackingInfo renders the metrics panel onto the display frame: a
// translucent header band with distance, gaze angles, focus state and
// movement state.
func drawTrackingInfo(frame *gocv.Mat, result TrackingResult) {
	w := frame.Cols()

	overlay := frame.Clone()
	gocv.Rectangle(&overlay, image.Rect(0, 0, w, panelHeight), panelColor, -1)
	gocv.AddWeighted(overlay, 0.5, *frame, 0.5, 0, frame)
	overlay.Close()

	y := lineHeight
	gocv.PutText(frame,
		fmt.Sprintf("Distance: %.1f cm", result.FaceDistance),
		image.Pt(textX, y), gocv.FontHersheySimplex, fontScale, textColor, 1)

	y += lineHeight
	gocv.PutText(frame,
		fmt.Sprintf("Gaze X: %.1fdeg  Y: %.1fdeg", result.GazeAngleX, result.GazeAngleY),
		image.Pt(textX, y), gocv.FontHersheySimplex, fontScale, textColor, 1)

	y += lineHeight
	focusText := "Eyes: NOT FOCUSED"
	focusColor := badColor
	if result.EyesFocused {
		focusText = "Eyes: FOCUSED"
		focusColor = goodColor
	}
	gocv.PutText(frame, focusText,
		image.Pt(textX, y), gocv.FontHersheySimplex, fontScale, focusColor, 1)

	y += lineHeight
	moveText := "Movement: NO"
	if result.HeadMoving {
		moveText = "Movement: YES"
	}
	gocv.PutText(frame, moveText,
		image.Pt(textX, y), gocv.FontHersheySimplex, fontScale, textColor, 1)
}
