package detect

import (
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/focuslab/focustrack/internal/log"
)

// YuNet detection parameters.
const (
	yunetNMSThreshold = 0.3
	yunetTopK         = 5000
	yunetInputWidth   = 320
	yunetInputHeight  = 320
)

// yunetBackend detects faces with OpenCV's FaceDetectorYN.
type yunetBackend struct {
	detector gocv.FaceDetectorYN
}

// newYuNetBackend loads the ONNX model. Returns nil if the model file
// is missing; the caller treats that as backend unavailable.
func newYuNetBackend(modelPath string, scoreThreshold float32) *yunetBackend {
	if _, err := os.Stat(modelPath); err != nil {
		log.Warn("yunet model not found", "path", modelPath)
		return nil
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		modelPath,
		"", // no config file needed for ONNX
		image.Pt(yunetInputWidth, yunetInputHeight), // updated per frame
		scoreThreshold,
		yunetNMSThreshold,
		yunetTopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	log.Info("yunet model loaded", "path", modelPath)
	return &yunetBackend{detector: detector}
}

func (y *yunetBackend) detect(frame gocv.Mat) []image.Rectangle {
	y.detector.SetInputSize(image.Pt(frame.Cols(), frame.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()
	y.detector.Detect(frame, &faces)

	// YuNet output rows are 15 columns: x, y, w, h, then 5 landmark
	// pairs, then the face score. Only the box is used here; the score
	// threshold was applied inside the detector.
	var rects []image.Rectangle
	for r := 0; r < faces.Rows(); r++ {
		x := int(faces.GetFloatAt(r, 0))
		yPos := int(faces.GetFloatAt(r, 1))
		w := int(faces.GetFloatAt(r, 2))
		h := int(faces.GetFloatAt(r, 3))
		if w <= 0 || h <= 0 {
			continue
		}
		rects = append(rects, image.Rect(x, yPos, x+w, yPos+h))
	}

	if len(rects) > 0 {
		log.Debug("yunet detections", "count", len(rects))
	}
	return rects
}

func (y *yunetBackend) close() {
	y.detector.Close()
}
