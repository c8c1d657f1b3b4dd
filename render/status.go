package render

import (
	"fmt"
	"image"

	"github.com/swdee/go-cliptrack/tracker"
	"gocv.io/x/gocv"
)

// Status renders the tracker status line and frame number in the top left
// corner of the image
func Status(img *gocv.Mat, status tracker.Status, frameIndex int, font Font) {

	text := fmt.Sprintf("Frame %d  %s", frameIndex, status)
	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	bg := image.Rect(0, 0, textSize.X+font.LeftPad+font.RightPad,
		textSize.Y+font.TopPad+font.BottomPad)

	gocv.Rectangle(img, bg, Black, -1)
	gocv.PutTextWithParams(img, text, image.Pt(font.LeftPad, textSize.Y+font.TopPad),
		font.Face, font.Scale, font.Color, font.Thickness, font.LineType, false)
}
