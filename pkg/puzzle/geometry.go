// Package puzzle implements the sliding-puzzle captcha protocol: a generator that
// cuts a square piece out of a background image and stores the secret offset,
// and a verifier that checks a submitted offset within a tolerance.
package puzzle

import "image"

// Canonical working geometry. Source images are expected to be exactly
// ImageWidth x ImageHeight (larger images are cut from their top-left corner).
const (
	ImageWidth  = 300
	ImageHeight = 200
	PieceSize   = 50 // piece is a PieceSize x PieceSize square
	PieceY      = 75 // fixed vertical position of the piece

	// MinOffset keeps the piece away from the left edge, MaxOffset is the
	// largest offset the random draw produces.
	MinOffset = 55
	MaxOffset = 248

	DefaultTolerance = 10
	JPEGQuality      = 30
	BlurSigma        = 1.5
)

// PieceRect returns the region of the source image the piece is cut from.
func PieceRect(offset int) image.Rectangle {
	return image.Rect(offset, PieceY, offset+PieceSize, PieceY+PieceSize)
}

// RandomOffset draws an offset uniformly from [MinOffset, MaxOffset].
// intn must behave like rand.IntN: a value in [0, n).
func RandomOffset(intn func(n int) int) int {
	return MinOffset + intn(MaxOffset-MinOffset+1)
}

func fitsCanvas(b image.Rectangle) bool {
	return b.Dx() >= ImageWidth && b.Dy() >= ImageHeight
}
