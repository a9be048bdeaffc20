package puzzle

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp"
)

const jpegDataURIPrefix = "data:image/jpeg;base64,"

// decodeCanvas decodes a source image and cuts the canonical working canvas
// from its top-left corner. The result always has bounds (0,0)-(300,200).
func decodeCanvas(src []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, wrap("decodeCanvas", ErrImageProcessing, err)
	}
	b := img.Bounds()
	if !fitsCanvas(b) {
		return nil, newError("decodeCanvas", ErrImageProcessing,
			fmt.Sprintf("image is %dx%d, need at least %dx%d", b.Dx(), b.Dy(), ImageWidth, ImageHeight))
	}
	return imaging.CropAnchor(img, ImageWidth, ImageHeight, imaging.TopLeft), nil
}

// renderPiece extracts the piece at offset and encodes it.
func renderPiece(canvas image.Image, offset int) ([]byte, error) {
	r := PieceRect(offset)
	if !r.In(canvas.Bounds()) {
		return nil, newError("renderPiece", ErrImageProcessing, fmt.Sprintf("piece %v outside %v", r, canvas.Bounds()))
	}
	return encodeJPEG("renderPiece", imaging.Crop(canvas, r))
}

// renderBackground blacks out the piece region over a copy of the canvas and
// blurs the whole result.
func renderBackground(canvas image.Image, offset int) ([]byte, error) {
	r := PieceRect(offset)
	if !r.In(canvas.Bounds()) {
		return nil, newError("renderBackground", ErrImageProcessing, fmt.Sprintf("piece %v outside %v", r, canvas.Bounds()))
	}
	dc := gg.NewContextForImage(canvas)
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), PieceSize, PieceSize)
	dc.Fill()

	return encodeJPEG("renderBackground", imaging.Blur(dc.Image(), BlurSigma))
}

func encodeJPEG(op string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, wrap(op, ErrImageProcessing, err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps JPEG bytes in a self-describing data URI.
func DataURI(jpegBytes []byte) string {
	return jpegDataURIPrefix + base64.StdEncoding.EncodeToString(jpegBytes)
}
