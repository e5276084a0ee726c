package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	// ErrInvalidType means the upload is not an image at all
	ErrInvalidType = errors.New("invalid file type")
	// ErrDecode covers unreadable and corrupt image data
	ErrDecode = errors.New("could not decode image")
)

const (
	// MaxEdge bounds the longer edge of the normalized image
	MaxEdge = 1200
	// MaxSizeKB is the encoded size budget; best effort under the
	// quality floor, not a guarantee
	MaxSizeKB    = 500
	startQuality = 90
	qualityStep  = 10
	floorQuality = 10
)

// Normalized is a self-describing inline image: the data URL carries the
// format and the encoded bytes together
type Normalized struct {
	DataURL string  `json:"dataUrl"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Quality int     `json:"quality"`
	SizeKB  float64 `json:"sizeKb"`
}

// Normalize decodes an uploaded image, scales it down (never up) so the
// longer edge is at most MaxEdge, then re-encodes it as JPEG, stepping
// the quality down from 90 until the estimated size fits the budget or
// the quality floor of 10 is hit. The floor is a hard stop even when the
// budget is not met.
func Normalize(r io.Reader, contentType string) (*Normalized, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrInvalidType
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrDecode
	}

	fitted := imaging.Fit(src, MaxEdge, MaxEdge, imaging.Lanczos)
	bounds := fitted.Bounds()

	quality := startQuality
	for {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: quality}); err != nil {
			return nil, ErrDecode
		}
		dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
		size := EstimateKB(dataURL)

		if size < MaxSizeKB || quality <= floorQuality {
			return &Normalized{
				DataURL: dataURL,
				Width:   bounds.Dx(),
				Height:  bounds.Dy(),
				Quality: quality,
				SizeKB:  size,
			}, nil
		}
		quality -= qualityStep
	}
}

// EstimateKB approximates the decoded byte size of a data URL as
// length × 0.75. Size displays must use this same estimate so they match
// stored reality within rounding.
func EstimateKB(dataURL string) float64 {
	return float64(len(dataURL)) * 0.75 / 1024
}
