// Package avatar validates uploaded profile images and converts them to the
// stored form: a 250×250 PNG. The aspect ratio of the upload is not kept.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoding
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 1_000_000

	// Size is the edge length of a stored avatar in pixels.
	Size = 250

	// maxPixels bounds the decoded size of an upload.
	maxPixels = 40_000_000
)

// ErrUnsupportedMedia is the sentinel every rejection unwraps to.
var ErrUnsupportedMedia = errors.New("unsupported media")

// MediaError describes why an upload was rejected. Reason is safe to show
// to clients.
type MediaError struct {
	Reason string
}

func (e *MediaError) Error() string { return e.Reason }

func (e *MediaError) Unwrap() error { return ErrUnsupportedMedia }

// Rejection reasons.
const (
	ReasonTooLarge     = "File too large"
	ReasonBadExtension = "File types are restricted to .jpg .jpeg or .png"
	ReasonUnreadable   = "Unable to process image"
)

var (
	errTooLarge      = &MediaError{Reason: ReasonTooLarge}
	errBadExtension  = &MediaError{Reason: ReasonBadExtension}
	errUndecodable   = &MediaError{Reason: ReasonUnreadable}
	allowedExtension = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
)

// CheckFilename reports whether filename has an accepted image extension.
func CheckFilename(filename string) error {
	if !allowedExtension[strings.ToLower(filepath.Ext(filename))] {
		return errBadExtension
	}
	return nil
}

// Processor resizes accepted uploads to a square PNG.
type Processor struct {
	maxBytes int
	size     int
	scaler   draw.Scaler
}

// NewProcessor returns a Processor with the standard limits.
func NewProcessor() *Processor {
	return &Processor{
		maxBytes: MaxUploadBytes,
		size:     Size,
		scaler:   draw.CatmullRom,
	}
}

// Process checks the upload against the size and extension limits, decodes
// it, scales it to exactly Size×Size and encodes the result as PNG.
func (p *Processor) Process(filename string, data []byte) ([]byte, error) {
	if len(data) > p.maxBytes {
		return nil, errTooLarge
	}
	if err := CheckFilename(filename); err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, errUndecodable
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errUndecodable
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	p.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
