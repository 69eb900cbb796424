package photos

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxWidth bounds the pixel width of every normalized photo.
	DefaultMaxWidth = 1024
	// DefaultQuality is the JPEG quality used for every re-encode.
	DefaultQuality = 75
	// DefaultMaxPixels caps the declared size of an input before it is decoded.
	DefaultMaxPixels = 80_000_000
)

var (
	ErrInvalidImage = errors.New("invalid image")
	// ErrImageTooLarge is also an ErrInvalidImage.
	ErrImageTooLarge = fmt.Errorf("%w: too many pixels", ErrInvalidImage)
)

// Photo is a base64-encoded JPEG payload, ready to be sent to the
// analysis and inventory collaborators as-is.
type Photo string

// Bytes decodes the base64 payload back into JPEG bytes.
func (p Photo) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(string(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, nil
}

// Normalizer bounds and re-encodes captured photos.
type Normalizer struct {
	maxWidth  int
	quality   int
	maxPixels int
}

// NewNormalizer returns a normalizer. Non-positive values fall back to the defaults.
func NewNormalizer(maxWidth, quality int) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Normalizer{maxWidth: maxWidth, quality: quality, maxPixels: DefaultMaxPixels}
}

// WithMaxPixels changes the pixel cap checked before decoding.
func (n *Normalizer) WithMaxPixels(maxPixels int) *Normalizer {
	if maxPixels > 0 {
		n.maxPixels = maxPixels
	}
	return n
}

// MaxWidth reports the configured width bound.
func (n *Normalizer) MaxWidth() int {
	return n.maxWidth
}

// Normalize decodes raw image bytes, scales them down to the width bound
// when needed and re-encodes them as JPEG.
func (n *Normalizer) Normalize(raw []byte) (Photo, error) {
	if err := n.checkSize(raw); err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// height 0 keeps the aspect ratio
	if img.Bounds().Dx() > n.maxWidth {
		img = imaging.Resize(img, n.maxWidth, 0, imaging.Lanczos)
	}

	return n.encode(img)
}

// Rotate turns the photo 90° clockwise. Every call is a lossy re-encode.
func (n *Normalizer) Rotate(p Photo) (Photo, error) {
	data, err := p.Bytes()
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	// imaging rotates counter-clockwise
	return n.encode(imaging.Rotate270(img))
}

// checkSize reads only the header so oversized inputs are refused before
// their pixels are allocated.
func (n *Normalizer) checkSize(raw []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, n.maxPixels)
	}
	return nil
}

func (n *Normalizer) encode(img image.Image) (Photo, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return Photo(base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// Dimensions reports the pixel size of an encoded photo without a full decode.
func Dimensions(p Photo) (int, int, error) {
	data, err := p.Bytes()
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return cfg.Width, cfg.Height, nil
}
