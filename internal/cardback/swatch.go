package cardback

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strings"
)

// ErrNotDataURL is returned for references that are not base64 data URLs.
var ErrNotDataURL = errors.New("cardback: not a base64 data URL")

// maxSamples bounds the pixels averaged by Swatch.
const maxSamples = 64 * 64

// maxPixels bounds the declared dimensions of an image before decoding.
const maxPixels = 4096 * 4096

// ErrImageTooLarge is returned for images whose declared size exceeds maxPixels.
var ErrImageTooLarge = errors.New("cardback: image dimensions too large")

// DecodeDataURL splits a base64 data URL into its media type and payload.
func DecodeDataURL(src string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mime, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("cardback: bad data URL payload: %w", err)
	}
	return mime, data, nil
}

// Swatch decodes an embedded image and returns its average colour as
// #rrggbb.
func Swatch(src string) (string, error) {
	_, data, err := DecodeDataURL(src)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("cardback: cannot decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", errors.New("cardback: empty image")
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("cardback: cannot decode image: %w", err)
	}

	b := img.Bounds()
	if b.Empty() {
		return "", errors.New("cardback: empty image")
	}

	step := 1
	for (b.Dx()/step)*(b.Dy()/step) > maxSamples {
		step++
	}

	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r += uint64(pr >> 8)
			g += uint64(pg >> 8)
			bl += uint64(pb >> 8)
			n++
		}
	}

	return fmt.Sprintf("#%02x%02x%02x", r/n, g/n, bl/n), nil
}
