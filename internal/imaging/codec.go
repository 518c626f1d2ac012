package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	// Upstream snapshots arrive as JPEG or PNG.
	_ "image/png"

	"lookout/internal/services"
)

// DefaultQuality bounds the payload size of re-encoded frames. Pixel
// fidelity is secondary evidence for the model; the text metadata carries
// most of the signal.
const DefaultQuality = 60

// Decode parses image bytes into pixels.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "imaging", "decode", "unsupported or corrupt image", err)
	}
	return img, nil
}

// Dimensions reads the image header without decoding pixel data.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, services.Wrap(services.ErrDecode, "imaging", "dimensions", "unsupported or corrupt image", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ResizeNearest downscales an image to targetWidth using nearest-neighbor
// sampling and re-encodes it as JPEG at the given quality (DefaultQuality
// when quality is not positive).
//
// The input is returned unchanged when targetWidth is not positive, when it
// is at least the source width (no upscaling), or when the bytes cannot be
// decoded; an unusable frame is the provider's problem to reject, not a
// reason to drop the notification.
func ResizeNearest(data []byte, targetWidth, quality int) ([]byte, error) {
	if targetWidth <= 0 {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}
	bounds := img.Bounds()
	sourceWidth := bounds.Dx()
	sourceHeight := bounds.Dy()
	if sourceWidth <= 0 || sourceHeight <= 0 || targetWidth >= sourceWidth {
		return data, nil
	}

	targetHeight := int(math.Round(float64(sourceHeight) * float64(targetWidth) / float64(sourceWidth)))
	if targetHeight < 1 {
		targetHeight = 1
	}

	resized := scaleNearest(img, targetWidth, targetHeight)

	if quality <= 0 {
		quality = DefaultQuality
	}
	if quality > 100 {
		quality = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// scaleNearest maps every destination pixel to the source pixel at
// floor(destIndex * sourceDim / destDim) on each axis. Output alpha is
// always opaque.
func scaleNearest(img image.Image, targetWidth, targetHeight int) *image.RGBA {
	bounds := img.Bounds()
	sourceWidth := bounds.Dx()
	sourceHeight := bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	for y := 0; y < targetHeight; y++ {
		sourceY := bounds.Min.Y + y*sourceHeight/targetHeight
		for x := 0; x < targetWidth; x++ {
			sourceX := bounds.Min.X + x*sourceWidth/targetWidth
			r, g, b, _ := img.At(sourceX, sourceY).RGBA()
			dst.SetRGBA(x, y, color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: 0xff,
			})
		}
	}
	return dst
}
