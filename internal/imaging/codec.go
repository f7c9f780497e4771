package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"themegen/internal/domain"
)

var encoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// Decode parses an image in any registered format. The header is checked
// first so a declared size above MaxDimension is rejected before any pixel
// buffer is allocated.
func Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLogo, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, fmt.Errorf("%w: declared size %dx%d outside 1..%d", domain.ErrInvalidLogo, cfg.Width, cfg.Height, MaxDimension)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLogo, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty bounds", domain.ErrInvalidLogo)
	}
	return img, nil
}

// EncodePNG encodes img without ancillary chunks, so equal pixels always give
// equal bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
