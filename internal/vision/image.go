package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"
)

// EncodeForAnalysis decodes raw image bytes in any registered format,
// normalizes paletted or alpha-only color modes to RGBA, and returns the
// result as base64-encoded PNG ready for the vision model.
func EncodeForAnalysis(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	rgba, ok := img.(*image.NRGBA)
	if !ok {
		rgba = image.NewNRGBA(img.Bounds())
		draw.Draw(rgba, img.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
