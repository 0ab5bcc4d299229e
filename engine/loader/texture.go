package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-showcase/common"

	_ "golang.org/x/image/webp"
)

// meanTexelSamples caps how many pixels per axis contribute to the average.
const meanTexelSamples = 64

// decodeMeanTexel decodes a PNG, JPEG or WebP image and returns its average color in
// linear [0,1] RGBA. Large images are sampled on a regular grid.
//
// Parameters:
//   - data: the encoded image
//
// Returns:
//   - common.Color: the mean texel
//   - string: the detected format
//   - error: error if the image cannot be decoded or is empty
func decodeMeanTexel(data []byte) (common.Color, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return common.Color{}, "", fmt.Errorf("failed to decode texture: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return common.Color{}, format, fmt.Errorf("texture has no pixels")
	}

	stepX := max(1, b.Dx()/meanTexelSamples)
	stepY := max(1, b.Dy()/meanTexelSamples)
	var sum [4]float64
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, a := img.At(x, y).RGBA()
			sum[0] += float64(r)
			sum[1] += float64(g)
			sum[2] += float64(bl)
			sum[3] += float64(a)
			n++
		}
	}

	var c common.Color
	for i := range c {
		c[i] = float32(sum[i] / float64(n) / 0xffff)
	}
	return c, format, nil
}
