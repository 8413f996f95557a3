// Package dither applies error-diffusion dithering against a quantized
// palette before gifenc ever sees the resulting indices. Like quantize,
// it is entirely caller-side and never imported by gifenc.
package dither

import "github.com/tenbit/gifenc/quantize"

// Kernel is an error-diffusion kernel: each entry is {weight, dx, dy}.
type Kernel [][3]float64

var (
	FalseFloydSteinberg = Kernel{
		{3.0 / 8.0, 1, 0},
		{3.0 / 8.0, 0, 1},
		{2.0 / 8.0, 1, 1},
	}

	FloydSteinberg = Kernel{
		{7.0 / 16.0, 1, 0},
		{3.0 / 16.0, -1, 1},
		{5.0 / 16.0, 0, 1},
		{1.0 / 16.0, 1, 1},
	}

	Stucki = Kernel{
		{8.0 / 42.0, 1, 0},
		{4.0 / 42.0, 2, 0},
		{2.0 / 42.0, -2, 1},
		{4.0 / 42.0, -1, 1},
		{8.0 / 42.0, 0, 1},
		{4.0 / 42.0, 1, 1},
		{2.0 / 42.0, 2, 1},
		{1.0 / 42.0, -2, 2},
		{2.0 / 42.0, -1, 2},
		{4.0 / 42.0, 0, 2},
		{2.0 / 42.0, 1, 2},
		{1.0 / 42.0, 2, 2},
	}

	Atkinson = Kernel{
		{1.0 / 8.0, 1, 0},
		{1.0 / 8.0, 2, 0},
		{1.0 / 8.0, -1, 1},
		{1.0 / 8.0, 0, 1},
		{1.0 / 8.0, 1, 1},
		{1.0 / 8.0, 0, 2},
	}
)

// Pixels applies kernel to a flattened RGB buffer (width*height*3 bytes),
// returning the palette index of each pixel after diffusion. serpentine
// reverses scan direction every other row, halving directional bias.
func Pixels(rgb []byte, width, height int, pal quantize.Palette, kernel Kernel, serpentine bool) []byte {
	data := append([]byte(nil), rgb...)
	out := make([]byte, width*height)
	palRGB := pal.RGB()
	direction := 1

	for y := 0; y < height; y++ {
		if serpentine {
			direction = -direction
		}
		x, xEnd := 0, width
		if direction == -1 {
			x, xEnd = width-1, -1
		}

		for x != xEnd {
			idx := (y*width + x) * 3
			r1, g1, b1 := int(data[idx]), int(data[idx+1]), int(data[idx+2])

			colorIdx := pal.Index(byte(r1), byte(g1), byte(b1))
			out[y*width+x] = byte(colorIdx)

			pOff := colorIdx * 3
			r2, g2, b2 := int(palRGB[pOff]), int(palRGB[pOff+1]), int(palRGB[pOff+2])
			er, eg, eb := r1-r2, g1-g2, b1-b2

			i, iEnd := 0, len(kernel)
			if direction == -1 {
				i, iEnd = len(kernel)-1, -1
			}
			for i != iEnd {
				dx, dy := int(kernel[i][1]), int(kernel[i][2])
				nx, ny := x+dx, y+dy
				if nx >= 0 && nx < width && ny >= 0 && ny < height {
					w := kernel[i][0]
					nIdx := (ny*width + nx) * 3
					data[nIdx] = clamp(int(data[nIdx]) + int(float64(er)*w))
					data[nIdx+1] = clamp(int(data[nIdx+1]) + int(float64(eg)*w))
					data[nIdx+2] = clamp(int(data[nIdx+2]) + int(float64(eb)*w))
				}
				if direction == 1 {
					i++
				} else {
					i--
				}
			}
			x += direction
		}
	}
	return out
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
