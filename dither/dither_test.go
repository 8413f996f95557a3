package dither

import (
	"testing"

	"github.com/tenbit/gifenc/quantize"
)

func TestPixelsReturnsOneIndexPerPixel(t *testing.T) {
	const w, h = 4, 4
	rgb := make([]byte, w*h*3)
	for i := range rgb {
		rgb[i] = byte(i % 256)
	}
	pal := quantize.Build(rgb, 1)

	out := Pixels(rgb, w, h, pal, FloydSteinberg, true)
	if len(out) != w*h {
		t.Fatalf("got %d indices, want %d", len(out), w*h)
	}
	for _, idx := range out {
		if int(idx) >= 256 {
			t.Fatalf("index %d out of palette range", idx)
		}
	}
}
