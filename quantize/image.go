package quantize

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Index maps img to a flattened byte-per-pixel index buffer sized to
// target, nearest-color matching each pixel against pal. If img's bounds
// don't already match target, it is letterboxed onto a black canvas of
// target's size using golang.org/x/image/draw rather than silently
// cropping or leaving the mismatch to the caller.
func Index(img image.Image, pal Palette, target image.Rectangle) []byte {
	src := img
	if img.Bounds().Dx() != target.Dx() || img.Bounds().Dy() != target.Dy() {
		src = letterbox(img, target)
	}

	w, h := target.Dx(), target.Dy()
	out := make([]byte, w*h)
	b := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out[y*w+x] = byte(pal.Index(byte(r>>8), byte(g>>8), byte(bl>>8)))
		}
	}
	return out
}

// letterbox scales img to fit within target while preserving aspect
// ratio, centering it over a black background the exact size of target.
func letterbox(img image.Image, target image.Rectangle) image.Image {
	sb := img.Bounds()
	tw, th := target.Dx(), target.Dy()

	scale := float64(tw) / float64(sb.Dx())
	if alt := float64(th) / float64(sb.Dy()); alt < scale {
		scale = alt
	}
	dw := int(float64(sb.Dx()) * scale)
	dh := int(float64(sb.Dy()) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	ox, oy := (tw-dw)/2, (th-dh)/2
	destRect := image.Rect(ox, oy, ox+dw, oy+dh)
	draw.CatmullRom.Scale(dst, destRect, img, sb, draw.Over, nil)
	return dst
}
