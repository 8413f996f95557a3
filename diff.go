package gifenc

import "bytes"

// rect is a pixel-space sub-window of the canvas.
type rect struct {
	width, height uint16
	top, left     uint16
}

// pixelsEqual decides whether two palette indices, drawn from two
// (possibly different) frames, refer to the same visible color for the
// purpose of diffing. A caller-set transparent index in the current frame
// always counts as "unchanged" (it will be painted transparent regardless
// of what's underneath); a caller-set transparent index in the previous
// frame can't be compared against (its underlying color is unknown to the
// viewer once rendered), so it always counts as "differs".
func pixelsEqual(enc *Encoder, cur, prev *frame, iCur, iBef byte) bool {
	if cur.hasSetTransparent && iCur == cur.transparentIndexIn {
		return true
	}
	if prev.hasSetTransparent && iBef == prev.transparentIndexIn {
		return false
	}
	curTable := enc.cfg.GlobalPalette
	if cur.useLocalTable {
		curTable = cur.localPalette
	}
	prevTable := enc.cfg.GlobalPalette
	if prev.useLocalTable {
		prevTable = prev.localPalette
	}
	sizeCur, sizePrev := len(curTable)/3, len(prevTable)/3
	if int(iCur) >= sizeCur || int(iBef) >= sizePrev {
		return false
	}
	c, p := int(iCur)*3, int(iBef)*3
	return curTable[c] == prevTable[p] && curTable[c+1] == prevTable[p+1] && curTable[c+2] == prevTable[p+2]
}

// diffAreaFast finds the minimal bounding rect that differs between two
// full-canvas pixel buffers using raw byte comparison: valid only when
// both frames share the global palette and neither sets a caller
// transparent index, which is the common case and by far the hottest
// path for long animations.
func diffAreaFast(cur, prev []byte, width, height uint16) (rect, bool) {
	w, h := int(width), int(height)
	top := -1
	for y := 0; y < h; y++ {
		off := y * w
		if !bytes.Equal(cur[off:off+w], prev[off:off+w]) {
			top = y
			break
		}
	}
	if top == -1 {
		return rect{}, true
	}
	bottom := h - 1
	for bottom > top {
		off := bottom * w
		if !bytes.Equal(cur[off:off+w], prev[off:off+w]) {
			break
		}
		bottom--
	}
	left := 0
	for x := 0; ; x++ {
		eq := true
		for y := top; y <= bottom; y++ {
			if cur[y*w+x] != prev[y*w+x] {
				eq = false
				break
			}
		}
		if !eq {
			left = x
			break
		}
	}
	right := w - 1
	for x := w - 1; ; x-- {
		eq := true
		for y := top; y <= bottom; y++ {
			if cur[y*w+x] != prev[y*w+x] {
				eq = false
				break
			}
		}
		if !eq {
			right = x
			break
		}
	}
	return rect{
		width:  uint16(right - left + 1),
		height: uint16(bottom - top + 1),
		top:    uint16(top),
		left:   uint16(left),
	}, false
}

// diffAreaGeneral is diffAreaFast's counterpart for frames that use a
// local palette or a caller-set transparent index, where raw byte
// equality isn't sufficient: every pixel comparison goes through
// pixelsEqual.
func diffAreaGeneral(enc *Encoder, cur, prev *frame, width, height uint16) (rect, bool) {
	w, h := int(width), int(height)
	rowEqual := func(y int) bool {
		off := y * w
		for x := 0; x < w; x++ {
			if !pixelsEqual(enc, cur, prev, cur.pixels[off+x], prev.pixels[off+x]) {
				return false
			}
		}
		return true
	}
	top := -1
	for y := 0; y < h; y++ {
		if !rowEqual(y) {
			top = y
			break
		}
	}
	if top == -1 {
		return rect{}, true
	}
	bottom := h - 1
	for bottom > top && rowEqual(bottom) {
		bottom--
	}
	colEqual := func(x int) bool {
		for y := top; y <= bottom; y++ {
			if !pixelsEqual(enc, cur, prev, cur.pixels[y*w+x], prev.pixels[y*w+x]) {
				return false
			}
		}
		return true
	}
	left := 0
	for x := 0; ; x++ {
		if !colEqual(x) {
			left = x
			break
		}
	}
	right := w - 1
	for x := w - 1; ; x-- {
		if !colEqual(x) {
			right = x
			break
		}
	}
	return rect{
		width:  uint16(right - left + 1),
		height: uint16(bottom - top + 1),
		top:    uint16(top),
		left:   uint16(left),
	}, false
}

// diffWindow computes the minimal dirty rectangle between cur and its
// predecessor and returns a freshly allocated, cropped copy of cur's
// pixels over that rectangle. If the frames are pixel-identical it
// returns a 1x1 placeholder at the origin instead of an empty rectangle,
// since GIF has no way to encode a zero-size image.
func diffWindow(enc *Encoder, cur, prev *frame) (r rect, cropped []byte, equal bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, cropped, equal = rect{}, nil, false
			err = allocErrorf(rec)
		}
	}()

	width, height := enc.cfg.Width, enc.cfg.Height
	fast := !cur.useLocalTable && !prev.useLocalTable && !cur.hasSetTransparent && !prev.hasSetTransparent
	if fast {
		r, equal = diffAreaFast(cur.pixels, prev.pixels, width, height)
	} else {
		r, equal = diffAreaGeneral(enc, cur, prev, width, height)
	}
	if equal {
		r = rect{width: 1, height: 1, top: 0, left: 0}
	}

	w := int(width)
	cropped, err = safeMake(int(r.width) * int(r.height))
	if err != nil {
		return rect{}, nil, false, err
	}
	for row := 0; row < int(r.height); row++ {
		srcOff := (int(r.top)+row)*w + int(r.left)
		dstOff := row * int(r.width)
		copy(cropped[dstOff:dstOff+int(r.width)], cur.pixels[srcOff:srcOff+int(r.width)])
	}
	return r, cropped, equal, nil
}
