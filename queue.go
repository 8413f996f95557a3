package gifenc

import "fmt"

// frame is a queued, not-yet-written animation frame. Disposal and
// transparency fields start at defaults and are mutated in place by a
// later frame's submission (canvas/frame transparency forces the
// predecessor to dispose to background) and again at flush time (diff
// window cropping, transparent-index rewriting).
type frame struct {
	pixels       []byte // full canvas, caller's own copy
	localPalette []byte // nil unless useLocalTable

	useLocalTable     bool
	hasSetTransparent bool
	hasAlpha          bool
	interlaced        bool

	transparentIndexIn uint8 // caller's index, meaningful if hasSetTransparent
	delay              uint16

	useDiffWindow   bool
	useTransparency bool
	disposal        uint8
	transIndex      uint8 // resolved at flush time
}

// frameQueue is the 3-slot ring buffer that lets an identical-frame merge
// or a diff-window crop look one frame ahead before anything is
// irrevocably written. slots[0] is always the most recently flushed
// frame (the "previous" frame for the next flush); slots[1] and slots[2]
// are pending. head indexes the most recently queued slot.
type frameQueue struct {
	enc   *Encoder
	slots [3]*frame
	head  int
}

func newFrameQueue(enc *Encoder) *frameQueue {
	return &frameQueue{enc: enc, head: 1}
}

func (q *frameQueue) submit(fc FrameConfig) error {
	enc := q.enc
	hasAlpha := enc.cfg.HasTransparency || fc.HasAlpha
	if hasAlpha && fc.HasSetTransparent {
		return fmt.Errorf("%w: a frame cannot combine HasAlpha/canvas HasTransparency with HasSetTransparent", ErrValidation)
	}
	if enc.cfg.HasTransparency && fc.HasAlpha {
		return fmt.Errorf("%w: canvas HasTransparency and frame HasAlpha are mutually exclusive", ErrValidation)
	}
	if !fc.UseLocalTable && enc.cfg.NoGlobalTable {
		return fmt.Errorf("%w: frame has no local table and the canvas has no global table", ErrValidation)
	}
	if len(fc.Pixels) != int(enc.cfg.Width)*int(enc.cfg.Height) {
		return fmt.Errorf("%w: pixel buffer has %d bytes, want %dx%d", ErrValidation, len(fc.Pixels), enc.cfg.Width, enc.cfg.Height)
	}
	if fc.UseLocalTable {
		n := len(fc.LocalPalette) / 3
		if n == 0 || len(fc.LocalPalette)%3 != 0 || n > 256 {
			return fmt.Errorf("%w: local palette must hold 1-256 RGB entries", ErrValidation)
		}
	}

	if head := q.slots[q.head]; head != nil {
		newDelay := uint32(fc.Delay) + uint32(head.delay)
		if newDelay <= 0xFFFF && !enc.cfg.KeepIdenticalFrames {
			same, err := q.identicalToHead(fc, head)
			if err != nil {
				return err
			}
			if same {
				head.delay = uint16(newDelay)
				return nil
			}
		}
	}

	i := q.head
	for i < 3 && q.slots[i] != nil {
		i++
	}
	if i == 3 {
		if err := flushFrame(enc, q.slots[1], q.slots[0]); err != nil {
			return err
		}
		q.slots[0] = q.slots[1]
		q.slots[1] = q.slots[2]
		q.slots[2] = nil
		i = 2
	}

	nf := &frame{
		pixels:             append([]byte(nil), fc.Pixels...),
		useLocalTable:      fc.UseLocalTable,
		hasSetTransparent:  fc.HasSetTransparent,
		hasAlpha:           fc.HasAlpha,
		interlaced:         fc.Interlaced,
		delay:              fc.Delay,
		useDiffWindow:      fc.UseDiffWindow,
		useTransparency:    fc.UseTransparency,
		transparentIndexIn: fc.TransparentIndex,
		disposal:           DisposalLeave,
	}
	if fc.UseLocalTable {
		nf.localPalette = append([]byte(nil), fc.LocalPalette...)
	}
	q.slots[i] = nf
	q.head = i

	prev := q.slots[i-1]
	if enc.cfg.HasTransparency || fc.HasAlpha {
		nf.disposal = DisposalBackground
		if prev != nil {
			prev.useTransparency = false
			prev.useDiffWindow = false
			prev.disposal = DisposalBackground
		}
	}
	if fc.HasAlpha || fc.HasSetTransparent {
		nf.transIndex = fc.TransparentIndex
	}
	return nil
}

// identicalToHead compares a not-yet-queued frame against the current
// head using the same equality rule diffWindow's fast/general split uses.
func (q *frameQueue) identicalToHead(fc FrameConfig, head *frame) (bool, error) {
	enc := q.enc
	cur := &frame{
		pixels:             fc.Pixels,
		useLocalTable:      fc.UseLocalTable,
		localPalette:       fc.LocalPalette,
		hasSetTransparent:  fc.HasSetTransparent,
		transparentIndexIn: fc.TransparentIndex,
	}
	if !cur.useLocalTable && !head.useLocalTable && !cur.hasSetTransparent && !head.hasSetTransparent {
		return bytesEqual(cur.pixels, head.pixels), nil
	}
	w, h := int(enc.cfg.Width), int(enc.cfg.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !pixelsEqual(enc, cur, head, cur.pixels[y*w+x], head.pixels[y*w+x]) {
				return false, nil
			}
		}
	}
	return true, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// flushRemaining flushes whatever is left in the queue, in order, at
// Close time.
func (q *frameQueue) flushRemaining() error {
	for i := 1; i < 3; i++ {
		if q.slots[i] != nil {
			if err := flushFrame(q.enc, q.slots[i], q.slots[i-1]); err != nil {
				return err
			}
		}
	}
	return nil
}

// pickTransparentIndex chooses a palette index to repurpose as the
// transparent color for a diff-window frame: the last index of the
// smallest power-of-two table that holds paletteSize colors plus the
// transparent entry itself, clamped to a minimum of 3.
func pickTransparentIndex(paletteSize uint16) uint8 {
	e := nextPow2Exp(paletteSize + 1)
	v := (uint16(1) << e) - 1
	if v < 3 {
		v = 3
	}
	return uint8(v)
}

// rewriteTransparentPixels repaints every pixel in the (possibly cropped)
// current buffer that's unchanged from the corresponding canvas position
// in the previous frame to transIndex.
func rewriteTransparentPixels(enc *Encoder, cur, prev *frame, pixels []byte, width, height, top, left uint16, transIndex uint8) {
	w := int(enc.cfg.Width)
	cw := int(width)
	for y := 0; y < int(height); y++ {
		for x := 0; x < cw; x++ {
			curPixel := pixels[y*cw+x]
			prevPixel := prev.pixels[(int(top)+y)*w+int(left)+x]
			if pixelsEqual(enc, cur, prev, curPixel, prevPixel) {
				pixels[y*cw+x] = transIndex
			}
		}
	}
}

// flushFrame resolves cur's disposal/diff-window/transparency policy
// against prev (nil for the very first frame) and writes it through the
// raw writer. This is the one place animation-level policy becomes
// concrete GIF bytes.
func flushFrame(enc *Encoder, cur, prev *frame) error {
	isFirst := prev == nil
	hasAlpha := enc.cfg.HasTransparency || cur.hasAlpha

	if isFirst || hasAlpha {
		cur.useTransparency = false
		cur.useDiffWindow = false
	}
	if cur.hasSetTransparent {
		cur.useTransparency = false
	}

	var numPaletteEntries uint16
	if cur.useLocalTable {
		numPaletteEntries = uint16(len(cur.localPalette) / 3)
	} else {
		numPaletteEntries = uint16(len(enc.cfg.GlobalPalette) / 3)
	}
	if numPaletteEntries == 256 {
		cur.useTransparency = false
	}

	width, height, top, left := enc.cfg.Width, enc.cfg.Height, uint16(0), uint16(0)
	pixels := cur.pixels
	if cur.useDiffWindow {
		r, cropped, _, err := diffWindow(enc, cur, prev)
		if err != nil {
			return err
		}
		width, height, top, left = r.width, r.height, r.top, r.left
		pixels = cropped
	}

	if cur.useTransparency {
		transIndex := pickTransparentIndex(numPaletteEntries)
		if !cur.useDiffWindow {
			pixels = append([]byte(nil), cur.pixels...)
		}
		rewriteTransparentPixels(enc, cur, prev, pixels, width, height, top, left, transIndex)
		cur.transIndex = transIndex
	}

	hasTrans := hasAlpha || cur.useTransparency || cur.hasSetTransparent
	rfc := rawFrameConfig{
		pixels:          pixels,
		width:           width,
		height:          height,
		top:             top,
		left:            left,
		hasTransparency: hasTrans,
		transIndex:      cur.transIndex,
		disposal:        cur.disposal,
		delay:           cur.delay,
		interlaced:      cur.interlaced,
	}
	if cur.useLocalTable {
		rfc.localPalette = cur.localPalette
	}
	return enc.raw.addFrame(rfc)
}
