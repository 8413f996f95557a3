package gifenc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func grayPalette(n int) []byte {
	p := make([]byte, n*3)
	for i := 0; i < n; i++ {
		p[i*3], p[i*3+1], p[i*3+2] = byte(i), byte(i), byte(i)
	}
	return p
}

func TestNewRejectsZeroDimensions(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(NewConfig(0, 4, WithGlobalPalette(grayPalette(2)), WithSink(&buf)))
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewRejectsMissingSink(t *testing.T) {
	_, err := New(NewConfig(4, 4, WithGlobalPalette(grayPalette(2))))
	require.ErrorIs(t, err, ErrValidation)
}

func TestSingleOpaqueFrameRoundTripsHeaderAndTrailer(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(1, 1, WithGlobalPalette(grayPalette(2)), WithSink(&buf)))
	require.NoError(t, err)

	res, err := enc.AddFrame(FrameConfig{Pixels: []byte{0}})
	require.NoError(t, err)
	require.Equal(t, OK, res)

	res, err = enc.Close()
	require.NoError(t, err)
	require.Equal(t, OK, res)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte("GIF89a")))
	require.Equal(t, byte(';'), out[len(out)-1])
}

func TestCloseWithoutAnyFrameIsError(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 2, WithGlobalPalette(grayPalette(2)), WithSink(&buf)))
	require.NoError(t, err)

	res, err := enc.Close()
	require.Error(t, err)
	require.Equal(t, Error, res)
}

func TestAddFrameRejectsOutOfRangePixelIndex(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 1, WithGlobalPalette(grayPalette(2)), WithSink(&buf)))
	require.NoError(t, err)

	// The 2-entry palette pads to an init_dict_len of 4; index 4 is the
	// first value that actually overruns the dictionary's root table. The
	// check runs when the frame is flushed, which the third distinct
	// submission triggers by filling the queue.
	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 4}})
	require.NoError(t, err)
	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 1}})
	require.NoError(t, err)
	res, err := enc.AddFrame(FrameConfig{Pixels: []byte{1, 0}})
	require.ErrorIs(t, err, ErrIndex)
	require.Equal(t, IndexError, res)

	// The handle is poisoned: a later AddFrame returns the same result
	// without doing any work.
	res, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 0}})
	require.Error(t, err)
	require.Equal(t, IndexError, res)
}

func TestFullPaletteUsesSevenAsSizeExponent(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(1, 1, WithGlobalPalette(grayPalette(256)), WithSink(&buf)))
	require.NoError(t, err)
	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{255}})
	require.NoError(t, err)
	_, err = enc.Close()
	require.NoError(t, err)

	packed := buf.Bytes()[10]
	require.Equal(t, byte(0x80|7), packed)
}

func TestIdenticalFramesMergeDelayInsteadOfQueuing(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 2, WithGlobalPalette(grayPalette(2)), WithAnimation(0), WithSink(&buf)))
	require.NoError(t, err)

	px := []byte{0, 1, 1, 0}
	_, err = enc.AddFrame(FrameConfig{Pixels: px, Delay: 50})
	require.NoError(t, err)
	_, err = enc.AddFrame(FrameConfig{Pixels: append([]byte(nil), px...), Delay: 60})
	require.NoError(t, err)

	require.Equal(t, uint16(110), enc.queue.slots[1].delay)

	_, err = enc.Close()
	require.NoError(t, err)
}

func TestIdenticalFramesDoNotMergeOnDelayOverflow(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 2, WithGlobalPalette(grayPalette(2)), WithAnimation(0), WithSink(&buf)))
	require.NoError(t, err)

	px := []byte{0, 1, 1, 0}
	_, err = enc.AddFrame(FrameConfig{Pixels: px, Delay: 60000})
	require.NoError(t, err)
	_, err = enc.AddFrame(FrameConfig{Pixels: append([]byte(nil), px...), Delay: 10000})
	require.NoError(t, err)

	require.Equal(t, uint16(60000), enc.queue.slots[1].delay)
	require.NotNil(t, enc.queue.slots[2])
	require.Equal(t, uint16(10000), enc.queue.slots[2].delay)

	_, err = enc.Close()
	require.NoError(t, err)
}

func TestInterlacedSingleRowFrameEncodes(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(4, 1, WithGlobalPalette(grayPalette(2)), WithSink(&buf)))
	require.NoError(t, err)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 1, 0, 1}, Interlaced: true})
	require.NoError(t, err)
	_, err = enc.Close()
	require.NoError(t, err)
}

func TestNoGlobalTableRequiresLocalPaletteOnEveryFrame(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(1, 1, WithNoGlobalTable(), WithSink(&buf)))
	require.NoError(t, err)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0}})
	require.ErrorIs(t, err, ErrValidation)

	// The failed AddFrame poisoned that handle, so the frame with a local
	// palette goes to a fresh one.
	buf.Reset()
	enc, err = New(NewConfig(1, 1, WithNoGlobalTable(), WithSink(&buf)))
	require.NoError(t, err)

	res, err := enc.AddFrame(FrameConfig{
		Pixels:        []byte{0},
		UseLocalTable: true,
		LocalPalette:  grayPalette(2),
	})
	require.NoError(t, err)
	require.Equal(t, OK, res)
}

func TestCanvasTransparencyForcesBackgroundDisposalOnPredecessor(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 1, WithGlobalPalette(grayPalette(2)), WithAnimation(0), WithCanvasTransparency(), WithSink(&buf)))
	require.NoError(t, err)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 1}, UseDiffWindow: true, UseTransparency: true})
	require.NoError(t, err)
	require.Equal(t, DisposalBackground, enc.queue.slots[1].disposal)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{1, 0}, UseDiffWindow: true, UseTransparency: true})
	require.NoError(t, err)
	require.False(t, enc.queue.slots[1].useTransparency)
	require.False(t, enc.queue.slots[1].useDiffWindow)
	require.Equal(t, DisposalBackground, enc.queue.slots[1].disposal)

	_, err = enc.Close()
	require.NoError(t, err)
}

func TestPickTransparentIndexClampsToMinimumThree(t *testing.T) {
	require.Equal(t, uint8(3), pickTransparentIndex(2))
	require.Equal(t, uint8(7), pickTransparentIndex(4))
}

// A frame with HasAlpha but no canvas-level HasTransparency must still
// force its own disposal to BACKGROUND and strip its predecessor's
// transparency/diff-window optimizations: spec.md §4.F step 4 triggers on
// "canvas HAS_TRANSPARENCY or the new frame has HAS_ALPHA", not just the
// canvas flag.
func TestFrameAlphaAloneForcesBackgroundDisposalOnPredecessor(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(2, 1, WithGlobalPalette(grayPalette(2)), WithAnimation(0), WithSink(&buf)))
	require.NoError(t, err)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0, 1}, UseDiffWindow: true, UseTransparency: true})
	require.NoError(t, err)
	require.Equal(t, DisposalLeave, enc.queue.slots[1].disposal)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{1, 0}, HasAlpha: true})
	require.NoError(t, err)
	require.False(t, enc.queue.slots[1].useTransparency)
	require.False(t, enc.queue.slots[1].useDiffWindow)
	require.Equal(t, DisposalBackground, enc.queue.slots[1].disposal)
	require.Equal(t, DisposalBackground, enc.queue.slots[2].disposal)

	_, err = enc.Close()
	require.NoError(t, err)
}

func TestSingleEntryPaletteTablesDoNotCorruptSizeField(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New(NewConfig(1, 1, WithGlobalPalette(grayPalette(1)), WithSink(&buf)))
	require.NoError(t, err)

	_, err = enc.AddFrame(FrameConfig{Pixels: []byte{0}})
	require.NoError(t, err)
	_, err = enc.Close()
	require.NoError(t, err)

	out := buf.Bytes()
	packed := out[10]
	require.Equal(t, byte(0x80), packed, "size-of-GCT field must claim 2 entries (exponent 1), not underflow to 7")

	// Header (13) + 2-entry GCT (6 bytes, padded from 1 real entry).
	require.Equal(t, byte(','), out[19], "GCT must be exactly 2 entries (6 bytes) before the image descriptor")
}
