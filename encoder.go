// Package gifenc is a streaming, single-pass GIF89a encoder. Callers feed
// it already-quantized, palette-indexed frames in display order; it never
// decodes GIFs, generates palettes, or dithers pixels itself (see the
// sibling quantize and dither packages for that).
package gifenc

import (
	"fmt"
	"io"
	"os"
)

// Config describes the canvas an Encoder writes to: its fixed dimensions,
// optional global palette, and animation-wide flags. It is normally built
// with NewConfig and a handful of Option functions, but every field is
// exported so a caller can also build one directly.
type Config struct {
	Width, Height uint16

	// GlobalPalette is RGB triples, at most 256 entries. Ignored if
	// NoGlobalTable is set.
	GlobalPalette []byte
	NoGlobalTable bool

	IsAnimated bool
	NoLoop     bool
	LoopCount  uint16

	// HasTransparency marks the canvas itself as carrying transparency
	// (as opposed to an individual frame's HasAlpha/HasSetTransparent):
	// every frame disposes to background and never optimizes with a
	// diff window or a repurposed transparent index.
	HasTransparency bool

	// KeepIdenticalFrames disables the identical-frame delay merge.
	KeepIdenticalFrames bool

	// Path, if set, is opened with os.Create and owned by the Encoder;
	// Sink is used otherwise and is never closed by the Encoder.
	Path string
	Sink io.Writer
}

// Option configures a Config produced by NewConfig.
type Option func(*Config)

func WithGlobalPalette(palette []byte) Option {
	return func(c *Config) { c.GlobalPalette = palette }
}

func WithNoGlobalTable() Option {
	return func(c *Config) { c.NoGlobalTable = true }
}

func WithAnimation(loopCount uint16) Option {
	return func(c *Config) { c.IsAnimated = true; c.LoopCount = loopCount }
}

func WithNoLoop() Option {
	return func(c *Config) { c.NoLoop = true }
}

func WithCanvasTransparency() Option {
	return func(c *Config) { c.HasTransparency = true }
}

func WithKeepIdenticalFrames() Option {
	return func(c *Config) { c.KeepIdenticalFrames = true }
}

func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

func WithSink(sink io.Writer) Option {
	return func(c *Config) { c.Sink = sink }
}

// NewConfig builds a Config for a fixed-size canvas, applying opts in order.
func NewConfig(width, height uint16, opts ...Option) Config {
	cfg := Config{Width: width, Height: height}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FrameConfig describes one frame submitted to AddFrame. Pixels must be
// exactly Width*Height indices into whichever palette the frame resolves
// to (LocalPalette if UseLocalTable, else Config.GlobalPalette).
type FrameConfig struct {
	Pixels []byte

	UseLocalTable bool
	LocalPalette  []byte // RGB triples, at most 256 entries

	// HasSetTransparent marks TransparentIndex as a color the caller has
	// already baked into Pixels to mean "transparent"; HasAlpha marks
	// this frame as genuinely alpha-blended, forcing the predecessor to
	// dispose to background. The two are mutually exclusive.
	HasSetTransparent bool
	HasAlpha          bool
	TransparentIndex  uint8

	Interlaced bool
	Delay      uint16

	// UseDiffWindow crops this frame to its minimal changed rectangle
	// against the previous frame. UseTransparency additionally repaints
	// unchanged pixels within that window to a synthesized transparent
	// index, shrinking the LZW input further. Both are silently disabled
	// for the first frame and for any frame with alpha.
	UseDiffWindow   bool
	UseTransparency bool
}

// Encoder is a single-canvas, single-pass GIF89a stream writer. It is not
// safe for concurrent use; frames must be added in display order.
type Encoder struct {
	cfg    Config
	raw    *rawWriter
	queue  *frameQueue
	result Result
	err    error
	file   *os.File
}

// New validates cfg, opens its Path (if set) or adopts its Sink, writes
// the GIF header/global table/loop extension, and returns a ready-to-use
// handle. The returned error is nil only on success; on failure no bytes
// beyond a partially-written header may have reached the sink.
func New(cfg Config) (*Encoder, error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: canvas dimensions must be non-zero", ErrValidation)
	}

	var file *os.File
	sink := cfg.Sink
	if cfg.Path != "" {
		f, err := os.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %q: %v", ErrValidation, cfg.Path, err)
		}
		file, sink = f, f
	} else if sink == nil {
		return nil, fmt.Errorf("%w: Config needs either Path or Sink", ErrValidation)
	}

	var gct []byte
	if !cfg.NoGlobalTable {
		n := len(cfg.GlobalPalette) / 3
		if n == 0 || len(cfg.GlobalPalette)%3 != 0 || n > 256 {
			if file != nil {
				file.Close()
			}
			return nil, fmt.Errorf("%w: global palette must hold 1-256 RGB entries unless NoGlobalTable is set", ErrValidation)
		}
		gct = append([]byte(nil), cfg.GlobalPalette...)
	}

	raw, err := newRawWriter(rawConfig{
		sink:          sink,
		width:         cfg.Width,
		height:        cfg.Height,
		globalPalette: gct,
		isAnimated:    cfg.IsAnimated,
		noLoop:        cfg.NoLoop,
		loopCount:     cfg.LoopCount,
	})
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	e := &Encoder{cfg: cfg, raw: raw, result: pending, file: file}
	e.cfg.GlobalPalette = gct
	e.queue = newFrameQueue(e)
	return e, nil
}

// AddFrame queues fc for encoding. The frame queue may hold it back up to
// two submissions before it actually reaches the output (to merge
// identical frames and compute diff windows), so a successful return
// doesn't mean fc's bytes are on the wire yet — only Close guarantees
// that.
func (e *Encoder) AddFrame(fc FrameConfig) (Result, error) {
	if e.result != OK && e.result != pending {
		return e.result, e.err
	}
	if err := e.queue.submit(fc); err != nil {
		e.result, e.err = classifyErr(err), err
		return e.result, err
	}
	e.result = OK
	return OK, nil
}

// Close flushes every frame still held in the queue, writes the trailer,
// and closes the sink if New opened it. Once the handle has failed, the
// queued frames are no longer flushed, but the trailer and the file close
// are still attempted. It returns the first error observed
// across the handle's lifetime (including one from a prior AddFrame).
// A handle that never saw a single successful AddFrame closes as Error.
func (e *Encoder) Close() (Result, error) {
	firstErr := e.err
	firstResult := e.result

	if e.result == OK || e.result == pending {
		if ferr := e.queue.flushRemaining(); ferr != nil && firstErr == nil {
			firstErr, firstResult = ferr, classifyErr(ferr)
		}
	}
	if cerr := e.raw.close(); cerr != nil && firstErr == nil {
		firstErr, firstResult = cerr, WriteError
	}
	if e.file != nil {
		if cerr := e.file.Close(); cerr != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %v", ErrClose, cerr)
			firstResult = CloseError
		}
	}

	if firstResult == pending {
		firstResult = Error
		if firstErr == nil {
			firstErr = fmt.Errorf("%w: no frame was ever added", ErrValidation)
		}
	}
	e.result, e.err = firstResult, firstErr
	return firstResult, firstErr
}
