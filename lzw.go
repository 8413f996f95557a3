package gifenc

import "fmt"

// maxDictLen is the point at which the dictionary resets with a fresh
// Clear code, the hard ceiling imposed by a 12-bit code space.
const maxDictLen = 1 << maxCodeLen

// lzwDict is the GIF-flavor LZW dictionary: a dense root table for
// transitions out of a raw pixel value, and a two-level structure for
// everything deeper — each non-root node gets one inline child slot for
// free, and only grows a dense "map row" once it needs a second child.
// This mirrors the reference encoder's dictionary layout rather than the
// textbook hash-table LZW dictionary.
type lzwDict struct {
	initDictLen uint16
	clearCode   uint16
	endCode     uint16

	dictPos uint16
	mapPos  uint16

	root []uint16 // [initDictLen*initDictLen], parent*initDictLen+color -> child

	listColor []uint8  // per non-root node: the inline child's color
	listChild []uint16 // per non-root node: the inline child's code, 0 if unset
	listMap   []uint16 // per non-root node: assigned map row (1-based), 0 if none

	treeMap [][]uint16 // lazily allocated rows of length initDictLen, indexed by mapPos-1
}

func newLZWDict(initDictLen uint16) *lzwDict {
	return &lzwDict{
		initDictLen: initDictLen,
		clearCode:   initDictLen,
		endCode:     initDictLen + 1,
		root:        make([]uint16, int(initDictLen)*int(initDictLen)),
		listColor:   make([]uint8, maxDictLen),
		listChild:   make([]uint16, maxDictLen),
		listMap:     make([]uint16, maxDictLen),
		treeMap:     make([][]uint16, maxDictLen/2+1),
	}
}

// generate walks pixels and returns the logical code stream: a leading
// Clear, one code per dictionary match (re-Clear-ing whenever the
// dictionary fills), and a trailing End.
func (d *lzwDict) generate(pixels []byte) ([]uint16, error) {
	codes := make([]uint16, 0, len(pixels)/2+8)
	emit := func(c uint16) { codes = append(codes, c) }

	d.reset(emit)
	numPixel := len(pixels)
	for strPos := 0; strPos < numPixel; {
		parent := uint16(pixels[strPos])
		if parent >= d.initDictLen {
			return nil, fmt.Errorf("%w: pixel value %d at offset %d exceeds palette of %d entries", ErrIndex, parent, strPos, d.initDictLen)
		}
		next, err := d.crawl(pixels, strPos, parent, emit)
		if err != nil {
			return nil, err
		}
		strPos = next
	}
	emit(d.endCode)
	return codes, nil
}

func (d *lzwDict) reset(emit func(uint16)) {
	d.dictPos = d.initDictLen + 2
	d.mapPos = 1
	clear(d.root)
	clear(d.listColor)
	clear(d.listChild)
	clear(d.listMap)
	emit(d.clearCode)
}

// crawl extends the match starting at parentIndex (a root symbol, i.e. a
// raw pixel value) as far as the dictionary allows, emits exactly one code
// (the longest match found, or parentIndex itself if no extension exists),
// inserts the new dictionary entry the mismatch implies, and returns the
// stream position to resume from.
func (d *lzwDict) crawl(pixels []byte, strPos int, parentIndex uint16, emit func(uint16)) (int, error) {
	numPixel := len(pixels)

	// Single root-table step: parentIndex is still a raw pixel value here.
	if strPos < numPixel-1 {
		nextColor := pixels[strPos+1]
		if uint16(nextColor) >= d.initDictLen {
			return 0, fmt.Errorf("%w: pixel value %d at offset %d exceeds palette of %d entries", ErrIndex, nextColor, strPos+1, d.initDictLen)
		}
		rootIdx := int(parentIndex)*int(d.initDictLen) + int(nextColor)
		if child := d.root[rootIdx]; child != 0 {
			parentIndex = child
			strPos++
		} else {
			emit(parentIndex)
			if d.dictPos < maxDictLen {
				d.root[rootIdx] = d.dictPos
				d.dictPos++
			} else {
				d.reset(emit)
			}
			return strPos + 1, nil
		}
	}

	// Deeper matches: parentIndex may now be a non-root dictionary code.
	for strPos < numPixel-1 {
		nextColor := pixels[strPos+1]
		if uint16(nextColor) >= d.initDictLen {
			return 0, fmt.Errorf("%w: pixel value %d at offset %d exceeds palette of %d entries", ErrIndex, nextColor, strPos+1, d.initDictLen)
		}
		if d.listChild[parentIndex] != 0 && d.listColor[parentIndex] == nextColor {
			parentIndex = d.listChild[parentIndex]
			strPos++
			continue
		}
		if mapPos := d.listMap[parentIndex]; mapPos != 0 {
			if child := d.treeMap[mapPos-1][nextColor]; child != 0 {
				parentIndex = child
				strPos++
				continue
			}
		}
		emit(parentIndex)
		if d.dictPos < maxDictLen {
			d.addChild(parentIndex, nextColor)
		} else {
			d.reset(emit)
		}
		return strPos + 1, nil
	}

	emit(parentIndex)
	return strPos + 1, nil
}

func (d *lzwDict) addChild(parentIndex uint16, nextColor uint8) {
	if mapPos := d.listMap[parentIndex]; mapPos != 0 {
		d.treeMap[mapPos-1][nextColor] = d.dictPos
	} else if d.listChild[parentIndex] != 0 {
		row := d.mapRow(d.mapPos)
		row[nextColor] = d.dictPos
		d.listMap[parentIndex] = d.mapPos
		d.mapPos++
	} else {
		d.listColor[parentIndex] = nextColor
		d.listChild[parentIndex] = d.dictPos
	}
	d.dictPos++
}

// mapRow returns the row for mapPos, allocating it on first use and
// zeroing it on reuse (rows are handed out round-robin across dictionary
// resets, so a reused row may carry stale entries from a prior reset).
func (d *lzwDict) mapRow(mapPos uint16) []uint16 {
	idx := mapPos - 1
	if d.treeMap[idx] == nil {
		d.treeMap[idx] = make([]uint16, d.initDictLen)
	} else {
		clear(d.treeMap[idx])
	}
	return d.treeMap[idx]
}

// lzwEncode runs the dictionary over pixels and bit-packs the result. It
// recovers from allocation panics raised by the dictionary's scratch
// tables (proportional to init_dict_len and to the pixel count) so an
// unreasonably large frame poisons the handle instead of crashing it.
func lzwEncode(pixels []byte, initDictLen uint16, initCodeLen uint8) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = allocErrorf(r)
		}
	}()
	dict := newLZWDict(initDictLen)
	codes, genErr := dict.generate(pixels)
	if genErr != nil {
		return nil, genErr
	}
	return packCodes(codes, initDictLen, initCodeLen), nil
}
