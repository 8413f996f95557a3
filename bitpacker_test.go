package gifenc

import "testing"

func TestBitWriterPacksLSBFirst(t *testing.T) {
	bw := &bitWriter{}
	bw.writeCode(0x5, 3) // 101
	bw.writeCode(0x3, 3) // 011
	out := bw.finish()

	// The first code fills bits 0-2 and the second bits 3-5:
	// 0x5 | 0x3<<3 = 0x1d, in a single byte for 6 bits.
	if len(out) != 1 {
		t.Fatalf("got %d bytes for 6 bits, want 1", len(out))
	}
	if out[0] != 0x1d {
		t.Fatalf("got byte %#x, want 0x1d", out[0])
	}
}

func TestBitWriterExactByteBoundaryHasNoTrailingByte(t *testing.T) {
	bw := &bitWriter{}
	bw.writeCode(0xFF, 8)
	out := bw.finish()
	if len(out) != 1 {
		t.Fatalf("got %d bytes for exactly 8 bits, want 1 (no phantom trailing byte)", len(out))
	}
	if out[0] != 0xFF {
		t.Fatalf("got byte %#x, want 0xff", out[0])
	}
}

func TestPackCodesShortStreamStaysAtInitialWidth(t *testing.T) {
	// init_dict_len=4 (2-color palette): clear=4, end=5. A stream with
	// exactly one data code after Clear should pack as 3+3+3=9 bits -> 2 bytes.
	out := packCodes([]uint16{4, 0, 5}, 4, 3)
	if len(out) != 2 {
		t.Fatalf("got %d bytes, want 2", len(out))
	}
}
