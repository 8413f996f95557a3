package gifenc

import (
	"bytes"
	"testing"
)

func TestWriteSubBlocksSplitsAt255AndTerminates(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 300)
	var buf bytes.Buffer
	if err := writeSubBlocks(&buf, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.Bytes()

	if out[0] != 255 {
		t.Fatalf("first block length = %d, want 255", out[0])
	}
	secondLenPos := 1 + 255
	if out[secondLenPos] != 45 {
		t.Fatalf("second block length = %d, want 45", out[secondLenPos])
	}
	if out[len(out)-1] != 0 {
		t.Fatalf("last byte = %d, want 0 (terminator)", out[len(out)-1])
	}
}

func TestWriteSubBlocksEmptyInputIsJustTerminator(t *testing.T) {
	var buf bytes.Buffer
	if err := writeSubBlocks(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v, want [0]", got)
	}
}
