package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.gif>",
		Short: "Print a minimal structural summary of a GIF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

// runInspect walks the byte stream using the same field layout
// rawwriter.go writes, rather than a general-purpose GIF decoder — the
// core library intentionally never reads GIFs (see its Non-goals), so
// this is deliberately a thin, forward-only scanner for debugging output
// this program itself produced.
func runInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %q", path)
	}
	if len(data) < 13 || string(data[0:6]) != "GIF89a" {
		return errors.Errorf("%q is not a GIF89a file", path)
	}

	width := binary.LittleEndian.Uint16(data[6:8])
	height := binary.LittleEndian.Uint16(data[8:10])
	packed := data[10]
	hasGCT := packed&0x80 != 0
	gctSize := 0
	pos := 13
	if hasGCT {
		gctSize = 1 << ((packed & 0x07) + 1)
		pos += gctSize * 3
	}

	fmt.Printf("%s: %dx%d, global table: ", path, width, height)
	if hasGCT {
		fmt.Printf("%d colors\n", gctSize)
	} else {
		fmt.Println("none")
	}

	frames, loops := 0, false
	for pos < len(data) {
		switch data[pos] {
		case 0x21: // extension introducer
			label := data[pos+1]
			if label == 0xFF {
				loops = true
			}
			pos += 2
			for pos < len(data) && data[pos] != 0 {
				pos += int(data[pos]) + 1
			}
			pos++ // terminator
		case ',': // image descriptor
			frames++
			localPacked := data[pos+9]
			pos += 10
			if localPacked&0x80 != 0 {
				pos += (1 << ((localPacked & 0x07) + 1)) * 3
			}
			pos++ // LZW minimum code size byte
			for pos < len(data) && data[pos] != 0 {
				pos += int(data[pos]) + 1
			}
			pos++ // terminator
		case ';':
			pos = len(data)
		default:
			pos++
		}
	}

	fmt.Printf("  frames: %d  loop extension: %v\n", frames, loops)
	return nil
}
