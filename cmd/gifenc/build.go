package main

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tenbit/gifenc"
	"github.com/tenbit/gifenc/quantize"
)

func newBuildCmd() *cobra.Command {
	var outPath string
	var sampleFactor int

	cmd := &cobra.Command{
		Use:   "build <manifest.json>",
		Short: "Assemble a GIF from a frame manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				return errors.New("--output is required")
			}
			return runBuild(args[0], outPath, sampleFactor)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "path to write the GIF to (required)")
	cmd.Flags().IntVar(&sampleFactor, "sample", 10, "NeuQuant sampling factor, 1 (best) to 30 (fastest)")
	return cmd
}

func runBuild(manifestPath, outPath string, sampleFactor int) error {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	log.Printf("gifenc: %s -> %s (%d frames, %dx%d canvas, sample=%d)", manifestPath, outPath, len(m.Frames), m.Width, m.Height, sampleFactor)

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Prefix = fmt.Sprintf("decoding %d frames... ", len(m.Frames))
	sp.Start()

	imgs := make([]image.Image, len(m.Frames))
	var sample []byte
	for i, fs := range m.Frames {
		img, err := decodeFrame(fs.Path)
		if err != nil {
			sp.Stop()
			return err
		}
		imgs[i] = img
		sample = append(sample, sampleRGB(img)...)
	}

	sp.Prefix = "building palette... "
	pal := quantize.Build(sample, sampleFactor)

	sp.Prefix = "encoding... "
	enc, err := gifenc.New(gifenc.NewConfig(
		m.Width, m.Height,
		gifenc.WithGlobalPalette(pal.RGB()),
		gifenc.WithAnimation(m.LoopCount),
		gifenc.WithPath(outPath),
	))
	if err != nil {
		sp.Stop()
		return errors.Wrap(err, "opening output")
	}

	target := image.Rect(0, 0, int(m.Width), int(m.Height))
	for i, fs := range m.Frames {
		pixels := quantize.Index(imgs[i], pal, target)
		if _, err := enc.AddFrame(gifenc.FrameConfig{
			Pixels:          pixels,
			Delay:           fs.Delay,
			UseDiffWindow:   fs.UseDiffWindow,
			UseTransparency: fs.UseTransparency,
			Interlaced:      fs.Interlaced,
		}); err != nil {
			sp.Stop()
			return errors.Wrapf(err, "encoding frame %d (%s)", i, fs.Path)
		}
	}

	res, err := enc.Close()
	sp.Stop()
	if err != nil {
		return errors.Wrapf(err, "closing output (%s)", res)
	}

	color.New(color.FgGreen, color.Bold).Printf("wrote %s\n", outPath)
	fmt.Printf("  frames: %d  canvas: %dx%d  palette: %d colors\n", len(m.Frames), m.Width, m.Height, len(pal.RGB())/3)
	return nil
}

// sampleRGB flattens img to an RGB byte buffer for palette training.
func sampleRGB(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return out
}
