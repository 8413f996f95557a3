package main

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"
	"github.com/pkg/errors"
)

// decodeFrame loads path as an image.Image, dispatching on extension.
// PNG and JPEG go through the standard library; WebP through
// github.com/gen2brain/webp, the only format this pack's examples needed
// a third-party decoder for.
func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening frame %q", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err := png.Decode(f)
		return img, errors.Wrapf(err, "decoding PNG frame %q", path)
	case ".jpg", ".jpeg":
		img, err := jpeg.Decode(f)
		return img, errors.Wrapf(err, "decoding JPEG frame %q", path)
	case ".webp":
		img, err := webp.Decode(f)
		return img, errors.Wrapf(err, "decoding WebP frame %q", path)
	default:
		return nil, errors.Errorf("frame %q has an unsupported extension", path)
	}
}
