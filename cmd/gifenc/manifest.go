package main

import (
	"os"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// frameSpec is one frame entry after a manifest's top-level "default"
// block has been merged underneath it.
type frameSpec struct {
	Path            string
	Delay           uint16
	UseDiffWindow   bool
	UseTransparency bool
	Interlaced      bool
}

// manifest is the parsed form of a build manifest:
//
//	{
//	  "width": 120, "height": 80, "loop_count": 0,
//	  "default": {"delay": 10, "use_diff_window": true},
//	  "frames": [{"path": "a.png"}, {"path": "b.png", "delay": 25}]
//	}
type manifest struct {
	Width, Height uint16
	LoopCount     uint16
	Frames        []frameSpec
}

func loadManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, errors.Wrapf(err, "reading manifest %q", path)
	}
	if !gjson.ValidBytes(data) {
		return manifest{}, errors.Errorf("manifest %q is not valid JSON", path)
	}
	root := gjson.ParseBytes(data)

	m := manifest{
		Width:     uint16(root.Get("width").Uint()),
		Height:    uint16(root.Get("height").Uint()),
		LoopCount: uint16(root.Get("loop_count").Uint()),
	}
	if m.Width == 0 || m.Height == 0 {
		return manifest{}, errors.Errorf("manifest %q must set non-zero width/height", path)
	}

	var defaults map[string]interface{}
	if v := root.Get("default"); v.Exists() {
		if dm, ok := v.Value().(map[string]interface{}); ok {
			defaults = dm
		}
	}

	frames := root.Get("frames")
	if !frames.IsArray() {
		return manifest{}, errors.Errorf("manifest %q needs a \"frames\" array", path)
	}

	var parseErr error
	frames.ForEach(func(_, f gjson.Result) bool {
		merged := map[string]interface{}{}
		if defaults != nil {
			if dc, ok := deepcopy.Copy(defaults).(map[string]interface{}); ok {
				merged = dc
			}
		}
		fv, ok := f.Value().(map[string]interface{})
		if !ok {
			parseErr = errors.Errorf("manifest %q has a non-object frame entry", path)
			return false
		}
		for k, v := range fv {
			merged[k] = v
		}

		fs := frameSpec{}
		if p, ok := merged["path"].(string); ok {
			fs.Path = p
		}
		if fs.Path == "" {
			parseErr = errors.Errorf("manifest %q has a frame with no \"path\"", path)
			return false
		}
		if d, ok := merged["delay"].(float64); ok {
			fs.Delay = uint16(d)
		}
		if b, ok := merged["use_diff_window"].(bool); ok {
			fs.UseDiffWindow = b
		}
		if b, ok := merged["use_transparency"].(bool); ok {
			fs.UseTransparency = b
		}
		if b, ok := merged["interlaced"].(bool); ok {
			fs.Interlaced = b
		}
		m.Frames = append(m.Frames, fs)
		return true
	})
	if parseErr != nil {
		return manifest{}, parseErr
	}
	if len(m.Frames) == 0 {
		return manifest{}, errors.Errorf("manifest %q lists no frames", path)
	}
	return m, nil
}
