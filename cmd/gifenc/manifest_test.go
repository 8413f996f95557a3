package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadManifestMergesDefaultsPerFrame(t *testing.T) {
	path := writeManifest(t, `{
		"width": 10, "height": 5, "loop_count": 2,
		"default": {"delay": 10, "use_diff_window": true},
		"frames": [
			{"path": "a.png"},
			{"path": "b.png", "delay": 25, "use_transparency": true}
		]
	}`)

	m, err := loadManifest(path)
	require.NoError(t, err)
	require.Equal(t, uint16(10), m.Width)
	require.Equal(t, uint16(5), m.Height)
	require.Equal(t, uint16(2), m.LoopCount)
	require.Len(t, m.Frames, 2)

	require.Equal(t, "a.png", m.Frames[0].Path)
	require.Equal(t, uint16(10), m.Frames[0].Delay)
	require.True(t, m.Frames[0].UseDiffWindow)
	require.False(t, m.Frames[0].UseTransparency)

	require.Equal(t, "b.png", m.Frames[1].Path)
	require.Equal(t, uint16(25), m.Frames[1].Delay)
	require.True(t, m.Frames[1].UseDiffWindow)
	require.True(t, m.Frames[1].UseTransparency)
}

func TestLoadManifestRejectsZeroDimensions(t *testing.T) {
	path := writeManifest(t, `{"width": 0, "height": 5, "frames": [{"path": "a.png"}]}`)
	_, err := loadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRejectsMissingPath(t *testing.T) {
	path := writeManifest(t, `{"width": 1, "height": 1, "frames": [{"delay": 5}]}`)
	_, err := loadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRejectsEmptyFrameList(t *testing.T) {
	path := writeManifest(t, `{"width": 1, "height": 1, "frames": []}`)
	_, err := loadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRejectsMalformedJSON(t *testing.T) {
	path := writeManifest(t, `{not json`)
	_, err := loadManifest(path)
	require.Error(t, err)
}
