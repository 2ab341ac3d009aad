package tessera

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello", "hello"},
		{"after-move", "after-move"},
		{"file.v2", "file.v2"},
		{"has spaces", "has_spaces"},
		{"path/sep", "path_sep"},
		{"  trimmed  ", "trimmed"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"ümlaut", "_mlaut"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.input); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestScreenshotQueueAppend(t *testing.T) {
	g := NewGame(NewScene(), nil, NewCamera(mgl64.Vec2{}, 100, 100))
	g.Screenshot("a")
	g.Screenshot("b")
	if len(g.screenshotQueue) != 2 || g.screenshotQueue[1] != "b" {
		t.Errorf("queue = %v", g.screenshotQueue)
	}
}

func TestScreenshotDirDefault(t *testing.T) {
	g := NewGame(NewScene(), nil, NewCamera(mgl64.Vec2{}, 100, 100))
	if g.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want %q", g.ScreenshotDir, "screenshots")
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 128})
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := writePNG(path, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestWritePNGBadDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "shot.png")
	if err := writePNG(path, image.NewNRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error for missing directory")
	}
}
