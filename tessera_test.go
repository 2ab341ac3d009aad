package tessera

import (
	"image/color"
	"testing"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"left edge", 10, 40, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

// --- Rect.Intersects ---

func TestRectIntersects(t *testing.T) {
	base := Rect{10, 10, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{50, 50, 100, 100}, true},
		{"fully contained", Rect{20, 20, 10, 10}, true},
		{"containing", Rect{0, 0, 200, 200}, true},
		{"adjacent right", Rect{110, 10, 50, 50}, true},
		{"disjoint right", Rect{111, 10, 50, 50}, false},
		{"disjoint above", Rect{10, -100, 50, 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.expect)
			}
			if got := tt.other.Intersects(base); got != tt.expect {
				t.Errorf("reverse Intersects = %v, want %v", got, tt.expect)
			}
		})
	}
}

// --- Color ---

func TestColorPremultiplied(t *testing.T) {
	r, g, b, a := Color{1, 0.5, 0, 0.5}.premultiplied()
	if r != 0.5 || g != 0.25 || b != 0 || a != 0.5 {
		t.Errorf("premultiplied = (%v, %v, %v, %v), want (0.5, 0.25, 0, 0.5)", r, g, b, a)
	}
}

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want color.RGBA
	}{
		{"white", ColorWhite, color.RGBA{255, 255, 255, 255}},
		{"green", ColorGreen, color.RGBA{0, 255, 0, 255}},
		{"half alpha", Color{1, 1, 1, 0.5}, color.RGBA{128, 128, 128, 128}},
		{"out of range clamps", Color{2, -1, 0, 1}, color.RGBA{255, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.toRGBA(); got != tt.want {
				t.Errorf("toRGBA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWhitePixel(t *testing.T) {
	if WhitePixel == nil {
		t.Fatal("WhitePixel is nil")
	}
	if b := WhitePixel.Bounds(); b.Dx() != 1 || b.Dy() != 1 {
		t.Errorf("WhitePixel bounds = %v, want 1x1", b)
	}
}
