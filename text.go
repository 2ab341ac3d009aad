package tessera

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Glyph locates one character in a font texture. All values are in texture
// pixels.
type Glyph struct {
	Size    image.Point // glyph rectangle width and height
	Bearing image.Point // top-left corner of the glyph rectangle
	Offset  image.Point // draw offset from the pen position (BMFont only)
	Advance int         // spacing added after the glyph width
}

// Font is a bitmap font: per-character rectangles in one texture. Lookups
// are case-insensitive; text is drawn upper case.
type Font struct {
	Name       string
	Texture    TextureHandle
	LineHeight float64

	glyphs map[rune]Glyph
}

// NewFont builds a font from a glyph table.
func NewFont(glyphs map[rune]Glyph, lineHeight float64) *Font {
	f := &Font{LineHeight: lineHeight, glyphs: make(map[rune]Glyph, len(glyphs))}
	for r, g := range glyphs {
		f.glyphs[r] = g
	}
	return f
}

// upper folds text to the case the glyph tables are authored in.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Glyph returns the glyph drawn for r.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	u := []rune(upper(string(r)))
	if len(u) != 1 {
		return Glyph{}, false
	}
	g, ok := f.glyphs[u[0]]
	return g, ok
}

// GlyphQuad is one laid-out character in world space.
type GlyphQuad struct {
	Rune     rune
	Position mgl64.Vec2
	Size     mgl64.Vec2
	Source   image.Rectangle
}

// Layout places text on a single line starting at origin, scaling glyph
// pixels by scale. Each glyph advances the pen by (width + advance) * scale.
// Characters without a glyph are skipped and counted in missing.
func (f *Font) Layout(text string, scale float64, origin mgl64.Vec2, dst []GlyphQuad) (quads []GlyphQuad, missing int) {
	quads = dst
	penX := origin.X()
	for _, r := range upper(text) {
		g, ok := f.glyphs[r]
		if !ok {
			missing++
			continue
		}
		w := float64(g.Size.X) * scale
		h := float64(g.Size.Y) * scale
		quads = append(quads, GlyphQuad{
			Rune:     r,
			Position: mgl64.Vec2{penX + float64(g.Offset.X)*scale, origin.Y() + float64(g.Offset.Y)*scale},
			Size:     mgl64.Vec2{w, h},
			Source:   image.Rectangle{Min: g.Bearing, Max: g.Bearing.Add(g.Size)},
		})
		penX += float64(g.Size.X+g.Advance) * scale
	}
	return quads, missing
}

// MeasureString returns the width and height text occupies at scale.
func (f *Font) MeasureString(text string, scale float64) (width, height float64) {
	for _, r := range upper(text) {
		g, ok := f.glyphs[r]
		if !ok {
			continue
		}
		width += float64(g.Size.X+g.Advance) * scale
		height = max(height, float64(g.Offset.Y+g.Size.Y)*scale)
	}
	return width, max(height, f.LineHeight*scale)
}

// fontJSON is the character-map font format:
//
//	{"characters": {"A": [[w, h], [x, y], advance], ...}}
type fontJSON struct {
	LineHeight float64                      `json:"lineHeight"`
	Characters map[string][]json.RawMessage `json:"characters"`
}

// ParseFontJSON parses a JSON character-map font.
func ParseFontJSON(data []byte) (*Font, error) {
	var doc fontJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, configErrorf("font", err, "invalid JSON")
	}
	if len(doc.Characters) == 0 {
		return nil, configErrorf("font", nil, "no characters defined")
	}
	glyphs := make(map[rune]Glyph, len(doc.Characters))
	var tallest int
	for key, fields := range doc.Characters {
		r, n := utf8.DecodeRuneInString(key)
		if n == 0 || n != len(key) {
			return nil, configErrorf("font", nil, "character key %q is not a single rune", key)
		}
		if len(fields) != 3 {
			return nil, configErrorf("font", nil, "character %q: want [size, bearing, advance], got %d fields", key, len(fields))
		}
		var size, bearing [2]int
		var advance int
		if err := json.Unmarshal(fields[0], &size); err != nil {
			return nil, configErrorf("font", err, "character %q size", key)
		}
		if err := json.Unmarshal(fields[1], &bearing); err != nil {
			return nil, configErrorf("font", err, "character %q bearing", key)
		}
		if err := json.Unmarshal(fields[2], &advance); err != nil {
			return nil, configErrorf("font", err, "character %q advance", key)
		}
		glyphs[r] = Glyph{
			Size:    image.Pt(size[0], size[1]),
			Bearing: image.Pt(bearing[0], bearing[1]),
			Advance: advance,
		}
		tallest = max(tallest, size[1])
	}
	lh := doc.LineHeight
	if lh == 0 {
		lh = float64(tallest)
	}
	return NewFont(glyphs, lh), nil
}

// ParseFontFNT parses BMFont .fnt text-format data. Only page 0 is used.
func ParseFontFNT(data []byte) (*Font, error) {
	glyphs := make(map[rune]Glyph)
	var lineHeight float64

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tag, rest := splitTag(line)
		fields := parseFields(rest)

		switch tag {
		case "common":
			if v, ok := fields["lineHeight"]; ok {
				lineHeight, _ = strconv.ParseFloat(v, 64)
			}
		case "char":
			atoi := func(k string) int {
				v, _ := strconv.Atoi(fields[k])
				return v
			}
			w, h := atoi("width"), atoi("height")
			glyphs[rune(atoi("id"))] = Glyph{
				Size:    image.Pt(w, h),
				Bearing: image.Pt(atoi("x"), atoi("y")),
				Offset:  image.Pt(atoi("xoffset"), atoi("yoffset")),
				Advance: atoi("xadvance") - w,
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tessera: error reading .fnt data: %w", err)
	}
	if lineHeight == 0 {
		return nil, configErrorf("font", nil, ".fnt data missing common lineHeight")
	}
	if len(glyphs) == 0 {
		return nil, configErrorf("font", nil, ".fnt data has no char definitions")
	}
	return NewFont(glyphs, lineHeight), nil
}

// splitTag splits a BMFont line into its tag and the rest of the line.
func splitTag(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

// parseFields parses "key=value key=value ..." into a map.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Fields(s) {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		// face="Arial"
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		fields[key] = val
	}
	return fields
}
