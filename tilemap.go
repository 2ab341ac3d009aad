package tessera

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// GID flag bits (same convention as Tiled TMX format).
const (
	tileFlipH     uint32 = 1 << 31 // horizontal flip
	tileFlipV     uint32 = 1 << 30 // vertical flip
	tileFlipD     uint32 = 1 << 29 // diagonal flip (90° rotation)
	tileRotHex120 uint32 = 1 << 28 // hexagonal 120° rotation, ignored
	tileFlagMask  uint32 = tileFlipH | tileFlipV | tileFlipD | tileRotHex120
)

// DefaultPixelsPerUnit is the map scale used when none is configured.
const DefaultPixelsPerUnit = 8

// TileFlags are the orientation bits carried by a GID.
type TileFlags struct {
	FlipH, FlipV, FlipD bool
}

// DecodeGID splits a raw layer value into its tile id and flip flags. All
// four high bits are cleared from the id.
func DecodeGID(raw uint32) (id uint32, flags TileFlags) {
	flags = TileFlags{
		FlipH: raw&tileFlipH != 0,
		FlipV: raw&tileFlipV != 0,
		FlipD: raw&tileFlipD != 0,
	}
	return raw &^ tileFlagMask, flags
}

// PackGID is the inverse of DecodeGID.
func PackGID(id uint32, flags TileFlags) uint32 {
	id &^= tileFlagMask
	if flags.FlipH {
		id |= tileFlipH
	}
	if flags.FlipV {
		id |= tileFlipV
	}
	if flags.FlipD {
		id |= tileFlipD
	}
	return id
}

// TilesetInput is the caller-supplied half of a tileset: the texture and
// its grid shape. Inputs are matched to the map's tilesets by position.
type TilesetInput struct {
	Texture TextureHandle
	Columns int
	Rows    int
}

// TilesetRange maps a contiguous span of GIDs onto one tileset.
type TilesetRange struct {
	FirstGID uint32
	Length   int // Columns * Rows
	Input    TilesetInput
}

// ResolveTileset finds the tileset owning id and the id's local index in
// it. Each tileset but the last owns [FirstGID, next FirstGID); the last
// owns [FirstGID, FirstGID+Length). An id no tileset owns resolves to the
// last cell of the last tileset with ok false.
func ResolveTileset(ranges []TilesetRange, id uint32) (tileset, local int, ok bool) {
	if len(ranges) == 0 {
		return -1, 0, false
	}
	for k := 0; k < len(ranges)-1; k++ {
		if ranges[k].FirstGID <= id && id < ranges[k+1].FirstGID {
			return k, int(id - ranges[k].FirstGID), true
		}
	}
	last := len(ranges) - 1
	r := ranges[last]
	if id >= r.FirstGID && int(id-r.FirstGID) < r.Length {
		return last, int(id - r.FirstGID), true
	}
	return last, max(r.Length-1, 0), false
}

// TileLayer records the entities created for one map layer. Tiles holds
// only non-empty cells, in column-major order.
type TileLayer struct {
	Name   string
	Width  int
	Height int
	Tiles  []Entity
}

// TileMap is the result of decoding a map into a scene.
type TileMap struct {
	Source        string
	TileSize      int
	PixelsPerUnit int
	Footprint     float64 // world size of one tile
	Tilesets      []TilesetRange
	Layers        []TileLayer
}

// TileCount returns the number of tile entities across all layers.
func (m *TileMap) TileCount() int {
	n := 0
	for i := range m.Layers {
		n += len(m.Layers[i].Tiles)
	}
	return n
}

// Bounds returns the world rectangle covered by the widest and tallest layer.
func (m *TileMap) Bounds() Rect {
	var w, h int
	for _, l := range m.Layers {
		w, h = max(w, l.Width), max(h, l.Height)
	}
	return Rect{Width: float64(w) * m.Footprint, Height: float64(h) * m.Footprint}
}

// Unload destroys every tile entity the map created that is still alive.
func (m *TileMap) Unload(s *Scene) {
	for i := range m.Layers {
		for _, e := range m.Layers[i].Tiles {
			if s.Alive(e) {
				_ = s.DestroyEntity(e)
			}
		}
		m.Layers[i].Tiles = nil
	}
}

// tiledMap is the subset of the Tiled JSON map format the decoder reads.
type tiledMap struct {
	TileWidth  int            `json:"tilewidth"`
	TileHeight int            `json:"tileheight"`
	Tilesets   []tiledTileset `json:"tilesets"`
	Layers     []tiledLayer   `json:"layers"`
}

type tiledTileset struct {
	FirstGID int64  `json:"firstgid"`
	Name     string `json:"name"`
}

type tiledLayer struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Data        json.RawMessage `json:"data"`
	Encoding    string          `json:"encoding"`
	Compression string          `json:"compression"`
}

// TileMapOption configures a TileMapDecoder.
type TileMapOption func(*TileMapDecoder)

// WithPixelsPerUnit sets how many tile pixels make one world unit
// (a footprint of 100 world pixels).
func WithPixelsPerUnit(ppu int) TileMapOption {
	return func(d *TileMapDecoder) {
		if ppu > 0 {
			d.pixelsPerUnit = ppu
		}
	}
}

// TileMapDecoder turns Tiled JSON maps into tile entities.
type TileMapDecoder struct {
	scene         *Scene
	resources     *ResourceManager
	pixelsPerUnit int
	log           *zap.Logger
}

// NewTileMapDecoder creates a decoder that populates scene. resources may
// be nil; when set, tileset textures are checked before any entity is made.
func NewTileMapDecoder(scene *Scene, resources *ResourceManager, opts ...TileMapOption) *TileMapDecoder {
	d := &TileMapDecoder{
		scene:         scene,
		resources:     resources,
		pixelsPerUnit: DefaultPixelsPerUnit,
		log:           scene.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile reads and decodes the map at path.
func (d *TileMapDecoder) DecodeFile(path string, tilesets []TilesetInput) (*TileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tessera: read tile map %s: %w", path, err)
	}
	return d.decode(path, data, tilesets)
}

// Decode decodes map JSON into tile entities. Every layer is validated
// before the first entity is created, so a failing map leaves the scene
// untouched. All validation failures are *ConfigurationError.
func (d *TileMapDecoder) Decode(data []byte, tilesets []TilesetInput) (*TileMap, error) {
	return d.decode("tile map", data, tilesets)
}

// plannedTile is one validated, resolved cell waiting to become an entity.
type plannedTile struct {
	col, row int
	tileset  int
	local    int
	flags    TileFlags
}

type plannedLayer struct {
	name          string
	width, height int
	tiles         []plannedTile
}

func (d *TileMapDecoder) decode(source string, data []byte, inputs []TilesetInput) (*TileMap, error) {
	var doc tiledMap
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, configErrorf(source, err, "invalid map JSON")
	}
	if doc.TileWidth != doc.TileHeight {
		return nil, configErrorf(source, nil, "non-square tiles (%dx%d) are not supported", doc.TileWidth, doc.TileHeight)
	}
	if doc.TileWidth <= 0 {
		return nil, configErrorf(source, nil, "tile size must be positive, got %d", doc.TileWidth)
	}
	if len(doc.Tilesets) != len(inputs) {
		return nil, configErrorf(source, nil, "map declares %d tilesets but %d were supplied", len(doc.Tilesets), len(inputs))
	}

	ranges := make([]TilesetRange, len(inputs))
	for k, ts := range doc.Tilesets {
		if ts.FirstGID < 1 || ts.FirstGID > int64(^tileFlagMask) {
			return nil, configErrorf(source, nil, "tileset %d: firstgid %d out of range", k, ts.FirstGID)
		}
		if k > 0 && uint32(ts.FirstGID) <= ranges[k-1].FirstGID {
			return nil, configErrorf(source, nil, "tileset %d: firstgid %d not ascending", k, ts.FirstGID)
		}
		in := inputs[k]
		if in.Columns <= 0 || in.Rows <= 0 {
			return nil, configErrorf(source, nil, "tileset %d: grid %dx%d must be positive", k, in.Columns, in.Rows)
		}
		if d.resources != nil && !in.Texture.IsZero() {
			if _, ok := d.resources.ResolveTexture(in.Texture); !ok {
				return nil, configErrorf(source, nil, "tileset %d: texture handle is not live", k)
			}
		}
		ranges[k] = TilesetRange{FirstGID: uint32(ts.FirstGID), Length: in.Columns * in.Rows, Input: in}
	}

	var plan []plannedLayer
	for li, layer := range doc.Layers {
		if layer.Type != "" && layer.Type != "tilelayer" {
			d.log.Debug("skipping non-tile layer", zap.String("layer", layer.Name), zap.String("type", layer.Type))
			continue
		}
		gids, err := decodeLayerData(layer)
		if err != nil {
			return nil, configErrorf(source, err, "layer %d (%q): undecodable data", li, layer.Name)
		}
		if layer.Width < 0 || layer.Height < 0 ||
			(layer.Width > 0 && layer.Height > math.MaxInt/layer.Width) {
			return nil, configErrorf(source, nil, "layer %d (%q): invalid grid %dx%d",
				li, layer.Name, layer.Width, layer.Height)
		}
		if len(gids) != layer.Width*layer.Height {
			return nil, configErrorf(source, nil, "layer %d (%q): %d entries for a %dx%d grid",
				li, layer.Name, len(gids), layer.Width, layer.Height)
		}
		pl := plannedLayer{name: layer.Name, width: layer.Width, height: layer.Height}
		for col := 0; col < layer.Width; col++ {
			for row := 0; row < layer.Height; row++ {
				id, flags := DecodeGID(gids[row*layer.Width+col])
				if id == 0 {
					continue
				}
				k, local, ok := ResolveTileset(ranges, id)
				if !ok {
					d.log.Warn("tile id outside every tileset; using last tile of last tileset",
						zap.String("layer", layer.Name),
						zap.Uint32("gid", id),
						zap.Int("col", col), zap.Int("row", row))
				}
				pl.tiles = append(pl.tiles, plannedTile{col: col, row: row, tileset: k, local: local, flags: flags})
			}
		}
		plan = append(plan, pl)
	}

	m := &TileMap{
		Source:        source,
		TileSize:      doc.TileWidth,
		PixelsPerUnit: d.pixelsPerUnit,
		Footprint:     float64(doc.TileWidth) / float64(d.pixelsPerUnit) * 100,
		Tilesets:      ranges,
	}
	for li, pl := range plan {
		layer := TileLayer{Name: pl.name, Width: pl.width, Height: pl.height, Tiles: make([]Entity, 0, len(pl.tiles))}
		for _, t := range pl.tiles {
			layer.Tiles = append(layer.Tiles, d.spawnTile(m, li, pl.width, t))
		}
		m.Layers = append(m.Layers, layer)
	}

	d.log.Info("tile map loaded",
		zap.String("source", source),
		zap.Int("layers", len(m.Layers)),
		zap.Int("tiles", m.TileCount()),
		zap.Float64("footprint", m.Footprint))
	d.scene.emit(Event{Type: EventMapLoaded, Name: source, Count: m.TileCount()})
	return m, nil
}

func (d *TileMapDecoder) spawnTile(m *TileMap, layer, width int, t plannedTile) Entity {
	s := d.scene
	e := s.CreateEntity(fmt.Sprintf("Layer%dTile%d", layer, t.row*width+t.col))

	tr := poolOf[Transform](s).get(e)
	tr.Position = mgl64.Vec2{m.Footprint * float64(t.col), m.Footprint * float64(t.row)}
	tr.Size = mgl64.Vec2{m.Footprint, m.Footprint}

	ts := m.Tilesets[t.tileset].Input
	poolOf[SpriteRenderer](s).add(e, SpriteRenderer{
		Texture:        ts.Texture,
		Tint:           ColorWhite,
		FlipHorizontal: t.flags.FlipH,
		FlipVertical:   t.flags.FlipV,
		FlipDiagonal:   t.flags.FlipD,
	})
	poolOf[FrameSource](s).add(e, TileFrame{XDivisions: ts.Columns, YDivisions: ts.Rows, Index: t.local})
	return e
}

// decodeLayerData returns a layer's raw GIDs. Data is either a JSON array
// of numbers or, with encoding "base64", little-endian uint32s optionally
// compressed with zlib or gzip.
func decodeLayerData(layer tiledLayer) ([]uint32, error) {
	if len(layer.Data) == 0 {
		return nil, nil
	}
	switch layer.Encoding {
	case "", "csv":
		var gids []uint32
		if err := json.Unmarshal(layer.Data, &gids); err != nil {
			return nil, err
		}
		return gids, nil
	case "base64":
		var text string
		if err := json.Unmarshal(layer.Data, &text); err != nil {
			return nil, err
		}
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, err
		}
		if raw, err = decompress(layer.Compression, raw); err != nil {
			return nil, err
		}
		return gidsFromBytes(raw)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", layer.Encoding)
	}
}

func decompress(method string, raw []byte) ([]byte, error) {
	var r io.ReadCloser
	var err error
	switch method {
	case "":
		return raw, nil
	case "zlib":
		r, err = zlib.NewReader(bytes.NewReader(raw))
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("unsupported compression %q", method)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// gidsFromBytes reads little-endian uint32 GIDs.
func gidsFromBytes(raw []byte) ([]uint32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of GIDs", len(raw))
	}
	gids := make([]uint32, len(raw)/4)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, gids); err != nil {
		return nil, err
	}
	return gids, nil
}
