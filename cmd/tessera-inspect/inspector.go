package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/phanxgames/tessera"
)

const listWidth = 32

var (
	styleDefault  = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// inspector is a two-pane terminal view: entity names on the left, the
// selected entity's components on the right.
type inspector struct {
	screen tcell.Screen
	scene  *tessera.Scene
	tm     *tessera.TileMap

	entities []tessera.Entity
	cursor   int
	offset   int
}

func newInspector(screen tcell.Screen, scene *tessera.Scene, tm *tessera.TileMap) *inspector {
	in := &inspector{screen: screen, scene: scene, tm: tm}
	in.refresh()
	return in
}

// refresh rebuilds the entity list in name order.
func (in *inspector) refresh() {
	tessera.Sort(in.scene, func(a, b *tessera.Name) int {
		return strings.Compare(a.Value, b.Value)
	})
	in.entities = in.entities[:0]
	for e := range tessera.View[tessera.Name](in.scene) {
		in.entities = append(in.entities, e)
	}
	in.cursor = min(in.cursor, max(len(in.entities)-1, 0))
}

func (in *inspector) selected() (tessera.Entity, bool) {
	if len(in.entities) == 0 {
		return tessera.NullEntity, false
	}
	return in.entities[in.cursor], true
}

func (in *inspector) run() {
	for {
		in.draw()
		if !in.handle(in.screen.PollEvent()) {
			return
		}
	}
}

// handle applies one event and reports whether the inspector keeps running.
func (in *inspector) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		_, h := in.screen.Size()
		page := max(h-3, 1)
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			in.move(-1)
		case tcell.KeyDown:
			in.move(1)
		case tcell.KeyPgUp:
			in.move(-page)
		case tcell.KeyPgDn:
			in.move(page)
		case tcell.KeyHome:
			in.move(-len(in.entities))
		case tcell.KeyEnd:
			in.move(len(in.entities))
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'k':
				in.move(-1)
			case 'j':
				in.move(1)
			case 'x':
				if e, ok := in.selected(); ok {
					_ = in.scene.DestroyEntity(e)
					in.refresh()
				}
			}
		}
	case *tcell.EventResize:
		in.screen.Sync()
	}
	return true
}

func (in *inspector) move(delta int) {
	if len(in.entities) == 0 {
		return
	}
	in.cursor = max(0, min(in.cursor+delta, len(in.entities)-1))
}

func (in *inspector) draw() {
	s := in.screen
	s.Clear()
	w, h := s.Size()

	header := fmt.Sprintf(" %d entities", in.scene.Len())
	if in.tm != nil {
		header += fmt.Sprintf("  map %s: %d layers, %d tiles, footprint %.1f",
			in.tm.Source, len(in.tm.Layers), in.tm.TileCount(), in.tm.Footprint)
	}
	drawText(s, 0, 0, w, styleHeader, header)

	rows := h - 2
	if in.cursor < in.offset {
		in.offset = in.cursor
	}
	if rows > 0 && in.cursor >= in.offset+rows {
		in.offset = in.cursor - rows + 1
	}
	for i := 0; i < rows && in.offset+i < len(in.entities); i++ {
		e := in.entities[in.offset+i]
		style := styleDefault
		if in.offset+i == in.cursor {
			style = styleSelected
		}
		name, _ := tessera.GetComponent[tessera.Name](in.scene, e)
		drawText(s, 0, i+1, listWidth, style, fmt.Sprintf("%-*s", listWidth, name.Value))
	}

	if e, ok := in.selected(); ok {
		for i, line := range describe(in.scene, e) {
			if i+1 >= h-1 {
				break
			}
			drawText(s, listWidth+2, i+1, w-listWidth-2, styleDefault, line)
		}
	}
	drawText(s, 0, h-1, w, styleDim, " ↑/↓ select  x destroy  q quit")
	s.Show()
}

// describe formats every component of e, one per line.
func describe(scene *tessera.Scene, e tessera.Entity) []string {
	lines := []string{e.String()}
	for _, c := range scene.Components(e) {
		lines = append(lines, fmt.Sprintf("%T %+v", c, c))
	}
	return lines
}

func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		s.SetContent(x+col, y, r, nil, style)
		col++
	}
}
