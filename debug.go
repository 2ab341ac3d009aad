package tessera

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame counts and timing. Populated every frame,
// logged only when the renderer is in debug mode.
type debugStats struct {
	buildTime  time.Duration
	commands   int
	quads      int
	lines      int
	glyphs     int
	culled     int
	untextured int
	batches    int
}

// debugLog writes the last frame's stats at debug level.
func (r *Renderer) debugLog(stats debugStats) {
	r.log.Debug("frame",
		zap.Duration("build", stats.buildTime),
		zap.Int("commands", stats.commands),
		zap.Int("quads", stats.quads),
		zap.Int("lines", stats.lines),
		zap.Int("glyphs", stats.glyphs),
		zap.Int("culled", stats.culled),
		zap.Int("untextured", stats.untextured),
		zap.Int("batches", stats.batches),
		zap.Int("runs", countBatches(r.commands)))
}

// Stats summarizes the last rendered frame.
type Stats struct {
	Commands   int
	Quads      int
	Lines      int
	Glyphs     int
	Culled     int
	Untextured int
	Batches    int
}

// Stats returns counts for the last Render and Submit.
func (r *Renderer) Stats() Stats {
	s := r.stats
	return Stats{
		Commands:   s.commands,
		Quads:      s.quads,
		Lines:      s.lines,
		Glyphs:     s.glyphs,
		Culled:     s.culled,
		Untextured: s.untextured,
		Batches:    s.batches,
	}
}

// countBatches counts contiguous runs of commands that Submit would draw
// with one call.
func countBatches(commands []DrawCommand) int {
	count := 0
	var prev *Texture
	inRun := false
	for i := range commands {
		cmd := &commands[i]
		if cmd.Type == CommandLines {
			count++
			inRun = false
			continue
		}
		if !inRun || cmd.Texture != prev {
			count++
			prev = cmd.Texture
			inRun = true
		}
	}
	return count
}
