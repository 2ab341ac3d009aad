// Package audio plays short WAV samples through the beep speaker.
package audio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

// Player holds decoded samples in memory and mixes them onto the speaker.
// Every method is safe to call before Initialize or after it failed; play
// requests are then dropped.
type Player struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	mixer       *beep.Mixer
	sounds      map[string]*beep.Buffer
	initialized bool
	muted       bool
	log         *zap.Logger
}

// NewPlayer creates a player mixing at sampleRate Hz.
func NewPlayer(sampleRate int, log *zap.Logger) *Player {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		rate:   beep.SampleRate(sampleRate),
		mixer:  &beep.Mixer{},
		sounds: make(map[string]*beep.Buffer),
		log:    log,
	}
}

// Initialize opens the speaker.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Load decodes the WAV file at path and stores it as name.
func (p *Player) Load(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open sound %q: %w", name, err)
	}
	defer f.Close()
	return p.LoadReader(name, f)
}

// LoadReader decodes WAV data from r and stores it as name, resampled to
// the player's rate.
func (p *Player) LoadReader(name string, r io.Reader) error {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return fmt.Errorf("decode sound %q: %w", name, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(beep.Format{SampleRate: p.rate, NumChannels: 2, Precision: 2})
	if format.SampleRate == p.rate {
		buf.Append(streamer)
	} else {
		buf.Append(beep.Resample(4, format.SampleRate, p.rate, streamer))
	}

	p.mu.Lock()
	p.sounds[name] = buf
	p.mu.Unlock()
	p.log.Debug("sound loaded", zap.String("name", name), zap.Int("samples", buf.Len()))
	return nil
}

// Has reports whether a sound named name is loaded.
func (p *Player) Has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.sounds[name]
	return ok
}

// Len returns the length of sound name in samples, or 0.
func (p *Player) Len(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if buf, ok := p.sounds[name]; ok {
		return buf.Len()
	}
	return 0
}

// SetMuted drops play requests while muted is true.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// Muted reports whether the player is muted.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Play starts sound name from the beginning. Unknown names are logged.
func (p *Player) Play(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf, ok := p.sounds[name]
	if !ok {
		p.log.Warn("unknown sound", zap.String("name", name))
		return
	}
	if !p.initialized || p.muted {
		return
	}
	speaker.Lock()
	p.mixer.Add(buf.Streamer(0, buf.Len()))
	speaker.Unlock()
}

// Cleanup stops every playing sound.
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}
