package thermal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/thermal.report/internal/timeutil"
)

const (
	// DefaultAutoplayInterval is the autoplay cadence.
	DefaultAutoplayInterval = 200 * time.Millisecond
	// DefaultStepSize is how many time indices Forward and Rewind move.
	DefaultStepSize = 5
)

// PlayerOptions configures a Player. Zero values select the defaults.
type PlayerOptions struct {
	Clock    timeutil.Clock
	Interval time.Duration
	Step     int
	// OnFrame is called with every frame the player produces.
	OnFrame func(FrameResult)
}

// Player drives a Session's time index: autoplay with wraparound on a fixed
// cadence plus manual stepping and seeking.
type Player struct {
	session  *Session
	clock    timeutil.Clock
	interval time.Duration
	step     int
	onFrame  func(FrameResult)

	playing atomic.Bool
	runMu   sync.Mutex
}

// NewPlayer returns a paused player over s.
func NewPlayer(s *Session, opts PlayerOptions) *Player {
	p := &Player{
		session:  s,
		clock:    opts.Clock,
		interval: opts.Interval,
		step:     opts.Step,
		onFrame:  opts.OnFrame,
	}
	if p.clock == nil {
		p.clock = timeutil.RealClock{}
	}
	if p.interval <= 0 {
		p.interval = DefaultAutoplayInterval
	}
	if p.step <= 0 {
		p.step = DefaultStepSize
	}
	return p
}

// Playing reports whether autoplay is on.
func (p *Player) Playing() bool { return p.playing.Load() }

// Play turns autoplay on.
func (p *Player) Play() { p.playing.Store(true) }

// Pause turns autoplay off.
func (p *Player) Pause() { p.playing.Store(false) }

// Toggle flips autoplay and reports the new state.
func (p *Player) Toggle() bool {
	for {
		old := p.playing.Load()
		if p.playing.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Forward moves Step indices ahead, stopping at the last index.
func (p *Player) Forward() FrameResult { return p.emit(p.session.Step(p.step)) }

// Rewind moves Step indices back, stopping at 0.
func (p *Player) Rewind() FrameResult { return p.emit(p.session.Step(-p.step)) }

// Seek jumps to time index t.
func (p *Player) Seek(t int) FrameResult { return p.emit(p.session.Seek(t)) }

// SeekPeak jumps to the time index holding the hottest sample. It stays put
// when the dataset has no finite samples.
func (p *Player) SeekPeak() FrameResult {
	if t, ok := PeakIndex(p.session.Dataset().Matrix); ok {
		return p.Seek(t)
	}
	return p.emit(p.session.Current())
}

// Tick advances one index if playing. It reports whether a frame was produced.
func (p *Player) Tick() (FrameResult, bool) {
	if !p.playing.Load() {
		return FrameResult{}, false
	}
	return p.emit(p.session.Advance()), true
}

// Run ticks every Interval until ctx is done. Only one Run may be active.
func (p *Player) Run(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			p.Tick()
		}
	}
}

func (p *Player) emit(f FrameResult) FrameResult {
	if p.onFrame != nil {
		p.onFrame(f)
	}
	return f
}
