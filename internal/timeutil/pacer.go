package timeutil

import (
	"context"
	"time"
)

// Pacer releases frames at the rate implied by their timestamps. The first
// frame anchors the schedule; later frames wait until
// anchor + (ts - firstTs) / speed.
type Pacer struct {
	clock Clock
	speed float64

	started bool
	wall    time.Time
	first   float64
}

// NewPacer returns a pacer on clock. speed scales playback (2 = twice as
// fast); values <= 0 mean 1.
func NewPacer(clock Clock, speed float64) *Pacer {
	if clock == nil {
		clock = RealClock{}
	}
	if speed <= 0 {
		speed = 1
	}
	return &Pacer{clock: clock, speed: speed}
}

// Wait blocks until the frame stamped ts is due. Frames that are already late
// or stamped earlier than their predecessor return at once.
func (p *Pacer) Wait(ctx context.Context, ts float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.started {
		p.started = true
		p.wall = p.clock.Now()
		p.first = ts
		return nil
	}
	offset := time.Duration((ts - p.first) / p.speed * float64(time.Second))
	if d := p.clock.Until(p.wall.Add(offset)); d > 0 {
		return SleepContext(ctx, p.clock, d)
	}
	return ctx.Err()
}

// Reset forgets the anchor so the next frame starts a new schedule.
func (p *Pacer) Reset() {
	p.started = false
}
