package path

import "github.com/udisondev/ranch/internal/geom"

// Playback interpolates a published chain for display. It keeps a private
// copy of the chain, so nothing it does touches simulation state.
//
// Time is an absolute monotonic clock in milliseconds supplied by the caller
// (frame timestamp). Each segment is stamped with the clock on first visit.
type Playback struct {
	head *Segment
	cur  *Segment
	last Progress
}

// NewPlayback starts playing chain at now.
func NewPlayback(chain *Segment, now float64) *Playback {
	p := &Playback{}
	p.Sync(chain, now)
	return p
}

// Frame returns the interpolated position and orientation at now.
func (p *Playback) Frame(now float64) Progress {
	if p.cur == nil {
		return p.last
	}
	if !p.cur.Stamped {
		p.cur.stamp(now)
	}

	consumed := p.cur.Duration - p.cur.TimeLeft
	prog := Walk(p.cur, now-p.cur.Stamp-consumed)

	// Segments entered during this frame start where the previous one ended.
	for s := p.cur.Next; s != nil && s != prog.Segment; s = s.Next {
		s.Stamp = s.Prev.Stamp + s.Prev.Duration
		s.Stamped = true
	}
	if prog.Segment != nil && !prog.Segment.Stamped {
		prev := prog.Segment.Prev
		if prev != nil && prev.Stamped {
			prog.Segment.Stamp = prev.Stamp + prev.Duration
			prog.Segment.Stamped = true
		} else {
			prog.Segment.stamp(now)
		}
	}

	p.cur = prog.Segment
	p.last = prog
	return prog
}

// Sync replaces the chain with a freshly published one. Segments of the new
// chain that describe a leg already being played keep the local progress and
// stamp, so the display does not jump back to an older server position.
func (p *Playback) Sync(chain *Segment, now float64) {
	fresh := Clone(chain)

	for s := fresh; s != nil; s = s.Next {
		for old := p.head; old != nil; old = old.Next {
			if !old.Stamped || !s.Same(old) {
				continue
			}
			s.Stamp = old.Stamp
			s.Stamped = true
			s.TimeLeft = min(old.TimeLeft, s.Duration)
			break
		}
	}

	p.head = fresh
	p.cur = fresh
	for p.cur != nil && p.cur.Stamped && p.cur.TimeLeft <= 0 {
		p.cur = p.cur.Next
	}
	if p.cur == nil {
		if tail := Tail(fresh); tail != nil {
			p.last = Progress{Position: tail.Dest, Orient: tail.Orient, Done: true}
		}
		return
	}
	p.last = Progress{Segment: p.cur, Position: p.cur.Position(), Orient: p.cur.Orient}
	if !p.cur.Stamped {
		p.cur.stamp(now)
	}
}

// Done reports whether the chain has been played to the end.
func (p *Playback) Done() bool {
	return p.cur == nil
}

// Position returns the last computed position.
func (p *Playback) Position() geom.Vector3 {
	return p.last.Position
}
