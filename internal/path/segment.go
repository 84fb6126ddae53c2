package path

import "github.com/udisondev/ranch/internal/geom"

// Segment is one straight leg of an actor's movement. Segments form a doubly
// linked chain owned by exactly one actor; a new path replaces the whole
// chain.
//
// Times are milliseconds. Invariant: 0 <= TimeLeft <= Duration.
type Segment struct {
	Src      geom.Vector3
	Dest     geom.Vector3
	Orient   float64
	Duration float64
	TimeLeft float64

	// Stamp is the client clock reading at which the segment started.
	// Only meaningful when Stamped is set; the server never stamps.
	Stamp   float64
	Stamped bool

	Prev *Segment
	Next *Segment
}

// Build turns a polyline into a segment chain walked at speed units per
// second. Returns nil for fewer than two points or a non-positive speed.
func Build(points []geom.Vector3, speed float64) *Segment {
	if len(points) < 2 || speed <= 0 {
		return nil
	}

	var head, tail *Segment
	for i := 0; i+1 < len(points); i++ {
		src, dest := points[i], points[i+1]
		duration := src.DistanceTo(dest) / speed * 1000
		seg := &Segment{
			Src:      src,
			Dest:     dest,
			Orient:   src.Heading(dest),
			Duration: duration,
			TimeLeft: duration,
			Prev:     tail,
		}
		if tail == nil {
			head = seg
		} else {
			tail.Next = seg
		}
		tail = seg
	}
	return head
}

// At returns the position on the segment when timeLeft milliseconds remain.
func (s *Segment) At(timeLeft float64) geom.Vector3 {
	if s.Duration <= 0 {
		return s.Dest
	}
	return s.Src.Lerp(s.Dest, 1-timeLeft/s.Duration)
}

// Position returns the current position on the segment.
func (s *Segment) Position() geom.Vector3 {
	return s.At(s.TimeLeft)
}

// RemainingFraction reports how much of the segment is left, in [0, 1].
func (s *Segment) RemainingFraction() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.TimeLeft / s.Duration
}

// Same reports whether s and o describe the same leg.
func (s *Segment) Same(o *Segment) bool {
	return geom.Equal(s.Src, o.Src) && geom.Equal(s.Dest, o.Dest)
}

func (s *Segment) stamp(now float64) {
	s.Stamp = now - (s.Duration - s.TimeLeft)
	s.Stamped = true
}

// Tail returns the last segment of the chain.
func Tail(seg *Segment) *Segment {
	if seg == nil {
		return nil
	}
	for seg.Next != nil {
		seg = seg.Next
	}
	return seg
}

// Origin follows Prev links back to the first segment and returns its source.
func Origin(seg *Segment) geom.Vector3 {
	for seg.Prev != nil {
		seg = seg.Prev
	}
	return seg.Src
}

// Destination returns where the chain ends.
func Destination(seg *Segment) geom.Vector3 {
	return Tail(seg).Dest
}

// Total returns the duration of the chain from seg on.
func Total(seg *Segment) float64 {
	var total float64
	for ; seg != nil; seg = seg.Next {
		total += seg.Duration
	}
	return total
}

// Remaining returns the time left on the chain from seg on.
func Remaining(seg *Segment) float64 {
	var left float64
	for ; seg != nil; seg = seg.Next {
		left += seg.TimeLeft
	}
	return left
}

// Len returns the number of segments from seg on.
func Len(seg *Segment) int {
	n := 0
	for ; seg != nil; seg = seg.Next {
		n++
	}
	return n
}

// Points returns the polyline of the chain from seg on.
func Points(seg *Segment) []geom.Vector3 {
	if seg == nil {
		return nil
	}
	pts := []geom.Vector3{seg.Src}
	for ; seg != nil; seg = seg.Next {
		pts = append(pts, seg.Dest)
	}
	return pts
}

// Clone deep-copies the chain from seg on, progress included.
func Clone(seg *Segment) *Segment {
	var head, tail *Segment
	for ; seg != nil; seg = seg.Next {
		c := *seg
		c.Prev = tail
		c.Next = nil
		if tail == nil {
			head = &c
		} else {
			tail.Next = &c
		}
		tail = &c
	}
	return head
}

// Reverse builds a fresh chain walking seg's whole chain backwards, from its
// destination to its origin, with the same per-segment durations.
func Reverse(seg *Segment) *Segment {
	var head, tail *Segment
	for s := Tail(seg); s != nil; s = s.Prev {
		r := &Segment{
			Src:      s.Dest,
			Dest:     s.Src,
			Orient:   s.Dest.Heading(s.Src),
			Duration: s.Duration,
			TimeLeft: s.Duration,
			Prev:     tail,
		}
		if tail == nil {
			head = r
		} else {
			tail.Next = r
		}
		tail = r
	}
	return head
}
