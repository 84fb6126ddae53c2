package path

import "github.com/udisondev/ranch/internal/geom"

// Progress is where a walker stands after consuming time from a chain.
type Progress struct {
	// Segment is the first segment not fully consumed, nil once the chain is
	// finished.
	Segment  *Segment
	Position geom.Vector3
	Orient   float64
	Done     bool
}

// Walk consumes elapsed milliseconds from the chain starting at seg.
// Fully consumed segments are zeroed and skipped; the walker lands exactly on
// their Dest. The remainder is taken from the next segment and the position
// is interpolated inside it. Negative elapsed counts as zero.
//
// Walk is the one segment-walking routine; the server feeds it tick deltas,
// the client Playback feeds it clock differences on its own copy.
func Walk(seg *Segment, elapsed float64) Progress {
	if seg == nil {
		return Progress{Done: true}
	}
	if elapsed < 0 {
		elapsed = 0
	}

	var last *Segment
	for seg != nil {
		if elapsed < seg.TimeLeft {
			seg.TimeLeft -= elapsed
			return Progress{
				Segment:  seg,
				Position: seg.Position(),
				Orient:   seg.Orient,
			}
		}
		elapsed -= seg.TimeLeft
		seg.TimeLeft = 0
		last = seg
		seg = seg.Next
	}

	return Progress{
		Position: last.Dest,
		Orient:   last.Orient,
		Done:     true,
	}
}

// Advance is the authoritative server step: it walks the actor's chain by
// the tick delta. The caller stores Progress.Segment back as the actor's
// path and reacts to Done.
func Advance(seg *Segment, deltaMs float64) Progress {
	return Walk(seg, deltaMs)
}
