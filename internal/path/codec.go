package path

import (
	"errors"
	"fmt"

	"github.com/udisondev/ranch/internal/geom"
)

// ErrInvalidState is returned when decoded segment states break the chain
// invariants.
var ErrInvalidState = errors.New("invalid path state")

// State is the serialized form of one segment. It travels inside actor
// updates and is stored as JSON alongside persisted actors.
type State struct {
	Src      geom.Vector3 `json:"src"`
	Dest     geom.Vector3 `json:"dest"`
	Orient   float64      `json:"orient"`
	Duration float64      `json:"duration"`
	TimeLeft float64      `json:"timeLeft"`
}

// Encode flattens the chain from seg on.
func Encode(seg *Segment) []State {
	if seg == nil {
		return nil
	}
	out := make([]State, 0, Len(seg))
	for ; seg != nil; seg = seg.Next {
		out = append(out, State{
			Src:      seg.Src,
			Dest:     seg.Dest,
			Orient:   seg.Orient,
			Duration: seg.Duration,
			TimeLeft: seg.TimeLeft,
		})
	}
	return out
}

// Decode rebuilds a chain. An empty input yields a nil chain.
func Decode(states []State) (*Segment, error) {
	var head, tail *Segment
	for i, st := range states {
		if st.Duration < 0 || st.TimeLeft < 0 || st.TimeLeft > st.Duration {
			return nil, fmt.Errorf("segment %d: time left %.3f of %.3f: %w", i, st.TimeLeft, st.Duration, ErrInvalidState)
		}
		if tail != nil && !geom.Equal(tail.Dest, st.Src) {
			return nil, fmt.Errorf("segment %d does not start where %d ends: %w", i, i-1, ErrInvalidState)
		}

		seg := &Segment{
			Src:      st.Src,
			Dest:     st.Dest,
			Orient:   st.Orient,
			Duration: st.Duration,
			TimeLeft: st.TimeLeft,
			Prev:     tail,
		}
		if tail == nil {
			head = seg
		} else {
			tail.Next = seg
		}
		tail = seg
	}
	return head, nil
}
