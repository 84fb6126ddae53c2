package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ranch/internal/geom"
)

// lPoints is a 3-4-5 leg followed by a 5 unit leg, 10 units total.
func lPoints() []geom.Vector3 {
	return []geom.Vector3{
		geom.Vec(0, 0, 0),
		geom.Vec(3, 0, 4),
		geom.Vec(8, 0, 4),
	}
}

func assertVec(t *testing.T, want, got geom.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
	assert.InDelta(t, want.Z, got.Z, 1e-9)
}

func assertInvariants(t *testing.T, seg *Segment) {
	t.Helper()
	for s := seg; s != nil; s = s.Next {
		assert.GreaterOrEqual(t, s.TimeLeft, 0.0)
		assert.LessOrEqual(t, s.TimeLeft, s.Duration)
		if s.Next != nil {
			assert.Same(t, s, s.Next.Prev)
		}
	}
}

func TestBuild(t *testing.T) {
	chain := Build(lPoints(), 2)
	require.NotNil(t, chain)

	assert.Equal(t, 2, Len(chain))
	assert.InDelta(t, 2500.0, chain.Duration, 1e-9)
	assert.InDelta(t, 2500.0, chain.Next.Duration, 1e-9)
	assert.InDelta(t, 5000.0, Total(chain), 1e-9)
	assert.InDelta(t, Total(chain), Remaining(chain), 1e-9)
	assert.Nil(t, chain.Prev)
	assert.Same(t, chain, chain.Next.Prev)
	assert.Equal(t, lPoints(), Points(chain))
	assertInvariants(t, chain)
}

func TestBuildRejectsShortInput(t *testing.T) {
	assert.Nil(t, Build(nil, 1))
	assert.Nil(t, Build([]geom.Vector3{geom.Vec(1, 0, 1)}, 1))
	assert.Nil(t, Build(lPoints(), 0))
}

func TestWalk(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		want     geom.Vector3
		done     bool
		segIndex int
	}{
		{"zero", 0, geom.Vec(0, 0, 0), false, 0},
		{"mid first", 1250, geom.Vec(1.5, 0, 2), false, 0},
		{"exact boundary", 2500, geom.Vec(3, 0, 4), false, 1},
		{"into second", 3750, geom.Vec(5.5, 0, 4), false, 1},
		{"exact end", 5000, geom.Vec(8, 0, 4), true, -1},
		{"overshoot", 9000, geom.Vec(8, 0, 4), true, -1},
		{"negative", -100, geom.Vec(0, 0, 0), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := Build(lPoints(), 2)
			segs := []*Segment{chain, chain.Next}

			p := Walk(chain, tt.elapsed)
			assertVec(t, tt.want, p.Position)
			assert.Equal(t, tt.done, p.Done)
			if tt.segIndex < 0 {
				assert.Nil(t, p.Segment)
			} else {
				assert.Same(t, segs[tt.segIndex], p.Segment)
			}
			assertInvariants(t, chain)
		})
	}
}

func TestWalkZeroElapsedIsIdempotent(t *testing.T) {
	chain := Build(lPoints(), 2)
	first := Walk(chain, 1000)
	require.False(t, first.Done)

	for range 5 {
		again := Walk(first.Segment, 0)
		assert.Equal(t, first.Position, again.Position)
		assert.Same(t, first.Segment, again.Segment)
	}
}

func TestWalkInStepsMatchesSingleStep(t *testing.T) {
	whole := Build(lPoints(), 2)
	want := Walk(whole, 3700)

	stepped := Build(lPoints(), 2)
	var p Progress
	seg := stepped
	for range 37 {
		p = Walk(seg, 100)
		seg = p.Segment
	}
	assertVec(t, want.Position, p.Position)
	assert.InDelta(t, Remaining(whole), Remaining(stepped), 1e-6)
}

func TestWalkNilChain(t *testing.T) {
	p := Walk(nil, 100)
	assert.True(t, p.Done)
	assert.Nil(t, p.Segment)
}

func TestAdvanceOrientation(t *testing.T) {
	chain := Build(lPoints(), 2)
	p := Advance(chain, 3000)
	// Second leg runs along +X.
	assert.InDelta(t, chain.Next.Orient, p.Orient, 1e-9)
	assert.Equal(t, geom.Vec(3, 0, 4).Heading(geom.Vec(8, 0, 4)), p.Orient)
}

func TestOriginAfterWalk(t *testing.T) {
	chain := Build(lPoints(), 2)
	tail := Tail(chain)

	p := Walk(chain, 10000)
	require.True(t, p.Done)

	// The walked chain still remembers where it started.
	assertVec(t, geom.Vec(0, 0, 0), Origin(tail))
	assertVec(t, geom.Vec(8, 0, 4), Destination(chain))

	back := Reverse(chain)
	require.NotNil(t, back)
	assert.InDelta(t, Total(chain), Total(back), 1e-9)
	end := Walk(back, Total(back))
	assert.True(t, end.Done)
	assertVec(t, Origin(tail), end.Position)
}

func TestClone(t *testing.T) {
	chain := Build(lPoints(), 2)
	Walk(chain, 1000)

	c := Clone(chain)
	require.Equal(t, Len(chain), Len(c))
	assert.NotSame(t, chain, c)
	assert.Equal(t, chain.TimeLeft, c.TimeLeft)
	assert.Same(t, c, c.Next.Prev)

	Walk(c, 2000)
	assert.InDelta(t, 1500.0, chain.TimeLeft, 1e-9, "walking the clone must not touch the original")
}

func TestEncodeDecode(t *testing.T) {
	chain := Build(lPoints(), 2)
	Walk(chain, 1000)

	states := Encode(chain)
	require.Len(t, states, 2)
	assert.InDelta(t, 1500.0, states[0].TimeLeft, 1e-9)

	back, err := Decode(states)
	require.NoError(t, err)
	assert.Equal(t, Points(chain), Points(back))
	assert.InDelta(t, Remaining(chain), Remaining(back), 1e-9)
	assertInvariants(t, back)

	empty, err := Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestDecodeRejectsBrokenChain(t *testing.T) {
	tests := []struct {
		name   string
		states []State
	}{
		{"time left above duration", []State{{Duration: 10, TimeLeft: 11}}},
		{"negative time left", []State{{Duration: 10, TimeLeft: -1}}},
		{"gap between legs", []State{
			{Src: geom.Vec(0, 0, 0), Dest: geom.Vec(1, 0, 0), Duration: 1, TimeLeft: 1},
			{Src: geom.Vec(2, 0, 0), Dest: geom.Vec(3, 0, 0), Duration: 1, TimeLeft: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.states)
			require.ErrorIs(t, err, ErrInvalidState)
		})
	}
}

func TestPlaybackFollowsClock(t *testing.T) {
	chain := Build(lPoints(), 2)
	pb := NewPlayback(chain, 10_000)

	assertVec(t, geom.Vec(0, 0, 0), pb.Frame(10_000).Position)
	assertVec(t, geom.Vec(1.5, 0, 2), pb.Frame(11_250).Position)
	assertVec(t, geom.Vec(5.5, 0, 4), pb.Frame(13_750).Position)

	end := pb.Frame(20_000)
	assert.True(t, end.Done)
	assert.True(t, pb.Done())
	assertVec(t, geom.Vec(8, 0, 4), pb.Position())

	// The published chain is untouched.
	assert.InDelta(t, 5000.0, Remaining(chain), 1e-9)
}

func TestPlaybackSkippedFrames(t *testing.T) {
	chain := Build(lPoints(), 2)
	pb := NewPlayback(chain, 0)

	// Jumping straight into the second leg stamps it continuously.
	assertVec(t, geom.Vec(5.5, 0, 4), pb.Frame(3750).Position)
	assertVec(t, geom.Vec(6.5, 0, 4), pb.Frame(4250).Position)
}

func TestPlaybackSyncKeepsLocalProgress(t *testing.T) {
	chain := Build(lPoints(), 2)
	pb := NewPlayback(chain, 0)
	assertVec(t, geom.Vec(1.5, 0, 2), pb.Frame(1250).Position)

	// The server republishes the same legs from an older snapshot.
	pb.Sync(Build(lPoints(), 2), 1300)
	assertVec(t, geom.Vec(1.5, 0, 2), pb.Position())
	assertVec(t, geom.Vec(3, 0, 4), pb.Frame(2500).Position)
}

func TestPlaybackSyncNewPath(t *testing.T) {
	pb := NewPlayback(Build(lPoints(), 2), 0)
	pb.Frame(1000)

	fresh := Build([]geom.Vector3{geom.Vec(2, 0, 2), geom.Vec(2, 0, 6)}, 2)
	pb.Sync(fresh, 1000)
	assertVec(t, geom.Vec(2, 0, 2), pb.Position())
	assertVec(t, geom.Vec(2, 0, 4), pb.Frame(2000).Position)
	assert.True(t, pb.Frame(3000).Done)
}
