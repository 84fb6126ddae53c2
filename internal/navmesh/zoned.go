package navmesh

import (
	"math/rand/v2"
	"sync"

	"github.com/udisondev/ranch/internal/geom"
)

// DefaultZoneID is the zone name used by the single-zone facade.
const DefaultZoneID = "level"

// Zoned is a single-zone facade over Pathfinder. One Zoned is created per
// loaded navigation mesh and handed to every ranch simulating on it.
type Zoned struct {
	pf     *Pathfinder
	zoneID string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewZoned wraps zone. rng drives random position sampling; nil seeds a new
// generator.
func NewZoned(zone *Zone, rng *rand.Rand) *Zoned {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	pf := NewPathfinder()
	pf.SetZone(DefaultZoneID, zone)
	return &Zoned{pf: pf, zoneID: DefaultZoneID, rng: rng}
}

// Pathfinder returns the underlying multi-zone pathfinder.
func (z *Zoned) Pathfinder() *Pathfinder {
	return z.pf
}

// Zone returns the wrapped zone.
func (z *Zoned) Zone() *Zone {
	zone, _ := z.pf.Zone(z.zoneID)
	return zone
}

// Group returns the group id pos belongs to.
func (z *Zoned) Group(pos geom.Vector3) (int, bool) {
	return z.pf.GroupID(z.zoneID, pos, true)
}

// FindPath returns the path from src to dest including both ends, or nil when
// dest cannot be reached. Points resolving to different groups are
// unreachable.
func (z *Zoned) FindPath(src, dest geom.Vector3) []geom.Vector3 {
	group, ok := z.Group(src)
	if !ok {
		return nil
	}
	destGroup, ok := z.Group(dest)
	if !ok || destGroup != group {
		return nil
	}
	return z.pf.FindPath(z.zoneID, group, src, dest)
}

// RandomPositionFrom samples a random walkable point on a node whose centroid
// is within maxDist of pos. ok is false when no node qualifies.
func (z *Zoned) RandomPositionFrom(pos geom.Vector3, maxDist float64) (geom.Vector3, bool) {
	group, ok := z.Group(pos)
	if !ok {
		return geom.Vector3{}, false
	}

	z.rngMu.Lock()
	defer z.rngMu.Unlock()
	return z.pf.RandomPointNear(z.rng, z.zoneID, group, pos, maxDist)
}

// ClosestPoint snaps pos onto the mesh.
func (z *Zoned) ClosestPoint(pos geom.Vector3) (geom.Vector3, bool) {
	group, ok := z.Group(pos)
	if !ok {
		return geom.Vector3{}, false
	}
	node, ok := z.pf.ClosestNode(z.zoneID, group, pos, true)
	if !ok {
		return geom.Vector3{}, false
	}
	pt, _, ok := z.pf.ClampStep(z.zoneID, group, pos, node.ID)
	return pt, ok
}
