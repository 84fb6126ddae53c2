package navmesh

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/udisondev/ranch/internal/geom"
)

// clampDepth is how many neighbor rings ClampStep searches around the
// current node.
const clampDepth = 2

// Pathfinder answers path queries over any number of zones.
// Zones are immutable once set; lookups are safe for concurrent use.
type Pathfinder struct {
	mu    sync.RWMutex
	zones map[string]*Zone
}

// NewPathfinder creates an empty Pathfinder.
func NewPathfinder() *Pathfinder {
	return &Pathfinder{zones: make(map[string]*Zone)}
}

// SetZone registers (or replaces) a zone under id.
func (p *Pathfinder) SetZone(id string, zone *Zone) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zones[id] = zone
}

// Zone returns the zone registered under id.
func (p *Pathfinder) Zone(id string) (*Zone, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	z, ok := p.zones[id]
	return z, ok
}

// GroupID returns the group of the node closest to pos.
// With checkPolygon, a node whose triangle contains pos wins over a merely
// nearer centroid.
func (p *Pathfinder) GroupID(zoneID string, pos geom.Vector3, checkPolygon bool) (int, bool) {
	zone, ok := p.Zone(zoneID)
	if !ok {
		return 0, false
	}

	best := -1
	bestDist := math.Inf(1)
	inside := -1
	insideDist := math.Inf(1)

	for gid := range zone.Groups {
		nodes := zone.Groups[gid].Nodes
		for i := range nodes {
			d := geom.DistanceToSquared(nodes[i].Centroid, pos)
			if d < bestDist {
				best, bestDist = gid, d
			}
			if checkPolygon && d < insideDist && geom.IsVectorInPolygon(pos, zone.Polygon(&nodes[i])) {
				inside, insideDist = gid, d
			}
		}
	}

	if inside != -1 {
		return inside, true
	}
	return best, best != -1
}

// ClosestNode returns the node of the group nearest to pos by centroid.
// With checkPolygon, nodes whose triangle contains pos are preferred; if none
// does, the nearest centroid is used.
func (p *Pathfinder) ClosestNode(zoneID string, groupID int, pos geom.Vector3, checkPolygon bool) (*Node, bool) {
	zone, group, ok := p.group(zoneID, groupID)
	if !ok {
		return nil, false
	}
	return closestNode(zone, group, pos, checkPolygon)
}

func closestNode(zone *Zone, group *Group, pos geom.Vector3, checkPolygon bool) (*Node, bool) {
	var closest, containing *Node
	closestDist := math.Inf(1)
	containingDist := math.Inf(1)

	for i := range group.Nodes {
		n := &group.Nodes[i]
		d := geom.DistanceToSquared(n.Centroid, pos)
		if d < closestDist {
			closest, closestDist = n, d
		}
		if checkPolygon && d < containingDist && geom.IsVectorInPolygon(pos, zone.Polygon(n)) {
			containing, containingDist = n, d
		}
	}

	if containing != nil {
		return containing, true
	}
	return closest, closest != nil
}

// RandomNode returns the centroid of a random node of the group. When
// nearRange > 0 only nodes with centroid closer than nearRange to near are
// candidates.
func (p *Pathfinder) RandomNode(rng *rand.Rand, zoneID string, groupID int, near geom.Vector3, nearRange float64) (geom.Vector3, bool) {
	_, group, ok := p.group(zoneID, groupID)
	if !ok {
		return geom.Vector3{}, false
	}

	candidates := make([]geom.Vector3, 0, len(group.Nodes))
	for i := range group.Nodes {
		c := group.Nodes[i].Centroid
		if nearRange > 0 && geom.DistanceToSquared(near, c) >= nearRange*nearRange {
			continue
		}
		candidates = append(candidates, c)
	}
	return geom.Sample(rng, candidates)
}

// RandomPointNear samples a uniformly random point on a random node whose
// centroid lies within maxDist of near.
func (p *Pathfinder) RandomPointNear(rng *rand.Rand, zoneID string, groupID int, near geom.Vector3, maxDist float64) (geom.Vector3, bool) {
	zone, group, ok := p.group(zoneID, groupID)
	if !ok {
		return geom.Vector3{}, false
	}

	limit := maxDist * maxDist
	candidates := make([]*Node, 0, 16)
	for i := range group.Nodes {
		if geom.DistanceToSquared(near, group.Nodes[i].Centroid) <= limit {
			candidates = append(candidates, &group.Nodes[i])
		}
	}

	node, ok := geom.Sample(rng, candidates)
	if !ok {
		return geom.Vector3{}, false
	}
	a, b, c := zone.Triangle(node)
	return geom.RandomPointInTriangle(rng, a, b, c), true
}

// FindPath returns the straightened path from start to target inside one
// group, starting with start and ending with target. Nil means unreachable.
func (p *Pathfinder) FindPath(zoneID string, groupID int, start, target geom.Vector3) []geom.Vector3 {
	zone, group, ok := p.group(zoneID, groupID)
	if !ok {
		return nil
	}

	from, ok := closestNode(zone, group, start, true)
	if !ok {
		return nil
	}
	to, ok := closestNode(zone, group, target, true)
	if !ok {
		return nil
	}

	corridor := Search(group, from.ID, to.ID)
	if len(corridor) == 0 {
		return nil
	}

	var ch Channel
	ch.PushPoint(start)
	for i := 0; i+1 < len(corridor); i++ {
		portal, ok := group.Nodes[corridor[i]].PortalTo(corridor[i+1])
		if !ok {
			return nil
		}
		ch.Push(zone.Vertices[portal[0]], zone.Vertices[portal[1]])
	}
	ch.PushPoint(target)

	return ch.StringPull()
}

// ClampStep constrains a free step ending at end to the mesh around nodeID,
// the node the walker currently stands on. Returns the reachable point
// closest to end and the node it lies on.
func (p *Pathfinder) ClampStep(zoneID string, groupID int, end geom.Vector3, nodeID int) (geom.Vector3, int, bool) {
	zone, group, ok := p.group(zoneID, groupID)
	if !ok || nodeID < 0 || nodeID >= len(group.Nodes) {
		return geom.Vector3{}, -1, false
	}

	depth := map[int]int{nodeID: 0}
	queue := []int{nodeID}
	closest := -1
	var closestPoint geom.Vector3
	closestDist := math.Inf(1)

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		n := &group.Nodes[cur]
		a, b, c := zone.Triangle(n)
		pt := geom.ClosestPointOnTriangle(end, a, b, c)
		if d := geom.DistanceToSquared(pt, end); d < closestDist {
			closest, closestPoint, closestDist = cur, pt, d
		}

		if depth[cur] >= clampDepth {
			continue
		}
		for _, nb := range n.Neighbors {
			if _, seen := depth[nb]; seen {
				continue
			}
			depth[nb] = depth[cur] + 1
			queue = append(queue, nb)
		}
	}

	return closestPoint, closest, closest != -1
}

func (p *Pathfinder) group(zoneID string, groupID int) (*Zone, *Group, bool) {
	zone, ok := p.Zone(zoneID)
	if !ok || groupID < 0 || groupID >= len(zone.Groups) {
		return nil, nil, false
	}
	return zone, &zone.Groups[groupID], true
}
