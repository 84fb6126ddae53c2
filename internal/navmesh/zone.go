package navmesh

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/ranch/internal/geom"
)

// ErrInvalidMesh is returned when the input geometry cannot be turned into a
// zone (non-triangle faces, out of range indices, empty mesh).
var ErrInvalidMesh = errors.New("invalid navigation mesh")

// Mesh is raw indexed geometry as exported by the level editor.
// Every face must be a triangle.
type Mesh struct {
	Vertices []geom.Vector3
	Faces    [][]int
}

// Node is one walkable triangle of a group.
// Neighbors[i] shares the edge Portals[i] with this node; portal endpoints are
// listed in this node's winding order so consecutive portals keep the same
// left/right sense for the funnel.
type Node struct {
	ID        int
	VertexIDs [3]int
	Neighbors []int
	Portals   [][2]int
	Centroid  geom.Vector3
}

// Group is a connected component of the node graph. Node IDs index Nodes.
type Group struct {
	Nodes []Node
}

// Zone is a navigation mesh ready for queries. Immutable after BuildZone,
// safe for concurrent readers.
type Zone struct {
	Vertices []geom.Vector3
	Groups   []Group
}

// BuildStats reports what BuildZone had to repair in the input.
type BuildStats struct {
	MergedVertices int
	Flipped        int
	FlatInXZ       int
	Collapsed      int
	Duplicates     int
}

// polygon is a triangle during construction, indexed globally.
type polygon struct {
	verts     [3]int
	neighbors []int
	portals   [][2]int
}

// BuildZone converts raw triangle geometry into a Zone.
//
// Coincident vertices are merged by exact equality. Triangles are rewound to
// face upward (positive TriArea2 on XZ); the number of flips is logged since
// it means the exporter winding was inconsistent. Triangles that collapse to
// a line after merging, or duplicate another triangle, are dropped.
func BuildZone(mesh Mesh) (*Zone, error) {
	zone, _, err := BuildZoneStats(mesh)
	return zone, err
}

// BuildZoneStats is BuildZone that also reports the repairs it made.
func BuildZoneStats(mesh Mesh) (*Zone, BuildStats, error) {
	var stats BuildStats

	if len(mesh.Faces) == 0 {
		return nil, stats, fmt.Errorf("%w: no faces", ErrInvalidMesh)
	}
	for i, face := range mesh.Faces {
		if len(face) != 3 {
			return nil, stats, fmt.Errorf("%w: face %d has %d vertices, want 3", ErrInvalidMesh, i, len(face))
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(mesh.Vertices) {
				return nil, stats, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidMesh, i, idx, len(mesh.Vertices))
			}
		}
	}

	vertices, remap := mergeVertices(mesh.Vertices)
	stats.MergedVertices = len(mesh.Vertices) - len(vertices)

	polys := make([]*polygon, 0, len(mesh.Faces))
	seen := make(map[[3]int]struct{}, len(mesh.Faces))
	for _, face := range mesh.Faces {
		v := [3]int{remap[face[0]], remap[face[1]], remap[face[2]]}
		if v[0] == v[1] || v[1] == v[2] || v[0] == v[2] {
			stats.Collapsed++
			continue
		}

		key := v
		slices.Sort(key[:])
		if _, dup := seen[key]; dup {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		switch area := geom.TriArea2(vertices[v[0]], vertices[v[1]], vertices[v[2]]); {
		case area < 0:
			v[1], v[2] = v[2], v[1]
			stats.Flipped++
		case area == 0:
			stats.FlatInXZ++
		}
		polys = append(polys, &polygon{verts: v})
	}

	if len(polys) == 0 {
		return nil, stats, fmt.Errorf("%w: all %d faces are degenerate", ErrInvalidMesh, len(mesh.Faces))
	}

	linkNeighbors(polys)
	groups := buildGroups(polys, vertices)

	if stats.Flipped > 0 || stats.FlatInXZ > 0 || stats.Collapsed > 0 || stats.Duplicates > 0 {
		slog.Warn("navmesh input repaired",
			"flipped", stats.Flipped,
			"flat_in_xz", stats.FlatInXZ,
			"collapsed", stats.Collapsed,
			"duplicates", stats.Duplicates)
	}
	slog.Info("navmesh zone built",
		"vertices", len(vertices),
		"merged", stats.MergedVertices,
		"nodes", len(polys),
		"groups", len(groups))

	return &Zone{Vertices: vertices, Groups: groups}, stats, nil
}

// mergeVertices deduplicates exactly coincident vertices.
// Returns the unique list and old index → new index.
func mergeVertices(in []geom.Vector3) ([]geom.Vector3, []int) {
	out := make([]geom.Vector3, 0, len(in))
	remap := make([]int, len(in))
	index := make(map[geom.Vector3]int, len(in))

	for i, v := range in {
		if id, ok := index[v]; ok {
			remap[i] = id
			continue
		}
		id := len(out)
		index[v] = id
		out = append(out, v)
		remap[i] = id
	}
	return out, remap
}

type edgeKey [2]int

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// linkNeighbors connects every pair of polygons sharing an edge.
// Each polygon lists neighbors in the order of its own edges, so the relation
// is symmetric by construction.
func linkNeighbors(polys []*polygon) {
	edges := make(map[edgeKey][]int, len(polys)*3/2)
	for i, p := range polys {
		for k := range 3 {
			key := makeEdgeKey(p.verts[k], p.verts[(k+1)%3])
			edges[key] = append(edges[key], i)
		}
	}

	for i, p := range polys {
		for k := range 3 {
			a, b := p.verts[k], p.verts[(k+1)%3]
			for _, j := range edges[makeEdgeKey(a, b)] {
				if j == i || slices.Contains(p.neighbors, j) {
					continue
				}
				p.neighbors = append(p.neighbors, j)
				p.portals = append(p.portals, [2]int{a, b})
			}
		}
	}
}

// buildGroups flood-fills the neighbor graph into connected components and
// re-indexes nodes per group. Group order follows the lowest polygon index.
func buildGroups(polys []*polygon, vertices []geom.Vector3) []Group {
	groupOf := make([]int, len(polys))
	for i := range groupOf {
		groupOf[i] = -1
	}

	var members [][]int
	for seed := range polys {
		if groupOf[seed] != -1 {
			continue
		}
		gid := len(members)
		groupOf[seed] = gid
		component := []int{seed}
		queue := []int{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range polys[cur].neighbors {
				if groupOf[n] == -1 {
					groupOf[n] = gid
					component = append(component, n)
					queue = append(queue, n)
				}
			}
		}
		slices.Sort(component)
		members = append(members, component)
	}

	groups := make([]Group, len(members))
	for gid, component := range members {
		local := make(map[int]int, len(component))
		for id, pi := range component {
			local[pi] = id
		}

		nodes := make([]Node, len(component))
		for id, pi := range component {
			p := polys[pi]
			neighbors := make([]int, len(p.neighbors))
			for k, n := range p.neighbors {
				neighbors[k] = local[n]
			}
			portals := make([][2]int, len(p.portals))
			copy(portals, p.portals)

			nodes[id] = Node{
				ID:        id,
				VertexIDs: p.verts,
				Neighbors: neighbors,
				Portals:   portals,
				Centroid:  geom.Centroid(vertices[p.verts[0]], vertices[p.verts[1]], vertices[p.verts[2]]),
			}
		}
		groups[gid] = Group{Nodes: nodes}
	}
	return groups
}

// Triangle returns the three corners of node n.
func (z *Zone) Triangle(n *Node) (a, b, c geom.Vector3) {
	return z.Vertices[n.VertexIDs[0]], z.Vertices[n.VertexIDs[1]], z.Vertices[n.VertexIDs[2]]
}

// Polygon returns node n's corners as a slice, for point-in-polygon tests.
func (z *Zone) Polygon(n *Node) []geom.Vector3 {
	a, b, c := z.Triangle(n)
	return []geom.Vector3{a, b, c}
}

// NodeCount returns the total number of nodes across all groups.
func (z *Zone) NodeCount() int {
	total := 0
	for _, g := range z.Groups {
		total += len(g.Nodes)
	}
	return total
}

// PortalTo returns the edge node a shares with neighbor b, or false if they
// are not adjacent.
func (a *Node) PortalTo(b int) ([2]int, bool) {
	for i, n := range a.Neighbors {
		if n == b {
			return a.Portals[i], true
		}
	}
	return [2]int{}, false
}
