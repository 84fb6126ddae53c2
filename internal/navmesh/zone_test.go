package navmesh

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/testutil"
)

func meshOf(d testutil.MeshData) Mesh {
	return Mesh{Vertices: d.Vertices, Faces: d.Faces}
}

func mustBuild(t *testing.T, d testutil.MeshData) *Zone {
	t.Helper()
	zone, err := BuildZone(meshOf(d))
	require.NoError(t, err)
	return zone
}

func TestBuildZoneQuad(t *testing.T) {
	zone := mustBuild(t, testutil.QuadMesh())

	require.Len(t, zone.Vertices, 4)
	require.Len(t, zone.Groups, 1)
	nodes := zone.Groups[0].Nodes
	require.Len(t, nodes, 2)

	assert.Equal(t, []int{1}, nodes[0].Neighbors)
	assert.Equal(t, []int{0}, nodes[1].Neighbors)

	// Both sides see the diagonal, in their own winding order.
	assert.ElementsMatch(t, []int{0, 2}, nodes[0].Portals[0][:])
	assert.ElementsMatch(t, []int{0, 2}, nodes[1].Portals[0][:])
	assert.NotEqual(t, nodes[0].Portals[0], nodes[1].Portals[0])

	assert.InDelta(t, 4.0/3, nodes[0].Centroid.X, 1e-9)
	assert.InDelta(t, 1.0/3, nodes[0].Centroid.Z, 1e-9)
}

func TestBuildZoneMergesVertices(t *testing.T) {
	zone, stats, err := BuildZoneStats(meshOf(testutil.GridMesh(3, 2, 1, nil)))
	require.NoError(t, err)

	// 4 corners per cell * 6 cells, 4*3 unique.
	assert.Len(t, zone.Vertices, 12)
	assert.Equal(t, 12, stats.MergedVertices)
	assert.Equal(t, 12, zone.NodeCount())
	assert.Len(t, zone.Groups, 1)
}

func TestBuildZoneInvariants(t *testing.T) {
	fixtures := map[string]testutil.MeshData{
		"quad":     testutil.QuadMesh(),
		"disjoint": testutil.DisjointTrianglesMesh(),
		"grid":     testutil.GridMesh(5, 4, 2, nil),
		"l":        testutil.LMesh(),
		"islands":  testutil.IslandsMesh(),
	}

	for name, fixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			zone := mustBuild(t, fixture)

			for gid, group := range zone.Groups {
				for id, node := range group.Nodes {
					require.Equal(t, id, node.ID)
					require.Len(t, node.Portals, len(node.Neighbors), "group %d node %d", gid, id)

					for k, nb := range node.Neighbors {
						back := group.Nodes[nb]
						assert.True(t, slices.Contains(back.Neighbors, id), "neighbor relation must be symmetric")

						// The portal is an edge of both triangles.
						portal := node.Portals[k]
						assert.True(t, slices.Contains(node.VertexIDs[:], portal[0]))
						assert.True(t, slices.Contains(node.VertexIDs[:], portal[1]))
						assert.True(t, slices.Contains(back.VertexIDs[:], portal[0]))
						assert.True(t, slices.Contains(back.VertexIDs[:], portal[1]))
					}

					a, b, c := zone.Triangle(&group.Nodes[id])
					assert.GreaterOrEqual(t, geom.TriArea2(a, b, c), 0.0, "winding must face up")
				}
			}
		})
	}
}

func TestBuildZoneGroupsArePartition(t *testing.T) {
	zone := mustBuild(t, testutil.IslandsMesh())

	require.Len(t, zone.Groups, 2)
	assert.Equal(t, 18, len(zone.Groups[0].Nodes))
	assert.Equal(t, 18, len(zone.Groups[1].Nodes))

	// Every node is reachable from node 0 of its group.
	for _, group := range zone.Groups {
		seen := map[int]bool{0: true}
		queue := []int{0}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range group.Nodes[cur].Neighbors {
				if !seen[nb] {
					seen[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		assert.Len(t, seen, len(group.Nodes))
	}
}

func TestBuildZoneDisjoint(t *testing.T) {
	zone := mustBuild(t, testutil.DisjointTrianglesMesh())

	require.Len(t, zone.Groups, 2)
	for _, g := range zone.Groups {
		require.Len(t, g.Nodes, 1)
		assert.Empty(t, g.Nodes[0].Neighbors)
	}
}

func TestBuildZoneNormalizesWinding(t *testing.T) {
	d := testutil.QuadMesh()
	d.Faces = [][]int{{0, 1, 2}, {0, 2, 3}} // both downward-facing

	zone, stats, err := BuildZoneStats(meshOf(d))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Flipped)

	for _, n := range zone.Groups[0].Nodes {
		a, b, c := zone.Triangle(&n)
		assert.Greater(t, geom.TriArea2(a, b, c), 0.0)
	}
}

func TestBuildZoneDropsDegenerateFaces(t *testing.T) {
	d := testutil.QuadMesh()
	d.Vertices = append(d.Vertices, geom.Vec(0, 0, 0)) // duplicate of vertex 0
	d.Faces = append(d.Faces, []int{0, 4, 1}, []int{2, 1, 0})

	zone, stats, err := BuildZoneStats(meshOf(d))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Collapsed)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 2, zone.NodeCount())
}

func TestBuildZoneRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		mesh Mesh
	}{
		{"empty", Mesh{}},
		{"quad face", Mesh{
			Vertices: testutil.QuadMesh().Vertices,
			Faces:    [][]int{{0, 1, 2, 3}},
		}},
		{"index out of range", Mesh{
			Vertices: testutil.QuadMesh().Vertices,
			Faces:    [][]int{{0, 1, 9}},
		}},
		{"only degenerate", Mesh{
			Vertices: testutil.QuadMesh().Vertices,
			Faces:    [][]int{{0, 0, 1}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildZone(tt.mesh)
			require.ErrorIs(t, err, ErrInvalidMesh)
		})
	}
}

func TestParseMesh(t *testing.T) {
	data := []byte(`
vertices:
  - [0, 0, 0]
  - [2, 0, 0]
  - [2, 0, 1]
  - [0, 0, 1]
faces:
  - [0, 2, 1]
  - [0, 3, 2]
`)
	mesh, err := ParseMesh(data)
	require.NoError(t, err)
	assert.Equal(t, testutil.QuadMesh().Vertices, mesh.Vertices)
	assert.Equal(t, testutil.QuadMesh().Faces, mesh.Faces)

	_, err = ParseMesh([]byte("vertices:\n  - [0, 0]\n"))
	require.ErrorIs(t, err, ErrInvalidMesh)
}

func BenchmarkBuildZone(b *testing.B) {
	mesh := meshOf(testutil.GridMesh(40, 40, 1, nil))

	b.ReportAllocs()
	for b.Loop() {
		if _, err := BuildZone(mesh); err != nil {
			b.Fatal(err)
		}
	}
}
