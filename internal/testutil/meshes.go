package testutil

import "github.com/udisondev/ranch/internal/geom"

// MeshData is raw indexed triangle geometry used by navmesh fixtures.
type MeshData struct {
	Vertices []geom.Vector3
	Faces    [][]int
}

// QuadMesh returns a flat 2×1 quad on y=0 split along the (0,0)-(2,1)
// diagonal into two upward-facing triangles.
func QuadMesh() MeshData {
	return MeshData{
		Vertices: []geom.Vector3{
			geom.Vec(0, 0, 0),
			geom.Vec(2, 0, 0),
			geom.Vec(2, 0, 1),
			geom.Vec(0, 0, 1),
		},
		Faces: [][]int{{0, 2, 1}, {0, 3, 2}},
	}
}

// DisjointTrianglesMesh returns two triangles that share no edge.
func DisjointTrianglesMesh() MeshData {
	return MeshData{
		Vertices: []geom.Vector3{
			geom.Vec(0, 0, 0), geom.Vec(0, 0, 1), geom.Vec(1, 0, 0),
			geom.Vec(5, 0, 0), geom.Vec(5, 0, 1), geom.Vec(6, 0, 0),
		},
		Faces: [][]int{{0, 1, 2}, {3, 4, 5}},
	}
}

// GridMesh returns a cols×rows grid of square cells on y=0, two triangles per
// cell, skipping cells for which blocked returns true. Every cell emits its
// own four corners so shared corners exercise vertex merging.
func GridMesh(cols, rows int, cell float64, blocked func(col, row int) bool) MeshData {
	var m MeshData
	for r := range rows {
		for c := range cols {
			if blocked != nil && blocked(c, r) {
				continue
			}
			x0, x1 := float64(c)*cell, float64(c+1)*cell
			z0, z1 := float64(r)*cell, float64(r+1)*cell

			base := len(m.Vertices)
			m.Vertices = append(m.Vertices,
				geom.Vec(x0, 0, z0), // p00
				geom.Vec(x1, 0, z0), // p10
				geom.Vec(x1, 0, z1), // p11
				geom.Vec(x0, 0, z1), // p01
			)
			m.Faces = append(m.Faces,
				[]int{base, base + 2, base + 1},
				[]int{base, base + 3, base + 2},
			)
		}
	}
	return m
}

// LMesh returns three unit cells forming an L: (0,0), (1,0) and (1,1).
// Walking from cell (0,0) to cell (1,1) has to bend around corner (1,0,1).
func LMesh() MeshData {
	return GridMesh(2, 2, 1, func(col, row int) bool { return col == 0 && row == 1 })
}

// IslandsMesh returns two 3×3 grids separated by a gap of one cell.
func IslandsMesh() MeshData {
	return GridMesh(7, 3, 1, func(col, _ int) bool { return col == 3 })
}
