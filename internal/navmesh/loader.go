package navmesh

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/ranch/internal/geom"
)

// meshFile is the on-disk navigation mesh layout:
//
//	vertices:
//	  - [0, 0, 0]
//	  - [2, 0, 0]
//	faces:
//	  - [0, 1, 2]
type meshFile struct {
	Vertices [][]float64 `yaml:"vertices"`
	Faces    [][]int     `yaml:"faces"`
}

// ParseMesh decodes a YAML navigation mesh.
func ParseMesh(data []byte) (Mesh, error) {
	var f meshFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Mesh{}, fmt.Errorf("decoding navmesh: %w", err)
	}

	mesh := Mesh{
		Vertices: make([]geom.Vector3, len(f.Vertices)),
		Faces:    f.Faces,
	}
	for i, v := range f.Vertices {
		if len(v) != 3 {
			return Mesh{}, fmt.Errorf("%w: vertex %d has %d components, want 3", ErrInvalidMesh, i, len(v))
		}
		mesh.Vertices[i] = geom.Vec(v[0], v[1], v[2])
	}
	return mesh, nil
}

// LoadMesh reads a YAML navigation mesh from path.
func LoadMesh(path string) (Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mesh{}, fmt.Errorf("reading navmesh %s: %w", path, err)
	}
	mesh, err := ParseMesh(data)
	if err != nil {
		return Mesh{}, fmt.Errorf("parsing navmesh %s: %w", path, err)
	}
	slog.Debug("navmesh loaded", "path", path, "vertices", len(mesh.Vertices), "faces", len(mesh.Faces))
	return mesh, nil
}

// LoadZone reads and builds a zone in one step.
func LoadZone(path string) (*Zone, error) {
	mesh, err := LoadMesh(path)
	if err != nil {
		return nil, err
	}
	zone, err := BuildZone(mesh)
	if err != nil {
		return nil, fmt.Errorf("building zone from %s: %w", path, err)
	}
	return zone, nil
}
