// navquery loads a navigation mesh and answers path queries against it.
//
// Usage:
//
//	go run ./cmd/navquery -mesh config/navmesh.yaml
//	go run ./cmd/navquery -mesh config/navmesh.yaml -from 1,0,1 -to 9,0,9
//	go run ./cmd/navquery -mesh config/navmesh.yaml -from 1,0,1 -random 8
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/navmesh"
	"github.com/udisondev/ranch/internal/path"
)

var errBadVector = errors.New("want x,y,z")

func main() {
	meshPath := flag.String("mesh", "config/navmesh.yaml", "YAML navigation mesh")
	from := flag.String("from", "", "query origin as x,y,z")
	to := flag.String("to", "", "path destination as x,y,z")
	random := flag.Float64("random", 0, "sample a random position within this distance of -from")
	speed := flag.Float64("speed", 2, "walker speed for path timing, units per second")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if err := run(*meshPath, *from, *to, *random, *speed, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(meshPath, from, to string, random, speed float64, seed uint64) error {
	mesh, err := navmesh.LoadMesh(meshPath)
	if err != nil {
		return err
	}
	zone, stats, err := navmesh.BuildZoneStats(mesh)
	if err != nil {
		return err
	}

	fmt.Printf("vertices:        %d (%d merged)\n", len(zone.Vertices), stats.MergedVertices)
	fmt.Printf("nodes:           %d\n", zone.NodeCount())
	fmt.Printf("groups:          %d\n", len(zone.Groups))
	for i, g := range zone.Groups {
		fmt.Printf("  group %d:       %d nodes\n", i, len(g.Nodes))
	}
	fmt.Printf("flipped faces:   %d\n", stats.Flipped)
	fmt.Printf("dropped faces:   %d collapsed, %d duplicate\n", stats.Collapsed, stats.Duplicates)

	if from == "" {
		return nil
	}
	src, err := parseVec(from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}

	zoned := navmesh.NewZoned(zone, rand.New(rand.NewPCG(seed, seed+1)))
	group, ok := zoned.Group(src)
	if !ok {
		return fmt.Errorf("%v is not on the mesh", src)
	}
	fmt.Printf("\nfrom %v: group %d\n", src, group)

	if to != "" {
		dest, err := parseVec(to)
		if err != nil {
			return fmt.Errorf("-to: %w", err)
		}
		printPath(zoned.FindPath(src, dest), speed)
	}

	if random > 0 {
		pos, ok := zoned.RandomPositionFrom(src, random)
		if !ok {
			fmt.Printf("random: no node within %.2f\n", random)
		} else {
			fmt.Printf("random: %v (%.2f away)\n", pos, pos.DistanceTo(src))
		}
	}
	return nil
}

func printPath(points []geom.Vector3, speed float64) {
	if points == nil {
		fmt.Println("path: unreachable")
		return
	}

	fmt.Printf("path: %d points\n", len(points))
	seg := path.Build(points, speed)
	if seg == nil {
		fmt.Printf("  %v\n", points[0])
		return
	}
	for s := seg; s != nil; s = s.Next {
		fmt.Printf("  %v -> %v  %.0fms\n", s.Src, s.Dest, s.Duration)
	}
	fmt.Printf("total: %.0fms at %.2f u/s\n", path.Total(seg), speed)
}

// parseVec parses "x,y,z".
func parseVec(s string) (geom.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Vector3{}, fmt.Errorf("%q: %w", s, errBadVector)
	}

	var c [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Vector3{}, fmt.Errorf("%q: %w", s, errBadVector)
		}
		c[i] = v
	}
	return geom.Vec(c[0], c[1], c[2]), nil
}
