package navmesh

import (
	"container/heap"
	"math"
)

// Search runs A* over one group from node start to node goal.
// Returns node IDs from start to goal inclusive, or nil if goal is not
// reachable. start == goal yields a single element.
//
// All bookkeeping (g score, parent, closed flag) lives in per-call slices
// indexed by node ID, so concurrent searches over the same group are safe.
// Ties on f are broken by discovery order.
func Search(group *Group, start, goal int) []int {
	n := len(group.Nodes)
	if start < 0 || start >= n || goal < 0 || goal >= n {
		return nil
	}
	if start == goal {
		return []int{start}
	}

	nodes := group.Nodes
	goalCentroid := nodes[goal].Centroid

	gScore := make([]float64, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		parent[i] = -1
	}

	open := &openList{}
	var seq uint64
	gScore[start] = 0
	heap.Push(open, &openItem{node: start, f: nodes[start].Centroid.DistanceTo(goalCentroid), seq: seq})

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		if closed[current.node] {
			continue
		}
		if current.node == goal {
			return reconstruct(parent, goal)
		}
		closed[current.node] = true

		cur := &nodes[current.node]
		for _, nb := range cur.Neighbors {
			if closed[nb] {
				continue
			}
			g := gScore[current.node] + cur.Centroid.DistanceTo(nodes[nb].Centroid)
			if g >= gScore[nb] {
				continue
			}
			gScore[nb] = g
			parent[nb] = current.node
			seq++
			heap.Push(open, &openItem{
				node: nb,
				f:    g + nodes[nb].Centroid.DistanceTo(goalCentroid),
				seq:  seq,
			})
		}
	}

	return nil
}

func reconstruct(parent []int, goal int) []int {
	var path []int
	for n := goal; n != -1; n = parent[n] {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openItem is an entry of the A* open list. Stale entries (superseded by a
// cheaper push) are skipped on pop via the closed flag.
type openItem struct {
	node  int
	f     float64
	seq   uint64
	index int
}

// openList implements container/heap, min-heap by f then seq.
type openList []*openItem

func (h openList) Len() int { return len(h) }
func (h openList) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openList) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openList) Push(x any) { it := x.(*openItem); it.index = len(*h); *h = append(*h, it) }
func (h *openList) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // GC
	it.index = -1
	*h = old[:n-1]
	return it
}
