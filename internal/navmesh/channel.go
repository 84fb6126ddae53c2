package navmesh

import "github.com/udisondev/ranch/internal/geom"

// Portal is a doorway the funnel has to pass, seen from the walker.
type Portal struct {
	Left  geom.Vector3
	Right geom.Vector3
}

// Channel collects the portals of a node corridor and straightens them into
// the shortest taut path (the "simple stupid funnel algorithm").
//
// Usage: PushPoint(start), Push(left, right) for every portal in walking
// order, PushPoint(end), then StringPull.
type Channel struct {
	portals []Portal
	path    []geom.Vector3
}

// Push appends a portal.
func (c *Channel) Push(left, right geom.Vector3) {
	c.portals = append(c.portals, Portal{Left: left, Right: right})
}

// PushPoint appends a zero-width portal (start or end point).
func (c *Channel) PushPoint(p geom.Vector3) {
	c.Push(p, p)
}

// Portals returns the pushed portals.
func (c *Channel) Portals() []Portal {
	return c.portals
}

// Path returns the result of the last StringPull.
func (c *Channel) Path() []geom.Vector3 {
	return c.path
}

// StringPull runs the funnel over the pushed portals. The first point of the
// result is the first pushed point, the last is the last pushed point; in
// between are only the corners the path has to bend around.
func (c *Channel) StringPull() []geom.Vector3 {
	portals := c.portals
	if len(portals) == 0 {
		c.path = nil
		return nil
	}

	pts := make([]geom.Vector3, 0, len(portals))

	apex := portals[0].Left
	left := portals[0].Left
	right := portals[0].Right
	apexIndex, leftIndex, rightIndex := 0, 0, 0

	pts = append(pts, apex)

	for i := 1; i < len(portals); i++ {
		pl := portals[i].Left
		pr := portals[i].Right

		// Right side.
		if geom.TriArea2(apex, right, pr) <= 0 {
			if geom.Equal(apex, right) || geom.TriArea2(apex, left, pr) > 0 {
				// Tighten the funnel.
				right = pr
				rightIndex = i
			} else {
				// Right crossed over left: left becomes the new apex.
				pts = appendCorner(pts, left)
				apex = left
				apexIndex = leftIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}

		// Left side.
		if geom.TriArea2(apex, left, pl) >= 0 {
			if geom.Equal(apex, left) || geom.TriArea2(apex, right, pl) < 0 {
				left = pl
				leftIndex = i
			} else {
				// Left crossed over right: right becomes the new apex.
				pts = appendCorner(pts, right)
				apex = right
				apexIndex = rightIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex
				continue
			}
		}
	}

	// a start and end closer than the vertex epsilon still make a two-point
	// path, so every result ends on the last pushed point
	end := portals[len(portals)-1].Left
	if len(pts) < 2 || !geom.Equal(pts[len(pts)-1], end) {
		pts = append(pts, end)
	}

	c.path = pts
	return pts
}

// appendCorner adds p unless it repeats the previous corner, which happens
// when several portals fan out of the same vertex.
func appendCorner(pts []geom.Vector3, p geom.Vector3) []geom.Vector3 {
	if len(pts) > 0 && geom.Equal(pts[len(pts)-1], p) {
		return pts
	}
	return append(pts, p)
}
