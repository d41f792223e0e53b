// Package earcut triangulates polygons with holes by ear clipping.
//
// Vertices are read from a flat coordinate slice with dim components per
// vertex; only the first two components take part in the triangulation, extra
// components (such as z) are carried along through the returned indices.
// Resulting triangles are counter-clockwise in the xy plane.
package earcut

import "math"

type node struct {
	i       int // vertex index in the flat coordinate slice (already multiplied by dim)
	x, y    float64
	prev    *node
	next    *node
	steiner bool
}

// Triangulates the polygon described by data. holeIndices holds the vertex
// index at which every hole ring starts. The result lists vertex indices,
// three per triangle.
func Earcut(data []float64, holeIndices []int, dim int) []int {
	if dim < 2 {
		dim = 2
	}
	hasHoles := len(holeIndices) > 0
	outerLen := len(data)
	if hasHoles {
		outerLen = holeIndices[0] * dim
	}

	triangles := make([]int, 0)
	outerNode := linkedList(data, 0, outerLen, dim, true)
	if outerNode == nil || outerNode.next == outerNode.prev {
		return triangles
	}

	if hasHoles {
		outerNode = eliminateHoles(data, holeIndices, outerNode, dim)
	}

	earcutLinked(outerNode, &triangles, dim, 0)
	return triangles
}

// Creates a circular doubly linked list from the polygon points in the specified winding order
func linkedList(data []float64, start, end, dim int, clockwise bool) *node {
	var last *node
	if clockwise == (signedArea(data, start, end, dim) > 0) {
		for i := start; i < end; i += dim {
			last = insertNode(i, data[i], data[i+1], last)
		}
	} else {
		for i := end - dim; i >= start; i -= dim {
			last = insertNode(i, data[i], data[i+1], last)
		}
	}

	if last != nil && equals(last, last.next) {
		removeNode(last)
		last = last.next
	}
	return last
}

// Eliminates colinear or duplicate points
func filterPoints(start, end *node) *node {
	if start == nil {
		return start
	}
	if end == nil {
		end = start
	}

	p := start
	for {
		again := false
		if !p.steiner && (equals(p, p.next) || area(p.prev, p, p.next) == 0) {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
		if !again && p == end {
			break
		}
	}
	return end
}

// Main ear slicing loop
func earcutLinked(ear *node, triangles *[]int, dim int, pass int) {
	if ear == nil {
		return
	}

	stop := ear
	for ear.prev != ear.next {
		prev := ear.prev
		next := ear.next

		if isEar(ear) {
			*triangles = append(*triangles, prev.i/dim, ear.i/dim, next.i/dim)
			removeNode(ear)

			// skipping the next vertex leads to less sliver triangles
			ear = next.next
			stop = next.next
			continue
		}

		ear = next

		// no more ears: try to filter points and slice again, then cure local
		// self-intersections, then split the remaining polygon in two
		if ear == stop {
			switch pass {
			case 0:
				earcutLinked(filterPoints(ear, nil), triangles, dim, 1)
			case 1:
				ear = cureLocalIntersections(filterPoints(ear, nil), triangles, dim)
				earcutLinked(ear, triangles, dim, 2)
			case 2:
				splitEarcut(ear, triangles, dim)
			}
			return
		}
	}
}

// Checks whether a polygon node forms a valid ear with its neighbours
func isEar(ear *node) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false // reflex
	}

	x0, x1 := math.Min(a.x, math.Min(b.x, c.x)), math.Max(a.x, math.Max(b.x, c.x))
	y0, y1 := math.Min(a.y, math.Min(b.y, c.y)), math.Max(a.y, math.Max(b.y, c.y))

	for p := c.next; p != a; p = p.next {
		if p.x >= x0 && p.x <= x1 && p.y >= y0 && p.y <= y1 &&
			pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			area(p.prev, p, p.next) >= 0 {
			return false
		}
	}
	return true
}

// Goes through all polygon nodes and cures small local self-intersections
func cureLocalIntersections(start *node, triangles *[]int, dim int) *node {
	p := start
	for {
		a, b := p.prev, p.next.next
		if !equals(a, b) && intersects(a, p, p.next, b) && locallyInside(a, b) && locallyInside(b, a) {
			*triangles = append(*triangles, a.i/dim, p.i/dim, b.i/dim)
			removeNode(p)
			removeNode(p.next)
			p = b
			start = b
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil)
}

// Tries splitting the polygon into two along a valid diagonal and triangulates them independently
func splitEarcut(start *node, triangles *[]int, dim int) {
	a := start
	for {
		for b := a.next.next; b != a.prev; b = b.next {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitPolygon(a, b)
				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)
				earcutLinked(a, triangles, dim, 0)
				earcutLinked(c, triangles, dim, 0)
				return
			}
		}
		a = a.next
		if a == start {
			return
		}
	}
}

// Links every hole into the outer loop, producing a single ring polygon without holes
func eliminateHoles(data []float64, holeIndices []int, outerNode *node, dim int) *node {
	queue := make([]*node, 0, len(holeIndices))
	for i, hole := range holeIndices {
		start := hole * dim
		end := len(data)
		if i < len(holeIndices)-1 {
			end = holeIndices[i+1] * dim
		}
		list := linkedList(data, start, end, dim, false)
		if list == nil {
			continue
		}
		if list == list.next {
			list.steiner = true
		}
		queue = append(queue, getLeftmost(list))
	}

	sortByX(queue)

	for _, hole := range queue {
		outerNode = eliminateHole(hole, outerNode)
	}
	return outerNode
}

func sortByX(queue []*node) {
	// insertion sort keeps equal keys in input order
	for i := 1; i < len(queue); i++ {
		for j := i; j > 0 && queue[j].x < queue[j-1].x; j-- {
			queue[j], queue[j-1] = queue[j-1], queue[j]
		}
	}
}

// Finds a bridge between the hole and the outer polygon and links them
func eliminateHole(hole, outerNode *node) *node {
	bridge := findHoleBridge(hole, outerNode)
	if bridge == nil {
		return outerNode
	}

	bridgeReverse := splitPolygon(bridge, hole)
	filterPoints(bridgeReverse, bridgeReverse.next)
	return filterPoints(bridge, bridge.next)
}

// David Eberly's algorithm for finding a bridge between a hole and the outer polygon
func findHoleBridge(hole, outerNode *node) *node {
	p := outerNode
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *node

	// find a segment intersected by a ray from the hole's leftmost point to the left;
	// the segment's endpoint with lesser x is a potential connection point
	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				m = p
				if p.next.x < p.x {
					m = p.next
				}
				if x == hx {
					return m // the hole touches the outer segment
				}
			}
		}
		p = p.next
		if p == outerNode {
			break
		}
	}

	if m == nil {
		return nil
	}

	// look for points inside the triangle of hole point, segment intersection and endpoint;
	// when there are several, pick the one with the minimum angle with the ray
	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)

	p = m
	for {
		ax, cx := qx, hx
		if hy < my {
			ax, cx = hx, qx
		}
		if hx >= p.x && p.x >= mx && hx != p.x && pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInside(p, hole) &&
				(tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
		if p == stop {
			break
		}
	}

	return m
}

// Whether sector in vertex m contains sector in vertex p in the same coordinates
func sectorContainsSector(m, p *node) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}

func getLeftmost(start *node) *node {
	p, leftmost := start, start
	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}
		p = p.next
		if p == start {
			break
		}
	}
	return leftmost
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py) >= (ax-px)*(cy-py) &&
		(ax-px)*(by-py) >= (bx-px)*(ay-py) &&
		(bx-px)*(cy-py) >= (cx-px)*(by-py)
}

// Whether a diagonal between two polygon nodes lies inside the polygon without crossing its edges
func isValidDiagonal(a, b *node) bool {
	if a.next.i == b.i || a.prev.i == b.i || intersectsPolygon(a, b) {
		return false
	}
	if locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b) &&
		(area(a.prev, a, b.prev) != 0 || area(a, b.prev, b) != 0) {
		return true
	}
	return equals(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0
}

// Signed area of a triangle
func area(p, q, r *node) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func equals(p1, p2 *node) bool {
	return p1.x == p2.x && p1.y == p2.y
}

func intersects(p1, q1, p2, q2 *node) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}
	// collinear cases
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// For collinear points p, q, r, checks if q lies on segment pr
func onSegment(p, q, r *node) bool {
	return q.x <= math.Max(p.x, r.x) && q.x >= math.Min(p.x, r.x) &&
		q.y <= math.Max(p.y, r.y) && q.y >= math.Min(p.y, r.y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func intersectsPolygon(a, b *node) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i && intersects(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			return false
		}
	}
}

func locallyInside(a, b *node) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

// Whether the middle point of a polygon diagonal is inside the polygon
func middleInside(a, b *node) bool {
	p := a
	inside := false
	px, py := (a.x+b.x)/2, (a.y+b.y)/2
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			return inside
		}
	}
}

// Links two polygon vertices with a bridge. When the vertices belong to the same
// ring the polygon is split in two, otherwise a hole is merged into the outer ring.
// Returns the copy of b.
func splitPolygon(a, b *node) *node {
	a2 := &node{i: a.i, x: a.x, y: a.y}
	b2 := &node{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

func insertNode(i int, x, y float64, last *node) *node {
	p := &node{i: i, x: x, y: y}
	if last == nil {
		p.prev = p
		p.next = p
	} else {
		p.next = last.next
		p.prev = last
		last.next.prev = p
		last.next = p
	}
	return p
}

func removeNode(p *node) {
	p.next.prev = p.prev
	p.prev.next = p.next
}

func signedArea(data []float64, start, end, dim int) float64 {
	sum := 0.0
	j := end - dim
	for i := start; i < end; i += dim {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
		j = i
	}
	return sum
}

// Area of the triangulation, useful to verify a result against the polygon area.
// Only the first two components of each vertex are used.
func TriangulatedArea(data []float64, dim int, triangles []int) float64 {
	total := 0.0
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := triangles[i]*dim, triangles[i+1]*dim, triangles[i+2]*dim
		total += math.Abs((data[a]-data[c])*(data[b+1]-data[a+1])-(data[a]-data[b])*(data[c+1]-data[a+1])) / 2
	}
	return total
}
