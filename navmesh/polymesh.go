package navmesh

import "go.uber.org/zap"

// buildPolygons decomposes every contour into convex polygons of at
// most maxVerticesPerPolygon vertices: ear-clipping triangulation
// followed by greedy merging along the longest shared edges.
func (g *Generator) buildPolygons(contours []Contour) [][]Point {
	var polys [][]Point
	for ci := range contours {
		cont := &contours[ci]
		if len(cont.Points) < 3 {
			g.log.Debug("dropping degenerate contour",
				zap.Int("region", cont.RegionID),
				zap.Int("vertices", len(cont.Points)))
			continue
		}

		tris, ok := g.triangulate(cont.Points)
		if !ok {
			g.stats.TriangulationFailures++
			g.log.Warn("triangulation failed, skipping contour",
				zap.Int("region", cont.RegionID),
				zap.Int("vertices", len(cont.Points)))
			continue
		}

		for _, p := range g.mergePolygons(cont.Points, tris) {
			poly := make([]Point, len(p))
			for i, idx := range p {
				poly[i] = cont.Points[idx].Point
			}
			polys = append(polys, poly)
		}
	}
	return polys
}

// Returns true iff the diagonal (i,j) is strictly internal to the
// polygon in the neighborhood of the i endpoint.
func inCone(i, j int, points []ContourPoint, indices []int) bool {
	n := len(indices)
	pi := points[indices[i]].Point
	pj := points[indices[j]].Point
	pi1 := points[indices[next(i, n)]].Point
	pin1 := points[indices[prev(i, n)]].Point

	// If P[i] is a convex vertex [ i+1 left or on (i-1,i) ].
	if leftOn(pin1, pi, pi1) {
		return left(pi, pj, pin1) && left(pj, pi, pi1)
	}

	// Assume (i-1,i,i+1) not collinear.
	// else P[i] is reflex.
	return !(leftOn(pi, pj, pi1) && leftOn(pj, pi, pin1))
}

// Returns true iff (v_i, v_j) is a proper internal *or* external
// diagonal, *ignoring edges incident to v_i and v_j*.
func diagonalie(i, j int, points []ContourPoint, indices []int) bool {
	n := len(indices)
	d0 := points[indices[i]].Point
	d1 := points[indices[j]].Point

	for k := 0; k < n; k++ {
		k1 := next(k, n)
		// Skip edges incident to i or j.
		if k == i || k1 == i || k == j || k1 == j {
			continue
		}
		p0 := points[indices[k]].Point
		p1 := points[indices[k1]].Point

		if vequal(d0, p0) || vequal(d1, p0) || vequal(d0, p1) || vequal(d1, p1) {
			continue
		}

		if intersect(d0, d1, p0, p1) {
			return false
		}
	}
	return true
}

// Returns true iff (v_i, v_j) is a proper internal diagonal.
func diagonal(i, j int, points []ContourPoint, indices []int) bool {
	return inCone(i, j, points, indices) && diagonalie(i, j, points, indices)
}

// triangulate ear-clips a clockwise polygon, always removing the ear
// with the shortest diagonal first. Returns false when no ear is left
// on a still-too-large polygon (overlapping contour segments).
func (g *Generator) triangulate(points []ContourPoint) ([][3]int, bool) {
	n := len(points)

	indices := g.triIndices[:0]
	for i := 0; i < n; i++ {
		indices = append(indices, i)
	}
	g.triIndices = indices

	ears := g.triEars[:0]
	for i := 0; i < n; i++ {
		ears = append(ears, false)
	}
	g.triEars = ears

	for i := 0; i < n; i++ {
		i1 := next(i, n)
		i2 := next(i1, n)
		ears[i1] = diagonal(i, i2, points, indices)
	}

	tris := g.tris[:0]
	for n > 3 {
		minLen := -1
		mini := -1
		for i := 0; i < n; i++ {
			i1 := next(i, n)
			if !ears[i1] {
				continue
			}
			p0 := points[indices[i]].Point
			p2 := points[indices[next(i1, n)]].Point
			length := distSqr(p0, p2)
			if minLen < 0 || length < minLen {
				minLen = length
				mini = i
			}
		}

		if mini == -1 {
			g.tris = tris
			return nil, false
		}

		i := mini
		i1 := next(i, n)
		i2 := next(i1, n)

		tris = append(tris, [3]int{indices[i], indices[i1], indices[i2]})

		// Remove P[i1] by shifting everything left one slot.
		n--
		copy(indices[i1:n], indices[i1+1:n+1])
		copy(ears[i1:n], ears[i1+1:n+1])
		indices = indices[:n]
		ears = ears[:n]

		if i1 >= n {
			i1 = 0
		}
		i = prev(i1, n)

		ears[i] = diagonal(prev(i, n), i1, points, indices)
		ears[i1] = diagonal(i, next(i1, n), points, indices)
	}

	tris = append(tris, [3]int{indices[0], indices[1], indices[2]})
	g.tris = tris
	return tris, true
}

// uleft reports whether the corner (a,b,c) keeps a left turn under
// clockwise winding.
func uleft(a, b, c Point) bool {
	return area2(a, b, c) > 0
}

// polyMergeValue returns the squared length of the edge shared by pa
// and pb when merging them would stay convex and within the vertex
// cap, together with the shared edge's position in each polygon.
// Returns -1 when the pair cannot merge.
func polyMergeValue(pa, pb []int, points []ContourPoint, nvp int) (val, ea, eb int) {
	na := len(pa)
	nb := len(pb)

	// If the merged polygon would be too big, do not merge.
	if na+nb-2 > nvp {
		return -1, -1, -1
	}

	// Check if the polygons share an edge.
	ea, eb = -1, -1
	for i := 0; i < na; i++ {
		va0 := pa[i]
		va1 := pa[next(i, na)]
		if va0 > va1 {
			va0, va1 = va1, va0
		}
		for j := 0; j < nb; j++ {
			vb0 := pb[j]
			vb1 := pb[next(j, nb)]
			if vb0 > vb1 {
				vb0, vb1 = vb1, vb0
			}
			if va0 == vb0 && va1 == vb1 {
				ea = i
				eb = j
				break
			}
		}
	}
	if ea == -1 || eb == -1 {
		return -1, -1, -1
	}

	// Check that the merged polygon stays convex around both shared
	// endpoints.
	va := pa[prev(ea, na)]
	vb := pa[ea]
	vc := pb[(eb+2)%nb]
	if !uleft(points[va].Point, points[vb].Point, points[vc].Point) {
		return -1, -1, -1
	}

	va = pb[prev(eb, nb)]
	vb = pb[eb]
	vc = pa[(ea+2)%na]
	if !uleft(points[va].Point, points[vb].Point, points[vc].Point) {
		return -1, -1, -1
	}

	va = pa[ea]
	vb = pa[next(ea, na)]
	return distSqr(points[va].Point, points[vb].Point), ea, eb
}

// mergePolyVerts builds the merged ring: pa walked from past its shared
// edge, then pb likewise.
func mergePolyVerts(pa, pb []int, ea, eb int) []int {
	na := len(pa)
	nb := len(pb)
	merged := make([]int, 0, na+nb-2)
	for i := 0; i < na-1; i++ {
		merged = append(merged, pa[(ea+1+i)%na])
	}
	for i := 0; i < nb-1; i++ {
		merged = append(merged, pb[(eb+1+i)%nb])
	}
	return merged
}

// mergePolygons greedily merges triangles along the longest shared
// edge until no merge keeps the result convex and under the cap.
func (g *Generator) mergePolygons(points []ContourPoint, tris [][3]int) [][]int {
	polys := g.mergePolys[:0]
	for _, t := range tris {
		polys = append(polys, []int{t[0], t[1], t[2]})
	}

	for {
		bestVal := 0
		bestA, bestB, bestEA, bestEB := -1, -1, -1, -1
		for i := 0; i < len(polys)-1; i++ {
			for j := i + 1; j < len(polys); j++ {
				val, ea, eb := polyMergeValue(polys[i], polys[j], points, g.maxVerticesPerPolygon)
				if val > bestVal {
					bestVal = val
					bestA, bestB, bestEA, bestEB = i, j, ea, eb
				}
			}
		}
		if bestA == -1 {
			break
		}
		polys[bestA] = mergePolyVerts(polys[bestA], polys[bestB], bestEA, bestEB)
		polys = append(polys[:bestB], polys[bestB+1:]...)
	}

	g.mergePolys = polys
	return polys
}
