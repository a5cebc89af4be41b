package interp

import (
	"math"

	"github.com/fogleman/delaunay"
)

// DefaultFill is assigned to mesh nodes outside the convex hull of the input.
const DefaultFill = 0.0

// Resample interpolates scattered samples (lon[i], lat[i]) -> values[i] onto
// every node of mesh with piecewise-linear (barycentric) interpolation over a
// Delaunay triangulation. Nodes outside the convex hull receive fill.
//
// Inputs must already have equal length and finite values. Fewer than three
// distinct, non-collinear points produce an all-fill field rather than an error.
// The result is deterministic for identical inputs: triangles are visited in
// triangulation order and the first triangle covering a node wins.
//
// Cost is O(P log P) for the triangulation plus O(M) node visits.
func Resample(lon, lat, values []float64, mesh *Mesh, fill float64) *Grid2D {
	field := NewFilledGrid(mesh, fill)

	n := len(values)
	if len(lon) < n {
		n = len(lon)
	}
	if len(lat) < n {
		n = len(lat)
	}
	if n < 3 {
		return field
	}

	points := make([]delaunay.Point, n)
	for i := 0; i < n; i++ {
		points[i] = delaunay.Point{X: lon[i], Y: lat[i]}
	}
	tri, err := delaunay.Triangulate(points)
	if err != nil || len(tri.Triangles) == 0 {
		return field
	}

	filled := make([]bool, mesh.Rows()*mesh.Cols())
	for t := 0; t+2 < len(tri.Triangles); t += 3 {
		a, b, c := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		rasterizeTriangle(field, filled, mesh,
			points[a], points[b], points[c],
			values[a], values[b], values[c])
	}
	return field
}

// rasterizeTriangle assigns the barycentric interpolant to every unfilled mesh
// node inside the triangle (boundary included).
func rasterizeTriangle(field *Grid2D, filled []bool, mesh *Mesh, pa, pb, pc delaunay.Point, va, vb, vc float64) {
	det := (pb.Y-pc.Y)*(pa.X-pc.X) + (pc.X-pb.X)*(pa.Y-pc.Y)
	if det == 0 || math.IsNaN(det) {
		return
	}

	minX, maxX := math.Min(pa.X, math.Min(pb.X, pc.X)), math.Max(pa.X, math.Max(pb.X, pc.X))
	minY, maxY := math.Min(pa.Y, math.Min(pb.Y, pc.Y)), math.Max(pa.Y, math.Max(pb.Y, pc.Y))
	c0, c1 := mesh.colRange(minX, maxX)
	r0, r1 := mesh.rowRange(minY, maxY)

	// Relative tolerance so nodes exactly on shared edges are not lost to rounding.
	eps := 1e-12 * math.Max(1, math.Abs(det))
	cols := mesh.Cols()

	for r := r0; r <= r1; r++ {
		y := mesh.Lat[r]
		for c := c0; c <= c1; c++ {
			idx := r*cols + c
			if filled[idx] {
				continue
			}
			x := mesh.Lon[c]
			wa := (pb.Y-pc.Y)*(x-pc.X) + (pc.X-pb.X)*(y-pc.Y)
			wb := (pc.Y-pa.Y)*(x-pc.X) + (pa.X-pc.X)*(y-pc.Y)
			wc := det - wa - wb
			if det < 0 {
				wa, wb, wc = -wa, -wb, -wc
			}
			if wa < -eps || wb < -eps || wc < -eps {
				continue
			}
			d := math.Abs(det)
			field.Values[r][c] = (wa*va + wb*vb + wc*vc) / d
			filled[idx] = true
		}
	}
}
