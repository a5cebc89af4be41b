// Package interp resamples scattered native-grid samples onto regular
// latitude-longitude meshes and samples the resulting fields.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Grid2D is a field on a regular mesh, typically the output of Resample.
type Grid2D struct {
	X      []float64   // Longitudes (columns).
	Y      []float64   // Latitudes (rows).
	Values [][]float64 // Values[row][col] is the value at (X[col], Y[row]).

	// Step is the spacing of both axes when the grid was built from a Mesh.
	// Zero means the axes are only known to be increasing.
	Step float64
}

// NewFilledGrid allocates a field on mesh with every value set to fill.
func NewFilledGrid(mesh *Mesh, fill float64) *Grid2D {
	rows, cols := mesh.Rows(), mesh.Cols()
	flat := make([]float64, rows*cols)
	if fill != 0 {
		for i := range flat {
			flat[i] = fill
		}
	}
	values := make([][]float64, rows)
	for i := range values {
		values[i] = flat[i*cols : (i+1)*cols]
	}
	return &Grid2D{X: mesh.Lon, Y: mesh.Lat, Values: values, Step: mesh.Step}
}

// Dims returns the number of columns and rows.
func (g *Grid2D) Dims() (cols, rows int) { return len(g.X), len(g.Y) }

// Validate checks that the field has increasing axes of at least two nodes
// and one value per node.
func (g *Grid2D) Validate() error {
	if err := checkAxis("lon", g.X); err != nil {
		return err
	}
	if err := checkAxis("lat", g.Y); err != nil {
		return err
	}
	if len(g.Values) != len(g.Y) {
		return fmt.Errorf("field has %d rows for %d latitudes", len(g.Values), len(g.Y))
	}
	for r, row := range g.Values {
		if len(row) != len(g.X) {
			return fmt.Errorf("field row %d has %d values for %d longitudes", r, len(row), len(g.X))
		}
	}
	return nil
}

func checkAxis(name string, axis []float64) error {
	if len(axis) < 2 {
		return fmt.Errorf("%s axis needs at least 2 nodes, got %d", name, len(axis))
	}
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			return fmt.Errorf("%s axis not increasing at index %d", name, i)
		}
	}
	return nil
}

var errOutside = errors.New("outside field")

// InterpolateAt samples the field bilinearly at (x, y). Points beyond the
// last mesh row or column have no enclosing cell and are rejected.
func (g *Grid2D) InterpolateAt(x, y float64) (float64, error) {
	var c, r int
	var ok bool
	if g.Step > 0 {
		c, ok = stepIndex(g.X, g.Step, x)
		if ok {
			r, ok = stepIndex(g.Y, g.Step, y)
		}
	} else {
		if err := g.Validate(); err != nil {
			return 0, fmt.Errorf("invalid field: %w", err)
		}
		c, ok = searchIndex(g.X, x)
		if ok {
			r, ok = searchIndex(g.Y, y)
		}
	}
	if !ok {
		return 0, fmt.Errorf("%w: (%.6f, %.6f) not in [%g, %g]x[%g, %g]", errOutside,
			x, y, g.X[0], g.X[len(g.X)-1], g.Y[0], g.Y[len(g.Y)-1])
	}

	t := (x - g.X[c]) / (g.X[c+1] - g.X[c])
	u := (y - g.Y[r]) / (g.Y[r+1] - g.Y[r])
	lo, hi := g.Values[r], g.Values[r+1]
	return bilinear(lo[c], lo[c+1], hi[c], hi[c+1], clamp01(t), clamp01(u)), nil
}

// bilinear blends the corners of a unit cell; v10 lies along t, v01 along u.
func bilinear(v00, v10, v01, v11, t, u float64) float64 {
	return (1-t)*(1-u)*v00 + t*(1-u)*v10 + (1-t)*u*v01 + t*u*v11
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

// stepIndex locates the cell of v on an evenly spaced axis.
func stepIndex(axis []float64, step, v float64) (int, bool) {
	n := len(axis)
	if n < 2 || math.IsNaN(v) || v < axis[0] || v > axis[n-1] {
		return 0, false
	}
	i := int((v - axis[0]) / step)
	if i > n-2 {
		i = n - 2
	}
	return i, true
}

// searchIndex returns i such that axis[i] <= v <= axis[i+1].
func searchIndex(axis []float64, v float64) (int, bool) {
	if math.IsNaN(v) || v < axis[0] || v > axis[len(axis)-1] {
		return 0, false
	}
	i := sort.SearchFloat64s(axis, v)
	if i > 0 && (i == len(axis) || axis[i] != v) {
		i--
	}
	if i == len(axis)-1 {
		i--
	}
	return i, true
}
