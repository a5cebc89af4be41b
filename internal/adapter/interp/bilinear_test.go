package interp

import (
	"math"
	"testing"
)

func TestBilinear(t *testing.T) {
	tests := []struct {
		name     string
		t, u     float64
		expected float64
	}{
		{"center", 0.5, 0.5, 4},
		{"v00 corner", 0, 0, 1},
		{"v11 corner", 1, 1, 7},
		{"bottom edge", 0.5, 0, 2},
		{"left edge", 0, 0.25, 2},
	}
	for _, tt := range tests {
		if got := bilinear(1, 3, 5, 7, tt.t, tt.u); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, got)
		}
	}
}

// TestGrid2D_InterpolateAt samples a resampled-field shaped grid.
func TestGrid2D_InterpolateAt(t *testing.T) {
	grid := &Grid2D{
		X:      []float64{-180, -179.5, -179},
		Y:      []float64{-90, -89.5},
		Values: [][]float64{{0, 1, 2}, {10, 11, 12}},
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{-180, -90, 0},
		{-179.5, -90, 1},
		{-179, -89.5, 12},
		{-179.25, -89.75, 6.5},
	}
	for _, tt := range tests {
		got, err := grid.InterpolateAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("unexpected error at (%v, %v): %v", tt.x, tt.y, err)
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("at (%v, %v): expected %v, got %v", tt.x, tt.y, tt.expected, got)
		}
	}

	if _, err := grid.InterpolateAt(-178, -90); err == nil {
		t.Error("expected error for x beyond the last column")
	}
	if _, err := grid.InterpolateAt(-180, -89); err == nil {
		t.Error("expected error for y beyond the last row")
	}
	if _, err := grid.InterpolateAt(math.NaN(), -90); err == nil {
		t.Error("expected error for NaN longitude")
	}

	broken := &Grid2D{X: []float64{0, 1}, Y: []float64{0, 1}, Values: [][]float64{{1, 2}}}
	if _, err := broken.InterpolateAt(0.5, 0.5); err == nil {
		t.Error("expected error for a field with a missing row")
	}
}

// TestGrid2D_InterpolateAtMesh samples a mesh-built field, whose cells are
// located by step arithmetic, and compares with the searched lookup.
func TestGrid2D_InterpolateAtMesh(t *testing.T) {
	mesh, err := NewMesh(0.7)
	if err != nil {
		t.Fatal(err)
	}
	g := NewFilledGrid(mesh, 0)
	for r, y := range mesh.Lat {
		for c, x := range mesh.Lon {
			g.Values[r][c] = 3*x - y
		}
	}
	searched := &Grid2D{X: g.X, Y: g.Y, Values: g.Values}

	last := mesh.Lon[len(mesh.Lon)-1]
	points := [][2]float64{{-180, -90}, {0, 0}, {12.34, -56.7}, {last, 0}, {179, 89}}
	for _, p := range points {
		got, err := g.InterpolateAt(p[0], p[1])
		if err != nil {
			t.Fatalf("(%v, %v): %v", p[0], p[1], err)
		}
		if want := 3*p[0] - p[1]; math.Abs(got-want) > 1e-9 {
			t.Errorf("(%v, %v) = %v, want %v", p[0], p[1], got, want)
		}
		ref, err := searched.InterpolateAt(p[0], p[1])
		if err != nil || math.Abs(got-ref) > 1e-9 {
			t.Errorf("(%v, %v): step lookup %v, search lookup %v (%v)", p[0], p[1], got, ref, err)
		}
	}

	if _, err := g.InterpolateAt(last+0.1, 0); err == nil {
		t.Error("expected error past the last column")
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid2D
		wantErr bool
	}{
		{
			name:    "valid grid",
			grid:    &Grid2D{X: []float64{0, 1, 2}, Y: []float64{0, 1}, Values: [][]float64{{1, 2, 3}, {4, 5, 6}}},
			wantErr: false,
		},
		{
			name:    "too few X coords",
			grid:    &Grid2D{X: []float64{0}, Y: []float64{0, 1}, Values: [][]float64{{1}, {2}}},
			wantErr: true,
		},
		{
			name:    "mismatched column count",
			grid:    &Grid2D{X: []float64{0, 1, 2}, Y: []float64{0, 1}, Values: [][]float64{{1, 2}, {3, 4}}},
			wantErr: true,
		},
		{
			name:    "non-increasing X",
			grid:    &Grid2D{X: []float64{0, 2, 1}, Y: []float64{0, 1}, Values: [][]float64{{1, 2, 3}, {4, 5, 6}}},
			wantErr: true,
		},
		{
			name:    "repeated Y",
			grid:    &Grid2D{X: []float64{0, 1}, Y: []float64{1, 1}, Values: [][]float64{{1, 2}, {3, 4}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewFilledGrid(t *testing.T) {
	mesh, err := NewMesh(45)
	if err != nil {
		t.Fatal(err)
	}
	g := NewFilledGrid(mesh, -1)
	cols, rows := g.Dims()
	if cols != 8 || rows != 4 {
		t.Fatalf("Dims() = %d, %d", cols, rows)
	}
	for _, row := range g.Values {
		for _, v := range row {
			if v != -1 {
				t.Fatalf("value %v, want fill -1", v)
			}
		}
	}
}
