package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.ngs.io/fluxplot/internal/adapter/interp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderer_Render(t *testing.T) {
	mesh, err := interp.NewMesh(30)
	if err != nil {
		t.Fatal(err)
	}
	constant := interp.NewFilledGrid(mesh, 0)
	varied := interp.Resample(
		[]float64{-100, 100, 0, 20},
		[]float64{-50, -50, 60, 0},
		[]float64{1, 2, 3, 4},
		mesh, interp.DefaultFill,
	)

	tests := []struct {
		name string
		plot Plot
	}{
		{"scatter", Plot{
			Kind: Scatter, Title: "flux_33: A_Qs_all", Label: "A_Qs_all",
			Lon: []float64{0, 90, -90, 179}, Lat: []float64{0, 45, -45, 10}, Values: []float64{1, 2, 3, 4},
		}},
		{"scatter constant", Plot{
			Kind: Scatter, Lon: []float64{0, 1}, Lat: []float64{0, 1}, Values: []float64{5, 5},
		}},
		{"mesh", Plot{Kind: Mesh, Title: "flux_33: A_Qs_all (remapped)", Field: varied}},
		{"mesh all fill", Plot{Kind: Mesh, Field: constant}},
		{"image space", Plot{
			Kind: ImageSpace, Title: "flux_33: feom_x" + DegradedSuffix,
			Rows: 2, Cols: 3, Image: []float64{1, 2, 3, 4, 5, 0},
		}},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.plot
			p.Path = filepath.Join(dir, "images", tt.name+".png")
			if err := NewRenderer().Render(&p); err != nil {
				t.Fatalf("Render: %v", err)
			}
			b, err := os.ReadFile(p.Path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(b, pngMagic) {
				t.Errorf("%s is not a PNG", p.Path)
			}
		})
	}
}

func TestRenderer_RenderEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []Plot{
		{Kind: Scatter},
		{Kind: Mesh},
		{Kind: ImageSpace, Rows: 2, Cols: 2, Image: []float64{1}},
	} {
		p.Path = filepath.Join(dir, p.Kind.String()+".png")
		if err := NewRenderer().Render(&p); !errors.Is(err, ErrNothingToDraw) {
			t.Errorf("Render(%v) error = %v, want ErrNothingToDraw", p.Kind, err)
		}
		if _, err := os.Stat(p.Path); !os.IsNotExist(err) {
			t.Errorf("Render(%v) left a file behind", p.Kind)
		}
	}
}
