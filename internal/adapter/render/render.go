// Package render draws flux plots as PNG images with gonum/plot.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.ngs.io/fluxplot/internal/adapter/interp"
)

// Kind selects how a Plot is drawn.
type Kind int

const (
	// Scatter draws one colored point per native grid point.
	Scatter Kind = iota
	// Mesh draws a resampled field as a heat map.
	Mesh
	// ImageSpace draws raw values laid out by array index, without geography.
	ImageSpace
)

func (k Kind) String() string {
	switch k {
	case Scatter:
		return "scatter"
	case Mesh:
		return "mesh"
	case ImageSpace:
		return "image-space"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DegradedSuffix is appended to the title of image-space plots.
const DegradedSuffix = " (degraded: image space, no geographic coordinates)"

// ErrNothingToDraw means a plot request carries no values.
var ErrNothingToDraw = errors.New("nothing to draw")

// Plot is one image request.
type Plot struct {
	Kind  Kind
	Path  string // Output file; the extension selects the format.
	Title string
	Label string // Variable name shown with the value range.

	// Scatter.
	Lon, Lat, Values []float64

	// Mesh.
	Field *interp.Grid2D

	// ImageSpace, row-major.
	Rows, Cols int
	Image      []float64
}

// Renderer writes plots to disk. A Renderer holds no per-plot state and is
// safe for concurrent use.
type Renderer struct {
	Width, Height vg.Length
	PointRadius   vg.Length
	Colors        int // Palette size.
}

// NewRenderer returns a renderer with a 10x6 inch canvas.
func NewRenderer() *Renderer {
	return &Renderer{
		Width:       10 * vg.Inch,
		Height:      6 * vg.Inch,
		PointRadius: vg.Points(1),
		Colors:      256,
	}
}

// Render draws p and saves it to p.Path, creating the parent directory.
func (r *Renderer) Render(p *Plot) error {
	pl := plot.New()
	pl.Title.Text = p.Title

	var err error
	switch p.Kind {
	case Scatter:
		err = r.scatter(pl, p)
	case Mesh:
		err = r.mesh(pl, p)
	case ImageSpace:
		err = r.imageSpace(pl, p)
	default:
		err = fmt.Errorf("unknown plot kind %v", p.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to draw %s: %w", filepath.Base(p.Path), err)
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := pl.Save(r.Width, r.Height, p.Path); err != nil {
		return fmt.Errorf("failed to save %s: %w", p.Path, err)
	}
	return nil
}

func (r *Renderer) scatter(pl *plot.Plot, p *Plot) error {
	n := len(p.Values)
	if n == 0 || len(p.Lon) < n || len(p.Lat) < n {
		return ErrNothingToDraw
	}

	lo, hi := valueRange(p.Values)
	cmap := moreland.ExtendedBlackBody()
	cmap.SetMin(lo)
	cmap.SetMax(hi)

	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i].X = p.Lon[i]
		xys[i].Y = p.Lat[i]
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  colorAt(cmap, p.Values[i]),
			Radius: r.PointRadius,
			Shape:  draw.CircleGlyph{},
		}
	}
	pl.Add(s)
	geographicAxes(pl, p.Label, lo, hi)
	return nil
}

func (r *Renderer) mesh(pl *plot.Plot, p *Plot) error {
	if p.Field == nil {
		return ErrNothingToDraw
	}
	if err := p.Field.Validate(); err != nil {
		return err
	}
	g := fieldGrid{p.Field}
	r.heatMap(pl, g)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range p.Field.Values {
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}
	geographicAxes(pl, p.Label, lo, hi)
	return nil
}

func (r *Renderer) imageSpace(pl *plot.Plot, p *Plot) error {
	if p.Rows < 1 || p.Cols < 1 || len(p.Image) < p.Rows*p.Cols {
		return ErrNothingToDraw
	}
	g := imageGrid{rows: p.Rows, cols: p.Cols, data: p.Image}
	r.heatMap(pl, g)

	lo, hi := valueRange(p.Image[:p.Rows*p.Cols])
	pl.X.Label.Text = rangeLabel(p.Label+", column", lo, hi)
	pl.Y.Label.Text = "row"
	return nil
}

// heatMap adds a rasterized heat map of g. A constant field gets a unit range
// so every cell maps onto the palette.
func (r *Renderer) heatMap(pl *plot.Plot, g plotter.GridXYZ) {
	h := plotter.NewHeatMap(g, r.palette())
	if !(h.Max > h.Min) {
		h.Max = h.Min + 1
	}
	h.Rasterized = true
	pl.Add(h)
}

func (r *Renderer) palette() palette.Palette {
	return moreland.ExtendedBlackBody().Palette(r.Colors)
}

func geographicAxes(pl *plot.Plot, label string, lo, hi float64) {
	pl.X.Min, pl.X.Max = -180, 180
	pl.Y.Min, pl.Y.Max = -90, 90
	pl.X.Label.Text = rangeLabel("longitude, "+label, lo, hi)
	pl.Y.Label.Text = "latitude"
	pl.Add(plotter.NewGrid())
}

func rangeLabel(label string, lo, hi float64) string {
	return fmt.Sprintf("%s [%.4g, %.4g]", label, lo, hi)
}

// valueRange returns the min and max of values, widened to a unit range when
// they are equal.
func valueRange(values []float64) (float64, float64) {
	lo, hi := floats.Min(values), floats.Max(values)
	if !(hi > lo) {
		hi = lo + 1
	}
	return lo, hi
}

func colorAt(cmap palette.ColorMap, v float64) color.Color {
	v = math.Max(cmap.Min(), math.Min(cmap.Max(), v))
	c, err := cmap.At(v)
	if err != nil {
		return color.Black
	}
	return c
}

// fieldGrid adapts a resampled field to plotter.GridXYZ.
type fieldGrid struct{ f *interp.Grid2D }

func (g fieldGrid) Dims() (int, int) { return g.f.Dims() }
func (g fieldGrid) Z(c, r int) float64 { return g.f.Values[r][c] }
func (g fieldGrid) X(c int) float64 { return g.f.X[c] }
func (g fieldGrid) Y(r int) float64 { return g.f.Y[r] }

// imageGrid adapts a row-major block to plotter.GridXYZ using array indices as coordinates.
type imageGrid struct {
	rows, cols int
	data       []float64
}

func (g imageGrid) Dims() (int, int) { return g.cols, g.rows }
func (g imageGrid) Z(c, r int) float64 { return g.data[r*g.cols+c] }
func (g imageGrid) X(c int) float64 { return float64(c) }
func (g imageGrid) Y(r int) float64 { return float64(r) }
