package interp

import (
	"fmt"
	"math"

	"go.ngs.io/fluxplot/internal/domain"
)

// Mesh is a regular latitude-longitude target mesh spanning
// longitude [-180, 180) and latitude [-90, 90) at a fixed step.
// It is immutable once built and may be shared between goroutines.
type Mesh struct {
	Step float64
	Lon  []float64 // Column coordinates.
	Lat  []float64 // Row coordinates.
}

const (
	// MinStep bounds a mesh to 7200x3600 nodes (about 200 MiB of float64).
	MinStep = 0.05
	// MaxStep is the coarsest step that still yields two latitude rows.
	MaxStep = 90.0
)

// NewMesh builds the target mesh for a step in degrees.
func NewMesh(step float64) (*Mesh, error) {
	if !(step >= MinStep && step <= MaxStep) {
		return nil, fmt.Errorf("%w: step %v must be in [%v, %v]", domain.ErrInvalidResolution, step, MinStep, MaxStep)
	}
	return &Mesh{
		Step: step,
		Lon:  arange(-180, 180, step),
		Lat:  arange(-90, 90, step),
	}, nil
}

// Rows returns the number of latitude rows.
func (m *Mesh) Rows() int { return len(m.Lat) }

// Cols returns the number of longitude columns.
func (m *Mesh) Cols() int { return len(m.Lon) }

// colRange returns the inclusive column index range covering [lo, hi].
func (m *Mesh) colRange(lo, hi float64) (int, int) {
	return axisRange(m.Lon[0], m.Step, len(m.Lon), lo, hi)
}

// rowRange returns the inclusive row index range covering [lo, hi].
func (m *Mesh) rowRange(lo, hi float64) (int, int) {
	return axisRange(m.Lat[0], m.Step, len(m.Lat), lo, hi)
}

func axisRange(start, step float64, n int, lo, hi float64) (int, int) {
	i0 := int(math.Ceil((lo-start)/step - 1e-9))
	i1 := int(math.Floor((hi-start)/step + 1e-9))
	if i0 < 0 {
		i0 = 0
	}
	if i1 > n-1 {
		i1 = n - 1
	}
	return i0, i1
}

// arange mirrors numpy.arange: start + i*step for every value below stop.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}
