package usecase

import (
	"fmt"
	"math"

	"go.ngs.io/fluxplot/internal/domain"
)

// Reconciled holds plot-ready, equal-length point arrays.
type Reconciled struct {
	Lon  []float64 // Normalized to [-180, 180).
	Lat  []float64
	Data []float64

	Truncated bool // Some trailing coordinates or data were dropped.
}

// Len returns the common point count.
func (r *Reconciled) Len() int { return len(r.Data) }

// NormalizeLongitudes returns a copy of lon with 360 subtracted from values at or
// above 180, so [0, 360) maps onto [-180, 180).
func NormalizeLongitudes(lon []float64) []float64 {
	out := make([]float64, len(lon))
	for i, v := range lon {
		if v >= 180 {
			v -= 360
		}
		out[i] = v
	}
	return out
}

// Truncate cuts lon, lat and data to their common minimum length, keeping the
// first elements of each in order.
func Truncate(lon, lat, data []float64) ([]float64, []float64, []float64) {
	n := len(lon)
	if len(lat) < n {
		n = len(lat)
	}
	if len(data) < n {
		n = len(data)
	}
	return lon[:n], lat[:n], data[:n]
}

// FilterFinite keeps only the points whose data value is finite.
func FilterFinite(lon, lat, data []float64) ([]float64, []float64, []float64) {
	lon, lat, data = Truncate(lon, lat, data)
	if allFinite(data) {
		return lon, lat, data
	}
	ol := make([]float64, 0, len(data))
	oa := make([]float64, 0, len(data))
	od := make([]float64, 0, len(data))
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ol = append(ol, lon[i])
		oa = append(oa, lat[i])
		od = append(od, v)
	}
	return ol, oa, od
}

// Reconcile aligns a coordinate set with a variable slice.
//
// Coordinates and data are flattened and longitudes normalized. Data with
// two or more axes must hold exactly one value per coordinate point. A 1D
// point cloud shorter than the coordinate set is truncated with it; a longer
// one belongs to another grid and is reported as ErrIncompatibleShapes.
// Mismatched lon/lat lengths are always truncated to the shorter one.
func Reconcile(coords *domain.CoordinateSet, slice *domain.Array) (*Reconciled, error) {
	n := coords.Len()
	size := slice.Len()

	switch {
	case slice.NDim() >= 2 && size != n:
		return nil, fmt.Errorf("%w: %s shape %v holds %d values for %d %s points",
			domain.ErrIncompatibleShapes, slice.Name, slice.Shape, size, n, coords.Kind)
	case size > n:
		return nil, fmt.Errorf("%w: %s has %d values for %d %s points",
			domain.ErrIncompatibleShapes, slice.Name, size, n, coords.Kind)
	}

	lon, lat, data := Truncate(NormalizeLongitudes(coords.Lon), coords.Lat, slice.Data)
	return &Reconciled{
		Lon:       lon,
		Lat:       lat,
		Data:      data,
		Truncated: len(data) != len(coords.Lon) || len(data) != len(coords.Lat) || len(data) != size,
	}, nil
}

// ImageGrid is a 2D layout of raw values in image space, used when data
// cannot be placed at geographic coordinates.
type ImageGrid struct {
	Rows, Cols int
	Data       []float64 // Row-major, padded with 0.
}

// ImageSpaceGrid lays a slice out as a 2D image. 2D slices keep their shape;
// anything else is flattened and wrapped into a near-square block. Both sides
// are at least 2 so the result is always drawable as a heat map.
func ImageSpaceGrid(slice *domain.Array) *ImageGrid {
	var rows, cols int
	if slice.NDim() == 2 {
		rows, cols = slice.Shape[0], slice.Shape[1]
	} else {
		cols = int(math.Ceil(math.Sqrt(float64(slice.Len()))))
		if cols > 0 {
			rows = (slice.Len() + cols - 1) / cols
		}
	}
	if rows < 2 {
		rows = 2
	}
	if cols < 2 {
		cols = 2
	}

	data := make([]float64, rows*cols)
	if slice.NDim() == 2 {
		for r := 0; r < slice.Shape[0]; r++ {
			copy(data[r*cols:], slice.Data[r*slice.Shape[1]:(r+1)*slice.Shape[1]])
		}
	} else {
		copy(data, slice.Data)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data[i] = 0
		}
	}
	return &ImageGrid{Rows: rows, Cols: cols, Data: data}
}

func allFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
