package usecase

import (
	"fmt"

	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

// Extraction is one variable at one timestep, ready for reconciliation.
type Extraction struct {
	Variable string
	Slice    *domain.Array

	TimeIndex        int  // Time index actually used, or -1 without a time axis.
	TimestepFallback bool // Requested timestep was out of range; index 0 was used.
	NaNCount         int  // NaN entries replaced with 0.
}

// DataVariable returns the first variable that is neither "time" nor a dimension name.
func DataVariable(ds store.Dataset) (string, error) {
	dims := ds.DimensionNames()
	for _, name := range ds.Variables() {
		if name != domain.TimeDim && !dims[name] {
			return name, nil
		}
	}
	return "", domain.ErrNoDataVariable
}

// Extract reads the data variable of ds at timestep.
//
// A timestep beyond the time axis falls back to index 0. A leftover leading
// axis of length 1 or 2 on a slice of rank > 2 is reduced to its first entry.
// NaN values are replaced with 0.
func Extract(ds store.Dataset, timestep int) (*Extraction, error) {
	name, err := DataVariable(ds)
	if err != nil {
		return nil, err
	}

	arr, err := ds.Variable(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadFailure, err)
	}

	ext := &Extraction{Variable: name, TimeIndex: -1}

	if axis := arr.Axis(domain.TimeDim); axis >= 0 {
		n := arr.Shape[axis]
		if n == 0 {
			return nil, fmt.Errorf("%w: %s has an empty time axis", domain.ErrReadFailure, name)
		}
		idx := timestep
		if idx < 0 || idx >= n {
			idx = 0
			ext.TimestepFallback = true
		}
		if arr, err = arr.Take(axis, idx); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadFailure, err)
		}
		ext.TimeIndex = idx
	}

	if arr.NDim() > 2 && (arr.Shape[0] == 1 || arr.Shape[0] == 2) {
		if arr, err = arr.Take(0, 0); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadFailure, err)
		}
	}

	ext.NaNCount = arr.ReplaceNaN(0)
	ext.Slice = arr
	return ext, nil
}
