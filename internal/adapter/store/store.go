package store

import (
	"errors"

	"go.ngs.io/fluxplot/internal/domain"
)

// ErrVariableNotFound is returned by Dataset.Variable for unknown names.
var ErrVariableNotFound = errors.New("variable not found")

// Dataset is a read-only view of one NetCDF file.
type Dataset interface {
	// Variables lists variable names in file order.
	Variables() []string

	// Variable reads a whole variable as float64, with fill values replaced by
	// NaN and packed values decoded with scale_factor and add_offset.
	Variable(name string) (*domain.Array, error)

	// DimensionNames returns the set of dimension names used in the file.
	DimensionNames() map[string]bool

	// Close releases the underlying file.
	Close() error
}

// Opener opens a dataset by path.
type Opener func(path string) (Dataset, error)

// Unpack decodes packed values in place as data*scale + offset.
// NaN entries stay NaN. A scale of 1 and offset of 0 leave data untouched.
func Unpack(data []float64, scale, offset float64) {
	if scale == 1 && offset == 0 {
		return
	}
	for i := range data {
		data[i] = data[i]*scale + offset
	}
}
