// Package native reads coupler output with a pure Go NetCDF decoder (CDF and HDF5).
// Reads need no global lock, so parallel runs are not serialized.
package native

import (
	"fmt"
	"math"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

// Dataset is a store.Dataset backed by a native NetCDF group.
type Dataset struct {
	nc    api.Group
	names []string
	dims  map[string]bool
}

// Open opens a CDF or HDF5 NetCDF file.
func Open(path string) (store.Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}

	ds := &Dataset{nc: nc, names: nc.ListVariables(), dims: make(map[string]bool)}
	for _, name := range ds.names {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to inspect %s: %w", name, err)
		}
		for _, d := range vg.Dimensions() {
			ds.dims[d] = true
		}
	}
	return ds, nil
}

// Variables lists variable names as reported by the file.
func (d *Dataset) Variables() []string {
	return append([]string(nil), d.names...)
}

// DimensionNames returns the dimension names used by any variable.
func (d *Dataset) DimensionNames() map[string]bool {
	out := make(map[string]bool, len(d.dims))
	for k := range d.dims {
		out[k] = true
	}
	return out
}

// Variable reads a whole variable as float64; fill values become NaN and
// packed values are unpacked.
func (d *Dataset) Variable(name string) (*domain.Array, error) {
	v, err := d.nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, store.ErrVariableNotFound)
	}

	data, shape, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(shape) != len(v.Dimensions) {
		// Zero-length axes hide the shape of inner dimensions.
		if len(data) != 0 {
			return nil, fmt.Errorf("%s has %d dimensions but %d-deep values", name, len(v.Dimensions), len(shape))
		}
		shape = make([]int, len(v.Dimensions))
	}

	if fv, ok := attr(v, "_FillValue", "missing_value"); ok {
		for i := range data {
			if data[i] == fv {
				data[i] = math.NaN()
			}
		}
	}
	scale, ok := attr(v, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attr(v, "add_offset")
	store.Unpack(data, scale, offset)

	return domain.NewArray(name, append([]string(nil), v.Dimensions...), shape, data)
}

// Close closes the file.
func (d *Dataset) Close() error {
	d.nc.Close()
	return nil
}

// attr returns the first of keys present as a numeric attribute of v.
func attr(v *api.Variable, keys ...string) (float64, bool) {
	if v.Attributes == nil {
		return 0, false
	}
	for _, key := range keys {
		raw, ok := v.Attributes.Get(key)
		if !ok {
			continue
		}
		if x, ok := scalar(raw); ok {
			return x, true
		}
	}
	return 0, false
}

// flatten converts nested numeric slices into row-major data plus shape.
func flatten(values interface{}) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	if !rv.IsValid() {
		return nil, nil, fmt.Errorf("variable has no values")
	}

	var shape []int
	for t := rv; t.Kind() == reflect.Slice; t = t.Index(0) {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
	}

	var data []float64
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		if v.Kind() == reflect.Slice {
			if depth >= len(shape) || v.Len() != shape[depth] {
				return fmt.Errorf("ragged values at depth %d", depth)
			}
			for i := 0; i < v.Len(); i++ {
				if err := walk(v.Index(i), depth+1); err != nil {
					return err
				}
			}
			return nil
		}
		x, ok := scalar(v.Interface())
		if !ok {
			return fmt.Errorf("unsupported value type %s", v.Type())
		}
		data = append(data, x)
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	if data == nil {
		data = []float64{}
	}
	return data, shape, nil
}

// scalar converts a numeric value (or a one-element numeric slice) to float64.
func scalar(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Slice:
		if rv.Len() == 1 {
			return scalar(rv.Index(0).Interface())
		}
	}
	return 0, false
}
