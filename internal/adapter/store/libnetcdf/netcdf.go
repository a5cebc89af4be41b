// Package libnetcdf reads coupler output through the C NetCDF library.
package libnetcdf

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

// libMu serializes calls into the C library, which is not thread-safe
// even across distinct files.
var libMu sync.Mutex

// Dataset is a store.Dataset backed by an open NetCDF file.
type Dataset struct {
	nc    netcdf.Dataset
	path  string
	names []string
	dims  map[string]bool
}

// Open opens a NetCDF file read-only and indexes its variables.
// A missing file yields an error matching os.ErrNotExist; the C library
// only reports a bare status code.
func Open(path string) (store.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}

	libMu.Lock()
	defer libMu.Unlock()

	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}

	ds := &Dataset{nc: nc, path: path, dims: make(map[string]bool)}
	if err := ds.index(); err != nil {
		_ = nc.Close()
		return nil, err
	}
	return ds, nil
}

func (d *Dataset) index() error {
	n, err := d.nc.NVars()
	if err != nil {
		return fmt.Errorf("failed to count variables: %w", err)
	}
	d.names = make([]string, 0, n)
	for i := 0; i < n; i++ {
		v := d.nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return fmt.Errorf("failed to get name of variable %d: %w", i, err)
		}
		d.names = append(d.names, name)

		dims, err := v.Dims()
		if err != nil {
			return fmt.Errorf("failed to get dimensions of %s: %w", name, err)
		}
		for _, dim := range dims {
			dn, err := dim.Name()
			if err != nil {
				return fmt.Errorf("failed to get dimension name of %s: %w", name, err)
			}
			d.dims[dn] = true
		}
	}
	return nil
}

// Variables lists variable names in file order.
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

// Variable reads a whole variable as float64.
// _FillValue and missing_value entries are replaced with NaN, then packed
// values are decoded with scale_factor and add_offset.
func (d *Dataset) Variable(name string) (*domain.Array, error) {
	libMu.Lock()
	defer libMu.Unlock()

	v, err := d.nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, store.ErrVariableNotFound)
	}

	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	dimNames := make([]string, len(dims))
	shape := make([]int, len(dims))
	total := 1
	for i, dim := range dims {
		if dimNames[i], err = dim.Name(); err != nil {
			return nil, fmt.Errorf("failed to get dim%d name: %w", i, err)
		}
		n, err := dim.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dim%d length: %w", i, err)
		}
		shape[i] = int(n)
		total *= int(n)
	}

	data, err := readFloat64s(v, total)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if fv, ok := getFillValue(v); ok {
		for i := range data {
			if data[i] == fv {
				data[i] = math.NaN()
			}
		}
	}
	scale, ok := attrFloat64(v, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attrFloat64(v, "add_offset")
	store.Unpack(data, scale, offset)

	return domain.NewArray(name, dimNames, shape, data)
}

// Close closes the file.
func (d *Dataset) Close() error {
	libMu.Lock()
	defer libMu.Unlock()
	return d.nc.Close()
}

// readFloat64s reads all values of a variable of any supported numeric type.
func readFloat64s(v netcdf.Var, total int) ([]float64, error) {
	if total == 0 {
		return []float64{}, nil
	}
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}

	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT64:
		tmp := make([]int64, total)
		if err := v.ReadInt64s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

// getFillValue returns _FillValue, or missing_value when there is none.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		if fv, ok := attrFloat64(v, name); ok {
			return fv, true
		}
	}
	return 0, false
}

// attrFloat64 reads the first element of a numeric attribute.
func attrFloat64(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	buf64 := make([]float64, n)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], true
	}
	buf32 := make([]float32, n)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), true
	}
	bufi := make([]int32, n)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), true
	}
	bufs := make([]int16, n)
	if err := a.ReadInt16s(bufs); err == nil {
		return float64(bufs[0]), true
	}
	return 0, false
}
