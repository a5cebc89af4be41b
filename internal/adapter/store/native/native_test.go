package native

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
)

// createGridsNC writes a classic-format grids file with a 2D atmosphere grid.
func createGridsNC(t *testing.T, path string) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer f.Close()

	yDim, _ := f.AddDim("y_A096", 2)
	xDim, _ := f.AddDim("x_A096", 3)
	vlon, _ := f.AddVar("A096.lon", netcdf.DOUBLE, []netcdf.Dim{yDim, xDim})
	vlat, _ := f.AddVar("A096.lat", netcdf.DOUBLE, []netcdf.Dim{yDim, xDim})
	vmsk, _ := f.AddVar("A096.msk", netcdf.INT, []netcdf.Dim{yDim, xDim})
	if err := vmsk.Attr("missing_value").WriteInt32s([]int32{-1}); err != nil {
		t.Fatalf("write missing_value: %v", err)
	}

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := vlon.WriteFloat64s([]float64{0, 120, 240, 0, 120, 240}); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := vlat.WriteFloat64s([]float64{-45, -45, -45, 45, 45, 45}); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vmsk.WriteInt32s([]int32{0, 1, -1, 1, 0, 1}); err != nil {
		t.Fatalf("write msk: %v", err)
	}
}

func TestOpen_ReadsNestedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grids.nc")
	createGridsNC(t, path)

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	dims := ds.DimensionNames()
	if !dims["y_A096"] || !dims["x_A096"] {
		t.Errorf("DimensionNames() = %v", dims)
	}

	lon, err := ds.Variable("A096.lon")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	if !reflect.DeepEqual(lon.Shape, []int{2, 3}) {
		t.Fatalf("shape = %v", lon.Shape)
	}
	if !reflect.DeepEqual(lon.Data, []float64{0, 120, 240, 0, 120, 240}) {
		t.Errorf("data = %v", lon.Data)
	}

	msk, err := ds.Variable("A096.msk")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	if !math.IsNaN(msk.Data[2]) || msk.Data[1] != 1 {
		t.Errorf("msk = %v", msk.Data)
	}
}

func TestFlatten(t *testing.T) {
	data, shape, err := flatten([][]float32{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(shape, []int{3, 2}) || !reflect.DeepEqual(data, []float64{1, 2, 3, 4, 5, 6}) {
		t.Errorf("flatten = %v %v", data, shape)
	}

	data, shape, err = flatten(int16(7))
	if err != nil || len(shape) != 0 || data[0] != 7 {
		t.Errorf("scalar flatten = %v %v %v", data, shape, err)
	}

	if _, _, err := flatten([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("expected ragged error")
	}
	if _, _, err := flatten("abc"); err == nil {
		t.Error("expected unsupported type error")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.nc")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open error = %v, want os.ErrNotExist", err)
	}
}

func TestVariable_UnpacksScaledShorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A_Qns_oce.nc")
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	dim, _ := f.AddDim("nod2", 3)
	v, _ := f.AddVar("A_Qns_oce", netcdf.SHORT, []netcdf.Dim{dim})
	if err := v.Attr("_FillValue").WriteInt16s([]int16{-32767}); err != nil {
		t.Fatalf("write fill: %v", err)
	}
	if err := v.Attr("scale_factor").WriteFloat64s([]float64{0.25}); err != nil {
		t.Fatalf("write scale: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}
	if err := v.WriteInt16s([]int16{4, -32767, -8}); err != nil {
		t.Fatalf("write data: %v", err)
	}
	f.Close()

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	got, err := ds.Variable("A_Qns_oce")
	if err != nil {
		t.Fatalf("Variable: %v", err)
	}
	if got.Data[0] != 1 || !math.IsNaN(got.Data[1]) || got.Data[2] != -2 {
		t.Errorf("data = %v, want [1 NaN -2]", got.Data)
	}
}
