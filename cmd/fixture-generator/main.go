// Package main writes synthetic coupler output for trying fluxplot end to end.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/fhs/go-netcdf/netcdf"
)

// grid is one coordinate set written to grids.nc.
type grid struct {
	Prefix string // A096, feom, RnfA.
	Dims   []string
	Shape  []int
	Lon    []float64
	Lat    []float64
}

// flux is one data file.
type flux struct {
	File     string
	Variable string
	Grid     *grid
	Points   int // Overrides the grid size to produce an incompatible file.
	Field    func(lon, lat, t float64) float64
}

func main() {
	// Command line flags
	baseDir := flag.String("out", "./fixtures", "Base directory; files go to <out>/data/<folder>")
	nodes := flag.Int("nodes", 4000, "Number of ocean mesh nodes")
	nLon := flag.Int("atm-lon", 96, "Atmosphere grid longitude count")
	nLat := flag.Int("atm-lat", 48, "Atmosphere grid latitude count")
	times := flag.Int("times", 3, "Number of time steps per file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	atm := atmosphereGrid(*nLon, *nLat)
	ocean := oceanMesh(*nodes)
	runoff := runoffGrid()

	for i, folder := range []string{"flux_33", "flux_34"} {
		dir := filepath.Join(*baseDir, "data", folder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}

		if err := writeGrids(filepath.Join(dir, "grids.nc"), atm, ocean, runoff); err != nil {
			logger.Error("failed to write grids", "folder", folder, "error", err)
			os.Exit(1)
		}

		// flux_34 is a slightly perturbed run.
		scale := 1 + 0.1*float64(i)
		files := []flux{
			{File: "A_Qns_oce.nc", Variable: "A_Qns_oce", Grid: atm, Field: func(lon, lat, t float64) float64 {
				return scale * 150 * math.Cos(rad(lat)) * (1 + 0.2*math.Sin(rad(lon)+0.3*t))
			}},
			{File: "A_Qs_all.nc", Variable: "A_Qs_all", Grid: atm, Field: func(lon, lat, t float64) float64 {
				return scale * 300 * math.Max(0, math.Cos(rad(lat))*math.Cos(rad(lon)-0.26*t))
			}},
			{File: "O_SSTSST.nc", Variable: "O_SSTSST", Grid: ocean, Field: func(lon, lat, t float64) float64 {
				return 273.15 + scale*28*math.Cos(rad(lat)) + 0.5*math.Sin(rad(2*lon)+t)
			}},
			{File: "O_OIceFrc.nc", Variable: "O_OIceFrc", Grid: ocean, Field: func(lon, lat, t float64) float64 {
				return math.Max(0, math.Min(1, scale*(math.Abs(lat)-60)/20))
			}},
			{File: "R_Runoff_oce.nc", Variable: "R_Runoff_oce", Grid: runoff, Field: func(lon, lat, t float64) float64 {
				return scale * (1 + math.Sin(rad(lat)+t)) * 1e-5
			}},
			{File: "O_Broken.nc", Variable: "O_Broken", Grid: ocean, Points: len(ocean.Lon) + 7, Field: func(lon, lat, t float64) float64 {
				return lon
			}},
		}

		for _, f := range files {
			path := filepath.Join(dir, f.File)
			if err := writeFlux(path, f, *times); err != nil {
				logger.Warn("failed to write flux file", "file", path, "error", err)
				continue
			}
			logger.Info("generated", "file", path)
		}

		// Present in real output and never plotted.
		if err := writeDiag(filepath.Join(dir, "fesom.mesh.diag.nc")); err != nil {
			logger.Warn("failed to write mesh diagnostics", "folder", folder, "error", err)
		}
	}

	logger.Info("generation complete",
		"base_dir", *baseDir,
		"atmosphere", fmt.Sprintf("%dx%d", *nLat, *nLon),
		"ocean_nodes", *nodes,
		"runoff_points", len(runoff.Lon),
	)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// atmosphereGrid returns a regular 2D grid with longitudes in [0, 360).
func atmosphereGrid(nLon, nLat int) *grid {
	g := &grid{Prefix: "A096", Dims: []string{"y_A096", "x_A096"}, Shape: []int{nLat, nLon}}
	for j := 0; j < nLat; j++ {
		lat := -90 + (float64(j)+0.5)*180/float64(nLat)
		for i := 0; i < nLon; i++ {
			g.Lon = append(g.Lon, float64(i)*360/float64(nLon))
			g.Lat = append(g.Lat, lat)
		}
	}
	return g
}

// oceanMesh returns n quasi-uniform points on the sphere (Fibonacci lattice).
func oceanMesh(n int) *grid {
	g := &grid{Prefix: "feom", Dims: []string{"nod2"}, Shape: []int{n}}
	golden := math.Pi * (3 - math.Sqrt(5))
	for k := 0; k < n; k++ {
		z := 1 - (2*float64(k)+1)/float64(n)
		lon := math.Mod(float64(k)*golden*180/math.Pi, 360)
		g.Lon = append(g.Lon, lon)
		g.Lat = append(g.Lat, math.Asin(z)*180/math.Pi)
	}
	return g
}

// runoffGrid returns a coarse coastal point set.
func runoffGrid() *grid {
	g := &grid{Prefix: "RnfA", Dims: []string{"x_RnfA"}}
	for lat := -60.0; lat <= 70; lat += 10 {
		for _, lon := range []float64{-75, 10, 140} {
			g.Lon = append(g.Lon, lon+lat/10)
			g.Lat = append(g.Lat, lat)
		}
	}
	g.Shape = []int{len(g.Lon)}
	return g
}

// writeGrids writes all coordinate sets as <prefix>.lon/<prefix>.lat.
func writeGrids(path string, grids ...*grid) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	type pending struct {
		v    netcdf.Var
		data []float64
	}
	var writes []pending
	for _, g := range grids {
		dims := make([]netcdf.Dim, len(g.Dims))
		for i, name := range g.Dims {
			if dims[i], err = ds.AddDim(name, uint64(g.Shape[i])); err != nil {
				return err
			}
		}
		lon, err := ds.AddVar(g.Prefix+".lon", netcdf.DOUBLE, dims)
		if err != nil {
			return err
		}
		lat, err := ds.AddVar(g.Prefix+".lat", netcdf.DOUBLE, dims)
		if err != nil {
			return err
		}
		writes = append(writes, pending{lon, g.Lon}, pending{lat, g.Lat})
	}
	if err := ds.EndDef(); err != nil {
		return err
	}
	for _, w := range writes {
		if err := w.v.WriteFloat64s(w.data); err != nil {
			return err
		}
	}
	return nil
}

// writeFlux writes a time x <grid dims> float variable with a _FillValue.
func writeFlux(path string, f flux, times int) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	timeDim, err := ds.AddDim("time", uint64(times))
	if err != nil {
		return err
	}
	dims := []netcdf.Dim{timeDim}
	n := len(f.Grid.Lon)
	if f.Points > 0 {
		n = f.Points
		d, err := ds.AddDim("nod2", uint64(n))
		if err != nil {
			return err
		}
		dims = append(dims, d)
	} else {
		for i, name := range f.Grid.Dims {
			d, err := ds.AddDim(name, uint64(f.Grid.Shape[i]))
			if err != nil {
				return err
			}
			dims = append(dims, d)
		}
	}

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return err
	}
	dataVar, err := ds.AddVar(f.Variable, netcdf.FLOAT, dims)
	if err != nil {
		return err
	}
	if err := dataVar.Attr("_FillValue").WriteFloat32s([]float32{1e20}); err != nil {
		return err
	}
	if err := ds.EndDef(); err != nil {
		return err
	}

	t := make([]float64, times)
	data := make([]float32, 0, times*n)
	for s := 0; s < times; s++ {
		t[s] = float64(s) * 3600
		for i := 0; i < n; i++ {
			k := i % len(f.Grid.Lon)
			data = append(data, float32(f.Field(f.Grid.Lon[k], f.Grid.Lat[k], float64(s))))
		}
	}
	// One missing value per step, read back as NaN.
	for s := 0; s < times; s++ {
		data[s*n] = 1e20
	}

	if err := timeVar.WriteFloat64s(t); err != nil {
		return err
	}
	return dataVar.WriteFloat32s(data)
}

// writeDiag writes a small mesh diagnostics file.
func writeDiag(path string) error {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	d, err := ds.AddDim("nod2", 3)
	if err != nil {
		return err
	}
	v, err := ds.AddVar("nod_area", netcdf.DOUBLE, []netcdf.Dim{d})
	if err != nil {
		return err
	}
	if err := ds.EndDef(); err != nil {
		return err
	}
	return v.WriteFloat64s([]float64{1, 1, 1})
}
