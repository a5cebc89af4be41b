package usecase

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.ngs.io/fluxplot/internal/adapter/interp"
	"go.ngs.io/fluxplot/internal/domain"
)

// ErrOutOfMesh means a probe location lies outside the target mesh.
var ErrOutOfMesh = errors.New("location outside mesh")

// ProbeRequest selects one data file and a location to sample.
type ProbeRequest struct {
	Dir        string
	File       string
	Lat, Lon   float64
	Resolution float64 // 0 uses the pipeline resolution.
	Timestep   int
}

// ProbeResult is the resampled value at one location.
type ProbeResult struct {
	Folder     string  `json:"folder"`
	File       string  `json:"file"`
	Variable   string  `json:"variable"`
	Grid       string  `json:"grid"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Resolution float64 `json:"resolution"`
	TimeIndex  int     `json:"time_index"`
	Points     int     `json:"points"`
	Value      float64 `json:"value"`
}

// Probe resamples one data file onto the mesh and samples it bilinearly at
// the requested location. Longitudes in [0, 360) are accepted.
func (p *Pipeline) Probe(req ProbeRequest) (*ProbeResult, error) {
	res := req.Resolution
	if res == 0 {
		res = p.cfg.Resolution
	}
	mesh := p.mesh
	if mesh == nil || mesh.Step != res {
		var err error
		if mesh, err = interp.NewMesh(res); err != nil {
			return nil, err
		}
	}

	grids, err := p.open(filepath.Join(req.Dir, p.cfg.GridFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open grid file: %w", err)
	}
	defer grids.Close()

	kind := domain.Classify(req.File)
	set, err := ResolveCoordinates(grids, kind)
	if err != nil {
		return nil, err
	}

	ds, err := p.open(filepath.Join(req.Dir, req.File))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrReadFailure, err)
	}
	ext, err := Extract(ds, req.Timestep)
	ds.Close()
	if err != nil {
		return nil, err
	}

	rc, err := Reconcile(set, ext.Slice)
	if err != nil {
		return nil, err
	}
	lon, lat, data := FilterFinite(rc.Lon, rc.Lat, rc.Data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyData, ext.Variable)
	}

	field := interp.Resample(lon, lat, data, mesh, p.cfg.Fill)
	x := NormalizeLongitudes([]float64{req.Lon})[0]
	v, err := field.InterpolateAt(x, req.Lat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMesh, err)
	}

	return &ProbeResult{
		Folder:     filepath.Base(req.Dir),
		File:       req.File,
		Variable:   ext.Variable,
		Grid:       kind.String(),
		Lat:        req.Lat,
		Lon:        x,
		Resolution: res,
		TimeIndex:  ext.TimeIndex,
		Points:     len(data),
		Value:      v,
	}, nil
}
