package usecase

import (
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"go.ngs.io/fluxplot/internal/adapter/render"
	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

var nan = math.NaN()

func mustArray(t testing.TB, name string, dims []string, shape []int, data []float64) *domain.Array {
	t.Helper()
	a, err := domain.NewArray(name, dims, shape, data)
	if err != nil {
		t.Fatalf("NewArray(%s): %v", name, err)
	}
	return a
}

// gridsDataset returns a grids file with an n-point ocean mesh, a 2x2
// atmosphere grid and a 3-point runoff grid.
func gridsDataset(t testing.TB, n int) *store.MemDataset {
	t.Helper()
	lon := make([]float64, n)
	lat := make([]float64, n)
	for i := range lon {
		lon[i] = float64(i*37%360) - 10
		lat[i] = float64(i*i*13%160) - 80
	}
	return store.NewMemDataset(
		mustArray(t, "A096.lon", []string{"y_A096", "x_A096"}, []int{2, 2}, []float64{0, 90, 0, 90}),
		mustArray(t, "A096.lat", []string{"y_A096", "x_A096"}, []int{2, 2}, []float64{-45, -45, 45, 45}),
		mustArray(t, "feom.lon", []string{"nod2"}, []int{n}, lon),
		mustArray(t, "feom.lat", []string{"nod2"}, []int{n}, lat),
		mustArray(t, "RnfA.lon", []string{"x_RnfA"}, []int{3}, []float64{10, 20, 30}),
		mustArray(t, "RnfA.lat", []string{"x_RnfA"}, []int{3}, []float64{0, 10, 0}),
	)
}

// fluxDataset returns a data file whose variable has a 2-step time axis;
// step 0 holds zeros and step 1 holds data.
func fluxDataset(t testing.TB, variable string, data []float64) *store.MemDataset {
	t.Helper()
	n := len(data)
	values := make([]float64, 2*n)
	copy(values[n:], data)
	times := []float64{0, 3600}
	return store.NewMemDataset(
		mustArray(t, domain.TimeDim, []string{domain.TimeDim}, []int{2}, times),
		mustArray(t, variable, []string{domain.TimeDim, "nod2"}, []int{2, n}, values),
	)
}

// fakeRenderer records plot requests without drawing them.
type fakeRenderer struct {
	mu    sync.Mutex
	plots []render.Plot
	fail  map[string]bool // Base names whose rendering fails.
}

func (f *fakeRenderer) Render(p *render.Plot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[filepath.Base(p.Path)] {
		return errRenderFailed
	}
	f.plots = append(f.plots, *p)
	return nil
}

func (f *fakeRenderer) byName() map[string]render.Plot {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]render.Plot, len(f.plots))
	for _, p := range f.plots {
		out[filepath.Base(p.Path)] = p
	}
	return out
}

var errRenderFailed = errors.New("render failed")
