package usecase

import (
	"errors"
	"testing"

	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

func TestDiscoverGridPrefix(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
		err   bool
	}{
		{"single", []string{"A128.lon", "A128.lat", "feom.lon"}, "A128", false},
		{"lexicographic", []string{"A512.lon", "A512.lat", "A128.lon", "A128.lat"}, "A128", false},
		{"lat missing", []string{"A128.lon", "A256.lat"}, "", true},
		{"wrong marker", []string{"B096.lon", "B096.lat"}, "", true},
		{"empty", nil, "", true},
	}

	for _, tt := range tests {
		got, err := DiscoverGridPrefix(tt.names, "A")
		if tt.err {
			if !errors.Is(err, domain.ErrGridVariableNotFound) {
				t.Errorf("%s: error = %v, want ErrGridVariableNotFound", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: DiscoverGridPrefix = %q, %v, want %q", tt.name, got, err, tt.want)
		}
	}
}

func TestResolveCoordinates(t *testing.T) {
	grids := gridsDataset(t, 5)

	tests := []struct {
		kind domain.GridKind
		n    int
	}{
		{domain.Atmosphere, 4}, // 2x2, flattened row-major.
		{domain.OceanMesh, 5},
		{domain.Runoff, 3},
	}
	for _, tt := range tests {
		set, err := ResolveCoordinates(grids, tt.kind)
		if err != nil {
			t.Fatalf("ResolveCoordinates(%v): %v", tt.kind, err)
		}
		if set.Kind != tt.kind || set.Len() != tt.n {
			t.Errorf("ResolveCoordinates(%v) = %v with %d points, want %d", tt.kind, set.Kind, set.Len(), tt.n)
		}
	}
}

func TestResolveCoordinates_DiscoversAtmospherePrefix(t *testing.T) {
	grids := store.NewMemDataset(
		mustArray(t, "A256.lon", []string{"x"}, []int{2}, []float64{1, 2}),
		mustArray(t, "A256.lat", []string{"x"}, []int{2}, []float64{3, 4}),
		mustArray(t, "A128.lon", []string{"y"}, []int{3}, []float64{5, 6, 7}),
		mustArray(t, "A128.lat", []string{"y"}, []int{3}, []float64{8, 9, 10}),
	)
	set, err := ResolveCoordinates(grids, domain.Atmosphere)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 || set.Lon[0] != 5 {
		t.Errorf("expected the A128 grid, got lon %v", set.Lon)
	}
}

func TestResolveCoordinates_Missing(t *testing.T) {
	grids := store.NewMemDataset(
		mustArray(t, "feom.lon", []string{"nod2"}, []int{1}, []float64{0}),
		mustArray(t, "feom.lat", []string{"nod2"}, []int{1}, []float64{0}),
	)
	for _, kind := range []domain.GridKind{domain.Atmosphere, domain.Runoff} {
		if _, err := ResolveCoordinates(grids, kind); !errors.Is(err, domain.ErrGridVariableNotFound) {
			t.Errorf("ResolveCoordinates(%v) error = %v, want ErrGridVariableNotFound", kind, err)
		}
	}
}

func TestCoordinateCache(t *testing.T) {
	cache := newCoordinateCache(gridsDataset(t, 4))
	a, err := cache.get(domain.OceanMesh)
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.get(domain.OceanMesh)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second lookup did not reuse the cached set")
	}
}
