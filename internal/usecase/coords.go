package usecase

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

// atmosphereMarker is the first letter of every atmosphere grid prefix (A096, A128, ...).
const atmosphereMarker = "A"

// DiscoverGridPrefix finds grid prefixes (the part before ".lon"/".lat") that
// start with marker and have both coordinate variables, and returns the
// lexicographically first one.
func DiscoverGridPrefix(names []string, marker string) (string, error) {
	lons := make(map[string]bool)
	lats := make(map[string]bool)
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, domain.LonSuffix):
			lons[strings.TrimSuffix(name, domain.LonSuffix)] = true
		case strings.HasSuffix(name, domain.LatSuffix):
			lats[strings.TrimSuffix(name, domain.LatSuffix)] = true
		}
	}

	var prefixes []string
	for p := range lons {
		if lats[p] && strings.HasPrefix(p, marker) {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return "", fmt.Errorf("%w: no %s*%s/%s*%s pair in grids file",
			domain.ErrGridVariableNotFound, marker, domain.LonSuffix, marker, domain.LatSuffix)
	}
	sort.Strings(prefixes)
	return prefixes[0], nil
}

// ResolveCoordinates reads the coordinate pair for kind from a grids dataset.
// Atmosphere grids fall back to prefix discovery when A096 is absent.
func ResolveCoordinates(ds store.Dataset, kind domain.GridKind) (*domain.CoordinateSet, error) {
	names := ds.Variables()
	lonName, latName := kind.LonVarName(), kind.LatVarName()

	if !contains(names, lonName) || !contains(names, latName) {
		if kind != domain.Atmosphere {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrGridVariableNotFound, lonName, latName)
		}
		prefix, err := DiscoverGridPrefix(names, atmosphereMarker)
		if err != nil {
			return nil, err
		}
		lonName, latName = prefix+domain.LonSuffix, prefix+domain.LatSuffix
	}

	lon, err := ds.Variable(lonName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrGridVariableNotFound, lonName, err)
	}
	lat, err := ds.Variable(latName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrGridVariableNotFound, latName, err)
	}

	// Array data is row-major, so 2D grids are already flattened.
	return &domain.CoordinateSet{Kind: kind, Lon: lon.Data, Lat: lat.Data}, nil
}

// coordinateCache resolves each grid kind once per folder. Cached sets are
// shared read-only by all file tasks.
type coordinateCache struct {
	ds   store.Dataset
	mu   sync.Mutex
	sets map[domain.GridKind]*domain.CoordinateSet
}

func newCoordinateCache(ds store.Dataset) *coordinateCache {
	return &coordinateCache{ds: ds, sets: make(map[domain.GridKind]*domain.CoordinateSet)}
}

func (c *coordinateCache) get(kind domain.GridKind) (*domain.CoordinateSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.sets[kind]; ok {
		return set, nil
	}
	set, err := ResolveCoordinates(c.ds, kind)
	if err != nil {
		return nil, err
	}
	c.sets[kind] = set
	return set, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
