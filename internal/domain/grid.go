package domain

import (
	"path/filepath"
	"strings"
)

// GridKind identifies the native grid of a coupled model component.
type GridKind int

const (
	// Atmosphere is the reduced Gaussian atmosphere grid (e.g., A096).
	Atmosphere GridKind = iota
	// OceanMesh is the unstructured ocean mesh (FESOM).
	OceanMesh
	// Runoff is the runoff mapper grid.
	Runoff
)

// String returns the grid kind name.
func (k GridKind) String() string {
	switch k {
	case Atmosphere:
		return "atmosphere"
	case OceanMesh:
		return "ocean-mesh"
	case Runoff:
		return "runoff"
	default:
		return "unknown"
	}
}

// GridPrefix returns the OASIS grid prefix holding the coordinates for this kind.
func (k GridKind) GridPrefix() string {
	switch k {
	case Atmosphere:
		return "A096"
	case Runoff:
		return "RnfA"
	default:
		return "feom"
	}
}

// Coordinate variable suffixes in OASIS grids files.
const (
	LonSuffix = ".lon"
	LatSuffix = ".lat"
)

// LonVarName returns the longitude variable name for this kind (e.g., "A096.lon").
func (k GridKind) LonVarName() string { return k.GridPrefix() + LonSuffix }

// LatVarName returns the latitude variable name for this kind (e.g., "A096.lat").
func (k GridKind) LatVarName() string { return k.GridPrefix() + LatSuffix }

// MatchMode selects how a ClassificationRule pattern is compared to a file name.
type MatchMode int

const (
	// MatchToken matches a case-insensitive name token ("_", ".", "-" separated).
	MatchToken MatchMode = iota
	// MatchPrefix matches a case-sensitive prefix of the base name.
	MatchPrefix
)

// ClassificationRule maps a file name pattern to a grid kind.
type ClassificationRule struct {
	Pattern string
	Match   MatchMode
	Kind    GridKind
}

// Matches reports whether the rule applies to the given base name.
func (r ClassificationRule) Matches(base string) bool {
	switch r.Match {
	case MatchPrefix:
		return strings.HasPrefix(base, r.Pattern)
	default:
		for _, tok := range nameTokens(base) {
			if tok == strings.ToLower(r.Pattern) {
				return true
			}
		}
		return false
	}
}

// DefaultGridKind is used when no classification rule matches.
const DefaultGridKind = OceanMesh

// classificationRules is evaluated in order; the first match wins.
var classificationRules = []ClassificationRule{
	{Pattern: "feom", Match: MatchToken, Kind: OceanMesh},
	{Pattern: "fesom", Match: MatchToken, Kind: OceanMesh},
	{Pattern: "ocean", Match: MatchToken, Kind: OceanMesh},
	{Pattern: "mesh", Match: MatchToken, Kind: OceanMesh},
	{Pattern: "a096", Match: MatchToken, Kind: Atmosphere},
	{Pattern: "atmos", Match: MatchToken, Kind: Atmosphere},
	{Pattern: "ice", Match: MatchToken, Kind: Atmosphere},
	{Pattern: "rnfa", Match: MatchToken, Kind: Runoff},
	{Pattern: "runoff", Match: MatchToken, Kind: Runoff},
	{Pattern: "rnf", Match: MatchToken, Kind: Runoff},
	{Pattern: "A_", Match: MatchPrefix, Kind: Atmosphere},
	{Pattern: "R_", Match: MatchPrefix, Kind: Runoff},
}

// ClassificationRules returns a copy of the ordered classification table.
func ClassificationRules() []ClassificationRule {
	rules := make([]ClassificationRule, len(classificationRules))
	copy(rules, classificationRules)
	return rules
}

// Classify maps a file name or path to its native grid kind.
func Classify(fileIdentifier string) GridKind {
	base := filepath.Base(fileIdentifier)
	for _, rule := range classificationRules {
		if rule.Matches(base) {
			return rule.Kind
		}
	}
	return DefaultGridKind
}

func nameTokens(base string) []string {
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.FieldsFunc(strings.ToLower(base), func(r rune) bool {
		return r == '_' || r == '.' || r == '-'
	})
}

// CoordinateSet holds one longitude/latitude pair per native sample point.
type CoordinateSet struct {
	Kind GridKind
	Lon  []float64
	Lat  []float64
}

// Len returns the native point count.
func (c *CoordinateSet) Len() int {
	if len(c.Lon) < len(c.Lat) {
		return len(c.Lon)
	}
	return len(c.Lat)
}
