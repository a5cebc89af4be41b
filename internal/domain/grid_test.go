package domain

import "testing"

// TestClassify_EveryRule builds a file name for each table entry and checks it maps to the rule's kind.
func TestClassify_EveryRule(t *testing.T) {
	for _, rule := range ClassificationRules() {
		var name string
		switch rule.Match {
		case MatchPrefix:
			name = rule.Pattern + "Qns.nc"
		default:
			name = "X_" + rule.Pattern + "_flux.nc"
		}
		if got := Classify(name); got != rule.Kind {
			t.Errorf("Classify(%q) = %v, want %v (pattern %q)", name, got, rule.Kind, rule.Pattern)
		}
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		want GridKind
	}{
		{"A_Qns_oce.nc", Atmosphere},
		{"R_Runoff_oce.nc", Runoff},
		{"O_SSTSST.nc", OceanMesh},
		{"A_feom_sst.nc", OceanMesh},     // Ocean token beats the A_ prefix.
		{"R_ice_calving.nc", Atmosphere}, // Atmosphere token beats the R_ prefix.
		{"A_runoff.nc", Runoff},          // Runoff token beats the A_ prefix.
		{"/data/flux_33/A_Taux_oce.nc", Atmosphere},
		{"a_lowercase.nc", OceanMesh},
		{"slice_price.nc", OceanMesh}, // Token match, not substring.
		{"", OceanMesh},
	}

	for _, tt := range tests {
		if got := Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassificationRules_Copy(t *testing.T) {
	rules := ClassificationRules()
	rules[0].Kind = Runoff
	if ClassificationRules()[0].Kind == Runoff {
		t.Fatal("ClassificationRules exposed the internal table")
	}
}

func TestGridKind_VarNames(t *testing.T) {
	tests := []struct {
		kind     GridKind
		lon, lat string
	}{
		{Atmosphere, "A096.lon", "A096.lat"},
		{OceanMesh, "feom.lon", "feom.lat"},
		{Runoff, "RnfA.lon", "RnfA.lat"},
	}
	for _, tt := range tests {
		if tt.kind.LonVarName() != tt.lon || tt.kind.LatVarName() != tt.lat {
			t.Errorf("%v: got %s/%s, want %s/%s", tt.kind, tt.kind.LonVarName(), tt.kind.LatVarName(), tt.lon, tt.lat)
		}
	}
}
