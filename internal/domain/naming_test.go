package domain

import "testing"

func TestFormatResolution(t *testing.T) {
	tests := []struct {
		res  float64
		want string
	}{
		{0.5, "0.5"},
		{0.25, "0.25"},
		{1, "1.0"},
		{2, "2.0"},
		{0.125, "0.125"},
	}
	for _, tt := range tests {
		if got := FormatResolution(tt.res); got != tt.want {
			t.Errorf("FormatResolution(%v) = %q, want %q", tt.res, got, tt.want)
		}
	}
}

func TestImageNames(t *testing.T) {
	if got := NativeImageName("flux_33", "A_Qns_oce"); got != "flux_33_A_Qns_oce.png" {
		t.Errorf("NativeImageName = %q", got)
	}
	if got := ResampledImageName("flux_33", "A_Qns_oce", 0.5); got != "flux_33_A_Qns_oce_0.5deg.png" {
		t.Errorf("ResampledImageName = %q", got)
	}
}

func TestParseImageName(t *testing.T) {
	tests := []struct {
		file      string
		folder    string
		res       float64
		ok        bool
		variable  string
		resampled bool
	}{
		{"flux_33_A_Qns_oce.png", "flux_33", 0.5, true, "A_Qns_oce", false},
		{"flux_33_A_Qns_oce_0.5deg.png", "flux_33", 0.5, true, "A_Qns_oce", true},
		{"flux_33_A_Qns_oce_0.25deg.png", "flux_33", 0.5, true, "A_Qns_oce_0.25deg", false},
		{"flux_33_A_Qns_oce_1.0deg.png", "flux_33", 1, true, "A_Qns_oce", true},
		{"flux_34_A_Qns_oce.png", "flux_33", 0.5, false, "", false},
		{"flux_33_.png", "flux_33", 0.5, false, "", false},
		{"flux_33_x.jpg", "flux_33", 0.5, false, "", false},
	}
	for _, tt := range tests {
		got, ok := ParseImageName(tt.file, tt.folder, tt.res)
		if ok != tt.ok {
			t.Errorf("ParseImageName(%q) ok = %v, want %v", tt.file, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Variable != tt.variable || got.Resampled != tt.resampled {
			t.Errorf("ParseImageName(%q) = %+v, want variable %q resampled %v", tt.file, got, tt.variable, tt.resampled)
		}
	}
}

func TestParseImageName_RoundTrip(t *testing.T) {
	for _, v := range []string{"A_Qns_oce", "R_Runoff", "O_SSTSST", "feom_sst"} {
		n, ok := ParseImageName(NativeImageName("flux_34", v), "flux_34", 0.25)
		if !ok || n.Variable != v || n.Resampled {
			t.Errorf("native round trip of %q: %+v %v", v, n, ok)
		}
		r, ok := ParseImageName(ResampledImageName("flux_34", v, 0.25), "flux_34", 0.25)
		if !ok || r.Variable != v || !r.Resampled {
			t.Errorf("resampled round trip of %q: %+v %v", v, r, ok)
		}
	}
}

func TestParseImageNameAny_LongestFolderFirst(t *testing.T) {
	got, ok := ParseImageNameAny("flux_33_A_Qns.png", []string{"flux", "flux_33"}, 0.5)
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Folder != "flux_33" || got.Variable != "A_Qns" {
		t.Errorf("got %+v", got)
	}
}
