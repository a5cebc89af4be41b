package domain

import (
	"sort"
	"strconv"
	"strings"
)

// ImageExt is the extension of every rendered image.
const ImageExt = ".png"

// FormatResolution renders a mesh step the way image names carry it:
// the shortest decimal with at least one fractional digit ("0.5", "0.25", "1.0").
func FormatResolution(res float64) string {
	s := strconv.FormatFloat(res, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// NativeImageName returns "{folder}_{variable}.png".
func NativeImageName(folder, variable string) string {
	return folder + "_" + variable + ImageExt
}

// ResampledImageName returns "{folder}_{variable}_{res}deg.png".
func ResampledImageName(folder, variable string, res float64) string {
	return folder + "_" + variable + "_" + FormatResolution(res) + "deg" + ImageExt
}

// ImageName is a parsed image file name.
type ImageName struct {
	File       string  `json:"file"`
	Folder     string  `json:"folder"`
	Variable   string  `json:"variable"`
	Resampled  bool    `json:"resampled"`
	Resolution float64 `json:"resolution,omitempty"`
}

// ParseImageName inverts NativeImageName/ResampledImageName for a known folder
// and resolution. It reports false when the name does not belong to folder.
func ParseImageName(file, folder string, res float64) (ImageName, bool) {
	prefix := folder + "_"
	if !strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, ImageExt) {
		return ImageName{}, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(file, prefix), ImageExt)

	out := ImageName{File: file, Folder: folder}
	suffix := "_" + FormatResolution(res) + "deg"
	if res > 0 && strings.HasSuffix(stem, suffix) {
		out.Resampled = true
		out.Resolution = res
		stem = strings.TrimSuffix(stem, suffix)
	}
	if stem == "" {
		return ImageName{}, false
	}
	out.Variable = stem
	return out, true
}

// ParseImageNameAny tries each folder in turn; longer folder names are tried
// first so "flux" never captures files of "flux_33".
func ParseImageNameAny(file string, folders []string, res float64) (ImageName, bool) {
	ordered := make([]string, len(folders))
	copy(ordered, folders)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	for _, folder := range ordered {
		if name, ok := ParseImageName(file, folder, res); ok {
			return name, true
		}
	}
	return ImageName{}, false
}
