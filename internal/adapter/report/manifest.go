package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.ngs.io/fluxplot/internal/domain"
)

// ManifestFile is the manifest file name inside the output directory.
const ManifestFile = "manifest.json"

// Manifest records what a run produced, for the report server and for tooling.
type Manifest struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generated_at"`
	Compare     []string        `json:"compare"`
	Resampled   bool            `json:"resampled"`
	Resolution  float64         `json:"resolution"`
	Timestep    int             `json:"timestep"`
	Summary     *domain.Summary `json:"summary"`
}

// WriteManifest stores m as indented JSON in outputDir/manifest.json.
func WriteManifest(outputDir string, m *Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := filepath.Join(outputDir, ManifestFile)
	if err := writeFile(path, append(b, '\n')); err != nil {
		return "", err
	}
	return path, nil
}

// ReadManifest loads outputDir/manifest.json.
func ReadManifest(outputDir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
