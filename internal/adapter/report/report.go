// Package report builds the side-by-side comparison page and the run manifest.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.ngs.io/fluxplot/internal/domain"
)

//go:embed templates/comparison.html
var templates embed.FS

var comparisonTmpl = template.Must(template.ParseFS(templates, "templates/comparison.html"))

// PageFile is the report file name inside the output directory.
const PageFile = "comparison.html"

// Pair is one variable shown for both folders.
type Pair struct {
	Variable      string
	LeftImage     string
	RightImage    string
	LeftDegraded  bool
	RightDegraded bool
}

// Page is the data behind comparison.html.
type Page struct {
	Left, Right string
	Resolution  string
	ImagePrefix string // Prepended to image names in <img src>.

	Standard  []Pair // Native-grid images present in both folders.
	Resampled []Pair // Mesh images present in both folders.

	Plotted int
	Skipped []domain.Record
	Aborted []domain.FolderSummary
}

// ListImages returns the sorted image file names in dir. A missing directory
// yields no images.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), domain.ImageExt) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// BuildPage pairs the images of the left and right folders by variable name.
// Only variables present in both folders are shown, sorted by name. Skipped
// records of every folder are listed.
func BuildPage(images []string, left, right string, res float64, summary *domain.Summary) *Page {
	page := &Page{
		Left:        left,
		Right:       right,
		Resolution:  domain.FormatResolution(res),
		ImagePrefix: "images/",
	}

	degraded := make(map[string]bool)
	if summary != nil {
		for _, rec := range summary.Result.Plotted {
			if rec.Degraded {
				for _, img := range rec.Images {
					degraded[img] = true
				}
			}
		}
		page.Plotted = len(summary.Result.Plotted)
		page.Skipped = append(page.Skipped, summary.Result.Skipped...)
		sort.SliceStable(page.Skipped, func(i, j int) bool {
			a, b := page.Skipped[i], page.Skipped[j]
			if a.Folder != b.Folder {
				return a.Folder < b.Folder
			}
			return a.File < b.File
		})
		for _, f := range summary.Folders {
			if f.Error != "" {
				page.Aborted = append(page.Aborted, f)
			}
		}
	}

	byFolder := func(folder string) (native, mesh map[string]string) {
		native, mesh = make(map[string]string), make(map[string]string)
		for _, img := range images {
			name, ok := domain.ParseImageNameAny(img, []string{left, right}, res)
			if !ok || name.Folder != folder {
				continue
			}
			if name.Resampled {
				mesh[name.Variable] = img
			} else {
				native[name.Variable] = img
			}
		}
		return native, mesh
	}
	leftNative, leftMesh := byFolder(left)
	rightNative, rightMesh := byFolder(right)

	page.Standard = pairs(leftNative, rightNative, degraded)
	page.Resampled = pairs(leftMesh, rightMesh, degraded)
	return page
}

func pairs(left, right map[string]string, degraded map[string]bool) []Pair {
	var out []Pair
	for v, l := range left {
		r, ok := right[v]
		if !ok {
			continue
		}
		out = append(out, Pair{
			Variable:      v,
			LeftImage:     l,
			RightImage:    r,
			LeftDegraded:  degraded[l],
			RightDegraded: degraded[r],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variable < out[j].Variable })
	return out
}

// Render executes the page template.
func (p *Page) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := comparisonTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to render comparison page: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePage renders the page to outputDir/comparison.html.
func WritePage(outputDir string, p *Page) (string, error) {
	b, err := p.Render()
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, PageFile)
	if err := writeFile(path, b); err != nil {
		return "", err
	}
	return path, nil
}

// writeFile replaces path atomically.
func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
