package domain

import (
	"sort"
	"time"
)

// Status is the outcome of processing one file.
type Status string

const (
	// StatusPlotted marks a file that produced at least one image.
	StatusPlotted Status = "plotted"
	// StatusSkipped marks a file that produced no image.
	StatusSkipped Status = "skipped"
)

// Record is the per-file processing outcome.
type Record struct {
	Folder   string   `json:"folder"`
	File     string   `json:"file"`
	Variable string   `json:"variable,omitempty"`
	Grid     string   `json:"grid,omitempty"`
	Status   Status   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Degraded bool     `json:"degraded,omitempty"` // Rendered in image space, not geographic.
	Images   []string `json:"images,omitempty"`
}

// Plotted creates a plotted record.
func Plotted(folder, file, variable string, images ...string) Record {
	return Record{Folder: folder, File: file, Variable: variable, Status: StatusPlotted, Images: images}
}

// Skipped creates a skipped record.
func Skipped(folder, file, reason string) Record {
	return Record{Folder: folder, File: file, Status: StatusSkipped, Reason: reason}
}

// Result accumulates the records of one pipeline run.
type Result struct {
	Plotted []Record `json:"plotted"`
	Skipped []Record `json:"skipped"`
}

// Add appends a record to the matching collection.
func (r *Result) Add(rec Record) {
	if rec.Status == StatusPlotted {
		r.Plotted = append(r.Plotted, rec)
		return
	}
	r.Skipped = append(r.Skipped, rec)
}

// Merge appends all records of other.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Plotted = append(r.Plotted, other.Plotted...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// PlottedFiles returns the plotted file names in record order.
func (r *Result) PlottedFiles() []string { return fileNames(r.Plotted) }

// SkippedFiles returns the skipped file names in record order.
func (r *Result) SkippedFiles() []string { return fileNames(r.Skipped) }

// Sort orders both collections by folder, then file name.
func (r *Result) Sort() {
	less := func(recs []Record) func(i, j int) bool {
		return func(i, j int) bool {
			if recs[i].Folder != recs[j].Folder {
				return recs[i].Folder < recs[j].Folder
			}
			return recs[i].File < recs[j].File
		}
	}
	sort.SliceStable(r.Plotted, less(r.Plotted))
	sort.SliceStable(r.Skipped, less(r.Skipped))
}

// FolderSummary describes the run of one folder.
type FolderSummary struct {
	Folder   string        `json:"folder"`
	Files    int           `json:"files"`
	Plotted  int           `json:"plotted"`
	Skipped  int           `json:"skipped"`
	Error    string        `json:"error,omitempty"` // Set when the folder was aborted.
	Duration time.Duration `json:"duration_ns"`
}

// Summary is the outcome of a multi-folder run.
type Summary struct {
	Result  Result          `json:"result"`
	Folders []FolderSummary `json:"folders"`
}

// Aborted returns the number of folders that produced no result.
func (s *Summary) Aborted() int {
	n := 0
	for _, f := range s.Folders {
		if f.Error != "" {
			n++
		}
	}
	return n
}

func fileNames(recs []Record) []string {
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.File
	}
	return names
}
