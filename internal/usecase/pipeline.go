package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"go.ngs.io/fluxplot/internal/adapter/interp"
	"go.ngs.io/fluxplot/internal/adapter/render"
	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/domain"
)

// Mode selects how the files of a folder are scheduled.
type Mode int

const (
	// Sequential processes files one after another in input order.
	Sequential Mode = iota
	// Parallel processes files on a bounded worker pool.
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// Config holds the pipeline options.
type Config struct {
	Timestep   int     // Requested time index; out of range falls back to 0.
	Resample   bool    // Also render each variable on the regular mesh.
	Resolution float64 // Mesh step in degrees.
	Fill       float64 // Mesh value outside the data hull.

	Mode     Mode
	Workers  int
	Progress time.Duration // Minimum interval between progress logs; 0 logs every file.

	ImageDir string   // Where images are written.
	GridFile string   // Coordinate dataset name inside each folder.
	Reserved []string // File names that are never processed as data.
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Timestep:   1,
		Resample:   true,
		Resolution: 0.5,
		Fill:       interp.DefaultFill,
		Mode:       Parallel,
		Workers:    runtime.NumCPU(),
		Progress:   5 * time.Second,
		GridFile:   "grids.nc",
		Reserved:   []string{"grids.nc", "fesom.mesh.diag.nc"},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ImageDir == "" {
		return errors.New("image directory is required")
	}
	if c.GridFile == "" {
		return errors.New("grid file name is required")
	}
	if c.Mode == Parallel && c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Resample {
		if _, err := interp.NewMesh(c.Resolution); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) reserved(name string) bool {
	if name == c.GridFile {
		return true
	}
	for _, r := range c.Reserved {
		if name == r {
			return true
		}
	}
	return false
}

// Renderer draws one plot.
type Renderer interface {
	Render(p *render.Plot) error
}

// Pipeline turns the data files of experiment folders into images and
// processing records.
type Pipeline struct {
	cfg      Config
	open     store.Opener
	renderer Renderer
	logger   *slog.Logger
	mesh     *interp.Mesh // nil when resampling is off.
}

// NewPipeline validates cfg and builds the shared target mesh.
func NewPipeline(cfg Config, open store.Opener, renderer Renderer, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{cfg: cfg, open: open, renderer: renderer, logger: logger}
	if cfg.Resample {
		mesh, err := interp.NewMesh(cfg.Resolution)
		if err != nil {
			return nil, err
		}
		p.mesh = mesh
	}
	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Run processes files of the folder at dir. Reserved names are ignored.
//
// The grid dataset is opened once and its coordinate sets are shared by all
// files. Per-file failures become skipped records. A missing grid file or grid
// variable aborts the folder and is returned as an error. When several files
// map to one image name, the first listed file keeps it and the others are
// skipped.
//
// Sequential runs keep the order of files; parallel runs are sorted by file name.
func (p *Pipeline) Run(ctx context.Context, dir string, files []string) (*domain.Result, error) {
	folder := filepath.Base(dir)

	grids, err := p.open(filepath.Join(dir, p.cfg.GridFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open grid file of %s: %w", folder, err)
	}
	defer grids.Close()
	coords := newCoordinateCache(grids)

	var tasks []string
	for _, f := range files {
		if !p.cfg.reserved(f) {
			tasks = append(tasks, f)
		}
	}
	records := make([]domain.Record, len(tasks))
	owners := newImageOwners()
	prog := newProgress(p.logger.With("folder", folder), len(tasks), p.cfg.Progress)

	if p.cfg.Mode == Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Workers)
		for i, file := range tasks {
			i, file := i, file
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec, err := p.processFile(coords, owners, dir, i, file)
				if err != nil {
					return err
				}
				records[i] = rec
				prog.add()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("folder %s aborted: %w", folder, err)
		}
	} else {
		for i, file := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("folder %s aborted: %w", folder, err)
			}
			rec, err := p.processFile(coords, owners, dir, i, file)
			if err != nil {
				return nil, fmt.Errorf("folder %s aborted: %w", folder, err)
			}
			records[i] = rec
			prog.add()
		}
	}

	result := &domain.Result{}
	for _, rec := range records {
		if rec.Status == domain.StatusPlotted {
			if owner := owners.owner(rec.Images[0]); owner != rec.File {
				rec = duplicateImage(folder, rec.File, rec.Images[0], owner)
			}
		}
		result.Add(rec)
	}
	if p.cfg.Mode == Parallel {
		result.Sort()
	}
	return result, nil
}

// processFile runs one data file through extraction, reconciliation and
// rendering. Only grid failures are returned as errors; everything else,
// panics included, ends up in the record.
func (p *Pipeline) processFile(coords *coordinateCache, owners *imageOwners, dir string, index int, file string) (rec domain.Record, err error) {
	folder := filepath.Base(dir)
	log := p.logger.With("folder", folder, "file", file)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while processing file", "panic", r, "stack", string(debug.Stack()))
			rec, err = domain.Skipped(folder, file, fmt.Sprintf("panic: %v", r)), nil
		}
	}()

	p.logMemory(log, "start")
	defer p.logMemory(log, "done")

	kind := domain.Classify(file)
	set, err := coords.get(kind)
	if err != nil {
		return domain.Record{}, err
	}

	ds, err := p.open(filepath.Join(dir, file))
	if err != nil {
		log.Debug("skipping unreadable file", "error", err)
		return domain.Skipped(folder, file, fmt.Errorf("%w: %v", domain.ErrReadFailure, err).Error()), nil
	}
	ext, err := Extract(ds, p.cfg.Timestep)
	if cerr := ds.Close(); cerr != nil {
		log.Debug("failed to close data file", "error", cerr)
	}
	if err != nil {
		log.Debug("skipping file", "error", err)
		return domain.Skipped(folder, file, err.Error()), nil
	}
	if ext.TimestepFallback {
		log.Debug("timestep out of range, using index 0", "timestep", p.cfg.Timestep, "variable", ext.Variable)
	}

	rec = p.plot(log, owners, index, folder, file, kind, set, ext)
	rec.Grid = kind.String()
	return rec, nil
}

func duplicateImage(folder, file, image, owner string) domain.Record {
	return domain.Skipped(folder, file, fmt.Errorf("%w %s: already produced by %s", domain.ErrDuplicateImage, image, owner).Error())
}

func (p *Pipeline) plot(log *slog.Logger, owners *imageOwners, index int, folder, file string, kind domain.GridKind, set *domain.CoordinateSet, ext *Extraction) domain.Record {
	name := ext.Variable
	title := folder + ": " + name
	native := domain.NativeImageName(folder, name)

	claim := func() (func(), bool) {
		release, owner, ok := owners.claim(native, index, file)
		if !ok {
			log.Warn("image name already taken", "image", native, "owner", owner)
		}
		return release, ok
	}

	rc, err := Reconcile(set, ext.Slice)
	if errors.Is(err, domain.ErrIncompatibleShapes) {
		release, ok := claim()
		if !ok {
			return duplicateImage(folder, file, native, owners.owner(native))
		}
		defer release()

		log.Debug("rendering in image space", "variable", name, "error", err)
		img := ImageSpaceGrid(ext.Slice)
		if rerr := p.renderer.Render(&render.Plot{
			Kind:  render.ImageSpace,
			Path:  filepath.Join(p.cfg.ImageDir, native),
			Title: title + render.DegradedSuffix,
			Label: name,
			Rows:  img.Rows,
			Cols:  img.Cols,
			Image: img.Data,
		}); rerr != nil {
			return domain.Skipped(folder, file, rerr.Error())
		}
		rec := domain.Plotted(folder, file, name, native)
		rec.Degraded = true
		rec.Reason = err.Error()
		return rec
	}
	if err != nil {
		return domain.Skipped(folder, file, err.Error())
	}
	if rc.Truncated {
		log.Debug("truncated to common length", "variable", name, "points", rc.Len())
	}

	lon, lat, data := FilterFinite(rc.Lon, rc.Lat, rc.Data)
	if len(data) == 0 {
		return domain.Skipped(folder, file, fmt.Errorf("%w: no finite %s values on %s grid", domain.ErrEmptyData, name, kind).Error())
	}

	release, ok := claim()
	if !ok {
		return duplicateImage(folder, file, native, owners.owner(native))
	}
	defer release()

	if err := p.renderer.Render(&render.Plot{
		Kind:   render.Scatter,
		Path:   filepath.Join(p.cfg.ImageDir, native),
		Title:  title,
		Label:  name,
		Lon:    lon,
		Lat:    lat,
		Values: data,
	}); err != nil {
		return domain.Skipped(folder, file, err.Error())
	}
	images := []string{native}

	if p.mesh != nil {
		field := interp.Resample(lon, lat, data, p.mesh, p.cfg.Fill)
		resampled := domain.ResampledImageName(folder, name, p.cfg.Resolution)
		if err := p.renderer.Render(&render.Plot{
			Kind:  render.Mesh,
			Path:  filepath.Join(p.cfg.ImageDir, resampled),
			Title: title + " (remapped)",
			Label: name,
			Field: field,
		}); err != nil {
			log.Warn("failed to render resampled image", "variable", name, "error", err)
		} else {
			images = append(images, resampled)
		}
	}

	return domain.Plotted(folder, file, name, images...)
}

// DataDir returns the directory holding the files of folder.
func DataDir(baseDir, folder string) string {
	return filepath.Join(baseDir, "data", folder)
}

// ListDataFiles returns the sorted *.nc files of dir, reserved names excluded,
// capped at maxFiles when maxFiles > 0.
func (p *Pipeline) ListDataFiles(dir string, maxFiles int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".nc") || p.cfg.reserved(name) {
			continue
		}
		files = append(files, name)
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}
	return files, nil
}

// ProcessFolders runs every folder under baseDir/data in turn. An aborted
// folder is logged and recorded in the summary; the remaining folders still run.
// Only cancellation of ctx stops the loop early.
func (p *Pipeline) ProcessFolders(ctx context.Context, baseDir string, folders []string, maxFiles int) (*domain.Summary, error) {
	summary := &domain.Summary{}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		start := time.Now()
		fs := domain.FolderSummary{Folder: folder}

		res, err := p.runFolder(ctx, DataDir(baseDir, folder), maxFiles, &fs)
		fs.Duration = time.Since(start)
		if err != nil {
			fs.Error = err.Error()
			p.logger.Error("folder aborted", "folder", folder, "error", err)
		} else {
			fs.Plotted, fs.Skipped = len(res.Plotted), len(res.Skipped)
			summary.Result.Merge(res)
			p.logger.Info("folder done", "folder", folder,
				"plotted", fs.Plotted, "skipped", fs.Skipped, "elapsed", fs.Duration.Round(time.Millisecond))
		}
		summary.Folders = append(summary.Folders, fs)
	}
	return summary, nil
}

func (p *Pipeline) runFolder(ctx context.Context, dir string, maxFiles int, fs *domain.FolderSummary) (*domain.Result, error) {
	files, err := p.ListDataFiles(dir, maxFiles)
	if err != nil {
		return nil, err
	}
	fs.Files = len(files)
	p.logger.Info("processing folder", "folder", fs.Folder, "files", len(files), "mode", p.cfg.Mode)
	return p.Run(ctx, dir, files)
}
