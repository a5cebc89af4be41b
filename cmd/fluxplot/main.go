// Package main provides the flux plotting command.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go.ngs.io/fluxplot/internal/adapter/render"
	"go.ngs.io/fluxplot/internal/adapter/report"
	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/adapter/store/libnetcdf"
	"go.ngs.io/fluxplot/internal/adapter/store/native"
	"go.ngs.io/fluxplot/internal/usecase"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK      = 0
	exitConfig  = 1 // Invalid configuration or report not written.
	exitAborted = 2 // Every selected folder aborted.
)

func main() {
	os.Exit(run())
}

func run() int {
	defaults := usecase.DefaultConfig()

	// Parse command-line flags.
	noRemap := flag.Bool("no-remap", false, "Skip resampling onto the regular mesh")
	resolution := flag.Float64("resolution", defaults.Resolution, "Mesh resolution in degrees")
	sequential := flag.Bool("sequential", false, "Process files one at a time")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of parallel workers")
	timestep := flag.Int("timestep", defaults.Timestep, "Time index to plot (falls back to 0 when out of range)")
	folder := flag.String("folder", "", "Process a single folder instead of the compared pair")
	maxFiles := flag.Int("max-files", 0, "Maximum number of files per folder (0 = all)")
	compare := flag.String("compare", "flux_33,flux_34", "Comma-separated pair of folders to compare")
	baseDir := flag.String("base-dir", getEnv("FLUXPLOT_BASE_DIR", "."), "Directory holding data/ and output/")
	reader := flag.String("reader", getEnv("FLUXPLOT_READER", "netcdf"), "NetCDF reader: netcdf or native")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return exitOK
	}
	if *showVersion {
		fmt.Printf("fluxplot version %s\n", version)
		return exitOK
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	pair := splitList(*compare)
	if len(pair) != 2 {
		logger.Error("invalid -compare, expected two folders", "value", *compare)
		return exitConfig
	}
	folders := pair
	if *folder != "" {
		folders = []string{*folder}
	}

	open, err := openerFor(*reader)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}

	outputDir := filepath.Join(*baseDir, "output")
	cfg := defaults
	cfg.Resample = !*noRemap
	cfg.Resolution = *resolution
	cfg.Timestep = *timestep
	cfg.Workers = *workers
	cfg.ImageDir = filepath.Join(outputDir, "images")
	if *sequential {
		cfg.Mode = usecase.Sequential
	}

	pipeline, err := usecase.NewPipeline(cfg, open, render.NewRenderer(), logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}

	logger.Info("starting fluxplot",
		"version", version,
		"base_dir", *baseDir,
		"folders", strings.Join(folders, ","),
		"mode", cfg.Mode,
		"workers", cfg.Workers,
		"resample", cfg.Resample,
		"resolution", cfg.Resolution,
		"reader", *reader,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	summary, err := pipeline.ProcessFolders(ctx, *baseDir, folders, *maxFiles)
	if err != nil {
		logger.Warn("run interrupted", "error", err)
	}

	images, err := report.ListImages(cfg.ImageDir)
	if err != nil {
		logger.Error("failed to list images", "error", err)
		return exitConfig
	}
	page := report.BuildPage(images, pair[0], pair[1], cfg.Resolution, summary)
	pagePath, err := report.WritePage(outputDir, page)
	if err != nil {
		logger.Error("failed to write report", "error", err)
		return exitConfig
	}
	manifestPath, err := report.WriteManifest(outputDir, &report.Manifest{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Compare:     pair,
		Resampled:   cfg.Resample,
		Resolution:  cfg.Resolution,
		Timestep:    cfg.Timestep,
		Summary:     summary,
	})
	if err != nil {
		logger.Error("failed to write manifest", "error", err)
		return exitConfig
	}

	logger.Info("run complete",
		"plotted", len(summary.Result.Plotted),
		"skipped", len(summary.Result.Skipped),
		"aborted_folders", summary.Aborted(),
		"report", pagePath,
		"manifest", manifestPath,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if len(summary.Folders) > 0 && summary.Aborted() == len(summary.Folders) {
		return exitAborted
	}
	return exitOK
}

// openerFor selects the NetCDF reader.
func openerFor(name string) (store.Opener, error) {
	switch name {
	case "netcdf":
		return libnetcdf.Open, nil
	case "native":
		return native.Open, nil
	default:
		return nil, fmt.Errorf("unknown reader %q (use netcdf or native)", name)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("fluxplot v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  fluxplot [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -no-remap          Skip resampling onto the regular mesh")
	fmt.Println("  -resolution 0.5    Mesh resolution in degrees, in [0.05, 90]")
	fmt.Println("  -sequential        Process files one at a time")
	fmt.Println("  -workers N         Number of parallel workers (default: CPU count)")
	fmt.Println("  -timestep 1        Time index to plot")
	fmt.Println("  -folder NAME       Process a single folder")
	fmt.Println("  -max-files N       Maximum number of files per folder")
	fmt.Println("  -compare A,B       Folders to compare (default: flux_33,flux_34)")
	fmt.Println("  -base-dir DIR      Directory holding data/ and output/")
	fmt.Println("  -reader NAME       NetCDF reader: netcdf (libnetcdf) or native (pure Go)")
	fmt.Println("  -verbose           Enable debug logging")
	fmt.Println("  -help              Show this help message")
	fmt.Println("  -version           Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  FLUXPLOT_BASE_DIR  Default for -base-dir (default: .)")
	fmt.Println("  FLUXPLOT_READER    Default for -reader (default: netcdf)")
	fmt.Println()
	fmt.Println("LAYOUT:")
	fmt.Println("  <base>/data/<folder>/grids.nc     Grid coordinates")
	fmt.Println("  <base>/data/<folder>/*.nc         Flux files")
	fmt.Println("  <base>/output/images/*.png        Rendered images")
	fmt.Println("  <base>/output/comparison.html     Comparison report")
	fmt.Println("  <base>/output/manifest.json       Run manifest")
	fmt.Println()
	fmt.Println("EXIT CODES:")
	fmt.Println("  0  completed (individual files may have been skipped)")
	fmt.Println("  1  invalid configuration or report not written")
	fmt.Println("  2  every selected folder aborted")
	fmt.Println()
}
