// Package main provides the flux report HTTP server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/fluxplot/internal/adapter/render"
	"go.ngs.io/fluxplot/internal/adapter/store"
	"go.ngs.io/fluxplot/internal/adapter/store/libnetcdf"
	"go.ngs.io/fluxplot/internal/adapter/store/native"
	httpHandler "go.ngs.io/fluxplot/internal/http"
	"go.ngs.io/fluxplot/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("fluxplot-server version %s\n", version)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	baseDir := getEnv("FLUXPLOT_BASE_DIR", ".")
	reader := getEnv("FLUXPLOT_READER", "netcdf")
	compare := strings.Split(getEnv("FLUXPLOT_COMPARE", "flux_33,flux_34"), ",")

	cfg := usecase.DefaultConfig()
	cfg.Mode = usecase.Sequential
	cfg.ImageDir = filepath.Join(baseDir, "output", "images")
	if s := os.Getenv("FLUXPLOT_RESOLUTION"); s != "" {
		res, err := strconv.ParseFloat(s, 64)
		if err != nil {
			logger.Error("invalid FLUXPLOT_RESOLUTION", "value", s, "error", err)
			os.Exit(1)
		}
		cfg.Resolution = res
	}

	logger.Info("starting flux report server",
		"port", port,
		"base_dir", baseDir,
		"reader", reader,
		"compare", strings.Join(compare, ","),
		"resolution", cfg.Resolution,
	)

	var open store.Opener
	switch reader {
	case "netcdf":
		open = libnetcdf.Open
	case "native":
		open = native.Open
	default:
		logger.Error("unknown reader (use netcdf or native)", "reader", reader)
		os.Exit(1)
	}

	// The probe API resamples on demand and never renders.
	pipeline, err := usecase.NewPipeline(cfg, open, render.NewRenderer(), logger)
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	handler := httpHandler.NewHandler(pipeline, baseDir, compare, cfg.Resolution, cfg.Timestep)
	router := httpHandler.SetupRouter(handler)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	logger.Info("server listening", "addr", addr, "health", fmt.Sprintf("http://localhost:%s/health", port))
	logger.Info("endpoints", "routes", "GET /, /images/*, /v1/manifest, /v1/images, /v1/probe")

	if err := router.Run(addr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
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
	fmt.Printf("Flux report server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  fluxplot-server [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  FLUXPLOT_BASE_DIR       Directory holding data/ and output/ (default: .)")
	fmt.Println("  FLUXPLOT_READER         NetCDF reader: netcdf or native (default: netcdf)")
	fmt.Println("  FLUXPLOT_COMPARE        Folders listed by /v1/images (default: flux_33,flux_34)")
	fmt.Println("  FLUXPLOT_RESOLUTION     Default probe resolution in degrees (default: 0.5)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /                          Comparison report")
	fmt.Println("  GET /images/{name}             Rendered images")
	fmt.Println("  GET /v1/manifest               Manifest of the last run")
	fmt.Println("  GET /v1/images                 Parsed image list (?folder, ?resolution)")
	fmt.Println("  GET /v1/probe                  Resampled value at a point")
	fmt.Println("                                 (?folder&file&lat&lon[&resolution][&timestep])")
	fmt.Println()
}
