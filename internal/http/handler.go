package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/fluxplot/internal/adapter/report"
	"go.ngs.io/fluxplot/internal/domain"
	"go.ngs.io/fluxplot/internal/usecase"
)

// Prober samples a resampled data file at one location.
type Prober interface {
	Probe(req usecase.ProbeRequest) (*usecase.ProbeResult, error)
}

// Handler serves the comparison report and the probe API.
type Handler struct {
	prober     Prober
	baseDir    string
	folders    []string // Folders whose images are listed.
	resolution float64  // Default resolution for image names and probes.
	timestep   int      // Default probe timestep.
}

// NewHandler creates a new HTTP handler.
func NewHandler(prober Prober, baseDir string, folders []string, resolution float64, timestep int) *Handler {
	return &Handler{
		prober:     prober,
		baseDir:    baseDir,
		folders:    folders,
		resolution: resolution,
		timestep:   timestep,
	}
}

// OutputDir is where the report, manifest and images live.
func (h *Handler) OutputDir() string { return filepath.Join(h.baseDir, "output") }

// ImageDir is the directory served under /images.
func (h *Handler) ImageDir() string { return filepath.Join(h.OutputDir(), "images") }

// GetReport handles GET /.
func (h *Handler) GetReport(c *gin.Context) {
	path := filepath.Join(h.OutputDir(), report.PageFile)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report has not been generated yet"})
		return
	}
	c.File(path)
}

// GetManifest handles GET /v1/manifest.
func (h *Handler) GetManifest(c *gin.Context) {
	m, err := report.ReadManifest(h.OutputDir())
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "manifest not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetImages handles GET /v1/images.
func (h *Handler) GetImages(c *gin.Context) {
	res := h.resolution
	if s := c.Query("resolution"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid resolution: %v", err)})
			return
		}
		res = v
	}
	folders := h.folders
	if f := c.Query("folder"); f != "" {
		folders = []string{f}
	}

	files, err := report.ListImages(h.ImageDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	images := make([]domain.ImageName, 0, len(files))
	for _, f := range files {
		if name, ok := domain.ParseImageNameAny(f, folders, res); ok {
			images = append(images, name)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(images),
		"images": images,
	})
}

// GetProbe handles GET /v1/probe.
func (h *Handler) GetProbe(c *gin.Context) {
	folder := c.Query("folder")
	file := c.Query("file")
	if !plainName(folder) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "folder parameter is required and must be a plain name"})
		return
	}
	if !plainName(file) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file parameter is required and must be a plain name"})
		return
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be a number in [-90, 90]"})
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon >= 360 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon must be a number in [-180, 360)"})
		return
	}

	req := usecase.ProbeRequest{
		Dir:        usecase.DataDir(h.baseDir, folder),
		File:       file,
		Lat:        lat,
		Lon:        lon,
		Resolution: h.resolution,
		Timestep:   h.timestep,
	}
	if s := c.Query("resolution"); s != "" {
		if req.Resolution, err = strconv.ParseFloat(s, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid resolution: %v", err)})
			return
		}
	}
	if s := c.Query("timestep"); s != "" {
		if req.Timestep, err = strconv.Atoi(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid timestep: %v", err)})
			return
		}
	}

	result, err := h.prober.Probe(req)
	if err != nil {
		c.JSON(probeStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func probeStatus(err error) int {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidResolution), errors.Is(err, usecase.ErrOutOfMesh):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGridVariableNotFound),
		errors.Is(err, domain.ErrNoDataVariable),
		errors.Is(err, domain.ErrIncompatibleShapes),
		errors.Is(err, domain.ErrEmptyData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// plainName rejects empty names and anything that could leave the data directory.
func plainName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
