// Package api provides the REST API server for toontrack2ad2
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/toontrack2ad2/pkg/converter"
	"github.com/james-see/toontrack2ad2/pkg/converter/devices"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title toontrack2ad2 API
// @version 1.0
// @description API for converting Toontrack MIDI packages for Addictive Drums 2
// @host localhost:8080
// @BasePath /api/v1

// DecodeRequest is the body of /decode
type DecodeRequest struct {
	Path   string `json:"path" binding:"required"`
	Style  string `json:"style" binding:"required"`
	Device string `json:"device"`
}

// DecodeResponse is returned by /decode
type DecodeResponse struct {
	Descriptor converter.Descriptor `json:"descriptor"`
	Folder     string               `json:"folder"`
	FileName   string               `json:"filename"`
}

// ConvertRequest is the body of /convert. Paths are on the server's filesystem.
type ConvertRequest struct {
	Package    string `json:"package" binding:"required"`
	Style      string `json:"style" binding:"required"`
	Device     string `json:"device"`
	Output     string `json:"output"`
	MappingDir string `json:"map_dir"`
	DryRun     bool   `json:"dry_run"`
	Verify     bool   `json:"verify"`
}

// ConvertResponse is returned by /convert
type ConvertResponse struct {
	Plan   *converter.Plan   `json:"plan"`
	Result *converter.Result `json:"result"`
	Trace  []string          `json:"trace"`
}

type handler struct {
	normalizer *converter.TypeNormalizer
}

// StartServer starts the API server on the specified port
func StartServer(port int, normalizer *converter.TypeNormalizer) error {
	return NewRouter(normalizer).Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(normalizer *converter.TypeNormalizer) *gin.Engine {
	if normalizer == nil {
		normalizer = converter.NewTypeNormalizer(converter.DefaultTypeTable())
	}
	h := &handler{normalizer: normalizer}

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/devices", listDevices)
		v1.GET("/types", h.listTypes)
		v1.POST("/decode", h.handleDecode)
		v1.POST("/inspect", handleInspect)
		v1.POST("/convert", h.handleConvert)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// localOnly lists routes that write to the server's filesystem. They get no
// CORS headers, so browsers refuse cross-origin calls to them.
var localOnly = map[string]bool{
	"/api/v1/convert": true,
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if localOnly[c.Request.URL.Path] {
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "toontrack2ad2",
	})
}

// listDevices godoc
// @Summary List supported devices
// @Description Returns the target samplers files can be named for
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]devices.Info
// @Router /api/v1/devices [get]
func listDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"devices": devices.List(),
	})
}

// listTypes godoc
// @Summary Category substitutions
// @Description Returns the table used to normalize package categories
// @Tags info
// @Produce json
// @Success 200 {object} map[string]map[string]string
// @Router /api/v1/types [get]
func (h *handler) listTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"types": h.normalizer.Table(),
	})
}

// handleDecode godoc
// @Summary Decode a package path
// @Description Decodes one package-relative MIDI path and returns the target file name
// @Tags convert
// @Accept json
// @Produce json
// @Param request body DecodeRequest true "Path and style"
// @Success 200 {object} DecodeResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/decode [post]
func (h *handler) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := devices.Lookup(req.Device)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := converter.Decode(req.Path, h.normalizer)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DecodeResponse{
		Descriptor: d,
		Folder:     device.FolderName(d.Package),
		FileName:   device.FileName(d, req.Style),
	})
}

// handleInspect godoc
// @Summary Inspect a MIDI file
// @Description Upload a MIDI file and receive its tracks, resolution, tempo and time signature
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to inspect"
// @Success 200 {object} converter.MIDIInfo
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	info, err := converter.InspectMIDI(data)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleConvert godoc
// @Summary Convert a package on the server
// @Description Converts a package directory on the server's filesystem. Meant for
// @Description localhost or trusted networks: cross-origin browser calls are refused.
// @Tags convert
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Package, style and options"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/convert [post]
func (h *handler) handleConvert(c *gin.Context) {
	// A JSON body forces a CORS preflight, which localOnly routes fail
	if c.ContentType() != "application/json" {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Content-Type must be application/json"})
		return
	}

	var req ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := devices.Lookup(req.Device)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var trace bytes.Buffer
	conv := converter.NewWithOptions(device, h.normalizer, converter.Options{
		OutputDir:  req.Output,
		MappingDir: req.MappingDir,
		DryRun:     req.DryRun,
		Verify:     req.Verify,
		Trace:      &trace,
	})

	plan, err := conv.Plan(req.Package, req.Style)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := conv.Execute(c.Request.Context(), plan)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ConvertResponse{
		Plan:   plan,
		Result: res,
		Trace:  strings.Split(strings.TrimRight(trace.String(), "\n"), "\n"),
	})
}

// writeError maps decode and MIDI errors to 400, missing paths to 404 and
// everything else to 500
func writeError(c *gin.Context, err error) {
	var de *converter.DecodeError
	switch {
	case errors.As(err, &de):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "stage": string(de.Stage), "segment": de.Segment})
	case errors.Is(err, converter.ErrInvalidMIDI):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
