package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Request parameter limits
const (
	minWidth   = 8
	maxWidth   = 1600
	maxSamples = 1000
	maxDepth   = 100
)

// Server handles web requests for the path tracer
type Server struct {
	port   int
	logger core.Logger
	mux    *http.ServeMux
}

// NewServer creates a new web server. A nil logger discards server logs.
func NewServer(port int, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NopLogger{}
	}
	s := &Server{port: port, logger: logger, mux: http.NewServeMux()}

	// API endpoints
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/scenes", s.handleScenes)
	s.mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	s.mux.HandleFunc("/api/render", s.handleRender)
	s.mux.HandleFunc("/api/progress", s.handleProgress)
	s.mux.HandleFunc("/api/inspect", s.handleInspect)

	return s
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.mux)
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string                `json:"scene"`   // Scene name (e.g., "final")
	Width   int                   `json:"width"`   // Image width, 0 keeps the scene's
	Samples int                   `json:"samples"` // Samples per pixel, 0 keeps the scene's
	Depth   *int                  `json:"depth"`   // Max bounce depth, nil keeps the scene's
	Seed    *int64                `json:"seed"`    // Sampling seed, nil keeps the scene's
	Profile renderer.ColorProfile `json:"profile"`
	Format  output.Format         `json:"format"`
}

// Stats represents render statistics
type Stats struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TotalPixels   int     `json:"totalPixels"`
	TotalSamples  int     `json:"totalSamples"`
	Workers       int     `json:"workers"`
	DurationMs    int64   `json:"durationMs"`
	MeanLuminance float64 `json:"meanLuminance"`
}

func newStats(frame *renderer.Frame, stats renderer.RenderStats) Stats {
	return Stats{
		Width:         frame.Width,
		Height:        frame.Height,
		TotalPixels:   stats.TotalPixels,
		TotalSamples:  stats.TotalSamples,
		Workers:       stats.Workers,
		DurationMs:    stats.Duration.Milliseconds(),
		MeanLuminance: stats.MeanLuminance,
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scene.ListScenes()})
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := scene.ByName(sceneName, renderer.DefaultSamplingConfig().Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	camera := sceneObj.Camera
	response := map[string]interface{}{
		"scene": sceneObj.Name,
		"defaults": map[string]interface{}{
			"width":           camera.Width,
			"height":          camera.ImageHeight(),
			"aspectRatio":     camera.AspectRatio,
			"vfov":            camera.VFov,
			"defocusAngle":    camera.DefocusAngle,
			"focusDistance":   camera.FocusDistance,
			"samplesPerPixel": sceneObj.Sampling.SamplesPerPixel,
			"maxDepth":        sceneObj.Sampling.MaxDepth,
			"seed":            sceneObj.Sampling.Seed,
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minWidth, "max": maxWidth},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 0, "max": maxDepth},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

const defaultScene = "materials"

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if query.Get("depth") != "" {
		depth, err := parseIntParam(query, "depth", 0, 0, maxDepth)
		if err != nil {
			return nil, err
		}
		req.Depth = &depth
	}
	if value := query.Get("seed"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
		req.Seed = &seed
	}
	if req.Profile, err = renderer.ParseColorProfile(query.Get("profile")); err != nil {
		return nil, err
	}
	req.Format = output.FormatPNG
	if value := query.Get("format"); value != "" {
		if req.Format, err = output.ParseFormat(value); err != nil {
			return nil, err
		}
	}

	// Performance warning
	if req.Width > 800 && req.Samples > 100 {
		s.logger.Printf("Render warning: Large image with high samples may render slowly\n")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds the requested scene with the request's overrides applied
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	seed := renderer.DefaultSamplingConfig().Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	sceneObj, err := scene.ByName(req.Scene, seed)
	if err != nil {
		return nil, err
	}

	if req.Width > 0 {
		sceneObj.Camera.Width = req.Width
	}
	if req.Samples > 0 {
		sceneObj.Sampling.SamplesPerPixel = req.Samples
	}
	if req.Depth != nil {
		sceneObj.Sampling.MaxDepth = *req.Depth
	}
	sceneObj.Sampling.Seed = seed
	return sceneObj, nil
}

// newRaytracer builds the camera and raytracer for a scene
func newRaytracer(sceneObj *scene.Scene, logger core.Logger) (*renderer.Raytracer, error) {
	camera, err := renderer.NewCamera(sceneObj.Camera)
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(camera, sceneObj.World, sceneObj.Sampling, logger)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
