// Package server exposes the trace engine over HTTP for plotting and
// analysis consumers.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/designs"
	"github.com/byrdie/optika/pkg/surface"
	"github.com/byrdie/optika/pkg/system"
)

// Server handles web requests for the sequential ray tracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// TraceRequest represents a trace request from the client
type TraceRequest struct {
	Design      string  `json:"design"`      // Design name (e.g., "prime-focus")
	PupilSize   int     `json:"pupilSize"`   // Pupil grid size N (N x N rays)
	FieldSize   int     `json:"fieldSize"`   // Field grid size N (N x N field points)
	Wavelength  float64 `json:"wavelength"`  // Wavelength in length units
	StreamBatch int     `json:"streamBatch"` // Rays per websocket message
}

// FieldSummary is the per-field-point result of a trace
type FieldSummary struct {
	FieldX        float64    `json:"fieldX"`
	FieldY        float64    `json:"fieldY"`
	Centroid      [3]float64 `json:"centroid"`
	RMSSpotRadius float64    `json:"rmsSpotRadius"`
	AliveRays     int        `json:"aliveRays"`
}

// TraceResponse is the JSON result of a full trace
type TraceResponse struct {
	Design        string            `json:"design"`
	Stops         core.StopGeometry `json:"stops"`
	SurfaceNames  []string          `json:"surfaceNames"`
	NumRays       int               `json:"numRays"`
	AliveAtSensor int               `json:"aliveAtSensor"`
	Fields        []FieldSummary    `json:"fields"`
	ElapsedMs     int64             `json:"elapsedMs"`
}

// SurfaceGeometry is the sampled outline of one surface for layout plotting
type SurfaceGeometry struct {
	Name        string       `json:"name"`
	Vertex      [3]float64   `json:"vertex"`
	IsPupilStop bool         `json:"isPupilStop"`
	IsFieldStop bool         `json:"isFieldStop"`
	Outline     [][3]float64 `json:"outline"`
	Profile     [][3]float64 `json:"profile"`
}

// Start starts the web server
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/trace", s.handleTrace)
	mux.HandleFunc("/api/trace/ws", s.handleTraceStream)
	mux.HandleFunc("/api/system", s.handleSystem)

	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleTrace runs a full trace and returns the per-field summary as JSON
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseTraceRequest(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	sys, ok := designs.ByName(req.Design)
	if !ok {
		httpError(w, http.StatusBadRequest, "Unknown design: "+req.Design)
		return
	}
	sys.Logger = &quietLogger{}

	grid := core.NewUniformGrid([]float64{req.Wavelength}, req.FieldSize, req.PupilSize)

	startTime := time.Now()
	stops, err := sys.ResolveStops()
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rf, err := sys.Propagate(r.Context(), system.GenerateRays(stops, grid), grid)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := TraceResponse{
		Design:        req.Design,
		Stops:         stops,
		SurfaceNames:  rf.SurfaceNames,
		NumRays:       grid.NumCells(),
		AliveAtSensor: rf.AliveCount(rf.NumSurfaces() - 1),
		Fields:        fieldSummaries(rf),
		ElapsedMs:     time.Since(startTime).Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleSystem returns sampled surface geometry for plotting consumers
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	designName := r.URL.Query().Get("design")
	if designName == "" {
		designName = "prime-focus"
	}
	sys, ok := designs.ByName(designName)
	if !ok {
		httpError(w, http.StatusBadRequest, "Unknown design: "+designName)
		return
	}
	samples, err := parseIntParam(r.URL.Query(), "samples", 64, 8, 4096)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	all := collectSurfaces(sys)
	geometries := make([]SurfaceGeometry, 0, len(all))
	for _, ref := range all {
		geometries = append(geometries, SurfaceGeometry{
			Name:        ref.name,
			Vertex:      ref.vertex,
			IsPupilStop: ref.isPupil,
			IsFieldStop: ref.isField,
			Outline:     ref.outline(samples),
			Profile:     ref.profile(samples),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"design":   designName,
		"surfaces": geometries,
	})
}

// parseTraceRequest parses and validates trace query parameters
func (s *Server) parseTraceRequest(r *http.Request) (*TraceRequest, error) {
	req := &TraceRequest{}

	if design := r.URL.Query().Get("design"); design != "" {
		req.Design = design
	} else {
		req.Design = "prime-focus"
	}

	var err error
	if req.PupilSize, err = parseIntParam(r.URL.Query(), "pupil", 16, 1, 256); err != nil {
		return nil, err
	}
	if req.FieldSize, err = parseIntParam(r.URL.Query(), "field", 3, 1, 64); err != nil {
		return nil, err
	}
	if req.Wavelength, err = parseFloatParam(r.URL.Query(), "wavelength", 550e-6, 1e-9, 1); err != nil {
		return nil, err
	}
	if req.StreamBatch, err = parseIntParam(r.URL.Query(), "batch", 512, 1, 65536); err != nil {
		return nil, err
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

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func fieldSummaries(rf *core.RayFunction) []FieldSummary {
	residuals := rf.Residuals()
	sensor := rf.Sensor()
	out := make([]FieldSummary, 0, len(rf.Grid.FieldY)*len(rf.Grid.FieldX))
	for iw := range rf.Grid.Wavelengths {
		for ify := range rf.Grid.FieldY {
			for ifx := range rf.Grid.FieldX {
				summary := FieldSummary{
					FieldX: rf.Grid.FieldX[ifx],
					FieldY: rf.Grid.FieldY[ify],
				}
				centroid, ok := rf.Centroid(iw, ify, ifx)
				if ok {
					summary.Centroid = centroid
					var sum float64
					for ipy := range rf.Grid.PupilY {
						for ipx := range rf.Grid.PupilX {
							i := rf.Grid.Index(iw, ify, ifx, ipy, ipx)
							if !sensor[i].Alive {
								continue
							}
							res := residuals[i]
							sum += res.X()*res.X() + res.Y()*res.Y()
							summary.AliveRays++
						}
					}
					summary.RMSSpotRadius = math.Sqrt(sum / float64(summary.AliveRays))
				}
				out = append(out, summary)
			}
		}
	}
	return out
}

func httpError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// quietLogger suppresses per-trace logging for request handlers
type quietLogger struct{}

func (*quietLogger) Printf(format string, args ...interface{}) {}

// surfaceRef adapts a system surface for geometry serialization
type surfaceRef struct {
	name             string
	vertex           [3]float64
	isPupil, isField bool
	outline          func(n int) [][3]float64
	profile          func(n int) [][3]float64
}

func collectSurfaces(sys *system.System) []*surfaceRef {
	elements := make([]*surface.Surface, 0, len(sys.Surfaces)+1)
	elements = append(elements, sys.Surfaces...)
	if sys.Sensor != nil {
		elements = append(elements, sys.Sensor)
	}
	refs := make([]*surfaceRef, 0, len(elements))
	for _, s := range elements {
		s := s
		refs = append(refs, &surfaceRef{
			name:    s.Name,
			vertex:  s.Vertex(),
			isPupil: s.IsPupilStop,
			isField: s.IsFieldStop,
			outline: func(n int) [][3]float64 { return toTriples(s.Outline(n)) },
			profile: func(n int) [][3]float64 { return toTriples(s.RadialProfile(n)) },
		})
	}
	return refs
}

func toTriples(points []mgl64.Vec3) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = p
	}
	return out
}
