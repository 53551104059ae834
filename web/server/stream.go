package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/byrdie/optika/pkg/core"
	"github.com/byrdie/optika/pkg/designs"
	"github.com/byrdie/optika/pkg/system"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RayState is one ray in a streamed surface batch
type RayState struct {
	Cell      int        `json:"cell"`
	Position  [3]float64 `json:"position"`
	Direction [3]float64 `json:"direction"`
	Alive     bool       `json:"alive"`
}

// StreamMessage is one frame of a streamed trace. Type is "stops",
// "surface" or "complete"; surface frames carry a batch of ray states.
type StreamMessage struct {
	Type         string             `json:"type"`
	Stops        *core.StopGeometry `json:"stops,omitempty"`
	SurfaceIndex int                `json:"surfaceIndex,omitempty"`
	SurfaceName  string             `json:"surfaceName,omitempty"`
	Rays         []RayState         `json:"rays,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// handleTraceStream runs a trace and streams per-surface ray states over a
// websocket, batched so large grids do not produce oversized frames.
func (s *Server) handleTraceStream(w http.ResponseWriter, r *http.Request) {
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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	grid := core.NewUniformGrid([]float64{req.Wavelength}, req.FieldSize, req.PupilSize)
	stops, err := sys.ResolveStops()
	if err != nil {
		conn.WriteJSON(StreamMessage{Type: "error", Error: err.Error()})
		return
	}
	if err := conn.WriteJSON(StreamMessage{Type: "stops", Stops: &stops}); err != nil {
		return
	}

	rf, err := sys.Propagate(r.Context(), system.GenerateRays(stops, grid), grid)
	if err != nil {
		conn.WriteJSON(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	for si := 0; si < rf.NumSurfaces(); si++ {
		states := rf.States[si]
		for start := 0; start < len(states); start += req.StreamBatch {
			end := start + req.StreamBatch
			if end > len(states) {
				end = len(states)
			}
			batch := make([]RayState, 0, end-start)
			for i := start; i < end; i++ {
				state := RayState{Cell: i, Alive: states[i].Alive}
				// Dead rays carry NaN positions, which JSON cannot encode.
				if states[i].Finite() {
					state.Position = states[i].Position
					state.Direction = states[i].Direction
				}
				batch = append(batch, state)
			}
			msg := StreamMessage{
				Type:         "surface",
				SurfaceIndex: si,
				SurfaceName:  rf.SurfaceNames[si],
				Rays:         batch,
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
	conn.WriteJSON(StreamMessage{Type: "complete"})
}
