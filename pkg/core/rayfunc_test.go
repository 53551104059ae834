package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// buildRayFunction assembles a single-surface result with the given sensor
// states so the aggregate queries can be exercised directly.
func buildRayFunction(grid InputGrid, sensor []Ray) *RayFunction {
	launch := make([]Ray, len(sensor))
	for i := range launch {
		launch[i] = NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, sensor[i].Wavelength)
	}
	return &RayFunction{
		Grid:         grid,
		SurfaceNames: []string{"input", "sensor"},
		States:       [][]Ray{launch, sensor},
	}
}

func TestRayFunction_Centroid(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())

	// Four pupil rays landing at the corners of a square centered on (1, 2).
	positions := []mgl64.Vec3{
		{0, 1, 0},
		{2, 1, 0},
		{0, 3, 0},
		{2, 3, 0},
	}
	for i, p := range positions {
		sensor[i] = Ray{Position: p, Direction: mgl64.Vec3{0, 0, 1}, Wavelength: 550e-6, Alive: true}
	}

	rf := buildRayFunction(grid, sensor)
	centroid, ok := rf.Centroid(0, 0, 0)
	if !ok {
		t.Fatal("Expected centroid for live field point")
	}
	if math.Abs(centroid.X()-1.0) > 1e-9 || math.Abs(centroid.Y()-2.0) > 1e-9 {
		t.Errorf("Expected centroid (1, 2), got %v", centroid)
	}
}

func TestRayFunction_Centroid_IgnoresDeadRays(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())
	sensor[0] = Ray{Position: mgl64.Vec3{4, 0, 0}, Wavelength: 550e-6, Alive: true}
	for i := 1; i < len(sensor); i++ {
		sensor[i] = DeadRay(550e-6)
	}

	rf := buildRayFunction(grid, sensor)
	centroid, ok := rf.Centroid(0, 0, 0)
	if !ok {
		t.Fatal("Expected centroid from the single live ray")
	}
	if math.Abs(centroid.X()-4.0) > 1e-9 {
		t.Errorf("Expected centroid x=4 from live ray only, got %v", centroid)
	}
}

func TestRayFunction_Centroid_AllDead(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())
	for i := range sensor {
		sensor[i] = DeadRay(550e-6)
	}

	rf := buildRayFunction(grid, sensor)
	if _, ok := rf.Centroid(0, 0, 0); ok {
		t.Error("Expected no centroid when every pupil ray is dead")
	}
}

func TestRayFunction_Residuals(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())
	positions := []mgl64.Vec3{
		{0, 0, 0},
		{2, 0, 0},
		{0, 2, 0},
		{2, 2, 0},
	}
	for i, p := range positions {
		sensor[i] = Ray{Position: p, Wavelength: 550e-6, Alive: true}
	}

	rf := buildRayFunction(grid, sensor)
	residuals := rf.Residuals()

	// Centroid is (1, 1, 0); residuals are the corner offsets.
	expected := []mgl64.Vec3{
		{-1, -1, 0},
		{1, -1, 0},
		{-1, 1, 0},
		{1, 1, 0},
	}
	for i := range expected {
		if math.Abs(residuals[i].X()-expected[i].X()) > 1e-9 ||
			math.Abs(residuals[i].Y()-expected[i].Y()) > 1e-9 {
			t.Errorf("Residual %d: expected %v, got %v", i, expected[i], residuals[i])
		}
	}
}

func TestRayFunction_Residuals_DeadRaysStayNaN(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())
	sensor[0] = Ray{Position: mgl64.Vec3{1, 0, 0}, Wavelength: 550e-6, Alive: true}
	sensor[1] = Ray{Position: mgl64.Vec3{3, 0, 0}, Wavelength: 550e-6, Alive: true}
	sensor[2] = DeadRay(550e-6)
	sensor[3] = DeadRay(550e-6)

	rf := buildRayFunction(grid, sensor)
	residuals := rf.Residuals()

	if math.Abs(residuals[0].X()-(-1.0)) > 1e-9 {
		t.Errorf("Expected live residual x=-1, got %v", residuals[0])
	}
	if !math.IsNaN(residuals[2].X()) || !math.IsNaN(residuals[3].X()) {
		t.Error("Expected NaN residuals for dead rays")
	}
	if len(residuals) != grid.NumCells() {
		t.Errorf("Expected grid shape preserved, got %d residuals for %d cells", len(residuals), grid.NumCells())
	}
}

func TestRayFunction_AliveCount(t *testing.T) {
	grid := NewUniformGrid([]float64{550e-6}, 1, 2)
	sensor := make([]Ray, grid.NumCells())
	sensor[0] = Ray{Wavelength: 550e-6, Alive: true}
	sensor[1] = DeadRay(550e-6)
	sensor[2] = Ray{Wavelength: 550e-6, Alive: true}
	sensor[3] = DeadRay(550e-6)

	rf := buildRayFunction(grid, sensor)
	if got := rf.AliveCount(1); got != 2 {
		t.Errorf("Expected 2 live rays at sensor, got %d", got)
	}
	if got := rf.AliveCount(0); got != 4 {
		t.Errorf("Expected 4 live rays at launch, got %d", got)
	}
}

func TestDeadRay_Sentinel(t *testing.T) {
	r := DeadRay(550e-6)
	if r.Alive {
		t.Error("Expected dead ray to be not alive")
	}
	if !math.IsNaN(r.Position.X()) || !math.IsNaN(r.Position.Y()) || !math.IsNaN(r.Position.Z()) {
		t.Errorf("Expected NaN position, got %v", r.Position)
	}
	if r.Finite() {
		t.Error("Expected dead ray to be non-finite")
	}
	if r.Wavelength != 550e-6 {
		t.Errorf("Expected wavelength preserved, got %g", r.Wavelength)
	}
}
