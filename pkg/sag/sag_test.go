package sag

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFlat_Intercept(t *testing.T) {
	flat := Flat{}

	tt, ok := flat.Intercept(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0, 0, 1})
	if !ok {
		t.Fatal("Expected intercept, but got miss")
	}
	if math.Abs(tt-5.0) > 1e-9 {
		t.Errorf("Expected t=5, got t=%f", tt)
	}

	// Parallel to the plane
	if _, ok := flat.Intercept(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{1, 0, 0}); ok {
		t.Error("Expected miss for ray parallel to plane")
	}

	// Plane behind the origin
	if _, ok := flat.Intercept(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0, 0, -1}); ok {
		t.Error("Expected miss for plane behind ray origin")
	}
}

func TestParabolic_Height(t *testing.T) {
	tests := []struct {
		name     string
		focal    float64
		x, y     float64
		expected float64
	}{
		{name: "vertex", focal: 500, x: 0, y: 0, expected: 0},
		{name: "on axis x", focal: 500, x: 100, y: 0, expected: 5},
		{name: "diagonal", focal: 500, x: 60, y: 80, expected: 5},
		{name: "negative focal", focal: -500, x: 100, y: 0, expected: -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NewParabolic(tc.focal).Height(tc.x, tc.y)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("Expected height %f, got %f", tc.expected, got)
			}
		})
	}
}

func TestParabolic_Intercept_AxialRay(t *testing.T) {
	p := NewParabolic(-500)
	origin := mgl64.Vec3{0, 0, -600}
	dir := mgl64.Vec3{0, 0, 1}

	tt, ok := p.Intercept(origin, dir)
	if !ok {
		t.Fatal("Expected intercept, but got miss")
	}
	if math.Abs(tt-600.0) > 1e-9 {
		t.Errorf("Expected t=600 at vertex, got t=%f", tt)
	}
}

func TestParabolic_Intercept_MarginalRay(t *testing.T) {
	// Ray at lateral height 100 should land where the sag is -5.
	p := NewParabolic(-500)
	origin := mgl64.Vec3{100, 0, -600}
	dir := mgl64.Vec3{0, 0, 1}

	tt, ok := p.Intercept(origin, dir)
	if !ok {
		t.Fatal("Expected intercept, but got miss")
	}
	z := origin.Z() + tt*dir.Z()
	if math.Abs(z-(-5.0)) > 1e-9 {
		t.Errorf("Expected intercept at z=-5, got z=%f", z)
	}
}

func TestParabolic_FocusesCollimatedBundle(t *testing.T) {
	// Collimated rays traveling +z off a mirror with focal parameter -f
	// must cross the axis at exactly z = -f, independent of ray height.
	p := NewParabolic(-500)
	for _, h := range []float64{10, 50, 100} {
		origin := mgl64.Vec3{h, 0, -600}
		dir := mgl64.Vec3{0, 0, 1}
		tt, ok := p.Intercept(origin, dir)
		if !ok {
			t.Fatalf("Expected intercept at height %f", h)
		}
		hit := origin.Add(dir.Mul(tt))
		n := p.Normal(hit.X(), hit.Y())
		reflected := dir.Sub(n.Mul(2 * dir.Dot(n)))

		// Where does the reflected ray cross x = 0?
		tAxis := -hit.X() / reflected.X()
		zCross := hit.Z() + tAxis*reflected.Z()
		if math.Abs(zCross-(-500.0)) > 1e-9 {
			t.Errorf("Height %f: expected axis crossing at z=-500, got z=%f", h, zCross)
		}
	}
}

func TestSpherical_MatchesConicZeroK(t *testing.T) {
	sphere := NewSpherical(-200)
	conic := NewConic(-200, 0)

	for _, r := range []float64{0, 10, 25, 50} {
		hs := sphere.Height(r, 0)
		hc := conic.Height(r, 0)
		if math.Abs(hs-hc) > 1e-12 {
			t.Errorf("r=%f: sphere height %f != conic(k=0) height %f", r, hs, hc)
		}
	}
}

func TestConic_ParabolicLimit(t *testing.T) {
	// Conic with k=-1 and R=2f is the same surface as Parabolic(f).
	parab := NewParabolic(-500)
	conic := NewConic(-1000, -1)

	for _, r := range []float64{0, 20, 60, 100} {
		hp := parab.Height(r, 0)
		hc := conic.Height(r, 0)
		if math.Abs(hp-hc) > 1e-9 {
			t.Errorf("r=%f: parabolic height %f != conic height %f", r, hp, hc)
		}
	}

	origin := mgl64.Vec3{80, 0, -600}
	dir := mgl64.Vec3{0, 0, 1}
	tp, okP := parab.Intercept(origin, dir)
	tc, okC := conic.Intercept(origin, dir)
	if !okP || !okC {
		t.Fatal("Expected both intercepts to hit")
	}
	if math.Abs(tp-tc) > 1e-9 {
		t.Errorf("Expected matching intercepts, got parabolic t=%f conic t=%f", tp, tc)
	}
}

func TestSpherical_Intercept_NearBranch(t *testing.T) {
	// Concave mirror R=-100 at the local origin: a ray arriving along +z
	// must hit the near branch of the sphere, not the far one.
	s := NewSpherical(-100)
	origin := mgl64.Vec3{0, 0, -50}
	dir := mgl64.Vec3{0, 0, 1}

	tt, ok := s.Intercept(origin, dir)
	if !ok {
		t.Fatal("Expected intercept, but got miss")
	}
	z := origin.Z() + tt*dir.Z()
	if math.Abs(z) > 1e-9 {
		t.Errorf("Expected near-branch hit at z=0, got z=%f", z)
	}
}

func TestSpherical_Intercept_Miss(t *testing.T) {
	s := NewSpherical(-100)

	// Lateral offset beyond the sphere's extent
	if _, ok := s.Intercept(mgl64.Vec3{150, 0, -50}, mgl64.Vec3{0, 0, 1}); ok {
		t.Error("Expected miss for ray outside sphere extent")
	}

	// Surface entirely behind the ray
	if _, ok := s.Intercept(mgl64.Vec3{0, 0, -50}, mgl64.Vec3{0, 0, -1}); ok {
		t.Error("Expected miss for surface behind ray origin")
	}
}

func TestNormal_UnitLengthAndDownward(t *testing.T) {
	profiles := []struct {
		name    string
		profile Profile
	}{
		{name: "flat", profile: Flat{}},
		{name: "parabolic", profile: NewParabolic(-500)},
		{name: "spherical", profile: NewSpherical(-200)},
		{name: "conic", profile: NewConic(-300, -1.5)},
	}

	for _, tc := range profiles {
		t.Run(tc.name, func(t *testing.T) {
			for _, r := range []float64{0, 15, 40} {
				n := tc.profile.Normal(r, r/2)
				if math.Abs(n.Len()-1.0) > 1e-9 {
					t.Errorf("r=%f: expected unit normal, got length %f", r, n.Len())
				}
				if n.Z() >= 0 {
					t.Errorf("r=%f: expected negative z component, got %f", r, n.Z())
				}
			}
		})
	}
}

func TestSolveQuadratic(t *testing.T) {
	tests := []struct {
		name     string
		a, b, c  float64
		expected []float64
	}{
		{name: "two roots ascending", a: 1, b: -3, c: 2, expected: []float64{1, 2}},
		{name: "repeated root", a: 1, b: -2, c: 1, expected: []float64{1, 1}},
		{name: "no real roots", a: 1, b: 0, c: 1, expected: nil},
		{name: "linear fallback", a: 0, b: 2, c: -6, expected: []float64{3}},
		{name: "degenerate", a: 0, b: 0, c: 1, expected: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			roots, n := solveQuadratic(tc.a, tc.b, tc.c)
			if n != len(tc.expected) {
				t.Fatalf("Expected %d roots, got %d", len(tc.expected), n)
			}
			for i := 0; i < n; i++ {
				if math.Abs(roots[i]-tc.expected[i]) > 1e-9 {
					t.Errorf("Root %d: expected %f, got %f", i, tc.expected[i], roots[i])
				}
			}
		})
	}
}
