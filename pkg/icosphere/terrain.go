package icosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"
)

const (
	terrainOctaves     = 4
	terrainPersistence = 0.5
)

// terrain displaces points on the unit sphere along their normal with
// fractal simplex noise. The noise is a pure function of the point, so
// every face sharing a position displaces it to the same place.
type terrain struct {
	noise      opensimplex.Noise
	amplitudes []float64
	total      float64
	roughness  float64
}

func newTerrain(seed int64, roughness float64) *terrain {
	t := &terrain{
		noise:      opensimplex.New(seed),
		amplitudes: make([]float64, terrainOctaves),
		roughness:  roughness,
	}
	for i := range t.amplitudes {
		t.amplitudes[i] = math.Pow(terrainPersistence, float64(i))
		t.total += t.amplitudes[i]
	}
	return t
}

// eval returns fBm noise at p in [-1, 1].
func (t *terrain) eval(p mgl64.Vec3) float64 {
	var sum float64
	for octave, amp := range t.amplitudes {
		f := float64(int(1) << octave)
		sum += amp * t.noise.Eval3(p[0]*f, p[1]*f, p[2]*f)
	}
	return clamp(sum/t.total, -1, 1)
}

// displace scales the unit vector p to its terrain height on a sphere of
// the given radius.
func (t *terrain) displace(p mgl64.Vec3, radius float64) mgl64.Vec3 {
	return p.Mul(radius * (1 + t.roughness*t.eval(p)))
}
