package index

import "math"

// NormalizeL2 returns a unit-length copy of v. It returns false when v is
// empty, has zero norm or contains NaN or Inf.
func NormalizeL2(v []float32) ([]float32, bool) {
	if len(v) == 0 {
		return nil, false
	}
	var sum float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		sum += f * f
	}
	if sum == 0 {
		return nil, false
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out, true
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
