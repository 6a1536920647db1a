package vector

import "math"

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity computes the cosine of the angle between a and b given
// their precomputed norms, clamped to [0,1]. Zero-norm inputs score 0.
func CosineSimilarity(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if len(a) != len(b) || len(a) == 0 || aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	cos := dot / (aNorm * bNorm)
	return math.Max(0, math.Min(1, cos))
}

// IsDegenerate reports whether every component's magnitude is below epsilon,
// signalling a non-functional embedding backend.
func IsDegenerate(v []float32, epsilon float64) bool {
	for _, x := range v {
		if math.Abs(float64(x)) >= epsilon {
			return false
		}
	}
	return true
}
