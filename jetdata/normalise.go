package jetdata

import "math"

// Normaliser rescales a feature tensor channel-wise. Implementations whose
// parameters depend on the data report NeedsDeriving and are given the full
// buffer once before Apply is called.
type Normaliser interface {
	NeedsDeriving() bool
	Derive(data []float32, channels int)
	Apply(data []float32, channels int) []float32
}

// FeaturewiseLinearBounded maps each channel c through
// v/Maxes[c]*Norm + Shifts[c], bounding features to roughly [-Norm, Norm]
// before the shift. Leaving Maxes nil derives them from the data as the
// per-channel maximum absolute value.
type FeaturewiseLinearBounded struct {
	// Norm is the target bound. Zero means 1.
	Norm float32

	// Shifts holds the per-channel offsets added after scaling. nil means
	// no shift; shorter-than-channels slices leave trailing channels
	// unshifted.
	Shifts []float32

	// Maxes holds the per-channel scale denominators. nil derives them.
	Maxes []float32
}

// FPNDNorm is the particle feature normalisation used for ParticleNet-based
// evaluation, as defined in arXiv:2106.11535.
var FPNDNorm = &FeaturewiseLinearBounded{
	Norm:   1.0,
	Shifts: []float32{0.0, 0.0, -0.5},
	Maxes:  []float32{1.6211985349655151, 0.520724892616272, 0.8934717178344727},
}

func (n *FeaturewiseLinearBounded) NeedsDeriving() bool { return n.Maxes == nil }

// Derive computes per-channel maximum absolute values over data, which is a
// flat row-major buffer with the given channel count.
func (n *FeaturewiseLinearBounded) Derive(data []float32, channels int) {
	maxes := make([]float32, channels)
	for i, v := range data {
		c := i % channels
		if abs := float32(math.Abs(float64(v))); abs > maxes[c] {
			maxes[c] = abs
		}
	}
	n.Maxes = maxes
}

// Apply returns a rescaled copy of data. Channels without a usable max are
// passed through unscaled.
func (n *FeaturewiseLinearBounded) Apply(data []float32, channels int) []float32 {
	norm := n.Norm
	if norm == 0 {
		norm = 1
	}
	out := make([]float32, len(data))
	for i, v := range data {
		c := i % channels
		if c < len(n.Maxes) && n.Maxes[c] != 0 {
			v = v / n.Maxes[c] * norm
		}
		if c < len(n.Shifts) {
			v += n.Shifts[c]
		}
		out[i] = v
	}
	return out
}
