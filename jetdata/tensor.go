package jetdata

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// This file holds the two tensor values the pipeline assembles. Both store
// their data in a flat, row-major float32 buffer next to explicit dimension
// fields; reshaping into nested slices happens only at the gomlx boundary.
// Every transform returns a new value — buffers are never mutated after
// construction, so row slices handed out by Example/Row must not alias back
// into a tensor that is still being built.

// ParticleTensor holds per-particle features with dimensions
// [jets, particles-per-jet, channels].
type ParticleTensor struct {
	Buf       []float32
	Jets      int
	Particles int
	Channels  int
}

// JetTensor holds per-jet aggregate features with dimensions
// [jets, channels].
type JetTensor struct {
	Buf      []float32
	Jets     int
	Channels int
}

// At returns the value for jet i, particle j, channel k.
func (t *ParticleTensor) At(i, j, k int) float32 {
	return t.Buf[(i*t.Particles+j)*t.Channels+k]
}

// Example returns a copy of jet i's particle block, flattened to
// [particles*channels].
func (t *ParticleTensor) Example(i int) []float32 {
	stride := t.Particles * t.Channels
	out := make([]float32, stride)
	copy(out, t.Buf[i*stride:(i+1)*stride])
	return out
}

// truncate keeps the first keep particles of every jet. Identity when the
// tensor already fits.
func (t *ParticleTensor) truncate(keep int) *ParticleTensor {
	if keep >= t.Particles {
		return t
	}
	out := &ParticleTensor{
		Buf:       make([]float32, t.Jets*keep*t.Channels),
		Jets:      t.Jets,
		Particles: keep,
		Channels:  t.Channels,
	}
	for i := 0; i < t.Jets; i++ {
		src := t.Buf[i*t.Particles*t.Channels:]
		copy(out.Buf[i*keep*t.Channels:(i+1)*keep*t.Channels], src[:keep*t.Channels])
	}
	return out
}

// reorder gathers channels so that output channel c holds input channel
// perm[c]. Identity permutations return the tensor unchanged.
func (t *ParticleTensor) reorder(perm []int) *ParticleTensor {
	if isIdentityPermutation(perm, t.Channels) {
		return t
	}
	out := &ParticleTensor{
		Buf:       make([]float32, t.Jets*t.Particles*len(perm)),
		Jets:      t.Jets,
		Particles: t.Particles,
		Channels:  len(perm),
	}
	rows := t.Jets * t.Particles
	for r := 0; r < rows; r++ {
		src := t.Buf[r*t.Channels:]
		dst := out.Buf[r*len(perm):]
		for c, p := range perm {
			dst[c] = src[p]
		}
	}
	return out
}

// gather selects jets by index, in order. Used to apply the split
// permutation-and-slice.
func (t *ParticleTensor) gather(rows []int) *ParticleTensor {
	stride := t.Particles * t.Channels
	out := &ParticleTensor{
		Buf:       make([]float32, len(rows)*stride),
		Jets:      len(rows),
		Particles: t.Particles,
		Channels:  t.Channels,
	}
	for i, r := range rows {
		copy(out.Buf[i*stride:(i+1)*stride], t.Buf[r*stride:(r+1)*stride])
	}
	return out
}

// concatParticleTensors stacks per-type tensors along the jet axis,
// preserving their row order.
func concatParticleTensors(parts []*ParticleTensor) (*ParticleTensor, error) {
	total := 0
	for i, p := range parts {
		if p.Particles != parts[0].Particles || p.Channels != parts[0].Channels {
			return nil, fmt.Errorf("particle tensor %d has shape [%d %d %d], want [* %d %d]",
				i, p.Jets, p.Particles, p.Channels, parts[0].Particles, parts[0].Channels)
		}
		total += p.Jets
	}
	out := &ParticleTensor{
		Buf:       make([]float32, 0, total*parts[0].Particles*parts[0].Channels),
		Jets:      total,
		Particles: parts[0].Particles,
		Channels:  parts[0].Channels,
	}
	for _, p := range parts {
		out.Buf = append(out.Buf, p.Buf...)
	}
	return out, nil
}

// ToGomlx converts the tensor into a 3-D gomlx tensor.
func (t *ParticleTensor) ToGomlx() *tensors.Tensor {
	if t.Jets == 0 || t.Particles == 0 || t.Channels == 0 {
		empty := make([][][]float32, 0)
		return tensors.FromAnyValue(empty)
	}
	data := make([][][]float32, t.Jets)
	idx := 0
	for i := 0; i < t.Jets; i++ {
		data[i] = make([][]float32, t.Particles)
		for j := 0; j < t.Particles; j++ {
			data[i][j] = t.Buf[idx : idx+t.Channels]
			idx += t.Channels
		}
	}
	return tensors.FromAnyValue(data)
}

// At returns the value for jet i, channel k.
func (t *JetTensor) At(i, k int) float32 {
	return t.Buf[i*t.Channels+k]
}

// Row returns a copy of jet i's feature vector.
func (t *JetTensor) Row(i int) []float32 {
	out := make([]float32, t.Channels)
	copy(out, t.Buf[i*t.Channels:(i+1)*t.Channels])
	return out
}

// reorder gathers channels so that output channel c holds input channel
// perm[c]. Identity permutations return the tensor unchanged.
func (t *JetTensor) reorder(perm []int) *JetTensor {
	if isIdentityPermutation(perm, t.Channels) {
		return t
	}
	out := &JetTensor{
		Buf:      make([]float32, t.Jets*len(perm)),
		Jets:     t.Jets,
		Channels: len(perm),
	}
	for r := 0; r < t.Jets; r++ {
		src := t.Buf[r*t.Channels:]
		dst := out.Buf[r*len(perm):]
		for c, p := range perm {
			dst[c] = src[p]
		}
	}
	return out
}

// gather selects jets by index, in order.
func (t *JetTensor) gather(rows []int) *JetTensor {
	out := &JetTensor{
		Buf:      make([]float32, len(rows)*t.Channels),
		Jets:     len(rows),
		Channels: t.Channels,
	}
	for i, r := range rows {
		copy(out.Buf[i*t.Channels:(i+1)*t.Channels], t.Buf[r*t.Channels:(r+1)*t.Channels])
	}
	return out
}

// concatJetTensors stacks per-type tensors along the jet axis, preserving
// their row order.
func concatJetTensors(parts []*JetTensor) (*JetTensor, error) {
	total := 0
	for i, p := range parts {
		if p.Channels != parts[0].Channels {
			return nil, fmt.Errorf("jet tensor %d has %d channels, want %d", i, p.Channels, parts[0].Channels)
		}
		total += p.Jets
	}
	out := &JetTensor{
		Buf:      make([]float32, 0, total*parts[0].Channels),
		Jets:     total,
		Channels: parts[0].Channels,
	}
	for _, p := range parts {
		out.Buf = append(out.Buf, p.Buf...)
	}
	return out, nil
}

// ToGomlx converts the tensor into a 2-D gomlx tensor.
func (t *JetTensor) ToGomlx() *tensors.Tensor {
	if t.Jets == 0 || t.Channels == 0 {
		empty := make([][]float32, 0)
		return tensors.FromAnyValue(empty)
	}
	data := make([][]float32, t.Jets)
	for i := 0; i < t.Jets; i++ {
		data[i] = t.Buf[i*t.Channels : (i+1)*t.Channels]
	}
	return tensors.FromAnyValue(data)
}
