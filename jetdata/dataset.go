// Package jetdata assembles labeled jet datasets from the per-type raw
// archives published on Zenodo and presents them as examples suitable for
// model training.
//
// Assembly is deterministic: jet types load in a fixed order, and the
// train/valid/test partitioning comes from a single seeded permutation, so
// separate invocations that share a seed and fraction triple slice the same
// row set consistently across split names. The particle and jet tensors stay
// row-aligned through every step.
//
// Notes on gomlx tensors: assembled data lives in contiguous float32 buffers
// alongside shape metadata; conversion into gomlx tensors happens only at
// the Dataset boundary (ToGomlx, Yield), keeping the pipeline itself free of
// any particular tensor API.
package jetdata

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Dataset is the labeled-example collection contract the assembled tensors
// are presented through. Example and Batch return the particle block and the
// jet feature vector of one logical example; whichever kind was not
// requested comes back nil.
//
// The gomlx methods (Yield/Restart via train.Dataset) batch sequentially
// over the current example order; Shuffle reshuffles that order without
// touching the underlying tensors.
type Dataset interface {
	Len() int
	Example(i int) (particles []float32, jets []float32, err error)
	Batch(indices []int) (particles [][]float32, jets [][]float32, err error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface.
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}

// JetDataset wraps one assembled split as a Dataset. Normalisers from the
// Config are applied once here, over the full tensors; per-example
// transforms run inside Example.
type JetDataset struct {
	// Config the dataset was assembled with (after defaulting).
	Config Config

	// BatchSize used by Yield.
	BatchSize int

	particles *ParticleTensor
	jets      *JetTensor

	// order maps dataset position to tensor row; Shuffle permutes it.
	order  []int
	cursor int
}

// NewJetDataset assembles the configured split and wraps it. Assembly errors
// pass through from GetData unchanged.
func NewJetDataset(cfg Config) (*JetDataset, error) {
	cfg = cfg.withDefaults()
	result, err := GetData(cfg)
	if err != nil {
		return nil, err
	}

	d := &JetDataset{
		Config:    cfg,
		BatchSize: 32,
	}
	if t, ok := result.Particles(); ok {
		d.particles = normaliseParticles(t, cfg.ParticleNormalisation)
	}
	if t, ok := result.Jets(); ok {
		d.jets = normaliseJets(t, cfg.JetNormalisation)
	}

	d.order = make([]int, result.Len())
	for i := range d.order {
		d.order[i] = i
	}
	return d, nil
}

func normaliseParticles(t *ParticleTensor, n Normaliser) *ParticleTensor {
	if n == nil {
		return t
	}
	if n.NeedsDeriving() {
		n.Derive(t.Buf, t.Channels)
	}
	return &ParticleTensor{
		Buf:       n.Apply(t.Buf, t.Channels),
		Jets:      t.Jets,
		Particles: t.Particles,
		Channels:  t.Channels,
	}
}

func normaliseJets(t *JetTensor, n Normaliser) *JetTensor {
	if n == nil {
		return t
	}
	if n.NeedsDeriving() {
		n.Derive(t.Buf, t.Channels)
	}
	return &JetTensor{
		Buf:      n.Apply(t.Buf, t.Channels),
		Jets:     t.Jets,
		Channels: t.Channels,
	}
}

// Len returns the number of examples in this split.
func (d *JetDataset) Len() int {
	return len(d.order)
}

// Example returns example i under the current order. The particle block is
// flattened to [numParticles*channels]; both slices are fresh copies, safe
// for the caller to keep.
func (d *JetDataset) Example(i int) ([]float32, []float32, error) {
	if i < 0 || i >= len(d.order) {
		return nil, nil, fmt.Errorf("index %d out of range [0, %d)", i, len(d.order))
	}
	row := d.order[i]

	var particles []float32
	if d.particles != nil {
		particles = d.particles.Example(row)
		if d.Config.ParticleTransform != nil {
			particles = d.Config.ParticleTransform(particles)
		}
	}
	var jets []float32
	if d.jets != nil {
		jets = d.jets.Row(row)
		if d.Config.JetTransform != nil {
			jets = d.Config.JetTransform(jets)
		}
	}
	return particles, jets, nil
}

// Batch returns the examples at the given positions.
func (d *JetDataset) Batch(indices []int) ([][]float32, [][]float32, error) {
	var particles, jets [][]float32
	if d.particles != nil {
		particles = make([][]float32, len(indices))
	}
	if d.jets != nil {
		jets = make([][]float32, len(indices))
	}
	for pos, i := range indices {
		p, j, err := d.Example(i)
		if err != nil {
			return nil, nil, err
		}
		if particles != nil {
			particles[pos] = p
		}
		if jets != nil {
			jets[pos] = j
		}
	}
	return particles, jets, nil
}

// Shuffle reshuffles the example order with a fresh generator seeded from
// seed, and rewinds the Yield cursor.
func (d *JetDataset) Shuffle(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	d.cursor = 0
}

// Name returns the dataset name for gomlx training loops.
func (d *JetDataset) Name() string {
	return fmt.Sprintf("JetDataset(%s)", d.Config.Split)
}

// Yield returns the next batch as gomlx tensors: the particle tensor (when
// present) as inputs, the jet tensor (when present) as labels. It returns
// io.EOF once the epoch is exhausted; Restart begins a new epoch.
func (d *JetDataset) Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error) {
	if d.cursor >= len(d.order) {
		return nil, nil, nil, io.EOF
	}
	end := d.cursor + d.BatchSize
	if end > len(d.order) {
		end = len(d.order)
	}
	indices := make([]int, end-d.cursor)
	for i := range indices {
		indices[i] = d.cursor + i
	}
	d.cursor = end

	particleBatch, jetBatch, err := d.Batch(indices)
	if err != nil {
		return nil, nil, nil, err
	}

	var inputs, labels []*tensors.Tensor
	if particleBatch != nil {
		t, err := particleBatchTensor(particleBatch, d.particles.Particles, d.particles.Channels)
		if err != nil {
			return nil, nil, nil, err
		}
		inputs = append(inputs, t)
	}
	if jetBatch != nil {
		labels = append(labels, tensors.FromAnyValue(jetBatch))
	}
	return nil, inputs, labels, nil
}

// Restart resets the epoch cursor for gomlx training loops.
func (d *JetDataset) Restart() error {
	d.cursor = 0
	return nil
}

// particleBatchTensor reshapes flat per-example particle blocks into a 3-D
// gomlx tensor [batch, particles, channels].
func particleBatchTensor(batch [][]float32, particles, channels int) (*tensors.Tensor, error) {
	data := make([][][]float32, len(batch))
	for i, flat := range batch {
		if len(flat) != particles*channels {
			return nil, fmt.Errorf("example %d has %d values, want %d", i, len(flat), particles*channels)
		}
		data[i] = make([][]float32, particles)
		for j := 0; j < particles; j++ {
			data[i][j] = flat[j*channels : (j+1)*channels]
		}
	}
	return tensors.FromAnyValue(data), nil
}
