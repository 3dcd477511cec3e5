package jetdata

import "fmt"

// Default assembly parameters, matching the published dataset conventions.
const (
	DefaultNumParticles = 30
	DefaultSeed         = 42
)

// DefaultSplitFraction is the train/valid/test split used when the Config
// leaves SplitFraction zero.
var DefaultSplitFraction = [3]float64{0.7, 0.15, 0.15}

// Config holds the caller-facing assembly parameters. The zero value of a
// field selects its default; see each field.
type Config struct {
	// JetTypes selects which jet classes to load, e.g. []string{"g", "t"}.
	// nil or []string{"all"} selects every type.
	JetTypes []string

	// DataDir is where raw source files live (and are cached after
	// download). Defaults to ".".
	DataDir string

	// ParticleFeatures lists the per-particle channels to retrieve, in the
	// order the caller wants them. nil selects the full canonical order; an
	// explicitly empty (non-nil) list selects no particle features at all.
	ParticleFeatures []string

	// JetFeatures lists the per-jet channels to retrieve. Same nil vs empty
	// convention as ParticleFeatures.
	JetFeatures []string

	// NumParticles is the per-jet particle cap, at most MaxParticles.
	// Caps above 30 switch retrieval to the 150-particle sources.
	// Defaults to DefaultNumParticles.
	NumParticles int

	// Split names the partition to return: train, valid, test or all.
	// Defaults to "train".
	Split string

	// SplitFraction is the (train, valid, test) fraction triple. Defaults
	// to DefaultSplitFraction. A sum below one leaves the remainder in the
	// test split.
	SplitFraction [3]float64

	// Seed drives the pre-split row permutation. Calls that must agree on a
	// partitioning (e.g. one call per split name) must use the same seed.
	Seed int64

	// Source retrieves and decodes raw files. Defaults to a ZenodoSource.
	Source RawSource

	// ParticleNormalisation and JetNormalisation are applied once over the
	// whole assembled tensors by NewJetDataset. GetData leaves data raw.
	ParticleNormalisation Normaliser
	JetNormalisation      Normaliser

	// ParticleTransform and JetTransform are per-example hooks applied by
	// JetDataset.Example. Opaque to the assembly pipeline.
	ParticleTransform func([]float32) []float32
	JetTransform      func([]float32) []float32
}

func (c Config) withDefaults() Config {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.ParticleFeatures == nil {
		c.ParticleFeatures = append([]string(nil), ParticleFeatureOrder...)
	}
	if c.JetFeatures == nil {
		c.JetFeatures = append([]string(nil), JetFeatureOrder...)
	}
	if c.NumParticles == 0 {
		c.NumParticles = DefaultNumParticles
	}
	if c.Split == "" {
		c.Split = "train"
	}
	if c.SplitFraction == [3]float64{} {
		c.SplitFraction = DefaultSplitFraction
	}
	if c.Source == nil {
		c.Source = &ZenodoSource{}
	}
	return c
}

// Result is the assembled pair of row-aligned tensors. Either side may be
// absent when its feature list was empty; use the comma-ok accessors.
type Result struct {
	particles *ParticleTensor
	jets      *JetTensor
}

// Particles returns the assembled particle tensor, if one was requested.
func (r Result) Particles() (*ParticleTensor, bool) {
	return r.particles, r.particles != nil
}

// Jets returns the assembled jet tensor, if one was requested.
func (r Result) Jets() (*JetTensor, bool) {
	return r.jets, r.jets != nil
}

// Len returns the shared row count of whichever tensors are present.
func (r Result) Len() int {
	if r.particles != nil {
		return r.particles.Jets
	}
	if r.jets != nil {
		return r.jets.Jets
	}
	return 0
}

// GetData assembles the requested dataset split: it validates the full
// configuration up front (before any file I/O), loads every requested jet
// type in class-index order, concatenates the per-type tensors row-wise,
// then applies one seeded permutation and the split's index slice
// identically to both tensors. Repeated calls with the same seed and
// fractions partition the same row set consistently across split names.
func GetData(cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	types, err := resolveJetTypes(cfg.JetTypes)
	if err != nil {
		return Result{}, err
	}
	particleFeatures, err := ValidateFeatures(cfg.ParticleFeatures, ParticleFeatureOrder)
	if err != nil {
		return Result{}, err
	}
	jetFeatures, err := ValidateFeatures(cfg.JetFeatures, JetFeatureOrder)
	if err != nil {
		return Result{}, err
	}
	if len(particleFeatures) == 0 && len(jetFeatures) == 0 {
		return Result{}, fmt.Errorf("%w: both feature lists are empty", ErrEmptyRequest)
	}
	if cfg.NumParticles < 1 || cfg.NumParticles > MaxParticles {
		return Result{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCap, cfg.NumParticles, MaxParticles)
	}
	if !validSplit(cfg.Split) {
		return Result{}, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidSplit, cfg.Split, Splits)
	}
	if err := validateFractions(cfg.SplitFraction); err != nil {
		return Result{}, err
	}

	resolution := Res30
	if cfg.NumParticles > coarseParticleCap {
		resolution = Res150
	}

	var particleParts []*ParticleTensor
	var jetParts []*JetTensor
	for _, jt := range types {
		particles, jets, err := loadJetType(typeRequest{
			jetType:          jt,
			dataDir:          cfg.DataDir,
			numParticles:     cfg.NumParticles,
			resolution:       resolution,
			particleFeatures: particleFeatures,
			jetFeatures:      jetFeatures,
			source:           cfg.Source,
		})
		if err != nil {
			return Result{}, err
		}
		if particles != nil {
			particleParts = append(particleParts, particles)
		}
		if jets != nil {
			jetParts = append(jetParts, jets)
		}
	}

	var result Result
	if len(particleParts) > 0 {
		result.particles, err = concatParticleTensors(particleParts)
		if err != nil {
			return Result{}, err
		}
	}
	if len(jetParts) > 0 {
		result.jets, err = concatJetTensors(jetParts)
		if err != nil {
			return Result{}, err
		}
	}
	if result.particles != nil && result.jets != nil && result.particles.Jets != result.jets.Jets {
		return Result{}, fmt.Errorf("particle and jet tensors disagree on row count: %d vs %d",
			result.particles.Jets, result.jets.Jets)
	}

	n := result.Len()
	lcut, rcut, err := SplitBounds(n, cfg.Split, cfg.SplitFraction)
	if err != nil {
		return Result{}, err
	}
	rows := SplitPermutation(n, cfg.Seed)[lcut:rcut]
	if result.particles != nil {
		result.particles = result.particles.gather(rows)
	}
	if result.jets != nil {
		result.jets = result.jets.gather(rows)
	}
	return result, nil
}
