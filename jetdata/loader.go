package jetdata

import "fmt"

// verbatimJetChannels is how many raw jet channels (pt, eta, mass) are kept
// untouched between the injected class label and the clamped trailing
// channels.
const verbatimJetChannels = 3

// typeRequest carries everything loadJetType needs to produce one jet
// type's tensors. Feature lists are pre-validated; an empty list means that
// kind is not wanted and its output stays nil.
type typeRequest struct {
	jetType          JetType
	dataDir          string
	numParticles     int
	resolution       Resolution
	particleFeatures []string
	jetFeatures      []string
	source           RawSource
}

// loadJetType reads one type's raw arrays and applies the per-type steps:
// particle truncation and channel reorder, and on the jet side class-label
// injection, particle-count clamping and channel reorder. No row reordering
// happens here — both outputs keep the raw file's row count and order, which
// is what keeps the two tensors row-aligned through assembly.
func loadJetType(req typeRequest) (*ParticleTensor, *JetTensor, error) {
	if len(req.particleFeatures) == 0 && len(req.jetFeatures) == 0 {
		return nil, nil, nil
	}

	path, err := req.source.EnsureLocal(req.dataDir, req.jetType, req.resolution)
	if err != nil {
		return nil, nil, err
	}

	var particles *ParticleTensor
	if len(req.particleFeatures) > 0 {
		particles, err = loadParticleArray(req, path)
		if err != nil {
			return nil, nil, err
		}
	}

	var jets *JetTensor
	if len(req.jetFeatures) > 0 {
		jets, err = loadJetArray(req, path)
		if err != nil {
			return nil, nil, err
		}
	}

	if particles != nil && jets != nil && particles.Jets != jets.Jets {
		return nil, nil, fmt.Errorf("%s: particle and jet arrays disagree on row count: %d vs %d",
			path, particles.Jets, jets.Jets)
	}
	return particles, jets, nil
}

func loadParticleArray(req typeRequest, path string) (*ParticleTensor, error) {
	raw, err := req.source.Read(path, particleArrayName)
	if err != nil {
		return nil, err
	}
	if len(raw.Shape) != 3 {
		return nil, fmt.Errorf("%s: %s has %d dimensions, want 3", path, particleArrayName, len(raw.Shape))
	}
	t := &ParticleTensor{
		Buf:       raw.Data,
		Jets:      raw.Shape[0],
		Particles: raw.Shape[1],
		Channels:  raw.Shape[2],
	}
	if t.Channels != len(ParticleFeatureOrder) {
		return nil, fmt.Errorf("%s: %s has %d channels, want %d", path, particleArrayName, t.Channels, len(ParticleFeatureOrder))
	}
	t = t.truncate(req.numParticles)
	return t.reorder(featurePermutation(req.particleFeatures, ParticleFeatureOrder)), nil
}

func loadJetArray(req typeRequest, path string) (*JetTensor, error) {
	raw, err := req.source.Read(path, jetArrayName)
	if err != nil {
		return nil, err
	}
	if len(raw.Shape) != 2 {
		return nil, fmt.Errorf("%s: %s has %d dimensions, want 2", path, jetArrayName, len(raw.Shape))
	}
	rows, rawChannels := raw.Shape[0], raw.Shape[1]
	if rawChannels < verbatimJetChannels {
		return nil, fmt.Errorf("%s: %s has only %d channels", path, jetArrayName, rawChannels)
	}
	if rawChannels+1 != len(JetFeatureOrder) {
		return nil, fmt.Errorf("%s: %s has %d channels, want %d", path, jetArrayName, rawChannels, len(JetFeatureOrder)-1)
	}

	// New leading channel holds the class index; the next three raw channels
	// pass through verbatim; everything after is a particle count and gets
	// clamped to the requested cap.
	label := float32(req.jetType.ClassIndex())
	limit := float32(req.numParticles)
	channels := rawChannels + 1
	t := &JetTensor{
		Buf:      make([]float32, rows*channels),
		Jets:     rows,
		Channels: channels,
	}
	for i := 0; i < rows; i++ {
		src := raw.Data[i*rawChannels : (i+1)*rawChannels]
		dst := t.Buf[i*channels : (i+1)*channels]
		dst[0] = label
		copy(dst[1:1+verbatimJetChannels], src[:verbatimJetChannels])
		for c := verbatimJetChannels; c < rawChannels; c++ {
			dst[c+1] = min(src[c], limit)
		}
	}
	return t.reorder(featurePermutation(req.jetFeatures, JetFeatureOrder)), nil
}
