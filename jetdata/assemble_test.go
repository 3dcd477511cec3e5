package jetdata

import (
	"errors"
	"testing"
)

// twoTypeSource registers gluon (100 rows, tags 0..99) and top (50 rows,
// tags 1000..1049) data, the scenario used throughout these tests.
func twoTypeSource() *memorySource {
	src := newMemorySource()
	src.add(Gluon, Res30, 100, 30, 0)
	src.add(TopQuark, Res30, 50, 30, 1000)
	return src
}

func twoTypeConfig(src *memorySource, split string) Config {
	return Config{
		JetTypes:     []string{"g", "t"},
		NumParticles: 30,
		Split:        split,
		Seed:         42,
		Source:       src,
	}
}

func TestGetData_SplitScenario(t *testing.T) {
	src := twoTypeSource()

	// Combined N = 150 at (0.7, 0.15, 0.15): expect 105/23/22 with zero
	// overlap across three calls differing only in split name.
	wantLens := map[string]int{"train": 105, "valid": 23, "test": 22}
	seen := make(map[float32]string)
	total := 0
	for split, want := range wantLens {
		result, err := GetData(twoTypeConfig(src, split))
		if err != nil {
			t.Fatalf("GetData(%s) error: %v", split, err)
		}
		if got := result.Len(); got != want {
			t.Fatalf("%s split has %d rows, want %d", split, got, want)
		}
		jets, ok := result.Jets()
		if !ok {
			t.Fatalf("%s split missing jet tensor", split)
		}
		for i := 0; i < jets.Jets; i++ {
			tag := jets.At(i, 1) // pt channel carries the row tag
			if other, dup := seen[tag]; dup {
				t.Fatalf("row tag %v appears in both %s and %s", tag, other, split)
			}
			seen[tag] = split
		}
		total += result.Len()
	}
	if total != 150 {
		t.Fatalf("splits cover %d rows, want 150", total)
	}
}

func TestGetData_RowAlignment(t *testing.T) {
	src := twoTypeSource()

	result, err := GetData(twoTypeConfig(src, "train"))
	if err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	particles, _ := result.Particles()
	jets, _ := result.Jets()
	if particles.Jets != jets.Jets {
		t.Fatalf("tensors disagree on row count: %d vs %d", particles.Jets, jets.Jets)
	}
	for i := 0; i < jets.Jets; i++ {
		// Both tensors tag every row with its raw origin; after truncation,
		// concatenation, permutation and slicing the tags must still agree.
		if particles.At(i, 0, 0) != jets.At(i, 1) {
			t.Fatalf("row %d misaligned: particle tag %v vs jet tag %v",
				i, particles.At(i, 0, 0), jets.At(i, 1))
		}
		// And the label channel must match the tag's type of origin.
		wantLabel := float32(Gluon.ClassIndex())
		if jets.At(i, 1) >= 1000 {
			wantLabel = float32(TopQuark.ClassIndex())
		}
		if jets.At(i, 0) != wantLabel {
			t.Fatalf("row %d: label %v does not match origin tag %v", i, jets.At(i, 0), jets.At(i, 1))
		}
	}
}

func TestGetData_Deterministic(t *testing.T) {
	a, err := GetData(twoTypeConfig(twoTypeSource(), "valid"))
	if err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	b, err := GetData(twoTypeConfig(twoTypeSource(), "valid"))
	if err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	ja, _ := a.Jets()
	jb, _ := b.Jets()
	for i := range ja.Buf {
		if ja.Buf[i] != jb.Buf[i] {
			t.Fatalf("repeated invocation diverged at %d: %v vs %v", i, ja.Buf[i], jb.Buf[i])
		}
	}
}

func TestGetData_EmptyParticleRequest(t *testing.T) {
	src := twoTypeSource()
	cfg := twoTypeConfig(src, "train")
	cfg.ParticleFeatures = []string{} // explicitly none
	cfg.JetFeatures = []string{"num_particles", "pt"}

	result, err := GetData(cfg)
	if err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	if _, ok := result.Particles(); ok {
		t.Fatalf("particle tensor should be absent")
	}
	jets, ok := result.Jets()
	if !ok {
		t.Fatalf("jet tensor should be present")
	}
	if jets.Channels != 2 {
		t.Fatalf("jet channels = %d, want 2", jets.Channels)
	}
	// Requested order is num_particles first, pt second.
	for i := 0; i < jets.Jets; i++ {
		if jets.At(i, 0) > 30 {
			t.Fatalf("row %d: first channel %v is not a clamped count", i, jets.At(i, 0))
		}
	}
}

func TestGetData_ValidationBeforeIO(t *testing.T) {
	src := twoTypeSource()

	cases := []struct {
		name string
		mut  func(*Config)
		want error
	}{
		{"unknown particle feature", func(c *Config) { c.ParticleFeatures = []string{"etarel", "px"} }, ErrUnknownFeature},
		{"unknown jet feature", func(c *Config) { c.JetFeatures = []string{"spin"} }, ErrUnknownFeature},
		{"invalid type", func(c *Config) { c.JetTypes = []string{"h"} }, ErrInvalidJetType},
		{"invalid split", func(c *Config) { c.Split = "eval" }, ErrInvalidSplit},
		{"bad fractions", func(c *Config) { c.SplitFraction = [3]float64{0.9, 0.9, 0} }, ErrInvalidFraction},
		{"cap too large", func(c *Config) { c.NumParticles = MaxParticles + 1 }, ErrInvalidCap},
		{"cap negative", func(c *Config) { c.NumParticles = -3 }, ErrInvalidCap},
		{"nothing requested", func(c *Config) {
			c.ParticleFeatures = []string{}
			c.JetFeatures = []string{}
		}, ErrEmptyRequest},
	}
	for _, tc := range cases {
		src.ensureCalls = nil
		cfg := twoTypeConfig(src, "train")
		tc.mut(&cfg)
		if _, err := GetData(cfg); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
		if len(src.ensureCalls) != 0 {
			t.Fatalf("%s: validation error after retrieval started (%v)", tc.name, src.ensureCalls)
		}
	}
}

func TestGetData_ResolutionVariant(t *testing.T) {
	src := newMemorySource()
	src.add(Gluon, Res30, 5, 30, 0)
	src.add(Gluon, Res150, 5, 150, 0)

	cfg := Config{JetTypes: []string{"g"}, NumParticles: 30, Split: "all", Source: src}
	if _, err := GetData(cfg); err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	if len(src.ensureCalls) != 1 || src.ensureCalls[0] != "g" {
		t.Fatalf("cap 30 should fetch the coarse source, got %v", src.ensureCalls)
	}

	src.ensureCalls = nil
	cfg.NumParticles = 31
	result, err := GetData(cfg)
	if err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	if len(src.ensureCalls) != 1 || src.ensureCalls[0] != "g150" {
		t.Fatalf("cap 31 should fetch the fine source, got %v", src.ensureCalls)
	}
	particles, _ := result.Particles()
	if particles.Particles != 31 {
		t.Fatalf("particles per jet = %d, want 31", particles.Particles)
	}
}

func TestGetData_AllTypesFixedOrder(t *testing.T) {
	src := newMemorySource()
	for _, jt := range JetTypes {
		src.add(jt, Res30, 2, 10, 0)
	}

	cfg := Config{Split: "all", SplitFraction: [3]float64{1, 0, 0}, Source: src, NumParticles: 10}
	if _, err := GetData(cfg); err != nil {
		t.Fatalf("GetData error: %v", err)
	}
	want := []string{"g", "t", "q", "w", "z"}
	if len(src.ensureCalls) != len(want) {
		t.Fatalf("ensure calls = %v, want %v", src.ensureCalls, want)
	}
	for i, name := range want {
		if src.ensureCalls[i] != name {
			t.Fatalf("types loaded out of order: %v", src.ensureCalls)
		}
	}
}
