package jetdata

import "fmt"

// JetType is one of the closed set of jet classes the raw sources are
// partitioned by. Its position in JetTypes is its integer class index.
type JetType string

const (
	Gluon      JetType = "g"
	TopQuark   JetType = "t"
	LightQuark JetType = "q"
	WBoson     JetType = "w"
	ZBoson     JetType = "z"
)

// JetTypes lists every jet type in class-index order. This order is fixed:
// it determines both the injected "type" feature value and the order in
// which per-type data is concatenated during assembly.
var JetTypes = []JetType{Gluon, TopQuark, LightQuark, WBoson, ZBoson}

// ParticleFeatureOrder is the canonical channel order of the raw
// particle_features array.
var ParticleFeatureOrder = []string{"etarel", "phirel", "ptrel", "mask"}

// JetFeatureOrder is the canonical channel order of the jet features after
// the class label has been injected as the leading channel.
var JetFeatureOrder = []string{"type", "pt", "eta", "mass", "num_particles"}

// MaxParticles is the hard upper bound on particles retained per jet.
const MaxParticles = 150

// ClassIndex returns the integer class label for a jet type, or -1 if the
// type is not in the closed set.
func (t JetType) ClassIndex() int {
	for i, jt := range JetTypes {
		if jt == t {
			return i
		}
	}
	return -1
}

// resolveJetTypes maps the caller's type selection onto the closed set.
// nil, empty, or the single entry "all" select every type. Duplicates are
// dropped and the result is always in class-index order so that assembly is
// reproducible regardless of how the caller ordered the request.
func resolveJetTypes(requested []string) ([]JetType, error) {
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		out := make([]JetType, len(JetTypes))
		copy(out, JetTypes)
		return out, nil
	}
	want := make(map[JetType]bool, len(requested))
	for _, name := range requested {
		jt := JetType(name)
		if jt.ClassIndex() < 0 {
			return nil, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidJetType, name, JetTypes)
		}
		want[jt] = true
	}
	out := make([]JetType, 0, len(want))
	for _, jt := range JetTypes {
		if want[jt] {
			out = append(out, jt)
		}
	}
	return out, nil
}

// ValidateFeatures checks every requested feature name against a canonical
// order and returns the request unchanged. An empty request is valid and
// means "no features of this kind".
func ValidateFeatures(requested, canonical []string) ([]string, error) {
	for _, name := range requested {
		if !containsFeature(canonical, name) {
			return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownFeature, name, canonical)
		}
	}
	return requested, nil
}

func containsFeature(order []string, name string) bool {
	for _, f := range order {
		if f == name {
			return true
		}
	}
	return false
}

// featurePermutation maps each requested position to its canonical column
// index. Callers must have validated the request first.
func featurePermutation(requested, canonical []string) []int {
	perm := make([]int, len(requested))
	for i, name := range requested {
		for j, f := range canonical {
			if f == name {
				perm[i] = j
				break
			}
		}
	}
	return perm
}

// isIdentityPermutation reports whether perm maps every position to itself
// over a source with n columns, making a reorder a no-op.
func isIdentityPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	for i, p := range perm {
		if p != i {
			return false
		}
	}
	return true
}
