package main

// jetinfo assembles a jet dataset split and reports on it: row counts per
// split, per-channel summary statistics, and optionally a histogram PNG of
// one jet feature.
//
// Raw files are fetched from Zenodo on first use and cached under -data-dir.
//
// Usage:
//   go run ./cmd/jetinfo -jet-types g,t -num-particles 30 -split train \
//     -data-dir ./data -hist pt -hist-out pt.png

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/Noofbiz/jetData/jetdata"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	jetTypes := flag.String("jet-types", "all", "comma-separated jet types (g,t,q,w,z) or 'all'")
	dataDir := flag.String("data-dir", ".", "directory raw files are cached in")
	numParticles := flag.Int("num-particles", jetdata.DefaultNumParticles, "particles retained per jet (max 150)")
	split := flag.String("split", "train", "split to assemble: train, valid, test or all")
	fractions := flag.String("fractions", "0.7,0.15,0.15", "train,valid,test split fractions")
	seed := flag.Int64("seed", jetdata.DefaultSeed, "seed for the split permutation")
	hist := flag.String("hist", "", "jet feature to histogram (e.g. pt, mass); empty disables plotting")
	histOut := flag.String("hist-out", "jet_hist.png", "output PNG for -hist")
	histBins := flag.Int("hist-bins", 50, "number of histogram bins")
	flag.Parse()

	fraction, err := parseFractions(*fractions)
	if err != nil {
		log.Fatalf("bad -fractions: %v", err)
	}

	cfg := jetdata.Config{
		JetTypes:      splitList(*jetTypes),
		DataDir:       *dataDir,
		NumParticles:  *numParticles,
		Split:         *split,
		SplitFraction: fraction,
		Seed:          *seed,
	}

	result, err := jetdata.GetData(cfg)
	if err != nil {
		log.Fatalf("failed to assemble dataset: %v", err)
	}

	fmt.Printf("Assembled %q split: %d jets\n", *split, result.Len())
	if particles, ok := result.Particles(); ok {
		fmt.Printf("Particle tensor: [%d jets, %d particles, %d channels] (%v)\n",
			particles.Jets, particles.Particles, particles.Channels, jetdata.ParticleFeatureOrder)
	}
	jets, ok := result.Jets()
	if !ok {
		return
	}
	fmt.Printf("Jet tensor: [%d jets, %d channels]\n", jets.Jets, jets.Channels)
	for c, name := range jetdata.JetFeatureOrder {
		mean, lo, hi := channelStats(jets, c)
		fmt.Printf("  %-13s mean=%10.4f min=%10.4f max=%10.4f\n", name, mean, lo, hi)
	}

	if *hist == "" {
		return
	}
	channel := -1
	for c, name := range jetdata.JetFeatureOrder {
		if name == *hist {
			channel = c
		}
	}
	if channel < 0 {
		log.Fatalf("unknown jet feature %q (valid: %v)", *hist, jetdata.JetFeatureOrder)
	}
	if err := plotHistogram(jets, channel, *hist, *histBins, *histOut); err != nil {
		log.Fatalf("failed to generate histogram: %v", err)
	}
	log.Printf("Histogram of %s written to %s", *hist, *histOut)
}

// splitList turns a comma-separated flag value into a slice, mapping the
// empty string to nil so the library default applies.
func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseFractions(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("want three comma-separated values, got %q", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, err
		}
		out[i] = v
	}
	return out, nil
}

func channelStats(jets *jetdata.JetTensor, c int) (mean, lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	sum := 0.0
	for i := 0; i < jets.Jets; i++ {
		v := float64(jets.At(i, c))
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if jets.Jets > 0 {
		mean = sum / float64(jets.Jets)
	}
	return mean, lo, hi
}

// plotHistogram writes a PNG histogram of one jet feature channel.
func plotHistogram(jets *jetdata.JetTensor, channel int, name string, bins int, out string) error {
	values := make(plotter.Values, jets.Jets)
	for i := 0; i < jets.Jets; i++ {
		values[i] = float64(jets.At(i, channel))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Jet %s distribution (%d jets)", name, jets.Jets)
	p.X.Label.Text = name
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(6*vg.Inch, 4*vg.Inch, out)
}
