package main

// Example command that demonstrates assembling a jet dataset split and
// batching it into gomlx tensors via the JetDataset container.
//
// Usage:
//   go run ./example
//
// Note: raw files are downloaded from Zenodo into ./data on first run; the
// 30-particle archives are a few hundred MB per jet type.

import (
	"fmt"
	"io"
	"log"

	"github.com/Noofbiz/jetData/jetdata"
)

func main() {
	ds, err := jetdata.NewJetDataset(jetdata.Config{
		JetTypes: []string{"g", "t"},
		DataDir:  "./data",
		Split:    "train",
		Seed:     jetdata.DefaultSeed,
	})
	if err != nil {
		log.Fatalf("failed to load jet dataset: %v", err)
	}
	fmt.Printf("Training examples available: %d\n", ds.Len())

	// A single example: flattened particle block plus jet feature vector.
	particles, jets, err := ds.Example(0)
	if err != nil {
		log.Fatalf("failed to read example: %v", err)
	}
	fmt.Printf("First example: %d particle values, jet features %v\n", len(particles), jets)

	// Batches for gomlx training loops come from Yield.
	ds.BatchSize = 16
	ds.Shuffle(jetdata.DefaultSeed)
	_, inputs, labels, err := ds.Yield()
	if err == io.EOF {
		log.Fatalf("dataset is empty")
	}
	if err != nil {
		log.Fatalf("failed to yield a batch: %v", err)
	}
	fmt.Printf("Yielded tensors: inputs=%d labels=%d\n", len(inputs), len(labels))

	fmt.Println("\nExample completed successfully!")
}
