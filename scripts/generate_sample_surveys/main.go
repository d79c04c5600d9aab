package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"candidate-predictor/internal/features"
	"candidate-predictor/internal/storage"
)

func main() {
	var (
		dataPath  = flag.String("data", "data", "Data directory path")
		count     = flag.Int("n", 200, "Number of surveys to generate")
		seed      = flag.Int64("seed", 1, "Random seed")
		unlabeled = flag.Float64("unlabeled", 0.1, "Fraction of surveys without a known outcome")
		csvOut    = flag.String("csv", "", "Also export every stored survey to this CSV file")
	)
	flag.Parse()

	fmt.Printf("Generating %d sample surveys...\n", *count)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Printf("  Data Path: %s\n", *dataPath)

	if err := os.MkdirAll(*dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Create storage
	store, err := storage.New(*dataPath)
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(*seed))
	records := generateSurveys(rng, *count, *unlabeled)
	if err := store.StoreSurveys(records); err != nil {
		log.Fatalf("Failed to store surveys: %v", err)
	}

	labeled := 0
	succeeded := 0
	for _, r := range records {
		if r.Labeled() {
			labeled++
			if *r.Success {
				succeeded++
			}
		}
	}
	fmt.Printf("✓ Stored %d surveys (%d labeled, %d succeeded)\n", len(records), labeled, succeeded)

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *csvOut, err)
		}
		defer f.Close()
		if err := store.ExportCSV(f); err != nil {
			log.Fatalf("Failed to export surveys: %v", err)
		}
		fmt.Printf("✓ Exported surveys to %s\n", *csvOut)
	}
}

// generateSurveys draws candidates from plausible ranges and labels them
// with a fixed logistic rule plus noise.
func generateSurveys(rng *rand.Rand, n int, unlabeledFrac float64) []storage.SurveyRecord {
	start := time.Now().UTC().Add(-time.Duration(n) * time.Hour)
	records := make([]storage.SurveyRecord, 0, n)

	for i := 0; i < n; i++ {
		c := features.Candidate{
			Years:         math.Round(rng.Float64()*15*10) / 10,
			Education:     float64(1 + rng.Intn(5)),
			Skills:        float64(rng.Intn(12)),
			JobChanges:    float64(rng.Intn(6)),
			Certs:         float64(rng.Intn(5)),
			Language:      float64(1+rng.Intn(features.MaxLanguageLevel)) / features.MaxLanguageLevel,
			InterviewPrep: float64(1+rng.Intn(features.MaxPrepRating)) / features.MaxPrepRating,
		}

		rec := storage.SurveyRecord{
			UserID:    fmt.Sprintf("sample-%04d", i),
			CreatedAt: start.Add(time.Duration(i) * time.Hour),
			Candidate: c,
			Public:    rng.Float64() < 0.5,
		}
		if rng.Float64() >= unlabeledFrac {
			success := rng.Float64() < successProbability(c)
			rec.Success = &success
		}
		records = append(records, rec)
	}
	return records
}

func successProbability(c features.Candidate) float64 {
	z := -4.5 +
		0.35*c.Years +
		0.4*c.Education +
		0.15*c.Skills -
		0.3*c.JobChanges +
		0.3*c.Certs +
		1.5*c.Language +
		2.0*c.InterviewPrep
	return 1 / (1 + math.Exp(-z))
}
