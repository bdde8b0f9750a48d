package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Thresholds holds the product-tuning cutoffs for quality classification and
// presentation. They are configuration, not invariants: operators can adjust
// them per deployment without touching code.
type Thresholds struct {
	ExcellentCompleteness float64 `json:"excellent_completeness"`
	ExcellentConfidence   float64 `json:"excellent_confidence"`
	GoodCompleteness      float64 `json:"good_completeness"`
	GoodConfidence        float64 `json:"good_confidence"`
	FairCompleteness      float64 `json:"fair_completeness"`
	FairConfidence        float64 `json:"fair_confidence"`
	LowConfidenceCutoff   float64 `json:"low_confidence_cutoff"`
	MinPoints             int     `json:"min_points"`
}

// DefaultThresholds returns the shipped cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExcellentCompleteness: 0.9,
		ExcellentConfidence:   0.8,
		GoodCompleteness:      0.7,
		GoodConfidence:        0.6,
		FairCompleteness:      0.5,
		FairConfidence:        0.4,
		LowConfidenceCutoff:   0.7,
		MinPoints:             3,
	}
}

// Validate rejects threshold sets that would make the level table
// non-monotonic or the sufficiency check meaningless.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"excellent_completeness": t.ExcellentCompleteness,
		"excellent_confidence":   t.ExcellentConfidence,
		"good_completeness":      t.GoodCompleteness,
		"good_confidence":        t.GoodConfidence,
		"fair_completeness":      t.FairCompleteness,
		"fair_confidence":        t.FairConfidence,
		"low_confidence_cutoff":  t.LowConfidenceCutoff,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s must be in [0,1], got %v", name, v)
		}
	}
	if t.ExcellentCompleteness < t.GoodCompleteness || t.GoodCompleteness < t.FairCompleteness {
		return fmt.Errorf("completeness thresholds must be ordered excellent >= good >= fair")
	}
	if t.ExcellentConfidence < t.GoodConfidence || t.GoodConfidence < t.FairConfidence {
		return fmt.Errorf("confidence thresholds must be ordered excellent >= good >= fair")
	}
	if t.MinPoints < 1 {
		return fmt.Errorf("min_points must be at least 1, got %d", t.MinPoints)
	}
	return nil
}

// ThresholdStore persists threshold overrides as JSON under a data
// directory, falling back to defaults when no override exists.
type ThresholdStore struct {
	dataDir string
	mu      sync.RWMutex
}

// NewThresholdStore creates a threshold store rooted at dataDir.
func NewThresholdStore(dataDir string) *ThresholdStore {
	return &ThresholdStore{dataDir: dataDir}
}

func (s *ThresholdStore) path() string {
	return filepath.Join(s.dataDir, "quality_thresholds.json")
}

// Load returns the persisted thresholds, or defaults when no override file
// exists yet.
func (s *ThresholdStore) Load() (Thresholds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.path()); os.IsNotExist(err) {
		return DefaultThresholds(), nil
	}

	file, err := os.Open(s.path())
	if err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to open thresholds file: %w", err)
	}
	defer file.Close()

	var t Thresholds
	if err := json.NewDecoder(file).Decode(&t); err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to decode thresholds: %w", err)
	}

	if err := t.Validate(); err != nil {
		return DefaultThresholds(), fmt.Errorf("persisted thresholds invalid: %w", err)
	}

	return t, nil
}

// Save validates and persists a threshold override.
func (s *ThresholdStore) Save(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create thresholds directory: %w", err)
	}

	file, err := os.Create(s.path())
	if err != nil {
		return fmt.Errorf("failed to create thresholds file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(t); err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}

	return nil
}
