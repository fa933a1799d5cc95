package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrTuningNotFound = errors.New("tuning file not found")
	ErrTuningParsing  = errors.New("tuning parsing failed")
)

// Tuning holds the algorithm constants. The recency-decay family and the
// continuity/learning weighting are fixed configuration, not re-derived per
// run; the values below are the documented defaults.
type Tuning struct {
	RevFinder struct {
		// Aggregate selects how pairwise path similarities roll up into a
		// developer score: "max" or "topk" (mean of the TopK best pairs).
		Aggregate string `yaml:"aggregate"`
		TopK      int    `yaml:"top_k"`
	} `yaml:"revfinder"`

	ChRev struct {
		// DecayDays is tau in exp(-ageDays/tau), the single monotonic
		// recency-decay family used across the system.
		DecayDays float64 `yaml:"decay_days"`
	} `yaml:"chrev"`

	TurnoverRec struct {
		RetentionWeight float64 `yaml:"retention_weight"`
		LearningWeight  float64 `yaml:"learning_weight"`
		// ActivityWindowDays is the trailing window (anchored at the newest
		// corpus timestamp) outside of which a developer counts as departed.
		ActivityWindowDays int `yaml:"activity_window_days"`
		// ContinuityDecayDays is tau for the continuity signal's decay.
		ContinuityDecayDays float64 `yaml:"continuity_decay_days"`
	} `yaml:"turnoverrec"`

	Sofia struct {
		ChRevWeight    float64 `yaml:"chrev_weight"`
		TurnoverWeight float64 `yaml:"turnover_weight"`
	} `yaml:"sofia"`
}

// DefaultTuning returns the documented algorithm constants.
func DefaultTuning() *Tuning {
	t := &Tuning{}
	t.RevFinder.Aggregate = "max"
	t.RevFinder.TopK = 3
	t.ChRev.DecayDays = 90
	t.TurnoverRec.RetentionWeight = 0.7
	t.TurnoverRec.LearningWeight = 0.3
	t.TurnoverRec.ActivityWindowDays = 365
	t.TurnoverRec.ContinuityDecayDays = 180
	t.Sofia.ChRevWeight = 0.5
	t.Sofia.TurnoverWeight = 0.5
	return t
}

// Validate checks the tuning invariants.
func (t *Tuning) Validate() error {
	switch t.RevFinder.Aggregate {
	case "max", "topk":
	default:
		return fmt.Errorf("revfinder.aggregate must be \"max\" or \"topk\", got %q", t.RevFinder.Aggregate)
	}
	if t.RevFinder.Aggregate == "topk" && t.RevFinder.TopK < 1 {
		return fmt.Errorf("revfinder.top_k must be >= 1, got %d", t.RevFinder.TopK)
	}
	if t.ChRev.DecayDays <= 0 {
		return fmt.Errorf("chrev.decay_days must be positive, got %v", t.ChRev.DecayDays)
	}
	if t.TurnoverRec.RetentionWeight < 0 || t.TurnoverRec.LearningWeight < 0 {
		return fmt.Errorf("turnoverrec weights must be non-negative")
	}
	if t.TurnoverRec.RetentionWeight+t.TurnoverRec.LearningWeight == 0 {
		return fmt.Errorf("turnoverrec weights must not both be zero")
	}
	if t.TurnoverRec.ActivityWindowDays < 1 {
		return fmt.Errorf("turnoverrec.activity_window_days must be >= 1, got %d", t.TurnoverRec.ActivityWindowDays)
	}
	if t.TurnoverRec.ContinuityDecayDays <= 0 {
		return fmt.Errorf("turnoverrec.continuity_decay_days must be positive")
	}
	if t.Sofia.ChRevWeight < 0 || t.Sofia.TurnoverWeight < 0 {
		return fmt.Errorf("sofia weights must be non-negative")
	}
	if t.Sofia.ChRevWeight+t.Sofia.TurnoverWeight == 0 {
		return fmt.Errorf("sofia weights must not both be zero")
	}
	return nil
}

// LoadTuning loads and parses the .review-scout.yml file from a repository's
// corpus directory, overlaying the defaults. A missing file returns the
// defaults together with ErrTuningNotFound so callers may log and continue.
func LoadTuning(repoDir string) (*Tuning, error) {
	tuningPath := filepath.Join(repoDir, ".review-scout.yml")
	data, err := os.ReadFile(tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTuning(), ErrTuningNotFound
		}
		return nil, fmt.Errorf("failed to read .review-scout.yml: %w", err)
	}

	tuning := DefaultTuning()
	if err := yaml.Unmarshal(data, tuning); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTuningParsing, err)
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTuningParsing, err)
	}
	return tuning, nil
}
