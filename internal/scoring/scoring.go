// Package scoring turns aggregated demand metrics into a 0-100 score, an
// indexing decision and an action zone.
package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"facettes/internal/aggregate"
)

// Weights are the relative importance of each signal.
type Weights struct {
	Volume  float64
	Suggest float64
	CPC     float64
	KD      float64
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Volume + w.Suggest + w.CPC + w.KD
}

// Caps are the values at which a signal saturates. All must be positive.
type Caps struct {
	Volume float64
	CPC    float64
	KD     float64
}

// ZoneThresholds bound the action zones.
type ZoneThresholds struct {
	ScoreHigh float64
	ScoreLow  float64
	KDEasy    float64
	KDNiche   float64
}

// LegacyThresholds are the per-level minimums of the 0-4 score.
type LegacyThresholds struct {
	VolumeTotalMin  float64
	VolumeMedianMin float64
	SuggestRateMin  float64
	CPCMin          float64
}

// Config holds the scoring model parameters.
type Config struct {
	Weights        Weights
	Caps           Caps
	IndexThreshold float64
	Zones          ZoneThresholds
}

// DefaultConfig returns weights 35/25/20/20, caps 5000/3.0/100, an index
// threshold of 55 and zones 55/30/40/30.
func DefaultConfig() Config {
	return Config{
		Weights:        Weights{Volume: 35, Suggest: 25, CPC: 20, KD: 20},
		Caps:           Caps{Volume: 5000, CPC: 3.0, KD: 100},
		IndexThreshold: 55,
		Zones:          ZoneThresholds{ScoreHigh: 55, ScoreLow: 30, KDEasy: 40, KDNiche: 30},
	}
}

// Result is the verdict for one facet or combination.
type Result struct {
	// ScoreContinuous is rounded to one decimal.
	ScoreContinuous float64  `json:"scoreContinuous"`
	Decision        Decision `json:"decision"`
	Zone            Zone     `json:"zone"`
	LegacyScore     int      `json:"legacyScore"`
}

// ScoreLabel formats the score as "73.4/100".
func (r Result) ScoreLabel() string {
	return fmt.Sprintf("%.1f/100", r.ScoreContinuous)
}

// LegacyLabel formats the legacy score as "3/4".
func (r Result) LegacyLabel() string {
	return fmt.Sprintf("%d/4", r.LegacyScore)
}

// Engine scores aggregated metrics.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the result for m. Decision and zone use the unrounded score.
func (e *Engine) Score(m aggregate.Metrics, legacy LegacyThresholds) Result {
	score := e.Continuous(m)

	decision := NoIndex
	if score >= e.cfg.IndexThreshold {
		decision = Index
	}

	return Result{
		ScoreContinuous: scalar.Round(score, 1),
		Decision:        decision,
		Zone:            e.Zone(score, m.KDMean),
		LegacyScore:     LegacyScore(m, legacy),
	}
}

// Continuous returns the unrounded weighted score in [0, 100]. A
// non-positive weight sum scores 0.
func (e *Engine) Continuous(m aggregate.Metrics) float64 {
	w, c := e.cfg.Weights, e.cfg.Caps
	sum := w.Sum()
	if sum <= 0 {
		return 0
	}

	volume := math.Min(float64(m.VolumeTotal)/c.Volume, 1) * w.Volume
	suggest := m.SuggestRate * w.Suggest
	cpc := math.Min(m.CPCWeightedMean/c.CPC, 1) * w.CPC
	// lower difficulty scores higher
	kd := (1 - math.Min(m.KDMean/c.KD, 1)) * w.KD

	total := (volume + suggest + cpc + kd) * (100 / sum)
	return math.Max(0, math.Min(100, total))
}

// Zone classifies score and kd; the first matching rule wins.
func (e *Engine) Zone(score, kd float64) Zone {
	z := e.cfg.Zones
	switch {
	case score >= z.ScoreHigh && kd < z.KDEasy:
		return QuickWin
	case score >= z.ScoreHigh:
		return FortPotentiel
	case score >= z.ScoreLow && kd < z.KDNiche:
		return Niche
	case score >= z.ScoreLow:
		return Surveiller
	default:
		return Ignorer
	}
}

// LegacyScore counts the thresholds m meets, from 0 to 4. It has no effect
// on decision or zone.
func LegacyScore(m aggregate.Metrics, t LegacyThresholds) int {
	score := 0
	if float64(m.VolumeTotal) >= t.VolumeTotalMin {
		score++
	}
	if m.VolumeMedian >= t.VolumeMedianMin {
		score++
	}
	if m.SuggestRate >= t.SuggestRateMin {
		score++
	}
	if m.CPCWeightedMean >= t.CPCMin {
		score++
	}
	return score
}
