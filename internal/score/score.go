// Package score computes the weighted technical-depth score for an
// assembled document. Each dimension is a pluggable sub-score function over
// simple, auditable rules; the composite decides pass, warn, or fail against
// a configurable threshold. Scoring is fully deterministic.
package score

import (
	"fmt"
	"math"
	"sort"

	"talkdoc/internal/artifact"
	"talkdoc/internal/validate"
)

// Defaults for the rubric.
const (
	DefaultThreshold  = 0.70
	DefaultWarnMargin = 0.10

	weightTolerance = 1e-9
)

// DimensionNames returns the registered dimension names, sorted.
func DimensionNames() []string {
	names := make([]string, 0, len(dimensions))
	for name := range dimensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DimensionFunc computes one sub-score in [0,1] from the document.
type DimensionFunc func(doc *artifact.GeneratedDocument) float64

// dimensions registered for rubric use. Weights in a rubric must reference
// these names.
var dimensions = map[string]DimensionFunc{
	"entity_depth":            scoreEntityDepth,
	"specificity":             scoreSpecificity,
	"implementation_detail":   scoreImplementationDetail,
	"metric_quality":          scoreMetricQuality,
	"structural_completeness": scoreStructuralCompleteness,
}

// Rubric is the immutable scoring configuration for one document type.
type Rubric struct {
	Weights    map[string]float64 `yaml:"weights"`
	Threshold  float64            `yaml:"threshold"`
	WarnMargin float64            `yaml:"warn_margin"`
}

// DefaultRubric is the five-dimensional technical-depth rubric.
func DefaultRubric() Rubric {
	return Rubric{
		Weights: map[string]float64{
			"entity_depth":            0.25,
			"specificity":             0.20,
			"implementation_detail":   0.20,
			"metric_quality":          0.20,
			"structural_completeness": 0.15,
		},
		Threshold:  DefaultThreshold,
		WarnMargin: DefaultWarnMargin,
	}
}

// Scorer scores documents against a validated rubric.
type Scorer struct {
	rubric Rubric
	names  []string // sorted dimension names for deterministic iteration
}

// New validates the rubric once at construction: every weight must name a
// registered dimension and the weights must sum to 1.0. Misconfiguration is
// caught here rather than at call time.
func New(rubric Rubric) (*Scorer, error) {
	if len(rubric.Weights) == 0 {
		return nil, fmt.Errorf("rubric has no weights")
	}

	sum := 0.0
	names := make([]string, 0, len(rubric.Weights))
	for name, weight := range rubric.Weights {
		if _, ok := dimensions[name]; !ok {
			return nil, fmt.Errorf("unknown scoring dimension %q", name)
		}
		if weight < 0 {
			return nil, fmt.Errorf("dimension %q has negative weight %v", name, weight)
		}
		sum += weight
		names = append(names, name)
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}

	if rubric.Threshold <= 0 {
		rubric.Threshold = DefaultThreshold
	}
	if rubric.WarnMargin <= 0 {
		rubric.WarnMargin = DefaultWarnMargin
	}

	sort.Strings(names)
	return &Scorer{rubric: rubric, names: names}, nil
}

// Score computes the composite score and maps it onto the three-valued
// status: pass at or above the threshold, warn within the margin below it,
// fail otherwise. All sub-scores are returned for diagnostics; the composite
// alone is not actionable on a fail.
func (s *Scorer) Score(doc *artifact.GeneratedDocument) *validate.Result {
	r := validate.NewResult()
	r.SubScores = make(map[string]float64, len(s.names))

	composite := 0.0
	for _, name := range s.names {
		sub := dimensions[name](doc)
		r.SubScores[name] = sub
		composite += s.rubric.Weights[name] * sub
	}
	r.Score = &composite

	switch {
	case composite >= s.rubric.Threshold:
		// pass
	case composite >= s.rubric.Threshold-s.rubric.WarnMargin:
		r.Warnf("composite score %.2f below threshold %.2f (within warning margin)", composite, s.rubric.Threshold)
	default:
		r.Errorf("composite score %.2f below threshold %.2f", composite, s.rubric.Threshold)
	}

	return r
}

// Threshold returns the rubric's pass threshold.
func (s *Scorer) Threshold() float64 {
	return s.rubric.Threshold
}
