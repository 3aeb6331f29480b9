package coach

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// Weights hold the learned logistic-regression parameters of the
// human-likeness model. Loaded once at startup and read-only afterwards; the
// feature names are part of the model's external contract and must match the
// schema it was trained with.
type Weights struct {
	Bias         float64            `yaml:"bias"`
	Coefficients map[string]float64 `yaml:"coefficients"`
}

// DefaultWeights mirrors the parameters learned from beginner games; the
// headline coefficients (check, capture, center) come from the trained
// classifier, the rest are small positional priors.
func DefaultWeights() *Weights {
	return &Weights{
		Bias: -0.25,
		Coefficients: map[string]float64{
			FeatGivesCheck:       0.5792,
			FeatIsCapture:        0.1724,
			FeatToCenter:         0.0365,
			FeatDeltaDevelopment: 0.2100,
			FeatDeltaCenter:      0.0540,
			FeatDeltaHanging:     -0.4500,
			FeatDeltaKingSafety:  0.1200,
			FeatAfterHanging:     -0.3300,
		},
	}
}

// LoadWeights reads a YAML weights file. Unknown feature names are rejected
// so a schema drift between training and inference fails loudly instead of
// silently degrading suggestions.
func LoadWeights(path string) (*Weights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}
	var w Weights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse weights file: %w", err)
	}
	if len(w.Coefficients) == 0 {
		return nil, fmt.Errorf("weights file %s has no coefficients", path)
	}
	known := make(map[string]struct{}, len(FeatureNames))
	for _, name := range FeatureNames {
		known[name] = struct{}{}
	}
	for name := range w.Coefficients {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown feature %q in weights file %s", name, path)
		}
	}
	return &w, nil
}

// dot accumulates in schema order. Float addition is order-sensitive, so
// summing over map iteration would let knife-edge scores jitter between calls.
func (w *Weights) dot(fv FeatureVector) float64 {
	sum := w.Bias
	for _, name := range FeatureNames {
		if coef, ok := w.Coefficients[name]; ok {
			sum += coef * fv[name]
		}
	}
	return sum
}
