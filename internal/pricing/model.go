// Package pricing provides the pre-trained price estimator the
// prediction tool delegates to. The model itself is an external
// collaborator trained offline; this package only loads its exported
// parameters and applies them.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/automentor/automentor/pkg/log"
)

// Attributes is the structured vehicle description the estimator scores.
type Attributes struct {
	Brand      string
	Fuel       string
	Segment    string
	GearType   string
	Condition  string
	Color      string
	Kilometers int
	Age        int
	Horsepower int
}

// Predictor estimates a market price in euros for a vehicle.
type Predictor interface {
	Predict(attrs Attributes) (float64, error)
}

// LinearModel is a linear estimator with per-unit weights for numeric
// attributes and lookup tables for categorical ones, exported to JSON by
// the offline training pipeline.
type LinearModel struct {
	Intercept       float64                       `json:"intercept"`
	NumericWeights  map[string]float64            `json:"numeric_weights"`
	CategoryWeights map[string]map[string]float64 `json:"category_weights"`
}

// LoadModel reads exported model parameters from a JSON file.
func LoadModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read pricing model %s: %w", path, err)
	}

	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse pricing model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid pricing model %s: %w", path, err)
	}

	log.Info("pricing model loaded: %d numeric weights, %d category tables",
		len(m.NumericWeights), len(m.CategoryWeights))
	return &m, nil
}

func (m *LinearModel) validate() error {
	if !isFinite(m.Intercept) {
		return fmt.Errorf("intercept is not finite")
	}
	for name, w := range m.NumericWeights {
		if !isFinite(w) {
			return fmt.Errorf("numeric weight %q is not finite", name)
		}
	}
	for table, weights := range m.CategoryWeights {
		for value, w := range weights {
			if !isFinite(w) {
				return fmt.Errorf("category weight %s=%q is not finite", table, value)
			}
		}
	}
	return nil
}

// Predict scores the attributes. Category values without a trained
// weight contribute zero, so the estimate degrades gracefully for
// unseen values. The result is clamped to be non-negative.
func (m *LinearModel) Predict(attrs Attributes) (float64, error) {
	price := m.Intercept

	price += m.numericWeight("kilometers") * float64(attrs.Kilometers)
	price += m.numericWeight("age") * float64(attrs.Age)
	price += m.numericWeight("horsepower") * float64(attrs.Horsepower)

	price += m.categoryWeight("brand", attrs.Brand)
	price += m.categoryWeight("fuel", attrs.Fuel)
	price += m.categoryWeight("segment", attrs.Segment)
	price += m.categoryWeight("gear_type", attrs.GearType)
	price += m.categoryWeight("condition", attrs.Condition)
	price += m.categoryWeight("color", attrs.Color)

	if !isFinite(price) {
		return 0, fmt.Errorf("estimate is not finite for attributes %+v", attrs)
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}

func (m *LinearModel) numericWeight(name string) float64 {
	return m.NumericWeights[name]
}

func (m *LinearModel) categoryWeight(table, value string) float64 {
	weights, ok := m.CategoryWeights[table]
	if !ok {
		return 0
	}
	return weights[value]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
