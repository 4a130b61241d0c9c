package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/automentor/automentor/internal/pricing"
	"github.com/automentor/automentor/pkg/log"
)

// PredictionTool estimates the market price of a vehicle from its
// attributes using the pre-trained predictor loaded at startup. It
// never writes to the dataset.
type PredictionTool struct {
	model pricing.Predictor
}

// NewPredictionTool creates a prediction tool backed by the given model.
func NewPredictionTool(model pricing.Predictor) *PredictionTool {
	return &PredictionTool{model: model}
}

// predictionArgs uses pointer fields so absent and zero values can be
// told apart during validation.
type predictionArgs struct {
	Brand      *string  `json:"brand"`
	Fuel       *string  `json:"fuel"`
	Segment    *string  `json:"segment"`
	GearType   *string  `json:"gear_type"`
	Condition  *string  `json:"condition"`
	Color      *string  `json:"color"`
	Kilometers *float64 `json:"kilometers"`
	Age        *float64 `json:"age"`
	Horsepower *float64 `json:"horsepower"`
}

func (t *PredictionTool) Name() string {
	return "car_price_prediction"
}

func (t *PredictionTool) Description() string {
	return `Estimate the market price in euros of a vehicle from its attributes.
Use this when the user wants to appraise a car rather than look up existing listings.
All attributes are required: brand, fuel, segment, gear_type, condition, color, kilometers, age, horsepower.`
}

func (t *PredictionTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"brand":      {"type": "string", "description": "Vehicle brand, e.g. 'BMW'"},
			"fuel":       {"type": "string", "description": "Fuel type, e.g. 'Diesel'"},
			"segment":    {"type": "string", "description": "Market segment, e.g. 'SUV'"},
			"gear_type":  {"type": "string", "description": "Gearbox type, e.g. 'Automatic'"},
			"condition":  {"type": "string", "description": "Vehicle condition, e.g. 'Used'"},
			"color":      {"type": "string", "description": "Exterior color, e.g. 'Black'"},
			"kilometers": {"type": "number", "description": "Odometer reading in kilometers"},
			"age":        {"type": "number", "description": "Vehicle age in years"},
			"horsepower": {"type": "number", "description": "Engine power in HP"}
		},
		"required": ["brand", "fuel", "segment", "gear_type", "condition", "color", "kilometers", "age", "horsepower"]
	}`)
}

func (t *PredictionTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	attrs, ierr := t.parseArgs(args)
	if ierr != nil {
		return errResult(ierr), nil
	}

	price, err := t.model.Predict(attrs)
	if err != nil {
		return errResult(&ExecutionError{Tool: t.Name(), Input: string(args), Cause: err}), nil
	}

	log.Debug("prediction tool: %+v -> %.0f", attrs, price)
	return ToolResult{
		Content: fmt.Sprintf("estimated price: %s EUR", humanize.Comma(int64(math.Round(price)))),
	}, nil
}

// parseArgs validates the argument payload, reporting the first missing
// or badly typed field as an *InputError.
func (t *PredictionTool) parseArgs(args json.RawMessage) (pricing.Attributes, error) {
	var pa predictionArgs
	if err := json.Unmarshal(args, &pa); err != nil {
		return pricing.Attributes{}, &InputError{Tool: t.Name(), Field: "arguments", Reason: fmt.Sprintf("cannot be parsed: %v", err)}
	}

	stringFields := []struct {
		name  string
		value *string
	}{
		{"brand", pa.Brand},
		{"fuel", pa.Fuel},
		{"segment", pa.Segment},
		{"gear_type", pa.GearType},
		{"condition", pa.Condition},
		{"color", pa.Color},
	}
	for _, f := range stringFields {
		if f.value == nil || *f.value == "" {
			return pricing.Attributes{}, &InputError{Tool: t.Name(), Field: f.name, Reason: "is required"}
		}
	}

	numberFields := []struct {
		name  string
		value *float64
	}{
		{"kilometers", pa.Kilometers},
		{"age", pa.Age},
		{"horsepower", pa.Horsepower},
	}
	for _, f := range numberFields {
		if f.value == nil {
			return pricing.Attributes{}, &InputError{Tool: t.Name(), Field: f.name, Reason: "is required"}
		}
		if *f.value < 0 || math.IsNaN(*f.value) || math.IsInf(*f.value, 0) {
			return pricing.Attributes{}, &InputError{Tool: t.Name(), Field: f.name, Reason: "must be a finite non-negative number"}
		}
	}

	return pricing.Attributes{
		Brand:      *pa.Brand,
		Fuel:       *pa.Fuel,
		Segment:    *pa.Segment,
		GearType:   *pa.GearType,
		Condition:  *pa.Condition,
		Color:      *pa.Color,
		Kilometers: int(*pa.Kilometers),
		Age:        int(*pa.Age),
		Horsepower: int(*pa.Horsepower),
	}, nil
}
