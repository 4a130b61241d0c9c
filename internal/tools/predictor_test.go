package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automentor/automentor/internal/pricing"
)

type stubPredictor struct {
	price float64
	err   error
	last  pricing.Attributes
}

func (s *stubPredictor) Predict(attrs pricing.Attributes) (float64, error) {
	s.last = attrs
	return s.price, s.err
}

const validPredictionArgs = `{
	"brand": "BMW", "fuel": "Diesel", "segment": "Sedan",
	"gear_type": "Automatic", "condition": "Used", "color": "Black",
	"kilometers": 60000, "age": 5, "horsepower": 150
}`

func TestPredictionTool_Success(t *testing.T) {
	t.Parallel()

	stub := &stubPredictor{price: 17900.4}
	tool := NewPredictionTool(stub)

	res, err := tool.Execute(context.Background(), json.RawMessage(validPredictionArgs))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "estimated price: 17,900 EUR", res.Content)

	assert.Equal(t, "BMW", stub.last.Brand)
	assert.Equal(t, 60000, stub.last.Kilometers)
	assert.Equal(t, 150, stub.last.Horsepower)
}

func TestPredictionTool_MissingField(t *testing.T) {
	t.Parallel()

	tool := NewPredictionTool(&stubPredictor{})

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"fuel": "Diesel"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "brand")
}

func TestPredictionTool_NegativeNumber(t *testing.T) {
	t.Parallel()

	tool := NewPredictionTool(&stubPredictor{})

	args := `{
		"brand": "BMW", "fuel": "Diesel", "segment": "Sedan",
		"gear_type": "Automatic", "condition": "Used", "color": "Black",
		"kilometers": -1, "age": 5, "horsepower": 150
	}`
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "kilometers")
}

func TestPredictionTool_ModelFailure(t *testing.T) {
	t.Parallel()

	tool := NewPredictionTool(&stubPredictor{err: fmt.Errorf("estimate is not finite")})

	res, err := tool.Execute(context.Background(), json.RawMessage(validPredictionArgs))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "not finite")
}
