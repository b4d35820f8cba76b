package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addTool struct {
	setupCalls int
}

func (a *addTool) Name() string        { return "add" }
func (a *addTool) Description() string { return "adds two numbers" }
func (a *addTool) InputSchema() Schema {
	return Schema{
		"a": Param{Type: []ValueType{TypeNumber}},
		"b": Param{Type: []ValueType{TypeNumber}},
	}
}
func (a *addTool) OutputType() ValueType { return TypeNumber }
func (a *addTool) SetUp(_ context.Context) error {
	a.setupCalls++
	return nil
}
func (a *addTool) Forward(_ context.Context, args map[string]any) (any, error) {
	return args["a"].(float64) + args["b"].(float64), nil
}

type failingTool struct{}

func (f *failingTool) Name() string             { return "boom" }
func (f *failingTool) Description() string      { return "always fails" }
func (f *failingTool) InputSchema() Schema      { return Schema{} }
func (f *failingTool) OutputType() ValueType    { return TypeString }
func (f *failingTool) Forward(_ context.Context, _ map[string]any) (any, error) {
	return nil, errors.New("boom")
}

func TestCallValidatesBeforeForward(t *testing.T) {
	tl := &addTool{}
	_, err := Call(context.Background(), tl, map[string]any{"a": 1.0})
	assert.Error(t, err, "missing required argument b should be rejected before Forward runs")
}

func TestCallInvokesSetupOnce(t *testing.T) {
	tl := &addTool{}
	ctx := context.Background()

	_, err := Call(ctx, tl, map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	_, err = Call(ctx, tl, map[string]any{"a": 3.0, "b": 4.0})
	require.NoError(t, err)

	assert.Equal(t, 1, tl.setupCalls, "SetUp must run exactly once across repeated calls")
}

func TestCallWrapsOutputByOutputType(t *testing.T) {
	tl := &addTool{}
	out, err := Call(context.Background(), tl, map[string]any{"a": 1.0, "b": 2.0})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out, 0.0001)
}

func TestCallPropagatesForwardError(t *testing.T) {
	_, err := Call(context.Background(), &failingTool{}, map[string]any{})
	assert.Error(t, err)
}

func TestValidateAgreesWithCall(t *testing.T) {
	// §8: validate(t,a) raises iff Call would reject a before Forward runs.
	tl := &addTool{}
	args := map[string]any{"a": 1.0}
	validateErr := Validate(tl.InputSchema(), args)
	_, callErr := Call(context.Background(), tl, args)
	assert.Equal(t, validateErr != nil, callErr != nil)
}
