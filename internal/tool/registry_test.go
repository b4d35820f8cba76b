package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyTool is a minimal Tool implementation for testing.
type dummyTool struct {
	name string
}

func (d *dummyTool) Name() string             { return d.name }
func (d *dummyTool) Description() string      { return "test tool" }
func (d *dummyTool) InputSchema() Schema      { return nil }
func (d *dummyTool) OutputType() ValueType    { return TypeString }
func (d *dummyTool) Forward(_ context.Context, _ map[string]any) (any, error) {
	return "ok", nil
}

func TestRegistryWithExtraContainsBoth(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&dummyTool{name: "original"})

	extra := &dummyTool{name: "extra"}
	view := r.WithExtra(extra)

	_, ok := view.Get("original")
	assert.True(t, ok, "view should contain original tool")
	_, ok = view.Get("extra")
	assert.True(t, ok, "view should contain extra tool")
}

func TestRegistryWithExtraNoMutationOfOriginal(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&dummyTool{name: "original"})

	r.WithExtra(&dummyTool{name: "extra"})

	_, ok := r.Get("extra")
	assert.False(t, ok, "original registry should not contain extra tool after WithExtra")
}

func TestRegistryWithExtraOverrideExisting(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&dummyTool{name: "shared"})

	override := &dummyTool{name: "shared"}
	view := r.WithExtra(override)

	got, ok := view.Get("shared")
	require.True(t, ok)
	assert.Same(t, override, got, "WithExtra should override existing tool with same name")
}

func TestRegistryDelegationSeesRootMutation(t *testing.T) {
	r := NewRegistry(nil)
	view := r.WithExtra()

	r.Register(&dummyTool{name: "added-later"})
	_, ok := view.Get("added-later")
	assert.True(t, ok, "view must see root registrations made after the view was created")

	r.Unregister("added-later")
	_, ok = view.Get("added-later")
	assert.False(t, ok, "view must see root unregistrations")
}
