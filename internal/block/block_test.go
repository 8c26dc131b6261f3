package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	def := r.Get(Stone)
	assert.Equal(t, "stone", def.Name)
	assert.True(t, def.Solid)
	assert.False(t, def.Transparent)

	id, ok := r.Lookup("cactus")
	require.True(t, ok)
	assert.Equal(t, Cactus, id)
}

func TestUnknownIDFallsBackToAir(t *testing.T) {
	r := NewRegistry()
	def := r.Get(Type(9999))
	assert.Equal(t, Air, def.ID)
	assert.Equal(t, "air", def.Name)
}

func TestBedrockIsUnbreakable(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Get(Bedrock).Unbreakable())
	assert.False(t, r.Get(Stone).Unbreakable())
}

func TestOpacity(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.IsOpaque(Stone))
	assert.False(t, r.IsOpaque(Air))
	// Transparent solids do not cull faces behind them.
	assert.False(t, r.IsOpaque(Leaves))
	assert.False(t, r.IsOpaque(Ice))
}

func TestIndependentRegistries(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Register(Def{ID: Type(100), Name: "mod_block", Solid: true, Hardness: 1})

	_, ok := a.Lookup("mod_block")
	assert.True(t, ok)
	_, ok = b.Lookup("mod_block")
	assert.False(t, ok)
}

func TestBuiltinIDsFitPaletteByte(t *testing.T) {
	// Chunk storage indexes its palette with single bytes, so the catalog
	// must never grow past 256 distinct block types.
	assert.LessOrEqual(t, len(builtins), 256)
	for _, def := range builtins {
		assert.Less(t, int(def.ID), 256, def.Name)
	}
}
