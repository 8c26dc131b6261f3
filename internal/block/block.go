package block

import "math"

// Type is the stable numeric identity of a block. The ids are part of the
// save/wire compatibility surface and must never be renumbered.
type Type uint16

const (
	Air Type = iota
	Dirt
	Stone
	Grass
	Sand
	Sandstone
	SnowBlock
	Ice
	JungleGrass
	JungleDirt
	Wood
	Leaves
	Cactus
	SnowLayer
	Bedrock
)

// HardnessUnbreakable marks blocks that cannot be mined (bedrock).
var HardnessUnbreakable = float32(math.Inf(1))

// Def holds the static properties of a block type.
type Def struct {
	ID          Type
	Name        string
	Transparent bool // exempt from culling faces of adjacent blocks
	Solid       bool // collision
	Hardness    float32
}

// Unbreakable reports whether the block can never be mined.
func (d Def) Unbreakable() bool {
	return math.IsInf(float64(d.Hardness), 1)
}

// Registry is the catalog of known block definitions. It is constructed once
// at startup and passed explicitly; there is no package-level registry, so
// independent worlds (and tests) can carry independent catalogs.
type Registry struct {
	defs   map[Type]Def
	byName map[string]Type
}

// NewRegistry returns a registry pre-populated with the built-in block set.
func NewRegistry() *Registry {
	r := &Registry{
		defs:   make(map[Type]Def),
		byName: make(map[string]Type),
	}
	for _, def := range builtins {
		r.Register(def)
	}
	return r
}

// Register adds or replaces a block definition.
func (r *Registry) Register(def Def) {
	r.defs[def.ID] = def
	r.byName[def.Name] = def.ID
}

// Get returns the definition for t. Unknown ids resolve to air rather than
// failing, so stale or modded ids degrade to nothing instead of crashing.
func (r *Registry) Get(t Type) Def {
	if def, ok := r.defs[t]; ok {
		return def
	}
	return r.defs[Air]
}

// Lookup resolves a block name to its id.
func (r *Registry) Lookup(name string) (Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// IsOpaque reports whether t blocks the view of faces behind it. Air and
// transparent blocks (leaves, ice, snow layers) do not.
func (r *Registry) IsOpaque(t Type) bool {
	if t == Air {
		return false
	}
	return !r.Get(t).Transparent
}

var builtins = []Def{
	{ID: Air, Name: "air", Transparent: true, Solid: false, Hardness: 0},
	{ID: Dirt, Name: "dirt", Solid: true, Hardness: 0.5},
	{ID: Stone, Name: "stone", Solid: true, Hardness: 1.5},
	{ID: Grass, Name: "grass", Solid: true, Hardness: 0.6},
	{ID: Sand, Name: "sand", Solid: true, Hardness: 0.5},
	{ID: Sandstone, Name: "sandstone", Solid: true, Hardness: 0.8},
	{ID: SnowBlock, Name: "snow_block", Solid: true, Hardness: 0.2},
	{ID: Ice, Name: "ice", Transparent: true, Solid: true, Hardness: 0.5},
	{ID: JungleGrass, Name: "jungle_grass", Solid: true, Hardness: 0.6},
	{ID: JungleDirt, Name: "jungle_dirt", Solid: true, Hardness: 0.5},
	{ID: Wood, Name: "wood", Solid: true, Hardness: 2.0},
	{ID: Leaves, Name: "leaves", Transparent: true, Solid: true, Hardness: 0.2},
	{ID: Cactus, Name: "cactus", Solid: true, Hardness: 0.4},
	{ID: SnowLayer, Name: "snow_layer", Transparent: true, Solid: false, Hardness: 0.1},
	{ID: Bedrock, Name: "bedrock", Solid: true, Hardness: HardnessUnbreakable},
}
