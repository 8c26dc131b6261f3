package world

import (
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"

	"voxelcore/internal/block"
)

// TerrainGenerator fills a chunk's volume from nothing. Implementations must
// be deterministic given the chunk position and the world seed, and must not
// assume any neighbor chunk exists.
type TerrainGenerator interface {
	Generate(c *Chunk)
	// HeightAt returns the surface height at a world column, used for
	// scheduler height scoring and feature placement.
	HeightAt(worldX, worldZ int) int
}

// FeatureGenerator decorates a chunk after terrain fill (trees, cacti, snow
// layers). It mutates the chunk in place and may be disabled entirely.
type FeatureGenerator interface {
	Decorate(c *Chunk)
}

// Biome is a coarse climate classification driving surface blocks and
// terrain shape.
type Biome int

const (
	BiomePlains Biome = iota
	BiomeDesert
	BiomeSnow
	BiomeJungle
)

type biomeProfile struct {
	surface      block.Type
	subsurface   block.Type
	baseHeight   float64
	heightVar    float64
	surfaceDepth int
}

var biomeProfiles = map[Biome]biomeProfile{
	BiomePlains: {block.Grass, block.Dirt, 64, 12, 3},
	BiomeDesert: {block.Sand, block.Sandstone, 62, 8, 4},
	BiomeSnow:   {block.SnowBlock, block.Dirt, 68, 14, 3},
	BiomeJungle: {block.JungleGrass, block.JungleDirt, 66, 16, 3},
}

// BiomeSampler maps world columns to biomes through two low-frequency
// climate noise fields.
type BiomeSampler struct {
	temperature *perlin.Perlin
	moisture    *perlin.Perlin
}

const climateScale = 1.0 / 512.0

// NewBiomeSampler creates a sampler seeded from the world seed.
func NewBiomeSampler(seed int64) *BiomeSampler {
	return &BiomeSampler{
		temperature: perlin.NewPerlin(2, 2, 3, seed+101),
		moisture:    perlin.NewPerlin(2, 2, 3, seed+733),
	}
}

// Sample returns the biome at a world column.
func (b *BiomeSampler) Sample(worldX, worldZ int) Biome {
	x := float64(worldX) * climateScale
	z := float64(worldZ) * climateScale
	temp := b.temperature.Noise2D(x, z)
	moist := b.moisture.Noise2D(x, z)

	switch {
	case temp < -0.25:
		return BiomeSnow
	case temp > 0.2 && moist < -0.05:
		return BiomeDesert
	case temp > 0.1 && moist > 0.25:
		return BiomeJungle
	default:
		return BiomePlains
	}
}

// PerlinTerrain is the default terrain generator: a continent-scale noise
// band plus biome-scaled detail noise, with a bedrock floor at Y=0.
type PerlinTerrain struct {
	seed      int64
	continent *perlin.Perlin
	detail    *perlin.Perlin
	biomes    *BiomeSampler
}

const (
	continentScale = 1.0 / 1024.0
	detailScale    = 1.0 / 96.0
)

// NewPerlinTerrain creates the default generator for a seed.
func NewPerlinTerrain(seed int64) *PerlinTerrain {
	return &PerlinTerrain{
		seed:      seed,
		continent: perlin.NewPerlin(2, 2, 3, seed),
		detail:    perlin.NewPerlin(2, 2, 4, seed+500),
		biomes:    NewBiomeSampler(seed),
	}
}

// Biomes exposes the sampler so feature generation matches terrain biomes.
func (g *PerlinTerrain) Biomes() *BiomeSampler {
	return g.biomes
}

// HeightAt computes the surface height of a world column.
func (g *PerlinTerrain) HeightAt(worldX, worldZ int) int {
	profile := biomeProfiles[g.biomes.Sample(worldX, worldZ)]

	cx := float64(worldX) * continentScale
	cz := float64(worldZ) * continentScale
	dx := float64(worldX) * detailScale
	dz := float64(worldZ) * detailScale

	h := profile.baseHeight +
		g.continent.Noise2D(cx, cz)*24 +
		g.detail.Noise2D(dx, dz)*profile.heightVar

	return int(math.Floor(max(min(h, ChunkSizeY-1), 1)))
}

// Generate fills the chunk column by column: bedrock at Y=0, stone core,
// biome subsurface, biome surface.
func (g *PerlinTerrain) Generate(c *Chunk) {
	baseX := c.pos.X * ChunkSizeX
	baseZ := c.pos.Z * ChunkSizeZ

	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			worldX := baseX + x
			worldZ := baseZ + z
			profile := biomeProfiles[g.biomes.Sample(worldX, worldZ)]
			height := g.HeightAt(worldX, worldZ)

			c.SetBlock(x, 0, z, block.Bedrock)

			stoneTop := max(1, height-profile.surfaceDepth)
			for y := 1; y <= stoneTop; y++ {
				c.SetBlock(x, y, z, block.Stone)
			}
			for y := stoneTop + 1; y < height; y++ {
				c.SetBlock(x, y, z, profile.subsurface)
			}
			c.SetBlock(x, height, z, profile.surface)
		}
	}
}

// BiomeFeatures is the default feature pass: trees on plains and jungle,
// cacti on desert, snow layers on snow. Placement is deterministic per world
// column, so the same chunk always decorates identically regardless of load
// order. Features are clipped to the chunk; nothing reaches into neighbors.
type BiomeFeatures struct {
	seed    int64
	terrain *PerlinTerrain
}

// Per-chunk feature caps.
const (
	maxPlainsTrees = 6
	maxJungleTrees = 8
	maxDesertCacti = 10
	maxSnowColumns = 64
)

// NewBiomeFeatures creates the default feature generator.
func NewBiomeFeatures(seed int64, terrain *PerlinTerrain) *BiomeFeatures {
	return &BiomeFeatures{seed: seed, terrain: terrain}
}

// Decorate places biome features on top of generated terrain.
func (f *BiomeFeatures) Decorate(c *Chunk) {
	baseX := c.pos.X * ChunkSizeX
	baseZ := c.pos.Z * ChunkSizeZ

	var plainsTrees, jungleTrees, cacti, snowColumns int

	for x := 0; x < ChunkSizeX; x++ {
		for z := 0; z < ChunkSizeZ; z++ {
			worldX := baseX + x
			worldZ := baseZ + z
			biome := f.terrain.biomes.Sample(worldX, worldZ)
			height := f.terrain.HeightAt(worldX, worldZ)
			if height+1 >= ChunkSizeY {
				continue
			}

			rng := rand.New(rand.NewSource(
				f.seed + int64(worldX)*341873128712 + int64(worldZ)*132897987541))

			switch biome {
			case BiomePlains:
				if plainsTrees < maxPlainsTrees && rng.Intn(120) == 0 {
					if f.placeTree(c, x, height, z, rng) {
						plainsTrees++
					}
				}
			case BiomeJungle:
				if jungleTrees < maxJungleTrees && rng.Intn(80) == 0 {
					if f.placeTree(c, x, height, z, rng) {
						jungleTrees++
					}
				}
			case BiomeDesert:
				if cacti < maxDesertCacti && rng.Intn(90) == 0 {
					if f.placeCactus(c, x, height, z, rng) {
						cacti++
					}
				}
			case BiomeSnow:
				if snowColumns < maxSnowColumns && rng.Intn(3) == 0 {
					if c.SetBlock(x, height+1, z, block.SnowLayer) {
						snowColumns++
					}
				}
			}
		}
	}
}

// placeTree grows a trunk with a leaf canopy, clipped to the chunk.
func (f *BiomeFeatures) placeTree(c *Chunk, x, surfaceY, z int, rng *rand.Rand) bool {
	trunkHeight := 4 + rng.Intn(3)
	top := surfaceY + trunkHeight
	if top+2 >= ChunkSizeY {
		return false
	}
	for y := surfaceY + 1; y <= top; y++ {
		if c.Block(x, y, z) != block.Air {
			return false
		}
	}
	for y := surfaceY + 1; y <= top; y++ {
		c.SetBlock(x, y, z, block.Wood)
	}
	for dy := 0; dy <= 2; dy++ {
		radius := 2 - dy
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if dx == 0 && dz == 0 && dy == 0 {
					continue // trunk top stays wood
				}
				lx, ly, lz := x+dx, top+dy, z+dz
				if c.Block(lx, ly, lz) == block.Air {
					c.SetBlock(lx, ly, lz, block.Leaves)
				}
			}
		}
	}
	return true
}

// placeCactus grows a 1-3 block cactus column.
func (f *BiomeFeatures) placeCactus(c *Chunk, x, surfaceY, z int, rng *rand.Rand) bool {
	height := 1 + rng.Intn(3)
	if surfaceY+height >= ChunkSizeY {
		return false
	}
	for y := surfaceY + 1; y <= surfaceY+height; y++ {
		if c.Block(x, y, z) != block.Air {
			return false
		}
	}
	for y := surfaceY + 1; y <= surfaceY+height; y++ {
		c.SetBlock(x, y, z, block.Cactus)
	}
	return true
}
