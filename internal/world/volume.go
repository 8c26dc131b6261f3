package world

import "voxelcore/internal/block"

// maxRunLength caps a single RLE run so run lengths fit a fixed numeric width.
const maxRunLength = 1 << 16

// Volume is the block storage of one chunk column. It keeps two coexisting
// representations:
//
//   - a dense cache, one block.Type per cell, indexed y*16*16 + z*16 + x,
//     present while cacheValid is set;
//   - a compressed form: a palette of the distinct block types in the volume
//     (first-seen order) plus parallel run-length / run-value arrays produced
//     by collapsing consecutive identical cells in index order.
//
// Random access goes through the cache, transparently rebuilt from the
// compressed form when absent. Compress and DiscardCache are driven by the
// streaming retention policy, not called automatically. A Volume is owned by
// a single goroutine at a time (the generating worker, then the main thread)
// and is not internally synchronized.
//
// Palette indices are single bytes, so a volume must hold at most 256
// distinct block types. The block catalog is far smaller than that; a larger
// palette would wrap its indices and decode to the wrong blocks.
type Volume struct {
	length int

	palette        []block.Type
	runLengths     []uint32
	runValues      []uint8
	bitsPerEntry   uint8
	compressedSize int

	cache      []block.Type
	cacheValid bool
	dirty      bool
}

// NewVolume creates an all-air volume with the given cell count.
func NewVolume(length int) *Volume {
	v := &Volume{
		length:     length,
		cache:      make([]block.Type, length),
		cacheValid: true,
		dirty:      true,
	}
	// Prime the compressed form so a discarded fresh cache still decodes.
	v.palette = []block.Type{block.Air}
	for remaining := length; remaining > 0; {
		run := min(remaining, maxRunLength)
		v.runLengths = append(v.runLengths, uint32(run))
		v.runValues = append(v.runValues, 0)
		remaining -= run
	}
	v.bitsPerEntry = 4
	v.compressedSize = v.estimateSize()
	return v
}

// Len returns the cell count of the volume.
func (v *Volume) Len() int {
	return v.length
}

// Get returns the block at the given flat index.
func (v *Volume) Get(index int) block.Type {
	v.ensureCache()
	return v.cache[index]
}

// Set writes the block at the given flat index. The volume only becomes
// dirty when the value actually changes, so redundant writes never force a
// recompression.
func (v *Volume) Set(index int, t block.Type) {
	v.ensureCache()
	if v.cache[index] != t {
		v.cache[index] = t
		v.dirty = true
	}
}

// Fill overwrites every cell with t.
func (v *Volume) Fill(t block.Type) {
	v.ensureCache()
	for i := range v.cache {
		v.cache[i] = t
	}
	v.dirty = true
}

// Dirty reports whether the cache holds edits not yet compressed.
func (v *Volume) Dirty() bool {
	return v.dirty
}

// CacheResident reports whether the dense cache is currently allocated.
func (v *Volume) CacheResident() bool {
	return v.cacheValid && v.cache != nil
}

// Compress rebuilds the palette+RLE form from the cache. It is a no-op when
// the volume is not dirty, so calling it twice in a row yields identical
// arrays both times, and a no-op compress leaves a discarded cache discarded.
func (v *Volume) Compress() {
	if !v.dirty {
		return
	}
	v.ensureCache()
	if v.length == 0 {
		v.palette = nil
		v.runLengths = nil
		v.runValues = nil
		v.bitsPerEntry = 4
		v.compressedSize = 0
		v.dirty = false
		return
	}

	paletteIndex := make(map[block.Type]uint8)
	palette := make([]block.Type, 0, 8)
	indices := make([]uint8, v.length)
	for i, t := range v.cache {
		id, ok := paletteIndex[t]
		if !ok {
			id = uint8(len(palette))
			paletteIndex[t] = id
			palette = append(palette, t)
		}
		indices[i] = id
	}

	v.palette = palette
	if len(palette) <= 16 {
		v.bitsPerEntry = 4
	} else {
		v.bitsPerEntry = 8
	}

	v.runLengths = v.runLengths[:0]
	v.runValues = v.runValues[:0]
	current := indices[0]
	runLen := 1
	for _, id := range indices[1:] {
		if id == current {
			runLen++
			continue
		}
		v.flushRun(current, runLen)
		current = id
		runLen = 1
	}
	v.flushRun(current, runLen)

	v.compressedSize = v.estimateSize()
	v.dirty = false
}

// flushRun appends a run, splitting it into maxRunLength pieces if needed.
func (v *Volume) flushRun(value uint8, runLen int) {
	for remaining := runLen; remaining > 0; {
		run := min(remaining, maxRunLength)
		v.runLengths = append(v.runLengths, uint32(run))
		v.runValues = append(v.runValues, value)
		remaining -= run
	}
}

// Decompress returns a defensive copy of the dense contents.
func (v *Volume) Decompress() []block.Type {
	v.ensureCache()
	out := make([]block.Type, v.length)
	copy(out, v.cache)
	return out
}

// DiscardCache drops the dense cache to shrink the volume to its compressed
// footprint. Refused while dirty: uncompressed edits must never be lost.
func (v *Volume) DiscardCache() {
	if v.dirty {
		return
	}
	v.cache = nil
	v.cacheValid = false
}

// CompressedSize returns the byte estimate of the compressed form.
func (v *Volume) CompressedSize() int {
	return v.compressedSize
}

// BitsPerEntry returns the sizing hint for palette indices (4 while the
// palette fits in 16 entries, 8 otherwise). Informational only; runs are not
// bit-packed.
func (v *Volume) BitsPerEntry() uint8 {
	return v.bitsPerEntry
}

// Palette returns a snapshot of the palette.
func (v *Volume) Palette() []block.Type {
	out := make([]block.Type, len(v.palette))
	copy(out, v.palette)
	return out
}

// RunLengths returns a snapshot of the run-length array.
func (v *Volume) RunLengths() []uint32 {
	out := make([]uint32, len(v.runLengths))
	copy(out, v.runLengths)
	return out
}

// RunValues returns a snapshot of the run palette-index array.
func (v *Volume) RunValues() []uint8 {
	out := make([]uint8, len(v.runValues))
	copy(out, v.runValues)
	return out
}

// ensureCache rebuilds the dense cache from the compressed form if it is
// absent. Short or malformed compressed arrays degrade to air padding; a
// visually wrong chunk beats a crashed world.
func (v *Volume) ensureCache() {
	if v.cacheValid && v.cache != nil {
		return
	}
	v.cache = make([]block.Type, v.length)
	v.cacheValid = true
	if len(v.runLengths) == 0 || len(v.palette) == 0 {
		return // zero value is air
	}
	cursor := 0
	for i := 0; i < len(v.runLengths) && cursor < v.length; i++ {
		if i >= len(v.runValues) {
			break
		}
		t := block.Air
		if int(v.runValues[i]) < len(v.palette) {
			t = v.palette[v.runValues[i]]
		}
		for j := uint32(0); j < v.runLengths[i] && cursor < v.length; j++ {
			v.cache[cursor] = t
			cursor++
		}
	}
	// Anything past the encoded runs stays air.
}

func (v *Volume) estimateSize() int {
	return len(v.palette)*4 + len(v.runValues) + len(v.runLengths)*4
}
