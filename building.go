// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

import (
	"errors"
	"sort"
	"strconv"
)

// Errors returned by host-facing registry operations.
var (
	ErrPositionOccupied = errors.New("building footprint overlaps an existing building")
	ErrNoBuilding       = errors.New("no building at position")
	ErrWrongKind        = errors.New("operation not supported by building kind")
)

// A Pos is a grid position. The anchor tile of a building's footprint.
type Pos struct {
	X, Y int
}

// A PackedPos packs a grid position into a single 64-bit key. Packed
// keys are the canonical building identity: cross-building references
// hold a PackedPos and re-resolve it on every access, so a removed
// building simply stops resolving.
type PackedPos uint64

// Pack converts a position to its packed key.
func (p Pos) Pack() PackedPos {
	return PackedPos(uint64(uint32(int32(p.X)))<<32 | uint64(uint32(int32(p.Y))))
}

// XY unpacks the grid coordinates.
func (pp PackedPos) XY() (x, y int) {
	return int(int32(pp >> 32)), int(int32(pp & 0xffffffff))
}

// Unpack converts a packed key back to a position.
func (pp PackedPos) Unpack() Pos {
	x, y := pp.XY()
	return Pos{x, y}
}

// A BuildingKind identifies the type of a building and determines its
// footprint, base name and kind-specific state.
type BuildingKind byte

// All building kinds known to the core.
const (
	MicroProcessorBlock BuildingKind = iota
	LogicProcessorBlock
	HyperProcessorBlock
	WorldProcessorBlock
	MemoryCellBlock
	MemoryBankBlock
	LogicDisplayBlock
	LargeLogicDisplayBlock
	MessageBlock
	SwitchBlock
	SorterBlock
)

// Per-kind static data: base name used for generated building names,
// footprint edge length, and memory capacity for cell-like kinds.
type kindData struct {
	baseName string
	size     int
	memCap   int
}

var kinds = []kindData{
	{"micro-processor", 1, 0},
	{"logic-processor", 2, 0},
	{"hyper-processor", 3, 0},
	{"world-processor", 1, 0},
	{"cell", 1, 64},
	{"bank", 2, 512},
	{"display", 3, 0},
	{"display", 4, 0},
	{"message", 1, 0},
	{"switch", 1, 0},
	{"sorter", 1, 0},
}

// BaseName returns the name stem used when generating building names.
func (k BuildingKind) BaseName() string {
	return kinds[k].baseName
}

// Size returns the footprint edge length in tiles.
func (k BuildingKind) Size() int {
	return kinds[k].size
}

func (k BuildingKind) String() string {
	return kinds[k].baseName
}

// blockContent returns the catalog enumerant for a building kind, used
// by the @type sensor. Ordinals follow the default catalog's block
// list, which deliberately mirrors this enum.
func (k BuildingKind) blockContent() Value {
	return ContentVal(CatBlock, int(k))
}

// A Building is one placed structure on the grid. Kind-specific state
// lives in the optional fields; only the fields matching the kind are
// meaningful.
type Building struct {
	Kind BuildingKind
	Pos  Pos
	Name string

	Proc *Processor // processor kinds

	Memory []float64 // memory cell / bank

	Message string // message: flushed text, capped at maxPrintLen

	Enabled bool // switch state

	Config Value // sorter selected content

	DisplayW  int           // display pixel width
	DisplayH  int           // display pixel height
	DrawQueue []DrawCommand // display render queue, appended to on drawflush
}

// IsProcessor reports whether the building executes mlog code.
func (b *Building) IsProcessor() bool {
	return b.Proc != nil
}

// The registry maps every covered grid tile to its building. The
// anchor list is kept sorted by packed position so iteration order is
// deterministic regardless of insertion order.
type registry struct {
	tiles   map[PackedPos]*Building
	anchors []PackedPos // sorted anchor keys
	dirty   bool
	counts  map[BuildingKind]int // name counters, monotonic per kind
}

func newRegistry() *registry {
	return &registry{
		tiles:  make(map[PackedPos]*Building),
		counts: make(map[BuildingKind]int),
	}
}

// place inserts a building whose footprint is anchored at b.Pos. It
// fails with ErrPositionOccupied if any covered tile is already taken.
// The building's name is assigned here and is stable thereafter.
func (r *registry) place(b *Building) error {
	size := b.Kind.Size()
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			key := Pos{b.Pos.X + dx, b.Pos.Y + dy}.Pack()
			if _, taken := r.tiles[key]; taken {
				return ErrPositionOccupied
			}
		}
	}

	r.counts[b.Kind]++
	b.Name = b.Kind.BaseName() + strconv.Itoa(r.counts[b.Kind])

	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			r.tiles[Pos{b.Pos.X + dx, b.Pos.Y + dy}.Pack()] = b
		}
	}
	r.dirty = true
	return nil
}

// remove deletes the building covering pos. Returns false if the tile
// is empty. Name counters are not rewound; names stay monotonic.
func (r *registry) remove(pos Pos) bool {
	b, ok := r.tiles[pos.Pack()]
	if !ok {
		return false
	}
	size := b.Kind.Size()
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			delete(r.tiles, Pos{b.Pos.X + dx, b.Pos.Y + dy}.Pack())
		}
	}
	r.dirty = true
	return true
}

// at returns the building covering pos, or nil.
func (r *registry) at(pos Pos) *Building {
	return r.tiles[pos.Pack()]
}

// atPacked resolves a packed reference. Dangling references resolve to
// nil; callers treat nil as null.
func (r *registry) atPacked(pp PackedPos) *Building {
	return r.tiles[pp]
}

// ordered returns the anchor keys of all buildings in ascending packed
// order, rebuilding the sorted view if placements changed.
func (r *registry) ordered() []PackedPos {
	if r.dirty {
		seen := make(map[PackedPos]bool, len(r.tiles))
		r.anchors = r.anchors[:0]
		for _, b := range r.tiles {
			key := b.Pos.Pack()
			if !seen[key] {
				seen[key] = true
				r.anchors = append(r.anchors, key)
			}
		}
		sort.Slice(r.anchors, func(i, j int) bool {
			return r.anchors[i] < r.anchors[j]
		})
		r.dirty = false
	}
	return r.anchors
}

// chebyshev returns the Chebyshev distance between two positions.
func chebyshev(a, b Pos) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
