// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

import (
	"math"
	"math/rand"

	"github.com/golang/glog"
)

// A BuildingUpdate is delivered to the host callback whenever a
// building's observable state changes from inside the core.
type BuildingUpdate struct {
	Pos  Pos
	Name string
	Kind BuildingKind

	Message string          // message text after a printflush
	Enabled bool            // switch state
	Config  Value           // sorter selection
	AsmErr  string          // processor assembly error, "" if none
	Links   map[Pos]string  // processor resolved links
}

// A Sim is one building network and its scheduler. All methods must be
// called from a single goroutine; the simulation is cooperative and
// re-entrant only at tick boundaries.
type Sim struct {
	registry *registry
	interner *Interner
	catalog  *Catalog
	rand     *rand.Rand

	targetFPS  int
	tickCount  uint64
	timeMS     float64
	started    bool
	startStamp float64

	onUpdate func(BuildingUpdate)
}

// NewSim creates an empty simulation. A nil catalog selects the
// default content set.
func NewSim(cat *Catalog) *Sim {
	if cat == nil {
		cat = DefaultCatalog()
	} else if cat.byName == nil {
		cat.index()
	}
	return &Sim{
		registry:  newRegistry(),
		interner:  NewInterner(),
		catalog:   cat,
		rand:      rand.New(rand.NewSource(1)),
		targetFPS: 60,
	}
}

// Interner returns the simulation's shared string interner.
func (s *Sim) Interner() *Interner { return s.interner }

// Catalog returns the injected content catalog.
func (s *Sim) Catalog() *Catalog { return s.catalog }

// OnBuildingUpdate registers the core-to-host state change callback.
func (s *Sim) OnBuildingUpdate(fn func(BuildingUpdate)) {
	s.onUpdate = fn
}

// AddProcessor places a processor building anchored at pos.
func (s *Sim) AddProcessor(pos Pos, kind ProcKind) (*Building, error) {
	b := &Building{Kind: kind.Block(), Pos: pos}
	b.Proc = newProcessor(s, pos, kind)
	return s.place(b)
}

// AddDisplay places a display with the given pixel dimensions.
func (s *Sim) AddDisplay(pos Pos, large bool, w, h int) (*Building, error) {
	kind := LogicDisplayBlock
	if large {
		kind = LargeLogicDisplayBlock
	}
	return s.place(&Building{Kind: kind, Pos: pos, DisplayW: w, DisplayH: h})
}

// AddMemory places a memory cell, or a memory bank when bank is true.
func (s *Sim) AddMemory(pos Pos, bank bool) (*Building, error) {
	kind := MemoryCellBlock
	if bank {
		kind = MemoryBankBlock
	}
	return s.place(&Building{Kind: kind, Pos: pos, Memory: make([]float64, kinds[kind].memCap)})
}

// AddMessage places a message building.
func (s *Sim) AddMessage(pos Pos) (*Building, error) {
	return s.place(&Building{Kind: MessageBlock, Pos: pos})
}

// AddSwitch places a switch building, initially off.
func (s *Sim) AddSwitch(pos Pos) (*Building, error) {
	return s.place(&Building{Kind: SwitchBlock, Pos: pos})
}

// AddSorter places a sorter building with no selected content.
func (s *Sim) AddSorter(pos Pos) (*Building, error) {
	return s.place(&Building{Kind: SorterBlock, Pos: pos})
}

func (s *Sim) place(b *Building) (*Building, error) {
	if err := s.registry.place(b); err != nil {
		return nil, err
	}
	glog.V(1).Infof("placed %s at (%d,%d)", b.Name, b.Pos.X, b.Pos.Y)
	return b, nil
}

// RemoveBuilding deletes the building covering pos. Every dangling
// reference to it resolves to null thereafter. Returns false if the
// tile was empty.
func (s *Sim) RemoveBuilding(pos Pos) bool {
	b := s.registry.at(pos)
	if b == nil {
		return false
	}
	s.registry.remove(pos)
	glog.V(1).Infof("removed %s at (%d,%d)", b.Name, b.Pos.X, b.Pos.Y)
	return true
}

// BuildingAt returns the building covering pos, or nil.
func (s *Sim) BuildingAt(pos Pos) *Building {
	return s.registry.at(pos)
}

// BuildingName returns the generated name of the building covering
// pos, or "" if the tile is empty.
func (s *Sim) BuildingName(pos Pos) string {
	if b := s.registry.at(pos); b != nil {
		return b.Name
	}
	return ""
}

// SetProcessorConfig assigns source code and link positions to the
// processor at pos, replacing its prior program and variable store.
// The returned map lists the resolved link bindings by grid position.
// A malformed source returns the assembly error; the processor is left
// with an empty program but keeps its link metadata.
func (s *Sim) SetProcessorConfig(pos Pos, source string, links []Pos) (map[Pos]string, error) {
	b := s.registry.at(pos)
	if b == nil {
		return nil, ErrNoBuilding
	}
	if !b.IsProcessor() {
		return nil, ErrWrongKind
	}

	resolved, asmErr := b.Proc.setConfig(source, links)
	s.notify(b)
	if asmErr != nil {
		glog.V(1).Infof("%s: %v", b.Name, asmErr)
		return resolved, asmErr
	}
	return resolved, nil
}

// SetMessageText sets a message building's text directly from the host.
func (s *Sim) SetMessageText(pos Pos, text string) error {
	b := s.registry.at(pos)
	if b == nil {
		return ErrNoBuilding
	}
	if b.Kind != MessageBlock {
		return ErrWrongKind
	}
	if len(text) > maxPrintLen {
		text = text[:maxPrintLen]
	}
	b.Message = text
	s.notify(b)
	return nil
}

// SetSwitchEnabled sets a switch building's state from the host.
func (s *Sim) SetSwitchEnabled(pos Pos, on bool) error {
	b := s.registry.at(pos)
	if b == nil {
		return ErrNoBuilding
	}
	if b.Kind != SwitchBlock {
		return ErrWrongKind
	}
	b.Enabled = on
	s.notify(b)
	return nil
}

// SetTargetFPS records the host's tick rate. It is informational only:
// every Tick call runs exactly one simulation step.
func (s *Sim) SetTargetFPS(n int) {
	if n > 0 {
		s.targetFPS = n
	}
}

// TargetFPS returns the recorded host tick rate.
func (s *Sim) TargetFPS() int { return s.targetFPS }

// TickCount returns the number of completed simulation steps.
func (s *Sim) TickCount() uint64 { return s.tickCount }

// Time returns milliseconds of simulated wall time since start.
func (s *Sim) Time() float64 { return s.timeMS }

func (s *Sim) timeSecs() float64 { return s.timeMS / 1000 }

// Tick advances the simulation by exactly one step. The stamp is the
// host's monotonic clock; missed real-time ticks are never replayed,
// the host loop throttles instead. Processors run in ascending packed
// grid-position order, so results are deterministic regardless of
// insertion order.
func (s *Sim) Tick(stamp float64) {
	if !s.started {
		s.started = true
		s.startStamp = stamp
	}
	s.timeMS = stamp - s.startStamp

	glog.V(2).Infof("tick %d t=%.2fms", s.tickCount, s.timeMS)

	for _, key := range s.registry.ordered() {
		b := s.registry.atPacked(key)
		if b != nil && b.IsProcessor() {
			b.Proc.runTick()
		}
	}
	s.tickCount++
}

// EachBuilding visits every building in ascending packed grid-position
// order, the same order the scheduler uses.
func (s *Sim) EachBuilding(fn func(*Building)) {
	for _, key := range s.registry.ordered() {
		if b := s.registry.atPacked(key); b != nil {
			fn(b)
		}
	}
}

// building resolves a building-reference value against the grid.
// Anything else, including a dangling reference, is nil.
func (s *Sim) building(v Value) *Building {
	if v.Kind != KindBuilding {
		return nil
	}
	return s.registry.atPacked(v.Pos)
}

func (s *Sim) buildingAtPacked(pp PackedPos) *Building {
	return s.registry.atPacked(pp)
}

// notify delivers a building state change to the host callback.
func (s *Sim) notify(b *Building) {
	if s.onUpdate == nil {
		return
	}
	u := BuildingUpdate{
		Pos:     b.Pos,
		Name:    b.Name,
		Kind:    b.Kind,
		Message: b.Message,
		Enabled: b.Enabled,
		Config:  b.Config,
	}
	if b.IsProcessor() {
		if err := b.Proc.Err(); err != nil {
			u.AsmErr = err.Error()
		}
		u.Links = make(map[Pos]string, len(b.Proc.links))
		for _, l := range b.Proc.links {
			u.Links[l.pos.Unpack()] = l.name
		}
	}
	s.onUpdate(u)
}

// noise2 is a deterministic smooth 2D value noise in [-1, 1]. It hashes
// the integer lattice and blends with a smoothstep, which is enough for
// mlog programs that want stable pseudo-terrain.
func (s *Sim) noise2(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	tx := smooth(x - x0)
	ty := smooth(y - y0)

	ix, iy := int64(x0), int64(y0)
	v00 := latticeHash(ix, iy)
	v10 := latticeHash(ix+1, iy)
	v01 := latticeHash(ix, iy+1)
	v11 := latticeHash(ix+1, iy+1)

	a := v00 + (v10-v00)*tx
	b := v01 + (v11-v01)*tx
	return a + (b-a)*ty
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

// latticeHash maps an integer lattice point to [-1, 1].
func latticeHash(x, y int64) float64 {
	h := uint64(x)*0x9e3779b97f4a7c15 ^ uint64(y)*0xc2b2ae3d27d4eb4f
	h ^= h >> 29
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 32
	return float64(h&0xfffff)/524287.5 - 1
}
