// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

// A ProcKind selects the processor model. Kinds differ in their
// per-tick instruction budget and in whether world-level opcodes are
// permitted.
type ProcKind byte

// All processor kinds.
const (
	Micro ProcKind = iota
	Logic
	Hyper
	World
)

// worldIPT bounds the "unlimited" world-processor budget so a tight
// jump loop cannot wedge the scheduler inside a single tick.
const worldIPT = 1 << 20

// IPT returns the kind's instructions-per-tick budget.
func (k ProcKind) IPT() int {
	switch k {
	case Micro:
		return 2
	case Logic:
		return 8
	case Hyper:
		return 25
	default:
		return worldIPT
	}
}

func (k ProcKind) String() string {
	return [...]string{"micro", "logic", "hyper", "world"}[k]
}

// Block returns the building kind hosting this processor kind.
func (k ProcKind) Block() BuildingKind {
	return [...]BuildingKind{
		MicroProcessorBlock, LogicProcessorBlock,
		HyperProcessorBlock, WorldProcessorBlock,
	}[k]
}

// A builtin identifies one of the reserved @variables. Builtins occupy
// ordinary variable slots but their values are computed at read time
// from processor and scheduler state.
type builtin byte

const (
	builtinNone builtin = iota
	builtinCounter
	builtinThis
	builtinThisX
	builtinThisY
	builtinLinks
	builtinIpt
	builtinTime
	builtinTick
	builtinSecond
	builtinMinute
	builtinWaveNumber
	builtinWaveTime

	numBuiltins
)

var builtinByName = map[string]builtin{
	"counter":    builtinCounter,
	"this":       builtinThis,
	"thisx":      builtinThisX,
	"thisy":      builtinThisY,
	"links":      builtinLinks,
	"ipt":        builtinIpt,
	"time":       builtinTime,
	"tick":       builtinTick,
	"second":     builtinSecond,
	"minute":     builtinMinute,
	"waveNumber": builtinWaveNumber,
	"waveTime":   builtinWaveTime,
}

// A Variable is one named slot in a processor's store.
type Variable struct {
	Name     string
	Val      Value
	ReadOnly bool

	special builtin // non-zero for reserved @variables
}

// A link is a processor-local named binding to another building,
// established by grid position at code-assignment time.
type link struct {
	name string
	pos  PackedPos
}

// A Processor holds the execution state of one processor building.
type Processor struct {
	kind ProcKind
	pos  Pos
	sim  *Sim

	source  string
	code    []Instruction
	vars    []Variable
	symbols map[string]int
	builtin [numBuiltins]int
	links   []link
	asmErr  *AsmError

	pc         int
	ipt        int
	sleeping   bool
	sleepUntil float64 // seconds since simulation start
	halted     bool

	draw     []DrawCommand
	printBuf []byte
}

func newProcessor(sim *Sim, pos Pos, kind ProcKind) *Processor {
	p := &Processor{kind: kind, pos: pos, sim: sim, ipt: kind.IPT()}
	p.reset()
	return p
}

// Kind returns the processor model.
func (p *Processor) Kind() ProcKind { return p.kind }

// PC returns the current program counter.
func (p *Processor) PC() int { return p.pc }

// Halted reports whether a stop instruction has halted the processor.
func (p *Processor) Halted() bool { return p.halted }

// Err returns the assembly error from the last code assignment, if any.
func (p *Processor) Err() *AsmError { return p.asmErr }

// Source returns the assigned source text.
func (p *Processor) Source() string { return p.source }

// Program returns the assembled instruction array.
func (p *Processor) Program() []Instruction { return p.code }

// reset clears all execution state and reinstalls the builtin
// variables. Called on creation and on every code assignment.
func (p *Processor) reset() {
	p.code = nil
	p.vars = p.vars[:0]
	p.symbols = make(map[string]int)
	p.links = nil
	p.asmErr = nil
	p.pc = 0
	p.ipt = p.kind.IPT()
	p.sleeping = false
	p.halted = false
	p.draw = nil
	p.printBuf = nil

	for b := builtinCounter; b < numBuiltins; b++ {
		p.builtin[b] = len(p.vars)
		p.vars = append(p.vars, Variable{
			Name:     "@" + builtinName(b),
			ReadOnly: b != builtinCounter,
			special:  b,
		})
	}
}

func builtinName(b builtin) string {
	for name, bb := range builtinByName {
		if bb == b {
			return name
		}
	}
	return ""
}

// setConfig rebinds links, assembles source, and replaces the program
// and variable store. On assembly failure the processor keeps its link
// metadata but has an empty program.
func (p *Processor) setConfig(source string, linkPositions []Pos) (map[Pos]string, *AsmError) {
	p.reset()
	p.source = source

	// Bind a read-only variable for every live link target in range.
	// Chebyshev distance is capped at 10 tiles except for world
	// processors. Link order is preserved; dead references drop out.
	resolved := make(map[Pos]string)
	for _, lp := range linkPositions {
		b := p.sim.registry.at(lp)
		if b == nil {
			continue
		}
		if p.kind != World && chebyshev(p.pos, b.Pos) > linkRange {
			continue
		}
		if _, bound := p.symbols[b.Name]; bound {
			continue
		}
		slot := len(p.vars)
		p.symbols[b.Name] = slot
		p.vars = append(p.vars, Variable{
			Name:     b.Name,
			Val:      BuildingVal(b.Pos.Pack()),
			ReadOnly: true,
		})
		p.links = append(p.links, link{name: b.Name, pos: b.Pos.Pack()})
		resolved[b.Pos] = b.Name
	}

	if err := p.assemble(source); err != nil {
		p.code = nil
		p.asmErr = err
		return resolved, err
	}
	return resolved, nil
}

// linkRange is the maximum Chebyshev distance at which a non-world
// processor can bind a link.
const linkRange = 10

// varSlot returns the slot for a named user variable, allocating one
// on first reference. Link bindings registered at config time shadow
// user variables of the same name.
func (p *Processor) varSlot(name string) int {
	if slot, ok := p.symbols[name]; ok {
		return slot
	}
	slot := len(p.vars)
	p.symbols[name] = slot
	p.vars = append(p.vars, Variable{Name: name})
	return slot
}

// builtinSlot returns the slot of a reserved @variable.
func (p *Processor) builtinSlot(b builtin) int {
	return p.builtin[b]
}

// Var returns the current value of a named variable, for host and test
// inspection. Builtins are computed the same way a program would see
// them.
func (p *Processor) Var(name string) Value {
	if len(name) > 0 && name[0] == '@' {
		if b, ok := builtinByName[name[1:]]; ok {
			return p.loadBuiltin(b)
		}
	}
	if slot, ok := p.symbols[name]; ok {
		return p.vars[slot].Val
	}
	return Null
}

// VarNames lists the link and user variable names in slot order, for
// host inspection. Builtins are excluded.
func (p *Processor) VarNames() []string {
	var names []string
	for i := range p.vars {
		if p.vars[i].special == builtinNone {
			names = append(names, p.vars[i].Name)
		}
	}
	return names
}

// VarName returns the name of a variable slot, for program listings.
func (p *Processor) VarName(slot int) string {
	if slot >= 0 && slot < len(p.vars) {
		return p.vars[slot].Name
	}
	return "null"
}

// load fetches an operand's value.
func (p *Processor) load(o Operand) Value {
	switch o.Kind {
	case OperandVar:
		v := &p.vars[o.Slot]
		if v.special != builtinNone {
			return p.loadBuiltin(v.special)
		}
		return v.Val
	case OperandLabel:
		return NumberVal(float64(o.Slot))
	default:
		return o.Imm
	}
}

func (p *Processor) loadBuiltin(b builtin) Value {
	switch b {
	case builtinCounter:
		return NumberVal(float64(p.pc))
	case builtinThis:
		return BuildingVal(p.pos.Pack())
	case builtinThisX:
		return NumberVal(float64(p.pos.X))
	case builtinThisY:
		return NumberVal(float64(p.pos.Y))
	case builtinLinks:
		return NumberVal(float64(len(p.links)))
	case builtinIpt:
		return NumberVal(float64(p.ipt))
	case builtinTime:
		return NumberVal(p.sim.timeMS)
	case builtinTick:
		return NumberVal(float64(p.sim.tickCount))
	case builtinSecond:
		return NumberVal(p.sim.timeMS / 1000)
	case builtinMinute:
		return NumberVal(p.sim.timeMS / 60000)
	default:
		// Wave state is not simulated.
		return NumberVal(0)
	}
}

// store writes a value through an operand. Writes to immediates and
// read-only variables are silently ignored; a write to @counter is a
// jump that takes effect at the next fetch.
func (p *Processor) store(o Operand, v Value) {
	if o.Kind != OperandVar {
		return
	}
	va := &p.vars[o.Slot]
	if va.special == builtinCounter {
		p.setCounter(v)
		return
	}
	if va.ReadOnly || va.special != builtinNone {
		return
	}
	va.Val = v
}

// setCounter coerces the written value to an integer and wraps it into
// the program, negative values wrapping from the end.
func (p *Processor) setCounter(v Value) {
	if n := len(p.code); n > 0 {
		p.pc = wrapIndex(int(v.AsInt()), n)
	}
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Control effects returned by instruction semantics.
type effKind byte

const (
	effNext  effKind = iota // advance to the next instruction
	effJump                 // transfer to a program index
	effEnd                  // wrap to instruction 0
	effYield                // advance, consuming the remaining budget
	effSleep                // yield until a deadline
	effStop                 // halt until code is reassigned
)

type effect struct {
	kind     effKind
	target   int     // effJump
	deadline float64 // effSleep, seconds since start
	cost     int     // extra instructions consumed beyond the base 1
}

// runTick executes up to the processor's per-tick instruction budget.
// The program counter is advanced before dispatch, so @counter reads
// as the index of the next instruction and writes to it land at the
// next fetch.
func (p *Processor) runTick() {
	if p.halted || len(p.code) == 0 {
		return
	}
	if p.sleeping {
		if p.sim.timeSecs() < p.sleepUntil {
			return
		}
		p.sleeping = false
	}

	budget := p.ipt
	wrapped := false
	for budget > 0 && !p.halted && !p.sleeping {
		if p.pc >= len(p.code) {
			p.pc = 0
		}
		in := &p.code[p.pc]
		p.pc++

		var eff effect
		if in.allowed(p.kind) {
			eff = in.def.fn(p, in)
		}

		budget--
		if eff.cost > 0 {
			budget -= min(eff.cost, budget)
		}

		switch eff.kind {
		case effJump:
			p.pc = wrapIndex(eff.target, len(p.code))
		case effEnd:
			p.pc = 0
			// The first wrap of a tick is free; later ones cost an
			// instruction so a bare end program cannot spin forever.
			if !wrapped {
				wrapped = true
				budget++
			}
		case effYield:
			budget = 0
		case effSleep:
			p.sleeping = true
			p.sleepUntil = eff.deadline
			budget = 0
		case effStop:
			p.halted = true
			budget = 0
		}
	}
	// A counter that ran off the end of the program reads as 0 between
	// ticks.
	if p.pc >= len(p.code) {
		p.pc = 0
	}
}
