// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

import "math"

const radDeg = 180 / math.Pi

// Write operand to destination. A write to @counter is a jump.
func (p *Processor) execSet(in *Instruction) effect {
	p.store(in.Args[0], p.load(in.Args[1]))
	return effect{}
}

// op <selector> <dst> <a> <b>
func (p *Processor) execOp(in *Instruction) effect {
	a := p.load(in.Args[1])
	b := p.load(in.Args[2])
	p.store(in.Args[0], p.evalMath(MathOp(in.Sel), a, b))
	return effect{}
}

// jump <target> <cmp> <a> <b>
func (p *Processor) execJump(in *Instruction) effect {
	if !p.compare(CmpOp(in.Sel), in) {
		return effect{}
	}
	target := in.Args[0]
	if target.Kind == OperandLabel {
		return effect{kind: effJump, target: target.Slot}
	}
	return effect{kind: effJump, target: int(p.load(target).AsInt())}
}

// compare evaluates a jump comparator. The operands are ignored for
// the always selector.
func (p *Processor) compare(cmp CmpOp, in *Instruction) bool {
	if cmp == CmpAlways {
		return true
	}
	a := p.load(in.Args[1])
	b := p.load(in.Args[2])
	switch cmp {
	case CmpEqual:
		return Equals(a, b)
	case CmpNotEqual:
		return !Equals(a, b)
	case CmpLessThan:
		return a.AsNum() < b.AsNum()
	case CmpLessThanEq:
		return a.AsNum() <= b.AsNum()
	case CmpGreaterThan:
		return a.AsNum() > b.AsNum()
	case CmpGreaterThanEq:
		return a.AsNum() >= b.AsNum()
	case CmpStrictEqual:
		return StrictEquals(a, b)
	default:
		return false
	}
}

// Wrap the program counter back to instruction 0.
func (p *Processor) execEnd(in *Instruction) effect {
	return effect{kind: effEnd}
}

// Halt until code is reassigned.
func (p *Processor) execStop(in *Instruction) effect {
	return effect{kind: effStop}
}

// Block until the scheduler clock reaches the deadline.
func (p *Processor) execWait(in *Instruction) effect {
	secs := p.load(in.Args[0]).AsNum()
	if !(secs > 0) {
		return effect{}
	}
	return effect{kind: effSleep, deadline: p.sim.timeSecs() + secs}
}

func (p *Processor) execPrint(in *Instruction) effect {
	p.printAppend(p.load(in.Args[0]).Format(p.sim))
	return effect{}
}

// printflush <msg>: concatenate the print buffer into the target
// message building and clear it. The buffer is discarded even when the
// target is dead or not a message.
func (p *Processor) execPrintFlush(in *Instruction) effect {
	cost := flushCost(len(p.printBuf))
	text := p.takePrint()

	if b := p.sim.building(p.load(in.Args[0])); b != nil && b.Kind == MessageBlock {
		if len(text) > maxPrintLen {
			text = text[:maxPrintLen]
		}
		b.Message = text
		p.sim.notify(b)
	}
	return effect{cost: cost}
}

func (p *Processor) execDraw(in *Instruction) effect {
	cmd := DrawCommand{Op: DrawOp(in.Sel)}
	for i := 0; i < len(cmd.Args); i++ {
		cmd.Args[i] = p.load(in.Args[i]).AsNum()
	}
	switch cmd.Op {
	case DrawImage:
		cmd.Content = p.load(in.Args[2])
	case DrawPrint:
		// draw print consumes the accumulated print buffer.
		cmd.Text = p.takePrint()
		cmd.Align = TextAlign(p.load(in.Args[2]).AsInt())
	}
	p.drawAppend(cmd)
	return effect{}
}

// drawflush <display>: deliver the buffer atomically to the display's
// render queue. A dead or non-display target drops the buffer.
func (p *Processor) execDrawFlush(in *Instruction) effect {
	cost := flushCost(len(p.draw))
	cmds := p.draw
	p.draw = nil

	if b := p.sim.building(p.load(in.Args[0])); b != nil && isDisplay(b.Kind) {
		b.DrawQueue = append(b.DrawQueue, cmds...)
		if excess := len(b.DrawQueue) - maxDisplayQueue; excess > 0 {
			b.DrawQueue = b.DrawQueue[excess:]
		}
	}
	return effect{cost: cost}
}

// sensor <dst> <obj> <attr>
func (p *Processor) execSensor(in *Instruction) effect {
	obj := p.load(in.Args[1])
	attr := p.load(in.Args[2])
	// @links and @ipt name both a builtin variable and a sensor
	// attribute; in the attribute position they select the attribute.
	if o := in.Args[2]; o.Kind == OperandVar {
		switch p.vars[o.Slot].special {
		case builtinLinks:
			attr = SensorVal(SensorLinkCount)
		case builtinIpt:
			attr = SensorVal(SensorIpt)
		}
	}
	p.store(in.Args[0], p.sim.sense(obj, attr))
	return effect{}
}

// getlink <dst> <index>
func (p *Processor) execGetLink(in *Instruction) effect {
	idx := int(p.load(in.Args[1]).AsInt())
	if idx >= 0 && idx < len(p.links) {
		p.store(in.Args[0], BuildingVal(p.links[idx].pos))
	} else {
		p.store(in.Args[0], Null)
	}
	return effect{}
}

// read <dst> <cell> <index>
func (p *Processor) execRead(in *Instruction) effect {
	result := Null
	if b := p.sim.building(p.load(in.Args[1])); b != nil && b.Memory != nil {
		if idx := int(p.load(in.Args[2]).AsInt()); idx >= 0 && idx < len(b.Memory) {
			result = NumberVal(b.Memory[idx])
		}
	}
	p.store(in.Args[0], result)
	return effect{}
}

// write <src> <cell> <index>
func (p *Processor) execWrite(in *Instruction) effect {
	if b := p.sim.building(p.load(in.Args[1])); b != nil && b.Memory != nil {
		if idx := int(p.load(in.Args[2]).AsInt()); idx >= 0 && idx < len(b.Memory) {
			b.Memory[idx] = p.load(in.Args[0]).AsNum()
		}
	}
	return effect{}
}

// lookup <kind> <dst> <index>
func (p *Processor) execLookup(in *Instruction) effect {
	cat := lookupCategories[in.Sel]
	ord := int(p.load(in.Args[1]).AsInt())
	p.store(in.Args[0], p.sim.catalog.Lookup(cat, ord))
	return effect{}
}

// control <subop> <building> <value> ...
func (p *Processor) execControl(in *Instruction) effect {
	b := p.sim.building(p.load(in.Args[0]))
	if b == nil {
		return effect{}
	}
	switch ControlOp(in.Sel) {
	case ControlEnabled:
		if b.Kind == SwitchBlock {
			on := p.load(in.Args[1]).Truthy()
			if b.Enabled != on {
				b.Enabled = on
				p.sim.notify(b)
			}
		}
	case ControlConfig:
		if b.Kind == SorterBlock {
			v := p.load(in.Args[1])
			if v.Kind != KindContent {
				v = Null
			}
			b.Config = v
			p.sim.notify(b)
		}
	}
	// Remaining subops target combat blocks, which are not simulated.
	return effect{}
}

// Defined no-op: the instruction exists and costs its cycle, but has
// no observable effect in this core.
func (p *Processor) execNoop(in *Instruction) effect {
	return effect{}
}

// uradar: no units are simulated; the output is always null.
func (p *Processor) execUnitRadar(in *Instruction) effect {
	p.store(in.Args[5], Null)
	return effect{}
}

// ulocate: no terrain or units; outputs are null and found is false.
func (p *Processor) execUnitLocate(in *Instruction) effect {
	p.store(in.Args[3], Null)
	p.store(in.Args[4], Null)
	p.store(in.Args[5], BoolVal(false))
	p.store(in.Args[6], Null)
	return effect{}
}

// getblock <layer> <dst> <x> <y>
func (p *Processor) execGetBlock(in *Instruction) effect {
	result := Null
	layer := BlockLayer(in.Sel)
	if layer == LayerBlock || layer == LayerBuilding {
		x := int(p.load(in.Args[1]).AsInt())
		y := int(p.load(in.Args[2]).AsInt())
		if b := p.sim.registry.at(Pos{x, y}); b != nil {
			if layer == LayerBuilding {
				result = BuildingVal(b.Pos.Pack())
			} else {
				result = b.Kind.blockContent()
			}
		}
	}
	p.store(in.Args[0], result)
	return effect{}
}

// spawn: units are not simulated; the result is null.
func (p *Processor) execSpawn(in *Instruction) effect {
	p.store(in.Args[5], Null)
	return effect{}
}

// setrate <ipt>: adjust the executing world processor's own budget.
func (p *Processor) execSetRate(in *Instruction) effect {
	ipt := int(p.load(in.Args[0]).AsInt())
	if ipt < 1 {
		ipt = 1
	}
	if ipt > worldIPT {
		ipt = worldIPT
	}
	p.ipt = ipt
	return effect{}
}

// evalMath computes one op selector. Arithmetic runs on f64; the
// integer selectors truncate toward zero to i64, compute in 64-bit
// two's complement, and return as f64. Division by zero yields NaN.
func (p *Processor) evalMath(op MathOp, av, bv Value) Value {
	a := av.AsNum()
	b := bv.AsNum()

	switch op {
	case MathAdd:
		return NumberVal(a + b)
	case MathSub:
		return NumberVal(a - b)
	case MathMul:
		return NumberVal(a * b)
	case MathDiv:
		if b == 0 {
			return NumberVal(math.NaN())
		}
		return NumberVal(a / b)
	case MathPow:
		return NumberVal(math.Pow(a, b))

	case MathIdiv, MathMod, MathShl, MathShr, MathOr, MathAnd, MathXor, MathNot:
		return NumberVal(evalIntOp(op, av.AsInt(), bv.AsInt()))

	case MathEqual:
		return BoolVal(Equals(av, bv))
	case MathNotEqual:
		return BoolVal(!Equals(av, bv))
	case MathStrictEqual:
		return BoolVal(StrictEquals(av, bv))
	case MathLand:
		return BoolVal(av.Truthy() && bv.Truthy())
	case MathLessThan:
		return BoolVal(a < b)
	case MathLessThanEq:
		return BoolVal(a <= b)
	case MathGreaterThan:
		return BoolVal(a > b)
	case MathGreaterThanEq:
		return BoolVal(a >= b)

	case MathMax:
		return NumberVal(math.Max(a, b))
	case MathMin:
		return NumberVal(math.Min(a, b))
	case MathAngle:
		return NumberVal(normalizeDeg(math.Atan2(b, a) * radDeg))
	case MathAngleDiff:
		d := math.Mod(math.Abs(a-b), 360)
		return NumberVal(math.Min(d, 360-d))
	case MathLen:
		return NumberVal(math.Hypot(a, b))
	case MathNoise:
		return NumberVal(p.sim.noise2(a, b))
	case MathRand:
		return NumberVal(p.sim.rand.Float64() * a)

	case MathAbs:
		return NumberVal(math.Abs(a))
	case MathLog:
		return NumberVal(math.Log(a))
	case MathLog10:
		return NumberVal(math.Log10(a))
	case MathFloor:
		return NumberVal(math.Floor(a))
	case MathCeil:
		return NumberVal(math.Ceil(a))
	case MathSqrt:
		return NumberVal(math.Sqrt(a))
	case MathSin:
		return NumberVal(math.Sin(a / radDeg))
	case MathCos:
		return NumberVal(math.Cos(a / radDeg))
	case MathTan:
		return NumberVal(math.Tan(a / radDeg))
	case MathAsin:
		return NumberVal(math.Asin(a) * radDeg)
	case MathAcos:
		return NumberVal(math.Acos(a) * radDeg)
	case MathAtan:
		return NumberVal(math.Atan(a) * radDeg)

	default:
		return NumberVal(0)
	}
}

func evalIntOp(op MathOp, a, b int64) float64 {
	switch op {
	case MathIdiv:
		if b == 0 {
			return math.NaN()
		}
		return float64(a / b)
	case MathMod:
		if b == 0 {
			return math.NaN()
		}
		return float64(a % b)
	case MathShl:
		return float64(a << (uint64(b) & 63))
	case MathShr:
		return float64(a >> (uint64(b) & 63))
	case MathOr:
		return float64(a | b)
	case MathAnd:
		return float64(a & b)
	case MathXor:
		return float64(a ^ b)
	case MathNot:
		return float64(^a)
	default:
		return 0
	}
}

// normalizeDeg maps an angle in degrees into [0, 360).
func normalizeDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
