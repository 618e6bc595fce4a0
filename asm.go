// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

import (
	"fmt"
	"strconv"
	"strings"
)

// maxProgramLength is the instruction cap per processor. Longer
// programs are truncated silently.
const maxProgramLength = 1000

// An AsmError reports a malformed source line. The only fatal
// condition is an unknown opcode; operand-arity mismatches are
// tolerated (missing operands default to null, extras are dropped).
type AsmError struct {
	Line int    // 1-based source line number
	Op   string // offending opcode text
}

func (e *AsmError) Error() string {
	return fmt.Sprintf("line %d: unknown opcode '%s'", e.Line, e.Op)
}

// The assembler is a state object used while transforming mlog source
// text into a processor's instruction array and variable store.
type assembler struct {
	p     *Processor
	lines [][]token      // tokens of each instruction-bearing line
	rows  []int          // source row of each instruction
	label map[string]int // label -> instruction index
}

// assemble runs the two assembly passes over the source and installs
// the result on the processor. The processor's variable store must
// already hold the builtins and link bindings; user variables are
// allocated here on first reference.
func (p *Processor) assemble(source string) *AsmError {
	a := &assembler{
		p:     p,
		label: make(map[string]int),
	}

	steps := []func(*assembler) *AsmError{
		(*assembler).scan,    // pass 1: instruction indices + labels
		(*assembler).resolve, // pass 2: operand resolution
	}
	for _, step := range steps {
		if err := step(a); err != nil {
			return err
		}
	}
	return nil
}

// scan assigns each non-comment line an instruction index and collects
// label declarations ("name:") with the index they precede.
func (a *assembler) scan() *AsmError {
	row := 0
	for _, text := range strings.Split(a.p.source, "\n") {
		row++
		toks := tokenizeLine(row, text)
		if len(toks) == 0 {
			continue
		}

		// A first token ending in ':' declares a label bound to the
		// next instruction index.
		if first := toks[0]; !first.quoted && len(first.text) > 1 && strings.HasSuffix(first.text, ":") {
			a.label[strings.TrimSuffix(first.text, ":")] = len(a.lines)
			toks = toks[1:]
			if len(toks) == 0 {
				continue
			}
		}

		if len(a.lines) == maxProgramLength {
			break
		}
		a.lines = append(a.lines, toks)
		a.rows = append(a.rows, row)
	}
	return nil
}

// resolve maps each tokenized line to an Instruction: the opcode tag,
// the sub-selector enum, and one resolved operand per descriptor slot.
func (a *assembler) resolve() *AsmError {
	code := make([]Instruction, 0, len(a.lines))
	for i, toks := range a.lines {
		def, ok := opcodeByName[toks[0].text]
		if !ok {
			return &AsmError{Line: a.rows[i], Op: toks[0].text}
		}

		in := Instruction{Op: def.op, def: def}
		operands := toks[1:]

		// Pull out the sub-selector token, if the opcode carries one.
		if def.selPos >= 0 && def.selPos < len(operands) {
			in.Sel = lookupSel(def.sel, operands[def.selPos].text)
			operands = append(operands[:def.selPos:def.selPos], operands[def.selPos+1:]...)
		}

		// Resolve each descriptor slot. Missing operands stay at the
		// zero operand (immediate null); extras are dropped.
		for slot, mode := range def.args {
			if slot >= len(operands) || slot >= maxOperands {
				break
			}
			in.Args[slot] = a.resolveOperand(operands[slot], mode)
		}

		// The draw print alignment token is an enum, not a variable.
		if def.op == OpDraw && DrawOp(in.Sel) == DrawPrint && len(operands) > 2 {
			in.Args[2] = Operand{Imm: NumberVal(float64(lookupAlign(operands[2].text)))}
		}

		code = append(code, in)
	}
	a.p.code = code
	return nil
}

// resolveOperand turns one token into an operand slot: string and
// numeric literals become immediates, label references resolve to
// instruction indices, @names resolve to builtins, catalog content or
// sensor attributes, and bare identifiers become variable slots
// (allocated on first reference).
func (a *assembler) resolveOperand(t token, mode argMode) Operand {
	if t.quoted {
		return Operand{Imm: StringVal(a.p.sim.interner.Intern(t.text))}
	}

	if mode == argLabel {
		if idx, ok := a.label[t.text]; ok {
			return Operand{Kind: OperandLabel, Slot: idx}
		}
		// Fall through: a numeric target or variable is also a valid
		// jump destination.
	}

	switch t.text {
	case "null":
		return Operand{}
	case "true":
		return Operand{Imm: NumberVal(1)}
	case "false":
		return Operand{Imm: NumberVal(0)}
	}

	if v, ok := parseNumber(t.text); ok {
		return Operand{Imm: NumberVal(v)}
	}

	if strings.HasPrefix(t.text, "@") {
		return a.resolveAt(t.text[1:])
	}

	return Operand{Kind: OperandVar, Slot: a.p.varSlot(t.text)}
}

// resolveAt resolves an @name: reserved builtins become variable
// slots, catalog names become content immediates, sensible attribute
// names become sensor immediates, and anything else is null.
func (a *assembler) resolveAt(name string) Operand {
	if b, ok := builtinByName[name]; ok {
		return Operand{Kind: OperandVar, Slot: a.p.builtinSlot(b)}
	}
	if v, ok := a.p.sim.catalog.ByName(name); ok {
		return Operand{Imm: v}
	}
	if attr, ok := sensorAttrByName[name]; ok {
		return Operand{Imm: SensorVal(attr)}
	}
	return Operand{}
}

// parseNumber accepts decimal, hex (0x), binary (0b) and scientific
// literals, with an optional leading sign.
func parseNumber(s string) (float64, bool) {
	body, neg := s, false
	switch {
	case strings.HasPrefix(s, "-"):
		body, neg = s[1:], true
	case strings.HasPrefix(s, "+"):
		body = s[1:]
	}

	var f float64
	var err error
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		var n int64
		n, err = strconv.ParseInt(body[2:], 16, 64)
		f = float64(n)
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		var n int64
		n, err = strconv.ParseInt(body[2:], 2, 64)
		f = float64(n)
	default:
		f, err = strconv.ParseFloat(body, 64)
	}
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

func lookupAlign(name string) TextAlign {
	for i, n := range alignNames {
		if n == name {
			return TextAlign(i)
		}
	}
	return AlignCenter
}
