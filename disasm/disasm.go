// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm renders an assembled mlog program back to canonical
// source text, one instruction per line.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/mindy"
)

// Program lists every instruction of a processor's assembled program
// in canonical source form. Listing an empty program returns nil.
func Program(s *mindy.Sim, p *mindy.Processor) []string {
	code := p.Program()
	if len(code) == 0 {
		return nil
	}
	lines := make([]string, len(code))
	for i := range code {
		lines[i] = instruction(s, p, &code[i])
	}
	return lines
}

// instruction renders one instruction: opcode, the sub-selector token
// in its operand position, and every defined operand slot.
func instruction(s *mindy.Sim, p *mindy.Processor, in *mindy.Instruction) string {
	var toks []string
	toks = append(toks, in.OpName())

	sel, selPos, hasSel := in.SelToken()
	for slot := 0; slot < in.NumArgs(); slot++ {
		if hasSel && len(toks)-1 == selPos {
			toks = append(toks, sel)
		}
		toks = append(toks, operand(s, p, in, slot))
	}
	if hasSel && len(toks)-1 == selPos {
		toks = append(toks, sel)
	}
	return strings.Join(toks, " ")
}

func operand(s *mindy.Sim, p *mindy.Processor, in *mindy.Instruction, slot int) string {
	// The draw print alignment slot is an enum stored as an immediate.
	if in.Op == mindy.OpDraw && mindy.DrawOp(in.Sel) == mindy.DrawPrint && slot == 2 {
		return mindy.TextAlign(in.Args[slot].Imm.Num).String()
	}

	o := in.Args[slot]
	switch o.Kind {
	case mindy.OperandVar:
		return p.VarName(o.Slot)
	case mindy.OperandLabel:
		return strconv.Itoa(o.Slot)
	default:
		return immediate(s, o.Imm)
	}
}

func immediate(s *mindy.Sim, v mindy.Value) string {
	switch v.Kind {
	case mindy.KindString:
		text := s.Interner().Lookup(v.Str)
		return `"` + strings.ReplaceAll(text, "\n", `\n`) + `"`
	case mindy.KindContent:
		return "@" + s.Catalog().Name(v.Cat, v.ID)
	case mindy.KindSensor:
		return "@" + mindy.SensorAttr(v.ID).String()
	case mindy.KindBuilding:
		x, y := v.Pos.XY()
		return fmt.Sprintf("building@%d,%d", x, y)
	default:
		return v.Format(s)
	}
}
