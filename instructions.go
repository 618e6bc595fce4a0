package mindy

// An Opcode identifies an mlog instruction.
type Opcode byte

// All opcodes known to the interpreter.
const (
	OpSet Opcode = iota
	OpOperation
	OpJump
	OpEnd
	OpStop
	OpWait
	OpPrint
	OpPrintFlush
	OpDraw
	OpDrawFlush
	OpSensor
	OpGetLink
	OpRead
	OpWrite
	OpLookup
	OpControl
	OpUnitControl
	OpUnitRadar
	OpUnitLocate
	OpGetBlock
	OpSetBlock
	OpSpawn
	OpSetRate
)

// An argMode describes how one operand slot is used by an opcode.
type argMode byte

const (
	argRead  argMode = iota // value read by the instruction
	argWrite                // variable written back by the instruction
	argLabel                // jump target: label name or instruction index
)

// A selFamily names the enum family a sub-selector token belongs to.
type selFamily byte

const (
	selNone selFamily = iota
	selMath
	selCmp
	selDraw
	selControl
	selLookup
	selLocate
	selLayer
	selUnitCtl
)

type execFunc func(p *Processor, in *Instruction) effect

// An opdef describes one opcode: its source-text name, where the
// sub-selector token sits among its operand tokens (-1 for none), the
// operand modes of the remaining tokens, whether the opcode is
// restricted to world processors, and its semantic function.
type opdef struct {
	op     Opcode
	name   string
	selPos int
	sel    selFamily
	args   []argMode
	world  bool
	fn     execFunc
}

var opdefs = []opdef{
	{OpSet, "set", -1, selNone, []argMode{argWrite, argRead}, false, (*Processor).execSet},
	{OpOperation, "op", 0, selMath, []argMode{argWrite, argRead, argRead}, false, (*Processor).execOp},
	{OpJump, "jump", 1, selCmp, []argMode{argLabel, argRead, argRead}, false, (*Processor).execJump},
	{OpEnd, "end", -1, selNone, nil, false, (*Processor).execEnd},
	{OpStop, "stop", -1, selNone, nil, false, (*Processor).execStop},
	{OpWait, "wait", -1, selNone, []argMode{argRead}, false, (*Processor).execWait},
	{OpPrint, "print", -1, selNone, []argMode{argRead}, false, (*Processor).execPrint},
	{OpPrintFlush, "printflush", -1, selNone, []argMode{argRead}, false, (*Processor).execPrintFlush},
	{OpDraw, "draw", 0, selDraw, []argMode{argRead, argRead, argRead, argRead, argRead, argRead}, false, (*Processor).execDraw},
	{OpDrawFlush, "drawflush", -1, selNone, []argMode{argRead}, false, (*Processor).execDrawFlush},
	{OpSensor, "sensor", -1, selNone, []argMode{argWrite, argRead, argRead}, false, (*Processor).execSensor},
	{OpGetLink, "getlink", -1, selNone, []argMode{argWrite, argRead}, false, (*Processor).execGetLink},
	{OpRead, "read", -1, selNone, []argMode{argWrite, argRead, argRead}, false, (*Processor).execRead},
	{OpWrite, "write", -1, selNone, []argMode{argRead, argRead, argRead}, false, (*Processor).execWrite},
	{OpLookup, "lookup", 0, selLookup, []argMode{argWrite, argRead}, false, (*Processor).execLookup},
	{OpControl, "control", 0, selControl, []argMode{argRead, argRead, argRead, argRead}, false, (*Processor).execControl},
	{OpUnitControl, "ucontrol", 0, selUnitCtl, []argMode{argRead, argRead, argRead, argRead, argRead}, true, (*Processor).execNoop},
	{OpUnitRadar, "uradar", -1, selNone, []argMode{argRead, argRead, argRead, argRead, argRead, argWrite}, true, (*Processor).execUnitRadar},
	{OpUnitLocate, "ulocate", 0, selLocate, []argMode{argRead, argRead, argRead, argWrite, argWrite, argWrite, argWrite}, true, (*Processor).execUnitLocate},
	{OpGetBlock, "getblock", 0, selLayer, []argMode{argWrite, argRead, argRead}, true, (*Processor).execGetBlock},
	{OpSetBlock, "setblock", 0, selLayer, []argMode{argRead, argRead, argRead, argRead, argRead}, true, (*Processor).execNoop},
	{OpSpawn, "spawn", -1, selNone, []argMode{argRead, argRead, argRead, argRead, argRead, argWrite}, true, (*Processor).execSpawn},
	{OpSetRate, "setrate", -1, selNone, []argMode{argRead}, true, (*Processor).execSetRate},
}

// opcodeByName is the assembler's entry into the descriptor table.
var opcodeByName map[string]*opdef

// Math op selectors. Order is the wire order; the assembler maps names
// through mathOpNames and the dispatcher switches on these values.
type MathOp int8

const (
	MathAdd MathOp = iota
	MathSub
	MathMul
	MathDiv
	MathIdiv
	MathMod
	MathPow
	MathEqual
	MathNotEqual
	MathLand
	MathLessThan
	MathLessThanEq
	MathGreaterThan
	MathGreaterThanEq
	MathStrictEqual
	MathShl
	MathShr
	MathOr
	MathAnd
	MathXor
	MathNot
	MathMax
	MathMin
	MathAngle
	MathAngleDiff
	MathLen
	MathNoise
	MathAbs
	MathLog
	MathLog10
	MathFloor
	MathCeil
	MathSqrt
	MathRand
	MathSin
	MathCos
	MathTan
	MathAsin
	MathAcos
	MathAtan
)

var mathOpNames = []string{
	"add", "sub", "mul", "div", "idiv", "mod", "pow",
	"equal", "notEqual", "land",
	"lessThan", "lessThanEq", "greaterThan", "greaterThanEq",
	"strictEqual",
	"shl", "shr", "or", "and", "xor", "not",
	"max", "min", "angle", "angleDiff", "len", "noise",
	"abs", "log", "log10", "floor", "ceil", "sqrt", "rand",
	"sin", "cos", "tan", "asin", "acos", "atan",
}

// Jump comparators.
type CmpOp int8

const (
	CmpEqual CmpOp = iota
	CmpNotEqual
	CmpLessThan
	CmpLessThanEq
	CmpGreaterThan
	CmpGreaterThanEq
	CmpStrictEqual
	CmpAlways
)

var cmpOpNames = []string{
	"equal", "notEqual", "lessThan", "lessThanEq",
	"greaterThan", "greaterThanEq", "strictEqual", "always",
}

// Draw sub-operations.
type DrawOp int8

const (
	DrawClear DrawOp = iota
	DrawColor
	DrawCol
	DrawStroke
	DrawLine
	DrawRect
	DrawLineRect
	DrawPoly
	DrawLinePoly
	DrawTriangle
	DrawImage
	DrawPrint
	DrawTranslate
	DrawScale
	DrawRotate
	DrawReset
)

var drawOpNames = []string{
	"clear", "color", "col", "stroke", "line", "rect", "lineRect",
	"poly", "linePoly", "triangle", "image", "print",
	"translate", "scale", "rotate", "reset",
}

// Control sub-operations.
type ControlOp int8

const (
	ControlEnabled ControlOp = iota
	ControlConfig
	ControlColor
	ControlShoot
	ControlShootp
)

var controlOpNames = []string{"enabled", "config", "color", "shoot", "shootp"}

// Lookup categories, in the wire order used by the lookup opcode.
var lookupKindNames = []string{"block", "unit", "item", "liquid", "team"}

var lookupCategories = []Category{CatBlock, CatUnit, CatItem, CatLiquid, CatTeam}

// ulocate find kinds.
var locateKindNames = []string{"ore", "building", "spawn", "damaged"}

// getblock/setblock layers.
type BlockLayer int8

const (
	LayerFloor BlockLayer = iota
	LayerOre
	LayerBlock
	LayerBuilding
)

var layerNames = []string{"floor", "ore", "block", "building"}

// ucontrol sub-commands. All are no-ops in this core; the table exists
// so programs assemble and list faithfully.
var unitCtlNames = []string{
	"idle", "stop", "move", "approach", "pathfind", "autoPathfind",
	"boost", "target", "targetp", "itemDrop", "itemTake",
	"payDrop", "payTake", "payEnter", "mine", "flag", "build",
	"getBlock", "within", "unbind",
}

// Text alignment for the draw print sub-operation.
type TextAlign int8

const (
	AlignCenter TextAlign = iota
	AlignTop
	AlignBottom
	AlignLeft
	AlignRight
	AlignTopLeft
	AlignTopRight
	AlignBottomLeft
	AlignBottomRight
)

var alignNames = []string{
	"center", "top", "bottom", "left", "right",
	"topLeft", "topRight", "bottomLeft", "bottomRight",
}

// Per-family selector name tables, indexed by selFamily.
var selTables [9]map[string]int8
var selNamesByFamily [9][]string

func buildSelTable(fam selFamily, names []string) {
	m := make(map[string]int8, len(names))
	for i, n := range names {
		m[n] = int8(i)
	}
	selTables[fam] = m
	selNamesByFamily[fam] = names
}

// Build the opcode and selector lookup tables.
func init() {
	opcodeByName = make(map[string]*opdef, len(opdefs))
	for i := range opdefs {
		opcodeByName[opdefs[i].name] = &opdefs[i]
	}

	buildSelTable(selMath, mathOpNames)
	buildSelTable(selCmp, cmpOpNames)
	buildSelTable(selDraw, drawOpNames)
	buildSelTable(selControl, controlOpNames)
	buildSelTable(selLookup, lookupKindNames)
	buildSelTable(selLocate, locateKindNames)
	buildSelTable(selLayer, layerNames)
	buildSelTable(selUnitCtl, unitCtlNames)
}

// lookupSel maps a selector token to its enum value. Unknown selectors
// resolve to 0 rather than failing; assembly is permissive everywhere
// except the opcode itself.
func lookupSel(fam selFamily, token string) int8 {
	if v, ok := selTables[fam][token]; ok {
		return v
	}
	return 0
}

// selName renders a selector enum back to its source token.
func selName(fam selFamily, v int8) string {
	names := selNamesByFamily[fam]
	if int(v) >= 0 && int(v) < len(names) {
		return names[v]
	}
	return "0"
}

// maxOperands is the per-instruction operand slot count.
const maxOperands = 8

// An OperandKind tags an operand slot.
type OperandKind byte

const (
	// OperandImm holds an immediate value. The zero operand is an
	// immediate null, which is what unsupplied operands default to.
	OperandImm OperandKind = iota

	// OperandVar references a variable slot in the processor store.
	OperandVar

	// OperandLabel holds a resolved instruction index.
	OperandLabel
)

// An Operand is one resolved instruction operand slot.
type Operand struct {
	Kind OperandKind
	Slot int   // variable slot (OperandVar) or instruction index (OperandLabel)
	Imm  Value // immediate value (OperandImm)
}

// An Instruction is one assembled mlog instruction: opcode tag, an
// optional sub-selector, and up to maxOperands resolved operand slots.
type Instruction struct {
	Op   Opcode
	Sel  int8
	Args [maxOperands]Operand

	def *opdef
}

// allowed reports whether a processor kind may execute this
// instruction. Opcodes gated to world processors execute as no-ops
// elsewhere.
func (in *Instruction) allowed(kind ProcKind) bool {
	return !in.def.world || kind == World
}

// OpName returns the instruction's source-text opcode.
func (in *Instruction) OpName() string {
	return in.def.name
}

// SelToken returns the instruction's sub-selector token and the
// operand position it occupies, or ok=false for opcodes without one.
func (in *Instruction) SelToken() (token string, pos int, ok bool) {
	if in.def.selPos < 0 {
		return "", 0, false
	}
	return selName(in.def.sel, in.Sel), in.def.selPos, true
}

// NumArgs returns the number of operand slots the opcode defines,
// excluding the sub-selector token.
func (in *Instruction) NumArgs() int {
	return len(in.def.args)
}

func (op DrawOp) String() string {
	if int(op) >= 0 && int(op) < len(drawOpNames) {
		return drawOpNames[op]
	}
	return "unknown"
}

func (a TextAlign) String() string {
	if int(a) >= 0 && int(a) < len(alignNames) {
		return alignNames[a]
	}
	return alignNames[AlignCenter]
}
