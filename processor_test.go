package mindy

import (
	"math"
	"testing"
)

func TestEmptyProgram(t *testing.T) {
	s, p := newTestProc(t, Logic, "")
	stepTicks(s, 100)

	if p.PC() != 0 {
		t.Errorf("PC: got %d, exp 0", p.PC())
	}
	if p.Halted() || p.Err() != nil {
		t.Error("empty program should idle without errors")
	}
	if len(p.DrawBuffer()) != 0 || p.PrintBuffer() != "" {
		t.Error("empty program should produce no output")
	}
}

func TestDivisionByZero(t *testing.T) {
	s, p := newTestProc(t, Logic, "op div x 1 0\nstop\n")
	stepTicks(s, 1)

	if x := p.Var("x"); !math.IsNaN(x.AsNum()) || x.Kind != KindNumber {
		t.Errorf("x: got %v, exp NaN", x)
	}
	if !p.Halted() {
		t.Error("processor should be halted")
	}

	// Halted processors execute nothing until code is reassigned.
	stepTicks(s, 10)
	if !p.Halted() {
		t.Error("processor should stay halted")
	}
}

func TestInstructionBudget(t *testing.T) {
	s, p := newTestProc(t, Micro, "set a 1\nset a 2\nset a 3\nset a 4\nend\n")

	stepTicks(s, 1)
	if a, pc := p.Var("a").AsNum(), p.PC(); a != 2 || pc != 2 {
		t.Errorf("tick 1: got a=%v pc=%d, exp a=2 pc=2", a, pc)
	}

	stepTicks(s, 1)
	if a, pc := p.Var("a").AsNum(), p.PC(); a != 4 || pc != 4 {
		t.Errorf("tick 2: got a=%v pc=%d, exp a=4 pc=4", a, pc)
	}

	stepTicks(s, 1)
	if a, pc := p.Var("a").AsNum(), p.PC(); a != 2 || pc != 2 {
		t.Errorf("tick 3: got a=%v pc=%d, exp a=2 pc=2", a, pc)
	}
}

func TestCounterInvariant(t *testing.T) {
	// 10 instructions, 25 executed per tick: pc advances 25 mod 10.
	src := ""
	for i := 0; i < 10; i++ {
		src += "set x 1\n"
	}
	s, p := newTestProc(t, Hyper, src)

	stepTicks(s, 1)
	if p.PC() != 5 {
		t.Errorf("PC after 25 steps: got %d, exp 5", p.PC())
	}
	stepTicks(s, 1)
	if p.PC() != 0 {
		t.Errorf("PC after 50 steps: got %d, exp 0", p.PC())
	}
}

func TestSetCounter(t *testing.T) {
	s, p := newTestProc(t, Logic, "set @counter 3\nset a 1\nset a 2\nset a 3\n")
	stepTicks(s, 1)
	if a := p.Var("a").AsNum(); a != 3 {
		t.Errorf("a: got %v, exp 3", a)
	}
}

func TestSetCounterCoercion(t *testing.T) {
	// Out-of-range and negative writes wrap modulo program length;
	// non-numeric writes coerce to 0.
	s, p := newTestProc(t, Micro, "set @counter 7\nset a 1\nset b 1\nset c 1\n")
	stepTicks(s, 1)
	if p.Var("c").AsNum() != 1 { // 7 mod 4 = 3
		t.Errorf("counter wrap: c not set, pc path wrong")
	}

	s, p = newTestProc(t, Micro, "set @counter -1\nset a 1\nset b 1\nset c 1\n")
	stepTicks(s, 1)
	if p.Var("c").AsNum() != 1 { // -1 wraps to 3
		t.Errorf("negative counter should wrap from the end")
	}
}

func TestWait(t *testing.T) {
	s, p := newTestProc(t, Micro, "wait 1\nset x 42\nstop\n")

	stepTicks(s, 59)
	if x := p.Var("x"); x.Kind != KindNull {
		t.Errorf("tick 59: x got %v, exp null", x)
	}

	stepTicks(s, 2)
	if x := p.Var("x").AsNum(); x != 42 {
		t.Errorf("tick 61: x got %v, exp 42", x)
	}
	if !p.Halted() {
		t.Error("processor should have halted after waking")
	}
}

func TestJumpComparators(t *testing.T) {
	s, p := newTestProc(t, Logic, `
jump skip notEqual 1 1
set taken 1
skip:
jump over lessThan 3 5
set nottaken 1
over:
stop
`)
	stepTicks(s, 1)
	if p.Var("taken").AsNum() != 1 {
		t.Error("notEqual 1 1 should fall through")
	}
	if p.Var("nottaken").Kind != KindNull {
		t.Error("lessThan 3 5 should jump")
	}
}

func TestJumpNumericTarget(t *testing.T) {
	s, p := newTestProc(t, Logic, "jump 2 always 0 0\nset a 1\nset b 1\nstop\n")
	stepTicks(s, 1)
	if p.Var("a").Kind != KindNull || p.Var("b").AsNum() != 1 {
		t.Error("numeric jump target should skip to index 2")
	}
}

func TestMathSelectors(t *testing.T) {
	s, p := newTestProc(t, World, `
op add r0 2 3
op sub r1 2 3
op mul r2 2 3
op idiv r3 7 2
op mod r4 7 3
op pow r5 2 10
op shl r6 1 4
op shr r7 16 2
op and r8 6 3
op or r9 6 3
op xor r10 6 3
op not r11 0 0
op max r12 2 3
op min r13 2 3
op abs r14 -5 0
op floor r15 2.7 0
op ceil r16 2.1 0
op sqrt r17 16 0
op len r18 3 4
op angle r19 0 1
op sin r20 90 0
op land r21 1 2
op equal r22 null 0
op strictEqual r23 null 0
stop
`)
	stepTicks(s, 1)

	checks := []struct {
		name string
		exp  float64
	}{
		{"r0", 5}, {"r1", -1}, {"r2", 6}, {"r3", 3}, {"r4", 1},
		{"r5", 1024}, {"r6", 16}, {"r7", 4}, {"r8", 2}, {"r9", 7},
		{"r10", 5}, {"r11", -1}, {"r12", 3}, {"r13", 2}, {"r14", 5},
		{"r15", 2}, {"r16", 3}, {"r17", 4}, {"r18", 5}, {"r19", 90},
		{"r21", 1}, {"r22", 1}, {"r23", 0},
	}
	for _, c := range checks {
		if got := p.Var(c.name).AsNum(); math.Abs(got-c.exp) > 1e-9 {
			t.Errorf("%s: got %v, exp %v", c.name, got, c.exp)
		}
	}
	if got := p.Var("r20").AsNum(); math.Abs(got-1) > 1e-9 {
		t.Errorf("sin 90: got %v, exp 1", got)
	}
}

func TestOpAddZeroEqualsSet(t *testing.T) {
	for _, a := range []float64{0, 1, -2.5, 1e9, math.Inf(1)} {
		s1, p1 := newTestProc(t, Logic, "op add x a 0\nstop")
		s2, p2 := newTestProc(t, Logic, "set x a\nstop")
		for _, p := range []*Processor{p1, p2} {
			p.vars[p.varSlot("a")].Val = NumberVal(a)
		}
		stepTicks(s1, 1)
		stepTicks(s2, 1)
		x1, x2 := p1.Var("x").AsNum(), p2.Var("x").AsNum()
		if x1 != x2 {
			t.Errorf("a=%v: op add got %v, set got %v", a, x1, x2)
		}
	}
}

func TestPrintAccumulates(t *testing.T) {
	s, p := newTestProc(t, Logic, `print "x = "
print 42
print " "
print true
print " "
print null
stop`)
	stepTicks(s, 1)
	if got := p.PrintBuffer(); got != "x = 42 1 null" {
		t.Errorf("print buffer: got %q", got)
	}
}

func TestPrintBufferCap(t *testing.T) {
	src := ""
	for i := 0; i < 30; i++ {
		src += "print \"0123456789\"\n"
	}
	s, p := newTestProc(t, World, src+"stop")
	stepTicks(s, 1)
	if got := len(p.PrintBuffer()); got != maxPrintLen {
		t.Errorf("print buffer length: got %d, exp %d", got, maxPrintLen)
	}
}

func TestFlushBudgetSurcharge(t *testing.T) {
	// 12 buffered commands make drawflush cost 1+ceil(12/10)=3, so a
	// 25-IPT tick has 10 instructions left for the trailing sets.
	src := ""
	for i := 0; i < 12; i++ {
		src += "draw line 0 0 1 1\n"
	}
	src += "drawflush null\n"
	for i := 1; i <= 11; i++ {
		src += "op add x x 1\n"
	}
	src += "end\n"

	s, p := newTestProc(t, Hyper, src)
	stepTicks(s, 1)
	if got := p.Var("x").AsNum(); got != 10 {
		t.Errorf("x: got %v, exp 10", got)
	}
}

func TestWorldOpsGated(t *testing.T) {
	// World-only opcodes are no-ops on other kinds but still assemble
	// and cost their cycle.
	s, p := newTestProc(t, Logic, "setrate 5\nset a 1\nstop\n")
	stepTicks(s, 1)
	if got := p.Var("@ipt").AsNum(); got != 8 {
		t.Errorf("ipt: got %v, exp 8", got)
	}
	if p.Var("a").AsNum() != 1 {
		t.Error("execution should continue past a gated opcode")
	}
}

func TestSetRate(t *testing.T) {
	s, p := newTestProc(t, World, "setrate 5\nwait 100\nset a 1\n")
	stepTicks(s, 1)
	if got := p.Var("@ipt").AsNum(); got != 5 {
		t.Errorf("ipt: got %v, exp 5", got)
	}
}

func TestBuiltinsReadOnly(t *testing.T) {
	s, p := newTestProc(t, Logic, "set @time 123\nset @links 9\nset x @tick\nstop\n")
	stepTicks(s, 1)

	if got := p.Var("@time").AsNum(); got != s.Time() {
		t.Errorf("@time: got %v, exp %v", got, s.Time())
	}
	if got := p.Var("@links").AsNum(); got != 0 {
		t.Errorf("@links: got %v, exp 0", got)
	}
	// @tick was 0 during the first tick.
	if got := p.Var("x").AsNum(); got != 0 {
		t.Errorf("x: got %v, exp 0", got)
	}
}
