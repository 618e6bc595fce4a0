package mindy

import (
	"testing"
)

func TestBuildingNames(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddProcessor(Pos{4, 0}, Logic)
	s.AddMessage(Pos{8, 0})
	s.AddProcessor(Pos{12, 0}, Logic)

	exp := map[Pos]string{
		{0, 0}:  "logic-processor1",
		{4, 0}:  "logic-processor2",
		{8, 0}:  "message1",
		{12, 0}: "logic-processor3",
	}
	for pos, name := range exp {
		if got := s.BuildingName(pos); got != name {
			t.Errorf("name at (%d,%d): got %s, exp %s", pos.X, pos.Y, got, name)
		}
	}

	// Names are monotonic even across removals.
	s.RemoveBuilding(Pos{4, 0})
	s.AddProcessor(Pos{4, 0}, Logic)
	if got := s.BuildingName(Pos{4, 0}); got != "logic-processor4" {
		t.Errorf("name after removal: got %s, exp logic-processor4", got)
	}
}

func TestFootprintOverlap(t *testing.T) {
	s := NewSim(nil)
	if _, err := s.AddProcessor(Pos{0, 0}, Hyper); err != nil { // 3x3
		t.Fatal(err)
	}
	if _, err := s.AddMessage(Pos{2, 2}); err != ErrPositionOccupied {
		t.Errorf("overlap: got %v, exp ErrPositionOccupied", err)
	}
	if _, err := s.AddMessage(Pos{3, 0}); err != nil {
		t.Errorf("adjacent placement: got %v", err)
	}

	// Covered tiles resolve to the anchor building.
	if got := s.BuildingName(Pos{1, 2}); got != "hyper-processor1" {
		t.Errorf("covered tile: got %s", got)
	}
}

func TestLinkResolution(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddDisplay(Pos{2, 0}, false, 176, 176)

	resolved, err := s.SetProcessorConfig(Pos{0, 0},
		"sensor w display1 @displayWidth\nstop\n", []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if resolved[Pos{2, 0}] != "display1" {
		t.Errorf("resolved links: got %v", resolved)
	}

	stepTicks(s, 1)
	p := s.BuildingAt(Pos{0, 0}).Proc
	if got := p.Var("w").AsNum(); got != 176 {
		t.Errorf("w: got %v, exp 176", got)
	}
}

func TestLinkRange(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddMessage(Pos{20, 0}) // beyond the 10-tile range

	resolved, err := s.SetProcessorConfig(Pos{0, 0}, "", []Pos{{20, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved) != 0 {
		t.Errorf("out-of-range link resolved: %v", resolved)
	}

	// World processors have no range limit.
	s.AddProcessor(Pos{2, 0}, World)
	resolved, err = s.SetProcessorConfig(Pos{2, 0}, "", []Pos{{20, 0}})
	if err != nil {
		t.Fatal(err)
	}
	if resolved[Pos{20, 0}] != "message1" {
		t.Errorf("world link: got %v", resolved)
	}
}

func TestLinkShadowsUserVariable(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddMessage(Pos{2, 0})

	// The write to the link name must be silently ignored.
	_, err := s.SetProcessorConfig(Pos{0, 0},
		"set message1 5\nsensor x message1 @x\nstop\n", []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	p := s.BuildingAt(Pos{0, 0}).Proc
	if got := p.Var("x").AsNum(); got != 2 {
		t.Errorf("x: got %v, exp 2", got)
	}
}

func TestDeadReference(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddDisplay(Pos{2, 0}, false, 176, 176)

	_, err := s.SetProcessorConfig(Pos{0, 0}, `
sensor w display1 @displayWidth
draw clear 0 0 0
drawflush display1
`, []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	p := s.BuildingAt(Pos{0, 0}).Proc

	stepTicks(s, 1)
	if got := p.Var("w").AsNum(); got != 176 {
		t.Fatalf("w before removal: got %v, exp 176", got)
	}

	s.RemoveBuilding(Pos{2, 0})
	stepTicks(s, 1)

	if got := p.Var("w"); got.Kind != KindNull {
		t.Errorf("w after removal: got %v, exp null", got)
	}
	if len(p.DrawBuffer()) != 0 {
		t.Error("drawflush to a dead display should drop the buffer")
	}
}

func TestPrintFlushToMessage(t *testing.T) {
	s := NewSim(nil)
	var updates []BuildingUpdate
	s.OnBuildingUpdate(func(u BuildingUpdate) { updates = append(updates, u) })

	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddMessage(Pos{2, 0})

	_, err := s.SetProcessorConfig(Pos{0, 0},
		"print \"value: \"\nprint 7\nprintflush message1\nstop\n", []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	msg := s.BuildingAt(Pos{2, 0})
	if msg.Message != "value: 7" {
		t.Errorf("message text: got %q, exp \"value: 7\"", msg.Message)
	}

	found := false
	for _, u := range updates {
		if u.Kind == MessageBlock && u.Message == "value: 7" {
			found = true
		}
	}
	if !found {
		t.Error("message update callback not delivered")
	}

	p := s.BuildingAt(Pos{0, 0}).Proc
	if p.PrintBuffer() != "" {
		t.Error("print buffer should be cleared by printflush")
	}
}

func TestDrawFlushToDisplay(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddDisplay(Pos{2, 0}, false, 176, 176)

	_, err := s.SetProcessorConfig(Pos{0, 0}, `
draw clear 10 20 30
draw rect 1 2 3 4
drawflush display1
stop
`, []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	d := s.BuildingAt(Pos{2, 0})
	q := d.TakeDrawQueue()
	if len(q) != 2 {
		t.Fatalf("queue length: got %d, exp 2", len(q))
	}
	if q[0].Op != DrawClear || q[0].Args[0] != 10 {
		t.Errorf("first command: got %+v", q[0])
	}
	if q[1].Op != DrawRect || q[1].Args[3] != 4 {
		t.Errorf("second command: got %+v", q[1])
	}
	if len(d.TakeDrawQueue()) != 0 {
		t.Error("queue should drain on take")
	}
}

func TestMemoryCrossProcessor(t *testing.T) {
	// Writer at (0,0) runs before reader at (4,0) in grid order, so
	// the write is visible in the same tick.
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddMemory(Pos{2, 0}, false)
	s.AddProcessor(Pos{4, 0}, Logic)

	if _, err := s.SetProcessorConfig(Pos{0, 0}, "write 99 cell1 5\nstop\n", []Pos{{2, 0}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetProcessorConfig(Pos{4, 0}, "read x cell1 5\nstop\n", []Pos{{2, 0}}); err != nil {
		t.Fatal(err)
	}

	stepTicks(s, 1)
	p := s.BuildingAt(Pos{4, 0}).Proc
	if got := p.Var("x").AsNum(); got != 99 {
		t.Errorf("x: got %v, exp 99", got)
	}

	// Out-of-bounds indexes read null and drop writes.
	if _, err := s.SetProcessorConfig(Pos{4, 0}, "read y cell1 64\nwrite 1 cell1 -1\nstop\n", []Pos{{2, 0}}); err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)
	if got := s.BuildingAt(Pos{4, 0}).Proc.Var("y"); got.Kind != KindNull {
		t.Errorf("y: got %v, exp null", got)
	}
}

func TestControlSwitch(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddSwitch(Pos{2, 0})

	_, err := s.SetProcessorConfig(Pos{0, 0},
		"control enabled switch1 1 0 0\nsensor e switch1 @enabled\nstop\n", []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	if !s.BuildingAt(Pos{2, 0}).Enabled {
		t.Error("switch should be enabled")
	}
	if got := s.BuildingAt(Pos{0, 0}).Proc.Var("e").AsNum(); got != 1 {
		t.Errorf("sensed enabled: got %v, exp 1", got)
	}
}

func TestControlSorterConfig(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddSorter(Pos{2, 0})

	_, err := s.SetProcessorConfig(Pos{0, 0},
		"control config sorter1 @lead 0 0\nsensor c sorter1 @config\nstop\n", []Pos{{2, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	c := s.BuildingAt(Pos{0, 0}).Proc.Var("c")
	if c.Kind != KindContent || c.Cat != CatItem || c.ID != 1 {
		t.Errorf("sorter config: got %v, exp lead", c)
	}
}

func TestGetLink(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, Logic)
	s.AddMessage(Pos{2, 0})
	s.AddSwitch(Pos{3, 0})

	_, err := s.SetProcessorConfig(Pos{0, 0}, `
getlink a 0
getlink b 1
getlink c 2
set n @links
stop
`, []Pos{{2, 0}, {3, 0}})
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	p := s.BuildingAt(Pos{0, 0}).Proc
	if a := p.Var("a"); a.Kind != KindBuilding || a.Pos != (Pos{2, 0}).Pack() {
		t.Errorf("link 0: got %v", a)
	}
	if b := p.Var("b"); b.Kind != KindBuilding || b.Pos != (Pos{3, 0}).Pack() {
		t.Errorf("link 1: got %v", b)
	}
	if c := p.Var("c"); c.Kind != KindNull {
		t.Errorf("link 2: got %v, exp null", c)
	}
	if n := p.Var("n").AsNum(); n != 2 {
		t.Errorf("@links: got %v, exp 2", n)
	}
}

func TestLookup(t *testing.T) {
	s, p := newTestProc(t, Logic, "lookup item x 0\nlookup liquid y 1\nlookup item z 9999\nstop\n")
	stepTicks(s, 1)

	if x := p.Var("x"); x.Kind != KindContent || x.Cat != CatItem || x.ID != 0 {
		t.Errorf("lookup item 0: got %v", x)
	}
	if y := p.Var("y"); y.Kind != KindContent || y.Cat != CatLiquid || y.ID != 1 {
		t.Errorf("lookup liquid 1: got %v", y)
	}
	if z := p.Var("z"); z.Kind != KindNull {
		t.Errorf("lookup out of range: got %v, exp null", z)
	}
}

func TestGetBlockWorld(t *testing.T) {
	s := NewSim(nil)
	s.AddProcessor(Pos{0, 0}, World)
	s.AddMessage(Pos{5, 5})

	_, err := s.SetProcessorConfig(Pos{0, 0}, `
getblock building a 5 5
getblock block b 5 5
getblock building c 9 9
stop
`, nil)
	if err != nil {
		t.Fatal(err)
	}
	stepTicks(s, 1)

	p := s.BuildingAt(Pos{0, 0}).Proc
	if a := p.Var("a"); a.Kind != KindBuilding {
		t.Errorf("getblock building: got %v", a)
	}
	if b := p.Var("b"); b.Kind != KindContent || b.Cat != CatBlock || b.ID != int(MessageBlock) {
		t.Errorf("getblock block: got %v", b)
	}
	if c := p.Var("c"); c.Kind != KindNull {
		t.Errorf("getblock empty tile: got %v, exp null", c)
	}
}

func TestSensorOnContent(t *testing.T) {
	s, p := newTestProc(t, Logic, "sensor x @copper @id\nstop\n")
	stepTicks(s, 1)
	if got := p.Var("x").AsNum(); got != 0 {
		t.Errorf("@copper @id: got %v, exp 0", got)
	}
}

func TestSchedulerDeterminism(t *testing.T) {
	build := func() *Sim {
		s := NewSim(nil)
		s.AddProcessor(Pos{3, 1}, Logic)
		s.AddProcessor(Pos{0, 0}, Logic)
		s.AddMemory(Pos{2, 0}, false)
		s.SetProcessorConfig(Pos{3, 1}, `
op rand r 100 0
op noise n r 2
op add i i 1
op mod slot i 64
write r cell1 slot
`, []Pos{{2, 0}})
		s.SetProcessorConfig(Pos{0, 0}, "read x cell1 0\nop add y y x\n", []Pos{{2, 0}})
		return s
	}

	s1, s2 := build(), build()
	stepTicks(s1, 200)
	stepTicks(s2, 200)

	for _, name := range []string{"r", "n", "i", "slot"} {
		v1 := s1.BuildingAt(Pos{3, 1}).Proc.Var(name)
		v2 := s2.BuildingAt(Pos{3, 1}).Proc.Var(name)
		if !StrictEquals(v1, v2) {
			t.Errorf("%s diverged: %v vs %v", name, v1, v2)
		}
	}
	m1 := s1.BuildingAt(Pos{2, 0}).Memory
	m2 := s2.BuildingAt(Pos{2, 0}).Memory
	for i := range m1 {
		if m1[i] != m2[i] {
			t.Fatalf("memory slot %d diverged: %v vs %v", i, m1[i], m2[i])
		}
	}
}

func TestHostContractErrors(t *testing.T) {
	s := NewSim(nil)

	if _, err := s.SetProcessorConfig(Pos{0, 0}, "", nil); err != ErrNoBuilding {
		t.Errorf("missing building: got %v, exp ErrNoBuilding", err)
	}
	if err := s.SetMessageText(Pos{0, 0}, "x"); err != ErrNoBuilding {
		t.Errorf("missing message: got %v, exp ErrNoBuilding", err)
	}

	s.AddSwitch(Pos{0, 0})
	if _, err := s.SetProcessorConfig(Pos{0, 0}, "", nil); err != ErrWrongKind {
		t.Errorf("wrong kind: got %v, exp ErrWrongKind", err)
	}
	if err := s.SetSwitchEnabled(Pos{0, 0}, true); err != nil {
		t.Errorf("switch update: got %v", err)
	}
	if !s.BuildingAt(Pos{0, 0}).Enabled {
		t.Error("switch should be enabled")
	}

	if s.RemoveBuilding(Pos{9, 9}) {
		t.Error("removing an empty tile should report false")
	}
}
