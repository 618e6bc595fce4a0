// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides an interactive shell around a mindy
// simulation. Within the host it is possible to place and remove
// buildings, assign mlog source code to processors, bind links, step
// the scheduler deterministically, and inspect variable stores, print
// buffers, message text and display draw queues.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/mindy"
	"github.com/beevik/mindy/disasm"
	"github.com/golang/glog"
)

type state byte

const (
	stateProcessingCommands state = iota
	stateCodeEntry
	stateInterrupted
)

// procConfig remembers the last source and link list assigned to a
// processor so links and code can be updated independently.
type procConfig struct {
	source string
	links  []mindy.Pos
}

// A Host wraps a simulation with an interactive command interpreter.
type Host struct {
	sim         *mindy.Sim
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	state       state
	lastCmd     *cmd.Selection
	settings    *settings

	configs  map[mindy.Pos]*procConfig
	codePos  mindy.Pos
	codeText []string
	stamp    float64
}

// New creates a host around an empty simulation with the default
// content catalog.
func New() *Host {
	h := &Host{
		settings: newSettings(),
		configs:  make(map[mindy.Pos]*procConfig),
	}
	h.sim = mindy.NewSim(nil)
	h.sim.OnBuildingUpdate(h.onBuildingUpdate)
	return h
}

// Sim exposes the wrapped simulation.
func (h *Host) Sim() *mindy.Sim {
	return h.sim
}

// RunCommands accepts host commands from a reader and outputs the
// results to a writer. If the commands are interactive, a prompt is
// displayed while the host waits for the next command.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		switch h.state {
		case stateProcessingCommands, stateInterrupted:
			h.state = stateProcessingCommands
			err = h.processCommand(line)
		case stateCodeEntry:
			err = h.processCodeEntry(line)
		}

		if err != nil {
			break
		}
	}
}

// Break interrupts interactive code entry, or prompts to quit.
func (h *Host) Break() {
	h.println()

	switch h.state {
	case stateCodeEntry:
		h.println("Code entry canceled.")
		h.codeText = nil
		h.state = stateProcessingCommands
		h.prompt()
	default:
		h.println("Type 'quit' to exit the application.")
		h.prompt()
	}
}

func (h *Host) processCommand(line string) error {
	var c cmd.Selection
	if line != "" {
		var err error
		c, err = cmds.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			h.println("Command not found.")
			return nil
		case err == cmd.ErrAmbiguous:
			h.println("Command is ambiguous.")
			return nil
		case err != nil:
			h.printf("ERROR: %v.\n", err)
			return nil
		}
	} else if h.lastCmd != nil {
		c = *h.lastCmd
	}

	if c.Command == nil {
		return nil
	}
	if c.Command.Data == nil && c.Command.Subtree != nil {
		h.displayCommands(c.Command.Subtree, nil)
		return nil
	}

	h.lastCmd = &c

	handler := c.Command.Data.(func(*Host, cmd.Selection) error)
	return handler(h, c)
}

func (h *Host) processCodeEntry(line string) error {
	if strings.TrimSpace(line) == "end." {
		source := strings.Join(h.codeText, "\n")
		h.codeText = nil
		h.state = stateProcessingCommands
		h.assignCode(h.codePos, source)
		return nil
	}
	h.codeText = append(h.codeText, line)
	return nil
}

// assignCode installs source on the processor at pos, reusing its last
// link list.
func (h *Host) assignCode(pos mindy.Pos, source string) {
	cfg := h.config(pos)
	cfg.source = source

	resolved, err := h.sim.SetProcessorConfig(pos, cfg.source, cfg.links)
	if err != nil {
		h.printf("Assembly failed: %v\n", err)
		return
	}

	b := h.sim.BuildingAt(pos)
	h.printf("Assembled %d instruction(s) into %s.\n", len(b.Proc.Program()), b.Name)
	for lp, name := range resolved {
		h.printf("    link %-12s (%d,%d)\n", name, lp.X, lp.Y)
	}
}

func (h *Host) config(pos mindy.Pos) *procConfig {
	cfg, ok := h.configs[pos]
	if !ok {
		cfg = &procConfig{}
		h.configs[pos] = cfg
	}
	return cfg
}

func (h *Host) onBuildingUpdate(u mindy.BuildingUpdate) {
	glog.V(1).Infof("update %s kind=%v", u.Name, u.Kind)
	if h.settings.ShowUpdates && h.output != nil {
		h.printf("[update] %s: message=%q enabled=%v err=%q\n",
			u.Name, u.Message, u.Enabled, u.AsmErr)
	}
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if !h.interactive {
		return
	}

	switch h.state {
	case stateCodeEntry:
		h.printf("%3d  ", len(h.codeText)+1)
	default:
		h.printf("* ")
	}
	h.flush()
}

//
// command handlers
//

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.displayCommands(cmds, nil)
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil {
			h.printf("%v\n", err)
		} else {
			switch {
			case s.Command.Subtree != nil:
				h.displayCommands(s.Command.Subtree, s.Command)
			default:
				if s.Command.Usage != "" {
					h.printf("Usage: %s\n\n", s.Command.Usage)
				}
				switch {
				case s.Command.Description != "":
					h.printf("Description:\n%s\n\n", indentWrap(3, s.Command.Description))
				case s.Command.Brief != "":
					h.printf("Description:\n%s.\n\n", indentWrap(3, s.Command.Brief))
				}
				if len(s.Command.Shortcuts) > 0 {
					h.printf("Shortcuts: %s\n\n", strings.Join(s.Command.Shortcuts, ", "))
				}
			}
		}
	}
	return nil
}

func (h *Host) cmdAddProcessor(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}

	kind := mindy.Logic
	if len(c.Args) > 2 {
		switch c.Args[2] {
		case "micro":
			kind = mindy.Micro
		case "logic":
			kind = mindy.Logic
		case "hyper":
			kind = mindy.Hyper
		case "world":
			kind = mindy.World
		default:
			h.displayUsage(c.Command)
			return nil
		}
	}

	b, err := h.sim.AddProcessor(pos, kind)
	h.reportAdd(b, err)
	return nil
}

func (h *Host) cmdAddDisplay(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}

	pixels := 176
	large := false
	for _, arg := range c.Args[2:] {
		if arg == "large" {
			large = true
			pixels = 256
		} else if n, err := strconv.Atoi(arg); err == nil {
			pixels = n
		}
	}

	b, err := h.sim.AddDisplay(pos, large, pixels, pixels)
	h.reportAdd(b, err)
	return nil
}

func (h *Host) cmdAddMemory(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}
	bank := len(c.Args) > 2 && c.Args[2] == "bank"
	b, err := h.sim.AddMemory(pos, bank)
	h.reportAdd(b, err)
	return nil
}

func (h *Host) cmdAddMessage(c cmd.Selection) error {
	if pos, ok := h.parsePos(c, 0); ok {
		b, err := h.sim.AddMessage(pos)
		h.reportAdd(b, err)
	}
	return nil
}

func (h *Host) cmdAddSwitch(c cmd.Selection) error {
	if pos, ok := h.parsePos(c, 0); ok {
		b, err := h.sim.AddSwitch(pos)
		h.reportAdd(b, err)
	}
	return nil
}

func (h *Host) cmdAddSorter(c cmd.Selection) error {
	if pos, ok := h.parsePos(c, 0); ok {
		b, err := h.sim.AddSorter(pos)
		h.reportAdd(b, err)
	}
	return nil
}

func (h *Host) reportAdd(b *mindy.Building, err error) {
	if err != nil {
		h.printf("%v\n", err)
		return
	}
	h.printf("Added %s at (%d,%d).\n", b.Name, b.Pos.X, b.Pos.Y)
}

func (h *Host) cmdRemove(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}
	name := h.sim.BuildingName(pos)
	if !h.sim.RemoveBuilding(pos) {
		h.println("No building there.")
		return nil
	}
	h.printf("Removed %s.\n", name)
	return nil
}

func (h *Host) cmdBuildings(c cmd.Selection) error {
	n := 0
	h.sim.EachBuilding(func(b *mindy.Building) {
		n++
		extra := ""
		switch {
		case b.IsProcessor():
			extra = fmt.Sprintf("%d instruction(s)", len(b.Proc.Program()))
			if b.Proc.Halted() {
				extra += ", halted"
			}
			if err := b.Proc.Err(); err != nil {
				extra = err.Error()
			}
		case b.Kind == mindy.MessageBlock:
			extra = strconv.Quote(b.Message)
		case b.Kind == mindy.SwitchBlock:
			extra = fmt.Sprintf("enabled=%v", b.Enabled)
		case b.Memory != nil:
			extra = fmt.Sprintf("%d slots", len(b.Memory))
		}
		h.printf("    %-16s (%3d,%3d)  %s\n", b.Name, b.Pos.X, b.Pos.Y, extra)
	})
	if n == 0 {
		h.println("No buildings.")
	}
	return nil
}

func (h *Host) cmdCodeSet(c cmd.Selection) error {
	pos, ok := h.requireProcessor(c)
	if !ok {
		return nil
	}
	h.codePos = pos
	h.codeText = nil
	h.state = stateCodeEntry
	h.println("Enter mlog source. Type 'end.' to assemble.")
	return nil
}

func (h *Host) cmdCodeFile(c cmd.Selection) error {
	if len(c.Args) < 3 {
		h.displayUsage(c.Command)
		return nil
	}
	pos, ok := h.requireProcessor(c)
	if !ok {
		return nil
	}

	source, err := os.ReadFile(c.Args[2])
	if err != nil {
		h.printf("Failed to open '%s': %v\n", c.Args[2], err)
		return nil
	}
	h.assignCode(pos, string(source))
	return nil
}

func (h *Host) cmdCodeList(c cmd.Selection) error {
	pos, ok := h.requireProcessor(c)
	if !ok {
		return nil
	}
	b := h.sim.BuildingAt(pos)
	lines := disasm.Program(h.sim, b.Proc)
	if lines == nil {
		h.println("No program.")
		return nil
	}
	for i, line := range lines {
		if i >= h.settings.ListLines {
			h.printf("    ... %d more\n", len(lines)-i)
			break
		}
		h.printf("%4d  %s\n", i, line)
	}
	return nil
}

func (h *Host) cmdLink(c cmd.Selection) error {
	pos, ok := h.requireProcessor(c)
	if !ok {
		return nil
	}

	var links []mindy.Pos
	for i := 2; i+1 < len(c.Args); i += 2 {
		x, err1 := strconv.Atoi(c.Args[i])
		y, err2 := strconv.Atoi(c.Args[i+1])
		if err1 != nil || err2 != nil {
			h.displayUsage(c.Command)
			return nil
		}
		links = append(links, mindy.Pos{X: x, Y: y})
	}

	cfg := h.config(pos)
	cfg.links = links
	h.assignCode(pos, cfg.source)
	return nil
}

func (h *Host) cmdTick(c cmd.Selection) error {
	n := h.settings.TickBatch
	if len(c.Args) > 0 {
		v, err := strconv.Atoi(c.Args[0])
		if err != nil || v < 1 {
			h.displayUsage(c.Command)
			return nil
		}
		n = v
	}

	step := 1000 / float64(h.sim.TargetFPS())
	for i := 0; i < n; i++ {
		h.stamp += step
		h.sim.Tick(h.stamp)
	}
	h.printf("Tick %d, t=%.1fms.\n", h.sim.TickCount(), h.sim.Time())
	return nil
}

func (h *Host) cmdVars(c cmd.Selection) error {
	pos, ok := h.requireProcessor(c)
	if !ok {
		return nil
	}
	b := h.sim.BuildingAt(pos)
	for _, name := range b.Proc.VarNames() {
		v := b.Proc.Var(name)
		h.printf("    %-16s %s\n", name, v.Format(h.sim))
	}
	h.printf("    %-16s %d\n", "@counter", b.Proc.PC())
	return nil
}

func (h *Host) cmdPrint(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}
	b := h.sim.BuildingAt(pos)
	switch {
	case b == nil:
		h.println("No building there.")
	case b.IsProcessor():
		h.printf("%q\n", b.Proc.PrintBuffer())
	case b.Kind == mindy.MessageBlock:
		h.printf("%q\n", b.Message)
	default:
		h.println("Building has no text.")
	}
	return nil
}

func (h *Host) cmdDisplay(c cmd.Selection) error {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return nil
	}
	b := h.sim.BuildingAt(pos)
	if b == nil || b.DisplayW == 0 {
		h.println("No display there.")
		return nil
	}

	queue := b.TakeDrawQueue()
	for i, dc := range queue {
		if i >= h.settings.DrawDump {
			h.printf("    ... %d more\n", len(queue)-i)
			break
		}
		h.printf("    %s\n", formatDrawCommand(dc))
	}
	h.printf("%d command(s).\n", len(queue))
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Settings:")
		h.settings.Display(h.output)

	case 1:
		h.displayUsage(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int
			v, err = strconv.Atoi(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (h *Host) displayUsage(c *cmd.Command) {
	if c.Usage != "" {
		h.printf("Usage: %s\n", c.Usage)
	}
}

func (h *Host) displayCommands(commands *cmd.Tree, c *cmd.Command) {
	h.printf("%s commands:\n", commands.Title)
	for _, c := range commands.Commands {
		if c.Brief != "" {
			h.printf("    %-15s  %s\n", c.Name, c.Brief)
		}
	}
	h.println()

	if c != nil && len(c.Shortcuts) > 0 {
		h.printf("Shortcuts: %s\n\n", strings.Join(c.Shortcuts, ", "))
	}
}

// parsePos reads a grid position from two consecutive arguments.
func (h *Host) parsePos(c cmd.Selection, i int) (mindy.Pos, bool) {
	if len(c.Args) < i+2 {
		h.displayUsage(c.Command)
		return mindy.Pos{}, false
	}
	x, err1 := strconv.Atoi(c.Args[i])
	y, err2 := strconv.Atoi(c.Args[i+1])
	if err1 != nil || err2 != nil {
		h.displayUsage(c.Command)
		return mindy.Pos{}, false
	}
	return mindy.Pos{X: x, Y: y}, true
}

// requireProcessor parses a position and checks it holds a processor.
func (h *Host) requireProcessor(c cmd.Selection) (mindy.Pos, bool) {
	pos, ok := h.parsePos(c, 0)
	if !ok {
		return pos, false
	}
	b := h.sim.BuildingAt(pos)
	if b == nil || !b.IsProcessor() {
		h.println("No processor there.")
		return pos, false
	}
	return b.Pos, true
}

func formatDrawCommand(dc mindy.DrawCommand) string {
	switch dc.Op {
	case mindy.DrawPrint:
		return fmt.Sprintf("print (%g,%g) %s %q",
			dc.Args[0], dc.Args[1], dc.Align, dc.Text)
	default:
		return fmt.Sprintf("%v %v", dc.Op, dc.Args)
	}
}
