package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree("mindy")
	root.AddCommand(cmd.Command{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})

	// Building creation commands
	add := cmd.NewTree("Add")
	root.AddCommand(cmd.Command{
		Name:    "add",
		Brief:   "Add a building to the grid",
		Subtree: add,
	})
	add.AddCommand(cmd.Command{
		Name:  "processor",
		Brief: "Add a processor building",
		Description: "Place a processor at the given grid position. The kind" +
			" selects the instructions-per-tick budget: micro, logic, hyper" +
			" or world.",
		Usage: "add processor <x> <y> [micro|logic|hyper|world]",
		Data:  (*Host).cmdAddProcessor,
	})
	add.AddCommand(cmd.Command{
		Name:  "display",
		Brief: "Add a logic display",
		Description: "Place a display at the given grid position. An optional" +
			" pixel size may follow; 'large' selects the large display block.",
		Usage: "add display <x> <y> [<pixels>] [large]",
		Data:  (*Host).cmdAddDisplay,
	})
	add.AddCommand(cmd.Command{
		Name:  "memory",
		Brief: "Add a memory cell or bank",
		Description: "Place a memory cell at the given grid position." +
			" 'bank' selects the 512-slot memory bank.",
		Usage: "add memory <x> <y> [bank]",
		Data:  (*Host).cmdAddMemory,
	})
	add.AddCommand(cmd.Command{
		Name:        "message",
		Brief:       "Add a message building",
		Description: "Place a message building at the given grid position.",
		Usage:       "add message <x> <y>",
		Data:        (*Host).cmdAddMessage,
	})
	add.AddCommand(cmd.Command{
		Name:        "switch",
		Brief:       "Add a switch building",
		Description: "Place a switch at the given grid position, initially off.",
		Usage:       "add switch <x> <y>",
		Data:        (*Host).cmdAddSwitch,
	})
	add.AddCommand(cmd.Command{
		Name:        "sorter",
		Brief:       "Add a sorter building",
		Description: "Place a sorter at the given grid position.",
		Usage:       "add sorter <x> <y>",
		Data:        (*Host).cmdAddSorter,
	})

	root.AddCommand(cmd.Command{
		Name:        "remove",
		Brief:       "Remove a building",
		Description: "Remove the building covering the given grid position.",
		Usage:       "remove <x> <y>",
		Data:        (*Host).cmdRemove,
	})
	root.AddCommand(cmd.Command{
		Name:        "buildings",
		Brief:       "List all buildings",
		Description: "List every building on the grid in scheduler order.",
		Usage:       "buildings",
		Data:        (*Host).cmdBuildings,
	})

	// Code commands
	code := cmd.NewTree("Code")
	root.AddCommand(cmd.Command{
		Name:    "code",
		Brief:   "Processor code commands",
		Subtree: code,
	})
	code.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Enter code interactively",
		Description: "Start interactive code entry for the processor at the" +
			" given position. A new prompt will appear; type mlog source" +
			" lines, then 'end.' on its own line to assemble and install.",
		Usage: "code set <x> <y>",
		Data:  (*Host).cmdCodeSet,
	})
	code.AddCommand(cmd.Command{
		Name:        "file",
		Brief:       "Load code from a file",
		Description: "Assemble an mlog source file into the processor at the given position.",
		Usage:       "code file <x> <y> <filename>",
		Data:        (*Host).cmdCodeFile,
	})
	code.AddCommand(cmd.Command{
		Name:        "list",
		Brief:       "List the assembled program",
		Description: "List the processor's assembled program in canonical source form.",
		Usage:       "code list <x> <y>",
		Data:        (*Host).cmdCodeList,
	})

	root.AddCommand(cmd.Command{
		Name:  "link",
		Brief: "Set processor links",
		Description: "Bind the processor at the first position to the listed" +
			" building positions and reassemble its code. Links outside a" +
			" 10-tile range are dropped, except for world processors.",
		Usage: "link <x> <y> [<lx> <ly> ...]",
		Data:  (*Host).cmdLink,
	})
	root.AddCommand(cmd.Command{
		Name:  "tick",
		Brief: "Advance the simulation",
		Description: "Run the given number of simulation ticks (default: the" +
			" tickbatch setting), advancing the clock at the target tick rate.",
		Usage: "tick [<count>]",
		Data:  (*Host).cmdTick,
	})
	root.AddCommand(cmd.Command{
		Name:        "vars",
		Brief:       "Display processor variables",
		Description: "Display the variable store of the processor at the given position.",
		Usage:       "vars <x> <y>",
		Data:        (*Host).cmdVars,
	})
	root.AddCommand(cmd.Command{
		Name:  "print",
		Brief: "Show print buffer or message text",
		Description: "Show the pending print buffer of a processor, or the" +
			" flushed text of a message building.",
		Usage: "print <x> <y>",
		Data:  (*Host).cmdPrint,
	})
	root.AddCommand(cmd.Command{
		Name:        "display",
		Brief:       "Dump a display's draw queue",
		Description: "Dump the pending draw-command queue of the display at the given position.",
		Usage:       "display <x> <y>",
		Data:        (*Host).cmdDisplay,
	})
	root.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.Command{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "add")
	root.AddShortcut("ap", "add processor")
	root.AddShortcut("b", "buildings")
	root.AddShortcut("c", "code set")
	root.AddShortcut("cf", "code file")
	root.AddShortcut("cl", "code list")
	root.AddShortcut("l", "link")
	root.AddShortcut("t", "tick")
	root.AddShortcut("v", "vars")
	root.AddShortcut("p", "print")
	root.AddShortcut("q", "quit")
	root.AddShortcut("?", "help")

	cmds = root
}
