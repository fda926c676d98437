package cdbcli

import (
	"fmt"
	"io"
)

// Run is cdbutil's entry point. args is the program's os.Args, including
// argv[0]. Returns the process exit code.
func Run(out, errOut io.Writer, args []string) int {
	commands := allCommands()

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	if len(args) < 2 {
		printUsage(errOut, commands)
		return 1
	}
	if args[1] == "-h" || args[1] == "--help" {
		printUsage(out, commands)
		return 0
	}

	cmd, ok := commandMap[args[1]]
	if !ok {
		fmt.Fprintln(errOut, "error: unknown command:", args[1])
		printUsage(errOut, commands)
		return 1
	}

	return cmd.Run(NewIO(out, errOut), args[2:])
}

func allCommands() []*Command {
	return []*Command{
		MakeCmd(),
		DumpCmd(),
		GetCmd(),
		StatCmd(),
	}
}

func printUsage(w io.Writer, commands []*Command) {
	fmt.Fprintln(w, "cdbutil - build and inspect cdb constant databases")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: cdbutil <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintln(w, cmd.HelpLine())
	}
}
