// Package cli is a small command/flag framework for the onela binary.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	Subcommands []*Command
	Flags       []*Flag
}

// Flag represents a command flag
type Flag struct {
	Name     string
	Short    string
	Usage    string
	Required bool
	Value    any // *string, *bool, *int, *time.Duration
}

// App represents the CLI application
type App struct {
	Name        string
	Version     string
	Description string
	Commands    []*Command
	GlobalFlags []*Flag

	// Out receives usage and version text
	Out io.Writer
}

// NewApp creates a new CLI application
func NewApp(name, version, description string) *App {
	return &App{
		Name:        name,
		Version:     version,
		Description: description,
		Commands:    []*Command{},
		GlobalFlags: []*Flag{},
		Out:         os.Stdout,
	}
}

// AddCommand adds a command to the app
func (a *App) AddCommand(cmd *Command) {
	a.Commands = append(a.Commands, cmd)
}

// AddGlobalFlag adds a global flag to the app
func (a *App) AddGlobalFlag(flag *Flag) {
	a.GlobalFlags = append(a.GlobalFlags, flag)
}

// Execute runs the CLI application with os.Args
func (a *App) Execute() error {
	return a.Run(os.Args[1:])
}

// Run runs the CLI application with args (without the program name)
func (a *App) Run(args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	switch args[0] {
	case "--version", "-v":
		fmt.Fprintf(a.Out, "%s version %s\n", a.Name, a.Version)
		return nil
	case "--help", "-h":
		a.printUsage()
		return nil
	}

	// Global flags may appear anywhere before the command
	remainingArgs, err := parseFlags(args, a.GlobalFlags, true)
	if err != nil {
		return err
	}
	if len(remainingArgs) == 0 {
		a.printUsage()
		return nil
	}

	cmdName := remainingArgs[0]
	cmdArgs := remainingArgs[1:]

	cmd := a.findCommand(cmdName)
	if cmd == nil {
		a.printUsage()
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(cmdArgs) > 0 && (cmdArgs[0] == "--help" || cmdArgs[0] == "-h") {
		cmd.printUsage(a.Out)
		return nil
	}

	// Check for subcommands
	if len(cmdArgs) > 0 && len(cmd.Subcommands) > 0 && !strings.HasPrefix(cmdArgs[0], "-") {
		for _, sub := range cmd.Subcommands {
			if sub.Name == cmdArgs[0] {
				return runCommand(sub, cmdArgs[1:])
			}
		}
	}

	// If command has subcommands but no run function, show usage
	if len(cmd.Subcommands) > 0 && cmd.Run == nil {
		cmd.printUsage(a.Out)
		return nil
	}
	return runCommand(cmd, cmdArgs)
}

func (a *App) findCommand(name string) *Command {
	for _, c := range a.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func runCommand(cmd *Command, args []string) error {
	rest, err := parseFlags(args, cmd.Flags, false)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %s has no run function", cmd.Name)
	}
	return cmd.Run(rest)
}

// parseFlags assigns known flags and returns the remaining args. With
// stopAtArg set parsing stops at the first positional argument, so the
// command's own flags are left for the command.
func parseFlags(args []string, flags []*Flag, stopAtArg bool) ([]string, error) {
	seen := make(map[string]bool)
	var remaining []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			if stopAtArg {
				remaining = append(remaining, args[i:]...)
				break
			}
			remaining = append(remaining, arg)
			continue
		}

		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}

		flag := findFlag(flags, name)
		if flag == nil {
			// Unknown flag, treat as argument
			remaining = append(remaining, arg)
			continue
		}

		if _, isBool := flag.Value.(*bool); isBool {
			if !hasValue {
				value = "true"
			}
		} else if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", flag.Name)
			}
			i++
			value = args[i]
		}

		if err := setFlagValue(flag, value); err != nil {
			return nil, err
		}
		seen[flag.Name] = true
	}

	for _, flag := range flags {
		if flag.Required && !seen[flag.Name] {
			return nil, fmt.Errorf("flag --%s is required", flag.Name)
		}
	}
	return remaining, nil
}

func findFlag(flags []*Flag, name string) *Flag {
	for _, f := range flags {
		if f.Name == name || (f.Short != "" && f.Short == name) {
			return f
		}
	}
	return nil
}

// setFlagValue sets the value of a flag
func setFlagValue(flag *Flag, value string) error {
	switch v := flag.Value.(type) {
	case *string:
		*v = value
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("flag --%s: invalid bool %q", flag.Name, value)
		}
		*v = b
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("flag --%s: invalid int %q", flag.Name, value)
		}
		*v = n
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("flag --%s: invalid duration %q", flag.Name, value)
		}
		*v = d
	default:
		return fmt.Errorf("flag --%s: unsupported value type %T", flag.Name, flag.Value)
	}
	return nil
}

// printUsage prints the usage information
func (a *App) printUsage() {
	w := a.Out
	fmt.Fprintf(w, "%s - %s\n\n", a.Name, a.Description)
	fmt.Fprintf(w, "Usage:\n  %s [flags] [command] [arguments]\n\n", a.Name)

	if len(a.Commands) > 0 {
		fmt.Fprintln(w, "Commands:")
		for _, cmd := range a.Commands {
			fmt.Fprintf(w, "  %-15s %s\n", cmd.Name, cmd.Short)
		}
		fmt.Fprintln(w)
	}

	if len(a.GlobalFlags) > 0 {
		fmt.Fprintln(w, "Global Flags:")
		printFlags(w, a.GlobalFlags)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Use '%s [command] --help' for more information about a command.\n", a.Name)
}

func printFlags(w io.Writer, flags []*Flag) {
	for _, flag := range flags {
		short := ""
		if flag.Short != "" {
			short = fmt.Sprintf("-%s, ", flag.Short)
		}
		required := ""
		if flag.Required {
			required = " (required)"
		}
		fmt.Fprintf(w, "  %s--%s\t%s%s\n", short, flag.Name, flag.Usage, required)
	}
}

// PrintUsage prints usage for a specific command to stdout
func (cmd *Command) PrintUsage() {
	cmd.printUsage(os.Stdout)
}

func (cmd *Command) printUsage(w io.Writer) {
	if cmd.Long != "" {
		fmt.Fprintln(w, cmd.Long)
		fmt.Fprintln(w)
	}

	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	fmt.Fprintf(w, "Usage:\n  %s\n\n", usage)

	if len(cmd.Flags) > 0 {
		fmt.Fprintln(w, "Flags:")
		printFlags(w, cmd.Flags)
		fmt.Fprintln(w)
	}

	if len(cmd.Subcommands) > 0 {
		fmt.Fprintln(w, "Subcommands:")
		for _, sub := range cmd.Subcommands {
			fmt.Fprintf(w, "  %-15s %s\n", sub.Name, sub.Short)
		}
		fmt.Fprintln(w)
	}
}
