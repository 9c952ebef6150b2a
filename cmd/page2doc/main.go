package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Command names.
const (
	cmdPDF     = "pdf"
	cmdPNG     = "png"
	cmdExtract = "extract"
	cmdDoctor  = "doctor"
	cmdVersion = "version"
	cmdHelp    = "help"
)

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// isCommand reports whether s names a subcommand.
func isCommand(s string) bool {
	switch s {
	case cmdPDF, cmdPNG, cmdExtract, cmdDoctor, cmdVersion, cmdHelp:
		return true
	}
	return false
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch cmd {
	case cmdVersion:
		fmt.Fprintf(env.Stdout, "page2doc %s\n", Version)
		return ExitSuccess
	case cmdHelp:
		return runHelp(rest, env)
	case cmdDoctor:
		return runDoctorCmd(ctx, rest, env)
	case cmdExtract:
		return runExtractCmd(ctx, rest, env)
	case cmdPNG:
		return runConvertCmd(ctx, cmdPNG, rest, env)
	default:
		return runConvertCmd(ctx, cmdPDF, rest, env)
	}
}
