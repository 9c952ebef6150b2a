package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2doc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  pdf        Convert Markdown (page, file, text) to PDF")
	fmt.Fprintln(w, "  png        Convert a Mermaid diagram (page, file, text) to PNG")
	fmt.Fprintln(w, "  extract    Print the Markdown or Mermaid content found on a page")
	fmt.Fprintln(w, "  doctor     Check Chrome and the Mermaid library")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'page2doc help <command>' for details on a specific command.")
}

func printInputHelp(w io.Writer, fileKinds string) {
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    http(s) URL, HTML file, "+fileKinds+" file, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single input) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Render timeout per input (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --text <s>            Convert this text instead of inputs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page Loading:")
	fmt.Fprintln(w, "      --no-js               Fetch pages over HTTP without running scripts")
	fmt.Fprintln(w, "      --readability         Try a readability pass before the last-resort scan")
	fmt.Fprintln(w)
}

func printOutputControlHelp(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs and timing")
}

// printPDFUsage prints usage for the pdf command.
func printPDFUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2doc pdf <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown to PDF. Outputs are named markdown-YYYY-MM-DD-HH-mm-ss.pdf.")
	fmt.Fprintln(w)
	printInputHelp(w, ".md/.markdown/.txt")
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --mode <s>            raster (default, image pages) or print (vector)")
	fmt.Fprintln(w, "      --scale <f>           Raster device scale factor (1-4)")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Print margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <s>           Style name or CSS file path")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file applied after the style")
	fmt.Fprintln(w, "      --html                Write HTML alongside the PDF")
	fmt.Fprintln(w, "      --html-only           Write HTML only, skip the browser")
	fmt.Fprintln(w)
	printOutputControlHelp(w)
}

// printPNGUsage prints usage for the png command.
func printPNGUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2doc png <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Mermaid diagrams to PNG. Outputs are named mermaid-YYYY-MM-DD-HH-mm-ss.png.")
	fmt.Fprintln(w)
	printInputHelp(w, ".mmd/.mermaid/.txt")
	fmt.Fprintln(w, "Diagram:")
	fmt.Fprintln(w, "      --theme <s>           Theme: default, dark, forest, neutral, base")
	fmt.Fprintln(w, "      --padding <n>         White padding in pixels (default 40)")
	fmt.Fprintln(w, "      --min-width <n>       Minimum canvas width (default 800)")
	fmt.Fprintln(w, "      --min-height <n>      Minimum canvas height (default 600)")
	fmt.Fprintln(w, "      --settle <d>          Delay between render and capture (default 500ms)")
	fmt.Fprintln(w, "      --mermaid-script <s>  mermaid.min.js file path or URL")
	fmt.Fprintln(w)
	printOutputControlHelp(w)
}

// printExtractUsage prints usage for the extract command.
func printExtractUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2doc extract <url|file.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the first Markdown or Mermaid block found on a page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -k, --kind <s>            markdown (default) or mermaid")
	fmt.Fprintln(w, "      --json                Print {success, markdown|mermaid, error}")
	fmt.Fprintln(w, "      --no-js               Fetch the page over HTTP without running scripts")
	fmt.Fprintln(w, "      --readability         Try a readability pass before the last-resort scan")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printOutputControlHelp(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: page2doc doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the Mermaid library, the configured style and output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w, "      --mermaid-script <s>  mermaid.min.js file path or URL to probe")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case cmdPDF:
		printPDFUsage(env.Stdout)
	case cmdPNG:
		printPNGUsage(env.Stdout)
	case cmdExtract:
		printExtractUsage(env.Stdout)
	case cmdDoctor:
		printDoctorUsage(env.Stdout)
	case cmdVersion:
		fmt.Fprintln(env.Stdout, "Usage: page2doc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case cmdHelp:
		fmt.Fprintln(env.Stdout, "Usage: page2doc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
