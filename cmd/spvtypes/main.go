package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/spirv-types/spirv"
	"github.com/wippyai/spirv-types/spvasm"
)

var (
	declaredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func main() {
	var (
		spvFile     = flag.String("spv", "", "Path to SPIR-V binary module")
		asmFile     = flag.String("asm", "", "Path to SPIR-V assembly file")
		list        = flag.Bool("list", false, "Print the module as assembly and exit")
		caps        = flag.Bool("caps", false, "Print required capabilities and whether they are declared")
		exts        = flag.String("ext", "", "Extensions to enable before decoding (comma-separated)")
		verbose     = flag.Bool("v", false, "Debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if (*spvFile == "") == (*asmFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: spvtypes -spv <file.spv> [-caps] [-ext a,b] [-v]")
		fmt.Fprintln(os.Stderr, "       spvtypes -asm <file.spvasm> -list")
		fmt.Fprintln(os.Stderr, "       spvtypes -spv <file.spv> -i  (interactive mode)")
		os.Exit(1)
	}
	src := source{path: *spvFile}
	if *asmFile != "" {
		src = source{path: *asmFile, asm: true}
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	opts := spirv.DefaultOptions()
	opts.Logger = logger
	opts.Extensions = splitList(*exts)

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(src, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(src, opts, *list, *caps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(src source, opts spirv.Options, listOnly, capsOnly bool) error {
	m, err := load(src, opts)
	if m == nil {
		return err
	}
	if err != nil {
		// Entry errors leave a partial module worth reporting on.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if listOnly {
		text, err := spvasm.Disassemble(m)
		if err != nil {
			return fmt.Errorf("disassemble: %w", err)
		}
		fmt.Print(text)
		return nil
	}

	if !capsOnly {
		summary(os.Stdout, src.path, m)
		fmt.Println()
	}

	color := term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Println("Capabilities:")
	for _, row := range capabilityRows(m) {
		status, style := "declared", declaredStyle
		if !row.declared {
			status, style = "missing", missingStyle
		}
		if color {
			status = style.Render(status)
		}
		fmt.Printf("  %-32s %s\n", row.capability, status)
	}
	return nil
}
