// Command circomspect-lint is the CLI surface of spec §6.3: it parses a
// circuit source file, runs the registered analysis passes over every
// template and function, and prints (or serializes) the resulting reports.
// Grounded on the teacher's cmd/malphas, which is likewise a thin flag-driven
// wrapper around a parse→analyze→emit pipeline, but rebuilt on cobra/fatih
// the way the rest of the retrieval pack's CLIs are (see DESIGN.md).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/passes"
	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/rpcserver"
	"github.com/circomspect-lang/circomspect-go/internal/sarif"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

var (
	flagLevel     string
	flagCurve     string
	flagAllow     []string
	flagSarifFile string
	flagVerbose   bool
	flagDaemon    bool
)

func main() {
	root := &cobra.Command{
		Use:   "circomspect-lint [file]",
		Short: "Static analyzer for the circuit arithmetic DSL",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().StringVarP(&flagLevel, "level", "l", "warning", "minimum severity to report: info|warning|note|error")
	root.Flags().StringVarP(&flagCurve, "curve", "c", "BN128", "prime field: BN128|BLS12_381|GOLDILOCKS")
	root.Flags().StringArrayVarP(&flagAllow, "allow", "a", nil, "suppress a report ID (repeatable)")
	root.Flags().StringVarP(&flagSarifFile, "sarif-file", "s", "", "write a SARIF 2.1.0 report to this path")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.Flags().BoolVar(&flagDaemon, "daemon", false, "run as a JSON-RPC daemon over stdio instead of linting a file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	if flagDaemon {
		return rpcserver.Serve(context.Background(), stdioReadWriteCloser{})
	}
	if len(args) != 1 {
		return fmt.Errorf("circomspect-lint requires exactly one file argument (or --daemon)")
	}

	minSeverity, ok := report.ParseSeverity(flagLevel)
	if !ok {
		return fmt.Errorf("unknown level %q", flagLevel)
	}
	curve, err := field.ParseCurve(flagCurve)
	if err != nil {
		return err
	}

	path := args[0]
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	lib := source.NewLibrary()
	fileID := lib.Add(path, string(text))

	p := astmodel.NewParser(fileID, string(text))
	file := p.ParseFile()
	for _, msg := range p.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, msg)
	}
	if len(p.Errors) > 0 {
		return fmt.Errorf("parsing %s failed with %d error(s)", path, len(p.Errors))
	}

	ctx := facade.New(lib, curve, file)
	ctx.Log = log
	ctx.RegisterPass(passes.Shadowing)
	ctx.RegisterPass(passes.DeadAssign)
	ctx.RegisterPass(passes.ConstCond)
	ctx.RegisterPass(passes.FieldArith)

	allow := make(map[string]bool, len(flagAllow))
	for _, id := range flagAllow {
		allow[id] = true
	}
	reports := ctx.Run().Filter(minSeverity, allow)

	printReports(lib, reports)

	if flagSarifFile != "" {
		doc := sarif.Build("circomspect-lint", reports, lib)
		data, err := sarif.Marshal(doc)
		if err != nil {
			return fmt.Errorf("building sarif output: %w", err)
		}
		if err := os.WriteFile(flagSarifFile, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", flagSarifFile, err)
		}
	}

	for _, r := range reports {
		if r.Severity == report.SeverityError {
			os.Exit(1)
		}
	}
	return nil
}

func printReports(lib *source.Library, reports report.Collection) {
	for _, r := range reports {
		printOne(lib, r)
	}
}

func severityColor(s report.Severity) *color.Color {
	switch s {
	case report.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case report.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case report.SeverityNote:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func printOne(lib *source.Library, r *report.Report) {
	sev := severityColor(r.Severity)
	sev.Fprintf(os.Stdout, "%s", r.Severity.String())
	fmt.Printf("[%s]: %s\n", r.ID, r.Message)
	if r.Primary != nil {
		printLabel(lib, "  -->", r.Primary.File, r.Primary.Span, r.Primary.Text)
	}
	for _, lbl := range r.Secondary {
		printLabel(lib, "  ...", lbl.File, lbl.Span, lbl.Text)
	}
	for _, note := range r.Notes {
		fmt.Printf("  note: %s\n", note)
	}
}

func printLabel(lib *source.Library, prefix string, fileID source.FileID, span source.Span, text string) {
	f, err := lib.Get(fileID)
	if err != nil {
		fmt.Printf("%s <unknown location>: %s\n", prefix, text)
		return
	}
	fmt.Printf("%s %s:%d:%d: %s\n", prefix, f.Path, span.Line, span.Column, text)
}

// stdioReadWriteCloser adapts os.Stdin/os.Stdout to the io.ReadWriteCloser
// rpcserver.Serve wants; closing it is a no-op since the process owns stdio
// for its whole lifetime.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
