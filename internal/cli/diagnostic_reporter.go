package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/injgraph/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		out:     out,
		verbose: verbose,
	}
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError reports err with whatever context its error chain carries
func (r *DiagnosticReporter) ReportError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(r.out, "\nERROR: Extraction Failed\n")
	fmt.Fprintf(r.out, "========================\n\n")

	var graphErr errors.GraphError
	if stderrors.As(err, &graphErr) {
		r.reportGraphError(err, graphErr)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	var harnessErr *errors.HarnessError
	if stderrors.As(err, &harnessErr) && harnessErr.Stderr != "" {
		fmt.Fprintf(r.out, "Harness output:\n")
		for _, line := range strings.Split(harnessErr.Stderr, "\n") {
			fmt.Fprintf(r.out, "   %s\n", line)
		}
		fmt.Fprintf(r.out, "\n")
	}

	if r.verbose {
		r.printErrorChain(err)
	} else {
		fmt.Fprintf(r.out, "Run with --verbose for more detailed output\n")
	}
}

func (r *DiagnosticReporter) reportGraphError(err error, graphErr errors.GraphError) {
	errorType := graphErr.ErrorCode().String()
	fmt.Fprintf(r.out, "Type: %s\n", errorType)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(errorType)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	if loc := graphErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := graphErr.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := graphErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
	fmt.Fprintf(r.out, "\n")
}
