package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output. Everything
// goes to stderr by default because stdout carries the record stream.
type DiagnosticSystem struct {
	level  DiagnosticLevel
	output io.Writer
	logger *charmlog.Logger
	indent int
}

// NewDiagnosticSystem creates a new diagnostic system writing to stderr
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return NewDiagnosticSystemTo(os.Stderr, level)
}

// NewDiagnosticSystemTo creates a diagnostic system writing to w
func NewDiagnosticSystemTo(w io.Writer, level DiagnosticLevel) *DiagnosticSystem {
	if !shouldUseColors() {
		color.NoColor = true
	}
	return &DiagnosticSystem{
		level:  level,
		output: w,
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: level >= DiagnosticVerbose,
			TimeFormat:      "15:04:05.00",
			Level:           logLevel(level),
		}),
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticDebug)
}

// logLevel maps a diagnostic level to the logger's threshold
func logLevel(level DiagnosticLevel) charmlog.Level {
	switch {
	case level >= DiagnosticVerbose:
		return charmlog.DebugLevel
	case level == DiagnosticInfo:
		return charmlog.InfoLevel
	case level == DiagnosticWarn:
		return charmlog.WarnLevel
	case level == DiagnosticError:
		return charmlog.ErrorLevel
	default:
		return charmlog.FatalLevel + 1
	}
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Logger exposes the underlying structured logger
func (d *DiagnosticSystem) Logger() *charmlog.Logger {
	return d.logger
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.logger.Error(d.format(format, args...))
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.logger.Warn(d.format(format, args...))
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.logger.Info(d.format(format, args...))
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.logger.Debug(d.format(format, args...))
	}
}

// Debug outputs debug messages with structured key/value pairs
func (d *DiagnosticSystem) Debug(msg string, keyvals ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.logger.Debug(d.getIndent()+msg, keyvals...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		green := color.New(color.FgGreen)
		green.Fprint(d.output, "✓ ")
		fmt.Fprintf(d.output, "%s\n", d.format(format, args...))
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Fprintf(d.output, "%s\n", title)
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		blue := color.New(color.FgBlue)
		blue.Fprintf(d.output, "\n%s:\n", title)
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics in a stable order
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "\n%s\n", title)

		keys := make([]string, 0, len(stats))
		for key := range stats {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
		}
		fmt.Fprintln(d.output)
	}
}

func (d *DiagnosticSystem) format(format string, args ...interface{}) string {
	return d.getIndent() + fmt.Sprintf(format, args...)
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	// Check if NO_COLOR is set (standard)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if FORCE_COLOR is set
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// Check if we have a terminal
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
