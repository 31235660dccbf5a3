// Package printer renders CLI output: colored status lines on stderr and
// projects, goals and stats as a table, JSON or YAML on stdout.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format selects how values are written to stdout.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json and yaml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (valid: table, json, yaml)", s)
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Printer writes to Out and Err. The zero value is not usable; use New.
type Printer struct {
	Out    io.Writer
	Err    io.Writer
	Format Format
}

func New(format Format) *Printer {
	return &Printer{Out: os.Stdout, Err: os.Stderr, Format: format}
}

// Success prints a green line with a checkmark.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.Err, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow line.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.Err, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line.
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.Err, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to Err and returns an
// error carrying only the title, for cobra's SilenceErrors mode.
func (p *Printer) Error(title, explanation string, suggestions ...string) error {
	red.Fprintf(p.Err, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(p.Err, "\n%s\n", explanation)
	}
	switch len(suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(p.Err, "\n%s\n", suggestions[0])
	default:
		fmt.Fprintf(p.Err, "\nEither:\n")
		for i, s := range suggestions {
			fmt.Fprintf(p.Err, "  %d. %s\n", i+1, s)
		}
	}
	return fmt.Errorf("%s", title)
}

// Encode writes v as JSON or YAML. Table output is handled by the typed
// helpers in table.go.
func (p *Printer) Encode(v any) error {
	switch p.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
