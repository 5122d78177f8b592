package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/scenepatch/scenepatch/internal/errors"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized diagnostic
//
// Example output:
//
//	❌ ANCHOR NOT FOUND: locate_anchor
//	   no node named "Canvs" among 5 records
//
//	   Did you mean: Canvas?
//
//	   → Inspect the scene: scenepatch inspect assets/Scene/Main.fire
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	default:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Detail != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Detail)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// PatchError renders a classified patch failure. The header names the failure
// kind and the step; unclassified errors are rendered as-is.
func PatchError(err error, suggestions []string, noColor bool) string {
	kind := errors.KindOf(err)
	if kind == "" {
		return FormatError(ErrorOptions{
			Level:   ErrorLevelError,
			Problem: err.Error(),
			NoColor: noColor,
		})
	}

	problem := errors.StepOf(err)
	if problem == "" {
		problem = "failed"
	}
	return FormatError(ErrorOptions{
		Level:        ErrorLevelError,
		Context:      kind.Title(),
		Problem:      problem,
		Detail:       err.Error(),
		Suggestions:  suggestions,
		HelpCommands: helpFor(kind),
		NoColor:      noColor,
	})
}

func helpFor(kind errors.Kind) []string {
	switch kind {
	case errors.ConfigMissing:
		return []string{
			"View config: cat scenepatch.yaml",
			"Get help: scenepatch --help",
		}
	case errors.ResolutionFailure, errors.AnchorNotFound:
		return []string{
			"List scene nodes: scenepatch inspect <scene-file>",
		}
	case errors.ParseError:
		return []string{
			"Check the file is valid JSON: scenepatch inspect <scene-file> --validate",
		}
	case errors.RangeError:
		return []string{
			"List enabled scenes: scenepatch editor --list",
		}
	}
	return nil
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// WriteStep writes a progress line for a pipeline step
func WriteStep(w io.Writer, message string, noColor bool) {
	cyan := color.New(color.FgCyan)
	if noColor {
		cyan.DisableColor()
	}
	cyan.Fprintf(w, "→ %s\n", message)
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
