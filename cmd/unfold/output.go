package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dshills/unfold/internal/engine/buffer"
	"github.com/dshills/unfold/internal/script"
)

var (
	versionColor = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	noteColor    = color.New(color.Faint)
	stepColor    = color.New(color.FgGreen)
)

// printResults writes one line per executed step.
func printResults(w io.Writer, results []script.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", stepColor.Sprintf("%3d %-8s", r.Index+1, r.Step.Op), describe(r))
	}
}

func describe(r script.Result) string {
	step := r.Step
	switch step.Op {
	case script.OpExpand:
		return fmt.Sprintf("%d:%d-%d:%d -> %s", step.Line, step.Column, step.EndLine, step.EndColumn, formatRange(r.Range))
	case script.OpUnexpand:
		if !r.Applied {
			return noteColor.Sprint("nothing to unexpand here")
		}
		if step.HasLocation() {
			return fmt.Sprintf("%d:%d restored", step.Line, step.Column)
		}
		return "restored at cursor"
	case script.OpFind:
		if !r.Applied {
			return noteColor.Sprintf("%d:%d no expansion", step.Line, step.Column)
		}
		return fmt.Sprintf("%d:%d in %s (was %q)", step.Line, step.Column, formatRange(r.Range), r.Original)
	case script.OpCursor:
		return fmt.Sprintf("%d:%d", step.Line, step.Column)
	default:
		return ""
	}
}

// formatRange prints a range with 1-indexed lines and columns.
func formatRange(r buffer.PointRange) string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Column+1, r.End.Line+1, r.End.Column+1)
}
