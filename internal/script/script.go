// Package script runs expansion steps read from TOML files.
//
// A script is a list of steps applied in order to one document:
//
//	[[step]]
//	op = "cursor"
//	line = 3
//	column = 9
//
//	[[step]]
//	op = "expand"
//	line = 3
//	column = 5
//	end_line = 3
//	end_column = 14
//	text = "((a) > (b) ? (a) : (b))"
//
//	[[step]]
//	op = "unexpand"     # at line/column, or at the cursor when omitted
//
// Lines and columns are 1-indexed.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/unfold/internal/document"
	"github.com/dshills/unfold/internal/engine/buffer"
)

// Step operations.
const (
	OpExpand   = "expand"
	OpUnexpand = "unexpand"
	OpFind     = "find"
	OpClear    = "clear"
	OpCursor   = "cursor"
)

// Step is a single scripted operation.
type Step struct {
	Op        string `toml:"op"`
	Line      int    `toml:"line"`
	Column    int    `toml:"column"`
	EndLine   int    `toml:"end_line"`
	EndColumn int    `toml:"end_column"`
	Text      string `toml:"text"`
}

// HasLocation reports whether the step names a start position.
func (s Step) HasLocation() bool {
	return s.Line != 0 || s.Column != 0
}

// Script is a parsed step list.
type Script struct {
	Steps []Step `toml:"step"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes a script and checks every step.
// The source names the data in errors.
func Parse(source string, data []byte) (*Script, error) {
	var s Script

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			line, col := derr.Position()
			return nil, fmt.Errorf("parsing script %s at line %d, column %d: %w", source, line, col, err)
		}
		return nil, fmt.Errorf("parsing script %s: %w", source, err)
	}

	for i, step := range s.Steps {
		if err := validate(step); err != nil {
			return nil, &StepError{Index: i, Op: step.Op, Err: err}
		}
	}
	return &s, nil
}

func validate(s Step) error {
	switch s.Op {
	case OpExpand:
		if !s.HasLocation() {
			return fmt.Errorf("%w: line and column", ErrMissingField)
		}
		if s.EndLine == 0 || s.EndColumn == 0 {
			return fmt.Errorf("%w: end_line and end_column", ErrMissingField)
		}
	case OpFind, OpCursor:
		if !s.HasLocation() {
			return fmt.Errorf("%w: line and column", ErrMissingField)
		}
	case OpUnexpand, OpClear:
	case "":
		return fmt.Errorf("%w: op", ErrMissingField)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
	}
	return nil
}

// Result is the outcome of one step.
type Result struct {
	Index int
	Step  Step

	// Applied is false when unexpand or find had nothing at the location.
	Applied bool

	// Range is the expansion created by expand or located by find.
	Range buffer.PointRange

	// Original is the text the found expansion replaced.
	Original string
}

// Run applies steps to doc in order. It stops at the first failing step
// and returns the results so far with a *StepError.
func Run(doc *document.Document, steps []Step) ([]Result, error) {
	results := make([]Result, 0, len(steps))
	for i, step := range steps {
		res, err := apply(doc, step)
		if err != nil {
			return results, &StepError{Index: i, Op: step.Op, Err: err}
		}
		res.Index = i
		res.Step = step
		results = append(results, res)
	}
	return results, nil
}

func apply(doc *document.Document, step Step) (Result, error) {
	if err := validate(step); err != nil {
		return Result{}, err
	}

	switch step.Op {
	case OpExpand:
		start, err := document.PointFromLocation(step.Line, step.Column)
		if err != nil {
			return Result{}, err
		}
		end, err := document.PointFromLocation(step.EndLine, step.EndColumn)
		if err != nil {
			return Result{}, err
		}
		entry, err := doc.Expand(buffer.NewPointRange(start, end), step.Text)
		if err != nil {
			return Result{}, err
		}
		return Result{Applied: true, Range: entry.Range()}, nil

	case OpUnexpand:
		var restored bool
		var err error
		if step.HasLocation() {
			p, perr := document.PointFromLocation(step.Line, step.Column)
			if perr != nil {
				return Result{}, perr
			}
			restored, err = doc.Unexpand(p)
		} else {
			restored, err = doc.UnexpandAtCursor()
		}
		return Result{Applied: restored}, err

	case OpFind:
		p, err := document.PointFromLocation(step.Line, step.Column)
		if err != nil {
			return Result{}, err
		}
		entry, ok := doc.ExpansionAt(p)
		if !ok {
			return Result{}, nil
		}
		return Result{Applied: true, Range: entry.Range(), Original: entry.OriginalText()}, nil

	case OpCursor:
		p, err := document.PointFromLocation(step.Line, step.Column)
		if err != nil {
			return Result{}, err
		}
		doc.SetCursor(p)
		return Result{Applied: true}, nil

	case OpClear:
		doc.Discard()
		return Result{Applied: true}, nil
	}

	return Result{}, fmt.Errorf("%w %q", ErrUnknownOp, step.Op)
}
