// Package transform converts the host problem model into a neutral problem.Statement.
package transform

import (
	"fmt"
	"html"
	"strings"

	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/pkg/problem"
)

// typeTable maps host descriptors, as reported for Java, to kinds. Every type
// the host can report must be listed here.
var typeTable = map[string]problem.Kind{
	"char":     problem.KindChar,
	"char[]":   problem.KindCharArray,
	"int":      problem.KindInt,
	"int[]":    problem.KindIntArray,
	"long":     problem.KindLong,
	"long[]":   problem.KindLongArray,
	"double":   problem.KindDouble,
	"double[]": problem.KindDoubleArray,
	"String":   problem.KindString,
	"String[]": problem.KindStringArray,
}

// ResolveKind maps a host data type to its kind. Unknown descriptors fail with
// problem.ErrUnsupportedDataType.
func ResolveKind(dataType api.DataType) (problem.Kind, error) {
	if dataType == nil {
		return problem.KindInvalid, fmt.Errorf("%w: missing datatype", problem.ErrUnsupportedDataType)
	}
	name := dataType.Descriptor(api.Java)
	if kind, ok := typeTable[name]; ok {
		return kind, nil
	}
	return problem.KindInvalid, fmt.Errorf("%w: unknown datatype: %s", problem.ErrUnsupportedDataType, name)
}

// ToStatement builds the neutral statement for component. The HTML is rendered
// for language. Any failure aborts the whole conversion.
func ToStatement(component api.ProblemComponent, language api.Language, renderer api.Renderer) (*problem.Statement, error) {
	sig := problem.Signature{
		ClassName:  component.ClassName(),
		MethodName: component.MethodName(),
		ParamNames: append([]string(nil), component.ParamNames()...),
	}

	var err error
	if sig.ReturnType, err = ResolveKind(component.ReturnType()); err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	for i, dt := range component.ParamTypes() {
		kind, err := ResolveKind(dt)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		sig.ParamTypes = append(sig.ParamTypes, kind)
	}

	tests, err := parseTestCases(sig, component.TestCases())
	if err != nil {
		return nil, err
	}

	markup, err := renderer.ToHTML(language)
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}

	return problem.NewStatement(sig, tests, EnsureTitle(markup, sig.ClassName),
		ContestLabel(component.ContestName(), component.Points()))
}

func parseTestCases(sig problem.Signature, raw []api.TestCase) ([]problem.TestCase, error) {
	tests := make([]problem.TestCase, 0, len(raw))
	for i, tc := range raw {
		if len(tc.Input) != len(sig.ParamTypes) {
			return nil, fmt.Errorf("test case %d: %w: %d inputs, want %d",
				i, problem.ErrSignatureMismatch, len(tc.Input), len(sig.ParamTypes))
		}
		output, err := problem.ParseValue(sig.ReturnType, tc.Output)
		if err != nil {
			return nil, fmt.Errorf("test case %d output: %w", i, err)
		}
		input := make([]any, len(tc.Input))
		for j, in := range tc.Input {
			if input[j], err = problem.ParseValue(sig.ParamTypes[j], in); err != nil {
				return nil, fmt.Errorf("test case %d input %d: %w", i, j, err)
			}
		}
		tests = append(tests, problem.TestCase{Output: output, Input: input})
	}
	return tests, nil
}

// EnsureTitle returns markup unchanged when it has a <title> element and
// otherwise inserts one named after className just after the first <html>.
// Markup without an <html> tag is wrapped in one.
func EnsureTitle(markup, className string) string {
	if strings.Contains(markup, "<title>") {
		return markup
	}
	head := "<head><title>" + html.EscapeString(className) + "</title></head>"
	if strings.Contains(markup, "<html>") {
		return strings.Replace(markup, "<html>", "<html>"+head, 1)
	}
	return "<html>" + head + markup + "</html>"
}

// ContestLabel formats the contest display string, e.g. "SRM 300 - 250 points".
// The point value is truncated to an integer.
func ContestLabel(contest string, points float64) string {
	return fmt.Sprintf("%s - %d points", contest, int(points))
}
