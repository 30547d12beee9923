package problem

import "fmt"

// Signature is the solution entry point a generator must stub out.
type Signature struct {
	ClassName  string
	MethodName string
	ReturnType Kind
	ParamTypes []Kind
	ParamNames []string
}

// TestCase is one example: the expected output and the positional inputs.
type TestCase struct {
	Output any
	Input  []any
}

// Statement is the neutral problem description. It is built once per opened
// problem and never changes afterwards; accessors hand out copies.
type Statement struct {
	sig     Signature
	tests   []TestCase
	html    string
	contest string
}

// NewStatement validates sig and tests and returns an immutable Statement.
func NewStatement(sig Signature, tests []TestCase, html, contest string) (*Statement, error) {
	if !sig.ReturnType.Valid() {
		return nil, fmt.Errorf("%w: return type %s", ErrUnsupportedDataType, sig.ReturnType)
	}
	if len(sig.ParamTypes) != len(sig.ParamNames) {
		return nil, fmt.Errorf("%w: %d parameter types for %d names",
			ErrSignatureMismatch, len(sig.ParamTypes), len(sig.ParamNames))
	}
	for i, k := range sig.ParamTypes {
		if !k.Valid() {
			return nil, fmt.Errorf("%w: parameter %d type %s", ErrUnsupportedDataType, i, k)
		}
	}
	for i, tc := range tests {
		if len(tc.Input) != len(sig.ParamTypes) {
			return nil, fmt.Errorf("%w: test case %d has %d inputs, want %d",
				ErrSignatureMismatch, i, len(tc.Input), len(sig.ParamTypes))
		}
	}
	st := &Statement{
		sig:     copySignature(sig),
		tests:   copyTests(tests),
		html:    html,
		contest: contest,
	}
	return st, nil
}

func (s *Statement) ClassName() string  { return s.sig.ClassName }
func (s *Statement) MethodName() string { return s.sig.MethodName }
func (s *Statement) ReturnType() Kind   { return s.sig.ReturnType }

// ParameterTypes returns the parameter kinds in declaration order.
func (s *Statement) ParameterTypes() []Kind {
	return append([]Kind(nil), s.sig.ParamTypes...)
}

// ParameterNames returns the parameter names in declaration order.
func (s *Statement) ParameterNames() []string {
	return append([]string(nil), s.sig.ParamNames...)
}

// Signature returns a copy of the solution signature.
func (s *Statement) Signature() Signature {
	return copySignature(s.sig)
}

// TestCases returns the examples in host order.
func (s *Statement) TestCases() []TestCase {
	return copyTests(s.tests)
}

// HTMLDescription returns the rendered statement, always carrying a <title>.
func (s *Statement) HTMLDescription() string { return s.html }

// ContestName returns the contest label, e.g. "SRM 100 - 250 points".
func (s *Statement) ContestName() string { return s.contest }

func copySignature(sig Signature) Signature {
	sig.ParamTypes = append([]Kind(nil), sig.ParamTypes...)
	sig.ParamNames = append([]string(nil), sig.ParamNames...)
	return sig
}

// copyTests copies the case list and input lists. Slice values inside
// inputs are shared; generators only read them.
func copyTests(tests []TestCase) []TestCase {
	out := make([]TestCase, len(tests))
	for i, tc := range tests {
		out[i] = TestCase{Output: tc.Output, Input: append([]any(nil), tc.Input...)}
	}
	return out
}
