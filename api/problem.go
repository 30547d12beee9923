// Package api defines public API contracts for arena-coder.
package api

// Language is a programming language as reported by the host applet.
type Language struct {
	ID   int
	Name string
}

// Languages known to the host applet.
var (
	Java   = Language{ID: 1, Name: "Java"}
	CPP    = Language{ID: 3, Name: "C++"}
	CSharp = Language{ID: 4, Name: "C#"}
	VB     = Language{ID: 5, Name: "VB"}
	Python = Language{ID: 6, Name: "Python"}
)

func (l Language) String() string {
	return l.Name
}

// DataType is a host type whose name depends on the language asked.
type DataType interface {
	Descriptor(language Language) string
}

// TypeName is a DataType that reports the same descriptor for every language.
type TypeName string

func (t TypeName) Descriptor(Language) string {
	return string(t)
}

// Renderer renders the problem statement the host has already linked to it.
type Renderer interface {
	ToHTML(language Language) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(language Language) (string, error)

func (f RendererFunc) ToHTML(language Language) (string, error) {
	return f(language)
}

// TestCase is an example in the host's raw textual encoding.
type TestCase struct {
	Input  []string
	Output string
}

// ProblemComponent is the host-owned problem model. It is read-only to plugins.
type ProblemComponent interface {
	ClassName() string
	MethodName() string
	ReturnType() DataType
	ParamTypes() []DataType
	ParamNames() []string
	TestCases() []TestCase
	// ContestName is the name of the round the problem belongs to.
	ContestName() string
	// Points is the point value of the component.
	Points() float64
}

// Component is a plain-value ProblemComponent.
type Component struct {
	Class    string
	Method   string
	Returns  DataType
	Params   []DataType
	Names    []string
	Examples []TestCase
	Contest  string
	Value    float64
}

func (c *Component) ClassName() string      { return c.Class }
func (c *Component) MethodName() string     { return c.Method }
func (c *Component) ReturnType() DataType   { return c.Returns }
func (c *Component) ParamTypes() []DataType { return c.Params }
func (c *Component) ParamNames() []string   { return c.Names }
func (c *Component) TestCases() []TestCase  { return c.Examples }
func (c *Component) ContestName() string    { return c.Contest }
func (c *Component) Points() float64        { return c.Value }
