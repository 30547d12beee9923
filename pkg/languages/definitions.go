package languages

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/srediag/arena-coder/pkg/problem"
)

//go:embed languages.yaml
var embeddedDefinitions []byte

// ErrInvalidDefinition is returned for language definitions the generator cannot use.
var ErrInvalidDefinition = errors.New("languages: invalid definition")

// Definition tells the template generator how to stub a solution in one language.
type Definition struct {
	Name      string `yaml:"name"`
	Extension string `yaml:"extension"`
	// Param formats one parameter; %[1]s is the type and %[2]s the name.
	Param string `yaml:"param"`
	// Untyped languages need no type names.
	Untyped  bool              `yaml:"untyped"`
	Types    map[string]string `yaml:"types"`
	Defaults map[string]string `yaml:"defaults"`
	// Solution is a text/template for the solution file.
	Solution string `yaml:"solution"`
}

type definitionFile struct {
	Languages []Definition `yaml:"languages"`
}

// LoadDefinitions reads definitions from path, or the embedded defaults when
// path is empty.
func LoadDefinitions(path string) ([]Definition, error) {
	data := embeddedDefinitions
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("languages: read definitions: %w", err)
		}
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes a YAML definition document and validates every entry.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("languages: decode definitions: %w", err)
	}
	seen := make(map[string]bool, len(file.Languages))
	for _, def := range file.Languages {
		if seen[def.Name] {
			return nil, fmt.Errorf("%w: duplicate language %q", ErrInvalidDefinition, def.Name)
		}
		seen[def.Name] = true
		if _, err := compile(def); err != nil {
			return nil, err
		}
	}
	return file.Languages, nil
}

func (d Definition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDefinition)
	}
	if !strings.HasPrefix(d.Extension, ".") {
		return fmt.Errorf("%w: %s: extension %q must start with a dot", ErrInvalidDefinition, d.Name, d.Extension)
	}
	if d.Param == "" {
		return fmt.Errorf("%w: %s: missing param format", ErrInvalidDefinition, d.Name)
	}
	if strings.TrimSpace(d.Solution) == "" {
		return fmt.Errorf("%w: %s: missing solution template", ErrInvalidDefinition, d.Name)
	}
	for _, kind := range problem.Kinds() {
		if !d.Untyped {
			if _, ok := d.Types[kind.String()]; !ok {
				return fmt.Errorf("%w: %s: no type for %s", ErrInvalidDefinition, d.Name, kind)
			}
		}
		if _, err := d.defaultReturn(kind); err != nil {
			return err
		}
	}
	return nil
}

func (d Definition) typeName(kind problem.Kind) string {
	if d.Untyped {
		return ""
	}
	return d.Types[kind.String()]
}

func (d Definition) defaultReturn(kind problem.Kind) (string, error) {
	if v, ok := d.Defaults[kind.String()]; ok {
		return v, nil
	}
	if v, ok := d.Defaults["*"]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s: no default return for %s", ErrInvalidDefinition, d.Name, kind)
}

func (d Definition) params(sig problem.Signature) string {
	parts := make([]string, len(sig.ParamNames))
	for i, name := range sig.ParamNames {
		parts[i] = fmt.Sprintf(d.Param, d.typeName(sig.ParamTypes[i]), name)
	}
	return strings.Join(parts, ", ")
}

func compile(d Definition) (*template.Template, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	t, err := template.New(d.Name).Option("missingkey=error").Parse(d.Solution)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, d.Name, err)
	}
	return t, nil
}
