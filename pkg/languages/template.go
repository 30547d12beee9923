package languages

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/bytebufferpool"

	"github.com/srediag/arena-coder/internal/fsutil"
	"github.com/srediag/arena-coder/internal/logging"
	"github.com/srediag/arena-coder/pkg/problem"
	"github.com/srediag/arena-coder/pkg/security"
)

const (
	descriptionFile = "description.html"
	examplesFile    = "examples.txt"
)

// Options configures every TemplateSupport built by a registry.
type Options struct {
	Policy *security.Policy
	// MinFreeBytes is the free space required on the workspace volume.
	MinFreeBytes uint64
	// Retries and RetryInterval bound re-reads of a solution file that is
	// missing while the editor saves it.
	Retries       uint64
	RetryInterval time.Duration
}

// TemplateSupport writes a solution stub, the HTML statement and the examples
// into <workspace>/<ClassName>/.
type TemplateSupport struct {
	def  Definition
	tmpl *template.Template
	opts Options
	log  *logging.Logger

	mu       sync.Mutex
	solution string
}

var _ Support = (*TemplateSupport)(nil)

// NewTemplateSupport compiles def.
func NewTemplateSupport(def Definition, opts Options) (*TemplateSupport, error) {
	if opts.Policy == nil {
		return nil, errors.New("languages: template support needs a security policy")
	}
	t, err := compile(def)
	if err != nil {
		return nil, err
	}
	return &TemplateSupport{
		def:  def,
		tmpl: t,
		opts: opts,
		log:  logging.New("languages/"+def.Name, nil),
	}, nil
}

type stubData struct {
	ClassName     string
	MethodName    string
	ReturnType    string
	Params        string
	DefaultReturn string
	Contest       string
}

// CreateProject generates the project for st. An existing solution file is
// left alone so reopening a problem never loses work.
func (s *TemplateSupport) CreateProject(ctx context.Context, st *problem.Statement) (*CreatedProject, error) {
	if st == nil {
		return nil, errors.New("languages: nil statement")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	policy := s.opts.Policy
	if err := policy.ValidateIdentifier(st.ClassName()); err != nil {
		return nil, err
	}
	if err := policy.ValidateIdentifier(st.MethodName()); err != nil {
		return nil, err
	}
	for _, name := range st.ParameterNames() {
		if err := policy.ValidateIdentifier(name); err != nil {
			return nil, err
		}
	}

	dir, err := policy.ResolvePath(st.ClassName())
	if err != nil {
		return nil, err
	}
	solution, err := policy.ResolvePath(st.ClassName(), st.ClassName()+s.def.Extension)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureWritable(policy.Root()); err != nil {
		return nil, err
	}
	if err := fsutil.EnsureFreeSpace(dir, s.opts.MinFreeBytes); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("languages: create project dir: %w", err)
	}
	title := Title(st)
	s.log.Infof("generating %s project for %q in %s", s.def.Name, title, dir)

	if fsutil.PathExists(solution) {
		s.log.Infof("keeping existing solution %s", solution)
	} else {
		stub, err := s.renderStub(st)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(solution, stub, 0o644); err != nil {
			return nil, fmt.Errorf("languages: write solution: %w", err)
		}
	}

	descPath, err := policy.ResolvePath(st.ClassName(), descriptionFile)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(descPath, []byte(st.HTMLDescription()), 0o644); err != nil {
		return nil, fmt.Errorf("languages: write description: %w", err)
	}
	examples, err := renderExamples(st)
	if err != nil {
		return nil, err
	}
	exPath, err := policy.ResolvePath(st.ClassName(), examplesFile)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(exPath, examples, 0o644); err != nil {
		return nil, fmt.Errorf("languages: write examples: %w", err)
	}

	s.mu.Lock()
	s.solution = solution
	s.mu.Unlock()

	return &CreatedProject{
		Language:     s.def.Name,
		Dir:          dir,
		SolutionFile: solution,
		Title:        title,
		Description:  solution,
	}, nil
}

func (s *TemplateSupport) renderStub(st *problem.Statement) ([]byte, error) {
	sig := st.Signature()
	def, err := s.def.defaultReturn(sig.ReturnType)
	if err != nil {
		return nil, err
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	err = s.tmpl.Execute(buf, stubData{
		ClassName:     sig.ClassName,
		MethodName:    sig.MethodName,
		ReturnType:    s.def.typeName(sig.ReturnType),
		Params:        s.def.params(sig),
		DefaultReturn: def,
		Contest:       st.ContestName(),
	})
	if err != nil {
		return nil, fmt.Errorf("languages: render %s stub: %w", s.def.Name, err)
	}
	return append([]byte(nil), buf.B...), nil
}

// renderExamples lists the examples in the host encoding, one block per case.
func renderExamples(st *problem.Statement) ([]byte, error) {
	sig := st.Signature()
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, tc := range st.TestCases() {
		inputs := make([]string, len(tc.Input))
		for j, in := range tc.Input {
			v, err := problem.FormatValue(sig.ParamTypes[j], in)
			if err != nil {
				return nil, fmt.Errorf("languages: example %d input %d: %w", i, j, err)
			}
			inputs[j] = v
		}
		out, err := problem.FormatValue(sig.ReturnType, tc.Output)
		if err != nil {
			return nil, fmt.Errorf("languages: example %d output: %w", i, err)
		}
		fmt.Fprintf(buf, "Example %d\n  %s(%s)\n  returns %s\n\n", i, sig.MethodName, strings.Join(inputs, ", "), out)
	}
	return append([]byte(nil), buf.B...), nil
}

// Submission reads the solution file of the last created project. A file that
// is briefly missing while the editor saves it is retried.
func (s *TemplateSupport) Submission(ctx context.Context) (string, error) {
	s.mu.Lock()
	path := s.solution
	s.mu.Unlock()
	if path == "" {
		return "", ErrNoProject
	}

	var source []byte
	op := func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return backoff.Permanent(err)
		}
		source = data
		return nil
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.opts.RetryInterval), s.opts.Retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", fmt.Errorf("languages: read submission %s: %w", path, err)
	}
	return string(source), nil
}

// Title extracts the <title> of a statement, for log lines.
func Title(st *problem.Statement) string {
	markup := st.HTMLDescription()
	start := strings.Index(markup, "<title>")
	if start < 0 {
		return st.ClassName()
	}
	rest := markup[start+len("<title>"):]
	end := strings.Index(rest, "</title>")
	if end < 0 {
		return st.ClassName()
	}
	return html.UnescapeString(rest[:end])
}
