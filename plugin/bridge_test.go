/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/pkg/audit"
	"github.com/srediag/arena-coder/pkg/config"
	"github.com/srediag/arena-coder/pkg/languages"
	"github.com/srediag/arena-coder/pkg/lifecycle"
	"github.com/srediag/arena-coder/pkg/problem"
)

func sampleComponent() *api.Component {
	return &api.Component{
		Class:   "BinaryCode",
		Method:  "decode",
		Returns: api.TypeName("String[]"),
		Params:  []api.DataType{api.TypeName("String")},
		Names:   []string{"message"},
		Examples: []api.TestCase{
			{Input: []string{`"123210122"`}, Output: `{"011100011", "NONE"}`},
		},
		Contest: "SRM 144",
		Value:   300,
	}
}

var statementHTML = api.RendererFunc(func(api.Language) (string, error) {
	return "<html><body>Decode the message.</body></html>", nil
})

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	require.NoError(t, (<-ch).Write(&m))
	return m.GetCounter().GetValue()
}

// fakeSupport records what it was asked to generate.
type fakeSupport struct {
	mu         sync.Mutex
	statements []*problem.Statement
	createErr  error
	noProject  bool
	source     string
	sourceErr  error
}

func (f *fakeSupport) CreateProject(_ context.Context, st *problem.Statement) (*languages.CreatedProject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = append(f.statements, st)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.noProject {
		return nil, nil
	}
	return &languages.CreatedProject{Language: "java", Description: "/tmp/" + st.ClassName() + ".java"}, nil
}

func (f *fakeSupport) Submission(context.Context) (string, error) {
	return f.source, f.sourceErr
}

func (f *fakeSupport) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statements)
}

type BridgeTestSuite struct {
	suite.Suite
	cfg *config.Config
}

func TestBridgeTestSuite(t *testing.T) {
	suite.Run(t, new(BridgeTestSuite))
}

func (s *BridgeTestSuite) SetupTest() {
	s.cfg = config.DefaultConfig()
	s.cfg.Workspace = s.T().TempDir()
	s.cfg.SubmissionRetryInterval = time.Millisecond
}

func (s *BridgeTestSuite) newBridge(opts ...Option) *Bridge {
	b, err := NewWithConfig(s.cfg, opts...)
	s.Require().NoError(err)
	s.T().Cleanup(b.Dispose)
	b.SetName("arena-coder-1")
	b.StartUsing()
	return b
}

func (s *BridgeTestSuite) open(b *Bridge, language api.Language) {
	b.SetProblemComponent(sampleComponent(), language, statementHTML)
	s.Require().NoError(b.Flush(context.Background()))
}

func (s *BridgeTestSuite) workspaceEntries() []os.DirEntry {
	entries, err := os.ReadDir(s.cfg.Workspace)
	s.Require().NoError(err)
	return entries
}

func (s *BridgeTestSuite) TestUnsupportedLanguageShowsNotice() {
	b := s.newBridge()
	s.open(b, api.VB)

	text := b.EditorPanel().Text()
	s.Contains(text, "does not support the VB programming language")
	s.Empty(s.workspaceEntries())
	s.Empty(b.Language())

	_, err := b.GetSource()
	s.ErrorIs(err, ErrNoLanguageSupport)
	s.Equal(1.0, counterValue(s.T(), b.metrics.Notices.WithLabelValues(reasonUnsupportedLanguage)))
	_, ok := b.recorder.Last(audit.EventLanguageUnsupported)
	s.True(ok)
}

func (s *BridgeTestSuite) TestMissingSupportShowsDistinctNotice() {
	b := s.newBridge(WithRegistry(languages.NewRegistry()))
	s.open(b, api.Java)

	text := b.EditorPanel().Text()
	s.Contains(text, "No plugin support for the Java programming language found")
	s.NotContains(text, "does not support")
	s.Empty(s.workspaceEntries())
	s.Equal(1.0, counterValue(s.T(), b.metrics.Notices.WithLabelValues(reasonSupportNotFound)))
	_, ok := b.recorder.Last(audit.EventPluginNotFound)
	s.True(ok)
}

func (s *BridgeTestSuite) TestGeneratesJavaProject() {
	b := s.newBridge()
	s.open(b, api.Java)

	solution := filepath.Join(s.cfg.Workspace, "BinaryCode", "BinaryCode.java")
	s.Equal("The submission is available in the file "+solution+"\n", b.EditorPanel().Text())
	s.FileExists(solution)
	s.FileExists(filepath.Join(s.cfg.Workspace, "BinaryCode", "description.html"))
	s.Equal(languages.Java, b.Language())

	want, err := os.ReadFile(solution)
	s.Require().NoError(err)
	got, err := b.GetSource()
	s.Require().NoError(err)
	s.Equal(string(want), got)
	s.Contains(got, "public class BinaryCode")

	s.Equal(1.0, counterValue(s.T(), b.metrics.ProjectsCreated.WithLabelValues(languages.Java)))
	ev, ok := b.recorder.Last(audit.EventProjectCreated)
	s.Require().True(ok)
	s.Equal(languages.Java, ev.Details["language"])
}

func (s *BridgeTestSuite) TestEveryLanguageDispatches() {
	support := &fakeSupport{}
	reg := languages.NewRegistry()
	for _, name := range []string{languages.CPP, languages.Java, languages.CSharp, languages.Python} {
		reg.Register(name, func() (languages.Support, error) { return support, nil })
	}
	b := s.newBridge(WithRegistry(reg))

	for lang, name := range map[api.Language]string{
		api.CPP: languages.CPP, api.Java: languages.Java,
		api.CSharp: languages.CSharp, api.Python: languages.Python,
	} {
		s.open(b, lang)
		s.Equal(name, b.Language())
		s.Contains(b.EditorPanel().Text(), "The submission is available in the file")
	}
	s.Equal(4, support.created())
}

func (s *BridgeTestSuite) TestUnknownDatatypeIsReported() {
	support := &fakeSupport{}
	reg := languages.NewRegistry()
	reg.Register(languages.Java, func() (languages.Support, error) { return support, nil })
	b := s.newBridge(WithRegistry(reg))

	component := sampleComponent()
	component.Returns = api.TypeName("boolean")
	b.SetProblemComponent(component, api.Java, statementHTML)
	s.Require().NoError(b.Flush(context.Background()))

	s.Contains(b.EditorPanel().Text(), "unknown datatype: boolean")
	s.Zero(support.created())
	s.Equal(1.0, counterValue(s.T(), b.metrics.Errors))
}

func (s *BridgeTestSuite) TestFactoryFailureIsReported() {
	var reported []error
	reg := languages.NewRegistry()
	reg.Register(languages.CPP, func() (languages.Support, error) { return nil, errors.New("toolchain missing") })
	b := s.newBridge(WithRegistry(reg), WithReporter(ReporterFunc(func(_ context.Context, err error) {
		reported = append(reported, err)
	})))

	s.open(b, api.CPP)
	s.Require().Len(reported, 1)
	s.Contains(reported[0].Error(), "toolchain missing")
	s.Empty(b.Language())
}

func (s *BridgeTestSuite) TestProjectFailureShowsMessage() {
	support := &fakeSupport{createErr: errors.New("disk full")}
	reg := languages.NewRegistry()
	reg.Register(languages.Python, func() (languages.Support, error) { return support, nil })
	b := s.newBridge(WithRegistry(reg))

	s.open(b, api.Python)
	s.Equal("The project could not be generated\n", b.EditorPanel().Text())
	s.Equal(1.0, counterValue(s.T(), b.metrics.ProjectFailures.WithLabelValues(languages.Python)))
}

func (s *BridgeTestSuite) TestSubmissionFailureYieldsEmptySource() {
	var reported int
	support := &fakeSupport{sourceErr: languages.ErrNoProject}
	reg := languages.NewRegistry()
	reg.Register(languages.Java, func() (languages.Support, error) { return support, nil })
	b := s.newBridge(WithRegistry(reg), WithReporter(ReporterFunc(func(context.Context, error) { reported++ })))
	s.open(b, api.Java)

	src, err := b.GetSource()
	s.NoError(err)
	s.Empty(src)
	s.Equal(1, reported)

	support.sourceErr = nil
	support.source = "class BinaryCode {}"
	src, err = b.GetSource()
	s.NoError(err)
	s.Equal("class BinaryCode {}", src)
}

func (s *BridgeTestSuite) TestLanguageSwitchClearsSupport() {
	b := s.newBridge()
	s.open(b, api.Java)
	s.Equal(languages.Java, b.Language())
	s.open(b, api.VB)
	s.Empty(b.Language())
}

func (s *BridgeTestSuite) TestClearAndHooks() {
	b := s.newBridge()
	s.open(b, api.VB)
	b.Clear()
	s.Require().NoError(b.Flush(context.Background()))
	s.Empty(b.EditorPanel().Text())

	b.SetSource("ignored")
	b.StopUsing()
	s.NoError(b.Install())
	s.NoError(b.Configure())
	s.NoError(b.Uninstall())
	s.True(b.IsCacheable())
	s.Equal("arena-coder-1", b.Name())
}

func (s *BridgeTestSuite) TestCacheableFromConfig() {
	s.cfg.Cacheable = false
	b := s.newBridge()
	s.False(b.IsCacheable())
}

func (s *BridgeTestSuite) TestHealthEndpoints() {
	b, err := NewWithConfig(s.cfg)
	s.Require().NoError(err)
	b.SetName("arena-coder-2")

	status := func(path string) int {
		rec := httptest.NewRecorder()
		b.Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}
	s.Equal(http.StatusOK, status("/live"))
	s.Equal(http.StatusServiceUnavailable, status("/ready"))

	s.open(b, api.Java)
	s.Equal(http.StatusOK, status("/ready"))

	b.Dispose()
	s.Equal(http.StatusServiceUnavailable, status("/live"))
}

func (s *BridgeTestSuite) TestDisposedBridgeIsInert() {
	b, err := NewWithConfig(s.cfg)
	s.Require().NoError(err)
	b.Dispose()
	b.Dispose()

	b.SetProblemComponent(sampleComponent(), api.Java, statementHTML)
	s.Empty(s.workspaceEntries())
	_, err = b.GetSource()
	s.ErrorIs(err, ErrNoLanguageSupport)
}

func (s *BridgeTestSuite) TestDisposeFromDisplayTask() {
	b, err := NewWithConfig(s.cfg)
	s.Require().NoError(err)
	done := make(chan struct{})
	s.Require().NoError(b.dispatcher.Run(context.Background(), func(ctx context.Context) {
		b.dispose(ctx)
		close(done)
	}))
	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("dispose blocked on the display loop")
	}
	s.Eventually(func() bool { return !b.dispatcher.Alive() }, time.Second, time.Millisecond)
	b.Dispose()
}

func (s *BridgeTestSuite) TestHeartbeatLiveness() {
	s.cfg.HeartbeatWindow = 50 * time.Millisecond
	b, err := NewWithConfig(s.cfg)
	s.Require().NoError(err)
	defer b.Dispose()

	live := func() int {
		rec := httptest.NewRecorder()
		b.Health().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		return rec.Code
	}
	s.Equal(http.StatusOK, live())

	b.SetName("arena-coder-3")
	s.Equal(http.StatusOK, live())
	s.Eventually(func() bool { return live() == http.StatusServiceUnavailable }, time.Second, 5*time.Millisecond)

	b.StartUsing()
	s.Equal(http.StatusOK, live())
}

func (s *BridgeTestSuite) TestSharedMetricsRegistry() {
	reg := prometheus.NewRegistry()
	a := s.newBridge(WithMetricsRegistry(reg))
	b := s.newBridge(WithMetricsRegistry(reg))
	s.open(a, api.VB)
	s.open(b, api.VB)

	families, err := reg.Gather()
	s.Require().NoError(err)
	var found bool
	for _, f := range families {
		if f.GetName() == "arena_coder_problems_opened_total" {
			found = true
			s.Equal(2.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	s.True(found)
}

func (s *BridgeTestSuite) TestAuditSink() {
	var mu sync.Mutex
	var events []string
	sink := auditFunc(func(event string, _ map[string]interface{}) error {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
		return nil
	})
	b := s.newBridge(WithAudit(sink))
	s.open(b, api.VB)

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{audit.EventProblemOpened, audit.EventLanguageUnsupported}, events)
	s.Len(b.Audit(), 2)
}

type auditFunc func(event string, details map[string]interface{}) error

func (f auditFunc) LogEvent(event string, details map[string]interface{}) error {
	return f(event, details)
}

func TestBridgeUnderHost(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Workspace = t.TempDir()

	host, err := lifecycle.NewHostFromConfig(NewFactory(cfg), cfg)
	require.NoError(t, err)
	defer host.Shutdown()

	ctx := context.Background()
	require.NoError(t, host.Preload(ctx, "arena-coder"))
	assert.Equal(t, []string{"arena-coder"}, host.Cached())

	ep, err := host.Open(ctx, "arena-coder", sampleComponent(), api.CSharp, statementHTML, "")
	require.NoError(t, err)
	bridge := ep.(*Bridge)
	require.NoError(t, bridge.Flush(ctx))

	src, err := host.Source("arena-coder")
	require.NoError(t, err)
	assert.True(t, strings.Contains(src, "BinaryCode"))

	require.NoError(t, host.Close(ctx, "arena-coder"))
	assert.Equal(t, []string{"arena-coder"}, host.Cached())
}

func TestNewFallsBackToDefaults(t *testing.T) {
	t.Setenv("CODER_WORKSPACE", t.TempDir())
	t.Setenv("CODER_CACHEABLE", "false")
	ep := New()
	defer ep.Dispose()
	assert.False(t, ep.IsCacheable())
}
