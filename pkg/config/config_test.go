package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestVerifyConfig() {
	config := DefaultConfig()
	s.Require().NoError(VerifyConfig(config))

	config.Workspace = ""
	s.Require().Error(VerifyConfig(config))
	config.Workspace = "/tmp/ws"

	config.LogLevel = 6
	s.Require().Error(VerifyConfig(config))
	config.LogLevel = 0

	config.StartupWorkers = 0
	s.Require().Error(VerifyConfig(config))
	config.StartupWorkers = maxStartupWorkers + 1
	s.Require().Error(VerifyConfig(config))
	config.StartupWorkers = 1

	config.MetricsNamespace = ""
	s.Require().Error(VerifyConfig(config))
	config.MetricsNamespace = "x"

	config.SubmissionRetryInterval = -time.Second
	s.Require().Error(VerifyConfig(config))
	config.SubmissionRetryInterval = 0

	config.HeartbeatWindow = -time.Second
	s.Require().Error(VerifyConfig(config))
	config.HeartbeatWindow = time.Minute

	s.Require().NoError(VerifyConfig(config))
	s.Require().Error(VerifyConfig(nil))
}

func (s *ConfigTestSuite) TestLoadFromEnvironment() {
	ws := s.T().TempDir()
	s.T().Setenv("CODER_WORKSPACE", ws)
	s.T().Setenv("CODER_CACHEABLE", "false")
	s.T().Setenv("CODER_STARTUP_WORKERS", "4")
	s.T().Setenv("CODER_SUBMISSION_RETRY_INTERVAL", "10ms")
	s.T().Setenv("CODER_HEARTBEAT_WINDOW", "2m")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(ws, cfg.Workspace)
	s.False(cfg.Cacheable)
	s.Equal(4, cfg.StartupWorkers)
	s.Equal(10*time.Millisecond, cfg.SubmissionRetryInterval)
	s.Equal(2*time.Minute, cfg.HeartbeatWindow)
	s.Equal(defaultMetricsNamespace, cfg.MetricsNamespace)
}

func (s *ConfigTestSuite) TestLoadRejectsBadValues() {
	s.T().Setenv("CODER_STARTUP_WORKERS", "zero")
	_, err := Load()
	s.Require().Error(err)

	s.T().Setenv("CODER_STARTUP_WORKERS", "0")
	_, err = Load()
	s.Require().Error(err)
}

func (s *ConfigTestSuite) TestLoadReadsDotEnv() {
	dir := s.T().TempDir()
	ws := filepath.Join(dir, "from-dotenv")
	s.Require().NoError(os.WriteFile(filepath.Join(dir, ".env"), []byte("CODER_WORKSPACE="+ws+"\n"), 0o600))

	wd, err := os.Getwd()
	s.Require().NoError(err)
	s.Require().NoError(os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	// godotenv never overrides variables that are already set.
	s.T().Setenv("CODER_WORKSPACE", "")
	s.Require().NoError(os.Unsetenv("CODER_WORKSPACE"))

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(ws, cfg.Workspace)
	s.Require().NoError(os.Unsetenv("CODER_WORKSPACE"))
}
