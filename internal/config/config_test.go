package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
notion:
  token: secret_abc
  parent_page_id: 1f2e3d4c
  database_title: My Plan
github:
  token: ghp_xyz
  username: alice
aws:
  region: eu-west-1
  budget_email: alice@example.com
features:
  create_local_folders: false
  create_aws_budget: true
  repos_private: false
local:
  dir: /tmp/mirror
retry:
  max_attempts: 5
  delay: 250ms
  max_delay: 2s
ledger:
  dsn: none
`

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"NOTION_TOKEN":          "secret_env",
		"NOTION_PARENT_PAGE_ID": "parent-env",
		"GITHUB_TOKEN":          "ghp_env",
		"GITHUB_USERNAME":       "bob",
	}
}

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "secret_abc", cfg.Notion.Token)
	assert.Equal(t, "1f2e3d4c", cfg.Notion.ParentPageID)
	assert.Equal(t, "My Plan", cfg.Notion.DatabaseTitle)
	assert.Equal(t, "alice", cfg.GitHub.Username)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.False(t, cfg.Features.CreateLocalFolders)
	assert.True(t, cfg.Features.CreateAWSBudget)
	assert.False(t, cfg.Features.ReposPrivate)
	assert.Equal(t, "/tmp/mirror", cfg.Local.Dir)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.True(t, cfg.LedgerDisabled())
}

func TestParse_EmptyFile_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseTitle, cfg.Notion.DatabaseTitle)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.True(t, cfg.Features.CreateLocalFolders, "local folders default on")
	assert.False(t, cfg.Features.CreateAWSBudget, "budget defaults off")
	assert.True(t, cfg.Features.ReposPrivate, "repos default private")
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "none", cfg.Ledger.DSN)
	assert.True(t, cfg.LedgerDisabled(), "run history is opt-in")
}

func TestDefaultDatabaseTitle_NonBreakingHyphen(t *testing.T) {
	assert.Equal(t, "6\u2011Month Data Engineering Career Plan", DefaultDatabaseTitle)
	assert.NotContains(t, DefaultDatabaseTitle, "6-Month", "ASCII hyphen would miss existing databases")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("notion: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/rmap.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.GitHub.Username)
}

func TestApplyEnv_OverridesFile(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	env := validEnv()
	env["CREATE_LOCAL_FOLDERS"] = "true"
	env["REPOS_PRIVATE"] = "1"
	env["AWS_REGION"] = "ap-south-1"
	require.NoError(t, cfg.ApplyEnv(envMap(env)))

	assert.Equal(t, "secret_env", cfg.Notion.Token)
	assert.Equal(t, "bob", cfg.GitHub.Username)
	assert.Equal(t, "ap-south-1", cfg.AWS.Region)
	assert.True(t, cfg.Features.CreateLocalFolders)
	assert.True(t, cfg.Features.ReposPrivate)
	assert.True(t, cfg.Features.CreateAWSBudget, "untouched toggle keeps file value")
}

func TestApplyEnv_LedgerAndNotionURL(t *testing.T) {
	cfg := Default()
	require.True(t, cfg.LedgerDisabled())

	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"RMAP_LEDGER_DSN": "history.db",
		"NOTION_API_URL":  "http://127.0.0.1:9999",
	})))
	assert.False(t, cfg.LedgerDisabled())
	assert.Equal(t, "history.db", cfg.Ledger.DSN)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Notion.BaseURL)
}

func TestApplyEnv_EmptyValueDoesNotClear(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"GITHUB_TOKEN": ""})))
	assert.Equal(t, "ghp_xyz", cfg.GitHub.Token)
}

func TestApplyEnv_BadBoolean(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{"CREATE_AWS_BUDGET": "sometimes"}))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "CREATE_AWS_BUDGET")
}

func TestValidate_MissingGitHubToken(t *testing.T) {
	cfg := Default()
	env := validEnv()
	delete(env, "GITHUB_TOKEN")
	require.NoError(t, cfg.ApplyEnv(envMap(env)))

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.NotContains(t, err.Error(), "NOTION_TOKEN")
}

func TestValidate_ReportsEveryMissingValue(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Problems, 4)
}

func TestValidate_BudgetNeedsEmail(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(validEnv())))
	cfg.Features.CreateAWSBudget = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS_BUDGET_EMAIL")

	cfg.AWS.BudgetEmail = "me@example.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NotifyPairs(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(validEnv())))
	cfg.Notify.SlackToken = "xoxb-1"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack_channel_id")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RMAP_TEST_ONLY_VAR=from-file\n"), 0o600))
	t.Setenv("RMAP_TEST_ONLY_VAR", "")
	os.Unsetenv("RMAP_TEST_ONLY_VAR")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("RMAP_TEST_ONLY_VAR"))
}

func TestLoadEnvFile_RealEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RMAP_TEST_WIN_VAR=from-file\n"), 0o600))
	t.Setenv("RMAP_TEST_WIN_VAR", "from-env")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("RMAP_TEST_WIN_VAR"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, LoadEnvFile(""))
}
