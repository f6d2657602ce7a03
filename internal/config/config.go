// Package config provides YAML and environment based configuration for roadmapper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDatabaseTitle is the title of the learning-plan database in Notion.
// The hyphen is U+2011 (non-breaking) so databases created by earlier
// bootstrap tooling are found instead of duplicated.
const DefaultDatabaseTitle = "6\u2011Month Data Engineering Career Plan"

// Config is the top-level roadmapper configuration. It is loaded from an
// optional rmap.yaml and then overlaid with environment variables.
type Config struct {
	Notion   NotionConfig  `yaml:"notion"`
	GitHub   GitHubConfig  `yaml:"github"`
	AWS      AWSConfig     `yaml:"aws"`
	Features FeatureConfig `yaml:"features"`
	Local    LocalConfig   `yaml:"local"`
	Retry    RetryConfig   `yaml:"retry"`
	Notify   NotifyConfig  `yaml:"notify"`
	Ledger   LedgerConfig  `yaml:"ledger"`
	Catalog  string        `yaml:"catalog"`
}

// NotionConfig holds the task-database settings.
type NotionConfig struct {
	Token         string `yaml:"token"`
	ParentPageID  string `yaml:"parent_page_id"`
	DatabaseTitle string `yaml:"database_title"`
	BaseURL       string `yaml:"base_url"`
}

// GitHubConfig holds the repository-hosting settings.
type GitHubConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	BaseURL  string `yaml:"base_url"`
}

// AWSConfig holds the optional billing settings.
type AWSConfig struct {
	Region      string `yaml:"region"`
	BudgetEmail string `yaml:"budget_email"`
}

// FeatureConfig carries the run toggles.
type FeatureConfig struct {
	CreateLocalFolders bool `yaml:"create_local_folders"`
	CreateAWSBudget    bool `yaml:"create_aws_budget"`
	ReposPrivate       bool `yaml:"repos_private"`
}

// LocalConfig controls where local mirrors are written.
type LocalConfig struct {
	Dir string `yaml:"dir"`
}

// RetryConfig is the bounded retry policy applied to remote calls.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// NotifyConfig holds optional chat credentials for run summaries.
type NotifyConfig struct {
	SlackToken       string `yaml:"slack_token"`
	SlackChannelID   string `yaml:"slack_channel_id"`
	DiscordToken     string `yaml:"discord_token"`
	DiscordChannelID string `yaml:"discord_channel_id"`
}

// LedgerConfig locates the run history store. History is opt-in: an empty
// DSN or "none" disables it and nothing is written to disk.
type LedgerConfig struct {
	DSN string `yaml:"dsn"`
}

// LedgerDisabled reports whether run history should not be recorded.
func (c *Config) LedgerDisabled() bool {
	return c.Ledger.DSN == "" || strings.EqualFold(c.Ledger.DSN, "none")
}

// Default returns a Config with every toggle at its documented default.
func Default() Config {
	return Config{
		Notion: NotionConfig{DatabaseTitle: DefaultDatabaseTitle},
		AWS:    AWSConfig{Region: "us-east-1"},
		Features: FeatureConfig{
			CreateLocalFolders: true,
			CreateAWSBudget:    false,
			ReposPrivate:       true,
		},
		Local:  LocalConfig{Dir: "."},
		Retry:  RetryConfig{MaxAttempts: 3, Delay: 500 * time.Millisecond, MaxDelay: 5 * time.Second},
		Ledger: LedgerConfig{DSN: "none"},
	}
}

// Load reads a YAML config file from path. The result is not yet validated;
// callers overlay the environment and then call Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are left alone. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load env file %s: %w", path, err)
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables onto c. Non-empty variables win
// over file values. Boolean toggles that fail to parse are reported.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("NOTION_TOKEN", &c.Notion.Token)
	str("NOTION_PARENT_PAGE_ID", &c.Notion.ParentPageID)
	str("NOTION_DATABASE_TITLE", &c.Notion.DatabaseTitle)
	str("NOTION_API_URL", &c.Notion.BaseURL)
	str("GITHUB_TOKEN", &c.GitHub.Token)
	str("GITHUB_USERNAME", &c.GitHub.Username)
	str("GITHUB_API_URL", &c.GitHub.BaseURL)
	str("AWS_REGION", &c.AWS.Region)
	str("AWS_BUDGET_EMAIL", &c.AWS.BudgetEmail)
	str("RMAP_LOCAL_DIR", &c.Local.Dir)
	str("SLACK_BOT_TOKEN", &c.Notify.SlackToken)
	str("SLACK_CHANNEL_ID", &c.Notify.SlackChannelID)
	str("DISCORD_BOT_TOKEN", &c.Notify.DiscordToken)
	str("DISCORD_CHANNEL_ID", &c.Notify.DiscordChannelID)
	str("RMAP_LEDGER_DSN", &c.Ledger.DSN)

	var errs []string
	flag := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
			return
		}
		*dst = b
	}
	flag("CREATE_LOCAL_FOLDERS", &c.Features.CreateLocalFolders)
	flag("CREATE_AWS_BUDGET", &c.Features.CreateAWSBudget)
	flag("REPOS_PRIVATE", &c.Features.ReposPrivate)

	c.applyDefaults()
	if len(errs) > 0 {
		return &ConfigurationError{Problems: errs}
	}
	return nil
}

// applyDefaults fills in values that may have been blanked by the file.
func (c *Config) applyDefaults() {
	if c.Notion.DatabaseTitle == "" {
		c.Notion.DatabaseTitle = DefaultDatabaseTitle
	}
	if c.AWS.Region == "" {
		c.AWS.Region = "us-east-1"
	}
	if c.Local.Dir == "" {
		c.Local.Dir = "."
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 5 * time.Second
	}
	if c.Ledger.DSN == "" {
		c.Ledger.DSN = "none"
	}
}

// Validate checks that every required credential and identifier is present.
// It never touches the network.
func (c *Config) Validate() error {
	var errs []string
	if c.Notion.Token == "" {
		errs = append(errs, "notion.token (NOTION_TOKEN) is required")
	}
	if c.Notion.ParentPageID == "" {
		errs = append(errs, "notion.parent_page_id (NOTION_PARENT_PAGE_ID) is required")
	}
	if c.GitHub.Token == "" {
		errs = append(errs, "github.token (GITHUB_TOKEN) is required")
	}
	if c.GitHub.Username == "" {
		errs = append(errs, "github.username (GITHUB_USERNAME) is required")
	}
	if c.Features.CreateAWSBudget {
		if c.AWS.BudgetEmail == "" {
			errs = append(errs, "aws.budget_email (AWS_BUDGET_EMAIL) is required when create_aws_budget is set")
		}
		if c.AWS.Region == "" {
			errs = append(errs, "aws.region (AWS_REGION) is required when create_aws_budget is set")
		}
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, "retry.max_attempts must be at least 1")
	}
	if c.Retry.Delay < 0 || c.Retry.MaxDelay < 0 {
		errs = append(errs, "retry delays must not be negative")
	}
	if (c.Notify.SlackToken == "") != (c.Notify.SlackChannelID == "") {
		errs = append(errs, "notify.slack_token and notify.slack_channel_id must be set together")
	}
	if (c.Notify.DiscordToken == "") != (c.Notify.DiscordChannelID == "") {
		errs = append(errs, "notify.discord_token and notify.discord_channel_id must be set together")
	}
	if len(errs) > 0 {
		return &ConfigurationError{Problems: errs}
	}
	return nil
}

// ConfigurationError reports missing or invalid settings. It is fatal and is
// always raised before any remote call.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "config: validation failed: " + strings.Join(e.Problems, "; ")
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
