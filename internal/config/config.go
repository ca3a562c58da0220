// Package config resolves the effective configuration for a run: defaults,
// an optional YAML config file, environment variables, then CLI flags, in
// increasing order of precedence.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	ConfigDirName  = ".config/reviewbot"
	ConfigFileName = "config.yml"
)

// Config contains the entire cli dependencies.
type Config struct {
	Version string
	Viper   *viper.Viper

	// Pull request coordinates.
	Repo     string // "owner/name"
	PRNumber int

	// Local checkout and revision range the CI run reviews.
	RepoPath string
	BaseRef  string
	HeadRef  string

	// Behaviour switches.
	Debug       bool
	DryRun      bool
	AssumeYes   bool
	CopySummary bool

	// Pipeline tuning.
	Concurrency        int
	LintTimeout        time.Duration
	MaxPromptBytes     int
	MaxFindingsPerFile int
	MaxFileSize        int64
	Include            []string
	Exclude            []string

	// Per-linter overrides.
	DisabledLinters []string
	LinterArgs      map[string][]string

	// io writers, useful for testing.
	InReader  io.Reader
	OutWriter io.Writer
	ErrWriter io.Writer
}

// NewDefaultConfig creates a config with defaults applied and the viper
// store wired to env vars and the optional config file.
func NewDefaultConfig() Config {
	conf := Config{
		RepoPath:  ".",
		BaseRef:   "origin/main",
		HeadRef:   "HEAD",
		InReader:  os.Stdin,
		OutWriter: os.Stdout,
		ErrWriter: os.Stderr,
	}

	conf.Viper = setupStore()
	conf.applyStore()
	return conf
}

// applyStore copies the resolved tunables out of viper into plain fields.
func (c *Config) applyStore() {
	v := c.Viper
	c.Repo = v.GetString("repo")
	c.PRNumber = v.GetInt("pr")
	c.Concurrency = v.GetInt("concurrency")
	c.LintTimeout = v.GetDuration("lint_timeout")
	c.MaxPromptBytes = v.GetInt("max_prompt_bytes")
	c.MaxFindingsPerFile = v.GetInt("max_findings_per_comment")
	c.MaxFileSize = v.GetInt64("max_file_size")
	c.Include = v.GetStringSlice("include")
	c.Exclude = v.GetStringSlice("exclude")
	c.DisabledLinters = v.GetStringSlice("linters.disabled")
	c.LinterArgs = v.GetStringMapStringSlice("linters.args")
}

func setupStore() *viper.Viper {
	v := viper.New()

	v.SetDefault("concurrency", 4)
	v.SetDefault("lint_timeout", "30s")
	v.SetDefault("ai_timeout", "120s")
	v.SetDefault("max_prompt_bytes", 48*1024)
	v.SetDefault("max_findings_per_comment", 15)
	v.SetDefault("max_file_size", 1024*1024)
	v.SetDefault("include", []string{
		"*.py", "*.js", "*.ts", "*.jsx", "*.tsx",
		"*.java", "*.cpp", "*.c", "*.go", "*.rs",
	})
	v.SetDefault("exclude", []string{
		"*.min.js", "*.min.css", "*.map", "*.lock",
		"node_modules/", "vendor/", "dist/", "__pycache__/",
	})

	// Credentials come from the conventional env vars; everything else can
	// be overridden with a REVIEWBOT_ prefix.
	_ = v.BindEnv("providers.openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("providers.gemini.api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("github.token", "GITHUB_TOKEN")
	_ = v.BindEnv("repo", "GITHUB_REPOSITORY")

	v.SetEnvPrefix("REVIEWBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := GetConfigFilePath()
	if err == nil {
		v.SetConfigFile(path)
		// Config file not found is fine, defaults and env cover everything.
		_ = v.ReadInConfig()
	}

	return v
}

// GetConfigFilePath returns $HOME/.config/reviewbot/config.yml.
func GetConfigFilePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// GetConfigDirPath returns the reviewbot config directory.
func GetConfigDirPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDirName), nil
}
