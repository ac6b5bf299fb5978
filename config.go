package upgradehelper

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/jkuester/cht-upgrade-helper/rules"
	"github.com/jkuester/cht-upgrade-helper/xform"
	"github.com/joho/godotenv"
)

// Reference matching modes of the non-required-number rule
const (
	MatchPath = "path"
	MatchName = "name"
)

// StdoutOutput writes the report to standard output
const StdoutOutput = "-"

// Config represents the upgrade helper configuration
type Config struct {
	ConfigDir string        `yaml:"config_dir"`
	FormDirs  []string      `yaml:"form_dirs"`
	Output    string        `yaml:"output"`
	Format    string        `yaml:"format"`
	Parallel  int           `yaml:"parallel"` // 0 means use CPU count
	Rules     RulesConfig   `yaml:"rules"`
	Ignore    []IgnoreEntry `yaml:"ignore"`
}

// RulesConfig holds per-rule settings
type RulesConfig struct {
	InvalidXPath       RuleConfig               `yaml:"invalid_xpath"`
	NonRequiredNumber  NonRequiredNumberConfig  `yaml:"non_required_number"`
	NonRelevantDefault NonRelevantDefaultConfig `yaml:"non_relevant_default"`
	PlusConcat         RuleConfig               `yaml:"plus_concat"`
}

// RuleConfig represents settings shared by every rule
type RuleConfig struct {
	Disabled bool `yaml:"disabled"`
}

// NonRequiredNumberConfig represents the non-required-number rule settings
type NonRequiredNumberConfig struct {
	Disabled    bool     `yaml:"disabled"`
	Match       string   `yaml:"match"`
	Expressions []string `yaml:"expressions"`
}

// NonRelevantDefaultConfig represents the non-relevant-default rule settings
type NonRelevantDefaultConfig struct {
	Disabled bool `yaml:"disabled"`
	// Ancestors makes a conditional relevant on an enclosing group count.
	// Pointer to distinguish between unset and false.
	Ancestors    *bool    `yaml:"ancestors"`
	Expressions  []string `yaml:"expressions"`
	ExemptGroups []string `yaml:"exempt_groups"`
}

// IgnoreEntry suppresses findings that were reviewed and accepted
type IgnoreEntry struct {
	Rule string `yaml:"rule"`
	// Form is a path.Match pattern on the form identifier; empty matches all
	Form string `yaml:"form"`
	// Question is an exact nodeset; empty matches all
	Question string `yaml:"question"`
}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Return default configuration if file doesn't exist
	if !fileExists(configPath) {
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	// A relative config_dir is relative to the directory of the config file
	if !filepath.IsAbs(config.ConfigDir) {
		config.ConfigDir = filepath.Join(filepath.Dir(configPath), config.ConfigDir)
	}

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	validFormats := map[string]bool{
		"":         true,
		"markdown": true,
		"html":     true,
		"yaml":     true,
		"json":     true,
	}
	if !validFormats[config.Format] {
		return fmt.Errorf("%w: invalid format '%s': must be one of markdown, html, yaml, json", ErrConfigValidation, config.Format)
	}

	if config.Parallel < 0 {
		return fmt.Errorf("%w: parallel must be non-negative, got %d", ErrConfigValidation, config.Parallel)
	}

	switch config.Rules.NonRequiredNumber.Match {
	case "", MatchPath, MatchName:
	default:
		return fmt.Errorf("%w: rules.non_required_number.match '%s' is invalid: must be one of path, name", ErrConfigValidation, config.Rules.NonRequiredNumber.Match)
	}

	if _, err := parseKinds(config.Rules.NonRequiredNumber.Expressions); err != nil {
		return fmt.Errorf("%w: rules.non_required_number.expressions: %w", ErrConfigValidation, err)
	}

	if _, err := parseKinds(config.Rules.NonRelevantDefault.Expressions); err != nil {
		return fmt.Errorf("%w: rules.non_relevant_default.expressions: %w", ErrConfigValidation, err)
	}

	for i, entry := range config.Ignore {
		if !isKnownRule(entry.Rule) {
			return fmt.Errorf("%w: ignore[%d]: %w '%s'", ErrConfigValidation, i, ErrUnknownRule, entry.Rule)
		}

		if _, err := path.Match(entry.Form, ""); err != nil {
			return fmt.Errorf("%w: ignore[%d]: invalid form pattern '%s'", ErrConfigValidation, i, entry.Form)
		}
	}

	return nil
}

func isKnownRule(id string) bool {
	for _, known := range rules.IDs {
		if string(known) == id {
			return true
		}
	}

	return false
}

func parseKinds(names []string) ([]xform.ExpressionKind, error) {
	kinds := make([]xform.ExpressionKind, 0, len(names))

	for _, name := range names {
		kind, ok := xform.ParseExpressionKind(name)
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownExpressionKind, name)
		}

		kinds = append(kinds, kind)
	}

	return kinds, nil
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ConfigDir: ".",
		FormDirs:  []string{"forms/app", "forms/contact"},
		Output:    StdoutOutput,
		Format:    "markdown",
		Parallel:  0,
		Rules: RulesConfig{
			NonRequiredNumber: NonRequiredNumberConfig{
				Match:       MatchPath,
				Expressions: []string{"calculate", "relevant"},
			},
			NonRelevantDefault: NonRelevantDefaultConfig{
				Ancestors:    boolPtr(true),
				Expressions:  []string{"calculate", "relevant"},
				ExemptGroups: []string{"inputs"},
			},
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.ConfigDir == "" {
		config.ConfigDir = defaults.ConfigDir
	}

	if len(config.FormDirs) == 0 {
		config.FormDirs = defaults.FormDirs
	}

	if config.Output == "" {
		config.Output = defaults.Output
	}

	if config.Format == "" {
		config.Format = defaults.Format
	}

	numbers := &config.Rules.NonRequiredNumber
	if numbers.Match == "" {
		numbers.Match = defaults.Rules.NonRequiredNumber.Match
	}

	if len(numbers.Expressions) == 0 {
		numbers.Expressions = defaults.Rules.NonRequiredNumber.Expressions
	}

	// Ancestor-inclusive relevance unless explicitly disabled
	relevance := &config.Rules.NonRelevantDefault
	if relevance.Ancestors == nil {
		relevance.Ancestors = boolPtr(true)
	}

	if len(relevance.Expressions) == 0 {
		relevance.Expressions = defaults.Rules.NonRelevantDefault.Expressions
	}

	// An explicit empty list turns the exemption off
	if relevance.ExemptGroups == nil {
		relevance.ExemptGroups = defaults.Rules.NonRelevantDefault.ExemptGroups
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	s = plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in path settings
func expandConfigEnvVars(config *Config) {
	config.ConfigDir = expandEnvVars(config.ConfigDir)
	config.Output = expandEnvVars(config.Output)

	for i, dir := range config.FormDirs {
		config.FormDirs[i] = expandEnvVars(dir)
	}
}

// fileExists checks if a file exists
func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// IsEnabled reports whether the rule is enabled
func (c *Config) IsEnabled(id rules.ID) bool {
	switch id {
	case rules.InvalidXPathID:
		return !c.Rules.InvalidXPath.Disabled
	case rules.NonRequiredNumberID:
		return !c.Rules.NonRequiredNumber.Disabled
	case rules.NonRelevantDefaultID:
		return !c.Rules.NonRelevantDefault.Disabled
	case rules.PlusConcatID:
		return !c.Rules.PlusConcat.Disabled
	default:
		return false
	}
}

// BuildRules returns the enabled rules, configured, in report order
func (c *Config) BuildRules() ([]rules.Rule, error) {
	numberKinds, err := parseKinds(c.Rules.NonRequiredNumber.Expressions)
	if err != nil {
		return nil, err
	}

	relevanceKinds, err := parseKinds(c.Rules.NonRelevantDefault.Expressions)
	if err != nil {
		return nil, err
	}

	ancestors := c.Rules.NonRelevantDefault.Ancestors == nil || *c.Rules.NonRelevantDefault.Ancestors

	all := []rules.Rule{
		rules.NewInvalidXPath(),
		rules.NewNonRequiredNumber(rules.NonRequiredNumberOptions{
			MatchLocalName: c.Rules.NonRequiredNumber.Match == MatchName,
			Kinds:          numberKinds,
		}),
		rules.NewNonRelevantDefault(rules.NonRelevantDefaultOptions{
			OwnBindOnly:  !ancestors,
			Kinds:        relevanceKinds,
			ExemptGroups: c.Rules.NonRelevantDefault.ExemptGroups,
		}),
		rules.NewPlusConcat(),
	}

	enabled := make([]rules.Rule, 0, len(all))

	for _, rule := range all {
		if c.IsEnabled(rule.ID()) {
			enabled = append(enabled, rule)
		}
	}

	return enabled, nil
}

// Ignores reports whether a finding matches an ignore entry
func (c *Config) Ignores(f rules.Finding) bool {
	for _, entry := range c.Ignore {
		if entry.Rule != string(f.Rule) {
			continue
		}

		if entry.Question != "" && entry.Question != f.Question {
			continue
		}

		if entry.Form != "" {
			matched, err := path.Match(entry.Form, f.Form)
			if err != nil || !matched {
				continue
			}
		}

		return true
	}

	return false
}
