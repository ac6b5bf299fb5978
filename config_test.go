package upgradehelper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/jkuester/cht-upgrade-helper/rules"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "upgrade-helper.yaml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	assert.NoError(t, err)

	return configPath
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)

	assert.Equal(t, ".", config.ConfigDir)
	assert.Equal(t, []string{"forms/app", "forms/contact"}, config.FormDirs)
	assert.Equal(t, StdoutOutput, config.Output)
	assert.Equal(t, "markdown", config.Format)
	assert.Equal(t, 0, config.Parallel)
	assert.Equal(t, MatchPath, config.Rules.NonRequiredNumber.Match)
	assert.True(t, *config.Rules.NonRelevantDefault.Ancestors)
	assert.Equal(t, []string{"inputs"}, config.Rules.NonRelevantDefault.ExemptGroups)
}

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
config_dir: "./project"
unknown_key: "should cause error"
rules:
  plus_concat:
    disabled: true
    unknown_rule_key: "should also cause error"
`)

	_, err := LoadConfig(configPath)
	assert.Error(t, err, "expected error for unknown keys in strict mode")
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
config_dir: "./project"
form_dirs:
  - forms/app
output: report.md
format: html
parallel: 4
rules:
  non_required_number:
    match: name
  non_relevant_default:
    ancestors: false
    exempt_groups: []
  plus_concat:
    disabled: true
ignore:
  - rule: plus-concat
    form: "./forms/app/*.xml"
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "project"), config.ConfigDir)
	assert.Equal(t, []string{"forms/app"}, config.FormDirs)
	assert.Equal(t, "report.md", config.Output)
	assert.Equal(t, "html", config.Format)
	assert.Equal(t, 4, config.Parallel)
	assert.Equal(t, MatchName, config.Rules.NonRequiredNumber.Match)
	assert.False(t, *config.Rules.NonRelevantDefault.Ancestors)
	assert.Equal(t, 0, len(config.Rules.NonRelevantDefault.ExemptGroups))
	assert.Equal(t, []string{"calculate", "relevant"}, config.Rules.NonRelevantDefault.Expressions)
	assert.True(t, config.Rules.PlusConcat.Disabled)
	assert.Equal(t, 1, len(config.Ignore))
}

func TestLoadConfig_ConfigDirRelativeToConfigFile(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected func(configDir string) string
	}{
		{
			name:     "relative path",
			content:  "config_dir: ../cht\n",
			expected: func(configDir string) string { return filepath.Join(filepath.Dir(configDir), "cht") },
		},
		{
			name:     "omitted",
			content:  "format: yaml\n",
			expected: func(configDir string) string { return configDir },
		},
		{
			name:     "absolute path",
			content:  "config_dir: /srv/cht\n",
			expected: func(string) string { return "/srv/cht" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)

			config, err := LoadConfig(configPath)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected(filepath.Dir(configPath)), config.ConfigDir)
		})
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("CHT_PROJECT", "/srv/cht")
	t.Setenv("REPORT_NAME", "upgrade")

	configPath := writeConfig(t, `
config_dir: "${CHT_PROJECT}"
form_dirs:
  - "$CHT_PROJECT/forms/app"
output: "${REPORT_NAME}.md"
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "/srv/cht", config.ConfigDir)
	assert.Equal(t, []string{"/srv/cht/forms/app"}, config.FormDirs)
	assert.Equal(t, "upgrade.md", config.Output)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "empty config",
			config: Config{},
		},
		{
			name:    "invalid format",
			config:  Config{Format: "pdf"},
			wantErr: ErrConfigValidation,
		},
		{
			name:    "negative parallel",
			config:  Config{Parallel: -1},
			wantErr: ErrConfigValidation,
		},
		{
			name:    "invalid match mode",
			config:  Config{Rules: RulesConfig{NonRequiredNumber: NonRequiredNumberConfig{Match: "fuzzy"}}},
			wantErr: ErrConfigValidation,
		},
		{
			name:    "unknown expression kind",
			config:  Config{Rules: RulesConfig{NonRelevantDefault: NonRelevantDefaultConfig{Expressions: []string{"label"}}}},
			wantErr: ErrUnknownExpressionKind,
		},
		{
			name:    "unknown ignored rule",
			config:  Config{Ignore: []IgnoreEntry{{Rule: "no-such-rule"}}},
			wantErr: ErrUnknownRule,
		},
		{
			name:    "bad form pattern",
			config:  Config{Ignore: []IgnoreEntry{{Rule: "plus-concat", Form: "[forms"}}},
			wantErr: ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.IsError(t, err, tt.wantErr)
		})
	}
}

func TestConfig_BuildRules(t *testing.T) {
	ruleIDs := func(rs []rules.Rule) []rules.ID {
		ids := make([]rules.ID, 0, len(rs))
		for _, r := range rs {
			ids = append(ids, r.ID())
		}

		return ids
	}

	t.Run("defaults", func(t *testing.T) {
		built, err := DefaultConfig().BuildRules()
		assert.NoError(t, err)
		assert.Equal(t, rules.IDs, ruleIDs(built))
	})

	t.Run("disabled rules are skipped", func(t *testing.T) {
		config := DefaultConfig()
		config.Rules.InvalidXPath.Disabled = true
		config.Rules.PlusConcat.Disabled = true

		built, err := config.BuildRules()
		assert.NoError(t, err)
		assert.Equal(t, []rules.ID{rules.NonRequiredNumberID, rules.NonRelevantDefaultID}, ruleIDs(built))
		assert.False(t, config.IsEnabled(rules.PlusConcatID))
		assert.False(t, config.IsEnabled(rules.ID("unknown")))
	})

	t.Run("unknown expression kind", func(t *testing.T) {
		config := DefaultConfig()
		config.Rules.NonRequiredNumber.Expressions = []string{"hint"}

		_, err := config.BuildRules()
		assert.IsError(t, err, ErrUnknownExpressionKind)
	})
}

func TestConfig_Ignores(t *testing.T) {
	config := &Config{
		Ignore: []IgnoreEntry{
			{Rule: "plus-concat"},
			{Rule: "invalid-xpath", Form: "./forms/app/*.xml"},
			{Rule: "non-required-number", Question: "/delivery/weight"},
		},
	}

	tests := []struct {
		name     string
		finding  rules.Finding
		expected bool
	}{
		{"whole rule", rules.Finding{Rule: rules.PlusConcatID, Form: "./forms/contact/person-create.xml", Question: "/x"}, true},
		{"form glob match", rules.Finding{Rule: rules.InvalidXPathID, Form: "./forms/app/pregnancy.xml", Question: "/x"}, true},
		{"form glob miss", rules.Finding{Rule: rules.InvalidXPathID, Form: "./forms/contact/person-create.xml", Question: "/x"}, false},
		{"question match", rules.Finding{Rule: rules.NonRequiredNumberID, Form: "./forms/app/delivery.xml", Question: "/delivery/weight"}, true},
		{"question miss", rules.Finding{Rule: rules.NonRequiredNumberID, Form: "./forms/app/delivery.xml", Question: "/delivery/height"}, false},
		{"other rule", rules.Finding{Rule: rules.NonRelevantDefaultID, Form: "./forms/app/delivery.xml", Question: "/delivery/weight"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, config.Ignores(tt.finding))
		})
	}
}
