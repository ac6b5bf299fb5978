// Package report groups findings into the upgrade report and renders it.
package report

import (
	"github.com/jkuester/cht-upgrade-helper/rules"
)

// RuleInfo names a rule section of the report
type RuleInfo struct {
	ID    rules.ID `yaml:"id"`
	Title string   `yaml:"title"`
}

// InfoOf returns the section header data of a rule
func InfoOf(rule rules.Rule) RuleInfo {
	return RuleInfo{ID: rule.ID(), Title: rule.Title()}
}

// FormResult holds the findings of one form, in the order the rules
// produced them
type FormResult struct {
	Form     string
	Findings []rules.Finding
}

// Report is the grouped result of a run
type Report struct {
	Sections []Section `yaml:"sections"`
}

// Section holds the findings of one rule
type Section struct {
	Rule  RuleInfo    `yaml:"rule"`
	Forms []FormEntry `yaml:"forms"`
}

// FormEntry holds the flagged questions of one form
type FormEntry struct {
	Form      string          `yaml:"form"`
	Questions []QuestionEntry `yaml:"questions"`
}

// QuestionEntry holds the findings of one question
type QuestionEntry struct {
	Question string          `yaml:"question"`
	Findings []rules.Finding `yaml:"findings"`
}

// Build groups results by rule, form and question. Sections follow the rule
// order, forms the result order and questions the order of their first
// finding. Rules without findings get no section.
func Build(ruleInfos []RuleInfo, results []FormResult) *Report {
	report := &Report{}

	for _, info := range ruleInfos {
		section := Section{Rule: info}

		for _, result := range results {
			entry := FormEntry{Form: result.Form}
			byQuestion := make(map[string]int)

			for _, finding := range result.Findings {
				if finding.Rule != info.ID {
					continue
				}

				i, ok := byQuestion[finding.Question]
				if !ok {
					i = len(entry.Questions)
					byQuestion[finding.Question] = i
					entry.Questions = append(entry.Questions, QuestionEntry{Question: finding.Question})
				}

				entry.Questions[i].Findings = append(entry.Questions[i].Findings, finding)
			}

			if len(entry.Questions) > 0 {
				section.Forms = append(section.Forms, entry)
			}
		}

		if len(section.Forms) > 0 {
			report.Sections = append(report.Sections, section)
		}
	}

	return report
}

// Count returns the number of findings in the report
func (r *Report) Count() int {
	count := 0

	for _, section := range r.Sections {
		for _, form := range section.Forms {
			for _, question := range form.Questions {
				count += len(question.Findings)
			}
		}
	}

	return count
}

// IsEmpty reports whether nothing was flagged
func (r *Report) IsEmpty() bool {
	return len(r.Sections) == 0
}

// Section returns the section of a rule, if it has findings
func (r *Report) Section(id rules.ID) (*Section, bool) {
	for i := range r.Sections {
		if r.Sections[i].Rule.ID == id {
			return &r.Sections[i], true
		}
	}

	return nil, false
}
