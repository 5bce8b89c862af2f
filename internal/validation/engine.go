// Package validation checks a timetable against an ordered list of rules.
//
// Each rule is run on its own; a rule that fails (returns an error or
// panics) is reported as a single error issue and the remaining rules still
// run.
package validation

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"schooltimetable/internal/config"
	"schooltimetable/internal/models"
	"schooltimetable/internal/timetable"
)

// Env is what a rule inspects. Rules must only read from it.
type Env struct {
	School   *config.School
	Slots    *timetable.SlotStore
	Resolver *timetable.Resolver
}

// CheckFunc inspects the timetable and returns raw issues. The rule is
// passed by value so a check can read its threshold.
type CheckFunc func(env Env, rule Rule) ([]models.ValidationIssue, error)

// Rule is a named, independently toggleable check
type Rule struct {
	ID      string
	Name    string
	Level   models.Level
	Enabled bool
	// Threshold is nil for rules that do not compare against a limit
	Threshold *int
	Check     CheckFunc
}

// RuleInfo is the read-only view of a rule
type RuleInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Level     models.Level `json:"level"`
	Enabled   bool         `json:"enabled"`
	Threshold *int         `json:"threshold,omitempty"`
}

// Results holds the issues of one run, bucketed by level
type Results struct {
	Errors   []models.ValidationIssue `json:"errors"`
	Warnings []models.ValidationIssue `json:"warnings"`
	Info     []models.ValidationIssue `json:"info"`
}

const noIssuesMessage = "✅ No issues found"

var errNoCheck = errors.New("rule has no check")

// Engine runs rules in registration order
type Engine struct {
	env   Env
	rules []*Rule
}

// NewEngine creates an engine with the given rules
func NewEngine(env Env, rules ...Rule) *Engine {
	e := &Engine{env: env}
	for _, rule := range rules {
		e.Register(rule)
	}
	return e
}

// Register appends a rule to the end of the run order
func (e *Engine) Register(rule Rule) {
	r := rule
	e.rules = append(e.rules, &r)
}

// ruleOutcome is the result of running one rule: either issues or a cause
type ruleOutcome struct {
	issues []models.ValidationIssue
	err    error
}

// Validate runs every enabled rule and buckets the issues by rule level
func (e *Engine) Validate() Results {
	results := Results{
		Errors:   []models.ValidationIssue{},
		Warnings: []models.ValidationIssue{},
		Info:     []models.ValidationIssue{},
	}

	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}

		outcome := runRule(e.env, *rule)
		if outcome.err != nil {
			log.Printf("Validation rule %s (%s) failed: %v", rule.ID, rule.Name, outcome.err)
			results.Errors = append(results.Errors, models.ValidationIssue{
				Message:  fmt.Sprintf("Rule %q failed to execute: %v", rule.Name, outcome.err),
				Location: nil,
				RuleID:   rule.ID,
				RuleName: rule.Name,
			})
			continue
		}

		for _, issue := range outcome.issues {
			issue.RuleID = rule.ID
			issue.RuleName = rule.Name
			results.add(rule.Level, issue)
		}
	}

	return results
}

func runRule(env Env, rule Rule) (outcome ruleOutcome) {
	if rule.Check == nil {
		return ruleOutcome{err: errNoCheck}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = ruleOutcome{err: fmt.Errorf("panic: %v", r)}
		}
	}()

	issues, err := rule.Check(env, rule)
	if err != nil {
		return ruleOutcome{err: err}
	}
	return ruleOutcome{issues: issues}
}

func (r *Results) add(level models.Level, issue models.ValidationIssue) {
	switch level {
	case models.LevelError:
		r.Errors = append(r.Errors, issue)
	case models.LevelWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		r.Info = append(r.Info, issue)
	}
}

// SetRuleEnabled toggles a rule. Unknown ids are ignored.
func (e *Engine) SetRuleEnabled(ruleID string, enabled bool) {
	if rule := e.find(ruleID); rule != nil {
		rule.Enabled = enabled
	}
}

// SetRuleThreshold sets the limit of a rule that has one. Unknown ids and
// rules without a threshold are ignored.
func (e *Engine) SetRuleThreshold(ruleID string, threshold int) {
	rule := e.find(ruleID)
	if rule == nil || rule.Threshold == nil {
		return
	}
	rule.Threshold = &threshold
}

// GetRules lists the rules without their check procedures
func (e *Engine) GetRules() []RuleInfo {
	infos := make([]RuleInfo, 0, len(e.rules))
	for _, rule := range e.rules {
		info := RuleInfo{
			ID:      rule.ID,
			Name:    rule.Name,
			Level:   rule.Level,
			Enabled: rule.Enabled,
		}
		if rule.Threshold != nil {
			threshold := *rule.Threshold
			info.Threshold = &threshold
		}
		infos = append(infos, info)
	}
	return infos
}

// HasRule reports whether a rule with the id is registered
func (e *Engine) HasRule(ruleID string) bool {
	return e.find(ruleID) != nil
}

// Settings returns the toggle state of every rule, for persistence
func (e *Engine) Settings() []models.RuleSetting {
	settings := make([]models.RuleSetting, 0, len(e.rules))
	for _, info := range e.GetRules() {
		settings = append(settings, models.RuleSetting{
			RuleID:    info.ID,
			Enabled:   info.Enabled,
			Threshold: info.Threshold,
		})
	}
	return settings
}

// ApplySettings restores persisted toggles. Settings for unknown rules are ignored.
func (e *Engine) ApplySettings(settings []models.RuleSetting) {
	for _, setting := range settings {
		e.SetRuleEnabled(setting.RuleID, setting.Enabled)
		if setting.Threshold != nil {
			e.SetRuleThreshold(setting.RuleID, *setting.Threshold)
		}
	}
}

// GetSummary renders a one-line summary of a run
func (e *Engine) GetSummary(results Results) string {
	return Summary(results)
}

// Summary renders a one-line summary. Results with only info issues count
// as having no issues.
func Summary(results Results) string {
	if len(results.Errors) == 0 && len(results.Warnings) == 0 {
		return noIssuesMessage
	}

	var parts []string
	if n := len(results.Errors); n > 0 {
		parts = append(parts, fmt.Sprintf("❌ Errors: %d", n))
	}
	if n := len(results.Warnings); n > 0 {
		parts = append(parts, fmt.Sprintf("⚠️ Warnings: %d", n))
	}
	if n := len(results.Info); n > 0 {
		parts = append(parts, fmt.Sprintf("ℹ️ Info: %d", n))
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) find(ruleID string) *Rule {
	for _, rule := range e.rules {
		if rule.ID == ruleID {
			return rule
		}
	}
	return nil
}
