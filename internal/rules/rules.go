// Package rules evaluates validation rules against single property values.
package rules

import (
	"fmt"
	"sync"

	"github.com/aretw0/propschema/pkg/schema"
	"github.com/dlclark/regexp2"
)

// evalFunc checks value against rule and returns the failure messages.
type evalFunc func(e *Evaluator, value any, rule schema.ValidationRule, path string) ([]string, error)

// dispatch holds one entry per declared rule kind. Kinds without an entry are
// skipped.
var dispatch = map[schema.RuleKind]evalFunc{
	schema.RuleRequired:         evalRequired,
	schema.RulePatternMatch:     evalPattern,
	schema.RuleValueRange:       evalRange,
	schema.RuleTypeCheck:        evalNothing,
	schema.RuleCustomValidation: evalNothing,
}

// Supports reports whether kind has an evaluator.
func Supports(kind schema.RuleKind) bool {
	_, ok := dispatch[kind]
	return ok
}

// Evaluator applies rules to values. Compiled patterns are cached, so a single
// Evaluator should be shared by every call made against the same schema.
// Safe for concurrent use.
type Evaluator struct {
	patterns sync.Map // pattern source -> *regexp2.Regexp
}

// New creates an Evaluator with an empty pattern cache.
func New() *Evaluator {
	return &Evaluator{}
}

// Apply evaluates rules in order against value and collects every message.
// An error is returned only when a rule cannot be evaluated at all, such as a
// pattern that does not compile.
func (e *Evaluator) Apply(value any, rules []schema.ValidationRule, path string) ([]string, error) {
	var errs []string
	for _, rule := range rules {
		msgs, err := e.Evaluate(value, rule, path)
		if err != nil {
			return errs, err
		}
		errs = append(errs, msgs...)
	}
	return errs, nil
}

// Evaluate checks value against a single rule.
func (e *Evaluator) Evaluate(value any, rule schema.ValidationRule, path string) ([]string, error) {
	fn, ok := dispatch[rule.Kind]
	if !ok {
		return nil, nil
	}
	return fn(e, value, rule, path)
}

func evalNothing(*Evaluator, any, schema.ValidationRule, string) ([]string, error) {
	return nil, nil
}

func evalRequired(_ *Evaluator, value any, rule schema.ValidationRule, path string) ([]string, error) {
	if s, ok := schema.Text(value); (ok && s == "") || schema.IsAbsent(value) {
		return []string{message(rule, "Property '%s' is required", path)}, nil
	}
	return nil, nil
}

func evalPattern(e *Evaluator, value any, rule schema.ValidationRule, path string) ([]string, error) {
	s, ok := schema.Text(value)
	if !ok || rule.Pattern == "" {
		return nil, nil
	}
	re, err := e.compile(rule.Pattern)
	if err != nil {
		return nil, err
	}
	matched, err := re.MatchString(s)
	if err != nil {
		return nil, fmt.Errorf("pattern match at '%s': %w", path, err)
	}
	if !matched {
		return []string{message(rule, "Property '%s' does not match required pattern", path)}, nil
	}
	return nil, nil
}

// evalRange reports a violated lower bound and a violated upper bound as two
// separate entries, even when both carry the same configured message.
func evalRange(_ *Evaluator, value any, rule schema.ValidationRule, path string) ([]string, error) {
	if rule.Range == nil || schema.KindOf(value) != schema.KindNumber {
		return nil, nil
	}
	n, _ := schema.Float(value)

	var errs []string
	if rule.Range.Min != nil && n < *rule.Range.Min {
		errs = append(errs, message(rule, "Property '%s' must be at least %s", path, schema.FormatNumber(*rule.Range.Min)))
	}
	if rule.Range.Max != nil && n > *rule.Range.Max {
		errs = append(errs, message(rule, "Property '%s' must be at most %s", path, schema.FormatNumber(*rule.Range.Max)))
	}
	return errs, nil
}

func (e *Evaluator) compile(pattern string) (*regexp2.Regexp, error) {
	if cached, ok := e.patterns.Load(pattern); ok {
		return cached.(*regexp2.Regexp), nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression /%s/: %w", pattern, err)
	}
	actual, _ := e.patterns.LoadOrStore(pattern, re)
	return actual.(*regexp2.Regexp), nil
}

func message(rule schema.ValidationRule, format string, args ...any) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf(format, args...)
}
