// Package rules infers a transaction's category from an organization's
// priority-ordered pattern rules.
package rules

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finanza/internal/logger"
	"github.com/cleared-dev/finanza/internal/model"
)

// Match returns the first rule in rules that matches the description and
// amount. Rules are evaluated in the order given; callers pass them sorted
// by priority descending. A rule with a malformed pattern is logged and
// skipped.
func Match(ctx context.Context, rules []model.CategoryRule, description string, amount decimal.Decimal) (model.CategoryRule, bool) {
	for _, r := range rules {
		ok, err := Matches(r, description, amount)
		if err != nil {
			logger.FromContext(ctx).Warn().
				Err(err).
				Int64("rule_id", r.ID).
				Str("kind", string(r.Kind)).
				Str("pattern", r.Pattern).
				Msg("skipping malformed rule")
			continue
		}
		if ok {
			return r, true
		}
	}
	return model.CategoryRule{}, false
}

// Matches evaluates a single rule. Text kinds compare case-insensitively;
// REGEX matches anywhere in the description; AMOUNT_RANGE is an inclusive
// "<min>-<max>" range.
func Matches(r model.CategoryRule, description string, amount decimal.Decimal) (bool, error) {
	text := strings.ToLower(description)
	pattern := strings.ToLower(r.Pattern)

	switch r.Kind {
	case model.RuleContains:
		return strings.Contains(text, pattern), nil
	case model.RuleStartsWith:
		return strings.HasPrefix(text, pattern), nil
	case model.RuleEndsWith:
		return strings.HasSuffix(text, pattern), nil
	case model.RuleExactMatch:
		return text == pattern, nil
	case model.RuleRegex:
		re, err := compile(r.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(description), nil
	case model.RuleAmountRange:
		lo, hi, err := ParseAmountRange(r.Pattern)
		if err != nil {
			return false, err
		}
		return amount.GreaterThanOrEqual(lo) && amount.LessThanOrEqual(hi), nil
	default:
		return false, fmt.Errorf("unknown rule kind %q", r.Kind)
	}
}

// ParseAmountRange parses "<min>-<max>".
func ParseAmountRange(pattern string) (lo, hi decimal.Decimal, err error) {
	parts := strings.Split(pattern, "-")
	if len(parts) != 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount range %q: want <min>-<max>", pattern)
	}
	lo, err = decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount range %q: min: %w", pattern, err)
	}
	hi, err = decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("amount range %q: max: %w", pattern, err)
	}
	return lo, hi, nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("regex %q: %w", pattern, err)
	}
	return re, nil
}

// validatePattern rejects patterns Matches could never evaluate.
func validatePattern(kind model.RuleKind, pattern string) error {
	switch kind {
	case model.RuleRegex:
		_, err := compile(pattern)
		return err
	case model.RuleAmountRange:
		lo, hi, err := ParseAmountRange(pattern)
		if err != nil {
			return err
		}
		if lo.GreaterThan(hi) {
			return fmt.Errorf("amount range %q: min exceeds max", pattern)
		}
	}
	return nil
}
