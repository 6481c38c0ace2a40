package scoring

import (
	"fmt"
	"strings"
)

// ActionFillRequired is the action shown on pending criteria
const ActionFillRequired = "Fill Required Fields"

// evalContext carries one snapshot through every check of an evaluation
// pass. The content body is parsed at most once.
type evalContext struct {
	values     FormFieldValues
	thresholds Thresholds
	parsed     *contentDoc
}

func newEvalContext(values FormFieldValues, th Thresholds) *evalContext {
	return &evalContext{values: values, thresholds: th}
}

func (c *evalContext) content() *contentDoc {
	if c.parsed == nil {
		c.parsed = parseContent(c.values.Content)
	}
	return c.parsed
}

func (c *evalContext) matchOptions() MatchOptions {
	opts := DefaultMatchOptions()
	opts.MinPartialWordLen = c.thresholds.PartialMinWordLen
	return opts
}

// outcome is what a check decides: the tier reached, a value-aware tooltip
// and optionally an action label overriding the rule's default.
type outcome struct {
	tier    string
	tooltip string
	action  string
}

type checkFunc func(c *evalContext, r Rule) outcome

// Evaluate scores one rule against a snapshot using the default thresholds
func Evaluate(rule Rule, values FormFieldValues) CriterionResult {
	return evaluateRule(newEvalContext(values, DefaultThresholds()), rule)
}

func evaluateRule(c *evalContext, r Rule) CriterionResult {
	res := CriterionResult{
		RuleID:      r.ID,
		Description: r.Description,
		MaxScore:    r.MaxScore,
	}

	check, ok := checks[r.ID]
	if r.Inactive || !ok {
		res.Status = StatusInactive
		res.Tooltip = "This check is not available yet."
		return res
	}

	if missing := missingFields(c.values, r.Fields); len(missing) > 0 {
		res.Status = StatusPending
		res.ActionLabel = ActionFillRequired
		res.Tooltip = fmt.Sprintf("Fill in %s to evaluate this check.", joinLabels(missing))
		return res
	}

	out := check(c, r)
	tier, ok := r.tier(out.tier)
	if !ok {
		// a check naming an unknown tier scores nothing
		tier = r.Tiers[len(r.Tiers)-1]
	}
	res.Tier = tier.Key
	res.EarnedScore = tier.Score
	res.Tooltip = out.tooltip
	if res.Tooltip == "" {
		res.Tooltip = tier.Text
	}

	switch {
	case tier.Score >= r.MaxScore:
		res.Status = StatusSuccess
		res.EarnedScore = r.MaxScore
	case tier.Score <= 0:
		res.Status = StatusError
		res.EarnedScore = 0
		res.ActionLabel = firstNonEmpty(out.action, r.Actions.Error, "Fix")
	default:
		res.Status = StatusWarning
		res.ActionLabel = firstNonEmpty(out.action, r.Actions.Warning, "Optimize")
	}
	return res
}

func missingFields(values FormFieldValues, fields []FieldKey) []FieldKey {
	var missing []FieldKey
	for _, f := range fields {
		if values.IsEmpty(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func joinLabels(fields []FieldKey) string {
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label()
	}
	switch len(labels) {
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
