package scoring

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownRule is returned when a rule id is not in the catalog
	ErrUnknownRule = errors.New("unknown rule")
	// ErrUnknownField is returned when a field name is not a form field
	ErrUnknownField = errors.New("unknown field")
)

// Engine evaluates form snapshots against a catalog. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	catalog    *Catalog
	thresholds Thresholds
	index      *ImpactIndex
	observer   Observer
}

// Option configures an Engine
type Option func(*Engine)

// WithCatalog replaces the built-in rule table
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithThresholds replaces the default numeric limits
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithObserver attaches an observer for evaluation events
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine builds an engine, validating the catalog and thresholds
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		thresholds: DefaultThresholds(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		c, err := DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		e.catalog = c
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	e.index = NewImpactIndex(e.catalog)
	return e, nil
}

// Catalog returns the engine's rule table
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Thresholds returns the engine's numeric limits
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Impact returns the field-impact index
func (e *Engine) Impact() *ImpactIndex {
	return e.index
}

// Evaluate scores a snapshot
func (e *Engine) Evaluate(values FormFieldValues) Result {
	return e.EvaluateSince(values, nil)
}

// EvaluateSince scores a snapshot and reports which criteria changed since
// prev. prev is only read.
func (e *Engine) EvaluateSince(values FormFieldValues, prev *Result) Result {
	return e.evaluate(values, prev, e.observer)
}

// evaluate runs the full catalog and reports to obs
func (e *Engine) evaluate(values FormFieldValues, prev *Result, obs Observer) Result {
	sections := aggregate(e.catalog, newEvalContext(values, e.thresholds), obs)
	res := Result{
		Sections: sections,
		Overall:  Reduce(sections),
	}
	res.Overall.ChangedCriterionIDs = ChangedCriteria(prev, &res)
	obs.Evaluated(res)
	return res
}

// EvaluateRule scores a single rule by id
func (e *Engine) EvaluateRule(id int, values FormFieldValues) (CriterionResult, error) {
	r, ok := e.catalog.Rule(id)
	if !ok {
		return CriterionResult{}, fmt.Errorf("%w: %d", ErrUnknownRule, id)
	}
	return evaluateRule(newEvalContext(values, e.thresholds), r), nil
}

// CriterionChange is the before/after of one criterion in a preview
type CriterionChange struct {
	RuleID int             `json:"id"`
	Before CriterionResult `json:"before"`
	After  CriterionResult `json:"after"`
}

// Changed reports whether the preview moves this criterion
func (c CriterionChange) Changed() bool {
	return c.Before.Status != c.After.Status || c.Before.EarnedScore != c.After.EarnedScore
}

// Preview is the projected effect of editing one field
type Preview struct {
	Field          FieldKey          `json:"field"`
	Affected       []int             `json:"affected"`
	Changes        []CriterionChange `json:"changes"`
	CurrentScore   int               `json:"currentScore"`
	ProjectedScore int               `json:"projectedScore"`
}

// Preview projects what happens if field is set to value. Only the rules
// that read field are re-evaluated; base, when non-nil, must be the
// evaluation of values and supplies the point totals of the other rules.
// Previews are not evaluations: observers are not notified.
func (e *Engine) Preview(values FormFieldValues, base *Result, field FieldKey, value string) (Preview, error) {
	if !field.Valid() {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if base == nil {
		res := e.evaluate(values, nil, nopObserver{})
		base = &res
	}

	var earned, total float64
	for _, s := range base.Sections {
		earned += s.EarnedPoints
		total += s.MaxPoints
	}

	ids := e.index.Affected(string(field))
	before := newEvalContext(values, e.thresholds)
	after := newEvalContext(values.With(field, value), e.thresholds)

	p := Preview{
		Field:        field,
		Affected:     ids,
		Changes:      make([]CriterionChange, 0, len(ids)),
		CurrentScore: base.Overall.Score,
	}
	for _, id := range ids {
		r := e.catalog.rules[e.catalog.byID[id]]
		change := CriterionChange{
			RuleID: id,
			Before: evaluateRule(before, r),
			After:  evaluateRule(after, r),
		}
		earned += change.After.EarnedScore - change.Before.EarnedScore
		p.Changes = append(p.Changes, change)
	}
	if total > 0 {
		p.ProjectedScore = clamp(int(math.Round(earned/total*100)), 0, MaxOverallScore)
	}
	return p, nil
}
