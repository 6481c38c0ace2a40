package scoring

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFormIsPending(t *testing.T) {
	e := newTestEngine(t)
	res := e.Evaluate(FormFieldValues{})

	for _, item := range res.Criteria() {
		if item.Status == StatusInactive {
			continue
		}
		assert.Equal(t, StatusPending, item.Status, "rule %d", item.RuleID)
		assert.Zero(t, item.EarnedScore, "rule %d", item.RuleID)
		assert.Equal(t, ActionFillRequired, item.ActionLabel, "rule %d", item.RuleID)
	}
	for _, s := range res.Sections {
		assert.Zero(t, s.ProgressPercent)
		assert.Equal(t, StatusInactive, s.Type)
		assert.Positive(t, s.MaxPoints)
	}
	assert.Equal(t, 0, res.Overall.Score)
	assert.Equal(t, 100, res.Overall.MaxScore)
}

func TestOptimalFormScoresFull(t *testing.T) {
	e := newTestEngine(t)
	res := e.Evaluate(optimalForm(t))

	for _, item := range res.Criteria() {
		if item.Status == StatusInactive {
			continue
		}
		assert.Equal(t, StatusSuccess, item.Status, "rule %d: %s", item.RuleID, item.Tooltip)
		assert.Equal(t, item.MaxScore, item.EarnedScore, "rule %d", item.RuleID)
		assert.Empty(t, item.ActionLabel, "rule %d", item.RuleID)
	}
	for _, s := range res.Sections {
		assert.Equal(t, 100, s.ProgressPercent, s.ID)
		assert.Equal(t, StatusSuccess, s.Type, s.ID)
	}
	assert.Equal(t, 100, res.Overall.Score)
}

func TestWhitespaceCountsAsMissing(t *testing.T) {
	e := newTestEngine(t)
	values := FormFieldValues{
		PrimaryKeyword:    "   ",
		MetaDescription:   "\t\n",
		SecondaryKeywords: []string{"", "  "},
	}
	res, err := e.EvaluateRule(101, values)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.Contains(t, res.Tooltip, "Primary Keyword and Meta Description")

	res, err = e.EvaluateRule(105, values)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
}

func TestMetaDescriptionKeywordBecomesSuccess(t *testing.T) {
	e := newTestEngine(t)
	values := FormFieldValues{PrimaryKeyword: "seo tips"}

	before, err := e.EvaluateRule(101, values)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, before.Status)

	values.MetaDescription = "Great seo tips for beginners"
	after, err := e.EvaluateRule(101, values)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, after.Status)
	assert.Equal(t, after.MaxScore, after.EarnedScore)
	assert.Equal(t, "exact", after.Tier)
}

func TestSlugPartialCredit(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.EvaluateRule(102, FormFieldValues{URLSlug: "best-seotips-guide", PrimaryKeyword: "seo tips"})
	require.NoError(t, err)

	assert.Equal(t, StatusWarning, res.Status)
	assert.Equal(t, "stem", res.Tier)
	assert.Equal(t, 3.0, res.EarnedScore)
	assert.Equal(t, "Optimize", res.ActionLabel)
}

func TestTitleLengthBoundaries(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		length int
		status Status
		score  float64
	}{
		{50, StatusSuccess, 5},
		{60, StatusSuccess, 5},
		{49, StatusWarning, 3.75},
		{61, StatusWarning, 3.75},
		{39, StatusError, 0},
		{71, StatusError, 0},
	}
	for _, tc := range cases {
		title := padTo("seo tips for growing a blog", tc.length)
		values := FormFieldValues{Title: title, PrimaryKeyword: "seo tips"}

		res, err := e.EvaluateRule(202, values)
		require.NoError(t, err)
		assert.Equal(t, tc.status, res.Status, "length %d", tc.length)
		assert.Equal(t, tc.score, res.EarnedScore, "length %d", tc.length)

		start, err := e.EvaluateRule(201, values)
		require.NoError(t, err)
		assert.Equal(t, StatusSuccess, start.Status, "length %d", tc.length)
	}
}

func TestSectionInvariants(t *testing.T) {
	e := newTestEngine(t)
	full := optimalForm(t)
	forms := []FormFieldValues{
		{},
		{PrimaryKeyword: "seo tips", MetaDescription: "Great seo tips for beginners"},
		{Title: "x", URLSlug: "Bad_Slug!!", Language: "en", TargetCountry: "fr"},
		full.With(FieldContent, "seo tips seo tips seo tips"),
		full.With(FieldSecondaryKeywords, "missing one, missing two"),
		full,
	}
	for i, values := range forms {
		res := e.Evaluate(values)
		for _, s := range res.Sections {
			assert.LessOrEqual(t, s.EarnedPoints, s.MaxPoints, "form %d section %s", i, s.ID)
			assert.GreaterOrEqual(t, s.ProgressPercent, 0)
			assert.LessOrEqual(t, s.ProgressPercent, 100)
			if s.MaxPoints > 0 {
				assert.Equal(t, progress(s.EarnedPoints, s.MaxPoints), s.ProgressPercent)
			}
			for _, item := range s.Items {
				switch item.Status {
				case StatusPending, StatusError, StatusInactive:
					assert.Zero(t, item.EarnedScore, "rule %d", item.RuleID)
				case StatusSuccess:
					assert.Equal(t, item.MaxScore, item.EarnedScore, "rule %d", item.RuleID)
				case StatusWarning:
					assert.Greater(t, item.EarnedScore, 0.0, "rule %d", item.RuleID)
					assert.Less(t, item.EarnedScore, item.MaxScore, "rule %d", item.RuleID)
				}
			}
		}
		assert.GreaterOrEqual(t, res.Overall.Score, 0)
		assert.LessOrEqual(t, res.Overall.Score, 100)
	}
}

func TestPendingCountsInDenominator(t *testing.T) {
	e := newTestEngine(t)
	res := e.Evaluate(FormFieldValues{PrimaryKeyword: "seo tips", MetaDescription: "Great seo tips for beginners"})

	primary := res.Sections[0]
	assert.Equal(t, SectionPrimary, primary.ID)
	assert.Equal(t, 5.0, primary.EarnedPoints)
	assert.Equal(t, 32.0, primary.MaxPoints)
	assert.Equal(t, 16, primary.ProgressPercent)
	assert.Equal(t, StatusError, primary.Type)
	assert.Equal(t, 6, res.Overall.Score)
}

func TestInactiveExcludedFromTotals(t *testing.T) {
	e := newTestEngine(t)
	res := e.Evaluate(optimalForm(t))

	item, ok := res.Criterion(304)
	require.True(t, ok)
	assert.Equal(t, StatusInactive, item.Status)
	assert.Empty(t, item.ActionLabel)

	content := res.Sections[2]
	assert.Equal(t, SectionContent, content.ID)
	assert.Equal(t, 16.0, content.MaxPoints)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	values := optimalForm(t).With(FieldTitle, "A short title")

	first := e.Evaluate(values)
	second := e.Evaluate(values)
	assert.True(t, reflect.DeepEqual(first, second))

	sections := Aggregate(e.Catalog(), values)
	assert.Equal(t, first.Sections, sections)
	assert.Equal(t, first.Overall, Reduce(sections))
}

func TestEvaluateConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	values := optimalForm(t)
	want := e.Evaluate(values)

	var wg sync.WaitGroup
	results := make([]Result, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Evaluate(values)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestChangedCriteria(t *testing.T) {
	e := newTestEngine(t)
	first := e.Evaluate(FormFieldValues{})
	assert.Empty(t, first.Overall.ChangedCriterionIDs)

	second := e.EvaluateSince(FormFieldValues{PrimaryKeyword: "seo tips", MetaDescription: "Great seo tips for beginners"}, &first)
	assert.Equal(t, []int{101, 301}, second.Overall.ChangedCriterionIDs)

	third := e.EvaluateSince(FormFieldValues{PrimaryKeyword: "seo tips", MetaDescription: "Great seo tips for beginners"}, &second)
	assert.Empty(t, third.Overall.ChangedCriterionIDs)
}

func TestEvaluateRuleUnknown(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.EvaluateRule(999, FormFieldValues{})
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestPreview(t *testing.T) {
	e := newTestEngine(t)
	values := optimalForm(t).With(FieldMetaDescription, "")

	p, err := e.Preview(values, nil, FieldMetaDescription, "Great seo tips for beginners")
	require.NoError(t, err)

	assert.Equal(t, []int{101, 301}, p.Affected)
	require.Len(t, p.Changes, 2)
	assert.Equal(t, StatusPending, p.Changes[0].Before.Status)
	assert.Equal(t, StatusSuccess, p.Changes[0].After.Status)
	assert.True(t, p.Changes[0].Changed())
	assert.Equal(t, StatusError, p.Changes[1].After.Status)

	full := e.Evaluate(values.With(FieldMetaDescription, "Great seo tips for beginners"))
	assert.Equal(t, full.Overall.Score, p.ProjectedScore)
	assert.Equal(t, e.Evaluate(values).Overall.Score, p.CurrentScore)
	assert.Greater(t, p.ProjectedScore, p.CurrentScore)
}

func TestPreviewUnknownField(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Preview(FormFieldValues{}, nil, FieldKey("body"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

type recordingObserver struct {
	mu        sync.Mutex
	criteria  int
	evaluated int
}

func (o *recordingObserver) CriterionEvaluated(Rule, CriterionResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria++
}

func (o *recordingObserver) Evaluated(Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evaluated++
}

func TestObserverReceivesEvents(t *testing.T) {
	obs := &recordingObserver{}
	e := newTestEngine(t, WithObserver(Observers(nil, obs)))
	e.Evaluate(FormFieldValues{})

	assert.Equal(t, 1, obs.evaluated)
	assert.Equal(t, len(e.Catalog().Rules()), obs.criteria)
}

func TestPreviewDoesNotNotifyObservers(t *testing.T) {
	obs := &recordingObserver{}
	e := newTestEngine(t, WithObserver(obs))

	_, err := e.Preview(FormFieldValues{PrimaryKeyword: "seo tips"}, nil, FieldTitle, "SEO tips for you")
	require.NoError(t, err)
	assert.Zero(t, obs.evaluated)
	assert.Zero(t, obs.criteria)
}

func TestInvalidThresholdsRejected(t *testing.T) {
	th := DefaultThresholds()
	th.TitleLength.Acceptable = Band{Min: 55, Max: 58}
	_, err := NewEngine(WithThresholds(th))
	assert.Error(t, err)
}

func TestCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.TitleLength = LengthBands{Optimal: Band{Min: 30, Max: 40}, Acceptable: Band{Min: 20, Max: 50}}
	e := newTestEngine(t, WithThresholds(th))

	res, err := e.EvaluateRule(202, FormFieldValues{Title: padTo("seo tips", 35)})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
}
