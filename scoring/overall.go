package scoring

import (
	"math"
	"sort"
)

// MaxOverallScore is the top of the overall scale
const MaxOverallScore = 100

// Reduce combines section points into the overall 0-100 score. It sums raw
// points instead of the rounded section percentages.
func Reduce(sections []SectionResult) OverallScore {
	var earned, total float64
	for _, s := range sections {
		earned += s.EarnedPoints
		total += s.MaxPoints
	}
	score := 0
	if total > 0 {
		score = clamp(int(math.Round(earned/total*100)), 0, MaxOverallScore)
	}
	return OverallScore{
		Score:               score,
		MaxScore:            MaxOverallScore,
		ChangedCriterionIDs: []int{},
	}
}

// ChangedCriteria lists the rule ids whose status or earned score differ
// between prev and next, in ascending order. A nil prev yields no changes.
func ChangedCriteria(prev, next *Result) []int {
	changed := []int{}
	if prev == nil || next == nil {
		return changed
	}
	before := make(map[int]CriterionResult)
	for _, item := range prev.Criteria() {
		before[item.RuleID] = item
	}
	for _, item := range next.Criteria() {
		old, ok := before[item.RuleID]
		if !ok || old.Status != item.Status || old.EarnedScore != item.EarnedScore {
			changed = append(changed, item.RuleID)
		}
	}
	sort.Ints(changed)
	return changed
}
