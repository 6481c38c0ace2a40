package scoring

import "math"

// Aggregate evaluates every rule of the catalog and groups the results into
// sections, using the default thresholds.
func Aggregate(catalog *Catalog, values FormFieldValues) []SectionResult {
	return aggregate(catalog, newEvalContext(values, DefaultThresholds()), nil)
}

func aggregate(catalog *Catalog, c *evalContext, obs Observer) []SectionResult {
	out := make([]SectionResult, 0, len(catalog.sections))
	for _, s := range catalog.sections {
		items := make([]CriterionResult, 0, len(s.RuleIDs))
		for _, id := range s.RuleIDs {
			r := catalog.rules[catalog.byID[id]]
			res := evaluateRule(c, r)
			if obs != nil {
				obs.CriterionEvaluated(r, res)
			}
			items = append(items, res)
		}
		out = append(out, summarizeSection(s, items))
	}
	return out
}

// summarizeSection totals a section. Inactive criteria are left out of both
// earned and max points; pending criteria count toward max with 0 earned, so
// an incomplete form reads as a low score.
func summarizeSection(s Section, items []CriterionResult) SectionResult {
	res := SectionResult{
		ID:            s.ID,
		Title:         s.Title,
		WeightPercent: s.WeightPercent,
		Items:         items,
	}
	for _, item := range items {
		if item.Status == StatusInactive {
			continue
		}
		res.EarnedPoints += item.EarnedScore
		res.MaxPoints += item.MaxScore
	}
	res.ProgressPercent = progress(res.EarnedPoints, res.MaxPoints)
	res.Type = sectionStatus(res.ProgressPercent)
	return res
}

func progress(earned, total float64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(earned / total * 100))
	return clamp(p, 0, 100)
}

func sectionStatus(pct int) Status {
	switch {
	case pct <= 0:
		return StatusInactive
	case pct < 33:
		return StatusError
	case pct < 66:
		return StatusWarning
	}
	return StatusSuccess
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
