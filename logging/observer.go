package logging

import (
	"context"
	"log/slog"

	"github.com/seo-optimizer/contentscore/scoring"
)

// Observer logs engine events at debug level. Evaluations run on every
// keystroke of the editor.
type Observer struct {
	log *slog.Logger
}

// NewObserver returns a scoring.Observer backed by l
func NewObserver(l *slog.Logger) *Observer {
	if l == nil {
		l = slog.Default()
	}
	return &Observer{log: l.With("component", "scoring")}
}

func (o *Observer) CriterionEvaluated(rule scoring.Rule, res scoring.CriterionResult) {
	if !o.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.log.Debug("criterion evaluated",
		"rule", rule.ID,
		"section", rule.Section,
		"status", res.Status,
		"tier", res.Tier,
		"earned", res.EarnedScore,
		"max", res.MaxScore,
	)
}

func (o *Observer) Evaluated(res scoring.Result) {
	if !o.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	attrs := make([]any, 0, len(res.Sections)*2+4)
	attrs = append(attrs, "score", res.Overall.Score, "changed", len(res.Overall.ChangedCriterionIDs))
	for _, s := range res.Sections {
		attrs = append(attrs, string(s.ID), s.ProgressPercent)
	}
	o.log.Debug("evaluation finished", attrs...)
}
