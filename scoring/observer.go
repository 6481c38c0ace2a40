package scoring

// Observer receives evaluation events. Implementations must be safe for
// concurrent use when the engine is shared.
type Observer interface {
	CriterionEvaluated(rule Rule, result CriterionResult)
	Evaluated(result Result)
}

type nopObserver struct{}

func (nopObserver) CriterionEvaluated(Rule, CriterionResult) {}
func (nopObserver) Evaluated(Result)                         {}

type multiObserver []Observer

func (m multiObserver) CriterionEvaluated(r Rule, res CriterionResult) {
	for _, o := range m {
		o.CriterionEvaluated(r, res)
	}
}

func (m multiObserver) Evaluated(res Result) {
	for _, o := range m {
		o.Evaluated(res)
	}
}

// Observers fans events out to every non-nil observer
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nopObserver{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
