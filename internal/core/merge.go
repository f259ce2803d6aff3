package core

// MatchOutcome describes how a primary entity was reconciled.
type MatchOutcome string

const (
	OutcomeExact      MatchOutcome = "exact"
	OutcomeFuzzy      MatchOutcome = "fuzzy"
	OutcomeBelowFloor MatchOutcome = "below_floor"
)

// MatchResult records the reconciliation of one primary name.
type MatchResult struct {
	Name    string       `json:"name"`
	Outcome MatchOutcome `json:"outcome"`
	Matched string       `json:"matched,omitempty"`
	Score   int          `json:"score"`
}

// MergeReport summarizes a Merge call.
type MergeReport struct {
	Results    []MatchResult `json:"results"`
	Exact      int           `json:"exact"`
	Fuzzy      int           `json:"fuzzy"`
	BelowFloor int           `json:"below_floor"`
}

func (r *MergeReport) add(res MatchResult) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case OutcomeExact:
		r.Exact++
	case OutcomeFuzzy:
		r.Fuzzy++
	case OutcomeBelowFloor:
		r.BelowFloor++
	}
}

// Merge copies gifts from secondary onto the entities of primary.
//
// Each primary name is looked up in secondary by exact key first. Without an
// exact key, the best-scoring secondary name is used if its score is strictly
// greater than floor; otherwise the primary entity is left untouched. The
// merge is primary-driven: unmatched secondary entities are dropped. If either
// collection is empty nothing happens. A nil scorer uses DefaultScorer.
func Merge(primary, secondary *Collection, floor float64, scorer Scorer) MergeReport {
	var report MergeReport
	if primary.Len() == 0 || secondary.Len() == 0 {
		return report
	}
	if scorer == nil {
		scorer = DefaultScorer{}
	}

	candidates := secondary.Keys()
	for _, name := range primary.Keys() {
		target, _ := primary.Get(name)

		if src, ok := secondary.Get(name); ok {
			copyGift(target, src)
			report.add(MatchResult{Name: name, Outcome: OutcomeExact, Matched: name, Score: 100})
			continue
		}

		matched, score, _ := BestMatch(name, candidates, scorer)
		if float64(score) > floor {
			src, _ := secondary.Get(matched)
			copyGift(target, src)
			report.add(MatchResult{Name: name, Outcome: OutcomeFuzzy, Matched: matched, Score: score})
			continue
		}

		report.add(MatchResult{Name: name, Outcome: OutcomeBelowFloor, Matched: matched, Score: score})
	}

	return report
}

// copyGift mirrors the source gift, including its absence.
func copyGift(dst, src *Entity) {
	if gift, ok := src.Get(FieldGift); ok {
		dst.Set(FieldGift, gift)
		return
	}
	dst.Clear(FieldGift)
}
