package triage

import "sort"

// RankedCondition is a condition with the number of input symptoms that
// reference it.
type RankedCondition struct {
	Name    string
	Matches int
}

// RankConditions counts, for every condition, how many of the given
// symptoms list it, and returns conditions sorted by that count descending.
// Ties keep first-seen order, so a single symptom's conditions come back in
// knowledge-base order. Symptoms unknown to the knowledge base contribute
// nothing.
func RankConditions(kb *KnowledgeBase, symptoms []string) []RankedCondition {
	counts := make(map[string]int)
	var order []string

	for _, symptom := range symptoms {
		for _, condition := range kb.ConditionsFor(symptom) {
			if _, ok := counts[condition]; !ok {
				order = append(order, condition)
			}
			counts[condition]++
		}
	}

	ranked := make([]RankedCondition, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, RankedCondition{Name: name, Matches: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Matches > ranked[j].Matches
	})
	return ranked
}

// ScoreConditions converts the ranking into at most five scored candidates.
// The score is a fixed positional decay, 0.9 for the top condition down to
// 0.5 for the fifth, clamped to [0.4, 0.9]. It is a presentation ordering,
// not a probability.
func ScoreConditions(kb *KnowledgeBase, symptoms []string) []ScoredCondition {
	ranked := RankConditions(kb, symptoms)
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}

	scored := make([]ScoredCondition, 0, len(ranked))
	for i, rc := range ranked {
		score := float64(9-i) / 10
		if score > 0.9 {
			score = 0.9
		}
		if score < 0.4 {
			score = 0.4
		}
		scored = append(scored, ScoredCondition{Name: rc.Name, MatchScore: score})
	}
	return scored
}
