package records

// ScoreBreakdown holds the per-dimension contributions to a relevance score.
// Dimensions use disjoint fixed ranges, so the total is a plain sum.
type ScoreBreakdown struct {
	Semantic int `json:"semantic"`
	Location int `json:"location"`
	Age      int `json:"age"`
	Total    int `json:"total"`
}

// Recommendation is a group copy annotated with its relevance for one user.
type Recommendation struct {
	Group
	RelevanceScore int            `json:"relevance_score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
}

func NewRecommendation(g *Group, breakdown ScoreBreakdown) Recommendation {
	return Recommendation{
		Group:          g.Clone(),
		RelevanceScore: breakdown.Total,
		ScoreBreakdown: breakdown,
	}
}
