package resolver

// Policy centralizes the tunables of the reference generators and scorers.
type Policy struct {
	// MinTitleSimilarity is the cosine similarity a title search hit needs to
	// become a candidate.
	MinTitleSimilarity float64
	// PartialTitleSimilarity is the similarity at which TitleScorer awards
	// PartialTitleScore instead of zero.
	PartialTitleSimilarity float64
	ExactTitleScore        float64
	PartialTitleScore      float64
	// MaxCandidates caps the candidates a single generator returns.
	MaxCandidates int
}

// DefaultPolicy returns the defaults used when no override is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinTitleSimilarity:     0.5,
		PartialTitleSimilarity: 0.8,
		ExactTitleScore:        2,
		PartialTitleScore:      1,
		MaxCandidates:          50,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.MinTitleSimilarity <= 0 || p.MinTitleSimilarity > 1 {
		p.MinTitleSimilarity = d.MinTitleSimilarity
	}
	if p.PartialTitleSimilarity <= 0 || p.PartialTitleSimilarity > 1 {
		p.PartialTitleSimilarity = d.PartialTitleSimilarity
	}
	if p.ExactTitleScore <= 0 {
		p.ExactTitleScore = d.ExactTitleScore
	}
	if p.PartialTitleScore <= 0 || p.PartialTitleScore > p.ExactTitleScore {
		p.PartialTitleScore = d.PartialTitleScore
	}
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = d.MaxCandidates
	}
	return p
}
