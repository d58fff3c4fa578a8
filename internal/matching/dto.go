package matching

// DTOs for API responses

// LikeResult reports whether a like completed a mutual match.
type LikeResult struct {
	IsMatch bool `json:"is_match"`
}

// ScoredCandidate is one discovery entry: a candidate profile and the
// viewer's compatibility score against it.
type ScoredCandidate struct {
	Profile *Profile `json:"profile"`
	Score   int      `json:"score"`
}

// CompatibilityResult is the response for a single pair score lookup.
type CompatibilityResult struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// MatchView decorates a Match with the partner id as seen by the caller.
type MatchView struct {
	*Match
	PartnerID string `json:"partner_id"`
}
