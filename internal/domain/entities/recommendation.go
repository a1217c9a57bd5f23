package entities

// ParkStatistics is a derived summary of a park's review activity.
type ParkStatistics struct {
	ParkID             string   `json:"park_id"`
	ParkName           string   `json:"park_name"`
	TotalReviews       int      `json:"total_reviews"`
	UniqueReviewers    int      `json:"unique_reviewers"`
	AvgRating          *float64 `json:"avg_rating"`
	MinRating          *float64 `json:"min_rating"`
	MaxRating          *float64 `json:"max_rating"`
	FiveStarCount      int      `json:"five_star_count"`
	FacilitiesReviewed int      `json:"facilities_reviewed"`
}

// AIRecommendation is a single park suggestion returned by the LLM
// collaborator, identified by the same stable park codes as the catalog so
// both recommendation paths can be compared side by side.
type AIRecommendation struct {
	ParkID     string  `json:"park_id"`
	ParkName   string  `json:"park_name,omitempty"`
	Reason     string  `json:"reason"`
	MatchScore float64 `json:"matchScore"`

	// Park carries the full catalog record once resolved.
	Park *Park `json:"park,omitempty"`
}

// AIRecommendationResult is the parsed LLM response.
type AIRecommendationResult struct {
	Explanation     string             `json:"explanation"`
	Recommendations []AIRecommendation `json:"recommendations"`
}
