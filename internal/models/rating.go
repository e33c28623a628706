package models

import "time"

// ScoreSection is one scored dimension of a critique.
type ScoreSection struct {
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Rating is the structured form of the oracle's critique.
type Rating struct {
	Aesthetics    ScoreSection `json:"aesthetics"`
	Originality   ScoreSection `json:"originality"`
	GreatFeatures string       `json:"greatFeatures"`
	Improvements  []string     `json:"improvements"`
}

// TreeRating is the persisted outcome of one analyzed upload. ID and
// CreatedAt are assigned by the record store.
type TreeRating struct {
	ID                     string    `json:"id"`
	ImageURL               string    `json:"image_url"`
	AestheticsScore        float64   `json:"aesthetics_score"`
	AestheticsExplanation  string    `json:"aesthetics_explanation"`
	OriginalityScore       float64   `json:"originality_score"`
	OriginalityExplanation string    `json:"originality_explanation"`
	GreatFeatures          string    `json:"great_features"`
	Improvements           []string  `json:"improvements"`
	CreatedAt              time.Time `json:"created_at"`
}

// NewTreeRating builds an unsaved record from a parsed rating.
func NewTreeRating(imageURL string, r Rating) *TreeRating {
	improvements := r.Improvements
	if improvements == nil {
		improvements = []string{}
	}
	return &TreeRating{
		ImageURL:               imageURL,
		AestheticsScore:        r.Aesthetics.Score,
		AestheticsExplanation:  r.Aesthetics.Explanation,
		OriginalityScore:       r.Originality.Score,
		OriginalityExplanation: r.Originality.Explanation,
		GreatFeatures:          r.GreatFeatures,
		Improvements:           improvements,
	}
}

// TotalScore is derived and never stored.
func (t *TreeRating) TotalScore() float64 {
	return t.AestheticsScore + t.OriginalityScore
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Rating   Rating `json:"rating"`
}

// LeaderboardEntry is the public shape of one leaderboard row. User mirrors
// ID; there are no accounts.
type LeaderboardEntry struct {
	ID               string    `json:"id"`
	User             string    `json:"user"`
	ImageURL         string    `json:"image_url"`
	AestheticsScore  float64   `json:"aesthetics_score"`
	OriginalityScore float64   `json:"originality_score"`
	Score            float64   `json:"score"`
	CreatedAt        time.Time `json:"created_at"`
}

type LeaderboardResponse struct {
	Trees []LeaderboardEntry `json:"trees"`
}

// TreeDetail is a full record plus its derived total, for the detail view.
type TreeDetail struct {
	TreeRating
	Score float64 `json:"score"`
}
